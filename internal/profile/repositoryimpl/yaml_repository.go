package repositoryimpl

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/wetracker/internal/profile"
	"github.com/kazz187/wetracker/pkg/cerr"
	"github.com/kazz187/wetracker/pkg/storage"
)

const profilesPrefix = "profiles"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) (string, error) {
	return storage.RecordPath(profilesPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, p *profile.Profile) error {
	key, err := path(p.ID)
	if err != nil {
		return cerr.WrapStorageWriteError("profile", p.ID, err)
	}
	exists, err := r.storage.Exists(ctx, key)
	if err != nil {
		return cerr.WrapStorageWriteError("profile", p.ID, err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "profile already exists", nil)
	}
	return r.write(ctx, p)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*profile.Profile, error) {
	key, err := path(id)
	if err != nil {
		return nil, cerr.WrapStorageReadError("profile", id, err)
	}
	data, err := r.storage.Read(ctx, key)
	if err != nil {
		return nil, cerr.WrapStorageReadError("profile", id, err)
	}
	var p profile.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal profile: %w", err))
	}
	return &p, nil
}

// List skips documents that fail to read or parse so one corrupt file does
// not hide every other user.
func (r *YAMLRepository) List(ctx context.Context) ([]*profile.Profile, error) {
	paths, err := r.storage.List(ctx, profilesPrefix)
	if err != nil {
		return nil, cerr.WrapStorageListError("profiles", err)
	}

	var all []*profile.Profile
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var prof profile.Profile
		if err := yaml.Unmarshal(data, &prof); err != nil {
			continue
		}
		all = append(all, &prof)
	}
	return all, nil
}

func (r *YAMLRepository) Update(ctx context.Context, p *profile.Profile) error {
	key, err := path(p.ID)
	if err != nil {
		return cerr.WrapStorageWriteError("profile", p.ID, err)
	}
	exists, err := r.storage.Exists(ctx, key)
	if err != nil {
		return cerr.WrapStorageWriteError("profile", p.ID, err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "profile not found", nil)
	}
	return r.write(ctx, p)
}

func (r *YAMLRepository) write(ctx context.Context, p *profile.Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal profile: %w", err))
	}
	key, err := path(p.ID)
	if err != nil {
		return cerr.WrapStorageWriteError("profile", p.ID, err)
	}
	if err := r.storage.Write(ctx, key, data); err != nil {
		return cerr.WrapStorageWriteError("profile", p.ID, err)
	}
	return nil
}
