package repositoryimpl

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/wetracker/internal/pushsubscription"
	"github.com/kazz187/wetracker/pkg/cerr"
	"github.com/kazz187/wetracker/pkg/storage"
)

const pushSubscriptionsPrefix = "push_subscriptions"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) (string, error) {
	return storage.RecordPath(pushSubscriptionsPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, s *pushsubscription.Subscription) error {
	key, err := path(s.ID)
	if err != nil {
		return cerr.WrapStorageWriteError("push_subscription", s.ID, err)
	}
	exists, err := r.storage.Exists(ctx, key)
	if err != nil {
		return cerr.WrapStorageWriteError("push_subscription", s.ID, err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "push subscription already exists", nil)
	}
	return r.write(ctx, s)
}

func (r *YAMLRepository) Update(ctx context.Context, s *pushsubscription.Subscription) error {
	key, err := path(s.ID)
	if err != nil {
		return cerr.WrapStorageWriteError("push_subscription", s.ID, err)
	}
	exists, err := r.storage.Exists(ctx, key)
	if err != nil {
		return cerr.WrapStorageWriteError("push_subscription", s.ID, err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "push subscription not found", nil)
	}
	return r.write(ctx, s)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	key, err := path(id)
	if err != nil {
		return cerr.WrapStorageDeleteError("push_subscription", id, err)
	}
	if err := r.storage.Delete(ctx, key); err != nil {
		return cerr.WrapStorageDeleteError("push_subscription", id, err)
	}
	return nil
}

func (r *YAMLRepository) ListByProfile(ctx context.Context, profileID string) ([]*pushsubscription.Subscription, error) {
	all, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	var out []*pushsubscription.Subscription
	for _, s := range all {
		if s.ProfileID == profileID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *YAMLRepository) FindByEndpoint(ctx context.Context, endpoint string) (*pushsubscription.Subscription, error) {
	all, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.Endpoint == endpoint {
			return s, nil
		}
	}
	return nil, cerr.NewError(cerr.NotFound, "push subscription not found", nil)
}

// list skips entries that cannot be read or decoded.
func (r *YAMLRepository) list(ctx context.Context) ([]*pushsubscription.Subscription, error) {
	paths, err := r.storage.List(ctx, pushSubscriptionsPrefix)
	if err != nil {
		return nil, cerr.WrapStorageListError("push_subscriptions", err)
	}
	var all []*pushsubscription.Subscription
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var s pushsubscription.Subscription
		if err := yaml.Unmarshal(data, &s); err != nil {
			continue
		}
		all = append(all, &s)
	}
	return all, nil
}

func (r *YAMLRepository) write(ctx context.Context, s *pushsubscription.Subscription) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal push subscription: %w", err))
	}
	key, err := path(s.ID)
	if err != nil {
		return cerr.WrapStorageWriteError("push_subscription", s.ID, err)
	}
	if err := r.storage.Write(ctx, key, data); err != nil {
		return cerr.WrapStorageWriteError("push_subscription", s.ID, err)
	}
	return nil
}
