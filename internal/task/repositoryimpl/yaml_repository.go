package repositoryimpl

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/wetracker/internal/task"
	"github.com/kazz187/wetracker/pkg/cerr"
	"github.com/kazz187/wetracker/pkg/storage"
)

const tasksPrefix = "tasks"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) (string, error) {
	return storage.RecordPath(tasksPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, t *task.Task) error {
	key, err := path(t.ID)
	if err != nil {
		return cerr.WrapStorageWriteError("task", t.ID, err)
	}
	exists, err := r.storage.Exists(ctx, key)
	if err != nil {
		return cerr.WrapStorageWriteError("task", t.ID, err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "task already exists", nil)
	}
	return r.write(ctx, t)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	key, err := path(id)
	if err != nil {
		return nil, cerr.WrapStorageReadError("task", id, err)
	}
	data, err := r.storage.Read(ctx, key)
	if err != nil {
		return nil, cerr.WrapStorageReadError("task", id, err)
	}
	var t task.Task
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal task: %w", err))
	}
	return &t, nil
}

func (r *YAMLRepository) List(ctx context.Context) ([]*task.Task, error) {
	paths, err := r.storage.List(ctx, tasksPrefix)
	if err != nil {
		return nil, cerr.WrapStorageListError("tasks", err)
	}

	var all []*task.Task
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var t task.Task
		if err := yaml.Unmarshal(data, &t); err != nil {
			continue
		}
		all = append(all, &t)
	}
	task.SortNewestFirst(all)
	return all, nil
}

func (r *YAMLRepository) Update(ctx context.Context, t *task.Task) error {
	key, err := path(t.ID)
	if err != nil {
		return cerr.WrapStorageWriteError("task", t.ID, err)
	}
	exists, err := r.storage.Exists(ctx, key)
	if err != nil {
		return cerr.WrapStorageWriteError("task", t.ID, err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return r.write(ctx, t)
}

func (r *YAMLRepository) write(ctx context.Context, t *task.Task) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal task: %w", err))
	}
	key, err := path(t.ID)
	if err != nil {
		return cerr.WrapStorageWriteError("task", t.ID, err)
	}
	if err := r.storage.Write(ctx, key, data); err != nil {
		return cerr.WrapStorageWriteError("task", t.ID, err)
	}
	return nil
}
