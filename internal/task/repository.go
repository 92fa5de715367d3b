package task

import "context"

type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	// List returns every task, newest first.
	List(ctx context.Context) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
}
