package repositoryimpl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/kazz187/wetracker/internal/task"
	"github.com/kazz187/wetracker/pkg/cerr"
)

const taskColumns = `id, title, notes, priority, status, time_estimate, start_date, due_date,
	assigned_to, created_by, created_at, updated_at`

type SQLiteRepository struct {
	db *sqlx.DB
}

func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, t *task.Task) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (:id, :title, :notes, :priority, :status, :time_estimate, :start_date, :due_date,
			:assigned_to, :created_by, :created_at, :updated_at)`, t)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return cerr.NewError(cerr.AlreadyExists, "task already exists", err)
		}
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to insert task: %w", err))
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	var t task.Task
	err := r.db.GetContext(ctx, &t, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.NewError(cerr.NotFound, "task not found", err)
		}
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to get task %s: %w", id, err))
	}
	return &t, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*task.Task, error) {
	var all []*task.Task
	if err := r.db.SelectContext(ctx, &all, "SELECT "+taskColumns+" FROM tasks ORDER BY created_at DESC, id"); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to list tasks: %w", err))
	}
	return all, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, t *task.Task) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE tasks SET
			title = :title, notes = :notes, priority = :priority, status = :status,
			time_estimate = :time_estimate, start_date = :start_date, due_date = :due_date,
			assigned_to = :assigned_to, updated_at = :updated_at
		WHERE id = :id`, t)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to update task %s: %w", t.ID, err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return nil
}
