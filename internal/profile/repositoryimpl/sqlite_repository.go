package repositoryimpl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/kazz187/wetracker/internal/profile"
	"github.com/kazz187/wetracker/pkg/cerr"
)

const profileColumns = `id, full_name, email, avatar_url, email_notifications, notify_on_assignment,
	notify_on_comments, notify_on_status_change, created_at`

type SQLiteRepository struct {
	db *sqlx.DB
}

func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, p *profile.Profile) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (:id, :full_name, :email, :avatar_url, :email_notifications, :notify_on_assignment,
			:notify_on_comments, :notify_on_status_change, :created_at)`, p)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return cerr.NewError(cerr.AlreadyExists, "profile already exists", err)
		}
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to insert profile: %w", err))
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*profile.Profile, error) {
	var p profile.Profile
	err := r.db.GetContext(ctx, &p, "SELECT "+profileColumns+" FROM profiles WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.NewError(cerr.NotFound, "profile not found", err)
		}
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to get profile %s: %w", id, err))
	}
	return &p, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*profile.Profile, error) {
	var all []*profile.Profile
	if err := r.db.SelectContext(ctx, &all, "SELECT "+profileColumns+" FROM profiles ORDER BY id"); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to list profiles: %w", err))
	}
	return all, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, p *profile.Profile) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE profiles SET
			full_name = :full_name, email = :email, avatar_url = :avatar_url,
			email_notifications = :email_notifications, notify_on_assignment = :notify_on_assignment,
			notify_on_comments = :notify_on_comments, notify_on_status_change = :notify_on_status_change
		WHERE id = :id`, p)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to update profile %s: %w", p.ID, err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return cerr.NewError(cerr.NotFound, "profile not found", nil)
	}
	return nil
}
