package repositoryimpl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/wetracker/internal/task"
	"github.com/kazz187/wetracker/pkg/cerr"
	"github.com/kazz187/wetracker/pkg/sqlstore"
	"github.com/kazz187/wetracker/pkg/storage"
)

func newRepositories(t *testing.T) map[string]task.Repository {
	t.Helper()

	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	db, err := sqlstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]task.Repository{
		"yaml":   NewYAMLRepository(local),
		"sqlite": NewSQLiteRepository(db),
	}
}

func TestRepository(t *testing.T) {
	base := time.Date(2025, 12, 26, 9, 0, 0, 0, time.UTC)
	due := base.Add(72 * time.Hour)

	for name, repo := range newRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			older := &task.Task{
				ID:        "t-older",
				Title:     "Draft agenda",
				Priority:  task.PriorityNormal,
				Status:    task.StatusNotStarted,
				CreatedBy: "alice",
				CreatedAt: base,
				UpdatedAt: base,
			}
			newer := &task.Task{
				ID:         "t-newer",
				Title:      "Review Q4 budget",
				Priority:   task.PriorityUrgent,
				Status:     task.StatusInProgress,
				AssignedTo: "bob",
				CreatedBy:  "alice",
				DueDate:    &due,
				CreatedAt:  base.Add(time.Hour),
				UpdatedAt:  base.Add(time.Hour),
			}
			require.NoError(t, repo.Create(ctx, older))
			require.NoError(t, repo.Create(ctx, newer))
			assert.True(t, cerr.IsCode(repo.Create(ctx, older), cerr.AlreadyExists))

			got, err := repo.Get(ctx, "t-newer")
			require.NoError(t, err)
			assert.Equal(t, "bob", got.AssignedTo)
			assert.Equal(t, task.PriorityUrgent, got.Priority)
			require.NotNil(t, got.DueDate)
			assert.True(t, due.Equal(*got.DueDate))
			assert.Nil(t, got.StartDate)

			got.Status = task.StatusCompleted
			require.NoError(t, repo.Update(ctx, got))
			got, err = repo.Get(ctx, "t-newer")
			require.NoError(t, err)
			assert.Equal(t, task.StatusCompleted, got.Status)

			all, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "t-newer", all[0].ID)
			assert.Equal(t, "t-older", all[1].ID)

			_, err = repo.Get(ctx, "missing")
			assert.True(t, cerr.IsCode(err, cerr.NotFound))
			assert.True(t, cerr.IsCode(repo.Update(ctx, &task.Task{ID: "missing"}), cerr.NotFound))
		})
	}
}

func TestYAMLRepository_IDCannotLeavePrefix(t *testing.T) {
	ctx := context.Background()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, local.Write(ctx, "profiles/u1.yaml", []byte("id: u1\nfull_name: Alice\n")))
	repo := NewYAMLRepository(local)

	for _, id := range []string{"../profiles/u1", `..\profiles\u1`, "x/../../profiles/u1", ""} {
		_, err := repo.Get(ctx, id)
		assert.True(t, cerr.IsCode(err, cerr.NotFound), "id %q: %v", id, err)
	}
	assert.True(t, cerr.IsCode(repo.Create(ctx, &task.Task{ID: "../escape"}), cerr.InvalidArgument))
}
