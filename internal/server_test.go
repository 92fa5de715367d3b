package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/wetracker/internal/config"
	"github.com/kazz187/wetracker/internal/eventbus"
	"github.com/kazz187/wetracker/internal/notification"
	"github.com/kazz187/wetracker/internal/profile"
	profilerepo "github.com/kazz187/wetracker/internal/profile/repositoryimpl"
	"github.com/kazz187/wetracker/internal/pushnotification"
	pushsubrepo "github.com/kazz187/wetracker/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/wetracker/internal/task"
	taskrepo "github.com/kazz187/wetracker/internal/task/repositoryimpl"
	"github.com/kazz187/wetracker/pkg/storage"
)

const testAPIKey = "test-key"

type nopRenderer struct{}

func (nopRenderer) Render(in *notification.RenderInput) (*notification.Content, error) {
	return &notification.Content{Subject: in.TaskTitle}, nil
}

func newTestHandler(t *testing.T) (http.Handler, <-chan *notification.Plan) {
	t.Helper()
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	profiles := profilerepo.NewYAMLRepository(store)
	tasks := taskrepo.NewYAMLRepository(store)
	subs := pushsubrepo.NewYAMLRepository(store)

	now := time.Date(2025, 12, 26, 9, 0, 0, 0, time.UTC)
	for _, id := range []string{"alice", "bob"} {
		p := &profile.Profile{ID: id, FullName: id, Email: id + "@example.com", CreatedAt: now}
		p.ApplyPreferences(profile.DefaultPreferences())
		require.NoError(t, profiles.Create(ctx, p))
	}
	require.NoError(t, tasks.Create(ctx, &task.Task{
		ID: "t1", Title: "Review", Priority: task.PriorityNormal, Status: task.StatusNotStarted,
		CreatedBy: "alice", AssignedTo: "bob", CreatedAt: now, UpdatedAt: now,
	}))

	env := &config.Env{BaseEnv: config.BaseEnv{APIKey: testAPIKey, AppURL: "http://localhost:3000"}}
	bus := eventbus.New[*notification.Plan]()
	_, ch := bus.Subscribe(4)
	dispatcher := notification.NewDispatcher(tasks, profiles, nopRenderer{}, notification.Notifiers{}, env.AppURL, &env.NotificationEnv)

	srv := NewServer(
		env,
		notification.NewServer(dispatcher, bus),
		task.NewServer(tasks),
		profile.NewServer(profiles),
		pushnotification.NewServer(&env.VAPIDEnv, subs, profiles),
	)
	return srv.Handler(), ch
}

func TestServer_Auth(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name   string
		path   string
		header map[string]string
		want   int
	}{
		{"health is open", "/health", nil, http.StatusOK},
		{"missing key", "/api/tasks", nil, http.StatusUnauthorized},
		{"wrong key", "/api/tasks", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"x-api-key", "/api/tasks", map[string]string{"X-API-Key": testAPIKey}, http.StatusOK},
		{"bearer", "/api/tasks", map[string]string{"Authorization": "Bearer " + testAPIKey}, http.StatusOK},
		{"unknown api route", "/api/nope", map[string]string{"X-API-Key": testAPIKey}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestServer_NotificationFlow(t *testing.T) {
	h, ch := newTestHandler(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/notifications", strings.NewReader(body))
		req.Header.Set("X-API-Key", testAPIKey)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := post(`{"type":"task_assigned","taskId":"t1","userId":"alice"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	require.Len(t, ch, 1)
	plan := <-ch
	require.Len(t, plan.Messages, 1)
	assert.Equal(t, "bob", plan.Messages[0].Recipient.ID)
	assert.Equal(t, "http://localhost:3000/tasks/t1", plan.Messages[0].TaskURL)
	assert.NotEmpty(t, plan.LogAttributes["request_id"])

	rec = post(`{"type":"task_assigned","taskId":"missing","userId":"alice"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"code":"not_found","error":"Task not found"}`, rec.Body.String())
}
