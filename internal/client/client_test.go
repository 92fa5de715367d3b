package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/wetracker/internal/notification"
	"github.com/kazz187/wetracker/internal/task"
)

func TestClient_Notify(t *testing.T) {
	var got notification.Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/notifications", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if got.TaskID == "missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"not_found","error":"Task not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "key", nil)
	ev := &notification.Event{
		Kind:    notification.KindCommentAdded,
		TaskID:  "t1",
		ActorID: "alice",
		Data:    notification.Data{Comment: "LGTM"},
	}
	require.NoError(t, c.Notify(context.Background(), ev))
	assert.Equal(t, *ev, got)

	ev.TaskID = "missing"
	err := c.Notify(context.Background(), ev)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Task not found", apiErr.Msg)
}

func TestClient_ListTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "budget", r.URL.Query().Get("search"))
		assert.Equal(t, "urgent", r.URL.Query().Get("priority"))
		assert.Empty(t, r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`{"tasks":[{"id":"t1","title":"Review budget","priority":"urgent"}],"total":1}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL, "key", srv.Client()).ListTasks(context.Background(), task.Filter{
		Search:   "budget",
		Priority: task.PriorityUrgent,
	})
	require.NoError(t, err)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "Review budget", resp.Tasks[0].Title)
	assert.Equal(t, 1, resp.Total)
}

func TestClient_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := New(srv.URL, "bad", nil).Notify(context.Background(), &notification.Event{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "unauthorized", apiErr.Msg)
}
