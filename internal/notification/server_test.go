package notification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/wetracker/internal/eventbus"
	"github.com/kazz187/wetracker/internal/task"
	"github.com/kazz187/wetracker/pkg/cerr"
)

type plannerFunc func(ctx context.Context, ev *Event) (*Plan, error)

func (f plannerFunc) Plan(ctx context.Context, ev *Event) (*Plan, error) {
	return f(ctx, ev)
}

func newTestRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	s.Routes(r)
	return r
}

func TestServer_Notify(t *testing.T) {
	tasks := newTaskRepo(&task.Task{ID: "t1", Title: "Review", CreatedBy: "a", AssignedTo: "b"})
	d := newTestDispatcher(tasks, newFakeProfileRepo(allOn("a"), allOn("b")), &stubRenderer{}, &recordingNotifier{})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
		wantPlan   bool
		wantEmpty  bool
	}{
		{
			name:       "assigned",
			body:       `{"type":"task_assigned","taskId":"t1","userId":"a"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
			wantPlan:   true,
		},
		{
			name:       "no recipients still succeeds",
			body:       `{"type":"task_assigned","taskId":"t1","userId":"b","data":null}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
			wantPlan:   true,
		},
		{
			name:       "unknown task",
			body:       `{"type":"comment_added","taskId":"nope","userId":"a","data":{"comment":"hi"}}`,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"code":"not_found","error":"Task not found"}`,
		},
		{
			name:       "malformed json",
			body:       `{"type":`,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"code":"internal","error":"Failed to send notification"}`,
		},
		{
			name:       "unknown type sends nothing",
			body:       `{"type":"task_deleted","taskId":"t1","userId":"a"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
			wantPlan:   true,
			wantEmpty:  true,
		},
		{
			name:       "missing task id",
			body:       `{"type":"task_created","userId":"a"}`,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"code":"not_found","error":"Task not found"}`,
		},
		{
			name:       "task id outside the task store",
			body:       `{"type":"task_created","taskId":"../profiles/a","userId":"a"}`,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"code":"not_found","error":"Task not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := eventbus.New[*Plan]()
			_, ch := bus.Subscribe(1)
			h := newTestRouter(NewServer(d, bus))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			if tt.wantPlan {
				require.Len(t, ch, 1)
				plan := <-ch
				assert.Equal(t, "t1", plan.Event.TaskID)
				if tt.wantEmpty {
					assert.Empty(t, plan.Messages)
				}
			} else {
				assert.Empty(t, ch)
			}
		})
	}
}

func TestServer_InternalErrorHidesDetail(t *testing.T) {
	planner := plannerFunc(func(context.Context, *Event) (*Plan, error) {
		return nil, errors.New("dial tcp 10.0.0.3:5432: connection refused")
	})
	h := newTestRouter(NewServer(planner, eventbus.New[*Plan]()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications",
		strings.NewReader(`{"type":"task_created","taskId":"t1","userId":"a"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":"internal","error":"Failed to send notification"}`, rec.Body.String())
}

func TestServer_QueueFullStillSucceeds(t *testing.T) {
	planner := plannerFunc(func(_ context.Context, ev *Event) (*Plan, error) {
		return &Plan{ID: "p", Event: *ev}, nil
	})
	bus := eventbus.New[*Plan]()
	_, ch := bus.Subscribe(1)
	h := newTestRouter(NewServer(planner, bus))

	for range 2 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notifications",
			strings.NewReader(`{"type":"task_created","taskId":"t1","userId":"a"}`)))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Len(t, ch, 1)
}
