package notification

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/kazz187/wetracker/internal/config"
	"github.com/kazz187/wetracker/internal/profile"
	"github.com/kazz187/wetracker/internal/task"
	"github.com/kazz187/wetracker/pkg/cerr"
)

const testBaseURL = "https://tracker.example.com"

type fakeTaskRepo struct {
	tasks map[string]*task.Task
	err   error
}

func (r *fakeTaskRepo) Create(_ context.Context, t *task.Task) error {
	r.tasks[t.ID] = t
	return nil
}

func (r *fakeTaskRepo) Get(_ context.Context, id string) (*task.Task, error) {
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.tasks[id]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return t, nil
}

func (r *fakeTaskRepo) List(context.Context) ([]*task.Task, error) {
	var all []*task.Task
	for _, t := range r.tasks {
		all = append(all, t)
	}
	task.SortNewestFirst(all)
	return all, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, t *task.Task) error {
	return r.Create(ctx, t)
}

type fakeProfileRepo struct {
	profiles map[string]*profile.Profile
	listErr  error
}

func newFakeProfileRepo(ps ...*profile.Profile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: make(map[string]*profile.Profile)}
	for _, p := range ps {
		r.profiles[p.ID] = p
	}
	return r
}

func (r *fakeProfileRepo) Create(_ context.Context, p *profile.Profile) error {
	r.profiles[p.ID] = p
	return nil
}

func (r *fakeProfileRepo) Get(_ context.Context, id string) (*profile.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "profile not found", nil)
	}
	return p, nil
}

func (r *fakeProfileRepo) List(context.Context) ([]*profile.Profile, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var all []*profile.Profile
	for _, p := range r.profiles {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (r *fakeProfileRepo) Update(ctx context.Context, p *profile.Profile) error {
	return r.Create(ctx, p)
}

// stubRenderer records its inputs and renders a predictable subject.
type stubRenderer struct {
	mu     sync.Mutex
	inputs []*RenderInput
	err    error
}

func (r *stubRenderer) Render(in *RenderInput) (*Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, in)
	if r.err != nil {
		return nil, r.err
	}
	return &Content{
		Subject: fmt.Sprintf("%s %s %s", in.ActorName, in.Kind, in.Status.Label()),
		Text:    in.TaskTitle,
	}, nil
}

// recordingNotifier remembers every recipient it was asked to notify.
type recordingNotifier struct {
	mu       sync.Mutex
	notified []string
	fail     map[string]error
	panicFor string
	delay    time.Duration

	inFlight    int
	maxInFlight int
}

func (n *recordingNotifier) Notify(_ context.Context, m *Message) error {
	n.mu.Lock()
	n.notified = append(n.notified, m.Recipient.ID)
	n.inFlight++
	n.maxInFlight = max(n.maxInFlight, n.inFlight)
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		n.inFlight--
		n.mu.Unlock()
	}()

	if n.delay > 0 {
		time.Sleep(n.delay)
	}
	if m.Recipient.ID == n.panicFor {
		panic("boom")
	}
	return n.fail[m.Recipient.ID]
}

func (n *recordingNotifier) recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := slices.Clone(n.notified)
	slices.Sort(out)
	return out
}

func newProfile(id string, master, assignment, comments, status bool) *profile.Profile {
	return &profile.Profile{
		ID:                   id,
		FullName:             "User " + id,
		Email:                id + "@example.com",
		EmailNotifications:   master,
		NotifyOnAssignment:   assignment,
		NotifyOnComments:     comments,
		NotifyOnStatusChange: status,
	}
}

func allOn(id string) *profile.Profile {
	return newProfile(id, true, true, true, true)
}

func newTestDispatcher(tasks *fakeTaskRepo, profiles *fakeProfileRepo, r Renderer, n Notifier) *Dispatcher {
	return NewDispatcher(tasks, profiles, r, n, testBaseURL, &config.NotificationEnv{
		MaxConcurrentSends: 2,
		SendTimeout:        time.Second,
	})
}
