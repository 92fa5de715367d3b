package notification

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/kazz187/wetracker/internal/config"
	"github.com/kazz187/wetracker/internal/profile"
	"github.com/kazz187/wetracker/internal/task"
	"github.com/kazz187/wetracker/pkg/cerr"
	"github.com/kazz187/wetracker/pkg/clog"
	"github.com/kazz187/wetracker/pkg/panicerr"
)

const (
	defaultMaxConcurrentSends = 4
	defaultSendTimeout        = 30 * time.Second
)

// Plan is the outcome of the synchronous part of a dispatch: who gets what.
// Skipped holds the ids of candidates whose preferences said no.
type Plan struct {
	ID       string
	Event    Event
	Messages []*Message
	Skipped  []string
	// LogAttributes are the request's log attributes, restored when the plan
	// is delivered in the background.
	LogAttributes map[string]any
}

// Result counts per recipient outcomes. It is only used for logs and tests.
type Result struct {
	Sent    int
	Skipped int
	Failed  int
}

type Dispatcher struct {
	taskRepo    task.Repository
	profileRepo profile.Repository
	renderer    Renderer
	notifier    Notifier
	baseURL     string

	maxConcurrentSends int
	sendTimeout        time.Duration
}

func NewDispatcher(
	taskRepo task.Repository,
	profileRepo profile.Repository,
	renderer Renderer,
	notifier Notifier,
	baseURL string,
	env *config.NotificationEnv,
) *Dispatcher {
	d := &Dispatcher{
		taskRepo:           taskRepo,
		profileRepo:        profileRepo,
		renderer:           renderer,
		notifier:           notifier,
		baseURL:            baseURL,
		maxConcurrentSends: defaultMaxConcurrentSends,
		sendTimeout:        defaultSendTimeout,
	}
	if env != nil {
		if env.MaxConcurrentSends > 0 {
			d.maxConcurrentSends = env.MaxConcurrentSends
		}
		if env.SendTimeout > 0 {
			d.sendTimeout = env.SendTimeout
		}
	}
	return d
}

// Dispatch plans and delivers ev in the caller's goroutine.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) (Result, error) {
	plan, err := d.Plan(ctx, ev)
	if err != nil {
		return Result{}, err
	}
	return d.Deliver(ctx, plan), nil
}

// Plan resolves the task and the people involved, selects recipients, applies
// their preferences and renders the messages. It sends nothing. A task that
// does not exist, including an empty TaskID, fails the whole plan with
// NotFound; an unknown kind yields a plan without messages.
func (d *Dispatcher) Plan(ctx context.Context, ev *Event) (*Plan, error) {
	if ev.TaskID == "" {
		return nil, cerr.NewError(cerr.NotFound, "Task not found", nil)
	}
	t, err := d.taskRepo.Get(ctx, ev.TaskID)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, cerr.NewError(cerr.NotFound, "Task not found", err)
		}
		return nil, cerr.NewError(cerr.Internal, "failed to load task", err)
	}
	if !ev.Kind.Valid() {
		slog.WarnContext(ctx, "unknown notification type, nothing to send", "type", ev.Kind, "task_id", t.ID)
	}

	actor := d.lookupProfile(ctx, ev.ActorID)
	resolved := &ResolvedTask{
		Task:     t,
		Assignee: d.lookupProfile(ctx, t.AssignedTo),
		Creator:  d.lookupProfile(ctx, t.CreatedBy),
	}

	var everyone []*profile.Profile
	if ev.Kind == KindTaskCreated {
		everyone, err = d.profileRepo.List(ctx)
		if err != nil {
			return nil, cerr.NewError(cerr.Internal, "failed to list profiles", err)
		}
	}

	plan := &Plan{
		ID:            ulid.Make().String(),
		Event:         *ev,
		LogAttributes: clog.GetAttributes(ctx),
	}
	taskURL := TaskURL(d.baseURL, t.ID)
	var content *Content
	for _, p := range SelectRecipients(ev.Kind, resolved, ev.ActorID, everyone) {
		if !ShouldNotify(p, ev.Kind) {
			plan.Skipped = append(plan.Skipped, p.ID)
			continue
		}
		if content == nil {
			content, err = d.renderer.Render(d.renderInput(ev, t, actor.DisplayName(), taskURL))
			if err != nil {
				return nil, cerr.NewError(cerr.Internal, "failed to render notification", err)
			}
		}
		plan.Messages = append(plan.Messages, &Message{
			DispatchID: plan.ID,
			Kind:       ev.Kind,
			TaskID:     t.ID,
			TaskURL:    taskURL,
			Recipient:  p,
			Content:    content,
		})
	}

	slog.DebugContext(ctx, "notification planned",
		"dispatch_id", plan.ID,
		"type", ev.Kind,
		"task_id", t.ID,
		"recipients", len(plan.Messages),
		"skipped", len(plan.Skipped),
	)
	return plan, nil
}

// Deliver sends every message of plan with at most maxConcurrentSends in
// flight. A failing or panicking recipient is logged and counted; it never
// stops the others.
func (d *Dispatcher) Deliver(ctx context.Context, plan *Plan) Result {
	var sent, failed atomic.Int64
	p := pool.New().WithMaxGoroutines(d.maxConcurrentSends)
	for _, m := range plan.Messages {
		p.Go(func() {
			if err := d.send(ctx, m); err != nil {
				failed.Add(1)
				slog.ErrorContext(ctx, "failed to deliver notification",
					"dispatch_id", plan.ID,
					"recipient", m.Recipient.ID,
					"error", err,
				)
				return
			}
			sent.Add(1)
		})
	}
	p.Wait()

	res := Result{
		Sent:    int(sent.Load()),
		Skipped: len(plan.Skipped),
		Failed:  int(failed.Load()),
	}
	slog.InfoContext(ctx, "notification dispatched",
		"dispatch_id", plan.ID,
		"type", plan.Event.Kind,
		"task_id", plan.Event.TaskID,
		"sent", res.Sent,
		"skipped", res.Skipped,
		"failed", res.Failed,
	)
	return res
}

func (d *Dispatcher) send(ctx context.Context, m *Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	return panicerr.Run(func() error {
		return d.notifier.Notify(ctx, m)
	})
}

// lookupProfile is best effort: a missing or unreadable profile is nil.
func (d *Dispatcher) lookupProfile(ctx context.Context, id string) *profile.Profile {
	if id == "" {
		return nil
	}
	p, err := d.profileRepo.Get(ctx, id)
	if err != nil {
		slog.DebugContext(ctx, "profile lookup failed", "profile_id", id, "error", err)
		return nil
	}
	return p
}

func (d *Dispatcher) renderInput(ev *Event, t *task.Task, actorName, taskURL string) *RenderInput {
	in := &RenderInput{
		Kind:        ev.Kind,
		TaskTitle:   t.Title,
		ActorName:   actorName,
		Priority:    ev.Data.Priority,
		Comment:     ev.Data.Comment,
		Status:      ev.Data.NewStatus,
		TaskURL:     taskURL,
		SettingsURL: SettingsURL(d.baseURL),
	}
	if in.Priority == "" {
		in.Priority = t.Priority
	}
	if in.Status == "" {
		in.Status = t.Status
	}
	return in
}
