package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/kazz187/wetracker/internal/eventbus"
	"github.com/kazz187/wetracker/pkg/clog"
	"github.com/kazz187/wetracker/pkg/panicerr"
)

const (
	defaultQueueSize    = 256
	defaultDrainTimeout = 10 * time.Second
)

// Worker delivers plans published on the bus, one at a time, until its
// context is cancelled. Plans still queued at that point get a short grace
// period to go out.
type Worker struct {
	bus          *eventbus.Bus[*Plan]
	dispatcher   *Dispatcher
	queueSize    int
	drainTimeout time.Duration
}

func NewWorker(bus *eventbus.Bus[*Plan], dispatcher *Dispatcher, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Worker{
		bus:          bus,
		dispatcher:   dispatcher,
		queueSize:    queueSize,
		drainTimeout: defaultDrainTimeout,
	}
}

func (w *Worker) Start(ctx context.Context) {
	subID, ch := w.bus.Subscribe(w.queueSize)
	defer w.bus.Unsubscribe(subID)

	slog.Info("notification worker started", "queue_size", w.queueSize)
	for {
		select {
		case <-ctx.Done():
			w.drain(ctx, ch, nil)
			return
		case plan, ok := <-ch:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				w.drain(ctx, ch, plan)
				return
			}
			w.deliver(ctx, plan)
		}
	}
}

// drain delivers first (if any) and whatever is already queued, detached
// from the cancelled ctx and bounded by drainTimeout. Plans left when the
// grace period ends are dropped.
func (w *Worker) drain(ctx context.Context, ch <-chan *Plan, first *Plan) {
	graceCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.drainTimeout)
	defer cancel()

	delivered := 0
	if first != nil {
		w.deliver(graceCtx, first)
		delivered++
	}
loop:
	for graceCtx.Err() == nil {
		select {
		case plan, ok := <-ch:
			if !ok {
				break loop
			}
			w.deliver(graceCtx, plan)
			delivered++
		default:
			break loop
		}
	}
	slog.Info("notification worker stopped", "drained", delivered, "dropped", len(ch))
}

func (w *Worker) deliver(ctx context.Context, plan *Plan) {
	ctx = clog.ContextWithAttributes(ctx, plan.LogAttributes)
	err := panicerr.Run(func() error {
		w.dispatcher.Deliver(ctx, plan)
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "notification worker recovered from panic",
			"dispatch_id", plan.ID,
			"error", err,
		)
	}
}
