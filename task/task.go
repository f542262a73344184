// Package task runs archive operations on a single background worker.
//
// A Runner executes at most one operation at a time. The returned Task is
// polled by the foreground for its status message and progress and can be
// cancelled; cancellation reaches the operation through its context and is
// honoured only at the operation's own checkpoints.
package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/zipview"
)

// ErrBusy is returned by TryStart when an operation is already running.
var ErrBusy = errors.New("task: an operation is already running")

// Func is an operation run by a Runner. It reports progress through
// progress and must check ctx at its checkpoints.
type Func func(ctx context.Context, progress zipview.ProgressFunc) error

// Runner runs operations one at a time.
type Runner struct {
	group  errgroup.Group
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used to record task completion.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner with a single worker.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	r.group.SetLimit(1)
	return r
}

// Start runs fn on the worker and returns once it has been handed over.
// If another operation is running, Start blocks until it has finished.
func (r *Runner) Start(ctx context.Context, name string, fn Func) *Task {
	t, run := r.newTask(ctx, name, fn)
	r.group.Go(run)
	return t
}

// TryStart is like Start but fails with ErrBusy instead of blocking.
func (r *Runner) TryStart(ctx context.Context, name string, fn Func) (*Task, error) {
	t, run := r.newTask(ctx, name, fn)
	if !r.group.TryGo(run) {
		t.cancel()
		return nil, ErrBusy
	}
	return t, nil
}

func (r *Runner) newTask(ctx context.Context, name string, fn Func) (*Task, func() error) {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	run := func() error {
		defer close(t.done)
		defer cancel()

		err := fn(ctx, t.report)
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()

		if err != nil {
			r.logger.Debug("task failed", "task", name, "error", err)
		} else {
			r.logger.Debug("task finished", "task", name, "cancelled", ctx.Err() != nil)
		}
		return err
	}
	return t, run
}

// Run starts fn and waits for it to finish.
func (r *Runner) Run(ctx context.Context, name string, fn Func) error {
	return r.Start(ctx, name, fn).Wait()
}

// Wait blocks until the running operation, if any, has finished and
// returns the first error any operation returned.
func (r *Runner) Wait() error {
	return r.group.Wait()
}

// Task is a handle to an operation started by a Runner.
type Task struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	progress zipview.ProgressEvent
	err      error
}

func (t *Task) report(ev zipview.ProgressEvent) {
	t.mu.Lock()
	t.progress = ev
	t.mu.Unlock()
}

// Name returns the name given to Start.
func (t *Task) Name() string {
	return t.name
}

// Message returns the latest status message.
func (t *Task) Message() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress.Message
}

// Progress returns the latest progress event.
func (t *Task) Progress() zipview.ProgressEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// Cancel requests cancellation. The operation stops at its next checkpoint.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed when the operation has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the operation has finished and returns its error.
func (t *Task) Wait() error {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
