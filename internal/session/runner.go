package session

import (
	"context"
	"errors"
	"time"
)

// ErrRunnerStopped is returned by Do once Run has returned.
var ErrRunnerStopped = errors.New("session runner stopped")

// Command mutates the controller on the runner goroutine.
type Command func(c *Controller)

// Ticker is the countdown clock. time.Ticker satisfies it through NewTicker.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type timeTicker struct{ *time.Ticker }

func (t timeTicker) Chan() <-chan time.Time { return t.C }

// NewTicker returns a wall-clock Ticker firing every d.
func NewTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// Runner serialises commands and clock ticks for one Controller.
type Runner struct {
	ctrl      *Controller
	cmds      chan Command
	done      chan struct{}
	newTicker func() Ticker
}

// RunnerOption customises a Runner.
type RunnerOption func(*Runner)

// WithTicker replaces the one-second wall clock.
func WithTicker(fn func() Ticker) RunnerOption {
	return func(r *Runner) { r.newTicker = fn }
}

// NewRunner wraps ctrl. Nothing happens until Run is called.
func NewRunner(ctrl *Controller, opts ...RunnerOption) *Runner {
	r := &Runner{
		ctrl:      ctrl,
		cmds:      make(chan Command),
		done:      make(chan struct{}),
		newTicker: func() Ticker { return NewTicker(time.Second) },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do hands cmd to the runner goroutine and waits until it is accepted.
func (r *Runner) Do(ctx context.Context, cmd Command) error {
	select {
	case r.cmds <- cmd:
		return nil
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run owns the controller until ctx is cancelled. The clock is stopped once the
// session expires or is submitted, and always before Run returns.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	ticker := r.newTicker()
	defer ticker.Stop()

	ticks := ticker.Chan()
	stopClock := func() {
		if ticks != nil {
			ticker.Stop()
			ticks = nil
		}
	}
	if !r.ctrl.Running() {
		stopClock()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case cmd := <-r.cmds:
			cmd(r.ctrl)
			if !r.ctrl.Running() {
				stopClock()
			}

		case <-ticks:
			if !r.ctrl.Tick() {
				stopClock()
			}
		}
	}
}
