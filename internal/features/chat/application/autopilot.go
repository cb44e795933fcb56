package application

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrAutoPilotRunning = errors.New("autopilot is already running")

// JobStarter triggers one image generation job.
type JobStarter interface {
	StartJob()
}

// AutoPilot repeats draft, start job, wait for the job, until stopped or a
// draft fails.
type AutoPilot struct {
	drafter *Drafter
	log     logrus.FieldLogger

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	finished chan struct{}
	drafts   int
}

// NewAutoPilot creates a stopped autopilot.
func NewAutoPilot(drafter *Drafter, log logrus.FieldLogger) *AutoPilot {
	return &AutoPilot{drafter: drafter, log: log}
}

// Start launches the loop in its own goroutine. The loop ends on Stop, when
// ctx is done, or after the first failed draft.
func (a *AutoPilot) Start(ctx context.Context, target PromptTarget, jobs JobStarter, opts DraftOptions) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.runningLocked() {
		return ErrAutoPilotRunning
	}
	if a.cancel != nil {
		a.cancel()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	a.finished = make(chan struct{}, 1)
	a.drafts = 0
	opts.AutoPilot = true

	go a.run(loopCtx, target, jobs, opts, a.done, a.finished)
	a.log.Info("Autopilot started")
	return nil
}

func (a *AutoPilot) run(ctx context.Context, target PromptTarget, jobs JobStarter, opts DraftOptions, done chan struct{}, finished <-chan struct{}) {
	defer close(done)
	for {
		if _, err := a.drafter.Draft(ctx, target, opts); err != nil {
			if ctx.Err() == nil {
				a.log.WithError(err).Warn("Autopilot stopped after a failed draft")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		a.mu.Lock()
		a.drafts++
		a.mu.Unlock()

		jobs.StartJob()
		select {
		case <-finished:
		case <-ctx.Done():
			return
		}
	}
}

// JobFinished wakes the loop waiting on the current job. Extra signals are
// dropped.
func (a *AutoPilot) JobFinished() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finished == nil {
		return
	}
	select {
	case a.finished <- struct{}{}:
	default:
	}
}

// Stop ends the loop and waits for it to exit. A draft in flight is
// cancelled and its text discarded.
func (a *AutoPilot) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	a.mu.Lock()
	if a.done == done {
		a.cancel = nil
	}
	a.mu.Unlock()
	a.log.Info("Autopilot stopped")
}

// Running reports whether the loop is active.
func (a *AutoPilot) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runningLocked()
}

func (a *AutoPilot) runningLocked() bool {
	if a.done == nil {
		return false
	}
	select {
	case <-a.done:
		return false
	default:
		return true
	}
}

// Drafts returns how many drafts the current or last loop completed.
func (a *AutoPilot) Drafts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.drafts
}
