package application

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"advanced-prompt/internal/features/cook/domain"
)

// SweepControl is the generation form the sweep drives. A fresh control may be
// passed on every call; it reports the form as it is right now.
type SweepControl interface {
	// Live reports the active adapter count and prompt strength visibility.
	Live() domain.Live
	// Apply writes a sweep point into the form.
	Apply(state domain.State)
	// StartJob triggers one generation job with the applied values.
	StartJob()
}

// ModifierRoller picks style modifiers before each cooked job when rolling is on.
type ModifierRoller interface {
	RollTags() []string
}

// ModifierSink receives rolled modifier tags. Controls that do not implement
// it simply do not get tags.
type ModifierSink interface {
	SetModifiers(tags []string)
}

// Progress is the outcome of a job-finished signal.
type Progress struct {
	Cooked   int           `json:"cooked"`
	Done     bool          `json:"done"`
	Notice   string        `json:"notice,omitempty"`
	Next     *domain.State `json:"next,omitempty"`
	Complete bool          `json:"cycle_complete"`
}

// Sweep runs the odometer once per finished generation job.
type Sweep struct {
	mu  sync.Mutex
	log logrus.FieldLogger

	odometer  *domain.Odometer
	roller    ModifierRoller
	roll      bool
	active    bool
	inFlight  bool
	exhausted bool
	count     int
	state     domain.State

	// gen counts Begin calls; jobGen is the generation of the job in flight.
	gen      int
	jobGen   int
	deferred bool
}

// NewSweep creates an idle sweep. roller may be nil.
func NewSweep(roller ModifierRoller, log logrus.FieldLogger) *Sweep {
	return &Sweep{roller: roller, log: log}
}

// Begin resets the sweep to the all-start point of bounds and starts the
// first job. If a job of an earlier sweep is still running, the first job
// starts when that one finishes, and that finish is not counted.
func (s *Sweep) Begin(ctl SweepControl, bounds domain.Bounds, rollModifiers bool) (domain.State, error) {
	odo, err := domain.NewOdometer(bounds)
	if err != nil {
		return domain.State{}, fmt.Errorf("failed to start sweep: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.odometer = odo
	s.roll = rollModifiers
	s.active = true
	s.exhausted = false
	s.count = 0
	s.state = odo.Start(ctl.Live().ActiveLoras)

	s.log.WithField("bounds", fmt.Sprintf("%+v", bounds)).Info("Cook started")
	if s.inFlight {
		s.deferred = true
		ctl.Apply(s.state)
		s.log.Debug("Waiting for the previous job before the first cooked job")
		return s.state.Clone(), nil
	}
	return s.runJobLocked(ctl), nil
}

// runJobLocked applies the current point, starts a job and advances the
// odometer. It returns the point the job runs with.
func (s *Sweep) runJobLocked(ctl SweepControl) domain.State {
	live := ctl.Live()
	if s.roll && s.roller != nil {
		if sink, ok := ctl.(ModifierSink); ok {
			sink.SetModifiers(s.roller.RollTags())
		}
	}

	current := s.odometer.Fit(s.state, live.ActiveLoras)
	ctl.Apply(current)
	ctl.StartJob()
	s.inFlight = true
	s.jobGen = s.gen
	s.deferred = false

	next, complete := s.odometer.Step(current, live)
	s.state = next
	if complete {
		s.exhausted = true
		s.log.Debug("Cook reached the end of its cycle")
	}
	return current
}

// JobFinished counts the finished image and starts the next job while the
// sweep is running. Once the sweep is exhausted or cancelled it reports the
// completion notice instead.
func (s *Sweep) JobFinished(ctl SweepControl) Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inFlight {
		return Progress{Cooked: s.count, Done: !s.active}
	}
	s.inFlight = false
	if s.jobGen != s.gen {
		s.log.Debug("Ignoring a job started by an earlier cook")
		if s.active && s.deferred {
			next := s.runJobLocked(ctl)
			return Progress{Cooked: s.count, Next: &next}
		}
		return Progress{Cooked: s.count, Done: !s.active}
	}
	s.count++

	if s.active && !s.exhausted {
		next := s.runJobLocked(ctl)
		return Progress{Cooked: s.count, Next: &next}
	}

	cooked := s.count
	notice := fmt.Sprintf("Cooked %d Images.", cooked)
	s.log.WithField("cooked", cooked).Info("Cook finished")

	if s.odometer != nil {
		ctl.Apply(s.odometer.Start(ctl.Live().ActiveLoras))
	}
	s.active = false
	s.count = 0
	return Progress{Cooked: cooked, Done: true, Notice: notice, Complete: s.exhausted}
}

// Cancel stops issuing steps and resets the form to the start point. A job
// already running still reports through JobFinished.
func (s *Sweep) Cancel(ctl SweepControl) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}
	s.active = false
	s.deferred = false
	if s.odometer != nil {
		s.state = s.odometer.Start(ctl.Live().ActiveLoras)
		ctl.Apply(s.state)
	}
	s.log.WithField("cooked", s.count).Info("Cook cancelled")
}

// Active reports whether the sweep will issue another job.
func (s *Sweep) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// InFlight reports whether a job started by the sweep has not finished yet.
func (s *Sweep) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Cooked returns the images finished so far by the running sweep.
func (s *Sweep) Cooked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// State returns the point the next job will run with.
func (s *Sweep) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}
