package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	chatapp "advanced-prompt/internal/features/chat/application"
	chatdomain "advanced-prompt/internal/features/chat/domain"
	configapp "advanced-prompt/internal/features/config/application"
	cookapp "advanced-prompt/internal/features/cook/application"
	cookdomain "advanced-prompt/internal/features/cook/domain"
	promptapp "advanced-prompt/internal/features/prompt/application"
	"advanced-prompt/internal/features/session/domain"
)

// generationForm is the session's copy of the host generation form. The
// sweep and the autopilot drive it; hosts read it back from snapshots.
type generationForm struct {
	mu   sync.Mutex
	form domain.Form
}

func (g *generationForm) Live() cookdomain.Live {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.form.Live
}

func (g *generationForm) Apply(state cookdomain.State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := state.Clone()
	g.form.Applied = &s
}

func (g *generationForm) StartJob() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.form.PendingJob = true
	g.form.JobsIssued++
}

func (g *generationForm) SetModifiers(tags []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.form.Tags = append([]string(nil), tags...)
}

func (g *generationForm) setLive(live cookdomain.Live) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.form.Live = live
}

func (g *generationForm) finishJob() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.form.PendingJob = false
}

func (g *generationForm) snapshot() domain.Form {
	g.mu.Lock()
	defer g.mu.Unlock()
	f := g.form
	if f.Applied != nil {
		s := f.Applied.Clone()
		f.Applied = &s
	}
	f.Tags = append([]string(nil), f.Tags...)
	return f
}

// Session is one prompt being edited, with its own sweep and autopilot.
type Session struct {
	ID string

	log    logrus.FieldLogger
	config configapp.ConfigService
	ctx    context.Context

	editor    *promptapp.Editor
	form      *generationForm
	roller    *chatapp.Roller
	drafter   *chatapp.Drafter
	sweep     *cookapp.Sweep
	autopilot *chatapp.AutoPilot

	mu       sync.Mutex // guards the fields below and serializes mode changes
	mode     domain.Mode
	notice   string
	lastRoll *chatdomain.Roll
}

// Editor exposes the prompt editor for row operations.
func (s *Session) Editor() *promptapp.Editor {
	return s.editor
}

// Mode reports what the session is currently running.
func (s *Session) Mode() domain.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modeLocked()
}

// modeLocked settles modes whose runner ended on its own.
func (s *Session) modeLocked() domain.Mode {
	switch {
	case s.mode == domain.ModeAutoPilot && !s.autopilot.Running():
		s.mode = domain.ModeIdle
	case s.mode == domain.ModeCooking && !s.sweep.Active():
		s.mode = domain.ModeIdle
	}
	return s.mode
}

// Snapshot returns the full session view.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	mode := s.modeLocked()
	notice := s.notice
	roll := s.lastRoll
	s.mu.Unlock()

	ed := s.editor.Snapshot()
	return domain.Snapshot{
		ID:         s.ID,
		Mode:       mode,
		Text:       ed.Text,
		Rows:       ed.Rows,
		EditState:  ed.State,
		ActiveRow:  ed.ActiveRow,
		TokenCount: ed.TokenCount,
		Form:       s.form.snapshot(),
		Cooked:     s.sweep.Cooked(),
		Notice:     notice,
		LastRoll:   roll,
	}
}

// SetLive records what the host form currently shows.
func (s *Session) SetLive(live cookdomain.Live) {
	s.form.setLive(live)
}

// StartCook begins a sweep with the configured bounds. A running autopilot is
// stopped first.
func (s *Session) StartCook() (cookdomain.State, error) {
	cfg, err := s.config.Current()
	if err != nil {
		return cookdomain.State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.modeLocked() == domain.ModeAutoPilot {
		s.autopilot.Stop()
	}
	first, err := s.sweep.Begin(s.form, cfg.Cook, cfg.RollModifiers)
	if err != nil {
		return cookdomain.State{}, err
	}
	s.mode = domain.ModeCooking
	s.notice = ""
	s.log.Info("Cooking")
	return first, nil
}

// CancelCook stops the sweep and resets the form to the start point.
func (s *Session) CancelCook() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep.Cancel(s.form)
	if s.mode == domain.ModeCooking {
		s.mode = domain.ModeIdle
	}
}

// JobFinished is the host's signal that the last started job is done. It is
// routed to the sweep when the sweep issued the job, otherwise to the
// autopilot.
func (s *Session) JobFinished() cookapp.Progress {
	s.form.finishJob()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sweep.InFlight() {
		p := s.sweep.JobFinished(s.form)
		if p.Done {
			s.notice = p.Notice
			if s.mode == domain.ModeCooking {
				s.mode = domain.ModeIdle
			}
		}
		return p
	}
	if s.modeLocked() == domain.ModeAutoPilot {
		s.autopilot.JobFinished()
	}
	return cookapp.Progress{Done: true}
}

// Draft asks the completion service for a new prompt and streams it into the
// editor. It is refused while the autopilot owns the prompt.
func (s *Session) Draft(ctx context.Context) (chatapp.DraftResult, error) {
	cfg, err := s.config.Current()
	if err != nil {
		return chatapp.DraftResult{}, err
	}
	if s.Mode() == domain.ModeAutoPilot {
		return chatapp.DraftResult{}, fmt.Errorf("cannot draft while autopilot runs: %w", domain.ErrModeConflict)
	}

	res, err := s.drafter.Draft(ctx, s.editor, chatapp.DraftOptions{
		Settings:      cfg.Chat,
		RollModifiers: cfg.RollModifiers,
	})
	if cfg.RollModifiers {
		s.form.SetModifiers(res.Tags)
	}
	return res, err
}

// StartAutoPilot starts the draft and generate loop. A running sweep is
// cancelled first.
func (s *Session) StartAutoPilot() error {
	cfg, err := s.config.Current()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.modeLocked() == domain.ModeCooking {
		s.sweep.Cancel(s.form)
	}
	err = s.autopilot.Start(s.ctx, s.editor, s.form, chatapp.DraftOptions{
		Settings:      cfg.Chat,
		RollModifiers: cfg.RollModifiers,
	})
	if err != nil {
		return fmt.Errorf("failed to start autopilot: %w", err)
	}
	s.mode = domain.ModeAutoPilot
	s.log.Info("Autopilot engaged")
	return nil
}

// StopAutoPilot stops the loop. A draft in flight is discarded.
func (s *Session) StopAutoPilot() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autopilot.Stop()
	if s.mode == domain.ModeAutoPilot {
		s.mode = domain.ModeIdle
	}
}

// Roll picks a fresh set of style modifiers and makes them the active tags.
func (s *Session) Roll() chatdomain.Roll {
	roll := s.roller.Roll()
	s.form.SetModifiers(roll.Tags)

	s.mu.Lock()
	s.lastRoll = &roll
	s.mu.Unlock()
	return roll
}

// Close stops everything the session runs.
func (s *Session) Close() {
	s.StopAutoPilot()
	s.CancelCook()
}
