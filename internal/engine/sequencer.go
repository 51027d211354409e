package engine

import (
	"github.com/MRamiBalles/GiftQuest/server/internal/domain/stage"
	"github.com/MRamiBalles/GiftQuest/server/internal/events"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
)

// Advancer is what a stage calls, exactly once, when its completion condition is met.
// from names the stage being completed; a stale or repeated call is ignored.
type Advancer interface {
	Advance(from stage.ID) bool
}

// Sequencer owns the current-stage pointer and nothing else.
// index is only ever written by Start and Advance.
type Sequencer struct {
	stages    []stage.ID
	index     int
	started   bool
	presenter Presenter
	feedback  Feedback
	journal   *events.EventLog
	logger    *logger.Logger
	hooks     map[stage.ID]func()
}

// NewSequencer creates a sequencer over stage.Order.
func NewSequencer(p Presenter, f Feedback, journal *events.EventLog, log *logger.Logger) *Sequencer {
	return &Sequencer{
		stages:    append([]stage.ID(nil), stage.Order...),
		presenter: p,
		feedback:  f,
		journal:   journal,
		logger:    log,
		hooks:     make(map[stage.ID]func()),
	}
}

// OnActivate registers fn to run whenever id becomes the active stage.
func (s *Sequencer) OnActivate(id stage.ID, fn func()) {
	s.hooks[id] = fn
}

// Start activates the first stage. Only the first call has any effect.
func (s *Sequencer) Start() {
	if s.started {
		s.logger.Warn("sequencer already started", "session", s.journal.SessionID())
		return
	}
	s.started = true
	s.index = 0

	first := s.stages[0]
	s.journal.Record(events.EventTypeSessionStarted, first.String(), nil)
	s.feedback.Cue(CueMagical)
	s.activate(first)
}

// Advance completes the active stage and activates the next one. Advancing
// from the last stage makes the sequence terminal. Calls naming a stage that
// is not active, or arriving after the end, are logged and ignored.
func (s *Sequencer) Advance(from stage.ID) bool {
	current, ok := s.Current()
	if !ok {
		s.fault(from, "advance while not running")
		return false
	}
	if current != from {
		s.fault(from, "advance from inactive stage")
		return false
	}

	s.journal.Record(events.EventTypeStageCompleted, current.String(), nil)

	if s.index == len(s.stages)-1 {
		// The reveal view stays on screen.
		s.index++
		s.presenter.SetProgress(1)
		s.journal.Record(events.EventTypeSessionCompleted, current.String(), nil)
		s.logger.Event(string(events.EventTypeSessionCompleted), s.journal.SessionID(), "quest finished")
		return true
	}

	s.feedback.Cue(CueSuccess)
	s.presenter.HideStage(current)
	s.index++
	s.activate(s.stages[s.index])
	return true
}

func (s *Sequencer) activate(id stage.ID) {
	s.presenter.SetProgress(s.Progress())
	s.presenter.ShowStage(id)
	s.journal.Record(events.EventTypeStageActivated, id.String(), map[string]int{"index": s.index})
	s.logger.Event(string(events.EventTypeStageActivated), s.journal.SessionID(), id.Title())

	if hook, ok := s.hooks[id]; ok {
		hook()
	}
}

func (s *Sequencer) fault(from stage.ID, reason string) {
	s.logger.Warn(reason, "session", s.journal.SessionID(), "from", from.String(), "index", s.index)
	s.journal.Record(events.EventTypeFault, from.String(), map[string]string{"reason": reason})
}

// Current returns the active stage; ok is false before Start and once terminal.
func (s *Sequencer) Current() (stage.ID, bool) {
	if !s.started || s.index >= len(s.stages) {
		return "", false
	}
	return s.stages[s.index], true
}

// Index returns the 0-based current index; len(stage.Order) once terminal.
func (s *Sequencer) Index() int {
	return s.index
}

// Finished reports whether the sequence is terminal.
func (s *Sequencer) Finished() bool {
	return s.started && s.index >= len(s.stages)
}

// Progress is index / (stages - 1), clamped to 1.
func (s *Sequencer) Progress() float64 {
	last := len(s.stages) - 1
	if last <= 0 {
		return 1
	}
	i := s.index
	if i > last {
		i = last
	}
	return float64(i) / float64(last)
}
