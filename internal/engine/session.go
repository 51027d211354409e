package engine

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/MRamiBalles/GiftQuest/server/internal/domain/stage"
	"github.com/MRamiBalles/GiftQuest/server/internal/events"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
)

// SessionOptions wires one session. Zero values get harmless defaults,
// except Scheduler, which is required.
type SessionOptions struct {
	ID        string
	Presenter Presenter
	Feedback  Feedback
	Scheduler Scheduler
	Journal   *events.EventLog
	Logger    *logger.Logger
	Rand      *rand.Rand
	Rules     *Rules
}

// Session is one play-through: a sequencer, its four stages and a journal.
// A restart builds a new Session rather than resetting this one.
type Session struct {
	id        string
	sequencer *Sequencer
	riddle    *Riddle
	memory    *MemoryMatch
	recall    *SequenceRecall
	reveal    *Reveal
	journal   *events.EventLog
	logger    *logger.Logger
}

// NewSession builds a fresh session. Nothing is shown until Start.
func NewSession(opts SessionOptions) *Session {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Presenter == nil {
		opts.Presenter = NopPresenter{}
	}
	if opts.Feedback == nil {
		opts.Feedback = NopFeedback{}
	}
	if opts.Journal == nil {
		opts.Journal = events.NewEventLog(opts.ID, nil)
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(rand.Int63()))
	}
	rules := DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}
	log := opts.Logger.With("session", opts.ID)

	seq := NewSequencer(opts.Presenter, opts.Feedback, opts.Journal, log)
	s := &Session{
		id:        opts.ID,
		sequencer: seq,
		riddle:    NewRiddle(opts.Presenter, opts.Feedback, opts.Scheduler, seq, opts.Journal, log, rules),
		memory:    NewMemoryMatch(opts.Presenter, opts.Feedback, opts.Scheduler, seq, opts.Journal, log, opts.Rand, rules),
		recall:    NewSequenceRecall(opts.Presenter, opts.Feedback, opts.Scheduler, seq, opts.Journal, log, opts.Rand, rules),
		reveal:    NewReveal(opts.Presenter, opts.Feedback, opts.Scheduler, seq, opts.Journal, rules),
		journal:   opts.Journal,
		logger:    log,
	}

	seq.OnActivate(stage.MemoryMatch, func() {
		if err := s.memory.Start(rules.Symbols); err != nil {
			// Only reachable with broken Rules; the stage stays inert.
			s.logger.Error("memory match failed to start", "error", err)
		}
	})
	seq.OnActivate(stage.SequenceRecall, func() {
		opts.Scheduler.After(rules.RecallStartDelay, func() {
			if current, ok := seq.Current(); ok && current == stage.SequenceRecall {
				s.recall.Start()
			}
		})
	})
	return s
}

// Start activates the first stage.
func (s *Session) Start() {
	s.sequencer.Start()
}

// RiddleSubmitted delivers a riddle answer.
func (s *Session) RiddleSubmitted(text string) {
	if s.accepting(stage.Riddle, "riddle") {
		s.riddle.Submitted(text)
	}
}

// CardActivated delivers a memory card click.
func (s *Session) CardActivated(id int) {
	if s.accepting(stage.MemoryMatch, "card") {
		s.memory.CardActivated(id)
	}
}

// PadActivated delivers a sequence pad press.
func (s *Session) PadActivated(id int) {
	if s.accepting(stage.SequenceRecall, "pad") {
		s.recall.PadActivated(id)
	}
}

// GiftOpened delivers the click on the gift box.
func (s *Session) GiftOpened() {
	if s.accepting(stage.Reveal, "gift") {
		s.reveal.GiftOpened()
	}
}

func (s *Session) accepting(id stage.ID, input string) bool {
	current, ok := s.sequencer.Current()
	if ok && current == id {
		return true
	}
	s.logger.Debug("input for inactive stage ignored", "input", input, "stage", current.String())
	return false
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Stage returns the active stage, or the last stage once finished.
func (s *Session) Stage() stage.ID {
	if current, ok := s.sequencer.Current(); ok {
		return current
	}
	if s.sequencer.Finished() {
		return stage.Order[len(stage.Order)-1]
	}
	return ""
}

// Started reports whether Start has run.
func (s *Session) Started() bool {
	return s.sequencer.started
}

// Progress returns the progress fraction shown to the player.
func (s *Session) Progress() float64 {
	return s.sequencer.Progress()
}

// Finished reports whether the reveal has completed.
func (s *Session) Finished() bool {
	return s.sequencer.Finished()
}

// Memory exposes the Memory Match engine for inspection.
func (s *Session) Memory() *MemoryMatch {
	return s.memory
}

// Recall exposes the Sequence Recall engine for inspection.
func (s *Session) Recall() *SequenceRecall {
	return s.recall
}

// Reveal exposes the reveal stage for inspection.
func (s *Session) Reveal() *Reveal {
	return s.reveal
}

// Journal returns the session's event log.
func (s *Session) Journal() *events.EventLog {
	return s.journal
}
