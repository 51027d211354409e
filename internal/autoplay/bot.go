// Package autoplay drives a quest session in virtual time with a scripted
// player. It is the harness behind `questd simulate` and the end-to-end tests.
package autoplay

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/MRamiBalles/GiftQuest/server/internal/domain/stage"
	"github.com/MRamiBalles/GiftQuest/server/internal/engine"
	"github.com/MRamiBalles/GiftQuest/server/internal/events"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
)

// ErrStepLimit is returned when the session did not finish within MaxSteps.
var ErrStepLimit = errors.New("autoplay step limit reached")

const wrongAnswer = "mouse"

// Options configures one scripted play-through.
type Options struct {
	SessionID string
	Seed      int64

	// Mistakes are made first, before the stage is solved.
	RiddleMistakes int
	MemoryMistakes int
	RecallMistakes int

	// Step is the virtual time between two bot decisions.
	Step     time.Duration
	MaxSteps int

	Persister events.EventPersister
	Presenter engine.Presenter
	Logger    *logger.Logger
}

// Result summarizes a play-through.
type Result struct {
	SessionID string
	Finished  bool
	Elapsed   time.Duration
	Steps     int
	Events    []events.GameEvent
}

// Count returns how many journal events of type t the run produced.
func (r *Result) Count(t events.EventType) int {
	n := 0
	for _, e := range r.Events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Bot is a scripted player with full knowledge of the board.
type Bot struct {
	opts    Options
	clock   *engine.VirtualScheduler
	session *engine.Session
	journal *events.EventLog
	logger  *logger.Logger

	riddleLeft  int
	memoryLeft  int
	recallLeft  int
	giftClicked bool
}

// New builds a bot and its session. Nothing runs until Run.
func New(opts Options) *Bot {
	if opts.SessionID == "" {
		opts.SessionID = fmt.Sprintf("sim-%d", opts.Seed)
	}
	if opts.Step <= 0 {
		opts.Step = 100 * time.Millisecond
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 10000
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	var feedback engine.Feedback
	if f, ok := opts.Presenter.(engine.Feedback); ok {
		feedback = f
	}

	clock := engine.NewVirtualScheduler()
	journal := events.NewEventLog(opts.SessionID, opts.Persister)
	session := engine.NewSession(engine.SessionOptions{
		ID:        opts.SessionID,
		Presenter: opts.Presenter,
		Feedback:  feedback,
		Scheduler: clock,
		Journal:   journal,
		Logger:    opts.Logger,
		Rand:      rand.New(rand.NewSource(opts.Seed)),
	})

	return &Bot{
		opts:       opts,
		clock:      clock,
		session:    session,
		journal:    journal,
		logger:     opts.Logger.With("bot", opts.SessionID),
		riddleLeft: opts.RiddleMistakes,
		memoryLeft: opts.MemoryMistakes,
		recallLeft: opts.RecallMistakes,
	}
}

// Session exposes the session being played.
func (b *Bot) Session() *engine.Session {
	return b.session
}

// Run plays until the quest finishes, ctx is cancelled or MaxSteps is hit.
// Journal write-through is flushed before returning.
func (b *Bot) Run(ctx context.Context) (*Result, error) {
	defer b.journal.Flush()

	b.session.Start()
	steps := 0
	for !b.session.Finished() {
		if err := ctx.Err(); err != nil {
			return b.result(steps), err
		}
		if steps >= b.opts.MaxSteps {
			return b.result(steps), ErrStepLimit
		}
		b.act()
		b.clock.Advance(b.opts.Step)
		steps++
	}

	b.logger.Info("autoplay finished", "steps", steps, "virtual_time", b.clock.Now().String())
	return b.result(steps), nil
}

func (b *Bot) result(steps int) *Result {
	return &Result{
		SessionID: b.session.ID(),
		Finished:  b.session.Finished(),
		Elapsed:   b.clock.Now(),
		Steps:     steps,
		Events:    b.journal.Replay(),
	}
}

// act makes at most one decision for the active stage.
func (b *Bot) act() {
	switch b.session.Stage() {
	case stage.Riddle:
		b.playRiddle()
	case stage.MemoryMatch:
		b.playMemory()
	case stage.SequenceRecall:
		b.playRecall()
	case stage.Reveal:
		if !b.giftClicked {
			b.giftClicked = true
			b.session.GiftOpened()
		}
	}
}

func (b *Bot) playRiddle() {
	if b.riddleLeft > 0 {
		b.riddleLeft--
		b.session.RiddleSubmitted(wrongAnswer)
		return
	}
	b.session.RiddleSubmitted("keyboard")
}

func (b *Bot) playMemory() {
	m := b.session.Memory()
	if !m.Active() || m.Locked() {
		return
	}
	if _, holding := m.Holding(); holding {
		return
	}

	unmatched := make(map[string][]int)
	var order []string
	for _, c := range m.Cards() {
		if c.Matched {
			continue
		}
		if _, ok := unmatched[c.Symbol]; !ok {
			order = append(order, c.Symbol)
		}
		unmatched[c.Symbol] = append(unmatched[c.Symbol], c.ID)
	}
	if len(order) == 0 {
		return
	}

	if b.memoryLeft > 0 && len(order) >= 2 {
		b.memoryLeft--
		b.flip(unmatched[order[0]][0], unmatched[order[1]][0])
		return
	}
	pair := unmatched[order[0]]
	b.flip(pair[0], pair[1])
}

func (b *Bot) flip(first, second int) {
	b.session.CardActivated(first)
	b.session.CardActivated(second)
}

func (b *Bot) playRecall() {
	r := b.session.Recall()
	if !r.InputEnabled() {
		return
	}
	seq := r.Sequence()
	if b.recallLeft > 0 {
		b.recallLeft--
		b.session.PadActivated((seq[0] + 1) % engine.DefaultRules().Pads)
		return
	}
	for _, pad := range seq {
		b.session.PadActivated(pad)
	}
}
