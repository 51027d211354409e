package engine

import (
	"fmt"
	"math/rand"

	"github.com/MRamiBalles/GiftQuest/server/internal/domain/stage"
	"github.com/MRamiBalles/GiftQuest/server/internal/events"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
)

// RecallState is the state of the Sequence Recall machine.
type RecallState int

const (
	RecallIdle RecallState = iota
	// RecallPresenting: input disabled, playback pending or in progress.
	RecallPresenting
	RecallAwaitingInput
	// RecallResolving: the round was entered correctly; next round or advance is scheduled.
	RecallResolving
	// RecallFailed: a wrong pad was entered; a full restart is scheduled.
	RecallFailed
	RecallDone
)

func (s RecallState) String() string {
	switch s {
	case RecallIdle:
		return "idle"
	case RecallPresenting:
		return "presenting"
	case RecallAwaitingInput:
		return "awaiting_input"
	case RecallResolving:
		return "resolving"
	case RecallFailed:
		return "failed"
	case RecallDone:
		return "done"
	default:
		return "unknown"
	}
}

// SequenceRecall runs the watch-then-repeat stage.
type SequenceRecall struct {
	presenter Presenter
	feedback  Feedback
	scheduler Scheduler
	advancer  Advancer
	journal   *events.EventLog
	logger    *logger.Logger
	rng       *rand.Rand
	rules     Rules

	sequence     []int
	buffer       []int
	round        int
	state        RecallState
	inputEnabled bool
	// gen invalidates callbacks scheduled before the latest restart.
	gen int
}

// NewSequenceRecall creates an idle engine; Start begins round 1.
func NewSequenceRecall(p Presenter, f Feedback, s Scheduler, a Advancer, journal *events.EventLog, log *logger.Logger, rng *rand.Rand, rules Rules) *SequenceRecall {
	return &SequenceRecall{
		presenter: p,
		feedback:  f,
		scheduler: s,
		advancer:  a,
		journal:   journal,
		logger:    log,
		rng:       rng,
		rules:     rules,
	}
}

// Start clears the sequence, the buffer and the round counter, then begins round 1.
func (r *SequenceRecall) Start() {
	r.gen++
	r.sequence = r.sequence[:0]
	r.buffer = r.buffer[:0]
	r.round = 0
	r.beginRound()
}

func (r *SequenceRecall) beginRound() {
	r.round++
	r.sequence = append(r.sequence, r.rng.Intn(r.rules.Pads))
	r.buffer = r.buffer[:0]
	r.inputEnabled = false
	r.state = RecallPresenting

	r.presenter.SetStatusText(stage.SequenceRecall, fmt.Sprintf("Level %d", r.round))
	r.journal.Record(events.EventTypeRoundStarted, stage.SequenceRecall.String(), map[string]int{
		"round": r.round, "length": len(r.sequence),
	})

	gen := r.gen
	r.scheduler.After(r.rules.PreRoll, func() {
		if gen == r.gen {
			r.playback(gen)
		}
	})
}

func (r *SequenceRecall) playback(gen int) {
	seq := append([]int(nil), r.sequence...)
	i := 0
	r.scheduler.EveryUntil(r.rules.PlaybackInterval, func() {
		r.pulse(seq[i])
		i++
		if i == len(seq) {
			r.inputEnabled = true
			r.state = RecallAwaitingInput
		}
	}, func() bool {
		return gen != r.gen || i >= len(seq)
	})
}

func (r *SequenceRecall) pulse(pad int) {
	r.presenter.SetPadActive(pad, true)
	r.scheduler.After(r.rules.PadPulse, func() {
		r.presenter.SetPadActive(pad, false)
	})
}

// PadActivated handles one player press. It only has an effect while input is enabled.
func (r *SequenceRecall) PadActivated(pad int) {
	if !r.inputEnabled {
		r.logger.Debug("pad ignored, input disabled", "pad", pad, "state", r.state.String())
		return
	}
	if pad < 0 || pad >= r.rules.Pads {
		r.logger.Warn("unknown pad", "session", r.journal.SessionID(), "pad", pad)
		r.journal.Record(events.EventTypeFault, stage.SequenceRecall.String(), map[string]interface{}{"reason": "unknown pad", "pad": pad})
		return
	}

	r.pulse(pad)
	r.buffer = append(r.buffer, pad)
	pos := len(r.buffer) - 1

	if r.buffer[pos] != r.sequence[pos] {
		r.inputEnabled = false
		r.state = RecallFailed
		r.presenter.SetStatusText(stage.SequenceRecall, "Try again!")
		r.feedback.Cue(CueError)
		r.journal.Record(events.EventTypeSequenceFailed, stage.SequenceRecall.String(), map[string]int{
			"round": r.round, "position": pos, "expected": r.sequence[pos], "got": pad,
		})

		gen := r.gen
		r.scheduler.After(r.rules.RestartDelay, func() {
			if gen == r.gen {
				r.Start()
			}
		})
		return
	}

	if len(r.buffer) < len(r.sequence) {
		return
	}

	r.inputEnabled = false
	r.state = RecallResolving
	gen := r.gen

	if r.round == r.rules.MaxRounds {
		r.presenter.SetStatusText(stage.SequenceRecall, "Perfect!")
		r.journal.Record(events.EventTypeSequenceCompleted, stage.SequenceRecall.String(), map[string]int{"rounds": r.round})
		r.scheduler.After(r.rules.RecallDoneDelay, func() {
			if gen != r.gen {
				return
			}
			r.state = RecallDone
			r.advancer.Advance(stage.SequenceRecall)
		})
		return
	}

	r.scheduler.After(r.rules.RoundDelay, func() {
		if gen == r.gen {
			r.beginRound()
		}
	})
}

// Sequence returns a copy of the current target sequence.
func (r *SequenceRecall) Sequence() []int {
	return append([]int(nil), r.sequence...)
}

// Buffer returns a copy of what the player has entered this round.
func (r *SequenceRecall) Buffer() []int {
	return append([]int(nil), r.buffer...)
}

// Round returns the round counter.
func (r *SequenceRecall) Round() int {
	return r.round
}

// State returns the current machine state.
func (r *SequenceRecall) State() RecallState {
	return r.state
}

// InputEnabled reports whether PadActivated is currently accepted.
func (r *SequenceRecall) InputEnabled() bool {
	return r.inputEnabled
}

// Active reports whether the engine is between Start and its final advance.
func (r *SequenceRecall) Active() bool {
	return r.state != RecallIdle && r.state != RecallDone
}
