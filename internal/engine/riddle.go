package engine

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/MRamiBalles/GiftQuest/server/internal/domain/stage"
	"github.com/MRamiBalles/GiftQuest/server/internal/events"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
)

const riddleRejectedText = "That's not it… try again!"

// Riddle is the first stage: one free-text answer.
type Riddle struct {
	presenter Presenter
	feedback  Feedback
	scheduler Scheduler
	advancer  Advancer
	journal   *events.EventLog
	logger    *logger.Logger
	rules     Rules

	answer  string
	keyword string
	solved  bool
	// shown counts rejections so only the latest one clears the error text.
	shown int
}

// NewRiddle creates the riddle stage.
func NewRiddle(p Presenter, f Feedback, s Scheduler, a Advancer, journal *events.EventLog, log *logger.Logger, rules Rules) *Riddle {
	return &Riddle{
		presenter: p,
		feedback:  f,
		scheduler: s,
		advancer:  a,
		journal:   journal,
		logger:    log,
		rules:     rules,
		answer:    normalizeAnswer(rules.RiddleAnswer),
		keyword:   normalizeAnswer(rules.RiddleKeyword),
	}
}

// Accepts reports whether text solves the riddle: the exact answer, or any
// text containing the keyword, compared trimmed and case-folded.
func (r *Riddle) Accepts(text string) bool {
	v := normalizeAnswer(text)
	if v == "" {
		return false
	}
	return v == r.answer || (r.keyword != "" && strings.Contains(v, r.keyword))
}

// Submitted handles one answer.
func (r *Riddle) Submitted(text string) {
	if r.solved {
		return
	}

	if r.Accepts(text) {
		r.solved = true
		r.journal.Record(events.EventTypeRiddleAccepted, stage.Riddle.String(), nil)
		r.advancer.Advance(stage.Riddle)
		return
	}

	r.feedback.Cue(CueError)
	r.presenter.SetStatusText(stage.Riddle, riddleRejectedText)
	r.journal.Record(events.EventTypeRiddleRejected, stage.Riddle.String(), map[string]string{"answer": text})

	r.shown++
	shown := r.shown
	r.scheduler.After(r.rules.RiddleErrorDisplay, func() {
		if shown == r.shown && !r.solved {
			r.presenter.SetStatusText(stage.Riddle, "")
		}
	})
}

// Solved reports whether the riddle has been answered.
func (r *Riddle) Solved() bool {
	return r.solved
}

func normalizeAnswer(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
