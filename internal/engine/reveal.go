package engine

import (
	"github.com/MRamiBalles/GiftQuest/server/internal/domain/stage"
	"github.com/MRamiBalles/GiftQuest/server/internal/events"
)

// Reveal is the final stage: open the gift, then celebrate.
type Reveal struct {
	presenter Presenter
	feedback  Feedback
	scheduler Scheduler
	advancer  Advancer
	journal   *events.EventLog
	rules     Rules

	opened     bool
	celebrated bool
}

// NewReveal creates the reveal stage.
func NewReveal(p Presenter, f Feedback, s Scheduler, a Advancer, journal *events.EventLog, rules Rules) *Reveal {
	return &Reveal{
		presenter: p,
		feedback:  f,
		scheduler: s,
		advancer:  a,
		journal:   journal,
		rules:     rules,
	}
}

// GiftOpened handles the click on the gift box. Only the first one counts.
func (r *Reveal) GiftOpened() {
	if r.opened {
		return
	}
	r.opened = true
	r.feedback.Cue(CueMagical)
	r.journal.Record(events.EventTypeGiftOpened, stage.Reveal.String(), nil)

	r.scheduler.After(r.rules.RevealDelay, func() {
		r.celebrated = true
		r.presenter.ShowCelebration()
		r.feedback.Cue(CueCelebrate)
		r.presenter.SetProgress(1)
		r.advancer.Advance(stage.Reveal)
	})
}

// Celebrated reports whether the celebration view is showing.
func (r *Reveal) Celebrated() bool {
	return r.celebrated
}
