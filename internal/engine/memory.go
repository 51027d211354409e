package engine

import (
	"fmt"
	"math/rand"

	"github.com/MRamiBalles/GiftQuest/server/internal/domain/card"
	"github.com/MRamiBalles/GiftQuest/server/internal/domain/stage"
	"github.com/MRamiBalles/GiftQuest/server/internal/events"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
)

// matchRound is the state of one Memory Match round.
// At most one card is held as the first flip; locked means no flip is accepted.
type matchRound struct {
	cards        []card.Card
	first        int
	holding      bool
	locked       bool
	matchedPairs int
	pairs        int
}

// MemoryMatch runs the pair-matching stage.
type MemoryMatch struct {
	presenter Presenter
	feedback  Feedback
	scheduler Scheduler
	advancer  Advancer
	journal   *events.EventLog
	logger    *logger.Logger
	rng       *rand.Rand
	rules     Rules

	round  matchRound
	active bool
	// gen invalidates callbacks scheduled by an earlier round.
	gen int
}

// NewMemoryMatch creates an idle engine; Start deals the first round.
func NewMemoryMatch(p Presenter, f Feedback, s Scheduler, a Advancer, journal *events.EventLog, log *logger.Logger, rng *rand.Rand, rules Rules) *MemoryMatch {
	return &MemoryMatch{
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

// Start deals 2*Pairs shuffled cards face down and resets the round.
func (m *MemoryMatch) Start(symbols []string) error {
	deck, err := card.NewDeck(symbols, m.rules.Pairs, m.rng)
	if err != nil {
		return fmt.Errorf("deal memory deck: %w", err)
	}

	m.gen++
	m.round = matchRound{cards: deck, pairs: m.rules.Pairs}
	m.active = true

	m.presenter.DealCards(len(deck))
	m.journal.Record(events.EventTypeDeckDealt, stage.MemoryMatch.String(), map[string]int{"cards": len(deck)})
	return nil
}

// CardActivated is the single input of the stage.
func (m *MemoryMatch) CardActivated(id int) {
	if !m.active {
		m.logger.Debug("card ignored, memory match inactive", "card", id)
		return
	}
	if id < 0 || id >= len(m.round.cards) {
		m.logger.Warn("unknown card", "session", m.journal.SessionID(), "card", id)
		m.journal.Record(events.EventTypeFault, stage.MemoryMatch.String(), map[string]interface{}{"reason": "unknown card", "card": id})
		return
	}

	r := &m.round
	c := &r.cards[id]
	if r.locked || c.Matched || (r.holding && r.first == id) {
		return
	}

	m.feedback.Cue(CueClick)
	m.presenter.SetCardFace(id, c.Symbol, true)

	if !r.holding {
		r.holding = true
		r.first = id
		m.journal.Record(events.EventTypeCardFlipped, stage.MemoryMatch.String(), map[string]int{"card": id})
		return
	}

	first := &r.cards[r.first]
	if first.Symbol == c.Symbol {
		first.Matched = true
		c.Matched = true
		r.holding = false
		r.matchedPairs++
		m.feedback.Cue(CueSuccess)
		m.journal.Record(events.EventTypePairMatched, stage.MemoryMatch.String(), map[string]int{
			"first": first.ID, "second": id, "matched_pairs": r.matchedPairs,
		})

		if r.matchedPairs == r.pairs {
			m.active = false
			m.scheduler.After(m.rules.MatchCompleteDelay, func() {
				m.advancer.Advance(stage.MemoryMatch)
			})
		}
		return
	}

	r.locked = true
	m.feedback.Cue(CueError)
	m.journal.Record(events.EventTypePairMissed, stage.MemoryMatch.String(), map[string]int{"first": first.ID, "second": id})

	a, b, gen := r.first, id, m.gen
	m.scheduler.After(m.rules.MismatchDelay, func() {
		if gen != m.gen {
			return
		}
		m.presenter.SetCardFace(a, "", false)
		m.presenter.SetCardFace(b, "", false)
		m.round.holding = false
		m.round.locked = false
	})
}

// Cards returns a copy of the dealt deck.
func (m *MemoryMatch) Cards() []card.Card {
	out := make([]card.Card, len(m.round.cards))
	copy(out, m.round.cards)
	return out
}

// MatchedPairs returns the number of pairs found this round.
func (m *MemoryMatch) MatchedPairs() int {
	return m.round.matchedPairs
}

// Locked reports whether a mismatch is being shown.
func (m *MemoryMatch) Locked() bool {
	return m.round.locked
}

// Holding returns the card waiting for its second flip, if any.
func (m *MemoryMatch) Holding() (int, bool) {
	return m.round.first, m.round.holding
}

// Active reports whether the engine is accepting flips.
func (m *MemoryMatch) Active() bool {
	return m.active
}
