// Package storage - recap.go
// Builds the end-of-quest recap of a session from its stored journal.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MRamiBalles/GiftQuest/server/internal/domain/stage"
	"github.com/MRamiBalles/GiftQuest/server/internal/events"
)

// Recapper reads the stored journal back. Nothing is ever resumed from it.
type Recapper struct {
	eventRepo   EventRepository
	sessionRepo SessionRepository
}

// NewRecapper creates a recap builder. sessionRepo may be nil.
func NewRecapper(eventRepo EventRepository, sessionRepo SessionRepository) *Recapper {
	return &Recapper{eventRepo: eventRepo, sessionRepo: sessionRepo}
}

// RecapEvent is a simplified event for the recap screen.
type RecapEvent struct {
	Seq       int    `json:"seq"`
	Timestamp string `json:"timestamp"`
	EventType string `json:"event_type"`
	Stage     string `json:"stage"`
	Summary   string `json:"summary"` // Human-readable description
	Impact    string `json:"impact"`  // "POSITIVE", "NEGATIVE", "NEUTRAL"
}

// Mistakes counts the recoverable errors the player made.
type Mistakes struct {
	Riddle int `json:"riddle"`
	Memory int `json:"memory"`
	Recall int `json:"recall"`
}

// Recap is what the journal says about one session.
type Recap struct {
	SessionID string          `json:"session_id"`
	Completed bool            `json:"completed"`
	LastStage string          `json:"last_stage"`
	Duration  time.Duration   `json:"duration"`
	Mistakes  Mistakes        `json:"mistakes"`
	Faults    int             `json:"faults"`
	Counts    map[string]int  `json:"counts"`
	Events    []RecapEvent    `json:"events"`
	Summary   *SessionSummary `json:"summary,omitempty"`
}

// Journal returns the raw stored events of a session.
func (r *Recapper) Journal(ctx context.Context, sessionID string) ([]GameEvent, error) {
	evs, err := r.eventRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session events: %w", err)
	}
	if len(evs) == 0 {
		return nil, ErrSessionNotFound
	}
	return evs, nil
}

// BuildRecap summarizes a stored session.
func (r *Recapper) BuildRecap(ctx context.Context, sessionID string) (*Recap, error) {
	evs, err := r.Journal(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	recap := &Recap{
		SessionID: sessionID,
		Counts:    make(map[string]int),
		Events:    make([]RecapEvent, 0, len(evs)),
	}
	for _, e := range evs {
		recap.Counts[e.EventType]++
		switch events.EventType(e.EventType) {
		case events.EventTypeRiddleRejected:
			recap.Mistakes.Riddle++
		case events.EventTypePairMissed:
			recap.Mistakes.Memory++
		case events.EventTypeSequenceFailed:
			recap.Mistakes.Recall++
		case events.EventTypeFault:
			recap.Faults++
		case events.EventTypeSessionCompleted:
			recap.Completed = true
		case events.EventTypeStageActivated:
			recap.LastStage = e.Stage
		}

		recap.Events = append(recap.Events, RecapEvent{
			Seq:       e.Seq,
			Timestamp: e.Timestamp.Format("15:04:05.000"),
			EventType: e.EventType,
			Stage:     e.Stage,
			Summary:   summarizeEvent(e),
			Impact:    determineImpact(e),
		})
	}
	recap.Duration = evs[len(evs)-1].Timestamp.Sub(evs[0].Timestamp)

	if r.sessionRepo != nil {
		summary, err := r.sessionRepo.Get(ctx, sessionID)
		if err == nil {
			recap.Summary = summary
		}
	}
	return recap, nil
}

// summarizeEvent creates a human-readable summary.
func summarizeEvent(e GameEvent) string {
	var p map[string]interface{}
	if len(e.Payload) > 0 {
		_ = json.Unmarshal(e.Payload, &p)
	}

	switch events.EventType(e.EventType) {
	case events.EventTypeSessionStarted:
		return "The quest began."
	case events.EventTypeStageActivated:
		return stage.ID(e.Stage).Title() + " is up."
	case events.EventTypeStageCompleted:
		return stage.ID(e.Stage).Title() + " cleared."
	case events.EventTypeSessionCompleted:
		return "The gift was revealed."
	case events.EventTypeRiddleAccepted:
		return "The riddle was solved."
	case events.EventTypeRiddleRejected:
		return fmt.Sprintf("Guessed %q, not quite.", p["answer"])
	case events.EventTypeDeckDealt:
		return fmt.Sprintf("%v cards were dealt.", p["cards"])
	case events.EventTypeCardFlipped:
		return "A card was turned over."
	case events.EventTypePairMatched:
		return fmt.Sprintf("Pair found (%v so far).", p["matched_pairs"])
	case events.EventTypePairMissed:
		return "Those two did not match."
	case events.EventTypeRoundStarted:
		return fmt.Sprintf("Level %v started.", p["round"])
	case events.EventTypeSequenceFailed:
		return "Wrong pad, back to level 1."
	case events.EventTypeSequenceCompleted:
		return "Every level repeated perfectly."
	case events.EventTypeGiftOpened:
		return "The gift box was opened."
	case events.EventTypeFault:
		return fmt.Sprintf("Ignored: %v.", p["reason"])
	default:
		return "Something happened."
	}
}

// determineImpact classifies the event impact.
func determineImpact(e GameEvent) string {
	switch events.EventType(e.EventType) {
	case events.EventTypeRiddleRejected, events.EventTypePairMissed, events.EventTypeSequenceFailed, events.EventTypeFault:
		return "NEGATIVE"
	case events.EventTypeRiddleAccepted, events.EventTypePairMatched, events.EventTypeSequenceCompleted,
		events.EventTypeStageCompleted, events.EventTypeSessionCompleted:
		return "POSITIVE"
	default:
		return "NEUTRAL"
	}
}
