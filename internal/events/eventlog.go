// Package events provides the per-session journal of a quest.
// It is an append-only audit trail; nothing ever resumes a session from it.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a journal event.
type EventType string

const (
	EventTypeSessionStarted    EventType = "SESSION_STARTED"
	EventTypeStageActivated    EventType = "STAGE_ACTIVATED"
	EventTypeStageCompleted    EventType = "STAGE_COMPLETED"
	EventTypeSessionCompleted  EventType = "SESSION_COMPLETED"
	EventTypeRiddleAccepted    EventType = "RIDDLE_ACCEPTED"
	EventTypeRiddleRejected    EventType = "RIDDLE_REJECTED"
	EventTypeDeckDealt         EventType = "DECK_DEALT"
	EventTypeCardFlipped       EventType = "CARD_FLIPPED"
	EventTypePairMatched       EventType = "PAIR_MATCHED"
	EventTypePairMissed        EventType = "PAIR_MISSED"
	EventTypeRoundStarted      EventType = "ROUND_STARTED"
	EventTypeSequenceFailed    EventType = "SEQUENCE_FAILED"
	EventTypeSequenceCompleted EventType = "SEQUENCE_COMPLETED"
	EventTypeGiftOpened        EventType = "GIFT_OPENED"
	// EventTypeFault records an ignored contract violation.
	EventTypeFault EventType = "FAULT"
)

// GameEvent represents an immutable record of something that happened in a session.
type GameEvent struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Seq       int         `json:"seq"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	Stage     string      `json:"stage"`
	Payload   interface{} `json:"payload,omitempty"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog is the in-memory append-only journal of one session.
type EventLog struct {
	mu        sync.RWMutex
	sessionID string
	events    []GameEvent
	persister EventPersister
	onError   func(GameEvent, error)
	pending   sync.WaitGroup
	now       func() time.Time
}

// NewEventLog creates a journal for sessionID with an optional persister.
func NewEventLog(sessionID string, persister EventPersister) *EventLog {
	return &EventLog{
		sessionID: sessionID,
		events:    make([]GameEvent, 0),
		persister: persister,
		now:       time.Now,
	}
}

// OnPersistError registers a callback for write-through failures.
// Persistence never affects the session itself.
func (el *EventLog) OnPersistError(fn func(GameEvent, error)) {
	el.mu.Lock()
	el.onError = fn
	el.mu.Unlock()
}

// SessionID returns the session this journal belongs to.
func (el *EventLog) SessionID() string {
	return el.sessionID
}

// Record builds and appends an event of the given type.
func (el *EventLog) Record(eventType EventType, stage string, payload interface{}) GameEvent {
	return el.Append(GameEvent{Type: eventType, Stage: stage, Payload: payload})
}

// Append adds a new event to the log, filling ID, session, sequence and timestamp.
// Events are immutable once appended.
func (el *EventLog) Append(event GameEvent) GameEvent {
	el.mu.Lock()
	defer el.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = el.now()
	}
	event.SessionID = el.sessionID
	event.Seq = len(el.events) + 1
	el.events = append(el.events, event)

	if el.persister != nil {
		// Write through off the session loop; Seq keeps the stored order.
		el.pending.Add(1)
		onError := el.onError
		go func(e GameEvent) {
			defer el.pending.Done()
			if err := el.persister.Append(e); err != nil && onError != nil {
				onError(e, err)
			}
		}(event)
	}
	return event
}

// Flush blocks until every write-through started so far has finished.
func (el *EventLog) Flush() {
	el.pending.Wait()
}

// Replay returns a copy of the full history of the session.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	out := make([]GameEvent, len(el.events))
	copy(out, el.events)
	return out
}

// ByType returns all events of a given type, in order.
func (el *EventLog) ByType(eventType EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

// Count returns how many events of a given type were recorded.
func (el *EventLog) Count(eventType EventType) int {
	el.mu.RLock()
	defer el.mu.RUnlock()

	n := 0
	for _, e := range el.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// Len returns the number of recorded events.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}
