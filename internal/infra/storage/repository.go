// Package storage provides the persistence layer for quest journals.
// This package implements the repository pattern to keep the engine pure.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when no journal exists for a session.
var ErrSessionNotFound = errors.New("session not found")

// GameEvent is the persisted form of a journal event.
// The engine does NOT import this; it writes through events.EventPersister.
type GameEvent struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Seq       int             `json:"seq"`
	Timestamp time.Time       `json:"timestamp"`
	EventType string          `json:"event_type"`
	Stage     string          `json:"stage"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event GameEvent) error

	// GetBySessionID retrieves all events of a session in journal order.
	GetBySessionID(ctx context.Context, sessionID string) ([]GameEvent, error)

	// GetByEventType retrieves all events of a specific type for a session.
	GetByEventType(ctx context.Context, sessionID string, eventType string) ([]GameEvent, error)
}

// SessionSummary is the quick-read state of a session, kept next to its journal.
type SessionSummary struct {
	SessionID    string     `json:"session_id"`
	StartedAt    time.Time  `json:"started_at"`
	CurrentStage string     `json:"current_stage"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	EventCount   int        `json:"event_count"`
	LastUpdated  time.Time  `json:"last_updated"`
}

// Completed reports whether the session reached the end of the quest.
func (s SessionSummary) Completed() bool {
	return s.CompletedAt != nil
}

// SessionRepository defines the interface for session summaries.
// Writes may arrive out of order; seq decides which stage is current.
type SessionRepository interface {
	// Touch records that an event with the given seq happened in stage.
	Touch(ctx context.Context, sessionID, stage string, seq int, at time.Time) error

	// Complete marks the session as finished.
	Complete(ctx context.Context, sessionID string, at time.Time) error

	// Get returns one summary or ErrSessionNotFound.
	Get(ctx context.Context, sessionID string) (*SessionSummary, error)

	// List returns the most recently updated sessions first.
	List(ctx context.Context, limit int) ([]SessionSummary, error)
}
