package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MRamiBalles/GiftQuest/server/internal/events"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/metrics"
)

// writeTimeout bounds one write-through; the session never waits on it.
const writeTimeout = 5 * time.Second

// JournalWriter persists journal events and keeps the session summary and
// metrics in step. Either repository may be nil; metrics are always updated.
type JournalWriter struct {
	events   EventRepository
	sessions SessionRepository
	metrics  *metrics.Collector
}

// NewJournalWriter creates an events.EventPersister.
func NewJournalWriter(eventRepo EventRepository, sessionRepo SessionRepository, m *metrics.Collector) *JournalWriter {
	if m == nil {
		m = metrics.Get()
	}
	return &JournalWriter{events: eventRepo, sessions: sessionRepo, metrics: m}
}

// Append implements events.EventPersister.
func (w *JournalWriter) Append(e events.GameEvent) error {
	w.observe(e.Type)

	start := time.Now()
	err := w.write(e)
	if w.events != nil {
		w.metrics.RecordEventWrite(time.Since(start), err)
	}
	return err
}

func (w *JournalWriter) write(e events.GameEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if w.events != nil {
		record, err := ToRecord(e)
		if err != nil {
			return err
		}
		if err := w.events.Append(ctx, record); err != nil {
			return err
		}
	}

	if w.sessions == nil {
		return nil
	}
	if err := w.sessions.Touch(ctx, e.SessionID, e.Stage, e.Seq, e.Timestamp); err != nil {
		return err
	}
	if e.Type == events.EventTypeSessionCompleted {
		return w.sessions.Complete(ctx, e.SessionID, e.Timestamp)
	}
	return nil
}

func (w *JournalWriter) observe(t events.EventType) {
	switch t {
	case events.EventTypeSessionStarted:
		w.metrics.RecordSessionStarted()
	case events.EventTypeSessionCompleted:
		w.metrics.RecordSessionCompleted()
	case events.EventTypeStageCompleted:
		w.metrics.RecordStageAdvance()
	case events.EventTypePairMissed:
		w.metrics.RecordMemoryMiss()
	case events.EventTypeSequenceFailed:
		w.metrics.RecordRecallRestart()
	case events.EventTypeRiddleRejected:
		w.metrics.RecordRiddleRejection()
	case events.EventTypeFault:
		w.metrics.RecordFault()
	}
}

// ToRecord converts a journal event to its stored form.
func ToRecord(e events.GameEvent) (GameEvent, error) {
	var payload json.RawMessage
	if e.Payload != nil {
		b, err := json.Marshal(e.Payload)
		if err != nil {
			return GameEvent{}, fmt.Errorf("failed to marshal payload: %w", err)
		}
		payload = b
	}
	return GameEvent{
		ID:        e.ID,
		SessionID: e.SessionID,
		Seq:       e.Seq,
		Timestamp: e.Timestamp,
		EventType: string(e.Type),
		Stage:     e.Stage,
		Payload:   payload,
	}, nil
}
