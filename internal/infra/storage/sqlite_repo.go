package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event GameEvent) error {
	payload := string(event.Payload)
	if payload == "" {
		payload = "null"
	}

	query := `
		INSERT INTO events (id, session_id, seq, timestamp, event_type, stage, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.SessionID, event.Seq, event.Timestamp.UnixNano(),
		event.EventType, event.Stage, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]GameEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []GameEvent
	for rows.Next() {
		var e GameEvent
		var ts int64
		var payload string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &ts, &e.EventType, &e.Stage, &payload); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(0, ts)
		if payload != "null" {
			e.Payload = []byte(payload)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

const eventColumns = `id, session_id, seq, timestamp, event_type, stage, payload`

func (r *SQLiteEventRepository) GetBySessionID(ctx context.Context, sessionID string) ([]GameEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE session_id = ? ORDER BY seq ASC`
	return r.getMany(ctx, query, sessionID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, sessionID string, eventType string) ([]GameEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE session_id = ? AND event_type = ? ORDER BY seq ASC`
	return r.getMany(ctx, query, sessionID, eventType)
}

// ---------------------------------------------------------
// SQLiteSessionRepository
// ---------------------------------------------------------

type SQLiteSessionRepository struct {
	db *sql.DB
}

func NewSQLiteSessionRepository(db *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db}
}

func (r *SQLiteSessionRepository) Touch(ctx context.Context, sessionID, stage string, seq int, at time.Time) error {
	query := `
		INSERT INTO sessions (session_id, started_at, current_stage, stage_seq, event_count, last_updated)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			started_at = MIN(sessions.started_at, excluded.started_at),
			current_stage = CASE WHEN excluded.stage_seq > sessions.stage_seq THEN excluded.current_stage ELSE sessions.current_stage END,
			stage_seq = MAX(sessions.stage_seq, excluded.stage_seq),
			event_count = sessions.event_count + 1,
			last_updated = MAX(sessions.last_updated, excluded.last_updated)
	`
	ns := at.UnixNano()
	if _, err := r.db.ExecContext(ctx, query, sessionID, ns, stage, seq, ns); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepository) Complete(ctx context.Context, sessionID string, at time.Time) error {
	query := `
		INSERT INTO sessions (session_id, started_at, completed_at, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			completed_at = excluded.completed_at,
			last_updated = MAX(sessions.last_updated, excluded.last_updated)
	`
	ns := at.UnixNano()
	if _, err := r.db.ExecContext(ctx, query, sessionID, ns, ns, ns); err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	return nil
}

const sessionColumns = `session_id, started_at, current_stage, completed_at, event_count, last_updated`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*SessionSummary, error) {
	var s SessionSummary
	var started, updated int64
	var completed sql.NullInt64
	if err := row.Scan(&s.SessionID, &started, &s.CurrentStage, &completed, &s.EventCount, &updated); err != nil {
		return nil, err
	}
	s.StartedAt = time.Unix(0, started)
	s.LastUpdated = time.Unix(0, updated)
	if completed.Valid {
		t := time.Unix(0, completed.Int64)
		s.CompletedAt = &t
	}
	return &s, nil
}

func (r *SQLiteSessionRepository) Get(ctx context.Context, sessionID string) (*SessionSummary, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE session_id = ?`
	s, err := scanSession(r.db.QueryRowContext(ctx, query, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

func (r *SQLiteSessionRepository) List(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY last_updated DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
