// Package network - journal.go
// Read-only journal and recap endpoints for finished or running sessions.
package network

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/MRamiBalles/GiftQuest/server/internal/infra/storage"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
)

// JournalSource is what the journal endpoints read from.
type JournalSource interface {
	Journal(ctx context.Context, sessionID string) ([]storage.GameEvent, error)
	BuildRecap(ctx context.Context, sessionID string) (*storage.Recap, error)
}

// JournalHandler provides the journal API. A nil source means storage is
// disabled and every request gets 503.
type JournalHandler struct {
	source JournalSource
	logger *logger.Logger
}

// NewJournalHandler creates a new journal handler.
func NewJournalHandler(source JournalSource, log *logger.Logger) *JournalHandler {
	return &JournalHandler{source: source, logger: log}
}

// JournalResponse is the API response for a session journal.
type JournalResponse struct {
	SessionID   string              `json:"session_id"`
	TotalEvents int                 `json:"total_events"`
	FilteredBy  string              `json:"filtered_by,omitempty"`
	GeneratedAt string              `json:"generated_at"`
	Events      []storage.GameEvent `json:"events"`
}

// HandleJournal returns the stored events of a session.
// GET /api/sessions/{id}/journal?type=PAIR_MISSED
func (jh *JournalHandler) HandleJournal(w http.ResponseWriter, r *http.Request) {
	if jh.source == nil {
		jh.jsonError(w, "Journal storage disabled", http.StatusServiceUnavailable)
		return
	}
	sessionID := r.PathValue("id")

	all, err := jh.source.Journal(r.Context(), sessionID)
	if err != nil {
		jh.fail(w, sessionID, err)
		return
	}

	eventType := r.URL.Query().Get("type")
	filtered := make([]storage.GameEvent, 0, len(all))
	for _, e := range all {
		if eventType != "" && e.EventType != eventType {
			continue
		}
		filtered = append(filtered, e)
	}

	jh.writeJSON(w, JournalResponse{
		SessionID:   sessionID,
		TotalEvents: len(filtered),
		FilteredBy:  eventType,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      filtered,
	})
}

// HandleRecap returns the recap of a session.
// GET /api/sessions/{id}/recap
func (jh *JournalHandler) HandleRecap(w http.ResponseWriter, r *http.Request) {
	if jh.source == nil {
		jh.jsonError(w, "Journal storage disabled", http.StatusServiceUnavailable)
		return
	}
	sessionID := r.PathValue("id")

	recap, err := jh.source.BuildRecap(r.Context(), sessionID)
	if err != nil {
		jh.fail(w, sessionID, err)
		return
	}
	jh.writeJSON(w, recap)
}

// RegisterRoutes sets up the journal API routes.
func (jh *JournalHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sessions/{id}/journal", jh.HandleJournal)
	mux.HandleFunc("GET /api/sessions/{id}/recap", jh.HandleRecap)
}

func (jh *JournalHandler) fail(w http.ResponseWriter, sessionID string, err error) {
	if errors.Is(err, storage.ErrSessionNotFound) {
		jh.jsonError(w, "Session not found", http.StatusNotFound)
		return
	}
	jh.logger.Error("journal read failed", "session", sessionID, "error", err)
	jh.jsonError(w, "Internal error", http.StatusInternalServerError)
}

func (jh *JournalHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// jsonError sends an error response.
func (jh *JournalHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
