// Package metrics provides observability for the quest server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers gameplay and transport counters.
type Collector struct {
	// Session metrics
	SessionsStarted   int64
	SessionsCompleted int64
	StageAdvances     int64
	LastStageAdvance  time.Time

	// Mini-game outcomes
	MemoryMisses     int64
	RecallRestarts   int64
	RiddleRejections int64
	Faults           int64

	// Journal metrics
	EventsWritten    int64
	EventWriteLatSum int64 // nanoseconds
	EventWriteLatMax int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = New()

// New returns an empty collector. Tests use their own; the server uses Get.
func New() *Collector {
	return &Collector{StartTime: time.Now()}
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordSessionStarted counts a session whose first stage became active.
func (c *Collector) RecordSessionStarted() {
	atomic.AddInt64(&c.SessionsStarted, 1)
}

// RecordSessionCompleted counts a session that reached the terminal stage.
func (c *Collector) RecordSessionCompleted() {
	atomic.AddInt64(&c.SessionsCompleted, 1)
}

// RecordStageAdvance counts one successful stage transition.
func (c *Collector) RecordStageAdvance() {
	atomic.AddInt64(&c.StageAdvances, 1)

	c.mu.Lock()
	c.LastStageAdvance = time.Now()
	c.mu.Unlock()
}

// RecordMemoryMiss counts a mismatched pair.
func (c *Collector) RecordMemoryMiss() {
	atomic.AddInt64(&c.MemoryMisses, 1)
}

// RecordRecallRestart counts a failed sequence that restarted the game.
func (c *Collector) RecordRecallRestart() {
	atomic.AddInt64(&c.RecallRestarts, 1)
}

// RecordRiddleRejection counts a wrong riddle answer.
func (c *Collector) RecordRiddleRejection() {
	atomic.AddInt64(&c.RiddleRejections, 1)
}

// RecordFault counts a contract violation that was ignored.
func (c *Collector) RecordFault() {
	atomic.AddInt64(&c.Faults, 1)
}

// RecordEventWrite records a journal write to the database.
func (c *Collector) RecordEventWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	atomic.AddInt64(&c.EventWriteLatSum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.EventWriteLatMax) {
		atomic.StoreInt64(&c.EventWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error, including dropped outbound messages.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	eventsWritten := atomic.LoadInt64(&c.EventsWritten)

	var eventAvg float64
	if eventsWritten > 0 {
		eventAvg = float64(atomic.LoadInt64(&c.EventWriteLatSum)) / float64(eventsWritten) / 1e6 // ms
	}

	lastAdvance := ""
	if !c.LastStageAdvance.IsZero() {
		lastAdvance = c.LastStageAdvance.Format(time.RFC3339)
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"sessions": map[string]interface{}{
			"started":            atomic.LoadInt64(&c.SessionsStarted),
			"completed":          atomic.LoadInt64(&c.SessionsCompleted),
			"stage_advances":     atomic.LoadInt64(&c.StageAdvances),
			"last_stage_advance": lastAdvance,
		},

		"games": map[string]interface{}{
			"memory_misses":     atomic.LoadInt64(&c.MemoryMisses),
			"recall_restarts":   atomic.LoadInt64(&c.RecallRestarts),
			"riddle_rejections": atomic.LoadInt64(&c.RiddleRejections),
			"faults":            atomic.LoadInt64(&c.Faults),
		},

		"events": map[string]interface{}{
			"written":          eventsWritten,
			"avg_write_lat_ms": eventAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.EventWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		json.NewEncoder(w).Encode(c.Snapshot())
	}
}

// PrometheusHandler returns metrics in Prometheus text format.
func (c *Collector) PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		counter := func(name, help string, v int64) {
			fmt.Fprintf(w, "# HELP %s %s\n", name, help)
			fmt.Fprintf(w, "# TYPE %s counter\n", name)
			fmt.Fprintf(w, "%s %d\n\n", name, v)
		}

		counter("quest_sessions_started", "Sessions whose first stage became active", atomic.LoadInt64(&c.SessionsStarted))
		counter("quest_sessions_completed", "Sessions that reached the reveal", atomic.LoadInt64(&c.SessionsCompleted))
		counter("quest_stage_advances", "Successful stage transitions", atomic.LoadInt64(&c.StageAdvances))
		counter("quest_memory_misses", "Mismatched memory pairs", atomic.LoadInt64(&c.MemoryMisses))
		counter("quest_recall_restarts", "Sequence recall restarts", atomic.LoadInt64(&c.RecallRestarts))
		counter("quest_riddle_rejections", "Rejected riddle answers", atomic.LoadInt64(&c.RiddleRejections))
		counter("quest_faults", "Ignored contract violations", atomic.LoadInt64(&c.Faults))
		counter("quest_events_written", "Journal events written", atomic.LoadInt64(&c.EventsWritten))
		counter("quest_event_write_errors", "Journal write errors", atomic.LoadInt64(&c.EventWriteErrors))

		fmt.Fprintf(w, "# HELP quest_event_write_latency_max_ms Maximum journal write latency\n")
		fmt.Fprintf(w, "# TYPE quest_event_write_latency_max_ms gauge\n")
		fmt.Fprintf(w, "quest_event_write_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.EventWriteLatMax))/1e6)

		fmt.Fprintf(w, "# HELP quest_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE quest_ws_connections gauge\n")
		fmt.Fprintf(w, "quest_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP quest_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE quest_ws_messages_total counter\n")
		fmt.Fprintf(w, "quest_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "quest_ws_messages_total{direction=\"out\"} %d\n\n", atomic.LoadInt64(&c.WSMessagesOut))

		counter("quest_ws_errors", "WebSocket errors and dropped messages", atomic.LoadInt64(&c.WSErrors))
	}
}
