package network

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/GiftQuest/server/internal/platform/config"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/metrics"
)

// Server wires the WebSocket endpoint and the HTTP API onto one mux.
type Server struct {
	hub      *Hub
	journal  *JournalHandler
	metrics  *metrics.Collector
	logger   *logger.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// NewServer builds the routes. Pass a nil source when storage is disabled.
func NewServer(cfg config.ServerConfig, hub *Hub, source JournalSource, m *metrics.Collector, log *logger.Logger) *Server {
	if m == nil {
		m = metrics.Get()
	}
	s := &Server{
		hub:     hub,
		journal: NewJournalHandler(source, log),
		metrics: m,
		logger:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg.AllowedOrigins),
		},
		mux: http.NewServeMux(),
	}

	s.mux.HandleFunc("/ws", s.serveWs)
	s.journal.RegisterRoutes(s.mux)
	s.mux.HandleFunc("GET /metrics", m.Handler())
	s.mux.HandleFunc("GET /metrics/prometheus", m.PrometheusHandler())
	s.mux.HandleFunc("GET /healthz", s.healthz)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade websocket connection", "remote", r.RemoteAddr, "error", err)
		s.metrics.RecordWSError()
		return
	}

	client := NewClient(s.hub, conn)
	if !client.Register() {
		conn.Close()
		return
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
	})
}

// checkOrigin allows every origin when allowed is empty, otherwise only exact
// matches and requests without an Origin header.
func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
