package network

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MRamiBalles/GiftQuest/server/internal/engine"
	"github.com/MRamiBalles/GiftQuest/server/internal/events"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/config"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/metrics"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/random"
)

// Hub maintains the set of active clients and builds their sessions.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	logger     *logger.Logger
	metrics    *metrics.Collector
	cfg        config.ServerConfig
	persister  events.EventPersister
	rules      *engine.Rules
}

// NewHub initializes a new WebSocket Hub. persister may be nil, in which case
// journals stay in memory only.
func NewHub(cfg config.ServerConfig, persister events.EventPersister, m *metrics.Collector, log *logger.Logger) *Hub {
	if m == nil {
		m = metrics.Get()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		logger:     log,
		metrics:    m,
		cfg:        cfg,
		persister:  persister,
	}
}

// WithRules overrides the quest constants of every new session. Tests use it
// to shorten the delays.
func (h *Hub) WithRules(rules engine.Rules) *Hub {
	h.rules = &rules
	return h
}

// Run starts the Hub's main loop to handle client connections.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.closeSend()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("WebSocket hub shutting down")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.RecordWSConnection(1)
			h.logger.Info("WebSocket client connected", "client", client.id)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
				h.metrics.RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected", "client", client.id)
			}
			h.mu.Unlock()
		}
	}
}

// join registers c unless the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters c; it never blocks once the hub has stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// liveSession is one running quest bound to its loop.
type liveSession struct {
	session *engine.Session
	loop    *engine.Loop
	cancel  context.CancelFunc
}

// newSession builds a session on a fresh loop. Every presentation call goes
// out through p; the loop runs until stop is called.
func (h *Hub) newSession(p *WirePresenter) *liveSession {
	ctx, cancel := context.WithCancel(context.Background())
	loop := engine.NewLoop(h.cfg.InputBuffer)
	go loop.Run(ctx)

	id := uuid.NewString()
	log := h.logger.With("session", id)
	journal := events.NewEventLog(id, h.persister)
	journal.OnPersistError(func(e events.GameEvent, err error) {
		log.Warn("journal write failed", "seq", e.Seq, "type", string(e.Type), "error", err)
	})

	sess := engine.NewSession(engine.SessionOptions{
		ID:        id,
		Presenter: p,
		Feedback:  p,
		Scheduler: loop,
		Journal:   journal,
		Logger:    h.logger,
		Rand:      random.NewSource(time.Now().UnixNano()),
		Rules:     h.rules,
	})
	return &liveSession{session: sess, loop: loop, cancel: cancel}
}

// stop cancels the loop and waits for the running task to finish, so no
// presentation call happens after stop returns.
func (s *liveSession) stop() {
	s.cancel()
	<-s.loop.Done()
}
