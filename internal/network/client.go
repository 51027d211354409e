package network

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/GiftQuest/server/internal/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Client is one WebSocket connection and the quest it is playing.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	sendMu sync.Mutex
	send   chan []byte
	closed bool

	presenter *WirePresenter
	// live is only touched by ReadPump.
	live *liveSession
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	c := &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.cfg.ClientSendBuffer),
	}
	c.presenter = NewWirePresenter(c.trySend, hub.metrics, hub.logger.With("client", c.id))
	return c
}

// Register adds the client to the hub. It reports false once the hub has stopped.
func (c *Client) Register() bool {
	return c.hub.join(c)
}

// trySend queues msg without blocking. It reports false when the queue is
// full or the connection is gone.
func (c *Client) trySend(msg []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump pumps actions from the websocket connection into the session loop.
func (c *Client) ReadPump() {
	defer func() {
		c.stopSession()
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", "client", c.id, "error", err)
				c.hub.metrics.RecordWSError()
			}
			break
		}
		c.hub.metrics.RecordWSMessage(true)

		var action PlayerAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Warn("failed to parse player action", "client", c.id, "error", err)
			c.hub.metrics.RecordWSError()
			continue
		}

		c.handlePlayerAction(action)
	}
}

func (c *Client) handlePlayerAction(action PlayerAction) {
	switch action.Type {
	case ActionStart:
		if c.live != nil {
			c.hub.logger.Debug("session already running", "client", c.id)
			return
		}
		c.startSession()
	case ActionRestart:
		c.stopSession()
		c.startSession()
	case ActionRiddle:
		c.post(func(s *engine.Session) { s.RiddleSubmitted(action.Answer) })
	case ActionCard:
		c.post(func(s *engine.Session) { s.CardActivated(action.CardID) })
	case ActionPad:
		c.post(func(s *engine.Session) { s.PadActivated(action.PadID) })
	case ActionOpenGift:
		c.post(func(s *engine.Session) { s.GiftOpened() })
	default:
		c.hub.logger.Warn("unknown player action", "client", c.id, "type", action.Type)
	}
}

// post runs fn against the current session on its loop. Inputs before START
// are dropped.
func (c *Client) post(fn func(s *engine.Session)) {
	live := c.live
	if live == nil {
		c.hub.logger.Debug("input before START ignored", "client", c.id)
		return
	}
	live.loop.Post(func() { fn(live.session) })
}

func (c *Client) startSession() {
	live := c.hub.newSession(c.presenter)
	c.live = live
	c.presenter.Session(live.session.ID())
	c.hub.logger.Event("SESSION_STARTED", live.session.ID(), "client "+c.id)
	live.loop.Post(live.session.Start)
}

func (c *Client) stopSession() {
	if c.live == nil {
		return
	}
	c.live.stop()
	c.live = nil
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.metrics.RecordWSError()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
