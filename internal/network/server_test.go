package network

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/GiftQuest/server/internal/infra/storage"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/config"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/logger"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/metrics"
)

type fakeSource struct {
	events []storage.GameEvent
}

func (f *fakeSource) Journal(_ context.Context, id string) ([]storage.GameEvent, error) {
	if id != "known" {
		return nil, storage.ErrSessionNotFound
	}
	return f.events, nil
}

func (f *fakeSource) BuildRecap(_ context.Context, id string) (*storage.Recap, error) {
	if id != "known" {
		return nil, storage.ErrSessionNotFound
	}
	return &storage.Recap{SessionID: id, Completed: true}, nil
}

func newTestServer(t *testing.T, source JournalSource) (*httptest.Server, *Hub, *metrics.Collector) {
	t.Helper()
	cfg := config.Default().Server
	m := metrics.New()
	log := logger.NewNop()

	hub := NewHub(cfg, nil, m, log)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	ts := httptest.NewServer(NewServer(cfg, hub, source, m, log).Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return ts, hub, m
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until match returns true or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(ServerMessage) bool) []ServerMessage {
	t.Helper()
	var seen []ServerMessage
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "seen so far: %+v", seen)
		var msg ServerMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		seen = append(seen, msg)
		if match(msg) {
			return seen
		}
	}
}

func showStage(id string) func(ServerMessage) bool {
	return func(m ServerMessage) bool { return m.Type == MsgShowStage && m.Stage == id }
}

func TestWebSocketQuestFlow(t *testing.T) {
	ts, _, m := newTestServer(t, nil)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(PlayerAction{Type: ActionStart}))
	seen := readUntil(t, conn, showStage("riddle"))
	assert.Equal(t, MsgSession, seen[0].Type)
	assert.NotEmpty(t, seen[0].SessionID)

	require.NoError(t, conn.WriteJSON(PlayerAction{Type: ActionRiddle, Answer: "mouse"}))
	seen = readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgStatus })
	require.NotNil(t, seen[len(seen)-1].Text)
	assert.NotEmpty(t, *seen[len(seen)-1].Text)

	require.NoError(t, conn.WriteJSON(PlayerAction{Type: ActionRiddle, Answer: " Keyboard "}))
	seen = readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgDeal })
	assert.Equal(t, 8, seen[len(seen)-1].Count)

	// A card flip reveals its symbol.
	require.NoError(t, conn.WriteJSON(PlayerAction{Type: ActionCard, CardID: 0}))
	seen = readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MsgCardFace })
	face := seen[len(seen)-1]
	require.NotNil(t, face.CardID)
	assert.Equal(t, 0, *face.CardID)
	assert.NotEmpty(t, face.Symbol)

	ws := m.Snapshot()["websocket"].(map[string]interface{})
	assert.GreaterOrEqual(t, ws["messages_in"].(int64), int64(4))
}

func TestWebSocketRestartStartsFreshSession(t *testing.T) {
	ts, _, _ := newTestServer(t, nil)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(PlayerAction{Type: ActionStart}))
	first := readUntil(t, conn, showStage("riddle"))[0].SessionID

	require.NoError(t, conn.WriteJSON(PlayerAction{Type: ActionRiddle, Answer: "keyboard"}))
	readUntil(t, conn, showStage("memory"))

	require.NoError(t, conn.WriteJSON(PlayerAction{Type: ActionRestart}))
	seen := readUntil(t, conn, showStage("riddle"))
	var second string
	for _, m := range seen {
		if m.Type == MsgSession {
			second = m.SessionID
		}
	}
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}

func TestWebSocketInputBeforeStartIgnored(t *testing.T) {
	ts, _, _ := newTestServer(t, nil)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(PlayerAction{Type: ActionCard, CardID: 3}))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(PlayerAction{Type: ActionStart}))

	seen := readUntil(t, conn, showStage("riddle"))
	assert.Equal(t, MsgSession, seen[0].Type)
}

func TestHealthzCountsClients(t *testing.T) {
	ts, hub, _ := newTestServer(t, nil)
	dial(t, ts)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, 1.0, body["clients"])
}

func TestMetricsRoutes(t *testing.T) {
	ts, _, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	resp, err = http.Get(ts.URL + "/metrics/prometheus")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJournalRoutes(t *testing.T) {
	source := &fakeSource{events: []storage.GameEvent{
		{Seq: 1, EventType: "SESSION_STARTED", Stage: "riddle"},
		{Seq: 2, EventType: "RIDDLE_REJECTED", Stage: "riddle"},
		{Seq: 3, EventType: "RIDDLE_ACCEPTED", Stage: "riddle"},
	}}
	ts, _, _ := newTestServer(t, source)

	resp, err := http.Get(ts.URL + "/api/sessions/known/journal?type=RIDDLE_REJECTED")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var journal JournalResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&journal))
	assert.Equal(t, 1, journal.TotalEvents)
	assert.Equal(t, 2, journal.Events[0].Seq)

	resp2, err := http.Get(ts.URL + "/api/sessions/known/recap")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var recap storage.Recap
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&recap))
	assert.True(t, recap.Completed)

	resp3, err := http.Get(ts.URL + "/api/sessions/missing/recap")
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)
}

func TestJournalRoutesWithoutStorage(t *testing.T) {
	ts, _, _ := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/api/sessions/any/journal")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCheckOrigin(t *testing.T) {
	allowAll := checkOrigin(nil)
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "http://evil.example")
	assert.True(t, allowAll(r))

	only := checkOrigin([]string{" http://localhost:3000/ "})
	assert.False(t, only(r))
	r.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, only(r))
	r.Header.Del("Origin")
	assert.True(t, only(r))
}
