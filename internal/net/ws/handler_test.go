package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	simgame "github.com/Rushhhy/sim-game"
	"github.com/Rushhhy/sim-game/internal/net/proto"
)

func newTestHub(t *testing.T) *simgame.Hub {
	t.Helper()
	cfg := simgame.DefaultHubConfig()
	cfg.VillagerCount = 1
	hub, err := simgame.NewHub(cfg)
	require.NoError(t, err)
	return hub
}

func dial(t *testing.T, hub *simgame.Hub, clientID string) *websocket.Conn {
	t.Helper()
	handler := NewHandler(hub, HandlerConfig{})
	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)

	conn, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL, clientID), nil)
	if resp != nil {
		t.Cleanup(func() { resp.Body.Close() })
	}
	require.NoError(t, err, "open websocket connection")
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err, "read frame")
	var frame map[string]any
	require.NoError(t, json.Unmarshal(payload, &frame), "decode frame %s", payload)
	return frame
}

func sendJSON(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func TestHandleSubscribeSendsInitialState(t *testing.T) {
	hub := newTestHub(t)
	join := hub.Join()
	conn := dial(t, hub, join.ID)

	frame := readFrame(t, conn)
	assert.Equal(t, proto.TypeState, frame["type"])
	villagers, ok := frame["villagers"].([]any)
	require.True(t, ok, "villagers %v", frame["villagers"])
	assert.Len(t, villagers, 1)
	structures, ok := frame["structures"].([]any)
	require.True(t, ok, "structures %v", frame["structures"])
	assert.NotEmpty(t, structures)
}

func TestHandleAcksAndDeduplicatesCommands(t *testing.T) {
	hub := newTestHub(t)
	join := hub.Join()
	conn := dial(t, hub, join.ID)
	readFrame(t, conn)

	spawn := map[string]any{"type": proto.TypeSpawn, "x": 0.5, "y": 40.5, "seq": 1}
	sendJSON(t, conn, spawn)
	ack := readFrame(t, conn)
	assert.Equal(t, proto.TypeCommandAck, ack["type"])
	assert.Equal(t, 1.0, ack["seq"])
	villagerID, _ := ack["villagerId"].(string)
	require.NotEmpty(t, villagerID, "spawn ack should carry the villager id: %v", ack)

	sendJSON(t, conn, spawn)
	dup := readFrame(t, conn)
	assert.Equal(t, proto.TypeCommandAck, dup["type"])
	assert.Equal(t, 1.0, dup["seq"])
	assert.NotContains(t, dup, "villagerId")
	assert.Equal(t, 1, hub.DiagnosticsSnapshot().Pending, "duplicate should be dropped")

	sendJSON(t, conn, map[string]any{"type": proto.TypeMove, "x": 2, "y": 40, "villagerId": villagerID, "seq": 2})
	moveAck := readFrame(t, conn)
	assert.Equal(t, proto.TypeCommandAck, moveAck["type"])
	assert.Equal(t, 2.0, moveAck["seq"])
}

func TestHandleRejectsUnknownVillager(t *testing.T) {
	hub := newTestHub(t)
	join := hub.Join()
	conn := dial(t, hub, join.ID)
	readFrame(t, conn)

	sendJSON(t, conn, map[string]any{"type": proto.TypeStop, "villagerId": "villager-404", "seq": 7})
	reject := readFrame(t, conn)
	assert.Equal(t, proto.TypeCommandReject, reject["type"])
	assert.Equal(t, simgame.CommandRejectUnknownVillager, reject["reason"])
	assert.NotContains(t, reject, "retry")
}

func TestHandleRejectsOversizedPlacement(t *testing.T) {
	hub := newTestHub(t)
	join := hub.Join()
	conn := dial(t, hub, join.ID)
	readFrame(t, conn)

	sendJSON(t, conn, map[string]any{"type": proto.TypePlace, "x": 0, "y": 0, "width": 1 << 32, "height": 1 << 32, "seq": 3})
	reject := readFrame(t, conn)
	assert.Equal(t, proto.TypeCommandReject, reject["type"])
	assert.Equal(t, simgame.CommandRejectInvalid, reject["reason"])
	assert.Zero(t, hub.DiagnosticsSnapshot().Pending)
}

func TestHandleHeartbeat(t *testing.T) {
	hub := newTestHub(t)
	join := hub.Join()
	conn := dial(t, hub, join.ID)
	readFrame(t, conn)

	sent := time.Now().UnixMilli()
	sendJSON(t, conn, map[string]any{"type": proto.TypeHeartbeat, "sentAt": sent})
	frame := readFrame(t, conn)
	assert.Equal(t, "heartbeat", frame["type"])
	assert.Equal(t, float64(sent), frame["clientTime"])
}

func TestHandleUnknownClientIsClosed(t *testing.T) {
	hub := newTestHub(t)
	conn := dial(t, hub, "client-404")

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "expected policy violation close, got %v", err)
}

func websocketURL(t *testing.T, baseURL, clientID string) string {
	t.Helper()
	parsed, err := url.Parse(baseURL)
	require.NoError(t, err)
	parsed.Scheme = "ws"
	query := parsed.Query()
	query.Set("id", clientID)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
