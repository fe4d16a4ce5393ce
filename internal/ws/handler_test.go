package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cardduel/draft-backend/internal/hub"
	"github.com/cardduel/draft-backend/internal/session"
	"github.com/cardduel/draft-backend/internal/store"
	"github.com/cardduel/draft-backend/pkg/types"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zap.NewNop()
	h := hub.New(log)
	svc := session.NewService(store.NewMemory(), h, clockwork.NewRealClock(), log, 15)
	t.Cleanup(svc.Timers().Stop)

	srv := httptest.NewServer(Handler(svc, h, log))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, strings.Replace(srv.URL, "http", "ws", 1), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, msg types.ClientMessage) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, payload))
}

func readMsg(t *testing.T, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg types.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHandler_JoinEnsurePickFlow(t *testing.T) {
	srv := newTestServer(t)

	alice := dial(t, srv)
	bob := dial(t, srv)

	sendMsg(t, alice, types.ClientMessage{Type: types.EvtJoinRoom, RoomID: "r1", PlayerID: "alice"})
	first := readMsg(t, alice)
	require.Equal(t, types.EvtRoomState, first.Type)
	require.NotNil(t, first.Room)
	assert.Equal(t, "waiting", first.Room.Status)

	sendMsg(t, bob, types.ClientMessage{Type: types.EvtJoinRoom, RoomID: "r1", PlayerID: "bob"})
	ready := readMsg(t, alice) // broadcast reaches the earlier joiner too
	require.Equal(t, types.EvtRoomState, ready.Type)
	assert.Equal(t, "ready", ready.Room.Status)
	_ = readMsg(t, bob)

	sendMsg(t, alice, types.ClientMessage{Type: types.EvtGameEnsure, RoomID: "r1"})
	ensured := readMsg(t, alice)
	require.Equal(t, types.EvtDraftState, ensured.Type)
	require.NotNil(t, ensured.Snapshot)
	require.Len(t, ensured.Snapshot.Pool, 36)
	require.NotNil(t, ensured.Snapshot.TurnDeadline)

	snap := ensured.Snapshot
	actor := snap.Players[snap.Turn]
	sendMsg(t, alice, types.ClientMessage{
		Type: types.EvtDraftPick, RoomID: "r1", PlayerID: actor, Card: snap.Pool[0],
	})

	// Both participants receive the broadcast snapshot.
	for _, conn := range []*websocket.Conn{alice, bob} {
		msg := readMsg(t, conn)
		require.Equal(t, types.EvtDraftState, msg.Type)
		require.NotNil(t, msg.Snapshot)
		assert.Equal(t, 1, len(msg.Snapshot.Picks["p1"])+len(msg.Snapshot.Picks["p2"]))
	}
}

func TestHandler_ErrorsAreScopedToCaller(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	// Malformed payload.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{not json")))
	cancel()
	msg := readMsg(t, conn)
	require.Equal(t, types.EvtError, msg.Type)
	assert.Equal(t, types.CodeBadPayload, msg.Error.Code)

	// Missing fields.
	sendMsg(t, conn, types.ClientMessage{Type: types.EvtJoinRoom, RoomID: "r1"})
	msg = readMsg(t, conn)
	require.Equal(t, types.EvtError, msg.Type)
	assert.Equal(t, types.CodeBadPayload, msg.Error.Code)

	// State request before the draft exists.
	sendMsg(t, conn, types.ClientMessage{Type: types.EvtRequestState, RoomID: "r1"})
	msg = readMsg(t, conn)
	require.Equal(t, types.EvtError, msg.Type)
	assert.Equal(t, types.CodeGameNotFound, msg.Error.Code)

	// Unknown event type.
	sendMsg(t, conn, types.ClientMessage{Type: "dance"})
	msg = readMsg(t, conn)
	require.Equal(t, types.EvtError, msg.Type)
	assert.Equal(t, types.CodeBadPayload, msg.Error.Code)
}

func TestHandler_RoomFullRejectsThirdPlayer(t *testing.T) {
	srv := newTestServer(t)

	for _, p := range []string{"alice", "bob"} {
		conn := dial(t, srv)
		sendMsg(t, conn, types.ClientMessage{Type: types.EvtJoinRoom, RoomID: "r1", PlayerID: p})
		_ = readMsg(t, conn)
	}

	carol := dial(t, srv)
	sendMsg(t, carol, types.ClientMessage{Type: types.EvtJoinRoom, RoomID: "r1", PlayerID: "carol"})
	msg := readMsg(t, carol)
	require.Equal(t, types.EvtError, msg.Type)
	assert.Equal(t, types.CodeRoomFull, msg.Error.Code)
}
