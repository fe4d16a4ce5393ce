package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardduel/draft-backend/internal/hub"
	"github.com/cardduel/draft-backend/internal/session"
	"github.com/cardduel/draft-backend/pkg/types"
)

const writeTimeout = 3 * time.Second

// Handler upgrades the connection and speaks the session event contract:
// join_room, game_ensure, draft_request_state and draft_pick inbound;
// room_state, draft_state and ws_error outbound. Broadcasts reach the client
// through its hub outbox; scoped replies go to the same outbox directly.
func Handler(svc *session.Service, h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		client := hub.NewClient(uuid.NewString(), 16)
		joined := make(map[string]bool)
		defer func() {
			for roomID := range joined {
				h.Unregister(roomID, client)
			}
			client.Close()
		}()

		log.Debug("ws connected", zap.String("client_id", client.ID))

		// Writer goroutine: drain the outbox until the client is dropped or
		// the connection goes away.
		go func() {
			for {
				select {
				case payload := <-client.Recv():
					ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
					err := conn.Write(ctx, websocket.MessageText, payload)
					cancel()
					if err != nil {
						return
					}
				case <-client.Done():
					conn.Close(websocket.StatusNormalClosure, "dropped")
					return
				case <-r.Context().Done():
					return
				}
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				log.Debug("ws disconnected",
					zap.String("client_id", client.ID),
					zap.Int("close_status", int(websocket.CloseStatus(err))))
				return
			}

			var msg types.ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				sendError(client, types.CodeBadPayload, "invalid json")
				continue
			}

			dispatch(r.Context(), svc, h, client, joined, msg)
		}
	}
}

func dispatch(ctx context.Context, svc *session.Service, h *hub.Hub, client *hub.Client, joined map[string]bool, msg types.ClientMessage) {
	switch msg.Type {
	case types.EvtJoinRoom:
		if msg.RoomID == "" || msg.PlayerID == "" {
			sendError(client, types.CodeBadPayload, "roomId and playerId required")
			return
		}
		// Register before joining so the joiner receives its own room_state.
		if !joined[msg.RoomID] {
			h.Register(msg.RoomID, client)
			joined[msg.RoomID] = true
		}
		if _, err := svc.JoinRoom(ctx, msg.RoomID, msg.PlayerID); err != nil {
			h.Unregister(msg.RoomID, client)
			delete(joined, msg.RoomID)
			sendError(client, session.ErrorCode(err), "cannot join room")
			return
		}

	case types.EvtGameEnsure:
		if msg.RoomID == "" {
			sendError(client, types.CodeBadPayload, "roomId required")
			return
		}
		snap, err := svc.EnsureGame(ctx, msg.RoomID)
		if err != nil {
			sendError(client, session.ErrorCode(err), "room not ready")
			return
		}
		send(client, types.ServerMessage{Type: types.EvtDraftState, Snapshot: snap})

	case types.EvtRequestState:
		if msg.RoomID == "" {
			sendError(client, types.CodeBadPayload, "roomId required")
			return
		}
		snap, err := svc.RequestState(ctx, msg.RoomID)
		if err != nil {
			sendError(client, session.ErrorCode(err), "no game for room")
			return
		}
		send(client, types.ServerMessage{Type: types.EvtDraftState, Snapshot: snap})

	case types.EvtDraftPick:
		if msg.RoomID == "" || msg.PlayerID == "" || msg.Card == "" {
			sendError(client, types.CodeBadPayload, "roomId/playerId/card required")
			return
		}
		if _, err := svc.Pick(ctx, msg.RoomID, msg.PlayerID, msg.Card); err != nil {
			sendError(client, session.ErrorCode(err), err.Error())
			return
		}
		// Success is broadcast to the whole room by the session service.

	default:
		sendError(client, types.CodeBadPayload, "unknown type")
	}
}

func send(client *hub.Client, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	client.TrySend(payload)
}

func sendError(client *hub.Client, code, detail string) {
	send(client, types.ServerMessage{
		Type:  types.EvtError,
		Error: &types.WireError{Code: code, Msg: detail},
	})
}
