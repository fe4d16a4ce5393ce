package types

// Client -> Server event names.
const (
	EvtJoinRoom     = "join_room"
	EvtGameEnsure   = "game_ensure"
	EvtRequestState = "draft_request_state"
	EvtDraftPick    = "draft_pick"
)

// Server -> Client event names.
const (
	EvtRoomState  = "room_state"
	EvtDraftState = "draft_state"
	EvtError      = "ws_error"
)

// Error codes shared by the websocket and HTTP surfaces.
const (
	CodeBadPayload       = "bad_payload"
	CodeRoomFull         = "room_full"
	CodeGameNotFound     = "game_not_found"
	CodeNotYourTurn      = "not_your_turn"
	CodeInvalidPlayer    = "invalid_player"
	CodeInvalidCard      = "invalid_card"
	CodeCardAlreadyTaken = "card_already_taken"
)

type ClientMessage struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId,omitempty"`
	PlayerID string `json:"playerId,omitempty"`
	Card     string `json:"card,omitempty"`
}

type ServerMessage struct {
	Type     string     `json:"type"`
	Room     *RoomState `json:"room,omitempty"`
	Snapshot *Snapshot  `json:"snapshot,omitempty"`
	Error    *WireError `json:"error,omitempty"`
}

type RoomState struct {
	ID             string   `json:"id"`
	Players        []string `json:"players"`
	Status         string   `json:"status"`
	LastActivityAt int64    `json:"lastActivityAt"`
}

type WireError struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
