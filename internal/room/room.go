package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cardduel/draft-backend/internal/draft"
	"github.com/cardduel/draft-backend/internal/store"
)

var ErrRoomFull = errors.New("room_full")

const (
	StatusWaiting = "waiting"
	StatusReady   = "ready"
)

// Room tracks which two players occupy a drafting room. The room id is a
// caller-supplied capability token; whoever knows it can join.
type Room struct {
	ID             string   `json:"id"`
	Players        []string `json:"players"`
	Status         string   `json:"status"`
	LastActivityAt int64    `json:"lastActivityAt"`
}

// JoinReason distinguishes a first join from a reconnect of a seated player.
type JoinReason string

const (
	ReasonJoined    JoinReason = "joined"
	ReasonReconnect JoinReason = "reconnect"
)

type JoinResult struct {
	Room   *Room
	Seat   draft.Seat
	Reason JoinReason
}

// Ensure returns the room for id, creating an empty waiting room if absent.
// It never modifies an existing room.
func Ensure(ctx context.Context, st store.Store, id string) (*Room, error) {
	r, err := load(ctx, st, id)
	if err != nil {
		return nil, err
	}
	if r != nil {
		return r, nil
	}
	r = &Room{
		ID:             id,
		Players:        []string{},
		Status:         StatusWaiting,
		LastActivityAt: time.Now().UnixMilli(),
	}
	if err := save(ctx, st, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Join seats playerID in the room. A player already holding a seat is treated
// as a reconnection: nothing changes beyond the activity timestamp, and the
// original seat is returned. Seats are assigned in join order (the first
// player becomes p1, the second p2) and never change afterwards.
func Join(ctx context.Context, st store.Store, id, playerID string) (*JoinResult, error) {
	r, err := Ensure(ctx, st, id)
	if err != nil {
		return nil, err
	}

	for i, p := range r.Players {
		if p == playerID {
			r.LastActivityAt = time.Now().UnixMilli()
			if err := save(ctx, st, r); err != nil {
				return nil, err
			}
			return &JoinResult{Room: r, Seat: seatForIndex(i), Reason: ReasonReconnect}, nil
		}
	}

	if len(r.Players) >= 2 {
		return nil, ErrRoomFull
	}

	r.Players = append(r.Players, playerID)
	if len(r.Players) == 2 {
		r.Status = StatusReady
	}
	r.LastActivityAt = time.Now().UnixMilli()
	if err := save(ctx, st, r); err != nil {
		return nil, err
	}
	return &JoinResult{Room: r, Seat: seatForIndex(len(r.Players) - 1), Reason: ReasonJoined}, nil
}

func seatForIndex(i int) draft.Seat {
	if i == 0 {
		return draft.SeatP1
	}
	return draft.SeatP2
}

func load(ctx context.Context, st store.Store, id string) (*Room, error) {
	raw, ok, err := st.Get(ctx, store.RoomKey(id))
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", id, err)
	}
	if !ok {
		return nil, nil
	}
	var r Room
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", id, err)
	}
	return &r, nil
}

func save(ctx context.Context, st store.Store, r *Room) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", r.ID, err)
	}
	if err := st.Set(ctx, store.RoomKey(r.ID), raw); err != nil {
		return fmt.Errorf("save room %s: %w", r.ID, err)
	}
	return nil
}
