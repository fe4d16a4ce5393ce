package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/cardduel/draft-backend/internal/draft"
	"github.com/cardduel/draft-backend/internal/room"
	"github.com/cardduel/draft-backend/internal/store"
	"github.com/cardduel/draft-backend/internal/timer"
	"github.com/cardduel/draft-backend/pkg/types"
)

var ErrGameNotFound = errors.New("game_not_found")

// Broadcaster delivers a payload to every participant of a room.
type Broadcaster interface {
	Broadcast(roomID string, payload []byte)
}

// Service implements the session protocol: join, ensure, state request and
// pick, plus the timeout auto-pick. Every mutating operation on a room runs
// under that room's mutex, so picks and timer fires interleave but never
// overlap, and the freshest state is always loaded before validation.
type Service struct {
	store    store.Store
	hub      Broadcaster
	clock    clockwork.Clock
	log      *zap.Logger
	timers   *timer.Registry
	timerSec int

	rngMu sync.Mutex
	rng   *rand.Rand

	locks sync.Map // roomID -> *sync.Mutex
}

// NewService wires the session protocol. timerSec is the per-pick budget;
// zero falls back to the draft default.
func NewService(st store.Store, hub Broadcaster, clock clockwork.Clock, log *zap.Logger, timerSec int) *Service {
	if timerSec <= 0 {
		timerSec = draft.DefaultTimerSec
	}
	s := &Service{
		store:    st,
		hub:      hub,
		clock:    clock,
		log:      log,
		timerSec: timerSec,
		rng:      rand.New(rand.NewSource(clock.Now().UnixNano())),
	}
	s.timers = timer.NewRegistry(clock, log, s.handleTimeout)
	return s
}

// Timers exposes the timer registry so the entrypoint can stop it on shutdown.
func (s *Service) Timers() *timer.Registry { return s.timers }

// EnsureRoom returns the room for id, creating it when absent.
func (s *Service) EnsureRoom(ctx context.Context, roomID string) (*room.Room, error) {
	unlock := s.lockRoom(roomID)
	defer unlock()
	return room.Ensure(ctx, s.store, roomID)
}

// JoinRoom seats the player (or recognizes a reconnect) and broadcasts the
// resulting room state to everyone in the room.
func (s *Service) JoinRoom(ctx context.Context, roomID, playerID string) (*room.JoinResult, error) {
	unlock := s.lockRoom(roomID)
	defer unlock()

	res, err := room.Join(ctx, s.store, roomID, playerID)
	if err != nil {
		return nil, err
	}

	s.log.Info("player joined room",
		zap.String("room_id", roomID),
		zap.String("player_id", playerID),
		zap.String("seat", string(res.Seat)),
		zap.String("reason", string(res.Reason)))

	s.broadcast(roomID, types.ServerMessage{
		Type: types.EvtRoomState,
		Room: roomStateOf(res.Room),
	})
	return res, nil
}

// EnsureGame creates the draft for a ready room exactly once; later calls
// return the existing state unchanged. A fresh draft gets a full timer; an
// existing one gets its local timer re-armed from the persisted deadline,
// which is how a restarted process picks the countdown back up.
func (s *Service) EnsureGame(ctx context.Context, roomID string) (*types.Snapshot, error) {
	unlock := s.lockRoom(roomID)
	defer unlock()

	r, err := room.Ensure(ctx, s.store, roomID)
	if err != nil {
		return nil, err
	}
	if len(r.Players) != 2 {
		return nil, draft.ErrRoomNotReady
	}

	g, err := s.loadDraft(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if g == nil {
		s.rngMu.Lock()
		g, err = draft.New(roomID, r.Players, s.rng)
		s.rngMu.Unlock()
		if err != nil {
			return nil, err
		}
		g.TimerSec = s.timerSec
		if err := s.commit(ctx, g); err != nil {
			return nil, err
		}
		s.log.Info("draft created",
			zap.String("room_id", roomID),
			zap.String("first", string(g.First)),
			zap.Int("pool_size", len(g.Pool)))
	} else if g.Phase == draft.PhaseDraft {
		s.resumeTimer(g)
	}

	return s.snapshotOf(g), nil
}

// RequestState returns the current snapshot without touching state.
func (s *Service) RequestState(ctx context.Context, roomID string) (*types.Snapshot, error) {
	g, err := s.loadDraft(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGameNotFound
	}
	return s.snapshotOf(g), nil
}

// Pick applies one pick on behalf of playerID. On success the deadline is
// reset, the timer re-armed and the new snapshot broadcast to the room; on
// any validation failure state is untouched and the error is returned to the
// caller alone.
func (s *Service) Pick(ctx context.Context, roomID, playerID, card string) (*types.Snapshot, error) {
	unlock := s.lockRoom(roomID)
	defer unlock()

	g, err := s.loadDraft(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGameNotFound
	}

	if err := g.ApplyPick(playerID, card); err != nil {
		return nil, err
	}

	if err := s.commit(ctx, g); err != nil {
		return nil, err
	}

	s.log.Info("pick applied",
		zap.String("room_id", roomID),
		zap.String("player_id", playerID),
		zap.String("card", card),
		zap.Int("turn_index", g.TurnIndex),
		zap.String("phase", string(g.Phase)))

	snap := s.snapshotOf(g)
	s.broadcast(roomID, types.ServerMessage{Type: types.EvtDraftState, Snapshot: snap})
	return snap, nil
}

// handleTimeout runs when a room's turn timer fires. It re-reads the freshest
// state: a finished draft means the fire is stale, and a deadline still in the
// future means a real pick extended it since this timer was armed; in that
// case the timer is re-armed for the remainder instead of acting. Otherwise a
// random available card is picked for whoever's turn it is.
func (s *Service) handleTimeout(roomID string) {
	ctx := context.Background()

	unlock := s.lockRoom(roomID)
	defer unlock()

	g, err := s.loadDraft(ctx, roomID)
	if err != nil {
		s.log.Error("timeout: load draft failed", zap.String("room_id", roomID), zap.Error(err))
		return
	}
	if g == nil || g.Phase != draft.PhaseDraft {
		return
	}

	now := s.clock.Now().UnixMilli()
	if g.TurnDeadline != nil && *g.TurnDeadline > now {
		s.timers.Arm(roomID, time.Duration(*g.TurnDeadline-now)*time.Millisecond)
		return
	}

	available := g.Available()
	if len(available) == 0 {
		return
	}
	s.rngMu.Lock()
	card := available[s.rng.Intn(len(available))]
	s.rngMu.Unlock()

	playerID, ok := g.PlayerFor(g.Current)
	if !ok {
		s.log.Error("timeout: no player for current seat",
			zap.String("room_id", roomID), zap.String("seat", string(g.Current)))
		return
	}

	if err := g.ApplyPick(playerID, card); err != nil {
		// Should not happen for an available card; log and keep the loop alive.
		s.log.Error("auto-pick failed",
			zap.String("room_id", roomID),
			zap.String("card", card),
			zap.Error(err))
		return
	}

	if err := s.commit(ctx, g); err != nil {
		s.log.Error("timeout: commit failed", zap.String("room_id", roomID), zap.Error(err))
		return
	}

	s.log.Info("auto-pick applied",
		zap.String("room_id", roomID),
		zap.String("seat", string(g.RoleByPlayer[playerID])),
		zap.String("card", card))

	s.broadcast(roomID, types.ServerMessage{Type: types.EvtDraftState, Snapshot: s.snapshotOf(g)})
}

// commit updates the persisted deadline to match the draft's phase, saves the
// whole record, and keeps the local timer in sync with what was saved.
func (s *Service) commit(ctx context.Context, g *draft.State) error {
	if g.Phase == draft.PhaseDraft {
		deadline := s.clock.Now().Add(time.Duration(g.TimerSec) * time.Second).UnixMilli()
		g.TurnDeadline = &deadline
	} else {
		g.TurnDeadline = nil
	}

	if err := s.saveDraft(ctx, g); err != nil {
		return err
	}

	if g.Phase == draft.PhaseDraft {
		s.timers.Arm(g.ID, time.Duration(g.TimerSec)*time.Second)
	} else {
		s.timers.Cancel(g.ID)
	}
	return nil
}

// resumeTimer re-arms a local timer from the persisted deadline, clamping an
// already-expired deadline to an immediate fire.
func (s *Service) resumeTimer(g *draft.State) {
	if g.TurnDeadline == nil {
		return
	}
	remaining := time.Duration(*g.TurnDeadline-s.clock.Now().UnixMilli()) * time.Millisecond
	if remaining < 0 {
		remaining = 0
	}
	s.timers.Arm(g.ID, remaining)
}

func (s *Service) snapshotOf(g *draft.State) *types.Snapshot {
	players := make(map[string]string, 2)
	for pid, seat := range g.RoleByPlayer {
		players[string(seat)] = pid
	}
	return &types.Snapshot{
		RoomID:       g.ID,
		Status:       string(g.Phase),
		Players:      players,
		Pool:         g.Pool,
		Picks:        map[string][]string{"p1": g.Decks.P1, "p2": g.Decks.P2},
		Turn:         string(g.Current),
		PickIndex:    g.PickIndex,
		TimerSec:     g.TimerSec,
		TurnDeadline: g.TurnDeadline,
		ServerNow:    s.clock.Now().UnixMilli(),
	}
}

func (s *Service) broadcast(roomID string, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("marshal broadcast", zap.String("room_id", roomID), zap.Error(err))
		return
	}
	s.hub.Broadcast(roomID, payload)
}

func (s *Service) lockRoom(roomID string) func() {
	v, _ := s.locks.LoadOrStore(roomID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) loadDraft(ctx context.Context, roomID string) (*draft.State, error) {
	raw, ok, err := s.store.Get(ctx, store.DraftKey(roomID))
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", roomID, err)
	}
	if !ok {
		return nil, nil
	}
	var g draft.State
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", roomID, err)
	}
	return &g, nil
}

func (s *Service) saveDraft(ctx context.Context, g *draft.State) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", g.ID, err)
	}
	if err := s.store.Set(ctx, store.DraftKey(g.ID), raw); err != nil {
		return fmt.Errorf("save draft %s: %w", g.ID, err)
	}
	return nil
}

func roomStateOf(r *room.Room) *types.RoomState {
	return &types.RoomState{
		ID:             r.ID,
		Players:        r.Players,
		Status:         r.Status,
		LastActivityAt: r.LastActivityAt,
	}
}
