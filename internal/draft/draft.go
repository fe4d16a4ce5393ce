package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

var (
	ErrRoomNotReady     = errors.New("room not ready")
	ErrDraftFinished    = errors.New("draft already finished")
	ErrInvalidPlayer    = errors.New("invalid player")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrInvalidCard      = errors.New("invalid card")
	ErrCardAlreadyTaken = errors.New("card already taken")
)

type Seat string

const (
	SeatP1 Seat = "p1"
	SeatP2 Seat = "p2"
)

func (s Seat) Other() Seat {
	if s == SeatP1 {
		return SeatP2
	}
	return SeatP1
}

type Phase string

const (
	PhaseDraft    Phase = "draft"
	PhaseFinished Phase = "finished"
)

// PoolSize is how many cards are sampled from the catalog per session.
const PoolSize = 36

// DefaultTimerSec is the per-pick time budget.
const DefaultTimerSec = 15

// TurnBlock is one entry of the pick schedule: Who makes Count consecutive
// picks before the turn passes on.
type TurnBlock struct {
	Who   Seat `json:"who"`
	Count int  `json:"count"`
}

type Decks struct {
	P1 []string `json:"p1"`
	P2 []string `json:"p2"`
}

// State is the authoritative model of one drafting session. It is created
// once per room and mutated only by ApplyPick and the deadline setter; the
// whole record round-trips through the external store as JSON.
type State struct {
	ID           string          `json:"id"`
	Phase        Phase           `json:"phase"`
	Pool         []string        `json:"pool"`
	Used         CardSet         `json:"used"`
	Decks        Decks           `json:"decks"`
	First        Seat            `json:"first"`
	Current      Seat            `json:"current"`
	Schedule     []TurnBlock     `json:"schedule"`
	TurnIndex    int             `json:"turnIndex"`
	PickIndex    int             `json:"pickIndex"`
	RoleByPlayer map[string]Seat `json:"roleByPlayerId"`
	TimerSec     int             `json:"timer"`
	TurnDeadline *int64          `json:"turnDeadline"` // unix ms, nil when no timer is armed
}

// CardSet serializes as a sorted JSON array and rehydrates as a set.
type CardSet map[string]bool

func (s CardSet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return json.Marshal(names)
}

func (s *CardSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set := make(CardSet, len(names))
	for _, name := range names {
		set[name] = true
	}
	*s = set
	return nil
}

// New initializes a draft session for a full room: a fresh 36-card pool
// sampled without replacement from the catalog, a random first seat, and the
// fixed snake schedule. The room's first player takes seat p1.
func New(roomID string, players []string, rng *rand.Rand) (*State, error) {
	if len(players) != 2 {
		return nil, fmt.Errorf("init draft %s: %w", roomID, ErrRoomNotReady)
	}

	pool := samplePool(rng)

	first := SeatP1
	if rng.Intn(2) == 1 {
		first = SeatP2
	}

	return &State{
		ID:       roomID,
		Phase:    PhaseDraft,
		Pool:     pool,
		Used:     CardSet{},
		Decks:    Decks{P1: []string{}, P2: []string{}},
		First:    first,
		Current:  first,
		Schedule: buildSchedule(first),
		RoleByPlayer: map[string]Seat{
			players[0]: SeatP1,
			players[1]: SeatP2,
		},
		TimerSec: DefaultTimerSec,
	}, nil
}

// buildSchedule lays out the 10 turn-blocks of a session, 16 picks total.
// The opening single pick is offset by an immediate double for the other seat.
func buildSchedule(first Seat) []TurnBlock {
	other := first.Other()
	return []TurnBlock{
		{Who: first, Count: 1},
		{Who: other, Count: 2},
		{Who: first, Count: 2},
		{Who: other, Count: 2},
		{Who: first, Count: 2},
		{Who: other, Count: 2},
		{Who: first, Count: 2},
		{Who: other, Count: 1},
		{Who: first, Count: 1},
		{Who: other, Count: 1},
	}
}

func samplePool(rng *rand.Rand) []string {
	names := make([]string, len(Catalog))
	copy(names, Catalog)
	rng.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})
	return names[:PoolSize]
}

// ApplyPick validates and applies one pick. Checks run in a fixed order and
// the first failure is returned with the state untouched; mutation only
// happens once every check has passed.
func (g *State) ApplyPick(playerID, card string) error {
	if g.Phase != PhaseDraft {
		return ErrDraftFinished
	}

	role, ok := g.RoleByPlayer[playerID]
	if !ok {
		return ErrInvalidPlayer
	}
	if role != g.Current {
		return ErrNotYourTurn
	}
	if !g.inPool(card) {
		return ErrInvalidCard
	}
	if g.Used[card] {
		return ErrCardAlreadyTaken
	}

	deck := g.deck(role)
	*deck = append(*deck, card)
	g.Used[card] = true

	g.PickIndex++
	if g.PickIndex >= g.Schedule[g.TurnIndex].Count {
		g.TurnIndex++
		g.PickIndex = 0
		if g.TurnIndex < len(g.Schedule) {
			g.Current = g.Schedule[g.TurnIndex].Who
		} else {
			g.Phase = PhaseFinished
		}
	}
	return nil
}

// Available returns the pool cards not yet picked, in pool order.
func (g *State) Available() []string {
	out := make([]string, 0, len(g.Pool)-len(g.Used))
	for _, c := range g.Pool {
		if !g.Used[c] {
			out = append(out, c)
		}
	}
	return out
}

// PlayerFor resolves a seat back to the player occupying it.
func (g *State) PlayerFor(seat Seat) (string, bool) {
	for pid, s := range g.RoleByPlayer {
		if s == seat {
			return pid, true
		}
	}
	return "", false
}

func (g *State) inPool(card string) bool {
	for _, c := range g.Pool {
		if c == card {
			return true
		}
	}
	return false
}

func (g *State) deck(seat Seat) *[]string {
	if seat == SeatP1 {
		return &g.Decks.P1
	}
	return &g.Decks.P2
}
