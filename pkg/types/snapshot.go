package types

// Snapshot is a read-only projection of one draft session, broadcast to every
// participant after a state change. TurnDeadline and ServerNow are unix
// milliseconds; clients derive remaining time from their difference instead of
// trusting their own clocks.
type Snapshot struct {
	RoomID       string              `json:"roomId"`
	Status       string              `json:"status"` // "draft" | "finished"
	Players      map[string]string   `json:"players"`
	Pool         []string            `json:"pool"`
	Picks        map[string][]string `json:"picks"`
	Turn         string              `json:"turn"`
	PickIndex    int                 `json:"pickIndex"`
	TimerSec     int                 `json:"timer"`
	TurnDeadline *int64              `json:"turnDeadline"`
	ServerNow    int64               `json:"serverNow"`
}
