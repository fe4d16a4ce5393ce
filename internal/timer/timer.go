package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Registry owns the process-local turn timers, one per room. Only deadlines
// are persisted (inside the draft record); the live handles here can be thrown
// away and re-armed from those deadlines after a restart.
type Registry struct {
	clock clockwork.Clock
	fire  func(roomID string)
	log   *zap.Logger

	mu     sync.Mutex
	timers map[string]*entry
}

type entry struct {
	timer clockwork.Timer
	stop  chan struct{}
}

// NewRegistry creates a registry whose timers invoke fire with the room id
// when they expire. fire runs on the timer's goroutine.
func NewRegistry(clock clockwork.Clock, log *zap.Logger, fire func(roomID string)) *Registry {
	return &Registry{
		clock:  clock,
		fire:   fire,
		log:    log,
		timers: make(map[string]*entry),
	}
}

// Arm schedules a fire for roomID after d, superseding any previously armed
// timer for that room so a single room never has two pending fires.
func (r *Registry) Arm(roomID string, d time.Duration) {
	if d < 0 {
		d = 0
	}

	e := &entry{
		timer: r.clock.NewTimer(d),
		stop:  make(chan struct{}),
	}

	r.mu.Lock()
	if old, ok := r.timers[roomID]; ok {
		stopAndDrain(old.timer)
		close(old.stop)
	}
	r.timers[roomID] = e
	r.mu.Unlock()

	r.log.Debug("armed turn timer",
		zap.String("room_id", roomID),
		zap.Duration("duration", d))

	go func() {
		select {
		case <-e.timer.Chan():
			r.remove(roomID, e)
			r.fire(roomID)
		case <-e.stop:
		}
	}()
}

// Cancel stops the pending timer for roomID, if any.
func (r *Registry) Cancel(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.timers[roomID]; ok {
		stopAndDrain(e.timer)
		close(e.stop)
		delete(r.timers, roomID)
	}
}

// Stop cancels every pending timer. Used on shutdown.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for roomID, e := range r.timers {
		stopAndDrain(e.timer)
		close(e.stop)
		delete(r.timers, roomID)
	}
}

func (r *Registry) remove(roomID string, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.timers[roomID]; ok && cur == e {
		delete(r.timers, roomID)
	}
}

// stopAndDrain stops a timer and drains its channel so a fired-but-unread
// timer cannot leak a value into a later select.
func stopAndDrain(t clockwork.Timer) {
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
}
