package timer

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

func recvFire(t *testing.T, ch <-chan string, within time.Duration) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(within):
		t.Fatalf("timed out waiting for fire")
		return "" // unreachable
	}
}

func recvNoFire(t *testing.T, ch <-chan string, within time.Duration) {
	t.Helper()
	select {
	case id := <-ch:
		t.Fatalf("unexpected fire for %q", id)
	case <-time.After(within):
	}
}

func TestArm_FiresAtDeadline(t *testing.T) {
	fc := clockwork.NewFakeClock()
	fired := make(chan string, 1)
	reg := NewRegistry(fc, zap.NewNop(), func(id string) { fired <- id })
	defer reg.Stop()

	reg.Arm("r1", 5*time.Second)
	fc.BlockUntil(1)

	fc.Advance(4 * time.Second)
	recvNoFire(t, fired, 100*time.Millisecond)

	fc.Advance(time.Second)
	if id := recvFire(t, fired, time.Second); id != "r1" {
		t.Fatalf("fired for %q, want r1", id)
	}
}

func TestArm_SupersedesPreviousTimer(t *testing.T) {
	fc := clockwork.NewFakeClock()
	fired := make(chan string, 2)
	reg := NewRegistry(fc, zap.NewNop(), func(id string) { fired <- id })
	defer reg.Stop()

	reg.Arm("r1", 5*time.Second)
	fc.BlockUntil(1)
	reg.Arm("r1", 10*time.Second)
	fc.BlockUntil(1)

	// Past the first deadline: the superseded timer must stay quiet.
	fc.Advance(6 * time.Second)
	recvNoFire(t, fired, 200*time.Millisecond)

	fc.Advance(4 * time.Second)
	if id := recvFire(t, fired, time.Second); id != "r1" {
		t.Fatalf("fired for %q, want r1", id)
	}
	recvNoFire(t, fired, 100*time.Millisecond)
}

func TestCancel_PreventsFire(t *testing.T) {
	fc := clockwork.NewFakeClock()
	fired := make(chan string, 1)
	reg := NewRegistry(fc, zap.NewNop(), func(id string) { fired <- id })

	reg.Arm("r1", time.Second)
	fc.BlockUntil(1)
	reg.Cancel("r1")

	fc.Advance(2 * time.Second)
	recvNoFire(t, fired, 200*time.Millisecond)
}

func TestStop_CancelsEverything(t *testing.T) {
	fc := clockwork.NewFakeClock()
	fired := make(chan string, 2)
	reg := NewRegistry(fc, zap.NewNop(), func(id string) { fired <- id })

	reg.Arm("r1", time.Second)
	reg.Arm("r2", time.Second)
	fc.BlockUntil(2)
	reg.Stop()

	fc.Advance(2 * time.Second)
	recvNoFire(t, fired, 200*time.Millisecond)
}

func TestArm_IndependentRooms(t *testing.T) {
	fc := clockwork.NewFakeClock()
	fired := make(chan string, 2)
	reg := NewRegistry(fc, zap.NewNop(), func(id string) { fired <- id })
	defer reg.Stop()

	reg.Arm("r1", time.Second)
	reg.Arm("r2", 3*time.Second)
	fc.BlockUntil(2)

	fc.Advance(time.Second)
	if id := recvFire(t, fired, time.Second); id != "r1" {
		t.Fatalf("first fire for %q, want r1", id)
	}

	fc.Advance(2 * time.Second)
	if id := recvFire(t, fired, time.Second); id != "r2" {
		t.Fatalf("second fire for %q, want r2", id)
	}
}
