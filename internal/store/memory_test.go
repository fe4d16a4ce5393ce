package store

import (
	"bytes"
	"context"
	"testing"
)

func TestMemory_GetSetReplacesWholeValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, "room:r1"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := m.Set(ctx, "room:r1", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Set(ctx, "room:r1", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	v, ok, err := m.Get(ctx, "room:r1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(v, []byte(`{"v":2}`)) {
		t.Fatalf("got %s, want replacement value", v)
	}
}

func TestMemory_ReturnedSliceIsDetached(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Set(ctx, "k", []byte("abc")); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, _, _ := m.Get(ctx, "k")
	v[0] = 'z'

	again, _, _ := m.Get(ctx, "k")
	if !bytes.Equal(again, []byte("abc")) {
		t.Fatalf("stored value mutated through returned slice: %s", again)
	}
}
