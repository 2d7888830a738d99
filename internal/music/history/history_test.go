package history

import (
	"fmt"
	"testing"

	"github.com/Maselkov/Toothy/internal/music/track"
)

func mkTrack(i int) track.Track {
	return track.Track{ID: fmt.Sprintf("id-%d", i), Title: fmt.Sprintf("track %d", i)}
}

func TestPushPop_StackOrder(t *testing.T) {
	h := New(10)
	for i := 0; i < 3; i++ {
		h.Push(mkTrack(i))
	}

	for i := 2; i >= 0; i-- {
		got, ok := h.Pop()
		if !ok {
			t.Fatalf("Pop() empty at %d", i)
		}
		if got.ID != fmt.Sprintf("id-%d", i) {
			t.Errorf("Pop() = %s, want id-%d", got.ID, i)
		}
	}
	if _, ok := h.Pop(); ok {
		t.Error("Pop() on empty history returned ok")
	}
}

func TestPush_EvictsOldest(t *testing.T) {
	h := New(5)
	for i := 0; i < 20; i++ {
		h.Push(mkTrack(i))
	}

	if h.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", h.Len())
	}
	// Only the last 5 pushes may come back out.
	for i := 19; i >= 15; i-- {
		got, ok := h.Pop()
		if !ok || got.ID != fmt.Sprintf("id-%d", i) {
			t.Errorf("Pop() = %v (%v), want id-%d", got.ID, ok, i)
		}
	}
}

func TestDrain_ReturnsPlayOrderAndClears(t *testing.T) {
	h := New(10)
	for i := 0; i < 4; i++ {
		h.Push(mkTrack(i))
	}

	got := h.Drain()

	if len(got) != 4 {
		t.Fatalf("Drain() returned %d items, want 4", len(got))
	}
	for i, tr := range got {
		if tr.ID != fmt.Sprintf("id-%d", i) {
			t.Errorf("Drain()[%d] = %s, want id-%d", i, tr.ID, i)
		}
	}
	if h.Len() != 0 {
		t.Errorf("Len() after Drain = %d, want 0", h.Len())
	}
}

func TestClear(t *testing.T) {
	h := New(10)
	h.Push(mkTrack(1))
	h.Clear()
	if h.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", h.Len())
	}
}
