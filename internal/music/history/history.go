// Package history keeps the most recently played tracks so the player can
// step backwards. Stack discipline: the last finished track pops first.
package history

import (
	"sync"

	"github.com/Maselkov/Toothy/internal/music/track"
)

// DefaultCapacity bounds how far back the player can navigate.
const DefaultCapacity = 100

// History is a fixed-capacity buffer of played tracks, oldest evicted first.
type History struct {
	mu       sync.Mutex
	items    []track.Track
	capacity int
}

func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{capacity: capacity}
}

// Push records a finished track, evicting the oldest entry at capacity.
func (h *History) Push(t track.Track) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) >= h.capacity {
		h.items = h.items[1:]
	}
	h.items = append(h.items, t)
}

// Pop removes and returns the most recently pushed track.
func (h *History) Pop() (track.Track, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) == 0 {
		return track.Track{}, false
	}
	t := h.items[len(h.items)-1]
	h.items = h.items[:len(h.items)-1]
	return t, true
}

// Drain removes and returns all entries in play order, oldest first. Used by
// repeat mode to recycle the finished session back into the queue.
func (h *History) Drain() []track.Track {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := h.items
	h.items = nil
	return out
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}
