// Package queue implements the bounded track queue shared between the
// controller loop (consumer) and command/panel handlers (producers).
package queue

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/Maselkov/Toothy/internal/music/track"
)

// DefaultCapacity is the queue bound used for guild players.
const DefaultCapacity = 1000

var (
	ErrQueueFull       = errors.New("queue is full")
	ErrQueueTimeout    = errors.New("timed out waiting for a track")
	ErrIndexOutOfRange = errors.New("queue index out of range")
)

// Queue is a capacity-bounded FIFO of tracks. All methods are safe for
// concurrent use; Dequeue suspends the caller until a track arrives or the
// context expires.
type Queue struct {
	mu       sync.Mutex
	wakeup   *sync.Cond
	items    []track.Track
	capacity int
}

func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	q := &Queue{capacity: capacity}
	q.wakeup = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends a track, failing with ErrQueueFull at capacity.
func (q *Queue) Enqueue(t track.Track) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		return ErrQueueFull
	}
	q.items = append(q.items, t)
	q.wakeup.Broadcast()
	return nil
}

// EnqueueBatch appends as many tracks as capacity allows and returns how many
// were added. A partial append returns ErrQueueFull alongside the count.
func (q *Queue) EnqueueBatch(tracks []track.Track) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	free := q.capacity - len(q.items)
	if free <= 0 {
		return 0, ErrQueueFull
	}
	n := len(tracks)
	if n > free {
		n = free
	}
	q.items = append(q.items, tracks[:n]...)
	q.wakeup.Broadcast()
	if n < len(tracks) {
		return n, ErrQueueFull
	}
	return n, nil
}

// PushFront inserts a track at the head of the queue so it plays next.
func (q *Queue) PushFront(t track.Track) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		return ErrQueueFull
	}
	q.items = append([]track.Track{t}, q.items...)
	q.wakeup.Broadcast()
	return nil
}

// Dequeue removes and returns the head track, blocking until one is available
// or ctx is done. A deadline expiry is reported as ErrQueueTimeout; any other
// cancellation is returned as the context's error.
func (q *Queue) Dequeue(ctx context.Context) (track.Track, error) {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.wakeup.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return track.Track{}, ErrQueueTimeout
			}
			return track.Track{}, err
		}
		q.wakeup.Wait()
	}

	t := q.items[0]
	q.items = q.items[1:]
	return t, nil
}

// Peek returns a snapshot copy of up to n tracks from the head, in order.
func (q *Queue) Peek(n int) []track.Track {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n > len(q.items) {
		n = len(q.items)
	}
	if n <= 0 {
		return nil
	}
	out := make([]track.Track, n)
	copy(out, q.items[:n])
	return out
}

// RemoveAt removes and returns the track at index i.
func (q *Queue) RemoveAt(i int) (track.Track, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if i < 0 || i >= len(q.items) {
		return track.Track{}, ErrIndexOutOfRange
	}
	t := q.items[i]
	q.items = append(q.items[:i], q.items[i+1:]...)
	return t, nil
}

// Shuffle permutes the remaining tracks in place.
func (q *Queue) Shuffle() {
	q.mu.Lock()
	defer q.mu.Unlock()

	rand.Shuffle(len(q.items), func(i, j int) {
		q.items[i], q.items[j] = q.items[j], q.items[i]
	})
}

// Clear drops all queued tracks.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
