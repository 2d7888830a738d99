package controller

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Maselkov/Toothy/internal/music/session"
	"github.com/Maselkov/Toothy/internal/music/sponsorblock"
	"github.com/Maselkov/Toothy/internal/music/track"
)

// fakeSession records calls and lets tests drive track completion.
type fakeSession struct {
	mu          sync.Mutex
	events      chan session.Event
	connected   bool
	playing     bool
	paused      bool
	current     track.Track
	plays       []track.Track
	seeks       []time.Duration
	position    time.Duration
	volume      float64
	disconnects int
}

var _ session.Session = (*fakeSession)(nil)

func newFakeSession() *fakeSession {
	return &fakeSession{events: make(chan session.Event, 16)}
}

func (f *fakeSession) Connect(channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	return nil
}

func (f *fakeSession) Play(t track.Track) error {
	f.mu.Lock()
	if f.playing {
		f.mu.Unlock()
		return session.ErrAlreadyPlaying
	}
	f.playing = true
	f.current = t
	f.plays = append(f.plays, t)
	f.mu.Unlock()
	f.events <- session.Event{Type: session.TrackStart, Track: t}
	return nil
}

func (f *fakeSession) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.playing {
		return session.ErrNoTrackPlaying
	}
	f.paused = true
	return nil
}

func (f *fakeSession) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
	return nil
}

func (f *fakeSession) Seek(pos time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.playing {
		return session.ErrNoTrackPlaying
	}
	f.seeks = append(f.seeks, pos)
	return nil
}

// Stop simulates a forced track end, like the real session does.
func (f *fakeSession) Stop() {
	f.mu.Lock()
	if !f.playing {
		f.mu.Unlock()
		return
	}
	f.playing = false
	t := f.current
	f.mu.Unlock()
	f.events <- session.Event{Type: session.TrackEnd, Track: t}
}

// finishCurrent simulates a natural track end.
func (f *fakeSession) finishCurrent() {
	f.Stop()
}

func (f *fakeSession) SetVolume(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = v
}

func (f *fakeSession) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	f.connected = false
	f.playing = false
	return nil
}

func (f *fakeSession) IsPlaying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

func (f *fakeSession) IsPaused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func (f *fakeSession) Position() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *fakeSession) setPosition(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = d
}

func (f *fakeSession) Events() <-chan session.Event { return f.events }

func (f *fakeSession) playCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.plays)
}

func (f *fakeSession) playedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, len(f.plays))
	for i, t := range f.plays {
		ids[i] = t.ID
	}
	return ids
}

func (f *fakeSession) seekCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seeks)
}

type fakeStore struct {
	mu       sync.Mutex
	settings map[string]Settings
	saves    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{settings: make(map[string]Settings)}
}

func (s *fakeStore) MusicSettings(guildID string) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings[guildID], nil
}

func (s *fakeStore) SetMusicSettings(guildID string, set Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[guildID] = set
	s.saves++
	return nil
}

type fakeSegments struct {
	segs []sponsorblock.Segment
}

func (f *fakeSegments) SkipSegments(context.Context, string) ([]sponsorblock.Segment, error) {
	return f.segs, nil
}

func mkTrack(i int) track.Track {
	return track.Track{ID: fmt.Sprintf("id-%d", i), Title: fmt.Sprintf("track %d", i), Duration: 3 * time.Minute}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startController(t *testing.T, sess *fakeSession, store SettingsStore, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithQueueWait(500 * time.Millisecond)}, opts...)
	c := New("guild-1", "dj-1", sess, store, opts...)
	c.Start(context.Background(), nil)
	t.Cleanup(c.Stop)
	return c
}

func TestIdleTimeout_TearsDown(t *testing.T) {
	sess := newFakeSession()
	reg := NewRegistry(newFakeStore(), func(string) session.Session { return sess },
		WithQueueWait(50*time.Millisecond))

	c := reg.GetOrCreate(context.Background(), "guild-1", "dj-1")
	if c == nil {
		t.Fatal("GetOrCreate returned nil")
	}

	waitFor(t, "registry to empty", func() bool { return reg.Len() == 0 })

	sess.mu.Lock()
	disconnects := sess.disconnects
	sess.mu.Unlock()
	if disconnects != 1 {
		t.Errorf("disconnects = %d, want exactly 1", disconnects)
	}
	if c.State() != StateStopped {
		t.Errorf("State() = %v, want stopped", c.State())
	}
}

func TestStop_Idempotent(t *testing.T) {
	sess := newFakeSession()
	c := startController(t, sess, newFakeStore())

	c.Stop()
	c.Stop()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.disconnects != 1 {
		t.Errorf("disconnects = %d, want 1", sess.disconnects)
	}
}

func TestLoop_PlaysQueuedTracks(t *testing.T) {
	sess := newFakeSession()
	c := startController(t, sess, newFakeStore())

	if err := c.Enqueue(mkTrack(1)); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "first play", func() bool { return sess.playCount() == 1 })

	if err := c.Enqueue(mkTrack(2)); err != nil {
		t.Fatal(err)
	}
	sess.finishCurrent()
	waitFor(t, "second play", func() bool { return sess.playCount() == 2 })

	got := sess.playedIDs()
	if got[0] != "id-1" || got[1] != "id-2" {
		t.Errorf("play order = %v, want [id-1 id-2]", got)
	}
}

func TestPrevious_RestartsWhenHistoryEmpty(t *testing.T) {
	sess := newFakeSession()
	c := startController(t, sess, newFakeStore())

	_ = c.Enqueue(mkTrack(1))
	waitFor(t, "play", func() bool { return sess.playCount() == 1 })
	qlen := c.QueueLen()

	if err := c.Previous(); err != nil {
		t.Fatalf("Previous() = %v", err)
	}

	if sess.seekCount() != 1 {
		t.Errorf("seeks = %d, want 1 (restart from zero)", sess.seekCount())
	}
	sess.mu.Lock()
	seekPos := sess.seeks[0]
	sess.mu.Unlock()
	if seekPos != 0 {
		t.Errorf("seek position = %v, want 0", seekPos)
	}
	if c.QueueLen() != qlen {
		t.Errorf("queue mutated: len %d, want %d", c.QueueLen(), qlen)
	}
}

func TestPrevious_StepsBackThroughHistory(t *testing.T) {
	sess := newFakeSession()
	c := startController(t, sess, newFakeStore())

	_ = c.Enqueue(mkTrack(1))
	_ = c.Enqueue(mkTrack(2))
	waitFor(t, "first play", func() bool { return sess.playCount() == 1 })
	sess.finishCurrent()
	waitFor(t, "second play", func() bool { return sess.playCount() == 2 })

	// History now holds id-1, current track is id-2, started moments ago.
	if err := c.Previous(); err != nil {
		t.Fatalf("Previous() = %v", err)
	}

	waitFor(t, "previous track to play", func() bool { return sess.playCount() == 3 })
	got := sess.playedIDs()
	if got[2] != "id-1" {
		t.Errorf("play after Previous = %s, want id-1", got[2])
	}
	// The track that was playing is next in line.
	upcoming := c.Upcoming(1)
	if len(upcoming) != 1 || upcoming[0].ID != "id-2" {
		t.Errorf("Upcoming(1) = %v, want [id-2]", upcoming)
	}
}

func TestAdjustVolume_Clamps(t *testing.T) {
	sess := newFakeSession()
	store := newFakeStore()
	c := startController(t, sess, store)

	tests := []struct {
		in   float64
		want float64
	}{
		{99, 5.0},
		{-3, 0.01},
		{0.154, 0.15},
		{0, 0.01},
		{5.01, 5.0},
		{1.0, 1.0},
	}
	for _, tt := range tests {
		if got := c.AdjustVolume(tt.in); got != tt.want {
			t.Errorf("AdjustVolume(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	store.mu.Lock()
	saved := store.settings["guild-1"].Volume
	store.mu.Unlock()
	if saved != 1.0 {
		t.Errorf("persisted volume = %v, want 1.0", saved)
	}
	sess.mu.Lock()
	applied := sess.volume
	sess.mu.Unlock()
	if applied != 1.0 {
		t.Errorf("session volume = %v, want 1.0", applied)
	}
}

func TestShuffle_QueuePermutedOnTrackEnd(t *testing.T) {
	sess := newFakeSession()
	c := startController(t, sess, newFakeStore())
	c.SetShuffle(true)

	_ = c.Enqueue(mkTrack(0))
	waitFor(t, "first play", func() bool { return sess.playCount() == 1 })
	for i := 1; i <= 6; i++ {
		_ = c.Enqueue(mkTrack(i))
	}

	sess.finishCurrent()
	waitFor(t, "second play", func() bool { return sess.playCount() == 2 })

	// Remaining tracks (queued plus the one now playing) must be exactly
	// the six enqueued after the first, in some order.
	seen := make(map[string]bool)
	sess.mu.Lock()
	seen[sess.current.ID] = true
	sess.mu.Unlock()
	for _, tr := range c.Upcoming(10) {
		seen[tr.ID] = true
	}
	if len(seen) != 6 {
		t.Fatalf("remaining set has %d tracks, want 6", len(seen))
	}
	for i := 1; i <= 6; i++ {
		if !seen[fmt.Sprintf("id-%d", i)] {
			t.Errorf("track id-%d missing after shuffle", i)
		}
	}
}

func TestRepeat_RefillsQueueFromHistory(t *testing.T) {
	sess := newFakeSession()
	c := startController(t, sess, newFakeStore())
	c.SetRepeat(true)

	_ = c.Enqueue(mkTrack(1))
	waitFor(t, "first play", func() bool { return sess.playCount() == 1 })

	sess.finishCurrent()

	// Queue was empty on track end: history is recycled and the track
	// plays again.
	waitFor(t, "replay from history", func() bool { return sess.playCount() == 2 })
	got := sess.playedIDs()
	if got[1] != "id-1" {
		t.Errorf("replayed track = %s, want id-1", got[1])
	}
}

func TestSettings_LoadedOnStart(t *testing.T) {
	sess := newFakeSession()
	store := newFakeStore()
	store.settings["guild-1"] = Settings{Volume: 0.5, Shuffle: true, Repeat: true}

	c := startController(t, sess, store)

	waitFor(t, "settings to load", func() bool { return c.Volume() == 0.5 })
	snap := c.Snapshot()
	if !snap.Shuffle || !snap.Repeat {
		t.Errorf("snapshot flags = shuffle %v repeat %v, want both true", snap.Shuffle, snap.Repeat)
	}
}

func TestSnapshot_OmitsUpcomingWhenShuffled(t *testing.T) {
	sess := newFakeSession()
	c := startController(t, sess, newFakeStore())

	_ = c.Enqueue(mkTrack(1))
	waitFor(t, "play", func() bool { return sess.playCount() == 1 })
	_ = c.Enqueue(mkTrack(2))

	if got := c.Snapshot().Upcoming; len(got) != 1 {
		t.Errorf("Upcoming = %v, want one entry", got)
	}

	c.SetShuffle(true)
	if got := c.Snapshot().Upcoming; got != nil {
		t.Errorf("Upcoming with shuffle on = %v, want nil", got)
	}
}

func TestSponsorSegments_SkippedDuringPlayback(t *testing.T) {
	sess := newFakeSession()
	segs := &fakeSegments{segs: []sponsorblock.Segment{{Start: 10 * time.Second, End: 25 * time.Second}}}
	c := startController(t, sess, newFakeStore(), WithSegmentSource(segs))

	_ = c.Enqueue(mkTrack(1))
	waitFor(t, "play", func() bool { return sess.playCount() == 1 })

	sess.setPosition(12 * time.Second)
	waitFor(t, "seek past sponsor segment", func() bool { return sess.seekCount() > 0 })

	sess.mu.Lock()
	got := sess.seeks[0]
	sess.mu.Unlock()
	if got != 25*time.Second {
		t.Errorf("seek = %v, want %v (end of sponsor segment)", got, 25*time.Second)
	}
}

func TestRegistry_GetOrCreateReuses(t *testing.T) {
	reg := NewRegistry(newFakeStore(), func(string) session.Session { return newFakeSession() },
		WithQueueWait(time.Minute))
	defer reg.StopAll()

	a := reg.GetOrCreate(context.Background(), "guild-1", "dj-1")
	b := reg.GetOrCreate(context.Background(), "guild-1", "dj-2")

	if a != b {
		t.Error("GetOrCreate created a second controller for the same guild")
	}
	if _, ok := reg.Get("guild-2"); ok {
		t.Error("Get returned a controller for an unknown guild")
	}
}
