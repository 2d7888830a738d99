// Package controller implements the per-guild playback state machine: it owns
// the track queue, the history buffer and the voice session, runs the playback
// loop, and exposes the operations the command and panel layers invoke.
package controller

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"github.com/Maselkov/Toothy/internal/music/history"
	"github.com/Maselkov/Toothy/internal/music/queue"
	"github.com/Maselkov/Toothy/internal/music/session"
	"github.com/Maselkov/Toothy/internal/music/sponsorblock"
	"github.com/Maselkov/Toothy/internal/music/track"
)

const (
	// DefaultQueueWait is the idle window: when no track arrives within it,
	// the controller disconnects and tears itself down.
	DefaultQueueWait = 30 * time.Second

	// previousThreshold: past this point "previous" restarts the current
	// track instead of going back.
	previousThreshold = 8 * time.Second

	// segmentPollInterval is how often the sponsor-segment watcher samples
	// the playback position.
	segmentPollInterval = 500 * time.Millisecond

	MinVolume = 0.01
	MaxVolume = 5.0
)

var ErrNoPreviousTrack = errors.New("no previous track to play")

type State int

const (
	StateIdle State = iota
	StateConnecting
	StatePlaying
	StatePaused
	StateAwaitingNext
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateAwaitingNext:
		return "awaiting next"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Settings are the per-guild knobs persisted across restarts.
type Settings struct {
	Volume    float64 `json:"volume"`
	Shuffle   bool    `json:"shuffle"`
	Repeat    bool    `json:"repeat"`
	Equalizer bool    `json:"equalizer"`
}

// SettingsStore loads and saves guild settings. The lock flag is deliberately
// session-scoped and never persisted.
type SettingsStore interface {
	MusicSettings(guildID string) (Settings, error)
	SetMusicSettings(guildID string, s Settings) error
}

// Menu is the control-panel surface the controller keeps in sync. Update and
// Delete must be safe to call from any goroutine and must not call back into
// the controller while holding their own locks.
type Menu interface {
	Update()
	Delete()
	ChannelID() string
}

// Snapshot is the render state handed to the panel.
type Snapshot struct {
	GuildID    string
	State      State
	NowPlaying *track.Track
	Position   time.Duration
	SongStart  time.Time
	Paused     bool
	QueueLen   int
	Upcoming   []track.Track
	Volume     float64
	Shuffle    bool
	Repeat     bool
	Equalizer  bool
	Locked     bool
	DJUserID   string
}

// Controller drives playback for a single guild. All exported methods are safe
// to call concurrently with the playback loop.
type Controller struct {
	guildID  string
	djUserID string

	queue    *queue.Queue
	history  *history.History
	session  session.Session
	store    SettingsStore
	segments SegmentSource

	queueWait time.Duration

	mu         sync.Mutex
	state      State
	shuffle    bool
	repeat     bool
	equalizer  bool
	locked     bool
	volume     float64
	songStart  time.Time
	nowPlaying *track.Track
	skipToPrev bool
	next       chan struct{}
	added      chan struct{}
	menu       Menu
	cancel     context.CancelFunc

	stopOnce sync.Once
	onStop   func(guildID string)
}

// SegmentSource supplies spans of a track worth seeking past, such as
// sponsor reads. Nil disables segment skipping.
type SegmentSource interface {
	SkipSegments(ctx context.Context, videoID string) ([]sponsorblock.Segment, error)
}

type Option func(*Controller)

// WithSegmentSource enables sponsor-segment skipping during playback.
func WithSegmentSource(src SegmentSource) Option {
	return func(c *Controller) { c.segments = src }
}

// WithQueueWait overrides the idle-disconnect window.
func WithQueueWait(d time.Duration) Option {
	return func(c *Controller) { c.queueWait = d }
}

// WithCapacities overrides queue and history bounds.
func WithCapacities(queueCap, historyCap int) Option {
	return func(c *Controller) {
		c.queue = queue.New(queueCap)
		c.history = history.New(historyCap)
	}
}

func New(guildID, djUserID string, sess session.Session, store SettingsStore, opts ...Option) *Controller {
	c := &Controller{
		guildID:   guildID,
		djUserID:  djUserID,
		queue:     queue.New(queue.DefaultCapacity),
		history:   history.New(history.DefaultCapacity),
		session:   sess,
		store:     store,
		queueWait: DefaultQueueWait,
		volume:    0.15,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start loads persisted settings and launches the playback loop and the
// session event pump. The onStop hook runs once during teardown, after the
// voice session is released.
func (c *Controller) Start(ctx context.Context, onStop func(guildID string)) {
	runCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.cancel = cancel
	c.onStop = onStop
	c.mu.Unlock()

	if c.store != nil {
		if s, err := c.store.MusicSettings(c.guildID); err == nil {
			c.mu.Lock()
			c.shuffle = s.Shuffle
			c.repeat = s.Repeat
			c.equalizer = s.Equalizer
			if s.Volume > 0 {
				c.volume = clampVolume(s.Volume)
			}
			c.mu.Unlock()
		} else {
			log.Printf("[Controller] Failed to load settings for guild %s: %v", c.guildID, err)
		}
	}
	c.session.SetVolume(c.Volume())

	go c.watchEvents(runCtx)
	go c.run(runCtx)
}

// run is the playback loop: one iteration per track, alive until the queue
// stays empty past queueWait or the controller is stopped.
func (c *Controller) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Controller] Loop panic in guild %s: %v", c.guildID, r)
		}
		c.Stop()
	}()

	for {
		c.mu.Lock()
		c.skipToPrev = false
		c.next = make(chan struct{}, 1)
		c.added = make(chan struct{})
		added := c.added
		c.mu.Unlock()

		waitCtx, cancel := context.WithTimeout(ctx, c.queueWait)
		t, err := c.queue.Dequeue(waitCtx)
		cancel()
		if err != nil {
			close(added)
			if errors.Is(err, queue.ErrQueueTimeout) {
				log.Printf("[Controller] Guild %s idle for %s, disconnecting", c.guildID, c.queueWait)
			}
			return
		}

		c.mu.Lock()
		c.state = StatePlaying
		now := t
		c.nowPlaying = &now
		c.songStart = time.Now()
		c.mu.Unlock()

		if err := c.session.Play(t); err != nil {
			log.Printf("[Controller] Failed to start %q in guild %s: %v", t.Title, c.guildID, err)
			close(added)
			continue
		}

		select {
		case <-c.waitNext():
		case <-ctx.Done():
			close(added)
			return
		}

		c.mu.Lock()
		c.state = StateAwaitingNext
		if !c.skipToPrev {
			c.history.Push(t)
			if c.shuffle {
				c.queue.Shuffle()
			}
		}
		c.nowPlaying = nil
		c.mu.Unlock()
		close(added)
	}
}

// watchSkipSegments polls the playback position for the life of one track
// and seeks past any sponsor segment it lands in. Lookup failures only mean
// the track plays unskipped.
func (c *Controller) watchSkipSegments(ctx context.Context, t track.Track) {
	segments, err := c.segments.SkipSegments(ctx, t.ID)
	if err != nil {
		log.Printf("[Controller] Segment lookup for %q failed: %v", t.Title, err)
		return
	}
	if len(segments) == 0 {
		return
	}

	ticker := time.NewTicker(segmentPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := c.NowPlaying()
		if now == nil || now.ID != t.ID {
			return
		}

		pos := c.session.Position()
		for _, seg := range segments {
			if pos >= seg.Start && pos < seg.End {
				if err := c.seekTo(seg.End); err != nil {
					log.Printf("[Controller] Segment skip in %q failed: %v", t.Title, err)
					return
				}
				break
			}
		}
	}
}

func (c *Controller) waitNext() chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

// watchEvents pumps session lifecycle events into loop signals and menu
// refreshes.
func (c *Controller) watchEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.session.Events():
			if !ok {
				return
			}
			switch ev.Type {
			case session.TrackStart:
				c.mu.Lock()
				c.songStart = time.Now()
				menu := c.menu
				c.mu.Unlock()
				if menu != nil {
					menu.Update()
				}
				if c.segments != nil {
					go c.watchSkipSegments(ctx, ev.Track)
				}
			case session.TrackError:
				log.Printf("[Controller] Track %q errored in guild %s: %v", ev.Track.Title, c.guildID, ev.Err)
				c.trackDone(ctx)
			case session.TrackEnd:
				c.trackDone(ctx)
			}
		}
	}
}

// trackDone signals the loop that the current track finished and waits for
// its history/shuffle bookkeeping before touching repeat state. The two-step
// handshake keeps a fast skip from racing the bookkeeping of the track that
// just ended.
func (c *Controller) trackDone(ctx context.Context) {
	c.mu.Lock()
	next, added := c.next, c.added
	c.mu.Unlock()
	if next == nil {
		return
	}

	select {
	case next <- struct{}{}:
	default:
	}

	select {
	case <-added:
	case <-ctx.Done():
		return
	}

	c.mu.Lock()
	repeat := c.repeat
	menu := c.menu
	c.mu.Unlock()

	if c.queue.Len() == 0 && !c.session.IsPlaying() {
		if repeat && c.history.Len() > 0 {
			// Repeat refills from history before any shuffle applies; the
			// loop's next iteration shuffles the refilled queue if needed.
			recycled := c.history.Drain()
			if n, err := c.queue.EnqueueBatch(recycled); err != nil {
				log.Printf("[Controller] Repeat refill added %d of %d tracks in guild %s: %v",
					n, len(recycled), c.guildID, err)
			}
			return
		}
	}
	if menu != nil {
		menu.Update()
	}
}

// Connect joins the given voice channel.
func (c *Controller) Connect(channelID string) error {
	c.mu.Lock()
	c.state = StateConnecting
	c.mu.Unlock()
	return c.session.Connect(channelID)
}

// Enqueue adds a track to the queue.
func (c *Controller) Enqueue(t track.Track) error {
	return c.queue.Enqueue(t)
}

// EnqueueBatch adds several tracks, returning how many fit.
func (c *Controller) EnqueueBatch(tracks []track.Track) (int, error) {
	return c.queue.EnqueueBatch(tracks)
}

// RemoveAt removes the queued track at index i.
func (c *Controller) RemoveAt(i int) (track.Track, error) {
	return c.queue.RemoveAt(i)
}

// Upcoming returns up to n queued tracks without consuming them.
func (c *Controller) Upcoming(n int) []track.Track {
	return c.queue.Peek(n)
}

func (c *Controller) QueueLen() int { return c.queue.Len() }

// Previous steps back one track. With no history, or more than a few seconds
// into the current track, it restarts the current track from zero instead.
func (c *Controller) Previous() error {
	c.mu.Lock()

	playing := c.session.IsPlaying()
	elapsed := time.Since(c.songStart)
	if c.history.Len() == 0 || (playing && elapsed > previousThreshold) {
		if c.nowPlaying == nil {
			c.mu.Unlock()
			return ErrNoPreviousTrack
		}
		if err := c.session.Seek(0); err != nil {
			c.mu.Unlock()
			return err
		}
		if c.session.IsPaused() {
			c.session.Resume()
			c.state = StatePlaying
		}
		c.songStart = time.Now()
		menu := c.menu
		c.mu.Unlock()
		if menu != nil {
			menu.Update()
		}
		return nil
	}

	prev, ok := c.history.Pop()
	if !ok {
		c.mu.Unlock()
		return ErrNoPreviousTrack
	}
	if c.nowPlaying != nil {
		if err := c.queue.PushFront(*c.nowPlaying); err != nil {
			log.Printf("[Controller] Could not requeue current track in guild %s: %v", c.guildID, err)
		}
	}
	if err := c.queue.PushFront(prev); err != nil {
		c.mu.Unlock()
		return err
	}
	if playing {
		c.skipToPrev = true
		c.session.Stop()
	}
	c.mu.Unlock()
	return nil
}

// Skip force-ends the current track so the loop advances.
func (c *Controller) Skip() {
	c.session.Stop()
}

// TogglePause flips pause state and reports the new paused value.
func (c *Controller) TogglePause() (bool, error) {
	if c.session.IsPaused() {
		if err := c.session.Resume(); err != nil {
			return true, err
		}
		c.mu.Lock()
		c.state = StatePlaying
		c.mu.Unlock()
		return false, nil
	}
	if err := c.session.Pause(); err != nil {
		return false, err
	}
	c.mu.Lock()
	c.state = StatePaused
	c.mu.Unlock()
	return true, nil
}

// SeekBy shifts the playback position by delta, clamped into the track bounds.
func (c *Controller) SeekBy(delta time.Duration) error {
	c.mu.Lock()
	now := c.nowPlaying
	c.mu.Unlock()
	if now == nil {
		return session.ErrNoTrackPlaying
	}

	pos := c.session.Position() + delta
	if pos < 0 {
		pos = 0
	}
	if now.Duration > 0 && pos > now.Duration {
		pos = now.Duration
	}
	return c.seekTo(pos)
}

// seekTo jumps to an absolute position and shifts songStart so elapsed-time
// rendering stays truthful.
func (c *Controller) seekTo(pos time.Duration) error {
	shift := pos - c.session.Position()
	if err := c.session.Seek(pos); err != nil {
		return err
	}
	c.mu.Lock()
	c.songStart = c.songStart.Add(-shift)
	c.mu.Unlock()
	return nil
}

// AdjustVolume clamps, persists and applies the given volume, returning the
// effective value.
func (c *Controller) AdjustVolume(v float64) float64 {
	v = clampVolume(v)

	c.mu.Lock()
	c.volume = v
	c.mu.Unlock()

	c.persistSettings()
	c.session.SetVolume(v)
	return v
}

func clampVolume(v float64) float64 {
	v = math.Round(v*100) / 100
	return math.Min(math.Max(v, MinVolume), MaxVolume)
}

func (c *Controller) SetShuffle(on bool) {
	c.mu.Lock()
	c.shuffle = on
	c.mu.Unlock()
	c.persistSettings()
}

func (c *Controller) SetRepeat(on bool) {
	c.mu.Lock()
	c.repeat = on
	c.mu.Unlock()
	c.persistSettings()
}

func (c *Controller) SetEqualizer(on bool) {
	c.mu.Lock()
	c.equalizer = on
	c.mu.Unlock()
	c.persistSettings()
}

// ToggleLock flips the lock and returns the new value. Lock state is not
// persisted.
func (c *Controller) ToggleLock() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = !c.locked
	return c.locked
}

func (c *Controller) persistSettings() {
	if c.store == nil {
		return
	}
	c.mu.Lock()
	s := Settings{Volume: c.volume, Shuffle: c.shuffle, Repeat: c.repeat, Equalizer: c.equalizer}
	c.mu.Unlock()
	if err := c.store.SetMusicSettings(c.guildID, s); err != nil {
		log.Printf("[Controller] Failed to persist settings for guild %s: %v", c.guildID, err)
	}
}

// SetMenu binds the control-panel surface.
func (c *Controller) SetMenu(m Menu) {
	c.mu.Lock()
	c.menu = m
	c.mu.Unlock()
}

// UpdateMenu re-renders the control panel if one is bound.
func (c *Controller) UpdateMenu() {
	c.mu.Lock()
	menu := c.menu
	c.mu.Unlock()
	if menu != nil {
		menu.Update()
	}
}

// MenuChannelID returns the text channel the bound panel lives in, empty
// when no panel is bound.
func (c *Controller) MenuChannelID() string {
	c.mu.Lock()
	menu := c.menu
	c.mu.Unlock()
	if menu == nil {
		return ""
	}
	return menu.ChannelID()
}

// Stop tears the controller down: ends playback, leaves voice, removes the
// panel message and unregisters from the registry. Safe to call repeatedly.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.state = StateStopped
		cancel := c.cancel
		menu := c.menu
		onStop := c.onStop
		c.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if err := c.session.Disconnect(); err != nil {
			log.Printf("[Controller] Disconnect error in guild %s: %v", c.guildID, err)
		}
		if menu != nil {
			menu.Delete()
		}
		if onStop != nil {
			onStop(c.guildID)
		}
		log.Printf("[Controller] Guild %s controller stopped", c.guildID)
	})
}

func (c *Controller) GuildID() string  { return c.guildID }
func (c *Controller) DJUserID() string { return c.djUserID }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

func (c *Controller) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

func (c *Controller) NowPlaying() *track.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nowPlaying == nil {
		return nil
	}
	t := *c.nowPlaying
	return &t
}

// Snapshot captures everything the panel needs to render.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		GuildID:   c.guildID,
		State:     c.state,
		SongStart: c.songStart,
		Paused:    c.session.IsPaused(),
		QueueLen:  c.queue.Len(),
		Volume:    c.volume,
		Shuffle:   c.shuffle,
		Repeat:    c.repeat,
		Equalizer: c.equalizer,
		Locked:    c.locked,
		DJUserID:  c.djUserID,
	}
	if c.nowPlaying != nil {
		t := *c.nowPlaying
		snap.NowPlaying = &t
		snap.Position = c.session.Position()
	}
	if !c.shuffle {
		snap.Upcoming = c.queue.Peek(5)
	}
	return snap
}
