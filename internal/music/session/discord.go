package session

import (
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/music/stream"
	"github.com/Maselkov/Toothy/internal/music/track"
)

// VoiceSession streams tracks into a Discord voice connection. One instance
// belongs to one guild controller; Play runs the actual streaming in a
// background goroutine and reports completion through Events.
type VoiceSession struct {
	dg      *discordgo.Session
	guildID string
	events  chan Event

	volumeBits atomic.Uint64

	mu          sync.Mutex
	vc          *discordgo.VoiceConnection
	channelID   string
	current     track.Track
	playing     bool
	paused      bool
	base        time.Duration // seek offset of the running segment
	segmentFrom time.Time
	pausedFor   time.Duration
	pausedAt    time.Time
	stopCh      chan struct{}
	stopOnce    *sync.Once
	restartCh   chan struct{}
}

var _ Session = (*VoiceSession)(nil)

func NewVoiceSession(dg *discordgo.Session, guildID string) *VoiceSession {
	s := &VoiceSession{
		dg:      dg,
		guildID: guildID,
		events:  make(chan Event, 16),
	}
	s.SetVolume(1.0)
	return s
}

func (s *VoiceSession) Events() <-chan Event { return s.events }

// Connect joins the voice channel, reusing the existing connection when the
// channel matches.
func (s *VoiceSession) Connect(channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vc != nil && s.channelID == channelID {
		return nil
	}
	vc, err := s.dg.ChannelVoiceJoin(s.guildID, channelID, false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}
	s.vc = vc
	s.channelID = channelID
	log.Printf("[Session] Joined voice channel %s on guild %s", channelID, s.guildID)
	return nil
}

// Play starts streaming the track asynchronously. Completion is reported as a
// TrackEnd or TrackError event; Play itself only fails when the session is
// busy or disconnected.
func (s *VoiceSession) Play(t track.Track) error {
	s.mu.Lock()
	if s.vc == nil {
		s.mu.Unlock()
		return ErrNotConnected
	}
	if s.playing {
		s.mu.Unlock()
		return ErrAlreadyPlaying
	}
	s.current = t
	s.playing = true
	s.paused = false
	s.base = 0
	s.pausedFor = 0
	s.segmentFrom = time.Now()
	s.stopCh = make(chan struct{})
	s.stopOnce = &sync.Once{}
	s.mu.Unlock()

	go s.run(t)
	return nil
}

// run streams track segments until the track drains, errors, or is stopped.
// A seek request ends the current segment and reopens the stream at the new
// offset without ending the track.
func (s *VoiceSession) run(t track.Track) {
	s.mu.Lock()
	stopCh := s.stopCh
	vc := s.vc
	s.mu.Unlock()

	started := false

	for {
		s.mu.Lock()
		base := s.base
		restart := make(chan struct{})
		s.restartCh = restart
		s.segmentFrom = time.Now()
		s.pausedFor = 0
		s.mu.Unlock()

		src, cleanup, err := stream.Open(t, base)
		if err != nil {
			log.Printf("[Session] Failed to open stream for %q: %v", t.Title, err)
			s.finish(Event{Type: TrackError, Track: t, Err: err})
			return
		}

		if !started {
			started = true
			s.emit(Event{Type: TrackStart, Track: t})
		}

		segmentDone := make(chan struct{})
		interrupt := make(chan struct{})
		go func() {
			select {
			case <-stopCh:
				close(interrupt)
			case <-restart:
				close(interrupt)
			case <-segmentDone:
			}
		}()

		_, serr := stream.StreamToVoice(src, vc, stream.Control{
			Stop:   interrupt,
			Paused: s.IsPaused,
			Volume: s.volume,
		})
		cleanup()
		close(segmentDone)

		select {
		case <-stopCh:
			s.finish(Event{Type: TrackEnd, Track: t})
			return
		default:
		}

		select {
		case <-restart:
			continue
		default:
		}

		if serr != nil {
			log.Printf("[Session] Playback error for %q: %v", t.Title, serr)
			s.finish(Event{Type: TrackError, Track: t, Err: serr})
			return
		}
		s.finish(Event{Type: TrackEnd, Track: t})
		return
	}
}

func (s *VoiceSession) finish(ev Event) {
	s.mu.Lock()
	s.playing = false
	s.paused = false
	s.mu.Unlock()
	s.emit(ev)
}

func (s *VoiceSession) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		log.Printf("[Session] Dropped %s event for guild %s (channel full)", ev.Type, s.guildID)
	}
}

func (s *VoiceSession) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return ErrNoTrackPlaying
	}
	if !s.paused {
		s.paused = true
		s.pausedAt = time.Now()
	}
	return nil
}

func (s *VoiceSession) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return ErrNoTrackPlaying
	}
	if s.paused {
		s.paused = false
		s.pausedFor += time.Since(s.pausedAt)
	}
	return nil
}

// Seek restarts the running track at pos.
func (s *VoiceSession) Seek(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return ErrNoTrackPlaying
	}
	if pos < 0 {
		pos = 0
	}
	s.base = pos
	if s.restartCh != nil {
		close(s.restartCh)
		s.restartCh = nil
	}
	return nil
}

// Stop force-ends the current track. The run goroutine emits the TrackEnd
// event, so callers observing Events see the same shape as a natural finish.
func (s *VoiceSession) Stop() {
	s.mu.Lock()
	once, stopCh := s.stopOnce, s.stopCh
	s.mu.Unlock()

	if once == nil || stopCh == nil {
		return
	}
	once.Do(func() { close(stopCh) })
}

func (s *VoiceSession) SetVolume(v float64) {
	s.volumeBits.Store(math.Float64bits(v))
}

func (s *VoiceSession) volume() float64 {
	return math.Float64frombits(s.volumeBits.Load())
}

func (s *VoiceSession) Disconnect() error {
	s.Stop()

	s.mu.Lock()
	vc := s.vc
	s.vc = nil
	s.channelID = ""
	s.mu.Unlock()

	if vc == nil {
		return nil
	}
	return vc.Disconnect()
}

func (s *VoiceSession) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *VoiceSession) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Position reports how far into the current track playback is, excluding
// paused time.
func (s *VoiceSession) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return 0
	}
	if s.paused {
		return s.base + s.pausedAt.Sub(s.segmentFrom) - s.pausedFor
	}
	return s.base + time.Since(s.segmentFrom) - s.pausedFor
}
