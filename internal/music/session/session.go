// Package session defines the playback session contract the controller drives:
// a voice connection plus a streaming player that reports track lifecycle
// events.
package session

import (
	"errors"
	"time"

	"github.com/Maselkov/Toothy/internal/music/track"
)

var (
	ErrNotConnected   = errors.New("not connected to a voice channel")
	ErrNoTrackPlaying = errors.New("no track is currently playing")
	ErrAlreadyPlaying = errors.New("a track is already playing")
)

type EventType int

const (
	TrackStart EventType = iota
	TrackEnd
	TrackError
)

func (e EventType) String() string {
	switch e {
	case TrackStart:
		return "track start"
	case TrackEnd:
		return "track end"
	case TrackError:
		return "track error"
	}
	return "unknown"
}

// Event is a playback lifecycle notification. Err is set for TrackError only.
type Event struct {
	Type  EventType
	Track track.Track
	Err   error
}

// Session is the voice/streaming player owned by exactly one controller.
// Play is asynchronous: completion arrives as a TrackEnd or TrackError event.
type Session interface {
	Connect(channelID string) error
	Play(t track.Track) error
	Pause() error
	Resume() error
	Seek(pos time.Duration) error
	Stop()
	SetVolume(v float64)
	Disconnect() error
	IsPlaying() bool
	IsPaused() bool
	Position() time.Duration
	Events() <-chan Event
}
