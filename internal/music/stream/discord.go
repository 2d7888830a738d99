package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

// Control carries the live playback knobs consulted on every frame.
type Control struct {
	Stop   <-chan struct{}
	Paused func() bool
	Volume func() float64
}

// Played reports how much audio a streaming run delivered.
type Played struct {
	Frames int
}

// Duration returns the wall-clock length of the delivered audio.
func (p Played) Duration() time.Duration {
	return time.Duration(p.Frames) * 20 * time.Millisecond
}

// StreamToVoice reads PCM frames from src, applies the current volume, encodes
// them with Opus and sends them over the voice connection until src drains or
// ctrl.Stop fires. A short read at the stream tail counts as normal EOF.
func StreamToVoice(src io.Reader, vc *discordgo.VoiceConnection, ctrl Control) (Played, error) {
	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return Played{}, fmt.Errorf("encoder error: %w", err)
	}

	vc.Speaking(true)
	defer vc.Speaking(false)

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)
	var played Played

	for {
		select {
		case <-ctrl.Stop:
			return played, nil
		default:
		}

		if ctrl.Paused != nil && ctrl.Paused() {
			vc.Speaking(false)
			time.Sleep(50 * time.Millisecond)
			vc.Speaking(true)
			continue
		}

		_, err := io.ReadFull(src, pcmBuf)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return played, nil
			}
			return played, fmt.Errorf("read error: %w", err)
		}

		vol := 1.0
		if ctrl.Volume != nil {
			vol = ctrl.Volume()
		}
		for i := range intBuf {
			sample := float64(int16(binary.LittleEndian.Uint16(pcmBuf[i*2:i*2+2]))) * vol
			if sample > 32767 {
				sample = 32767
			} else if sample < -32768 {
				sample = -32768
			}
			intBuf[i] = int16(sample)
		}

		opus, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			return played, fmt.Errorf("encode error: %w", err)
		}

		select {
		case vc.OpusSend <- opus:
			played.Frames++
		case <-ctrl.Stop:
			return played, nil
		}
	}
}
