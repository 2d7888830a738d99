// Package stream turns a track URL into raw PCM and pushes it into a Discord
// voice connection. Decoding goes through ffmpeg; the YouTube side is resolved
// with the kkdai client, preferring a direct stream URL and falling back to
// piping the container through stdin when link resolution fails.
package stream

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"time"

	youtube "github.com/kkdai/youtube/v2"

	"github.com/Maselkov/Toothy/internal/music/track"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

// Open resolves the track and returns a PCM (s16le, 48kHz stereo) stream
// starting at seek. The returned cleanup must be called when streaming ends.
func Open(t track.Track, seek time.Duration) (io.ReadCloser, func(), error) {
	rc, cleanup, err := openLink(t, seek)
	if err == nil {
		return rc, cleanup, nil
	}
	log.Printf("[Stream] Link mode failed for %q: %v, trying pipe mode", t.Title, err)

	rc, cleanup, pipeErr := openPipe(t, seek)
	if pipeErr != nil {
		return nil, nil, fmt.Errorf("all stream modes failed: link: %w; pipe: %v", err, pipeErr)
	}
	return rc, cleanup, nil
}

func openLink(t track.Track, seek time.Duration) (io.ReadCloser, func(), error) {
	client := &youtube.Client{}
	video, err := client.GetVideo(t.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("youtube client error: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, nil, errors.New("no audio formats found for video")
	}

	link, err := client.GetStreamURL(video, &formats[0])
	if err != nil {
		return nil, nil, fmt.Errorf("get stream URL error: %w", err)
	}

	ffmpeg := exec.Command("ffmpeg",
		"-ss", fmt.Sprintf("%.3f", seek.Seconds()),
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", link,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	reader, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("ffmpeg stdout pipe error: %w", err)
	}
	if err := ffmpeg.Start(); err != nil {
		return nil, nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	cleanup := func() {
		ffmpeg.Process.Kill()
		ffmpeg.Wait()
	}
	return reader, cleanup, nil
}

func openPipe(t track.Track, seek time.Duration) (io.ReadCloser, func(), error) {
	client := &youtube.Client{}
	video, err := client.GetVideo(t.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("youtube client error: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, nil, errors.New("no audio formats found for video")
	}

	source, _, err := client.GetStream(video, &formats[0])
	if err != nil {
		return nil, nil, fmt.Errorf("get stream error: %w", err)
	}

	ffmpeg := exec.Command("ffmpeg",
		"-ss", fmt.Sprintf("%.3f", seek.Seconds()),
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	ffmpeg.Stdin = source
	reader, err := ffmpeg.StdoutPipe()
	if err != nil {
		source.Close()
		return nil, nil, fmt.Errorf("ffmpeg stdout pipe error: %w", err)
	}
	if err := ffmpeg.Start(); err != nil {
		source.Close()
		return nil, nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	cleanup := func() {
		source.Close()
		ffmpeg.Process.Kill()
		ffmpeg.Wait()
	}
	return reader, cleanup, nil
}
