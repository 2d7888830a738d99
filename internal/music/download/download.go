// Package download fetches a track's audio into a local cache so it can be
// attached to a Discord reply.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	youtube "github.com/kkdai/youtube/v2"

	"github.com/Maselkov/Toothy/internal/music/track"
	"github.com/Maselkov/Toothy/pkg/jobmgr"
)

const (
	// MaxTrackDuration is checked before any work starts; longer tracks are
	// refused outright.
	MaxTrackDuration = 20 * time.Minute

	// Timeout bounds a single download end to end.
	Timeout = 60 * time.Second

	cacheMaxAge     = 24 * time.Hour
	janitorInterval = time.Minute
)

var (
	ErrDownloadInProgress = errors.New("this track is already being downloaded")
	ErrTrackTooLong       = errors.New("track is too long to download")
	ErrDownloadTimeout    = errors.New("download timed out")
	ErrDownloadFailed     = errors.New("download failed")
)

// FetchFunc writes a track's audio to w. Swappable in tests.
type FetchFunc func(ctx context.Context, trackID string, w io.Writer) error

// Downloader caches track audio on disk and deduplicates concurrent requests
// per track ID.
type Downloader struct {
	dir   string
	jobs  *jobmgr.Manager
	fetch FetchFunc
}

func New(dir string) (*Downloader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download cache dir: %w", err)
	}
	d := &Downloader{
		dir:  dir,
		jobs: jobmgr.NewManager(func(msg string) { log.Printf("[Download] %s", msg) }),
	}
	d.fetch = d.fetchYouTube
	return d, nil
}

// Fetch returns the path of the cached audio file for t, downloading it
// first when needed. A concurrent Fetch for the same track ID fails fast
// with ErrDownloadInProgress.
func (d *Downloader) Fetch(t track.Track) (string, error) {
	if t.Duration > MaxTrackDuration {
		return "", ErrTrackTooLong
	}

	path := d.cachePath(t.ID)
	if _, err := os.Stat(path); err == nil {
		// Keep hot files out of the janitor's reach.
		now := time.Now()
		if err := os.Chtimes(path, now, now); err != nil {
			log.Printf("[Download] Failed to bump mtime of %s: %v", path, err)
		}
		return path, nil
	}

	err := d.jobs.Wait(t.ID, Timeout, func(ctx context.Context) error {
		return d.download(ctx, t.ID, path)
	})
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, jobmgr.ErrAlreadyRunning):
		return "", ErrDownloadInProgress
	case errors.Is(err, context.DeadlineExceeded):
		return "", ErrDownloadTimeout
	default:
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
}

func (d *Downloader) download(ctx context.Context, trackID, path string) error {
	tmp, err := os.CreateTemp(d.dir, trackID+".*.part")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := d.fetch(ctx, trackID, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (d *Downloader) fetchYouTube(ctx context.Context, trackID string, w io.Writer) error {
	client := &youtube.Client{
		HTTPClient: &http.Client{Timeout: Timeout},
	}
	video, err := client.GetVideoContext(ctx, trackID)
	if err != nil {
		return fmt.Errorf("fetch video info: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return errors.New("no audio formats available")
	}

	stream, _, err := client.GetStreamContext(ctx, video, &formats[0])
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	_, err = io.Copy(w, stream)
	return err
}

func (d *Downloader) cachePath(trackID string) string {
	return filepath.Join(d.dir, trackID+".m4a")
}

// RunJanitor deletes cache files untouched for longer than 24h, sweeping
// every minute until ctx is done.
func (d *Downloader) RunJanitor(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sweep()
		}
	}
}

func (d *Downloader) sweep() {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		log.Printf("[Download] Janitor failed to read cache dir: %v", err)
		return
	}
	cutoff := time.Now().Add(-cacheMaxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(d.dir, entry.Name())); err != nil {
				log.Printf("[Download] Janitor failed to remove %s: %v", entry.Name(), err)
			}
		}
	}
}
