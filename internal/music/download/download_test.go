package download

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Maselkov/Toothy/internal/music/track"
)

func newTestDownloader(t *testing.T, fetch FetchFunc) *Downloader {
	t.Helper()
	d, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if fetch != nil {
		d.fetch = fetch
	}
	return d
}

func TestFetch_RejectsTooLongTrack(t *testing.T) {
	d := newTestDownloader(t, func(ctx context.Context, id string, w io.Writer) error {
		t.Error("fetch called for over-long track")
		return nil
	})

	_, err := d.Fetch(track.Track{ID: "id-1", Duration: MaxTrackDuration + time.Second})
	if !errors.Is(err, ErrTrackTooLong) {
		t.Errorf("Fetch = %v, want ErrTrackTooLong", err)
	}
}

func TestFetch_DownloadsAndCaches(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	d := newTestDownloader(t, func(ctx context.Context, id string, w io.Writer) error {
		mu.Lock()
		calls++
		mu.Unlock()
		_, err := w.Write([]byte("audio"))
		return err
	})

	tr := track.Track{ID: "id-1", Duration: 3 * time.Minute}

	path, err := d.Fetch(tr)
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "audio" {
		t.Fatalf("cached file = %q, %v", data, err)
	}

	// Second call is served from cache.
	if _, err := d.Fetch(tr); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
}

func TestFetch_DuplicateRejectedImmediately(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	d := newTestDownloader(t, func(ctx context.Context, id string, w io.Writer) error {
		close(started)
		<-release
		_, err := w.Write([]byte("audio"))
		return err
	})

	tr := track.Track{ID: "id-1", Duration: 3 * time.Minute}

	firstDone := make(chan error, 1)
	go func() {
		_, err := d.Fetch(tr)
		firstDone <- err
	}()
	<-started

	if _, err := d.Fetch(tr); !errors.Is(err, ErrDownloadInProgress) {
		t.Errorf("concurrent Fetch = %v, want ErrDownloadInProgress", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Errorf("first Fetch = %v", err)
	}
}

func TestFetch_FailureCleansUp(t *testing.T) {
	boom := errors.New("boom")
	d := newTestDownloader(t, func(ctx context.Context, id string, w io.Writer) error {
		return boom
	})

	tr := track.Track{ID: "id-1", Duration: 3 * time.Minute}

	if _, err := d.Fetch(tr); !errors.Is(err, ErrDownloadFailed) {
		t.Errorf("Fetch = %v, want ErrDownloadFailed", err)
	}

	// The failed entry is gone, so a retry runs the fetch again.
	d.fetch = func(ctx context.Context, id string, w io.Writer) error {
		_, err := w.Write([]byte("audio"))
		return err
	}
	if _, err := d.Fetch(tr); err != nil {
		t.Errorf("retry after failure = %v", err)
	}

	// No stray partial files left behind.
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".part" {
			t.Errorf("leftover partial file %s", e.Name())
		}
	}
}

func TestSweep_RemovesOnlyStaleFiles(t *testing.T) {
	d := newTestDownloader(t, nil)

	stale := filepath.Join(d.dir, "old.m4a")
	fresh := filepath.Join(d.dir, "new.m4a")
	for _, p := range []string{stale, fresh} {
		if err := os.WriteFile(p, []byte("audio"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	old := time.Now().Add(-25 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	d.sweep()

	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Error("stale file survived the sweep")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh file removed: %v", err)
	}
}
