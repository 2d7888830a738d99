package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Maselkov/Toothy/internal/music/controller"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMusicSettings_DefaultsWhenUnset(t *testing.T) {
	s := newTestStorage(t)

	got, err := s.MusicSettings("guild-1")
	if err != nil {
		t.Fatal(err)
	}
	want := controller.Settings{Volume: 0.15}
	if got != want {
		t.Errorf("MusicSettings = %+v, want %+v", got, want)
	}
}

func TestMusicSettings_RoundTrip(t *testing.T) {
	s := newTestStorage(t)

	want := controller.Settings{Volume: 0.42, Shuffle: true, Repeat: true}
	if err := s.SetMusicSettings("guild-1", want); err != nil {
		t.Fatal(err)
	}

	got, err := s.MusicSettings("guild-1")
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("MusicSettings = %+v, want %+v", got, want)
	}

	// Other guilds are untouched.
	other, err := s.MusicSettings("guild-2")
	if err != nil {
		t.Fatal(err)
	}
	if other != (controller.Settings{Volume: 0.15}) {
		t.Errorf("guild-2 settings = %+v, want defaults", other)
	}
}

func TestMusicSettings_SurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	s, err := New(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	want := controller.Settings{Volume: 0.42, Equalizer: true}
	if err := s.SetMusicSettings("guild-1", want); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := New(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { reopened.Close() })

	got, err := reopened.MusicSettings("guild-1")
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("MusicSettings after reopen = %+v, want %+v", got, want)
	}
}

func TestRecentSearches_DedupAndOrder(t *testing.T) {
	s := newTestStorage(t)

	for _, q := range []string{"first", "second", "first"} {
		if err := s.AddRecentSearch("guild-1", "user-1", q); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.RecentSearches("guild-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("RecentSearches = %v, want [first second]", got)
	}

	other, err := s.RecentSearches("guild-1", "user-2")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("user-2 searches = %v, want none", other)
	}
}

func TestRecentSearches_Capped(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < recentSearchLimit+5; i++ {
		if err := s.AddRecentSearch("guild-1", "user-1", fmt.Sprintf("query %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.RecentSearches("guild-1", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != recentSearchLimit {
		t.Errorf("len = %d, want %d", len(got), recentSearchLimit)
	}
	if got[0] != fmt.Sprintf("query %d", recentSearchLimit+4) {
		t.Errorf("newest = %q", got[0])
	}
}

func TestCommandHistory_AppendAndTrim(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < commandHistoryLimit+3; i++ {
		rec := CommandHistoryRecord{
			UserID:   "user-1",
			Command:  "play",
			Param:    fmt.Sprintf("song %d", i),
			Datetime: time.Now(),
		}
		if err := s.AppendCommandToHistory("guild-1", rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.FetchCommandHistory("guild-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != commandHistoryLimit {
		t.Errorf("history len = %d, want %d", len(got), commandHistoryLimit)
	}
	if got[len(got)-1].Param != fmt.Sprintf("song %d", commandHistoryLimit+2) {
		t.Errorf("newest entry = %q", got[len(got)-1].Param)
	}
}
