package panel

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Maselkov/Toothy/internal/music/controller"
	"github.com/Maselkov/Toothy/internal/music/track"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		knobAt  int
	}{
		{"start", 0, 0},
		{"middle", 50, 3},
		{"end", 100, 5},
		{"clamped low", -10, 0},
		{"clamped high", 250, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := ProgressBar(tt.percent, 6)
			idx := strings.Index(bar, barKnob)
			// Index is in bytes; count runes before the knob instead.
			runesBefore := len([]rune(bar[:idx]))
			if runesBefore != tt.knobAt {
				t.Errorf("ProgressBar(%d) knob at %d, want %d (%q)", tt.percent, runesBefore, tt.knobAt, bar)
			}
			if n := len([]rune(bar)); n != 6 {
				t.Errorf("ProgressBar width = %d runes, want 6", n)
			}
		})
	}
}

func snapWithTrack() controller.Snapshot {
	return controller.Snapshot{
		GuildID: "guild-1",
		NowPlaying: &track.Track{
			ID:            "id-1",
			URL:           "https://www.youtube.com/watch?v=id-1",
			Title:         "some song",
			Duration:      4 * time.Minute,
			Thumbnail:     "https://i.ytimg.com/vi/id-1/default.jpg",
			RequesterName: "someone",
		},
		Position: time.Minute,
		Volume:   0.15,
		QueueLen: 2,
		Upcoming: []track.Track{{Title: "next one"}},
		DJUserID: "dj-1",
	}
}

func TestRenderEmbed_NowPlaying(t *testing.T) {
	embed := RenderEmbed(snapWithTrack())

	if embed.Title != "Now Playing: some song" {
		t.Errorf("Title = %q", embed.Title)
	}
	if embed.URL != "https://www.youtube.com/watch?v=id-1" {
		t.Errorf("URL = %q", embed.URL)
	}
	if embed.Footer == nil || embed.Footer.Text != "Volume: 15%" {
		t.Errorf("Footer = %+v, want volume 15%%", embed.Footer)
	}
	if embed.Author == nil || !strings.Contains(embed.Author.Name, "someone") {
		t.Errorf("Author = %+v, want requester", embed.Author)
	}

	var names []string
	for _, f := range embed.Fields {
		names = append(names, f.Name)
	}
	if names[0] != "Upcoming" || names[1] != "Progress" {
		t.Errorf("field order = %v", names)
	}
}

func TestRenderEmbed_ShuffleHidesUpcoming(t *testing.T) {
	snap := snapWithTrack()
	snap.Shuffle = true

	embed := RenderEmbed(snap)

	for _, f := range embed.Fields {
		if f.Name == "Upcoming" {
			t.Error("Upcoming field rendered with shuffle on")
		}
	}
}

func TestRenderEmbed_NoTrack(t *testing.T) {
	embed := RenderEmbed(controller.Snapshot{})
	if embed.Title != "No track playing" {
		t.Errorf("Title = %q", embed.Title)
	}
}

func TestRenderEmbed_PausedShowsNoBar(t *testing.T) {
	snap := snapWithTrack()
	snap.Paused = true

	embed := RenderEmbed(snap)

	for _, f := range embed.Fields {
		if f.Name == "Progress" {
			if f.Value != "Paused" {
				t.Errorf("Progress = %q, want Paused", f.Value)
			}
			return
		}
	}
	t.Error("no Progress field")
}

func TestRenderEmbed_LockNotice(t *testing.T) {
	snap := snapWithTrack()
	snap.Locked = true

	embed := RenderEmbed(snap)

	found := false
	for _, f := range embed.Fields {
		if f.Name == "Locked" {
			found = true
		}
	}
	if !found {
		t.Error("locked snapshot missing Locked field")
	}
}

func findButton(t *testing.T, rows []discordgo.MessageComponent, id string) discordgo.Button {
	t.Helper()
	for _, row := range rows {
		ar, ok := row.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range ar.Components {
			if b, ok := comp.(discordgo.Button); ok && b.CustomID == id {
				return b
			}
		}
	}
	t.Fatalf("button %s not found", id)
	return discordgo.Button{}
}

func TestRenderComponents_ButtonStates(t *testing.T) {
	snap := snapWithTrack()
	snap.QueueLen = 0
	snap.Shuffle = true
	snap.Volume = controller.MinVolume

	rows := RenderComponents(snap)

	if b := findButton(t, rows, IDNext); !b.Disabled {
		t.Error("next button enabled with empty queue")
	}
	if b := findButton(t, rows, IDVolDown); !b.Disabled {
		t.Error("volume-down enabled at floor")
	}
	if b := findButton(t, rows, IDShuffle); b.Style != discordgo.SuccessButton {
		t.Errorf("shuffle style = %v, want success", b.Style)
	}
	if b := findButton(t, rows, IDRepeat); b.Style != discordgo.SecondaryButton {
		t.Errorf("repeat style = %v, want secondary", b.Style)
	}
}

func TestRenderComponents_PauseButton(t *testing.T) {
	snap := snapWithTrack()
	snap.Paused = true

	b := findButton(t, RenderComponents(snap), IDPause)

	if b.Emoji.Name != "▶️" || b.Style != discordgo.SuccessButton {
		t.Errorf("paused pause-button = %s/%v, want ▶️/success", b.Emoji.Name, b.Style)
	}
}

func TestRenderComponents_LockButton(t *testing.T) {
	snap := snapWithTrack()
	snap.Locked = true

	b := findButton(t, RenderComponents(snap), IDLock)

	if b.Emoji.Name != "🔒" || b.Style != discordgo.DangerButton {
		t.Errorf("locked lock-button = %s/%v, want 🔒/danger", b.Emoji.Name, b.Style)
	}
}

func TestAuthorize(t *testing.T) {
	locked := snapWithTrack()
	locked.Locked = true

	tests := []struct {
		name        string
		snap        controller.Snapshot
		userChannel string
		userID      string
		canModerate bool
		want        error
	}{
		{"not in voice", snapWithTrack(), "", "u1", false, ErrNotInVoiceChannel},
		{"wrong channel", snapWithTrack(), "other", "u1", false, ErrNotInVoiceChannel},
		{"ok unlocked", snapWithTrack(), "vc-1", "u1", false, nil},
		{"locked stranger", locked, "vc-1", "u1", false, ErrPanelLocked},
		{"locked dj", locked, "vc-1", "dj-1", false, nil},
		{"locked moderator", locked, "vc-1", "u1", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.snap, tt.userChannel, "vc-1", tt.userID, tt.canModerate)
			if !errors.Is(err, tt.want) {
				t.Errorf("Authorize() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNextVolumeStep(t *testing.T) {
	tests := []struct {
		v    float64
		up   bool
		want float64
	}{
		{0.15, true, 0.20},
		{0.15, false, 0.10},
		{0.05, true, 0.10},
		{0.05, false, 0.04},
		{0.02, true, 0.03},
		{1.00, true, 1.05},
	}
	for _, tt := range tests {
		if got := NextVolumeStep(tt.v, tt.up); got != tt.want {
			t.Errorf("NextVolumeStep(%v, %v) = %v, want %v", tt.v, tt.up, got, tt.want)
		}
	}
}
