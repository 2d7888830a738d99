package track

import (
	"strings"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{"seconds only", 42 * time.Second, "42s"},
		{"minutes and seconds", 3*time.Minute + 7*time.Second, "3m 7s"},
		{"hours", time.Hour + 2*time.Minute + 3*time.Second, "1h 2m 3s"},
		{"zero", 0, "0s"},
		{"exact minute", time.Minute, "1m 0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.in); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestChoiceName_TruncatesLongTitles(t *testing.T) {
	tr := Track{
		Title:    strings.Repeat("x", 200),
		Duration: 95 * time.Second,
	}

	got := tr.ChoiceName()

	if !strings.HasSuffix(got, "- 1m 35s") {
		t.Errorf("ChoiceName() = %q, want duration suffix", got)
	}
	if len([]rune(got)) > 100 {
		t.Errorf("ChoiceName() length = %d, want <= 100", len([]rune(got)))
	}
}

func TestChoiceName_FallsBackToURL(t *testing.T) {
	tr := Track{URL: "https://example.com/a", Duration: 5 * time.Second}

	if got := tr.ChoiceName(); !strings.HasPrefix(got, "https://example.com/a") {
		t.Errorf("ChoiceName() = %q, want URL prefix", got)
	}
}
