package track

import (
	"fmt"
	"time"
)

const maxChoiceTitle = 83

// Track is the canonical playable unit. Every source (search result, playlist
// entry, direct URL) is normalized into this shape at the resolver boundary,
// so nothing downstream has to probe for optional fields.
type Track struct {
	ID            string
	URL           string
	Title         string
	Duration      time.Duration
	Thumbnail     string
	RequesterID   string
	RequesterName string
}

func (t Track) String() string {
	if t.Title == "" {
		return t.URL
	}
	return t.Title
}

// FormatDuration renders a duration as "1h 2m 3s", dropping leading zero units.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	minutes, seconds := total/60, total%60
	hours, minutes := minutes/60, minutes%60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// ChoiceName builds the label used in autocomplete choices: the title,
// truncated to fit Discord's limit, followed by the duration.
func (t Track) ChoiceName() string {
	title := t.Title
	if title == "" {
		title = t.URL
	}
	runes := []rune(title)
	if len(runes) > maxChoiceTitle {
		title = string(runes[:maxChoiceTitle]) + "..."
	}
	return fmt.Sprintf("%s - %s", title, FormatDuration(t.Duration))
}
