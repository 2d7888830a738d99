package panel

import "strings"

const (
	barSegment = "▬"
	barKnob    = "🔘"
)

// ProgressBar renders a fixed-width playback bar with the knob positioned at
// percent. Values outside [0,100] are clamped.
func ProgressBar(percent, length int) string {
	if length < 1 {
		length = 1
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	pos := percent * length / 100
	if pos >= length {
		pos = length - 1
	}

	var b strings.Builder
	for i := 0; i < length; i++ {
		if i == pos {
			b.WriteString(barKnob)
		} else {
			b.WriteString(barSegment)
		}
	}
	return b.String()
}
