package youtube

import (
	"fmt"
	"strings"
)

// FormatTimestamp renders seconds as [MM:SS] or [H:MM:SS].
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("[%d:%02d:%02d]", h, m, s)
	}
	return fmt.Sprintf("[%02d:%02d]", m, s)
}

// FormatTranscript joins caption entries into transcript text.
// With timestamps each cue becomes its own line prefixed by its start time;
// without, the cues are joined into flowing text.
func FormatTranscript(entries []TranscriptEntry, withTimestamps bool) string {
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	if withTimestamps {
		for i, e := range entries {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(FormatTimestamp(e.Start))
			b.WriteByte(' ')
			b.WriteString(e.Text)
		}
	} else {
		for i, e := range entries {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(e.Text)
		}
	}
	return b.String()
}
