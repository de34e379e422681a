// Package markdown renders transcripts and playlist summaries to disk.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"yt2md/storage"
)

// SummaryFile is the playlist summary filename. The 00_ prefix sorts it
// before the per-video transcript files.
const SummaryFile = "00_playlist_summary.md"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SafeTitle converts a playlist or video title into a filesystem-safe slug.
func SafeTitle(title string) string {
	s := unsafeChars.ReplaceAllString(title, "_")
	s = strings.Trim(s, "_")
	if len(s) > 60 {
		s = s[:60]
		s = strings.TrimRight(s, "_")
	}
	if s == "" {
		s = "playlist"
	}
	return s
}

// OutputDirName builds the default output directory name for a run.
func OutputDirName(title string, mode string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s", now.Format("20060102"), SafeTitle(title), mode)
}

// TranscriptFileName returns the per-video output filename.
func TranscriptFileName(videoID string, mode string) string {
	return fmt.Sprintf("%s_%s.txt", videoID, mode)
}

// RenderSummary renders the playlist summary markdown from a run manifest.
func RenderSummary(m *storage.RunManifest, generatedAt time.Time) string {
	succeeded, failed, skipped := m.Counts()

	var b strings.Builder
	fmt.Fprintf(&b, "# Playlist Summary: %s\n\n", m.PlaylistTitle)
	fmt.Fprintf(&b, "- **Playlist ID:** %s\n", m.PlaylistID)
	if m.Uploader != "" {
		fmt.Fprintf(&b, "- **Uploader:** %s\n", m.Uploader)
	}
	fmt.Fprintf(&b, "- **Mode:** %s\n", m.Mode)
	fmt.Fprintf(&b, "- **Videos:** %d\n", len(m.Videos))
	fmt.Fprintf(&b, "- **Generated:** %s\n\n", generatedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintf(&b, "## Results\n\n")
	fmt.Fprintf(&b, "- ✅ Succeeded: %d\n", succeeded)
	fmt.Fprintf(&b, "- ❌ Failed: %d\n", failed)
	if skipped > 0 {
		fmt.Fprintf(&b, "- ⏭️ Skipped: %d\n", skipped)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Videos\n\n")
	for i, v := range m.Videos {
		title := v.Title
		if title == "" {
			title = v.VideoID
		}
		switch v.Status {
		case storage.StatusSucceeded:
			fmt.Fprintf(&b, "%d. ✅ %s (`%s`, method: %s) → `%s`\n", i+1, title, v.VideoID, v.Method, v.OutputPath)
		case storage.StatusSkipped:
			fmt.Fprintf(&b, "%d. ⏭️ %s (`%s`, already present) → `%s`\n", i+1, title, v.VideoID, v.OutputPath)
		default:
			fmt.Fprintf(&b, "%d. ❌ %s (`%s`)\n", i+1, title, v.VideoID)
		}
	}

	if failed > 0 {
		fmt.Fprintf(&b, "\n## Failed Videos\n\n")
		for _, v := range m.Videos {
			if v.Status != storage.StatusFailed {
				continue
			}
			title := v.Title
			if title == "" {
				title = v.VideoID
			}
			fmt.Fprintf(&b, "- **%s** (`%s`): %s\n", title, v.VideoID, v.Error)
		}
	}

	return b.String()
}

// WriteSummary atomically writes the playlist summary into dir.
func WriteSummary(dir string, m *storage.RunManifest, generatedAt time.Time) error {
	content := RenderSummary(m, generatedAt)
	return storage.NewAtomicWriter(dir).WriteFile(SummaryFile, []byte(content), 0o644)
}
