package markdown

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"yt2md/storage"
	"yt2md/youtube"
)

// descriptionLimit bounds how much of a video description the enhanced
// markdown carries.
const descriptionLimit = 500

var (
	timestampRe     = regexp.MustCompile(`\[(\d{1,2}:)?\d{1,2}:\d{2}\]`)
	transcriptFile  = regexp.MustCompile(`^([A-Za-z0-9_-]{11})_(transcribe|summarize|outline)\.txt$`)
	multiSpaceRe    = regexp.MustCompile(`[ \t]+`)
	spaceBeforePunc = regexp.MustCompile(` +([,.;:!?])`)
	multiNewlineRe  = regexp.MustCompile(`\n{3,}`)
)

// TranscriptType classifies the shape of a transcript file.
type TranscriptType string

const (
	// TypeTimestamped is a transcript with inline timestamps.
	TypeTimestamped TranscriptType = "timestamped"
	// TypeSummary is summary or outline output.
	TypeSummary TranscriptType = "summary"
	// TypePlain is a transcript without timestamps.
	TypePlain TranscriptType = "plain"
)

// DetectType classifies transcript text by mode and timestamp density.
func DetectType(text string, mode string) TranscriptType {
	if mode == "summarize" || mode == "outline" {
		return TypeSummary
	}
	if len(timestampRe.FindAllString(text, 4)) >= 3 {
		return TypeTimestamped
	}
	return TypePlain
}

// MetadataFetcher retrieves video metadata for enhanced output.
// A nil fetcher produces markdown without a metadata block.
type MetadataFetcher func(ctx context.Context, videoID string) (*youtube.VideoMetadata, error)

// Enhance converts raw transcript text into formatted markdown.
// meta may be nil when metadata is unavailable or disabled.
func Enhance(transcript string, meta *youtube.VideoMetadata, videoID string, mode string, generatedAt time.Time) string {
	var b strings.Builder

	title := videoID
	if meta != nil && meta.Title != "" {
		title = meta.Title
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if meta != nil {
		fmt.Fprintf(&b, "- **URL:** https://www.youtube.com/watch?v=%s\n", videoID)
		if meta.Uploader != "" {
			fmt.Fprintf(&b, "- **Channel:** %s\n", meta.Uploader)
		}
		if meta.UploadDate != "" {
			fmt.Fprintf(&b, "- **Published:** %s\n", meta.PublishedString())
		}
		if meta.Duration > 0 {
			fmt.Fprintf(&b, "- **Duration:** %s\n", meta.DurationString())
		}
		if meta.ViewCount > 0 {
			fmt.Fprintf(&b, "- **Views:** %d\n", meta.ViewCount)
		}
		if meta.LikeCount > 0 {
			fmt.Fprintf(&b, "- **Likes:** %d\n", meta.LikeCount)
		}
		b.WriteString("\n")

		if desc := strings.TrimSpace(meta.Description); desc != "" {
			b.WriteString("## Description\n\n")
			b.WriteString(truncate(desc, descriptionLimit))
			b.WriteString("\n\n")
		}
	}

	switch DetectType(transcript, mode) {
	case TypeSummary:
		b.WriteString("## Summary\n\n")
	default:
		b.WriteString("## Transcript\n\n")
	}

	b.WriteString(FormatTranscriptText(transcript))
	b.WriteString("\n\n---\n\n")
	fmt.Fprintf(&b, "*Generated on %s by yt2md*\n", generatedAt.Format("2006-01-02"))

	return b.String()
}

// FormatTranscriptText normalizes whitespace and bolds inline timestamps.
func FormatTranscriptText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = spaceBeforePunc.ReplaceAllString(text, "$1")
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")
	text = timestampRe.ReplaceAllStringFunc(text, func(ts string) string {
		return "**" + ts + "**"
	})
	return strings.TrimSpace(text)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Back up to a rune boundary so the cut never splits a multi-byte rune
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	cut := s[:limit]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

// ConvertDirectory converts every transcript file in dir into enhanced
// markdown under outDir. When outDir is empty, dir + "_markdown" is used.
// Returns the number of files converted. Per-file metadata failures degrade
// to metadata-free output rather than aborting the conversion.
func ConvertDirectory(ctx context.Context, dir string, outDir string, fetchMeta MetadataFetcher) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read transcript dir: %w", err)
	}

	if outDir == "" {
		outDir = strings.TrimRight(dir, string(filepath.Separator)) + "_markdown"
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && transcriptFile.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	writer := storage.NewAtomicWriter(outDir)
	converted := 0
	for _, name := range names {
		if ctx.Err() != nil {
			return converted, ctx.Err()
		}

		match := transcriptFile.FindStringSubmatch(name)
		videoID, mode := match[1], match[2]

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return converted, fmt.Errorf("read %s: %w", name, err)
		}

		var meta *youtube.VideoMetadata
		if fetchMeta != nil {
			meta, err = fetchMeta(ctx, videoID)
			if err != nil {
				log.Printf("yt2md: metadata for %s unavailable: %v", videoID, err)
				meta = nil
			}
		}

		md := Enhance(string(data), meta, videoID, mode, time.Now())
		outName := strings.TrimSuffix(name, ".txt") + ".md"
		if err := writer.WriteFile(outName, []byte(md), 0o644); err != nil {
			return converted, fmt.Errorf("write %s: %w", outName, err)
		}
		converted++
	}

	return converted, nil
}
