package markdown

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt2md/youtube"
)

func TestDetectType(t *testing.T) {
	timestamped := "[00:00] intro\n[01:30] middle\n[59:59] end"

	tests := []struct {
		name string
		text string
		mode string
		want TranscriptType
	}{
		{"summarize mode", "anything", "summarize", TypeSummary},
		{"outline mode", timestamped, "outline", TypeSummary},
		{"timestamped", timestamped, "transcribe", TypeTimestamped},
		{"plain", "just words without any markers", "transcribe", TypePlain},
		{"too few timestamps", "[00:00] only one marker here", "transcribe", TypePlain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectType(tt.text, tt.mode))
		})
	}
}

func TestFormatTranscriptText(t *testing.T) {
	input := "hello   world ,  this is  text .\n\n\n\nnext   paragraph [01:05] more"
	got := FormatTranscriptText(input)

	assert.Contains(t, got, "hello world, this is text.")
	assert.Contains(t, got, "**[01:05]**")
	assert.NotContains(t, got, "\n\n\n")
}

func TestEnhance_WithMetadata(t *testing.T) {
	meta := &youtube.VideoMetadata{
		Title:       "Understanding Channels",
		Uploader:    "GopherCon",
		UploadDate:  "20240115",
		Duration:    1830,
		ViewCount:   12345,
		LikeCount:   678,
		Description: "A deep dive into Go channels.",
	}

	got := Enhance("[00:00] welcome\n[05:00] buffered channels\n[20:00] select", meta,
		"dQw4w9WgXcQ", "transcribe", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	assert.True(t, strings.HasPrefix(got, "# Understanding Channels\n"))
	assert.Contains(t, got, "- **URL:** https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.Contains(t, got, "- **Channel:** GopherCon")
	assert.Contains(t, got, "- **Published:** 2024-01-15")
	assert.Contains(t, got, "- **Duration:** 30:30")
	assert.Contains(t, got, "- **Views:** 12345")
	assert.Contains(t, got, "## Description")
	assert.Contains(t, got, "## Transcript")
	assert.Contains(t, got, "**[05:00]**")
	assert.Contains(t, got, "*Generated on 2024-03-15 by yt2md*")
}

func TestEnhance_WithoutMetadata(t *testing.T) {
	got := Enhance("plain text", nil, "dQw4w9WgXcQ", "summarize", time.Now())

	assert.True(t, strings.HasPrefix(got, "# dQw4w9WgXcQ\n"))
	assert.NotContains(t, got, "- **URL:**")
	assert.Contains(t, got, "## Summary")
}

func TestEnhance_TruncatesDescription(t *testing.T) {
	meta := &youtube.VideoMetadata{
		Title:       "Long Description",
		Description: strings.Repeat("word ", 200),
	}

	got := Enhance("text", meta, "dQw4w9WgXcQ", "transcribe", time.Now())
	assert.Contains(t, got, "...")

	start := strings.Index(got, "## Description")
	end := strings.Index(got, "## Transcript")
	require.Greater(t, end, start)
	assert.Less(t, end-start, descriptionLimit+100)
}

func TestTruncate_RuneSafe(t *testing.T) {
	// No spaces, so the cut lands inside the rune stream
	cjk := strings.Repeat("日本語の説明文", 30)

	got := truncate(cjk, descriptionLimit)
	assert.True(t, utf8.ValidString(got), "truncated description must stay valid UTF-8")
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), descriptionLimit+3)

	meta := &youtube.VideoMetadata{Title: "CJK", Description: cjk}
	md := Enhance("text", meta, "dQw4w9WgXcQ", "transcribe", time.Now())
	assert.True(t, utf8.ValidString(md))
}

func TestConvertDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aaaaaaaaaaa_transcribe.txt"), []byte("[00:00] one\n[01:00] two\n[02:00] three"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bbbbbbbbbbb_summarize.txt"), []byte("a summary"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "00_playlist_summary.md"), []byte("not a transcript"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("unrelated"), 0o644))

	fetch := func(ctx context.Context, videoID string) (*youtube.VideoMetadata, error) {
		if videoID == "bbbbbbbbbbb" {
			return nil, errors.New("metadata unavailable")
		}
		return &youtube.VideoMetadata{Title: "Fetched Title"}, nil
	}

	n, err := ConvertDirectory(context.Background(), dir, "", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	outDir := dir + "_markdown"
	first, err := os.ReadFile(filepath.Join(outDir, "aaaaaaaaaaa_transcribe.md"))
	require.NoError(t, err)
	assert.Contains(t, string(first), "# Fetched Title")
	assert.Contains(t, string(first), "**[01:00]**")

	// Metadata failure degrades to metadata-free markdown
	second, err := os.ReadFile(filepath.Join(outDir, "bbbbbbbbbbb_summarize.md"))
	require.NoError(t, err)
	assert.Contains(t, string(second), "# bbbbbbbbbbb")
	assert.Contains(t, string(second), "## Summary")

	// Non-transcript files are ignored
	_, err = os.Stat(filepath.Join(outDir, "notes.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestConvertDirectory_MissingDir(t *testing.T) {
	_, err := ConvertDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"), "", nil)
	assert.Error(t, err)
}
