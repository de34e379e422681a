package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// VideoMetadata contains comprehensive metadata about a YouTube video,
// fetched with yt-dlp. Used for enhanced markdown headers.
type VideoMetadata struct {
	// ID is the YouTube video ID (e.g., "dQw4w9WgXcQ").
	ID string `json:"id"`
	// Title is the video title.
	Title string `json:"title"`
	// Description is the full video description.
	Description string `json:"description"`
	// Duration is the video length in seconds.
	Duration int `json:"duration"`
	// ViewCount is the total number of views.
	ViewCount int64 `json:"view_count"`
	// LikeCount is the number of likes. May be zero when hidden.
	LikeCount int64 `json:"like_count"`
	// UploadDate is when the video was uploaded in YYYYMMDD format.
	UploadDate string `json:"upload_date"`
	// Uploader is the channel name/display name.
	Uploader string `json:"uploader"`
	// FetchedAt is the timestamp when this metadata was retrieved.
	FetchedAt time.Time `json:"fetched_at"`
}

// DurationString renders the duration as MM:SS or HH:MM:SS.
func (m *VideoMetadata) DurationString() string {
	h := m.Duration / 3600
	min := (m.Duration % 3600) / 60
	s := m.Duration % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, min, s)
	}
	return fmt.Sprintf("%d:%02d", min, s)
}

// PublishedString renders the upload date as YYYY-MM-DD.
func (m *VideoMetadata) PublishedString() string {
	if len(m.UploadDate) != 8 {
		return m.UploadDate
	}
	return m.UploadDate[:4] + "-" + m.UploadDate[4:6] + "-" + m.UploadDate[6:]
}

// FetchMetadata retrieves metadata for a video using yt-dlp.
// It executes yt-dlp with JSON output and parses the result.
// The provided context is used to enforce timeouts and handle cancellation.
func FetchMetadata(ctx context.Context, videoID string, ytdlpPath string) (*VideoMetadata, error) {
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}

	cmd := exec.CommandContext(ctx, ytdlpPath, "-J", "--no-warnings", "--skip-download",
		"https://www.youtube.com/watch?v="+videoID)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrYtdlpNotInstalled
		}
		return nil, fmt.Errorf("fetch metadata: %w", classifyYtdlpError(stderr.String(), err))
	}

	var rawData map[string]interface{}
	if err := json.Unmarshal(stdout.Bytes(), &rawData); err != nil {
		return nil, fmt.Errorf("parse metadata JSON: %w", err)
	}

	metadata := &VideoMetadata{
		FetchedAt: time.Now().UTC(),
	}

	// Required fields
	if id, ok := rawData["id"].(string); ok && id != "" {
		metadata.ID = id
	} else {
		return nil, fmt.Errorf("invalid metadata: missing or empty id")
	}

	if title, ok := rawData["title"].(string); ok && title != "" {
		metadata.Title = title
	} else {
		return nil, fmt.Errorf("invalid metadata: missing or empty title")
	}

	// Optional fields with type safety
	if desc, ok := rawData["description"].(string); ok {
		metadata.Description = desc
	}
	if duration, ok := rawData["duration"].(float64); ok {
		metadata.Duration = int(duration)
	}
	if views, ok := rawData["view_count"].(float64); ok {
		metadata.ViewCount = int64(views)
	}
	if likes, ok := rawData["like_count"].(float64); ok {
		metadata.LikeCount = int64(likes)
	}
	if date, ok := rawData["upload_date"].(string); ok {
		metadata.UploadDate = date
	}
	if uploader, ok := rawData["uploader"].(string); ok {
		metadata.Uploader = uploader
	}

	return metadata, nil
}
