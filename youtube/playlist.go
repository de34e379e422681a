package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"yt2md/retry"
)

// YtdlpLister implements PlaylistLister using the yt-dlp command-line tool.
// A flat playlist dump avoids fetching per-video pages, so listing a large
// playlist is a single subprocess call.
type YtdlpLister struct {
	// YtdlpPath is the path to the yt-dlp executable.
	YtdlpPath string
	// Timeout bounds the subprocess runtime.
	Timeout time.Duration
	// RetryConfig overrides the default retry behavior when set.
	RetryConfig *retry.Config
}

// NewYtdlpLister creates a yt-dlp based playlist lister.
func NewYtdlpLister(ytdlpPath string, timeout time.Duration) *YtdlpLister {
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &YtdlpLister{YtdlpPath: ytdlpPath, Timeout: timeout}
}

// flatPlaylist mirrors the fields of yt-dlp's -J output we care about.
type flatPlaylist struct {
	ID       string              `json:"id"`
	Title    string              `json:"title"`
	Uploader string              `json:"uploader"`
	Channel  string              `json:"channel"`
	Entries  []flatPlaylistEntry `json:"entries"`
}

type flatPlaylistEntry struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// ListPlaylist fetches the playlist with `yt-dlp --flat-playlist -J`.
// Transient failures are retried; a missing playlist is permanent.
func (l *YtdlpLister) ListPlaylist(ctx context.Context, playlistURL string) (*PlaylistInfo, error) {
	playlistID, err := ExtractPlaylistID(playlistURL)
	if err != nil {
		return nil, &ListerError{Source: "ytdlp", Playlist: playlistURL, Err: err}
	}

	cfg := retry.DefaultConfig()
	if l.RetryConfig != nil {
		cfg = *l.RetryConfig
	}

	var info *PlaylistInfo
	err = retry.Do(ctx, cfg, ytdlpErrorClassifier, func(ctx context.Context) error {
		info, err = l.runFlatPlaylist(ctx, playlistID)
		return err
	})
	if err != nil {
		return nil, &ListerError{Source: "ytdlp", Playlist: playlistURL, Err: err}
	}
	return info, nil
}

func (l *YtdlpLister) runFlatPlaylist(ctx context.Context, playlistID string) (*PlaylistInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	url := "https://www.youtube.com/playlist?list=" + playlistID
	cmd := exec.CommandContext(ctx, l.YtdlpPath, "--flat-playlist", "-J", "--no-warnings", url)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrYtdlpNotInstalled
		}
		return nil, classifyYtdlpError(stderr.String(), err)
	}

	var raw flatPlaylist
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("parse playlist JSON: %w", err)
	}

	info := &PlaylistInfo{
		ID:       raw.ID,
		Title:    raw.Title,
		Uploader: raw.Uploader,
	}
	if info.ID == "" {
		info.ID = playlistID
	}
	if info.Uploader == "" {
		info.Uploader = raw.Channel
	}

	for _, entry := range raw.Entries {
		if entry.ID == "" {
			continue
		}
		info.Videos = append(info.Videos, VideoInfo{
			ID:       entry.ID,
			Title:    entry.Title,
			Duration: time.Duration(entry.Duration * float64(time.Second)),
		})
	}

	return info, nil
}

// classifyYtdlpError maps yt-dlp stderr output to sentinel errors.
func classifyYtdlpError(stderr string, err error) error {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "does not exist"),
		strings.Contains(lower, "playlist does not exist"),
		strings.Contains(lower, "this playlist is private"):
		return fmt.Errorf("%w: %s", ErrPlaylistNotFound, firstLine(stderr))
	case strings.Contains(lower, "video unavailable"):
		return fmt.Errorf("%w: %s", ErrVideoNotFound, firstLine(stderr))
	case strings.Contains(lower, "http error 429"), strings.Contains(lower, "rate-limited"):
		return fmt.Errorf("%w: %s", ErrRateLimited, firstLine(stderr))
	case strings.Contains(lower, "not found"), strings.Contains(lower, "executable file not found"):
		return ErrYtdlpNotInstalled
	}
	if stderr != "" {
		return fmt.Errorf("yt-dlp: %s: %w", firstLine(stderr), err)
	}
	return fmt.Errorf("yt-dlp: %w", err)
}

// ytdlpErrorClassifier treats missing playlists, bad URLs, and a missing
// binary as permanent.
func ytdlpErrorClassifier(err error) bool {
	if !retry.IsRetryable(err) {
		return false
	}
	if errors.Is(err, ErrPlaylistNotFound) ||
		errors.Is(err, ErrVideoNotFound) ||
		errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrYtdlpNotInstalled) {
		return false
	}
	return true
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
