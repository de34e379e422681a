// Package youtube provides playlist listing, captions, metadata, and audio
// extraction for YouTube videos.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Sentinel errors for YouTube operations.
var (
	ErrPlaylistNotFound  = errors.New("youtube: playlist not found")
	ErrVideoNotFound     = errors.New("youtube: video not found")
	ErrNoCaptions        = errors.New("youtube: no captions available")
	ErrRateLimited       = errors.New("youtube: rate limited")
	ErrInvalidURL        = errors.New("youtube: invalid URL")
	ErrYtdlpNotInstalled = errors.New("youtube: yt-dlp not installed")
)

// PlaylistLister defines the interface for fetching video lists from playlists.
// Different implementations may use different strategies (yt-dlp, Data API).
type PlaylistLister interface {
	// ListPlaylist fetches the playlist and its videos in playlist order.
	// The URL can be a playlist URL or a bare playlist ID.
	ListPlaylist(ctx context.Context, playlistURL string) (*PlaylistInfo, error)
}

// PlaylistInfo contains playlist metadata and its videos in playlist order.
type PlaylistInfo struct {
	// ID is the YouTube playlist ID (e.g., "PLxxxxxxxx").
	ID string `json:"id"`
	// Title is the playlist title.
	Title string `json:"title"`
	// Uploader is the playlist owner's display name.
	Uploader string `json:"uploader"`
	// Videos holds the playlist entries in their original order.
	Videos []VideoInfo `json:"videos"`
}

// VideoInfo contains metadata about a video as listed in a playlist.
type VideoInfo struct {
	// ID is the YouTube video ID (e.g., "dQw4w9WgXcQ").
	ID string `json:"id"`
	// Title is the video title.
	Title string `json:"title"`
	// Duration is the video length. May be zero for unavailable videos.
	Duration time.Duration `json:"duration,omitempty"`
}

// VideoURL returns the full YouTube watch URL for this video.
func (v VideoInfo) VideoURL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// TranscriptEntry is a single caption cue.
type TranscriptEntry struct {
	// Start is the cue start time in seconds.
	Start float64 `json:"start"`
	// Duration is the cue duration in seconds.
	Duration float64 `json:"duration"`
	// Text is the caption text.
	Text string `json:"text"`
}

// ListerError wraps listing errors with context about what failed.
// Use errors.As() to extract this error type and get operation details.
type ListerError struct {
	// Source indicates which lister produced the error ("ytdlp", "api").
	Source string
	// Playlist is the playlist URL or ID that was being listed.
	Playlist string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the listing error.
func (e *ListerError) Error() string {
	return "youtube: " + e.Source + " listing " + e.Playlist + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *ListerError) Unwrap() error { return e.Err }

var (
	videoIDRegex    = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	playlistIDRegex = regexp.MustCompile(`^(PL|UU|LL|OL|FL|RD)[A-Za-z0-9_-]+$`)
)

// ExtractVideoID extracts the 11-character video ID from a YouTube URL.
// Accepts watch URLs, short youtu.be URLs, embed URLs, shorts URLs, and bare IDs.
func ExtractVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if videoIDRegex.MatchString(input) {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, input)
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if videoIDRegex.MatchString(id) {
			return id, nil
		}
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); videoIDRegex.MatchString(id) {
			return id, nil
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/", "/v/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
				if videoIDRegex.MatchString(id) {
					return id, nil
				}
			}
		}
	}

	return "", fmt.Errorf("%w: no video ID in %q", ErrInvalidURL, input)
}

// ExtractPlaylistID extracts the playlist ID from a YouTube URL or bare ID.
func ExtractPlaylistID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if playlistIDRegex.MatchString(input) {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, input)
	}

	if id := u.Query().Get("list"); playlistIDRegex.MatchString(id) {
		return id, nil
	}

	return "", fmt.Errorf("%w: no playlist ID in %q", ErrInvalidURL, input)
}
