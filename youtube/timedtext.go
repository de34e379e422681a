package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	httpclient "yt2md/http"
	"yt2md/retry"
)

// CaptionsClient fetches captions from YouTube's timedtext API.
// Captions are free of model quota cost, so they are always tried first.
type CaptionsClient struct {
	httpClient *httpclient.Client
	baseURL    string
}

// NewCaptionsClient creates a timedtext API client.
func NewCaptionsClient() *CaptionsClient {
	return &CaptionsClient{
		httpClient: httpclient.New(&httpclient.Config{
			Timeout:     30 * time.Second,
			Retry:       retry.DefaultConfig(),
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			RateLimiter: httpclient.DefaultRateLimiterConfig(),
		}),
		baseURL: "https://www.youtube.com/api/timedtext",
	}
}

// timedtextResponse represents the raw timedtext API response (fmt=json3).
type timedtextResponse struct {
	Events []timedtextEvent `json:"events"`
}

// timedtextEvent represents a single timed event in the timedtext response.
type timedtextEvent struct {
	TStartMs    int64              `json:"tStartMs"`
	DDurationMs int64              `json:"dDurationMs"`
	Segs        []timedtextSegment `json:"segs,omitempty"`
}

// timedtextSegment represents text in a timedtext event.
type timedtextSegment struct {
	UTF8 string `json:"utf8"`
}

// FetchCaptions fetches captions for a video from the timedtext API.
// Returns ErrNoCaptions when the video has no caption track in the requested
// language, or none at all.
func (c *CaptionsClient) FetchCaptions(ctx context.Context, videoID string, langCode string) ([]TranscriptEntry, error) {
	if videoID == "" {
		return nil, fmt.Errorf("video ID is required")
	}
	if langCode == "" {
		langCode = "en"
	}

	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", langCode)
	params.Set("fmt", "json3")

	apiURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	response, err := c.httpClient.Get(ctx, apiURL)
	if err != nil {
		// 404 and 403 both mean no usable track
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) && (httpErr.StatusCode == 404 || httpErr.StatusCode == 403) {
			return nil, fmt.Errorf("%w: video %s lang %s", ErrNoCaptions, videoID, langCode)
		}
		var rlErr *httpclient.RateLimitError
		if errors.As(err, &rlErr) && rlErr.StatusCode == 403 {
			return nil, fmt.Errorf("%w: video %s lang %s", ErrNoCaptions, videoID, langCode)
		}
		return nil, fmt.Errorf("timedtext request failed: %w", err)
	}

	// An empty body means the track does not exist for this language
	if len(strings.TrimSpace(string(response.Body))) == 0 {
		return nil, fmt.Errorf("%w: video %s lang %s", ErrNoCaptions, videoID, langCode)
	}

	entries, err := parseTimedtext(response.Body)
	if err != nil {
		return nil, fmt.Errorf("parse timedtext response: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: video %s lang %s", ErrNoCaptions, videoID, langCode)
	}

	return entries, nil
}

// parseTimedtext parses the timedtext json3 response.
func parseTimedtext(data []byte) ([]TranscriptEntry, error) {
	var resp timedtextResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal timedtext JSON: %w", err)
	}

	var entries []TranscriptEntry
	for _, event := range resp.Events {
		// Window-definition events carry no segments
		if len(event.Segs) == 0 {
			continue
		}

		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}

		trimmed := strings.TrimSpace(text.String())
		if trimmed == "" {
			continue
		}

		entries = append(entries, TranscriptEntry{
			Start:    float64(event.TStartMs) / 1000.0,
			Duration: float64(event.DDurationMs) / 1000.0,
			Text:     trimmed,
		})
	}

	return entries, nil
}

// Close closes the captions client and releases resources.
func (c *CaptionsClient) Close() error {
	if c.httpClient != nil {
		return c.httpClient.Close()
	}
	return nil
}
