package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"yt2md/retry"
)

// APILister implements PlaylistLister using YouTube Data API v3.
// Listing a playlist costs 1 quota unit per page of 50 items plus 1 unit for
// the playlist lookup, so it is cheap compared to search calls.
type APILister struct {
	service     *youtubeapi.Service
	RetryConfig *retry.Config
}

// NewAPILister creates a Data API v3 based playlist lister.
func NewAPILister(ctx context.Context, apiKey string) (*APILister, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}

	service, err := youtubeapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &APILister{service: service}, nil
}

// ListPlaylist fetches playlist metadata and all items via the Data API.
func (a *APILister) ListPlaylist(ctx context.Context, playlistURL string) (*PlaylistInfo, error) {
	playlistID, err := ExtractPlaylistID(playlistURL)
	if err != nil {
		return nil, &ListerError{Source: "api", Playlist: playlistURL, Err: err}
	}

	info, err := a.fetchPlaylist(ctx, playlistID)
	if err != nil {
		return nil, &ListerError{Source: "api", Playlist: playlistURL, Err: err}
	}

	if err := a.fetchItems(ctx, playlistID, info); err != nil {
		return nil, &ListerError{Source: "api", Playlist: playlistURL, Err: err}
	}

	if err := a.fetchDurations(ctx, info); err != nil {
		return nil, &ListerError{Source: "api", Playlist: playlistURL, Err: err}
	}

	return info, nil
}

func (a *APILister) fetchPlaylist(ctx context.Context, playlistID string) (*PlaylistInfo, error) {
	var resp *youtubeapi.PlaylistListResponse

	err := a.withRetry(ctx, func(ctx context.Context) error {
		var err error
		resp, err = a.service.Playlists.List([]string{"snippet"}).
			Id(playlistID).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch playlist: %w", err)
	}

	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPlaylistNotFound, playlistID)
	}

	snippet := resp.Items[0].Snippet
	return &PlaylistInfo{
		ID:       playlistID,
		Title:    snippet.Title,
		Uploader: snippet.ChannelTitle,
	}, nil
}

func (a *APILister) fetchItems(ctx context.Context, playlistID string, info *PlaylistInfo) error {
	pageToken := ""
	for {
		var resp *youtubeapi.PlaylistItemListResponse

		err := a.withRetry(ctx, func(ctx context.Context) error {
			var err error
			resp, err = a.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
				PlaylistId(playlistID).
				MaxResults(50).
				PageToken(pageToken).
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return fmt.Errorf("fetch playlist items: %w", err)
		}

		for _, item := range resp.Items {
			if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
				continue
			}
			video := VideoInfo{ID: item.ContentDetails.VideoId}
			if item.Snippet != nil {
				video.Title = item.Snippet.Title
			}
			info.Videos = append(info.Videos, video)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return nil
		}
	}
}

// fetchDurations backfills video durations, which playlistItems does not
// carry. Batched 50 IDs per Videos.List call, 1 quota unit each.
func (a *APILister) fetchDurations(ctx context.Context, info *PlaylistInfo) error {
	for start := 0; start < len(info.Videos); start += 50 {
		end := start + 50
		if end > len(info.Videos) {
			end = len(info.Videos)
		}
		batch := info.Videos[start:end]

		ids := make([]string, len(batch))
		for i, v := range batch {
			ids[i] = v.ID
		}

		var resp *youtubeapi.VideoListResponse
		err := a.withRetry(ctx, func(ctx context.Context) error {
			var err error
			resp, err = a.service.Videos.List([]string{"contentDetails"}).
				Id(ids...).
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return fmt.Errorf("fetch video durations: %w", err)
		}

		durations := make(map[string]string, len(resp.Items))
		for _, item := range resp.Items {
			if item.ContentDetails != nil {
				durations[item.Id] = item.ContentDetails.Duration
			}
		}
		applyDurations(batch, durations)
	}
	return nil
}

// applyDurations parses ISO 8601 durations onto the matching videos.
// Missing or unparseable durations leave the field zero.
func applyDurations(videos []VideoInfo, durations map[string]string) {
	for i := range videos {
		iso, ok := durations[videos[i].ID]
		if !ok {
			continue
		}
		if d, err := ParseISODuration(iso); err == nil {
			videos[i].Duration = d
		}
	}
}

func (a *APILister) withRetry(ctx context.Context, fn func(context.Context) error) error {
	cfg := retry.DefaultConfig()
	if a.RetryConfig != nil {
		cfg = *a.RetryConfig
	}
	return retry.Do(ctx, cfg, apiErrorClassifier, fn)
}

// apiErrorClassifier treats 4xx API errors other than 429 as permanent.
func apiErrorClassifier(err error) bool {
	if !retry.IsRetryable(err) {
		return false
	}
	if errors.Is(err, ErrPlaylistNotFound) || errors.Is(err, ErrInvalidURL) {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 {
			return true
		}
		if apiErr.Code >= 400 && apiErr.Code < 500 {
			// quotaExceeded arrives as 403
			return apiErr.Code == 403 && strings.Contains(apiErr.Message, "quota")
		}
	}
	return true
}

// ParseISODuration converts an ISO 8601 duration like "PT1H2M3S" to a
// time.Duration. The Data API reports video durations in this format.
func ParseISODuration(s string) (time.Duration, error) {
	s = strings.TrimPrefix(s, "P")
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	var d time.Duration
	inTime := false
	num := 0
	for _, r := range s {
		switch {
		case r == 'T':
			inTime = true
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
		case r == 'D':
			d += time.Duration(num) * 24 * time.Hour
			num = 0
		case r == 'H' && inTime:
			d += time.Duration(num) * time.Hour
			num = 0
		case r == 'M' && inTime:
			d += time.Duration(num) * time.Minute
			num = 0
		case r == 'S' && inTime:
			d += time.Duration(num) * time.Second
			num = 0
		default:
			return 0, fmt.Errorf("unexpected %q in duration %q", r, s)
		}
	}
	return d, nil
}
