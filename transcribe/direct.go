package transcribe

import (
	"context"
	"fmt"
	"time"

	"yt2md/youtube"
)

// VideoModel processes a video URL with an instruction prompt.
type VideoModel interface {
	GenerateFromVideo(ctx context.Context, videoURL string, prompt string) (string, error)
}

// DirectTranscriber submits the video URL straight to the hosted model.
// Videos longer than the duration limit are refused before any network call,
// since they would only burn quota to hit the model's token window.
type DirectTranscriber struct {
	model VideoModel
	limit time.Duration
}

// NewDirectTranscriber creates a direct video transcriber.
// limit 0 applies a 60 minute default.
func NewDirectTranscriber(model VideoModel, limit time.Duration) *DirectTranscriber {
	if limit <= 0 {
		limit = 60 * time.Minute
	}
	return &DirectTranscriber{model: model, limit: limit}
}

// Method returns MethodDirect.
func (t *DirectTranscriber) Method() Method { return MethodDirect }

// Transcribe submits the video to the model.
// Returns ErrVideoTooLong without a network call when the known duration
// exceeds the limit; unknown durations (zero) are attempted.
func (t *DirectTranscriber) Transcribe(ctx context.Context, video youtube.VideoInfo, mode Mode) (string, error) {
	if video.Duration > t.limit {
		return "", fmt.Errorf("%w: %s exceeds %s", ErrVideoTooLong, video.Duration, t.limit)
	}

	return t.model.GenerateFromVideo(ctx, video.VideoURL(), videoPrompt(mode))
}
