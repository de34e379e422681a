package transcribe

import (
	"context"

	"yt2md/youtube"
)

// CaptionsFetcher fetches caption entries for a video.
type CaptionsFetcher interface {
	FetchCaptions(ctx context.Context, videoID string, langCode string) ([]youtube.TranscriptEntry, error)
}

// TextModel reworks plain text with an instruction prompt.
type TextModel interface {
	GenerateFromText(ctx context.Context, text string, prompt string) (string, error)
}

// CaptionsTranscriber produces transcripts from YouTube caption tracks.
// Captions cost no model quota. For summarize and outline modes the caption
// text is reworked by the text model; without one those modes fall through.
type CaptionsTranscriber struct {
	fetcher  CaptionsFetcher
	model    TextModel
	language string
}

// NewCaptionsTranscriber creates a captions-based transcriber.
// model may be nil, restricting it to transcribe mode.
func NewCaptionsTranscriber(fetcher CaptionsFetcher, model TextModel, language string) *CaptionsTranscriber {
	if language == "" {
		language = "en"
	}
	return &CaptionsTranscriber{fetcher: fetcher, model: model, language: language}
}

// Method returns MethodCaptions.
func (t *CaptionsTranscriber) Method() Method { return MethodCaptions }

// Transcribe fetches captions and formats them for the requested mode.
func (t *CaptionsTranscriber) Transcribe(ctx context.Context, video youtube.VideoInfo, mode Mode) (string, error) {
	if mode != ModeTranscribe && t.model == nil {
		return "", ErrModeUnsupported
	}

	entries, err := t.fetcher.FetchCaptions(ctx, video.ID, t.language)
	if err != nil {
		return "", err
	}

	text := youtube.FormatTranscript(entries, true)
	if mode == ModeTranscribe {
		return text, nil
	}

	return t.model.GenerateFromText(ctx, text, captionSummaryPrompt(mode))
}
