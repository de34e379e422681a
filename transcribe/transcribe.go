// Package transcribe selects and runs transcription methods for videos.
//
// Three methods exist, tried in order of cost: captions (free), direct video
// processing by the hosted model, and local audio extraction with chunked
// model transcription. The first method to succeed wins; a forced method
// disables fallback entirely.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log"

	"yt2md/youtube"
)

// Method identifies how a transcript was produced.
type Method string

const (
	// MethodCaptions uses YouTube's caption tracks.
	MethodCaptions Method = "captions"
	// MethodDirect submits the video URL to the hosted model.
	MethodDirect Method = "direct"
	// MethodAudioChunked extracts audio locally and transcribes it in chunks.
	MethodAudioChunked Method = "audio-chunked"
)

// Mode selects the kind of output generated from a video.
type Mode string

const (
	// ModeTranscribe produces a full transcript.
	ModeTranscribe Mode = "transcribe"
	// ModeSummarize produces a prose summary.
	ModeSummarize Mode = "summarize"
	// ModeOutline produces a structured outline with timestamps.
	ModeOutline Mode = "outline"
)

// Sentinel errors for method selection.
var (
	// ErrAllMethodsFailed indicates every candidate method failed for a video.
	ErrAllMethodsFailed = errors.New("transcribe: all methods failed")
	// ErrVideoTooLong indicates the video exceeds the direct processing limit.
	ErrVideoTooLong = errors.New("transcribe: video too long for direct processing")
	// ErrModeUnsupported indicates a method cannot produce the requested mode.
	ErrModeUnsupported = errors.New("transcribe: mode not supported by this method")
	// ErrUnknownForce indicates an unrecognized forced method name.
	ErrUnknownForce = errors.New("transcribe: unknown forced method")
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTranscribe, ModeSummarize, ModeOutline:
		return Mode(s), nil
	case "":
		return ModeTranscribe, nil
	}
	return "", fmt.Errorf("transcribe: unknown mode %q", s)
}

// ParseForce maps a forced-method flag value to a Method.
// The flag values name the underlying mechanisms, not the method tags.
func ParseForce(s string) (Method, error) {
	switch s {
	case "api":
		return MethodCaptions, nil
	case "gemini":
		return MethodDirect, nil
	case "ytdlp":
		return MethodAudioChunked, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownForce, s)
}

// Result is a produced transcript with its provenance.
type Result struct {
	// Text is the transcript, summary, or outline.
	Text string
	// Method records which method produced the text.
	Method Method
}

// Transcriber produces output for a single video using one method.
type Transcriber interface {
	// Method returns the tag this transcriber records in results.
	Method() Method
	// Transcribe produces output for the video, or an error when the
	// method cannot serve it.
	Transcribe(ctx context.Context, video youtube.VideoInfo, mode Mode) (string, error)
}

// TranscribeError wraps a per-video failure with the method that failed.
type TranscribeError struct {
	// VideoID identifies the video that failed.
	VideoID string
	// Method is the method that was attempted.
	Method Method
	// Err is the underlying error.
	Err error
}

func (e *TranscribeError) Error() string {
	return fmt.Sprintf("transcribe: video %s method %s: %v", e.VideoID, e.Method, e.Err)
}

func (e *TranscribeError) Unwrap() error { return e.Err }

// Selector tries transcribers in priority order and returns the first success.
type Selector struct {
	transcribers []Transcriber
}

// NewSelector creates a selector over the given transcribers, tried in order.
func NewSelector(transcribers ...Transcriber) *Selector {
	return &Selector{transcribers: transcribers}
}

// Forced returns a selector restricted to the single named method.
// Returns an error if no configured transcriber implements it.
func (s *Selector) Forced(method Method) (*Selector, error) {
	for _, t := range s.transcribers {
		if t.Method() == method {
			return NewSelector(t), nil
		}
	}
	return nil, fmt.Errorf("%w: %q not configured", ErrUnknownForce, method)
}

// Methods returns the method tags in selection order.
func (s *Selector) Methods() []Method {
	methods := make([]Method, len(s.transcribers))
	for i, t := range s.transcribers {
		methods[i] = t.Method()
	}
	return methods
}

// Select runs the transcribers in order and returns the first success.
// Each failure is logged and control falls through to the next method.
// When every method fails, the returned error wraps the last failure.
func (s *Selector) Select(ctx context.Context, video youtube.VideoInfo, mode Mode) (*Result, error) {
	if len(s.transcribers) == 0 {
		return nil, fmt.Errorf("transcribe: no methods configured")
	}

	var lastErr error
	for _, t := range s.transcribers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		text, err := t.Transcribe(ctx, video, mode)
		if err == nil {
			return &Result{Text: text, Method: t.Method()}, nil
		}

		lastErr = &TranscribeError{VideoID: video.ID, Method: t.Method(), Err: err}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, lastErr
		}
		log.Printf("yt2md: video %s: %s failed, trying next method: %v", video.ID, t.Method(), err)
	}

	return nil, fmt.Errorf("%w: %v", ErrAllMethodsFailed, lastErr)
}
