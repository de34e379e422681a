package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"yt2md/youtube"
)

// AudioFetcher downloads a video's audio track and splits it into chunks.
type AudioFetcher interface {
	Download(ctx context.Context, videoID string, dir string) (string, error)
	Split(ctx context.Context, audioPath string, chunkDuration time.Duration) ([]string, error)
}

// AudioModel transcribes an audio file with an instruction prompt.
type AudioModel interface {
	GenerateFromAudio(ctx context.Context, audioPath string, prompt string) (string, error)
}

// AudioTranscriber extracts audio locally, splits long tracks into chunks,
// and transcribes each chunk with the model. The heaviest method, used when
// captions are missing and the video is too long for direct processing.
type AudioTranscriber struct {
	fetcher       AudioFetcher
	model         AudioModel
	chunkDuration time.Duration

	// tempDirBase overrides os.TempDir in tests.
	tempDirBase string
}

// NewAudioTranscriber creates an audio-chunking transcriber.
// chunkDuration 0 applies a 20 minute default.
func NewAudioTranscriber(fetcher AudioFetcher, model AudioModel, chunkDuration time.Duration) *AudioTranscriber {
	if chunkDuration <= 0 {
		chunkDuration = 20 * time.Minute
	}
	return &AudioTranscriber{fetcher: fetcher, model: model, chunkDuration: chunkDuration}
}

// Method returns MethodAudioChunked.
func (t *AudioTranscriber) Method() Method { return MethodAudioChunked }

// Transcribe downloads the audio, chunks it, and joins the per-chunk output.
// The temp directory is removed on success and on failure.
func (t *AudioTranscriber) Transcribe(ctx context.Context, video youtube.VideoInfo, mode Mode) (string, error) {
	tmpDir, err := os.MkdirTemp(t.tempDirBase, "yt2md-audio-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	audioPath, err := t.fetcher.Download(ctx, video.ID, tmpDir)
	if err != nil {
		return "", fmt.Errorf("download audio: %w", err)
	}

	chunks, err := t.fetcher.Split(ctx, audioPath, t.chunkDuration)
	if err != nil {
		return "", fmt.Errorf("split audio: %w", err)
	}

	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		text, err := t.model.GenerateFromAudio(ctx, chunk, audioPrompt(mode, i+1, len(chunks)))
		if err != nil {
			return "", fmt.Errorf("transcribe chunk %d/%d: %w", i+1, len(chunks), err)
		}
		parts = append(parts, strings.TrimSpace(text))
	}

	return strings.Join(parts, "\n\n"), nil
}
