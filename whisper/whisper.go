// Package whisper provides audio transcription via the OpenAI Whisper API.
package whisper

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"yt2md/retry"
)

// Client transcribes audio files with the Whisper API.
type Client struct {
	api *openai.Client

	// RetryConfig overrides the default retry behavior when set.
	RetryConfig *retry.Config
}

// NewClient creates a Whisper client.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("whisper: api key required")
	}
	return &Client{api: openai.NewClient(apiKey)}, nil
}

// TranscribeFile transcribes a single audio file. The prompt biases the model
// toward domain vocabulary but does not instruct it.
func (c *Client) TranscribeFile(ctx context.Context, audioPath string, prompt string) (string, error) {
	cfg := retry.DefaultConfig()
	if c.RetryConfig != nil {
		cfg = *c.RetryConfig
	}

	var text string
	err := retry.Do(ctx, cfg, isRetryableAPIError, func(ctx context.Context) error {
		resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
			Model:    openai.Whisper1,
			FilePath: audioPath,
			Prompt:   prompt,
		})
		if err != nil {
			return err
		}
		text = resp.Text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("whisper: transcribe %s: %w", audioPath, err)
	}
	return text, nil
}

// isRetryableAPIError retries rate limits and server errors.
func isRetryableAPIError(err error) bool {
	if !retry.IsRetryable(err) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	return true
}
