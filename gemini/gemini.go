// Package gemini wraps the Gemini API for video and audio transcription.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"yt2md/retry"
)

// Sentinel errors for Gemini operations.
var (
	// ErrTokenLimit indicates the input exceeded the model's token window.
	// This is permanent for the given input; callers fall back to chunking.
	ErrTokenLimit = errors.New("gemini: input exceeds model token limit")
	// ErrEmptyResponse indicates the model returned no usable text.
	ErrEmptyResponse = errors.New("gemini: empty model response")
	// ErrFileProcessing indicates an uploaded file failed server-side processing.
	ErrFileProcessing = errors.New("gemini: uploaded file processing failed")
)

// Client is a thin wrapper over the Gemini API client.
type Client struct {
	client *genai.Client
	model  string

	// RetryConfig overrides the default retry behavior when set.
	RetryConfig *retry.Config
	// PollInterval is the delay between file state polls.
	PollInterval time.Duration
}

// NewClient creates a Gemini client for the given model.
func NewClient(ctx context.Context, apiKey string, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{
		client:       client,
		model:        model,
		PollInterval: 2 * time.Second,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// GenerateFromVideo submits a YouTube video URL directly to the model.
// Returns ErrTokenLimit when the video is too long for the model's window.
func (c *Client) GenerateFromVideo(ctx context.Context, videoURL string, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(videoURL, "video/*"),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	return c.generate(ctx, contents)
}

// GenerateFromText submits plain text with an instruction prompt.
func (c *Client) GenerateFromText(ctx context.Context, text string, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt + "\n\n" + text),
		}, genai.RoleUser),
	}

	return c.generate(ctx, contents)
}

// GenerateFromAudio uploads an audio file, waits until it is processed,
// generates against it, and deletes the uploaded file afterwards.
func (c *Client) GenerateFromAudio(ctx context.Context, audioPath string, prompt string) (string, error) {
	file, err := c.client.Files.UploadFromPath(ctx, audioPath, &genai.UploadFileConfig{
		MIMEType: "audio/mpeg",
	})
	if err != nil {
		return "", fmt.Errorf("gemini: upload audio: %w", err)
	}

	// The file is server-side state, remove it regardless of outcome
	defer func() {
		delCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, _ = c.client.Files.Delete(delCtx, file.Name, nil)
	}()

	file, err = c.waitForFile(ctx, file)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(file.URI, "audio/mpeg"),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	return c.generate(ctx, contents)
}

// waitForFile polls an uploaded file until it leaves the processing state.
func (c *Client) waitForFile(ctx context.Context, file *genai.File) (*genai.File, error) {
	for file.State == genai.FileStateProcessing {
		select {
		case <-time.After(c.PollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		var err error
		file, err = c.client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("gemini: poll file state: %w", err)
		}
	}

	if file.State == genai.FileStateFailed {
		return nil, fmt.Errorf("%w: %s", ErrFileProcessing, file.Name)
	}
	return file, nil
}

// generate runs a GenerateContent call with retry on transient overload.
func (c *Client) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	cfg := retry.DefaultConfig()
	if c.RetryConfig != nil {
		cfg = *c.RetryConfig
	}

	var text string
	err := retry.Do(ctx, cfg, isRetryableModelError, func(ctx context.Context) error {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
		if err != nil {
			return classifyModelError(err)
		}

		text = resp.Text()
		if strings.TrimSpace(text) == "" {
			return ErrEmptyResponse
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// classifyModelError maps API errors to sentinels where recognizable.
func classifyModelError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "token") &&
		(strings.Contains(msg, "exceed") || strings.Contains(msg, "limit") || strings.Contains(msg, "too large")) {
		return fmt.Errorf("%w: %v", ErrTokenLimit, err)
	}
	return err
}

// isRetryableModelError retries overload and transient server errors only.
func isRetryableModelError(err error) bool {
	if !retry.IsRetryable(err) {
		return false
	}
	if errors.Is(err, ErrTokenLimit) || errors.Is(err, ErrFileProcessing) {
		return false
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "internal") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource exhausted") ||
		errors.Is(err, ErrEmptyResponse) {
		return true
	}
	return false
}
