// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration for transcript generation.
type Config struct {
	// GeminiAPIKey authenticates requests to the Gemini API
	GeminiAPIKey string `json:"-"`
	// YouTubeAPIKey enables the Data API playlist lister when set
	YouTubeAPIKey string `json:"-"`
	// OpenAIAPIKey enables the whisper audio backend when set
	OpenAIAPIKey string `json:"-"`

	// Model selects the hosted model: "flash" or "pro", or a full model name
	Model string `json:"model"`
	// AudioBackend selects the audio transcription backend: "gemini" or "whisper"
	AudioBackend string `json:"audio_backend"`
	// Language is the preferred caption language code
	Language string `json:"language"`

	// YtdlpPath is the path to the yt-dlp executable (default: "yt-dlp")
	YtdlpPath string `json:"ytdlp_path"`
	// YtdlpTimeout is the maximum time to wait for yt-dlp operations
	YtdlpTimeout time.Duration `json:"ytdlp_timeout"`
	// FfmpegPath is the path to the ffmpeg executable (default: "ffmpeg")
	FfmpegPath string `json:"ffmpeg_path"`

	// DirectLimit is the maximum video duration accepted for direct
	// video processing; longer videos fall through to audio chunking
	DirectLimit time.Duration `json:"direct_limit"`
	// ChunkDuration is the segment length used when splitting long audio
	ChunkDuration time.Duration `json:"chunk_duration"`
	// Delay is the pause between consecutive videos
	Delay time.Duration `json:"delay"`

	// MaxRetries is the maximum number of retries for failed operations
	MaxRetries int `json:"max_retries"`
	// InitialBackoff is the initial backoff duration for retries
	InitialBackoff time.Duration `json:"initial_backoff"`
	// MaxBackoff is the maximum backoff duration for retries
	MaxBackoff time.Duration `json:"max_backoff"`
	// BackoffMultiplier is the multiplier for exponential backoff (must be > 1)
	BackoffMultiplier float64 `json:"backoff_multiplier"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		Model:             "flash",
		AudioBackend:      "gemini",
		Language:          "en",
		YtdlpPath:         "yt-dlp",
		YtdlpTimeout:      10 * time.Minute,
		FfmpegPath:        "ffmpeg",
		DirectLimit:       60 * time.Minute,
		ChunkDuration:     20 * time.Minute,
		Delay:             5 * time.Second,
		MaxRetries:        5,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Load loads configuration from environment variables, .env file, config file,
// and applies defaults.
// Priority: env vars > .env > config file > defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from config file
	if err := cfg.loadFromFile(); err != nil {
		// Config file is optional
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// A local .env populates the environment without clobbering real env vars
	_ = godotenv.Load()

	// Override with environment variables
	cfg.loadFromEnv()

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile attempts to load config from yt2md.json in current directory or home directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"yt2md.json",
		filepath.Join(os.Getenv("HOME"), ".config", "yt2md", "yt2md.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.YouTubeAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := os.Getenv("YT2MD_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("YT2MD_AUDIO_BACKEND"); v != "" {
		c.AudioBackend = v
	}
	if v := os.Getenv("YT2MD_LANGUAGE"); v != "" {
		c.Language = v
	}
	if v := os.Getenv("YT2MD_YTDLP_PATH"); v != "" {
		c.YtdlpPath = v
	}
	if v := os.Getenv("YT2MD_YTDLP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.YtdlpTimeout = d
		}
	}
	if v := os.Getenv("YT2MD_FFMPEG_PATH"); v != "" {
		c.FfmpegPath = v
	}
	if v := os.Getenv("YT2MD_DIRECT_LIMIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.DirectLimit = d
		}
	}
	if v := os.Getenv("YT2MD_CHUNK_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ChunkDuration = d
		}
	}
	if v := os.Getenv("YT2MD_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Delay = d
		}
	}
	if v := os.Getenv("YT2MD_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("YT2MD_INITIAL_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.InitialBackoff = d
		}
	}
	if v := os.Getenv("YT2MD_MAX_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MaxBackoff = d
		}
	}
}

// Validate checks that configuration values are valid and consistent.
// It returns an error if any configuration value is invalid.
func (c *Config) Validate() error {
	if c.AudioBackend != "gemini" && c.AudioBackend != "whisper" {
		return fmt.Errorf("audio_backend must be \"gemini\" or \"whisper\"")
	}
	if c.AudioBackend == "whisper" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("audio_backend \"whisper\" requires OPENAI_API_KEY")
	}
	if c.YtdlpTimeout <= 0 {
		return fmt.Errorf("ytdlp_timeout must be positive")
	}
	if c.DirectLimit <= 0 {
		return fmt.Errorf("direct_limit must be positive")
	}
	if c.ChunkDuration <= 0 {
		return fmt.Errorf("chunk_duration must be positive")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must be non-negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("initial_backoff must be positive")
	}
	if c.MaxBackoff <= 0 {
		return fmt.Errorf("max_backoff must be positive")
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max_backoff must be >= initial_backoff")
	}
	if c.BackoffMultiplier <= 1 {
		return fmt.Errorf("backoff_multiplier must be > 1")
	}
	return nil
}

// ResolveModel expands model aliases to full Gemini model names.
func (c *Config) ResolveModel() string {
	switch c.Model {
	case "flash", "":
		return "gemini-2.5-flash"
	case "pro":
		return "gemini-2.5-pro"
	default:
		return c.Model
	}
}
