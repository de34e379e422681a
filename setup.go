package yt2md

import (
	"context"
	"fmt"

	"yt2md/config"
	"yt2md/gemini"
	"yt2md/markdown"
	"yt2md/retry"
	"yt2md/transcribe"
	"yt2md/whisper"
	"yt2md/youtube"
)

// NewProcessor assembles a Processor from configuration.
// captionsOnly skips the hosted model entirely, for runs forced to the
// captions method; otherwise a missing Gemini API key is an error.
func NewProcessor(ctx context.Context, cfg *config.Config, captionsOnly bool) (*Processor, error) {
	retryCfg := retry.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		Multiplier:     cfg.BackoffMultiplier,
		JitterFraction: 0.2,
	}

	lister, err := newLister(ctx, cfg, &retryCfg)
	if err != nil {
		return nil, err
	}

	captionsClient := youtube.NewCaptionsClient()

	var gem *gemini.Client
	if cfg.GeminiAPIKey != "" {
		gem, err = gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.ResolveModel())
		if err != nil {
			return nil, err
		}
		gem.RetryConfig = &retryCfg
	} else if !captionsOnly {
		return nil, fmt.Errorf("yt2md: GEMINI_API_KEY is required unless --force api with transcribe mode")
	}

	var textModel transcribe.TextModel
	if gem != nil {
		textModel = gem
	}
	transcribers := []transcribe.Transcriber{
		transcribe.NewCaptionsTranscriber(captionsClient, textModel, cfg.Language),
	}

	if gem != nil {
		transcribers = append(transcribers,
			transcribe.NewDirectTranscriber(gem, cfg.DirectLimit))

		downloader := youtube.NewAudioDownloader(cfg.YtdlpPath, cfg.FfmpegPath, cfg.YtdlpTimeout)
		audioModel, err := newAudioModel(cfg, gem, &retryCfg)
		if err != nil {
			return nil, err
		}
		transcribers = append(transcribers,
			transcribe.NewAudioTranscriber(downloader, audioModel, cfg.ChunkDuration))
	}

	return &Processor{
		Lister:   lister,
		Selector: transcribe.NewSelector(transcribers...),
		Metadata: NewMetadataFetcher(cfg),
	}, nil
}

// newLister prefers the Data API when a key is configured, since it avoids
// a yt-dlp subprocess per listing and is quota-cheap for playlists.
func newLister(ctx context.Context, cfg *config.Config, retryCfg *retry.Config) (youtube.PlaylistLister, error) {
	if cfg.YouTubeAPIKey != "" {
		api, err := youtube.NewAPILister(ctx, cfg.YouTubeAPIKey)
		if err != nil {
			return nil, err
		}
		api.RetryConfig = retryCfg
		return api, nil
	}

	lister := youtube.NewYtdlpLister(cfg.YtdlpPath, cfg.YtdlpTimeout)
	lister.RetryConfig = retryCfg
	return lister, nil
}

// newAudioModel selects the audio transcription backend.
func newAudioModel(cfg *config.Config, gem *gemini.Client, retryCfg *retry.Config) (transcribe.AudioModel, error) {
	if cfg.AudioBackend == "whisper" {
		w, err := whisper.NewClient(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, err
		}
		w.RetryConfig = retryCfg
		return whisperAudioModel{w}, nil
	}
	return gem, nil
}

// whisperAudioModel adapts the whisper client to the AudioModel interface.
type whisperAudioModel struct {
	client *whisper.Client
}

func (w whisperAudioModel) GenerateFromAudio(ctx context.Context, audioPath string, prompt string) (string, error) {
	return w.client.TranscribeFile(ctx, audioPath, prompt)
}

// NewMetadataFetcher returns a yt-dlp backed metadata fetcher for enhanced
// markdown conversion.
func NewMetadataFetcher(cfg *config.Config) markdown.MetadataFetcher {
	return func(ctx context.Context, videoID string) (*youtube.VideoMetadata, error) {
		ctx, cancel := context.WithTimeout(ctx, cfg.YtdlpTimeout)
		defer cancel()
		return youtube.FetchMetadata(ctx, videoID, cfg.YtdlpPath)
	}
}
