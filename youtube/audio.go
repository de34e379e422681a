package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"
)

// AudioDownloader extracts audio tracks from YouTube videos with yt-dlp and
// splits long tracks into fixed-duration segments with ffmpeg.
type AudioDownloader struct {
	// YtdlpPath is the path to the yt-dlp executable.
	YtdlpPath string
	// FfmpegPath is the path to the ffmpeg executable.
	FfmpegPath string
	// Timeout bounds each subprocess invocation.
	Timeout time.Duration
}

// NewAudioDownloader creates an audio downloader with the given tool paths.
func NewAudioDownloader(ytdlpPath, ffmpegPath string, timeout time.Duration) *AudioDownloader {
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &AudioDownloader{YtdlpPath: ytdlpPath, FfmpegPath: ffmpegPath, Timeout: timeout}
}

// Download extracts the audio track as MP3 into dir and returns the file path.
func (d *AudioDownloader) Download(ctx context.Context, videoID string, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	outTemplate := filepath.Join(dir, videoID+".%(ext)s")
	cmd := exec.CommandContext(ctx, d.YtdlpPath,
		"-x", "--audio-format", "mp3",
		"--no-warnings",
		"-o", outTemplate,
		"https://www.youtube.com/watch?v="+videoID)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrYtdlpNotInstalled
		}
		return "", fmt.Errorf("download audio: %w", classifyYtdlpError(stderr.String(), err))
	}

	audioPath := filepath.Join(dir, videoID+".mp3")
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("download audio: expected output %s missing: %w", audioPath, err)
	}
	return audioPath, nil
}

// Split cuts an audio file into segments of at most chunkDuration using
// ffmpeg's segment muxer with stream copy. Returns the chunk paths in order.
// A file shorter than chunkDuration yields a single chunk, the original file.
func (d *AudioDownloader) Split(ctx context.Context, audioPath string, chunkDuration time.Duration) ([]string, error) {
	total, err := d.probeDuration(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	if total <= chunkDuration {
		return []string{audioPath}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	dir := filepath.Dir(audioPath)
	base := filepath.Base(audioPath)
	ext := filepath.Ext(base)
	pattern := filepath.Join(dir, base[:len(base)-len(ext)]+"_chunk%03d"+ext)

	cmd := exec.CommandContext(ctx, d.FfmpegPath,
		"-i", audioPath,
		"-f", "segment",
		"-segment_time", fmt.Sprintf("%d", int(chunkDuration.Seconds())),
		"-c", "copy",
		"-y",
		pattern)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("split audio: %s: %w", firstLine(stderr.String()), err)
	}

	chunks, err := filepath.Glob(filepath.Join(dir, base[:len(base)-len(ext)]+"_chunk*"+ext))
	if err != nil {
		return nil, fmt.Errorf("split audio: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("split audio: ffmpeg produced no segments")
	}
	sort.Strings(chunks)
	return chunks, nil
}

// probeDuration reads the media duration via ffmpeg's ffprobe companion.
// Falls back to treating the file as short when ffprobe is unavailable.
func (d *AudioDownloader) probeDuration(ctx context.Context, audioPath string) (time.Duration, error) {
	ffprobe := "ffprobe"
	if d.FfmpegPath != "ffmpeg" {
		ffprobe = filepath.Join(filepath.Dir(d.FfmpegPath), "ffprobe")
	}

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("probe duration: %w", err)
	}

	var seconds float64
	if _, err := fmt.Sscanf(stdout.String(), "%f", &seconds); err != nil {
		return 0, fmt.Errorf("probe duration: parse %q: %w", stdout.String(), err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
