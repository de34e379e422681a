package yt2md

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"yt2md/markdown"
	"yt2md/storage"
	"yt2md/transcribe"
	"yt2md/youtube"
)

// Sentinel errors for run setup failures.
var (
	// ErrEmptyPlaylist indicates the playlist exists but has no videos.
	ErrEmptyPlaylist = errors.New("yt2md: playlist has no videos")
	// ErrBadWindow indicates an invalid start/end video window.
	ErrBadWindow = errors.New("yt2md: invalid video range")
)

// RunOptions configures a playlist run.
type RunOptions struct {
	// PlaylistURL is the playlist URL or bare playlist ID.
	PlaylistURL string
	// Mode selects the output kind. Defaults to transcribe.
	Mode transcribe.Mode
	// Force restricts processing to a single method when set
	// ("api", "gemini", or "ytdlp"). Its failure is terminal per video.
	Force string
	// OutputDir overrides the generated output directory name.
	OutputDir string
	// Start is the 1-indexed first video to process. 0 means the first.
	Start int
	// End is the 1-indexed last video to process, inclusive. 0 means the last.
	End int
	// SkipExisting leaves videos whose output file already exists untouched.
	SkipExisting bool
	// Delay is the pause between consecutive videos. Not applied after the
	// last video or after skipped ones.
	Delay time.Duration
	// Enhanced converts the finished run into enhanced markdown as well.
	Enhanced bool
}

// Processor runs playlist transcription end to end.
type Processor struct {
	// Lister enumerates playlist videos.
	Lister youtube.PlaylistLister
	// Selector tries transcription methods in priority order.
	Selector *transcribe.Selector
	// Metadata fetches video metadata for enhanced markdown. Optional.
	Metadata markdown.MetadataFetcher
	// Progress receives human-readable progress lines. Defaults to stderr.
	Progress io.Writer

	// now overrides time.Now in tests.
	now func() time.Time
	// sleep overrides the inter-video delay in tests.
	sleep func(context.Context, time.Duration) error
}

func (p *Processor) timeNow() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

func (p *Processor) pause(ctx context.Context, d time.Duration) error {
	if p.sleep != nil {
		return p.sleep(ctx, d)
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Processor) progressf(format string, args ...interface{}) {
	out := p.Progress
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, format, args...)
}

// Run processes the playlist and returns the run manifest.
// Setup failures (bad URL, missing playlist, empty playlist, bad window)
// return an error; per-video failures are recorded in the manifest and the
// run continues.
func (p *Processor) Run(ctx context.Context, opts RunOptions) (*storage.RunManifest, error) {
	mode := opts.Mode
	if mode == "" {
		mode = transcribe.ModeTranscribe
	}

	selector := p.Selector
	if opts.Force != "" {
		method, err := transcribe.ParseForce(opts.Force)
		if err != nil {
			return nil, err
		}
		selector, err = p.Selector.Forced(method)
		if err != nil {
			return nil, err
		}
	}

	playlist, err := p.Lister.ListPlaylist(ctx, opts.PlaylistURL)
	if err != nil {
		return nil, err
	}
	if len(playlist.Videos) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPlaylist, playlist.ID)
	}

	videos, err := windowVideos(playlist.Videos, opts.Start, opts.End)
	if err != nil {
		return nil, err
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = markdown.OutputDirName(playlist.Title, string(mode), p.timeNow())
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	manifest := storage.NewRunManifest(playlist.ID, playlist.Title, playlist.Uploader, string(mode))
	writer := storage.NewAtomicWriter(outputDir)

	// On resume, the previous manifest tells us how skipped outputs were made
	var prior map[string]storage.VideoEntry
	if opts.SkipExisting {
		if prev, err := storage.LoadManifest(outputDir); err == nil {
			prior = make(map[string]storage.VideoEntry, len(prev.Videos))
			for _, v := range prev.Videos {
				prior[v.VideoID] = v
			}
		}
	}

	p.progressf("Processing %d of %d videos from %q into %s\n",
		len(videos), len(playlist.Videos), playlist.Title, outputDir)

	for i, video := range videos {
		if ctx.Err() != nil {
			return manifest, ctx.Err()
		}

		filename := markdown.TranscriptFileName(video.ID, string(mode))

		if opts.SkipExisting {
			if _, err := os.Stat(filepath.Join(outputDir, filename)); err == nil {
				p.progressf("[%d/%d] %s: output exists, skipping\n", i+1, len(videos), video.ID)
				entry := storage.VideoEntry{
					VideoID:    video.ID,
					Title:      video.Title,
					Status:     storage.StatusSkipped,
					OutputPath: filename,
				}
				if prev, ok := prior[video.ID]; ok {
					entry.Method = prev.Method
				}
				manifest.Record(entry)
				continue
			}
		}

		p.progressf("[%d/%d] %s: %s\n", i+1, len(videos), video.ID, video.Title)

		result, err := selector.Select(ctx, video, mode)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return manifest, err
			}
			p.progressf("[%d/%d] %s: failed: %v\n", i+1, len(videos), video.ID, err)
			manifest.Record(storage.VideoEntry{
				VideoID: video.ID,
				Title:   video.Title,
				Status:  storage.StatusFailed,
				Error:   err.Error(),
			})
		} else {
			if err := writer.WriteFile(filename, []byte(result.Text), 0o644); err != nil {
				return manifest, fmt.Errorf("write transcript %s: %w", filename, err)
			}
			p.progressf("[%d/%d] %s: done (%s)\n", i+1, len(videos), video.ID, result.Method)
			manifest.Record(storage.VideoEntry{
				VideoID:    video.ID,
				Title:      video.Title,
				Status:     storage.StatusSucceeded,
				Method:     string(result.Method),
				OutputPath: filename,
			})
		}

		if opts.Delay > 0 && i < len(videos)-1 {
			if err := p.pause(ctx, opts.Delay); err != nil {
				return manifest, err
			}
		}
	}

	manifest.FinishedAt = p.timeNow().UTC()
	if err := markdown.WriteSummary(outputDir, manifest, manifest.FinishedAt); err != nil {
		return manifest, err
	}
	if err := manifest.Save(outputDir); err != nil {
		return manifest, err
	}

	succeeded, failed, skipped := manifest.Counts()
	p.progressf("Done: %d succeeded, %d failed, %d skipped\n", succeeded, failed, skipped)

	if opts.Enhanced {
		n, err := markdown.ConvertDirectory(ctx, outputDir, "", p.Metadata)
		if err != nil {
			return manifest, fmt.Errorf("enhanced conversion: %w", err)
		}
		p.progressf("Converted %d transcripts to enhanced markdown\n", n)
	}

	return manifest, nil
}

// windowVideos applies the 1-indexed inclusive start/end window.
func windowVideos(videos []youtube.VideoInfo, start, end int) ([]youtube.VideoInfo, error) {
	if start == 0 {
		start = 1
	}
	if end == 0 {
		end = len(videos)
	}
	if start < 1 || end > len(videos) || start > end {
		return nil, fmt.Errorf("%w: start=%d end=%d of %d videos", ErrBadWindow, start, end, len(videos))
	}
	return videos[start-1 : end], nil
}
