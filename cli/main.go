package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"yt2md"
	"yt2md/config"
	"yt2md/markdown"
	"yt2md/storage"
	"yt2md/transcribe"
	"yt2md/youtube"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "playlist":
		cmdPlaylist(args)
	case "video":
		cmdVideo(args)
	case "convert":
		cmdConvert(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		// A bare URL is treated as a playlist run
		cmdPlaylist(os.Args[1:])
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `yt2md - YouTube playlists to markdown transcripts

Usage:
  yt2md playlist [flags] <playlist-url>   Transcribe every video in a playlist
  yt2md video [flags] <video-url>         Transcribe a single video
  yt2md convert [flags] <dir>             Convert raw transcripts to enhanced markdown
  yt2md help                              Show this help message

Examples:
  yt2md https://www.youtube.com/playlist?list=PLxxxx            # Transcribe playlist
  yt2md playlist --mode summarize --delay 10s <url>             # Summaries, 10s apart
  yt2md playlist --start 5 --end 20 --skip-existing <url>       # Resume a window
  yt2md playlist --force api <url>                              # Captions only
  yt2md video --mode outline https://youtu.be/dQw4w9WgXcQ       # Single video outline
  yt2md convert 20240315_My_Playlist_transcribe                 # Enhanced markdown

For help on a specific command: yt2md <command> -h
`)
}

// runContext cancels on SIGINT/SIGTERM so partial output stays on disk.
func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// parseArgs parses flags that may appear before or after the single
// positional argument. flag.Parse stops at the first non-flag token, so
// the remainder is parsed a second time; a second positional is an error.
func parseArgs(fs *flag.FlagSet, args []string, name string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return "", fmt.Errorf("missing %s", name)
	}
	if err := fs.Parse(rest[1:]); err != nil {
		return "", err
	}
	if fs.NArg() > 0 {
		return "", fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return rest[0], nil
}

// mustParseArgs is parseArgs with the command-line exit behavior.
func mustParseArgs(fs *flag.FlagSet, args []string, name string) string {
	arg, err := parseArgs(fs, args, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		os.Exit(1)
	}
	return arg
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func cmdPlaylist(args []string) {
	fs := flag.NewFlagSet("playlist", flag.ExitOnError)
	mode := fs.String("mode", "transcribe", "Output mode: transcribe, summarize, or outline")
	start := fs.Int("start", 0, "First video to process, 1-indexed (0 = first)")
	end := fs.Int("end", 0, "Last video to process, inclusive (0 = last)")
	skipExisting := fs.Bool("skip-existing", false, "Skip videos whose output file already exists")
	outputDir := fs.String("output-dir", "", "Output directory (default: generated from playlist title)")
	delay := fs.Duration("delay", 0, "Pause between videos (e.g. 5s)")
	force := fs.String("force", "", "Force a single method: api, gemini, or ytdlp")
	enhanced := fs.Bool("enhanced", false, "Also convert output to enhanced markdown")
	model := fs.String("model", "", "Model alias: flash or pro (default from config)")
	lang := fs.String("lang", "", "Preferred caption language code (default from config)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: yt2md playlist [flags] <playlist-url>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	playlistURL := mustParseArgs(fs, args, "playlist-url")

	runMode, err := transcribe.ParseMode(*mode)
	if err != nil {
		fatalf("%v", err)
	}
	if *force != "" {
		if _, err := transcribe.ParseForce(*force); err != nil {
			fatalf("%v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("loading config: %v", err)
	}
	if *model != "" {
		cfg.Model = *model
	}
	if *lang != "" {
		cfg.Language = *lang
	}

	captionsOnly := *force == "api" && runMode == transcribe.ModeTranscribe

	ctx, cancel := runContext()
	defer cancel()

	processor, err := yt2md.NewProcessor(ctx, cfg, captionsOnly)
	if err != nil {
		fatalf("%v", err)
	}

	runDelay := cfg.Delay
	if *delay > 0 {
		runDelay = *delay
	}

	manifest, err := processor.Run(ctx, yt2md.RunOptions{
		PlaylistURL:  playlistURL,
		Mode:         runMode,
		Force:        *force,
		OutputDir:    *outputDir,
		Start:        *start,
		End:          *end,
		SkipExisting: *skipExisting,
		Delay:        runDelay,
		Enhanced:     *enhanced,
	})
	if err != nil {
		fatalf("%v", err)
	}

	// Per-video failures are reported in the summary, not the exit status
	_, failed, _ := manifest.Counts()
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d video(s) failed, see %s\n", failed, markdown.SummaryFile)
	}
}

func cmdVideo(args []string) {
	fs := flag.NewFlagSet("video", flag.ExitOnError)
	mode := fs.String("mode", "transcribe", "Output mode: transcribe, summarize, or outline")
	force := fs.String("force", "", "Force a single method: api, gemini, or ytdlp")
	output := fs.String("o", "", "Output file (default: <videoID>_<mode>.txt)")
	model := fs.String("model", "", "Model alias: flash or pro (default from config)")
	lang := fs.String("lang", "", "Preferred caption language code (default from config)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: yt2md video [flags] <video-url>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	videoURL := mustParseArgs(fs, args, "video-url")

	videoID, err := youtube.ExtractVideoID(videoURL)
	if err != nil {
		fatalf("%v", err)
	}

	runMode, err := transcribe.ParseMode(*mode)
	if err != nil {
		fatalf("%v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("loading config: %v", err)
	}
	if *model != "" {
		cfg.Model = *model
	}
	if *lang != "" {
		cfg.Language = *lang
	}

	captionsOnly := *force == "api" && runMode == transcribe.ModeTranscribe

	ctx, cancel := runContext()
	defer cancel()

	processor, err := yt2md.NewProcessor(ctx, cfg, captionsOnly)
	if err != nil {
		fatalf("%v", err)
	}

	selector := processor.Selector
	if *force != "" {
		method, err := transcribe.ParseForce(*force)
		if err != nil {
			fatalf("%v", err)
		}
		selector, err = selector.Forced(method)
		if err != nil {
			fatalf("%v", err)
		}
	}

	video := youtube.VideoInfo{ID: videoID}
	// Duration gates the direct method, fetch it when yt-dlp is around
	metaCtx, metaCancel := context.WithTimeout(ctx, 2*time.Minute)
	if meta, err := youtube.FetchMetadata(metaCtx, videoID, cfg.YtdlpPath); err == nil {
		video.Title = meta.Title
		video.Duration = time.Duration(meta.Duration) * time.Second
	}
	metaCancel()

	result, err := selector.Select(ctx, video, runMode)
	if err != nil {
		fatalf("%v", err)
	}

	outPath := *output
	if outPath == "" {
		outPath = markdown.TranscriptFileName(videoID, string(runMode))
	}
	if outPath == "-" {
		fmt.Println(result.Text)
		return
	}

	if err := storage.NewAtomicWriter(".").WriteFile(outPath, []byte(result.Text), 0o644); err != nil {
		fatalf("writing %s: %v", outPath, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%s)\n", outPath, result.Method)
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	outputDir := fs.String("output-dir", "", "Output directory (default: <dir>_markdown)")
	noMetadata := fs.Bool("no-metadata", false, "Skip fetching video metadata with yt-dlp")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: yt2md convert [flags] <transcript-dir>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	dir := strings.TrimRight(mustParseArgs(fs, args, "transcript-dir"), "/")

	cfg, err := config.Load()
	if err != nil {
		fatalf("loading config: %v", err)
	}

	ctx, cancel := runContext()
	defer cancel()

	var fetcher markdown.MetadataFetcher
	if !*noMetadata {
		fetcher = yt2md.NewMetadataFetcher(cfg)
	}

	n, err := markdown.ConvertDirectory(ctx, dir, *outputDir, fetcher)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Fprintf(os.Stderr, "Converted %d transcript(s)\n", n)
}
