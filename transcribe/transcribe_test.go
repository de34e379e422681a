package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt2md/youtube"
)

// fakeCaptions serves canned caption entries or an error.
type fakeCaptions struct {
	entries []youtube.TranscriptEntry
	err     error
	calls   int
}

func (f *fakeCaptions) FetchCaptions(ctx context.Context, videoID, langCode string) ([]youtube.TranscriptEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

// fakeVideoModel serves canned model output or an error.
type fakeVideoModel struct {
	text  string
	err   error
	calls int
}

func (f *fakeVideoModel) GenerateFromVideo(ctx context.Context, videoURL, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// fakeAudioFetcher writes a real file into dir so cleanup is observable.
type fakeAudioFetcher struct {
	downloadErr error
	chunkCount  int
	lastDir     string
}

func (f *fakeAudioFetcher) Download(ctx context.Context, videoID, dir string) (string, error) {
	f.lastDir = dir
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	path := filepath.Join(dir, videoID+".mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeAudioFetcher) Split(ctx context.Context, audioPath string, chunkDuration time.Duration) ([]string, error) {
	if f.chunkCount <= 1 {
		return []string{audioPath}, nil
	}
	chunks := make([]string, f.chunkCount)
	dir := filepath.Dir(audioPath)
	for i := range chunks {
		path := filepath.Join(dir, "chunk"+string(rune('a'+i))+".mp3")
		if err := os.WriteFile(path, []byte("chunk"), 0o644); err != nil {
			return nil, err
		}
		chunks[i] = path
	}
	return chunks, nil
}

type fakeAudioModel struct {
	text  string
	err   error
	calls int
}

func (f *fakeAudioModel) GenerateFromAudio(ctx context.Context, audioPath, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

var testVideo = youtube.VideoInfo{ID: "dQw4w9WgXcQ", Title: "Test Video", Duration: 10 * time.Minute}

func captionEntries() []youtube.TranscriptEntry {
	return []youtube.TranscriptEntry{
		{Start: 0, Duration: 2, Text: "from captions"},
	}
}

func TestSelect_CaptionsWin(t *testing.T) {
	captions := &fakeCaptions{entries: captionEntries()}
	video := &fakeVideoModel{text: "from model"}

	sel := NewSelector(
		NewCaptionsTranscriber(captions, nil, "en"),
		NewDirectTranscriber(video, time.Hour),
	)

	res, err := sel.Select(context.Background(), testVideo, ModeTranscribe)
	require.NoError(t, err)
	assert.Equal(t, MethodCaptions, res.Method)
	assert.Contains(t, res.Text, "from captions")
	assert.Equal(t, 0, video.calls, "hosted model must not be called when captions exist")
}

func TestSelect_FallsThroughToDirect(t *testing.T) {
	captions := &fakeCaptions{err: youtube.ErrNoCaptions}
	video := &fakeVideoModel{text: "from model"}

	sel := NewSelector(
		NewCaptionsTranscriber(captions, nil, "en"),
		NewDirectTranscriber(video, time.Hour),
	)

	res, err := sel.Select(context.Background(), testVideo, ModeTranscribe)
	require.NoError(t, err)
	assert.Equal(t, MethodDirect, res.Method)
	assert.Equal(t, "from model", res.Text)
	assert.Equal(t, 1, captions.calls)
}

func TestSelect_LongVideoUsesAudioChunked(t *testing.T) {
	captions := &fakeCaptions{err: youtube.ErrNoCaptions}
	video := &fakeVideoModel{text: "never"}
	fetcher := &fakeAudioFetcher{chunkCount: 3}
	audio := &fakeAudioModel{text: "chunk text"}

	sel := NewSelector(
		NewCaptionsTranscriber(captions, nil, "en"),
		NewDirectTranscriber(video, 30*time.Minute),
		NewAudioTranscriber(fetcher, audio, 20*time.Minute),
	)

	long := testVideo
	long.Duration = 2 * time.Hour

	res, err := sel.Select(context.Background(), long, ModeTranscribe)
	require.NoError(t, err)
	assert.Equal(t, MethodAudioChunked, res.Method)
	assert.Equal(t, 0, video.calls, "direct method must refuse without a model call")
	assert.Equal(t, 3, audio.calls)
	assert.Equal(t, "chunk text\n\nchunk text\n\nchunk text", res.Text)

	_, statErr := os.Stat(fetcher.lastDir)
	assert.True(t, os.IsNotExist(statErr), "temp audio dir must be removed after success")
}

func TestSelect_TokenLimitFallsThrough(t *testing.T) {
	captions := &fakeCaptions{err: youtube.ErrNoCaptions}
	video := &fakeVideoModel{err: errors.New("input token count exceeds the limit")}
	fetcher := &fakeAudioFetcher{chunkCount: 1}
	audio := &fakeAudioModel{text: "audio text"}

	sel := NewSelector(
		NewCaptionsTranscriber(captions, nil, "en"),
		NewDirectTranscriber(video, time.Hour),
		NewAudioTranscriber(fetcher, audio, 20*time.Minute),
	)

	res, err := sel.Select(context.Background(), testVideo, ModeTranscribe)
	require.NoError(t, err)
	assert.Equal(t, MethodAudioChunked, res.Method)
	assert.Equal(t, 1, video.calls)
}

func TestSelect_AllFail(t *testing.T) {
	captions := &fakeCaptions{err: youtube.ErrNoCaptions}
	video := &fakeVideoModel{err: errors.New("boom")}

	sel := NewSelector(
		NewCaptionsTranscriber(captions, nil, "en"),
		NewDirectTranscriber(video, time.Hour),
	)

	_, err := sel.Select(context.Background(), testVideo, ModeTranscribe)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllMethodsFailed)
}

func TestSelect_ForcedMethodFailureIsTerminal(t *testing.T) {
	captions := &fakeCaptions{err: youtube.ErrNoCaptions}
	video := &fakeVideoModel{text: "from model"}

	sel := NewSelector(
		NewCaptionsTranscriber(captions, nil, "en"),
		NewDirectTranscriber(video, time.Hour),
	)

	forced, err := sel.Forced(MethodCaptions)
	require.NoError(t, err)

	_, err = forced.Select(context.Background(), testVideo, ModeTranscribe)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllMethodsFailed)
	assert.Equal(t, 0, video.calls, "forced captions must not try other methods")

	var tErr *TranscribeError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, MethodCaptions, tErr.Method)
	assert.Equal(t, testVideo.ID, tErr.VideoID)
}

func TestForced_UnknownMethod(t *testing.T) {
	sel := NewSelector(NewDirectTranscriber(&fakeVideoModel{}, time.Hour))
	_, err := sel.Forced(MethodAudioChunked)
	assert.ErrorIs(t, err, ErrUnknownForce)
}

func TestAudioTranscriber_CleanupOnFailure(t *testing.T) {
	fetcher := &fakeAudioFetcher{chunkCount: 1}
	audio := &fakeAudioModel{err: errors.New("model down")}
	tr := NewAudioTranscriber(fetcher, audio, 20*time.Minute)

	_, err := tr.Transcribe(context.Background(), testVideo, ModeTranscribe)
	require.Error(t, err)

	_, statErr := os.Stat(fetcher.lastDir)
	assert.True(t, os.IsNotExist(statErr), "temp audio dir must be removed after failure")
}

func TestCaptionsTranscriber_ModeUnsupportedWithoutModel(t *testing.T) {
	captions := &fakeCaptions{entries: captionEntries()}
	tr := NewCaptionsTranscriber(captions, nil, "en")

	_, err := tr.Transcribe(context.Background(), testVideo, ModeSummarize)
	assert.ErrorIs(t, err, ErrModeUnsupported)
	assert.Equal(t, 0, captions.calls)
}

type fakeTextModel struct {
	text string
}

func (f *fakeTextModel) GenerateFromText(ctx context.Context, text, prompt string) (string, error) {
	return f.text, nil
}

func TestCaptionsTranscriber_SummarizeWithModel(t *testing.T) {
	captions := &fakeCaptions{entries: captionEntries()}
	tr := NewCaptionsTranscriber(captions, &fakeTextModel{text: "summary"}, "en")

	got, err := tr.Transcribe(context.Background(), testVideo, ModeSummarize)
	require.NoError(t, err)
	assert.Equal(t, "summary", got)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"transcribe", ModeTranscribe, false},
		{"summarize", ModeSummarize, false},
		{"outline", ModeOutline, false},
		{"", ModeTranscribe, false},
		{"translate", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseForce(t *testing.T) {
	tests := []struct {
		input   string
		want    Method
		wantErr bool
	}{
		{"api", MethodCaptions, false},
		{"gemini", MethodDirect, false},
		{"ytdlp", MethodAudioChunked, false},
		{"whisper", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseForce(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownForce)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
