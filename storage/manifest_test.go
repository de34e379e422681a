package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunManifest_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	m := NewRunManifest("PLtest123", "Test Playlist", "Channel", "transcribe")
	require.NotEmpty(t, m.RunID)
	require.False(t, m.StartedAt.IsZero())

	m.Record(VideoEntry{VideoID: "aaaaaaaaaaa", Title: "First", Status: StatusSucceeded, Method: "captions", OutputPath: "aaaaaaaaaaa_transcribe.txt"})
	m.Record(VideoEntry{VideoID: "bbbbbbbbbbb", Title: "Second", Status: StatusFailed, Error: "all methods failed"})
	m.Record(VideoEntry{VideoID: "ccccccccccc", Title: "Third", Status: StatusSkipped})

	require.NoError(t, m.Save(dir))

	loaded, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, loaded.RunID)
	assert.Equal(t, "PLtest123", loaded.PlaylistID)
	assert.Len(t, loaded.Videos, 3)
	assert.Equal(t, StatusFailed, loaded.Videos[1].Status)
	assert.Equal(t, "captions", loaded.Videos[0].Method)

	succeeded, failed, skipped := loaded.Counts()
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, skipped)
}

func TestLoadManifest_Missing(t *testing.T) {
	_, err := LoadManifest(t.TempDir())
	assert.True(t, os.IsNotExist(err))
}

func TestLoadManifest_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("{not json"), 0o644))

	_, err := LoadManifest(dir)
	assert.Error(t, err)
}

func TestAtomicWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewAtomicWriter(dir)

	require.NoError(t, w.WriteFile("out.txt", []byte("first"), 0o644))
	require.NoError(t, w.WriteFile("out.txt", []byte("second"), 0o644))

	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// No temp files left behind
	matches, err := filepath.Glob(filepath.Join(dir, ".yt2md-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
