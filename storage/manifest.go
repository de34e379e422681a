// Package storage persists run state as JSON in the output directory.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ManifestFile is the manifest filename within an output directory.
const ManifestFile = "run.json"

// VideoStatus is the outcome recorded for a video in the manifest.
type VideoStatus string

const (
	// StatusSucceeded means a transcript was produced and written.
	StatusSucceeded VideoStatus = "succeeded"
	// StatusFailed means every attempted method failed.
	StatusFailed VideoStatus = "failed"
	// StatusSkipped means the output already existed and was left alone.
	StatusSkipped VideoStatus = "skipped"
)

// VideoEntry records the outcome for one video in playlist order.
type VideoEntry struct {
	// VideoID is the YouTube video ID.
	VideoID string `json:"video_id"`
	// Title is the video title at processing time.
	Title string `json:"title"`
	// Status is the processing outcome.
	Status VideoStatus `json:"status"`
	// Method is the transcription method tag, empty for failed/skipped
	// entries where no method completed.
	Method string `json:"method,omitempty"`
	// OutputPath is the written transcript file, relative to the output dir.
	OutputPath string `json:"output_path,omitempty"`
	// Error holds the failure message for failed entries.
	Error string `json:"error,omitempty"`
}

// RunManifest captures everything about a single playlist run.
type RunManifest struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`
	// PlaylistID is the processed playlist.
	PlaylistID string `json:"playlist_id"`
	// PlaylistTitle is the playlist title at processing time.
	PlaylistTitle string `json:"playlist_title"`
	// Uploader is the playlist owner.
	Uploader string `json:"uploader"`
	// Mode is the output mode used for this run.
	Mode string `json:"mode"`
	// StartedAt is when processing began.
	StartedAt time.Time `json:"started_at"`
	// FinishedAt is when processing completed, zero while in progress.
	FinishedAt time.Time `json:"finished_at,omitempty"`
	// Videos holds per-video outcomes in playlist order.
	Videos []VideoEntry `json:"videos"`
}

// NewRunManifest creates a manifest for a fresh run.
func NewRunManifest(playlistID, playlistTitle, uploader, mode string) *RunManifest {
	return &RunManifest{
		RunID:         uuid.NewString(),
		PlaylistID:    playlistID,
		PlaylistTitle: playlistTitle,
		Uploader:      uploader,
		Mode:          mode,
		StartedAt:     time.Now().UTC(),
	}
}

// Record appends a video outcome.
func (m *RunManifest) Record(entry VideoEntry) {
	m.Videos = append(m.Videos, entry)
}

// Counts returns the number of succeeded, failed, and skipped videos.
func (m *RunManifest) Counts() (succeeded, failed, skipped int) {
	for _, v := range m.Videos {
		switch v.Status {
		case StatusSucceeded:
			succeeded++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return
}

// Save atomically writes the manifest into dir.
func (m *RunManifest) Save(dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := NewAtomicWriter(dir).WriteFile(ManifestFile, data, 0o644); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest from dir. Returns os.ErrNotExist when no
// previous run exists there.
func LoadManifest(dir string) (*RunManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	var m RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
