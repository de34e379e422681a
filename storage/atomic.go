package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWriter writes files atomically using a temp file and rename.
// A crash mid-write leaves the previous file intact.
type AtomicWriter struct {
	dir string
}

// NewAtomicWriter creates an atomic writer for the given directory.
func NewAtomicWriter(dir string) *AtomicWriter {
	return &AtomicWriter{dir: dir}
}

// WriteFile atomically writes data to filename within the writer's directory.
func (w *AtomicWriter) WriteFile(filename string, data []byte, perm os.FileMode) error {
	target := filepath.Join(w.dir, filename)

	tmp, err := os.CreateTemp(w.dir, ".yt2md-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	// Remove the temp file on any failure path
	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	tmpName = ""
	return nil
}
