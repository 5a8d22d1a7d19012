package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobarin/newsvoice/internal/models"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Audio store
// Filesystem-backed cache of synthesized audio. Filenames are a pure function
// of (news id, content source, format), so presence of a file means the same
// request was already synthesized. Writes go through a temp file + rename so
// a failed write never leaves a partial file under the final name.
// ---------------------------------------------------------------------------

var (
	// ErrNotFound means no audio file exists under the given name.
	ErrNotFound = errors.New("audio file not found")
	// ErrInvalidFilename means the name failed sanitization (path traversal,
	// separators, empty name).
	ErrInvalidFilename = errors.New("invalid audio filename")
)

type Store struct {
	dir string
}

// New creates the store, creating the output directory if absent.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Filename derives the deterministic audio filename for an article.
// Repeated requests for the same article and source resolve to the same name.
func Filename(newsID string, source models.ContentSource, format models.AudioFormat) string {
	return fmt.Sprintf("news_%s_%s.%s", newsID, source, format)
}

// Sanitize validates an externally supplied filename. Anything that could
// escape the store directory is rejected rather than normalized.
func Sanitize(filename string) (string, error) {
	if filename == "" {
		return "", ErrInvalidFilename
	}
	if strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		return "", ErrInvalidFilename
	}
	if strings.Contains(filename, "..") {
		return "", ErrInvalidFilename
	}
	if filepath.Base(filepath.Clean(filename)) != filename {
		return "", ErrInvalidFilename
	}
	return filename, nil
}

// Exists reports whether an audio file is already cached under the name.
func (s *Store) Exists(filename string) bool {
	name, err := Sanitize(filename)
	if err != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil && !info.IsDir()
}

// Write persists audio bytes under the name and returns the final path.
// The data lands in a uniquely named temp file first and is renamed into
// place, so concurrent writers to the same name race benignly (last writer
// wins, readers never see a partial file).
func (s *Store) Write(filename string, data []byte) (string, error) {
	name, err := Sanitize(filename)
	if err != nil {
		return "", err
	}

	finalPath := filepath.Join(s.dir, name)
	tmpPath := filepath.Join(s.dir, fmt.Sprintf(".tmp_%s_%s", uuid.New().String(), name))

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to finalize audio file: %w", err)
	}

	log.Printf("[Store] Wrote %s (%d bytes)", name, len(data))
	return finalPath, nil
}

// Open returns an open handle for streaming plus its file info.
// The caller must close the file.
func (s *Store) Open(filename string) (*os.File, os.FileInfo, error) {
	name, err := Sanitize(filename)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to stat audio file: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, ErrNotFound
	}

	return f, info, nil
}
