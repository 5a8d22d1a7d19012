package store

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bobarin/newsvoice/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestFilenameDeterministic(t *testing.T) {
	a := Filename("123", models.SourceContent, models.FormatMP3)
	b := Filename("123", models.SourceContent, models.FormatMP3)
	if a != b {
		t.Errorf("filename not deterministic: %q vs %q", a, b)
	}
	if a != "news_123_content.mp3" {
		t.Errorf("unexpected filename: %q", a)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	data := []byte("audio bytes")
	path, err := s.Write("news_1_content.mp3", data)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if filepath.Dir(path) != s.Dir() {
		t.Errorf("file written outside store dir: %s", path)
	}

	if !s.Exists("news_1_content.mp3") {
		t.Error("expected file to exist after write")
	}

	f, info, err := s.Open("news_1_content.mp3")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()

	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(got) != "audio bytes" {
		t.Errorf("unexpected content: %q", got)
	}
	if info.Size() != int64(len(data)) {
		t.Errorf("expected size %d, got %d", len(data), info.Size())
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Write("news_2_title.mp3", []byte("x")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp_") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteOverwrites(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Write("news_3_content.mp3", []byte("first")); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if _, err := s.Write("news_3_content.mp3", []byte("second")); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	f, _, err := s.Open("news_3_content.mp3")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()

	got, _ := io.ReadAll(f)
	if string(got) != "second" {
		t.Errorf("expected last writer to win, got %q", got)
	}
}

func TestSanitizeRejectsTraversal(t *testing.T) {
	bad := []string{
		"",
		"../../etc/passwd",
		"..",
		"a/b.mp3",
		`a\b.mp3`,
		"..mp3",
		"news_..1_content.mp3",
	}

	for _, name := range bad {
		if _, err := Sanitize(name); !errors.Is(err, ErrInvalidFilename) {
			t.Errorf("Sanitize(%q): expected ErrInvalidFilename, got %v", name, err)
		}
	}
}

func TestSanitizeAcceptsPlainNames(t *testing.T) {
	good := []string{"news_1_content.mp3", "news_abc-def_title.wav", "x.ogg"}

	for _, name := range good {
		got, err := Sanitize(name)
		if err != nil {
			t.Errorf("Sanitize(%q): unexpected error %v", name, err)
		}
		if got != name {
			t.Errorf("Sanitize(%q) changed the name to %q", name, got)
		}
	}
}

func TestOpenMissingFile(t *testing.T) {
	s := newTestStore(t)

	if _, _, err := s.Open("nope.mp3"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenTraversalName(t *testing.T) {
	s := newTestStore(t)

	if _, _, err := s.Open("../../etc/passwd"); !errors.Is(err, ErrInvalidFilename) {
		t.Errorf("expected ErrInvalidFilename, got %v", err)
	}
}

func TestExistsInvalidName(t *testing.T) {
	s := newTestStore(t)

	if s.Exists("../escape.mp3") {
		t.Error("Exists must reject traversal names")
	}
}
