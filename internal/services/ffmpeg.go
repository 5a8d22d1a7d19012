package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bobarin/newsvoice/internal/models"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// FFmpegService
// Converts provider-native audio (WAV from Gemini, MP3 from Google Translate)
// into the configured output format when they differ. Conversion goes through
// temp files because ffmpeg needs seekable inputs for some containers.
// ---------------------------------------------------------------------------

type FFmpegService struct {
	tempDir string
}

func NewFFmpegService(tempDir string) (*FFmpegService, error) {
	// Create temp directory if it doesn't exist
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	return &FFmpegService{
		tempDir: tempDir,
	}, nil
}

// codecArgs maps an output format to the encoder flags ffmpeg needs for it.
func codecArgs(format models.AudioFormat) []string {
	switch format {
	case models.FormatMP3:
		return []string{"-codec:a", "libmp3lame", "-b:a", "128k"}
	case models.FormatOGG:
		return []string{"-codec:a", "libvorbis"}
	default: // wav
		return []string{"-codec:a", "pcm_s16le"}
	}
}

// Convert transcodes audio bytes from one format to another.
func (s *FFmpegService) Convert(ctx context.Context, data []byte, from, to models.AudioFormat) ([]byte, error) {
	if from == to {
		return data, nil
	}

	id := uuid.New().String()
	inPath := filepath.Join(s.tempDir, fmt.Sprintf("convert_%s_in.%s", id, from))
	outPath := filepath.Join(s.tempDir, fmt.Sprintf("convert_%s_out.%s", id, to))
	defer os.Remove(inPath)
	defer os.Remove(outPath)

	if err := os.WriteFile(inPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write conversion input: %w", err)
	}

	args := []string{"-y", "-i", inPath}
	args = append(args, codecArgs(to)...)
	args = append(args, outPath)

	log.Printf("[FFmpeg] Converting audio %s -> %s (%d bytes)", from, to, len(data))

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg conversion failed: %w (output: %s)", err, tail(string(output), 400))
	}

	converted, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversion output: %w", err)
	}

	log.Printf("[FFmpeg] Conversion done (%d bytes)", len(converted))
	return converted, nil
}

// tail returns the last maxLen characters of s for log output.
func tail(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}
