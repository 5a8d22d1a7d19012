package services

import (
	"context"

	"github.com/bobarin/newsvoice/internal/models"
)

// ---------------------------------------------------------------------------
// TTSProvider — common interface for text-to-speech providers
// Both the Gemini and Google Translate implementations satisfy it so the
// synthesizer can chain them without knowing the underlying provider.
// ---------------------------------------------------------------------------

// TTSResult is the common response type from any TTS provider.
type TTSResult struct {
	AudioData []byte
	Format    models.AudioFormat // the provider's native output format
	Engine    models.Engine
}

// TTSProvider is the interface that any TTS provider must implement.
type TTSProvider interface {
	// Synthesize converts text to audio in the given language.
	// One shot per call — retries and fallback live in the Synthesizer.
	Synthesize(ctx context.Context, text, lang string) (*TTSResult, error)

	// Engine identifies the provider in responses and logs.
	Engine() models.Engine
}
