package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/bobarin/newsvoice/internal/models"
)

// ---------------------------------------------------------------------------
// Google Translate Text-to-Speech Service
// Secondary (fallback) provider. Uses the public translate_tts endpoint,
// which needs no API key — only network access. The endpoint caps input
// length per request, so long text is split at word boundaries and the
// resulting MP3 segments are concatenated (valid for MPEG frame streams).
// ---------------------------------------------------------------------------

const (
	gtranslateBaseURL   = "https://translate.google.com/translate_tts"
	gtranslateChunkSize = 200 // max characters per request
	gtranslateTimeout   = 30 * time.Second
)

type GTranslateService struct {
	client *http.Client
}

// Ensure GTranslateService implements TTSProvider at compile time.
var _ TTSProvider = (*GTranslateService)(nil)

func NewGTranslateService() *GTranslateService {
	return &GTranslateService{
		client: &http.Client{Timeout: gtranslateTimeout},
	}
}

func (s *GTranslateService) Engine() models.Engine {
	return models.EngineGTranslate
}

// Synthesize converts text to MP3 speech via the translate_tts endpoint.
// Implements the TTSProvider interface.
func (s *GTranslateService) Synthesize(ctx context.Context, text, lang string) (*TTSResult, error) {
	chunks := splitText(text, gtranslateChunkSize)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text to synthesize")
	}

	log.Printf("[GTranslate] Generating speech (lang=%s, textLen=%d, chunks=%d)", lang, len(text), len(chunks))

	var audio []byte
	for i, chunk := range chunks {
		segment, err := s.fetchChunk(ctx, chunk, lang, i, len(chunks))
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d failed: %w", i+1, len(chunks), err)
		}
		audio = append(audio, segment...)
	}

	if len(audio) == 0 {
		return nil, fmt.Errorf("google translate returned empty audio")
	}

	log.Printf("[GTranslate] Speech generated (%d bytes)", len(audio))

	return &TTSResult{
		AudioData: audio,
		Format:    models.FormatMP3,
		Engine:    models.EngineGTranslate,
	}, nil
}

func (s *GTranslateService) fetchChunk(ctx context.Context, text, lang string, idx, total int) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("q", text)
	params.Set("tl", lang)
	params.Set("textlen", fmt.Sprintf("%d", utf8.RuneCountInString(text)))
	params.Set("idx", fmt.Sprintf("%d", idx))
	params.Set("total", fmt.Sprintf("%d", total))

	req, err := http.NewRequestWithContext(ctx, "GET", gtranslateBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// The endpoint rejects requests without a browser-looking user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("translate_tts returned status %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

// splitText breaks text into chunks of at most max characters, preferring
// word boundaries. A single over-long word is split hard rather than dropped.
// Operates on runes so multibyte text never gets cut mid-rune.
func splitText(text string, max int) []string {
	var chunks []string
	runes := []rune(text)
	for len(runes) > 0 {
		if len(runes) <= max {
			chunks = append(chunks, string(runes))
			break
		}

		cut := max
		for cut > 0 && runes[cut] != ' ' {
			cut--
		}
		if cut == 0 {
			cut = max
		}

		chunks = append(chunks, string(runes[:cut]))
		for cut < len(runes) && runes[cut] == ' ' {
			cut++
		}
		runes = runes[cut:]
	}
	return chunks
}
