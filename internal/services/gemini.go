package services

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bobarin/newsvoice/internal/models"
	"google.golang.org/genai"
)

// ---------------------------------------------------------------------------
// Gemini Text-to-Speech Service
// Primary provider. Uses the Google Gen AI SDK speech-generation model, which
// returns raw 16-bit 24kHz mono PCM that gets framed into a WAV container.
// ---------------------------------------------------------------------------

const (
	geminiTTSModel     = "gemini-2.5-flash-preview-tts"
	geminiDefaultVoice = "Kore"
	geminiTimeout      = 90 * time.Second

	// PCM parameters of the speech-generation model output
	geminiSampleRate = 24000
	geminiChannels   = 1
	geminiBitDepth   = 16
)

type GeminiService struct {
	apiKey string
	voice  string
	client *http.Client // used only for the lightweight health probe
}

// Ensure GeminiService implements TTSProvider at compile time.
var _ TTSProvider = (*GeminiService)(nil)

func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{
		apiKey: apiKey,
		voice:  geminiDefaultVoice,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewGeminiServiceWithVoice creates a Gemini service with a custom prebuilt voice.
func NewGeminiServiceWithVoice(apiKey, voice string) *GeminiService {
	if voice == "" {
		voice = geminiDefaultVoice
	}
	return &GeminiService{
		apiKey: apiKey,
		voice:  voice,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *GeminiService) Engine() models.Engine {
	return models.EngineGemini
}

// Synthesize converts text to speech via the Gemini speech-generation model.
// Implements the TTSProvider interface.
func (s *GeminiService) Synthesize(ctx context.Context, text, lang string) (*TTSResult, error) {
	ctx, cancel := context.WithTimeout(ctx, geminiTimeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	// The model reads the language from the text itself; the prompt pins
	// delivery style and language explicitly.
	prompt := fmt.Sprintf("Read the following news text aloud in %s, with clear and natural newsreader intonation: %s", lang, text)

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: s.voice,
				},
			},
		},
	}

	log.Printf("[Gemini] Generating speech (voice=%s, lang=%s, textLen=%d)", s.voice, lang, len(text))

	resp, err := client.Models.GenerateContent(ctx, geminiTTSModel, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	pcm := extractAudioData(resp)
	if len(pcm) == 0 {
		return nil, fmt.Errorf("gemini returned no audio data")
	}

	audio := wrapPCMInWAV(pcm, geminiSampleRate, geminiChannels, geminiBitDepth)

	log.Printf("[Gemini] Speech generated (%d bytes PCM, %d bytes WAV)", len(pcm), len(audio))

	return &TTSResult{
		AudioData: audio,
		Format:    models.FormatWAV,
		Engine:    models.EngineGemini,
	}, nil
}

func extractAudioData(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 &&
			strings.HasPrefix(part.InlineData.MIMEType, "audio/") {
			return part.InlineData.Data
		}
	}
	return nil
}

// wrapPCMInWAV frames raw little-endian PCM samples in a RIFF/WAVE container.
func wrapPCMInWAV(pcm []byte, sampleRate, channels, bitDepth int) []byte {
	byteRate := sampleRate * channels * bitDepth / 8
	blockAlign := channels * bitDepth / 8

	buf := make([]byte, 0, 44+len(pcm))
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(pcm)))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16) // PCM chunk size
	buf = binary.LittleEndian.AppendUint16(buf, 1)  // PCM format
	buf = binary.LittleEndian.AppendUint16(buf, uint16(channels))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(byteRate))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(blockAlign))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(bitDepth))
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(pcm)))
	buf = append(buf, pcm...)
	return buf
}

// Ping checks that the API key is accepted by fetching the model descriptor.
// Cheap enough for the health endpoint; any failure means "unavailable".
func (s *GeminiService) Ping(ctx context.Context) error {
	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s?key=%s", geminiTTSModel, s.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini ping returned status %d", resp.StatusCode)
	}
	return nil
}
