package models

import "time"

// Enums
type ContentSource string

const (
	SourceContent          ContentSource = "content"
	SourceShortDescription ContentSource = "short_description"
	SourceTitle            ContentSource = "title"
)

type Engine string

const (
	// EngineGemini is the primary provider (Gemini speech generation).
	EngineGemini Engine = "Gemini API"
	// EngineGTranslate is the keyless fallback provider.
	EngineGTranslate Engine = "Google TTS (fallback)"
	// EngineCached is reported when the audio file already existed and no
	// metadata record survives to say which engine produced it.
	EngineCached Engine = "cached"
)

type AudioFormat string

const (
	FormatMP3 AudioFormat = "mp3"
	FormatWAV AudioFormat = "wav"
	FormatOGG AudioFormat = "ogg"
)

// ContentType returns the HTTP content type for the format.
func (f AudioFormat) ContentType() string {
	switch f {
	case FormatWAV:
		return "audio/wav"
	case FormatOGG:
		return "audio/ogg"
	default:
		return "audio/mpeg"
	}
}

// ValidFormat reports whether f is one of the supported output formats.
func ValidFormat(f AudioFormat) bool {
	return f == FormatMP3 || f == FormatWAV || f == FormatOGG
}

// Article is a news record fetched from the upstream news API.
// Field values may live either at the top level or under an "attributes"
// wrapper depending on the upstream API version; the newsapi client
// normalizes both shapes into this struct and keeps the raw attribute map
// for dotted-path extraction.
type Article struct {
	ID         string
	Title      string
	Attributes map[string]interface{}
}

// SpeechRequest is the text selected for synthesis, derived from an Article.
type SpeechRequest struct {
	ArticleID string
	Text      string
	Source    ContentSource
	Language  string
}

// HealthStatus is computed fresh on every health request, never persisted.
type HealthStatus struct {
	TTSEngine string `json:"tts_engine"`
	GeminiAPI string `json:"gemini_api"`
	NewsAPI   string `json:"news_api"`
}

// SynthesisRecord is one row of synthesis history (Postgres) and the value
// cached in Redis per filename so cache hits can still report the engine.
type SynthesisRecord struct {
	ID         int64         `json:"id,omitempty"`
	NewsID     string        `json:"news_id"`
	Source     ContentSource `json:"content_source"`
	Engine     Engine        `json:"tts_engine"`
	Filename   string        `json:"filename"`
	TextLength int           `json:"text_length"`
	DurationMs int64         `json:"duration_ms"`
	CreatedAt  time.Time     `json:"created_at,omitempty"`
}

// API envelopes

type NewsAudioData struct {
	NewsID        string        `json:"news_id"`
	AudioURL      string        `json:"audio_url"`
	ContentSource ContentSource `json:"content_source"`
	TTSEngine     Engine        `json:"tts_engine"`
	NewsTitle     string        `json:"news_title"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type HealthResponse struct {
	Status   string       `json:"status"`
	Services HealthStatus `json:"services"`
	Version  string       `json:"version"`
}
