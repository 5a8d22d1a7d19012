package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/bobarin/newsvoice/internal/models"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	APIPort            string
	BackendAPIKey      string // API key protecting the synthesis history endpoint (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)
	PublicBaseURL      string // External base URL for audio links (empty = derive from request)

	// News API
	NewsAPIBaseURL string
	NewsAPIToken   string

	// Gemini (primary TTS provider — optional, fallback-only when absent)
	GeminiKey string

	// OpenAI (optional — condenses over-long articles before synthesis)
	OpenAIKey string

	// Audio
	OutputDir     string
	AudioFormat   models.AudioFormat
	Language      string
	MaxTextLength int

	// Redis (optional — synthesis metadata cache)
	RedisURL string

	// Database (optional — synthesis history)
	DatabaseURL string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "8080"),
		BackendAPIKey:      getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
		PublicBaseURL:      getEnv("PUBLIC_BASE_URL", ""),
		NewsAPIBaseURL:     getEnv("NEWS_API_BASE_URL", ""),
		NewsAPIToken:       getEnv("NEWS_API_TOKEN", ""),
		GeminiKey:          getEnv("GEMINI_API_KEY", ""),
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		OutputDir:          getEnv("AUDIO_OUTPUT_DIR", "api_audio_output"),
		AudioFormat:        models.AudioFormat(getEnv("AUDIO_FORMAT", "mp3")),
		Language:           getEnv("TTS_LANGUAGE", "en"),
		MaxTextLength:      getEnvInt("MAX_TEXT_LENGTH", 3000),
		RedisURL:           getEnv("REDIS_URL", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
	}

	// Validate required fields
	if cfg.NewsAPIBaseURL == "" {
		return nil, fmt.Errorf("NEWS_API_BASE_URL is required")
	}

	if cfg.NewsAPIToken == "" {
		return nil, fmt.Errorf("NEWS_API_TOKEN is required")
	}

	// Unsupported formats fall back to mp3 rather than failing startup
	if !models.ValidFormat(cfg.AudioFormat) {
		log.Printf("[Config] Audio format %q not supported, using mp3 (supported: mp3, wav, ogg)", cfg.AudioFormat)
		cfg.AudioFormat = models.FormatMP3
	}

	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = 3000
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
