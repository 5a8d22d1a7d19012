package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobarin/newsvoice/internal/api"
	"github.com/bobarin/newsvoice/internal/cache"
	"github.com/bobarin/newsvoice/internal/config"
	"github.com/bobarin/newsvoice/internal/db"
	"github.com/bobarin/newsvoice/internal/extract"
	"github.com/bobarin/newsvoice/internal/models"
	"github.com/bobarin/newsvoice/internal/newsapi"
	"github.com/bobarin/newsvoice/internal/services"
	"github.com/bobarin/newsvoice/internal/store"
)

func main() {
	log.Println("Starting News Voice API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Audio store (creates the output directory)
	stor, err := store.New(cfg.OutputDir)
	if err != nil {
		log.Fatalf("Failed to initialize audio store: %v", err)
	}
	log.Printf("Audio output directory: %s (format: %s)", cfg.OutputDir, cfg.AudioFormat)

	// News API client
	news := newsapi.New(cfg.NewsAPIBaseURL, cfg.NewsAPIToken)
	log.Printf("News API URL: %s", cfg.NewsAPIBaseURL)

	// Text extractor — the hard cap here is an upstream safety bound; the
	// handler condenses or truncates down to MaxTextLength before synthesis.
	extractor := extract.New(string(models.SourceContent), cfg.MaxTextLength*4)

	// TTS providers: Gemini primary (when keyed), Google Translate fallback
	var gemini *services.GeminiService
	if cfg.GeminiKey != "" {
		gemini = services.NewGeminiService(cfg.GeminiKey)
		log.Println("Primary TTS provider: Gemini")
	} else {
		log.Println("WARNING: No GEMINI_API_KEY set — using Google TTS fallback only")
	}
	gtranslate := services.NewGTranslateService()

	converter, err := services.NewFFmpegService(os.TempDir())
	if err != nil {
		log.Fatalf("Failed to initialize audio converter: %v", err)
	}

	// The synthesizer needs an untyped nil when Gemini is absent
	var primary services.TTSProvider
	if gemini != nil {
		primary = gemini
	}
	synth := services.NewSynthesizer(primary, gtranslate, converter, cfg.AudioFormat)

	// Optional OpenAI condensation for over-long articles
	var condenser api.Condenser
	if cfg.OpenAIKey != "" {
		condenser = services.NewOpenAIService(cfg.OpenAIKey)
		log.Println("Article condensation enabled (OpenAI)")
	}

	// Optional Redis metadata cache
	var metaCache *cache.Cache
	if cfg.RedisURL != "" {
		metaCache, err = cache.New(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to metadata cache: %v", err)
		}
		defer metaCache.Close()
		log.Println("Connected to Redis metadata cache")
	}

	// Optional Postgres synthesis history
	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()
		log.Println("Connected to database (synthesis history enabled)")
	}

	// The Gemini pinger needs an untyped nil when Gemini is absent
	var pinger api.GeminiPinger
	if gemini != nil {
		pinger = gemini
	}

	handler := api.NewHandler(news, extractor, synth, stor, pinger, condenser, metaCache, database, api.HandlerConfig{
		PublicBaseURL: cfg.PublicBaseURL,
		Language:      cfg.Language,
		MaxTextLength: cfg.MaxTextLength,
	})

	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
		HistoryEnabled:     database != nil,
	})

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
