package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bobarin/newsvoice/internal/cache"
	"github.com/bobarin/newsvoice/internal/db"
	"github.com/bobarin/newsvoice/internal/extract"
	"github.com/bobarin/newsvoice/internal/models"
	"github.com/bobarin/newsvoice/internal/newsapi"
	"github.com/bobarin/newsvoice/internal/services"
	"github.com/bobarin/newsvoice/internal/store"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const (
	version      = "1.0.0"
	probeTimeout = 5 * time.Second
)

// GeminiPinger is the health probe for the primary TTS provider.
// nil when no Gemini key is configured.
type GeminiPinger interface {
	Ping(ctx context.Context) error
}

// Condenser rewrites over-long text to fit the synthesis length budget.
// nil disables condensation; over-long text is hard-truncated instead.
type Condenser interface {
	Condense(ctx context.Context, text string, maxLength int) (string, error)
}

type Handler struct {
	news      *newsapi.Client
	extractor *extract.Extractor
	synth     *services.Synthesizer
	store     *store.Store
	gemini    GeminiPinger
	condenser Condenser
	cache     *cache.Cache // optional, nil when REDIS_URL unset
	db        *db.DB       // optional, nil when DATABASE_URL unset

	publicBaseURL string
	language      string
	maxTextLength int
}

type HandlerConfig struct {
	PublicBaseURL string
	Language      string
	MaxTextLength int
}

func NewHandler(
	news *newsapi.Client,
	extractor *extract.Extractor,
	synth *services.Synthesizer,
	stor *store.Store,
	gemini GeminiPinger,
	condenser Condenser,
	metaCache *cache.Cache,
	database *db.DB,
	cfg HandlerConfig,
) *Handler {
	return &Handler{
		news:          news,
		extractor:     extractor,
		synth:         synth,
		store:         stor,
		gemini:        gemini,
		condenser:     condenser,
		cache:         metaCache,
		db:            database,
		publicBaseURL: cfg.PublicBaseURL,
		language:      cfg.Language,
		maxTextLength: cfg.MaxTextLength,
	}
}

// NewsAudio handles GET /api/news-audio/{newsID}.
// Fetches the article, extracts its speakable text, synthesizes (or reuses
// cached) audio and returns the URL it is served under.
func (h *Handler) NewsAudio(w http.ResponseWriter, r *http.Request) {
	newsID := chi.URLParam(r, "newsID")
	if newsID == "" {
		respondError(w, http.StatusBadRequest, "News ID is required")
		return
	}

	// The id becomes part of the cached filename; ids that would not survive
	// filename sanitization are rejected up front.
	if _, err := store.Sanitize(newsID); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid news ID")
		return
	}

	log.Printf("[API] News audio request for ID: %s", newsID)

	article, err := h.news.Fetch(r.Context(), newsID)
	if err != nil {
		if errors.Is(err, newsapi.ErrNotFound) {
			respondError(w, http.StatusNotFound, "News article not found")
			return
		}
		respondError(w, http.StatusBadGateway, "Failed to fetch news data")
		return
	}

	text, source, err := h.extractor.Extract(article)
	if err != nil {
		respondError(w, http.StatusNotFound, "No content available for text-to-speech conversion")
		return
	}

	filename := store.Filename(newsID, source, h.synth.Format())

	engine := models.EngineCached
	if h.store.Exists(filename) {
		// Cache hit — no re-synthesis. The metadata cache, when present,
		// still knows which engine produced the file.
		if rec := h.lookupRecord(r.Context(), filename); rec != nil {
			engine = rec.Engine
		}
		log.Printf("[API] Serving cached audio %s (engine=%s)", filename, engine)
	} else {
		text = h.bound(r.Context(), text)

		start := time.Now()
		result, err := h.synth.Synthesize(r.Context(), text, h.language)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to generate audio file")
			return
		}

		if _, err := h.store.Write(filename, result.AudioData); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to store audio file")
			return
		}

		engine = result.Engine
		h.recordSynthesis(r.Context(), &models.SynthesisRecord{
			NewsID:     newsID,
			Source:     source,
			Engine:     engine,
			Filename:   filename,
			TextLength: len(text),
			DurationMs: time.Since(start).Milliseconds(),
		})
	}

	respondJSON(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Data: models.NewsAudioData{
			NewsID:        newsID,
			AudioURL:      h.audioURL(r, filename),
			ContentSource: source,
			TTSEngine:     engine,
			NewsTitle:     article.Title,
		},
	})
}

// bound keeps text within the synthesis length budget, counted in characters.
// With a condenser configured the text is rewritten to fit; otherwise (or when
// the condenser fails) it is silently truncated at a rune boundary.
func (h *Handler) bound(ctx context.Context, text string) string {
	if h.maxTextLength <= 0 || utf8.RuneCountInString(text) <= h.maxTextLength {
		return text
	}

	if h.condenser != nil {
		condensed, err := h.condenser.Condense(ctx, text, h.maxTextLength)
		if err == nil {
			return condensed
		}
		log.Printf("[API] Condensation failed, truncating instead: %v", err)
	}

	return string([]rune(text)[:h.maxTextLength])
}

func (h *Handler) lookupRecord(ctx context.Context, filename string) *models.SynthesisRecord {
	if h.cache == nil {
		return nil
	}
	rec, err := h.cache.Lookup(ctx, filename)
	if err != nil {
		log.Printf("[API] Metadata cache lookup failed for %s: %v", filename, err)
		return nil
	}
	return rec
}

// recordSynthesis writes the synthesis record to the optional metadata cache
// and history table. Failures are logged, never surfaced — the audio is
// already on disk and the response must not depend on bookkeeping.
func (h *Handler) recordSynthesis(ctx context.Context, rec *models.SynthesisRecord) {
	if h.cache != nil {
		if err := h.cache.Record(ctx, rec); err != nil {
			log.Printf("[API] Failed to cache synthesis record: %v", err)
		}
	}
	if h.db != nil {
		if err := h.db.RecordSynthesis(ctx, rec); err != nil {
			log.Printf("[API] Failed to persist synthesis record: %v", err)
		}
	}
}

// audioURL builds the externally reachable URL for a cached audio file.
func (h *Handler) audioURL(r *http.Request, filename string) string {
	base := h.publicBaseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return fmt.Sprintf("%s/api/audio/%s", strings.TrimRight(base, "/"), filename)
}

// Audio handles GET /api/audio/{filename}.
// Streams the file; this is a binary endpoint, so failures are plain 404s
// rather than JSON bodies.
func (h *Handler) Audio(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	f, info, err := h.store.Open(filename)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentTypeFor(filename))
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

func contentTypeFor(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".wav"):
		return models.FormatWAV.ContentType()
	case strings.HasSuffix(filename, ".ogg"):
		return models.FormatOGG.ContentType()
	default:
		return models.FormatMP3.ContentType()
	}
}

// Health handles GET /api/health.
// Probes run concurrently and never fail the request — a dead upstream
// becomes a field value. The endpoint reports "healthy" whenever the
// process is up, matching the service's long-observed behavior.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		TTSEngine: "operational",
		GeminiAPI: "unavailable (using fallback)",
		NewsAPI:   "inaccessible",
	}

	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if h.gemini == nil {
			return nil
		}
		if err := h.gemini.Ping(gctx); err != nil {
			log.Printf("[Health] Gemini probe failed: %v", err)
			return nil
		}
		status.GeminiAPI = "available"
		return nil
	})

	g.Go(func() error {
		if err := h.news.Ping(gctx); err != nil {
			log.Printf("[Health] News API probe failed: %v", err)
			return nil
		}
		status.NewsAPI = "accessible"
		return nil
	})

	// Probes only report, never error
	_ = g.Wait()

	respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:   "healthy",
		Services: status,
		Version:  version,
	})
}

// Syntheses handles GET /api/syntheses — recent synthesis history.
// Only routed when a database is configured.
func (h *Handler) Syntheses(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	records, err := h.db.RecentSyntheses(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list syntheses")
		return
	}

	respondJSON(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    records,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Success: false, Error: message})
}
