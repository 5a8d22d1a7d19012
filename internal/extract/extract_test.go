package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bobarin/newsvoice/internal/models"
)

func article(attrs map[string]interface{}) *models.Article {
	return &models.Article{ID: "42", Title: "t", Attributes: attrs}
}

func TestExtractPrefersContent(t *testing.T) {
	e := New("content", 0)

	text, source, err := e.Extract(article(map[string]interface{}{
		"content":           "full article body",
		"short_description": "short",
		"title":             "headline",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "full article body" {
		t.Errorf("expected content text, got %q", text)
	}
	if source != models.SourceContent {
		t.Errorf("expected source=content, got %s", source)
	}
}

func TestExtractFallsBackToShortDescription(t *testing.T) {
	e := New("content", 0)

	text, source, err := e.Extract(article(map[string]interface{}{
		"content":           "",
		"short_description": "short",
		"title":             "headline",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "short" || source != models.SourceShortDescription {
		t.Errorf("expected short_description fallback, got %q (%s)", text, source)
	}
}

func TestExtractFallsBackToTitle(t *testing.T) {
	e := New("content", 0)

	text, source, err := e.Extract(article(map[string]interface{}{
		"title": "headline",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "headline" || source != models.SourceTitle {
		t.Errorf("expected title fallback, got %q (%s)", text, source)
	}
}

func TestExtractNoContent(t *testing.T) {
	e := New("content", 0)

	cases := []map[string]interface{}{
		{},
		{"content": "", "short_description": "", "title": ""},
		{"unrelated": "field"},
	}

	for i, attrs := range cases {
		if _, _, err := e.Extract(article(attrs)); err != ErrNoContent {
			t.Errorf("case %d: expected ErrNoContent, got %v", i, err)
		}
	}
}

func TestExtractNilArticle(t *testing.T) {
	e := New("content", 0)
	if _, _, err := e.Extract(nil); err != ErrNoContent {
		t.Errorf("expected ErrNoContent for nil article, got %v", err)
	}
}

func TestExtractDottedPath(t *testing.T) {
	e := New("body.sections.0.text", 0)

	attrs := map[string]interface{}{
		"body": map[string]interface{}{
			"sections": []interface{}{
				map[string]interface{}{"text": "nested paragraph"},
			},
		},
		"title": "headline",
	}

	text, source, err := e.Extract(article(attrs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "nested paragraph" {
		t.Errorf("expected nested text, got %q", text)
	}
	if source != models.SourceContent {
		t.Errorf("expected source=content for preferred key, got %s", source)
	}
}

func TestExtractDottedPathUnresolvedSegmentFallsThrough(t *testing.T) {
	e := New("body.missing.text", 0)

	attrs := map[string]interface{}{
		"body":  map[string]interface{}{"sections": []interface{}{}},
		"title": "headline",
	}

	// Every segment must resolve; a broken path falls back to the next field
	text, source, err := e.Extract(article(attrs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "headline" || source != models.SourceTitle {
		t.Errorf("expected title fallback, got %q (%s)", text, source)
	}
}

func TestExtractTruncates(t *testing.T) {
	e := New("content", 10)

	long := strings.Repeat("a", 100)
	text, _, err := e.Extract(article(map[string]interface{}{"content": long}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(text) != 10 {
		t.Errorf("expected text truncated to 10 chars, got %d", len(text))
	}
}

func TestExtractTruncatesAtRuneBoundary(t *testing.T) {
	e := New("content", 10)

	long := strings.Repeat("日", 20)
	text, _, err := e.Extract(article(map[string]interface{}{"content": long}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(text) {
		t.Fatalf("truncated text is not valid UTF-8: %q", text)
	}
	if got := utf8.RuneCountInString(text); got != 10 {
		t.Errorf("expected 10 characters, got %d", got)
	}
	if text != strings.Repeat("日", 10) {
		t.Errorf("expected first 10 characters kept, got %q", text)
	}
}

func TestExtractPreferredKeyReportsKnownSource(t *testing.T) {
	e := New("title", 0)

	text, source, err := e.Extract(article(map[string]interface{}{
		"content": "full article body",
		"title":   "headline",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "headline" {
		t.Errorf("expected preferred title text, got %q", text)
	}
	if source != models.SourceTitle {
		t.Errorf("expected source=title for preferred title key, got %s", source)
	}
}

func TestExtractNumericLeaf(t *testing.T) {
	e := New("content", 0)

	// JSON numbers decode as float64; scalar leaves are speakable
	text, _, err := e.Extract(article(map[string]interface{}{"content": float64(7)}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "7" {
		t.Errorf("expected \"7\", got %q", text)
	}
}
