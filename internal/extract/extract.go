package extract

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bobarin/newsvoice/internal/models"
)

// ErrNoContent means the article had no usable text in any known field.
var ErrNoContent = errors.New("no content available for text-to-speech conversion")

// Extractor selects the speakable text from an article's attribute map.
// Field priority: the preferred key first (default "content"), then
// "short_description", then "title". The preferred key may be a dotted path
// ("body.text", "sections.0.paragraph") navigated segment by segment.
//
// The reported source matches the preferred key when it names a known source
// field; custom keys and dotted paths are reported as "content", since they
// play the primary-field role.
type Extractor struct {
	preferredKey string
	maxLength    int
}

func New(preferredKey string, maxLength int) *Extractor {
	if preferredKey == "" {
		preferredKey = string(models.SourceContent)
	}
	return &Extractor{
		preferredKey: preferredKey,
		maxLength:    maxLength,
	}
}

// Extract returns the speakable text and which field supplied it.
func (e *Extractor) Extract(article *models.Article) (string, models.ContentSource, error) {
	if article == nil || len(article.Attributes) == 0 {
		return "", "", ErrNoContent
	}

	candidates := []struct {
		key    string
		source models.ContentSource
	}{
		{e.preferredKey, sourceFor(e.preferredKey)},
		{string(models.SourceShortDescription), models.SourceShortDescription},
		{string(models.SourceTitle), models.SourceTitle},
	}

	for _, cand := range candidates {
		text := lookup(article.Attributes, cand.key)
		if text == "" {
			continue
		}
		return e.truncate(text), cand.source, nil
	}

	return "", "", ErrNoContent
}

// truncate silently bounds the text to maxLength characters to cap synthesis
// cost. Counted in runes, not bytes, so multibyte text is never cut mid-rune.
func (e *Extractor) truncate(text string) string {
	if e.maxLength <= 0 {
		return text
	}
	if n := utf8.RuneCountInString(text); n > e.maxLength {
		log.Printf("[Extract] Trimming text from %d to %d characters", n, e.maxLength)
		return string([]rune(text)[:e.maxLength])
	}
	return text
}

// sourceFor labels a preferred key. Keys naming a known source field report
// as themselves; anything else fills the primary-field slot and reports as
// "content" (the label also feeds the cached filename, which must stay flat).
func sourceFor(key string) models.ContentSource {
	switch models.ContentSource(key) {
	case models.SourceShortDescription:
		return models.SourceShortDescription
	case models.SourceTitle:
		return models.SourceTitle
	default:
		return models.SourceContent
	}
}

// lookup resolves key against data. Plain keys are a direct map access;
// dotted keys are navigated one segment at a time, where every segment must
// resolve (maps by key, slices by numeric index) or the lookup yields "".
func lookup(data map[string]interface{}, key string) string {
	if !strings.Contains(key, ".") {
		return stringify(data[key])
	}

	var current interface{} = data
	for _, part := range strings.Split(key, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			next, ok := node[part]
			if !ok {
				return ""
			}
			current = next
		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return ""
			}
			current = node[idx]
		default:
			return ""
		}
	}

	return stringify(current)
}

// stringify converts scalar leaf values to text. Non-scalar leaves are not
// speakable and yield "".
func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return fmt.Sprintf("%d", val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
