package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/bobarin/newsvoice/internal/models"
)

// ---------------------------------------------------------------------------
// News API client
// Fetches single articles by id from the upstream news API (Strapi-style
// envelope: {"data": {"id": ..., "attributes": {...}}}) using a bearer token.
// ---------------------------------------------------------------------------

const requestTimeout = 10 * time.Second

var (
	// ErrNotFound means the upstream reported no such article.
	ErrNotFound = errors.New("news article not found")
	// ErrUpstream covers network failures, timeouts and malformed responses.
	ErrUpstream = errors.New("news API unavailable")
)

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// envelope is the upstream response wrapper. Data is null/absent when the
// article does not exist.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Fetch retrieves a single article by id. The id is used verbatim in the
// request path, so callers must validate it first.
func (c *Client) Fetch(ctx context.Context, newsID string) (*models.Article, error) {
	reqURL := fmt.Sprintf(
		"%s/news/%s?populate[companies]=true&populate[categories]=true&populate[thumbnail]=true&sort[0][createdAt]=desc",
		c.baseURL, url.PathEscape(newsID),
	)

	body, status, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, status)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUpstream, err)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, ErrNotFound
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed article payload: %v", ErrUpstream, err)
	}

	return buildArticle(newsID, payload), nil
}

// buildArticle normalizes the two payload shapes the upstream has shipped:
// attributes nested under "attributes" (Strapi v4) or flat on the data object.
func buildArticle(newsID string, payload map[string]interface{}) *models.Article {
	attrs := payload
	if nested, ok := payload["attributes"].(map[string]interface{}); ok {
		attrs = nested
	}

	title := "Untitled"
	if t, ok := attrs["title"].(string); ok && t != "" {
		title = t
	}

	return &models.Article{
		ID:         newsID,
		Title:      title,
		Attributes: attrs,
	}
}

// Ping performs a lightweight list request to check reachability.
// Used by the health endpoint; any failure means "inaccessible".
func (c *Client) Ping(ctx context.Context) error {
	reqURL := fmt.Sprintf("%s/news?pagination[page]=1&pagination[pageSize]=1", c.baseURL)

	_, status, err := c.get(ctx, reqURL)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("news API ping returned status %d", status)
	}
	return nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[NewsAPI] Request failed: %v", err)
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return body, resp.StatusCode, nil
}
