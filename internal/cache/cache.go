package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bobarin/newsvoice/internal/models"
	"github.com/go-redis/redis/v8"
)

// ---------------------------------------------------------------------------
// Synthesis metadata cache
// The audio files themselves are cached on disk by filename; Redis keeps the
// per-filename synthesis record (engine used, text length) so a disk cache
// hit can still report which engine produced the audio. Optional: the server
// runs without it and reports "cached" for hits instead.
// ---------------------------------------------------------------------------

const keyPrefix = "synth:"

type Cache struct {
	client *redis.Client
}

func New(redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{client: client}, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Record stores the synthesis record for a filename. No expiry — the record
// is only useful while the file exists, and file cleanup is external.
func (c *Cache) Record(ctx context.Context, rec *models.SynthesisRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal synthesis record: %w", err)
	}

	return c.client.Set(ctx, keyPrefix+rec.Filename, data, 0).Err()
}

// Lookup returns the synthesis record for a filename, or nil when absent.
func (c *Cache) Lookup(ctx context.Context, filename string) (*models.SynthesisRecord, error) {
	data, err := c.client.Get(ctx, keyPrefix+filename).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesis record: %w", err)
	}

	var rec models.SynthesisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal synthesis record: %w", err)
	}

	return &rec, nil
}
