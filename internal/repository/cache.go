package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/redis/go-redis/v9"
)

// PlacemarkCache stores reverse geocoding results in Redis.
type PlacemarkCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPlacemarkCache(client *redis.Client, ttl time.Duration) *PlacemarkCache {
	return &PlacemarkCache{client: client, ttl: ttl}
}

// PlacemarkKey buckets coordinates to about 11 m so nearby lookups share an entry.
func PlacemarkKey(lat, lon float64) string {
	return fmt.Sprintf("placemark:%.4f:%.4f", lat, lon)
}

// Get returns the cached placemark. A miss is reported as (nil, false, nil).
func (c *PlacemarkCache) Get(ctx context.Context, key string) (*models.Placemark, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("repository: failed to get from cache: %w", err)
	}

	var pm models.Placemark
	if err := json.Unmarshal(raw, &pm); err != nil {
		return nil, false, fmt.Errorf("repository: corrupt cache entry %s: %w", key, err)
	}
	return &pm, true, nil
}

// Set stores pm under key with the cache TTL.
func (c *PlacemarkCache) Set(ctx context.Context, key string, pm *models.Placemark) error {
	raw, err := json.Marshal(pm)
	if err != nil {
		return fmt.Errorf("repository: failed to encode placemark: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("repository: failed to set in cache: %w", err)
	}
	return nil
}
