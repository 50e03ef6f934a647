package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clinicware/booking-platform/pkg/logging"
)

// CachedDirectory decorates a Directory with a short-lived redis snapshot
// cache for single-doctor lookups. The directory is the source of truth;
// cache failures fall through to it and are never surfaced to callers.
type CachedDirectory struct {
	source Directory
	rdb    *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedDirectory wraps source with a redis cache.
func NewCachedDirectory(source Directory, rdb *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedDirectory {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedDirectory{
		source: source,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// GetDoctor returns the cached snapshot when present, otherwise loads from
// the directory and caches the result.
func (c *CachedDirectory) GetDoctor(ctx context.Context, id string) (*Doctor, error) {
	key := cacheKey(id)

	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var doc Doctor
		if err := json.Unmarshal(data, &doc); err == nil {
			return &doc, nil
		}
		// Corrupt entry: drop it and fall through to the source.
		c.rdb.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.Warn("doctor cache read failed", "doctor_id", id, "error", err)
	}

	doc, err := c.source.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(doc); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("doctor cache write failed", "doctor_id", id, "error", err)
		}
	}
	return doc, nil
}

// ListBySpecialty is not cached; listings are advisory and cheap to refetch.
func (c *CachedDirectory) ListBySpecialty(ctx context.Context, specialty string) ([]Doctor, error) {
	return c.source.ListBySpecialty(ctx, specialty)
}

// ListAll is not cached.
func (c *CachedDirectory) ListAll(ctx context.Context) ([]Doctor, error) {
	return c.source.ListAll(ctx)
}

func cacheKey(id string) string {
	return "directory:doctor:" + id
}
