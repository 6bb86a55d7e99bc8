package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arinleviti/80sHorrorHub/internal/constants"
	"github.com/arinleviti/80sHorrorHub/internal/domain"
	"github.com/arinleviti/80sHorrorHub/internal/logger"
)

type Cache interface {
	GetCache(key string) ([]byte, error)
	SetCache(key string, data []byte, ttl time.Duration) error
	ClearCache() error
}

// CachedClient keeps metadata responses in the key/value cache. Errors are
// never cached, and an unreadable cache counts as a miss.
type CachedClient struct {
	api      API
	cache    Cache
	cacheTTL time.Duration
	logger   *logger.Logger
}

func NewCachedClient(api API, cache Cache, cacheTTL time.Duration, log *logger.Logger) *CachedClient {
	if log == nil {
		log = logger.Discard()
	}
	return &CachedClient{
		api:      api,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log.WithProvider(constants.ProviderTMDB),
	}
}

func (c *CachedClient) Movie(ctx context.Context, id int) (*domain.Movie, error) {
	return cached(c, fmt.Sprintf("tmdb:movie:%d", id), func() (*domain.Movie, error) {
		return c.api.Movie(ctx, id)
	})
}

func (c *CachedClient) Configuration(ctx context.Context) (*domain.ImageConfig, error) {
	return cached(c, "tmdb:configuration", func() (*domain.ImageConfig, error) {
		return c.api.Configuration(ctx)
	})
}

func (c *CachedClient) Credits(ctx context.Context, id int) (*domain.Credits, error) {
	return cached(c, fmt.Sprintf("tmdb:credits:%d", id), func() (*domain.Credits, error) {
		return c.api.Credits(ctx, id)
	})
}

func (c *CachedClient) ClearCache() error {
	return c.cache.ClearCache()
}

func cached[T any](c *CachedClient, key string, load func() (*T, error)) (*T, error) {
	data, err := c.cache.GetCache(key)
	if err != nil {
		c.logger.Warn("Cache read failed, fetching", "key", key, "error", err)
	} else if data != nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return &v, nil
		}
	}

	v, err := load()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := c.cache.SetCache(key, data, c.cacheTTL); err != nil {
			c.logger.Warn("Cache write failed", "key", key, "error", err)
		}
	}

	return v, nil
}

var _ API = (*CachedClient)(nil)
