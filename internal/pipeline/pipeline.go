// Package pipeline implements the fetch-cache-normalize flow shared by every
// remote provider: serve a fresh cached row, otherwise call the provider,
// guard and normalize its payload, replace the cached children, and apply
// the provider's fallback policy when anything goes wrong.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arinleviti/80sHorrorHub/internal/domain"
	"github.com/arinleviti/80sHorrorHub/internal/logger"
	"github.com/arinleviti/80sHorrorHub/internal/schema"
)

var (
	// ErrUnavailable means the remote call failed and no fallback applied.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrEmpty means the provider answered with nothing worth keeping.
	ErrEmpty = errors.New("empty result")
)

// Origin tells where a Result came from.
type Origin string

const (
	OriginCache    Origin = "cache"
	OriginRemote   Origin = "remote"
	OriginStale    Origin = "stale"
	OriginFallback Origin = "fallback"
)

// Store is the cache store accessor used by a pipeline. FindQuery returns
// nil, nil when no row exists.
type Store interface {
	FindQuery(ctx context.Context, provider, key string) (*domain.CachedQuery, error)
	UpsertQuery(ctx context.Context, provider, key string, items []json.RawMessage, updatedAt time.Time) error
}

type Result[T any] struct {
	Items  []T
	Origin Origin
}

// Pipeline fetches []T for a query of type Q from one provider.
type Pipeline[Q, T any] struct {
	Provider string
	TTL      time.Duration
	// Store may be nil, which disables caching entirely.
	Store Store

	Key       func(q Q) string
	Call      func(ctx context.Context, q Q) ([]byte, error)
	Schema    schema.Schema
	Normalize func(ctx context.Context, q Q, raw []byte) ([]T, error)

	// Fallback returns static data on failure. The store is not touched.
	Fallback func(q Q) []T
	// StaleOnFailure serves an expired cached row when the remote fails.
	StaleOnFailure bool
	// RejectEmpty reports an empty normalized result as ErrEmpty without
	// caching it and without applying any fallback.
	RejectEmpty bool
	// RequireCachedItems treats a cached row with no children as absent.
	RequireCachedItems bool

	Now    func() time.Time
	Logger *logger.Logger
}

// Fetch runs the pipeline for q.
func (p *Pipeline[Q, T]) Fetch(ctx context.Context, q Q) (*Result[T], error) {
	now := p.now()
	key := ""
	if p.Key != nil {
		key = p.Key(q)
	}
	log := p.log().With("key", key)

	var cached *domain.CachedQuery
	if p.Store != nil {
		c, err := p.Store.FindQuery(ctx, p.Provider, key)
		if err != nil {
			log.Warn("Cache read failed, treating as miss", "error", err)
		} else if c != nil && !(p.RequireCachedItems && len(c.Items) == 0) {
			cached = c
		}
	}

	if cached != nil && IsFresh(cached.UpdatedAt, p.TTL, now) {
		items, err := decodeItems[T](cached.Items)
		if err == nil {
			log.Debug("Cache hit", "items", len(items))
			return &Result[T]{Items: items, Origin: OriginCache}, nil
		}
		log.Warn("Cached items unreadable, refetching", "error", err)
	}

	items, err := p.remote(ctx, q)
	if errors.Is(err, ErrEmpty) {
		log.Info("Provider returned no results")
		return nil, fmt.Errorf("%s: %w", p.Provider, ErrEmpty)
	}
	if err != nil {
		return p.onFailure(q, cached, err, log)
	}

	if p.Store != nil {
		raw, err := encodeItems(items)
		if err != nil {
			log.Warn("Failed to encode items for cache", "error", err)
		} else if err := p.Store.UpsertQuery(ctx, p.Provider, key, raw, now); err != nil {
			log.Warn("Cache write failed", "error", err)
		}
	}

	log.Debug("Fetched from provider", "items", len(items))
	return &Result[T]{Items: items, Origin: OriginRemote}, nil
}

func (p *Pipeline[Q, T]) remote(ctx context.Context, q Q) ([]T, error) {
	raw, err := p.Call(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("call: %w", err)
	}
	if len(p.Schema) > 0 {
		if err := p.Schema.ValidateJSON(raw); err != nil {
			return nil, err
		}
	}
	items, err := p.Normalize(ctx, q, raw)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	if p.RejectEmpty && len(items) == 0 {
		return nil, ErrEmpty
	}
	return items, nil
}

func (p *Pipeline[Q, T]) onFailure(q Q, cached *domain.CachedQuery, cause error, log *slog.Logger) (*Result[T], error) {
	if p.Fallback != nil {
		log.Warn("Provider failed, serving fallback data", "error", cause)
		return &Result[T]{Items: p.Fallback(q), Origin: OriginFallback}, nil
	}

	if p.StaleOnFailure && cached != nil {
		items, err := decodeItems[T](cached.Items)
		if err == nil {
			log.Warn("Provider failed, serving stale cache", "error", cause, "updated_at", cached.UpdatedAt)
			return &Result[T]{Items: items, Origin: OriginStale}, nil
		}
	}

	log.Warn("Provider failed", "error", cause)
	return nil, fmt.Errorf("%s: %w: %w", p.Provider, ErrUnavailable, cause)
}

func (p *Pipeline[Q, T]) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline[Q, T]) log() *logger.Logger {
	if p.Logger != nil {
		return p.Logger.WithProvider(p.Provider)
	}
	return logger.Discard()
}

func decodeItems[T any](raw []json.RawMessage) ([]T, error) {
	items := make([]T, 0, len(raw))
	for i, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func encodeItems[T any](items []T) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		raw = append(raw, b)
	}
	return raw, nil
}
