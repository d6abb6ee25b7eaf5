package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/tayloree/shopcli/internal/api"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTTL matches the storefront's client-side catalog cache.
	DefaultTTL = 5 * time.Minute

	categoriesKey = "categories"
	productsKey   = "products"
)

// Fetcher retrieves undecoded catalog collections.
type Fetcher interface {
	FetchCategoriesRaw(ctx context.Context) ([]byte, error)
	FetchProductsRaw(ctx context.Context) ([]byte, error)
}

// Source serves catalog snapshots from a Store, fetching through Fetcher on a
// miss. Concurrent misses for the same collection share one fetch.
type Source struct {
	fetcher Fetcher
	store   Store
	ttl     time.Duration
	logger  *zap.Logger
	group   singleflight.Group
}

// NewSource creates a Source. A nil store means an in-process MemoryStore and
// a non-positive ttl means DefaultTTL.
func NewSource(fetcher Fetcher, store Store, ttl time.Duration, logger *zap.Logger) *Source {
	if store == nil {
		store = NewMemoryStore()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{fetcher: fetcher, store: store, ttl: ttl, logger: logger}
}

// Load returns both collections, from cache when fresh.
func (s *Source) Load(ctx context.Context) (*api.Snapshot, error) {
	return s.load(ctx, false)
}

// Refresh bypasses the cache, fetches both collections and stores them.
func (s *Source) Refresh(ctx context.Context) (*api.Snapshot, error) {
	return s.load(ctx, true)
}

// Invalidate drops both cached collections.
func (s *Source) Invalidate(ctx context.Context) error {
	for _, key := range []string{categoriesKey, productsKey} {
		if err := s.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying store.
func (s *Source) Close() error {
	return s.store.Close()
}

func (s *Source) load(ctx context.Context, force bool) (*api.Snapshot, error) {
	categoriesRaw, err := s.get(ctx, categoriesKey, s.fetcher.FetchCategoriesRaw, force)
	if err != nil {
		return nil, err
	}
	categories, err := api.ParseCategories(categoriesRaw)
	if err != nil {
		return nil, err
	}

	productsRaw, err := s.get(ctx, productsKey, s.fetcher.FetchProductsRaw, force)
	if err != nil {
		return nil, err
	}
	products, err := api.ParseProducts(productsRaw)
	if err != nil {
		return nil, err
	}

	return &api.Snapshot{Categories: categories, Products: products}, nil
}

func (s *Source) get(ctx context.Context, key string, fetch func(context.Context) ([]byte, error), force bool) ([]byte, error) {
	if !force {
		data, ok, err := s.store.Get(ctx, key)
		if err != nil {
			s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		if ok {
			return data, nil
		}
	}

	flightKey := key
	if force {
		flightKey = "refresh:" + key
	}
	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own context ends.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(flightKey, func() (any, error) {
		data, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if err := s.store.Set(fetchCtx, key, data, s.ttl); err != nil {
			s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("loading %s: %w", key, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("loading %s: %w", key, res.Err)
		}
		s.logger.Debug("catalog fetched", zap.String("key", key), zap.Bool("shared", res.Shared))
		return res.Val.([]byte), nil
	}
}
