package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aiflashlang/flashlang-web/internal/models"
	"github.com/aiflashlang/flashlang-web/pkg/logger"
	"github.com/aiflashlang/flashlang-web/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	languagesCacheKey  = "languages"
	languagesCacheName = "languages"
)

// LanguagesFetcher fetches the language catalog from the vocabulary API.
type LanguagesFetcher func(ctx context.Context) ([]models.Language, error)

// LanguagesCache caches the backend's language catalog. The catalog changes
// rarely, every page with a language dropdown reads it, and the backend call
// costs a network round trip per render without it.
type LanguagesCache struct {
	cache   *gocache.Cache
	fetcher LanguagesFetcher
	ttl     time.Duration
	mu      sync.RWMutex
	ready   bool
}

// NewLanguagesCache creates a languages cache with the given fetcher and TTL.
func NewLanguagesCache(fetcher LanguagesFetcher, ttlSeconds int) *LanguagesCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	return &LanguagesCache{
		cache:   gocache.New(ttl, time.Minute),
		fetcher: fetcher,
		ttl:     ttl,
	}
}

// Initialize performs initial cache population (synchronous, blocks until ready).
// Should be called during application startup before accepting requests.
func (lc *LanguagesCache) Initialize() error {
	logger.Info("Initializing languages cache...")
	if _, err := lc.refresh(context.Background()); err != nil {
		logger.Error("Failed to initialize languages cache", zap.Error(err))
		return err
	}

	lc.mu.Lock()
	lc.ready = true
	lc.mu.Unlock()

	logger.Info("Languages cache initialized successfully")
	return nil
}

// IsReady returns true if the cache has been successfully initialized
func (lc *LanguagesCache) IsReady() bool {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.ready
}

// Get retrieves the catalog from cache or fetches it on a miss
func (lc *LanguagesCache) Get(ctx context.Context) ([]models.Language, error) {
	if !lc.IsReady() {
		return nil, fmt.Errorf("languages cache not initialized")
	}

	if data, found := lc.cache.Get(languagesCacheKey); found {
		metrics.CacheHits.WithLabelValues(languagesCacheName).Inc()
		languages, ok := data.([]models.Language)
		if !ok {
			logger.Error("Invalid languages cache data type")
			lc.cache.Delete(languagesCacheKey)
			return nil, fmt.Errorf("invalid cache data type")
		}
		return languages, nil
	}

	metrics.CacheMisses.WithLabelValues(languagesCacheName).Inc()
	logger.Info("Languages cache miss, fetching from backend")

	return lc.refresh(ctx)
}

// refresh fetches the catalog from the backend and updates the cache
func (lc *LanguagesCache) refresh(ctx context.Context) ([]models.Language, error) {
	languages, err := lc.fetcher(ctx)
	if err != nil {
		logger.Error("Failed to refresh languages cache", zap.Error(err))
		return nil, err
	}

	lc.cache.Set(languagesCacheKey, languages, lc.ttl)

	logger.Info("Languages cache refreshed", zap.Int("count", len(languages)))

	return languages, nil
}
