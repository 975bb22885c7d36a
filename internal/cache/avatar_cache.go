package cache

import (
	"time"

	"github.com/aiflashlang/flashlang-web/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
)

const avatarCacheName = "avatars"

// AvatarCache keeps the per-user avatar reference so account pages don't
// refetch the profile just to render the navbar picture. Entries are evicted
// on logout and by TTL.
type AvatarCache struct {
	cache *gocache.Cache
}

// NewAvatarCache creates an avatar cache with the given TTL.
func NewAvatarCache(ttlHours int) *AvatarCache {
	ttl := time.Duration(ttlHours) * time.Hour
	return &AvatarCache{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

// Get returns the cached avatar reference for a username.
func (a *AvatarCache) Get(username string) (string, bool) {
	v, found := a.cache.Get(username)
	if !found {
		metrics.CacheMisses.WithLabelValues(avatarCacheName).Inc()
		return "", false
	}
	metrics.CacheHits.WithLabelValues(avatarCacheName).Inc()
	ref, ok := v.(string)
	return ref, ok
}

// Set stores the avatar reference for a username.
func (a *AvatarCache) Set(username, ref string) {
	a.cache.SetDefault(username, ref)
}

// Remove evicts the avatar reference, called on logout.
func (a *AvatarCache) Remove(username string) {
	a.cache.Delete(username)
}
