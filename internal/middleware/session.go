package middleware

import (
	"errors"

	"github.com/aiflashlang/flashlang-web/internal/cache"
	"github.com/aiflashlang/flashlang-web/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionContextKey is the key used to store the session in the gin context
const SessionContextKey = "flashlang_session"

var (
	ErrSessionNotFound = errors.New("session not found in context")
	ErrInvalidSession  = errors.New("invalid session type")
)

// SessionMiddleware rebuilds the visitor's session from the request cookies
// and restores it against the backend before any guard or handler runs.
// This establishes the happens-before between "request start" and every
// guard decision: Loading has settled by the time c.Next() is reached.
func SessionMiddleware(api session.API, avatars *cache.AvatarCache, opts session.CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := session.NewStore(session.NewGinCookieStore(c, opts), api, avatars)
		store.Restore(c.Request.Context())

		c.Set(SessionContextKey, store)
		c.Next()
	}
}

// GetSession extracts the session store from the gin context
func GetSession(c *gin.Context) (*session.Store, error) {
	val, exists := c.Get(SessionContextKey)
	if !exists {
		return nil, ErrSessionNotFound
	}

	store, ok := val.(*session.Store)
	if !ok {
		return nil, ErrInvalidSession
	}

	return store, nil
}
