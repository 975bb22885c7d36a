package handlers

import (
	"github.com/aiflashlang/flashlang-web/internal/cache"
	"github.com/aiflashlang/flashlang-web/internal/middleware"
	"github.com/aiflashlang/flashlang-web/internal/session"
	"github.com/gin-gonic/gin"
)

// getSession fetches the per-request session the session middleware stored.
func getSession(c *gin.Context) (*session.Store, error) {
	return middleware.GetSession(c)
}

// page is the payload every template receives. Data carries the per-page
// section, the rest feeds the shared chrome (nav bar, flash messages).
type page struct {
	Title         string
	Username      string
	Authenticated bool
	Verified      bool
	Avatar        string
	Errors        []string
	Notice        string
	Data          any
}

// newPage builds the common template payload from the request's session. A
// missing session (public page reached outside the session middleware, only
// possible in tests) renders as anonymous.
func newPage(c *gin.Context, avatars *cache.AvatarCache, title string) page {
	p := page{Title: title}

	sess, err := middleware.GetSession(c)
	if err != nil {
		return p
	}

	p.Username = sess.Username()
	p.Authenticated = sess.IsAuthenticated()
	if user := sess.User(); user != nil {
		p.Verified = user.IsActive
		if user.DisplayName != "" {
			p.Username = user.DisplayName
		}
	}
	if avatars != nil && sess.Username() != "" {
		if ref, ok := avatars.Get(sess.Username()); ok {
			p.Avatar = ref
		}
	}
	return p
}
