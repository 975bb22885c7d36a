package middleware

import (
	"net/http"

	"github.com/aiflashlang/flashlang-web/internal/guard"
	"github.com/aiflashlang/flashlang-web/internal/routes"
	"github.com/aiflashlang/flashlang-web/pkg/metrics"
	"github.com/gin-gonic/gin"
)

type guardFunc func(guard.Session, string) guard.Decision

// AuthGuard redirects unauthenticated visitors of non-public pages to the
// login page. It evaluates on every request, so navigation between pages is
// re-checked by the next page load rather than a one-time mount check.
func AuthGuard() gin.HandlerFunc {
	return applyGuard("auth", guard.Authenticate)
}

// VerifiedGuard additionally redirects authenticated-but-unverified users
// to the resend-verification page. It must run after (inside) AuthGuard on
// route groups, but repeats the authentication rule for pages it wraps
// directly.
func VerifiedGuard() gin.HandlerFunc {
	return applyGuard("verified", guard.Verified)
}

func applyGuard(name string, decide guardFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := GetSession(c)
		if err != nil {
			// No session middleware upstream: fail closed
			c.Redirect(http.StatusFound, routes.PathLogin)
			c.Abort()
			return
		}

		decision := decide(sess, c.Request.URL.Path)
		switch decision.State {
		case guard.Redirect:
			metrics.GuardRedirects.WithLabelValues(name, decision.Target).Inc()
			c.Redirect(http.StatusFound, decision.Target)
			c.Abort()
		case guard.Checking:
			// Unknown state: neutral render, no navigation
			c.HTML(http.StatusOK, "loading.html", gin.H{})
			c.Abort()
		case guard.Allowed:
			c.Next()
		}
	}
}
