// Package guard decides whether a page may render for the current session.
// The decision functions are pure so the redirect rules can be tested
// without HTTP plumbing; the gin middleware in internal/middleware applies
// their verdicts.
package guard

import (
	"github.com/aiflashlang/flashlang-web/internal/models"
	"github.com/aiflashlang/flashlang-web/internal/routes"
)

// State is the outcome of evaluating a guard for one render.
type State int

const (
	// Checking means the session restore has not settled; render a
	// neutral loading state and perform no navigation.
	Checking State = iota
	// Redirect means navigation to Decision.Target instead of rendering.
	Redirect
	// Allowed means the wrapped content renders.
	Allowed
)

// Decision carries the guard verdict and, for Redirect, the target path.
type Decision struct {
	State  State
	Target string
}

// Session is the read-only view of the session store the guards consult.
type Session interface {
	Loading() bool
	IsAuthenticated() bool
	User() *models.Profile
}

// Authenticate is the basic route guard: once the session has settled, an
// unauthenticated visitor on a non-public path is redirected to the login
// page. It re-runs on every request, never caching a verdict.
func Authenticate(s Session, path string) Decision {
	if s.Loading() {
		return Decision{State: Checking}
	}

	if !s.IsAuthenticated() && !routes.IsPublic(path) {
		return Decision{State: Redirect, Target: routes.PathLogin}
	}

	return Decision{State: Allowed}
}

// Verified guards pages that require a confirmed email address. It repeats
// the authentication rule since it may wrap pages directly.
// An authenticated session without a profile snapshot is treated as not yet
// verified: absence of confirming data never grants access.
func Verified(s Session, path string) Decision {
	if s.Loading() {
		return Decision{State: Checking}
	}

	if !s.IsAuthenticated() {
		return Decision{State: Redirect, Target: routes.PathLogin}
	}

	user := s.User()
	if user == nil || !user.IsActive {
		// Never redirect the resend page to itself
		if path == routes.PathResendVerification {
			return Decision{State: Allowed}
		}
		return Decision{State: Redirect, Target: routes.PathResendVerification}
	}

	return Decision{State: Allowed}
}

// ForClass evaluates the guard appropriate to the path's classification.
func ForClass(s Session, path string) Decision {
	switch routes.Classify(path) {
	case routes.Public:
		return Decision{State: Allowed}
	case routes.PrivateVerified:
		return Verified(s, path)
	default:
		return Authenticate(s, path)
	}
}
