package guard_test

import (
	"testing"

	"github.com/aiflashlang/flashlang-web/internal/guard"
	"github.com/aiflashlang/flashlang-web/internal/models"
	"github.com/aiflashlang/flashlang-web/internal/routes"
	"github.com/stretchr/testify/assert"
)

// fakeSession is a static guard.Session for decision tests.
type fakeSession struct {
	loading       bool
	authenticated bool
	user          *models.Profile
}

func (s fakeSession) Loading() bool         { return s.loading }
func (s fakeSession) IsAuthenticated() bool { return s.authenticated }
func (s fakeSession) User() *models.Profile { return s.user }

var (
	anonymous  = fakeSession{}
	restoring  = fakeSession{loading: true}
	unverified = fakeSession{authenticated: true, user: &models.Profile{Username: "alice", IsActive: false}}
	verified   = fakeSession{authenticated: true, user: &models.Profile{Username: "alice", IsActive: true}}
	// token present but the profile fetch has not succeeded
	profileless = fakeSession{authenticated: true}
)

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name    string
		session fakeSession
		path    string
		want    guard.Decision
	}{
		{"loading never redirects", restoring, routes.PathMyWords, guard.Decision{State: guard.Checking}},
		{"loading on public path", restoring, routes.PathIndex, guard.Decision{State: guard.Checking}},
		{"anonymous on public path", anonymous, routes.PathIndex, guard.Decision{State: guard.Allowed}},
		{"anonymous on login page", anonymous, routes.PathLogin, guard.Decision{State: guard.Allowed}},
		{"anonymous on private path", anonymous, routes.PathCreate, guard.Decision{State: guard.Redirect, Target: routes.PathLogin}},
		{"anonymous on unknown path fails closed", anonymous, "/settings", guard.Decision{State: guard.Redirect, Target: routes.PathLogin}},
		{"authenticated on private path", profileless, routes.PathCreate, guard.Decision{State: guard.Allowed}},
		{"authenticated on public path", verified, routes.PathIndex, guard.Decision{State: guard.Allowed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.Authenticate(tt.session, tt.path))
		})
	}
}

func TestVerified(t *testing.T) {
	tests := []struct {
		name    string
		session fakeSession
		path    string
		want    guard.Decision
	}{
		{"loading never redirects", restoring, routes.PathMyWords, guard.Decision{State: guard.Checking}},
		{"anonymous goes to login", anonymous, routes.PathMyWords, guard.Decision{State: guard.Redirect, Target: routes.PathLogin}},
		{"unverified goes to resend page", unverified, routes.PathMyWords, guard.Decision{State: guard.Redirect, Target: routes.PathResendVerification}},
		{"missing profile counts as unverified", profileless, routes.PathMyWords, guard.Decision{State: guard.Redirect, Target: routes.PathResendVerification}},
		{"unverified allowed on resend page itself", unverified, routes.PathResendVerification, guard.Decision{State: guard.Allowed}},
		{"verified passes", verified, routes.PathMyWords, guard.Decision{State: guard.Allowed}},
		{"verified on account page", verified, routes.PathMyAccount, guard.Decision{State: guard.Allowed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.Verified(tt.session, tt.path))
		})
	}
}

func TestForClass(t *testing.T) {
	// public pages skip both guards entirely
	assert.Equal(t, guard.Decision{State: guard.Allowed}, guard.ForClass(anonymous, routes.PathFeatures))
	// private pages only need authentication
	assert.Equal(t, guard.Decision{State: guard.Allowed}, guard.ForClass(unverified, routes.PathCreate))
	// verified pages need both
	assert.Equal(t,
		guard.Decision{State: guard.Redirect, Target: routes.PathResendVerification},
		guard.ForClass(unverified, routes.PathImport))
}
