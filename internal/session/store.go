// Package session is the single source of truth for "who is logged in".
// A Store is built per request from the browser's cookies, restored against
// the backend, consulted by the route guards and by every authenticated
// call site, and discarded when the response is written.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/aiflashlang/flashlang-web/internal/models"
	"github.com/aiflashlang/flashlang-web/pkg/apperrors"
	"github.com/aiflashlang/flashlang-web/pkg/logger"
	"go.uber.org/zap"
)

// API is the slice of the vocabulary client the session store needs.
type API interface {
	Me(ctx context.Context, token string) (*models.Profile, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

// AvatarEvicter clears a user's cached avatar reference on logout.
type AvatarEvicter interface {
	Remove(username string)
}

// Store holds the current authentication state. Field invariant: an absent
// token implies username and user are absent too; logout clears all three
// atomically. A present token with an absent user means the profile fetch
// failed or has not completed, which the verification guard treats as
// not-yet-verified.
type Store struct {
	cookies CookieStore
	api     API
	avatars AvatarEvicter
	now     func() time.Time

	mu       sync.RWMutex
	token    string
	username string
	user     *models.Profile
	loading  bool
	settle   sync.Once
}

// NewStore creates a session store over the given cookie jar. The store
// starts in the loading state; guards must not make decisions until
// Restore has settled it.
func NewStore(cookies CookieStore, api API, avatars AvatarEvicter) *Store {
	return &Store{
		cookies: cookies,
		api:     api,
		avatars: avatars,
		now:     time.Now,
		loading: true,
	}
}

// Restore attempts to rebuild a session from the persisted cookies. It never
// returns an error: any failure leaves the session in a well-defined state
// and is logged. Loading is cleared exactly once, after the dependent
// profile fetch has settled, so guard decisions always happen-after restore.
func (s *Store) Restore(ctx context.Context) {
	defer s.settleLoading()

	token, ok := s.cookies.Get(CookieAccessToken)
	if !ok {
		return
	}

	if tokenExpired(token, s.now()) {
		refreshed, ok := s.refreshExpired(ctx)
		if !ok {
			s.clearAll()
			return
		}
		token = refreshed
	}

	username, _ := s.cookies.Get(CookieUsername)

	// Token presence flips isAuthenticated before the profile arrives;
	// pages that only need authentication must not wait on the fetch
	s.mu.Lock()
	s.token = token
	s.username = username
	s.mu.Unlock()

	s.fetchProfile(ctx)
}

// Login persists the freshly obtained tokens and fetches the profile.
// Authentication flips to true as soon as the token is set; a failed profile
// fetch leaves user absent but token and username in place, except for a
// backend 401 which voids the session entirely.
func (s *Store) Login(ctx context.Context, token, refreshToken, username string) {
	s.cookies.Set(CookieAccessToken, token)
	if refreshToken != "" {
		s.cookies.Set(CookieRefreshToken, refreshToken)
	}
	s.cookies.Set(CookieUsername, username)

	s.mu.Lock()
	s.token = token
	s.username = username
	s.user = nil
	s.mu.Unlock()

	s.settleLoading()
	s.fetchProfile(ctx)
}

// Logout clears the in-memory session, the persisted cookies and the cached
// avatar reference, all-or-nothing. Calling it while logged out is a no-op.
// Navigation to the login page is the caller's side effect.
func (s *Store) Logout() {
	s.mu.Lock()
	username := s.username
	s.mu.Unlock()

	s.clearAll()

	if s.avatars != nil && username != "" {
		s.avatars.Remove(username)
	}
}

// IsAuthenticated reports whether a token is present. It deliberately does
// not consult the profile: some pages only need this flag.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Loading reports whether the reload-time restore is still in flight.
// Guards must treat true as "unknown", never as "unauthenticated".
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Token returns the current access token, empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Username returns the cached username, empty when logged out.
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// User returns the last-fetched profile snapshot, nil when absent.
func (s *Store) User() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// fetchProfile populates user from the backend. Failures never propagate:
// a 401 means the token is no longer honored and voids the session (the
// decided policy for the token-without-profile ambiguity); anything else
// (network blip, 5xx) keeps the token and leaves user absent so the
// verification guard stays conservative.
func (s *Store) fetchProfile(ctx context.Context) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return
	}

	profile, err := s.api.Me(ctx, token)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			logger.Warn("Stored token rejected by profile endpoint, voiding session")
			s.clearAll()
			return
		}
		logger.Warn("Profile fetch failed, keeping session without profile", zap.Error(err))
		s.mu.Lock()
		s.user = nil
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.user = profile
	s.mu.Unlock()
}

// refreshExpired trades the refresh-token cookie for a new pair and persists
// it. Returns the new access token, or false when no usable refresh token
// exists or the backend declines.
func (s *Store) refreshExpired(ctx context.Context) (string, bool) {
	refresh, ok := s.cookies.Get(CookieRefreshToken)
	if !ok {
		return "", false
	}

	pair, err := s.api.Refresh(ctx, refresh)
	if err != nil {
		logger.Warn("Token refresh failed", zap.Error(err))
		return "", false
	}

	s.cookies.Set(CookieAccessToken, pair.Access)
	if pair.Refresh != "" {
		s.cookies.Set(CookieRefreshToken, pair.Refresh)
	}
	return pair.Access, true
}

func (s *Store) clearAll() {
	s.mu.Lock()
	s.token = ""
	s.username = ""
	s.user = nil
	s.mu.Unlock()

	s.cookies.Remove(CookieAccessToken)
	s.cookies.Remove(CookieRefreshToken)
	s.cookies.Remove(CookieUsername)
}

func (s *Store) settleLoading() {
	s.settle.Do(func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	})
}
