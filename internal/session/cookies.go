package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Cookie names persisted across reloads. They are the only state this client
// keeps between requests; everything else lives on the backend.
const (
	CookieAccessToken  = "access_token"
	CookieRefreshToken = "refresh_token"
	CookieUsername     = "username"
)

// CookieStore is a minimal key-value persistence interface so the session
// store and guards are testable without a real browser cookie jar.
type CookieStore interface {
	Get(name string) (string, bool)
	Set(name, value string)
	Remove(name string)
}

// CookieOptions controls the attributes of written cookies.
type CookieOptions struct {
	Domain string
	Secure bool
	MaxAge int // seconds
}

// ginCookieStore reads cookies from the incoming request and writes them to
// the outgoing response of a single gin request.
type ginCookieStore struct {
	c    *gin.Context
	opts CookieOptions
	// overlay makes writes visible to later reads within the same request
	overlay map[string]*string
}

// NewGinCookieStore wraps a gin request/response pair as a CookieStore.
func NewGinCookieStore(c *gin.Context, opts CookieOptions) CookieStore {
	return &ginCookieStore{c: c, opts: opts, overlay: make(map[string]*string)}
}

func (s *ginCookieStore) Get(name string) (string, bool) {
	if v, ok := s.overlay[name]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}

	value, err := s.c.Cookie(name)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

func (s *ginCookieStore) Set(name, value string) {
	s.overlay[name] = &value
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(name, value, s.opts.MaxAge, "/", s.opts.Domain, s.opts.Secure, true)
}

func (s *ginCookieStore) Remove(name string) {
	s.overlay[name] = nil
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(name, "", -1, "/", s.opts.Domain, s.opts.Secure, true)
}

// MemoryCookieStore is an in-memory CookieStore for tests.
type MemoryCookieStore struct {
	values map[string]string
}

// NewMemoryCookieStore creates an empty in-memory cookie store.
func NewMemoryCookieStore() *MemoryCookieStore {
	return &MemoryCookieStore{values: make(map[string]string)}
}

func (s *MemoryCookieStore) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

func (s *MemoryCookieStore) Set(name, value string) {
	s.values[name] = value
}

func (s *MemoryCookieStore) Remove(name string) {
	delete(s.values, name)
}
