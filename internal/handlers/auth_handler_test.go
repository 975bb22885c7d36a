package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aiflashlang/flashlang-web/internal/cache"
	"github.com/aiflashlang/flashlang-web/internal/handlers"
	"github.com/aiflashlang/flashlang-web/internal/middleware"
	"github.com/aiflashlang/flashlang-web/internal/models"
	"github.com/aiflashlang/flashlang-web/internal/routes"
	"github.com/aiflashlang/flashlang-web/internal/session"
	"github.com/aiflashlang/flashlang-web/internal/web"
	"github.com/aiflashlang/flashlang-web/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func authRouter(t *testing.T, backend *MockBackend) *gin.Engine {
	t.Helper()

	templates, err := web.Templates()
	require.NoError(t, err)

	avatars := cache.NewAvatarCache(1)
	handler := handlers.NewAuthHandler(backend, avatars)

	router := gin.New()
	router.SetHTMLTemplate(templates)
	router.Use(middleware.SessionMiddleware(backend, avatars, session.CookieOptions{}))

	router.GET(routes.PathLogin, handler.ShowLogin)
	router.POST(routes.PathLogin, handler.Login)
	router.GET(routes.PathRegister, handler.ShowRegister)
	router.POST(routes.PathRegister, handler.Register)
	router.POST("/logout", handler.Logout)
	router.POST(routes.PathResendVerification, handler.ResendVerification)

	return router
}

func postForm(router *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router.ServeHTTP(w, req)
	return w
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login_Success(t *testing.T) {
	backend := new(MockBackend)
	backend.On("Login", mock.Anything, "alice", "secret123").
		Return(&models.TokenPair{Access: "a1", Refresh: "r1"}, nil)
	backend.On("Me", mock.Anything, "a1").
		Return(&models.Profile{Username: "alice", IsActive: true}, nil)

	w := postForm(authRouter(t, backend), routes.PathLogin, url.Values{
		"username": {"alice"},
		"password": {"secret123"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, routes.PathIndex, w.Header().Get("Location"))

	access := responseCookie(w, session.CookieAccessToken)
	require.NotNil(t, access)
	assert.Equal(t, "a1", access.Value)
	assert.True(t, access.HttpOnly)

	refresh := responseCookie(w, session.CookieRefreshToken)
	require.NotNil(t, refresh)
	assert.Equal(t, "r1", refresh.Value)

	username := responseCookie(w, session.CookieUsername)
	require.NotNil(t, username)
	assert.Equal(t, "alice", username.Value)

	backend.AssertExpectations(t)
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	backend := new(MockBackend)
	backend.On("Login", mock.Anything, "alice", "wrongpass1").
		Return(nil, apperrors.UnauthorizedError("no active account"))

	w := postForm(authRouter(t, backend), routes.PathLogin, url.Values{
		"username": {"alice"},
		"password": {"wrongpass1"},
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
	assert.Nil(t, responseCookie(w, session.CookieAccessToken))
}

func TestAuthHandler_Login_ValidationFailure(t *testing.T) {
	backend := new(MockBackend)

	w := postForm(authRouter(t, backend), routes.PathLogin, url.Values{
		"username": {"alice"},
		"password": {"short"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	backend.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandler_Register_RedirectsToLogin(t *testing.T) {
	backend := new(MockBackend)
	backend.On("Register", mock.Anything, mock.MatchedBy(func(f *models.RegisterForm) bool {
		return f.Username == "alice" && f.Email == "alice@example.com"
	})).Return(nil)

	w := postForm(authRouter(t, backend), routes.PathRegister, url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"secret123"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, routes.PathLogin+"?registered=1", w.Header().Get("Location"))
	// registration never starts a session
	assert.Nil(t, responseCookie(w, session.CookieAccessToken))
}

func TestAuthHandler_Logout_ClearsCookies(t *testing.T) {
	backend := new(MockBackend)
	backend.On("Me", mock.Anything, "a1").
		Return(&models.Profile{Username: "alice", IsActive: true}, nil)

	w := postForm(authRouter(t, backend), "/logout", url.Values{},
		&http.Cookie{Name: session.CookieAccessToken, Value: "a1"},
		&http.Cookie{Name: session.CookieUsername, Value: "alice"},
	)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, routes.PathIndex, w.Header().Get("Location"))

	access := responseCookie(w, session.CookieAccessToken)
	require.NotNil(t, access)
	assert.Empty(t, access.Value)
	assert.Negative(t, access.MaxAge)
}

func TestAuthHandler_ResendVerification(t *testing.T) {
	backend := new(MockBackend)
	backend.On("ResendVerification", mock.Anything, "alice@example.com").Return(nil)

	w := postForm(authRouter(t, backend), routes.PathResendVerification, url.Values{
		"email": {"alice@example.com"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Verification email sent")
}
