package handlers

import (
	"context"
	"net/http"

	"github.com/aiflashlang/flashlang-web/internal/cache"
	"github.com/aiflashlang/flashlang-web/internal/models"
	"github.com/aiflashlang/flashlang-web/internal/routes"
	"github.com/aiflashlang/flashlang-web/pkg/apperrors"
	"github.com/aiflashlang/flashlang-web/pkg/logger"
	"github.com/aiflashlang/flashlang-web/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthAPI is the slice of the vocabulary API client the auth pages use.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*models.TokenPair, error)
	Register(ctx context.Context, form *models.RegisterForm) error
	ResendVerification(ctx context.Context, email string) error
}

// AuthHandler serves the login, registration and verification pages.
type AuthHandler struct {
	api     AuthAPI
	avatars *cache.AvatarCache
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(api AuthAPI, avatars *cache.AvatarCache) *AuthHandler {
	return &AuthHandler{
		api:     api,
		avatars: avatars,
	}
}

// ShowLogin handles GET /login
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	p := newPage(c, h.avatars, "Sign in")
	if c.Query("registered") == "1" {
		p.Notice = "Account created, check your inbox for the verification email"
	}
	c.HTML(http.StatusOK, "login.html", p)
}

// Login handles POST /login. A successful exchange persists the token pair
// as cookies and starts the session before redirecting home.
func (h *AuthHandler) Login(c *gin.Context) {
	p := newPage(c, h.avatars, "Sign in")

	var form models.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		attachError(c, err)
		p.Errors = validationMessages(err)
		c.HTML(http.StatusBadRequest, "login.html", p)
		return
	}

	pair, err := h.api.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		attachError(c, err)
		metrics.Logins.WithLabelValues("error").Inc()
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			p.Errors = []string{"Invalid username or password"}
			c.HTML(http.StatusUnauthorized, "login.html", p)
			return
		}
		p.Errors = []string{userMessage(err)}
		c.HTML(statusFor(err), "login.html", p)
		return
	}

	sess, err := getSession(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Session unavailable", err)
		return
	}
	sess.Login(c.Request.Context(), pair.Access, pair.Refresh, form.Username)

	metrics.Logins.WithLabelValues("success").Inc()
	logger.Info("User signed in", zap.String("username", form.Username))

	c.Redirect(http.StatusFound, routes.PathIndex)
}

// ShowRegister handles GET /register
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", newPage(c, h.avatars, "Create account"))
}

// Register handles POST /register. Registration never signs the user in:
// the account stays unverified until the emailed link is followed.
func (h *AuthHandler) Register(c *gin.Context) {
	p := newPage(c, h.avatars, "Create account")

	var form models.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		attachError(c, err)
		p.Errors = validationMessages(err)
		c.HTML(http.StatusBadRequest, "register.html", p)
		return
	}

	if err := h.api.Register(c.Request.Context(), &form); err != nil {
		attachError(c, err)
		metrics.Registrations.WithLabelValues("error").Inc()
		p.Errors = []string{userMessage(err)}
		c.HTML(statusFor(err), "register.html", p)
		return
	}

	metrics.Registrations.WithLabelValues("success").Inc()
	logger.Info("User registered", zap.String("username", form.Username))

	c.Redirect(http.StatusFound, routes.PathLogin+"?registered=1")
}

// Logout handles POST /logout, clearing cookies, memory state and the
// cached avatar.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess, err := getSession(c); err == nil {
		sess.Logout()
	}
	c.Redirect(http.StatusFound, routes.PathIndex)
}

// ShowResendVerification handles GET /resend-verification
func (h *AuthHandler) ShowResendVerification(c *gin.Context) {
	p := newPage(c, h.avatars, "Resend verification")
	if p.Authenticated && !p.Verified {
		p.Notice = "Your email address is not verified yet"
	}
	c.HTML(http.StatusOK, "resend_verification.html", p)
}

// ResendVerification handles POST /resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	p := newPage(c, h.avatars, "Resend verification")

	var form models.ResendVerificationForm
	if err := c.ShouldBind(&form); err != nil {
		attachError(c, err)
		p.Errors = validationMessages(err)
		c.HTML(http.StatusBadRequest, "resend_verification.html", p)
		return
	}

	if err := h.api.ResendVerification(c.Request.Context(), form.Email); err != nil {
		attachError(c, err)
		p.Errors = []string{userMessage(err)}
		c.HTML(statusFor(err), "resend_verification.html", p)
		return
	}

	p.Notice = "Verification email sent, check your inbox"
	c.HTML(http.StatusOK, "resend_verification.html", p)
}
