package handlers

import (
	"context"
	"net/http"

	"github.com/aiflashlang/flashlang-web/internal/cache"
	"github.com/aiflashlang/flashlang-web/internal/models"
	"github.com/aiflashlang/flashlang-web/internal/routes"
	"github.com/aiflashlang/flashlang-web/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccountAPI is the slice of the vocabulary API client the account pages use.
type AccountAPI interface {
	UpdateProfile(ctx context.Context, token string, form *models.EditProfileForm) (*models.Profile, error)
	ChangePassword(ctx context.Context, token string, form *models.ChangePasswordForm) error
	DeleteAccount(ctx context.Context, token string) error
	DownloadHistory(ctx context.Context, token string) ([]models.DownloadHistoryEntry, error)
}

// accountPage is the Data section of the account template.
type accountPage struct {
	Profile *models.Profile
	History []models.DownloadHistoryEntry
	// HistoryUnavailable marks that the history fetch failed while the rest
	// of the page still rendered.
	HistoryUnavailable bool
}

// AccountHandler serves the account page and its mutations.
type AccountHandler struct {
	api     AccountAPI
	avatars *cache.AvatarCache
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(api AccountAPI, avatars *cache.AvatarCache) *AccountHandler {
	return &AccountHandler{
		api:     api,
		avatars: avatars,
	}
}

// ShowAccount handles GET /my-account. The profile comes from the session
// (already fetched during restore); only the download history needs an extra
// call, and its failure degrades the section instead of the page.
func (h *AccountHandler) ShowAccount(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Session unavailable", err)
		return
	}

	data := accountPage{Profile: sess.User()}
	if data.Profile != nil && data.Profile.Avatar != "" {
		h.avatars.Set(sess.Username(), data.Profile.Avatar)
	}

	history, err := h.api.DownloadHistory(c.Request.Context(), sess.Token())
	if err != nil {
		attachError(c, err)
		logger.Warn("Download history unavailable", zap.Error(err))
		data.HistoryUnavailable = true
	} else {
		data.History = history
	}

	p := newPage(c, h.avatars, "My account")
	p.Data = data
	c.HTML(http.StatusOK, "account.html", p)
}

// UpdateProfile handles POST /my-account
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Session unavailable", err)
		return
	}

	p := newPage(c, h.avatars, "My account")

	var form models.EditProfileForm
	if err := c.ShouldBind(&form); err != nil {
		attachError(c, err)
		p.Errors = validationMessages(err)
		p.Data = accountPage{Profile: sess.User()}
		c.HTML(http.StatusBadRequest, "account.html", p)
		return
	}

	updated, err := h.api.UpdateProfile(c.Request.Context(), sess.Token(), &form)
	if err != nil {
		attachError(c, err)
		p.Errors = []string{userMessage(err)}
		p.Data = accountPage{Profile: sess.User()}
		c.HTML(statusFor(err), "account.html", p)
		return
	}

	if updated.Avatar != "" {
		h.avatars.Set(sess.Username(), updated.Avatar)
	}
	logger.Info("Profile updated", zap.String("username", sess.Username()))

	c.Redirect(http.StatusFound, routes.PathMyAccount)
}

// ChangePassword handles POST /my-account/password
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Session unavailable", err)
		return
	}

	p := newPage(c, h.avatars, "My account")
	p.Data = accountPage{Profile: sess.User()}

	var form models.ChangePasswordForm
	if err := c.ShouldBind(&form); err != nil {
		attachError(c, err)
		p.Errors = validationMessages(err)
		c.HTML(http.StatusBadRequest, "account.html", p)
		return
	}

	if err := h.api.ChangePassword(c.Request.Context(), sess.Token(), &form); err != nil {
		attachError(c, err)
		p.Errors = []string{userMessage(err)}
		c.HTML(statusFor(err), "account.html", p)
		return
	}

	logger.Info("Password changed", zap.String("username", sess.Username()))
	p.Notice = "Password updated"
	c.HTML(http.StatusOK, "account.html", p)
}

// DeleteAccount handles POST /my-account/delete. A successful deletion ends
// the session the same way a logout does.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Session unavailable", err)
		return
	}

	if err := h.api.DeleteAccount(c.Request.Context(), sess.Token()); err != nil {
		attachError(c, err)
		p := newPage(c, h.avatars, "My account")
		p.Errors = []string{userMessage(err)}
		p.Data = accountPage{Profile: sess.User()}
		c.HTML(statusFor(err), "account.html", p)
		return
	}

	logger.Info("Account deleted", zap.String("username", sess.Username()))
	sess.Logout()
	c.Redirect(http.StatusFound, routes.PathIndex)
}
