package handlers

import (
	"net/http"

	"github.com/aiflashlang/flashlang-web/internal/cache"
	"github.com/gin-gonic/gin"
)

// PagesHandler serves the static marketing and status pages.
type PagesHandler struct {
	avatars *cache.AvatarCache
}

// NewPagesHandler creates a new PagesHandler
func NewPagesHandler(avatars *cache.AvatarCache) *PagesHandler {
	return &PagesHandler{avatars: avatars}
}

// Index handles GET /
func (h *PagesHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", newPage(c, h.avatars, "AIFlashLang"))
}

// Features handles GET /features
func (h *PagesHandler) Features(c *gin.Context) {
	c.HTML(http.StatusOK, "features.html", newPage(c, h.avatars, "Features"))
}

// Verified handles GET /verified, the landing page of the email confirmation
// link. It is public: the user typically opens it in a fresh tab without a
// session.
func (h *PagesHandler) Verified(c *gin.Context) {
	c.HTML(http.StatusOK, "verified.html", newPage(c, h.avatars, "Email verified"))
}
