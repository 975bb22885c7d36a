package handlers

import (
	"net/http"

	"github.com/aiflashlang/flashlang-web/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
// so the observability middleware can include the reason in the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// statusFor maps vocabulary API error categories onto the status this client
// should answer with. Unknown errors become a 502 because the failure is
// upstream of us, not inside us.
func statusFor(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrPermission):
		return http.StatusForbidden
	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// userMessage turns an upstream error into a string safe to show on a page.
func userMessage(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return err.Error()
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return "Your session has expired, please sign in again"
	case apperrors.Is(err, apperrors.ErrPermission):
		return "You do not have permission to do that"
	case apperrors.Is(err, apperrors.ErrNotFound):
		return "The requested item was not found"
	case apperrors.Is(err, apperrors.ErrNothingToDownload):
		return "Nothing to download yet, generate at least one word first"
	default:
		return "The vocabulary service is unavailable, please try again later"
	}
}
