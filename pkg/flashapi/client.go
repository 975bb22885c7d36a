// Package flashapi is the HTTP client for the remote vocabulary API, which
// performs the product's actual work: AI-based translation and example
// generation, audio synthesis and Anki deck (.apkg) packaging. The web
// client delegates every non-trivial operation here.
package flashapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aiflashlang/flashlang-web/internal/models"
	"github.com/aiflashlang/flashlang-web/pkg/apperrors"
	"github.com/aiflashlang/flashlang-web/pkg/circuitbreaker"
	"github.com/aiflashlang/flashlang-web/pkg/httpclient"
	"github.com/aiflashlang/flashlang-web/pkg/logger"
	"github.com/aiflashlang/flashlang-web/pkg/metrics"
	"github.com/aiflashlang/flashlang-web/pkg/retry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Client talks to the vocabulary backend with retry and circuit breaker
// protection. All methods take a context and return wrapped sentinel errors
// from pkg/apperrors, so callers can branch on errors.Is.
type Client struct {
	http           httpclient.Client
	baseURL        string
	retryConfig    retry.Config
	circuitBreaker *gobreaker.CircuitBreaker
}

// NewClient creates a vocabulary API client. baseURL is the API root
// (e.g. http://localhost:8010/api) without a trailing slash.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("empty backend base URL provided")
	}

	// Client-caused failures must not trip the breaker
	cbConfig := circuitbreaker.DefaultConfig("vocabulary-api",
		apperrors.ErrUnauthorized,
		apperrors.ErrPermission,
		apperrors.ErrInvalidInput,
		apperrors.ErrNotFound,
	)

	logger.Info("Vocabulary API client initialized",
		zap.String("base_url", baseURL),
		zap.Duration("timeout", timeout))

	return &Client{
		http:           httpclient.NewStandardClientWithTimeout(timeout),
		baseURL:        baseURL,
		retryConfig:    retry.VocabularyAPIConfig(),
		circuitBreaker: circuitbreaker.NewCircuitBreaker(cbConfig),
	}, nil
}

// Login obtains an access/refresh token pair for the given credentials.
// An unverified account yields ErrPermission carrying the backend's detail
// message so the login page can point at the resend-verification flow.
func (c *Client) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	payload := map[string]string{"username": username, "password": password}
	var pair models.TokenPair
	if err := c.call(ctx, "login", http.MethodPost, "/token/", "", payload, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Refresh exchanges a refresh token for a fresh token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	payload := map[string]string{"refresh": refreshToken}
	var pair models.TokenPair
	if err := c.call(ctx, "refresh", http.MethodPost, "/token/refresh/", "", payload, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Register creates a new account. The backend sends the verification email.
func (c *Client) Register(ctx context.Context, form *models.RegisterForm) error {
	return c.call(ctx, "register", http.MethodPost, "/users/register/", "", form, nil)
}

// ResendVerification asks the backend to re-send the confirmation email.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	payload := map[string]string{"email": email}
	return c.call(ctx, "resendVerification", http.MethodPost, "/users/resend-verification/", "", payload, nil)
}

// Me fetches the authenticated account's profile.
func (c *Client) Me(ctx context.Context, token string) (*models.Profile, error) {
	var profile models.Profile
	if err := c.call(ctx, "me", http.MethodGet, "/users/me/", token, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile patches the editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, token string, form *models.EditProfileForm) (*models.Profile, error) {
	var profile models.Profile
	if err := c.call(ctx, "updateProfile", http.MethodPatch, "/users/me/", token, form, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ChangePassword submits an old/new password pair.
func (c *Client) ChangePassword(ctx context.Context, token string, form *models.ChangePasswordForm) error {
	return c.call(ctx, "changePassword", http.MethodPut, "/users/change-password/", token, form, nil)
}

// DeleteAccount permanently removes the authenticated account.
func (c *Client) DeleteAccount(ctx context.Context, token string) error {
	return c.call(ctx, "deleteAccount", http.MethodDelete, "/users/me/delete/", token, nil, nil)
}

// DownloadHistory lists the account's past deck exports.
func (c *Client) DownloadHistory(ctx context.Context, token string) ([]models.DownloadHistoryEntry, error) {
	var history []models.DownloadHistoryEntry
	if err := c.call(ctx, "downloadHistory", http.MethodGet, "/users/download-history/", token, nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// Languages fetches the language catalog.
func (c *Client) Languages(ctx context.Context, token string) ([]models.Language, error) {
	var languages []models.Language
	if err := c.call(ctx, "languages", http.MethodGet, "/languages/", token, nil, &languages); err != nil {
		return nil, err
	}
	return languages, nil
}

// ListWords lists the account's saved vocabulary entries.
func (c *Client) ListWords(ctx context.Context, token string) ([]models.WordEntry, error) {
	var words []models.WordEntry
	if err := c.call(ctx, "listWords", http.MethodGet, "/vocabulary/", token, nil, &words); err != nil {
		return nil, err
	}
	return words, nil
}

// GenerateWord asks the backend to generate flashcard content for one word.
func (c *Client) GenerateWord(ctx context.Context, token string, req *models.GenerateWordRequest) (*models.GenerateWordResponse, error) {
	var resp models.GenerateWordResponse
	if err := c.call(ctx, "generateWord", http.MethodPost, "/vocabulary/", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteWord removes one saved vocabulary entry.
func (c *Client) DeleteWord(ctx context.Context, token string, id int) error {
	return c.call(ctx, "deleteWord", http.MethodDelete, fmt.Sprintf("/vocabulary/%d/", id), token, nil, nil)
}

// GenerateAudio asks the backend to synthesize an audio clip.
func (c *Client) GenerateAudio(ctx context.Context, token string, req *models.GenerateAudioRequest) (*models.GenerateAudioResponse, error) {
	var resp models.GenerateAudioResponse
	if err := c.call(ctx, "generateAudio", http.MethodPost, "/generate-audio/", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DownloadDeck requests one packaged .apkg artifact for the given entry IDs
// and returns the raw bytes. Packaging is not retried: the backend records a
// download-history row per attempt, so a blind retry would duplicate it.
func (c *Client) DownloadDeck(ctx context.Context, token string, req *models.DownloadDeckRequest) ([]byte, error) {
	start := time.Now()
	operation := "downloadDeck"

	artifact, err := circuitbreaker.Execute(c.circuitBreaker, func() ([]byte, error) {
		return c.fetchBinary(ctx, operation, "/vocabulary/download-apkg/", token, req)
	})

	c.observe(operation, start, err, zap.Int("ids", len(req.IDs)), zap.String("deck", req.DeckName))
	if err != nil {
		return nil, circuitbreaker.FormatError("vocabulary-api", err)
	}
	return artifact, nil
}

// call performs one JSON round trip through the circuit breaker and retry
// layers, decoding the response into out when out is non-nil.
func (c *Client) call(ctx context.Context, operation, method, path, token string, body, out any) error {
	start := time.Now()

	_, err := circuitbreaker.Execute(c.circuitBreaker, func() (struct{}, error) {
		retryCtx, cancel := context.WithTimeout(ctx, 90*time.Second)
		defer cancel()

		return struct{}{}, retry.Do(retryCtx, c.retryConfig, operation, func() error {
			return c.roundTrip(retryCtx, operation, method, path, token, body, out)
		})
	})

	c.observe(operation, start, err)
	if err != nil {
		return circuitbreaker.FormatError("vocabulary-api", err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, operation, method, path, token string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", operation, apperrors.ErrRemote, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(operation, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", operation, apperrors.ErrRemote)
	}
	return nil
}

func (c *Client) fetchBinary(ctx context.Context, operation, path, token string, body any) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, token, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", operation, apperrors.ErrRemote, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorFromResponse(operation, resp)
	}

	artifact, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: reading artifact: %w", operation, apperrors.ErrRemote)
	}
	return artifact, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) observe(operation string, start time.Time, err error, fields ...zap.Field) {
	duration := metrics.MeasureDuration(start)
	status := "success"
	if err != nil {
		status = "error"
		fields = append(fields, zap.Error(err))
	}

	metrics.BackendRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.BackendRequestTotal.WithLabelValues(operation, status).Inc()
	logger.LogAPICall("vocabulary-api", operation, status, duration, fields...)
}

// errorFromResponse maps a non-2xx backend response onto the error taxonomy,
// preserving the backend's detail message when it sends one.
func errorFromResponse(operation string, resp *http.Response) error {
	detail := readDetail(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return apperrors.UnauthorizedError(detail)
	case http.StatusForbidden:
		return apperrors.PermissionError(detail)
	case http.StatusNotFound:
		return apperrors.NotFoundError(operation)
	case http.StatusBadRequest:
		if detail == "" {
			detail = "rejected by backend"
		}
		return apperrors.InvalidInputError(detail)
	default:
		return apperrors.RemoteError(operation, resp.StatusCode)
	}
}

// readDetail extracts DRF-style {"detail": "..."} or {"error": "..."} bodies.
func readDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}

	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Error
}
