package handlers_test

import (
	"context"

	"github.com/aiflashlang/flashlang-web/internal/models"
	"github.com/aiflashlang/flashlang-web/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)

	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

// MockBackend mocks the vocabulary API surface the handlers and the session
// middleware share.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockBackend) Register(ctx context.Context, form *models.RegisterForm) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func (m *MockBackend) ResendVerification(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockBackend) Me(ctx context.Context, token string) (*models.Profile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockBackend) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockBackend) ListWords(ctx context.Context, token string) ([]models.WordEntry, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WordEntry), args.Error(1)
}

func (m *MockBackend) GenerateWord(ctx context.Context, token string, req *models.GenerateWordRequest) (*models.GenerateWordResponse, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GenerateWordResponse), args.Error(1)
}

func (m *MockBackend) DeleteWord(ctx context.Context, token string, id int) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

func (m *MockBackend) GenerateAudio(ctx context.Context, token string, req *models.GenerateAudioRequest) (*models.GenerateAudioResponse, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GenerateAudioResponse), args.Error(1)
}

// MockPackager is a mock implementation of handlers.Packager
type MockPackager struct {
	mock.Mock
}

func (m *MockPackager) DownloadPackaged(ctx context.Context, token string, ids []int, deckName string, allowDuplicates bool) (string, []byte, error) {
	args := m.Called(ctx, token, ids, deckName, allowDuplicates)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).([]byte), args.Error(2)
}
