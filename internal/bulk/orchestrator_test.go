package bulk_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aiflashlang/flashlang-web/internal/bulk"
	"github.com/aiflashlang/flashlang-web/internal/models"
	"github.com/aiflashlang/flashlang-web/pkg/apperrors"
	"github.com/aiflashlang/flashlang-web/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

// fakeAPI is a programmable bulk.API. Unlike a recorded mock it is safe under
// the orchestrator's concurrency.
type fakeAPI struct {
	mu       sync.Mutex
	nextID   int
	requests []*models.GenerateWordRequest
	// failWords fail generation for the named words
	failWords map[string]error
	downloads int
	artifact  []byte
	deckErr   error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		failWords: make(map[string]error),
		artifact:  []byte("apkg-bytes"),
	}
}

func (f *fakeAPI) GenerateWord(ctx context.Context, token string, req *models.GenerateWordRequest) (*models.GenerateWordResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if err, ok := f.failWords[req.Word]; ok {
		return nil, err
	}

	f.nextID++
	return &models.GenerateWordResponse{
		ID:   f.nextID,
		Deck: req.Deck,
		SharedWord: &models.WordContent{
			Word:        req.Word,
			Translation: "translated-" + req.Word,
		},
	}, nil
}

func (f *fakeAPI) DownloadDeck(ctx context.Context, token string, req *models.DownloadDeckRequest) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.downloads++
	if f.deckErr != nil {
		return nil, f.deckErr
	}
	return f.artifact, nil
}

func rows(words ...string) []bulk.Row {
	out := make([]bulk.Row, len(words))
	for i, w := range words {
		out[i] = bulk.Row{Word: w}
	}
	return out
}

func TestGenerateAll_ResultsMatchRowOrder(t *testing.T) {
	api := newFakeAPI()
	o := bulk.NewOrchestrator(api, 4)

	input := rows("uno", "dos", "tres", "cuatro")
	batch := o.GenerateAll(context.Background(), "token", input, bulk.Defaults{SourceLang: 1, TargetLang: 2, Deck: "spanish"})

	require.Len(t, batch.Results, 4)
	assert.Equal(t, 4, batch.Succeeded)
	assert.Equal(t, 0, batch.Failed)
	assert.Len(t, batch.IDs, 4)

	// results line up with input rows regardless of completion order
	for i, want := range []string{"uno", "dos", "tres", "cuatro"} {
		assert.Equal(t, want, batch.Results[i].Row.Word)
		assert.Equal(t, "translated-"+want, batch.Results[i].Row.Translation)
		assert.NoError(t, batch.Results[i].Err)
		assert.NotZero(t, batch.Results[i].GeneratedID)
	}
}

func TestGenerateAll_RowFailureIsIsolated(t *testing.T) {
	api := newFakeAPI()
	api.failWords["dos"] = apperrors.RemoteError("generate", 502)
	o := bulk.NewOrchestrator(api, 2)

	batch := o.GenerateAll(context.Background(), "token", rows("uno", "dos", "tres"), bulk.Defaults{SourceLang: 1, TargetLang: 2, Deck: "d"})

	assert.Equal(t, 2, batch.Succeeded)
	assert.Equal(t, 1, batch.Failed)
	assert.Len(t, batch.IDs, 2)

	assert.NoError(t, batch.Results[0].Err)
	assert.Error(t, batch.Results[1].Err)
	assert.NotEmpty(t, batch.Results[1].ErrMessage)
	assert.NoError(t, batch.Results[2].Err)

	// the failed row keeps its input content untouched
	assert.Equal(t, "dos", batch.Results[1].Row.Word)
	assert.Empty(t, batch.Results[1].Row.Translation)
}

func TestGenerateAll_DefaultsAndOverrides(t *testing.T) {
	api := newFakeAPI()
	o := bulk.NewOrchestrator(api, 1)

	input := []bulk.Row{
		{Word: "plain"},
		{Word: "custom", SourceLang: 5, TargetLang: 6, Deck: "travel", Context: "at the airport"},
	}
	defaults := bulk.Defaults{SourceLang: 1, TargetLang: 2, Context: "general", Deck: "spanish"}

	o.GenerateAll(context.Background(), "token", input, defaults)

	require.Len(t, api.requests, 2)
	byWord := map[string]*models.GenerateWordRequest{}
	for _, r := range api.requests {
		byWord[r.Word] = r
	}

	plain := byWord["plain"]
	require.NotNil(t, plain)
	assert.Equal(t, 1, plain.SourceLang)
	assert.Equal(t, 2, plain.TargetLang)
	assert.Equal(t, "general", plain.Context)
	assert.Equal(t, "spanish", plain.Deck)

	custom := byWord["custom"]
	require.NotNil(t, custom)
	assert.Equal(t, 5, custom.SourceLang)
	assert.Equal(t, 6, custom.TargetLang)
	assert.Equal(t, "at the airport", custom.Context)
	assert.Equal(t, "travel", custom.Deck)
}

func TestDownloadPackaged_EmptySelection(t *testing.T) {
	api := newFakeAPI()
	o := bulk.NewOrchestrator(api, 4)

	_, _, err := o.DownloadPackaged(context.Background(), "token", nil, "spanish", false)

	assert.ErrorIs(t, err, apperrors.ErrNothingToDownload)
	assert.Zero(t, api.downloads, "empty selection must not touch the network")
}

func TestDownloadPackaged_Success(t *testing.T) {
	api := newFakeAPI()
	o := bulk.NewOrchestrator(api, 4)

	filename, artifact, err := o.DownloadPackaged(context.Background(), "token", []int{1, 2, 3}, "travel", true)

	require.NoError(t, err)
	assert.Equal(t, "aiflashlang_travel.apkg", filename)
	assert.Equal(t, []byte("apkg-bytes"), artifact)
	assert.Equal(t, 1, api.downloads)
}

func TestDownloadPackaged_BlankDeckNameFallsBack(t *testing.T) {
	api := newFakeAPI()
	o := bulk.NewOrchestrator(api, 4)

	filename, _, err := o.DownloadPackaged(context.Background(), "token", []int{1}, "  ", false)

	require.NoError(t, err)
	assert.Equal(t, "aiflashlang_custom.apkg", filename)
}

func TestDownloadPackaged_FailureKeepsIDsReusable(t *testing.T) {
	api := newFakeAPI()
	api.deckErr = apperrors.RemoteError("download", 503)
	o := bulk.NewOrchestrator(api, 4)

	ids := []int{1, 2}
	_, _, err := o.DownloadPackaged(context.Background(), "token", ids, "travel", false)
	require.Error(t, err)

	// retry with the same ids succeeds once the backend recovers
	api.mu.Lock()
	api.deckErr = nil
	api.mu.Unlock()

	filename, artifact, err := o.DownloadPackaged(context.Background(), "token", ids, "travel", false)
	require.NoError(t, err)
	assert.Equal(t, "aiflashlang_travel.apkg", filename)
	assert.NotEmpty(t, artifact)
}
