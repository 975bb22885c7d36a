// Package bulk turns a list of candidate rows into generated flashcards and,
// once at least one generation pass succeeded, into a single downloadable
// packaged deck. This is scatter/gather over the vocabulary API with
// independent per-item failure, never all-or-nothing.
package bulk

import (
	"context"
	"fmt"
	"strings"

	"github.com/aiflashlang/flashlang-web/internal/models"
	"github.com/aiflashlang/flashlang-web/pkg/apperrors"
	"github.com/aiflashlang/flashlang-web/pkg/logger"
	"github.com/aiflashlang/flashlang-web/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Row is one candidate word of a batch. Language, context and deck fields
// override the batch defaults when set.
type Row struct {
	Word               string `json:"word"`
	Translation        string `json:"translation"`
	Example            string `json:"example"`
	ExampleTranslation string `json:"example_translation"`
	Deck               string `json:"deck"`
	SourceLang         int    `json:"source_lang,omitempty"`
	TargetLang         int    `json:"target_lang,omitempty"`
	Context            string `json:"context,omitempty"`
	AudioWordURL       string `json:"audio_word_url,omitempty"`
	AudioSentenceURL   string `json:"audio_sentence_url,omitempty"`
}

// Defaults supplies batch-wide values for rows that carry no override.
type Defaults struct {
	SourceLang int
	TargetLang int
	Context    string
	Deck       string
}

// RowResult pairs one input row with its generation outcome. On success the
// row's display fields are replaced with the generated content and
// GeneratedID holds the server-assigned identifier; on failure the row is
// unchanged and Err records the reason.
type RowResult struct {
	Row         Row    `json:"row"`
	GeneratedID int    `json:"generated_id,omitempty"`
	Err         error  `json:"-"`
	ErrMessage  string `json:"error,omitempty"`
}

// BatchResult is the outcome of one GenerateAll pass, ordered like the
// input. IDs lists the identifiers of successful rows in input order; it is
// what a subsequent DownloadPackaged call consumes.
type BatchResult struct {
	Results   []RowResult `json:"results"`
	IDs       []int       `json:"ids"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// API is the slice of the vocabulary client the orchestrator needs.
type API interface {
	GenerateWord(ctx context.Context, token string, req *models.GenerateWordRequest) (*models.GenerateWordResponse, error)
	DownloadDeck(ctx context.Context, token string, req *models.DownloadDeckRequest) ([]byte, error)
}

// Orchestrator fans generation requests out to the vocabulary API.
type Orchestrator struct {
	api           API
	maxConcurrent int
}

// NewOrchestrator creates a bulk orchestrator with a concurrency bound on
// in-flight generation requests.
func NewOrchestrator(api API, maxConcurrent int) *Orchestrator {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	return &Orchestrator{
		api:           api,
		maxConcurrent: maxConcurrent,
	}
}

// GenerateAll issues one generation request per row, all concurrently
// in-flight up to the configured bound. Completion order is unspecified:
// results are written back by row index, never by arrival order. One row's
// failure never aborts its siblings.
func (o *Orchestrator) GenerateAll(ctx context.Context, token string, rows []Row, defaults Defaults) *BatchResult {
	results := make([]RowResult, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrent)

	for i, row := range rows {
		g.Go(func() error {
			resp, err := o.api.GenerateWord(gctx, token, buildRequest(row, defaults))
			if err != nil {
				logger.Warn("Row generation failed",
					zap.Int("row", i),
					zap.String("word", row.Word),
					zap.Error(err))
				metrics.BulkRowsProcessed.WithLabelValues("error").Inc()
				results[i] = RowResult{Row: row, Err: err, ErrMessage: err.Error()}
				return nil // per-item failure is not a batch failure
			}

			metrics.BulkRowsProcessed.WithLabelValues("success").Inc()
			results[i] = RowResult{Row: applyContent(row, resp), GeneratedID: resp.ID}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	batch := &BatchResult{Results: results}
	for _, r := range results {
		if r.Err != nil {
			batch.Failed++
			continue
		}
		batch.Succeeded++
		batch.IDs = append(batch.IDs, r.GeneratedID)
	}

	logger.Info("Bulk generation batch finished",
		zap.Int("rows", len(rows)),
		zap.Int("succeeded", batch.Succeeded),
		zap.Int("failed", batch.Failed))

	return batch
}

// DownloadPackaged requests one packaged deck for the accumulated
// identifiers. An empty identifier list yields ErrNothingToDownload without
// touching the network; a failed request leaves the identifiers reusable so
// the download can be retried without regenerating rows.
func (o *Orchestrator) DownloadPackaged(ctx context.Context, token string, ids []int, deckName string, allowDuplicates bool) (string, []byte, error) {
	if len(ids) == 0 {
		return "", nil, apperrors.ErrNothingToDownload
	}

	deckName = strings.TrimSpace(deckName)
	if deckName == "" {
		deckName = "custom"
	}

	artifact, err := o.api.DownloadDeck(ctx, token, &models.DownloadDeckRequest{
		IDs:             ids,
		DeckName:        deckName,
		AllowDuplicates: allowDuplicates,
	})
	if err != nil {
		metrics.DeckDownloads.WithLabelValues("error").Inc()
		return "", nil, fmt.Errorf("packaging deck %q: %w", deckName, err)
	}

	metrics.DeckDownloads.WithLabelValues("success").Inc()
	return Filename(deckName), artifact, nil
}

// Filename derives the deterministic artifact name for a deck.
func Filename(deckName string) string {
	return fmt.Sprintf("aiflashlang_%s.apkg", deckName)
}

func buildRequest(row Row, defaults Defaults) *models.GenerateWordRequest {
	req := &models.GenerateWordRequest{
		Word:       row.Word,
		SourceLang: row.SourceLang,
		TargetLang: row.TargetLang,
		Context:    row.Context,
		Deck:       row.Deck,
	}
	if req.SourceLang == 0 {
		req.SourceLang = defaults.SourceLang
	}
	if req.TargetLang == 0 {
		req.TargetLang = defaults.TargetLang
	}
	if req.Context == "" {
		req.Context = defaults.Context
	}
	if req.Deck == "" {
		req.Deck = defaults.Deck
	}
	return req
}

func applyContent(row Row, resp *models.GenerateWordResponse) Row {
	content := resp.Content()
	if content == nil {
		return row
	}

	row.Word = content.Word
	row.Translation = content.Translation
	row.Example = content.ExampleSentence
	row.ExampleTranslation = content.ExampleTranslation
	row.AudioWordURL = content.AudioWord
	row.AudioSentenceURL = content.AudioSentence
	if resp.Deck != "" {
		row.Deck = resp.Deck
	}
	return row
}
