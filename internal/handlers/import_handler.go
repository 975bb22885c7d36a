package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/aiflashlang/flashlang-web/internal/bulk"
	"github.com/aiflashlang/flashlang-web/internal/cache"
	"github.com/aiflashlang/flashlang-web/internal/models"
	"github.com/aiflashlang/flashlang-web/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxImportUpload caps the CSV upload body at 1MB.
const maxImportUpload = 1 << 20

// Generator runs the bulk generation fan-out for an uploaded batch.
type Generator interface {
	GenerateAll(ctx context.Context, token string, rows []bulk.Row, defaults bulk.Defaults) *bulk.BatchResult
}

// importPage is the Data section of the import template.
type importPage struct {
	Languages []models.Language
	Batch     *bulk.BatchResult
	// IDsField carries the generated ids pre-joined for the download form.
	IDsField string
	DeckName string
}

// ImportHandler serves the CSV bulk import flow.
type ImportHandler struct {
	generator Generator
	languages *cache.LanguagesCache
	avatars   *cache.AvatarCache
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(generator Generator, languages *cache.LanguagesCache, avatars *cache.AvatarCache) *ImportHandler {
	return &ImportHandler{
		generator: generator,
		languages: languages,
		avatars:   avatars,
	}
}

// ShowImport handles GET /import
func (h *ImportHandler) ShowImport(c *gin.Context) {
	p := newPage(c, h.avatars, "Import words")
	p.Data = importPage{Languages: h.languageOptions(c)}
	c.HTML(http.StatusOK, "import.html", p)
}

// Template handles GET /import/template, serving the starter CSV.
func (h *ImportHandler) Template(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="aiflashlang_import.csv"`)
	c.Data(http.StatusOK, "text/csv", bulk.Template())
}

// Upload handles POST /import. The uploaded CSV is parsed, every row is
// generated concurrently and the per-row outcome renders back on the page
// together with a download form for the successful ids.
func (h *ImportHandler) Upload(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Session unavailable", err)
		return
	}

	p := newPage(c, h.avatars, "Import words")
	data := importPage{Languages: h.languageOptions(c)}

	var form importForm
	if err := c.ShouldBind(&form); err != nil {
		attachError(c, err)
		p.Errors = validationMessages(err)
		p.Data = data
		c.HTML(http.StatusBadRequest, "import.html", p)
		return
	}
	defaults := form.defaults()

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		attachError(c, err)
		p.Errors = []string{"Choose a CSV file to upload"}
		p.Data = data
		c.HTML(http.StatusBadRequest, "import.html", p)
		return
	}
	defer file.Close() //nolint:errcheck

	rows, err := bulk.ParseCSV(io.LimitReader(file, maxImportUpload))
	if err != nil {
		attachError(c, err)
		p.Errors = []string{err.Error()}
		p.Data = data
		c.HTML(http.StatusBadRequest, "import.html", p)
		return
	}

	batch := h.generator.GenerateAll(c.Request.Context(), sess.Token(), rows, defaults)
	logger.Info("CSV import processed",
		zap.Int("rows", len(rows)),
		zap.Int("succeeded", batch.Succeeded),
		zap.Int("failed", batch.Failed))

	data.Batch = batch
	data.DeckName = defaults.Deck
	data.IDsField = joinIDs(batch.IDs)
	if batch.Failed > 0 {
		p.Errors = []string{strconv.Itoa(batch.Failed) + " of " + strconv.Itoa(len(rows)) + " rows failed, the rest are ready to download"}
	}
	p.Data = data
	c.HTML(http.StatusOK, "import.html", p)
}

// languageOptions mirrors the create page's catalog lookup.
func (h *ImportHandler) languageOptions(c *gin.Context) []models.Language {
	langs, err := h.languages.Get(c.Request.Context())
	if err != nil {
		attachError(c, err)
		logger.Warn("Language catalog unavailable", zap.Error(err))
		return nil
	}
	return langs
}

// importForm holds the batch-wide defaults posted alongside the CSV file.
// The words themselves come from the file's rows.
type importForm struct {
	SourceLang int    `form:"source_lang" binding:"required,gt=0"`
	TargetLang int    `form:"target_lang" binding:"required,gt=0,nefield=SourceLang"`
	Context    string `form:"context" binding:"omitempty,max=500"`
	Deck       string `form:"deck" binding:"omitempty,max=100"`
}

func (f importForm) defaults() bulk.Defaults {
	deck := f.Deck
	if deck == "" {
		deck = "custom"
	}
	return bulk.Defaults{
		SourceLang: f.SourceLang,
		TargetLang: f.TargetLang,
		Context:    f.Context,
		Deck:       deck,
	}
}

func joinIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}
