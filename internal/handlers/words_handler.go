package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aiflashlang/flashlang-web/internal/cache"
	"github.com/aiflashlang/flashlang-web/internal/models"
	"github.com/aiflashlang/flashlang-web/internal/routes"
	"github.com/aiflashlang/flashlang-web/pkg/apperrors"
	"github.com/aiflashlang/flashlang-web/pkg/logger"
	"github.com/aiflashlang/flashlang-web/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxDeleteConcurrency bounds the fan-out of a multi-word delete.
const maxDeleteConcurrency = 8

// WordsAPI is the slice of the vocabulary API client the word pages use.
type WordsAPI interface {
	ListWords(ctx context.Context, token string) ([]models.WordEntry, error)
	GenerateWord(ctx context.Context, token string, req *models.GenerateWordRequest) (*models.GenerateWordResponse, error)
	DeleteWord(ctx context.Context, token string, id int) error
	GenerateAudio(ctx context.Context, token string, req *models.GenerateAudioRequest) (*models.GenerateAudioResponse, error)
}

// Packager produces downloadable deck artifacts from selected word ids.
type Packager interface {
	DownloadPackaged(ctx context.Context, token string, ids []int, deckName string, allowDuplicates bool) (string, []byte, error)
}

// createPage is the Data section of the create-word template.
type createPage struct {
	Languages []models.Language
	Result    *models.GenerateWordResponse
	Form      models.GenerateWordForm
}

// myWordsPage is the Data section of the word list template.
type myWordsPage struct {
	Words      []models.WordEntry
	Decks      []string
	ActiveDeck string
}

// WordsHandler serves word generation, listing, deletion and deck downloads.
type WordsHandler struct {
	api       WordsAPI
	packager  Packager
	languages *cache.LanguagesCache
	avatars   *cache.AvatarCache
}

// NewWordsHandler creates a new WordsHandler
func NewWordsHandler(api WordsAPI, packager Packager, languages *cache.LanguagesCache, avatars *cache.AvatarCache) *WordsHandler {
	return &WordsHandler{
		api:       api,
		packager:  packager,
		languages: languages,
		avatars:   avatars,
	}
}

// ShowCreate handles GET /create
func (h *WordsHandler) ShowCreate(c *gin.Context) {
	p := newPage(c, h.avatars, "Create flashcard")
	p.Data = createPage{Languages: h.languageOptions(c)}
	c.HTML(http.StatusOK, "create.html", p)
}

// GenerateWord handles POST /create. The generated card renders back on the
// same page so the user can chain words without navigating.
func (h *WordsHandler) GenerateWord(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Session unavailable", err)
		return
	}

	p := newPage(c, h.avatars, "Create flashcard")
	data := createPage{Languages: h.languageOptions(c)}

	var form models.GenerateWordForm
	if err := c.ShouldBind(&form); err != nil {
		attachError(c, err)
		p.Errors = validationMessages(err)
		p.Data = data
		c.HTML(http.StatusBadRequest, "create.html", p)
		return
	}
	data.Form = form

	resp, err := h.api.GenerateWord(c.Request.Context(), sess.Token(), &models.GenerateWordRequest{
		Word:       form.Word,
		SourceLang: form.SourceLang,
		TargetLang: form.TargetLang,
		Context:    form.Context,
		Deck:       form.Deck,
	})
	if err != nil {
		attachError(c, err)
		metrics.WordsGenerated.WithLabelValues("error").Inc()
		if apperrors.Is(err, apperrors.ErrPermission) && form.Context != "" {
			p.Errors = []string{"Custom generation context is a premium feature"}
		} else {
			p.Errors = []string{userMessage(err)}
		}
		p.Data = data
		c.HTML(statusFor(err), "create.html", p)
		return
	}

	metrics.WordsGenerated.WithLabelValues("success").Inc()
	logger.Info("Word generated",
		zap.String("word", form.Word),
		zap.Int("id", resp.ID))

	data.Result = resp
	p.Data = data
	c.HTML(http.StatusOK, "create.html", p)
}

// ShowMyWords handles GET /my-words. An optional deck query narrows the list
// to one deck.
func (h *WordsHandler) ShowMyWords(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Session unavailable", err)
		return
	}

	words, err := h.api.ListWords(c.Request.Context(), sess.Token())
	if err != nil {
		attachError(c, err)
		p := newPage(c, h.avatars, "My words")
		p.Errors = []string{userMessage(err)}
		p.Data = myWordsPage{}
		c.HTML(statusFor(err), "my_words.html", p)
		return
	}

	data := myWordsPage{Decks: deckNames(words), ActiveDeck: c.Query("deck")}
	if data.ActiveDeck == "" {
		data.Words = words
	} else {
		for _, w := range words {
			if w.Deck == data.ActiveDeck {
				data.Words = append(data.Words, w)
			}
		}
	}

	p := newPage(c, h.avatars, "My words")
	p.Data = data
	c.HTML(http.StatusOK, "my_words.html", p)
}

// DeleteWords handles POST /my-words/delete. Deletions fan out concurrently;
// one failed row does not stop the others.
func (h *WordsHandler) DeleteWords(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Session unavailable", err)
		return
	}

	ids, err := parseIDs(c.PostFormArray("ids"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	if len(ids) == 0 {
		c.Redirect(http.StatusFound, routes.PathMyWords)
		return
	}

	g, gctx := errgroup.WithContext(c.Request.Context())
	g.SetLimit(maxDeleteConcurrency)

	failed := make([]bool, len(ids))
	for i, id := range ids {
		g.Go(func() error {
			if err := h.api.DeleteWord(gctx, sess.Token(), id); err != nil {
				// an already-deleted word is not a failure
				if !apperrors.Is(err, apperrors.ErrNotFound) {
					logger.Warn("Word deletion failed", zap.Int("id", id), zap.Error(err))
					failed[i] = true
				}
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	failures := 0
	for _, f := range failed {
		if f {
			failures++
		}
	}
	logger.Info("Words deleted",
		zap.Int("requested", len(ids)),
		zap.Int("failed", failures))

	c.Redirect(http.StatusFound, routes.PathMyWords)
}

// DownloadDeck handles POST /my-words/download. The deck name comes from the
// selection: a single-deck selection keeps its deck name, a mixed one falls
// back to "custom".
func (h *WordsHandler) DownloadDeck(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Session unavailable", err)
		return
	}

	ids, err := parseIDs(c.PostFormArray("ids"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	deckName, err := h.deckNameFor(c.Request.Context(), sess.Token(), ids)
	if err != nil {
		attachError(c, err)
		deckName = "custom"
	}
	allowDuplicates := c.PostForm("allow_duplicates") == "on"

	filename, artifact, err := h.packager.DownloadPackaged(
		c.Request.Context(), sess.Token(), ids, deckName, allowDuplicates)
	if err != nil {
		attachError(c, err)
		if apperrors.Is(err, apperrors.ErrNothingToDownload) {
			respondError(c, http.StatusBadRequest, userMessage(err), err)
			return
		}
		respondError(c, statusFor(err), userMessage(err), err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/octet-stream", artifact)
}

// GenerateAudio handles POST /audio, a JSON endpoint the word pages call to
// synthesize a pronunciation clip on demand.
func (h *WordsHandler) GenerateAudio(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Session unavailable", err)
		return
	}

	var req models.GenerateAudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.api.GenerateAudio(c.Request.Context(), sess.Token(), &req)
	if err != nil {
		respondError(c, statusFor(err), userMessage(err), err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// languageOptions reads the language catalog from cache, degrading to an
// empty list when the backend is unreachable.
func (h *WordsHandler) languageOptions(c *gin.Context) []models.Language {
	langs, err := h.languages.Get(c.Request.Context())
	if err != nil {
		attachError(c, err)
		logger.Warn("Language catalog unavailable", zap.Error(err))
		return nil
	}
	return langs
}

// deckNameFor resolves the download name for a selection of word ids.
func (h *WordsHandler) deckNameFor(ctx context.Context, token string, ids []int) (string, error) {
	if len(ids) == 0 {
		return "custom", nil
	}

	words, err := h.api.ListWords(ctx, token)
	if err != nil {
		return "", err
	}

	selected := make(map[int]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	name := ""
	for _, w := range words {
		if !selected[w.ID] {
			continue
		}
		if name == "" {
			name = w.Deck
		} else if name != w.Deck {
			return "custom", nil
		}
	}
	if name == "" {
		name = "custom"
	}
	return name, nil
}

func parseIDs(raw []string) ([]int, error) {
	ids := make([]int, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.Atoi(s)
		if err != nil || id <= 0 {
			return nil, apperrors.InvalidInputError("invalid word id " + s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func deckNames(words []models.WordEntry) []string {
	seen := make(map[string]bool)
	var decks []string
	for _, w := range words {
		if w.Deck != "" && !seen[w.Deck] {
			seen[w.Deck] = true
			decks = append(decks, w.Deck)
		}
	}
	return decks
}
