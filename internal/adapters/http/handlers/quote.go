package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebook/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// QuoteHandler serves the collection endpoints.
type QuoteHandler struct {
	service *app.QuoteService
	store   *app.Store
}

// NewQuoteHandler creates a quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
		store:   service.Store(),
	}
}

// confirmed answers the confirmation prompt for API callers. The client
// confirms up front with ?confirm=true; without it nil is returned and the
// service refuses with a ForbiddenError.
func confirmed(c *gin.Context) ports.Confirmer {
	if ok, _ := strconv.ParseBool(c.Query("confirm")); !ok {
		return nil
	}

	return ports.ConfirmerFunc(func(context.Context, string) (bool, error) { return true, nil })
}

func queryFlag(c *gin.Context, name string) bool {
	ok, _ := strconv.ParseBool(c.Query(name))
	return ok
}

// ListQuotes handles GET /api/v1/quotes.
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var q dto.ListQuotesQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.RespondBindError(c, err)
		return
	}

	records := h.store.Query(q.Params())

	page, err := dto.Paginate(records, q.PaginationRequest, q.SortOrder(), func(r domain.QuoteRecord) string { return r.ID })
	if err != nil {
		dto.RespondWithValidationErrors(c, map[string]string{"cursor": err.Error()})
		return
	}

	items := make([]dto.QuoteResponse, len(page.Items))
	for i, r := range page.Items {
		items[i] = dto.FromRecord(r)
	}

	c.JSON(http.StatusOK, dto.PaginatedResponse[dto.QuoteResponse]{
		Items:      items,
		Total:      page.Total,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	})
}

// AddQuote handles POST /api/v1/quotes.
func (h *QuoteHandler) AddQuote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondBindError(c, err)
		return
	}

	rec, err := h.store.Add(c.Request.Context(), req.Draft())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Location", c.FullPath()+"/"+rec.ID)
	c.JSON(http.StatusCreated, dto.FromRecord(rec))
}

// GetQuote handles GET /api/v1/quotes/:id.
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	id := c.Param("id")

	rec, ok := h.store.Get(id)
	if !ok {
		dto.HandleError(c, domain.NewNotFoundError("quote", id))
		return
	}

	c.JSON(http.StatusOK, dto.FromRecord(rec))
}

// UpdateQuote handles PUT /api/v1/quotes/:id. An unknown id is a 404 and
// leaves the collection untouched.
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	id := c.Param("id")

	var req dto.QuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondBindError(c, err)
		return
	}

	rec, err := h.store.Update(c.Request.Context(), id, req.Draft())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if rec == nil {
		dto.HandleError(c, domain.NewNotFoundError("quote", id))
		return
	}

	c.JSON(http.StatusOK, dto.FromRecord(*rec))
}

// DeleteQuote handles DELETE /api/v1/quotes/:id.
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	if _, err := h.service.DeleteQuote(c.Request.Context(), c.Param("id"), nil); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleFavorite handles POST /api/v1/quotes/:id/favorite.
func (h *QuoteHandler) ToggleFavorite(c *gin.Context) {
	id := c.Param("id")

	rec, err := h.store.ToggleFavorite(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if rec == nil {
		dto.HandleError(c, domain.NewNotFoundError("quote", id))
		return
	}

	c.JSON(http.StatusOK, dto.FromRecord(*rec))
}

// GetCitation handles GET /api/v1/quotes/:id/citation. With ?copy=true the
// citation is also put on the server's clipboard.
func (h *QuoteHandler) GetCitation(c *gin.Context) {
	id := c.Param("id")

	if queryFlag(c, "copy") {
		citation, err := h.service.CopyQuote(c.Request.Context(), id)
		if err != nil {
			dto.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, dto.CitationResponse{ID: id, Citation: citation})

		return
	}

	rec, ok := h.store.Get(id)
	if !ok {
		dto.HandleError(c, domain.NewNotFoundError("quote", id))
		return
	}

	c.JSON(http.StatusOK, dto.CitationResponse{ID: id, Citation: rec.Citation()})
}

// MergeQuotes handles POST /api/v1/quotes/merge: drafts are appended to
// the stored collection.
func (h *QuoteHandler) MergeQuotes(c *gin.Context) {
	var req dto.MergeRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondBindError(c, err)
		return
	}

	drafts, err := domain.DecodeDrafts(req.Drafts)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := h.store.Merge(c.Request.Context(), drafts)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MergeResponse{
		Added:   result.Added,
		Skipped: nonNilSkips(result.Skipped),
		Total:   len(result.Records),
	})
}

// Stats handles GET /api/v1/stats.
func (h *QuoteHandler) Stats(c *gin.Context) {
	s := h.store.Stats()
	c.JSON(http.StatusOK, dto.StatsResponse{Count: s.Count, Favorites: s.Favorites, Tags: s.Tags})
}

// Export handles GET /api/v1/export. The document is sent as an
// attachment; ?save=true also writes it to the export directory and
// ?clipboard=true copies it.
func (h *QuoteHandler) Export(c *gin.Context) {
	result, err := h.service.Export(c.Request.Context(), app.ExportOptions{
		ToFile:      queryFlag(c, "save"),
		ToClipboard: queryFlag(c, "clipboard"),
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if result.Path != "" {
		c.Header("X-Export-Path", result.Path)
	}

	c.Header("Content-Disposition", `attachment; filename="`+domain.ExportFilename+`"`)
	c.Header("X-Quote-Count", strconv.Itoa(result.Count))
	c.Data(http.StatusOK, "application/json; charset=utf-8", result.Document)
}

// Import handles POST /api/v1/import?confirm=true. The body is the
// document that replaces the collection.
func (h *QuoteHandler) Import(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		dto.AbortWithCode(c, dto.ErrorCodeBadRequest, "request body could not be read")
		return
	}

	result, err := h.service.Import(c.Request.Context(), data, confirmed(c))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{Imported: result.Imported, Skipped: len(result.Skipped)})
}

// ImportRemote handles POST /api/v1/import/remote?ref=a&ref=b&confirm=true.
func (h *QuoteHandler) ImportRemote(c *gin.Context) {
	refs := c.QueryArray("ref")

	result, err := h.service.ImportRemote(c.Request.Context(), confirmed(c), refs...)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{Imported: result.Imported, Skipped: len(result.Skipped)})
}

// MergeDocument handles POST /api/v1/merge, the generator: the old
// document and the new drafts go in, the merged document comes out. The
// stored collection is not touched. ?copy=true also copies the result.
func (h *QuoteHandler) MergeDocument(c *gin.Context) {
	var req dto.MergeDocumentRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondBindError(c, err)
		return
	}

	base, err := req.BaseDocument()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	drafts, err := domain.DecodeDrafts(req.Drafts)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	outcome, err := h.service.MergeDocument(c.Request.Context(), base, drafts, queryFlag(c, "copy"))
	if err != nil && (outcome.Document == nil || !isDeliveryError(err)) {
		dto.HandleError(c, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		// The document was built but could not be copied.
		status = http.StatusMultiStatus
	}

	c.JSON(status, dto.MergeDocumentResponse{
		Document: outcome.Document,
		Base:     outcome.Result.Base,
		Added:    outcome.Result.Added(),
		Skipped:  len(outcome.Result.Skipped),
		Summary:  outcome.Summary(),
	})
}

func isDeliveryError(err error) bool {
	return domain.IsIO(err) || domain.IsUnavailable(err)
}

func nonNilSkips(skips []domain.ValidationSkip) []domain.ValidationSkip {
	if skips == nil {
		return []domain.ValidationSkip{}
	}

	return skips
}

// RegisterQuoteRoutes registers the collection routes on rg.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.AddQuote)
	quotes.POST("/merge", h.MergeQuotes)
	quotes.GET("/:id", h.GetQuote)
	quotes.PUT("/:id", h.UpdateQuote)
	quotes.DELETE("/:id", h.DeleteQuote)
	quotes.POST("/:id/favorite", h.ToggleFavorite)
	quotes.GET("/:id/citation", h.GetCitation)

	rg.GET("/stats", h.Stats)
	rg.GET("/export", h.Export)
	rg.POST("/import", h.Import)
	rg.POST("/import/remote", h.ImportRemote)
	rg.POST("/merge", h.MergeDocument)
}
