package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/store"
)

// Analyzer runs an analysis and persists it for authenticated callers
type Analyzer interface {
	AnalyzeAndStore(ctx context.Context, userID string, input model.ArticleInput) (*model.HistoryRecord, error)
}

// Handler serves the analysis and history endpoints
type Handler struct {
	analyzer       Analyzer
	store          store.HistoryStore
	analyzeTimeout time.Duration
}

// NewHandler creates a handler; analyzeTimeout <= 0 leaves the request context as is
func NewHandler(analyzer Analyzer, st store.HistoryStore, analyzeTimeout time.Duration) *Handler {
	return &Handler{analyzer: analyzer, store: st, analyzeTimeout: analyzeTimeout}
}

// Analyze handles POST /news/analyze
func (h *Handler) Analyze(c *gin.Context) {
	var input model.ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"message": "Request body must be a JSON object",
		})
		return
	}
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if h.analyzeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.analyzeTimeout)
		defer cancel()
	}

	rec, err := h.analyzer.AnalyzeAndStore(ctx, currentUser(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	var analysis interface{} = rec.AnalysisResult
	if rec.ID != "" {
		analysis = rec
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Analysis completed successfully",
		"analysis": analysis,
	})
}

// History handles GET /analysis/history
func (h *Handler) History(c *gin.Context) {
	q := model.HistoryQuery{
		UserID:    currentUser(c),
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", model.DefaultPageLimit),
		SortBy:    sortField(c.Query("sortBy")),
		Ascending: strings.EqualFold(c.Query("order"), "asc"),
	}

	page, err := h.store.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	if page.Analyses == nil {
		page.Analyses = []model.HistoryRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Analysis history retrieved successfully",
		"data":    page,
	})
}

// Get handles GET /analysis/:id
func (h *Handler) Get(c *gin.Context) {
	rec, err := h.store.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Analysis retrieved successfully",
		"analysis": rec,
	})
}

// Delete handles DELETE /analysis/:id
func (h *Handler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Analysis deleted successfully"})
}

// DeleteAll handles DELETE /analysis/history
func (h *Handler) DeleteAll(c *gin.Context) {
	n, err := h.store.DeleteAll(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Analysis history cleared successfully",
		"deleted": n,
	})
}

// Stats handles GET /analysis/stats/summary
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Analysis statistics retrieved successfully",
		"stats":   stats,
	})
}

// queryInt parses a positive integer query parameter, returning def when absent or invalid
func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// sortField accepts both column names and their camelCase JSON spellings
func sortField(raw string) string {
	switch raw {
	case "createdAt", "timestamp":
		return model.SortCreatedAt
	case "credibilityScore":
		return model.SortCredibilityScore
	}
	return raw
}
