package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/messlens/backend/internal/domain"
	"github.com/messlens/backend/internal/infrastructure/csvio"
	"github.com/messlens/backend/internal/usecase"
)

const (
	serviceName    = "messlens"
	serviceVersion = "1.0.0"

	defaultRunLimit = 20
	maxRunLimit     = 100

	// maxUploadBytes caps multipart menu uploads
	maxUploadBytes = 8 << 20
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analysisService *usecase.AnalysisService
}

// NewHandler creates a new HTTP handler.
// A nil service makes every analysis endpoint answer 503.
func NewHandler(analysisService *usecase.AnalysisService) *Handler {
	return &Handler{
		analysisService: analysisService,
	}
}

// MenuEntryRequest is one menu row in a JSON analysis request.
// Fields are pointers so an absent field is told apart from a zero value.
type MenuEntryRequest struct {
	Date      *string  `json:"date"`
	Dish      *string  `json:"dish"`
	QuantityG *float64 `json:"quantity_g"`
}

// AnalyzeMenuRequest is the JSON body for POST /api/v1/analysis
type AnalyzeMenuRequest struct {
	Window  string             `json:"window"`
	Entries []MenuEntryRequest `json:"entries" binding:"required"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// AnalyzeMenu scores an uploaded menu log.
// Accepts either a multipart "file" field holding the CSV or a JSON body.
func (h *Handler) AnalyzeMenu(c *gin.Context) {
	if h.analysisService == nil {
		respondNotConfigured(c)
		return
	}

	var (
		entries []domain.MenuEntry
		window  string
		err     error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		entries, window, err = h.readMultipartMenu(c)
	} else {
		entries, window, err = h.readJSONMenu(c)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	outcome, err := h.analysisService.Analyze(c.Request.Context(), entries, window)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (h *Handler) readMultipartMenu(c *gin.Context) ([]domain.MenuEntry, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: multipart field \"file\" is required", domain.ErrInvalidRequest)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", fmt.Errorf("%w: cannot open upload: %v", domain.ErrInvalidRequest, err)
	}
	defer file.Close()

	entries, err := csvio.ParseMenu(file)
	if err != nil {
		return nil, "", err
	}

	return entries, c.PostForm("window"), nil
}

func (h *Handler) readJSONMenu(c *gin.Context) ([]domain.MenuEntry, string, error) {
	var req AnalyzeMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	entries := make([]domain.MenuEntry, 0, len(req.Entries))
	for i, e := range req.Entries {
		entry, err := e.toMenuEntry(i + 1)
		if err != nil {
			return nil, "", err
		}
		entries = append(entries, entry)
	}

	return entries, req.Window, nil
}

// toMenuEntry converts a request row; row is 1-based
func (e MenuEntryRequest) toMenuEntry(row int) (domain.MenuEntry, error) {
	switch {
	case e.Date == nil:
		return domain.MenuEntry{}, &domain.InputError{Row: row, Column: csvio.ColumnDate, Reason: "value is missing"}
	case e.Dish == nil:
		return domain.MenuEntry{}, &domain.InputError{Row: row, Column: csvio.ColumnDish, Reason: "value is missing"}
	case e.QuantityG == nil:
		return domain.MenuEntry{}, &domain.InputError{Row: row, Column: csvio.ColumnQuantity, Reason: "value is missing"}
	}

	date, err := time.Parse(domain.DateLayout, strings.TrimSpace(*e.Date))
	if err != nil {
		return domain.MenuEntry{}, &domain.InputError{
			Row:    row,
			Column: csvio.ColumnDate,
			Value:  *e.Date,
			Reason: "date must use YYYY-MM-DD",
		}
	}

	return domain.MenuEntry{
		Date:      date,
		Dish:      *e.Dish,
		QuantityG: *e.QuantityG,
	}, nil
}

// ListRuns returns recent analysis runs, newest first
func (h *Handler) ListRuns(c *gin.Context) {
	if h.analysisService == nil {
		respondNotConfigured(c)
		return
	}

	limit := defaultRunLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidRequest))
			return
		}
		limit = min(parsed, maxRunLimit)
	}

	runs, err := h.analysisService.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun returns one stored analysis run
func (h *Handler) GetRun(c *gin.Context) {
	if h.analysisService == nil {
		respondNotConfigured(c)
		return
	}

	run, err := h.analysisService.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// MatchDish shows which reference dish a menu dish name resolves to
func (h *Handler) MatchDish(c *gin.Context) {
	if h.analysisService == nil {
		respondNotConfigured(c)
		return
	}

	resolution, err := h.analysisService.ResolveDish(strings.TrimSpace(c.Query("dish")))
	if err != nil {
		respondError(c, fmt.Errorf("%w: query parameter \"dish\" is required", err))
		return
	}

	c.JSON(http.StatusOK, resolution)
}

func respondNotConfigured(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": "analysis service not configured",
	})
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrMalformedInput), errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrRunNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrReferenceUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		log.Printf("[ANALYZE] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": err.Error()}
	var inputErr *domain.InputError
	if errors.As(err, &inputErr) {
		body["row"] = inputErr.Row
		body["column"] = inputErr.Column
	}
	c.JSON(status, body)
}
