package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/feedbacklens/backend/internal/ai"
	"github.com/feedbacklens/backend/internal/db"
	"github.com/feedbacklens/backend/internal/models"
	"github.com/feedbacklens/backend/internal/pipeline"
	"github.com/feedbacklens/backend/internal/source"
)

type Handler struct {
	Store           *db.Store
	Analyzers       map[string]ai.Analyzer
	DefaultProvider string
	Source          source.RowSource
	Validator       *validator.Validate
	Logger          zerolog.Logger
	PipelineOptions pipeline.Options
	BatchTimeout    time.Duration
	MaxComments     int
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "persistence": "disabled"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Analyze uploaded feedback CSV
// @Description Upload a CSV of customer comments and run the sentiment pipeline over it
// @Tags analyze
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "feedback.csv"
// @Param model formData string false "AI provider override (openai, anthropic, local, mock)"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/upload [post]
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file required", nil)
		return
	}
	if !validateExt(file.Filename) {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file must be .csv", nil)
		return
	}

	table, err := parseCommentsCSV(file)
	if err != nil {
		writeError(c, http.StatusBadRequest, "CSV_PARSE_ERROR", "failed to parse CSV", err.Error())
		return
	}

	h.runBatch(c, table, c.PostForm("model"), gin.H{"source": "file_upload", "filename": file.Filename})
}

type AnalyzeURLRequest struct {
	URL         string `json:"url" validate:"required,url"`
	MaxComments int    `json:"max_comments" validate:"omitempty,min=1"`
	Model       string `json:"model"`
}

// @Summary Analyze a product page URL
// @Description Fetch comments for a product page via the extraction collaborator and run the pipeline
// @Tags analyze
// @Accept json
// @Produce json
// @Param request body AnalyzeURLRequest true "analysis request"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/analyze-url [post]
func (h *Handler) AnalyzeURL(c *gin.Context) {
	var req AnalyzeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	maxComments := req.MaxComments
	if maxComments <= 0 || maxComments > h.MaxComments {
		maxComments = h.MaxComments
	}

	table, err := h.Source.FetchComments(c.Request.Context(), req.URL, maxComments)
	if err != nil {
		if errors.Is(err, source.ErrNoComments) {
			writeError(c, http.StatusNotFound, "NO_COMMENTS", "No comments found on the provided URL", nil)
			return
		}
		writeError(c, http.StatusBadGateway, "SOURCE_ERROR", "Comment source failed", err.Error())
		return
	}

	h.runBatch(c, table, req.Model, gin.H{"source": "web_scraping", "url": req.URL})
}

// runBatch resolves the analyzer, runs the pipeline with the batch timeout,
// persists the run when a store is configured, and writes the dashboard
// response in the shape the web layer expects.
func (h *Handler) runBatch(c *gin.Context, table pipeline.RawTable, model string, extra gin.H) {
	analyzer, err := h.resolveAnalyzer(model)
	if err != nil {
		writeError(c, http.StatusBadRequest, "UNKNOWN_MODEL", err.Error(), nil)
		return
	}

	var runID string
	if h.Store != nil {
		runID, err = h.Store.CreateRun(c.Request.Context(), "RUNNING")
		if err != nil {
			h.Logger.Error().Err(err).Msg("failed to create run")
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create run", err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	if h.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.BatchTimeout)
		defer cancel()
	}

	pipe := pipeline.New(analyzer, h.PipelineOptions, h.Logger)
	result, summary, err := pipe.Run(ctx, table)

	if h.Store != nil {
		status := "SUCCESS"
		if err != nil {
			status = "FAILED"
		}
		summaryJSON, _ := json.Marshal(summary)
		resultJSON, _ := json.Marshal(result)
		if finishErr := h.Store.FinishRun(c.Request.Context(), runID, status, summaryJSON, resultJSON); finishErr != nil {
			h.Logger.Error().Err(finishErr).Msg("failed to finish run")
		}
	}

	if err != nil {
		var schemaErr *pipeline.SchemaError
		if errors.As(err, &schemaErr) {
			writeError(c, http.StatusBadRequest, "SCHEMA_ERROR", "No usable comments in input", schemaErr.Reason)
			return
		}
		h.Logger.Error().Err(err).Msg("pipeline failed")
		writeError(c, http.StatusInternalServerError, "PIPELINE_ERROR", "Analysis failed", err.Error())
		return
	}

	resp := gin.H{
		"success":                true,
		"model_used":             analyzer.Name(),
		"comments_count":         summary.Classified,
		"skipped_rows":           summary.SkippedRows,
		"failed_classifications": summary.Failed,
		"sentiment_distribution": result.SentimentDistribution,
		"average_sentiment":      result.AverageSentiment,
		"top_aspects":            result.TopAspects,
		"product_sentiment":      result.ProductSentiment,
		"recommendations":        result.Recommendations,
	}
	for k, v := range extra {
		resp[k] = v
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) resolveAnalyzer(model string) (ai.Analyzer, error) {
	name := strings.ToLower(strings.TrimSpace(model))
	if name == "" {
		name = h.DefaultProvider
	}
	analyzer, ok := h.Analyzers[name]
	if !ok {
		return nil, errors.New("model is not configured: " + name)
	}
	return analyzer, nil
}

// @Summary Latest sentiment summary
// @Description Returns the most recent successful analysis in dashboard shape, or a zeroed placeholder
// @Tags summary
// @Produce json
// @Success 200 {object} models.PipelineResult
// @Router /api/sentiment-summary [get]
func (h *Handler) SentimentSummary(c *gin.Context) {
	if h.Store != nil {
		_, resultJSON, err := h.Store.GetLatestRun(c.Request.Context())
		if err == nil && len(resultJSON) > 0 {
			var result models.PipelineResult
			if jsonErr := json.Unmarshal(resultJSON, &result); jsonErr == nil {
				c.JSON(http.StatusOK, result)
				return
			}
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			h.Logger.Warn().Err(err).Msg("failed to load latest run")
		}
	}

	// The dashboard renders this zero-valued shape before any batch has run.
	c.JSON(http.StatusOK, models.PipelineResult{
		TopAspects:       []models.AspectCount{},
		ProductSentiment: map[string]models.SentimentCounts{},
		Recommendations:  []models.Recommendation{},
	})
}

// @Summary Latest run
// @Tags runs
// @Produce json
// @Success 200 {object} models.Run
// @Router /api/runs/latest [get]
func (h *Handler) RunsLatest(c *gin.Context) {
	if h.Store == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Run history is disabled", nil)
		return
	}
	run, _, err := h.Store.GetLatestRun(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "No runs found", err.Error())
		return
	}
	c.JSON(http.StatusOK, run)
}

// @Summary Recent runs
// @Tags runs
// @Produce json
// @Param limit query int false "maximum runs to return (default 20)"
// @Success 200 {array} models.Run
// @Router /api/runs [get]
func (h *Handler) RunsList(c *gin.Context) {
	if h.Store == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Run history is disabled", nil)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	runs, err := h.Store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list runs", err.Error())
		return
	}
	if runs == nil {
		runs = []models.Run{}
	}
	c.JSON(http.StatusOK, runs)
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// parseCommentsCSV reads the upload into a RawTable, preserving header order
// for the normalizer's column sniffing.
func parseCommentsCSV(file *multipart.FileHeader) (pipeline.RawTable, error) {
	f, err := file.Open()
	if err != nil {
		return pipeline.RawTable{}, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return pipeline.RawTable{}, errors.New("failed to read header")
	}

	table := pipeline.RawTable{Columns: headers}
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return pipeline.RawTable{}, err
		}
		row := make(map[string]string, len(headers))
		for i, col := range headers {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func validateExt(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ".csv"
}
