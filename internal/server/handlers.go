package server

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/mkrasilnikov/minusflow/internal/common"
	"github.com/mkrasilnikov/minusflow/internal/engine"
	"github.com/mkrasilnikov/minusflow/internal/export"
	"github.com/mkrasilnikov/minusflow/internal/model"
	"github.com/mkrasilnikov/minusflow/internal/service"
)

// analyzeRequest is the POST /api/v1/analyze body.
type analyzeRequest struct {
	TargetCpl           *float64                  `json:"targetCpl,omitempty"`
	BusinessDescription string                    `json:"businessDescription"`
	Queries             []model.QueryMetricRecord `json:"queries"`
	UseAI               bool                      `json:"useAi"`
	FallbackToHeuristic bool                      `json:"fallbackToHeuristic"`
	WithClusters        bool                      `json:"withClusters"`
}

func (s *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleAnalyze(c fiber.Ctx) error {
	var req analyzeRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	resp, err := s.engine.Analyze(c.Context(), engine.AnalyzeRequest{
		TargetCpl:           req.TargetCpl,
		BusinessDescription: req.BusinessDescription,
		Queries:             req.Queries,
		UseAI:               req.UseAI,
		FallbackToHeuristic: req.FallbackToHeuristic,
		WithClusters:        req.WithClusters,
	})
	if err != nil {
		return engineError(c, err)
	}

	snapshot := &service.AnalysisSnapshot{
		BusinessDescription: req.BusinessDescription,
		Warning:             resp.Warning,
		Result:              resp.Result,
		RawQueriesCount:     resp.RawQueriesCount,
		FilteredCount:       resp.FilteredCount,
		UsedAI:              resp.UsedAI,
	}
	if s.history != nil {
		if saveErr := s.history.SaveAnalysis(c.Context(), snapshot); saveErr != nil {
			// Persisting history must not fail the analysis itself.
			s.logger.Error("failed to save analysis snapshot", "error", saveErr)
		}
	}

	envelope := fiber.Map{
		"success":         true,
		"data":            resp.Result,
		"rawQueriesCount": resp.RawQueriesCount,
		"filteredCount":   resp.FilteredCount,
		"usedAi":          resp.UsedAI,
	}
	if snapshot.ID != "" {
		envelope["analysisId"] = snapshot.ID
	}
	if resp.Warning != "" {
		envelope["warning"] = resp.Warning
	}
	return c.JSON(envelope)
}

// wordFilterRequest is the POST /api/v1/wordfilter body.
type wordFilterRequest struct {
	BusinessDescription string           `json:"businessDescription"`
	SafeWords           []string         `json:"safeWords,omitempty"`
	Words               []model.WordStat `json:"words"`
}

func (s *Server) handleWordFilter(c fiber.Ctx) error {
	var req wordFilterRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	resp, err := s.engine.FilterWords(c.Context(), engine.WordFilterRequest{
		BusinessDescription: req.BusinessDescription,
		SafeWords:           req.SafeWords,
		Words:               req.Words,
	})
	if err != nil {
		return engineError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"data":          fiber.Map{"suggestedMinusWords": resp.Suggestions},
		"rawWordsCount": resp.RawWordsCount,
		"filteredCount": resp.FilteredCount,
	})
}

// exportRequest is the POST /api/v1/export body.
type exportRequest struct {
	Words []string `json:"words"`
}

func (s *Server) handleExport(c fiber.Ctx) error {
	var req exportRequest
	if err := c.Bind().Body(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if len(req.Words) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "words: at least one word is required")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="minus-words.txt"`)
	return c.SendString(export.Format(req.Words))
}

func (s *Server) handleListAnalyses(c fiber.Ctx) error {
	if s.history == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "analysis history is not configured")
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return jsonError(c, fiber.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = parsed
	}

	snapshots, err := s.history.ListAnalyses(c.Context(), limit)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"analyses": snapshots}})
}

func (s *Server) handleGetAnalysis(c fiber.Ctx) error {
	if s.history == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "analysis history is not configured")
	}

	snapshot, err := s.history.GetAnalysis(c.Context(), c.Params("id"))
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": snapshot})
}

// jsonError writes the standard error envelope.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// engineError maps engine and storage errors onto HTTP statuses.
func engineError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, common.ErrNoQueries),
		errors.Is(err, common.ErrMissingBusinessDescription),
		errors.Is(err, common.ErrNoWordStats):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrAIUnavailable):
		return jsonError(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, common.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	default:
		return jsonError(c, fiber.StatusInternalServerError, err.Error())
	}
}
