package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkrasilnikov/minusflow/internal/cluster"
	"github.com/mkrasilnikov/minusflow/internal/common"
	"github.com/mkrasilnikov/minusflow/internal/heuristic"
	"github.com/mkrasilnikov/minusflow/internal/model"
	"github.com/mkrasilnikov/minusflow/internal/service"
)

// AnalyzeRequest is one triage run over a query corpus.
type AnalyzeRequest struct {
	TargetCpl           *float64
	BusinessDescription string
	Queries             []model.QueryMetricRecord
	// UseAI selects AI classification; without it the rule engine runs.
	UseAI bool
	// FallbackToHeuristic applies the rule engine when the AI call fails.
	// Fallback is opt-in, never automatic, and always carries a warning.
	FallbackToHeuristic bool
	WithClusters        bool
}

// AnalyzeResponse wraps the result with run metadata.
type AnalyzeResponse struct {
	Result *model.AnalysisResult
	// Warning is set when the run degraded (heuristic fallback).
	Warning         string
	RawQueriesCount int
	// FilteredCount is how many records the cost ranking excluded.
	FilteredCount int
	UsedAI        bool
}

// Engine runs the triage pipeline.
type Engine struct {
	classifier service.QueryClassifier
	wordFilter service.WordFilter
	heuristic  *heuristic.Classifier
	logger     *slog.Logger
	queryLimit int
	wordLimit  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClassifier installs the AI query classifier.
func WithClassifier(c service.QueryClassifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// WithWordFilter installs the AI word-level filter.
func WithWordFilter(f service.WordFilter) Option {
	return func(e *Engine) { e.wordFilter = f }
}

// WithQueryLimit overrides the classification bound for queries.
func WithQueryLimit(limit int) Option {
	return func(e *Engine) { e.queryLimit = limit }
}

// WithWordLimit overrides the classification bound for word statistics.
func WithWordLimit(limit int) Option {
	return func(e *Engine) { e.wordLimit = limit }
}

// WithHeuristicConfig overrides the rule-engine thresholds.
func WithHeuristicConfig(cfg heuristic.Config) Option {
	return func(e *Engine) { e.heuristic = heuristic.NewClassifier(cfg, e.logger) }
}

// New creates an engine with default limits and the default rule engine.
func New(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		logger:     logger,
		queryLimit: DefaultQueryLimit,
		wordLimit:  DefaultWordLimit,
		heuristic:  heuristic.NewClassifier(heuristic.DefaultConfig(), logger),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze triages the corpus. Validation happens before any external call,
// so a bad request never spends an AI round trip.
func (e *Engine) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	if len(req.Queries) == 0 {
		return nil, common.ErrNoQueries
	}
	if req.UseAI && req.BusinessDescription == "" {
		return nil, common.ErrMissingBusinessDescription
	}

	// Corpus total covers every input record, including ones the ranking
	// excludes below.
	var totalCost float64
	for i := range req.Queries {
		totalCost += req.Queries[i].Cost
	}

	ranked, excluded := RankByCost(req.Queries, e.queryLimit)
	if excluded > 0 {
		e.logger.Info("truncated corpus to classification bound",
			"kept", len(ranked),
			"excluded", excluded)
	}

	var (
		analyzed    []model.AnalyzedQuery
		suggestions []model.MinusWordSuggestion
		warning     string
		usedAI      bool
	)

	if req.UseAI {
		classification, err := e.classifyWithAI(ctx, req, ranked)
		switch {
		case err == nil:
			analyzed = reconcile(ranked, classification, e.logger)
			suggestions = aggregateMinusWords(trashOnly(analyzed), classification.SuggestedMinusWords)
			usedAI = true
		case req.FallbackToHeuristic:
			e.logger.Warn("AI classification failed, applying heuristic rules", "error", err)
			warning = fmt.Sprintf("AI classification failed, heuristic rules applied: %v", err)
			analyzed = e.heuristic.Classify(ranked)
			suggestions = aggregateMinusWords(trashOnly(analyzed), nil)
		default:
			return nil, err
		}
	} else {
		analyzed = e.heuristic.Classify(ranked)
		suggestions = aggregateMinusWords(trashOnly(analyzed), nil)
	}

	result := buildResult(ranked, analyzed, suggestions, totalCost)
	if req.WithClusters {
		result.Clusters = cluster.Build(analyzed)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("analysis result failed validation: %w", err)
	}

	e.logger.Info("analysis completed",
		"raw_queries", len(req.Queries),
		"analyzed", result.TotalQueries,
		"trash", len(result.TrashQueries),
		"wasted_cost", result.Summary.WastedCost,
		"used_ai", usedAI)

	return &AnalyzeResponse{
		Result:          result,
		Warning:         warning,
		RawQueriesCount: len(req.Queries),
		FilteredCount:   excluded,
		UsedAI:          usedAI,
	}, nil
}

func (e *Engine) classifyWithAI(ctx context.Context, req AnalyzeRequest, ranked []model.QueryMetricRecord) (*service.AIClassification, error) {
	if e.classifier == nil {
		return nil, common.ErrAIUnavailable
	}
	return e.classifier.ClassifyQueries(ctx, service.AIClassifyRequest{
		TargetCpl:           req.TargetCpl,
		BusinessDescription: req.BusinessDescription,
		Records:             ranked,
	})
}

// WordFilterRequest is one word-level filtering run.
type WordFilterRequest struct {
	BusinessDescription string
	SafeWords           []string
	Words               []model.WordStat
}

// WordFilterResponse wraps the tiered suggestions with run metadata.
type WordFilterResponse struct {
	Suggestions   []model.MinusWordSuggestion
	RawWordsCount int
	FilteredCount int
}

// FilterWords runs the AI word-level filter over cost-ranked word rollups
// and enriches the returned candidates with the source statistics.
func (e *Engine) FilterWords(ctx context.Context, req WordFilterRequest) (*WordFilterResponse, error) {
	if len(req.Words) == 0 {
		return nil, common.ErrNoWordStats
	}
	if req.BusinessDescription == "" {
		return nil, common.ErrMissingBusinessDescription
	}
	if e.wordFilter == nil {
		return nil, common.ErrAIUnavailable
	}

	ranked, excluded := RankWordsByCost(req.Words, e.wordLimit)

	filtered, err := e.wordFilter.FilterWords(ctx, service.WordFilterRequest{
		BusinessDescription: req.BusinessDescription,
		SafeWords:           req.SafeWords,
		Words:               ranked,
	})
	if err != nil {
		return nil, err
	}

	statsByWord := make(map[string]model.WordStat, len(ranked))
	for _, w := range ranked {
		statsByWord[normalizeWord(w.Word)] = w
	}

	suggestions := make([]model.MinusWordSuggestion, 0, len(filtered))
	for _, f := range filtered {
		confidence, err := model.ParseConfidence(f.Confidence)
		if err != nil {
			e.logger.Warn("dropping suggestion with unrecognized confidence",
				"word", f.Word,
				"confidence", f.Confidence)
			continue
		}
		suggestion := model.MinusWordSuggestion{
			Word:       f.Word,
			Reason:     f.Reason,
			Confidence: confidence,
		}
		if stat, ok := statsByWord[normalizeWord(f.Word)]; ok {
			suggestion.QueriesAffected = stat.QueriesCount
			suggestion.PotentialSavings = stat.TotalCost
			if len(stat.ExampleQueries) > 2 {
				suggestion.ExampleQueries = stat.ExampleQueries[:2]
			} else {
				suggestion.ExampleQueries = stat.ExampleQueries
			}
		}
		suggestions = append(suggestions, suggestion)
	}

	model.SortSuggestionsBySavings(suggestions)

	e.logger.Info("word filter completed",
		"raw_words", len(req.Words),
		"suggestions", len(suggestions))

	return &WordFilterResponse{
		Suggestions:   suggestions,
		RawWordsCount: len(req.Words),
		FilteredCount: excluded,
	}, nil
}

func buildResult(ranked []model.QueryMetricRecord, analyzed []model.AnalyzedQuery, suggestions []model.MinusWordSuggestion, totalCost float64) *model.AnalysisResult {
	result := &model.AnalysisResult{
		TargetQueries:       []model.AnalyzedQuery{},
		TrashQueries:        []model.AnalyzedQuery{},
		ReviewQueries:       []model.AnalyzedQuery{},
		SuggestedMinusWords: suggestions,
		TotalQueries:        len(ranked),
	}

	var wasted float64
	for _, q := range analyzed {
		switch q.Category {
		case model.CategoryTarget:
			result.TargetQueries = append(result.TargetQueries, q)
		case model.CategoryTrash:
			result.TrashQueries = append(result.TrashQueries, q)
			wasted += q.Metrics.Cost
		case model.CategoryReview:
			result.ReviewQueries = append(result.ReviewQueries, q)
		}
	}

	result.Summary = model.Summary{
		TotalCost:        totalCost,
		WastedCost:       wasted,
		PotentialSavings: wasted,
	}
	return result
}

func trashOnly(analyzed []model.AnalyzedQuery) []model.AnalyzedQuery {
	trash := make([]model.AnalyzedQuery, 0, len(analyzed))
	for _, q := range analyzed {
		if q.Category == model.CategoryTrash {
			trash = append(trash, q)
		}
	}
	return trash
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}
