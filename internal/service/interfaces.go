// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/mkrasilnikov/minusflow/internal/model"
)

// AIClassifyRequest is the input for one query-level AI classification
// call. Records must already be truncated to the classification bound.
type AIClassifyRequest struct {
	TargetCpl           *float64
	BusinessDescription string
	Records             []model.QueryMetricRecord
}

// AIQueryEcho is one classified query as echoed back by the model. The
// query text is the join key back to the source record; echoes that do not
// match any source record are dropped.
type AIQueryEcho struct {
	Query      string   `json:"query"`
	Category   string   `json:"category"`
	Reason     string   `json:"reason"`
	MinusWords []string `json:"minusWords,omitempty"`
}

// AIMinusWord is one corpus-level minus-word candidate from the model.
type AIMinusWord struct {
	Word     string `json:"word"`
	Reason   string `json:"reason"`
	Category string `json:"category,omitempty"`
}

// AIClassification is the parsed result of one classification call.
type AIClassification struct {
	Queries             []AIQueryEcho `json:"queries"`
	SuggestedMinusWords []AIMinusWord `json:"suggestedMinusWords"`
}

// QueryClassifier performs one AI classification round trip for a batch of
// query records. Exactly one outbound call per invocation.
type QueryClassifier interface {
	ClassifyQueries(ctx context.Context, req AIClassifyRequest) (*AIClassification, error)
}

// WordFilterRequest is the input for the word-level filter. Words must
// already be truncated to the word-level bound. SafeWords are words known
// to occur in converting queries; the filter must never suggest them.
type WordFilterRequest struct {
	BusinessDescription string
	SafeWords           []string
	Words               []model.WordStat
}

// AIWordSuggestion is one confidence-tiered minus-word candidate from the
// word-level filter.
type AIWordSuggestion struct {
	Word       string `json:"word"`
	Reason     string `json:"reason"`
	Confidence string `json:"confidence"`
}

// WordFilter performs one AI word-filtering round trip over pre-aggregated
// word statistics.
type WordFilter interface {
	FilterWords(ctx context.Context, req WordFilterRequest) ([]AIWordSuggestion, error)
}

// QuerySource supplies the raw query corpus for an analysis. Date-range and
// campaign filtering happen inside the source.
type QuerySource interface {
	Queries(ctx context.Context) ([]model.QueryMetricRecord, error)
}

// WordStatsSource supplies pre-aggregated per-word rollups for the
// word-level filter.
type WordStatsSource interface {
	WordStats(ctx context.Context) ([]model.WordStat, error)
}

// ProjectBrief supplies default analysis parameters when the caller omits
// them.
type ProjectBrief interface {
	BusinessDescription() string
	TargetCpl() *float64
}

// AnalysisSnapshot is one persisted analysis run. The history store is
// append-only: snapshots are never updated or deleted.
type AnalysisSnapshot struct {
	CreatedAt           time.Time             `json:"createdAt"`
	ID                  string                `json:"id"`
	BusinessDescription string                `json:"businessDescription"`
	Warning             string                `json:"warning,omitempty"`
	Result              *model.AnalysisResult `json:"result"`
	RawQueriesCount     int                   `json:"rawQueriesCount"`
	FilteredCount       int                   `json:"filteredCount"`
	UsedAI              bool                  `json:"usedAi"`
}

// HistoryStore is the append-only analysis-history sink.
type HistoryStore interface {
	SaveAnalysis(ctx context.Context, snapshot *AnalysisSnapshot) error
	GetAnalysis(ctx context.Context, id string) (*AnalysisSnapshot, error)
	ListAnalyses(ctx context.Context, limit int) ([]AnalysisSnapshot, error)
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
