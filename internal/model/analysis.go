package model

import (
	"fmt"
	"sort"
)

// AnalyzedQuery is a single classified query. Metrics are copied verbatim
// from the matching QueryMetricRecord.
type AnalyzedQuery struct {
	Query               string            `json:"query"`
	Category            Category          `json:"category"`
	Reason              string            `json:"reason"`
	SuggestedMinusWords []string          `json:"suggestedMinusWords,omitempty"`
	Metrics             QueryMetricRecord `json:"metrics"`
}

// MinusWordSuggestion is a negative-keyword candidate with its estimated
// impact over the trash bucket. The case-folded word is the uniqueness key.
type MinusWordSuggestion struct {
	Word             string     `json:"word"`
	Reason           string     `json:"reason"`
	Category         string     `json:"category,omitempty"`
	Confidence       Confidence `json:"confidence,omitempty"`
	ExampleQueries   []string   `json:"exampleQueries,omitempty"`
	QueriesAffected  int        `json:"queriesAffected"`
	PotentialSavings float64    `json:"potentialSavings"`
}

// QueryCluster is a rollup of analyzed queries sharing a keyword token or
// bigram phrase.
type QueryCluster struct {
	Cpl         *float64 `json:"cpl,omitempty"`
	Keyword     string   `json:"keyword"`
	Queries     int      `json:"queries"`
	Impressions int      `json:"impressions"`
	Clicks      int      `json:"clicks"`
	Conversions int      `json:"conversions"`
	Cost        float64  `json:"cost"`
	CTR         float64  `json:"ctr"`
	AvgCpc      float64  `json:"avgCpc"`
	TargetCount int      `json:"targetCount"`
	TrashCount  int      `json:"trashCount"`
	ReviewCount int      `json:"reviewCount"`
	IsBigram    bool     `json:"isBigram"`
}

// Summary holds the corpus-level cost figures for an analysis.
//
// PotentialSavings equals WastedCost and is deliberately NOT the sum of the
// per-suggestion PotentialSavings values: one trash query can contain
// several suggested words, so the per-word figures double-count at the
// word level.
type Summary struct {
	// TotalCost is summed over the entire input corpus, including records
	// excluded by truncation.
	TotalCost float64 `json:"totalCost"`
	// WastedCost is summed over the trash bucket of the analyzed subset.
	WastedCost       float64 `json:"wastedCost"`
	PotentialSavings float64 `json:"potentialSavings"`
}

// AnalysisResult is the complete output of one analyze run. All fields are
// computed fresh per request and immutable once returned.
type AnalysisResult struct {
	TargetQueries       []AnalyzedQuery       `json:"targetQueries"`
	TrashQueries        []AnalyzedQuery       `json:"trashQueries"`
	ReviewQueries       []AnalyzedQuery       `json:"reviewQueries"`
	SuggestedMinusWords []MinusWordSuggestion `json:"suggestedMinusWords"`
	Clusters            []QueryCluster        `json:"clusters,omitempty"`
	// TotalQueries is the size of the analyzed subset, not the full corpus.
	TotalQueries int     `json:"totalQueries"`
	Summary      Summary `json:"summary"`
}

// Validate checks the internal invariants of a result.
func (r *AnalysisResult) Validate() error {
	bucketed := len(r.TargetQueries) + len(r.TrashQueries) + len(r.ReviewQueries)
	if r.TotalQueries < bucketed {
		return fmt.Errorf("totalQueries %d is less than bucketed query count %d", r.TotalQueries, bucketed)
	}
	if r.Summary.WastedCost != r.Summary.PotentialSavings {
		return fmt.Errorf("summary potentialSavings %.2f must equal wastedCost %.2f", r.Summary.PotentialSavings, r.Summary.WastedCost)
	}
	for i := range r.SuggestedMinusWords {
		if r.SuggestedMinusWords[i].Word == "" {
			return fmt.Errorf("minus-word suggestion at index %d has empty word", i)
		}
		if len(r.SuggestedMinusWords[i].ExampleQueries) > 2 {
			return fmt.Errorf("minus-word %q carries more than 2 example queries", r.SuggestedMinusWords[i].Word)
		}
	}
	return nil
}

// SortSuggestionsBySavings orders suggestions descending by potential
// savings, ties broken by word for determinism.
func SortSuggestionsBySavings(suggestions []MinusWordSuggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].PotentialSavings != suggestions[j].PotentialSavings {
			return suggestions[i].PotentialSavings > suggestions[j].PotentialSavings
		}
		return suggestions[i].Word < suggestions[j].Word
	})
}
