// Package engine orchestrates query triage: ranking and truncation,
// classification (AI or rule-based), reconciliation of AI output with the
// source records, and minus-word aggregation.
package engine

import (
	"sort"

	"github.com/mkrasilnikov/minusflow/internal/model"
)

// Classification bounds. Everything above the bound is analyzed; the rest
// is excluded from classification but still counted in corpus totals.
const (
	DefaultQueryLimit = 200
	DefaultWordLimit  = 100
)

// RankByCost orders records by cost descending and keeps at most limit of
// them. The sort is stable so records with equal cost keep their source
// order. Returns the kept records and the number excluded.
func RankByCost(records []model.QueryMetricRecord, limit int) ([]model.QueryMetricRecord, int) {
	ranked := make([]model.QueryMetricRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Cost > ranked[j].Cost
	})

	if limit <= 0 || len(ranked) <= limit {
		return ranked, 0
	}
	return ranked[:limit], len(ranked) - limit
}

// RankWordsByCost orders word rollups by total cost descending and keeps at
// most limit of them. Returns the kept words and the number excluded.
func RankWordsByCost(words []model.WordStat, limit int) ([]model.WordStat, int) {
	ranked := make([]model.WordStat, len(words))
	copy(ranked, words)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalCost > ranked[j].TotalCost
	})

	if limit <= 0 || len(ranked) <= limit {
		return ranked, 0
	}
	return ranked[:limit], len(ranked) - limit
}
