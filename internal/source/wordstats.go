package source

import (
	"context"
	"sort"

	"github.com/mkrasilnikov/minusflow/internal/heuristic"
	"github.com/mkrasilnikov/minusflow/internal/model"
	"github.com/mkrasilnikov/minusflow/internal/service"
)

// maxWordExamples bounds the example queries carried per word rollup.
const maxWordExamples = 3

// AggregateWordStats rolls a query corpus up into per-word statistics.
// Words are the corpus tokens; each word accumulates the cost, clicks and
// query count of every query containing it, with a few example queries.
// Output is ordered by total cost descending, ties by word.
func AggregateWordStats(records []model.QueryMetricRecord) []model.WordStat {
	byWord := make(map[string]*model.WordStat)
	for i := range records {
		for _, token := range heuristic.Tokenize(records[i].Query) {
			stat, ok := byWord[token]
			if !ok {
				stat = &model.WordStat{Word: token}
				byWord[token] = stat
			}
			stat.TotalCost += records[i].Cost
			stat.TotalClicks += records[i].Clicks
			stat.QueriesCount++
			if len(stat.ExampleQueries) < maxWordExamples {
				stat.ExampleQueries = append(stat.ExampleQueries, records[i].Query)
			}
		}
	}

	stats := make([]model.WordStat, 0, len(byWord))
	for _, stat := range byWord {
		stats = append(stats, *stat)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].TotalCost != stats[j].TotalCost {
			return stats[i].TotalCost > stats[j].TotalCost
		}
		return stats[i].Word < stats[j].Word
	})
	return stats
}

// DeriveSafeWords returns the tokens of every converting query. These are
// words proven to occur in queries that produce leads, so the word filter
// must never suggest them.
func DeriveSafeWords(records []model.QueryMetricRecord) []string {
	seen := make(map[string]struct{})
	var safe []string
	for i := range records {
		if records[i].Conversions == 0 {
			continue
		}
		for _, token := range heuristic.Tokenize(records[i].Query) {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			safe = append(safe, token)
		}
	}
	sort.Strings(safe)
	return safe
}

// WordStatsAggregator adapts a QuerySource into a WordStatsSource.
type WordStatsAggregator struct {
	source service.QuerySource
}

// NewWordStatsAggregator wraps source.
func NewWordStatsAggregator(source service.QuerySource) *WordStatsAggregator {
	return &WordStatsAggregator{source: source}
}

// WordStats loads the corpus and aggregates it.
func (a *WordStatsAggregator) WordStats(ctx context.Context) ([]model.WordStat, error) {
	records, err := a.source.Queries(ctx)
	if err != nil {
		return nil, err
	}
	return AggregateWordStats(records), nil
}
