package engine

import (
	"log/slog"
	"strings"

	"github.com/mkrasilnikov/minusflow/internal/model"
	"github.com/mkrasilnikov/minusflow/internal/service"
)

// reconcile joins AI query echoes back onto the source records by exact
// query text. Echoes that match no source record are dropped, as are echoes
// with a category outside the closed set; both drops are logged. Source
// records the model never echoed stay unbucketed.
func reconcile(records []model.QueryMetricRecord, classification *service.AIClassification, logger *slog.Logger) []model.AnalyzedQuery {
	byQuery := make(map[string]model.QueryMetricRecord, len(records))
	for _, r := range records {
		byQuery[r.Query] = r
	}

	analyzed := make([]model.AnalyzedQuery, 0, len(classification.Queries))
	seen := make(map[string]struct{}, len(classification.Queries))
	for _, echo := range classification.Queries {
		record, ok := byQuery[echo.Query]
		if !ok {
			logger.Warn("dropping AI echo with no matching source record", "query", echo.Query)
			continue
		}
		if _, dup := seen[echo.Query]; dup {
			logger.Warn("dropping duplicate AI echo", "query", echo.Query)
			continue
		}
		category, err := model.ParseCategory(echo.Category)
		if err != nil {
			logger.Warn("dropping AI echo with unrecognized category",
				"query", echo.Query,
				"category", echo.Category)
			continue
		}
		seen[echo.Query] = struct{}{}
		analyzed = append(analyzed, model.AnalyzedQuery{
			Query:               record.Query,
			Category:            category,
			Reason:              echo.Reason,
			SuggestedMinusWords: echo.MinusWords,
			Metrics:             record,
		})
	}
	return analyzed
}

// aggregateMinusWords merges per-query minus-word candidates with the
// corpus-level suggestions, deduplicated case-insensitively with the last
// occurrence winning on metadata. Impact is measured by a case-insensitive
// substring scan over the trash bucket only: affected-query count, summed
// cost as potential savings, and at most two example queries per word.
func aggregateMinusWords(trash []model.AnalyzedQuery, corpus []service.AIMinusWord) []model.MinusWordSuggestion {
	type candidate struct {
		word     string
		reason   string
		category string
	}

	order := make([]string, 0, len(corpus))
	byKey := make(map[string]candidate)
	add := func(word, reason, category string) {
		word = strings.TrimSpace(word)
		if word == "" {
			return
		}
		key := strings.ToLower(word)
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = candidate{word: word, reason: reason, category: category}
	}

	for _, q := range trash {
		for _, w := range q.SuggestedMinusWords {
			add(w, q.Reason, "")
		}
	}
	for _, w := range corpus {
		add(w.Word, w.Reason, w.Category)
	}

	suggestions := make([]model.MinusWordSuggestion, 0, len(order))
	for _, key := range order {
		c := byKey[key]
		suggestion := model.MinusWordSuggestion{
			Word:     c.word,
			Reason:   c.reason,
			Category: c.category,
		}
		for _, q := range trash {
			if !strings.Contains(strings.ToLower(q.Query), key) {
				continue
			}
			suggestion.QueriesAffected++
			suggestion.PotentialSavings += q.Metrics.Cost
			if len(suggestion.ExampleQueries) < 2 {
				suggestion.ExampleQueries = append(suggestion.ExampleQueries, q.Query)
			}
		}
		suggestions = append(suggestions, suggestion)
	}

	model.SortSuggestionsBySavings(suggestions)
	return suggestions
}
