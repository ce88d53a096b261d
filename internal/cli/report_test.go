package cli

import (
	"testing"

	"github.com/mkrasilnikov/minusflow/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestRenderAnalysis(t *testing.T) {
	result := &model.AnalysisResult{
		TargetQueries: []model.AnalyzedQuery{
			{Query: "автошкола уфа", Category: model.CategoryTarget},
		},
		TrashQueries: []model.AnalyzedQuery{
			{Query: "автошкола бесплатно", Category: model.CategoryTrash, Reason: "freebie", Metrics: model.QueryMetricRecord{Cost: 90.45}},
		},
		SuggestedMinusWords: []model.MinusWordSuggestion{
			{Word: "бесплатно", Reason: "freebie seekers", QueriesAffected: 1, PotentialSavings: 90.45},
		},
		TotalQueries: 2,
		Summary:      model.Summary{TotalCost: 730.45, WastedCost: 90.45, PotentialSavings: 90.45},
	}

	out := RenderAnalysis(result, "degraded run")
	assert.Contains(t, out, "Query Triage Report")
	assert.Contains(t, out, "degraded run")
	assert.Contains(t, out, "бесплатно")
	assert.Contains(t, out, "90.45")
	assert.Contains(t, out, "730.45")
}

func TestRenderWordSuggestionsSplitsByConfidence(t *testing.T) {
	out := RenderWordSuggestions([]model.MinusWordSuggestion{
		{Word: "гибдд", Confidence: model.ConfidenceHigh, PotentialSavings: 900},
		{Word: "отзывы", Confidence: model.ConfidenceLow, PotentialSavings: 120},
	})

	assert.Contains(t, out, "Safe to apply")
	assert.Contains(t, out, "Needs review")
	assert.Contains(t, out, "гибдд")
	assert.Contains(t, out, "отзывы")
}
