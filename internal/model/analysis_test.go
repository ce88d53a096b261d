package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisResultValidate(t *testing.T) {
	tests := []struct {
		name    string
		result  AnalysisResult
		wantErr string
	}{
		{
			name: "valid result",
			result: AnalysisResult{
				TotalQueries:  2,
				TargetQueries: []AnalyzedQuery{{Query: "a", Category: CategoryTarget}},
				TrashQueries:  []AnalyzedQuery{{Query: "b", Category: CategoryTrash}},
				Summary:       Summary{TotalCost: 100, WastedCost: 40, PotentialSavings: 40},
			},
		},
		{
			name: "totalQueries below bucketed count",
			result: AnalysisResult{
				TotalQueries:  1,
				TargetQueries: []AnalyzedQuery{{Query: "a"}, {Query: "b"}},
			},
			wantErr: "totalQueries",
		},
		{
			name: "summary savings must mirror wasted cost",
			result: AnalysisResult{
				TotalQueries: 0,
				Summary:      Summary{WastedCost: 40, PotentialSavings: 50},
			},
			wantErr: "potentialSavings",
		},
		{
			name: "too many example queries",
			result: AnalysisResult{
				SuggestedMinusWords: []MinusWordSuggestion{
					{Word: "бесплатно", ExampleQueries: []string{"a", "b", "c"}},
				},
			},
			wantErr: "example queries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSortSuggestionsBySavings(t *testing.T) {
	suggestions := []MinusWordSuggestion{
		{Word: "скачать", PotentialSavings: 120},
		{Word: "бесплатно", PotentialSavings: 1000},
		{Word: "реферат", PotentialSavings: 120},
		{Word: "своими руками", PotentialSavings: 430},
	}

	SortSuggestionsBySavings(suggestions)

	words := make([]string, len(suggestions))
	for i, s := range suggestions {
		words[i] = s.Word
	}
	assert.Equal(t, []string{"бесплатно", "своими руками", "реферат", "скачать"}, words)
}
