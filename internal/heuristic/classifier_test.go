package heuristic

import (
	"testing"

	"github.com/mkrasilnikov/minusflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCplRule(t *testing.T) {
	c := NewClassifier(Config{MaxCpl: 2000, MinImpressions: 5}, nil)

	// cpl = 500/1 = 500 <= 2000, so the query stays target.
	records := []model.QueryMetricRecord{
		{Query: "автошкола уфа купить", Clicks: 5, Cost: 500, Conversions: 1},
	}

	analyzed := c.Classify(records)
	require.Len(t, analyzed, 1)
	assert.Equal(t, model.CategoryTarget, analyzed[0].Category)
	assert.Empty(t, analyzed[0].SuggestedMinusWords)
	assert.Equal(t, records[0], analyzed[0].Metrics)
}

func TestClassifyCplExceeded(t *testing.T) {
	c := NewClassifier(Config{MaxCpl: 2000}, nil)

	records := []model.QueryMetricRecord{
		{Query: "автошкола цена", Clicks: 10, Cost: 9000, Conversions: 2},
	}

	analyzed := c.Classify(records)
	require.Len(t, analyzed, 1)
	assert.Equal(t, model.CategoryTrash, analyzed[0].Category)
	assert.Contains(t, analyzed[0].Reason, "CPL 4500.00")
}

func TestClassifyZeroClickRule(t *testing.T) {
	c := NewClassifier(Config{MaxCpl: 2000, MinImpressions: 5}, nil)

	records := []model.QueryMetricRecord{
		{Query: "автошкола бесплатное обучение", Impressions: 150, Clicks: 0, Cost: 0},
	}

	analyzed := c.Classify(records)
	require.Len(t, analyzed, 1)
	assert.Equal(t, model.CategoryTrash, analyzed[0].Category)

	// Candidates come from the query text itself, never invented.
	require.NotEmpty(t, analyzed[0].SuggestedMinusWords)
	assert.Contains(t, analyzed[0].SuggestedMinusWords, "бесплатное")
	for _, word := range analyzed[0].SuggestedMinusWords {
		assert.Contains(t, "автошкола бесплатное обучение", word)
	}
}

func TestClassifyStopWordRule(t *testing.T) {
	c := NewClassifier(Config{StopWords: []string{"Бесплатно", "скачать"}}, nil)

	records := []model.QueryMetricRecord{
		{Query: "автошкола онлайн БЕСПЛАТНО", Impressions: 10, Clicks: 2, Cost: 50},
	}

	analyzed := c.Classify(records)
	require.Len(t, analyzed, 1)
	assert.Equal(t, model.CategoryTrash, analyzed[0].Category)
	// The configured stop word is the only candidate.
	assert.Equal(t, []string{"Бесплатно"}, analyzed[0].SuggestedMinusWords)
}

func TestClassifyAmbiguousDefaultsToTarget(t *testing.T) {
	// No review bucket on this path: without semantic judgment, ambiguous
	// queries stay target to avoid suppressing converting traffic.
	c := NewClassifier(DefaultConfig(), nil)

	records := []model.QueryMetricRecord{
		{Query: "автошкола категория б", Impressions: 40, Clicks: 1, Cost: 120},
	}

	analyzed := c.Classify(records)
	require.Len(t, analyzed, 1)
	assert.Equal(t, model.CategoryTarget, analyzed[0].Category)
}

func TestClassifyIsIdempotent(t *testing.T) {
	c := NewClassifier(DefaultConfig(), nil)

	records := []model.QueryMetricRecord{
		{Query: "автошкола уфа", Impressions: 300, Clicks: 12, Cost: 2400, Conversions: 1},
		{Query: "как получить права бесплатно", Impressions: 90, Clicks: 0, Cost: 0},
		{Query: "автошкола вождение цена", Impressions: 150, Clicks: 7, Cost: 900},
	}

	first := c.Classify(records)
	second := c.Classify(records)
	assert.Equal(t, first, second)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "drops short particles and punctuation",
			query: "как сдать на права в уфе?",
			want:  []string{"как", "сдать", "права", "уфе"},
		},
		{
			name:  "deduplicates tokens",
			query: "права права экзамен",
			want:  []string{"права", "экзамен"},
		},
		{
			name:  "keeps hyphenated words",
			query: "онлайн-курсы вождения",
			want:  []string{"онлайн-курсы", "вождения"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.query))
		})
	}
}
