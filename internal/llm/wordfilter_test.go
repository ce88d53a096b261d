package llm

import (
	"context"
	"testing"

	"github.com/mkrasilnikov/minusflow/internal/model"
	"github.com/mkrasilnikov/minusflow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterWordsRoundTripsConfidence(t *testing.T) {
	client := &mockClient{response: `{
  "minusWords": [
    {"word": "гибдд", "reason": "government office intent", "confidence": "high"},
    {"word": "обучение", "reason": "education intent", "confidence": "medium"},
    {"word": "отзывы", "reason": "research intent", "confidence": "low"}
  ]
}`}
	filter := NewWordLevelFilter(client, 0, nil)

	suggestions, err := filter.FilterWords(context.Background(), service.WordFilterRequest{
		BusinessDescription: "автошкола в Уфе",
		Words: []model.WordStat{
			{Word: "гибдд", TotalCost: 900, QueriesCount: 12},
			{Word: "обучение", TotalCost: 500, QueriesCount: 7},
			{Word: "отзывы", TotalCost: 120, QueriesCount: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, suggestions, 3)

	// Confidence is a policy signal, not decoration: the tier must survive
	// the round trip exactly so downstream routing stays correct.
	assert.Equal(t, "high", suggestions[0].Confidence)
	assert.Equal(t, "medium", suggestions[1].Confidence)
	assert.Equal(t, "low", suggestions[2].Confidence)
	assert.Equal(t, 1, client.calls)
}

func TestFilterWordsDropsSafeWords(t *testing.T) {
	client := &mockClient{response: `{
  "minusWords": [
    {"word": "Экзамен", "reason": "looks informational", "confidence": "high"},
    {"word": "гибдд", "reason": "government office intent", "confidence": "high"}
  ]
}`}
	filter := NewWordLevelFilter(client, 0, nil)

	suggestions, err := filter.FilterWords(context.Background(), service.WordFilterRequest{
		BusinessDescription: "автошкола в Уфе",
		SafeWords:           []string{"экзамен", "права"},
		Words:               []model.WordStat{{Word: "гибдд", TotalCost: 900}},
	})
	require.NoError(t, err)

	// Safe words never make it through, even when the model ignores the
	// instruction and regardless of case.
	require.Len(t, suggestions, 1)
	assert.Equal(t, "гибдд", suggestions[0].Word)
}

func TestFilterWordsQuarantinesUnknownConfidence(t *testing.T) {
	client := &mockClient{response: `{
  "minusWords": [
    {"word": "гибдд", "reason": "ok", "confidence": "high"},
    {"word": "скачать", "reason": "ok", "confidence": "certain"},
    {"word": "реферат", "reason": "ok", "confidence": ""}
  ]
}`}
	filter := NewWordLevelFilter(client, 0, nil)

	suggestions, err := filter.FilterWords(context.Background(), service.WordFilterRequest{
		BusinessDescription: "автошкола",
		Words:               []model.WordStat{{Word: "гибдд"}},
	})
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "гибдд", suggestions[0].Word)
}

func TestWordFilterPromptContents(t *testing.T) {
	client := &mockClient{response: `{"minusWords": []}`}
	filter := NewWordLevelFilter(client, 0, nil)

	_, err := filter.FilterWords(context.Background(), service.WordFilterRequest{
		BusinessDescription: "автошкола в Уфе",
		SafeWords:           []string{"экзамен", "права"},
		Words: []model.WordStat{
			{Word: "гибдд", TotalCost: 900, TotalClicks: 15, QueriesCount: 12, ExampleQueries: []string{"гибдд уфа записаться"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]

	// Fixed likely-trash taxonomy.
	assert.Contains(t, prompt, "informational intent")
	assert.Contains(t, prompt, "government terms")
	assert.Contains(t, prompt, "DIY / self-service intent")
	assert.Contains(t, prompt, "competitor names")
	assert.Contains(t, prompt, "locality terms")

	// Non-negotiable safe-word rules with the concrete domain example.
	assert.Contains(t, prompt, "NEVER suggest a word from the safe list")
	assert.Contains(t, prompt, "экзамен, права")
	assert.Contains(t, prompt, "driving school")

	// Serialized word statistics.
	assert.Contains(t, prompt, `"гибдд" — cost: 900, clicks: 15, queries: 12 (e.g. гибдд уфа записаться)`)
}
