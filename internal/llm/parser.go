package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mkrasilnikov/minusflow/internal/common"
	"github.com/mkrasilnikov/minusflow/internal/service"
)

// cleanMarkdownWrapper strips leading/trailing Markdown code-fence markers
// that models sometimes wrap JSON responses in.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// parseClassification parses the JSON-only classification contract. An
// empty completion is a distinct error; any parse failure is fatal — no
// partial salvage.
func parseClassification(content string) (*service.AIClassification, error) {
	content = cleanMarkdownWrapper(content)
	if content == "" {
		return nil, common.ErrEmptyAIResponse
	}

	var result service.AIClassification
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return &result, nil
}

// wordFilterResponse is the word-level filter's wire contract.
type wordFilterResponse struct {
	MinusWords []service.AIWordSuggestion `json:"minusWords"`
}

// parseWordFilter parses the word-level filter contract with the same
// strictness as parseClassification.
func parseWordFilter(content string) ([]service.AIWordSuggestion, error) {
	content = cleanMarkdownWrapper(content)
	if content == "" {
		return nil, common.ErrEmptyAIResponse
	}

	var result wordFilterResponse
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return result.MinusWords, nil
}
