package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/mkrasilnikov/minusflow/internal/common"
	"github.com/mkrasilnikov/minusflow/internal/model"
	"github.com/mkrasilnikov/minusflow/internal/service"
)

const wordFilterSystemPrompt = "You are a paid-search analyst selecting negative keywords from per-word spend statistics. " +
	"You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, " +
	"or commentary before or after the JSON. Start your response directly with { and end with }."

// WordLevelFilter implements service.WordFilter: a narrower AI-assisted
// classifier over pre-aggregated per-word statistics.
type WordLevelFilter struct {
	client    Client
	limiter   *rate.Limiter
	logger    *slog.Logger
	retryOpts service.RetryOptions
}

// NewWordLevelFilter creates an AI-backed word filter. A zero
// requestsPerSecond disables rate limiting.
func NewWordLevelFilter(client Client, requestsPerSecond float64, logger *slog.Logger) *WordLevelFilter {
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &WordLevelFilter{client: client, limiter: limiter, logger: logger}
}

// FilterWords performs one round trip over the word statistics and returns
// confidence-tiered candidates. Words on the safe list and entries with an
// unrecognized confidence tier are dropped after parsing, with a log line
// so the drops stay observable.
func (f *WordLevelFilter) FilterWords(ctx context.Context, req service.WordFilterRequest) ([]service.AIWordSuggestion, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	prompt := buildWordFilterPrompt(req)

	var content string
	err := common.WithRetry(ctx, func() error {
		completion, completeErr := f.client.Complete(ctx, wordFilterSystemPrompt, prompt)
		if completeErr != nil {
			f.logger.Warn("AI word filter attempt failed", "error", completeErr)
			return &common.RetryableError{Err: completeErr, Retryable: true}
		}
		content = completion
		return nil
	}, f.retryOpts)
	if err != nil {
		return nil, fmt.Errorf("AI word filter request failed: %w", err)
	}

	suggestions, err := parseWordFilter(content)
	if err != nil {
		return nil, err
	}

	safe := make(map[string]struct{}, len(req.SafeWords))
	for _, w := range req.SafeWords {
		safe[strings.ToLower(w)] = struct{}{}
	}

	kept := suggestions[:0]
	for _, s := range suggestions {
		if _, err := model.ParseConfidence(s.Confidence); err != nil || s.Confidence == "" {
			f.logger.Warn("dropping word suggestion with unrecognized confidence",
				"word", s.Word,
				"confidence", s.Confidence)
			continue
		}
		if _, isSafe := safe[strings.ToLower(s.Word)]; isSafe {
			f.logger.Warn("dropping suggested word present in safe list", "word", s.Word)
			continue
		}
		kept = append(kept, s)
	}

	f.logger.Info("AI word filter completed",
		"words_sent", len(req.Words),
		"suggestions", len(kept))

	return kept, nil
}

// buildWordFilterPrompt serializes the word statistics with the fixed
// likely-trash taxonomy and the safe-word rules.
func buildWordFilterPrompt(req service.WordFilterRequest) string {
	var b strings.Builder

	b.WriteString("Business description: ")
	b.WriteString(req.BusinessDescription)
	b.WriteString("\n")

	b.WriteString(`
Each line below is one word aggregated across search queries, with its total cost, clicks and query count. Select the words that should become negative keywords (minus-words).

Likely-trash signal categories:
- informational intent (how-to, what-is, definitions)
- adjacent but different business or education intent
- institutional or government terms, when the business is not one
- DIY / self-service intent
- locality terms for places the business does not serve, when the business is local
- competitor names

Non-negotiable rules:
- NEVER suggest a word from the safe list below. Safe words appear in converting queries.
- NEVER suggest a word that plausibly forms part of a legitimate target query. Example: for a driving school, "экзамен" and "права" look generic but are core to what customers search for — they must not be suppressed.

Safe words: `)
	if len(req.SafeWords) == 0 {
		b.WriteString("(none)")
	} else {
		b.WriteString(strings.Join(req.SafeWords, ", "))
	}
	b.WriteString("\n\nWords:\n")

	for i, w := range req.Words {
		examples := ""
		if len(w.ExampleQueries) > 0 {
			examples = fmt.Sprintf(" (e.g. %s)", strings.Join(w.ExampleQueries, "; "))
		}
		fmt.Fprintf(&b, "%d. %q — cost: %.0f, clicks: %d, queries: %d%s\n",
			i+1, w.Word, w.TotalCost, w.TotalClicks, w.QueriesCount, examples)
	}

	b.WriteString(`
For each selected word report a confidence tier: "high" only when the word is unambiguously trash and safe to auto-apply, "medium" or "low" when a human should confirm.

Respond with ONLY this JSON structure:
{
  "minusWords": [
    {"word": "<word>", "reason": "<short reason>", "confidence": "high|medium|low"}
  ]
}`)

	return b.String()
}
