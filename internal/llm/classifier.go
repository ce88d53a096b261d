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

const classifySystemPrompt = "You are a paid-search analyst triaging search queries for a Yandex.Direct campaign. " +
	"You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, " +
	"or commentary before or after the JSON. Start your response directly with { and end with }."

// QueryClassifier implements the service.QueryClassifier interface on top
// of an LLM client. Each ClassifyQueries call makes exactly one outbound
// request, never one per query.
type QueryClassifier struct {
	client    Client
	limiter   *rate.Limiter
	logger    *slog.Logger
	retryOpts service.RetryOptions
}

// NewQueryClassifier creates an AI-backed query classifier. A zero
// requestsPerSecond disables rate limiting.
func NewQueryClassifier(client Client, requestsPerSecond float64, logger *slog.Logger) *QueryClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &QueryClassifier{client: client, limiter: limiter, logger: logger}
}

// ClassifyQueries builds one prompt for the whole batch, performs the call
// and parses the JSON-only response.
func (c *QueryClassifier) ClassifyQueries(ctx context.Context, req service.AIClassifyRequest) (*service.AIClassification, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	prompt := buildClassifyPrompt(req)

	c.logger.Debug("requesting AI classification",
		"queries", len(req.Records),
		"prompt_bytes", len(prompt))

	// Transport failures are retried; parse failures below are fatal.
	var content string
	err := common.WithRetry(ctx, func() error {
		completion, completeErr := c.client.Complete(ctx, classifySystemPrompt, prompt)
		if completeErr != nil {
			c.logger.Warn("AI classification attempt failed", "error", completeErr)
			return &common.RetryableError{Err: completeErr, Retryable: true}
		}
		content = completion
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, fmt.Errorf("AI classification request failed: %w", err)
	}

	result, err := parseClassification(content)
	if err != nil {
		return nil, err
	}

	c.logger.Info("AI classification completed",
		"queries_sent", len(req.Records),
		"queries_returned", len(result.Queries),
		"minus_words", len(result.SuggestedMinusWords))

	return result, nil
}

// buildClassifyPrompt serializes the batch into a single prompt with the
// fixed response contract.
func buildClassifyPrompt(req service.AIClassifyRequest) string {
	var b strings.Builder

	b.WriteString("Business description: ")
	b.WriteString(req.BusinessDescription)
	b.WriteString("\n")

	if req.TargetCpl != nil {
		fmt.Fprintf(&b, "Target cost per lead (CPL): %.0f RUB. Queries with CPL above this are wasting budget.\n", *req.TargetCpl)
	}

	b.WriteString(`
Triage each search query below into exactly one category:
- "target": likely relevant to the business, converts or plausibly could
- "trash": wasteful, should be suppressed with negative keywords
- "review": genuinely ambiguous, needs a human decision

Hard rule: flag any query with impressions >= 100 and CTR < 1% as suspicious even if its other metrics look acceptable.

For every trash query, list the specific words from the query that make it trash.
Also build a corpus-level list of suggested minus-words.

Queries:
`)

	for i, r := range req.Records {
		fmt.Fprintf(&b, "%d. %q — impressions: %d, clicks: %d, cost: %.0f, conversions: %d, ctr: %s, cpl: %s\n",
			i+1, r.Query, r.Impressions, r.Clicks, r.Cost, r.Conversions,
			formatCTR(r), formatCpl(r))
	}

	b.WriteString(`
Respond with ONLY this JSON structure:
{
  "queries": [
    {"query": "<query text echoed exactly>", "category": "target|trash|review", "reason": "<short reason>", "minusWords": ["<word>"]}
  ],
  "suggestedMinusWords": [
    {"word": "<word>", "reason": "<short reason>", "category": "<signal category>"}
  ]
}`)

	return b.String()
}

func formatCTR(r model.QueryMetricRecord) string {
	return fmt.Sprintf("%.2f%%", r.EffectiveCTR()*100)
}

func formatCpl(r model.QueryMetricRecord) string {
	if cpl := r.EffectiveCpl(); cpl != nil {
		return fmt.Sprintf("%.0f", *cpl)
	}
	return "null"
}
