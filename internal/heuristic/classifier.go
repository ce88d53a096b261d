// Package heuristic implements the threshold and stop-word rule engine
// used when AI classification is disabled or unavailable.
package heuristic

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/mkrasilnikov/minusflow/internal/model"
)

// Config holds the thresholds and stop words for rule-based triage.
type Config struct {
	StopWords      []string
	MaxCpl         float64
	MinImpressions int
	MinClicks      int
}

// DefaultConfig returns the thresholds used when the caller supplies none.
func DefaultConfig() Config {
	return Config{
		MaxCpl:         3000,
		MinImpressions: 50,
		MinClicks:      0,
		StopWords:      []string{"бесплатно", "скачать", "реферат", "своими руками", "что такое"},
	}
}

// Classifier buckets queries by deterministic rules. It produces only
// target and trash: with no semantic judgment available, ambiguous queries
// stay target so converting traffic is never cut by a guess.
type Classifier struct {
	logger *slog.Logger
	cfg    Config
}

// NewClassifier creates a rule-based classifier.
func NewClassifier(cfg Config, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{cfg: cfg, logger: logger}
}

// Classify assigns a category to every record. The output order matches
// the input order, and identical input always produces identical output.
func (c *Classifier) Classify(records []model.QueryMetricRecord) []model.AnalyzedQuery {
	analyzed := make([]model.AnalyzedQuery, 0, len(records))
	for _, record := range records {
		analyzed = append(analyzed, c.classifyOne(record))
	}
	return analyzed
}

func (c *Classifier) classifyOne(record model.QueryMetricRecord) model.AnalyzedQuery {
	result := model.AnalyzedQuery{
		Query:    record.Query,
		Category: model.CategoryTarget,
		Reason:   "no trash signals",
		Metrics:  record,
	}

	if cpl := record.EffectiveCpl(); cpl != nil && c.cfg.MaxCpl > 0 && *cpl > c.cfg.MaxCpl {
		result.Category = model.CategoryTrash
		result.Reason = fmt.Sprintf("CPL %.2f exceeds limit %.2f", *cpl, c.cfg.MaxCpl)
		result.SuggestedMinusWords = Tokenize(record.Query)
		return result
	}

	if c.cfg.MinImpressions > 0 && record.Impressions >= c.cfg.MinImpressions && record.Clicks <= c.cfg.MinClicks {
		result.Category = model.CategoryTrash
		result.Reason = fmt.Sprintf("%d impressions with %d clicks", record.Impressions, record.Clicks)
		result.SuggestedMinusWords = Tokenize(record.Query)
		return result
	}

	if word, ok := c.matchStopWord(record.Query); ok {
		result.Category = model.CategoryTrash
		result.Reason = fmt.Sprintf("contains stop word %q", word)
		// Only the word that triggered the rule, never an invented one.
		result.SuggestedMinusWords = []string{word}
		return result
	}

	return result
}

// matchStopWord returns the first configured stop word contained in the
// query, case-insensitively.
func (c *Classifier) matchStopWord(query string) (string, bool) {
	folded := strings.ToLower(query)
	for _, word := range c.cfg.StopWords {
		if word == "" {
			continue
		}
		if strings.Contains(folded, strings.ToLower(word)) {
			return word, true
		}
	}
	return "", false
}

// Tokenize splits a query into candidate minus-word tokens: lowercased,
// punctuation stripped, short particles dropped. Tokens always come from
// the query text itself.
func Tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})

	tokens := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if len([]rune(f)) < 3 {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}
