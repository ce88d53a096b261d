package model

import "fmt"

// Category is the three-way triage classification for a search query.
// The set is closed: values outside it must be quarantined by callers,
// never misfiled into a bucket.
type Category string

const (
	// CategoryTarget marks queries that convert or look relevant.
	CategoryTarget Category = "target"
	// CategoryTrash marks wasteful queries that should be suppressed.
	CategoryTrash Category = "trash"
	// CategoryReview marks queries needing human judgment.
	CategoryReview Category = "review"
)

// ParseCategory validates a dynamically sourced category value (LLM output,
// API input) against the closed set.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryTarget, CategoryTrash, CategoryReview:
		return Category(s), nil
	}
	return "", fmt.Errorf("unrecognized category: %q", s)
}

// Confidence is the AI-reported certainty tier for a minus-word
// suggestion. High confidence routes to the auto-apply view; medium and
// low route to human review.
type Confidence string

const (
	// ConfidenceHigh allows a suggestion to be auto-applied.
	ConfidenceHigh Confidence = "high"
	// ConfidenceMedium requires manual confirmation.
	ConfidenceMedium Confidence = "medium"
	// ConfidenceLow requires manual confirmation.
	ConfidenceLow Confidence = "low"
)

// ParseConfidence validates a confidence value. The empty string is valid:
// confidence is optional on suggestions produced without AI.
func ParseConfidence(s string) (Confidence, error) {
	switch Confidence(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, "":
		return Confidence(s), nil
	}
	return "", fmt.Errorf("unrecognized confidence: %q", s)
}

// AutoApply reports whether the tier permits applying the suggestion
// without human review.
func (c Confidence) AutoApply() bool {
	return c == ConfidenceHigh
}
