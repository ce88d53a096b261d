package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers. One Complete call is one
// outbound network round trip.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config holds configuration for LLM clients. Clients are constructed
// explicitly and injected into the pipeline; there is no process-wide
// singleton.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	// RateLimit caps outbound requests per second. Zero disables limiting.
	RateLimit float64
}
