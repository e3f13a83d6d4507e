package driven

import "context"

// CompletionService produces text completions from a language model.
// Used only by the HyDE translator; failures there degrade to the raw
// query rather than failing retrieval.
type CompletionService interface {
	// Complete sends a system and user prompt and returns the model's
	// text. Single attempt; the request timeout is the adapter's.
	Complete(ctx context.Context, system, user string, opts CompletionOptions) (string, error)

	// ModelName returns the name of the model being used. It is part of
	// the HyDE cache key, so changing models never serves stale text.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionOptions configures a completion request.
type CompletionOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
