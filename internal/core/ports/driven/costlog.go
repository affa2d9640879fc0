package driven

import "context"

// CostEntry is one advisory usage record.
type CostEntry struct {
	// Operation names the caller, e.g. "embed_chunk" or "search_query".
	Operation string

	// Model is the provider model that consumed the tokens.
	Model string

	// Tokens is the provider-reported or estimated token count.
	Tokens int
}

// CostLog records token usage for cost tracking. Writes are advisory
// telemetry, not a correctness dependency: callers must swallow Record
// failures rather than fail their primary operation.
type CostLog interface {
	// Record appends a usage entry.
	Record(ctx context.Context, entry CostEntry) error
}
