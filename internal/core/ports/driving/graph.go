package driving

import (
	"context"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
)

// GraphService extracts entities and relationships from unstructured
// facts and answers relationship lookups.
type GraphService interface {
	// Extract runs Tag -> Parse -> Resolve -> Persist over the facts,
	// in bounded batches. One batch failing its LLM call is logged and
	// skipped; the run continues and reports aggregate counts.
	Extract(ctx context.Context, facts []string, opts ExtractOptions) (*ExtractReport, error)

	// Neighbors returns an entity and its incident edges, looked up by
	// case-insensitive name.
	Neighbors(ctx context.Context, name string) (*domain.EntityNeighborhood, error)
}

// ExtractOptions configures an extraction run.
type ExtractOptions struct {
	// BatchSize is the number of facts per LLM call. Defaults to 20.
	BatchSize int

	// DryRun performs tagging and parsing only, with no store writes.
	DryRun bool
}

// ExtractReport summarises one extraction run.
type ExtractReport struct {
	// FactsProcessed is the number of facts successfully tagged.
	FactsProcessed int

	// BatchesFailed is the number of batches skipped on LLM failure.
	BatchesFailed int

	// EntitiesResolved is the number of entity tags resolved (or, in a
	// dry run, parsed).
	EntitiesResolved int

	// EdgesUpserted is the number of relation tags persisted (or, in a
	// dry run, parsed).
	EdgesUpserted int
}
