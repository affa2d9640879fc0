package driving

import (
	"context"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
)

// SearchService answers retrieval queries over the searchable tables.
type SearchService interface {
	// Search embeds the query, runs lexical and semantic searches per
	// the requested mode, and returns a fused ranked result list.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
