package domain

// SearchMode selects the retrieval strategy.
type SearchMode string

const (
	// SearchModeVector ranks purely by embedding similarity.
	SearchModeVector SearchMode = "vector"

	// SearchModeHybrid fuses full-text and vector rankings with
	// reciprocal rank fusion.
	SearchModeHybrid SearchMode = "hybrid"
)

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// Mode is the retrieval strategy. Defaults to hybrid.
	Mode SearchMode

	// Tables are the searchable tables to query. Defaults to all
	// allow-listed tables.
	Tables []string

	// MatchCount is the maximum number of fused results. Defaults to 10.
	MatchCount int

	// MatchThreshold is the minimum vector similarity for a row to be
	// a semantic candidate. Zero means no threshold.
	MatchThreshold float64

	// FTSWeight scales the full-text contribution in rank fusion.
	// Defaults to 1.0.
	FTSWeight float64

	// SemanticWeight scales the vector contribution in rank fusion.
	// Defaults to 1.0.
	SemanticWeight float64
}

// SearchResult is a single ranked hit, annotated with the table it came
// from so callers can reconstruct full row content.
type SearchResult struct {
	// ID is the matched row's identifier.
	ID string `json:"id"`

	// Table is the originating table.
	Table string `json:"table"`

	// Title is the row title, if any.
	Title string `json:"title,omitempty"`

	// Content is the row's text content.
	Content string `json:"content"`

	// Score is the fused relevance score (RRF) or, in single-table
	// vector mode, the cosine similarity.
	Score float64 `json:"score"`
}
