package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driving"
	"github.com/mnemo-labs/mnemo-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultRRFK is the reciprocal rank fusion constant, tunable via
// configuration. It must stay below 1 so that a first place in a
// single ranking outranks a row placed third in both rankings at equal
// weights: 1/(1+k) > 2/(3+k) only when k < 1.
const DefaultRRFK = 0

// DefaultMatchCount is the result cap when none is given.
const DefaultMatchCount = 10

// tableRow keys a candidate across heterogeneous tables.
type tableRow struct {
	table string
	id    string
}

// ranking is one ordered hit list with its fusion weight.
type ranking struct {
	weight float64
	hits   []tableRow
}

// SearchService fuses lexical and semantic retrieval across the
// allow-listed searchable tables.
type SearchService struct {
	store    driven.SearchStore
	embedder driven.EmbeddingService
	costs    driven.CostLog
	rrfK     int
}

// NewSearchService creates a new search service.
// The embedder and costs parameters are optional (can be nil); without
// an embedder only lexical ranking is available.
func NewSearchService(store driven.SearchStore, embedder driven.EmbeddingService, costs driven.CostLog) *SearchService {
	return &SearchService{
		store:    store,
		embedder: embedder,
		costs:    costs,
		rrfK:     DefaultRRFK,
	}
}

// SetRRFK overrides the rank fusion constant.
func (s *SearchService) SetRRFK(k int) {
	if k > 0 {
		s.rrfK = k
	}
}

// Search embeds the query, runs the requested retrieval mode, and
// returns a unified ranked result list annotated with the originating
// table of each hit.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search: missing query: %w", domain.ErrInvalidInput)
	}

	opts = s.withDefaults(opts)
	if err := s.validateTables(opts.Tables); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	logger.Debug("Query: %q, mode: %s, tables: %v, limit: %d",
		query, opts.Mode, opts.Tables, opts.MatchCount)

	embedding, err := s.embedQuery(ctx, query, opts.Mode)
	if err != nil {
		return nil, err
	}

	// Vector-only against a single table takes the direct similarity
	// path; every other shape goes through rank fusion so that ranking
	// semantics stay consistent.
	if opts.Mode == domain.SearchModeVector {
		if len(opts.Tables) == 1 {
			return s.vectorOnly(ctx, opts.Tables[0], embedding, opts)
		}
		// Multi-table vector search is hybrid with the lexical
		// contribution forced to zero.
		opts.FTSWeight = 0
	}

	return s.fusedSearch(ctx, query, embedding, opts)
}

// withDefaults fills unset options.
func (s *SearchService) withDefaults(opts domain.SearchOptions) domain.SearchOptions {
	if opts.Mode == "" {
		opts.Mode = domain.SearchModeHybrid
	}
	if opts.MatchCount <= 0 {
		opts.MatchCount = DefaultMatchCount
	}
	if len(opts.Tables) == 0 {
		opts.Tables = s.store.Tables()
	}
	if opts.FTSWeight <= 0 {
		opts.FTSWeight = 1.0
	}
	if opts.SemanticWeight <= 0 {
		opts.SemanticWeight = 1.0
	}
	return opts
}

// validateTables checks every requested table against the allow-list.
func (s *SearchService) validateTables(tables []string) error {
	allowed := make(map[string]bool)
	for _, t := range s.store.Tables() {
		allowed[t] = true
	}
	for _, t := range tables {
		if !allowed[t] {
			return fmt.Errorf("table %q: %w", t, domain.ErrUnknownTable)
		}
	}
	return nil
}

// embedQuery generates the query embedding and logs its cost. Vector
// mode requires an embedder; hybrid degrades to lexical-only without
// one.
func (s *SearchService) embedQuery(ctx context.Context, query string, mode domain.SearchMode) ([]float32, error) {
	if s.embedder == nil {
		if mode == domain.SearchModeVector {
			return nil, fmt.Errorf("search: %w", domain.ErrEmbeddingUnavailable)
		}
		logger.Warn("No embedding service, falling back to lexical ranking only")
		return nil, nil
	}

	result, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(result.Vector))

	s.logCost(ctx, "search_query", result.PromptTokens)
	return result.Vector, nil
}

// vectorOnly runs a single-table similarity search. Scores are raw
// cosine similarities rather than fused ranks.
func (s *SearchService) vectorOnly(ctx context.Context, table string, embedding []float32, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	hits, err := s.store.VectorSearch(ctx, table, embedding, opts.MatchCount, opts.MatchThreshold)
	if err != nil {
		return nil, fmt.Errorf("search: vector search %q: %w", table, err)
	}

	logger.Debug("Vector search: %d hits in %s", len(hits), table)

	keyed := make([]scoredRow, len(hits))
	for i, hit := range hits {
		keyed[i] = scoredRow{row: tableRow{table: table, id: hit.ID}, score: hit.Similarity}
	}
	return s.hydrate(ctx, keyed)
}

// fusedSearch runs lexical and semantic rankings per table in parallel
// and merges everything with weighted reciprocal rank fusion.
func (s *SearchService) fusedSearch(ctx context.Context, query string, embedding []float32, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	// Rankings are fetched deeper than the final cap so fusion has
	// candidates to promote.
	perRankingLimit := opts.MatchCount * 2

	var (
		mu       sync.Mutex
		rankings []ranking
		firstErr error
	)
	var wg sync.WaitGroup

	collect := func(r ranking, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		rankings = append(rankings, r)
	}

	for _, table := range opts.Tables {
		if opts.FTSWeight > 0 {
			wg.Add(1)
			go func(table string) {
				defer wg.Done()
				hits, err := s.store.FullTextSearch(ctx, table, query, perRankingLimit)
				if err != nil {
					collect(ranking{}, fmt.Errorf("full-text search %q: %w", table, err))
					return
				}
				collect(s.newRanking(table, opts.FTSWeight, len(hits), func(i int) string { return hits[i].ID }), nil)
			}(table)
		}

		if opts.SemanticWeight > 0 && len(embedding) > 0 {
			wg.Add(1)
			go func(table string) {
				defer wg.Done()
				hits, err := s.store.VectorSearch(ctx, table, embedding, perRankingLimit, opts.MatchThreshold)
				if err != nil {
					collect(ranking{}, fmt.Errorf("vector search %q: %w", table, err))
					return
				}
				collect(s.newRanking(table, opts.SemanticWeight, len(hits), func(i int) string { return hits[i].ID }), nil)
			}(table)
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("search: %w", firstErr)
	}

	fused := s.reciprocalRankFusion(rankings)
	if len(fused) > opts.MatchCount {
		fused = fused[:opts.MatchCount]
	}

	logger.Debug("Fused %d rankings into %d results", len(rankings), len(fused))
	return s.hydrate(ctx, fused)
}

// newRanking builds an ordered hit list for one table.
func (s *SearchService) newRanking(table string, weight float64, n int, id func(int) string) ranking {
	r := ranking{weight: weight, hits: make([]tableRow, n)}
	for i := 0; i < n; i++ {
		r.hits[i] = tableRow{table: table, id: id(i)}
	}
	return r
}

// scoredRow pairs a candidate with its fused or similarity score.
type scoredRow struct {
	row   tableRow
	score float64
}

// reciprocalRankFusion merges the rankings: each row's fused score is
// the weighted sum of 1/(rank + k) over every ranking it appears in.
// Rows absent from a ranking contribute nothing from it. Ordering is
// deterministic: ties break on (table, id).
func (s *SearchService) reciprocalRankFusion(rankings []ranking) []scoredRow {
	scores := make(map[tableRow]float64)

	for _, r := range rankings {
		for rank, row := range r.hits {
			scores[row] += r.weight / float64(s.rrfK+rank+1)
		}
	}

	results := make([]scoredRow, 0, len(scores))
	for row, score := range scores {
		results = append(results, scoredRow{row: row, score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		if results[i].row.table != results[j].row.table {
			return results[i].row.table < results[j].row.table
		}
		return results[i].row.id < results[j].row.id
	})

	return results
}

// hydrate resolves candidates to full result rows. Rows deleted since
// ranking are skipped.
func (s *SearchService) hydrate(ctx context.Context, rows []scoredRow) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, len(rows))

	for _, sr := range rows {
		row, err := s.store.GetRow(ctx, sr.row.table, sr.row.id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("search: get row %s/%s: %w", sr.row.table, sr.row.id, err)
		}

		results = append(results, domain.SearchResult{
			ID:      row.ID,
			Table:   sr.row.table,
			Title:   row.Title,
			Content: row.Content,
			Score:   sr.score,
		})
	}

	return results, nil
}

// logCost records advisory token usage for the query embedding.
// Failures never interrupt the search.
func (s *SearchService) logCost(ctx context.Context, operation string, tokens int) {
	if s.costs == nil {
		return
	}
	entry := driven.CostEntry{
		Operation: operation,
		Model:     s.embedder.ModelName(),
		Tokens:    tokens,
	}
	if err := s.costs.Record(ctx, entry); err != nil {
		logger.Warn("Cost log write failed: %v", err)
	}
}
