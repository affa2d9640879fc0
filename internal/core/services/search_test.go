package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-labs/mnemo-cli/internal/adapters/driven/storage/memory"
	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
)

// seedSearchStore fills a store with rows spread over two tables.
// Embeddings live in a 3-dimensional space where the canonical query
// vector is {1, 0, 0}.
func seedSearchStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()

	require.NoError(t, store.AddRow("memories", "mem-close",
		"Close Memory", "tomato soup recipe", []float32{0.95, 0.05, 0}))
	require.NoError(t, store.AddRow("memories", "mem-far",
		"Far Memory", "unrelated gardening trivia", []float32{0, 1, 0}))
	require.NoError(t, store.AddRow("messages", "msg-lexical",
		"Lexical Message", "tomato tomato tomato", []float32{0, 0, 1}))

	return store
}

func queryEmbedder() *stubEmbedder {
	return &stubEmbedder{vector: []float32{1, 0, 0}, tokens: 3}
}

func TestSearchService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("empty query is invalid", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewSearchService(store.SearchStore(), queryEmbedder(), nil)

		_, err := svc.Search(ctx, "   ", domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown table is rejected", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewSearchService(store.SearchStore(), queryEmbedder(), nil)

		_, err := svc.Search(ctx, "tomato", domain.SearchOptions{Tables: []string{"users"}})
		assert.ErrorIs(t, err, domain.ErrUnknownTable)
	})

	t.Run("hybrid fuses lexical and semantic rankings", func(t *testing.T) {
		store := seedSearchStore(t)
		svc := NewSearchService(store.SearchStore(), queryEmbedder(), nil)

		results, err := svc.Search(ctx, "tomato", domain.SearchOptions{})
		require.NoError(t, err)
		require.NotEmpty(t, results)

		// mem-close matches both rankings (lexical "tomato" and the
		// nearest vector) and must come first.
		assert.Equal(t, "mem-close", results[0].ID)
		assert.Equal(t, "memories", results[0].Table)
		assert.Equal(t, "Close Memory", results[0].Title)
		assert.Positive(t, results[0].Score)

		// The lexical-only hit still appears, ranked below.
		ids := make([]string, len(results))
		for i := range results {
			ids[i] = results[i].ID
		}
		assert.Contains(t, ids, "msg-lexical")
	})

	t.Run("results are capped at match count", func(t *testing.T) {
		store := seedSearchStore(t)
		svc := NewSearchService(store.SearchStore(), queryEmbedder(), nil)

		results, err := svc.Search(ctx, "tomato", domain.SearchOptions{MatchCount: 1})
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("vector mode on one table returns cosine scores", func(t *testing.T) {
		store := seedSearchStore(t)
		svc := NewSearchService(store.SearchStore(), queryEmbedder(), nil)

		results, err := svc.Search(ctx, "anything", domain.SearchOptions{
			Mode:   domain.SearchModeVector,
			Tables: []string{"memories"},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "mem-close", results[0].ID)
		assert.InDelta(t, 0.9986, results[0].Score, 0.001)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("vector mode honours the match threshold", func(t *testing.T) {
		store := seedSearchStore(t)
		svc := NewSearchService(store.SearchStore(), queryEmbedder(), nil)

		results, err := svc.Search(ctx, "anything", domain.SearchOptions{
			Mode:           domain.SearchModeVector,
			Tables:         []string{"memories"},
			MatchThreshold: 0.9,
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "mem-close", results[0].ID)
	})

	t.Run("multi-table vector mode drops the lexical contribution", func(t *testing.T) {
		store := seedSearchStore(t)
		svc := NewSearchService(store.SearchStore(), queryEmbedder(), nil)

		results, err := svc.Search(ctx, "tomato", domain.SearchOptions{
			Mode:           domain.SearchModeVector,
			Tables:         []string{"memories", "messages"},
			MatchThreshold: 0.5,
		})
		require.NoError(t, err)
		require.NotEmpty(t, results)

		// msg-lexical matches the query text but its vector is far
		// below the threshold, so pure-vector fusion excludes it.
		for _, result := range results {
			assert.NotEqual(t, "msg-lexical", result.ID)
		}
	})

	t.Run("vector mode without an embedder fails", func(t *testing.T) {
		store := seedSearchStore(t)
		svc := NewSearchService(store.SearchStore(), nil, nil)

		_, err := svc.Search(ctx, "anything", domain.SearchOptions{Mode: domain.SearchModeVector})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("hybrid without an embedder degrades to lexical", func(t *testing.T) {
		store := seedSearchStore(t)
		svc := NewSearchService(store.SearchStore(), nil, nil)

		results, err := svc.Search(ctx, "tomato", domain.SearchOptions{})
		require.NoError(t, err)
		require.NotEmpty(t, results)

		ids := make([]string, len(results))
		for i := range results {
			ids[i] = results[i].ID
		}
		assert.Contains(t, ids, "msg-lexical")
		assert.NotContains(t, ids, "mem-far")
	})

	t.Run("query embedding cost is recorded", func(t *testing.T) {
		store := seedSearchStore(t)
		svc := NewSearchService(store.SearchStore(), queryEmbedder(), store.CostLog())

		_, err := svc.Search(ctx, "tomato", domain.SearchOptions{})
		require.NoError(t, err)

		entries := store.CostEntries()
		require.Len(t, entries, 1)
		assert.Equal(t, "search_query", entries[0].Operation)
		assert.Equal(t, 3, entries[0].Tokens)
	})
}

func TestSearchService_ReciprocalRankFusion(t *testing.T) {
	store := memory.NewStore()
	svc := NewSearchService(store.SearchStore(), nil, nil)

	t.Run("row in both rankings outscores single-ranking rows", func(t *testing.T) {
		both := tableRow{table: "memories", id: "both"}
		lexOnly := tableRow{table: "memories", id: "lex"}
		vecOnly := tableRow{table: "memories", id: "vec"}

		fused := svc.reciprocalRankFusion([]ranking{
			{weight: 1.0, hits: []tableRow{both, lexOnly}},
			{weight: 1.0, hits: []tableRow{both, vecOnly}},
		})

		require.Len(t, fused, 3)
		assert.Equal(t, "both", fused[0].row.id)
	})

	t.Run("lone first place outranks a row placed third in both", func(t *testing.T) {
		ftsTop := tableRow{table: "memories", id: "fts-top"}
		vecTop := tableRow{table: "memories", id: "vec-top"}
		thirdInBoth := tableRow{table: "memories", id: "third-in-both"}
		fillerA := tableRow{table: "memories", id: "filler-a"}
		fillerB := tableRow{table: "memories", id: "filler-b"}

		fused := svc.reciprocalRankFusion([]ranking{
			{weight: 1.0, hits: []tableRow{ftsTop, fillerA, thirdInBoth}},
			{weight: 1.0, hits: []tableRow{vecTop, fillerB, thirdInBoth}},
		})

		require.Len(t, fused, 5)
		assert.Equal(t, "fts-top", fused[0].row.id)
		assert.Equal(t, "vec-top", fused[1].row.id)
		for _, sr := range fused[:2] {
			assert.Greater(t, sr.score, fused[2].score)
		}
		assert.Equal(t, "third-in-both", fused[2].row.id)
	})

	t.Run("weights scale the contribution", func(t *testing.T) {
		lex := tableRow{table: "memories", id: "lex"}
		vec := tableRow{table: "memories", id: "vec"}

		fused := svc.reciprocalRankFusion([]ranking{
			{weight: 0.1, hits: []tableRow{lex}},
			{weight: 2.0, hits: []tableRow{vec}},
		})

		require.Len(t, fused, 2)
		assert.Equal(t, "vec", fused[0].row.id)
	})

	t.Run("ties break deterministically on table then id", func(t *testing.T) {
		a := tableRow{table: "memories", id: "b"}
		b := tableRow{table: "memories", id: "a"}

		fused := svc.reciprocalRankFusion([]ranking{
			{weight: 1.0, hits: []tableRow{a}},
			{weight: 1.0, hits: []tableRow{b}},
		})

		require.Len(t, fused, 2)
		assert.Equal(t, "a", fused[0].row.id)
		assert.Equal(t, "b", fused[1].row.id)
	})
}
