package mcp

import (
	"context"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driving"
)

// mockMemoryService is a mock implementation of driving.MemoryService.
type mockMemoryService struct {
	receipt *domain.IngestReceipt
	err     error
}

func (m *mockMemoryService) Ingest(
	_ context.Context,
	_ domain.IngestRequest,
) (*domain.IngestReceipt, error) {
	return m.receipt, m.err
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error

	gotOpts domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.gotOpts = opts
	return m.results, m.err
}

// mockGraphService is a mock implementation of driving.GraphService.
type mockGraphService struct {
	report       *driving.ExtractReport
	neighborhood *domain.EntityNeighborhood
	err          error
}

func (m *mockGraphService) Extract(
	_ context.Context,
	_ []string,
	_ driving.ExtractOptions,
) (*driving.ExtractReport, error) {
	return m.report, m.err
}

func (m *mockGraphService) Neighbors(
	_ context.Context,
	_ string,
) (*domain.EntityNeighborhood, error) {
	return m.neighborhood, m.err
}

// mockChunkStore is a mock implementation of driven.ChunkStore.
type mockChunkStore struct {
	chunks []domain.Chunk
	chunk  *domain.Chunk
	err    error
}

func (m *mockChunkStore) InsertChunks(_ context.Context, _ []domain.Chunk) error {
	return m.err
}

func (m *mockChunkStore) HasDocument(_ context.Context, _, _ string) (bool, error) {
	return false, m.err
}

func (m *mockChunkStore) GetChunk(_ context.Context, _ string) (*domain.Chunk, error) {
	return m.chunk, m.err
}

func (m *mockChunkStore) ListChunks(
	_ context.Context,
	_ string,
	_, _ int,
) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

// mockSearchStore is a mock implementation of driven.SearchStore.
type mockSearchStore struct {
	tables []string
	err    error
}

func (m *mockSearchStore) Tables() []string {
	return m.tables
}

func (m *mockSearchStore) GetRow(_ context.Context, _, _ string) (*driven.Row, error) {
	return nil, m.err
}

func (m *mockSearchStore) UpdateEmbedding(_ context.Context, _, _ string, _ []float32) error {
	return m.err
}

func (m *mockSearchStore) PendingEmbeddings(
	_ context.Context,
	_ string,
	_ int,
) ([]driven.Record, error) {
	return nil, m.err
}

func (m *mockSearchStore) FullTextSearch(
	_ context.Context,
	_, _ string,
	_ int,
) ([]driven.SearchHit, error) {
	return nil, m.err
}

func (m *mockSearchStore) VectorSearch(
	_ context.Context,
	_ string,
	_ []float32,
	_ int,
	_ float64,
) ([]driven.VectorHit, error) {
	return nil, m.err
}
