package driven

import (
	"context"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
)

// ChunkStore persists document chunks produced by ingestion.
// Backed by SQLite.
type ChunkStore interface {
	// InsertChunks stores all chunks of one document in a single
	// transaction. Chunks are never partially inserted.
	InsertChunks(ctx context.Context, chunks []domain.Chunk) error

	// HasDocument reports whether a document with the given content
	// hash was already ingested for the source. The probe looks for a
	// chunk_index = 0 row, so no re-chunking is needed.
	HasDocument(ctx context.Context, source, documentHash string) (bool, error)

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// ListChunks returns chunks for a source, ordered by creation,
	// paginated by limit and offset.
	ListChunks(ctx context.Context, source string, limit, offset int) ([]domain.Chunk, error)
}

// Record is the minimal row view handed to the embedding worker on
// insert notification. Embedding is nil for rows still pending.
type Record struct {
	ID        string
	Content   string
	Embedding []float32
}

// Row is a hydrated searchable row, independent of originating table.
type Row struct {
	ID      string
	Title   string
	Content string
}

// SearchHit is a full-text match with its relevance score.
type SearchHit struct {
	ID    string
	Score float64
}

// VectorHit is a similarity match with its cosine score.
type VectorHit struct {
	ID         string
	Similarity float64
}

// SearchStore gives table-polymorphic access to the allow-listed
// searchable tables. Every method validates the table name and returns
// domain.ErrUnknownTable for anything outside the allow-list.
type SearchStore interface {
	// Tables returns the allow-listed searchable table names.
	Tables() []string

	// GetRow retrieves a row by table and ID.
	GetRow(ctx context.Context, table, id string) (*Row, error)

	// UpdateEmbedding attaches a vector to a single row. This is the
	// only permitted mutation of a stored row.
	UpdateEmbedding(ctx context.Context, table, id string, embedding []float32) error

	// PendingEmbeddings returns up to limit rows still lacking a
	// vector, oldest first.
	PendingEmbeddings(ctx context.Context, table string, limit int) ([]Record, error)

	// FullTextSearch ranks rows by lexical relevance against query.
	FullTextSearch(ctx context.Context, table, query string, limit int) ([]SearchHit, error)

	// VectorSearch ranks rows by cosine similarity against the query
	// embedding, dropping rows below threshold (0 disables it).
	VectorSearch(ctx context.Context, table string, query []float32, limit int, threshold float64) ([]VectorHit, error)
}
