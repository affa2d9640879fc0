package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
)

// chunkTable is where ingestion writes chunk rows.
const chunkTable = "memories"

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// InsertChunks stores all chunks of one document in a single
// transaction. Either every row lands or none does, so a failed
// ingestion can simply be retried.
func (s *chunkStore) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO memories
			(id, source, source_path, title, content, chunk_index, chunk_count,
			 document_hash, token_count, metadata, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.Source, chunk.SourcePath,
			chunk.Title, chunk.Content, chunk.ChunkIndex, chunk.ChunkCount,
			chunk.DocumentHash, chunk.TokenCount, string(metadataJSON),
			embeddingBlob, chunk.CreatedAt); err != nil {
			return fmt.Errorf("inserting chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// HasDocument probes for a chunk_index = 0 row carrying the document
// hash for the source.
func (s *chunkStore) HasDocument(ctx context.Context, source, documentHash string) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM memories
		WHERE source = ? AND document_hash = ? AND chunk_index = 0
	`, source, documentHash).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking document: %w", err)
	}
	return count > 0, nil
}

// GetChunk retrieves a chunk by ID.
func (s *chunkStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source, source_path, title, content, chunk_index, chunk_count,
		       document_hash, token_count, metadata, embedding, created_at
		FROM memories WHERE id = ?
	`, id)

	return scanChunkRow(row)
}

// ListChunks returns chunks for a source, ordered by document and
// position, paginated by limit and offset.
func (s *chunkStore) ListChunks(ctx context.Context, source string, limit, offset int) ([]domain.Chunk, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source, source_path, title, content, chunk_index, chunk_count,
		       document_hash, token_count, metadata, embedding, created_at
		FROM memories WHERE source = ?
		ORDER BY created_at, document_hash, chunk_index
		LIMIT ? OFFSET ?
	`, source, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var metadataJSON string

	if err := rows.Scan(&chunk.ID, &chunk.Source, &chunk.SourcePath, &chunk.Title,
		&chunk.Content, &chunk.ChunkIndex, &chunk.ChunkCount, &chunk.DocumentHash,
		&chunk.TokenCount, &metadataJSON, &embeddingBlob, &chunk.CreatedAt); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}

// scanChunkRow scans a chunk from *sql.Row.
func scanChunkRow(row *sql.Row) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var metadataJSON string

	if err := row.Scan(&chunk.ID, &chunk.Source, &chunk.SourcePath, &chunk.Title,
		&chunk.Content, &chunk.ChunkIndex, &chunk.ChunkCount, &chunk.DocumentHash,
		&chunk.TokenCount, &metadataJSON, &embeddingBlob, &chunk.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}
