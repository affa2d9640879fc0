package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-labs/mnemo-cli/internal/chunker"
	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driving"
	"github.com/mnemo-labs/mnemo-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.MemoryService = (*IngestService)(nil)

// DefaultSource labels chunks whose ingestion call named no source.
const DefaultSource = "notes"

// ChunkTable is the searchable table ingestion writes to.
const ChunkTable = "memories"

// notifyTimeout bounds the fire-and-forget embedding notification for
// one ingested document.
const notifyTimeout = 2 * time.Minute

// IngestService turns raw documents into deduplicated chunk rows.
type IngestService struct {
	chunks   driven.ChunkStore
	splitter *chunker.Chunker
	worker   driving.EmbedWorker
}

// NewIngestService creates a new ingestion service.
// The worker parameter is optional (can be nil): without it, inserted
// rows stay unembedded until a backfill sweep picks them up.
func NewIngestService(chunks driven.ChunkStore, splitter *chunker.Chunker, worker driving.EmbedWorker) *IngestService {
	if splitter == nil {
		splitter = chunker.New()
	}
	return &IngestService{
		chunks:   chunks,
		splitter: splitter,
		worker:   worker,
	}
}

// Ingest validates, hashes, deduplicates, chunks, and persists one
// document. Calling it again with identical content and source is a
// no-op reported through ChunksSkipped.
func (s *IngestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestReceipt, error) {
	logger.Section("Ingestion")

	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("ingest: %w", domain.ErrEmptyContent)
	}

	source := req.Source
	if source == "" {
		source = DefaultSource
	}

	hash := domain.Fingerprint(req.Content)
	logger.Debug("Document hash: %s", hash)

	// The dedup check is optimistic, not transactional: two concurrent
	// ingestions of identical content can both pass it. Accepted race;
	// re-running ingestion stays idempotent once either insert lands.
	exists, err := s.chunks.HasDocument(ctx, source, hash)
	if err != nil {
		return nil, fmt.Errorf("ingest: dedup lookup: %w", err)
	}
	if exists {
		logger.Info("Document already ingested, skipping")
		return &domain.IngestReceipt{
			ChunksSkipped: 1,
			DocumentHash:  hash,
		}, nil
	}

	pieces := s.splitter.Split(req.Content)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("ingest: %w", domain.ErrEmptyContent)
	}
	logger.Debug("Chunked into %d pieces", len(pieces))

	now := time.Now().UTC()
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:           uuid.New().String(),
			Source:       source,
			SourcePath:   req.SourcePath,
			Title:        req.Title,
			Content:      piece,
			ChunkIndex:   i,
			ChunkCount:   len(pieces),
			DocumentHash: hash,
			TokenCount:   domain.EstimateTokens(piece),
			Metadata:     req.Metadata,
			CreatedAt:    now,
		}
	}

	// Single transaction: on failure nothing is inserted and the whole
	// ingestion can be retried safely.
	if err := s.chunks.InsertChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("ingest: insert chunks: %w", err)
	}

	logger.Info("Inserted %d chunks for %s", len(chunks), source)

	// Rows now lack embeddings; that absence is the pending-work
	// signal. Notify the worker without blocking the caller.
	if s.worker != nil {
		go s.notifyInserted(chunks)
	}

	return &domain.IngestReceipt{
		ChunksCreated: len(chunks),
		DocumentHash:  hash,
	}, nil
}

// notifyInserted delivers one insert notification per chunk. Failures
// are logged only: unembedded rows are retried by the backfill sweep.
func (s *IngestService) notifyInserted(chunks []domain.Chunk) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	for _, chunk := range chunks {
		record := driving.Record{ID: chunk.ID, Content: chunk.Content}
		if err := s.worker.HandleInsert(ctx, record, ChunkTable); err != nil {
			logger.Warn("Embedding notification failed for chunk %s: %v", chunk.ID, err)
		}
	}
}
