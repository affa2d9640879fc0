package driving

import (
	"context"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
)

// MemoryService ingests documents into durable chunk storage.
type MemoryService interface {
	// Ingest validates, hashes, deduplicates, chunks, and persists one
	// document. Re-ingesting unchanged content is a no-op reported via
	// ChunksSkipped.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestReceipt, error)
}

// EmbedWorker reacts to newly inserted rows lacking a vector.
type EmbedWorker interface {
	// HandleInsert embeds a freshly inserted row and writes the vector
	// back. Rows that already carry a vector are a successful no-op,
	// which makes delivery safe under at-least-once retries.
	HandleInsert(ctx context.Context, record Record, table string) error

	// Backfill sweeps rows still lacking a vector, in batches. It is
	// the polling substitute for insert triggers and reports aggregate
	// counts, continuing past per-row provider failures.
	Backfill(ctx context.Context, table string, batchSize int) (*BackfillReport, error)
}

// Record mirrors the driven-side row view at the trigger boundary.
type Record struct {
	ID        string
	Content   string
	Embedding []float32
}

// BackfillReport summarises one backfill sweep.
type BackfillReport struct {
	// Processed is the number of rows successfully embedded.
	Processed int

	// Skipped is the number of rows that already had a vector.
	Skipped int

	// Failed is the number of rows whose provider call failed.
	Failed int
}
