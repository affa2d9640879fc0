package services

import (
	"context"
	"fmt"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driving"
	"github.com/mnemo-labs/mnemo-cli/internal/logger"
)

// Ensure EmbedService implements the interface.
var _ driving.EmbedWorker = (*EmbedService)(nil)

// DefaultBackfillBatch is the sweep batch size when none is given.
const DefaultBackfillBatch = 50

// EmbedService attaches embedding vectors to rows that lack one.
// Delivery is at-least-once: the already-embedded guard makes repeated
// notifications for the same row harmless.
type EmbedService struct {
	store    driven.SearchStore
	embedder driven.EmbeddingService
	costs    driven.CostLog
}

// NewEmbedService creates a new embedding worker.
// The costs parameter is optional (can be nil).
func NewEmbedService(store driven.SearchStore, embedder driven.EmbeddingService, costs driven.CostLog) *EmbedService {
	return &EmbedService{
		store:    store,
		embedder: embedder,
		costs:    costs,
	}
}

// HandleInsert embeds one freshly inserted row and writes the vector
// back onto its record.
func (s *EmbedService) HandleInsert(ctx context.Context, record driving.Record, table string) error {
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}
	if !s.knownTable(table) {
		return fmt.Errorf("embed %q: %w", table, domain.ErrUnknownTable)
	}

	// Duplicate trigger delivery lands here: the row was already
	// embedded, so this delivery is a successful no-op.
	if len(record.Embedding) > 0 {
		logger.Debug("Row %s already embedded, skipping", record.ID)
		return nil
	}

	result, err := s.embedder.Embed(ctx, record.Content)
	if err != nil {
		// No partial update: the row stays unembedded and is retried
		// on the next delivery or backfill sweep.
		return fmt.Errorf("embed row %s: %w", record.ID, err)
	}
	if err := s.checkDimensions(result.Vector); err != nil {
		return fmt.Errorf("embed row %s: %w", record.ID, err)
	}

	if err := s.store.UpdateEmbedding(ctx, table, record.ID, result.Vector); err != nil {
		return fmt.Errorf("write embedding for row %s: %w", record.ID, err)
	}

	s.logCost(ctx, "embed_row", result.PromptTokens)
	return nil
}

// Backfill sweeps rows still lacking a vector in batches until the
// table is drained. Per-row provider failures are counted and skipped;
// the sweep keeps going.
func (s *EmbedService) Backfill(ctx context.Context, table string, batchSize int) (*driving.BackfillReport, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if !s.knownTable(table) {
		return nil, fmt.Errorf("backfill %q: %w", table, domain.ErrUnknownTable)
	}
	if batchSize <= 0 {
		batchSize = DefaultBackfillBatch
	}

	logger.Section("Embedding Backfill")
	report := &driving.BackfillReport{}

	// Failed rows stay pending and reappear on the next fetch, so track
	// what was already attempted to terminate and count each row once.
	attempted := make(map[string]bool)

	for {
		pending, err := s.store.PendingEmbeddings(ctx, table, batchSize)
		if err != nil {
			return report, fmt.Errorf("backfill %q: list pending: %w", table, err)
		}

		var batch []driving.Record
		progressed := false
		for _, record := range pending {
			if attempted[record.ID] {
				continue
			}
			attempted[record.ID] = true
			progressed = true

			if len(record.Embedding) > 0 {
				report.Skipped++
				continue
			}
			batch = append(batch, driving.Record{ID: record.ID, Content: record.Content})
		}

		if !progressed {
			break
		}
		if err := s.embedBatch(ctx, table, batch, report); err != nil {
			return report, err
		}
	}

	logger.Info("Backfill done: %d embedded, %d failed", report.Processed, report.Failed)
	return report, nil
}

// embedBatch embeds one fetched batch in a single provider call. When
// the batch request fails it falls back to row-at-a-time so one bad
// row cannot sink its batchmates.
func (s *EmbedService) embedBatch(ctx context.Context, table string, batch []driving.Record, report *driving.BackfillReport) error {
	if len(batch) == 0 {
		return nil
	}

	texts := make([]string, len(batch))
	for i, record := range batch {
		texts[i] = record.Content
	}

	results, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil || len(results) != len(batch) {
		for _, record := range batch {
			if err := s.HandleInsert(ctx, record, table); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn("Backfill: row %s failed: %v", record.ID, err)
				report.Failed++
				continue
			}
			report.Processed++
		}
		return nil
	}

	for i, record := range batch {
		result := results[i]
		if err := s.checkDimensions(result.Vector); err != nil {
			logger.Warn("Backfill: row %s failed: %v", record.ID, err)
			report.Failed++
			continue
		}
		if err := s.store.UpdateEmbedding(ctx, table, record.ID, result.Vector); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("Backfill: row %s failed: %v", record.ID, err)
			report.Failed++
			continue
		}
		s.logCost(ctx, "embed_row", result.PromptTokens)
		report.Processed++
	}
	return nil
}

// checkDimensions rejects vectors whose width disagrees with the
// provider's advertised dimensionality. A mismatched vector would
// poison cosine scoring for every row embedded with the right width.
func (s *EmbedService) checkDimensions(vector []float32) error {
	want := s.embedder.Dimensions()
	if want > 0 && len(vector) != want {
		return fmt.Errorf("provider returned a %d-dimensional vector, want %d", len(vector), want)
	}
	return nil
}

// knownTable validates a table name against the store allow-list.
func (s *EmbedService) knownTable(table string) bool {
	for _, t := range s.store.Tables() {
		if t == table {
			return true
		}
	}
	return false
}

// logCost records advisory token usage. Failures never propagate.
func (s *EmbedService) logCost(ctx context.Context, operation string, tokens int) {
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
