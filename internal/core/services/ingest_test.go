package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-labs/mnemo-cli/internal/adapters/driven/storage/memory"
	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driving"
)

// recordingWorker captures insert notifications.
type recordingWorker struct {
	mu      sync.Mutex
	records []driving.Record
	tables  []string
}

func (w *recordingWorker) HandleInsert(_ context.Context, record driving.Record, table string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, record)
	w.tables = append(w.tables, table)
	return nil
}

func (w *recordingWorker) Backfill(_ context.Context, _ string, _ int) (*driving.BackfillReport, error) {
	return &driving.BackfillReport{}, nil
}

func (w *recordingWorker) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.records)
}

func TestIngestService_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("empty content is rejected", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewIngestService(store.ChunkStore(), nil, nil)

		_, err := svc.Ingest(ctx, domain.IngestRequest{Content: "   \n\t  "})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEmptyContent)
	})

	t.Run("short document becomes one chunk", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewIngestService(store.ChunkStore(), nil, nil)

		receipt, err := svc.Ingest(ctx, domain.IngestRequest{
			Content: "a short note",
			Title:   "Note",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, receipt.ChunksCreated)
		assert.Equal(t, 0, receipt.ChunksSkipped)
		assert.Equal(t, domain.Fingerprint("a short note"), receipt.DocumentHash)

		chunks, err := store.ChunkStore().ListChunks(ctx, DefaultSource, 10, 0)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "a short note", chunks[0].Content)
		assert.Equal(t, "Note", chunks[0].Title)
		assert.Equal(t, 0, chunks[0].ChunkIndex)
		assert.Equal(t, 1, chunks[0].ChunkCount)
		assert.NotEmpty(t, chunks[0].ID)
		assert.Positive(t, chunks[0].TokenCount)
	})

	t.Run("long document is chunked with shared hash", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewIngestService(store.ChunkStore(), nil, nil)

		content := strings.Repeat("Paragraph of knowledge worth keeping.\n\n", 200)
		receipt, err := svc.Ingest(ctx, domain.IngestRequest{Content: content})
		require.NoError(t, err)
		assert.Greater(t, receipt.ChunksCreated, 1)

		chunks, err := store.ChunkStore().ListChunks(ctx, DefaultSource, 0, 0)
		require.NoError(t, err)
		require.Len(t, chunks, receipt.ChunksCreated)
		for i, chunk := range chunks {
			assert.Equal(t, receipt.DocumentHash, chunk.DocumentHash)
			assert.Equal(t, i, chunk.ChunkIndex)
			assert.Equal(t, receipt.ChunksCreated, chunk.ChunkCount)
		}
	})

	t.Run("re-ingesting identical content is a no-op", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewIngestService(store.ChunkStore(), nil, nil)

		first, err := svc.Ingest(ctx, domain.IngestRequest{Content: "same document"})
		require.NoError(t, err)
		require.Equal(t, 1, first.ChunksCreated)

		second, err := svc.Ingest(ctx, domain.IngestRequest{Content: "same document"})
		require.NoError(t, err)
		assert.Equal(t, 0, second.ChunksCreated)
		assert.Equal(t, 1, second.ChunksSkipped)
		assert.Equal(t, first.DocumentHash, second.DocumentHash)

		chunks, err := store.ChunkStore().ListChunks(ctx, DefaultSource, 0, 0)
		require.NoError(t, err)
		assert.Len(t, chunks, 1)
	})

	t.Run("same content under another source is stored again", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewIngestService(store.ChunkStore(), nil, nil)

		_, err := svc.Ingest(ctx, domain.IngestRequest{Content: "shared text", Source: "notes"})
		require.NoError(t, err)

		receipt, err := svc.Ingest(ctx, domain.IngestRequest{Content: "shared text", Source: "transcript"})
		require.NoError(t, err)
		assert.Equal(t, 1, receipt.ChunksCreated)
		assert.Equal(t, 0, receipt.ChunksSkipped)
	})

	t.Run("worker is notified per chunk", func(t *testing.T) {
		store := memory.NewStore()
		worker := &recordingWorker{}
		svc := NewIngestService(store.ChunkStore(), nil, worker)

		receipt, err := svc.Ingest(ctx, domain.IngestRequest{Content: "notify me"})
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return worker.count() == receipt.ChunksCreated
		}, 2*time.Second, 10*time.Millisecond)

		worker.mu.Lock()
		defer worker.mu.Unlock()
		assert.Equal(t, ChunkTable, worker.tables[0])
		assert.Equal(t, "notify me", worker.records[0].Content)
	})

	t.Run("metadata is copied onto chunks", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewIngestService(store.ChunkStore(), nil, nil)

		_, err := svc.Ingest(ctx, domain.IngestRequest{
			Content:  "tagged note",
			Metadata: map[string]any{"topic": "testing"},
		})
		require.NoError(t, err)

		chunks, err := store.ChunkStore().ListChunks(ctx, DefaultSource, 0, 0)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "testing", chunks[0].Metadata["topic"])
	})
}
