// Package memory provides in-memory implementations of the storage
// ports. Used in tests and as a reference for the port contracts; data
// does not survive process restarts.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
)

// SearchableTables is the allow-list shared with the SQLite store.
var SearchableTables = []string{"memories", "messages", "documents", "summaries"}

// row is one stored searchable row.
type row struct {
	id        string
	title     string
	content   string
	embedding []float32
	createdAt time.Time
	seq       int
}

// Store is a unified in-memory storage providing access to all store
// interfaces through wrapper types, mirroring the SQLite store.
type Store struct {
	mu     sync.RWMutex
	tables map[string]map[string]*row
	chunks map[string]domain.Chunk

	entities map[string]*domain.Entity // keyed by lowercase name
	edges    map[[3]string]*domain.Edge

	costs []driven.CostEntry

	seq int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	tables := make(map[string]map[string]*row, len(SearchableTables))
	for _, t := range SearchableTables {
		tables[t] = make(map[string]*row)
	}
	return &Store{
		tables:   tables,
		chunks:   make(map[string]domain.Chunk),
		entities: make(map[string]*domain.Entity),
		edges:    make(map[[3]string]*domain.Edge),
	}
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// SearchStore returns a SearchStore interface backed by this store.
func (s *Store) SearchStore() driven.SearchStore {
	return &searchStore{store: s}
}

// GraphStore returns a GraphStore interface backed by this store.
func (s *Store) GraphStore() driven.GraphStore {
	return &graphStore{store: s}
}

// CostLog returns a CostLog interface backed by this store.
func (s *Store) CostLog() driven.CostLog {
	return &costLog{store: s}
}

// AddRow inserts a row directly into a searchable table. Intended for
// tests seeding non-chunk tables such as messages or summaries.
func (s *Store) AddRow(table, id, title, content string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.tables[table]
	if !ok {
		return domain.ErrUnknownTable
	}
	s.seq++
	rows[id] = &row{
		id:        id,
		title:     title,
		content:   content,
		embedding: embedding,
		createdAt: time.Now().UTC(),
		seq:       s.seq,
	}
	return nil
}

// CostEntries returns a copy of all recorded cost entries.
func (s *Store) CostEntries() []driven.CostEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]driven.CostEntry, len(s.costs))
	copy(out, s.costs)
	return out
}

// EntityCount returns the number of stored entities.
func (s *Store) EntityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// EdgeCount returns the number of stored edges.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// ==================== Chunk Store ====================

type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// InsertChunks stores all chunks of one document atomically.
func (s *chunkStore) InsertChunks(_ context.Context, chunks []domain.Chunk) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, chunk := range chunks {
		s.store.chunks[chunk.ID] = chunk
		s.store.seq++
		s.store.tables["memories"][chunk.ID] = &row{
			id:        chunk.ID,
			title:     chunk.Title,
			content:   chunk.Content,
			embedding: chunk.Embedding,
			createdAt: chunk.CreatedAt,
			seq:       s.store.seq,
		}
	}
	return nil
}

// HasDocument probes for a chunk_index = 0 row with the hash and source.
func (s *chunkStore) HasDocument(_ context.Context, source, documentHash string) (bool, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	for _, chunk := range s.store.chunks {
		if chunk.ChunkIndex == 0 && chunk.Source == source && chunk.DocumentHash == documentHash {
			return true, nil
		}
	}
	return false, nil
}

// GetChunk retrieves a chunk by ID.
func (s *chunkStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	chunk, ok := s.store.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	// Keep the embedding current with the searchable row.
	if r, ok := s.store.tables["memories"][id]; ok {
		chunk.Embedding = r.embedding
	}
	return &chunk, nil
}

// ListChunks returns chunks for a source ordered by insertion.
func (s *chunkStore) ListChunks(_ context.Context, source string, limit, offset int) ([]domain.Chunk, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var all []domain.Chunk
	for _, chunk := range s.store.chunks {
		if chunk.Source == source {
			all = append(all, chunk)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].DocumentHash != all[j].DocumentHash {
			return all[i].DocumentHash < all[j].DocumentHash
		}
		return all[i].ChunkIndex < all[j].ChunkIndex
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ==================== Search Store ====================

type searchStore struct {
	store *Store
}

var _ driven.SearchStore = (*searchStore)(nil)

// Tables returns the allow-listed searchable table names.
func (s *searchStore) Tables() []string {
	out := make([]string, len(SearchableTables))
	copy(out, SearchableTables)
	return out
}

// GetRow retrieves a row by table and ID.
func (s *searchStore) GetRow(_ context.Context, table, id string) (*driven.Row, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	rows, ok := s.store.tables[table]
	if !ok {
		return nil, domain.ErrUnknownTable
	}
	r, ok := rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &driven.Row{ID: r.id, Title: r.title, Content: r.content}, nil
}

// UpdateEmbedding attaches a vector to a single row.
func (s *searchStore) UpdateEmbedding(_ context.Context, table, id string, embedding []float32) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	rows, ok := s.store.tables[table]
	if !ok {
		return domain.ErrUnknownTable
	}
	r, ok := rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.embedding = embedding
	return nil
}

// PendingEmbeddings returns rows without a vector, oldest first.
func (s *searchStore) PendingEmbeddings(_ context.Context, table string, limit int) ([]driven.Record, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	rows, ok := s.store.tables[table]
	if !ok {
		return nil, domain.ErrUnknownTable
	}

	var pending []*row
	for _, r := range rows {
		if len(r.embedding) == 0 {
			pending = append(pending, r)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].seq < pending[j].seq })

	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	records := make([]driven.Record, len(pending))
	for i, r := range pending {
		records[i] = driven.Record{ID: r.id, Content: r.content}
	}
	return records, nil
}

// FullTextSearch ranks rows by naive term-frequency relevance.
func (s *searchStore) FullTextSearch(_ context.Context, table, query string, limit int) ([]driven.SearchHit, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	rows, ok := s.store.tables[table]
	if !ok {
		return nil, domain.ErrUnknownTable
	}

	terms := strings.Fields(strings.ToLower(query))
	var hits []driven.SearchHit
	for _, r := range rows {
		content := strings.ToLower(r.content)
		score := 0.0
		for _, term := range terms {
			score += float64(strings.Count(content, term))
		}
		if score > 0 {
			hits = append(hits, driven.SearchHit{ID: r.id, Score: score})
		}
	}

	sortHitsByScore(hits)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// VectorSearch ranks rows by cosine similarity against the query.
func (s *searchStore) VectorSearch(_ context.Context, table string, query []float32, limit int, threshold float64) ([]driven.VectorHit, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	rows, ok := s.store.tables[table]
	if !ok {
		return nil, domain.ErrUnknownTable
	}

	var hits []driven.VectorHit
	for _, r := range rows {
		if len(r.embedding) == 0 {
			continue
		}
		sim := cosineSimilarity(query, r.embedding)
		if threshold > 0 && sim < threshold {
			continue
		}
		hits = append(hits, driven.VectorHit{ID: r.id, Similarity: sim})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ID < hits[j].ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// sortHitsByScore orders full-text hits descending with a deterministic
// ID tie-break.
func sortHitsByScore(hits []driven.SearchHit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
}

// cosineSimilarity computes the cosine of two vectors, 0 when either is
// zero-length or the dimensions differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
