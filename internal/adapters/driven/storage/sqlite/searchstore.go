package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
)

// searchStore implements driven.SearchStore.
type searchStore struct {
	store *Store
}

var _ driven.SearchStore = (*searchStore)(nil)

// Tables returns the allow-listed searchable table names.
func (s *searchStore) Tables() []string {
	out := make([]string, len(searchableTables))
	copy(out, searchableTables)
	return out
}

// validTable reports whether the table is allow-listed. Callers must
// check this before interpolating the name into SQL.
func validTable(table string) bool {
	for _, t := range searchableTables {
		if t == table {
			return true
		}
	}
	return false
}

// GetRow retrieves a row by table and ID.
func (s *searchStore) GetRow(ctx context.Context, table, id string) (*driven.Row, error) {
	if !validTable(table) {
		return nil, fmt.Errorf("table %q: %w", table, domain.ErrUnknownTable)
	}

	query := fmt.Sprintf("SELECT id, title, content FROM %s WHERE id = ?", table)

	var row driven.Row
	if err := s.store.db.QueryRowContext(ctx, query, id).Scan(&row.ID, &row.Title, &row.Content); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning row: %w", err)
	}
	return &row, nil
}

// UpdateEmbedding attaches a vector to a single row keyed by id. This
// is the only mutation of stored rows the subsystem performs.
func (s *searchStore) UpdateEmbedding(ctx context.Context, table, id string, embedding []float32) error {
	if !validTable(table) {
		return fmt.Errorf("table %q: %w", table, domain.ErrUnknownTable)
	}

	query := fmt.Sprintf("UPDATE %s SET embedding = ? WHERE id = ?", table)

	result, err := s.store.db.ExecContext(ctx, query, float32SliceToBytes(embedding), id)
	if err != nil {
		return fmt.Errorf("updating embedding: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PendingEmbeddings returns up to limit rows lacking a vector, oldest
// first.
func (s *searchStore) PendingEmbeddings(ctx context.Context, table string, limit int) ([]driven.Record, error) {
	if !validTable(table) {
		return nil, fmt.Errorf("table %q: %w", table, domain.ErrUnknownTable)
	}
	if limit <= 0 {
		limit = -1
	}

	query := fmt.Sprintf(`
		SELECT id, content FROM %s
		WHERE embedding IS NULL
		ORDER BY created_at, id
		LIMIT ?
	`, table)

	rows, err := s.store.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying pending embeddings: %w", err)
	}
	defer rows.Close()

	var records []driven.Record //nolint:prealloc // size unknown from query
	for rows.Next() {
		var record driven.Record
		if err := rows.Scan(&record.ID, &record.Content); err != nil {
			return nil, fmt.Errorf("scanning pending row: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending rows: %w", err)
	}

	return records, nil
}

// FullTextSearch ranks rows by bm25 relevance from the table's FTS5
// shadow index. Scores are negated bm25 values so that higher is
// better, matching the vector side.
func (s *searchStore) FullTextSearch(ctx context.Context, table, query string, limit int) ([]driven.SearchHit, error) {
	if !validTable(table) {
		return nil, fmt.Errorf("table %q: %w", table, domain.ErrUnknownTable)
	}
	if limit <= 0 {
		limit = -1
	}

	stmt := fmt.Sprintf(`
		SELECT t.id, bm25(%[1]s_fts) AS rank
		FROM %[1]s_fts f
		JOIN %[1]s t ON t.rowid = f.rowid
		WHERE %[1]s_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, table)

	rows, err := s.store.db.QueryContext(ctx, stmt, ftsQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("full-text query: %w", err)
	}
	defer rows.Close()

	var hits []driven.SearchHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var hit driven.SearchHit
		var rank float64
		if err := rows.Scan(&hit.ID, &rank); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		hit.Score = -rank
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hits: %w", err)
	}

	return hits, nil
}

// VectorSearch scans the table's embeddings and ranks rows by cosine
// similarity against the query vector, dropping rows below threshold.
func (s *searchStore) VectorSearch(ctx context.Context, table string, query []float32, limit int, threshold float64) ([]driven.VectorHit, error) {
	if !validTable(table) {
		return nil, fmt.Errorf("table %q: %w", table, domain.ErrUnknownTable)
	}

	stmt := fmt.Sprintf("SELECT id, embedding FROM %s WHERE embedding IS NOT NULL", table)

	rows, err := s.store.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}

		sim := cosineSimilarity(query, bytesToFloat32Slice(blob))
		if threshold > 0 && sim < threshold {
			continue
		}
		hits = append(hits, driven.VectorHit{ID: id, Similarity: sim})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
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

// ftsQuery wraps every whitespace-separated term in double quotes so
// user input cannot break FTS5 query syntax.
func ftsQuery(query string) string {
	fields := strings.Fields(strings.ReplaceAll(query, `"`, " "))
	for i, f := range fields {
		fields[i] = `"` + f + `"`
	}
	return strings.Join(fields, " ")
}
