package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
)

// graphStore implements driven.GraphStore.
type graphStore struct {
	store *Store
}

var _ driven.GraphStore = (*graphStore)(nil)

// ResolveEntity upserts an entity keyed by case-insensitive name and
// returns the canonical stored row. Re-resolving refreshes the
// description when a non-empty one arrives, and the type when the new
// extraction is more specific than the generic concept fallback.
func (g *graphStore) ResolveEntity(ctx context.Context, name string, typ domain.EntityType, description string) (*domain.Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("entity name: %w", domain.ErrInvalidInput)
	}

	if !domain.ValidEntityType(typ) {
		typ = domain.EntityConcept
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO entities (id, name, type, description, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = CASE WHEN excluded.description != '' THEN excluded.description ELSE entities.description END,
			type        = CASE WHEN excluded.type != 'concept' THEN excluded.type ELSE entities.type END,
			updated_at  = excluded.updated_at
	`
	_, err := g.store.db.ExecContext(ctx, query,
		uuid.New().String(), name, string(typ), description, now)
	if err != nil {
		return nil, fmt.Errorf("resolving entity: %w", err)
	}

	return g.GetEntityByName(ctx, name)
}

// GetEntityByName looks up an entity by case-insensitive name.
func (g *graphStore) GetEntityByName(ctx context.Context, name string) (*domain.Entity, error) {
	query := `
		SELECT id, name, type, description, updated_at
		FROM entities
		WHERE name = ? COLLATE NOCASE
	`

	entity, err := scanEntity(g.store.db.QueryRowContext(ctx, query, strings.TrimSpace(name)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning entity: %w", err)
	}
	return entity, nil
}

// UpsertEdge inserts a directed, typed edge, bumping updated_at when
// the same (source, target, relation) triple is asserted again.
func (g *graphStore) UpsertEdge(ctx context.Context, sourceID, targetID, relation string) error {
	if sourceID == "" || targetID == "" || relation == "" {
		return fmt.Errorf("edge fields: %w", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO edges (source_id, target_id, relation, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_id, target_id, relation) DO UPDATE SET
			updated_at = excluded.updated_at
	`
	if _, err := g.store.db.ExecContext(ctx, query,
		sourceID, targetID, relation, now); err != nil {
		return fmt.Errorf("upserting edge: %w", err)
	}
	return nil
}

// EdgesFrom returns all outbound edges of an entity.
func (g *graphStore) EdgesFrom(ctx context.Context, entityID string) ([]domain.Edge, error) {
	return g.queryEdges(ctx, "source_id", entityID)
}

// EdgesTo returns all inbound edges of an entity.
func (g *graphStore) EdgesTo(ctx context.Context, entityID string) ([]domain.Edge, error) {
	return g.queryEdges(ctx, "target_id", entityID)
}

func (g *graphStore) queryEdges(ctx context.Context, column, entityID string) ([]domain.Edge, error) {
	query := fmt.Sprintf(`
		SELECT source_id, target_id, relation, updated_at
		FROM edges
		WHERE %s = ?
		ORDER BY relation, source_id, target_id
	`, column)

	rows, err := g.store.db.QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	var edges []domain.Edge //nolint:prealloc // size unknown from query
	for rows.Next() {
		var edge domain.Edge
		if err := rows.Scan(&edge.SourceID, &edge.TargetID, &edge.Relation,
			&edge.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		edges = append(edges, edge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating edges: %w", err)
	}

	return edges, nil
}

func scanEntity(row *sql.Row) (*domain.Entity, error) {
	var entity domain.Entity
	var entityType string
	if err := row.Scan(&entity.ID, &entity.Name, &entityType,
		&entity.Description, &entity.UpdatedAt); err != nil {
		return nil, err
	}
	entity.Type = domain.EntityType(entityType)
	return &entity, nil
}
