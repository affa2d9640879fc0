package driven

import (
	"context"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
)

// GraphStore persists extracted entities and edges.
// Upserts rely on the store's native conflict resolution, which keeps
// them correct under concurrent resolution of the same entity name.
type GraphStore interface {
	// ResolveEntity finds an entity by case-insensitive name match or
	// creates it. An existing entity's description and type are
	// refreshed when the extraction supplies non-empty values.
	// Resolution is idempotent: the same name always yields the same ID.
	ResolveEntity(ctx context.Context, name string, typ domain.EntityType, description string) (*domain.Entity, error)

	// GetEntityByName retrieves an entity by case-insensitive name.
	GetEntityByName(ctx context.Context, name string) (*domain.Entity, error)

	// UpsertEdge inserts the (source, target, relation) triple or, if
	// it already exists, bumps its update timestamp.
	UpsertEdge(ctx context.Context, sourceID, targetID, relation string) error

	// EdgesFrom returns the directed edges leaving an entity.
	EdgesFrom(ctx context.Context, entityID string) ([]domain.Edge, error)

	// EdgesTo returns the directed edges arriving at an entity.
	EdgesTo(ctx context.Context, entityID string) ([]domain.Edge, error)
}
