package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
)

type graphStore struct {
	store *Store
}

var _ driven.GraphStore = (*graphStore)(nil)

// ResolveEntity finds an entity by case-insensitive name or creates it.
func (s *graphStore) ResolveEntity(_ context.Context, name string, typ domain.EntityType, description string) (*domain.Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	if !domain.ValidEntityType(typ) {
		typ = domain.EntityConcept
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	key := strings.ToLower(name)
	if existing, ok := s.store.entities[key]; ok {
		if description != "" {
			existing.Description = description
		}
		if typ != domain.EntityConcept {
			existing.Type = typ
		}
		existing.UpdatedAt = time.Now().UTC()
		copied := *existing
		return &copied, nil
	}

	entity := &domain.Entity{
		ID:          uuid.New().String(),
		Name:        name,
		Type:        typ,
		Description: description,
		UpdatedAt:   time.Now().UTC(),
	}
	s.store.entities[key] = entity
	copied := *entity
	return &copied, nil
}

// GetEntityByName retrieves an entity by case-insensitive name.
func (s *graphStore) GetEntityByName(_ context.Context, name string) (*domain.Entity, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	entity, ok := s.store.entities[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *entity
	return &copied, nil
}

// UpsertEdge inserts the triple or bumps its update timestamp.
func (s *graphStore) UpsertEdge(_ context.Context, sourceID, targetID, relation string) error {
	if sourceID == "" || targetID == "" || relation == "" {
		return domain.ErrInvalidInput
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	key := [3]string{sourceID, targetID, relation}
	if existing, ok := s.store.edges[key]; ok {
		existing.UpdatedAt = time.Now().UTC()
		return nil
	}
	s.store.edges[key] = &domain.Edge{
		SourceID:  sourceID,
		TargetID:  targetID,
		Relation:  relation,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

// EdgesFrom returns the directed edges leaving an entity.
func (s *graphStore) EdgesFrom(_ context.Context, entityID string) ([]domain.Edge, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var edges []domain.Edge
	for _, edge := range s.store.edges {
		if edge.SourceID == entityID {
			edges = append(edges, *edge)
		}
	}
	return edges, nil
}

// EdgesTo returns the directed edges arriving at an entity.
func (s *graphStore) EdgesTo(_ context.Context, entityID string) ([]domain.Edge, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var edges []domain.Edge
	for _, edge := range s.store.edges {
		if edge.TargetID == entityID {
			edges = append(edges, *edge)
		}
	}
	return edges, nil
}

// ==================== Cost Log ====================

type costLog struct {
	store *Store
}

var _ driven.CostLog = (*costLog)(nil)

// Record appends a usage entry.
func (s *costLog) Record(_ context.Context, entry driven.CostEntry) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.costs = append(s.store.costs, entry)
	return nil
}
