package domain

import "time"

// EntityType is the closed set of entity categories the extractor may
// assign. Anything outside this set is normalised to EntityConcept.
type EntityType string

const (
	EntityPerson   EntityType = "person"
	EntityOrg      EntityType = "org"
	EntityProgram  EntityType = "program"
	EntityTool     EntityType = "tool"
	EntityConcept  EntityType = "concept"
	EntityLocation EntityType = "location"
)

// ValidEntityType reports whether t is one of the closed entity types.
func ValidEntityType(t EntityType) bool {
	switch t {
	case EntityPerson, EntityOrg, EntityProgram, EntityTool, EntityConcept, EntityLocation:
		return true
	}
	return false
}

// Entity is a deduplicated named thing in the property graph. Names are
// unique under case-insensitive comparison: resolving an existing name
// always returns the same row.
type Entity struct {
	// ID is the stable identifier.
	ID string

	// Name is the canonical display name.
	Name string

	// Type is one of the closed EntityType values.
	Type EntityType

	// Description is optional free text, refreshed by extraction.
	Description string

	// UpdatedAt is bumped on every resolution that touches the row.
	UpdatedAt time.Time
}

// Edge is a directed, typed relationship between two entities. The
// (SourceID, TargetID, Relation) triple is unique; re-asserting the same
// fact bumps UpdatedAt instead of inserting a duplicate.
type Edge struct {
	// SourceID references the source entity.
	SourceID string

	// TargetID references the target entity.
	TargetID string

	// Relation is a free-text lowercase verb phrase, e.g. "created".
	Relation string

	// UpdatedAt is bumped whenever the triple is re-derived.
	UpdatedAt time.Time
}

// EntityNeighborhood is an entity together with its incident edges,
// returned by relationship lookups.
type EntityNeighborhood struct {
	Entity   Entity
	Outgoing []Edge
	Incoming []Edge
}
