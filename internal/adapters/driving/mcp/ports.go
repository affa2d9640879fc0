package mcp

import (
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Memory ingests documents into chunk storage.
	Memory driving.MemoryService

	// Search answers retrieval queries.
	Search driving.SearchService

	// Graph answers relationship lookups. Optional: when nil the
	// graph_lookup tool reports entities as not found.
	Graph driving.GraphService

	// Chunks reads stored chunk rows for resource serving. Optional.
	Chunks driven.ChunkStore

	// Rows exposes the searchable table names for resource serving.
	// Optional.
	Rows driven.SearchStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Memory == nil {
		return ErrMissingMemoryService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Graph, Chunks and Rows are optional
	return nil
}
