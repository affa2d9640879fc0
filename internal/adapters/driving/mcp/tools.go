package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
)

// IngestInput is the input schema for the memory_ingest tool.
type IngestInput struct {
	Content string `json:"content" jsonschema:"the document text to remember"`
	Source  string `json:"source,omitempty" jsonschema:"label of the producing subsystem (default notes)"`
	Title   string `json:"title,omitempty" jsonschema:"optional document title"`
}

// IngestOutput is the output schema for the memory_ingest tool.
type IngestOutput struct {
	ChunksCreated int    `json:"chunks_created"`
	ChunksSkipped int    `json:"chunks_skipped"`
	DocumentHash  string `json:"document_hash"`
}

// SearchInput is the input schema for the memory_search tool.
type SearchInput struct {
	Query  string   `json:"query" jsonschema:"the search query"`
	Tables []string `json:"tables,omitempty" jsonschema:"tables to search (default all)"`
	Table  string   `json:"table,omitempty" jsonschema:"single table to search (alias for tables)"`
	Limit  int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the memory_search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ID      string  `json:"id"`
	Table   string  `json:"table"`
	Title   string  `json:"title,omitempty"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// GraphLookupInput is the input schema for the graph_lookup tool.
type GraphLookupInput struct {
	Name string `json:"name" jsonschema:"entity name to look up (case-insensitive)"`
}

// GraphLookupOutput is the output schema for the graph_lookup tool.
type GraphLookupOutput struct {
	Found       bool         `json:"found"`
	Name        string       `json:"name,omitempty"`
	Type        string       `json:"type,omitempty"`
	Description string       `json:"description,omitempty"`
	Outgoing    []EdgeOutput `json:"outgoing,omitempty"`
	Incoming    []EdgeOutput `json:"incoming,omitempty"`
}

// EdgeOutput represents a single graph edge.
type EdgeOutput struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Relation string `json:"relation"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "memory_ingest",
		Description: "Store a document in long-term memory, chunked and deduplicated",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "memory_search",
		Description: "Search stored memories with hybrid keyword and semantic retrieval",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "graph_lookup",
		Description: "Look up an entity and its relationships in the knowledge graph",
	}, s.handleGraphLookup)
}

// handleIngest handles the memory_ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	receipt, err := s.ports.Memory.Ingest(ctx, domain.IngestRequest{
		Content: input.Content,
		Source:  input.Source,
		Title:   input.Title,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		ChunksCreated: receipt.ChunksCreated,
		ChunksSkipped: receipt.ChunksSkipped,
		DocumentHash:  receipt.DocumentHash,
	}, nil
}

// handleSearch handles the memory_search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	tables := input.Tables
	if len(tables) == 0 && input.Table != "" {
		tables = []string{input.Table}
	}

	opts := domain.SearchOptions{
		Tables:     tables,
		MatchCount: limit,
	}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			ID:      results[i].ID,
			Table:   results[i].Table,
			Title:   results[i].Title,
			Content: results[i].Content,
			Score:   results[i].Score,
		}
	}

	return nil, output, nil
}

// handleGraphLookup handles the graph_lookup tool invocation. An
// unknown entity is reported as not found rather than an error, so
// assistants can probe freely.
func (s *Server) handleGraphLookup(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GraphLookupInput,
) (*mcp.CallToolResult, GraphLookupOutput, error) {
	if s.ports.Graph == nil {
		return nil, GraphLookupOutput{Found: false}, nil
	}

	neighborhood, err := s.ports.Graph.Neighbors(ctx, input.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, GraphLookupOutput{Found: false}, nil
		}
		return nil, GraphLookupOutput{}, err
	}

	output := GraphLookupOutput{
		Found:       true,
		Name:        neighborhood.Entity.Name,
		Type:        string(neighborhood.Entity.Type),
		Description: neighborhood.Entity.Description,
		Outgoing:    make([]EdgeOutput, len(neighborhood.Outgoing)),
		Incoming:    make([]EdgeOutput, len(neighborhood.Incoming)),
	}
	for i, edge := range neighborhood.Outgoing {
		output.Outgoing[i] = EdgeOutput{SourceID: edge.SourceID, TargetID: edge.TargetID, Relation: edge.Relation}
	}
	for i, edge := range neighborhood.Incoming {
		output.Incoming[i] = EdgeOutput{SourceID: edge.SourceID, TargetID: edge.TargetID, Relation: edge.Relation}
	}

	return nil, output, nil
}
