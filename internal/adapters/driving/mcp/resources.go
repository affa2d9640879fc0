package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for mnemo resources.
	uriScheme = "mnemo://"

	// sourceListLimit caps how many chunks a source listing returns.
	sourceListLimit = 200
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing searchable tables.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "tables",
		Name:        "tables",
		Description: "List of searchable memory tables",
		MIMEType:    "application/json",
	}, s.handleTablesResource)

	// Template for chunks grouped by source.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sources/{source}/chunks",
		Name:        "source-chunks",
		Description: "Stored chunks for a specific source",
		MIMEType:    "application/json",
	}, s.handleSourceChunksResource)

	// Template for chunk content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "chunks/{chunkId}",
		Name:        "chunk-content",
		Description: "Content of a specific chunk",
		MIMEType:    "text/plain",
	}, s.handleChunkContentResource)
}

// handleTablesResource returns the searchable table names.
func (s *Server) handleTablesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Rows == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	data, err := json.MarshalIndent(s.ports.Rows.Tables(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling tables: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleSourceChunksResource returns stored chunks for a specific source.
func (s *Server) handleSourceChunksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Chunks == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract source from URI: mnemo://sources/{source}/chunks
	source := extractSource(req.Params.URI)
	if source == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chunks, err := s.ports.Chunks.ListChunks(ctx, source, sourceListLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}

	// Build simplified chunk list.
	type chunkInfo struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		ChunkIndex int    `json:"chunk_index"`
		ChunkCount int    `json:"chunk_count"`
	}

	infos := make([]chunkInfo, len(chunks))
	for i := range chunks {
		infos[i] = chunkInfo{
			ID:         chunks[i].ID,
			Title:      chunks[i].Title,
			ChunkIndex: chunks[i].ChunkIndex,
			ChunkCount: chunks[i].ChunkCount,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling chunks: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleChunkContentResource returns the content of a specific chunk.
func (s *Server) handleChunkContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Chunks == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract chunkId from URI: mnemo://chunks/{chunkId}
	chunkID := extractChunkID(req.Params.URI)
	if chunkID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chunk, err := s.ports.Chunks.GetChunk(ctx, chunkID)
	if err != nil {
		return nil, fmt.Errorf("getting chunk: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     chunk.Content,
		}},
	}, nil
}

// extractSource extracts the source from a URI like mnemo://sources/{source}/chunks.
func extractSource(uri string) string {
	const prefix = uriScheme + "sources/"
	const suffix = "/chunks"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}

// extractChunkID extracts the chunk ID from a URI like mnemo://chunks/{chunkId}.
func extractChunkID(uri string) string {
	const prefix = uriScheme + "chunks/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
