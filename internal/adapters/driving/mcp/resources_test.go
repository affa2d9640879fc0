package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
)

func TestExtractSource(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid source chunks URI",
			uri:      "mnemo://sources/notes/chunks",
			expected: "notes",
		},
		{
			name:     "invalid prefix",
			uri:      "file://sources/notes/chunks",
			expected: "",
		},
		{
			name:     "missing chunks suffix",
			uri:      "mnemo://sources/notes",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractSource(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExtractChunkID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid chunk URI",
			uri:      "mnemo://chunks/chunk-456",
			expected: "chunk-456",
		},
		{
			name:     "invalid prefix",
			uri:      "file://chunks/chunk-456",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractChunkID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleTablesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil search store returns empty list", func(t *testing.T) {
		ports := validPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("mnemo://tables")
		result, err := server.handleTablesResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns table names", func(t *testing.T) {
		ports := validPorts()
		ports.Rows = &mockSearchStore{
			tables: []string{"memories", "messages", "documents", "summaries"},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("mnemo://tables")
		result, err := server.handleTablesResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "memories")
		assert.Contains(t, result.Contents[0].Text, "summaries")
	})
}

func TestServer_handleSourceChunksResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil chunk store returns not found", func(t *testing.T) {
		ports := validPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("mnemo://sources/notes/chunks")
		_, err = server.handleSourceChunksResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		ports := validPorts()
		ports.Chunks = &mockChunkStore{}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("mnemo://invalid/uri")
		_, err = server.handleSourceChunksResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("returns chunks successfully", func(t *testing.T) {
		ports := validPorts()
		ports.Chunks = &mockChunkStore{
			chunks: []domain.Chunk{
				{ID: "chunk-1", Title: "README", ChunkIndex: 0, ChunkCount: 2},
				{ID: "chunk-2", Title: "README", ChunkIndex: 1, ChunkCount: 2},
			},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("mnemo://sources/notes/chunks")
		result, err := server.handleSourceChunksResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "chunk-1")
		assert.Contains(t, result.Contents[0].Text, "chunk-2")
		assert.Contains(t, result.Contents[0].Text, "README")
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		ports := validPorts()
		ports.Chunks = &mockChunkStore{err: errors.New("storage error")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("mnemo://sources/notes/chunks")
		_, err = server.handleSourceChunksResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing chunks")
	})

	t.Run("handles empty chunk list", func(t *testing.T) {
		ports := validPorts()
		ports.Chunks = &mockChunkStore{chunks: []domain.Chunk{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("mnemo://sources/notes/chunks")
		result, err := server.handleSourceChunksResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})
}

func TestServer_handleChunkContentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil chunk store returns not found", func(t *testing.T) {
		ports := validPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("mnemo://chunks/chunk-123")
		_, err = server.handleChunkContentResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		ports := validPorts()
		ports.Chunks = &mockChunkStore{}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("mnemo://invalid/uri")
		_, err = server.handleChunkContentResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("returns content successfully", func(t *testing.T) {
		ports := validPorts()
		ports.Chunks = &mockChunkStore{
			chunk: &domain.Chunk{
				ID:      "chunk-123",
				Content: "Attention is all you need.",
			},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("mnemo://chunks/chunk-123")
		result, err := server.handleChunkContentResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "Attention is all you need.", result.Contents[0].Text)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
	})

	t.Run("returns error on get failure", func(t *testing.T) {
		ports := validPorts()
		ports.Chunks = &mockChunkStore{err: errors.New("chunk missing")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("mnemo://chunks/chunk-123")
		_, err = server.handleChunkContentResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting chunk")
	})
}
