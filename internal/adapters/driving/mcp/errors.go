// Package mcp provides an MCP (Model Context Protocol) server adapter
// for mnemo. It enables AI assistants to ingest into and retrieve from
// the local memory store.
package mcp

import "errors"

// ErrMissingMemoryService is returned when the memory service is not provided.
var ErrMissingMemoryService = errors.New("mcp: memory service is required")

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
