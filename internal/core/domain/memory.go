package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Chunk is one stored segment of an ingested document. Chunks are the
// unit of search: each carries its own text, an optional embedding
// vector, and enough parent-document context to reassemble ordering.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Source labels the subsystem that produced the document
	// (e.g. "notes", "transcript", "course", "fact").
	Source string

	// SourcePath is the original location, if any (file path, URL).
	SourcePath string

	// Title is the human-readable document title, if any.
	Title string

	// Content is the text of this chunk.
	Content string

	// ChunkIndex is the 0-based position within the parent document.
	ChunkIndex int

	// ChunkCount is the total number of chunks for the parent document.
	ChunkCount int

	// DocumentHash is the content hash of the entire parent document.
	// This is the deduplication key, shared by all sibling chunks.
	DocumentHash string

	// TokenCount is the approximate token count of Content.
	TokenCount int

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// Embedding is the vector representation for semantic search.
	// Nil until the embedding worker has processed the row.
	Embedding []float32

	// CreatedAt is when the chunk was inserted.
	CreatedAt time.Time
}

// IngestRequest describes one document to ingest.
type IngestRequest struct {
	// Content is the raw document text (required).
	Content string

	// Source labels the producing subsystem. Defaults to "notes".
	Source string

	// SourcePath is the original location, if any.
	SourcePath string

	// Title is the document title, if any.
	Title string

	// Metadata is copied onto every chunk row.
	Metadata map[string]any
}

// IngestReceipt summarises the outcome of one ingestion call.
type IngestReceipt struct {
	// ChunksCreated is the number of chunk rows inserted.
	ChunksCreated int `json:"chunks_created"`

	// ChunksSkipped is 1 when the document was already ingested.
	ChunksSkipped int `json:"chunks_skipped"`

	// DocumentHash is the content hash of the document.
	DocumentHash string `json:"document_hash"`
}

// Fingerprint computes the content address of a document: a sha256
// digest over the full raw text. Identical content always yields an
// identical fingerprint, which makes re-ingestion detectable without
// re-chunking.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// EstimateTokens approximates the token count of text using the common
// 4-characters-per-token heuristic. Used for chunk accounting and cost
// telemetry, not billing.
func EstimateTokens(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	n := len(trimmed) / 4
	if n == 0 {
		n = 1
	}
	return n
}
