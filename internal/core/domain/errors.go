package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyContent indicates an ingestion call with no usable text.
	ErrEmptyContent = errors.New("empty content")

	// ErrUnknownTable indicates a table name outside the allow-list.
	ErrUnknownTable = errors.New("unknown table")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic search and the embedding worker are disabled.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Graph extraction is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
