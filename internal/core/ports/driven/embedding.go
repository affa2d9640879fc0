package driven

import "context"

// EmbeddingResult carries a generated vector together with the token
// usage the provider reported for it. Tokens feed advisory cost
// telemetry only.
type EmbeddingResult struct {
	// Vector is the fixed-dimension embedding.
	Vector []float32

	// PromptTokens is the provider-reported token count for the input.
	PromptTokens int
}

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, semantic search and the
// embedding worker are disabled.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) (EmbeddingResult, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([]EmbeddingResult, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	// Query and document embeddings share the same vector space.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
