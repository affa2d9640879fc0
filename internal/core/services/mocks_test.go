package services

import (
	"context"
	"errors"
	"sync"

	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
)

// stubEmbedder is a deterministic driven.EmbeddingService for tests.
// Vectors are looked up by text; unknown text falls back to vector.
type stubEmbedder struct {
	mu      sync.Mutex
	vector  []float32
	vectors map[string][]float32
	failOn  map[string]bool
	tokens  int
	calls   []string
	batches int
}

var _ driven.EmbeddingService = (*stubEmbedder)(nil)

func (e *stubEmbedder) Embed(_ context.Context, text string) (driven.EmbeddingResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, text)
	if e.failOn[text] {
		return driven.EmbeddingResult{}, errors.New("provider unavailable")
	}
	vector := e.vector
	if v, ok := e.vectors[text]; ok {
		vector = v
	}
	return driven.EmbeddingResult{Vector: vector, PromptTokens: e.tokens}, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]driven.EmbeddingResult, error) {
	e.mu.Lock()
	e.batches++
	e.mu.Unlock()

	results := make([]driven.EmbeddingResult, len(texts))
	for i, text := range texts {
		result, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		results[i] = result
	}
	return results, nil
}

func (e *stubEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func (e *stubEmbedder) batchCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.batches
}

func (e *stubEmbedder) Dimensions() int { return 3 }

func (e *stubEmbedder) ModelName() string { return "stub-embed" }

func (e *stubEmbedder) Ping(_ context.Context) error { return nil }

func (e *stubEmbedder) Close() error { return nil }

// stubLLM is a scripted driven.LLMService. Outputs are returned in
// order, one per Generate call; prompts are captured for inspection.
type stubLLM struct {
	mu      sync.Mutex
	outputs []string
	errOn   map[int]bool // call index -> fail
	prompts []string
}

var _ driven.LLMService = (*stubLLM)(nil)

func (l *stubLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	call := len(l.prompts)
	l.prompts = append(l.prompts, prompt)

	if l.errOn[call] {
		return "", errors.New("llm unavailable")
	}
	if call < len(l.outputs) {
		return l.outputs[call], nil
	}
	return "", nil
}

func (l *stubLLM) ModelName() string { return "stub-llm" }

func (l *stubLLM) Ping(_ context.Context) error { return nil }

func (l *stubLLM) Close() error { return nil }

// failingCostLog always rejects writes.
type failingCostLog struct{}

func (failingCostLog) Record(_ context.Context, _ driven.CostEntry) error {
	return errors.New("cost log closed")
}

// stubPromptStore serves a fixed prompt body for every name.
type stubPromptStore struct {
	prompt string
	err    error
}

func (s *stubPromptStore) Load(_ string) (string, error) {
	return s.prompt, s.err
}

func (s *stubPromptStore) Reload() {}
