// Package ai builds embedding and LLM provider adapters from
// configuration.
package ai

import (
	"fmt"

	ollamaembed "github.com/mnemo-labs/mnemo-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/mnemo-labs/mnemo-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/mnemo-labs/mnemo-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/mnemo-labs/mnemo-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/mnemo-labs/mnemo-cli/internal/adapters/driven/llm/openai"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
)

// NewEmbeddingService builds the embedding provider named by
// embedding.provider. Ollama is the default: it runs locally and needs
// no credentials.
func NewEmbeddingService(cfg driven.ConfigStore) (driven.EmbeddingService, error) {
	switch provider := cfg.GetString("embedding.provider"); provider {
	case "", "ollama":
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		}), nil

	case "openai":
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     cfg.GetString("embedding.api_key"),
			BaseURL:    cfg.GetString("embedding.base_url"),
			Model:      cfg.GetString("embedding.model"),
			Dimensions: cfg.GetInt("embedding.dimensions"),
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case "anthropic":
		return nil, fmt.Errorf("anthropic does not provide embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// NewLLMService builds the LLM provider named by llm.provider,
// defaulting to Ollama.
func NewLLMService(cfg driven.ConfigStore) (driven.LLMService, error) {
	switch provider := cfg.GetString("llm.provider"); provider {
	case "", "ollama":
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		}), nil

	case "openai":
		svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  cfg.GetString("llm.api_key"),
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case "anthropic":
		svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  cfg.GetString("llm.api_key"),
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
