package ai

import (
	"context"
	"time"

	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
)

// pingTimeout bounds connectivity checks against provider endpoints.
const pingTimeout = 5 * time.Second

// ValidateEmbedding builds the configured embedding provider and pings
// it. Used by `settings check` to verify credentials and reachability.
func ValidateEmbedding(cfg driven.ConfigStore) error {
	svc, err := NewEmbeddingService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close() //nolint:errcheck // Probe client, nothing to flush

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLM builds the configured LLM provider and pings it.
func ValidateLLM(cfg driven.ConfigStore) error {
	svc, err := NewLLMService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close() //nolint:errcheck // Probe client, nothing to flush

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
