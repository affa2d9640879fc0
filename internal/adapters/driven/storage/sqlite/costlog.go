package sqlite

import (
	"context"
	"fmt"

	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
)

// costLog implements driven.CostLog on the usage_log table.
type costLog struct {
	store *Store
}

var _ driven.CostLog = (*costLog)(nil)

// Record appends one usage entry. Failures here are the caller's to
// swallow; accounting must never block the operation being accounted.
func (c *costLog) Record(ctx context.Context, entry driven.CostEntry) error {
	query := `
		INSERT INTO usage_log (operation, model, tokens)
		VALUES (?, ?, ?)
	`
	if _, err := c.store.db.ExecContext(ctx, query,
		entry.Operation, entry.Model, entry.Tokens); err != nil {
		return fmt.Errorf("recording usage: %w", err)
	}
	return nil
}
