package repositories

import (
	"context"

	"medchain/internal/domain/models"
)

// AnchorRepository stores the anchor registry and its pending queue.
// One entry per record reference; Save replaces it.
type AnchorRepository interface {
	// Get returns domain.ErrNotFound when the record was never anchored or queued
	Get(ctx context.Context, recordRef string) (*models.AnchorEntry, error)

	Save(ctx context.Context, entry *models.AnchorEntry) error

	// ListPending returns up to limit pending entries, oldest first
	ListPending(ctx context.Context, limit int) ([]*models.AnchorEntry, error)
}
