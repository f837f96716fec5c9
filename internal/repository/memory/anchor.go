package memory

import (
	"context"
	"sort"
	"sync"

	"medchain/internal/domain"
	"medchain/internal/domain/models"
	"medchain/internal/domain/repositories"
)

// AnchorRepository is a map-backed anchor registry
type AnchorRepository struct {
	mu      sync.RWMutex
	entries map[string]models.AnchorEntry
}

// NewAnchorRepository creates an empty registry
func NewAnchorRepository() *AnchorRepository {
	return &AnchorRepository{entries: make(map[string]models.AnchorEntry)}
}

var _ repositories.AnchorRepository = (*AnchorRepository)(nil)

func (r *AnchorRepository) Get(ctx context.Context, recordRef string) (*models.AnchorEntry, error) {
	r.mu.RLock()
	entry, ok := r.entries[recordRef]
	r.mu.RUnlock()
	if !ok {
		return nil, &domain.NotFoundError{Message: "no anchor entry for " + recordRef}
	}
	return &entry, nil
}

func (r *AnchorRepository) Save(ctx context.Context, entry *models.AnchorEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.entries[entry.RecordRef] = *entry
	r.mu.Unlock()
	return nil
}

func (r *AnchorRepository) ListPending(ctx context.Context, limit int) ([]*models.AnchorEntry, error) {
	r.mu.RLock()
	pending := make([]*models.AnchorEntry, 0)
	for _, entry := range r.entries {
		if entry.Status == models.AnchorEntryPending {
			e := entry
			pending = append(pending, &e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(pending, func(i, j int) bool {
		if pending[i].UpdatedAt.Equal(pending[j].UpdatedAt) {
			return pending[i].RecordRef < pending[j].RecordRef
		}
		return pending[i].UpdatedAt.Before(pending[j].UpdatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}
