package leveldb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"medchain/internal/domain"
	"medchain/internal/domain/models"
	"medchain/internal/domain/repositories"
)

// AnchorRepository stores anchor entries as JSON under anchor_<ref>.
// Pending entries also get an empty pending_<ref> index key.
type AnchorRepository struct {
	db *DB
}

// NewAnchorRepository creates the anchor registry on db
func NewAnchorRepository(db *DB) *AnchorRepository {
	return &AnchorRepository{db: db}
}

var _ repositories.AnchorRepository = (*AnchorRepository)(nil)

func (r *AnchorRepository) Get(ctx context.Context, recordRef string) (*models.AnchorEntry, error) {
	data, err := r.db.db.Get([]byte(anchorPrefix+recordRef), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, &domain.NotFoundError{Message: "no anchor entry for " + recordRef}
		}
		return nil, fmt.Errorf("get anchor entry %s: %w", recordRef, err)
	}

	var entry models.AnchorEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode anchor entry %s: %w", recordRef, err)
	}
	return &entry, nil
}

// Save writes the entry and its pending index in one batch
func (r *AnchorRepository) Save(ctx context.Context, entry *models.AnchorEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode anchor entry %s: %w", entry.RecordRef, err)
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(anchorPrefix+entry.RecordRef), data)
	if entry.Status == models.AnchorEntryPending {
		batch.Put([]byte(pendingPrefix+entry.RecordRef), nil)
	} else {
		batch.Delete([]byte(pendingPrefix + entry.RecordRef))
	}

	if err := r.db.db.Write(batch, nil); err != nil {
		return fmt.Errorf("save anchor entry %s: %w", entry.RecordRef, err)
	}
	return nil
}

func (r *AnchorRepository) ListPending(ctx context.Context, limit int) ([]*models.AnchorEntry, error) {
	iter := r.db.db.NewIterator(util.BytesPrefix([]byte(pendingPrefix)), nil)
	var refs []string
	for iter.Next() {
		refs = append(refs, string(iter.Key()[len(pendingPrefix):]))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("scan pending anchors: %w", err)
	}

	pending := make([]*models.AnchorEntry, 0, len(refs))
	for _, ref := range refs {
		entry, err := r.Get(ctx, ref)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				r.db.logger.Warn("dangling pending index", "record_ref", ref)
				continue
			}
			return nil, err
		}
		pending = append(pending, entry)
	}

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
