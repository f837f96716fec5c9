package services

import (
	"context"

	"medchain/internal/domain/models"
)

// PrivateLedger is the permissioned ledger of record documents
type PrivateLedger interface {
	// Commit stores the record under key, overwriting any prior value.
	// Fails with *domain.LedgerWriteError; nothing else may run after that.
	Commit(ctx context.Context, key string, record *models.Record) error

	// Query fails with *domain.NotFoundError when no record is stored under key
	Query(ctx context.Context, key string) (*models.Record, error)
}
