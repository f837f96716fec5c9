package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"medchain/internal/domain"
	"medchain/internal/domain/repositories"
)

// PostgresLedgerStore implements the KVStore interface.
// Every Put also appends to the ledger history table in the same transaction.
type PostgresLedgerStore struct {
	pool   *pgxpool.Pool
	tables *TableNames
	tx     repositories.TransactionManager
	logger *slog.Logger
}

// NewLedgerStore creates a new PostgresLedgerStore
func NewLedgerStore(config *RepositoryConfig) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		pool:   config.Pool,
		tables: config.Tables,
		tx:     NewTransactionManager(config.Pool, config.Logger),
		logger: config.Logger,
	}
}

var _ repositories.KVStore = (*PostgresLedgerStore)(nil)

// Put upserts the value under key
func (s *PostgresLedgerStore) Put(ctx context.Context, key string, value []byte) error {
	upsert := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, s.tables.LedgerEntries)

	history := fmt.Sprintf(`
		INSERT INTO %s (key, value) VALUES ($1, $2)
	`, s.tables.LedgerHistory)

	err := s.tx.ExecTx(ctx, func(txCtx context.Context) error {
		executor := GetExecutor(txCtx, s.pool)
		if _, err := executor.Exec(txCtx, upsert, key, value); err != nil {
			return fmt.Errorf("upsert ledger entry: %w", err)
		}
		if _, err := executor.Exec(txCtx, history, key, value); err != nil {
			return fmt.Errorf("append ledger history: %w", err)
		}
		return nil
	})
	if err != nil {
		if IsPgCheckViolation(err) {
			return &domain.ValidationError{Message: "invalid ledger key"}
		}
		return err
	}
	return nil
}

// Get returns the current value under key
func (s *PostgresLedgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.tables.LedgerEntries)

	var value []byte
	executor := GetExecutor(ctx, s.pool)
	if err := executor.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: "no value for key " + key}
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return value, nil
}

// History returns how many commits were recorded for key
func (s *PostgresLedgerStore) History(ctx context.Context, key string) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE key = $1`, s.tables.LedgerHistory)

	var n int
	if err := GetExecutor(ctx, s.pool).QueryRow(ctx, query, key).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger history: %w", err)
	}
	return n, nil
}
