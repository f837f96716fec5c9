package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medchain/internal/domain"
	"medchain/internal/domain/models"
	"medchain/internal/domain/repositories"
)

// PostgresAnchorRepository implements the AnchorRepository interface
type PostgresAnchorRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewAnchorRepository creates a new PostgresAnchorRepository
func NewAnchorRepository(config *RepositoryConfig) repositories.AnchorRepository {
	return &PostgresAnchorRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const anchorColumns = `record_ref, content_hash, commit_ts, status,
	COALESCE(transaction_id, ''), COALESCE(last_error, ''), attempts, updated_at`

// Get retrieves the anchor entry for a record reference
func (r *PostgresAnchorRepository) Get(ctx context.Context, recordRef string) (*models.AnchorEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE record_ref = $1
	`, anchorColumns, r.tables.AnchorEntries)

	entry, err := scanAnchorEntry(GetExecutor(ctx, r.pool).QueryRow(ctx, query, recordRef))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: "no anchor entry for " + recordRef}
		}
		return nil, fmt.Errorf("get anchor entry: %w", err)
	}
	return entry, nil
}

// Save creates or replaces the anchor entry
func (r *PostgresAnchorRepository) Save(ctx context.Context, entry *models.AnchorEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (record_ref, content_hash, commit_ts, status, transaction_id, last_error, attempts, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)
		ON CONFLICT (record_ref) DO UPDATE SET
			content_hash = EXCLUDED.content_hash,
			commit_ts = EXCLUDED.commit_ts,
			status = EXCLUDED.status,
			transaction_id = EXCLUDED.transaction_id,
			last_error = EXCLUDED.last_error,
			attempts = EXCLUDED.attempts,
			updated_at = EXCLUDED.updated_at
	`, r.tables.AnchorEntries)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		entry.RecordRef,
		entry.ContentHash,
		entry.Timestamp,
		string(entry.Status),
		entry.TransactionID,
		entry.LastError,
		entry.Attempts,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save anchor entry: %w", err)
	}
	return nil
}

// ListPending returns the oldest pending entries first
func (r *PostgresAnchorRepository) ListPending(ctx context.Context, limit int) ([]*models.AnchorEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE status = 'pending'
		ORDER BY updated_at, record_ref
		LIMIT $1
	`, anchorColumns, r.tables.AnchorEntries)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending anchors: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.AnchorEntry, 0)
	for rows.Next() {
		entry, err := scanAnchorEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan anchor entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending anchors: %w", err)
	}
	return entries, nil
}

func scanAnchorEntry(row pgx.Row) (*models.AnchorEntry, error) {
	var entry models.AnchorEntry
	var status string
	err := row.Scan(
		&entry.RecordRef,
		&entry.ContentHash,
		&entry.Timestamp,
		&status,
		&entry.TransactionID,
		&entry.LastError,
		&entry.Attempts,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Status = models.AnchorEntryStatus(status)
	return &entry, nil
}
