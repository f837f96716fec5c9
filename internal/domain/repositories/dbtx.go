package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so the
// postgres ledger store runs unchanged inside or outside ExecTx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ledgerTxKey struct{}

// SetTx binds the ledger write transaction to ctx
func SetTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, ledgerTxKey{}, tx)
}

// GetTx returns the transaction bound by SetTx, or nil outside ExecTx
func GetTx(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(ledgerTxKey{}).(pgx.Tx)
	return tx
}
