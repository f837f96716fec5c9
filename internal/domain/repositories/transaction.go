package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs a ledger write and its history row atomically
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
