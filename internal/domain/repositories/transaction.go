package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions. The transaction is
// opened against whichever database (local or remote) the context targets.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
