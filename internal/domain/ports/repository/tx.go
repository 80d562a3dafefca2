package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque handle threaded through repository calls so that several
// statements can share one database transaction. Concrete repositories
// type-switch it to their driver's transaction type.
type Tx = any

// NoTX signals "run against the pool, no enclosing transaction".
var NoTX Tx = nil

// TransactionManager runs fn inside a single transaction, committing on nil
// and rolling back on error.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
