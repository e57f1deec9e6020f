package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying transaction handle via `tx`.
//
// Repository methods accept `tx Tx` and detect a live transaction
// implementation-side (e.g. to add FOR UPDATE row locks); they MUST gracefully
// accept nil for the non-transactional path. The concrete type of `tx` is
// infra-defined (pgx.Tx for Postgres).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
