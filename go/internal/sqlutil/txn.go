package sqlutil

import (
	"context"
	"database/sql"
)

// Run executes fn inside a *sql.Tx opened with opts (nil for driver defaults).
// If fn returns an error or panics the tx rolls back, else it commits.
// Errors come back classified.
func Run[T any](
	ctx context.Context,
	db *sql.DB,
	opts *sql.TxOptions,
	newQueries func(*sql.Tx) *T,
	fn func(q *T) error,
) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return Classify(err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(newQueries(tx)); err != nil {
		_ = tx.Rollback()
		return Classify(err)
	}
	return Classify(tx.Commit())
}
