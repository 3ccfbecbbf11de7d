// Package store defines the persistence port for transactions and is
// implemented by the sqlite and memory backends.
package store

import (
	"context"

	"fintrack/internal/core"
)

// Store is the persistence port for the transaction collection.
// Missing ids surface as core.ErrNotFound; any other failure is a
// wrapped storage error.
type Store interface {
	// Create inserts a validated transaction and returns it with the
	// assigned id and timestamps.
	Create(ctx context.Context, t core.Transaction) (core.Transaction, error)

	// Get returns a single transaction by id.
	Get(ctx context.Context, id int64) (core.Transaction, error)

	// Update merges the patch into the stored record and returns the
	// updated transaction.
	Update(ctx context.Context, id int64, patch core.TransactionPatch) (core.Transaction, error)

	// Delete removes the record and returns the deleted transaction's
	// last state.
	Delete(ctx context.Context, id int64) (core.Transaction, error)

	// List applies the filter, sorted by date descending, and returns
	// the requested page plus the pre-pagination total.
	List(ctx context.Context, f core.Filter) (core.Page, error)

	// All returns every transaction in insertion order. Feeds the
	// dashboard aggregation, which is re-derived on every call.
	All(ctx context.Context) ([]core.Transaction, error)

	Close() error
}
