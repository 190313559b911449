package domain

import "context"

// Tx groups the repositories that can take part in one unit of work
type Tx interface {
	Products() ProductRepository
	Sales() SaleRepository
	Users() UserRepository
}

// Store is the persistent store: point operations run in their own implicit
// transaction, RunTransaction groups several writes into one.
type Store interface {
	Tx

	// RunTransaction executes work inside a transaction. If work returns an
	// error every effect is rolled back. If the transaction cannot be
	// opened work is not called.
	RunTransaction(ctx context.Context, work func(tx Tx) error) error
}
