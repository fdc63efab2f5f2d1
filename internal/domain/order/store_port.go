package order

import "context"

//go:generate mockgen -source store_port.go -destination mock_store.go -package order

// TxStore is the set of order operations available inside a transaction.
//
// Implementations must serialize concurrent mutations on the same order
// (the Postgres store locks the row for the duration of the transaction);
// the reconciler relies on that to make duplicate notification delivery safe.
type TxStore interface {
	FindByID(ctx context.Context, id int64) (Order, error)
	FindIDByKey(ctx context.Context, key string) (int64, error)

	// SetStatus updates the order status and, when note is non-empty,
	// appends it to the order's note log.
	SetStatus(ctx context.Context, id int64, status Status, note string) error

	// MarkPaid records the provider transaction id, appends the note and
	// moves the order to processing. It is the single "payment complete"
	// write; callers persist metadata before invoking it.
	MarkPaid(ctx context.Context, id int64, transactionID, note string) error

	AddNote(ctx context.Context, id int64, note string) error
	SetMeta(ctx context.Context, id int64, key, value string) error

	// RecordRefund adds amount to the order's refunded total.
	RecordRefund(ctx context.Context, id int64, amount float64) error

	GetNotes(ctx context.Context, id int64) ([]Note, error)
}

// Store is the order store port.
type Store interface {
	TxStore
	InTransaction(ctx context.Context, fn func(tx TxStore) error) error
}
