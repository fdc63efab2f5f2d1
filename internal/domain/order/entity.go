package order

import (
	"errors"
	"slices"
	"time"
)

// Order is the reconciler's view of a store order. Monetary fields are in the
// order's own currency.
type Order struct {
	ID            int64     `json:"id"`
	Key           string    `json:"order_key"`
	Status        Status    `json:"status"`
	Currency      string    `json:"currency"`
	Total         float64   `json:"total"`
	TotalRefunded float64   `json:"total_refunded"`
	TransactionID string    `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasStatus reports whether the order currently carries the given status.
func (o Order) HasStatus(s Status) bool {
	return o.Status == s
}

// RemainingRefundable is the raw (unrounded) refundable balance.
func (o Order) RemainingRefundable() float64 {
	return o.Total - o.TotalRefunded
}

// Status is a canonical order lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusOnHold     Status = "on-hold"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
	StatusCancelled  Status = "cancelled"
)

var AvailableStatuses = []Status{
	StatusPending,
	StatusOnHold,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusRefunded,
	StatusCancelled,
}

// NewStatus validates a raw status string coming from storage.
func NewStatus(raw string) (Status, error) {
	if slices.Contains(AvailableStatuses, Status(raw)) {
		return Status(raw), nil
	}
	return "", errors.New("invalid order status")
}

// Note is one entry in an order's append-only note log.
type Note struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Meta keys written during reconciliation. The human-readable names match
// what the shop's admin screen displays, so they are stored verbatim.
const (
	MetaPayerEmail     = "Payer PayPal address"
	MetaPayerFirstName = "Payer first name"
	MetaPayerLastName  = "Payer last name"
	MetaPaymentType    = "Payment type"
	MetaTransactionFee = "PayPal Transaction Fee"
)
