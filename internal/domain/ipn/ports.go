package ipn

import (
	"context"
	"net/url"
	"time"
)

//go:generate mockgen -source ports.go -destination mock_ports.go -package ipn

// Verifier performs the server-to-server authenticity postback: the payload
// is echoed to the provider's verification endpoint, which must answer with
// the literal VERIFIED token. A nil return means verified; any error (an
// INVALID answer, a timeout, a transport failure) means the notification
// cannot be trusted and validation fails closed.
type Verifier interface {
	Verify(ctx context.Context, payload url.Values) error
}

// PaymentUpdate is published when a notification changes payment state
// outside the normal completion flow (refunds, reversals).
type PaymentUpdate struct {
	OrderID       int64     `json:"order_id"`
	Kind          string    `json:"kind"` // refunded, reversed, canceled_reversal
	PaymentStatus string    `json:"payment_status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher propagates payment updates to downstream consumers.
type EventPublisher interface {
	PublishPaymentUpdate(ctx context.Context, update PaymentUpdate) error
}

// AuditEntry records the outcome of one processed notification.
type AuditEntry struct {
	OrderID       int64     `json:"order_id,omitempty"`
	PaymentStatus string    `json:"payment_status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Outcome       string    `json:"outcome"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// AuditSink stores notification outcomes for operator inspection. Writes are
// best-effort; failures must not affect reconciliation.
type AuditSink interface {
	RecordNotification(ctx context.Context, entry AuditEntry) error
}

// NopAuditSink discards audit entries. Used when no sink is configured.
type NopAuditSink struct{}

func (NopAuditSink) RecordNotification(context.Context, AuditEntry) error { return nil }
