// Package ipn implements the IPN reconciliation core: the notification
// payload, correlation token resolution, payment validation and the order
// state machine driven by asynchronous PayPal notifications.
package ipn

import (
	"net/url"
	"strings"
)

// Well-known notification fields.
const (
	KeyTxnType       = "txn_type"
	KeyTxnID         = "txn_id"
	KeyPaymentStatus = "payment_status"
	KeyEventType     = "event_type"
	KeyCurrency      = "mc_currency"
	KeyGross         = "mc_gross"
	KeyFee           = "mc_fee"
	KeyPendingReason = "pending_reason"
	KeyCustom        = "custom"
	KeyPayerEmail    = "payer_email"
	KeyFirstName     = "first_name"
	KeyLastName      = "last_name"
	KeyPaymentType   = "payment_type"
	KeyTestIPN       = "test_ipn"
)

// Notification is an immutable view of one inbound IPN payload. Field access
// is total: unknown keys yield the caller-supplied fallback.
type Notification struct {
	fields  map[string]string
	sandbox bool
}

// NewNotification builds a Notification from parsed form values. Multi-valued
// fields keep their first value. The sandbox flag is the service's own
// configuration; it gates the simulator accommodation in PaymentStatus.
func NewNotification(values url.Values, sandbox bool) Notification {
	fields := make(map[string]string, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}
	return Notification{fields: fields, sandbox: sandbox}
}

// Get fetches a field value, or fallback if the field is absent.
func (n Notification) Get(key, fallback string) string {
	if v, ok := n.fields[key]; ok {
		return v
	}
	return fallback
}

// Has reports whether the payload carries the given field.
func (n Notification) Has(key string) bool {
	_, ok := n.fields[key]
	return ok
}

// All returns a copy of every field, preserving unknown keys. The verify
// postback echoes this back to PayPal unchanged.
func (n Notification) All() url.Values {
	values := make(url.Values, len(n.fields))
	for k, v := range n.fields {
		values.Set(k, v)
	}
	return values
}

// PaymentStatus returns the canonical lowercase payment status. Legacy IPN
// payloads carry payment_status; REST webhook payloads carry an event type
// instead, whose last segment names the state (e.g. PAYMENT.SALE.COMPLETED).
//
// The IPN simulator always sends status "pending"; when the service itself
// runs against the sandbox and the payload carries the sandbox echo flag,
// pending is coerced to completed. A production deployment never honors the
// flag.
func (n Notification) PaymentStatus() string {
	status := n.Get(KeyPaymentStatus, "")
	if status == "" {
		if event := n.Get(KeyEventType, ""); event != "" {
			parts := strings.Split(event, ".")
			status = parts[len(parts)-1]
		}
	}
	status = strings.ToLower(status)

	if n.sandbox && n.Has(KeyTestIPN) && status == "pending" {
		status = "completed"
	}

	return status
}
