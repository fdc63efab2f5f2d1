package ipn

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"paypalplus/internal/domain/order"
)

// Outcome summarizes what one notification did to its order.
type Outcome string

const (
	OutcomeCompleted  Outcome = "completed"
	OutcomeOnHold     Outcome = "on_hold"
	OutcomeFailed     Outcome = "failed"
	OutcomeRefunded   Outcome = "refunded"
	OutcomeIgnored    Outcome = "ignored"
	OutcomeUnresolved Outcome = "unresolved"
)

// Reconciler drives an order through its lifecycle in response to inbound
// payment notifications. Each notification is processed inside one store
// transaction; the store's row lock serializes concurrent deliveries for the
// same order. Handlers are idempotent under at-least-once delivery: the
// completed path short-circuits on an already-paid order, the remaining
// paths re-apply the same status (duplicate notes accumulate as an audit
// trail of each delivery).
type Reconciler struct {
	store      order.Store
	vocabulary Vocabulary
	verifier   Verifier
	events     EventPublisher
	audit      AuditSink
}

// NewReconciler wires the state machine. The vocabulary selects which raw
// status wording the integration variant uses.
func NewReconciler(
	store order.Store,
	vocabulary Vocabulary,
	verifier Verifier,
	events EventPublisher,
	audit AuditSink,
) *Reconciler {
	if audit == nil {
		audit = NopAuditSink{}
	}
	return &Reconciler{
		store:      store,
		vocabulary: vocabulary,
		verifier:   verifier,
		events:     events,
		audit:      audit,
	}
}

// Process reconciles one notification. The returned error reports
// correlation or store failures; validation failures are handled internally
// (order moved to on-hold) and are not errors. Callers acknowledge the
// notification regardless.
func (r *Reconciler) Process(ctx context.Context, n Notification) (Outcome, error) {
	status := n.PaymentStatus()

	ref, err := ParseCustom(n.Get(KeyCustom, ""))
	if err != nil {
		slog.ErrorContext(ctx, "IPN error, cannot resolve order",
			"payment_status", status, "error", err)
		r.recordAudit(ctx, 0, n, OutcomeUnresolved, err.Error())
		return OutcomeUnresolved, err
	}

	var (
		outcome = OutcomeIgnored
		reason  string
		orderID int64
	)
	err = r.store.InTransaction(ctx, func(tx order.TxStore) error {
		o, err := ResolveOrder(ctx, tx, ref)
		if err != nil {
			return err
		}
		orderID = o.ID

		outcome, reason, err = r.dispatch(ctx, tx, o, n, status)
		return err
	})
	if err != nil {
		slog.ErrorContext(ctx, "IPN error, reconciliation failed",
			"order_id", ref.OrderID, "payment_status", status, "error", err)
		r.recordAudit(ctx, ref.OrderID, n, OutcomeUnresolved, err.Error())
		return OutcomeUnresolved, err
	}

	r.recordAudit(ctx, orderID, n, outcome, reason)
	return outcome, nil
}

// dispatch routes a canonical payment status to its handler. Unknown
// statuses are logged and ignored.
func (r *Reconciler) dispatch(
	ctx context.Context,
	tx order.TxStore,
	o order.Order,
	n Notification,
	status string,
) (Outcome, string, error) {
	switch status {
	case "pending", "completed":
		return r.paymentCompleted(ctx, tx, o, n, status)
	case "denied", "expired", "voided", "failed":
		return r.paymentFailed(ctx, tx, o, status)
	case "refunded":
		return r.paymentRefunded(ctx, tx, o, n, status)
	case "reversed":
		return r.paymentReversed(ctx, tx, o, n, status)
	case "canceled_reversal":
		return r.canceledReversal(ctx, o, n, status)
	default:
		slog.WarnContext(ctx, "IPN notification with unhandled payment status ignored",
			"order_id", o.ID, "payment_status", status)
		return OutcomeIgnored, "unhandled payment status", nil
	}
}

// paymentCompleted handles completed (and pending, which delegates here).
// The "already paid" short-circuit is the idempotence guard for duplicate
// deliveries of the final notification: MarkPaid moves the order to
// processing, and the shop may later move it to completed, so both states
// mean the payment has been taken.
func (r *Reconciler) paymentCompleted(
	ctx context.Context,
	tx order.TxStore,
	o order.Order,
	n Notification,
	status string,
) (Outcome, string, error) {
	if o.HasStatus(order.StatusCompleted) || o.HasStatus(order.StatusProcessing) {
		slog.ErrorContext(ctx, "IPN error, payment already completed", "order_id", o.ID)
		return OutcomeIgnored, "payment already completed", nil
	}

	validator := NewPaymentValidator(n, o, r.verifier)
	if !validator.IsValidPayment(ctx) {
		lastError := validator.LastError()
		if err := tx.SetStatus(ctx, o.ID, order.StatusOnHold, lastError); err != nil {
			return OutcomeUnresolved, "", fmt.Errorf("set on-hold: %w", err)
		}
		slog.ErrorContext(ctx, "IPN error, payment validation failed",
			"order_id", o.ID, "reason", lastError)
		return OutcomeOnHold, lastError, nil
	}

	// Metadata goes in before the mark-paid write: a crash in between
	// leaves the order unpaid and safe to retry, never paid without meta.
	if err := r.savePayerMeta(ctx, tx, o, n); err != nil {
		return OutcomeUnresolved, "", err
	}

	if r.vocabulary.StatusIs(status, order.StatusCompleted) {
		transactionID := n.Get(KeyTxnID, "")
		if err := tx.MarkPaid(ctx, o.ID, transactionID, "IPN payment completed"); err != nil {
			return OutcomeUnresolved, "", fmt.Errorf("mark paid: %w", err)
		}
		if fee := n.Get(KeyFee, ""); fee != "" {
			if err := tx.SetMeta(ctx, o.ID, order.MetaTransactionFee, fee); err != nil {
				return OutcomeUnresolved, "", fmt.Errorf("set fee meta: %w", err)
			}
		}
		slog.InfoContext(ctx, "Payment completed successfully",
			"order_id", o.ID, "transaction_id", transactionID)
		return OutcomeCompleted, "", nil
	}

	note := fmt.Sprintf("Payment pending: %s", n.Get(KeyPendingReason, ""))
	if err := tx.SetStatus(ctx, o.ID, order.StatusOnHold, note); err != nil {
		return OutcomeUnresolved, "", fmt.Errorf("set on-hold: %w", err)
	}
	slog.InfoContext(ctx, "Payment put on hold", "order_id", o.ID)
	return OutcomeOnHold, note, nil
}

func (r *Reconciler) paymentFailed(
	ctx context.Context,
	tx order.TxStore,
	o order.Order,
	status string,
) (Outcome, string, error) {
	note := fmt.Sprintf("Payment %s via IPN.", status)
	if err := tx.SetStatus(ctx, o.ID, order.StatusFailed, note); err != nil {
		return OutcomeUnresolved, "", fmt.Errorf("set failed: %w", err)
	}
	slog.InfoContext(ctx, "Payment failed", "order_id", o.ID, "payment_status", status)
	return OutcomeFailed, note, nil
}

func (r *Reconciler) paymentRefunded(
	ctx context.Context,
	tx order.TxStore,
	o order.Order,
	n Notification,
	status string,
) (Outcome, string, error) {
	validator := NewPaymentValidator(n, o, r.verifier)
	if !validator.IsValidRefund() {
		slog.ErrorContext(ctx, "IPN error, refund validation failed",
			"order_id", o.ID, "reason", validator.LastError())
		return OutcomeIgnored, validator.LastError(), nil
	}

	amount, err := validator.RefundAmount()
	if err != nil {
		return OutcomeUnresolved, "", err
	}
	if err := tx.RecordRefund(ctx, o.ID, amount); err != nil {
		return OutcomeUnresolved, "", fmt.Errorf("record refund: %w", err)
	}

	note := fmt.Sprintf("Payment %s via IPN.", status)
	if err := tx.SetStatus(ctx, o.ID, order.StatusRefunded, note); err != nil {
		return OutcomeUnresolved, "", fmt.Errorf("set refunded: %w", err)
	}

	r.publishUpdate(ctx, o.ID, "refunded", n, status)
	slog.InfoContext(ctx, "Payment refunded", "order_id", o.ID)
	return OutcomeRefunded, "", nil
}

func (r *Reconciler) paymentReversed(
	ctx context.Context,
	tx order.TxStore,
	o order.Order,
	n Notification,
	status string,
) (Outcome, string, error) {
	note := fmt.Sprintf("Payment %s via IPN.", status)
	if err := tx.SetStatus(ctx, o.ID, order.StatusOnHold, note); err != nil {
		return OutcomeUnresolved, "", fmt.Errorf("set on-hold: %w", err)
	}

	r.publishUpdate(ctx, o.ID, "reversed", n, status)
	slog.InfoContext(ctx, "Payment reversed, order on hold", "order_id", o.ID)
	return OutcomeOnHold, note, nil
}

// canceledReversal emits the external event only; the order keeps whatever
// status it had before the reversal was cancelled.
func (r *Reconciler) canceledReversal(
	ctx context.Context,
	o order.Order,
	n Notification,
	status string,
) (Outcome, string, error) {
	r.publishUpdate(ctx, o.ID, "canceled_reversal", n, status)
	slog.InfoContext(ctx, "Payment reversal cancelled", "order_id", o.ID)
	return OutcomeIgnored, "reversal cancelled", nil
}

// payerMetaFields maps payload keys to the meta names they are stored under.
var payerMetaFields = []struct {
	key  string
	meta string
}{
	{KeyPayerEmail, order.MetaPayerEmail},
	{KeyFirstName, order.MetaPayerFirstName},
	{KeyLastName, order.MetaPayerLastName},
	{KeyPaymentType, order.MetaPaymentType},
}

func (r *Reconciler) savePayerMeta(ctx context.Context, tx order.TxStore, o order.Order, n Notification) error {
	for _, field := range payerMetaFields {
		value := n.Get(field.key, "")
		if value == "" {
			continue
		}
		if err := tx.SetMeta(ctx, o.ID, field.meta, value); err != nil {
			return fmt.Errorf("set meta %q: %w", field.meta, err)
		}
	}
	return nil
}

// publishUpdate is fire-and-forget: a broker outage must not roll back the
// order writes of the surrounding transaction.
func (r *Reconciler) publishUpdate(ctx context.Context, orderID int64, kind string, n Notification, status string) {
	update := PaymentUpdate{
		OrderID:       orderID,
		Kind:          kind,
		PaymentStatus: status,
		TransactionID: n.Get(KeyTxnID, ""),
		OccurredAt:    time.Now().UTC(),
	}
	if err := r.events.PublishPaymentUpdate(ctx, update); err != nil {
		slog.ErrorContext(ctx, "failed to publish payment update",
			"order_id", orderID, "kind", kind, "error", err)
	}
}

func (r *Reconciler) recordAudit(ctx context.Context, orderID int64, n Notification, outcome Outcome, reason string) {
	entry := AuditEntry{
		OrderID:       orderID,
		PaymentStatus: n.PaymentStatus(),
		TransactionID: n.Get(KeyTxnID, ""),
		Outcome:       string(outcome),
		Reason:        reason,
		CreatedAt:     time.Now().UTC(),
	}
	if err := r.audit.RecordNotification(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to record notification audit entry", "error", err)
	}
}
