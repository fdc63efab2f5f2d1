package ipn

import (
	"context"
	"fmt"
	"math"
	"slices"

	"paypalplus/internal/domain/order"
	"paypalplus/pkg/money"
)

// allowedTxnTypes lists the purchase transaction types this integration
// produces; notifications for anything else are not ours to reconcile.
var allowedTxnTypes = []string{
	"cart",
	"instant",
	"express_checkout",
	"web_accept",
}

// PaymentValidator checks that a notification is genuine and financially
// consistent with the target order. Checks run in a fixed order and
// short-circuit on the first failure; the failure reason is retained for
// LastError. Validation never panics.
type PaymentValidator struct {
	notification Notification
	order        order.Order
	verifier     Verifier

	lastError string
}

// NewPaymentValidator builds a validator for one notification/order pair.
func NewPaymentValidator(n Notification, o order.Order, verifier Verifier) *PaymentValidator {
	return &PaymentValidator{
		notification: n,
		order:        o,
		verifier:     verifier,
	}
}

// LastError returns the reason recorded by the most recent failed check.
func (v *PaymentValidator) LastError() string {
	return v.lastError
}

// IsValidPayment runs transaction-type, currency, amount and authenticity
// checks, in that order.
func (v *PaymentValidator) IsValidPayment(ctx context.Context) bool {
	return v.validTransactionType() &&
		v.validCurrency() &&
		v.validAmount() &&
		v.verified(ctx)
}

// IsValidRefund runs transaction-type and currency checks, then confirms the
// refunded amount does not exceed the order's remaining refundable balance.
func (v *PaymentValidator) IsValidRefund() bool {
	return v.validTransactionType() &&
		v.validCurrency() &&
		v.validRefundBalance()
}

func (v *PaymentValidator) validTransactionType() bool {
	txnType := v.notification.Get(KeyTxnType, "")
	if !slices.Contains(allowedTxnTypes, txnType) {
		v.lastError = fmt.Sprintf("invalid transaction type: %q", txnType)
		return false
	}
	return true
}

func (v *PaymentValidator) validCurrency() bool {
	currency := v.notification.Get(KeyCurrency, "")
	if currency != v.order.Currency {
		v.lastError = fmt.Sprintf(
			"currency mismatch: notification %s, order %s", currency, v.order.Currency)
		return false
	}
	return true
}

func (v *PaymentValidator) validAmount() bool {
	gross, err := money.Parse(v.notification.Get(KeyGross, ""))
	if err != nil || !money.Equal(gross, v.order.Total, v.order.Currency) {
		v.lastError = fmt.Sprintf(
			"amount mismatch: notification %s, order total %s",
			v.notification.Get(KeyGross, ""),
			money.Format(v.order.Total, v.order.Currency))
		return false
	}
	return true
}

// RefundAmount is the positive refunded amount carried by the notification.
// Refund notifications report the gross as a negative value.
func (v *PaymentValidator) RefundAmount() (float64, error) {
	gross, err := money.Parse(v.notification.Get(KeyGross, ""))
	if err != nil {
		return 0, fmt.Errorf("parse refund gross: %w", err)
	}
	return math.Abs(gross), nil
}

func (v *PaymentValidator) validRefundBalance() bool {
	amount, err := v.RefundAmount()
	if err != nil {
		v.lastError = "amount mismatch: unparseable refund amount"
		return false
	}

	remaining := money.Round(v.order.RemainingRefundable(), v.order.Currency)
	if money.Round(amount, v.order.Currency) > remaining {
		v.lastError = fmt.Sprintf(
			"refund exceeds remaining balance: refund %s, remaining %s",
			money.Format(amount, v.order.Currency),
			money.Format(remaining, v.order.Currency))
		return false
	}
	return true
}

func (v *PaymentValidator) verified(ctx context.Context) bool {
	if err := v.verifier.Verify(ctx, v.notification.All()); err != nil {
		v.lastError = fmt.Sprintf("could not verify notification: %s", err)
		return false
	}
	return true
}
