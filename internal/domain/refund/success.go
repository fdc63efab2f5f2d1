package refund

import (
	"context"
	"fmt"

	"paypalplus/internal/domain/order"
	"paypalplus/pkg/money"
)

// SuccessHandler is a single side-effecting operation run after a provider
// request succeeds. Refund completion shares this capability with other
// success paths so they compose uniformly.
type SuccessHandler interface {
	Execute(ctx context.Context) error
}

// RefundSuccess records a completed refund against its order: it books the
// refunded amount, appends the transaction and reason notes, and moves the
// order to refunded once the remaining refundable balance rounds to zero.
type RefundSuccess struct {
	store         order.Store
	order         order.Order
	transactionID string
	amount        float64
	reason        string
}

var _ SuccessHandler = (*RefundSuccess)(nil)

// NewRefundSuccess builds the success handler for one completed refund.
func NewRefundSuccess(store order.Store, o order.Order, transactionID string, amount float64, reason string) *RefundSuccess {
	return &RefundSuccess{
		store:         store,
		order:         o,
		transactionID: transactionID,
		amount:        amount,
		reason:        reason,
	}
}

// Execute applies the refund to the order.
func (s *RefundSuccess) Execute(ctx context.Context) error {
	return s.store.InTransaction(ctx, func(tx order.TxStore) error {
		if err := tx.RecordRefund(ctx, s.order.ID, s.amount); err != nil {
			return fmt.Errorf("record refund: %w", err)
		}

		note := fmt.Sprintf("Refund Transaction ID: %s", s.transactionID)
		if err := tx.AddNote(ctx, s.order.ID, note); err != nil {
			return fmt.Errorf("add refund note: %w", err)
		}
		if s.reason != "" {
			note = fmt.Sprintf("Reason for Refund: %s", s.reason)
			if err := tx.AddNote(ctx, s.order.ID, note); err != nil {
				return fmt.Errorf("add reason note: %w", err)
			}
		}

		remaining := money.Round(
			s.order.RemainingRefundable()-s.amount, s.order.Currency)
		if remaining <= 0 {
			if err := tx.SetStatus(ctx, s.order.ID, order.StatusRefunded, ""); err != nil {
				return fmt.Errorf("set refunded: %w", err)
			}
		}
		return nil
	})
}
