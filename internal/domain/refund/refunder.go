// Package refund executes outbound refunds against the payment provider and
// reconciles the resulting order state.
package refund

import (
	"context"
	"fmt"
	"log/slog"

	"paypalplus/internal/domain/ipn"
	"paypalplus/internal/domain/order"
)

//go:generate mockgen -source refunder.go -destination mock_ports.go -package refund

// Refund is the provider-side record of an executed refund.
type Refund struct {
	ID    string
	State string
}

// Provider performs the remote refund call. Implementations wrap transport
// and authorization failures in an error; the refunder never needs to
// distinguish them beyond logging.
type Provider interface {
	RefundSale(ctx context.Context, saleID string, amount float64, currency string) (Refund, error)
}

// Request describes one refund to execute.
type Request struct {
	Order  order.Order
	SaleID string
	Amount float64
	Reason string
}

// Refunder executes refunds and, when the provider reports the refund as
// completed, runs the success handler that updates the order.
type Refunder struct {
	provider   Provider
	store      order.Store
	vocabulary ipn.Vocabulary
}

// NewRefunder wires a refund executor.
func NewRefunder(provider Provider, store order.Store, vocabulary ipn.Vocabulary) *Refunder {
	return &Refunder{
		provider:   provider,
		store:      store,
		vocabulary: vocabulary,
	}
}

// Execute performs the refund. The bool reports whether the provider
// accepted the call; a connection or authorization failure is logged and
// reported as false, and nothing is mutated in that case. A non-nil error
// means the provider refunded the money but the order update did not
// persist, so the stored order is stale until the failure is resolved.
func (r *Refunder) Execute(ctx context.Context, req Request) (bool, error) {
	refunded, err := r.provider.RefundSale(ctx, req.SaleID, req.Amount, req.Order.Currency)
	if err != nil {
		slog.ErrorContext(ctx, "refund call failed",
			"order_id", req.Order.ID, "sale_id", req.SaleID, "error", err)
		return false, nil
	}

	if r.vocabulary.StatusIs(refunded.State, order.StatusCompleted) {
		success := NewRefundSuccess(r.store, req.Order, refunded.ID, req.Amount, req.Reason)
		if err := success.Execute(ctx); err != nil {
			slog.ErrorContext(ctx, "refund succeeded but order update failed",
				"order_id", req.Order.ID, "refund_id", refunded.ID, "error", err)
			return true, fmt.Errorf("update order after refund %s: %w", refunded.ID, err)
		}
	}

	return true, nil
}
