package refund

import (
	"context"
	"errors"
	"testing"

	"paypalplus/internal/domain/ipn"
	"paypalplus/internal/domain/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type refunderFixture struct {
	refunder *Refunder
	provider *MockProvider
	store    *order.MockStore
	tx       *order.MockTxStore
}

func newRefunderFixture(t *testing.T) *refunderFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &refunderFixture{
		provider: NewMockProvider(ctrl),
		store:    order.NewMockStore(ctrl),
		tx:       order.NewMockTxStore(ctrl),
	}
	f.refunder = NewRefunder(f.provider, f.store, ipn.VocabularyIPN)

	f.store.EXPECT().InTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(order.TxStore) error) error {
			return fn(f.tx)
		}).AnyTimes()

	return f
}

var refundOrder = order.Order{
	ID:       42,
	Key:      "wc_order_abc123",
	Status:   order.StatusProcessing,
	Currency: "EUR",
	Total:    10.00,
}

func TestRefunder_Execute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("should complete a full refund and mark the order refunded", func(t *testing.T) {
		t.Parallel()

		// given
		f := newRefunderFixture(t)
		f.provider.EXPECT().RefundSale(ctx, "SALE-1", 10.00, "EUR").
			Return(Refund{ID: "REF-1", State: "completed"}, nil)
		gomock.InOrder(
			f.tx.EXPECT().RecordRefund(ctx, int64(42), 10.00).Return(nil),
			f.tx.EXPECT().AddNote(ctx, int64(42), "Refund Transaction ID: REF-1").Return(nil),
			f.tx.EXPECT().AddNote(ctx, int64(42), "Reason for Refund: damaged goods").Return(nil),
			f.tx.EXPECT().SetStatus(ctx, int64(42), order.StatusRefunded, "").Return(nil),
		)

		// when
		ok, err := f.refunder.Execute(ctx, Request{
			Order:  refundOrder,
			SaleID: "SALE-1",
			Amount: 10.00,
			Reason: "damaged goods",
		})

		// then
		assert.True(t, ok)
		require.NoError(t, err)
	})

	t.Run("should keep a partially refunded order in its status", func(t *testing.T) {
		t.Parallel()

		// given
		f := newRefunderFixture(t)
		f.provider.EXPECT().RefundSale(ctx, "SALE-1", 4.00, "EUR").
			Return(Refund{ID: "REF-2", State: "completed"}, nil)
		gomock.InOrder(
			f.tx.EXPECT().RecordRefund(ctx, int64(42), 4.00).Return(nil),
			f.tx.EXPECT().AddNote(ctx, int64(42), "Refund Transaction ID: REF-2").Return(nil),
		)

		// when
		ok, err := f.refunder.Execute(ctx, Request{
			Order:  refundOrder,
			SaleID: "SALE-1",
			Amount: 4.00,
		})

		// then
		assert.True(t, ok)
		require.NoError(t, err)
	})

	t.Run("should not mutate the order when the provider call fails", func(t *testing.T) {
		t.Parallel()

		// given
		f := newRefunderFixture(t)
		f.provider.EXPECT().RefundSale(ctx, "SALE-1", 10.00, "EUR").
			Return(Refund{}, errors.New("provider 401 Unauthorized"))

		// when
		ok, err := f.refunder.Execute(ctx, Request{
			Order:  refundOrder,
			SaleID: "SALE-1",
			Amount: 10.00,
		})

		// then
		assert.False(t, ok)
		require.NoError(t, err)
	})

	t.Run("should not update the order when the refund is still pending", func(t *testing.T) {
		t.Parallel()

		// given
		f := newRefunderFixture(t)
		f.provider.EXPECT().RefundSale(ctx, "SALE-1", 10.00, "EUR").
			Return(Refund{ID: "REF-3", State: "pending"}, nil)

		// when
		ok, err := f.refunder.Execute(ctx, Request{
			Order:  refundOrder,
			SaleID: "SALE-1",
			Amount: 10.00,
		})

		// then: the provider accepted the refund, so the call itself counts
		// as successful even though the order is untouched.
		assert.True(t, ok)
		require.NoError(t, err)
	})

	t.Run("should report a persistence failure after a completed refund", func(t *testing.T) {
		t.Parallel()

		// given: the provider completes the refund but booking it locally
		// fails, which must surface to the caller, not vanish in a log line.
		f := newRefunderFixture(t)
		f.provider.EXPECT().RefundSale(ctx, "SALE-1", 10.00, "EUR").
			Return(Refund{ID: "REF-5", State: "completed"}, nil)
		f.tx.EXPECT().RecordRefund(ctx, int64(42), 10.00).
			Return(errors.New("database error"))

		// when
		ok, err := f.refunder.Execute(ctx, Request{
			Order:  refundOrder,
			SaleID: "SALE-1",
			Amount: 10.00,
		})

		// then
		assert.True(t, ok)
		assert.ErrorContains(t, err, "update order after refund REF-5")
	})
}

func TestRefundSuccess_Execute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("should roll back when booking the refund fails", func(t *testing.T) {
		t.Parallel()

		// given
		f := newRefunderFixture(t)
		f.tx.EXPECT().RecordRefund(ctx, int64(42), 10.00).
			Return(errors.New("database error"))
		success := NewRefundSuccess(f.store, refundOrder, "REF-1", 10.00, "")

		// when
		err := success.Execute(ctx)

		// then
		assert.ErrorContains(t, err, "record refund")
	})

	t.Run("should round the remaining balance in the order currency", func(t *testing.T) {
		t.Parallel()

		// given: 10.00 minus 9.996 rounds to 0.00, which closes the order.
		f := newRefunderFixture(t)
		gomock.InOrder(
			f.tx.EXPECT().RecordRefund(ctx, int64(42), 9.996).Return(nil),
			f.tx.EXPECT().AddNote(ctx, int64(42), "Refund Transaction ID: REF-4").Return(nil),
			f.tx.EXPECT().SetStatus(ctx, int64(42), order.StatusRefunded, "").Return(nil),
		)
		success := NewRefundSuccess(f.store, refundOrder, "REF-4", 9.996, "")

		// when
		err := success.Execute(ctx)

		// then
		require.NoError(t, err)
	})
}
