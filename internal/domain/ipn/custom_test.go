package ipn

import (
	"context"
	"errors"
	"testing"

	"paypalplus/internal/controller/apperror"
	"paypalplus/internal/domain/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestParseCustom(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		raw         string
		expected    OrderRef
		expectedErr error
	}{
		{
			name:     "should parse JSON token",
			raw:      `{"order_id":42,"order_key":"wc_order_abc123"}`,
			expected: OrderRef{OrderID: 42, OrderKey: "wc_order_abc123"},
		},
		{
			name:     "should parse legacy token with integer id",
			raw:      `a:2:{i:0;i:42;i:1;s:15:"wc_order_abc123";}`,
			expected: OrderRef{OrderID: 42, OrderKey: "wc_order_abc123"},
		},
		{
			name:     "should parse legacy token with string id",
			raw:      `a:2:{i:0;s:2:"42";i:1;s:15:"wc_order_abc123";}`,
			expected: OrderRef{OrderID: 42, OrderKey: "wc_order_abc123"},
		},
		{
			name:        "should reject empty token",
			raw:         "",
			expectedErr: apperror.ErrMalformedCustom,
		},
		{
			name:        "should reject serialized object tag",
			raw:         `O:8:"stdClass":0:{}`,
			expectedErr: apperror.ErrMalformedCustom,
		},
		{
			name:        "should reject serialized class tag",
			raw:         `C:5:"Thing":0:{}`,
			expectedErr: apperror.ErrMalformedCustom,
		},
		{
			name:        "should reject object tag nested in an array",
			raw:         `a:2:{i:0;O:8:"stdClass":0:{};i:1;s:3:"key";}`,
			expectedErr: apperror.ErrMalformedCustom,
		},
		{
			name:        "should reject object tag with padded length",
			raw:         `O:+8:"stdClass":0:{}`,
			expectedErr: apperror.ErrMalformedCustom,
		},
		{
			name:        "should reject JSON without an order key",
			raw:         `{"order_id":42}`,
			expectedErr: apperror.ErrMalformedCustom,
		},
		{
			name:        "should reject arbitrary text",
			raw:         "customer remark",
			expectedErr: apperror.ErrMalformedCustom,
		},
		{
			name:        "should reject legacy token with non-numeric id",
			raw:         `a:2:{i:0;s:3:"abc";i:1;s:3:"key";}`,
			expectedErr: apperror.ErrMalformedCustom,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ref, err := ParseCustom(tc.raw)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ref)
		})
	}
}

func TestResolveOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ref := OrderRef{OrderID: 42, OrderKey: "wc_order_abc123"}
	stored := order.Order{ID: 42, Key: "wc_order_abc123", Status: order.StatusPending}

	t.Run("should resolve by id", func(t *testing.T) {
		t.Parallel()

		store := order.NewMockTxStore(gomock.NewController(t))
		store.EXPECT().FindByID(ctx, int64(42)).Return(stored, nil)

		o, err := ResolveOrder(ctx, store, ref)

		require.NoError(t, err)
		assert.Equal(t, stored, o)
	})

	t.Run("should fall back to lookup by key", func(t *testing.T) {
		t.Parallel()

		store := order.NewMockTxStore(gomock.NewController(t))
		moved := stored
		moved.ID = 77
		gomock.InOrder(
			store.EXPECT().FindByID(ctx, int64(42)).Return(order.Order{}, apperror.ErrOrderNotFound),
			store.EXPECT().FindIDByKey(ctx, "wc_order_abc123").Return(int64(77), nil),
			store.EXPECT().FindByID(ctx, int64(77)).Return(moved, nil),
		)

		o, err := ResolveOrder(ctx, store, ref)

		require.NoError(t, err)
		assert.Equal(t, int64(77), o.ID)
	})

	t.Run("should reject order whose key does not match", func(t *testing.T) {
		t.Parallel()

		store := order.NewMockTxStore(gomock.NewController(t))
		other := stored
		other.Key = "wc_order_other"
		store.EXPECT().FindByID(ctx, int64(42)).Return(other, nil)

		_, err := ResolveOrder(ctx, store, ref)

		assert.ErrorIs(t, err, apperror.ErrOrderKeyMismatch)
	})

	t.Run("should fail when neither lookup finds the order", func(t *testing.T) {
		t.Parallel()

		store := order.NewMockTxStore(gomock.NewController(t))
		gomock.InOrder(
			store.EXPECT().FindByID(ctx, int64(42)).Return(order.Order{}, apperror.ErrOrderNotFound),
			store.EXPECT().FindIDByKey(ctx, "wc_order_abc123").Return(int64(0), apperror.ErrOrderNotFound),
		)

		_, err := ResolveOrder(ctx, store, ref)

		assert.ErrorIs(t, err, apperror.ErrOrderNotFound)
	})

	t.Run("should propagate store failures", func(t *testing.T) {
		t.Parallel()

		store := order.NewMockTxStore(gomock.NewController(t))
		store.EXPECT().FindByID(ctx, int64(42)).Return(order.Order{}, errors.New("database error"))

		_, err := ResolveOrder(ctx, store, ref)

		assert.ErrorContains(t, err, "database error")
	})
}
