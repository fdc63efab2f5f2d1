package ipn

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"paypalplus/internal/domain/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func paymentNotification(overrides map[string]string) Notification {
	values := url.Values{
		"txn_type":    {"cart"},
		"mc_currency": {"EUR"},
		"mc_gross":    {"10.00"},
	}
	for k, v := range overrides {
		values.Set(k, v)
	}
	return NewNotification(values, false)
}

func TestPaymentValidator_IsValidPayment(t *testing.T) {
	t.Parallel()

	testOrder := order.Order{ID: 42, Currency: "EUR", Total: 10.00}

	testCases := []struct {
		name          string
		overrides     map[string]string
		order         order.Order
		verify        func(m *MockVerifier)
		expected      bool
		expectedError string
	}{
		{
			name: "should accept a consistent verified payment",
			verify: func(m *MockVerifier) {
				m.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(nil)
			},
			order:    testOrder,
			expected: true,
		},
		{
			name:          "should reject a subscription transaction type",
			overrides:     map[string]string{"txn_type": "subscr_payment"},
			order:         testOrder,
			expected:      false,
			expectedError: `invalid transaction type: "subscr_payment"`,
		},
		{
			name:          "should reject a missing transaction type",
			overrides:     map[string]string{"txn_type": ""},
			order:         testOrder,
			expected:      false,
			expectedError: `invalid transaction type: ""`,
		},
		{
			name:          "should reject a currency mismatch",
			overrides:     map[string]string{"mc_currency": "USD"},
			order:         testOrder,
			expected:      false,
			expectedError: "currency mismatch: notification USD, order EUR",
		},
		{
			name:          "should reject an amount mismatch",
			overrides:     map[string]string{"mc_gross": "9.99"},
			order:         testOrder,
			expected:      false,
			expectedError: "amount mismatch: notification 9.99, order total 10.00",
		},
		{
			name:      "should accept sub-cent rounding noise",
			overrides: map[string]string{"mc_gross": "10.004"},
			verify: func(m *MockVerifier) {
				m.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(nil)
			},
			order:    testOrder,
			expected: true,
		},
		{
			name:      "should compare zero-decimal currencies at integer precision",
			overrides: map[string]string{"mc_currency": "JPY", "mc_gross": "1000.4"},
			verify: func(m *MockVerifier) {
				m.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(nil)
			},
			order:    order.Order{ID: 42, Currency: "JPY", Total: 1000},
			expected: true,
		},
		{
			name:          "should reject an unparseable amount",
			overrides:     map[string]string{"mc_gross": "ten"},
			order:         testOrder,
			expected:      false,
			expectedError: "amount mismatch: notification ten, order total 10.00",
		},
		{
			name: "should fail closed when verification errors",
			verify: func(m *MockVerifier) {
				m.EXPECT().Verify(gomock.Any(), gomock.Any()).
					Return(errors.New("verify endpoint answered \"INVALID\""))
			},
			order:         testOrder,
			expected:      false,
			expectedError: `could not verify notification: verify endpoint answered "INVALID"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			verifier := NewMockVerifier(gomock.NewController(t))
			if tc.verify != nil {
				tc.verify(verifier)
			}
			validator := NewPaymentValidator(paymentNotification(tc.overrides), tc.order, verifier)

			valid := validator.IsValidPayment(context.Background())

			assert.Equal(t, tc.expected, valid)
			if tc.expectedError != "" {
				assert.Equal(t, tc.expectedError, validator.LastError())
			}
		})
	}
}

func TestPaymentValidator_IsValidRefund(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		overrides     map[string]string
		order         order.Order
		expected      bool
		expectedError string
	}{
		{
			name:      "should accept a full refund",
			overrides: map[string]string{"mc_gross": "-10.00"},
			order:     order.Order{Currency: "EUR", Total: 10.00},
			expected:  true,
		},
		{
			name:      "should accept a partial refund within the balance",
			overrides: map[string]string{"mc_gross": "-3.00"},
			order:     order.Order{Currency: "EUR", Total: 10.00, TotalRefunded: 5.00},
			expected:  true,
		},
		{
			name:      "should reject a refund exceeding the remaining balance",
			overrides: map[string]string{"mc_gross": "-6.00"},
			order:     order.Order{Currency: "EUR", Total: 10.00, TotalRefunded: 5.00},
			expected:  false,
			expectedError: "refund exceeds remaining balance: " +
				"refund 6.00, remaining 5.00",
		},
		{
			name:      "should reject a duplicate full refund",
			overrides: map[string]string{"mc_gross": "-10.00"},
			order:     order.Order{Currency: "EUR", Total: 10.00, TotalRefunded: 10.00},
			expected:  false,
			expectedError: "refund exceeds remaining balance: " +
				"refund 10.00, remaining 0.00",
		},
		{
			name:          "should reject a currency mismatch before the balance check",
			overrides:     map[string]string{"mc_currency": "USD", "mc_gross": "-10.00"},
			order:         order.Order{Currency: "EUR", Total: 10.00},
			expected:      false,
			expectedError: "currency mismatch: notification USD, order EUR",
		},
		{
			name:          "should reject an invalid transaction type",
			overrides:     map[string]string{"txn_type": "send_money", "mc_gross": "-10.00"},
			order:         order.Order{Currency: "EUR", Total: 10.00},
			expected:      false,
			expectedError: `invalid transaction type: "send_money"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// A refund check never performs the verification postback, so an
			// empty mock acts as a guard against unexpected calls.
			verifier := NewMockVerifier(gomock.NewController(t))
			validator := NewPaymentValidator(paymentNotification(tc.overrides), tc.order, verifier)

			valid := validator.IsValidRefund()

			assert.Equal(t, tc.expected, valid)
			if tc.expectedError != "" {
				assert.Equal(t, tc.expectedError, validator.LastError())
			}
		})
	}
}

func TestPaymentValidator_RefundAmount(t *testing.T) {
	t.Parallel()

	verifier := NewMockVerifier(gomock.NewController(t))
	n := paymentNotification(map[string]string{"mc_gross": "-7.50"})
	validator := NewPaymentValidator(n, order.Order{Currency: "EUR", Total: 10}, verifier)

	amount, err := validator.RefundAmount()

	require.NoError(t, err)
	assert.InDelta(t, 7.50, amount, 1e-9)
}
