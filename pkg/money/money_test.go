package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecimals(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Decimals("HUF"))
	assert.Equal(t, 0, Decimals("JPY"))
	assert.Equal(t, 0, Decimals("TWD"))
	assert.Equal(t, 2, Decimals("USD"))
	assert.Equal(t, 2, Decimals("EUR"))
}

func TestFormat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		amount   float64
		currency string
		expected string
	}{
		{name: "rounds down below midpoint", amount: 10.004, currency: "USD", expected: "10.00"},
		{name: "rounds up above midpoint", amount: 10.006, currency: "USD", expected: "10.01"},
		{name: "zero-decimal currency rounds to integer", amount: 1000.49, currency: "JPY", expected: "1000"},
		{name: "zero-decimal currency rounds half up", amount: 1000.5, currency: "HUF", expected: "1001"},
		{name: "pads to precision", amount: 49.9, currency: "EUR", expected: "49.90"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Format(tc.amount, tc.currency))
		})
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, Equal(49.99, 49.99, "USD"))
	assert.True(t, Equal(10.004, 10.0, "USD"))
	assert.True(t, Equal(1000.2, 1000.4, "JPY"))
	assert.False(t, Equal(49.99, 39.99, "USD"))
	assert.False(t, Equal(10.01, 10.0, "USD"))
}

func TestParse(t *testing.T) {
	t.Parallel()

	v, err := Parse("49.99")
	assert.NoError(t, err)
	assert.Equal(t, 49.99, v)

	_, err = Parse("not-a-number")
	assert.Error(t, err)
}
