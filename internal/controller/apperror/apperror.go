package apperror

import "errors"

var ErrOrderNotFound = errors.New("order not found")
var ErrOrderKeyMismatch = errors.New("order key mismatch")
var ErrMalformedCustom = errors.New("malformed correlation token")
var ErrInvalidRefundAmount = errors.New("invalid refund amount")
var ErrNoSaleTransaction = errors.New("order has no sale transaction")
