package ipn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"paypalplus/internal/controller/apperror"
	"paypalplus/internal/domain/order"
)

// OrderRef is a parsed correlation token: the order identity PayPal echoes
// back from the original payment request.
type OrderRef struct {
	OrderID  int64
	OrderKey string
}

type customJSON struct {
	OrderID  int64  `json:"order_id"`
	OrderKey string `json:"order_key"`
}

// Serialized-object injection guard: any PHP object/class tag disqualifies
// the token outright, before any parsing attempt.
var objectTag = regexp.MustCompile(`[CO]:\+?[0-9]+:"`)

// Legacy tokens are a serialized two-element array: order id (int or numeric
// string) followed by the order key string.
var legacyArray = regexp.MustCompile(
	`^a:2:\{i:0;(?:i:(\d+)|s:\d+:"(\d+)");i:1;s:\d+:"([^"]*)";\}$`)

// ParseCustom parses the custom correlation field. Tokens are either a JSON
// object {"order_id":N,"order_key":"..."} or the legacy serialized array
// form. Anything else, including object-injection patterns, is rejected with
// apperror.ErrMalformedCustom; the legacy branch is parsed structurally and
// never fed to a deserializer.
func ParseCustom(raw string) (OrderRef, error) {
	if raw == "" {
		return OrderRef{}, fmt.Errorf("empty custom field: %w", apperror.ErrMalformedCustom)
	}
	if objectTag.MatchString(raw) {
		return OrderRef{}, fmt.Errorf("serialized object in custom field: %w", apperror.ErrMalformedCustom)
	}

	var decoded customJSON
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil && decoded.OrderKey != "" {
		return OrderRef{OrderID: decoded.OrderID, OrderKey: decoded.OrderKey}, nil
	}

	if m := legacyArray.FindStringSubmatch(raw); m != nil {
		rawID := m[1]
		if rawID == "" {
			rawID = m[2]
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return OrderRef{}, fmt.Errorf("legacy custom order id: %w", apperror.ErrMalformedCustom)
		}
		return OrderRef{OrderID: id, OrderKey: m[3]}, nil
	}

	return OrderRef{}, fmt.Errorf("unrecognized custom field format: %w", apperror.ErrMalformedCustom)
}

// ResolveOrder loads the order a token refers to. Lookup is by id first,
// falling back to the order key; the stored key must match the token's key
// exactly or the notification is treated as referring to no order at all.
func ResolveOrder(ctx context.Context, store order.TxStore, ref OrderRef) (order.Order, error) {
	o, err := store.FindByID(ctx, ref.OrderID)
	if errors.Is(err, apperror.ErrOrderNotFound) {
		var id int64
		id, err = store.FindIDByKey(ctx, ref.OrderKey)
		if err != nil {
			return order.Order{}, fmt.Errorf("find order by key: %w", err)
		}
		o, err = store.FindByID(ctx, id)
	}
	if err != nil {
		return order.Order{}, fmt.Errorf("find order: %w", err)
	}

	if o.Key != ref.OrderKey {
		return order.Order{}, apperror.ErrOrderKeyMismatch
	}
	return o, nil
}
