// Package cache keeps open carts outside the database, either in process
// memory or in Redis.
package cache

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

// validateSessionID rejects blank session ids before they become keys
func validateSessionID(sessionID string) (string, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Session id is required")
	}
	return id, nil
}

func encodeCart(cart *trade.Cart) ([]byte, error) {
	data, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return data, nil
}

func decodeCart(data []byte) (*trade.Cart, error) {
	var cart trade.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if cart.Lines == nil {
		cart.Lines = []trade.CartLine{}
	}
	return &cart, nil
}
