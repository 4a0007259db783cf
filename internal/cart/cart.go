// Package cart keeps the per-session tally of product quantities prior to checkout.
package cart

import (
	"context"
	"errors"
)

var ErrNoSession = errors.New("cart: empty session id")

// Store persists cart tallies keyed by session id. Implementations must never keep an entry
// with a quantity below 1.
type Store interface {
	// Incr adds one unit of productID and returns the new quantity.
	Incr(ctx context.Context, sessionID string, productID uint) (int, error)
	// Delete drops the entry and reports whether it existed.
	Delete(ctx context.Context, sessionID string, productID uint) (bool, error)
	All(ctx context.Context, sessionID string) (map[uint]int, error)
	Clear(ctx context.Context, sessionID string) error
}

type Cart struct {
	store Store
}

func New(store Store) *Cart {
	return &Cart{store: store}
}

// Add increments the quantity for productID, creating the entry when absent. The product is not
// checked against the catalog here; checkout does that.
func (c *Cart) Add(ctx context.Context, sessionID string, productID uint) (int, error) {
	if sessionID == "" {
		return 0, ErrNoSession
	}
	return c.store.Incr(ctx, sessionID, productID)
}

func (c *Cart) Remove(ctx context.Context, sessionID string, productID uint) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return c.store.Delete(ctx, sessionID, productID)
}

// List returns the current mapping, an empty one when the session has no cart.
func (c *Cart) List(ctx context.Context, sessionID string) (map[uint]int, error) {
	if sessionID == "" {
		return map[uint]int{}, nil
	}
	items, err := c.store.All(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = map[uint]int{}
	}
	return items, nil
}

func (c *Cart) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return c.store.Clear(ctx, sessionID)
}

// Count is the number of units across all entries.
func (c *Cart) Count(ctx context.Context, sessionID string) (int, error) {
	items, err := c.List(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, q := range items {
		n += q
	}
	return n, nil
}
