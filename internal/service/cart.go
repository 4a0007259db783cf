package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/models"
)

type CartItem struct {
	Product   models.Product `json:"product"`
	Quantity  int            `json:"quantity"`
	ItemTotal int64          `json:"item_total"`
}

type CartView struct {
	Items      []CartItem `json:"cart_items"`
	TotalPrice int64      `json:"total_price"`
}

type CartService struct {
	Cart    *cart.Cart
	Catalog *CatalogService
}

func (s *CartService) Add(ctx context.Context, sessionID string, productID uint) (int, error) {
	q, err := s.Cart.Add(ctx, sessionID, productID)
	if err != nil {
		if errors.Is(err, cart.ErrNoSession) {
			return 0, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return 0, fmt.Errorf("%w: add to cart: %w", ErrPersistence, err)
	}
	return q, nil
}

func (s *CartService) Remove(ctx context.Context, sessionID string, productID uint) (bool, error) {
	removed, err := s.Cart.Remove(ctx, sessionID, productID)
	if err != nil {
		return false, fmt.Errorf("%w: remove from cart: %w", ErrPersistence, err)
	}
	return removed, nil
}

func (s *CartService) Count(ctx context.Context, sessionID string) (int, error) {
	n, err := s.Cart.Count(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("%w: count cart: %w", ErrPersistence, err)
	}
	return n, nil
}

// View prices the cart against the catalog. Entries whose product no longer exists are
// left out of the view but stay in the cart.
func (s *CartService) View(ctx context.Context, sessionID string) (CartView, error) {
	view := CartView{Items: []CartItem{}}

	items, err := s.Cart.List(ctx, sessionID)
	if err != nil {
		return view, fmt.Errorf("%w: read cart: %w", ErrPersistence, err)
	}
	if len(items) == 0 {
		return view, nil
	}

	ids := make([]uint, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	products, err := s.Catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return view, err
	}

	for _, p := range products {
		q := items[p.ID]
		itemTotal := p.Price * int64(q)
		view.Items = append(view.Items, CartItem{Product: p, Quantity: q, ItemTotal: itemTotal})
		view.TotalPrice += itemTotal
	}
	return view, nil
}
