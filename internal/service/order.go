package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

type OrderService struct {
	Repo      *repo.GormRepo
	Cart      *cart.Cart
	Publisher EventPublisher
}

// Checkout turns the session cart into one order with a detail row per entry. The order and
// its details commit together; the ordered entries leave the cart only after the commit, so
// any failure leaves it as it was. Entries added after the cart was read stay in the cart.
func (s *OrderService) Checkout(ctx context.Context, sessionID string) (*models.Order, error) {
	l := logging.FromContext(ctx)

	items, err := s.Cart.List(ctx, sessionID)
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues("cart_unavailable").Inc()
		return nil, fmt.Errorf("%w: read cart: %w", ErrPersistence, err)
	}
	if len(items) == 0 {
		metrics.CheckoutFailures.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	lines := make([]repo.OrderLine, 0, len(items))
	for productID, q := range items {
		lines = append(lines, repo.OrderLine{ProductID: productID, Quantity: q})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	order, err := s.Repo.CreateOrder(ctx, lines)
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues("persistence").Inc()
		return nil, fmt.Errorf("%w: create order: %w", ErrPersistence, err)
	}
	metrics.OrdersCreated.Inc()

	for _, line := range lines {
		if _, err := s.Cart.Remove(ctx, sessionID, line.ProductID); err != nil {
			l.Warn("checkout_cart_clear_failed", "order_id", order.ID, "product_id", line.ProductID, "error", err)
		}
	}

	eventItems := make([]map[string]any, 0, len(order.Details))
	for _, d := range order.Details {
		eventItems = append(eventItems, map[string]any{"productID": d.ProductID, "quantity": d.Quantity})
	}
	publish(ctx, s.Publisher, TopicOrderEvents, fmt.Sprint(order.ID), map[string]any{
		"type":      "order_created",
		"orderID":   order.ID,
		"createdAt": order.CreatedAt,
		"items":     eventItems,
	})

	return order, nil
}

func (s *OrderService) RecentOrders(ctx context.Context, page, size int) ([]models.Order, error) {
	offset, limit := util.Calculate(page, size)
	orders, err := s.Repo.ListOrders(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %w", ErrPersistence, err)
	}
	return orders, nil
}
