package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/flash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
)

type CartHandler struct {
	Carts    *service.CartService
	Orders   *service.OrderService
	Sessions *Sessions
	Flash    *flash.Store
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	id, ok := parseProductID(c)
	if !ok {
		l.Warn("add_to_cart_failed", "status", 404, "reason", "bad product id")
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	sid := h.Sessions.Ensure(c)
	q, err := h.Carts.Add(ctx, sid, id)
	if err != nil {
		l.Error("add_to_cart_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add to cart")
	}

	l.Info("add_to_cart_success", "product_id", id, "quantity", q)
	h.Flash.Set(c, flash.Success, "商品をカートに追加しました！")
	return c.Redirect(http.StatusFound, backTo(c))
}

func (h *CartHandler) ViewCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.view")

	view, err := h.Carts.View(ctx, h.Sessions.ID(c))
	if err != nil {
		l.Error("view_cart_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load cart")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"cart_items":  view.Items,
		"total_price": view.TotalPrice,
		"notice":      h.Flash.Pop(c),
	})
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	id, ok := parseProductID(c)
	if !ok {
		return c.Redirect(http.StatusFound, "/cart")
	}

	removed, err := h.Carts.Remove(ctx, h.Sessions.ID(c), id)
	if err != nil {
		l.Error("remove_from_cart_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot remove from cart")
	}
	if removed {
		l.Info("remove_from_cart_success", "product_id", id)
		h.Flash.Set(c, flash.Info, "商品をカートから削除しました。")
	}
	return c.Redirect(http.StatusFound, "/cart")
}

func (h *CartHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	order, err := h.Orders.Checkout(ctx, h.Sessions.ID(c))
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			l.Warn("checkout_failed", "reason", "empty cart")
			h.Flash.Set(c, flash.Danger, "カートが空です。")
			return c.Redirect(http.StatusFound, "/cart")
		}
		l.Error("checkout_failed", "reason", "persistence", "error", err)
		h.Flash.Set(c, flash.Danger, "購入処理に失敗しました。もう一度お試しください。")
		return c.Redirect(http.StatusFound, "/cart")
	}

	l.Info("checkout_success", "order_id", order.ID, "lines", len(order.Details))
	h.Flash.Set(c, flash.Success, "ご購入ありがとうございました！")
	return c.Redirect(http.StatusFound, "/")
}

// backTo follows the referrer only when it points back at this host.
func backTo(c echo.Context) string {
	ref := c.Request().Referer()
	if ref == "" {
		return "/"
	}
	u, err := c.Request().URL.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != c.Request().Host) {
		return "/"
	}
	if u.RequestURI() == "" {
		return "/"
	}
	return u.RequestURI()
}
