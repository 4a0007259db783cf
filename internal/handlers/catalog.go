package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/flash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
)

type CatalogHandler struct {
	Catalog  *service.CatalogService
	Carts    *service.CartService
	Sessions *Sessions
	Flash    *flash.Store
}

// Index lists products, optionally narrowed to a category and a name query ?q=.
func (h *CatalogHandler) Index(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.index")

	category := c.Param("category")
	q := c.QueryParam("q")

	products, err := h.Catalog.ListProducts(ctx, category, q)
	if err != nil {
		l.Error("list_products_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}

	cartCount, err := h.Carts.Count(ctx, h.Sessions.ID(c))
	if err != nil {
		l.Warn("cart_count_failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products":     products,
		"category":     category,
		"search_query": q,
		"cart_count":   cartCount,
		"notice":       h.Flash.Pop(c),
	})
}

func (h *CatalogHandler) Like(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.like")

	id, ok := parseProductID(c)
	if !ok {
		l.Warn("like_failed", "status", 404, "reason", "bad product id")
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	likes, err := h.Catalog.Like(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("like_failed", "status", 404, "reason", "product not found", "product_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("like_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot like product")
	}

	l.Info("like_success", "product_id", id, "likes", likes)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "likes": likes})
}
