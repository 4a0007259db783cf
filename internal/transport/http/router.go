package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/handlers"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
)

type Deps struct {
	Logger  *slog.Logger
	Admin   *auth.Admin
	Health  *handlers.HealthHandler
	Catalog *handlers.CatalogHandler
	Cart    *handlers.CartHandler
	AdminUI *handlers.AdminHandler
}

// New builds the echo instance with the shared middleware chain and all routes.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.Secure())
	e.Use(metrics.Middleware())
	e.Use(loggingmw.RequestLogger(d.Logger))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", d.Health.Live)
	e.GET("/health/ready", d.Health.Ready)
	e.GET("/metrics", metrics.Handler())

	e.GET("/", d.Catalog.Index)
	e.GET("/:category", d.Catalog.Index)
	e.POST("/like/:id", d.Catalog.Like)

	e.GET("/cart", d.Cart.ViewCart)
	e.POST("/add_to_cart/:id", d.Cart.AddToCart)
	e.GET("/remove_from_cart/:id", d.Cart.RemoveFromCart)
	e.POST("/checkout", d.Cart.Checkout)

	e.GET("/admin/login", d.AdminUI.LoginPage)
	e.POST("/admin/login", d.AdminUI.Login)

	admin := e.Group("/admin", d.Admin.RequireAdmin)

	admin.GET("/logout", d.AdminUI.Logout)
	admin.GET("/dashboard", d.AdminUI.Dashboard)
	admin.GET("/dashboard/download_excel", d.AdminUI.DownloadExcel)
}
