package httpserver

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/flash"
	"github.com/Skotchmaster/storefront/internal/handlers"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
)

// Options carries the infrastructure the handlers are assembled from. Search and Publisher
// may be left nil.
type Options struct {
	Logger       *slog.Logger
	DB           *gorm.DB
	CartStore    cart.Store
	Search       service.NameSearcher
	Publisher    service.EventPublisher
	Secret       []byte
	CookieSecure bool
}

func NewDeps(o Options) *Deps {
	r := repo.New(o.DB)
	c := cart.New(o.CartStore)

	catalog := &service.CatalogService{Repo: r, Search: o.Search, Publisher: o.Publisher}
	carts := &service.CartService{Cart: c, Catalog: catalog}
	orders := &service.OrderService{Repo: r, Cart: c, Publisher: o.Publisher}
	stats := &service.StatsService{Repo: r}
	authSvc := &service.AuthService{Repo: r, Secret: o.Secret}

	sessions := &handlers.Sessions{Secure: o.CookieSecure}
	notices := &flash.Store{Secure: o.CookieSecure}
	admin := &auth.Admin{Secret: o.Secret, Secure: o.CookieSecure}

	return &Deps{
		Logger:  o.Logger,
		Admin:   admin,
		Health:  &handlers.HealthHandler{DB: o.DB},
		Catalog: &handlers.CatalogHandler{Catalog: catalog, Carts: carts, Sessions: sessions, Flash: notices},
		Cart:    &handlers.CartHandler{Carts: carts, Orders: orders, Sessions: sessions, Flash: notices},
		AdminUI: &handlers.AdminHandler{Auth: authSvc, Stats: stats, Orders: orders, Admin: admin, Flash: notices},
	}
}
