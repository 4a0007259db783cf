package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/flash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	CookieName = "adminToken"
	LoginPath  = "/admin/login"

	ContextAdminID   = "admin_id"
	ContextAdminName = "admin_username"
)

// Admin turns a valid session cookie into the admin capability on the echo context.
type Admin struct {
	Secret []byte
	Secure bool
}

// Claims returns the verified admin claims carried by the request, or nil.
func (a *Admin) Claims(c echo.Context) *tokens.AdminClaims {
	ck, err := c.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return nil
	}
	claims, err := tokens.AdminClaimsFromToken(ck.Value, a.Secret)
	if err != nil {
		return nil
	}
	return claims
}

func (a *Admin) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := a.Claims(c)
		if claims == nil {
			l := logging.FromContext(c.Request().Context())
			l.Warn("admin_required", "status", http.StatusFound, "reason", "missing or invalid session")
			a.ClearCookie(c)
			a.notices().Set(c, flash.Info, "このページにアクセスするにはログインが必要です。")
			return c.Redirect(http.StatusFound, LoginPath)
		}

		c.Set(ContextAdminID, claims.Subject)
		c.Set(ContextAdminName, claims.Username)
		return next(c)
	}
}

func (a *Admin) notices() *flash.Store {
	return &flash.Store{Secure: a.Secure}
}

func (a *Admin) SetCookie(c echo.Context, token string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   a.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Admin) ClearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
