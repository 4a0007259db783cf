package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookie = "session_id"
	sessionTTL    = 7 * 24 * time.Hour
)

// Sessions hands out the browser session id that keys the cart.
type Sessions struct {
	Secure bool
}

// ID returns the current session id, or "" when the browser has none yet.
func (s *Sessions) ID(c echo.Context) string {
	ck, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(ck.Value); err != nil {
		return ""
	}
	return ck.Value
}

// Ensure returns the current session id, creating one on first use.
func (s *Sessions) Ensure(c echo.Context) string {
	if id := s.ID(c); id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(sessionTTL),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// parseProductID accepts positive ids that fit a signed 64-bit column.
func parseProductID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 63)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
