// Package flash carries one-shot user notices across a redirect in a cookie.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const CookieName = "flash"

const (
	Success = "success"
	Info    = "info"
	Danger  = "danger"
)

type Notice struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Store writes notice cookies. A nil Store behaves like one with Secure unset.
type Store struct {
	Secure bool
}

func (s *Store) secure() bool {
	return s != nil && s.Secure
}

// Set stores the notice for the next request. Values are base64 encoded since cookie values
// cannot carry arbitrary UTF-8.
func (s *Store) Set(c echo.Context, category, message string) {
	raw, err := json.Marshal(Notice{Category: category, Message: message})
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		Expires:  time.Now().Add(5 * time.Minute),
		HttpOnly: true,
		Secure:   s.secure(),
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending notice, if any, and expires the cookie.
func (s *Store) Pop(c echo.Context) *Notice {
	ck, err := c.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return nil
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure(),
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return nil
	}
	var n Notice
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	return &n
}
