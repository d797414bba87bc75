package middleware

import (
	"net/http"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/labstack/echo/v4"
)

// echoCookies exposes the request and response cookies of one echo request.
type echoCookies struct {
	c echo.Context
}

func (e echoCookies) Get(name string) (string, bool) {
	cookie, err := e.c.Cookie(name)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

func (e echoCookies) Set(cookie *http.Cookie) {
	e.c.SetCookie(cookie)
}

// SessionCookies attaches the page cookies to the request context and, when
// no session is active yet, restores one from whatever credential is stored.
func SessionCookies(sessions *service.SessionManager, auth service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := session.WithCookies(req.Context(), echoCookies{c: c})
			c.SetRequest(req.WithContext(ctx))

			if !sessions.Active() && sessions.Stored(ctx) != "" {
				// an unusable credential is cleared and reported as a notice
				_ = auth.Initialize(ctx)
			}
			return next(c)
		}
	}
}
