package session

import (
	"context"
	"net/http"
	"time"
)

// Cookies is the request-scoped cookie surface of the storefront page.
type Cookies interface {
	Get(name string) (string, bool)
	Set(cookie *http.Cookie)
}

type cookiesKey struct{}

// WithCookies attaches the current request's cookies to ctx.
func WithCookies(ctx context.Context, c Cookies) context.Context {
	return context.WithValue(ctx, cookiesKey{}, c)
}

// CookiesFrom returns the cookies attached to ctx, if any.
func CookiesFrom(ctx context.Context) (Cookies, bool) {
	c, ok := ctx.Value(cookiesKey{}).(Cookies)
	return c, ok && c != nil
}

// expiredCookie builds the cookie that makes browsers drop name for path and domain.
func expiredCookie(name, path, domain string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Domain:   domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}
