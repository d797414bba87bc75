package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"storefront/internal/service"
	"storefront/internal/session"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo map[string]string

func (m memRepo) Get(_ context.Context, key string) (string, error) { return m[key], nil }

func (m memRepo) Put(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

func (m memRepo) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

type countingAuth struct {
	service.AuthService
	initialized int
}

func (a *countingAuth) Initialize(context.Context) error {
	a.initialized++
	return nil
}

func newSessions(repo memRepo) *service.SessionManager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := session.NewStore(repo, logger, session.Options{
		StorageKey:    "zishanhack_token",
		CookieName:    "zishanhack_token",
		CookieDomains: []string{"zishanhack.com"},
	})
	return service.NewSessionManager(store, logger)
}

func serve(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(func(c echo.Context) error {
		_, ok := session.CookiesFrom(c.Request().Context())
		assert.True(t, ok)
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	return rec
}

func TestSessionCookiesRestoresFromCookie(t *testing.T) {
	repo := memRepo{}
	auth := &countingAuth{}
	mw := SessionCookies(newSessions(repo), auth)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "zishanhack_token", Value: "cred"})
	serve(t, mw, req)

	assert.Equal(t, 1, auth.initialized)
	assert.Equal(t, "cred", repo["zishanhack_token"])
}

func TestSessionCookiesWithoutCredential(t *testing.T) {
	auth := &countingAuth{}
	mw := SessionCookies(newSessions(memRepo{}), auth)

	serve(t, mw, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 0, auth.initialized)
}

func TestSessionCookiesSkipsActiveSession(t *testing.T) {
	sessions := newSessions(memRepo{})
	sessions.Begin(context.Background(), "cred", "user@example.com")
	auth := &countingAuth{}

	serve(t, SessionCookies(sessions, auth), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 0, auth.initialized)
}

func TestEchoCookiesExpire(t *testing.T) {
	sessions := newSessions(memRepo{})
	sessions.Begin(context.Background(), "cred", "user@example.com")

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), rec)

	err := SessionCookies(sessions, &countingAuth{})(func(c echo.Context) error {
		sessions.End(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)

	assert.Len(t, rec.Result().Cookies(), 4)
	assert.False(t, sessions.Active())
}
