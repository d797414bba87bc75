// Package session keeps the buyer's bearer credential across restarts.
//
// Lookups go memory first, then persistent storage, then the page cookie.
// Storage failures are logged and otherwise ignored so a broken disk never
// takes the storefront down.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"storefront/internal/repository"
	"sync"
)

var clearPaths = []string{"/", ""}

type Store struct {
	repo       repository.CredentialRepository
	logger     *slog.Logger
	storageKey string
	cookieName string
	domains    []string

	mu     sync.RWMutex
	cached string
}

type Options struct {
	StorageKey    string
	CookieName    string
	CookieDomains []string
}

func NewStore(repo repository.CredentialRepository, logger *slog.Logger, opts Options) *Store {
	domains := []string{""}
	for _, d := range opts.CookieDomains {
		if d != "" {
			domains = append(domains, d)
		}
	}

	return &Store{
		repo:       repo,
		logger:     logger,
		storageKey: opts.StorageKey,
		cookieName: opts.CookieName,
		domains:    domains,
	}
}

// Load returns the current credential, or "" when none is known anywhere.
func (s *Store) Load(ctx context.Context) string {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != "" {
		return cached
	}

	stored, err := s.repo.Get(ctx, s.storageKey)
	if err != nil {
		s.logger.Warn("read stored credential", slog.Any("error", err))
	}
	if stored != "" {
		s.remember(stored)
		return stored
	}

	cookies, ok := CookiesFrom(ctx)
	if !ok {
		return ""
	}
	fromCookie, ok := cookies.Get(s.cookieName)
	if !ok || fromCookie == "" {
		return ""
	}

	s.logger.Debug("credential restored from cookie")
	s.Save(ctx, fromCookie)
	return fromCookie
}

// Save persists credential. Empty input is ignored.
func (s *Store) Save(ctx context.Context, credential string) {
	if credential == "" {
		return
	}

	if err := s.repo.Put(ctx, s.storageKey, credential); err != nil {
		s.logger.Warn("persist credential", slog.Any("error", err))
	}
	s.remember(credential)
}

// Clear forgets the credential everywhere, expiring the cookie under every
// path and domain it may have been set with.
func (s *Store) Clear(ctx context.Context) {
	if err := s.repo.Delete(ctx, s.storageKey); err != nil {
		s.logger.Warn("delete stored credential", slog.Any("error", err))
	}

	if cookies, ok := CookiesFrom(ctx); ok {
		for _, c := range s.expiryMatrix() {
			cookies.Set(c)
		}
	}

	s.remember("")
}

func (s *Store) expiryMatrix() []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(clearPaths)*len(s.domains))
	for _, path := range clearPaths {
		for _, domain := range s.domains {
			cookies = append(cookies, expiredCookie(s.cookieName, path, domain))
		}
	}
	return cookies
}

func (s *Store) remember(credential string) {
	s.mu.Lock()
	s.cached = credential
	s.mu.Unlock()
}
