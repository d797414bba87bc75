package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"storefront/internal/client"
	"sync"
)

type PurchaseCache interface {
	// Refresh replaces the cache with the backend's completed purchases.
	Refresh(ctx context.Context) error
	IsPurchased(productID string) bool
	Snapshot() map[string]bool
	Subscribe(fn func(purchased map[string]bool))
}

type purchaseCacheImpl struct {
	sessions *SessionManager
	backend  client.BackendClient
	notifier Notifier
	logger   *slog.Logger

	mu          sync.RWMutex
	purchased   map[string]bool
	subscribers []func(map[string]bool)
}

func NewPurchaseCache(
	sessions *SessionManager,
	backend client.BackendClient,
	notifier Notifier,
	logger *slog.Logger,
) PurchaseCache {
	c := &purchaseCacheImpl{
		sessions:  sessions,
		backend:   backend,
		notifier:  notifier,
		logger:    logger,
		purchased: map[string]bool{},
	}
	sessions.OnEnd(func(context.Context) { c.replace(map[string]bool{}) })
	return c
}

func (c *purchaseCacheImpl) Refresh(ctx context.Context) error {
	sess := c.sessions.Current()
	if !sess.Active() {
		c.replace(map[string]bool{})
		return nil
	}

	purchases, err := c.backend.ListPurchases(ctx, sess.Credential)
	if err != nil {
		switch {
		case client.StatusCode(err) == http.StatusUnauthorized:
			c.sessions.End(ctx)
			c.notifier.Notify(ctx, LevelError, msgSessionExpired)
			return fail(ErrSessionExpired, msgSessionExpired, err)
		case errors.Is(err, client.ErrNetwork):
			c.notifier.Notify(ctx, LevelError, "Network error loading purchases")
			return fail(ErrNetwork, "Network error loading purchases", err)
		default:
			c.logger.ErrorContext(ctx, "load purchases", slog.Any("error", err))
			c.notifier.Notify(ctx, LevelError, "Failed to load purchases")
			return fail(ErrRejected, "Failed to load purchases", err)
		}
	}

	next := make(map[string]bool, len(purchases))
	for _, p := range purchases {
		if p != nil && p.Completed() {
			next[p.ProductID] = true
		}
	}
	c.logger.DebugContext(ctx, "purchases loaded", slog.Int("records", len(purchases)), slog.Int("completed", len(next)))

	c.replace(next)
	return nil
}

func (c *purchaseCacheImpl) IsPurchased(productID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.purchased[productID]
}

func (c *purchaseCacheImpl) Snapshot() map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyPurchases(c.purchased)
}

func (c *purchaseCacheImpl) Subscribe(fn func(purchased map[string]bool)) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

func (c *purchaseCacheImpl) replace(next map[string]bool) {
	c.mu.Lock()
	c.purchased = next
	subs := append([]func(map[string]bool){}, c.subscribers...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(copyPurchases(next))
	}
}

func copyPurchases(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

const msgSessionExpired = "Session expired. Please login again."
