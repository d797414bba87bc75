package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"storefront/internal/client"
)

type DownloadedFile struct {
	Name        string
	ContentType string
	Body        []byte
}

type DownloadGate interface {
	// Download fetches a product file once the buyer is known to own it.
	Download(ctx context.Context, productID string) (*DownloadedFile, error)
}

type downloadGateImpl struct {
	sessions *SessionManager
	cache    PurchaseCache
	backend  client.BackendClient
	notifier Notifier
	logger   *slog.Logger
}

func NewDownloadGate(
	sessions *SessionManager,
	cache PurchaseCache,
	backend client.BackendClient,
	notifier Notifier,
	logger *slog.Logger,
) DownloadGate {
	return &downloadGateImpl{
		sessions: sessions,
		cache:    cache,
		backend:  backend,
		notifier: notifier,
		logger:   logger,
	}
}

func (g *downloadGateImpl) Download(ctx context.Context, productID string) (*DownloadedFile, error) {
	if !g.sessions.Active() {
		g.notifier.Notify(ctx, LevelError, "Please login to download")
		return nil, fail(ErrLoginRequired, "Please login to download", nil)
	}

	if !g.cache.IsPurchased(productID) {
		g.logger.DebugContext(ctx, "purchase not cached, refreshing", slog.String("product", productID))
		_ = g.cache.Refresh(ctx)

		if !g.cache.IsPurchased(productID) {
			g.notifier.Notify(ctx, LevelWarning, "You need to purchase this resource first")
			return nil, fail(ErrNotPurchased, "You need to purchase this resource first", nil)
		}
	}

	// the refresh above may have ended the session
	sess := g.sessions.Current()
	if !sess.Active() {
		return nil, fail(ErrSessionExpired, msgSessionExpired, nil)
	}

	g.notifier.Notify(ctx, LevelInfo, "Preparing download...")
	file, err := g.backend.Download(ctx, sess.Credential, productID)
	if err != nil {
		switch {
		case client.StatusCode(err) == http.StatusUnauthorized:
			g.notifier.Notify(ctx, LevelError, msgSessionExpired)
			g.sessions.End(ctx)
			return nil, fail(ErrSessionExpired, msgSessionExpired, err)
		case client.StatusCode(err) == http.StatusForbidden:
			g.notifier.Notify(ctx, LevelWarning, "Purchase verification failed.")
			_ = g.cache.Refresh(ctx)
			return nil, fail(ErrVerificationFailed, "Purchase verification failed.", err)
		case errors.Is(err, client.ErrNetwork):
			g.notifier.Notify(ctx, LevelError, "Network error. Please try again.")
			return nil, fail(ErrNetwork, "Network error. Please try again.", err)
		default:
			g.logger.ErrorContext(ctx, "download", slog.String("product", productID), slog.Any("error", err))
			g.notifier.Notify(ctx, LevelError, "Download failed. Please try again.")
			return nil, fail(ErrDownloadFailed, "Download failed. Please try again.", err)
		}
	}

	g.notifier.Notify(ctx, LevelSuccess, "Download started!")
	return &DownloadedFile{
		Name:        productID + ".zip",
		ContentType: file.ContentType,
		Body:        file.Body,
	}, nil
}
