package service

import (
	"context"
	"errors"
	"storefront/internal/client"
	"storefront/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadRequiresSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.download.Download(context.Background(), "oscp_bundle")
	assert.True(t, errors.Is(err, ErrLoginRequired))
	assert.Equal(t, 0, f.backend.Calls("ListPurchases"))
	assert.Equal(t, 0, f.backend.Calls("Download"))
}

func TestDownloadNotPurchasedNeverHitsFileEndpoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sessions.Begin(ctx, "cred", "user@example.com")
	f.backend.ListPurchasesFunc = purchases(&model.Purchase{ProductID: "crta_notes", Status: "completed"})

	_, err := f.download.Download(ctx, "oscp_bundle")
	assert.True(t, errors.Is(err, ErrNotPurchased))
	assert.Equal(t, "You need to purchase this resource first", UserMessage(err))
	assert.Equal(t, 1, f.backend.Calls("ListPurchases"))
	assert.Equal(t, 0, f.backend.Calls("Download"))
}

func TestDownloadRefreshFindsPurchase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sessions.Begin(ctx, "cred", "user@example.com")
	f.backend.ListPurchasesFunc = purchases(&model.Purchase{ProductID: "oscp_bundle", Status: "Completed"})
	f.backend.DownloadFunc = func(_ context.Context, cred, productID string) (*client.File, error) {
		assert.Equal(t, "cred", cred)
		assert.Equal(t, "oscp_bundle", productID)
		return &client.File{Body: []byte("zip"), ContentType: "application/zip"}, nil
	}

	file, err := f.download.Download(ctx, "oscp_bundle")
	require.NoError(t, err)
	assert.Equal(t, "oscp_bundle.zip", file.Name)
	assert.Equal(t, "application/zip", file.ContentType)
	assert.Equal(t, []byte("zip"), file.Body)
	assert.Equal(t, 1, f.backend.Calls("ListPurchases"))
}

func TestDownloadCachedPurchaseSkipsRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sessions.Begin(ctx, "cred", "user@example.com")
	f.backend.ListPurchasesFunc = purchases(&model.Purchase{ProductID: "oscp_bundle", Status: "completed"})
	require.NoError(t, f.cache.Refresh(ctx))

	_, err := f.download.Download(ctx, "oscp_bundle")
	require.NoError(t, err)
	assert.Equal(t, 1, f.backend.Calls("ListPurchases"))
	assert.Equal(t, 1, f.backend.Calls("Download"))
}

func TestDownloadUnauthorizedLogsOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sessions.Begin(ctx, "cred", "user@example.com")
	f.backend.ListPurchasesFunc = purchases(&model.Purchase{ProductID: "oscp_bundle", Status: "completed"})
	f.backend.DownloadFunc = func(context.Context, string, string) (*client.File, error) {
		return nil, &client.APIError{StatusCode: 401}
	}

	_, err := f.download.Download(ctx, "oscp_bundle")
	assert.True(t, errors.Is(err, ErrSessionExpired))
	assert.False(t, f.sessions.Active())
	assert.False(t, f.cache.IsPurchased("oscp_bundle"))
}

func TestDownloadForbiddenRefreshesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sessions.Begin(ctx, "cred", "user@example.com")
	f.backend.ListPurchasesFunc = purchases(&model.Purchase{ProductID: "oscp_bundle", Status: "completed"})
	require.NoError(t, f.cache.Refresh(ctx))
	f.backend.DownloadFunc = func(context.Context, string, string) (*client.File, error) {
		return nil, &client.APIError{StatusCode: 403}
	}

	_, err := f.download.Download(ctx, "oscp_bundle")
	assert.True(t, errors.Is(err, ErrVerificationFailed))
	assert.Equal(t, 2, f.backend.Calls("ListPurchases"))
	assert.True(t, f.sessions.Active())
}

func TestDownloadOtherFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sessions.Begin(ctx, "cred", "user@example.com")
	f.backend.ListPurchasesFunc = purchases(&model.Purchase{ProductID: "oscp_bundle", Status: "completed"})
	f.backend.DownloadFunc = func(context.Context, string, string) (*client.File, error) {
		return nil, &client.APIError{StatusCode: 404}
	}

	_, err := f.download.Download(ctx, "oscp_bundle")
	assert.True(t, errors.Is(err, ErrDownloadFailed))
	assert.Equal(t, "Download failed. Please try again.", UserMessage(err))
}
