package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"storefront/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitPending(t *testing.T, g *WidgetGateway, n int) []*CheckoutOptions {
	t.Helper()
	var pending []*CheckoutOptions
	require.Eventually(t, func() bool {
		pending = g.Pending()
		return len(pending) == n
	}, time.Second, 5*time.Millisecond)
	return pending
}

func TestWidgetGatewayResolve(t *testing.T) {
	g := NewWidgetGateway(&config.Checkout{})

	result := make(chan *PaymentOutcome, 1)
	go func() {
		outcome, err := g.Open(context.Background(), &CheckoutOptions{OrderID: "order_1", Amount: 500})
		assert.NoError(t, err)
		result <- outcome
	}()

	pending := waitPending(t, g, 1)
	assert.Equal(t, int64(500), pending[0].Amount)

	require.NoError(t, g.Resolve("order_1", &PaymentOutcome{Kind: OutcomeSuccess, PaymentID: "pay_1", Signature: "sig"}))

	outcome := <-result
	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "order_1", outcome.OrderID)
	assert.Equal(t, "pay_1", outcome.PaymentID)

	err := g.Resolve("order_1", &PaymentOutcome{Kind: OutcomeCancelled})
	assert.True(t, errors.Is(err, ErrUnknownCheckout))
	assert.Empty(t, g.Pending())
}

func TestWidgetGatewayContextEndCancels(t *testing.T) {
	g := NewWidgetGateway(&config.Checkout{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	outcome, err := g.Open(ctx, &CheckoutOptions{OrderID: "order_2"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, outcome.Kind)
	assert.Empty(t, g.Pending())
}

func TestWidgetGatewayResolveWinsOverContextEnd(t *testing.T) {
	g := NewWidgetGateway(&config.Checkout{})

	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		result := make(chan *PaymentOutcome, 1)
		go func() {
			outcome, err := g.Open(ctx, &CheckoutOptions{OrderID: "order_race"})
			assert.NoError(t, err)
			result <- outcome
		}()
		waitPending(t, g, 1)

		require.NoError(t, g.Resolve("order_race", &PaymentOutcome{Kind: OutcomeSuccess, PaymentID: "pay_1"}))
		cancel()

		outcome := <-result
		assert.Equal(t, OutcomeSuccess, outcome.Kind)
		assert.Equal(t, "pay_1", outcome.PaymentID)
	}
}

func TestWidgetGatewayRejectsDuplicateOrder(t *testing.T) {
	g := NewWidgetGateway(&config.Checkout{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go g.Open(ctx, &CheckoutOptions{OrderID: "order_3"})
	waitPending(t, g, 1)

	_, err := g.Open(ctx, &CheckoutOptions{OrderID: "order_3"})
	assert.True(t, errors.Is(err, ErrCheckoutInProgress))

	_, err = g.Open(ctx, &CheckoutOptions{})
	assert.Error(t, err)
}

func TestWidgetGatewayAvailable(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, http.MethodHead, r.Method)
	}))
	defer srv.Close()

	g := NewWidgetGateway(&config.Checkout{ScriptURL: srv.URL + "/checkout.js"})
	assert.True(t, g.Available(context.Background()))
	assert.True(t, g.Available(context.Background()))
	assert.Equal(t, 1, hits)

	down := NewWidgetGateway(&config.Checkout{ScriptURL: "http://127.0.0.1:1/checkout.js"})
	assert.False(t, down.Available(context.Background()))
}
