package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"storefront/internal/client"
	"storefront/internal/dto"
	"storefront/internal/service"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// outcomeAttemptFailed is a declined attempt inside a still open widget.
const outcomeAttemptFailed = "attempt_failed"

// WidgetQueue is the page side of the payment widget bridge.
type WidgetQueue interface {
	Pending() []*client.CheckoutOptions
	Resolve(orderID string, outcome *client.PaymentOutcome) error
}

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	widgets         WidgetQueue
	notifier        service.Notifier
	logger          *slog.Logger

	// checkouts outlive the request that started them
	baseCtx context.Context
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewCheckoutHandler(
	baseCtx context.Context,
	checkoutService service.CheckoutService,
	widgets WidgetQueue,
	notifier service.Notifier,
	logger *slog.Logger,
	timeout time.Duration,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		widgets:         widgets,
		notifier:        notifier,
		logger:          logger,
		baseCtx:         baseCtx,
		timeout:         timeout,
	}
}

// Buy starts a checkout attempt and returns immediately. Progress reaches the
// page through notices and the pending widget queue.
func (h *CheckoutHandler) Buy(c echo.Context) error {
	var req dto.BuyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	attemptID := uuid.NewString()
	buy := service.BuyRequest{
		AttemptID: attemptID,
		ProductID: c.Param("productID"),
		Email:     req.Email,
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		ctx, cancel := context.WithTimeout(h.baseCtx, h.timeout)
		defer cancel()

		res, err := h.checkoutService.Buy(ctx, buy)
		if err != nil {
			h.logger.InfoContext(ctx, "checkout ended",
				slog.String("attempt", attemptID),
				slog.String("phase", string(res.Phase)),
				slog.Any("error", err),
			)
		}
	}()

	return c.JSON(http.StatusAccepted, dto.BuyResponse{AttemptID: attemptID})
}

func (h *CheckoutHandler) Pending(c echo.Context) error {
	pending := h.widgets.Pending()

	resp := make([]dto.PendingCheckoutResponse, 0, len(pending))
	for _, p := range pending {
		resp = append(resp, dto.PendingCheckoutResponse{
			Key:         p.Key,
			Amount:      p.Amount,
			Currency:    p.Currency,
			Name:        p.Name,
			Description: p.Description,
			OrderID:     p.OrderID,
			Email:       p.Email,
			Notes:       p.Notes,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) Callback(c echo.Context) error {
	var req dto.PaymentCallbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	orderID := c.Param("orderID")

	kind := client.OutcomeKind(req.Outcome)
	switch kind {
	case client.OutcomeSuccess, client.OutcomeCancelled, client.OutcomeFailure:
	case outcomeAttemptFailed:
		return h.attemptFailed(c, orderID, req.Reason)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown outcome")
	}

	err := h.widgets.Resolve(orderID, &client.PaymentOutcome{
		Kind:      kind,
		PaymentID: req.RazorpayPaymentID,
		OrderID:   req.RazorpayOrderID,
		Signature: req.RazorpaySignature,
		Reason:    req.Reason,
	})
	if errors.Is(err, client.ErrUnknownCheckout) {
		return echo.NewHTTPError(http.StatusNotFound, "no pending checkout")
	}
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// attemptFailed reports a declined attempt. The widget stays open for a retry,
// so the checkout keeps waiting for its final outcome.
func (h *CheckoutHandler) attemptFailed(c echo.Context, orderID, reason string) error {
	if !h.isPending(orderID) {
		return echo.NewHTTPError(http.StatusNotFound, "no pending checkout")
	}

	if reason == "" {
		reason = "Payment failed"
	}
	h.notifier.Notify(c.Request().Context(), service.LevelError, "Payment failed: "+reason)
	return c.NoContent(http.StatusNoContent)
}

func (h *CheckoutHandler) isPending(orderID string) bool {
	for _, p := range h.widgets.Pending() {
		if p.OrderID == orderID {
			return true
		}
	}
	return false
}

// Returned reconciles an order the gateway redirected back with. The check
// runs in the background so the page can reload without waiting on it.
func (h *CheckoutHandler) Returned(ctx context.Context, orderID string, success bool) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		ctx, cancel := context.WithTimeout(h.baseCtx, h.timeout)
		defer cancel()

		if _, err := h.checkoutService.CheckReturn(ctx, orderID); err != nil {
			h.logger.WarnContext(ctx, "order status check", slog.String("order", orderID), slog.Any("error", err))
		}
	}()

	if success {
		h.notifier.Notify(ctx, service.LevelSuccess, "Payment successful! Processing your order...")
	}
}

// Wait blocks until every started checkout has returned.
func (h *CheckoutHandler) Wait() {
	h.wg.Wait()
}
