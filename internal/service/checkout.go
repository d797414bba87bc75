package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"storefront/internal/client"
	"storefront/internal/config"
	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/retry"
	"storefront/internal/token"
	"strings"
	"time"

	"github.com/google/uuid"
)

type CheckoutPhase string

const (
	PhaseIdle                CheckoutPhase = "idle"
	PhaseEmailCollection     CheckoutPhase = "email_collection"
	PhaseOrderCreation       CheckoutPhase = "order_creation"
	PhaseGatewayOpen         CheckoutPhase = "gateway_open"
	PhaseVerificationPending CheckoutPhase = "verification_pending"
	PhaseSettled             CheckoutPhase = "settled"
)

type BuyRequest struct {
	AttemptID string // generated when empty
	ProductID string
	Email     string // used only when no session is active
}

type CheckoutResult struct {
	AttemptID string
	Phase     CheckoutPhase
	Order     *model.Order
	Outcome   *client.PaymentOutcome
}

type CheckoutService interface {
	// Buy runs one checkout attempt from order creation to settlement.
	Buy(ctx context.Context, req BuyRequest) (*CheckoutResult, error)
	// CheckReturn reconciles an order after the gateway redirected back to the page.
	CheckReturn(ctx context.Context, orderID string) (*model.OrderStatus, error)
}

type checkoutServiceImpl struct {
	catalog  *Catalog
	sessions *SessionManager
	cache    PurchaseCache
	backend  client.BackendClient
	gateway  client.Gateway
	notifier Notifier
	logger   *slog.Logger
	cfg      config.Checkout
}

func NewCheckoutService(
	catalog *Catalog,
	sessions *SessionManager,
	cache PurchaseCache,
	backend client.BackendClient,
	gateway client.Gateway,
	notifier Notifier,
	logger *slog.Logger,
	cfg config.Checkout,
) CheckoutService {
	return &checkoutServiceImpl{
		catalog:  catalog,
		sessions: sessions,
		cache:    cache,
		backend:  backend,
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
	}
}

func (s *checkoutServiceImpl) Buy(ctx context.Context, req BuyRequest) (*CheckoutResult, error) {
	res := &CheckoutResult{AttemptID: req.AttemptID, Phase: PhaseIdle}
	if res.AttemptID == "" {
		res.AttemptID = uuid.NewString()
	}
	log := s.logger.With(slog.String("attempt", res.AttemptID), slog.String("product", req.ProductID))

	product, ok := s.catalog.Find(req.ProductID)
	if !ok {
		s.notifier.Notify(ctx, LevelError, "Product not found")
		return res, fail(ErrUnknownProduct, "Product not found", nil)
	}

	sess := s.sessions.Current()
	email := sess.Identity
	if email == "" {
		res.Phase = PhaseEmailCollection
		email = strings.TrimSpace(req.Email)
		if email == "" {
			res.Phase = PhaseIdle
			s.notifier.Notify(ctx, LevelWarning, "Email is required for purchase")
			return res, fail(ErrEmailRequired, "Email is required for purchase", nil)
		}
		if !ValidEmail(email) {
			res.Phase = PhaseIdle
			s.notifier.Notify(ctx, LevelError, "Please enter a valid email address")
			return res, fail(ErrInvalidEmail, "Please enter a valid email address", nil)
		}
	}

	if err := retry.Poll(ctx, s.cfg.PollAttempts, s.cfg.PollInterval, s.gateway.Available); err != nil {
		log.ErrorContext(ctx, "payment widget unavailable", slog.Any("error", err))
		s.notifier.Notify(ctx, LevelError, "Payment system failed to load. Please refresh the page.")
		return res, fail(ErrGatewayUnavailable, "Payment system failed to load. Please refresh the page.", err)
	}

	res.Phase = PhaseOrderCreation
	s.notifier.Notify(ctx, LevelInfo, fmt.Sprintf("Processing payment for %s...", product.Name))

	created, err := s.backend.CreateOrder(ctx, sess.Credential, &dto.CreateOrderRequest{
		ProductID: product.ID,
		Email:     email,
		Price:     json.Number(product.Price.String()),
	})
	if err != nil {
		res.Phase = PhaseIdle
		if errors.Is(err, client.ErrNetwork) {
			s.notifier.Notify(ctx, LevelError, msgNetwork)
			return res, fail(ErrNetwork, msgNetwork, err)
		}
		msg := client.Message(err, "Payment initialization failed")
		log.ErrorContext(ctx, "create order", slog.Any("error", err))
		s.notifier.Notify(ctx, LevelError, "Payment Error: "+msg)
		return res, fail(ErrOrderCreation, msg, err)
	}
	if created.RazorpayOrderID == "" {
		res.Phase = PhaseIdle
		s.notifier.Notify(ctx, LevelError, "Payment Error: Payment initialization failed")
		return res, fail(ErrOrderCreation, "Payment initialization failed", nil)
	}

	order := &model.Order{
		OrderID:         created.OrderID,
		RazorpayOrderID: created.RazorpayOrderID,
		Amount:          created.Amount.Round(0).IntPart(),
		Currency:        created.Currency,
		Key:             created.Key,
		Email:           email,
	}
	if order.Currency == "" {
		order.Currency = s.cfg.DefaultCurrency
	}
	res.Order = order
	log.InfoContext(ctx, "order created",
		slog.String("order", order.OrderID),
		slog.String("gateway_order", order.RazorpayOrderID),
		slog.String("amount", order.MajorAmount().String()),
		slog.String("currency", order.Currency),
	)

	res.Phase = PhaseGatewayOpen
	s.notifier.Notify(ctx, LevelSuccess, "Opening payment gateway...")

	outcome, err := s.gateway.Open(ctx, &client.CheckoutOptions{
		Key:         order.Key,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Name:        s.cfg.MerchantName,
		Description: product.Name,
		OrderID:     order.RazorpayOrderID,
		Email:       email,
		Notes: map[string]string{
			"order_id":     order.OrderID,
			"product_name": product.Name,
			"product_id":   product.ID,
		},
	})
	if err != nil {
		res.Phase = PhaseIdle
		log.ErrorContext(ctx, "open payment widget", slog.Any("error", err))
		s.notifier.Notify(ctx, LevelError, "Payment system error. Please try again.")
		return res, fail(ErrPaymentFailed, "Payment system error. Please try again.", err)
	}
	res.Outcome = outcome

	switch outcome.Kind {
	case client.OutcomeSuccess:
	case client.OutcomeCancelled:
		res.Phase = PhaseIdle
		s.notifier.Notify(ctx, LevelWarning, "Payment cancelled")
		return res, fail(ErrPaymentCancelled, "Payment cancelled", nil)
	default:
		res.Phase = PhaseIdle
		reason := outcome.Reason
		if reason == "" {
			reason = "Payment failed"
		}
		s.notifier.Notify(ctx, LevelError, "Payment failed: "+reason)
		return res, fail(ErrPaymentFailed, "Payment failed: "+reason, nil)
	}

	res.Phase = PhaseVerificationPending
	s.notifier.Notify(ctx, LevelSuccess, "Payment successful! Verifying...")

	if err := s.verify(ctx, order, outcome); err != nil {
		return res, err
	}

	// purchase records trail payment confirmation on the backend
	if err := sleep(ctx, s.cfg.SettleDelay); err != nil {
		return res, err
	}
	_ = s.cache.Refresh(ctx)

	res.Phase = PhaseSettled
	s.notifier.Notify(ctx, LevelSuccess, "Your purchase is now available!")
	log.InfoContext(ctx, "checkout settled", slog.Bool("purchased", s.cache.IsPurchased(product.ID)))
	return res, nil
}

func (s *checkoutServiceImpl) verify(ctx context.Context, order *model.Order, outcome *client.PaymentOutcome) error {
	gatewayOrderID := outcome.OrderID
	if gatewayOrderID == "" {
		gatewayOrderID = order.RazorpayOrderID
	}

	verified, err := s.backend.VerifyPayment(ctx, &dto.VerifyPaymentRequest{
		RazorpayPaymentID: outcome.PaymentID,
		RazorpayOrderID:   gatewayOrderID,
		RazorpaySignature: outcome.Signature,
		OrderID:           order.OrderID,
	})
	if err != nil {
		if errors.Is(err, client.ErrNetwork) {
			s.notifier.Notify(ctx, LevelError, "Network error during verification")
			return fail(ErrNetwork, "Network error during verification", err)
		}
		msg := client.Message(err, "Payment verification failed")
		s.notifier.Notify(ctx, LevelError, msg)
		return fail(ErrPaymentUnverified, msg, err)
	}
	if !verified.Success {
		s.notifier.Notify(ctx, LevelError, "Payment verification failed")
		return fail(ErrPaymentUnverified, "Payment verification failed", nil)
	}

	s.notifier.Notify(ctx, LevelSuccess, "Payment verified successfully!")

	if !s.sessions.Active() && verified.Token != "" {
		identity := verified.Email
		if identity == "" {
			if claim, ok := token.Decode(verified.Token); ok {
				identity = claim.Email
			}
		}
		if identity == "" {
			identity = order.Email
		}
		s.sessions.Begin(ctx, verified.Token, identity)
	}
	return nil
}

func (s *checkoutServiceImpl) CheckReturn(ctx context.Context, orderID string) (*model.OrderStatus, error) {
	if orderID == "" {
		return nil, fmt.Errorf("check order status: empty order id")
	}
	s.notifier.Notify(ctx, LevelInfo, "Verifying your payment...")

	st, err := s.backend.OrderStatus(ctx, orderID)
	if err != nil {
		s.logger.ErrorContext(ctx, "check order status", slog.String("order", orderID), slog.Any("error", err))
		return nil, err
	}

	switch strings.ToLower(st.Status) {
	case "completed", "paid":
		s.notifier.Notify(ctx, LevelSuccess, "Payment verified! Your purchase is now available.")

		sess := s.sessions.Current()
		if sess.Active() && sess.Identity == st.Email {
			if err := sleep(ctx, s.cfg.SettleDelay); err != nil {
				return st, err
			}
			_ = s.cache.Refresh(ctx)
			return st, nil
		}

		if st.Email != "" {
			s.notifier.Notify(ctx, LevelInfo, fmt.Sprintf("Log in with %s to access your purchase.", st.Email))
		} else {
			s.notifier.Notify(ctx, LevelInfo, "Log in with the email you used at checkout to access your purchase.")
		}
	case "pending":
		s.notifier.Notify(ctx, LevelInfo, "Payment is being processed. Please wait...")
	default:
		s.notifier.Notify(ctx, LevelError, "Payment failed or was cancelled")
	}
	return st, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
