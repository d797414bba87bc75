package service

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"storefront/internal/client"
	"storefront/internal/config"
	"storefront/internal/dto"
	"storefront/internal/model"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// MockBackend implements client.BackendClient for testing.
type MockBackend struct {
	mu    sync.Mutex
	calls map[string]int

	RequestOTPFunc    func(ctx context.Context, email string) error
	VerifyOTPFunc     func(ctx context.Context, email, otp string) (string, error)
	ListPurchasesFunc func(ctx context.Context, credential string) ([]*model.Purchase, error)
	CreateOrderFunc   func(ctx context.Context, credential string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	VerifyPaymentFunc func(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error)
	DownloadFunc      func(ctx context.Context, credential, productID string) (*client.File, error)
	OrderStatusFunc   func(ctx context.Context, orderID string) (*model.OrderStatus, error)
}

func (m *MockBackend) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[name]++
}

func (m *MockBackend) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockBackend) RequestOTP(ctx context.Context, email string) error {
	m.record("RequestOTP")
	if m.RequestOTPFunc != nil {
		return m.RequestOTPFunc(ctx, email)
	}
	return nil
}

func (m *MockBackend) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	m.record("VerifyOTP")
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, email, otp)
	}
	return "", &client.APIError{StatusCode: 400}
}

func (m *MockBackend) ListPurchases(ctx context.Context, credential string) ([]*model.Purchase, error) {
	m.record("ListPurchases")
	if m.ListPurchasesFunc != nil {
		return m.ListPurchasesFunc(ctx, credential)
	}
	return nil, nil
}

func (m *MockBackend) CreateOrder(ctx context.Context, credential string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	m.record("CreateOrder")
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, credential, req)
	}
	return &dto.CreateOrderResponse{}, nil
}

func (m *MockBackend) VerifyPayment(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
	m.record("VerifyPayment")
	if m.VerifyPaymentFunc != nil {
		return m.VerifyPaymentFunc(ctx, req)
	}
	return &dto.VerifyPaymentResponse{Success: true}, nil
}

func (m *MockBackend) Download(ctx context.Context, credential, productID string) (*client.File, error) {
	m.record("Download")
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, credential, productID)
	}
	return &client.File{}, nil
}

func (m *MockBackend) OrderStatus(ctx context.Context, orderID string) (*model.OrderStatus, error) {
	m.record("OrderStatus")
	if m.OrderStatusFunc != nil {
		return m.OrderStatusFunc(ctx, orderID)
	}
	return &model.OrderStatus{Status: "pending"}, nil
}

// MockGateway implements client.Gateway for testing.
type MockGateway struct {
	AvailableFunc func(ctx context.Context) bool
	OpenFunc      func(ctx context.Context, opts *client.CheckoutOptions) (*client.PaymentOutcome, error)
	Opened        []*client.CheckoutOptions
}

func (g *MockGateway) Available(ctx context.Context) bool {
	if g.AvailableFunc != nil {
		return g.AvailableFunc(ctx)
	}
	return true
}

func (g *MockGateway) Open(ctx context.Context, opts *client.CheckoutOptions) (*client.PaymentOutcome, error) {
	g.Opened = append(g.Opened, opts)
	if g.OpenFunc != nil {
		return g.OpenFunc(ctx, opts)
	}
	return &client.PaymentOutcome{Kind: client.OutcomeCancelled}, nil
}

type memStore struct {
	mu    sync.Mutex
	value string
}

func (s *memStore) Load(context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *memStore) Save(_ context.Context, credential string) {
	if credential == "" {
		return
	}
	s.mu.Lock()
	s.value = credential
	s.mu.Unlock()
}

func (s *memStore) Clear(context.Context) {
	s.mu.Lock()
	s.value = ""
	s.mu.Unlock()
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recordingNotifier) Notify(_ context.Context, level Level, message string) {
	r.mu.Lock()
	r.notices = append(r.notices, Notice{Level: level, Message: message})
	r.mu.Unlock()
}

func (r *recordingNotifier) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Message
	}
	return out
}

type fixture struct {
	store    *memStore
	backend  *MockBackend
	gateway  *MockGateway
	notes    *recordingNotifier
	sessions *SessionManager
	cache    PurchaseCache
	auth     AuthService
	checkout CheckoutService
	download DownloadGate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	products, err := model.LoadCatalog(nil)
	require.NoError(t, err)

	f := &fixture{
		store:   &memStore{},
		backend: &MockBackend{},
		gateway: &MockGateway{},
		notes:   &recordingNotifier{},
	}
	f.sessions = NewSessionManager(f.store, logger)
	f.cache = NewPurchaseCache(f.sessions, f.backend, f.notes, logger)
	f.auth = NewAuthService(f.sessions, f.backend, f.cache, f.notes, logger)
	f.checkout = NewCheckoutService(NewCatalog(products), f.sessions, f.cache, f.backend, f.gateway, f.notes, logger, config.Checkout{
		PollAttempts:    2,
		PollInterval:    time.Millisecond,
		SettleDelay:     time.Millisecond,
		MerchantName:    "ZishanHack",
		DefaultCurrency: "USD",
	})
	f.download = NewDownloadGate(f.sessions, f.cache, f.backend, f.notes, logger)
	return f
}

func credential(payload string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}

func purchases(records ...*model.Purchase) func(context.Context, string) ([]*model.Purchase, error) {
	return func(context.Context, string) ([]*model.Purchase, error) {
		return records, nil
	}
}
