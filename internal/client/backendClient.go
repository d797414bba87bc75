package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"storefront/internal/config"
	"storefront/internal/dto"
	"storefront/internal/model"
	"strings"
)

// ErrNetwork wraps failures to reach the backend at all.
var ErrNetwork = errors.New("backend unreachable")

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Message returns the backend error message carried by err, or fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type File struct {
	Body        []byte
	ContentType string
}

type BackendClient interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) (string, error)
	ListPurchases(ctx context.Context, credential string) ([]*model.Purchase, error)
	CreateOrder(ctx context.Context, credential string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error)
	Download(ctx context.Context, credential, productID string) (*File, error)
	OrderStatus(ctx context.Context, orderID string) (*model.OrderStatus, error)
}

type backendClientImpl struct {
	httpClient *http.Client
	baseURL    string
}

func NewBackendClient(baseURL string, cfg *config.Backend) BackendClient {
	return &backendClientImpl{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *backendClientImpl) RequestOTP(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/request-otp", "", &dto.RequestOTPRequest{Email: email}, nil)
}

func (c *backendClientImpl) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	var res dto.VerifyOTPResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/verify-otp", "", &dto.VerifyOTPRequest{Email: email, OTP: otp}, &res)
	if err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", fmt.Errorf("verify otp: response has no token")
	}
	return res.Token, nil
}

func (c *backendClientImpl) ListPurchases(ctx context.Context, credential string) ([]*model.Purchase, error) {
	var res dto.PurchasesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/me/purchases", credential, nil, &res); err != nil {
		return nil, err
	}

	purchases := make([]*model.Purchase, 0, len(res.Purchases))
	for i, raw := range res.Purchases {
		var p model.Purchase
		if err := json.Unmarshal(raw, &p); err != nil {
			slog.DebugContext(ctx, "skipping malformed purchase record", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		purchases = append(purchases, &p)
	}
	return purchases, nil
}

func (c *backendClientImpl) CreateOrder(ctx context.Context, credential string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	var res dto.CreateOrderResponse
	if err := c.doJSON(ctx, http.MethodPost, "/razorpay/create-order", credential, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *backendClientImpl) VerifyPayment(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
	var res dto.VerifyPaymentResponse
	if err := c.doJSON(ctx, http.MethodPost, "/razorpay/verify-payment", "", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *backendClientImpl) Download(ctx context.Context, credential, productID string) (*File, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/download/"+url.PathEscape(productID), credential, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w: %v", productID, ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readAPIError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read download body: %w: %v", ErrNetwork, err)
	}

	return &File{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (c *backendClientImpl) OrderStatus(ctx context.Context, orderID string) (*model.OrderStatus, error) {
	var res dto.OrderStatusResponse
	if err := c.doJSON(ctx, http.MethodGet, "/purchase/status/"+url.PathEscape(orderID), "", nil, &res); err != nil {
		return nil, err
	}
	return &model.OrderStatus{Status: res.Status, Email: res.Email}, nil
}

func (c *backendClientImpl) newRequest(ctx context.Context, method, path, credential string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal req payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}
	return req, nil
}

func (c *backendClientImpl) doJSON(ctx context.Context, method, path, credential string, payload, out any) error {
	req, err := c.newRequest(ctx, method, path, credential, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var res dto.ErrorResponse
	if err := json.Unmarshal(b, &res); err == nil && res.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: res.Error}
	}
	return &APIError{StatusCode: resp.StatusCode}
}
