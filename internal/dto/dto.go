package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ---- backend wire types ----

type RequestOTPRequest struct {
	Email string `json:"email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type VerifyOTPResponse struct {
	Token string `json:"token"`
}

// PurchasesResponse keeps records raw so one malformed entry does not sink the list.
type PurchasesResponse struct {
	Purchases []json.RawMessage `json:"purchases"`
}

type CreateOrderRequest struct {
	ProductID string      `json:"productId"`
	Email     string      `json:"email"`
	Price     json.Number `json:"price,omitempty"`
}

type CreateOrderResponse struct {
	RazorpayOrderID string          `json:"razorpayOrderId"`
	Amount          decimal.Decimal `json:"amount"` // minor units; number or string
	Currency        string          `json:"currency"`
	Key             string          `json:"key"`
	OrderID         string          `json:"orderId"`
}

type VerifyPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderID           string `json:"order_id"`
}

type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Email   string `json:"email,omitempty"`
}

type OrderStatusResponse struct {
	Status string `json:"status"`
	Email  string `json:"email"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ---- storefront page types ----

type RequestCodeRequest struct {
	Email string `json:"email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type SessionResponse struct {
	State        string `json:"state"`
	Email        string `json:"email,omitempty"`
	PendingEmail string `json:"pending_email,omitempty"`
}

type VerifyCodeResponse struct {
	SessionResponse
	ClearCode bool `json:"clear_code,omitempty"`
}

type ProductResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         string   `json:"price"`
	OriginalPrice string   `json:"original_price"`
	Discount      string   `json:"discount"`
	Badges        []string `json:"badges"`
	Icon          string   `json:"icon"`
	IconColor     string   `json:"icon_color"`
	SalesCount    string   `json:"sales_count"`
	Features      []string `json:"features"`
	Purchased     bool     `json:"purchased"`
}

type BuyRequest struct {
	Email string `json:"email"`
}

type BuyResponse struct {
	AttemptID string `json:"attempt_id"`
}

type PaymentCallbackRequest struct {
	Outcome           string `json:"outcome"` // success | cancelled | failed | attempt_failed
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	Reason            string `json:"reason"`
}

type PendingCheckoutResponse struct {
	Key         string            `json:"key"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	OrderID     string            `json:"order_id"`
	Email       string            `json:"email"`
	Notes       map[string]string `json:"notes"`
}
