package service

import (
	"errors"
	"storefront/internal/client"
)

// validation
var (
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrInvalidCode   = errors.New("verification code must be 6 digits")
	ErrEmailRequired = errors.New("email is required for purchase")
)

// authentication
var (
	ErrSessionExpired = errors.New("session expired")
	ErrLoginRequired  = errors.New("login required")
)

// authorization
var (
	ErrVerificationFailed = errors.New("purchase verification failed")
	ErrNotPurchased       = errors.New("product not purchased")
)

// backend and checkout
var (
	ErrRejected           = errors.New("rejected by backend")
	ErrUnknownProduct     = errors.New("unknown product")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrOrderCreation      = errors.New("order creation failed")
	ErrPaymentCancelled   = errors.New("payment cancelled")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrPaymentUnverified  = errors.New("payment verification failed")
	ErrDownloadFailed     = errors.New("download failed")
)

// ErrNetwork is the connectivity failure of any backend call.
var ErrNetwork = client.ErrNetwork

// Failure pairs a classified error with the message shown to the buyer.
type Failure struct {
	Kind    error
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Kind.Error() + ": " + f.Err.Error()
	}
	return f.Kind.Error()
}

func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind}
	}
	return []error{f.Kind, f.Err}
}

func fail(kind error, message string, cause error) error {
	return &Failure{Kind: kind, Message: message, Err: cause}
}

// UserMessage returns the buyer-facing text for err.
func UserMessage(err error) string {
	var f *Failure
	if errors.As(err, &f) && f.Message != "" {
		return f.Message
	}
	if errors.Is(err, ErrNetwork) {
		return msgNetwork
	}
	return "Something went wrong. Please try again."
}

const msgNetwork = "Network error. Please check your connection."
