package model

import "github.com/shopspring/decimal"

// Order is a gateway order created by the backend for one checkout attempt.
type Order struct {
	OrderID         string
	RazorpayOrderID string
	Amount          int64 // minor units, as reported by the gateway
	Currency        string
	Key             string
	Email           string
}

// MajorAmount converts the gateway amount from minor units.
func (o *Order) MajorAmount() decimal.Decimal {
	return decimal.New(o.Amount, -2)
}

// OrderStatus is the backend view of an order after a gateway redirect.
type OrderStatus struct {
	Status string
	Email  string
}
