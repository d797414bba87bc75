package model

import "strings"

const PurchaseStatusCompleted = "completed"

type Purchase struct {
	ProductID string `json:"product_id"`
	Status    string `json:"status"`
}

func (p *Purchase) Completed() bool {
	return p.ProductID != "" && strings.EqualFold(p.Status, PurchaseStatusCompleted)
}
