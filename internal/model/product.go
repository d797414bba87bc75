package model

import (
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice decimal.Decimal
	Discount      string
	Badges        []string
	Icon          string
	IconColor     string
	SalesCount    string
	Features      []string
}

type catalogEntry struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Price         string   `yaml:"price"`
	OriginalPrice string   `yaml:"original_price"`
	Discount      string   `yaml:"discount"`
	Badges        []string `yaml:"badges"`
	Icon          string   `yaml:"icon"`
	IconColor     string   `yaml:"icon_color"`
	SalesCount    string   `yaml:"sales_count"`
	Features      []string `yaml:"features"`
}

// LoadCatalog parses a YAML product list. A nil input loads the built-in catalog.
func LoadCatalog(data []byte) ([]*Product, error) {
	if data == nil {
		data = catalogYAML
	}

	var doc struct {
		Products []catalogEntry `yaml:"products"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(doc.Products))
	products := make([]*Product, 0, len(doc.Products))
	for _, e := range doc.Products {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry %q has no id", e.Name)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("duplicate product id %q", e.ID)
		}
		seen[e.ID] = true

		price, err := decimal.NewFromString(e.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s: invalid price: %w", e.ID, err)
		}
		original := price
		if e.OriginalPrice != "" {
			if original, err = decimal.NewFromString(e.OriginalPrice); err != nil {
				return nil, fmt.Errorf("product %s: invalid original price: %w", e.ID, err)
			}
		}

		products = append(products, &Product{
			ID:            e.ID,
			Name:          e.Name,
			Description:   e.Description,
			Price:         price,
			OriginalPrice: original,
			Discount:      e.Discount,
			Badges:        e.Badges,
			Icon:          e.Icon,
			IconColor:     e.IconColor,
			SalesCount:    e.SalesCount,
			Features:      e.Features,
		})
	}

	return products, nil
}
