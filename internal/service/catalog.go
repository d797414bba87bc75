package service

import "storefront/internal/model"

// Catalog is the fixed product list.
type Catalog struct {
	products []*model.Product
	byID     map[string]*model.Product
}

func NewCatalog(products []*model.Product) *Catalog {
	byID := make(map[string]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Catalog{products: products, byID: byID}
}

func (c *Catalog) All() []*model.Product {
	return c.products
}

func (c *Catalog) Find(productID string) (*model.Product, bool) {
	p, ok := c.byID[productID]
	return p, ok
}
