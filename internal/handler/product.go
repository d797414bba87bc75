package handler

import (
	"net/http"
	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	catalog *service.Catalog
	cache   service.PurchaseCache
}

func NewProductHandler(catalog *service.Catalog, cache service.PurchaseCache) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		cache:   cache,
	}
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.products())
}

// RefreshPurchases forces a reload of the purchase set before listing.
func (h *ProductHandler) RefreshPurchases(c echo.Context) error {
	if err := h.cache.Refresh(c.Request().Context()); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, h.products())
}

func (h *ProductHandler) products() []dto.ProductResponse {
	purchased := h.cache.Snapshot()

	products := h.catalog.All()
	resp := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, productResponse(p, purchased[p.ID]))
	}
	return resp
}

func productResponse(p *model.Product, purchased bool) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.StringFixed(2),
		OriginalPrice: p.OriginalPrice.StringFixed(2),
		Discount:      p.Discount,
		Badges:        p.Badges,
		Icon:          p.Icon,
		IconColor:     p.IconColor,
		SalesCount:    p.SalesCount,
		Features:      p.Features,
		Purchased:     purchased,
	}
}
