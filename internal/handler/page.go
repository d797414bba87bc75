package handler

import (
	"embed"
	"html/template"
	"net/http"
	"storefront/internal/dto"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
)

//go:embed templates/index.html
var templates embed.FS

var indexTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

type PageData struct {
	MerchantName string
	ScriptURL    string
	Session      dto.SessionResponse
	Products     []dto.ProductResponse
}

// PageHandler renders the storefront page and takes gateway redirects.
type PageHandler struct {
	authService service.AuthService
	products    *ProductHandler
	checkout    *CheckoutHandler

	merchantName string
	scriptURL    string
}

func NewPageHandler(
	authService service.AuthService,
	products *ProductHandler,
	checkout *CheckoutHandler,
	merchantName, scriptURL string,
) *PageHandler {
	return &PageHandler{
		authService:  authService,
		products:     products,
		checkout:     checkout,
		merchantName: merchantName,
		scriptURL:    scriptURL,
	}
}

func (h *PageHandler) Index(c echo.Context) error {
	if orderID := c.QueryParam("order_id"); orderID != "" {
		h.checkout.Returned(c.Request().Context(), orderID, c.QueryParam("success") == "true")
		return c.Redirect(http.StatusSeeOther, c.Request().URL.Path)
	}

	data := PageData{
		MerchantName: h.merchantName,
		ScriptURL:    h.scriptURL,
		Session:      sessionResponse(h.authService.Snapshot()),
		Products:     h.products.products(),
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return indexTemplate.Execute(c.Response(), data)
}
