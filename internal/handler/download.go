package handler

import (
	"fmt"
	"net/http"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type DownloadHandler struct {
	gate service.DownloadGate
}

func NewDownloadHandler(gate service.DownloadGate) *DownloadHandler {
	return &DownloadHandler{gate: gate}
}

func (h *DownloadHandler) Download(c echo.Context) error {
	file, err := h.gate.Download(c.Request().Context(), c.Param("productID"))
	if err != nil {
		return httpError(err)
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/zip"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Blob(http.StatusOK, contentType, file.Body)
}
