package handler

import (
	"net/http"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
)

// NoticeSource hands out notices the page has not shown yet.
type NoticeSource interface {
	Drain() []service.Notice
}

type NoticeHandler struct {
	notices NoticeSource
}

func NewNoticeHandler(notices NoticeSource) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

func (h *NoticeHandler) Drain(c echo.Context) error {
	items := h.notices.Drain()
	if items == nil {
		items = []service.Notice{}
	}
	return c.JSON(http.StatusOK, items)
}
