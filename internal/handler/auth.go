package handler

import (
	"net/http"
	"storefront/internal/dto"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, sessionResponse(h.authService.Snapshot()))
}

func (h *AuthHandler) RequestCode(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RequestCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.authService.RequestCode(ctx, req.Email); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, sessionResponse(h.authService.Snapshot()))
}

// VerifyCode answers backend rejections with a session body so the page can
// clear the code field and stay on the code step.
func (h *AuthHandler) VerifyCode(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	err := h.authService.VerifyCode(ctx, req.Email, req.Code)
	if err != nil && isValidation(err) {
		return httpError(err)
	}

	resp := dto.VerifyCodeResponse{
		SessionResponse: sessionResponse(h.authService.Snapshot()),
		ClearCode:       err != nil,
	}
	if err != nil {
		return c.JSON(statusOf(err), resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.authService.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, sessionResponse(h.authService.Snapshot()))
}

func sessionResponse(s service.AuthSnapshot) dto.SessionResponse {
	return dto.SessionResponse{
		State:        string(s.State),
		Email:        s.Email,
		PendingEmail: s.PendingEmail,
	}
}
