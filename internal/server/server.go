package server

import (
	"context"
	"log/slog"
	"net/http"
	"storefront/internal/config"
	"storefront/internal/handler"
	storemw "storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Dependencies are the storefront components the HTTP surface drives.
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Sessions *service.SessionManager
	Auth     service.AuthService
	Catalog  *service.Catalog
	Cache    service.PurchaseCache
	Checkout service.CheckoutService
	Download service.DownloadGate
	Widgets  handler.WidgetQueue
	Notices  *service.NoticeFeed
}

type Server struct {
	echo   *echo.Echo
	cancel context.CancelFunc

	pageHandler     *handler.PageHandler
	authHandler     *handler.AuthHandler
	productHandler  *handler.ProductHandler
	checkoutHandler *handler.CheckoutHandler
	downloadHandler *handler.DownloadHandler
	noticeHandler   *handler.NoticeHandler
}

func NewServer(deps Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(storemw.SessionCookies(deps.Sessions, deps.Auth))

	baseCtx, cancel := context.WithCancel(context.Background())

	productHandler := handler.NewProductHandler(deps.Catalog, deps.Cache)
	checkoutHandler := handler.NewCheckoutHandler(baseCtx, deps.Checkout, deps.Widgets, deps.Notices, deps.Logger, deps.Config.Checkout.Timeout)

	pageHandler := handler.NewPageHandler(deps.Auth, productHandler, checkoutHandler,
		deps.Config.Checkout.MerchantName, deps.Config.Checkout.ScriptURL)

	s := &Server{
		echo:            e,
		cancel:          cancel,
		authHandler:     handler.NewAuthHandler(deps.Auth),
		productHandler:  productHandler,
		checkoutHandler: checkoutHandler,
		downloadHandler: handler.NewDownloadHandler(deps.Download),
		noticeHandler:   handler.NewNoticeHandler(deps.Notices),
		pageHandler:     pageHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/", s.pageHandler.Index)

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api.GET("/session", s.authHandler.Session)
	api.GET("/products", s.productHandler.ListProducts)
	api.POST("/purchases/refresh", s.productHandler.RefreshPurchases)
	api.GET("/download/:productID", s.downloadHandler.Download)
	api.GET("/notices", s.noticeHandler.Drain)

	// -------- auth --------
	auth := api.Group("/auth")
	auth.POST("/request-code", s.authHandler.RequestCode)
	auth.POST("/verify-code", s.authHandler.VerifyCode)
	auth.POST("/logout", s.authHandler.Logout)

	// -------- checkout / widget bridge --------
	checkout := api.Group("/checkout")
	checkout.GET("/pending", s.checkoutHandler.Pending)
	checkout.POST("/:productID", s.checkoutHandler.Buy)
	checkout.POST("/:orderID/callback", s.checkoutHandler.Callback)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// Shutdown stops accepting requests, cancels running checkouts and waits for them.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.cancel()
	s.checkoutHandler.Wait()
	return err
}
