package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"storefront/internal/client"
	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// App is the wired storefront shared by every command.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB

	Sessions *service.SessionManager
	Notices  *service.NoticeFeed
	Catalog  *service.Catalog
	Cache    service.PurchaseCache
	Auth     service.AuthService
	Checkout service.CheckoutService
	Download service.DownloadGate
	Widgets  *client.WidgetGateway
}

func loadConfig(envFile string) (*config.Config, error) {
	// load .env into os.Environ
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// NewApp loads configuration and wires the storefront. Logs go to logOut.
func NewApp(opts *RootOptions, logOut io.Writer) (*App, error) {
	cfg, err := loadConfig(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	logger := config.NewLogger(cfg.Log, logOut)

	db, err := client.InitDBClient(cfg.Database)
	if err != nil {
		return nil, err
	}

	products, err := model.LoadCatalog(nil)
	if err != nil {
		return nil, err
	}

	backend := client.NewBackendClient(cfg.BackendURL(), &cfg.Backend)
	widgets := client.NewWidgetGateway(&cfg.Checkout)

	store := session.NewStore(repository.NewCredentialRepository(db), logger, session.Options{
		StorageKey:    cfg.Session.StorageKey,
		CookieName:    cfg.Session.CookieName,
		CookieDomains: cfg.Session.CookieDomains,
	})
	sessions := service.NewSessionManager(store, logger)
	notices := service.NewNoticeFeed(logger, 0)
	catalog := service.NewCatalog(products)
	cache := service.NewPurchaseCache(sessions, backend, notices, logger)
	cache.Subscribe(func(purchased map[string]bool) {
		logger.Debug("purchases updated", slog.Int("count", len(purchased)))
	})

	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Sessions: sessions,
		Notices:  notices,
		Catalog:  catalog,
		Cache:    cache,
		Auth:     service.NewAuthService(sessions, backend, cache, notices, logger),
		Checkout: service.NewCheckoutService(catalog, sessions, cache, backend, widgets, notices, logger, cfg.Checkout),
		Download: service.NewDownloadGate(sessions, cache, backend, notices, logger),
		Widgets:  widgets,
	}, nil
}

// PrintNotices writes pending notices, one per line.
func (a *App) PrintNotices(w io.Writer) {
	for _, n := range a.Notices.Drain() {
		fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Message)
	}
}

func (a *App) Close() {
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
