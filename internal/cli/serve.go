package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"storefront/internal/server"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()

			return serve(app)
		},
	}
}

func serve(app *App) error {
	cfg := app.Config
	serverAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)

	srv := server.NewServer(server.Dependencies{
		Config:   cfg,
		Logger:   app.Logger,
		Sessions: app.Sessions,
		Auth:     app.Auth,
		Catalog:  app.Catalog,
		Cache:    app.Cache,
		Checkout: app.Checkout,
		Download: app.Download,
		Widgets:  app.Widgets,
		Notices:  app.Notices,
	})

	// restore the session persisted by an earlier run
	_ = app.Auth.Initialize(context.Background())

	app.Logger.Info("starting HTTP server", slog.String("addr", serverAddr), slog.String("backend", cfg.BackendURL()))
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	select {
	case err := <-errCh:
		return err
	case <-sigChan:
	}
	app.Logger.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
