package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"storefront/internal/service"
	"strings"

	"github.com/spf13/cobra"
)

// runWithApp wires the storefront, restores any stored session and runs fn.
// Notices raised along the way are printed to stderr.
func runWithApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, app *App) error) error {
	app, err := NewApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := app.Auth.Initialize(ctx); err != nil && !errors.Is(err, service.ErrSessionExpired) {
		return err
	}

	err = fn(ctx, app)
	app.PrintNotices(cmd.ErrOrStderr())
	return cliError(err)
}

// cliError prefers the buyer-facing message of a storefront failure.
func cliError(err error) error {
	var f *service.Failure
	if errors.As(err, &f) && f.Message != "" {
		return errors.New(f.Message)
	}
	return err
}

func NewLoginCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in with a one-time code sent by email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, app *App) error {
				if app.Sessions.Active() {
					fmt.Fprintf(cmd.OutOrStdout(), "Already logged in as %s\n", app.Sessions.Current().Identity)
					return nil
				}
				return login(ctx, app, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}

func login(ctx context.Context, app *App, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "Email: ")
	email, err := readLine(reader)
	if err != nil {
		return err
	}
	if err := app.Auth.RequestCode(ctx, email); err != nil {
		return err
	}
	app.PrintNotices(out)

	fmt.Fprint(out, "Code: ")
	code, err := readLine(reader)
	if err != nil {
		return err
	}
	if err := app.Auth.VerifyCode(ctx, email, code); err != nil {
		return err
	}

	fmt.Fprintf(out, "Logged in as %s\n", app.Auth.Snapshot().Email)
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func NewLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, app *App) error {
				app.Auth.Logout(ctx)
				return nil
			})
		},
	}
}

func NewProductsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog with your purchases marked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, app *App) error {
				return writeProducts(cmd.OutOrStdout(), app.Catalog.All(), app.Cache.Snapshot())
			})
		},
	}
}

func NewRefreshCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload purchases from the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, app *App) error {
				if !app.Sessions.Active() {
					return fmt.Errorf("refresh purchases: %w", service.ErrLoginRequired)
				}
				if err := app.Cache.Refresh(ctx); err != nil {
					return err
				}
				return writePurchased(cmd.OutOrStdout(), app.Cache.Snapshot())
			})
		},
	}
}

func NewDownloadCommand(opts *RootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "download <product-id>",
		Short: "Download a purchased product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, app *App) error {
				file, err := app.Download.Download(ctx, args[0])
				if err != nil {
					return err
				}

				path := filepath.Join(outDir, file.Name)
				if err := os.WriteFile(path, file.Body, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, len(file.Body))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory to save the file in")
	return cmd
}

func NewOrderStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "order-status <order-id>",
		Short: "Check an order after returning from the payment gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, app *App) error {
				st, err := app.Checkout.CheckReturn(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", st.Status, st.Email)
				return nil
			})
		},
	}
}
