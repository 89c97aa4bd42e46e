package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/datatables-go/internal/config"
	"github.com/satishbabariya/datatables-go/internal/logging"
	"github.com/satishbabariya/datatables-go/internal/transport/httpapi"
	"github.com/satishbabariya/datatables-go/internal/ui"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(opts *rootOptions) *cobra.Command {
	var (
		addr       string
		allowDebug bool
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve configured tables over HTTP",
		Long:  "Serve every configured table at /tables/:name, with /healthz and, when enabled, /metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			loader, c, err := opts.container(ctx, true)
			if err != nil {
				return err
			}
			defer c.Close(context.Background())

			cfg := c.Config()
			if addr == "" {
				addr = cfg.Server.Addr
			}

			warnServeOptions(allowDebug, watch, loader.ConfigFile())
			if watch && loader.ConfigFile() != "" {
				loader.Watch(c.Reload, func(err error) {
					logging.Error("config reload rejected", "error", err)
				})
			}

			if logging.Enabled(slog.LevelDebug) {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			handler := httpapi.NewTableHandler(c.Tables().Table, allowDebug)
			srv := &http.Server{
				Addr:              addr,
				Handler:           httpapi.NewRouter(handler, c.Telemetry().Handler()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			return serve(ctx, srv, c.Tables().Names(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	cmd.Flags().BoolVar(&allowDebug, "allow-debug", false, "honor debug=true requests by returning SQL")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload table declarations when the config file changes")

	return cmd
}

func warnServeOptions(allowDebug, watch bool, configFile string) {
	if allowDebug {
		ui.PrintWarning("debug=true requests return generated SQL; do not expose this server publicly")
	}
	if watch && configFile == "" {
		ui.PrintWarning("no config file found, --watch has nothing to reload")
	}
}

func serve(ctx context.Context, srv *http.Server, tables []string, cfg *config.Config) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	ui.PrintSuccess("listening on %s (%d tables, %s)", srv.Addr, len(tables), cfg.Database.Provider)
	logging.Info("server started", "addr", srv.Addr, "tables", tables)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logging.Info("server stopped")
	return nil
}
