package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/api"
	"github.com/jobwire/boardcrawler/internal/metrics"
)

// newServeCmd creates the 'serve' subcommand, which runs the HTTP API for
// triggering crawls and inspecting crawl status.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the crawl HTTP API",
		Long: `Starts an HTTP server exposing crawl triggers, per-company crawl status,
Prometheus metrics, and health probes. The server shuts down gracefully on
SIGINT or SIGTERM.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			logger := appInstance.Logger()
			metrics.Init()

			server := api.NewServer(
				appInstance.Runner(),
				appInstance.Companies(),
				appInstance.Statuses(),
				appInstance.Config(),
				logger,
			)

			addr := fmt.Sprintf(":%d", viper.GetInt("server.port"))
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server listening", zap.String("addr", addr))
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
			case <-ctx.Done():
				logger.Info("Shutdown signal received")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown http server: %w", err)
				}
			}
			return nil
		},
	}
}
