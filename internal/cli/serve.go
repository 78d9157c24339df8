package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-trick-analyzer/internal/logger"
	"go-trick-analyzer/internal/transport"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the local HTTP API",
		Long: `Serve the upload, analyze and state endpoints on HOST:PORT.

Routes:
  POST /api/upload   multipart field "image"
  POST /api/analyze
  POST /api/clear
  GET  /api/state
  GET  /api/image
  GET  /api/metrics
  GET  /health`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			transport.Version = version
			return runServe()
		},
	}
}

func runServe() error {
	c, err := setup()
	if err != nil {
		return err
	}
	cfg := c.Config()

	// Analysis can take as long as the service allows, plus the upload itself
	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           c.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.AnalysisTimeout + 30*time.Second,
	}

	errCh := make(chan error, 1)
	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"address":  cfg.ServerAddress(),
			"endpoint": cfg.PredictURL(),
			"storage":  cfg.StorageType,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("Server exited")
	return nil
}
