package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"myfood/internal/app"
	httpapi "myfood/internal/http"
	"myfood/internal/logger"
	"myfood/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides http.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cleanup, err := setupLogger()
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = cleanup() }()
	log := logger.L()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.HTTP.Addr = addr
	}

	gin.SetMode(gin.ReleaseMode)
	sys := app.New(cfg.Storage, log)
	srv := httpapi.NewServer(sys, metrics.NewServerMetrics(), log)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: srv.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http.listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Info("http.shutdown", "signal", sig.String())
	case err := <-errCh:
		sys.Shutdown(context.Background())
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("http.shutdown_failed", "error", err)
	}
	sys.Shutdown(context.Background())
	return nil
}
