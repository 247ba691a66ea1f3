package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/textchan-dev/textchan/backend/internal/router"
	"github.com/textchan-dev/textchan/backend/internal/setup"
	"github.com/textchan-dev/textchan/shared/config"
	"github.com/textchan-dev/textchan/shared/logger"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)

	ctx := context.Background()
	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		logger.Log.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Log.Error("failed to close dependencies", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Public.Port),
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
		// no WriteTimeout: the event stream is long-lived
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logger.Log.Info("server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Public.ShutdownTimeout)
	defer cancel()
	// streams only end when their clients leave, so closing the broker first ends them
	deps.Broker.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("forced shutdown", "error", err)
	}
}
