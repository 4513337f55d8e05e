package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damon-houk/payment-query-service/internal/bootstrap"
	"github.com/damon-houk/payment-query-service/internal/config"
	"github.com/damon-houk/payment-query-service/internal/infrastructure/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, _ := cfg.Level()
	appLogger := logger.NewJSONLogger(os.Stdout, level)
	logger.SetDefaultLogger(appLogger)

	appLogger.Info("Starting payment query service", logger.Fields{
		"addr":   cfg.Server.Addr,
		"driver": cfg.Store.Driver,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to assemble service", logger.Fields{"error": err.Error()})
	}
	defer func() {
		if err := app.Close(); err != nil {
			appLogger.Error("Error closing store", logger.Fields{"error": err.Error()})
		}
	}()

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      app.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// SIGHUP drops the snapshot cache so store updates show up before the TTL
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-hup:
				app.Refresh()
			case <-ctx.Done():
				return
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("Server listening", logger.Fields{"addr": cfg.Server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Error("Server failed", logger.Fields{"error": err.Error()})
		}
	case <-ctx.Done():
		appLogger.Info("Shutting down", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Graceful shutdown failed", logger.Fields{"error": err.Error()})
	}
}
