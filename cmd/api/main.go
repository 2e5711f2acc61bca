package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/contact-discovery/internal/app"
	"github.com/octobees/contact-discovery/internal/config"
	"github.com/octobees/contact-discovery/internal/handler"
	middlewarepkg "github.com/octobees/contact-discovery/internal/middleware"
	"github.com/octobees/contact-discovery/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	components, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise discovery", zap.Error(err))
	}
	defer components.Close()

	for name, ok := range cfg.Credentials.Availability() {
		logger.Info("provider credential", zap.String("provider", name), zap.Bool("configured", ok))
	}
	if !components.Search.Available() {
		logger.Warn("no web search credential configured; fallbacks will return nothing", zap.String("backend", cfg.Search.Backend))
	}

	discoveryHandler := handler.NewDiscoveryHandler(components.Discovery, components.Queries)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger.Named("http")))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, router.Handlers{Discovery: discoveryHandler})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
