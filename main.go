package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/sparsh1616/MedHistoryApp/api"
	"github.com/sparsh1616/MedHistoryApp/auth"
	"github.com/sparsh1616/MedHistoryApp/config"
	"github.com/sparsh1616/MedHistoryApp/store"
	"github.com/sparsh1616/MedHistoryApp/vivaproxy"
)

func main() {
	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	log.Info("starting case history server")
	log.Infof("HTTP port: %d", cfg.HTTPPort)
	log.Infof("database: %s", cfg.DatabaseURL)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	if cfg.AIAPIKey == "" {
		log.Warn("AI_API_KEY not set, the viva chat endpoint will answer 503")
	}

	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to initialize store: %v", err)
	}
	defer db.Close()

	jwtSvc := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	aiClient := vivaproxy.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AITimeout, cfg.AIMaxRetries)

	h := api.NewHandler(db, jwtSvc)
	vivaH := vivaproxy.NewHandler(aiClient)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)
	vivaH.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	log.Infof("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to shutdown gracefully: %v", err)
	}

	log.Info("server stopped")
}
