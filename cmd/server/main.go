package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"seoulapt/server/config"
	"seoulapt/server/internal/api"
	"seoulapt/server/internal/dataset"
	"seoulapt/server/internal/geometry"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger := config.NewLogger(cfg)
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Both files are read once, the dashboard cannot run without them
	loader := dataset.NewLoader(dataset.Options{
		Encoding: cfg.Data.Encoding,
		Sheet:    cfg.Data.Sheet,
	}, logger)
	data, err := loader.LoadAll(ctx, cfg.Data.TransactionsPath, cfg.Data.BoundariesPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load dashboard data")
	}
	logger.WithFields(logrus.Fields{
		"transactions": data.Transactions.Len(),
		"regions":      len(data.Regions),
	}).Info("Dashboard data loaded")

	if cfg.Map.Token == "" {
		logger.Debug("MAP_TOKEN is not set, map tiles may not render")
	}

	handler := api.NewHandler(data, geometry.SettingsFromConfig(cfg), logger)
	router := api.NewRouter(handler, api.NewMetrics(), cfg.Server.AllowedOrigins, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
}
