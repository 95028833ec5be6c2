// server/cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"garden-application-api-server/config"
	"garden-application-api-server/internal/api/handlers"
	"garden-application-api-server/internal/api/routes"
	"garden-application-api-server/internal/auth"
	"garden-application-api-server/internal/docstore"
	"garden-application-api-server/internal/logging"
	"garden-application-api-server/internal/plot"
	"garden-application-api-server/internal/s3"
	"garden-application-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Document store
	store, err := docstore.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open document store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer store.Close(context.Background())

	// 3. Plot sessions
	plots, err := plot.NewManager(store, plot.ManagerOptions{
		WriteTimeout: cfg.Plot.WriteTimeout,
		CacheSize:    cfg.Plot.SessionCache,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create plot manager", zap.Error(err))
	}

	// 4. Optional object storage for photos and plant images
	var photos handlers.PhotoStore
	if cfg.S3.Enabled() {
		uploader, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			logger.Fatal("Failed to create S3 uploader", zap.Error(err))
		}
		photos = uploader
	} else {
		logger.Info("S3 is not configured; photo uploads are disabled")
	}

	router := routes.SetupRouter(routes.Deps{
		Config: cfg,
		Store:  store,
		Plots:  plots,
		Issuer: auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.Expiration),
		Hub:    socket.NewHub(logger),
		Photos: photos,
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting API server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", zap.Error(err))
	}
	if err := plots.Close(shutdownCtx); err != nil {
		logger.Error("Pending plot writes did not finish", zap.Error(err))
	}
}
