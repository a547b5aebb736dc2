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

	"geocache/internal/auth"
	"geocache/internal/cache"
	"geocache/internal/config"
	"geocache/internal/controllers"
	"geocache/internal/hub"
	"geocache/internal/logger"
	"geocache/internal/routes"
	"geocache/internal/store"
	"geocache/internal/thumbnail"
	"geocache/internal/visitlink"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	// Initialize structured logging to file
	logWriter := logger.Setup(cfg.Log.File, cfg.Log.Level)
	gin.SetMode(cfg.Server.Mode)

	db, err := config.OpenDB(cfg.DB)
	if err != nil {
		logrus.WithError(err).Fatal("Database setup failed")
	}
	logrus.WithField("driver", cfg.DB.Driver).Info("Database connected and migrated")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	redisCache, err := cache.Connect(ctx, cfg.Redis)
	cancel()
	if err != nil {
		logrus.WithError(err).Fatal("Redis setup failed")
	}

	var google auth.GoogleProvider
	if cfg.GoogleEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		google, err = auth.NewGoogleProvider(ctx, cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
		cancel()
		if err != nil {
			logrus.WithError(err).Warn("Google sign-in disabled")
			google = nil
		}
	}

	visits := hub.NewVisitHub()
	h := &controllers.Handler{
		Store:      store.New(db),
		Sessions:   auth.NewSessionSigner(cfg.JWT.Secret, cfg.JWT.TTL),
		Google:     google,
		Links:      visitlink.NewBuilder(cfg.Server.BaseURL),
		Thumbnails: thumbnail.New(cfg.Google.MapsAPIKey, cfg.Server.ThumbnailDir, cfg.Server.ThumbnailPublic),
		Cache:      redisCache,
		Hub:        visits,
	}

	r := routes.SetupRouter(h, routes.Options{
		LogWriter:   logWriter,
		CorsOrigins: cfg.Server.CorsOrigins,
		APIKey:      cfg.API.Key,
	})

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("address", cfg.Server.Address).Info("Server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logrus.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}
	visits.Close()
	if err := redisCache.Close(); err != nil {
		logrus.WithError(err).Warn("Closing redis failed")
	}
	if err := config.CloseDB(db); err != nil {
		logrus.WithError(err).Warn("Closing database failed")
	}
	logrus.Info("Shutdown complete")
}
