package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"flatrent-backend/config"
	"flatrent-backend/controllers"
	"flatrent-backend/routes"
	"flatrent-backend/services"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env not found or couldn't load it; continuing with environment variables")
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	gin.SetMode(cfg.GinMode)

	if err := config.ConnectDatabase(cfg.SeedDemoData); err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	db := config.DB
	log.Info("database connection established and migrations applied")

	clock := services.SystemClock()

	userService := services.NewUserService(db, log)
	flatService := services.NewFlatService(db, clock, log)
	bookingService := services.NewBookingService(db, clock, log)
	extensionService := services.NewExtensionService(db, clock, log)
	reviewService := services.NewReviewService(db, clock, log)
	exportService := services.NewExportService(db, log)

	authController := controllers.NewAuthController(userService)
	flatController := controllers.NewFlatController(flatService)
	bookingController := controllers.NewBookingController(bookingService)
	extensionController := controllers.NewExtensionController(extensionService)
	reviewController := controllers.NewReviewController(reviewService)
	exportController := controllers.NewExportController(exportService)

	router := routes.SetupRouter(
		cfg, log,
		authController,
		flatController,
		bookingController,
		extensionController,
		reviewController,
		exportController,
	)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen and serve failed")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("forced shutdown")
	}

	log.Info("server exited")
}
