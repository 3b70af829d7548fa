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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmaidana/burger_kiosk/internal/config"
	"github.com/dmaidana/burger_kiosk/internal/es"
	"github.com/dmaidana/burger_kiosk/internal/logging"
	loggingmw "github.com/dmaidana/burger_kiosk/internal/middleware/logging"
	"github.com/dmaidana/burger_kiosk/internal/models"
	"github.com/dmaidana/burger_kiosk/internal/mykafka"
	"github.com/dmaidana/burger_kiosk/internal/service/order"
	httpserver "github.com/dmaidana/burger_kiosk/internal/transport/http"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	prod := mykafka.NewProducer(cfg.KAFKA_BROKERS)

	esClient, err := es.NewClient(cfg, logger)
	if err != nil {
		logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		esClient = nil
	}
	if esClient != nil {
		var products []models.Product
		if err := db.Find(&products).Error; err != nil {
			logger.Warn("product index skipped", "error", err)
		} else if err := es.IndexProducts(context.Background(), esClient, products); err != nil {
			logger.Warn("product index failed", "error", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	httpserver.Register(e, httpserver.Deps{
		DB:        db,
		Orders:    order.NewService(db, logger),
		Producer:  prod,
		ES:        esClient,
		ESIndex:   es.ProductIndex,
		JWTSecret: []byte(cfg.JWT_SECRET),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.SERVER_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
