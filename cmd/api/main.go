package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/joansfix/shop-api/internal/config"
	"github.com/joansfix/shop-api/internal/events"
	"github.com/joansfix/shop-api/internal/handlers"
	"github.com/joansfix/shop-api/internal/logging"
	"github.com/joansfix/shop-api/internal/metrics"
	"github.com/joansfix/shop-api/internal/payment"
	"github.com/joansfix/shop-api/internal/repository"
	"github.com/joansfix/shop-api/internal/server"
	"github.com/joansfix/shop-api/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// .env is optional; real deployments configure via the environment.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.NewLogger("shop-api")
	defer func() { _ = logger.Sync() }()

	logger.Info("starting shop-api", zap.Int("port", cfg.Server.Port))

	db, err := repository.Open(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name),
	)

	store := repository.NewStore(db, logger)
	orderCache := repository.NewRedisOrderCache(cfg.Redis, logger)

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
	defer eventPublisher.Close()

	gateway := payment.NewGatewayClient(cfg.PaymentGateway, logger)
	payments := payment.NewRegistry(logger)
	payments.Register("CreditCard", payment.NewCreditCardStrategy(gateway))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	checkoutService := service.NewCheckoutService(
		store,
		payments,
		orderCache,
		eventPublisher,
		m,
		cfg.Features,
		logger,
	)
	orderService := service.NewOrderService(store, orderCache, cfg.Features, logger)

	h := handlers.NewHandlers(checkoutService, orderService, store, logger)

	srv := server.New(h, store, registry, cfg)

	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("order_caching", cfg.Features.EnableOrderCaching),
			zap.Bool("order_events", cfg.Features.EnableOrderEvents),
		)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
