package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tradesphere/tradesphere-backend/api/routes"
	"github.com/tradesphere/tradesphere-backend/internal/cart"
	ordersvc "github.com/tradesphere/tradesphere-backend/internal/orders"
	"github.com/tradesphere/tradesphere-backend/internal/payments"
	"github.com/tradesphere/tradesphere-backend/internal/products"
	"github.com/tradesphere/tradesphere-backend/pkg/config"
	"github.com/tradesphere/tradesphere-backend/pkg/db"
	"github.com/tradesphere/tradesphere-backend/pkg/gateway"
	"github.com/tradesphere/tradesphere-backend/pkg/logger"
	"github.com/tradesphere/tradesphere-backend/pkg/metrics"
	"github.com/tradesphere/tradesphere-backend/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		ServiceName: "tradesphere-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, log)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer dbClient.Close()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer redisClient.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	gatewayMetrics := metrics.NewGatewayMetrics(registry)

	gatewayClient, err := gateway.New(
		cfg.Gateway.BaseURL,
		cfg.Gateway.Secret,
		cfg.Gateway.Timeout,
		gateway.WithMetrics(gatewayMetrics),
	)
	if err != nil {
		return fmt.Errorf("building gateway client: %w", err)
	}

	conn := dbClient.DB()
	ordersRepo := ordersvc.NewRepository(conn)
	productsRepo := products.NewRepository(conn)
	cartsRepo := cart.NewRepository(conn)

	orderService := ordersvc.NewService(
		ordersRepo,
		productsRepo,
		cartsRepo,
		dbClient,
		ordersvc.DefaultTransitions(),
		log,
	)
	paymentService := payments.NewService(ordersRepo, gatewayClient, log)

	handler := routes.New(routes.Deps{
		Config:   cfg,
		Log:      log,
		DB:       dbClient,
		Redis:    redisClient,
		Orders:   orderService,
		Payments: paymentService,
		Registry: registry,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(log.WithField(ctx, "port", cfg.App.Port), "api server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info(context.Background(), "api server stopped")
	return nil
}
