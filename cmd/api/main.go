package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kickzhub/storefront-backend/api/routes"
	"github.com/kickzhub/storefront-backend/internal/address"
	"github.com/kickzhub/storefront-backend/internal/cart"
	"github.com/kickzhub/storefront-backend/internal/checkout"
	"github.com/kickzhub/storefront-backend/internal/promotions"
	"github.com/kickzhub/storefront-backend/internal/reconcile"
	"github.com/kickzhub/storefront-backend/internal/shopper"
	"github.com/kickzhub/storefront-backend/pkg/config"
	"github.com/kickzhub/storefront-backend/pkg/logger"
	"github.com/kickzhub/storefront-backend/pkg/metrics"
	"github.com/kickzhub/storefront-backend/pkg/orderapi"
	"github.com/kickzhub/storefront-backend/pkg/redis"
	"github.com/kickzhub/storefront-backend/pkg/storeapi"
	"github.com/kickzhub/storefront-backend/pkg/vnpay"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	gatewayClient, err := vnpay.NewClient(ctx, cfg.Gateway, logg)
	if err != nil {
		logg.Error(ctx, "failed to create gateway client", err)
		os.Exit(1)
	}
	orderClient, err := orderapi.NewClient(ctx, cfg.OrderAPI, logg)
	if err != nil {
		logg.Error(ctx, "failed to create order api client", err)
		os.Exit(1)
	}
	storeClient, err := storeapi.NewClient(ctx, cfg.StoreAPI, logg)
	if err != nil {
		logg.Error(ctx, "failed to create store api client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	watcher, err := shopper.NewWatcher(logg)
	if err != nil {
		logg.Error(ctx, "failed to create identity watcher", err)
		os.Exit(1)
	}
	events, cancelEvents := watcher.Subscribe(64)
	defer cancelEvents()
	go func() {
		for event := range events {
			evCtx := logg.WithFields(context.Background(), map[string]any{
				"session_id": event.SessionID,
				"previous":   event.Previous.String(),
				"current":    event.Current.String(),
			})
			logg.Info(evCtx, "shopper identity changed")
		}
	}()

	cartService, err := cart.NewService(redisClient, logg, cfg.Cart.TTL)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}
	promotionService, err := promotions.NewService(storeClient)
	if err != nil {
		logg.Error(ctx, "failed to create promotions service", err)
		os.Exit(1)
	}
	addressService, err := address.NewService(storeClient)
	if err != nil {
		logg.Error(ctx, "failed to create address service", err)
		os.Exit(1)
	}
	stagingStore, err := checkout.NewStagingStore(redisClient, cfg.Checkout)
	if err != nil {
		logg.Error(ctx, "failed to create staging store", err)
		os.Exit(1)
	}
	checkoutService, err := checkout.NewService(cartService, orderClient, gatewayClient, stagingStore, logg, checkoutMetrics, cfg.Checkout.OrderDescription)
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}
	reconcileService, err := reconcile.NewService(cartService, orderClient, stagingStore, logg, checkoutMetrics, cfg.Checkout.OrderDescription)
	if err != nil {
		logg.Error(ctx, "failed to create reconcile service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting storefront server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			Store:      redisClient,
			Watcher:    watcher,
			Gatherer:   registry,
			Carts:      cartService,
			Promotions: promotionService,
			Addresses:  addressService,
			Checkout:   checkoutService,
			Reconciler: reconcileService,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(startCtx, "storefront server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(startCtx, "storefront server shutdown incomplete", err)
			os.Exit(1)
		}
		logg.Info(startCtx, "storefront server stopped")
	}
}
