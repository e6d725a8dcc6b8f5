package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bihar-bazaar/internal/auth"
	"bihar-bazaar/internal/backend"
	"bihar-bazaar/internal/config"
	"bihar-bazaar/internal/coupon"
	"bihar-bazaar/internal/database"
	"bihar-bazaar/internal/handler"
	"bihar-bazaar/internal/messaging"
	"bihar-bazaar/internal/pricing"
	"bihar-bazaar/internal/repository"
	"bihar-bazaar/internal/router"
	"bihar-bazaar/internal/service"
	"bihar-bazaar/internal/session"
	"bihar-bazaar/internal/telemetry"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting bihar-bazaar storefront server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.TracingEnabled {
		shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName, cfg.Telemetry.ServiceVersion)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Error().Err(err).Msg("failed to flush traces")
			}
		}()
	}

	metricsHandler, meterProvider, err := telemetry.InitMeterProvider(cfg.Telemetry.ServiceName, cfg.Telemetry.ServiceVersion)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer meterProvider.Shutdown(context.Background())

	metrics, err := telemetry.NewMetrics(meterProvider)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	// Database
	if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	sessionRepo := repository.NewSessionRepository(pool, logger)
	ledgerRepo := repository.NewLedgerRepository(pool, logger)

	api := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)

	sessions := session.NewManager(sessionRepo, ledgerRepo, api, auth.Options{
		ResendCooldown: cfg.Auth.ResendCooldown,
		CountryCode:    cfg.Auth.CountryCode,
	}, metrics, logger)
	defer sessions.Close()

	go sessions.RunSweeper(ctx, cfg.Session.SweepInterval, cfg.Session.IdleTimeout)

	// Coupons
	evaluator, err := coupon.NewEvaluator(ctx, cfg.Coupon.Files, newCouponLoader(ctx, cfg.S3, logger), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize coupon evaluator: %w", err)
	}

	// Order events
	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.Kafka.Enabled {
		publisher = messaging.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("publishing order events to kafka")
	}
	defer publisher.Close()

	calc := pricing.NewCalculator(pricing.Policy{
		FreeShippingThreshold:     cfg.Pricing.FreeShippingThreshold,
		FlatShippingFee:           cfg.Pricing.FlatShippingFee,
		ChargeShippingOnEmptyCart: cfg.Pricing.ChargeShippingOnEmptyCart,
	})

	// Services
	productService := service.NewProductService(api, cfg.Backend.ProductCacheTTL, logger)
	cartService := service.NewCartService(api, productService, calc, sessions, metrics, logger)
	addressService := service.NewAddressService(api, logger)
	wishlistService := service.NewWishlistService(productService, sessions, logger)
	orderService := service.NewOrderService(api, logger)
	authService := service.NewAuthService(cartService, sessions, metrics, logger)
	checkoutService := service.NewCheckoutService(api, addressService, evaluator, calc, publisher, sessions, metrics, service.CheckoutOptions{
		Currency:         cfg.Pricing.Currency,
		PaymentKeyID:     cfg.Payment.KeyID,
		CODRedirectDelay: cfg.Checkout.CODRedirectDelay,
	}, logger)

	// HTTP
	mux := router.New(router.Handlers{
		Session:  handler.NewSessionHandler(sessions, logger),
		Product:  handler.NewProductHandler(productService, logger),
		Auth:     handler.NewAuthHandler(authService, logger),
		Wishlist: handler.NewWishlistHandler(wishlistService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Address:  handler.NewAddressHandler(addressService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
	}, sessions, router.Options{
		AllowOrigins: cfg.Server.AllowOrigins,
		Metrics:      metricsHandler,
		Ready:        pool.Ping,
	}, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      otelhttp.NewHandler(mux, "storefront"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newCouponLoader reads coupon tables from S3 when enabled, falling back to
// the local file system for any file S3 cannot serve.
func newCouponLoader(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) coupon.Loader {
	fileLoader := coupon.NewFileLoader(logger)
	if !cfg.Enabled {
		logger.Info().Msg("using local file system for coupon files (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := coupon.NewS3Loader(ctx, cfg.Bucket, cfg.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}
	return coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.Prefix, logger)
}
