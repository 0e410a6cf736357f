package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/storefront/internal/config"
	"github.com/jcmexdev/storefront/internal/pkg/auth"
	"github.com/jcmexdev/storefront/internal/pkg/cache"
	"github.com/jcmexdev/storefront/internal/pkg/metrics"
	"github.com/jcmexdev/storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront/internal/storefront/app"
	"github.com/jcmexdev/storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/storefront/internal/storefront/core/coupon"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/infra/events"
	"github.com/jcmexdev/storefront/internal/storefront/infra/grpcx"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx"
)

const healthProbeInterval = 15 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the gRPC health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(root.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	telemetry.InitLogger(cfg.Telemetry.LogLevel)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required (STOREFRONT_AUTH_JWT_SECRET)")
	}

	shutdownTracer, err := telemetry.SetupTracer(ctx, telemetry.TracerConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Environment: cfg.Telemetry.Environment,
		SampleRatio: cfg.Telemetry.SampleRatio,
		Enabled:     cfg.Telemetry.Enabled,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	st, err := openStorage(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()
	slog.Info("database ready", "driver", cfg.DB.Driver)

	idem := newCache(ctx, cfg)
	publisher, closePublisher := newPublisher(cfg.Kafka)
	defer closePublisher()

	m := metrics.NewServerMetrics(cfg.Telemetry.ServiceName)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTTL)
	evaluator := coupon.NewEvaluator()
	orch := checkout.NewOrchestrator(st,
		checkout.WithCheckoutLog(st.logs),
		checkout.WithCouponEvaluator(evaluator),
	)

	users := app.NewUserService(st, tokens)
	handler := httpx.NewHandler(httpx.Services{
		Orders: app.NewOrderService(st, orch,
			app.WithIdempotencyCache(idem, cfg.Redis.IdempotencyTTL),
			app.WithEvents(publisher),
			app.WithMetrics(m),
		),
		Carts:        app.NewCartService(st),
		Addresses:    app.NewAddressService(st),
		Coupons:      app.NewCouponService(st, evaluator),
		Shipping:     app.NewShippingService(st),
		Catalog:      app.NewCatalogService(st),
		Users:        users,
		CheckoutLogs: st.logs,
		DB:           st,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           httpx.NewRouter(handler, users, m),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.GRPCAddr, err)
	}
	grpcSrv := grpcx.NewServer(st)
	go grpcSrv.Watch(ctx, healthProbeInterval)

	errCh := make(chan error, 2)
	go func() {
		slog.Info("storefront HTTP running", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		slog.Info("storefront gRPC health running", "addr", cfg.Server.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case runErr = <-errCh:
		slog.Error("server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	grpcSrv.Shutdown()
	return runErr
}

// newCache falls back to the in-process cache when Redis is unset or down.
func newCache(ctx context.Context, cfg *config.Config) ports.Cache {
	name := cfg.Telemetry.ServiceName
	if cfg.Redis.Addr == "" {
		return cache.NewMemory(name)
	}
	r := cache.NewRedisCache(cfg.Redis.Addr, name)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		slog.Warn("redis unavailable, idempotency keys are kept in memory", "addr", cfg.Redis.Addr, "error", err)
		_ = r.Close()
		return cache.NewMemory(name)
	}
	return r
}

func newPublisher(cfg config.KafkaConfig) (ports.EventPublisher, func()) {
	p, err := events.NewKafkaPublisher(events.NewClient(cfg.Brokers), cfg.Topic)
	if err != nil {
		slog.Info("kafka disabled, order events go to the log")
		return events.LogPublisher{}, func() {}
	}
	return p, func() {
		if err := p.Close(); err != nil {
			slog.Error("kafka writer close error", "error", err)
		}
	}
}
