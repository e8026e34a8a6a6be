package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"news-api/internal/config"
	pgRepo "news-api/internal/infra/adapter/persistence/postgres"
	sqliteRepo "news-api/internal/infra/adapter/persistence/sqlite"
	"news-api/internal/infra/db"
	"news-api/internal/infra/worker"
	"news-api/internal/observability/logging"
	"news-api/internal/observability/tracing"
	"news-api/internal/repository"
	artUC "news-api/internal/usecase/article"

	hhttp "news-api/internal/handler/http"
	harticle "news-api/internal/handler/http/article"
	"news-api/internal/handler/http/middleware"
	"news-api/internal/handler/http/requestid"
)

func main() {
	if err := run(); err != nil {
		slog.Error("news api exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	_, shutdownTracing := tracing.InitProvider(tracing.ProviderConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: cfg.Version,
		SampleRatio:    cfg.Tracing.SampleRatio,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}

	svc := artUC.Service{Repo: newArticleRepo(pool)}

	var refresher *worker.MetricsRefresher
	if cfg.Metrics.RefreshSchedule != "" {
		refresher, err = worker.NewMetricsRefresher(&svc, worker.RefresherConfig{
			Schedule: cfg.Metrics.RefreshSchedule,
			Timeout:  cfg.Metrics.RefreshTimeout,
		}, logger)
		if err != nil {
			_ = pool.Close()
			return err
		}
	}

	handler, err := setupServer(logger, cfg, pool, svc)
	if err != nil {
		_ = pool.Close()
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTP.Addr),
			slog.String("version", cfg.Version),
			slog.String("driver", string(pool.Driver())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if refresher != nil {
		g.Go(func() error {
			refresher.Start(gctx)
			<-gctx.Done()
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", slog.Any("error", err))
		}
		if refresher != nil {
			select {
			case <-refresher.Stop().Done():
			case <-shutdownCtx.Done():
				logger.Warn("metrics refresher did not stop in time")
			}
		}
		return nil
	})

	runErr := g.Wait()

	if err := pool.Close(); err != nil {
		logger.Error("failed to close database", slog.Any("error", err))
	}
	tracingCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := shutdownTracing(tracingCtx); err != nil {
		logger.Error("failed to shut down tracer provider", slog.Any("error", err))
	}

	logger.Info("server stopped")
	return runErr
}

// initDatabase opens the pool and makes sure the news table exists.
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*db.Pool, error) {
	pool, err := db.Open(ctx, db.ConnectionConfig{
		Driver:          db.Driver(cfg.Driver),
		DSN:             cfg.DSN(),
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		CircuitBreaker:  cfg.BreakerEnabled,
	})
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx, pool, pool.Driver()); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return pool, nil
}

func newArticleRepo(pool *db.Pool) repository.ArticleRepository {
	if pool.Driver() == db.DriverSQLite {
		return sqliteRepo.NewArticleRepo(pool)
	}
	return pgRepo.NewArticleRepo(pool)
}

// setupServer registers every route and wraps the mux in the middleware chain.
// Order (outermost first): request ID, tracing, logging, recovery, metrics,
// rate limit, body limit.
func setupServer(logger *slog.Logger, cfg *config.Config, pool *db.Pool, svc artUC.Service) (http.Handler, error) {
	mux := http.NewServeMux()
	harticle.Register(mux, svc)

	mux.Handle("GET /health", &hhttp.HealthHandler{Pool: pool, Version: cfg.Version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{Pool: pool})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	mux.HandleFunc("/", hhttp.NotFound)

	mws := []hhttp.Middleware{
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.Recover(logger),
		hhttp.MetricsMiddleware,
	}

	if cfg.RateLimit.Enabled {
		limiter, err := newRateLimiter(logger, cfg.RateLimit)
		if err != nil {
			return nil, err
		}
		mws = append(mws, limiter.Middleware)
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	mws = append(mws, hhttp.LimitRequestBody(cfg.HTTP.MaxBodyBytes))
	return hhttp.Chain(mux, mws...), nil
}

func newRateLimiter(logger *slog.Logger, cfg config.RateLimitConfig) (*middleware.RateLimiter, error) {
	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	var extractor middleware.IPExtractor
	if proxies.Enabled {
		extractor = middleware.NewTrustedProxyExtractor(proxies)
		logger.Info("rate limiting: trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(proxies.AllowedCIDRs)))
	} else {
		extractor = &middleware.RemoteAddrExtractor{}
		logger.Info("rate limiting: using RemoteAddr (proxy headers ignored)")
	}

	logger.Info("rate limiting initialized",
		slog.Float64("rps", cfg.RequestsPerSecond),
		slog.Int("burst", cfg.Burst),
		slog.Duration("idle_ttl", cfg.IdleTTL))

	return middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		IdleTTL:           cfg.IdleTTL,
	}, extractor), nil
}
