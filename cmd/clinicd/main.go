package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/clinicore/internal/config"
	"github.com/md-rashed-zaman/clinicore/internal/db"
	"github.com/md-rashed-zaman/clinicore/internal/directory"
	"github.com/md-rashed-zaman/clinicore/internal/handlers"
	"github.com/md-rashed-zaman/clinicore/internal/httpx"
	"github.com/md-rashed-zaman/clinicore/internal/kafkax"
	"github.com/md-rashed-zaman/clinicore/internal/ledger"
	"github.com/md-rashed-zaman/clinicore/internal/otelx"
	"github.com/md-rashed-zaman/clinicore/internal/outbox"
	"github.com/md-rashed-zaman/clinicore/internal/runtime"
	"github.com/md-rashed-zaman/clinicore/internal/scheduling"
	"github.com/md-rashed-zaman/clinicore/internal/storage"
	"github.com/md-rashed-zaman/clinicore/internal/transfer"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func main() {
	service := config.String("SERVICE_NAME", "clinicd")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Error("schema migration failed", "err", err)
		panic(err)
	}

	directoryRepo := storage.NewDirectoryRepository(pool)
	schedulingRepo := storage.NewSchedulingRepository(pool)
	ledgerRepo := storage.NewLedgerRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	directorySvc := directory.NewService(directoryRepo, logger)
	schedulingEngine := scheduling.NewEngine(schedulingRepo, outboxRepo, logger)
	ledgerEngine := ledger.NewEngine(ledgerRepo, outboxRepo, logger)
	transferSvc := transfer.NewService(pool, logger)

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if kafkaBrokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}
	mux := runtime.NewBaseMuxWithReady(readyChecks...)

	handlers.NewDirectoryHandler(directorySvc, logger).Register(mux)
	handlers.NewSchedulingHandler(schedulingEngine, logger).Register(mux)
	handlers.NewLedgerHandler(ledgerEngine, logger,
		config.String("STRIPE_WEBHOOK_SECRET", ""),
		int64(config.Int("STRIPE_WEBHOOK_TOLERANCE_SECONDS", 300)),
	).Register(mux)
	handlers.NewTransferHandler(transferSvc, logger).Register(mux)

	middlewares := []httpx.Middleware{
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(int64(config.Int("MAX_BODY_BYTES", 10<<20))),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: splitList(config.String("CORS_ALLOWED_ORIGINS", "")),
		}),
	}
	unthrottled := []string{"/healthz", "/readyz", "/v1/webhooks/stripe"}
	if redisAddr := strings.TrimSpace(config.String("REDIS_ADDR", "")); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		limiter := httpx.NewRedisRateLimiter(rdb,
			config.Int("RATE_LIMIT_PER_MINUTE", 300), time.Minute, service).
			ExemptPaths(unthrottled...)
		middlewares = append(middlewares, limiter.Middleware(logger, true))
	} else {
		limiter := httpx.NewRateLimiter(config.Int("RATE_LIMIT_PER_MINUTE", 300), time.Minute).
			ExemptPaths(unthrottled...)
		middlewares = append(middlewares, limiter.Middleware())
	}

	httpHandler := httpx.Chain(mux, middlewares...)
	httpHandler = otelhttp.NewHandler(httpHandler, service)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
