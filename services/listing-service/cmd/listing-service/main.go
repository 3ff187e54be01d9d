package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/monkeyprint/listings/libs/config"
	"github.com/monkeyprint/listings/libs/db"
	"github.com/monkeyprint/listings/libs/grpcx"
	"github.com/monkeyprint/listings/libs/httpx"
	"github.com/monkeyprint/listings/libs/kafkax"
	otelx "github.com/monkeyprint/listings/libs/otel"
	"github.com/monkeyprint/listings/libs/runtime"
	"github.com/monkeyprint/listings/services/listing-service/internal/consumer"
	"github.com/monkeyprint/listings/services/listing-service/internal/handlers"
	"github.com/monkeyprint/listings/services/listing-service/internal/inbox"
	"github.com/monkeyprint/listings/services/listing-service/internal/outbox"
	"github.com/monkeyprint/listings/services/listing-service/internal/storage"
	"github.com/monkeyprint/listings/services/listing-service/internal/sweep"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	if err := config.Load(".env"); err != nil {
		panic(err)
	}

	service := config.String("SERVICE_NAME", "listing-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	grpcPort, err := config.Port("GRPC_PORT", "9080")
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
	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL, db.Options{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
	})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	brokers := config.String("KAFKA_BROKERS", "")

	workers := runtime.NewWorkers(logger)

	outboxRepo := outbox.NewRepository()
	repo := storage.NewListingRepository(pool, outboxRepo)
	sweeper := sweep.New(repo, logger)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   brokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	workers.Go(ctx, "outbox-publisher", outboxPublisher.Run)

	if config.Bool("SWEEP_WORKER_ENABLED", true) {
		interval := config.Seconds("SWEEP_INTERVAL_SECONDS", time.Hour)
		workers.Go(ctx, "sweep-worker", sweep.NewWorker(sweeper, logger, sweep.WorkerConfig{Interval: interval}).Run)
	}

	if len(kafkax.SplitBrokers(brokers)) > 0 {
		sweepConsumer := consumer.New(logger, inbox.NewRepository(pool), consumer.Config{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", service),
			Topic:   config.String("KAFKA_SWEEP_TOPIC", consumer.TopicSweepRequested),
		}, consumer.SweepRequestHandler(sweeper, logger, time.Now))
		workers.Go(ctx, "sweep-consumer", sweepConsumer.Run)
	}

	checks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
		{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	}

	var limiter httpx.Middleware
	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer rdb.Close()
		limiter = httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, service).Middleware(logger, true)
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		limiter = httpx.NewRateLimiter(limitPerMinute, time.Minute).Middleware()
		logger.Info("rate limiting enabled (memory)", "per_minute", limitPerMinute)
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	registerRoutes(mux, routeDeps{
		listings:    handlers.NewListingHandler(repo, logger),
		admin:       handlers.NewAdminHandler(repo, sweeper, logger, config.Bool("SWEEP_ON_READ", true)),
		requireAuth: httpx.RequireAdmin(jwtSecret, "admin", "super_admin"),
		publicLimit: limiter,
	})

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: config.List("CORS_ALLOWED_ORIGINS", ""),
			AllowedMethods: config.List("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: config.List("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id"),
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(config.Seconds("REQUEST_TIMEOUT_SECONDS", 10*time.Second)),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "listing")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv, health := grpcx.NewServer(logger)
	health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	lis, err := net.Listen("tcp", ":"+grpcPort)
	if err != nil {
		logger.Error("grpc listen failed", "err", err)
		panic(err)
	}

	go func() {
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	grpcSrv.GracefulStop()
	if !workers.Wait(10 * time.Second) {
		logger.Warn("background workers did not stop in time")
	}
	logger.Info("servers stopped")
}
