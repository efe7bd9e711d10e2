package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/grigta/numbering/pkg/config"
	"github.com/grigta/numbering/pkg/database"
	"github.com/grigta/numbering/pkg/logger"
	"github.com/grigta/numbering/pkg/messaging"
	"github.com/grigta/numbering/pkg/middleware"
	"github.com/grigta/numbering/services/numbering-service/internal/handlers"
	"github.com/grigta/numbering/services/numbering-service/internal/repository"
	"github.com/grigta/numbering/services/numbering-service/internal/service"
)

func main() {
	cfg, err := config.Load("/app/config", "./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
	})
	logger.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("Service stopped with error", logger.Err(err))
		os.Exit(1)
	}
}

// run owns every resource it opens, so all exits go through its defers.
func run(cfg *config.Config, log logger.Logger) error {
	ctx := context.Background()

	mongoDB, err := database.NewMongoDB(ctx, database.Options{
		URI:         cfg.Database.URI,
		DBName:      cfg.Database.DBName,
		Timeout:     cfg.Database.Timeout,
		MaxPoolSize: cfg.Database.MaxPoolSize,
		MinPoolSize: cfg.Database.MinPoolSize,
	})
	if err != nil {
		return err
	}
	defer mongoDB.Close()

	db := mongoDB.GetDatabase()

	accountRepo := repository.NewAccountRepository(db, mongoDB.Timeout(), log)
	numberRepo := repository.NewVirtualNumberRepository(db, mongoDB.Timeout(), log)

	if err := repository.EnsureIndexes(ctx, db, accountRepo, numberRepo); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	publisher := newPublisher(cfg, log)
	if closer, ok := publisher.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	limiter, redisClient := newLimiter(ctx, cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := service.NewMetricsCollector(prometheus.DefaultRegisterer)
	pagination := service.Pagination{
		DefaultLimit: cfg.Pagination.DefaultLimit,
		MaxLimit:     cfg.Pagination.MaxLimit,
	}

	accountService := service.NewAccountService(accountRepo, publisher, pagination, metrics, log)
	numberService := service.NewVirtualNumberService(numberRepo, publisher, pagination, metrics, log)

	httpHandler := handlers.NewHTTPHandler(accountService, numberService, mongoDB, cfg.App.IsDevelopment(), log)

	// gRPC only carries the standard health service.
	grpcAddr := fmt.Sprintf(":%d", cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port %s: %w", grpcAddr, err)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(cfg.App.Name, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	serveErr := make(chan error, 2)

	go func() {
		log.Info("Starting gRPC server", logger.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			serveErr <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log, "/health", cfg.Monitoring.MetricsPath))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORS.AllowOrigins)))

	router.GET("/health", httpHandler.Health)
	router.GET(cfg.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(limiter, cfg.RateLimit.Window))
	}
	httpHandler.RegisterRoutes(api)

	httpAddr := fmt.Sprintf(":%d", cfg.App.Port)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	runErr := waitForShutdown(quit, serveErr)
	if runErr != nil {
		log.Error("Server failed", logger.Err(runErr))
	}

	log.Info("Shutting down servers...")

	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	grpcServer.GracefulStop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", logger.Err(err))
	}

	log.Info("Servers exited")
	return runErr
}

// newPublisher connects to RabbitMQ when a URL is configured. Events are
// best effort, so a broker that cannot be reached disables them.
func newPublisher(cfg *config.Config, log logger.Logger) messaging.Publisher {
	if cfg.RabbitMQ.URL == "" {
		log.Info("RabbitMQ not configured, events disabled")
		return messaging.NopPublisher{}
	}

	rmq, err := messaging.NewRabbitMQ(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.App.Name)
	if err != nil {
		log.Warn("Failed to connect to RabbitMQ, events disabled", logger.Err(err))
		return messaging.NopPublisher{}
	}
	return rmq
}

// newLimiter prefers a Redis backed limiter shared by all replicas and falls
// back to a per-process one.
func newLimiter(ctx context.Context, cfg *config.Config, log logger.Logger) (middleware.Limiter, *redis.Client) {
	if cfg.Redis.Addr == "" {
		return middleware.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable, using in-memory rate limiter", logger.Err(err))
		_ = client.Close()
		return middleware.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window), nil
	}

	return middleware.NewRedisLimiter(client, "ratelimit:"+cfg.App.Name, cfg.RateLimit.Requests, cfg.RateLimit.Window), client
}

// waitForShutdown blocks until a stop signal arrives or a server fails, and
// returns the server error if that came first.
func waitForShutdown(quit <-chan os.Signal, serveErr <-chan error) error {
	select {
	case <-quit:
		return nil
	case err := <-serveErr:
		return err
	}
}
