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

	"goaltracker/config"
	"goaltracker/handler"
	"goaltracker/middleware"
	"goaltracker/repository"
	"goaltracker/repository/memory"
	"goaltracker/services"
	"goaltracker/usecase"
	"goaltracker/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	rateLimitCleanupTick = 10 * time.Minute
	shutdownTimeout      = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	utils.InitValidator()
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		utils.Log.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg config.AppConfig) error {
	repos, mongoClient, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	if mongoClient != nil {
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				utils.Log.WithError(err).Warn("mongo disconnect failed")
			}
		}()
	}

	redisClient, err := openRedis(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Without Redis every coordination concern falls back to an in-process
	// implementation, which is only correct for a single instance.
	var (
		locker    usecase.ScopeLocker
		notifier  usecase.Notifier
		blacklist middleware.TokenBlacklist
	)
	if redisClient != nil {
		locker = services.NewRedisScopeLocker(redisClient)
		notifier = services.NewRedisNotifier(redisClient)
		blacklist = services.NewTokenBlacklist(redisClient)
	} else {
		utils.Log.Warn("REDIS_URL not set, using in-process locks and blacklist")
		locker = services.NewLocalScopeLocker()
		notifier = services.LogNotifier{}
		blacklist = services.NewLocalTokenBlacklist()
	}

	clock := usecase.Clock{Now: time.Now, Location: cfg.Location()}
	tokens := services.NewTokenIssuer(cfg.Auth.JWTSecretKey, cfg.Auth.Issuer, cfg.Auth.JWTExpiration, cfg.Auth.RefreshTokenExpiration)

	subs := usecase.NewSubscriptionService(repos)
	streaks := usecase.NewStreakService(repos, locker, notifier, clock)
	users := usecase.NewUserService(repos, tokens, clock)
	goals := usecase.NewGoalService(repos, subs, streaks, clock, cfg.FreeGoalLimit)
	tasks := usecase.NewTaskService(repos, streaks, clock)
	slots := usecase.NewSlotService(repos, clock)
	reflections := usecase.NewReflectionService(repos, clock)
	journal := usecase.NewJournalService(repos, clock)
	guardians := usecase.NewGuardianService(repos, subs, notifier, clock)

	// AT_RISK_SWEEP_TIME=off leaves the sweep to an external trigger.
	if cfg.SweepEnabled() {
		scheduler := services.NewScheduler(cfg.Location())
		if _, err := scheduler.ScheduleDaily(cfg.AtRiskSweepTime, func() {
			sweepCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			n, err := streaks.DetectAtRisk(sweepCtx)
			if err != nil {
				utils.Log.WithError(err).Error("streak-at-risk sweep failed")
				return
			}
			utils.Log.WithField("notified", n).Info("streak-at-risk sweep finished")
		}); err != nil {
			return fmt.Errorf("schedule at-risk sweep: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	router := gin.New()
	router.Use(
		middleware.EnhancedRecoveryMiddleware(),
		middleware.RequestTracingMiddleware(),
		middleware.MetricsMiddleware(),
		middleware.SecurityHeaders(),
		middleware.CORSMiddleware(cfg.AllowedOrigins()),
		middleware.RequestSizeLimiter(cfg.MaxRequestBytes),
	)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	guards := handler.RouteGuards{
		Auth:         middleware.AuthMiddleware(tokens, blacklist),
		Entitlements: subs,
	}
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitBurst)
		limiter.StartCleanup(rateLimitCleanupTick, stopCleanup)
		guards.RateLimit = limiter.Handler()
	}

	handler.RegisterRoutes(router, handler.Handlers{
		Auth:          handler.NewAuthHandler(users, tokens, blacklist),
		Goals:         handler.NewGoalHandler(goals, streaks),
		Tasks:         handler.NewTaskHandler(tasks, slots, streaks),
		Streaks:       handler.NewStreakHandler(streaks),
		Reflections:   handler.NewReflectionHandler(reflections, journal),
		Guardians:     handler.NewGuardianHandler(guardians),
		Subscriptions: handler.NewSubscriptionHandler(subs),
		Health:        handler.NewHealthHandler(mongoClient, redisClient),
	}, guards)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Log.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStorage(ctx context.Context, cfg config.AppConfig) (usecase.Repositories, *mongo.Client, error) {
	if cfg.StorageDriver == "memory" {
		utils.Log.Warn("using in-memory storage, data is lost on restart")
		return memory.New().Repositories(), nil, nil
	}

	client, err := utils.NewMongoClient(ctx, cfg.Database)
	if err != nil {
		return usecase.Repositories{}, nil, err
	}
	db := client.Database(cfg.Database.DatabaseName)
	if err := repository.SetupIndexes(db); err != nil {
		return usecase.Repositories{}, nil, fmt.Errorf("setup indexes: %w", err)
	}
	return repository.NewMongoRepositories(client, db, cfg.Database.Transactions), client, nil
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	utils.Log.Info("connected to Redis")
	return client, nil
}
