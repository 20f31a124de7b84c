package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aefremenko24/quantifying-happiness/internal/config"
	"github.com/aefremenko24/quantifying-happiness/internal/db"
	"github.com/aefremenko24/quantifying-happiness/internal/engine"
	apihttp "github.com/aefremenko24/quantifying-happiness/internal/http"
	"github.com/aefremenko24/quantifying-happiness/internal/repository"
	"github.com/aefremenko24/quantifying-happiness/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	entryRepo := repository.NewPgEntryRepository(pool)

	var (
		tokenStore      service.RefreshTokenStore
		suggestionCache service.SuggestionCache
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			suggestionCache = service.NewRedisSuggestionCache(redisClient)
		}
		cancel()
	}
	if suggestionCache == nil {
		suggestionCache = service.NewMemorySuggestionCache()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	userSvc := service.NewUserService(logger, userRepo)
	entrySvc := service.NewEntryService(logger, entryRepo)
	suggestionSvc := service.NewSuggestionService(logger, entryRepo, suggestionCache, service.SuggestionConfig{
		Neighbors: cfg.KNNNeighbors,
		Annealer: engine.AnnealerConfig{
			InitialTemperature: cfg.SAInitialTemp,
			CoolingRate:        cfg.SACoolingRate,
			StepSize:           cfg.SAStepSize,
			MaxIterations:      cfg.SAMaxIterations,
			NumRestarts:        cfg.SANumRestarts,
		},
		CacheTTL: time.Duration(cfg.SuggestionCacheTTLMinutes) * time.Minute,
	})

	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	entryHandler := apihttp.NewEntryHandler(logger, entrySvc)
	suggestionHandler := apihttp.NewSuggestionHandler(logger, suggestionSvc)
	router := apihttp.NewRouter(logger, jwtSvc, userHandler, entryHandler, suggestionHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
