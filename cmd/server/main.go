package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	redisv9 "github.com/redis/go-redis/v9"

	"yieldcurve_backend/internal/app/di"
	"yieldcurve_backend/internal/app/router"
	"yieldcurve_backend/internal/feature/yieldcurve/transport/handler"
	"yieldcurve_backend/internal/platform/config"
	"yieldcurve_backend/internal/platform/db"
	"yieldcurve_backend/internal/platform/logger"
	"yieldcurve_backend/internal/platform/metrics"
	infraredis "yieldcurve_backend/internal/platform/redis"
	"yieldcurve_backend/internal/shared/ratelimiter"
)

func main() {
	// 設定（config.yaml と YIELD_* 環境変数）
	cfg, err := config.Load(os.Getenv("YIELD_CONFIG_DIR"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.Logging))
	loc := cfg.Location()

	// db
	gdb, err := db.OpenDB(cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		slog.Error("failed to get sql.DB", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(context.Background(), cfg.Redis); err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		rdb = nil
	} else {
		rdb = tmp
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Repository（カーブは Redis キャッシュでラップ）
	repos := di.NewRepositories(gdb, rdb, loc)

	// Usecase
	recorder := metrics.NewRecorder()
	yc := di.NewYieldCurve(repos, cfg.Engine, recorder, loc)

	// Handler
	today := handler.Today(di.Today(loc))
	curvesH := handler.NewCurveHandler(yc.Curves, today)
	impliedH := handler.NewImpliedYieldHandler(yc.ImpliedYields, today)
	marketH := handler.NewMarketDataHandler(yc.MarketData)

	// JWT シークレットチェック（未設定だとオペレーター用ルートはすべて 500）
	if cfg.Auth.JWTSecret == "" {
		slog.Warn("auth.jwt_secret is not set. Operator routes will reject every request.")
	}

	// 書き込みの頻度制限（オペレーター単位）
	var limiter ratelimiter.Limiter
	if cfg.Server.WriteRateLimit > 0 {
		limiter = ratelimiter.NewRateLimiter(cfg.Server.WriteRateLimit, time.Minute)
	}

	// ルータ生成
	r := router.NewRouter(router.Handlers{
		Curves:        curvesH,
		ImpliedYields: impliedH,
		MarketData:    marketH,
		Metrics:       recorder.Handler(),
		DB:            sqlDB,
	}, cfg.Auth.JWTSecret, limiter)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("server starting", "addr", addr, "timezone", loc.String())
	if err := r.Run(addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
