package main

import (
	"context"
	"log/slog"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"yieldcurve_backend/internal/app/di"
	"yieldcurve_backend/internal/platform/config"
	"yieldcurve_backend/internal/platform/db"
	infraredis "yieldcurve_backend/internal/platform/redis"
)

// engine はサブコマンドが使うユースケースと "今日" です。
type engine struct {
	yc    *di.YieldCurve
	today func() time.Time
	close func()
}

// opener は設定から engine を組み立てます。テストでは sqlite 版に差し替えます。
type opener func(ctx context.Context, cfg *config.Config) (*engine, error)

// openEngine は server と同じ構成（Postgres + 任意の Redis）で engine を組み立てます。
func openEngine(ctx context.Context, cfg *config.Config) (*engine, error) {
	loc := cfg.Location()

	// db
	gdb, err := db.OpenDB(cfg.Database)
	if err != nil {
		return nil, err
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
	} else {
		rdb = tmp
	}

	repos := di.NewRepositories(gdb, rdb, loc)
	return &engine{
		yc:    di.NewYieldCurve(repos, cfg.Engine, nil, loc),
		today: di.Today(loc),
		close: func() {
			if rdb != nil {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}
