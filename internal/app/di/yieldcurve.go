package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"yieldcurve_backend/internal/feature/yieldcurve/adapters"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/usecase"
	"yieldcurve_backend/internal/platform/config"
	"yieldcurve_backend/internal/platform/metrics"
)

// YieldCurve はyieldcurveフィーチャーのユースケース一式です。
type YieldCurve struct {
	Curves        *usecase.CurveUsecase
	ImpliedYields *usecase.ImpliedYieldUsecase
	MarketData    *usecase.MarketDataUsecase
}

// NewRepositories は gorm 実装のリポジトリを組み立てます。カーブだけは Redis を挟みます。
func NewRepositories(db *gorm.DB, rdb *redis.Client, loc *time.Location) usecase.Repositories {
	return usecase.Repositories{
		Bonds:         adapters.NewBondRepository(db),
		Quotations:    adapters.NewQuotationRepository(db),
		Trades:        adapters.NewTradeRepository(db),
		ImpliedYields: adapters.NewImpliedYieldRepository(db),
		TreasuryBills: adapters.NewTreasuryBillRepository(db),
		Curves:        NewCurveRepository(rdb, db, loc),
	}
}

// EngineOptions は設定値をエンジンのオプションに変換します。
func EngineOptions(cfg config.EngineConfig) usecase.Options {
	return usecase.Options{
		MarginTolerance:     cfg.MarginTolerance,
		MinQualifyingVolume: cfg.MinQualifyingVolume,
		TBillTenorDays:      cfg.TBillTenorDays,
		PrefetchConcurrency: cfg.PrefetchConcurrency,
	}
}

// NewYieldCurve はユースケースを生成します。recorder が nil ならメトリクスは記録しません。
func NewYieldCurve(repos usecase.Repositories, cfg config.EngineConfig, recorder *metrics.Recorder, loc *time.Location) *YieldCurve {
	opts := EngineOptions(cfg)
	var rec usecase.Recorder
	if recorder != nil {
		rec = recorder
	}
	return &YieldCurve{
		Curves:        usecase.NewCurveUsecase(repos, opts, rec),
		ImpliedYields: usecase.NewImpliedYieldUsecase(repos, opts, rec),
		MarketData:    usecase.NewMarketDataUsecase(repos.Bonds, repos.Quotations, repos.Trades, repos.TreasuryBills, Clock(loc)),
	}
}

// Clock は loc の壁時計時刻を UTC として返す関数を作ります。
// 営業日はすべて entity.DateOf で UTC 0時に正規化するため、保存後に読み戻しても暦日がずれません。
func Clock(loc *time.Location) func() time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return wallClockUTC(time.Now(), loc) }
}

func wallClockUTC(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), time.UTC)
}

// Today は loc における今日の日付（UTC 0時に正規化）を返す関数を作ります。
func Today(loc *time.Location) func() time.Time {
	now := Clock(loc)
	return func() time.Time { return entity.DateOf(now()) }
}
