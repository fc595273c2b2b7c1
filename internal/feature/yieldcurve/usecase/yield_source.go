package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/yieldmath"
)

// YieldSource は評価日における銘柄の利回りを返します。
// データがなければ ok=false、err は障害のときだけ返します。
type YieldSource interface {
	Yield(ctx context.Context, bond entity.Bond, date time.Time) (yield float64, ok bool, err error)
}

// YieldSourceFunc は関数を YieldSource として使うためのアダプタです。
type YieldSourceFunc func(ctx context.Context, bond entity.Bond, date time.Time) (float64, bool, error)

// Yield は f を呼び出します。
func (f YieldSourceFunc) Yield(ctx context.Context, bond entity.Bond, date time.Time) (float64, bool, error) {
	return f(ctx, bond, date)
}

// impliedYieldSource は確定済み implied yield を読みます。
// 行がなければ致命的エラー（公式カーブは欠けたデータで組まない）。
type impliedYieldSource struct {
	repo ImpliedYieldRepository
}

// NewImpliedYieldSource は公式カーブ用の YieldSource を返します。
func NewImpliedYieldSource(repo ImpliedYieldRepository) YieldSource {
	return &impliedYieldSource{repo: repo}
}

func (s *impliedYieldSource) Yield(ctx context.Context, bond entity.Bond, date time.Time) (float64, bool, error) {
	iy, err := s.repo.Get(ctx, bond.ID, date)
	if errors.Is(err, domain.ErrImpliedYieldNotFound) {
		return 0, false, &domain.MissingImpliedYieldError{BondID: bond.ID, IssueNo: bond.IssueNo, Date: date}
	}
	if err != nil {
		return 0, false, fmt.Errorf("get implied yield for bond %d: %w", bond.ID, err)
	}
	return iy.Yield, true, nil
}

type quotedYieldSource struct {
	repo      QuotationRepository
	minVolume int64
}

// NewQuotedYieldSource は気配カーブ用（当日の数量加重仲値）の YieldSource を返します。
func NewQuotedYieldSource(repo QuotationRepository, minVolume int64) YieldSource {
	return &quotedYieldSource{repo: repo, minVolume: minVolume}
}

func (s *quotedYieldSource) Yield(ctx context.Context, bond entity.Bond, date time.Time) (float64, bool, error) {
	quotes, err := s.repo.ListForDate(ctx, bond.ID, date)
	if err != nil {
		return 0, false, fmt.Errorf("list quotations for bond %d: %w", bond.ID, err)
	}
	y, ok := yieldmath.QuotedYield(quotes, s.minVolume)
	return y, ok, nil
}

type tradedYieldSource struct {
	repo      TradeRepository
	minVolume int64
}

// NewTradedYieldSource は当日の確定済み約定に基づく YieldSource を返します。
func NewTradedYieldSource(repo TradeRepository, minVolume int64) YieldSource {
	return &tradedYieldSource{repo: repo, minVolume: minVolume}
}

func (s *tradedYieldSource) Yield(ctx context.Context, bond entity.Bond, date time.Time) (float64, bool, error) {
	lines, err := s.repo.ListForDate(ctx, bond.ID, date)
	if err != nil {
		return 0, false, fmt.Errorf("list trades for bond %d: %w", bond.ID, err)
	}
	y, ok := yieldmath.TradedYield(lines, s.minVolume)
	return y, ok, nil
}
