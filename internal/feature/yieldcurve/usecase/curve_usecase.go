package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/yieldmath"
)

// oneYearTenure は T-bill アンカーの残存期間です。
const oneYearTenure = 1.0

// CurveUsecase は公式カーブと気配カーブの構築を行います。
type CurveUsecase struct {
	repos   Repositories
	opts    Options
	metrics Recorder
}

// NewCurveUsecase は CurveUsecase の新しいインスタンスを生成します。
func NewCurveUsecase(repos Repositories, opts Options, metrics Recorder) *CurveUsecase {
	return &CurveUsecase{repos: repos, opts: opts.withDefaults(), metrics: recorderOrNop(metrics)}
}

// AssembleCurve はバケットを順に走査し、source から点を集めて補間します。
// 公式カーブと気配カーブはこの関数を共有し、利回りの取り方（source）だけが異なります。
// anchor が nil でなければ1年点は anchor で固定し、1年バケットの銘柄はその周辺の点として追加します。
// 残存期間がちょうど anchor と同じ銘柄は使いません（T-bill が優先）。
func AssembleCurve(
	ctx context.Context,
	date time.Time,
	bonds []entity.Bond,
	source YieldSource,
	anchor *entity.CurvePoint,
	prior *entity.Curve,
) ([]entity.CurvePoint, []float64, error) {
	ranges, err := BuildBenchmarkRanges(date, bonds)
	if err != nil {
		return nil, nil, err
	}

	used := make(map[uint]struct{}, len(bonds))
	var points []entity.CurvePoint
	var pending []float64
	for _, r := range ranges {
		anchored := r.TenorYear == 1 && anchor != nil
		if anchored {
			points = append(points, *anchor)
			excludeTenure(date, bonds, anchor.Tenure, used)
		}
		res, err := SelectBucket(ctx, date, r, bonds, used, source)
		if err != nil {
			return nil, nil, err
		}
		points = append(points, res.Points...)
		if res.NeedsInterpolation && !anchored {
			pending = append(pending, r.LowerBound)
		}
	}

	points, unresolved := Interpolate(points, pending, prior)
	return points, unresolved, nil
}

// excludeTenure は残存期間がちょうど tenure の銘柄を used に入れ、どのバケットでも選ばれないようにします。
func excludeTenure(date time.Time, bonds []entity.Bond, tenure float64, used map[uint]struct{}) {
	for _, b := range bonds {
		if yieldmath.YearsToMaturity(b.MaturityDate, date) == tenure {
			used[b.ID] = struct{}{}
		}
	}
}

// BuildOfficialCurve は確定済み implied yield から公式カーブを構築します。
// エラーはすべて致命的で、部分的なカーブは返しません。
func (u *CurveUsecase) BuildOfficialCurve(ctx context.Context, date time.Time) (*entity.Curve, error) {
	date = entity.DateOf(date)
	curve, err := u.buildOfficial(ctx, date)
	u.record(entity.CurveOfficial, curve, err)
	return curve, err
}

func (u *CurveUsecase) buildOfficial(ctx context.Context, date time.Time) (*entity.Curve, error) {
	bonds, err := u.repos.Bonds.ListNonMatured(ctx, date, entity.CategoryFXD)
	if err != nil {
		return nil, fmt.Errorf("list bonds: %w", err)
	}
	if len(bonds) == 0 {
		return nil, domain.ErrNoEligibleBonds
	}

	anchor, err := u.oneYearAnchor(ctx, date)
	if err != nil {
		return nil, err
	}
	prior, err := u.priorCurve(ctx, date)
	if err != nil {
		return nil, err
	}

	source := NewImpliedYieldSource(u.repos.ImpliedYields)
	points, unresolved, err := AssembleCurve(ctx, date, bonds, source, anchor, prior)
	if err != nil {
		return nil, err
	}
	if len(unresolved) > 0 {
		return nil, &domain.UnresolvableInterpolationError{Tenure: unresolved[0]}
	}

	slog.Info("official curve built", "date", date.Format(time.DateOnly), "points", len(points))
	return &entity.Curve{Date: date, Kind: entity.CurveOfficial, Points: points}, nil
}

// BuildQuotedCurve は当日の気配から表示用のカーブを構築します。
// 欠けた点は前日カーブで補い、使える履歴がまったくない場合のみ失敗します。
func (u *CurveUsecase) BuildQuotedCurve(ctx context.Context, date time.Time) (*entity.Curve, error) {
	date = entity.DateOf(date)
	curve, err := u.buildQuoted(ctx, date)
	u.record(entity.CurveQuoted, curve, err)
	return curve, err
}

func (u *CurveUsecase) buildQuoted(ctx context.Context, date time.Time) (*entity.Curve, error) {
	prior, err := u.priorCurve(ctx, date)
	if err != nil {
		return nil, err
	}

	bonds, err := u.repos.Bonds.ListNonMatured(ctx, date, entity.CategoryFXD)
	if err != nil {
		return nil, fmt.Errorf("list bonds: %w", err)
	}
	if len(bonds) == 0 {
		return fallbackCurve(date, prior, "no eligible bonds")
	}

	anchor, err := u.oneYearAnchor(ctx, date)
	if errors.Is(err, domain.ErrMissingOneYearAnchor) {
		// 1年点は補間と前日カーブに任せる
		slog.Warn("quoted curve built without one-year anchor", "date", date.Format(time.DateOnly))
		anchor = nil
	} else if err != nil {
		return nil, err
	}

	source := NewQuotedYieldSource(u.repos.Quotations, u.opts.MinQualifyingVolume)
	points, unresolved, err := AssembleCurve(ctx, date, bonds, source, anchor, prior)
	if err != nil {
		return nil, err
	}
	if len(unresolved) > 0 {
		slog.Warn("quoted curve tenures omitted", "date", date.Format(time.DateOnly), "tenures", unresolved)
	}
	if !hasObserved(points) {
		return fallbackCurve(date, prior, "no quoted points")
	}
	return &entity.Curve{Date: date, Kind: entity.CurveQuoted, Points: points}, nil
}

// PublishOfficialCurve は公式カーブを構築して保存します。
// 保存したカーブは翌日以降の補間のフォールバックになります。
func (u *CurveUsecase) PublishOfficialCurve(ctx context.Context, date time.Time) (*entity.Curve, error) {
	curve, err := u.BuildOfficialCurve(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := u.repos.Curves.Save(ctx, curve); err != nil {
		return nil, fmt.Errorf("save curve: %w", err)
	}
	slog.Info("official curve published", "date", curve.Date.Format(time.DateOnly), "points", len(curve.Points))
	return curve, nil
}

// oneYearAnchor は当週サイクルの1年物 T-bill から1年点を作ります。
func (u *CurveUsecase) oneYearAnchor(ctx context.Context, date time.Time) (*entity.CurvePoint, error) {
	bill, err := oneYearBill(ctx, u.repos.TreasuryBills, u.opts.TBillTenorDays, yieldmath.WeeklyCycle(date))
	if err != nil {
		return nil, err
	}
	return &entity.CurvePoint{
		Tenure:       oneYearTenure,
		Yield:        yieldmath.Round4(bill.Yield),
		Label:        entity.LabelOneYearTBill,
		IssueDate:    bill.IssueDate,
		MaturityDate: bill.MaturityDate,
	}, nil
}

// priorCurve は date より前で最新の公式カーブを返します。なければ nil です。
func (u *CurveUsecase) priorCurve(ctx context.Context, date time.Time) (*entity.Curve, error) {
	prior, err := u.repos.Curves.LatestBefore(ctx, entity.CurveOfficial, date)
	if errors.Is(err, domain.ErrCurveNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load prior curve: %w", err)
	}
	return prior, nil
}

func (u *CurveUsecase) record(kind entity.CurveKind, curve *entity.Curve, err error) {
	points := 0
	if curve != nil {
		points = len(curve.Points)
	}
	u.metrics.CurveBuilt(kind, points, err)
}

// oneYearBill は cycle 内に発行された1年物 T-bill を返します。
func oneYearBill(ctx context.Context, repo TreasuryBillRepository, tenorDays int, cycle yieldmath.Cycle) (*entity.TreasuryBill, error) {
	bill, err := repo.GetForCycle(ctx, tenorDays, cycle.Start, cycle.End)
	if errors.Is(err, domain.ErrTreasuryBillNotFound) {
		return nil, fmt.Errorf("%w: cycle %s to %s", domain.ErrMissingOneYearAnchor,
			cycle.Start.Format(time.DateOnly), cycle.End.Format(time.DateOnly))
	}
	if err != nil {
		return nil, fmt.Errorf("get treasury bill: %w", err)
	}
	return bill, nil
}

// hasObserved は補間ではない点（当日のデータ）が1つでもあるかを返します。
func hasObserved(points []entity.CurvePoint) bool {
	for _, p := range points {
		if !p.Interpolated {
			return true
		}
	}
	return false
}

func fallbackCurve(date time.Time, prior *entity.Curve, reason string) (*entity.Curve, error) {
	if prior == nil {
		return nil, domain.ErrNoCurveHistory
	}
	slog.Warn("quoted curve fell back to prior curve",
		"date", date.Format(time.DateOnly), "prior_date", prior.Date.Format(time.DateOnly), "reason", reason)
	points := make([]entity.CurvePoint, len(prior.Points))
	copy(points, prior.Points)
	return &entity.Curve{Date: date, Kind: entity.CurveQuoted, Points: points}, nil
}
