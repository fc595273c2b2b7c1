package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/yieldmath"
)

// ImpliedYieldUsecase は日次の implied yield 判定と確定を行います。
type ImpliedYieldUsecase struct {
	repos   Repositories
	opts    Options
	metrics Recorder
}

// NewImpliedYieldUsecase は ImpliedYieldUsecase の新しいインスタンスを生成します。
func NewImpliedYieldUsecase(repos Repositories, opts Options, metrics Recorder) *ImpliedYieldUsecase {
	return &ImpliedYieldUsecase{repos: repos, opts: opts.withDefaults(), metrics: recorderOrNop(metrics)}
}

// bondInputs は1銘柄の判定に必要な入力です。
type bondInputs struct {
	previous *entity.ImpliedYield
	quotes   []entity.Quotation
	trades   []entity.TradeLine
}

// ComputeDraftImpliedYields は全未償還銘柄について当日の implied yield のドラフトを計算します。
// 前日値のない銘柄は Skipped に入り、エラーにはなりません。
func (u *ImpliedYieldUsecase) ComputeDraftImpliedYields(ctx context.Context, date time.Time) (*entity.DraftRun, error) {
	date = entity.DateOf(date)

	bonds, err := u.repos.Bonds.ListNonMatured(ctx, date, "")
	if err != nil {
		return nil, fmt.Errorf("list bonds: %w", err)
	}
	variance, err := u.tbillVariance(ctx, date)
	if err != nil {
		return nil, err
	}
	inputs, err := u.prefetch(ctx, date, bonds)
	if err != nil {
		return nil, err
	}

	run := &entity.DraftRun{Date: date, TBillVariance: variance}
	for i, b := range bonds {
		in := inputs[i]
		if in.previous == nil {
			run.Skipped = append(run.Skipped, entity.SkippedBond{
				BondID:  b.ID,
				IssueNo: b.IssueNo,
				Reason:  "no previous implied yield",
			})
			slog.Info("implied yield skipped",
				"date", date.Format(time.DateOnly),
				"bond_id", b.ID,
				"issue_no", b.IssueNo,
				"reason", "no previous implied yield",
			)
			continue
		}

		c := Candidates{Previous: in.previous.Yield}
		if y, ok := yieldmath.TradedYield(in.trades, u.opts.MinQualifyingVolume); ok {
			c.Traded = &y
		}
		if y, ok := yieldmath.QuotedYield(in.quotes, u.opts.MinQualifyingVolume); ok {
			c.Quoted = &y
		}
		d := SelectImpliedYield(c, variance, u.opts.MarginTolerance)
		u.metrics.ImpliedYieldDecision(d.Source)
		slog.Debug("implied yield selected",
			"date", date.Format(time.DateOnly),
			"bond_id", b.ID,
			"issue_no", b.IssueNo,
			"selected", d.Selected,
			"source", d.Source,
			"reason", d.Reason,
		)

		run.Selections = append(run.Selections, entity.ImpliedYieldSelection{
			BondID:   b.ID,
			IssueNo:  b.IssueNo,
			Traded:   c.Traded,
			Quoted:   c.Quoted,
			Previous: c.Previous,
			Selected: d.Selected,
			Source:   d.Source,
			Reason:   d.Reason,
			Status:   entity.StatusDraft,
		})
	}

	confirmed, err := u.repos.ImpliedYields.ExistsAnyForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("check confirmation: %w", err)
	}
	run.AlreadyConfirmed = confirmed

	slog.Info("implied yield draft computed",
		"date", date.Format(time.DateOnly),
		"selections", len(run.Selections),
		"skipped", len(run.Skipped),
		"tbill_variance", variance,
		"already_confirmed", confirmed,
	)
	return run, nil
}

// ConfirmImpliedYields は選択された利回りを date の implied yield として確定します。
// date に1件でも確定済みの行があれば、銘柄に関係なく domain.ErrAlreadyConfirmedForDate です。
func (u *ImpliedYieldUsecase) ConfirmImpliedYields(ctx context.Context, date time.Time, selections []entity.ConfirmedSelection) error {
	err := u.confirm(ctx, entity.DateOf(date), selections)
	u.metrics.Confirmation(err)
	return err
}

func (u *ImpliedYieldUsecase) confirm(ctx context.Context, date time.Time, selections []entity.ConfirmedSelection) error {
	if len(selections) == 0 {
		return domain.ErrEmptySelection
	}
	rows := make([]entity.ImpliedYield, 0, len(selections))
	seen := make(map[uint]struct{}, len(selections))
	for _, s := range selections {
		if _, dup := seen[s.BondID]; dup {
			return fmt.Errorf("%w: bond %d", domain.ErrDuplicateSelection, s.BondID)
		}
		seen[s.BondID] = struct{}{}
		rows = append(rows, entity.ImpliedYield{
			BondID:    s.BondID,
			YieldDate: date,
			Yield:     yieldmath.Round4(s.Yield),
		})
	}

	exists, err := u.repos.ImpliedYields.ExistsAnyForDate(ctx, date)
	if err != nil {
		return fmt.Errorf("check confirmation: %w", err)
	}
	if exists {
		return domain.ErrAlreadyConfirmedForDate
	}
	// 同時実行時の最終判定はリポジトリ側のトランザクションで行う
	if err := u.repos.ImpliedYields.InsertBatch(ctx, date, rows); err != nil {
		if errors.Is(err, domain.ErrAlreadyConfirmedForDate) || errors.Is(err, domain.ErrUnknownBond) {
			return err
		}
		return fmt.Errorf("insert implied yields: %w", err)
	}

	slog.Info("implied yields confirmed", "date", date.Format(time.DateOnly), "bonds", len(rows))
	return nil
}

// tbillVariance は今週と先週の1年物 T-bill 利回りの差を返します。
func (u *ImpliedYieldUsecase) tbillVariance(ctx context.Context, date time.Time) (float64, error) {
	cycle := yieldmath.WeeklyCycle(date)
	current, err := oneYearBill(ctx, u.repos.TreasuryBills, u.opts.TBillTenorDays, cycle)
	if err != nil {
		return 0, err
	}
	last, err := oneYearBill(ctx, u.repos.TreasuryBills, u.opts.TBillTenorDays, cycle.Previous())
	if err != nil {
		return 0, err
	}
	return decimal.NewFromFloat(current.Yield).
		Sub(decimal.NewFromFloat(last.Yield)).
		Round(4).InexactFloat64(), nil
}

// prefetch は銘柄ごとの前日値・気配・約定を並列に読み込みます。
// 結果は bonds と同じ順序で返すので、判定結果の順序は並列度に依存しません。
func (u *ImpliedYieldUsecase) prefetch(ctx context.Context, date time.Time, bonds []entity.Bond) ([]bondInputs, error) {
	inputs := make([]bondInputs, len(bonds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.PrefetchConcurrency)

	for i, b := range bonds {
		g.Go(func() error {
			prev, err := u.repos.ImpliedYields.LatestBefore(gctx, b.ID, date)
			if errors.Is(err, domain.ErrImpliedYieldNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("previous implied yield for bond %d: %w", b.ID, err)
			}
			quotes, err := u.repos.Quotations.ListForDate(gctx, b.ID, date)
			if err != nil {
				return fmt.Errorf("list quotations for bond %d: %w", b.ID, err)
			}
			trades, err := u.repos.Trades.ListForDate(gctx, b.ID, date)
			if err != nil {
				return fmt.Errorf("list trades for bond %d: %w", b.ID, err)
			}
			inputs[i] = bondInputs{previous: prev, quotes: quotes, trades: trades}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}
