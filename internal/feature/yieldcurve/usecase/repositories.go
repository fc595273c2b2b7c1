// Package usecase はイールドカーブ構築と日次の implied yield 判定のビジネスロジックを実装します。
package usecase

import (
	"context"
	"time"

	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
)

// BondRepository は銘柄マスタの読み取りを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type BondRepository interface {
	// ListNonMatured は date 以降に償還する銘柄を償還日順に返します。
	// category が空なら全種別を返します。
	ListNonMatured(ctx context.Context, date time.Time, category entity.BondCategory) ([]entity.Bond, error)
	Create(ctx context.Context, b *entity.Bond) error
}

// QuotationRepository は気配の永続化レイヤーを抽象化します。
type QuotationRepository interface {
	ListForDate(ctx context.Context, bondID uint, date time.Time) ([]entity.Quotation, error)
	Create(ctx context.Context, q *entity.Quotation) error
	// FindByID は該当がなければ domain.ErrQuotationNotFound を返します。
	FindByID(ctx context.Context, id uint) (*entity.Quotation, error)
	Update(ctx context.Context, q *entity.Quotation) error
}

// TradeRepository は約定バッチの永続化レイヤーを抽象化します。
type TradeRepository interface {
	// ListForDate は約定日の確定済み約定のみを返します。
	ListForDate(ctx context.Context, bondID uint, date time.Time) ([]entity.TradeLine, error)
	StageBatch(ctx context.Context, batch *entity.TradeBatch) error
	// ConfirmBatch はステージ済みバッチを確定します。
	// バッチがなければ domain.ErrTradeBatchNotFound、約定日が確定済みなら *domain.DuplicateTradeBatchError を返します。
	ConfirmBatch(ctx context.Context, batchID uint, confirmedAt time.Time) (*entity.TradeBatch, error)
}

// ImpliedYieldRepository は確定済み implied yield の永続化レイヤーを抽象化します。
type ImpliedYieldRepository interface {
	// Get は該当がなければ domain.ErrImpliedYieldNotFound を返します。
	Get(ctx context.Context, bondID uint, date time.Time) (*entity.ImpliedYield, error)
	// LatestBefore は date より前で最新の行を返します。なければ domain.ErrImpliedYieldNotFound です。
	LatestBefore(ctx context.Context, bondID uint, date time.Time) (*entity.ImpliedYield, error)
	ExistsAnyForDate(ctx context.Context, date time.Time) (bool, error)
	// InsertBatch は date の全行を1トランザクションで保存します（全件か0件）。
	// date の行が1件でもあれば domain.ErrAlreadyConfirmedForDate を返します。
	InsertBatch(ctx context.Context, date time.Time, rows []entity.ImpliedYield) error
}

// TreasuryBillRepository は T-bill 入札結果の永続化レイヤーを抽象化します。
type TreasuryBillRepository interface {
	// GetForCycle は [start, end] に発行された期間 tenorDays 以上の T-bill のうち最新のものを返します。
	// なければ domain.ErrTreasuryBillNotFound です。
	GetForCycle(ctx context.Context, tenorDays int, start, end time.Time) (*entity.TreasuryBill, error)
	// Create は発行日・期間が重複すると domain.ErrDuplicateTreasuryBill を返します。
	Create(ctx context.Context, bill *entity.TreasuryBill) error
}

// CurveRepository は公表済みカーブの保存先を抽象化します。
type CurveRepository interface {
	// Save は日付・種別が同じカーブを置き換えて保存します。
	Save(ctx context.Context, curve *entity.Curve) error
	// LatestBefore は date より前で最新のカーブを返します。なければ domain.ErrCurveNotFound です。
	LatestBefore(ctx context.Context, kind entity.CurveKind, date time.Time) (*entity.Curve, error)
}

// Repositories はユースケースが使うリポジトリをまとめたものです。
type Repositories struct {
	Bonds         BondRepository
	Quotations    QuotationRepository
	Trades        TradeRepository
	ImpliedYields ImpliedYieldRepository
	TreasuryBills TreasuryBillRepository
	Curves        CurveRepository
}

// Recorder はメトリクス用にエンジンの結果を受け取ります。
type Recorder interface {
	CurveBuilt(kind entity.CurveKind, points int, err error)
	ImpliedYieldDecision(source entity.YieldSourceKind)
	Confirmation(err error)
}

type nopRecorder struct{}

func (nopRecorder) CurveBuilt(entity.CurveKind, int, error)     {}
func (nopRecorder) ImpliedYieldDecision(entity.YieldSourceKind) {}
func (nopRecorder) Confirmation(error)                          {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
