package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
)

// QuotationChanges は気配の編集内容です。nil のフィールドは変更しません。
type QuotationChanges struct {
	BuyingYield  *float64
	SellingYield *float64
	BuyVolume    *int64
	SellVolume   *int64
}

// MarketDataUsecase は銘柄・気配・約定・T-bill の登録を扱います。
type MarketDataUsecase struct {
	bonds  BondRepository
	quotes QuotationRepository
	trades TradeRepository
	tbills TreasuryBillRepository
	now    func() time.Time
}

// NewMarketDataUsecase は MarketDataUsecase の新しいインスタンスを生成します。
// now が nil の場合は time.Now を使います。
func NewMarketDataUsecase(
	bonds BondRepository,
	quotes QuotationRepository,
	trades TradeRepository,
	tbills TreasuryBillRepository,
	now func() time.Time,
) *MarketDataUsecase {
	if now == nil {
		now = time.Now
	}
	return &MarketDataUsecase{bonds: bonds, quotes: quotes, trades: trades, tbills: tbills, now: now}
}

// RegisterBond は銘柄を登録します。
func (u *MarketDataUsecase) RegisterBond(ctx context.Context, b entity.Bond) (*entity.Bond, error) {
	if b.IssueNo == "" || b.ISIN == "" {
		return nil, fmt.Errorf("%w: issue number and ISIN are required", domain.ErrInvalidBond)
	}
	if b.Category != entity.CategoryFXD && b.Category != entity.CategoryIFB {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidBond, b.Category)
	}
	b.IssueDate = entity.DateOf(b.IssueDate)
	b.MaturityDate = entity.DateOf(b.MaturityDate)
	if !b.MaturityDate.After(b.IssueDate) {
		return nil, fmt.Errorf("%w: maturity date %s must be after issue date %s", domain.ErrInvalidBond,
			b.MaturityDate.Format(time.DateOnly), b.IssueDate.Format(time.DateOnly))
	}
	if err := u.bonds.Create(ctx, &b); err != nil {
		return nil, err
	}
	slog.Info("bond registered", "id", b.ID, "issue_no", b.IssueNo)
	return &b, nil
}

// SubmitQuotation は気配を検証して登録します。
// スプレッドが不正な気配は保存前に domain.ErrInvalidQuotation で拒否します。
func (u *MarketDataUsecase) SubmitQuotation(ctx context.Context, q entity.Quotation) (*entity.Quotation, error) {
	if q.BondID == 0 {
		return nil, fmt.Errorf("%w: bond id is required", domain.ErrInvalidQuotation)
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidQuotation, err)
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = u.now()
	}
	if err := u.quotes.Create(ctx, &q); err != nil {
		return nil, fmt.Errorf("create quotation: %w", err)
	}
	slog.Info("quotation submitted", "id", q.ID, "bond_id", q.BondID, "institution_id", q.InstitutionID)
	return &q, nil
}

// UpdateQuotation は登録日当日に限り気配を編集します。
func (u *MarketDataUsecase) UpdateQuotation(ctx context.Context, id uint, changes QuotationChanges) (*entity.Quotation, error) {
	q, err := u.quotes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.QuoteDate().Equal(entity.DateOf(u.now())) {
		return nil, domain.ErrQuotationLocked
	}

	if changes.BuyingYield != nil {
		q.BuyingYield = *changes.BuyingYield
	}
	if changes.SellingYield != nil {
		q.SellingYield = *changes.SellingYield
	}
	if changes.BuyVolume != nil {
		q.BuyVolume = *changes.BuyVolume
	}
	if changes.SellVolume != nil {
		q.SellVolume = *changes.SellVolume
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidQuotation, err)
	}
	if err := u.quotes.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("update quotation: %w", err)
	}
	return q, nil
}

// StageTradeBatch は約定明細を検証し、未確定のバッチとして保存します。
func (u *MarketDataUsecase) StageTradeBatch(ctx context.Context, tradeDate time.Time, lines []entity.TradeLine) (*entity.TradeBatch, error) {
	tradeDate = entity.DateOf(tradeDate)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: batch has no lines", domain.ErrInvalidTradeLine)
	}

	staged := make([]entity.TradeLine, len(lines))
	for i, l := range lines {
		if err := validateTradeLine(l, tradeDate); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrInvalidTradeLine, i+1, err)
		}
		l.TradeDate = tradeDate
		staged[i] = l
	}

	batch := &entity.TradeBatch{
		TradeDate: tradeDate,
		Status:    entity.BatchStaged,
		Lines:     staged,
		CreatedAt: u.now(),
	}
	if err := u.trades.StageBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("stage trade batch: %w", err)
	}
	slog.Info("trade batch staged", "batch_id", batch.ID, "trade_date", tradeDate.Format(time.DateOnly), "lines", len(staged))
	return batch, nil
}

// ConfirmTradeBatch はステージ済みバッチを確定します。確定後の約定だけが利回り計算に使われます。
func (u *MarketDataUsecase) ConfirmTradeBatch(ctx context.Context, batchID uint) (*entity.TradeBatch, error) {
	batch, err := u.trades.ConfirmBatch(ctx, batchID, u.now())
	if err != nil {
		return nil, err
	}
	slog.Info("trade batch confirmed", "batch_id", batch.ID, "trade_date", batch.TradeDate.Format(time.DateOnly))
	return batch, nil
}

// CreateTreasuryBill は T-bill の入札結果を登録します。
// 償還日が未指定なら発行日から期間日数後とします。
func (u *MarketDataUsecase) CreateTreasuryBill(ctx context.Context, bill entity.TreasuryBill) (*entity.TreasuryBill, error) {
	if bill.TenorDays <= 0 {
		return nil, fmt.Errorf("%w: tenor days must be positive, got %d", domain.ErrInvalidTreasuryBill, bill.TenorDays)
	}
	bill.IssueDate = entity.DateOf(bill.IssueDate)
	if bill.MaturityDate.IsZero() {
		bill.MaturityDate = bill.IssueDate.AddDate(0, 0, bill.TenorDays)
	}
	bill.MaturityDate = entity.DateOf(bill.MaturityDate)
	if !bill.MaturityDate.After(bill.IssueDate) {
		return nil, fmt.Errorf("%w: maturity date %s must be after issue date %s", domain.ErrInvalidTreasuryBill,
			bill.MaturityDate.Format(time.DateOnly), bill.IssueDate.Format(time.DateOnly))
	}
	if err := u.tbills.Create(ctx, &bill); err != nil {
		return nil, err
	}
	slog.Info("treasury bill created", "id", bill.ID, "issue_date", bill.IssueDate.Format(time.DateOnly), "tenor_days", bill.TenorDays)
	return &bill, nil
}

func validateTradeLine(l entity.TradeLine, tradeDate time.Time) error {
	if l.BondID == 0 {
		return errors.New("bond id is required")
	}
	if !l.Side.Valid() {
		return fmt.Errorf("unknown side %q", l.Side)
	}
	if l.ExecutedSize <= 0 {
		return fmt.Errorf("executed size must be positive, got %d", l.ExecutedSize)
	}
	if !l.TradeDate.IsZero() && !entity.DateOf(l.TradeDate).Equal(tradeDate) {
		return fmt.Errorf("trade date %s does not match batch date %s",
			l.TradeDate.Format(time.DateOnly), tradeDate.Format(time.DateOnly))
	}
	return nil
}
