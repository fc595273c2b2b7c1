package usecase_test

import (
	"context"
	"errors"
	"sort"
	"time"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/usecase"
)

// ErrDB はモックと期待値の間で共有されるセンチネルエラーです。
var ErrDB = errors.New("database error")

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

// mockBondRepository は BondRepository のモック実装です。
type mockBondRepository struct {
	ListNonMaturedFunc func(ctx context.Context, date time.Time, category entity.BondCategory) ([]entity.Bond, error)
	CreateFunc         func(ctx context.Context, b *entity.Bond) error
	CreateCalls        int
}

func (m *mockBondRepository) Create(ctx context.Context, b *entity.Bond) error {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, b)
	}
	return errors.New("CreateFunc is not implemented")
}

func (m *mockBondRepository) ListNonMatured(ctx context.Context, date time.Time, category entity.BondCategory) ([]entity.Bond, error) {
	if m.ListNonMaturedFunc != nil {
		return m.ListNonMaturedFunc(ctx, date, category)
	}
	return nil, errors.New("ListNonMaturedFunc is not implemented")
}

// mockQuotationRepository は QuotationRepository のモック実装です。
type mockQuotationRepository struct {
	ListForDateFunc func(ctx context.Context, bondID uint, date time.Time) ([]entity.Quotation, error)
	CreateFunc      func(ctx context.Context, q *entity.Quotation) error
	FindByIDFunc    func(ctx context.Context, id uint) (*entity.Quotation, error)
	UpdateFunc      func(ctx context.Context, q *entity.Quotation) error
	CreateCalls     int
	UpdateCalls     int
}

func (m *mockQuotationRepository) ListForDate(ctx context.Context, bondID uint, date time.Time) ([]entity.Quotation, error) {
	if m.ListForDateFunc != nil {
		return m.ListForDateFunc(ctx, bondID, date)
	}
	return nil, nil
}

func (m *mockQuotationRepository) Create(ctx context.Context, q *entity.Quotation) error {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, q)
	}
	return errors.New("CreateFunc is not implemented")
}

func (m *mockQuotationRepository) FindByID(ctx context.Context, id uint) (*entity.Quotation, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("FindByIDFunc is not implemented")
}

func (m *mockQuotationRepository) Update(ctx context.Context, q *entity.Quotation) error {
	m.UpdateCalls++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, q)
	}
	return errors.New("UpdateFunc is not implemented")
}

// mockTradeRepository は TradeRepository のモック実装です。
type mockTradeRepository struct {
	ListForDateFunc  func(ctx context.Context, bondID uint, date time.Time) ([]entity.TradeLine, error)
	StageBatchFunc   func(ctx context.Context, batch *entity.TradeBatch) error
	ConfirmBatchFunc func(ctx context.Context, batchID uint, confirmedAt time.Time) (*entity.TradeBatch, error)
	StageBatchCalls  int
}

func (m *mockTradeRepository) ListForDate(ctx context.Context, bondID uint, date time.Time) ([]entity.TradeLine, error) {
	if m.ListForDateFunc != nil {
		return m.ListForDateFunc(ctx, bondID, date)
	}
	return nil, nil
}

func (m *mockTradeRepository) StageBatch(ctx context.Context, batch *entity.TradeBatch) error {
	m.StageBatchCalls++
	if m.StageBatchFunc != nil {
		return m.StageBatchFunc(ctx, batch)
	}
	return errors.New("StageBatchFunc is not implemented")
}

func (m *mockTradeRepository) ConfirmBatch(ctx context.Context, batchID uint, confirmedAt time.Time) (*entity.TradeBatch, error) {
	if m.ConfirmBatchFunc != nil {
		return m.ConfirmBatchFunc(ctx, batchID, confirmedAt)
	}
	return nil, errors.New("ConfirmBatchFunc is not implemented")
}

// mockImpliedYieldRepository は ImpliedYieldRepository のモック実装です。
type mockImpliedYieldRepository struct {
	GetFunc              func(ctx context.Context, bondID uint, date time.Time) (*entity.ImpliedYield, error)
	LatestBeforeFunc     func(ctx context.Context, bondID uint, date time.Time) (*entity.ImpliedYield, error)
	ExistsAnyForDateFunc func(ctx context.Context, date time.Time) (bool, error)
	InsertBatchFunc      func(ctx context.Context, date time.Time, rows []entity.ImpliedYield) error
	InsertBatchCalls     int
}

func (m *mockImpliedYieldRepository) Get(ctx context.Context, bondID uint, date time.Time) (*entity.ImpliedYield, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, bondID, date)
	}
	return nil, domain.ErrImpliedYieldNotFound
}

func (m *mockImpliedYieldRepository) LatestBefore(ctx context.Context, bondID uint, date time.Time) (*entity.ImpliedYield, error) {
	if m.LatestBeforeFunc != nil {
		return m.LatestBeforeFunc(ctx, bondID, date)
	}
	return nil, domain.ErrImpliedYieldNotFound
}

func (m *mockImpliedYieldRepository) ExistsAnyForDate(ctx context.Context, date time.Time) (bool, error) {
	if m.ExistsAnyForDateFunc != nil {
		return m.ExistsAnyForDateFunc(ctx, date)
	}
	return false, nil
}

func (m *mockImpliedYieldRepository) InsertBatch(ctx context.Context, date time.Time, rows []entity.ImpliedYield) error {
	m.InsertBatchCalls++
	if m.InsertBatchFunc != nil {
		return m.InsertBatchFunc(ctx, date, rows)
	}
	return errors.New("InsertBatchFunc is not implemented")
}

// mockTreasuryBillRepository は TreasuryBillRepository のモック実装です。
// Bills が設定されていれば、GetForCycle はその中から条件に合う最新の T-bill を返します。
type mockTreasuryBillRepository struct {
	Bills           []entity.TreasuryBill
	GetForCycleFunc func(ctx context.Context, tenorDays int, start, end time.Time) (*entity.TreasuryBill, error)
	CreateFunc      func(ctx context.Context, bill *entity.TreasuryBill) error
}

func (m *mockTreasuryBillRepository) GetForCycle(ctx context.Context, tenorDays int, start, end time.Time) (*entity.TreasuryBill, error) {
	if m.GetForCycleFunc != nil {
		return m.GetForCycleFunc(ctx, tenorDays, start, end)
	}
	var hits []entity.TreasuryBill
	for _, b := range m.Bills {
		if b.TenorDays >= tenorDays && !b.IssueDate.Before(start) && !b.IssueDate.After(end) {
			hits = append(hits, b)
		}
	}
	if len(hits) == 0 {
		return nil, domain.ErrTreasuryBillNotFound
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].IssueDate.After(hits[j].IssueDate) })
	return &hits[0], nil
}

func (m *mockTreasuryBillRepository) Create(ctx context.Context, bill *entity.TreasuryBill) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, bill)
	}
	return errors.New("CreateFunc is not implemented")
}

// mockCurveRepository は CurveRepository のモック実装です。
type mockCurveRepository struct {
	SaveFunc         func(ctx context.Context, curve *entity.Curve) error
	LatestBeforeFunc func(ctx context.Context, kind entity.CurveKind, date time.Time) (*entity.Curve, error)
	SaveCalls        int
}

func (m *mockCurveRepository) Save(ctx context.Context, curve *entity.Curve) error {
	m.SaveCalls++
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, curve)
	}
	return errors.New("SaveFunc is not implemented")
}

func (m *mockCurveRepository) LatestBefore(ctx context.Context, kind entity.CurveKind, date time.Time) (*entity.Curve, error) {
	if m.LatestBeforeFunc != nil {
		return m.LatestBeforeFunc(ctx, kind, date)
	}
	return nil, domain.ErrCurveNotFound
}

// fixture はテスト共通のモック一式です。
type fixture struct {
	bonds   *mockBondRepository
	quotes  *mockQuotationRepository
	trades  *mockTradeRepository
	implied *mockImpliedYieldRepository
	tbills  *mockTreasuryBillRepository
	curves  *mockCurveRepository
}

// valuationDate は木曜日で、当週サイクルは 2025-01-10〜2025-01-16 です。
var valuationDate = day(2025, 1, 16)

// testBonds は評価日時点で残存 2.0 / 3.5 / 4.0 年の FXD 銘柄です。
var testBonds = []entity.Bond{
	{ID: 1, IssueNo: "FXD1/2020/05", MaturityDate: valuationDate.AddDate(0, 0, 728), OutstandingValue: 30_000, Category: entity.CategoryFXD},
	{ID: 2, IssueNo: "FXD1/2021/05", MaturityDate: valuationDate.AddDate(0, 0, 1274), OutstandingValue: 20_000, Category: entity.CategoryFXD},
	{ID: 3, IssueNo: "FXD2/2022/05", MaturityDate: valuationDate.AddDate(0, 0, 1456), OutstandingValue: 10_000, Category: entity.CategoryFXD},
}

// oneYearBucketBonds は残存 1.5 / 3.0 年の銘柄と、T-bill と同じ残存ちょうど1年の銘柄です。
var oneYearBucketBonds = []entity.Bond{
	{ID: 7, IssueNo: "FXD1/2023/02", MaturityDate: valuationDate.AddDate(0, 0, 546), OutstandingValue: 10_000, Category: entity.CategoryFXD},
	{ID: 8, IssueNo: "FXD1/2022/03", MaturityDate: valuationDate.AddDate(0, 0, 1092), OutstandingValue: 10_000, Category: entity.CategoryFXD},
	{ID: 9, IssueNo: "FXD1/2016/10", MaturityDate: valuationDate.AddDate(0, 0, 364), OutstandingValue: 5_000, Category: entity.CategoryFXD},
}

// testBills は当週 12.1%、先週 12.0% の1年物 T-bill です。
var testBills = []entity.TreasuryBill{
	{ID: 1, IssueDate: day(2025, 1, 6), MaturityDate: day(2026, 1, 5), TenorDays: 364, Yield: 12.0},
	{ID: 2, IssueDate: day(2025, 1, 13), MaturityDate: day(2026, 1, 12), TenorDays: 364, Yield: 12.1},
	{ID: 3, IssueDate: day(2025, 1, 14), MaturityDate: day(2025, 4, 15), TenorDays: 91, Yield: 9.5},
}

func newFixture() *fixture {
	return &fixture{
		bonds: &mockBondRepository{
			ListNonMaturedFunc: func(ctx context.Context, date time.Time, category entity.BondCategory) ([]entity.Bond, error) {
				return testBonds, nil
			},
		},
		quotes:  &mockQuotationRepository{},
		trades:  &mockTradeRepository{},
		implied: &mockImpliedYieldRepository{},
		tbills:  &mockTreasuryBillRepository{Bills: testBills},
		curves:  &mockCurveRepository{},
	}
}

func (f *fixture) repos() usecase.Repositories {
	return usecase.Repositories{
		Bonds:         f.bonds,
		Quotations:    f.quotes,
		Trades:        f.trades,
		ImpliedYields: f.implied,
		TreasuryBills: f.tbills,
		Curves:        f.curves,
	}
}

// impliedYields は bondID→利回りのマップから GetFunc を作ります。
func impliedYields(yields map[uint]float64) func(ctx context.Context, bondID uint, date time.Time) (*entity.ImpliedYield, error) {
	return func(ctx context.Context, bondID uint, date time.Time) (*entity.ImpliedYield, error) {
		y, ok := yields[bondID]
		if !ok {
			return nil, domain.ErrImpliedYieldNotFound
		}
		return &entity.ImpliedYield{BondID: bondID, YieldDate: date, Yield: y}, nil
	}
}

// quotationsByBond は bondID→気配のマップから ListForDateFunc を作ります。
func quotationsByBond(quotes map[uint][]entity.Quotation) func(ctx context.Context, bondID uint, date time.Time) ([]entity.Quotation, error) {
	return func(ctx context.Context, bondID uint, date time.Time) ([]entity.Quotation, error) {
		return quotes[bondID], nil
	}
}

// twoWay は買い・売りともに 100M の気配を作ります。
func twoWay(bondID uint, buy, sell float64) entity.Quotation {
	return entity.Quotation{BondID: bondID, BuyingYield: buy, SellingYield: sell, BuyVolume: 100_000_000, SellVolume: 100_000_000}
}
