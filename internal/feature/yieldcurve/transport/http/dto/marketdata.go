package dto

import (
	"time"

	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
)

// BondRequest は POST /bonds のリクエストボディです。
type BondRequest struct {
	ISIN             string  `json:"isin" binding:"required,len=12"`
	IssueNo          string  `json:"issue_no" binding:"required"`
	IssueDate        string  `json:"issue_date" binding:"required"`
	MaturityDate     string  `json:"maturity_date" binding:"required"`
	OutstandingValue float64 `json:"outstanding_value" binding:"gte=0"`
	CouponType       string  `json:"coupon_type"`
	CouponRate       float64 `json:"coupon_rate" binding:"gte=0"`
	Category         string  `json:"category" binding:"required,oneof=FXD IFB"`
	IsBenchmark      bool    `json:"is_benchmark"`
}

// ToEntity は日付を解釈して Bond に変換します。
func (r BondRequest) ToEntity() (entity.Bond, error) {
	issue, err := ParseDate(r.IssueDate)
	if err != nil {
		return entity.Bond{}, err
	}
	maturity, err := ParseDate(r.MaturityDate)
	if err != nil {
		return entity.Bond{}, err
	}
	return entity.Bond{
		ISIN:             r.ISIN,
		IssueNo:          r.IssueNo,
		IssueDate:        issue,
		MaturityDate:     maturity,
		OutstandingValue: r.OutstandingValue,
		CouponType:       r.CouponType,
		CouponRate:       r.CouponRate,
		Category:         entity.BondCategory(r.Category),
		IsBenchmark:      r.IsBenchmark,
	}, nil
}

type BondResponse struct {
	ID               uint    `json:"id"`
	ISIN             string  `json:"isin"`
	IssueNo          string  `json:"issue_no"`
	IssueDate        string  `json:"issue_date"`
	MaturityDate     string  `json:"maturity_date"`
	OutstandingValue float64 `json:"outstanding_value"`
	CouponType       string  `json:"coupon_type"`
	CouponRate       float64 `json:"coupon_rate"`
	Category         string  `json:"category"`
	IsBenchmark      bool    `json:"is_benchmark"`
}

func NewBondResponse(b *entity.Bond) BondResponse {
	return BondResponse{
		ID:               b.ID,
		ISIN:             b.ISIN,
		IssueNo:          b.IssueNo,
		IssueDate:        formatDate(b.IssueDate),
		MaturityDate:     formatDate(b.MaturityDate),
		OutstandingValue: b.OutstandingValue,
		CouponType:       b.CouponType,
		CouponRate:       b.CouponRate,
		Category:         string(b.Category),
		IsBenchmark:      b.IsBenchmark,
	}
}

// QuotationRequest は POST /quotations のリクエストボディです。
type QuotationRequest struct {
	BondID        uint     `json:"bond_id" binding:"required"`
	InstitutionID uint     `json:"institution_id"`
	BuyingYield   *float64 `json:"buying_yield" binding:"required"`
	SellingYield  *float64 `json:"selling_yield" binding:"required"`
	BuyVolume     int64    `json:"buy_volume" binding:"gte=0"`
	SellVolume    int64    `json:"sell_volume" binding:"gte=0"`
}

func (r QuotationRequest) ToEntity() entity.Quotation {
	return entity.Quotation{
		BondID:        r.BondID,
		InstitutionID: r.InstitutionID,
		BuyingYield:   *r.BuyingYield,
		SellingYield:  *r.SellingYield,
		BuyVolume:     r.BuyVolume,
		SellVolume:    r.SellVolume,
	}
}

// QuotationUpdateRequest は PUT /quotations/:id のリクエストボディです。省略した項目は変更しません。
type QuotationUpdateRequest struct {
	BuyingYield  *float64 `json:"buying_yield"`
	SellingYield *float64 `json:"selling_yield"`
	BuyVolume    *int64   `json:"buy_volume" binding:"omitempty,gte=0"`
	SellVolume   *int64   `json:"sell_volume" binding:"omitempty,gte=0"`
}

type QuotationResponse struct {
	ID            uint    `json:"id"`
	BondID        uint    `json:"bond_id"`
	InstitutionID uint    `json:"institution_id"`
	BuyingYield   float64 `json:"buying_yield"`
	SellingYield  float64 `json:"selling_yield"`
	BuyVolume     int64   `json:"buy_volume"`
	SellVolume    int64   `json:"sell_volume"`
	QuoteDate     string  `json:"quote_date"`
}

func NewQuotationResponse(q *entity.Quotation) QuotationResponse {
	return QuotationResponse{
		ID:            q.ID,
		BondID:        q.BondID,
		InstitutionID: q.InstitutionID,
		BuyingYield:   q.BuyingYield,
		SellingYield:  q.SellingYield,
		BuyVolume:     q.BuyVolume,
		SellVolume:    q.SellVolume,
		QuoteDate:     formatDate(q.QuoteDate()),
	}
}

// TradeLineRequest は約定1件です。
type TradeLineRequest struct {
	BondID          uint      `json:"bond_id" binding:"required"`
	Side            string    `json:"side" binding:"required"`
	ExecutedSize    int64     `json:"executed_size" binding:"required"`
	Yield           *float64  `json:"yield" binding:"required"`
	TransactionTime time.Time `json:"transaction_time"`
}

// TradeBatchRequest は POST /trade-batches のリクエストボディです。
type TradeBatchRequest struct {
	TradeDate string             `json:"trade_date" binding:"required"`
	Lines     []TradeLineRequest `json:"lines" binding:"dive"`
}

// ToEntities は約定日を解釈して約定リストに変換します。明細の約定日はバッチの約定日です。
func (r TradeBatchRequest) ToEntities() (time.Time, []entity.TradeLine, error) {
	tradeDate, err := ParseDate(r.TradeDate)
	if err != nil {
		return time.Time{}, nil, err
	}
	lines := make([]entity.TradeLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, entity.TradeLine{
			BondID:          l.BondID,
			Side:            entity.TradeSide(l.Side),
			ExecutedSize:    l.ExecutedSize,
			Yield:           *l.Yield,
			TransactionTime: l.TransactionTime,
			TradeDate:       tradeDate,
		})
	}
	return tradeDate, lines, nil
}

type TradeLineResponse struct {
	ID           uint    `json:"id"`
	BondID       uint    `json:"bond_id"`
	Side         string  `json:"side"`
	ExecutedSize int64   `json:"executed_size"`
	Yield        float64 `json:"yield"`
}

type TradeBatchResponse struct {
	ID          uint                `json:"id"`
	TradeDate   string              `json:"trade_date"`
	Status      string              `json:"status"`
	ConfirmedAt *time.Time          `json:"confirmed_at,omitempty"`
	Lines       []TradeLineResponse `json:"lines"`
}

func NewTradeBatchResponse(b *entity.TradeBatch) TradeBatchResponse {
	out := TradeBatchResponse{
		ID:          b.ID,
		TradeDate:   formatDate(b.TradeDate),
		Status:      string(b.Status),
		ConfirmedAt: b.ConfirmedAt,
		Lines:       make([]TradeLineResponse, 0, len(b.Lines)),
	}
	for _, l := range b.Lines {
		out.Lines = append(out.Lines, TradeLineResponse{
			ID:           l.ID,
			BondID:       l.BondID,
			Side:         string(l.Side),
			ExecutedSize: l.ExecutedSize,
			Yield:        l.Yield,
		})
	}
	return out
}

// TreasuryBillRequest は POST /treasury-bills のリクエストボディです。
// maturity_date を省略すると発行日 + tenor_days になります。
type TreasuryBillRequest struct {
	IssueDate    string   `json:"issue_date" binding:"required"`
	MaturityDate string   `json:"maturity_date"`
	TenorDays    int      `json:"tenor_days" binding:"required"`
	Yield        *float64 `json:"yield" binding:"required"`
}

func (r TreasuryBillRequest) ToEntity() (entity.TreasuryBill, error) {
	issue, err := ParseDate(r.IssueDate)
	if err != nil {
		return entity.TreasuryBill{}, err
	}
	bill := entity.TreasuryBill{IssueDate: issue, TenorDays: r.TenorDays, Yield: *r.Yield}
	if r.MaturityDate != "" {
		if bill.MaturityDate, err = ParseDate(r.MaturityDate); err != nil {
			return entity.TreasuryBill{}, err
		}
	}
	return bill, nil
}

type TreasuryBillResponse struct {
	ID           uint    `json:"id"`
	IssueDate    string  `json:"issue_date"`
	MaturityDate string  `json:"maturity_date"`
	TenorDays    int     `json:"tenor_days"`
	Yield        float64 `json:"yield"`
}

func NewTreasuryBillResponse(b *entity.TreasuryBill) TreasuryBillResponse {
	return TreasuryBillResponse{
		ID:           b.ID,
		IssueDate:    formatDate(b.IssueDate),
		MaturityDate: formatDate(b.MaturityDate),
		TenorDays:    b.TenorDays,
		Yield:        b.Yield,
	}
}
