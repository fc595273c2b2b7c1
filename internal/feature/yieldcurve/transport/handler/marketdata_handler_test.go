package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/transport/handler"
	"yieldcurve_backend/internal/feature/yieldcurve/usecase"
)

func newMarketDataRouter(uc handler.MarketDataUsecase) *gin.Engine {
	h := handler.NewMarketDataHandler(uc)
	router := gin.New()
	router.POST("/bonds", h.RegisterBond)
	router.POST("/quotations", h.SubmitQuotation)
	router.PUT("/quotations/:id", h.UpdateQuotation)
	router.POST("/trade-batches", h.StageTradeBatch)
	router.POST("/trade-batches/:id/confirm", h.ConfirmTradeBatch)
	router.POST("/treasury-bills", h.CreateTreasuryBill)
	return router
}

// TestMarketDataHandler_RegisterBond は銘柄登録をテストします。
func TestMarketDataHandler_RegisterBond(t *testing.T) {
	validBody := `{"isin":"KE5000000001","issue_no":"FXD1/2020/05","issue_date":"2020-05-04","maturity_date":"2027-01-14",
		"outstanding_value":30000000000,"coupon_type":"FIXED","coupon_rate":11.667,"category":"FXD"}`

	tests := []struct {
		name           string
		body           string
		register       func(ctx context.Context, b entity.Bond) (*entity.Bond, error)
		expectedStatus int
	}{
		{
			name: "success: bond registered",
			body: validBody,
			register: func(ctx context.Context, b entity.Bond) (*entity.Bond, error) {
				assert.Equal(t, day(2027, 1, 14), b.MaturityDate)
				assert.Equal(t, entity.CategoryFXD, b.Category)
				b.ID = 7
				return &b, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "failure: duplicate bond",
			body: validBody,
			register: func(ctx context.Context, b entity.Bond) (*entity.Bond, error) {
				return nil, domain.ErrDuplicateBond
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "failure: unknown category",
			body:           `{"isin":"KE5000000001","issue_no":"X","issue_date":"2020-05-04","maturity_date":"2027-01-14","category":"ZERO"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "failure: malformed maturity date",
			body:           `{"isin":"KE5000000001","issue_no":"X","issue_date":"2020-05-04","maturity_date":"14/01/2027","category":"FXD"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockMarketDataUsecase{RegisterBondFunc: tt.register}

			w := serve(newMarketDataRouter(uc), http.MethodPost, "/bonds", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				assert.Contains(t, w.Body.String(), `"id":7`)
			}
		})
	}
}

// TestMarketDataHandler_SubmitQuotation は気配登録をテストします。
func TestMarketDataHandler_SubmitQuotation(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		submit         func(ctx context.Context, q entity.Quotation) (*entity.Quotation, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: quotation stored",
			body: `{"bond_id":1,"institution_id":4,"buying_yield":13.1,"selling_yield":13.3,"buy_volume":60000000,"sell_volume":50000000}`,
			submit: func(ctx context.Context, q entity.Quotation) (*entity.Quotation, error) {
				assert.Equal(t, 13.1, q.BuyingYield)
				q.ID = 11
				q.CreatedAt = today.Add(10 * time.Hour)
				return &q, nil
			},
			expectedStatus: http.StatusCreated,
			expectedBody: `{"id":11,"bond_id":1,"institution_id":4,"buying_yield":13.1,"selling_yield":13.3,
				"buy_volume":60000000,"sell_volume":50000000,"quote_date":"2025-01-16"}`,
		},
		{
			name: "failure: inverted spread",
			body: `{"bond_id":1,"buying_yield":13.3,"selling_yield":13.1}`,
			submit: func(ctx context.Context, q entity.Quotation) (*entity.Quotation, error) {
				return nil, fmt.Errorf("%w: selling yield below buying yield", domain.ErrInvalidQuotation)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "failure: missing selling yield",
			body:           `{"bond_id":1,"buying_yield":13.3}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "failure: negative volume",
			body:           `{"bond_id":1,"buying_yield":13.1,"selling_yield":13.3,"buy_volume":-1}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockMarketDataUsecase{SubmitQuotationFunc: tt.submit}

			w := serve(newMarketDataRouter(uc), http.MethodPost, "/quotations", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

// TestMarketDataHandler_UpdateQuotation は気配編集とロックをテストします。
func TestMarketDataHandler_UpdateQuotation(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		body           string
		update         func(ctx context.Context, id uint, changes usecase.QuotationChanges) (*entity.Quotation, error)
		expectedStatus int
	}{
		{
			name: "success: partial update",
			url:  "/quotations/11",
			body: `{"selling_yield":13.4}`,
			update: func(ctx context.Context, id uint, changes usecase.QuotationChanges) (*entity.Quotation, error) {
				assert.Equal(t, uint(11), id)
				assert.Nil(t, changes.BuyingYield)
				require.NotNil(t, changes.SellingYield)
				assert.Equal(t, 13.4, *changes.SellingYield)
				return &entity.Quotation{ID: id, BondID: 1, BuyingYield: 13.1, SellingYield: 13.4, CreatedAt: today}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "failure: locked after creation day",
			url:  "/quotations/11",
			body: `{"selling_yield":13.4}`,
			update: func(ctx context.Context, id uint, changes usecase.QuotationChanges) (*entity.Quotation, error) {
				return nil, domain.ErrQuotationLocked
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "failure: not found",
			url:  "/quotations/404",
			body: `{}`,
			update: func(ctx context.Context, id uint, changes usecase.QuotationChanges) (*entity.Quotation, error) {
				return nil, domain.ErrQuotationNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "failure: non-numeric id",
			url:            "/quotations/abc",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockMarketDataUsecase{UpdateQuotationFunc: tt.update}

			w := serve(newMarketDataRouter(uc), http.MethodPut, tt.url, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

// TestMarketDataHandler_TradeBatches は約定バッチの登録と確定をテストします。
func TestMarketDataHandler_TradeBatches(t *testing.T) {
	t.Run("success: stage batch", func(t *testing.T) {
		uc := &mockMarketDataUsecase{StageTradeBatchFunc: func(ctx context.Context, tradeDate time.Time, lines []entity.TradeLine) (*entity.TradeBatch, error) {
			assert.Equal(t, today, tradeDate)
			require.Len(t, lines, 2)
			assert.Equal(t, entity.SideSell, lines[1].Side)
			assert.Equal(t, today, lines[0].TradeDate)
			for i := range lines {
				lines[i].ID = uint(i + 1)
			}
			return &entity.TradeBatch{ID: 5, TradeDate: tradeDate, Status: entity.BatchStaged, Lines: lines}, nil
		}}
		body := `{"trade_date":"2025-01-16","lines":[
			{"bond_id":1,"side":"BUY","executed_size":100000000,"yield":13.2},
			{"bond_id":1,"side":"SELL","executed_size":100000000,"yield":13.3}]}`

		w := serve(newMarketDataRouter(uc), http.MethodPost, "/trade-batches", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":5,"trade_date":"2025-01-16","status":"STAGED","lines":[
			{"id":1,"bond_id":1,"side":"BUY","executed_size":100000000,"yield":13.2},
			{"id":2,"bond_id":1,"side":"SELL","executed_size":100000000,"yield":13.3}]}`, w.Body.String())
	})

	t.Run("failure: invalid line", func(t *testing.T) {
		uc := &mockMarketDataUsecase{StageTradeBatchFunc: func(ctx context.Context, tradeDate time.Time, lines []entity.TradeLine) (*entity.TradeBatch, error) {
			return nil, fmt.Errorf("%w: line 1: unknown side \"HOLD\"", domain.ErrInvalidTradeLine)
		}}
		body := `{"trade_date":"2025-01-16","lines":[{"bond_id":1,"side":"HOLD","executed_size":1,"yield":13.2}]}`

		w := serve(newMarketDataRouter(uc), http.MethodPost, "/trade-batches", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	tests := []struct {
		name           string
		url            string
		confirm        func(ctx context.Context, batchID uint) (*entity.TradeBatch, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: batch confirmed",
			url:  "/trade-batches/5/confirm",
			confirm: func(ctx context.Context, batchID uint) (*entity.TradeBatch, error) {
				assert.Equal(t, uint(5), batchID)
				return &entity.TradeBatch{ID: 5, TradeDate: today, Status: entity.BatchConfirmed}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "failure: second batch for the same trade date",
			url:  "/trade-batches/6/confirm",
			confirm: func(ctx context.Context, batchID uint) (*entity.TradeBatch, error) {
				return nil, &domain.DuplicateTradeBatchError{TradeDate: today}
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"trade batch already confirmed for 2025-01-16"}`,
		},
		{
			name: "failure: unknown batch",
			url:  "/trade-batches/404/confirm",
			confirm: func(ctx context.Context, batchID uint) (*entity.TradeBatch, error) {
				return nil, domain.ErrTradeBatchNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "failure: zero id",
			url:            "/trade-batches/0/confirm",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockMarketDataUsecase{ConfirmTradeBatchFunc: tt.confirm}

			w := serve(newMarketDataRouter(uc), http.MethodPost, tt.url, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

// TestMarketDataHandler_CreateTreasuryBill は T-bill 登録をテストします。
func TestMarketDataHandler_CreateTreasuryBill(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		create         func(ctx context.Context, bill entity.TreasuryBill) (*entity.TreasuryBill, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: maturity derived by usecase",
			body: `{"issue_date":"2025-01-13","tenor_days":364,"yield":12.1}`,
			create: func(ctx context.Context, bill entity.TreasuryBill) (*entity.TreasuryBill, error) {
				assert.True(t, bill.MaturityDate.IsZero())
				bill.ID = 3
				bill.MaturityDate = bill.IssueDate.AddDate(0, 0, bill.TenorDays)
				return &bill, nil
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"id":3,"issue_date":"2025-01-13","maturity_date":"2026-01-12","tenor_days":364,"yield":12.1}`,
		},
		{
			name: "failure: duplicate issue",
			body: `{"issue_date":"2025-01-13","tenor_days":364,"yield":12.1}`,
			create: func(ctx context.Context, bill entity.TreasuryBill) (*entity.TreasuryBill, error) {
				return nil, domain.ErrDuplicateTreasuryBill
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "failure: missing yield",
			body:           `{"issue_date":"2025-01-13","tenor_days":364}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockMarketDataUsecase{CreateTreasuryBillFunc: tt.create}

			w := serve(newMarketDataRouter(uc), http.MethodPost, "/treasury-bills", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}
