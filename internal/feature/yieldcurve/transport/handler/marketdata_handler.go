package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/transport/http/dto"
	"yieldcurve_backend/internal/feature/yieldcurve/usecase"
)

// MarketDataUsecase は銘柄・気配・約定・T-bill の登録を定義します。
type MarketDataUsecase interface {
	RegisterBond(ctx context.Context, b entity.Bond) (*entity.Bond, error)
	SubmitQuotation(ctx context.Context, q entity.Quotation) (*entity.Quotation, error)
	UpdateQuotation(ctx context.Context, id uint, changes usecase.QuotationChanges) (*entity.Quotation, error)
	StageTradeBatch(ctx context.Context, tradeDate time.Time, lines []entity.TradeLine) (*entity.TradeBatch, error)
	ConfirmTradeBatch(ctx context.Context, batchID uint) (*entity.TradeBatch, error)
	CreateTreasuryBill(ctx context.Context, bill entity.TreasuryBill) (*entity.TreasuryBill, error)
}

// MarketDataHandler は市場データ登録のHTTPリクエストを処理します。
type MarketDataHandler struct {
	uc MarketDataUsecase
}

func NewMarketDataHandler(uc MarketDataUsecase) *MarketDataHandler {
	return &MarketDataHandler{uc: uc}
}

// RegisterBond は POST /bonds を処理します。
func (h *MarketDataHandler) RegisterBond(c *gin.Context) {
	var req dto.BondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "register bond", err)
		return
	}
	bond, err := req.ToEntity()
	if err != nil {
		badRequest(c, "register bond", err)
		return
	}
	created, err := h.uc.RegisterBond(c.Request.Context(), bond)
	if err != nil {
		writeError(c, "register bond", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewBondResponse(created))
}

// SubmitQuotation は POST /quotations を処理します。
func (h *MarketDataHandler) SubmitQuotation(c *gin.Context) {
	var req dto.QuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "submit quotation", err)
		return
	}
	created, err := h.uc.SubmitQuotation(c.Request.Context(), req.ToEntity())
	if err != nil {
		writeError(c, "submit quotation", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewQuotationResponse(created))
}

// UpdateQuotation は PUT /quotations/:id を処理します。作成当日のみ編集できます。
func (h *MarketDataHandler) UpdateQuotation(c *gin.Context) {
	id, ok := idParam(c, "update quotation")
	if !ok {
		return
	}
	var req dto.QuotationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "update quotation", err)
		return
	}
	updated, err := h.uc.UpdateQuotation(c.Request.Context(), id, usecase.QuotationChanges{
		BuyingYield:  req.BuyingYield,
		SellingYield: req.SellingYield,
		BuyVolume:    req.BuyVolume,
		SellVolume:   req.SellVolume,
	})
	if err != nil {
		writeError(c, "update quotation", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuotationResponse(updated))
}

// StageTradeBatch は POST /trade-batches を処理します。確定するまで利回り計算には使われません。
func (h *MarketDataHandler) StageTradeBatch(c *gin.Context) {
	var req dto.TradeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "stage trade batch", err)
		return
	}
	tradeDate, lines, err := req.ToEntities()
	if err != nil {
		badRequest(c, "stage trade batch", err)
		return
	}
	batch, err := h.uc.StageTradeBatch(c.Request.Context(), tradeDate, lines)
	if err != nil {
		writeError(c, "stage trade batch", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTradeBatchResponse(batch))
}

// ConfirmTradeBatch は POST /trade-batches/:id/confirm を処理します。
func (h *MarketDataHandler) ConfirmTradeBatch(c *gin.Context) {
	id, ok := idParam(c, "confirm trade batch")
	if !ok {
		return
	}
	batch, err := h.uc.ConfirmTradeBatch(c.Request.Context(), id)
	if err != nil {
		writeError(c, "confirm trade batch", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTradeBatchResponse(batch))
}

// CreateTreasuryBill は POST /treasury-bills を処理します。
func (h *MarketDataHandler) CreateTreasuryBill(c *gin.Context) {
	var req dto.TreasuryBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "create treasury bill", err)
		return
	}
	bill, err := req.ToEntity()
	if err != nil {
		badRequest(c, "create treasury bill", err)
		return
	}
	created, err := h.uc.CreateTreasuryBill(c.Request.Context(), bill)
	if err != nil {
		writeError(c, "create treasury bill", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTreasuryBillResponse(created))
}

var errInvalidID = errors.New("id must be a positive integer")

func idParam(c *gin.Context, op string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, op, errInvalidID)
		return 0, false
	}
	return uint(id), true
}
