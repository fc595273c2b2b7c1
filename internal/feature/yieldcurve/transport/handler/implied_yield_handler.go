package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/transport/http/dto"
	jwtmw "yieldcurve_backend/internal/platform/jwt"
)

// ImpliedYieldUsecase は日次の implied yield 判定と確定を定義します。
type ImpliedYieldUsecase interface {
	ComputeDraftImpliedYields(ctx context.Context, date time.Time) (*entity.DraftRun, error)
	ConfirmImpliedYields(ctx context.Context, date time.Time, selections []entity.ConfirmedSelection) error
}

type ImpliedYieldHandler struct {
	uc    ImpliedYieldUsecase
	today Today
}

func NewImpliedYieldHandler(uc ImpliedYieldUsecase, today Today) *ImpliedYieldHandler {
	return &ImpliedYieldHandler{uc: uc, today: today}
}

// GetDraft は銘柄ごとの判定結果（ドラフト）を返します。保存はしません。
//
// エンドポイント例:
// GET /implied-yields/draft?date=2025-01-16
func (h *ImpliedYieldHandler) GetDraft(c *gin.Context) {
	date, err := dateQuery(c, h.today)
	if err != nil {
		badRequest(c, "implied yield draft", err)
		return
	}
	run, err := h.uc.ComputeDraftImpliedYields(c.Request.Context(), date)
	if err != nil {
		writeError(c, "implied yield draft", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDraftResponse(run))
}

// Confirm はオペレーターが選んだ値をその日の implied yield として確定します。
// - バリデーションエラー時は400を返却
// - 既に確定済みの日付は409を返却
// - 成功時は201を返却
func (h *ImpliedYieldHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "implied yield confirm", err)
		return
	}
	date, err := dto.ParseDate(req.Date)
	if err != nil {
		badRequest(c, "implied yield confirm", errors.New("date must be YYYY-MM-DD"))
		return
	}
	selections := req.ToEntities()
	if err := h.uc.ConfirmImpliedYields(c.Request.Context(), date, selections); err != nil {
		writeError(c, "implied yield confirm", err)
		return
	}
	operator, _ := c.Get(jwtmw.ContextOperator)
	slog.Info("implied yields confirmed via api", "date", req.Date, "bonds", len(selections), "operator", operator)
	c.JSON(http.StatusCreated, dto.ConfirmResponse{Date: req.Date, Confirmed: len(selections)})
}
