// Package handler はyieldcurveフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/transport/http/dto"
)

// CurveUsecase はカーブ構築のユースケースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CurveUsecase interface {
	BuildOfficialCurve(ctx context.Context, date time.Time) (*entity.Curve, error)
	BuildQuotedCurve(ctx context.Context, date time.Time) (*entity.Curve, error)
	PublishOfficialCurve(ctx context.Context, date time.Time) (*entity.Curve, error)
}

// CurveHandler はイールドカーブのHTTPリクエストを処理します。
type CurveHandler struct {
	uc    CurveUsecase
	today Today
}

// NewCurveHandler は CurveHandler の新しいインスタンスを生成します。
func NewCurveHandler(uc CurveUsecase, today Today) *CurveHandler {
	return &CurveHandler{uc: uc, today: today}
}

// GetOfficialCurve は公式カーブを計算して返します。
//
// エンドポイント例:
// GET /curves/official?date=2025-01-16
func (h *CurveHandler) GetOfficialCurve(c *gin.Context) {
	h.serveCurve(c, "official curve", h.uc.BuildOfficialCurve, http.StatusOK)
}

// GetQuotedCurve は気配ベースの表示用カーブを返します。
//
// エンドポイント例:
// GET /curves/quoted?date=2025-01-16
func (h *CurveHandler) GetQuotedCurve(c *gin.Context) {
	h.serveCurve(c, "quoted curve", h.uc.BuildQuotedCurve, http.StatusOK)
}

// PublishOfficialCurve は公式カーブを計算して保存します（翌日以降の補間に使われます）。
//
// エンドポイント例:
// POST /curves/official/publish?date=2025-01-16
func (h *CurveHandler) PublishOfficialCurve(c *gin.Context) {
	h.serveCurve(c, "publish official curve", h.uc.PublishOfficialCurve, http.StatusCreated)
}

func (h *CurveHandler) serveCurve(
	c *gin.Context,
	op string,
	build func(ctx context.Context, date time.Time) (*entity.Curve, error),
	status int,
) {
	date, err := dateQuery(c, h.today)
	if err != nil {
		badRequest(c, op, err)
		return
	}
	curve, err := build(c.Request.Context(), date)
	if err != nil {
		writeError(c, op, err)
		return
	}
	c.JSON(status, dto.NewCurveResponse(curve))
}
