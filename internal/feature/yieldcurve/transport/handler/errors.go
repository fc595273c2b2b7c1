package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/transport/http/dto"
)

var (
	notFoundErrors = []error{
		domain.ErrCurveNotFound,
		domain.ErrTradeBatchNotFound,
		domain.ErrQuotationNotFound,
		domain.ErrImpliedYieldNotFound,
		domain.ErrTreasuryBillNotFound,
	}
	conflictErrors = []error{
		domain.ErrAlreadyConfirmedForDate,
		domain.ErrDuplicateTradeBatch,
		domain.ErrDuplicateTreasuryBill,
		domain.ErrDuplicateBond,
		domain.ErrQuotationLocked,
	}
	badRequestErrors = []error{
		domain.ErrInvalidQuotation,
		domain.ErrInvalidTradeLine,
		domain.ErrInvalidBond,
		domain.ErrInvalidTreasuryBill,
		domain.ErrEmptySelection,
		domain.ErrDuplicateSelection,
		domain.ErrUnknownBond,
	}
	// エンジンが結果を出せなかったケース
	unprocessableErrors = []error{
		domain.ErrNoEligibleBonds,
		domain.ErrMissingOneYearAnchor,
		domain.ErrMissingImpliedYield,
		domain.ErrUnresolvableInterpolation,
		domain.ErrNoCurveHistory,
	}
)

// StatusFor はドメインエラーを HTTP ステータスに変換します。
func StatusFor(err error) int {
	switch {
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isAny(err, conflictErrors):
		return http.StatusConflict
	case isAny(err, badRequestErrors):
		return http.StatusBadRequest
	case isAny(err, unprocessableErrors):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError はエラーをレスポンスに書き込みます。
// 500 の場合は内部のエラー内容を公開しません。
func writeError(c *gin.Context, op string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err, "path", c.FullPath())
		c.JSON(status, dto.ErrorResponse{Error: "internal server error"})
		return
	}
	slog.Warn(op+" rejected", "error", err, "status", status)
	c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, op string, err error) {
	slog.Warn(op+" validation failed", "error", err, "remote_addr", c.ClientIP())
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request: " + err.Error()})
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
