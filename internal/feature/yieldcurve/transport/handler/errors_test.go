package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
)

// TestStatusFor はドメインエラーと HTTP ステータスの対応をテストします。
func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err      error
		expected int
	}{
		{domain.ErrCurveNotFound, http.StatusNotFound},
		{domain.ErrTradeBatchNotFound, http.StatusNotFound},
		{domain.ErrQuotationNotFound, http.StatusNotFound},
		{domain.ErrAlreadyConfirmedForDate, http.StatusConflict},
		{&domain.DuplicateTradeBatchError{}, http.StatusConflict},
		{domain.ErrDuplicateTreasuryBill, http.StatusConflict},
		{domain.ErrQuotationLocked, http.StatusConflict},
		{domain.ErrDuplicateBond, http.StatusConflict},
		{domain.ErrInvalidQuotation, http.StatusBadRequest},
		{fmt.Errorf("line 2: %w", domain.ErrInvalidTradeLine), http.StatusBadRequest},
		{domain.ErrEmptySelection, http.StatusBadRequest},
		{fmt.Errorf("%w: bond ids [999999]", domain.ErrUnknownBond), http.StatusBadRequest},
		{domain.ErrInvalidTreasuryBill, http.StatusBadRequest},
		{domain.ErrNoEligibleBonds, http.StatusUnprocessableEntity},
		{fmt.Errorf("anchor: %w", domain.ErrMissingOneYearAnchor), http.StatusUnprocessableEntity},
		{&domain.MissingImpliedYieldError{BondID: 1}, http.StatusUnprocessableEntity},
		{&domain.UnresolvableInterpolationError{Tenure: 7}, http.StatusUnprocessableEntity},
		{domain.ErrNoCurveHistory, http.StatusUnprocessableEntity},
		{errors.New("connection reset by peer"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, StatusFor(tt.err))
		})
	}
}
