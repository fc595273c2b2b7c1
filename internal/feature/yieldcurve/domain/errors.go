// Package domain はイールドカーブ機能のドメインエラーを定義します。
package domain

import (
	"errors"
	"fmt"
	"time"
)

// エンジンのエラー。公式カーブではすべて致命的エラーとして扱います。
var (
	// ErrNoEligibleBonds は評価日に未償還の FXD 銘柄が存在しないことを示します。
	ErrNoEligibleBonds = errors.New("no eligible bonds for valuation date")

	// ErrMissingOneYearAnchor は週次サイクル内に1年物 T-bill の発行がないことを示します。
	ErrMissingOneYearAnchor = errors.New("missing one-year treasury bill anchor")

	// ErrMissingImpliedYield はバケットを代表する銘柄にその日の implied yield がないことを示します。
	ErrMissingImpliedYield = errors.New("missing implied yield")

	// ErrUnresolvableInterpolation は前日カーブを見ても片側の隣接点がない残存期間があることを示します。
	ErrUnresolvableInterpolation = errors.New("unresolvable interpolation")

	// ErrNoCurveHistory は気配カーブを組めず、公表済みカーブも存在しないことを示します。
	ErrNoCurveHistory = errors.New("no usable curve history")
)

// 確定処理・データ登録のエラー
var (
	// ErrAlreadyConfirmedForDate はその日付の implied yield が1件でも確定済みの場合に返されます。
	ErrAlreadyConfirmedForDate = errors.New("implied yields already confirmed for date")

	// ErrEmptySelection は確定対象が空の場合に返されます。
	ErrEmptySelection = errors.New("no implied yield selections to confirm")

	// ErrDuplicateSelection は同じ銘柄が重複している場合に返されます。
	ErrDuplicateSelection = errors.New("duplicate bond in implied yield selections")

	// ErrUnknownBond は確定対象に未登録または償還済みの銘柄が含まれる場合に返されます。
	ErrUnknownBond = errors.New("unknown or matured bond in implied yield selections")

	// ErrDuplicateTradeBatch は約定日に確定済みバッチがある場合に返されます。
	ErrDuplicateTradeBatch = errors.New("trade batch already confirmed for date")

	// ErrTradeBatchNotFound はバッチが見つからない場合に返されます。
	ErrTradeBatchNotFound = errors.New("trade batch not found")

	// ErrInvalidTradeLine は約定明細の検証に失敗した場合に返されます。
	ErrInvalidTradeLine = errors.New("invalid trade line")

	// ErrInvalidQuotation は売り利回りが買い利回りを下回る気配などに返されます。
	ErrInvalidQuotation = errors.New("invalid quotation")

	// ErrQuotationNotFound は指定IDの気配が存在しない場合に返されます。
	ErrQuotationNotFound = errors.New("quotation not found")

	// ErrQuotationLocked は登録日以外に気配を編集しようとした場合に返されます。
	ErrQuotationLocked = errors.New("quotation can only be edited on its creation day")

	// ErrInvalidBond は銘柄の必須項目や日付が不正な場合に返されます。
	ErrInvalidBond = errors.New("invalid bond")

	// ErrDuplicateBond は ISIN または発行番号が既に登録されている場合に返されます。
	ErrDuplicateBond = errors.New("bond already exists")

	// ErrInvalidTreasuryBill は T-bill の期間や日付が不正な場合に返されます。
	ErrInvalidTreasuryBill = errors.New("invalid treasury bill")

	// ErrDuplicateTreasuryBill は同じ発行日・期間の T-bill が既にある場合に返されます。
	ErrDuplicateTreasuryBill = errors.New("treasury bill already exists for issue date and tenor")

	// ErrCurveNotFound は該当する公表済みカーブがない場合に返されます。
	ErrCurveNotFound = errors.New("curve not found")

	// ErrImpliedYieldNotFound は該当する implied yield がない場合にリポジトリが返します。
	ErrImpliedYieldNotFound = errors.New("implied yield not found")

	// ErrTreasuryBillNotFound はサイクルに該当する T-bill がない場合にリポジトリが返します。
	ErrTreasuryBillNotFound = errors.New("treasury bill not found")
)

// MissingImpliedYieldError は implied yield が欠けていた銘柄と日付を保持します。
type MissingImpliedYieldError struct {
	BondID  uint
	IssueNo string
	Date    time.Time
}

func (e *MissingImpliedYieldError) Error() string {
	return fmt.Sprintf("missing implied yield for bond %d (%s) on %s", e.BondID, e.IssueNo, e.Date.Format(time.DateOnly))
}

func (e *MissingImpliedYieldError) Is(target error) bool {
	return target == ErrMissingImpliedYield
}

// UnresolvableInterpolationError は補間できなかった残存期間を保持します。
type UnresolvableInterpolationError struct {
	Tenure float64
}

func (e *UnresolvableInterpolationError) Error() string {
	return fmt.Sprintf("unresolvable interpolation at tenure %.4f", e.Tenure)
}

func (e *UnresolvableInterpolationError) Is(target error) bool {
	return target == ErrUnresolvableInterpolation
}

// DuplicateTradeBatchError は確定済みバッチがある約定日を保持します。
type DuplicateTradeBatchError struct {
	TradeDate time.Time
}

func (e *DuplicateTradeBatchError) Error() string {
	return fmt.Sprintf("trade batch already confirmed for %s", e.TradeDate.Format(time.DateOnly))
}

func (e *DuplicateTradeBatchError) Is(target error) bool {
	return target == ErrDuplicateTradeBatch
}
