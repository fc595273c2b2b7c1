// Package yieldmath はカーブエンジンの純粋な数値ルール（残存期間、丸め、T-bill サイクル、加重平均利回り）をまとめます。
package yieldmath

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
)

// DaysPerYear は残存期間計算の1年の日数です（52週）。
// 変えると銘柄が別のバケットに移るので注意。
const DaysPerYear = 364

// Round4 は小数第4位に四捨五入します（0から遠い方へ）。
func Round4(x float64) float64 {
	return decimal.NewFromFloat(x).Round(4).InexactFloat64()
}

// DaysBetween は from から to までの暦日数を返します。時刻は無視します。
func DaysBetween(from, to time.Time) int {
	return int(math.Round(entity.DateOf(to).Sub(entity.DateOf(from)).Hours() / 24))
}

// YearsToMaturity は評価日から償還日までの年数を 364日/年 で計算し、小数第4位に丸めて返します。
func YearsToMaturity(maturityDate, valuationDate time.Time) float64 {
	days := decimal.NewFromInt(int64(DaysBetween(valuationDate, maturityDate)))
	return days.Div(decimal.NewFromInt(DaysPerYear)).Round(4).InexactFloat64()
}
