package usecase

import (
	"math"
	"time"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/yieldmath"
)

// bucketWidth はバケットの下限（整数年）から上限までの幅です。
const bucketWidth = 0.9

// BuildBenchmarkRanges は対象銘柄から評価日のバケットを計算します。
func BuildBenchmarkRanges(date time.Time, bonds []entity.Bond) ([]entity.BenchmarkRange, error) {
	if len(bonds) == 0 {
		return nil, domain.ErrNoEligibleBonds
	}
	maxTenure := math.Inf(-1)
	for _, b := range bonds {
		maxTenure = math.Max(maxTenure, yieldmath.YearsToMaturity(b.MaturityDate, date))
	}
	return RangesForMaxTenure(maxTenure), nil
}

// RangesForMaxTenure は 1..floor(maxTenure) 年のバケットを (year, year+0.9) で返します。
// 最長銘柄が必ず入るよう、最後のバケットの上限は maxTenure+0.9 まで広げます。
// 1年バケットは T-bill が埋めるので常に含めます。
func RangesForMaxTenure(maxTenure float64) []entity.BenchmarkRange {
	last := int(math.Floor(maxTenure))
	if last < 1 {
		last = 1
	}
	ranges := make([]entity.BenchmarkRange, 0, last)
	for year := 1; year <= last; year++ {
		upper := float64(year) + bucketWidth
		if year == last {
			upper = math.Max(upper, maxTenure+bucketWidth)
		}
		ranges = append(ranges, entity.BenchmarkRange{
			TenorYear:  year,
			LowerBound: float64(year),
			UpperBound: yieldmath.Round4(upper),
		})
	}
	return ranges
}
