package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
)

// Interpolate は補間対象の残存期間を、隣接する点の線形補間で埋めます。
//
// 対象は昇順に処理し、補間した点は次の補間の隣接点になります。
// 当日の点に片側がなければ prior（前日カーブ）から探します。
// 戻り値の点は残存期間順で、それでも埋まらなかった残存期間は unresolved として返します。
func Interpolate(points []entity.CurvePoint, pending []float64, prior *entity.Curve) ([]entity.CurvePoint, []float64) {
	out := make([]entity.CurvePoint, len(points))
	copy(out, points)
	entity.SortPoints(out)

	targets := make([]float64, len(pending))
	copy(targets, pending)
	sort.Float64s(targets)

	var priorPoints []entity.CurvePoint
	if prior != nil {
		priorPoints = prior.Points
	}

	var unresolved []float64
	for i, t := range targets {
		if i > 0 && targets[i-1] == t {
			continue
		}
		if hasTenure(out, t) {
			continue
		}
		prev, okPrev := nearestBelow(out, t)
		if !okPrev {
			prev, okPrev = nearestBelow(priorPoints, t)
		}
		next, okNext := nearestAbove(out, t)
		if !okNext {
			next, okNext = nearestAbove(priorPoints, t)
		}
		if !okPrev || !okNext {
			unresolved = append(unresolved, t)
			continue
		}
		out = append(out, entity.CurvePoint{
			Tenure:       t,
			Yield:        LinearYield(prev, next, t),
			Label:        entity.LabelInterpolated,
			Interpolated: true,
		})
		entity.SortPoints(out)
	}
	return out, unresolved
}

// LinearYield は prev と next を結ぶ直線上の t の利回りを、小数第4位に丸めて返します。
func LinearYield(prev, next entity.CurvePoint, t float64) float64 {
	pt := decimal.NewFromFloat(prev.Tenure)
	py := decimal.NewFromFloat(prev.Yield)
	span := decimal.NewFromFloat(next.Tenure).Sub(pt)
	if span.IsZero() {
		return py.Round(4).InexactFloat64()
	}
	slope := decimal.NewFromFloat(next.Yield).Sub(py)
	offset := decimal.NewFromFloat(t).Sub(pt)
	return py.Add(offset.Mul(slope).Div(span)).Round(4).InexactFloat64()
}

func hasTenure(points []entity.CurvePoint, t float64) bool {
	for _, p := range points {
		if p.Tenure == t {
			return true
		}
	}
	return false
}

func nearestBelow(points []entity.CurvePoint, t float64) (entity.CurvePoint, bool) {
	var best entity.CurvePoint
	found := false
	for _, p := range points {
		if p.Tenure < t && (!found || p.Tenure > best.Tenure) {
			best, found = p, true
		}
	}
	return best, found
}

func nearestAbove(points []entity.CurvePoint, t float64) (entity.CurvePoint, bool) {
	var best entity.CurvePoint
	found := false
	for _, p := range points {
		if p.Tenure > t && (!found || p.Tenure < best.Tenure) {
			best, found = p, true
		}
	}
	return best, found
}
