package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
)

// Candidates はある日の implied yield の候補値です。
// 条件を満たすデータがなければ Traded / Quoted は nil です。
type Candidates struct {
	Traded   *float64
	Quoted   *float64
	Previous float64
}

// Decision は1銘柄の判定結果です。
type Decision struct {
	Selected float64
	Source   entity.YieldSourceKind
	Reason   string
}

// SelectImpliedYield は約定・気配・前日値から implied yield を選びます。
//
// 前日値からの変化と1年物 T-bill の週次変化との差が tolerance 以内の候補が有効です。
// 両方有効なら約定を優先し、どちらも無効なら前日値を引き継ぎます。
func SelectImpliedYield(c Candidates, tbillVariance, tolerance float64) Decision {
	tradedOK := inMargin(c.Traded, c.Previous, tbillVariance, tolerance)
	quotedOK := inMargin(c.Quoted, c.Previous, tbillVariance, tolerance)

	var d Decision
	var rule string
	switch {
	case tradedOK && quotedOK:
		d = Decision{Selected: *c.Traded, Source: entity.SourceTraded}
		rule = "traded and quoted both within margin, traded takes precedence"
	case quotedOK:
		d = Decision{Selected: *c.Quoted, Source: entity.SourceQuoted}
		rule = "only quoted within margin"
	case tradedOK:
		d = Decision{Selected: *c.Traded, Source: entity.SourceTraded}
		rule = "only traded within margin"
	default:
		d = Decision{Selected: c.Previous, Source: entity.SourcePrevious}
		rule = "neither traded nor quoted within margin, previous carried forward"
	}
	d.Reason = fmt.Sprintf(
		"traded %s, quoted %s, previous %.4f, t-bill variance %.4f, margin %.2f: %s; selected %.4f (%s)",
		formatOptional(c.Traded), formatOptional(c.Quoted), c.Previous, tbillVariance, tolerance,
		rule, d.Selected, d.Source,
	)
	return d
}

// inMargin は |(candidate - previous) - variance| <= tolerance を decimal で判定します。
// ちょうど境界の値も有効です。
func inMargin(candidate *float64, previous, variance, tolerance float64) bool {
	if candidate == nil {
		return false
	}
	delta := decimal.NewFromFloat(*candidate).Sub(decimal.NewFromFloat(previous))
	gap := delta.Sub(decimal.NewFromFloat(variance)).Abs()
	return gap.LessThanOrEqual(decimal.NewFromFloat(tolerance))
}

func formatOptional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *v)
}
