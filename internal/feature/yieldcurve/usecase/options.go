package usecase

import "yieldcurve_backend/internal/feature/yieldcurve/domain/yieldmath"

const (
	// DefaultMarginTolerance は候補利回りの前日比と1年物 T-bill の週次変化との許容差（%ポイント）です。
	DefaultMarginTolerance = 0.05
	// DefaultTBillTenorDays は1年アンカーに使う T-bill の最小期間（日）です。
	DefaultTBillTenorDays = 364
	// DefaultPrefetchConcurrency は判定前の銘柄ごとの読み込みの並列数です。
	DefaultPrefetchConcurrency = 8
)

// Options はエンジンのパラメータです。ゼロ値のフィールドはデフォルトになります。
type Options struct {
	MarginTolerance     float64
	MinQualifyingVolume int64
	TBillTenorDays      int
	PrefetchConcurrency int
}

// DefaultOptions は取引所の標準パラメータを返します。
func DefaultOptions() Options {
	return Options{
		MarginTolerance:     DefaultMarginTolerance,
		MinQualifyingVolume: yieldmath.DefaultMinQualifyingVolume,
		TBillTenorDays:      DefaultTBillTenorDays,
		PrefetchConcurrency: DefaultPrefetchConcurrency,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MarginTolerance <= 0 {
		o.MarginTolerance = d.MarginTolerance
	}
	if o.MinQualifyingVolume <= 0 {
		o.MinQualifyingVolume = d.MinQualifyingVolume
	}
	if o.TBillTenorDays <= 0 {
		o.TBillTenorDays = d.TBillTenorDays
	}
	if o.PrefetchConcurrency <= 0 {
		o.PrefetchConcurrency = d.PrefetchConcurrency
	}
	return o
}
