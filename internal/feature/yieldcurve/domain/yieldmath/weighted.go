package yieldmath

import (
	"github.com/shopspring/decimal"

	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
)

// DefaultMinQualifyingVolume は加重平均に含める最小の数量（気配数量・約定サイズ）です。
const DefaultMinQualifyingVolume int64 = 50_000_000

type sample struct {
	yield  float64
	volume int64
}

// sideAverage は条件を満たすサンプルの数量加重平均利回りを返します。
// 条件を満たす数量がなければ 0 です。
func sideAverage(samples []sample, minVolume int64) (decimal.Decimal, bool) {
	sum := decimal.Zero
	volume := decimal.Zero
	for _, s := range samples {
		if s.volume < minVolume {
			continue
		}
		v := decimal.NewFromInt(s.volume)
		sum = sum.Add(decimal.NewFromFloat(s.yield).Mul(v))
		volume = volume.Add(v)
	}
	if volume.IsZero() {
		return decimal.Zero, false
	}
	return sum.Div(volume), true
}

// midYield は買いと売りの平均を返します。片側しかない場合も、もう片側を 0 として2で割ります。
// 両側とも条件を満たさなければ ok=false です。
func midYield(buys, sells []sample, minVolume int64) (float64, bool) {
	buyAvg, buyOK := sideAverage(buys, minVolume)
	sellAvg, sellOK := sideAverage(sells, minVolume)
	if !buyOK && !sellOK {
		return 0, false
	}
	return buyAvg.Add(sellAvg).Div(decimal.NewFromInt(2)).Round(4).InexactFloat64(), true
}

// QuotedYield は当日の気配から数量加重の仲値利回りを計算します。
// スプレッドが不正な気配は無視します。
func QuotedYield(quotes []entity.Quotation, minVolume int64) (float64, bool) {
	buys := make([]sample, 0, len(quotes))
	sells := make([]sample, 0, len(quotes))
	for _, q := range quotes {
		if q.Validate() != nil {
			continue
		}
		buys = append(buys, sample{yield: q.BuyingYield, volume: q.BuyVolume})
		sells = append(sells, sample{yield: q.SellingYield, volume: q.SellVolume})
	}
	return midYield(buys, sells, minVolume)
}

// TradedYield は当日の確定済み約定から数量加重の仲値利回りを計算します。
func TradedYield(lines []entity.TradeLine, minVolume int64) (float64, bool) {
	var buys, sells []sample
	for _, l := range lines {
		s := sample{yield: l.Yield, volume: l.ExecutedSize}
		switch l.Side {
		case entity.SideBuy:
			buys = append(buys, s)
		case entity.SideSell:
			sells = append(sells, s)
		}
	}
	return midYield(buys, sells, minVolume)
}
