package entity

import (
	"sort"
	"time"
)

// 銘柄に紐づかないカーブ点のラベル
const (
	LabelInterpolated = "Interpolated"
	LabelOneYearTBill = "1 Year TBill"
)

// CurveKind は公式カーブと表示用（気配）カーブを区別します。
type CurveKind string

const (
	CurveOfficial CurveKind = "OFFICIAL"
	CurveQuoted   CurveKind = "QUOTED"
)

// BenchmarkRange は年数で表した残存期間のバケットです（両端を含む）。
type BenchmarkRange struct {
	TenorYear  int
	LowerBound float64
	UpperBound float64
}

// Contains は tenure がバケット内にあるかを返します。
func (r BenchmarkRange) Contains(tenure float64) bool {
	return tenure >= r.LowerBound && tenure <= r.UpperBound
}

// CurvePoint はイールドカーブ上の1点です。
// 補間点と T-bill アンカーの BondID は 0 です。
type CurvePoint struct {
	Tenure       float64
	Yield        float64
	Label        string
	BondID       uint
	IssueDate    time.Time
	MaturityDate time.Time
	Interpolated bool
}

// Curve は評価日のイールドカーブです。点は残存期間の昇順に並びます。
type Curve struct {
	Date   time.Time
	Kind   CurveKind
	Points []CurvePoint
}

// SortPoints は残存期間の昇順に並べ替えます（安定ソート）。
func SortPoints(points []CurvePoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Tenure < points[j].Tenure
	})
}

// YieldAt は残存期間がちょうど tenure の点の利回りを返します。
func (c Curve) YieldAt(tenure float64) (float64, bool) {
	for _, p := range c.Points {
		if p.Tenure == tenure {
			return p.Yield, true
		}
	}
	return 0, false
}
