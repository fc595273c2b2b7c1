// Package entity はイールドカーブ機能のドメインモデルを定義します。
package entity

import "time"

// BondCategory は債券の種別です。
type BondCategory string

const (
	// CategoryFXD は固定利付国債です。カーブの構築には FXD のみを使います。
	CategoryFXD BondCategory = "FXD"
	// CategoryIFB はインフラ債です。
	CategoryIFB BondCategory = "IFB"
)

// Bond は上場している国債の銘柄を表します。
// 削除はされず、償還後は評価対象から外れるだけです。
type Bond struct {
	ID               uint
	ISIN             string
	IssueNo          string    // 取引所の発行番号 (例: "FXD1/2019/10")
	IssueDate        time.Time // 発行日
	MaturityDate     time.Time // 償還日
	OutstandingValue float64   // 発行残高（額面）
	CouponType       string    // 例: "FIXED"
	CouponRate       float64   // 年利クーポン（%）
	Category         BondCategory
	IsBenchmark      bool
}

// IsMatured は評価日より前に償還済みかどうかを返します。
func (b Bond) IsMatured(valuationDate time.Time) bool {
	return DateOf(b.MaturityDate).Before(DateOf(valuationDate))
}

// DateOf は t をその暦日の UTC 0時に切り詰めます。
// 機能内の営業日はすべてこの関数で正規化します。
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
