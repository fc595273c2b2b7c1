package entity

import "time"

// ImpliedYield は取引所が公表する、ある日付の銘柄ごとの公式参照利回りです。
// 日次の確定処理で一度だけ書き込まれ、更新されることはありません。
type ImpliedYield struct {
	ID        uint
	BondID    uint
	YieldDate time.Time
	Yield     float64
}

// YieldSourceKind は選択された利回りの出所です。
type YieldSourceKind string

const (
	SourceTraded   YieldSourceKind = "TRADED"
	SourceQuoted   YieldSourceKind = "QUOTED"
	SourcePrevious YieldSourceKind = "PREVIOUS"
)

// SelectionStatus は銘柄ごとの判定の状態です。Confirmed が終端です。
type SelectionStatus string

const (
	StatusDraft     SelectionStatus = "DRAFT"
	StatusConfirmed SelectionStatus = "CONFIRMED"
)

// ImpliedYieldSelection は1銘柄に対する日次判定の結果です（監査用の理由付き）。
// 当日に条件を満たすデータがなければ Traded / Quoted は nil です。
type ImpliedYieldSelection struct {
	BondID   uint
	IssueNo  string
	Traded   *float64
	Quoted   *float64
	Previous float64
	Selected float64
	Source   YieldSourceKind
	Reason   string
	Status   SelectionStatus
}

// SkippedBond は判定対象から外れた銘柄とその理由です。
type SkippedBond struct {
	BondID  uint
	IssueNo string
	Reason  string
}

// DraftRun はある日付のドラフト計算結果です。
type DraftRun struct {
	Date             time.Time
	TBillVariance    float64
	AlreadyConfirmed bool
	Selections       []ImpliedYieldSelection
	Skipped          []SkippedBond
}

// ConfirmedSelection はオペレーターが1銘柄について確定する値です。
type ConfirmedSelection struct {
	BondID uint
	Yield  float64
}
