package entity

import "time"

// TradeSide は約定の売買方向です。
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// Valid は既知の売買方向かどうかを返します。
func (s TradeSide) Valid() bool {
	return s == SideBuy || s == SideSell
}

// TradeBatchStatus はアップロード→確定の2段階ワークフローの状態です。
type TradeBatchStatus string

const (
	BatchStaged    TradeBatchStatus = "STAGED"
	BatchConfirmed TradeBatchStatus = "CONFIRMED"
)

// TradeLine は1件の約定です。
type TradeLine struct {
	ID              uint
	BatchID         uint
	BondID          uint
	Side            TradeSide
	ExecutedSize    int64
	Yield           float64
	TransactionTime time.Time
	TradeDate       time.Time
}

// TradeBatch は1つの約定日に対してアップロードされた約定の集まりです。
// 確定後は変更できず、確定できるのは約定日ごとに1バッチだけです。
type TradeBatch struct {
	ID          uint
	TradeDate   time.Time
	Status      TradeBatchStatus
	Lines       []TradeLine
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}
