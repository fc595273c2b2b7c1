package entity

import "time"

// TreasuryBill は短期国債（T-bill）の入札結果です。
// (IssueDate, TenorDays) ごとに最大1件です。
type TreasuryBill struct {
	ID           uint
	IssueDate    time.Time
	MaturityDate time.Time
	TenorDays    int     // 例: 91, 182, 364
	Yield        float64 // 落札利回り（%）
}
