package entity

import (
	"fmt"
	"time"
)

// Quotation はディーラーが提示する売り買いの利回り気配です。
// SellingYield が BuyingYield を下回ることはありません。
type Quotation struct {
	ID            uint
	BondID        uint
	InstitutionID uint
	BuyingYield   float64
	SellingYield  float64
	BuyVolume     int64
	SellVolume    int64
	CreatedAt     time.Time
}

// QuoteDate は気配が属する営業日を返します。
func (q Quotation) QuoteDate() time.Time {
	return DateOf(q.CreatedAt)
}

// Validate はスプレッドと数量の符号を検証します。
// 呼び出し側でドメインのセンチネルエラーにラップしてください。
func (q Quotation) Validate() error {
	if q.SellingYield < q.BuyingYield {
		return fmt.Errorf("selling yield %.4f is below buying yield %.4f", q.SellingYield, q.BuyingYield)
	}
	if q.BuyVolume < 0 || q.SellVolume < 0 {
		return fmt.Errorf("volumes must not be negative (buy=%d, sell=%d)", q.BuyVolume, q.SellVolume)
	}
	return nil
}
