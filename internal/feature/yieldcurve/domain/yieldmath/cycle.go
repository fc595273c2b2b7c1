package yieldmath

import (
	"time"

	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
)

// Cycle は T-bill 入札の週次サイクルです（金曜〜木曜、両端を含む）。
type Cycle struct {
	Start time.Time
	End   time.Time
}

// WeeklyCycle は date 時点で有効なサイクルを返します。
// date 以前で直近の木曜日に終わるサイクルです（日〜水曜なら先週の木曜日）。
func WeeklyCycle(date time.Time) Cycle {
	d := entity.DateOf(date)
	back := (int(d.Weekday()) - int(time.Thursday) + 7) % 7
	end := d.AddDate(0, 0, -back)
	return Cycle{Start: end.AddDate(0, 0, -6), End: end}
}

// Previous は1週間前のサイクルを返します。
func (c Cycle) Previous() Cycle {
	return Cycle{Start: c.Start.AddDate(0, 0, -7), End: c.End.AddDate(0, 0, -7)}
}
