package cache

import (
	"time"
)

// DefaultCutoffHour は日次締め（公式カーブ確定）の時刻です。
const DefaultCutoffHour = 18

// TimeUntilNextCutoff は loc における次の hour 時ちょうどまでの期間を返します。
func TimeUntilNextCutoff(now time.Time, loc *time.Location, hour int) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	// 次の締め時刻を計算
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)

	// 今日の締め時刻を過ぎている場合は翌日を使用
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}

	return next.Sub(now)
}

// CutoffTTL は呼び出し時点から次の締め時刻までを返す TTL 関数を作ります。
func CutoffTTL(loc *time.Location, hour int) func() time.Duration {
	return func() time.Duration {
		return TimeUntilNextCutoff(time.Now(), loc, hour)
	}
}
