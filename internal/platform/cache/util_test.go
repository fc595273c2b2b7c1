package cache

import (
	"testing"
	"time"
)

func TestTimeUntilNextCutoff(t *testing.T) {
	t.Parallel()

	nairobi, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		t.Fatalf("failed to load Africa/Nairobi timezone: %v", err)
	}

	tests := []struct {
		name     string
		now      time.Time
		loc      *time.Location
		expected time.Duration
	}{
		{"before cutoff", time.Date(2025, 1, 16, 9, 30, 0, 0, nairobi), nairobi, 8*time.Hour + 30*time.Minute},
		{"exactly at cutoff rolls to next day", time.Date(2025, 1, 16, 18, 0, 0, 0, nairobi), nairobi, 24 * time.Hour},
		{"after cutoff", time.Date(2025, 1, 16, 23, 0, 0, 0, nairobi), nairobi, 19 * time.Hour},
		// 12:00 UTC は Nairobi (UTC+3) の 15:00
		{"now given in another zone", time.Date(2025, 1, 16, 12, 0, 0, 0, time.UTC), nairobi, 3 * time.Hour},
		{"nil location means UTC", time.Date(2025, 1, 16, 17, 0, 0, 0, time.UTC), nil, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TimeUntilNextCutoff(tt.now, tt.loc, DefaultCutoffHour); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCutoffTTL_AlwaysPositive(t *testing.T) {
	t.Parallel()

	ttl := CutoffTTL(time.UTC, DefaultCutoffHour)
	for i := 0; i < 10; i++ {
		d := ttl()
		if d <= 0 {
			t.Errorf("iteration %d: expected positive duration, got %v", i, d)
		}
		if d > 24*time.Hour {
			t.Errorf("iteration %d: expected duration within 24 hours, got %v", i, d)
		}
	}
}
