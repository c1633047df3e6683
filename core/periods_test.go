package core

import (
	"testing"
	"time"
)

func TestTimePeriodsBucketsWallClock(t *testing.T) {
	periods, err := NewTimePeriods(3600)
	if err != nil {
		t.Fatalf("new periods: %v", err)
	}
	now := time.Unix(7200, 0)
	periods.SetClock(func() time.Time { return now })
	if got := periods.Current(); got != 2 {
		t.Fatalf("period = %d, want 2", got)
	}

	now = time.Unix(7200+3599, 0)
	if got := periods.Current(); got != 2 {
		t.Fatalf("period before boundary = %d, want 2", got)
	}

	now = time.Unix(7200+3600, 0)
	if got := periods.Current(); got != 3 {
		t.Fatalf("period after boundary = %d, want 3", got)
	}
}

func TestTimePeriodsRejectsZeroInterval(t *testing.T) {
	if _, err := NewTimePeriods(0); err == nil {
		t.Fatal("expected error for zero interval")
	}
}
