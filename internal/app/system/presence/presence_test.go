package presence

import (
	"testing"
	"time"
)

func TestIsOnline(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name string
		last *time.Time
		want bool
	}{
		{"nil timestamp", nil, false},
		{"just now", at(0), true},
		{"nine minutes ago", at(9 * time.Minute), true},
		{"one nanosecond inside window", at(Window - time.Nanosecond), true},
		{"exactly at window", at(Window), false},
		{"eleven minutes ago", at(11 * time.Minute), false},
		{"a day ago", at(24 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Online(tt.last, now); got != tt.want {
				t.Errorf("Online: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsOnline_CustomWindow(t *testing.T) {
	now := time.Now()
	last := now.Add(-2 * time.Minute)

	if IsOnline(&last, now, time.Minute) {
		t.Error("2m old activity should be offline with a 1m window")
	}
	if !IsOnline(&last, now, 5*time.Minute) {
		t.Error("2m old activity should be online with a 5m window")
	}
}

func TestThreshold_AgreesWithOnline(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cut := Threshold(now)

	if Online(&cut, now) {
		t.Error("activity exactly at threshold must be offline")
	}
	after := cut.Add(time.Millisecond)
	if !Online(&after, now) {
		t.Error("activity just after threshold must be online")
	}
}
