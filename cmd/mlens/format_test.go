package main

import (
	"testing"
	"time"
)

func TestFormatAge(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero time", time.Time{}, "never"},
		{"seconds", now.Add(-30 * time.Second), "30s ago"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours and minutes", now.Add(-2*time.Hour - 15*time.Minute), "2h 15m ago"},
		{"days", now.Add(-50 * time.Hour), "2d 2h ago"},
		{"future clamps to zero", now.Add(time.Hour), "0s ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAge(tt.t); got != tt.want {
				t.Errorf("formatAge = %q, want %q", got, tt.want)
			}
		})
	}
}
