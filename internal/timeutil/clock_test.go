package timeutil

import (
	"testing"
	"time"
)

func TestWholeDaysSince(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		since time.Time
		want  int
	}{
		{"exactly 48h", now.Add(-48 * time.Hour), 2},
		{"just under 48h", now.Add(-48*time.Hour + time.Second), 1},
		{"just now", now, 0},
		{"future timestamp", now.Add(time.Hour), 0},
		{"ten days", now.Add(-240 * time.Hour), 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WholeDaysSince(tc.since, now); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestSetLocationRejectsUnknownZone(t *testing.T) {
	before := Location
	if err := SetLocation("Not/AZone"); err == nil {
		t.Fatal("expected error for unknown zone")
	}
	if Location != before {
		t.Fatal("location changed after failed SetLocation")
	}
}
