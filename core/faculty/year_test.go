package faculty

import (
	"testing"
	"time"
)

func TestYearCodeFor(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "July starts the year", t: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), want: "24-25"},
		{name: "December stays in the year", t: time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC), want: "24-25"},
		{name: "January belongs to the prior start", t: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), want: "24-25"},
		{name: "June closes the year", t: time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), want: "24-25"},
		{name: "next July rolls over", t: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), want: "25-26"},
		{name: "century wrap", t: time.Date(2099, time.August, 1, 0, 0, 0, 0, time.UTC), want: "99-00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := YearCodeFor(tt.t); got != tt.want {
				t.Errorf("YearCodeFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestYearBounds(t *testing.T) {
	ref := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	from, to, err := YearBounds("24-25", ref)
	if err != nil {
		t.Fatalf("YearBounds() failed: %v", err)
	}
	if want := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Errorf("from = %v, want %v", from, want)
	}
	if want := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC); !to.Equal(want) {
		t.Errorf("to = %v, want %v", to, want)
	}

	if _, _, err := YearBounds("garbage", ref); err == nil {
		t.Error("YearBounds() should reject malformed codes")
	}
}
