package faculty

import (
	"fmt"
	"time"
)

// Academic years run July through June and are coded as "24-25".

// YearCodeFor returns the code of the academic year containing t.
func YearCodeFor(t time.Time) string {
	start := t.Year()
	if t.Month() < time.July {
		start--
	}
	return fmt.Sprintf("%02d-%02d", start%100, (start+1)%100)
}

// CurrentYearCode returns the code of the academic year in progress.
func CurrentYearCode() string {
	return YearCodeFor(time.Now().UTC())
}

// YearBounds returns the inclusive start and exclusive end instants of the
// coded academic year, interpreted in UTC. The code's first half anchors the
// century-relative start year against `ref`.
func YearBounds(code string, ref time.Time) (time.Time, time.Time, error) {
	var startYY, endYY int
	if _, err := fmt.Sscanf(code, "%02d-%02d", &startYY, &endYY); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid year code %q", code)
	}
	century := ref.Year() - ref.Year()%100
	start := century + startYY
	if start > ref.Year()+1 {
		start -= 100
	}
	from := time.Date(start, time.July, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0), nil
}
