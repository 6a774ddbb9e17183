package activity

// Impact factor bounds. A journal impact factor below 1 (or missing) counts
// as 1; anything above 15 counts as 15.
const (
	MinImpactFactor = 1.0
	MaxImpactFactor = 15.0
)

// ClampImpactFactor applies the 1..15 bounds. Zero/negative (i.e. missing or
// unparsable) floors to the minimum.
func ClampImpactFactor(impactFactor float64) float64 {
	if impactFactor < MinImpactFactor {
		return MinImpactFactor
	}
	if impactFactor > MaxImpactFactor {
		return MaxImpactFactor
	}
	return impactFactor
}

// Compute returns the point value of one entry of type `at`:
//
//	fixed:          base points, regardless of count
//	count:          base points x min(count, max count); count=0 yields 0
//	impact_factor:  int(base points x clamp(IF, 1, 15)), truncated toward zero
//
// The result is then clamped to MaxPoints when set. Never negative.
func Compute(at ActivityType, count int, impactFactor float64) int {
	var points int
	switch at.Modifier {
	case ModifierCount:
		if count < 0 {
			count = 0
		}
		if at.MaxCount > 0 && count > at.MaxCount {
			count = at.MaxCount
		}
		points = at.BasePoints * count
	case ModifierImpactFactor:
		points = int(float64(at.BasePoints) * ClampImpactFactor(impactFactor))
	default: // fixed
		points = at.BasePoints
	}

	if at.MaxPoints > 0 && points > at.MaxPoints {
		points = at.MaxPoints
	}
	if points < 0 {
		points = 0
	}
	return points
}

// FallbackPoints is the documented default for entries whose type cannot be
// resolved (legacy free-text imports): the lowest non-zero point option among
// the sibling choices, or 0 when there is none.
func FallbackPoints(choicePoints []int) int {
	min := 0
	for _, pts := range choicePoints {
		if pts > 0 && (min == 0 || pts < min) {
			min = pts
		}
	}
	return min
}
