package survey

import (
	"github.com/nickmarkin/AAA-Summarizer/core/activity"
)

// optOutChoice is the REDCap "none of the above" radio value; entries carrying
// it score nothing.
const optOutChoice = "99"

// Aggregator computes category point totals from response data against a fixed
// snapshot of the survey config and the activity type registry. It holds no
// hidden state: aggregating the same data twice always yields the same result,
// which is what makes re-import and resubmission idempotent.
type Aggregator struct {
	cfg   *Config
	types map[string]activity.ActivityType
}

func NewAggregator(cfg *Config, types []activity.ActivityType) *Aggregator {
	byKey := make(map[string]activity.ActivityType, len(types))
	for _, at := range types {
		byKey[at.Key] = at
	}
	return &Aggregator{cfg: cfg, types: byKey}
}

// SubsectionPoints sums point contributions for one subsection's data.
// Carried-forward entries are excluded: their points were already counted in
// the stored totals of their source quarter.
func (a *Aggregator) SubsectionPoints(sub SubsectionConfig, data Subsection) int {
	current := make([]Entry, 0, len(data.Entries))
	for _, e := range data.Entries {
		if e.CarriedFrom == "" && !e.IsZero() {
			current = append(current, e)
		}
	}

	// flat presence-based rate (thesis committees, rotation director)
	if sub.PointsPerEntryKey != "" {
		at, ok := a.types[sub.PointsPerEntryKey]
		if !ok {
			return 0
		}
		return len(current) * at.BasePoints
	}

	choices := sub.radioChoices()
	var total int
	for _, entry := range current {
		total += a.entryPoints(choices, entry)
	}
	return total
}

func (sub SubsectionConfig) radioChoices() []Choice {
	for _, fld := range sub.Fields {
		if fld.Type == "radio" && len(fld.Choices) > 0 {
			return fld.Choices
		}
	}
	return nil
}

func (a *Aggregator) entryPoints(choices []Choice, entry Entry) int {
	if entry.Type == optOutChoice {
		return 0
	}

	if entry.Type != "" {
		for _, ch := range choices {
			if ch.Value == entry.Value() {
				at, ok := a.types[ch.ActivityKey]
				if !ok {
					// retired or never-registered key: documented zero-point default
					return 0
				}
				return activity.Compute(at, entry.countOrOne(at), entry.ImpactFactor)
			}
		}
		// legacy free-text type that matches a registry key directly
		if at, ok := a.types[entry.Type]; ok {
			return activity.Compute(at, entry.countOrOne(at), entry.ImpactFactor)
		}
		return 0
	}

	// Entry exists but no choice selected (historical imports): deterministic
	// fallback to the lowest non-zero sibling option.
	points := make([]int, 0, len(choices))
	for _, ch := range choices {
		if at, ok := a.types[ch.ActivityKey]; ok {
			points = append(points, at.BasePoints)
		}
	}
	return activity.FallbackPoints(points)
}

// countOrOne passes the reported count through for count-modified types
// (0 mentions score 0) and pins it to 1 otherwise.
func (e Entry) countOrOne(at activity.ActivityType) int {
	if at.Modifier != activity.ModifierCount {
		return 1
	}
	return e.Count
}

// Value returns the selected choice value for the entry.
func (e Entry) Value() string { return e.Type }

// CategoryPoints computes the total for one category from its response data.
// Pure function of its inputs.
func (a *Aggregator) CategoryPoints(categoryKey string, data CategoryData) int {
	cat, ok := a.cfg.Category(categoryKey)
	if !ok {
		return 0
	}
	var total int
	for _, sub := range cat.Subsections {
		total += a.SubsectionPoints(sub, data[sub.Key])
	}
	return total
}

// Totals computes all category totals and the grand total for a tree.
func (a *Aggregator) Totals(tree Tree) (map[string]int, int) {
	totals := make(map[string]int, len(a.cfg.Order))
	var grand int
	for _, catKey := range a.cfg.Order {
		pts := a.CategoryPoints(catKey, tree[catKey])
		totals[catKey] = pts
		grand += pts
	}
	return totals, grand
}
