package survey

import (
	"sort"

	"github.com/nickmarkin/AAA-Summarizer/core"
)

// Merge combines the imported and manual trees into one unified view:
// per subsection, imported entries first (unmodified), then manual entries
// tagged with their provenance and a zero-based index scoped to the manual
// list. The index is re-derived on every merge so edits and deletes always
// address the current manual list; entry identity itself is the stable ID.
// Malformed entries are skipped but logged; they never abort the merge.
func Merge(imported, manual Tree, logger core.Logger) Tree {
	out := make(Tree)

	appendEntries := func(cat, sub string, entries []Entry, tagManual bool) {
		kept := make([]Entry, 0, len(entries))
		idx := 0
		for _, e := range entries {
			if e.IsZero() {
				if logger != nil {
					logger.Warn("merge: skipping malformed entry", map[string]interface{}{
						"category": cat, "subsection": sub,
					})
				}
				continue
			}
			if tagManual {
				e.Source = SourceManual
				e.ManualIndex = idx
				idx++
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			return
		}
		if out[cat] == nil {
			out[cat] = make(CategoryData)
		}
		data := out[cat][sub]
		data.Entries = append(data.Entries, kept...)
		if data.Trigger == "" {
			data.Trigger = "yes"
		}
		out[cat][sub] = data
	}

	for cat, subs := range imported {
		for sub, data := range subs {
			if out[cat] == nil {
				out[cat] = make(CategoryData)
			}
			out[cat][sub] = Subsection{Trigger: data.Trigger}
			appendEntries(cat, sub, data.Entries, false)
		}
	}
	for cat, subs := range manual {
		for sub, data := range subs {
			appendEntries(cat, sub, data.Entries, true)
		}
	}
	return out
}

// QuarterSubmission is one prior quarter's submitted data within the same
// academic year, input to the carry-forward augmentation.
type QuarterSubmission struct {
	Quarter string
	Data    Tree
}

// CarryForward injects prior-quarter entries into carry-forward subsections
// that are empty or absent in the current quarter's tree. Injected entries are
// verbatim copies tagged with their source quarter and are read-only from the
// current quarter; they contribute no points here (each quarter's stored
// totals already counted them once). The merged list is for display.
func CarryForward(merged Tree, cfg *Config, currentQuarter string, prior []QuarterSubmission) Tree {
	out := merged
	if out == nil {
		out = make(Tree)
	}

	// most recent first, owning quarters only
	sorted := make([]QuarterSubmission, 0, len(prior))
	for _, qs := range prior {
		if QuarterBefore(qs.Quarter, currentQuarter) {
			sorted = append(sorted, qs)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return QuarterBefore(sorted[j].Quarter, sorted[i].Quarter)
	})

	for catKey, subKeys := range cfg.CarryForwardSubsections() {
		for _, subKey := range subKeys {
			if cur, ok := out[catKey]; ok && len(cur[subKey].Entries) > 0 {
				continue // current quarter reported this subsection
			}
			for _, qs := range sorted {
				src, ok := qs.Data[catKey]
				if !ok {
					continue
				}
				data := src[subKey]
				if data.Trigger != "yes" || len(data.Entries) == 0 {
					continue
				}
				carried := make([]Entry, 0, len(data.Entries))
				for _, e := range data.Entries {
					if e.IsZero() {
						continue
					}
					e.Source = SourceCarried
					e.CarriedFrom = qs.Quarter
					carried = append(carried, e)
				}
				if len(carried) == 0 {
					continue
				}
				if out[catKey] == nil {
					out[catKey] = make(CategoryData)
				}
				out[catKey][subKey] = Subsection{Trigger: "yes", Entries: carried}
				break // most recent prior submission wins
			}
		}
	}
	return out
}
