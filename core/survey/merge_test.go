package survey

import (
	"testing"
)

func TestMerge(t *testing.T) {
	imported := Tree{
		"citizenship": {
			"committees": {Trigger: "yes", Entries: []Entry{
				{ID: "i1", Type: "unmc", Source: SourceImported},
			}},
			"department_activities": {Trigger: "no"},
		},
	}
	manual := Tree{
		"citizenship": {
			"committees": {Entries: []Entry{
				{ID: "m1", Type: "minor"},
				{}, // malformed, skipped
				{ID: "m2", Type: "nebmed"},
			}},
		},
		"education": {
			"lectures": {Entries: []Entry{{ID: "m3", Type: "lecture_new"}}},
		},
	}

	merged := Merge(imported, manual, nil)

	committees := merged["citizenship"]["committees"]
	if len(committees.Entries) != 3 {
		t.Fatalf("committees entries = %d, want 3 (imported first, malformed skipped)", len(committees.Entries))
	}
	if committees.Entries[0].ID != "i1" {
		t.Errorf("imported entries must come first, got %q", committees.Entries[0].ID)
	}

	// manual entries are tagged and indexed against the manual list only
	if e := committees.Entries[1]; e.Source != SourceManual || e.ManualIndex != 0 {
		t.Errorf("first manual entry = (%s, %d), want (manual, 0)", e.Source, e.ManualIndex)
	}
	if e := committees.Entries[2]; e.Source != SourceManual || e.ManualIndex != 1 {
		t.Errorf("second manual entry = (%s, %d), want (manual, 1)", e.Source, e.ManualIndex)
	}

	// manual-only subsection gets an implicit yes trigger
	lectures := merged["education"]["lectures"]
	if lectures.Trigger != "yes" || len(lectures.Entries) != 1 {
		t.Errorf("lectures = (%q, %d entries), want (yes, 1)", lectures.Trigger, len(lectures.Entries))
	}

	// imported "no" triggers survive
	if got := merged["citizenship"]["department_activities"].Trigger; got != "no" {
		t.Errorf("department_activities trigger = %q, want no", got)
	}

	// inputs are not mutated
	if imported["citizenship"]["committees"].Entries[0].ManualIndex != 0 {
		t.Error("Merge() must not mutate the imported tree")
	}
	if manual["citizenship"]["committees"].Entries[0].Source == SourceManual {
		t.Error("Merge() must not mutate the manual tree")
	}
}

func TestMerge_IndexRederivedAfterDelete(t *testing.T) {
	manual := Tree{
		"citizenship": {
			"committees": {Entries: []Entry{
				{ID: "m1", Type: "minor"},
				{ID: "m2", Type: "nebmed"},
			}},
		},
	}
	merged := Merge(nil, manual, nil)
	if got := merged["citizenship"]["committees"].Entries[1].ManualIndex; got != 1 {
		t.Fatalf("ManualIndex = %d, want 1", got)
	}

	// delete the first entry; the survivor's index collapses to 0
	manual["citizenship"]["committees"] = Subsection{Entries: []Entry{{ID: "m2", Type: "nebmed"}}}
	merged = Merge(nil, manual, nil)
	e := merged["citizenship"]["committees"].Entries[0]
	if e.ID != "m2" || e.ManualIndex != 0 {
		t.Errorf("after delete entry = (%q, %d), want (m2, 0)", e.ID, e.ManualIndex)
	}
}

func TestCarryForward(t *testing.T) {
	cfg := testConfig()

	q1 := QuarterSubmission{Quarter: QuarterQ1, Data: Tree{
		"citizenship": {
			"committees": {Trigger: "yes", Entries: []Entry{{ID: "c1", Type: "unmc"}}},
		},
		"research": {
			"thesis_committees": {Trigger: "yes", Entries: []Entry{{ID: "t1", Fields: map[string]string{"student": "A"}}}},
		},
	}}
	q2 := QuarterSubmission{Quarter: QuarterQ2, Data: Tree{
		"citizenship": {
			"committees": {Trigger: "yes", Entries: []Entry{{ID: "c2", Type: "minor"}}},
		},
	}}

	out := CarryForward(make(Tree), cfg, QuarterQ3, []QuarterSubmission{q1, q2})

	// most recent prior quarter wins
	committees := out["citizenship"]["committees"]
	if len(committees.Entries) != 1 || committees.Entries[0].ID != "c2" {
		t.Fatalf("committees carried = %+v, want single entry c2 from Q2", committees.Entries)
	}
	if e := committees.Entries[0]; e.Source != SourceCarried || e.CarriedFrom != QuarterQ2 {
		t.Errorf("carried entry tag = (%s, %q), want (carried_forward, Q2)", e.Source, e.CarriedFrom)
	}

	// subsections reported only in Q1 still carry
	thesis := out["research"]["thesis_committees"]
	if len(thesis.Entries) != 1 || thesis.Entries[0].CarriedFrom != QuarterQ1 {
		t.Errorf("thesis carried = %+v, want entry from Q1", thesis.Entries)
	}
}

func TestCarryForward_CurrentQuarterWins(t *testing.T) {
	cfg := testConfig()
	current := Tree{
		"citizenship": {
			"committees": {Trigger: "yes", Entries: []Entry{{ID: "now", Type: "nebmed"}}},
		},
	}
	prior := []QuarterSubmission{{Quarter: QuarterQ1, Data: Tree{
		"citizenship": {
			"committees": {Trigger: "yes", Entries: []Entry{{ID: "old", Type: "unmc"}}},
		},
	}}}

	out := CarryForward(current, cfg, QuarterQ2, prior)
	committees := out["citizenship"]["committees"]
	if len(committees.Entries) != 1 || committees.Entries[0].ID != "now" {
		t.Errorf("committees = %+v, want the current quarter's own entry only", committees.Entries)
	}
}

func TestCarryForward_IgnoresLaterQuarters(t *testing.T) {
	cfg := testConfig()
	prior := []QuarterSubmission{{Quarter: QuarterQ4, Data: Tree{
		"citizenship": {
			"committees": {Trigger: "yes", Entries: []Entry{{ID: "later", Type: "unmc"}}},
		},
	}}}

	out := CarryForward(make(Tree), cfg, QuarterQ2, prior)
	if len(out["citizenship"]["committees"].Entries) != 0 {
		t.Error("entries from later quarters must not carry backwards")
	}
}

func TestQuarterBefore(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{QuarterQ1, QuarterQ2, true},
		{QuarterQ2, QuarterQ1, false},
		{QuarterQ1Q2, QuarterQ2, false}, // same rank
		{QuarterQ1, QuarterQ1Q2, true},
		{QuarterQ1Q2, QuarterQ3, true},
		{QuarterQ3, QuarterQ4, true},
		{QuarterQ4, QuarterQ4, false},
	}
	for _, tt := range tests {
		if got := QuarterBefore(tt.a, tt.b); got != tt.want {
			t.Errorf("QuarterBefore(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
