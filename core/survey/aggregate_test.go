package survey

import (
	"testing"

	"github.com/nickmarkin/AAA-Summarizer/core/activity"
)

func testTypes() []activity.ActivityType {
	return []activity.ActivityType{
		{Key: "CIT_COMMIT_UNMC", Modifier: activity.ModifierFixed, BasePoints: 1000, IsActive: true},
		{Key: "CIT_COMMIT_NEBMED", Modifier: activity.ModifierFixed, BasePoints: 500, IsActive: true},
		{Key: "CIT_COMMIT_MINOR", Modifier: activity.ModifierFixed, BasePoints: 100, IsActive: true},
		{Key: "CIT_COMMIT_OTHER", Modifier: activity.ModifierFixed, BasePoints: 0, IsActive: true},
		{Key: "RSCH_THESIS_MBR", Modifier: activity.ModifierFixed, BasePoints: 1000, IsActive: true},
		{Key: "EDU_FDBK_MTR_COUNT", Modifier: activity.ModifierCount, BasePoints: 25, MaxPoints: 3000, IsActive: true},
		{Key: "EXPT_PUB_PEER_AUTH", Modifier: activity.ModifierImpactFactor, BasePoints: 1000, IsActive: true},
	}
}

func testConfig() *Config {
	return &Config{
		Order: []string{"citizenship", "research", "content_expert"},
		Categories: map[string]CategoryConfig{
			"citizenship": {
				Key: "citizenship",
				Subsections: []SubsectionConfig{
					{
						Key: "committees", CarryForward: true,
						Fields: []Field{radio("type", "Committee type",
							choice("unmc", "UNMC", "CIT_COMMIT_UNMC"),
							choice("nebmed", "NebMed", "CIT_COMMIT_NEBMED"),
							choice("minor", "Minor", "CIT_COMMIT_MINOR"),
							choice("other", "Other", "CIT_COMMIT_OTHER"),
						)},
					},
					{
						Key: "mytip",
						Fields: []Field{radio("type", "Recognition",
							choice("mytip_each", "Mentions", "EDU_FDBK_MTR_COUNT"),
						)},
					},
				},
			},
			"research": {
				Key: "research",
				Subsections: []SubsectionConfig{
					{Key: "thesis_committees", CarryForward: true, PointsPerEntryKey: "RSCH_THESIS_MBR"},
				},
			},
			"content_expert": {
				Key: "content_expert",
				Subsections: []SubsectionConfig{
					{
						Key: "publications_peer",
						Fields: []Field{radio("role", "Author role",
							choice("first_senior", "First/senior", "EXPT_PUB_PEER_AUTH"),
						)},
					},
				},
			},
		},
	}
}

func TestAggregator_SubsectionPoints(t *testing.T) {
	agg := NewAggregator(testConfig(), testTypes())
	committees, _ := testConfig().Subsection("citizenship", "committees")
	mytip, _ := testConfig().Subsection("citizenship", "mytip")
	thesis, _ := testConfig().Subsection("research", "thesis_committees")
	pubs, _ := testConfig().Subsection("content_expert", "publications_peer")

	tests := []struct {
		name string
		sub  SubsectionConfig
		data Subsection
		want int
	}{
		{
			name: "choice resolves to registry key",
			sub:  committees,
			data: Subsection{Trigger: "yes", Entries: []Entry{{Type: "unmc"}, {Type: "minor"}}},
			want: 1100,
		},
		{
			name: "opt-out choice scores nothing",
			sub:  committees,
			data: Subsection{Trigger: "yes", Entries: []Entry{{Type: "99"}}},
			want: 0,
		},
		{
			name: "unknown type scores nothing",
			sub:  committees,
			data: Subsection{Trigger: "yes", Entries: []Entry{{Type: "whatever"}}},
			want: 0,
		},
		{
			name: "missing type falls back to lowest non-zero sibling",
			sub:  committees,
			data: Subsection{Trigger: "yes", Entries: []Entry{{Fields: map[string]string{"name": "IRB"}}}},
			want: 100,
		},
		{
			name: "legacy free-text key resolves directly",
			sub:  committees,
			data: Subsection{Trigger: "yes", Entries: []Entry{{Type: "CIT_COMMIT_NEBMED"}}},
			want: 500,
		},
		{
			name: "carried entries excluded",
			sub:  committees,
			data: Subsection{Trigger: "yes", Entries: []Entry{
				{Type: "unmc", CarriedFrom: "Q1"},
				{Type: "minor"},
			}},
			want: 100,
		},
		{
			name: "count modifier multiplies mentions",
			sub:  mytip,
			data: Subsection{Trigger: "yes", Entries: []Entry{{Type: "mytip_each", Count: 12}}},
			want: 300,
		},
		{
			name: "count modifier capped at max points",
			sub:  mytip,
			data: Subsection{Trigger: "yes", Entries: []Entry{{Type: "mytip_each", Count: 500}}},
			want: 3000,
		},
		{
			name: "count zero scores zero",
			sub:  mytip,
			data: Subsection{Trigger: "yes", Entries: []Entry{{Type: "mytip_each", Count: 0}}},
			want: 0,
		},
		{
			name: "flat per-entry rate",
			sub:  thesis,
			data: Subsection{Trigger: "yes", Entries: []Entry{
				{Fields: map[string]string{"student": "A"}},
				{Fields: map[string]string{"student": "B"}},
				{Fields: map[string]string{"student": "C"}},
			}},
			want: 3000,
		},
		{
			name: "impact factor multiplier truncates",
			sub:  pubs,
			data: Subsection{Trigger: "yes", Entries: []Entry{{Type: "first_senior", ImpactFactor: 3.5}}},
			want: 3500,
		},
		{
			name: "impact factor clamped to 15",
			sub:  pubs,
			data: Subsection{Trigger: "yes", Entries: []Entry{{Type: "first_senior", ImpactFactor: 40}}},
			want: 15000,
		},
		{name: "empty subsection", sub: committees, data: Subsection{}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.SubsectionPoints(tt.sub, tt.data); got != tt.want {
				t.Errorf("SubsectionPoints() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAggregator_Totals(t *testing.T) {
	agg := NewAggregator(testConfig(), testTypes())
	tree := Tree{
		"citizenship": {
			"committees": {Trigger: "yes", Entries: []Entry{{Type: "unmc"}}},
			"mytip":      {Trigger: "yes", Entries: []Entry{{Type: "mytip_each", Count: 4}}},
		},
		"research": {
			"thesis_committees": {Trigger: "yes", Entries: []Entry{{Fields: map[string]string{"student": "A"}}}},
		},
	}

	totals, grand := agg.Totals(tree)
	if totals["citizenship"] != 1100 {
		t.Errorf("citizenship = %d, want 1100", totals["citizenship"])
	}
	if totals["research"] != 1000 {
		t.Errorf("research = %d, want 1000", totals["research"])
	}
	if totals["content_expert"] != 0 {
		t.Errorf("content_expert = %d, want 0", totals["content_expert"])
	}
	if grand != 2100 {
		t.Errorf("grand total = %d, want 2100", grand)
	}

	// same input, same output
	again, grandAgain := agg.Totals(tree)
	if grandAgain != grand {
		t.Errorf("Totals() not deterministic: %d then %d", grand, grandAgain)
	}
	for cat, pts := range totals {
		if again[cat] != pts {
			t.Errorf("Totals()[%s] not deterministic: %d then %d", cat, pts, again[cat])
		}
	}
}
