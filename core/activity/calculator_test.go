package activity

import "testing"

func TestCompute(t *testing.T) {
	fixed := ActivityType{Key: "CIT_DEPT_GR_HOST", Modifier: ModifierFixed, BasePoints: 300}
	counted := ActivityType{Key: "EDU_FDBK_MTR_COUNT", Modifier: ModifierCount, BasePoints: 25, MaxPoints: 3000}
	countCapped := ActivityType{Key: "CAPPED", Modifier: ModifierCount, BasePoints: 25, MaxCount: 20}
	perIF := ActivityType{Key: "EXPT_PUB_PEER_AUTH", Modifier: ModifierImpactFactor, BasePoints: 1000}
	coauthIF := ActivityType{Key: "EXPT_PUB_PEER_COAUTH", Modifier: ModifierImpactFactor, BasePoints: 300}

	tests := []struct {
		name  string
		at    ActivityType
		count int
		ifr   float64
		want  int
	}{
		{name: "fixed ignores count", at: fixed, count: 7, want: 300},
		{name: "fixed ignores impact factor", at: fixed, ifr: 10, want: 300},
		{name: "count multiplies", at: counted, count: 5, want: 125},
		{name: "count zero yields zero", at: counted, count: 0, want: 0},
		{name: "count negative yields zero", at: counted, count: -3, want: 0},
		{name: "count capped by max count", at: countCapped, count: 27, want: 500},
		{name: "count capped by max points", at: counted, count: 200, want: 3000},
		{name: "impact factor multiplies", at: perIF, ifr: 3.5, want: 3500},
		{name: "impact factor truncates", at: coauthIF, ifr: 2.7, want: 810},
		{name: "impact factor clamped high", at: perIF, ifr: 20, want: 15000},
		{name: "impact factor missing floors to 1", at: perIF, ifr: 0, want: 1000},
		{name: "impact factor below 1 floors to 1", at: perIF, ifr: 0.4, want: 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.at, tt.count, tt.ifr); got != tt.want {
				t.Errorf("Compute() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClampImpactFactor(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 1}, {-2, 1}, {0.9, 1}, {1, 1}, {7.25, 7.25}, {15, 15}, {15.1, 15}, {100, 15},
	}
	for _, tt := range tests {
		if got := ClampImpactFactor(tt.in); got != tt.want {
			t.Errorf("ClampImpactFactor(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFallbackPoints(t *testing.T) {
	tests := []struct {
		name    string
		choices []int
		want    int
	}{
		{name: "lowest non-zero wins", choices: []int{1000, 500, 100, 0}, want: 100},
		{name: "zeros only", choices: []int{0, 0}, want: 0},
		{name: "empty", choices: nil, want: 0},
		{name: "single", choices: []int{250}, want: 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FallbackPoints(tt.choices); got != tt.want {
				t.Errorf("FallbackPoints() = %d, want %d", got, tt.want)
			}
		})
	}
}
