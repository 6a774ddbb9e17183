package department

import "testing"

func TestEvaluationsPoints(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want int
	}{
		{name: "empty record", rec: Record{}, want: 0},
		{
			name: "all evaluations items",
			rec:  Record{NewInnovations: true, MyTIPWinner: true, MyTIPCount: 8},
			want: 2000 + 250 + 8*25,
		},
		{name: "count only", rec: Record{MyTIPCount: 3}, want: 75},
		{name: "count capped at 20", rec: Record{MyTIPCount: 27}, want: 500},
		{name: "negative count ignored", rec: Record{MyTIPCount: -4}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.EvaluationsPoints(); got != tt.want {
				t.Errorf("EvaluationsPoints() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTeachingAwardsPoints(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want int
	}{
		{name: "no awards", rec: Record{}, want: 0},
		{name: "top 25", rec: Record{TeachingTop25: true}, want: 2500},
		{name: "65/25", rec: Record{Teaching6525: true}, want: 1000},
		{name: "teacher of the year", rec: Record{TeacherOfYear: true}, want: 7500},
		{name: "honorable mention", rec: Record{HonorableMention: true}, want: 5000},
		{
			name: "awards stack",
			rec:  Record{TeachingTop25: true, TeacherOfYear: true},
			want: 10000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.TeachingAwardsPoints(); got != tt.want {
				t.Errorf("TeachingAwardsPoints() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTotalPoints(t *testing.T) {
	rec := Record{NewInnovations: true, MyTIPCount: 4, Teaching6525: true}

	if got := rec.TotalPoints(false); got != 2000+100+1000 {
		t.Errorf("TotalPoints(false) = %d, want 3100", got)
	}
	// CCC membership adds its flat award on top
	if got := rec.TotalPoints(true); got != 2000+100+1000+1000 {
		t.Errorf("TotalPoints(true) = %d, want 4100", got)
	}
}

func TestClampMyTIPCount(t *testing.T) {
	rec := Record{MyTIPCount: 27}
	rec.ClampMyTIPCount()
	if rec.MyTIPCount != 20 {
		t.Errorf("MyTIPCount = %d, want 20", rec.MyTIPCount)
	}

	rec.MyTIPCount = -1
	rec.ClampMyTIPCount()
	if rec.MyTIPCount != 0 {
		t.Errorf("MyTIPCount = %d, want 0", rec.MyTIPCount)
	}

	rec.SetMyTIPCount(27)
	if rec.MyTIPCount != 20 {
		t.Errorf("SetMyTIPCount(27) stored %d, want 20", rec.MyTIPCount)
	}
}
