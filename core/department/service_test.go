package department_test

import (
	"context"
	"testing"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/department"
	inmemdb "github.com/nickmarkin/AAA-Summarizer/storage/database/inmem"
)

func newService() *department.Service {
	validate, _ := core.NewValidator()
	return department.NewService(inmemdb.NewDepartmentRepository(inmemdb.NewDB()), validate)
}

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func TestEnsureRecord(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if err := svc.EnsureRecord(ctx, "JDOE@test.edu", "24-25"); err != nil {
		t.Fatalf("EnsureRecord() failed: %v", err)
	}
	rec, err := svc.Get(ctx, "jdoe@test.edu", "24-25")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if rec.FacultyEmail != "jdoe@test.edu" || rec.TotalPoints(false) != 0 {
		t.Errorf("fresh record = %+v, want empty lowercased row", rec)
	}

	// idempotent
	if err := svc.EnsureRecord(ctx, "jdoe@test.edu", "24-25"); err != nil {
		t.Fatalf("second EnsureRecord() failed: %v", err)
	}
	records, err := svc.QueryByYear(ctx, "24-25")
	if err != nil {
		t.Fatalf("QueryByYear() failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want 1", len(records))
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	rec, err := svc.Update(ctx, "jdoe@test.edu", "24-25", department.UpdateRecord{
		NewInnovations: boolPtr(true),
		MyTIPCount:     intPtr(8),
		TeacherOfYear:  boolPtr(true),
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if rec.EvaluationsPoints() != 2000+8*25 {
		t.Errorf("EvaluationsPoints() = %d, want 2200", rec.EvaluationsPoints())
	}
	if rec.TeachingAwardsPoints() != 7500 {
		t.Errorf("TeachingAwardsPoints() = %d, want 7500", rec.TeachingAwardsPoints())
	}

	// partial update leaves other fields alone
	rec, err = svc.Update(ctx, "jdoe@test.edu", "24-25", department.UpdateRecord{
		MyTIPWinner: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if !rec.NewInnovations || rec.MyTIPCount != 8 {
		t.Errorf("record = %+v, want earlier edits preserved", rec)
	}

	// count above the cap is clamped, never rejected
	rec, err = svc.Update(ctx, "jdoe@test.edu", "24-25", department.UpdateRecord{
		MyTIPCount: intPtr(27),
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if rec.MyTIPCount != department.MyTIPCountMax {
		t.Errorf("MyTIPCount = %d, want clamped to %d", rec.MyTIPCount, department.MyTIPCountMax)
	}
	if rec.EvaluationsPoints() != 2000+20*25 {
		t.Errorf("EvaluationsPoints() = %d, want 2500", rec.EvaluationsPoints())
	}

	// negative input clamps to zero
	rec, err = svc.Update(ctx, "jdoe@test.edu", "24-25", department.UpdateRecord{
		MyTIPCount: intPtr(-3),
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if rec.MyTIPCount != 0 {
		t.Errorf("MyTIPCount = %d, want 0", rec.MyTIPCount)
	}
}
