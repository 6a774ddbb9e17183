package review_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/review"
	inmemdb "github.com/nickmarkin/AAA-Summarizer/storage/database/inmem"
)

func newService() *review.Service {
	return review.NewService(inmemdb.NewReviewRepository(inmemdb.NewDB()))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{review.EntryUnreviewed, review.EntryVerified, true},
		{review.EntryUnreviewed, review.EntryFlagged, true},
		{review.EntryUnreviewed, review.EntryStricken, true},
		{review.EntryVerified, review.EntryUnreviewed, true},
		{review.EntryVerified, review.EntryFlagged, true},
		{review.EntryFlagged, review.EntryVerified, true},
		{review.EntryStricken, review.EntryUnreviewed, true},
		{review.EntryVerified, review.EntryVerified, false},
		{review.EntryUnreviewed, review.EntryUnreviewed, false},
		{"", review.EntryFlagged, true}, // empty treated as unreviewed
		{review.EntryVerified, "bogus", false},
	}
	for _, tt := range tests {
		if got := review.CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestReviewEntry(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	er, err := svc.ReviewEntry(ctx, "JDOE@test.edu", "24-25", "e1", review.EntryVerified, "looks right", "admin")
	if err != nil {
		t.Fatalf("ReviewEntry() failed: %v", err)
	}
	if er.FacultyEmail != "jdoe@test.edu" {
		t.Errorf("email = %q, want lowercased", er.FacultyEmail)
	}
	if er.Status != review.EntryVerified || er.Note != "looks right" || er.ReviewedBy != "admin" {
		t.Errorf("entry review = %+v", er)
	}

	// same verdict again is a no-op transition
	if _, err := svc.ReviewEntry(ctx, "jdoe@test.edu", "24-25", "e1", review.EntryVerified, "", "admin"); !errors.Is(err, review.ErrInvalidTransition) {
		t.Errorf("repeat verdict err = %v, want ErrInvalidTransition", err)
	}

	if _, err := svc.ReviewEntry(ctx, "jdoe@test.edu", "24-25", "e1", "bogus", "", "admin"); err != nil {
		if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
			t.Errorf("bogus status err = %T, want *core.ValidationError", errors.Cause(err))
		}
	} else {
		t.Error("bogus status must be rejected")
	}
}

func TestReviewEntry_DerivesAnnualStatus(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	// untouched year reads as none
	ar, err := svc.AnnualReview(ctx, "jdoe@test.edu", "24-25")
	if err != nil {
		t.Fatalf("AnnualReview() failed: %v", err)
	}
	if ar.Status != review.AnnualNone {
		t.Fatalf("fresh annual status = %q, want none", ar.Status)
	}

	// flagging an entry flips the year to has_issues
	if _, err := svc.ReviewEntry(ctx, "jdoe@test.edu", "24-25", "e1", review.EntryFlagged, "double counted", "admin"); err != nil {
		t.Fatalf("ReviewEntry() failed: %v", err)
	}
	ar, _ = svc.AnnualReview(ctx, "jdoe@test.edu", "24-25")
	if ar.Status != review.AnnualHasIssues {
		t.Errorf("annual status = %q, want has_issues", ar.Status)
	}

	// clearing the flag drops it back to none
	if _, err := svc.ClearEntry(ctx, "jdoe@test.edu", "24-25", "e1", "admin"); err != nil {
		t.Fatalf("ClearEntry() failed: %v", err)
	}
	ar, _ = svc.AnnualReview(ctx, "jdoe@test.edu", "24-25")
	if ar.Status != review.AnnualNone {
		t.Errorf("annual status after clear = %q, want none", ar.Status)
	}
}

func TestVerifyYear(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, err := svc.ReviewEntry(ctx, "jdoe@test.edu", "24-25", "e1", review.EntryFlagged, "", "admin"); err != nil {
		t.Fatalf("ReviewEntry() failed: %v", err)
	}

	// a flagged entry blocks verification
	if _, err := svc.VerifyYear(ctx, "jdoe@test.edu", "24-25", "chair"); !errors.Is(err, review.ErrInvalidTransition) {
		t.Fatalf("VerifyYear() with flags err = %v, want ErrInvalidTransition", err)
	}

	if _, err := svc.ReviewEntry(ctx, "jdoe@test.edu", "24-25", "e1", review.EntryVerified, "", "admin"); err != nil {
		t.Fatalf("ReviewEntry() failed: %v", err)
	}
	ar, err := svc.VerifyYear(ctx, "jdoe@test.edu", "24-25", "chair")
	if err != nil {
		t.Fatalf("VerifyYear() failed: %v", err)
	}
	if ar.Status != review.AnnualVerified || ar.VerifiedBy != "chair" || ar.VerifiedAt.IsZero() {
		t.Errorf("annual = %+v, want verified by chair", ar)
	}

	// verified survives further non-issue entry reviews
	if _, err := svc.ReviewEntry(ctx, "jdoe@test.edu", "24-25", "e2", review.EntryVerified, "", "admin"); err != nil {
		t.Fatalf("ReviewEntry() failed: %v", err)
	}
	ar, _ = svc.AnnualReview(ctx, "jdoe@test.edu", "24-25")
	if ar.Status != review.AnnualVerified {
		t.Errorf("annual status = %q, want verified preserved", ar.Status)
	}

	// but a new flag overrides it
	if _, err := svc.ReviewEntry(ctx, "jdoe@test.edu", "24-25", "e3", review.EntryStricken, "dup", "admin"); err != nil {
		t.Fatalf("ReviewEntry() failed: %v", err)
	}
	ar, _ = svc.AnnualReview(ctx, "jdoe@test.edu", "24-25")
	if ar.Status != review.AnnualHasIssues {
		t.Errorf("annual status = %q, want has_issues after strike", ar.Status)
	}
}

func TestUnverifyYear(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, err := svc.VerifyYear(ctx, "jdoe@test.edu", "24-25", "chair"); err != nil {
		t.Fatalf("VerifyYear() failed: %v", err)
	}
	ar, err := svc.UnverifyYear(ctx, "jdoe@test.edu", "24-25")
	if err != nil {
		t.Fatalf("UnverifyYear() failed: %v", err)
	}
	if ar.Status != review.AnnualNone || ar.VerifiedBy != "" || !ar.VerifiedAt.IsZero() {
		t.Errorf("annual after unverify = %+v, want cleared", ar)
	}
}

func TestEntryReviews(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	for _, id := range []string{"e1", "e2"} {
		if _, err := svc.ReviewEntry(ctx, "jdoe@test.edu", "24-25", id, review.EntryVerified, "", "admin"); err != nil {
			t.Fatalf("ReviewEntry(%s) failed: %v", id, err)
		}
	}
	if _, err := svc.ReviewEntry(ctx, "jdoe@test.edu", "25-26", "e1", review.EntryVerified, "", "admin"); err != nil {
		t.Fatalf("ReviewEntry() failed: %v", err)
	}

	reviews, err := svc.EntryReviews(ctx, "JDOE@test.edu", "24-25")
	if err != nil {
		t.Fatalf("EntryReviews() failed: %v", err)
	}
	if len(reviews) != 2 {
		t.Errorf("reviews = %d, want 2 scoped to the year", len(reviews))
	}
}
