package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core"
)

var (
	// errors
	ErrNotFound          = errors.New("review not found")
	ErrInvalidStatus     = errors.New("invalid review status")
	ErrInvalidTransition = errors.New("invalid review status transition")
)

type (
	Repository interface {
		GetEntryReview(ctx context.Context, email, yearCode, entryID string, exec ...core.DBExecutor) (EntryReview, error)
		QueryEntryReviews(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) ([]EntryReview, error)
		CreateEntryReview(ctx context.Context, er EntryReview, exec ...core.DBExecutor) (EntryReview, error)
		UpdateEntryReview(ctx context.Context, er EntryReview, exec ...core.DBExecutor) (EntryReview, error)

		GetAnnualReview(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) (FacultyAnnualReview, error)
		CreateAnnualReview(ctx context.Context, ar FacultyAnnualReview, exec ...core.DBExecutor) (FacultyAnnualReview, error)
		UpdateAnnualReview(ctx context.Context, ar FacultyAnnualReview, exec ...core.DBExecutor) (FacultyAnnualReview, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ReviewEntry records a verdict on one entry and re-derives the faculty-year
// aggregate. The aggregate flips to has_issues whenever any entry is flagged
// or stricken; it never flips to verified here.
func (svc *Service) ReviewEntry(ctx context.Context, email, yearCode, entryID, status, note, reviewedBy string) (EntryReview, error) {
	switch status {
	case EntryUnreviewed, EntryVerified, EntryFlagged, EntryStricken:
	default:
		return EntryReview{}, core.NewValidationError(ErrInvalidStatus,
			core.FieldError{Field: "status", Error: ErrInvalidStatus.Error()})
	}
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	er, err := svc.repo.GetEntryReview(ctx, email, yearCode, entryID)
	switch {
	case err == nil:
		if !CanTransition(er.Status, status) {
			return EntryReview{}, ErrInvalidTransition
		}
		er.Status = status
		er.Note = note
		er.ReviewedBy = reviewedBy
		er.UpdatedAt = now
		if er, err = svc.repo.UpdateEntryReview(ctx, er); err != nil {
			return EntryReview{}, err
		}
	case errors.Is(err, ErrNotFound):
		if !CanTransition(EntryUnreviewed, status) && status != EntryUnreviewed {
			return EntryReview{}, ErrInvalidTransition
		}
		er = EntryReview{
			ID:           uuid.New().String(),
			FacultyEmail: email,
			YearCode:     yearCode,
			EntryID:      entryID,
			Status:       status,
			Note:         note,
			ReviewedBy:   reviewedBy,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if er, err = svc.repo.CreateEntryReview(ctx, er); err != nil {
			return EntryReview{}, err
		}
	default:
		return EntryReview{}, err
	}

	if err := svc.rederiveAnnual(ctx, email, yearCode); err != nil {
		return EntryReview{}, err
	}
	return er, nil
}

// ClearEntry resets an entry to unreviewed.
func (svc *Service) ClearEntry(ctx context.Context, email, yearCode, entryID, reviewedBy string) (EntryReview, error) {
	return svc.ReviewEntry(ctx, email, yearCode, entryID, EntryUnreviewed, "", reviewedBy)
}

func (svc *Service) EntryReviews(ctx context.Context, email, yearCode string) ([]EntryReview, error) {
	return svc.repo.QueryEntryReviews(ctx, core.CleanString(email, true /* lower */), yearCode)
}

// rederiveAnnual sets the aggregate to has_issues when any entry review is
// flagged or stricken. An explicitly verified year is left alone otherwise;
// only Unverify clears it.
func (svc *Service) rederiveAnnual(ctx context.Context, email, yearCode string) error {
	reviews, err := svc.repo.QueryEntryReviews(ctx, email, yearCode)
	if err != nil {
		return err
	}
	issues := false
	for _, er := range reviews {
		if HasIssue(er.Status) {
			issues = true
			break
		}
	}

	ar, err := svc.getOrCreateAnnual(ctx, email, yearCode)
	if err != nil {
		return err
	}
	switch {
	case issues && ar.Status != AnnualHasIssues:
		ar.Status = AnnualHasIssues
	case !issues && ar.Status == AnnualHasIssues:
		ar.Status = AnnualNone
	default:
		return nil
	}
	ar.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateAnnualReview(ctx, ar)
	return err
}

func (svc *Service) getOrCreateAnnual(ctx context.Context, email, yearCode string) (FacultyAnnualReview, error) {
	ar, err := svc.repo.GetAnnualReview(ctx, email, yearCode)
	if err == nil {
		return ar, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return FacultyAnnualReview{}, err
	}
	now := time.Now().UTC()
	ar = FacultyAnnualReview{
		ID:           uuid.New().String(),
		FacultyEmail: email,
		YearCode:     yearCode,
		Status:       AnnualNone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateAnnualReview(ctx, ar)
}

// AnnualReview returns the aggregate status, AnnualNone when never touched.
func (svc *Service) AnnualReview(ctx context.Context, email, yearCode string) (FacultyAnnualReview, error) {
	ar, err := svc.repo.GetAnnualReview(ctx, core.CleanString(email, true /* lower */), yearCode)
	if errors.Is(err, ErrNotFound) {
		return FacultyAnnualReview{FacultyEmail: email, YearCode: yearCode, Status: AnnualNone}, nil
	}
	return ar, err
}

// VerifyYear marks the whole faculty year verified. Explicit action only:
// flagged or stricken entries block it.
func (svc *Service) VerifyYear(ctx context.Context, email, yearCode, verifiedBy string) (FacultyAnnualReview, error) {
	email = core.CleanString(email, true /* lower */)
	reviews, err := svc.repo.QueryEntryReviews(ctx, email, yearCode)
	if err != nil {
		return FacultyAnnualReview{}, err
	}
	for _, er := range reviews {
		if HasIssue(er.Status) {
			return FacultyAnnualReview{}, errors.Wrap(ErrInvalidTransition, "flagged or stricken entries remain")
		}
	}

	ar, err := svc.getOrCreateAnnual(ctx, email, yearCode)
	if err != nil {
		return FacultyAnnualReview{}, err
	}
	now := time.Now().UTC()
	ar.Status = AnnualVerified
	ar.VerifiedBy = verifiedBy
	ar.VerifiedAt = now
	ar.UpdatedAt = now
	return svc.repo.UpdateAnnualReview(ctx, ar)
}

// UnverifyYear explicitly revokes a verified status.
func (svc *Service) UnverifyYear(ctx context.Context, email, yearCode string) (FacultyAnnualReview, error) {
	email = core.CleanString(email, true /* lower */)
	ar, err := svc.getOrCreateAnnual(ctx, email, yearCode)
	if err != nil {
		return FacultyAnnualReview{}, err
	}
	ar.Status = AnnualNone
	ar.VerifiedBy = ""
	ar.VerifiedAt = time.Time{}
	ar.UpdatedAt = time.Now().UTC()
	ar, err = svc.repo.UpdateAnnualReview(ctx, ar)
	if err != nil {
		return FacultyAnnualReview{}, err
	}
	if err := svc.rederiveAnnual(ctx, email, yearCode); err != nil {
		return FacultyAnnualReview{}, err
	}
	return svc.AnnualReview(ctx, email, yearCode)
}
