package department

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core"
)

var ErrNotFound = errors.New("departmental record not found")

type (
	Repository interface {
		GetRecord(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) (Record, error)
		QueryRecordsByYear(ctx context.Context, yearCode string, exec ...core.DBExecutor) ([]Record, error)
		CreateRecord(ctx context.Context, rec Record, exec ...core.DBExecutor) (Record, error)
		UpdateRecord(ctx context.Context, rec Record, exec ...core.DBExecutor) (Record, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Get(ctx context.Context, email, yearCode string) (Record, error) {
	return svc.repo.GetRecord(ctx, core.CleanString(email, true /* lower */), yearCode)
}

func (svc *Service) QueryByYear(ctx context.Context, yearCode string) ([]Record, error) {
	return svc.repo.QueryRecordsByYear(ctx, yearCode)
}

// EnsureRecord creates an empty departmental record on first touch so every
// faculty with survey data has a row for administrators to fill in.
func (svc *Service) EnsureRecord(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) error {
	_, err := svc.getOrCreate(ctx, email, yearCode, exec...)
	return err
}

func (svc *Service) getOrCreate(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) (Record, error) {
	email = core.CleanString(email, true /* lower */)
	rec, err := svc.repo.GetRecord(ctx, email, yearCode, exec...)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}
	now := time.Now().UTC()
	rec = Record{
		ID:           uuid.New().String(),
		FacultyEmail: email,
		YearCode:     yearCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateRecord(ctx, rec, exec...)
}

// Update applies administrator edits, creating the record if needed. An
// out-of-range MyTIP count is clamped to the cap, not rejected, so the
// stored record is always valid.
func (svc *Service) Update(ctx context.Context, email, yearCode string, ur UpdateRecord) (Record, error) {
	if err := ur.Validate(svc.validate); err != nil {
		return Record{}, err
	}
	rec, err := svc.getOrCreate(ctx, email, yearCode)
	if err != nil {
		return Record{}, err
	}
	ur.apply(&rec)
	rec.ClampMyTIPCount()
	rec.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRecord(ctx, rec)
}
