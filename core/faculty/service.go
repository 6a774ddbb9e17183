package faculty

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core"
)

var (
	// errors
	ErrNotFound   = errors.New("faculty member not found")
	ErrEmailTaken = errors.New("a faculty member with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error
		CreateFacultyMember(ctx context.Context, fm FacultyMember, exec ...core.DBExecutor) (FacultyMember, error)
		GetFacultyMemberByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (FacultyMember, error)
		QueryFacultyMembers(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]FacultyMember, error)
		UpdateFacultyMember(ctx context.Context, fm FacultyMember, exec ...core.DBExecutor) (FacultyMember, error)
	}

	Service struct {
		repo     Repository
		logger   core.Logger
		validate *validator.Validate
	}
)

func NewService(repo Repository, logger core.Logger, validate *validator.Validate) *Service {
	return &Service{repo: repo, logger: logger, validate: validate}
}

func (svc *Service) Create(ctx context.Context, nfm NewFacultyMember) (FacultyMember, error) {
	if err := nfm.Validate(svc.validate); err != nil {
		return FacultyMember{}, err
	}
	if err := svc.repo.CheckEmailUniqueness(ctx, nfm.Email); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return FacultyMember{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return FacultyMember{}, err
	}

	now := time.Now().UTC()
	fm := FacultyMember{
		Email:        nfm.Email,
		FirstName:    nfm.FirstName,
		LastName:     nfm.LastName,
		Rank:         nfm.Rank,
		ContractType: nfm.ContractType,
		Division:     nfm.Division,
		IsActive:     true,
		IsCCCMember:  nfm.IsCCCMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateFacultyMember(ctx, fm)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (FacultyMember, error) {
	return svc.repo.GetFacultyMemberByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) All(ctx context.Context) ([]FacultyMember, error) {
	return svc.repo.QueryFacultyMembers(ctx, false)
}

func (svc *Service) AllActive(ctx context.Context) ([]FacultyMember, error) {
	return svc.repo.QueryFacultyMembers(ctx, true)
}

func (svc *Service) Update(ctx context.Context, email string, ufm UpdateFacultyMember) (FacultyMember, error) {
	if err := ufm.Validate(svc.validate); err != nil {
		return FacultyMember{}, err
	}
	fm, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return FacultyMember{}, err
	}
	if ufm.FirstName != nil {
		fm.FirstName = *ufm.FirstName
	}
	if ufm.LastName != nil {
		fm.LastName = *ufm.LastName
	}
	if ufm.Rank != nil {
		fm.Rank = *ufm.Rank
	}
	if ufm.ContractType != nil {
		fm.ContractType = *ufm.ContractType
	}
	if ufm.Division != nil {
		fm.Division = *ufm.Division
	}
	if ufm.IsActive != nil {
		fm.IsActive = *ufm.IsActive
	}
	if ufm.IsCCCMember != nil {
		fm.IsCCCMember = *ufm.IsCCCMember
	}
	fm.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateFacultyMember(ctx, fm)
}

// Deactivate removes a member from the active roster without deleting their
// history.
func (svc *Service) Deactivate(ctx context.Context, email string) (FacultyMember, error) {
	inactive := false
	return svc.Update(ctx, email, UpdateFacultyMember{IsActive: &inactive})
}

// SetCCCMembership toggles Clinical Competency Committee membership; it
// persists across academic years until changed again.
func (svc *Service) SetCCCMembership(ctx context.Context, email string, member bool) (FacultyMember, error) {
	return svc.Update(ctx, email, UpdateFacultyMember{IsCCCMember: &member})
}

// ActiveEmailSet returns {lowercased email: "Last, First"} for the active
// roster, the matching set for survey imports and invitation fan-out.
func (svc *Service) ActiveEmailSet(ctx context.Context) (map[string]string, error) {
	members, err := svc.AllActive(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]string, len(members))
	for _, fm := range members {
		set[core.CleanString(fm.Email, true /* lower */)] = fm.DisplayName()
	}
	return set, nil
}

// RosterImportStats summarizes one roster import.
type RosterImportStats struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportRoster parses a roster CSV and upserts its rows. Existing members are
// updated in place when updateExisting is set (blank CSV fields leave stored
// values alone), otherwise skipped. Row-level failures are collected, never
// fatal; a malformed file is rejected before any write.
func (svc *Service) ImportRoster(ctx context.Context, r io.Reader, updateExisting bool) (RosterImportStats, error) {
	rows, err := ParseRosterCSV(r)
	if err != nil {
		return RosterImportStats{}, err
	}

	var stats RosterImportStats
	now := time.Now().UTC()
	for _, row := range rows {
		existing, err := svc.repo.GetFacultyMemberByEmail(ctx, row.Email)
		switch {
		case err == nil:
			if !updateExisting {
				stats.Skipped++
				continue
			}
			existing.FirstName = row.FirstName
			existing.LastName = row.LastName
			if row.Rank != "" {
				existing.Rank = row.Rank
			}
			if row.ContractType != "" {
				existing.ContractType = row.ContractType
			}
			if row.Division != "" {
				existing.Division = row.Division
			}
			if row.IsActive != nil {
				existing.IsActive = *row.IsActive
			}
			if row.IsCCCMember != nil {
				existing.IsCCCMember = *row.IsCCCMember
			}
			existing.UpdatedAt = now
			if _, err := svc.repo.UpdateFacultyMember(ctx, existing); err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", row.Email, err))
				continue
			}
			stats.Updated++

		case errors.Is(err, ErrNotFound):
			fm := FacultyMember{
				Email:        row.Email,
				FirstName:    row.FirstName,
				LastName:     row.LastName,
				Rank:         row.Rank,
				ContractType: row.ContractType,
				Division:     row.Division,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if row.IsActive != nil {
				fm.IsActive = *row.IsActive
			}
			if row.IsCCCMember != nil {
				fm.IsCCCMember = *row.IsCCCMember
			}
			if _, err := svc.repo.CreateFacultyMember(ctx, fm); err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", row.Email, err))
				continue
			}
			stats.Created++

		default:
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", row.Email, err))
		}
	}

	svc.logger.Info(fmt.Sprintf(
		"roster import: %d created, %d updated, %d skipped, %d errors",
		stats.Created, stats.Updated, stats.Skipped, len(stats.Errors),
	))
	return stats, nil
}
