package faculty

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nickmarkin/AAA-Summarizer/core"
)

// Academic ranks.
const (
	RankInstructor = "instructor"
	RankAssistant  = "assistant"
	RankAssociate  = "associate"
	RankProfessor  = "professor"
)

// Contract types.
const (
	ContractAcademic    = "academic"
	ContractClinical    = "clinical"
	ContractEarlyCareer = "early_career"
)

// FacultyMember is one member of the department roster, keyed by email.
// IsCCCMember lives here rather than on a yearly record: membership persists
// across academic years until explicitly changed.
type FacultyMember struct {
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Rank         string    `json:"rank,omitempty"`
	ContractType string    `json:"contract_type,omitempty"`
	Division     string    `json:"division,omitempty"`
	IsActive     bool      `json:"is_active"`
	IsCCCMember  bool      `json:"is_ccc_member"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// DisplayName renders "Last, First".
func (fm FacultyMember) DisplayName() string {
	if fm.LastName == "" {
		return fm.FirstName
	}
	return fm.LastName + ", " + fm.FirstName
}

// NewFacultyMember contains information needed to add a roster member.
type NewFacultyMember struct {
	Email        string `json:"email" validate:"required,email"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	Rank         string `json:"rank" validate:"omitempty,oneof=instructor assistant associate professor"`
	ContractType string `json:"contract_type" validate:"omitempty,oneof=academic clinical early_career"`
	Division     string `json:"division"`
	IsCCCMember  bool   `json:"is_ccc_member"`
}

func (nfm *NewFacultyMember) Validate(validate *validator.Validate) error {
	nfm.Email = core.CleanString(nfm.Email, true /* lower */)
	nfm.FirstName = core.CleanString(nfm.FirstName)
	nfm.LastName = core.CleanString(nfm.LastName)
	nfm.Division = core.CleanString(nfm.Division)
	return validate.Struct(nfm)
}

// UpdateFacultyMember contains partial updates to a roster member. Nil fields
// are left unchanged.
type UpdateFacultyMember struct {
	FirstName    *string `json:"first_name" validate:"omitempty,gt=0"`
	LastName     *string `json:"last_name" validate:"omitempty,gt=0"`
	Rank         *string `json:"rank" validate:"omitempty,oneof=instructor assistant associate professor"`
	ContractType *string `json:"contract_type" validate:"omitempty,oneof=academic clinical early_career"`
	Division     *string `json:"division"`
	IsActive     *bool   `json:"is_active"`
	IsCCCMember  *bool   `json:"is_ccc_member"`
}

func (ufm *UpdateFacultyMember) Validate(validate *validator.Validate) error {
	if ufm.FirstName != nil {
		*ufm.FirstName = core.CleanString(*ufm.FirstName)
	}
	if ufm.LastName != nil {
		*ufm.LastName = core.CleanString(*ufm.LastName)
	}
	if ufm.Division != nil {
		*ufm.Division = core.CleanString(*ufm.Division)
	}
	return validate.Struct(ufm)
}
