package review

import (
	"time"
)

// Per-entry review statuses. The overlay is informational only; no status
// ever changes a point total.
const (
	EntryUnreviewed = "unreviewed"
	EntryVerified   = "verified"
	EntryFlagged    = "flagged"
	EntryStricken   = "stricken"
)

// Faculty-year aggregate statuses.
const (
	AnnualNone      = "none"
	AnnualVerified  = "verified"
	AnnualHasIssues = "has_issues"
)

// EntryReview is one reviewer's verdict on one activity entry, keyed by the
// entry's stable ID.
type EntryReview struct {
	ID           string    `json:"id"`
	FacultyEmail string    `json:"faculty_email"`
	YearCode     string    `json:"year_code"`
	EntryID      string    `json:"entry_id"`
	Status       string    `json:"status"`
	Note         string    `json:"note,omitempty"`
	ReviewedBy   string    `json:"reviewed_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// FacultyAnnualReview is the aggregate audit state for one faculty year.
// has_issues is derived whenever any entry is flagged or stricken; verified
// is only ever set by an explicit verify-all action and only cleared by an
// explicit unverify.
type FacultyAnnualReview struct {
	ID           string    `json:"id"`
	FacultyEmail string    `json:"faculty_email"`
	YearCode     string    `json:"year_code"`
	Status       string    `json:"status"`
	VerifiedBy   string    `json:"verified_by,omitempty"`
	VerifiedAt   time.Time `json:"verified_at,omitempty"` // UTC
	CreatedAt    time.Time `json:"created_at"`            // UTC
	UpdatedAt    time.Time `json:"updated_at"`            // UTC
}

// validTransitions encodes the entry state machine: unreviewed fans out to a
// verdict, any verdict clears back to unreviewed or moves to another verdict.
var validTransitions = map[string][]string{
	EntryUnreviewed: {EntryVerified, EntryFlagged, EntryStricken},
	EntryVerified:   {EntryUnreviewed, EntryFlagged, EntryStricken},
	EntryFlagged:    {EntryUnreviewed, EntryVerified, EntryStricken},
	EntryStricken:   {EntryUnreviewed, EntryVerified, EntryFlagged},
}

// CanTransition reports whether moving from one entry status to another is
// allowed.
func CanTransition(from, to string) bool {
	if from == "" {
		from = EntryUnreviewed
	}
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// HasIssue reports whether the status marks the entry as problematic.
func HasIssue(status string) bool {
	return status == EntryFlagged || status == EntryStricken
}
