package survey

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nickmarkin/AAA-Summarizer/core"
)

// Provenance tags an entry's origin, used to enforce overwrite/preservation
// rules between data sources.
type Provenance string

const (
	SourceImported Provenance = "imported"
	SourceManual   Provenance = "manual"
	SourceCarried  Provenance = "carried_forward"
)

// Quarters (survey collection periods within an academic year).
const (
	QuarterQ1   = "Q1"
	QuarterQ2   = "Q2"
	QuarterQ3   = "Q3"
	QuarterQ4   = "Q4"
	QuarterQ1Q2 = "Q1-Q2" // kept for existing campaigns
)

// quarterRank orders quarters within an academic year (July-June).
var quarterRank = map[string]int{
	QuarterQ1:   1,
	QuarterQ1Q2: 2,
	QuarterQ2:   2,
	QuarterQ3:   3,
	QuarterQ4:   4,
}

// QuarterBefore reports whether quarter a closes before quarter b.
func QuarterBefore(a, b string) bool {
	return quarterRank[a] < quarterRank[b]
}

// Entry is one occurrence of an activity by one faculty member in one
// submission period. Descriptive fields are opaque to the scoring engine.
type Entry struct {
	// ID is a stable generated identifier, assigned at creation for manual
	// entries and preserved across merges. Edits and deletes address it, never
	// an array position.
	ID string `json:"id,omitempty"`

	// Type is the selected choice value (or activity key, or legacy free text
	// for imported data) that resolves to a point rule.
	Type string `json:"type,omitempty"`

	Count        int     `json:"count,omitempty"`
	ImpactFactor float64 `json:"impact_factor,omitempty"`
	DOI          string  `json:"doi,omitempty"`

	// IFUnconfirmed is a display-time flag set when a best-effort bibliographic
	// lookup could not confirm the reported impact factor. Never affects points.
	IFUnconfirmed bool `json:"if_unconfirmed,omitempty"`

	Source Provenance `json:"source,omitempty"`

	// ManualIndex is the zero-based position within the manual list, re-derived
	// on every merge and never persisted as identity.
	ManualIndex int `json:"manual_index,omitempty"`

	// CarriedFrom names the source quarter for carry-forward copies.
	CarriedFrom string `json:"carried_from,omitempty"`

	// Fields holds free-form display-only metadata (title, date, collaborator
	// names) keyed by survey question name. Unknown fields pass through opaquely.
	Fields map[string]string `json:"fields,omitempty"`
}

// IsZero reports whether the entry carries no usable data. Such entries are
// treated as malformed: skipped (but logged) during merges, never aborting them.
func (e Entry) IsZero() bool {
	return e.Type == "" && e.Count == 0 && e.ImpactFactor == 0 && len(e.Fields) == 0
}

// Subsection holds one subsection's submitted data: the yes/no trigger answer
// and its repeating entries.
type Subsection struct {
	Trigger string  `json:"trigger,omitempty"` // "yes" | "no" | ""
	Entries []Entry `json:"entries,omitempty"`
}

// CategoryData maps subsection key to its data.
type CategoryData map[string]Subsection

// Tree is the per-faculty activity document: category -> subsection -> data.
type Tree map[string]CategoryData

// Clone returns a deep copy.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for cat, subs := range t {
		cd := make(CategoryData, len(subs))
		for key, sub := range subs {
			entries := make([]Entry, len(sub.Entries))
			for i, e := range sub.Entries {
				if e.Fields != nil {
					flds := make(map[string]string, len(e.Fields))
					for k, v := range e.Fields {
						flds[k] = v
					}
					e.Fields = flds
				}
				entries[i] = e
			}
			cd[key] = Subsection{Trigger: sub.Trigger, Entries: entries}
		}
		out[cat] = cd
	}
	return out
}

// Record is the per (faculty, academic year) aggregate: the imported and
// manual activity trees plus stored per-category point totals.
// Invariants: imports replace the whole Imported tree and never touch Manual;
// SurveyTotal is the sum of the five category totals.
type Record struct {
	ID            string         `json:"id"`
	FacultyEmail  string         `json:"faculty_email"`
	YearCode      string         `json:"year_code"`
	ImportID      string         `json:"import_id,omitempty"`
	Quarters      []string       `json:"quarters_reported"`
	HasIncomplete bool           `json:"has_incomplete"`
	Imported      Tree           `json:"imported"`
	Manual        Tree           `json:"manual"`
	Points        map[string]int `json:"points"` // by category
	SurveyTotal   int            `json:"survey_total"`
	CreatedAt     time.Time      `json:"created_at"` // UTC
	UpdatedAt     time.Time      `json:"updated_at"` // UTC
}

// Import records one REDCap CSV import for the audit trail. Unmatched emails
// are kept for manual review, never discarded silently.
type Import struct {
	ID              string    `json:"id"`
	YearCode        string    `json:"year_code"`
	Filename        string    `json:"filename"`
	FacultyCount    int       `json:"faculty_count"`
	ActivityCount   int       `json:"activity_count"`
	UnmatchedEmails []string  `json:"unmatched_emails"`
	ImportedAt      time.Time `json:"imported_at"` // UTC
	ImportedBy      string    `json:"imported_by,omitempty"`
}

// Campaign groups survey invitations for one quarter of an academic year.
type Campaign struct {
	ID       string    `json:"id"`
	YearCode string    `json:"year_code"`
	Quarter  string    `json:"quarter"`
	Name     string    `json:"name"`
	OpensAt  time.Time `json:"opens_at"`
	ClosesAt time.Time `json:"closes_at"`
	IsActive bool      `json:"is_active"`

	// email customization; blank falls back to defaults.
	EmailFromName    string `json:"email_from_name,omitempty"`
	EmailFromAddress string `json:"email_from_address,omitempty"`
	EmailSubject     string `json:"email_subject,omitempty"`
	EmailBody        string `json:"email_body,omitempty"`
	ReminderSubject  string `json:"reminder_subject,omitempty"`
	ReminderBody     string `json:"reminder_body,omitempty"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Campaign statuses.
const (
	CampaignInactive  = "Inactive"
	CampaignScheduled = "Scheduled"
	CampaignOpen      = "Open"
	CampaignClosed    = "Closed"
)

// IsOpen reports whether the campaign accepts submissions at `now`.
func (c Campaign) IsOpen(now time.Time) bool {
	return c.IsActive && !now.Before(c.OpensAt) && !now.After(c.ClosesAt)
}

func (c Campaign) Status(now time.Time) string {
	if !c.IsActive {
		return CampaignInactive
	}
	if now.Before(c.OpensAt) {
		return CampaignScheduled
	}
	if now.After(c.ClosesAt) {
		return CampaignClosed
	}
	return CampaignOpen
}

// Invitation statuses.
const (
	InvitationPending    = "pending"
	InvitationInProgress = "in_progress"
	InvitationSubmitted  = "submitted"
)

// Invitation is one faculty member's access to one campaign's survey,
// via an opaque URL token.
type Invitation struct {
	ID           string `json:"id"`
	CampaignID   string `json:"campaign_id"`
	FacultyEmail string `json:"faculty_email"`
	Token        string `json:"token"`
	Status       string `json:"status"`

	EmailSentAt     time.Time `json:"email_sent_at,omitempty"`     // UTC
	FirstAccessedAt time.Time `json:"first_accessed_at,omitempty"` // UTC
	SubmittedAt     time.Time `json:"submitted_at,omitempty"`      // UTC

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Response is the draft/submitted survey data for one invitation, with
// per-category completion flags and stored per-category points (recomputed on
// every save, so totals survive later point-value edits unchanged).
type Response struct {
	ID           string          `json:"id"`
	InvitationID string          `json:"invitation_id"`
	Data         Tree            `json:"data"`
	Complete     map[string]bool `json:"complete"`   // by category
	Points       map[string]int  `json:"points"`     // by category
	CreatedAt    time.Time       `json:"created_at"` // UTC
	UpdatedAt    time.Time       `json:"updated_at"` // UTC
}

func (r Response) TotalPoints() int {
	var total int
	for _, pts := range r.Points {
		total += pts
	}
	return total
}

// History actions.
const (
	HistoryCreate = "create"
	HistoryUpdate = "update"
	HistorySubmit = "submit"
	HistoryUnlock = "unlock"
)

// ResponseHistory snapshots a response whenever it changes.
type ResponseHistory struct {
	ID         string         `json:"id"`
	ResponseID string         `json:"response_id"`
	Action     string         `json:"action"`
	Category   string         `json:"category,omitempty"`
	Data       Tree           `json:"data_snapshot"`
	Points     map[string]int `json:"points_snapshot"`
	CreatedAt  time.Time      `json:"created_at"` // UTC
}

// Email log types/statuses.
const (
	EmailInvitation   = "invitation"
	EmailReminder     = "reminder"
	EmailConfirmation = "confirmation"

	EmailSent   = "sent"
	EmailFailed = "failed"
)

// EmailLog is the audit trail for campaign emails.
type EmailLog struct {
	ID           string    `json:"id"`
	InvitationID string    `json:"invitation_id"`
	EmailType    string    `json:"email_type"`
	Recipient    string    `json:"recipient"`
	Subject      string    `json:"subject"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	SentAt       time.Time `json:"sent_at"` // UTC
}

// GenerateToken returns a URL-safe random invitation token.
func GenerateToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// NewCampaign contains information needed to create a new Campaign.
type NewCampaign struct {
	YearCode string    `json:"year_code" validate:"required,yearcode"`
	Quarter  string    `json:"quarter" validate:"required,quarter"`
	Name     string    `json:"name" validate:"required"`
	OpensAt  time.Time `json:"opens_at" validate:"required"`
	ClosesAt time.Time `json:"closes_at" validate:"required,gtfield=OpensAt"`

	EmailFromName    string `json:"email_from_name"`
	EmailFromAddress string `json:"email_from_address" validate:"omitempty,email"`
	EmailSubject     string `json:"email_subject"`
	EmailBody        string `json:"email_body"`
	ReminderSubject  string `json:"reminder_subject"`
	ReminderBody     string `json:"reminder_body"`
}

func (nc *NewCampaign) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.EmailFromAddress = core.CleanString(nc.EmailFromAddress, true /* lower */)
	return validate.Struct(nc)
}

// NewManualEntry contains information needed to add a manual entry to a
// faculty member's record.
type NewManualEntry struct {
	Category     string            `json:"category" validate:"required"`
	Subsection   string            `json:"subsection" validate:"required"`
	Type         string            `json:"type"`
	Count        int               `json:"count" validate:"min=0"`
	ImpactFactor float64           `json:"impact_factor" validate:"min=0"`
	DOI          string            `json:"doi"`
	Fields       map[string]string `json:"fields"`
}

func (ne *NewManualEntry) Validate(validate *validator.Validate, cfg *Config) error {
	ne.Category = core.CleanString(ne.Category, true /* lower */)
	ne.Subsection = core.CleanString(ne.Subsection, true /* lower */)
	if err := validate.Struct(ne); err != nil {
		return err
	}
	if _, ok := cfg.Subsection(ne.Category, ne.Subsection); !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "subsection", Error: "unknown category or subsection"})
	}
	return nil
}
