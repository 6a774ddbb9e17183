package department

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Departmental point values. These are administrative awards entered by
// department staff, priced separately from the survey activity registry.
const (
	PointsNewInnovations   = 2000
	PointsMyTIPWinner      = 250
	PointsMyTIPPer         = 25
	MyTIPCountMax          = 20
	PointsTeachingTop25    = 2500
	PointsTeaching6525     = 1000
	PointsTeacherOfYear    = 7500
	PointsHonorableMention = 5000
	PointsCCCMember        = 1000
)

// Record holds the department-tracked items for one (faculty, academic year)
// that are not part of the survey: evaluation completion, MyTIP recognition
// and teaching awards. One record per faculty per year.
type Record struct {
	ID           string `json:"id"`
	FacultyEmail string `json:"faculty_email"`
	YearCode     string `json:"year_code"`

	// evaluations
	NewInnovations bool `json:"new_innovations"` // completed 80%+ of assigned evaluations
	MyTIPWinner    bool `json:"mytip_winner"`
	MyTIPCount     int  `json:"mytip_count"` // clamped to [0, 20] on every write

	// teaching awards
	TeachingTop25    bool `json:"teaching_top_25"`
	Teaching6525     bool `json:"teaching_65_25"`
	TeacherOfYear    bool `json:"teacher_of_year"`
	HonorableMention bool `json:"honorable_mention"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// SetMyTIPCount stores the count through the clamp. Out-of-range input is
// capped, never rejected, so both the bulk and single-field update paths
// land on a valid stored value.
func (r *Record) SetMyTIPCount(n int) {
	r.MyTIPCount = n
	r.ClampMyTIPCount()
}

// ClampMyTIPCount forces the count into [0, 20]. Called on every write path
// so no stored record can exceed the cap.
func (r *Record) ClampMyTIPCount() {
	if r.MyTIPCount < 0 {
		r.MyTIPCount = 0
	}
	if r.MyTIPCount > MyTIPCountMax {
		r.MyTIPCount = MyTIPCountMax
	}
}

// EvaluationsPoints totals the evaluations section.
func (r *Record) EvaluationsPoints() int {
	total := 0
	if r.NewInnovations {
		total += PointsNewInnovations
	}
	if r.MyTIPWinner {
		total += PointsMyTIPWinner
	}
	count := r.MyTIPCount
	if count > MyTIPCountMax {
		count = MyTIPCountMax
	}
	if count > 0 {
		total += count * PointsMyTIPPer
	}
	return total
}

// TeachingAwardsPoints totals the teaching awards section.
func (r *Record) TeachingAwardsPoints() int {
	total := 0
	if r.TeachingTop25 {
		total += PointsTeachingTop25
	}
	if r.Teaching6525 {
		total += PointsTeaching6525
	}
	if r.TeacherOfYear {
		total += PointsTeacherOfYear
	}
	if r.HonorableMention {
		total += PointsHonorableMention
	}
	return total
}

// CCCPoints prices Clinical Competency Committee membership, which lives on
// the roster entry (it persists across years), not on this record.
func CCCPoints(isCCCMember bool) int {
	if isCCCMember {
		return PointsCCCMember
	}
	return 0
}

// TotalPoints is the departmental total including the CCC award.
func (r *Record) TotalPoints(isCCCMember bool) int {
	return r.EvaluationsPoints() + r.TeachingAwardsPoints() + CCCPoints(isCCCMember)
}

// UpdateRecord contains the administrator-editable fields. Nil fields are
// left unchanged.
type UpdateRecord struct {
	NewInnovations   *bool `json:"new_innovations"`
	MyTIPWinner      *bool `json:"mytip_winner"`
	MyTIPCount       *int  `json:"mytip_count"`
	TeachingTop25    *bool `json:"teaching_top_25"`
	Teaching6525     *bool `json:"teaching_65_25"`
	TeacherOfYear    *bool `json:"teacher_of_year"`
	HonorableMention *bool `json:"honorable_mention"`
}

func (ur *UpdateRecord) Validate(validate *validator.Validate) error {
	return validate.Struct(ur)
}

// apply folds the update into rec, routing the count through the clamping
// setter.
func (ur UpdateRecord) apply(rec *Record) {
	if ur.NewInnovations != nil {
		rec.NewInnovations = *ur.NewInnovations
	}
	if ur.MyTIPWinner != nil {
		rec.MyTIPWinner = *ur.MyTIPWinner
	}
	if ur.MyTIPCount != nil {
		rec.SetMyTIPCount(*ur.MyTIPCount)
	}
	if ur.TeachingTop25 != nil {
		rec.TeachingTop25 = *ur.TeachingTop25
	}
	if ur.Teaching6525 != nil {
		rec.Teaching6525 = *ur.Teaching6525
	}
	if ur.TeacherOfYear != nil {
		rec.TeacherOfYear = *ur.TeacherOfYear
	}
	if ur.HonorableMention != nil {
		rec.HonorableMention = *ur.HonorableMention
	}
}
