package activity

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nickmarkin/AAA-Summarizer/core"
)

// Modifier determines how an activity type's base points combine with an
// entry's attributes.
type Modifier string

const (
	// ModifierFixed awards the base points once, regardless of count.
	ModifierFixed Modifier = "fixed"
	// ModifierCount multiplies base points by the entry count.
	ModifierCount Modifier = "count"
	// ModifierImpactFactor multiplies base points by the journal impact factor.
	ModifierImpactFactor Modifier = "impact_factor"
)

// Categories (top-level award buckets).
const (
	CategoryCitizenship   = "citizenship"
	CategoryEducation     = "education"
	CategoryResearch      = "research"
	CategoryLeadership    = "leadership"
	CategoryContentExpert = "content_expert"
)

// CategoryOrder is the canonical display/aggregation order.
var CategoryOrder = []string{
	CategoryCitizenship,
	CategoryEducation,
	CategoryResearch,
	CategoryLeadership,
	CategoryContentExpert,
}

var CategoryNames = map[string]string{
	CategoryCitizenship:   "Citizenship",
	CategoryEducation:     "Education",
	CategoryResearch:      "Research",
	CategoryLeadership:    "Leadership",
	CategoryContentExpert: "Content Expert",
}

// ActivityType identifies one scorable activity and its point rule.
// Key is the stable data variable shared with REDCap imports
// (e.g. "CIT_DEPT_GR_HOST"); it is immutable once entries reference it.
// BasePoints may be edited at any time and only affects future computations.
type ActivityType struct {
	Key        string    `json:"key"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Goal       string    `json:"goal"` // subcategory, e.g. "Department Activities"
	Modifier   Modifier  `json:"modifier"`
	BasePoints int       `json:"base_points"`
	MaxCount   int       `json:"max_count,omitempty"`  // 0 = uncapped
	MaxPoints  int       `json:"max_points,omitempty"` // 0 = uncapped
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// NewActivityType contains information needed to register a new ActivityType.
type NewActivityType struct {
	Key        string `json:"key" validate:"required,max=64"`
	Name       string `json:"name" validate:"required"`
	Category   string `json:"category" validate:"required"`
	Goal       string `json:"goal"`
	Modifier   string `json:"modifier" validate:"required,oneof=fixed count impact_factor"`
	BasePoints int    `json:"base_points" validate:"min=0"`
	MaxCount   int    `json:"max_count" validate:"min=0"`
	MaxPoints  int    `json:"max_points" validate:"min=0"`
}

func (nat *NewActivityType) Validate(validate *validator.Validate, reg *Registry) error {
	nat.Key = core.CleanString(nat.Key)
	nat.Name = core.CleanString(nat.Name)
	nat.Category = core.CleanString(nat.Category, true /* lower */)
	nat.Goal = core.CleanString(nat.Goal)

	if err := validate.Struct(nat); err != nil {
		return err
	}
	return reg.checkKeyUniqueness(nat.Key)
}

// UpdateActivityType defines what may be modified on an existing type.
// The key itself is immutable.
type UpdateActivityType struct {
	Name       string `json:"name"`
	BasePoints *int   `json:"base_points" validate:"omitempty,min=0"`
	MaxCount   *int   `json:"max_count" validate:"omitempty,min=0"`
	MaxPoints  *int   `json:"max_points" validate:"omitempty,min=0"`
	IsActive   *bool  `json:"is_active"`
}

func (uat *UpdateActivityType) Validate(validate *validator.Validate) error {
	uat.Name = core.CleanString(uat.Name)
	return validate.Struct(uat)
}
