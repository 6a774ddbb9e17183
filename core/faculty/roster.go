package faculty

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core"
)

// Roster CSV parsing (Faculty Calculator export). Column matching is
// case-insensitive and treats spaces as underscores, so "First Name" and
// "first_name" address the same column. Unknown columns are ignored.

var requiredRosterColumns = []string{"email", "first_name", "last_name"}

// rankMapping normalizes Faculty Calculator rank values to our choices.
// Unmapped values normalize to empty, never to a guess.
var rankMapping = map[string]string{
	"instructor":          RankInstructor,
	"assistant professor": RankAssistant,
	"assistant":           RankAssistant,
	"associate professor": RankAssociate,
	"associate":           RankAssociate,
	"professor":           RankProfessor,
}

// contractMapping normalizes Faculty Calculator contract types.
var contractMapping = map[string]string{
	"academic":               ContractAcademic,
	"clinical":               ContractClinical,
	"early career (yrs 1-3)": ContractEarlyCareer,
	"early career":           ContractEarlyCareer,
	"early_career":           ContractEarlyCareer,
}

// RosterRow is one parsed faculty row. IsActive and IsCCCMember are
// tri-state: nil means the column was absent or blank and the stored value
// (or creation default) stands.
type RosterRow struct {
	Email        string
	FirstName    string
	LastName     string
	Rank         string
	ContractType string
	Division     string
	IsActive     *bool
	IsCCCMember  *bool
}

// NormalizeRank converts a raw rank value to a choice value, or "".
func NormalizeRank(v string) string {
	return rankMapping[core.CleanString(v, true /* lower */)]
}

// NormalizeContract converts a raw contract type to a choice value, or "".
func NormalizeContract(v string) string {
	return contractMapping[core.CleanString(v, true /* lower */)]
}

// ParseRosterCSV parses a roster export. A missing required column rejects the
// whole file with a ValidationError naming the missing columns; rows without
// an email or a full name are skipped.
func ParseRosterCSV(r io.Reader) ([]RosterRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading CSV header")
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[normalizeColumn(name)] = i
	}

	var missing []core.FieldError
	for _, req := range requiredRosterColumns {
		if _, ok := cols[req]; !ok {
			missing = append(missing, core.FieldError{Field: req, Error: "missing required column"})
		}
	}
	if len(missing) > 0 {
		return nil, core.NewValidationError(errors.New("roster CSV is missing required columns"), missing...)
	}

	var rows []RosterRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading CSV row")
		}

		get := func(names ...string) string {
			for _, name := range names {
				if idx, ok := cols[name]; ok && idx < len(record) {
					if v := strings.TrimSpace(record[idx]); v != "" {
						return v
					}
				}
			}
			return ""
		}

		row := RosterRow{
			Email:        core.CleanString(get("email"), true /* lower */),
			FirstName:    get("first_name"),
			LastName:     get("last_name"),
			Rank:         NormalizeRank(get("rank")),
			ContractType: NormalizeContract(get("contract_type")),
			Division:     get("division"),
			IsActive:     parseBoolish(get("is_active", "active")),
			IsCCCMember:  parseBoolish(get("is_ccc_member", "ccc_member")),
		}
		if row.Email == "" || row.FirstName == "" || row.LastName == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\uFEFF") // excel BOM
	return strings.ReplaceAll(core.CleanString(name, true /* lower */), " ", "_")
}

func parseBoolish(v string) *bool {
	if v == "" {
		return nil
	}
	b := false
	switch core.CleanString(v, true /* lower */) {
	case "yes", "true", "1", "y":
		b = true
	}
	return &b
}
