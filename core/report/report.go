package report

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core/department"
	"github.com/nickmarkin/AAA-Summarizer/core/faculty"
	"github.com/nickmarkin/AAA-Summarizer/core/survey"
)

// Fixed column orders. Downstream spreadsheets key on these by position, so
// they only ever grow at the end.
var (
	pointsSummaryHeader = []string{"Name", "Email", "Survey Points", "Departmental Points", "CCC Points", "Total Points"}
	rosterHeader        = []string{"Last Name", "First Name", "Email", "Rank", "Contract Type", "Division", "Active", "CCC Member"}
	activitiesHeader    = []string{"Name", "Email", "Category", "Subsection", "Type", "Count", "Impact Factor", "Source", "Carried From"}
)

type (
	// FacultyLister provides the roster rows exports iterate over.
	FacultyLister interface {
		All(ctx context.Context) ([]faculty.FacultyMember, error)
	}

	// SurveyReader provides stored survey records and merged entry views.
	SurveyReader interface {
		QueryRecordsByYear(ctx context.Context, yearCode string) ([]survey.Record, error)
		MergedView(ctx context.Context, email, yearCode, currentQuarter string) (survey.Tree, error)
	}

	// DeptReader provides departmental records.
	DeptReader interface {
		QueryByYear(ctx context.Context, yearCode string) ([]department.Record, error)
	}

	Service struct {
		faculty FacultyLister
		surveys SurveyReader
		dept    DeptReader
	}
)

func NewService(fac FacultyLister, surveys SurveyReader, dept DeptReader) *Service {
	return &Service{faculty: fac, surveys: surveys, dept: dept}
}

// PointsSummaryRow is one faculty member's annual totals.
type PointsSummaryRow struct {
	Name         string
	Email        string
	SurveyPoints int
	DeptPoints   int
	CCCPoints    int
	TotalPoints  int
}

// PointsSummary assembles the annual totals for every roster member, inactive
// included: departed faculty keep their history in the year's report.
func (svc *Service) PointsSummary(ctx context.Context, yearCode string) ([]PointsSummaryRow, error) {
	members, err := svc.faculty.All(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing faculty")
	}
	records, err := svc.surveys.QueryRecordsByYear(ctx, yearCode)
	if err != nil {
		return nil, errors.Wrap(err, "listing survey records")
	}
	deptRecords, err := svc.dept.QueryByYear(ctx, yearCode)
	if err != nil {
		return nil, errors.Wrap(err, "listing departmental records")
	}

	surveyTotals := make(map[string]int, len(records))
	for _, rec := range records {
		surveyTotals[rec.FacultyEmail] = rec.SurveyTotal
	}
	deptByEmail := make(map[string]department.Record, len(deptRecords))
	for _, rec := range deptRecords {
		deptByEmail[rec.FacultyEmail] = rec
	}

	rows := make([]PointsSummaryRow, 0, len(members))
	for _, fm := range members {
		dept := deptByEmail[fm.Email]
		row := PointsSummaryRow{
			Name:         fm.DisplayName(),
			Email:        fm.Email,
			SurveyPoints: surveyTotals[fm.Email],
			DeptPoints:   dept.EvaluationsPoints() + dept.TeachingAwardsPoints(),
			CCCPoints:    department.CCCPoints(fm.IsCCCMember),
		}
		row.TotalPoints = row.SurveyPoints + row.DeptPoints + row.CCCPoints
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

// WritePointsSummaryCSV streams the points summary for one academic year.
func (svc *Service) WritePointsSummaryCSV(ctx context.Context, w io.Writer, yearCode string) error {
	rows, err := svc.PointsSummary(ctx, yearCode)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(pointsSummaryHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, row := range rows {
		record := []string{
			row.Name,
			row.Email,
			strconv.Itoa(row.SurveyPoints),
			strconv.Itoa(row.DeptPoints),
			strconv.Itoa(row.CCCPoints),
			strconv.Itoa(row.TotalPoints),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "writing row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing CSV")
}

// WriteRosterCSV streams the full roster.
func (svc *Service) WriteRosterCSV(ctx context.Context, w io.Writer) error {
	members, err := svc.faculty.All(ctx)
	if err != nil {
		return errors.Wrap(err, "listing faculty")
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].LastName != members[j].LastName {
			return members[i].LastName < members[j].LastName
		}
		return members[i].FirstName < members[j].FirstName
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(rosterHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, fm := range members {
		record := []string{
			fm.LastName,
			fm.FirstName,
			fm.Email,
			fm.Rank,
			fm.ContractType,
			fm.Division,
			yesNo(fm.IsActive),
			yesNo(fm.IsCCCMember),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "writing row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing CSV")
}

// WriteActivitiesCSV streams every merged activity entry for the year, one
// row per entry, carry-forward copies tagged with their source quarter.
func (svc *Service) WriteActivitiesCSV(ctx context.Context, w io.Writer, yearCode string) error {
	members, err := svc.faculty.All(ctx)
	if err != nil {
		return errors.Wrap(err, "listing faculty")
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Email < members[j].Email })

	cw := csv.NewWriter(w)
	if err := cw.Write(activitiesHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, fm := range members {
		tree, err := svc.surveys.MergedView(ctx, fm.Email, yearCode, "")
		if err != nil {
			if errors.Is(err, survey.ErrRecordNotFound) {
				continue
			}
			return errors.Wrapf(err, "merged view for %s", fm.Email)
		}
		for _, cat := range sortedKeys(tree) {
			subs := tree[cat]
			for _, sub := range sortedSubKeys(subs) {
				for _, e := range subs[sub].Entries {
					record := []string{
						fm.DisplayName(),
						fm.Email,
						cat,
						sub,
						e.Type,
						strconv.Itoa(e.Count),
						formatIF(e.ImpactFactor),
						string(e.Source),
						e.CarriedFrom,
					}
					if err := cw.Write(record); err != nil {
						return errors.Wrap(err, "writing row")
					}
				}
			}
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing CSV")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatIF(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedKeys(tree survey.Tree) []string {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSubKeys(subs survey.CategoryData) []string {
	keys := make([]string, 0, len(subs))
	for k := range subs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
