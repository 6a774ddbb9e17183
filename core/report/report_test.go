package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/nickmarkin/AAA-Summarizer/core/department"
	"github.com/nickmarkin/AAA-Summarizer/core/faculty"
	"github.com/nickmarkin/AAA-Summarizer/core/survey"
)

type fakeFaculty []faculty.FacultyMember

func (f fakeFaculty) All(ctx context.Context) ([]faculty.FacultyMember, error) {
	return f, nil
}

type fakeSurveys struct {
	records []survey.Record
	views   map[string]survey.Tree
}

func (f fakeSurveys) QueryRecordsByYear(ctx context.Context, yearCode string) ([]survey.Record, error) {
	return f.records, nil
}

func (f fakeSurveys) MergedView(ctx context.Context, email, yearCode, currentQuarter string) (survey.Tree, error) {
	tree, ok := f.views[email]
	if !ok {
		return nil, survey.ErrRecordNotFound
	}
	return tree, nil
}

type fakeDept []department.Record

func (f fakeDept) QueryByYear(ctx context.Context, yearCode string) ([]department.Record, error) {
	return f, nil
}

func testService() *Service {
	fac := fakeFaculty{
		{Email: "jdoe@test.edu", FirstName: "Jane", LastName: "Doe", Rank: "professor", IsActive: true, IsCCCMember: true},
		{Email: "rroe@test.edu", FirstName: "Rick", LastName: "Roe", IsActive: false},
	}
	surveys := fakeSurveys{
		records: []survey.Record{
			{FacultyEmail: "jdoe@test.edu", YearCode: "24-25", SurveyTotal: 3500},
		},
		views: map[string]survey.Tree{
			"jdoe@test.edu": {
				"citizenship": {
					"committees": {Trigger: "yes", Entries: []survey.Entry{
						{Type: "unmc", Source: survey.SourceImported},
						{Type: "minor", Source: survey.SourceCarried, CarriedFrom: survey.QuarterQ1},
					}},
				},
			},
		},
	}
	dept := fakeDept{
		{FacultyEmail: "jdoe@test.edu", YearCode: "24-25", NewInnovations: true, MyTIPCount: 4},
	}
	return NewService(fac, surveys, dept)
}

func TestPointsSummary(t *testing.T) {
	rows, err := testService().PointsSummary(context.Background(), "24-25")
	if err != nil {
		t.Fatalf("PointsSummary() failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want inactive faculty included", len(rows))
	}

	jane := rows[0] // sorted by name, Doe before Roe
	if jane.Name != "Doe, Jane" {
		t.Fatalf("rows not sorted by name: %+v", rows)
	}
	if jane.SurveyPoints != 3500 {
		t.Errorf("SurveyPoints = %d, want 3500", jane.SurveyPoints)
	}
	if jane.DeptPoints != 2000+100 {
		t.Errorf("DeptPoints = %d, want 2100", jane.DeptPoints)
	}
	if jane.CCCPoints != 1000 {
		t.Errorf("CCCPoints = %d, want 1000", jane.CCCPoints)
	}
	if jane.TotalPoints != 3500+2100+1000 {
		t.Errorf("TotalPoints = %d, want 6600", jane.TotalPoints)
	}

	rick := rows[1]
	if rick.SurveyPoints != 0 || rick.TotalPoints != 0 {
		t.Errorf("faculty without records = %+v, want zero totals", rick)
	}
}

func TestWritePointsSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := testService().WritePointsSummaryCSV(context.Background(), &buf, "24-25"); err != nil {
		t.Fatalf("WritePointsSummaryCSV() failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading output failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2 rows", len(records))
	}
	wantHeader := []string{"Name", "Email", "Survey Points", "Departmental Points", "CCC Points", "Total Points"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Fatalf("header = %v, want %v", records[0], wantHeader)
		}
	}
	jane := records[1]
	if jane[0] != "Doe, Jane" || jane[2] != "3500" || jane[5] != "6600" {
		t.Errorf("row = %v", jane)
	}
}

func TestWriteRosterCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := testService().WriteRosterCSV(context.Background(), &buf); err != nil {
		t.Fatalf("WriteRosterCSV() failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading output failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2 rows", len(records))
	}
	jane := records[1] // sorted by last name
	if jane[0] != "Doe" || jane[2] != "jdoe@test.edu" || jane[6] != "yes" || jane[7] != "yes" {
		t.Errorf("row = %v", jane)
	}
	rick := records[2]
	if rick[6] != "no" {
		t.Errorf("inactive faculty row = %v, want Active no", rick)
	}
}

func TestWriteActivitiesCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := testService().WriteActivitiesCSV(context.Background(), &buf, "24-25"); err != nil {
		t.Fatalf("WriteActivitiesCSV() failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading output failed: %v", err)
	}
	// one row per entry; faculty without a record are skipped, not errors
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2 entries", len(records))
	}
	imported := records[1]
	if imported[4] != "unmc" || imported[7] != "imported" || imported[8] != "" {
		t.Errorf("imported row = %v", imported)
	}
	carried := records[2]
	if carried[4] != "minor" || carried[7] != "carried_forward" || carried[8] != "Q1" {
		t.Errorf("carried row = %v", carried)
	}
}
