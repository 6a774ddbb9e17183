package faculty

import (
	"strings"
	"testing"

	"github.com/nickmarkin/AAA-Summarizer/core"
)

func TestNormalizeRank(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Instructor", RankInstructor},
		{"Assistant Professor", RankAssistant},
		{"assistant", RankAssistant},
		{"Associate Professor", RankAssociate},
		{"Professor", RankProfessor},
		{"Emeritus Lord of Anesthesia", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeRank(tt.in); got != tt.want {
			t.Errorf("NormalizeRank(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeContract(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Academic", ContractAcademic},
		{"Clinical", ContractClinical},
		{"Early Career (Yrs 1-3)", ContractEarlyCareer},
		{"early career", ContractEarlyCareer},
		{"locum", ""},
	}
	for _, tt := range tests {
		if got := NormalizeContract(tt.in); got != tt.want {
			t.Errorf("NormalizeContract(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseRosterCSV(t *testing.T) {
	csv := strings.Join([]string{
		"Email,First Name,Last Name,Rank,Contract Type,Division,Active,CCC Member",
		"JDOE@test.edu,Jane,Doe,Assistant Professor,Clinical,Cardiac,Yes,No",
		"rroe@test.edu,Rick,Roe,Professor,Early Career (Yrs 1-3),,No,",
		"missing@test.edu,,Noname,Professor,,,,",
		"incognito@test.edu,Ida,Cognito,,,,,",
	}, "\n")

	rows, err := ParseRosterCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseRosterCSV() failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows parsed = %d, want 3 (nameless row skipped)", len(rows))
	}

	jane := rows[0]
	if jane.Email != "jdoe@test.edu" {
		t.Errorf("email = %q, want lowercased", jane.Email)
	}
	if jane.Rank != RankAssistant || jane.ContractType != ContractClinical {
		t.Errorf("rank/contract = %q/%q, want assistant/clinical", jane.Rank, jane.ContractType)
	}
	if jane.IsActive == nil || !*jane.IsActive {
		t.Error("Active=Yes should parse to true")
	}
	if jane.IsCCCMember == nil || *jane.IsCCCMember {
		t.Error("CCC Member=No should parse to false")
	}

	rick := rows[1]
	if rick.ContractType != ContractEarlyCareer {
		t.Errorf("contract = %q, want early_career", rick.ContractType)
	}
	if rick.IsActive == nil || *rick.IsActive {
		t.Error("Active=No should parse to false")
	}
	if rick.IsCCCMember != nil {
		t.Error("blank CCC Member must stay tri-state nil")
	}

	ida := rows[2]
	if ida.Rank != "" || ida.ContractType != "" {
		t.Errorf("blank rank/contract should stay empty, got %q/%q", ida.Rank, ida.ContractType)
	}
	if ida.IsActive != nil {
		t.Error("absent Active value must stay tri-state nil")
	}
}

func TestParseRosterCSV_ExcelBOM(t *testing.T) {
	csv := "\uFEFFEmail,First Name,Last Name\njdoe@test.edu,Jane,Doe\n"
	rows, err := ParseRosterCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseRosterCSV() failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Email != "jdoe@test.edu" {
		t.Errorf("rows = %+v, want the BOM stripped off the first header", rows)
	}
}

func TestParseRosterCSV_MissingColumns(t *testing.T) {
	csv := "email,first_name\njdoe@test.edu,Jane\n"
	_, err := ParseRosterCSV(strings.NewReader(csv))
	if err == nil {
		t.Fatal("ParseRosterCSV() should reject a file without required columns")
	}
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("error = %T, want *core.ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "last_name" {
		t.Errorf("missing columns = %+v, want last_name", vErr.Fields)
	}
}
