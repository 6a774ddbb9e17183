package faculty_test

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/faculty"
	logsvc "github.com/nickmarkin/AAA-Summarizer/services/logger"
	inmemdb "github.com/nickmarkin/AAA-Summarizer/storage/database/inmem"
)

func newService() *faculty.Service {
	validate, _ := core.NewValidator()
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	return faculty.NewService(inmemdb.NewFacultyRepository(inmemdb.NewDB()), logger, validate)
}

func TestCreateAndDeactivate(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	fm, err := svc.Create(ctx, faculty.NewFacultyMember{
		Email: "JDOE@test.edu", FirstName: "Jane", LastName: "Doe", Rank: faculty.RankProfessor,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if fm.Email != "jdoe@test.edu" || !fm.IsActive {
		t.Errorf("member = %+v, want lowercased email and active by default", fm)
	}

	if _, err := svc.Create(ctx, faculty.NewFacultyMember{
		Email: "jdoe@test.edu", FirstName: "Jane", LastName: "Doe",
	}); err == nil {
		t.Error("Create() must reject a taken email")
	}

	if _, err := svc.Deactivate(ctx, "jdoe@test.edu"); err != nil {
		t.Fatalf("Deactivate() failed: %v", err)
	}
	active, err := svc.AllActive(ctx)
	if err != nil {
		t.Fatalf("AllActive() failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("active roster = %d members, want 0", len(active))
	}
	// history preserved
	if _, err := svc.GetByEmail(ctx, "jdoe@test.edu"); err != nil {
		t.Errorf("deactivated member must stay retrievable: %v", err)
	}
}

func TestActiveEmailSet(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, err := svc.Create(ctx, faculty.NewFacultyMember{
		Email: "jdoe@test.edu", FirstName: "Jane", LastName: "Doe",
	}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	set, err := svc.ActiveEmailSet(ctx)
	if err != nil {
		t.Fatalf("ActiveEmailSet() failed: %v", err)
	}
	if set["jdoe@test.edu"] != "Doe, Jane" {
		t.Errorf("set = %v, want display name keyed by email", set)
	}
}

func TestImportRoster(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, err := svc.Create(ctx, faculty.NewFacultyMember{
		Email: "rroe@test.edu", FirstName: "Rick", LastName: "Roe",
		Rank: faculty.RankAssistant, Division: "Cardiac",
	}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	csv := strings.Join([]string{
		"email,first_name,last_name,rank,division,ccc_member",
		"jdoe@test.edu,Jane,Doe,Professor,,yes",
		"rroe@test.edu,Rick,Roe,Associate Professor,,",
	}, "\n")

	// without updateExisting, known members are skipped
	stats, err := svc.ImportRoster(ctx, strings.NewReader(csv), false)
	if err != nil {
		t.Fatalf("ImportRoster() failed: %v", err)
	}
	if stats.Created != 1 || stats.Updated != 0 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 1 created, 1 skipped", stats)
	}
	jane, err := svc.GetByEmail(ctx, "jdoe@test.edu")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}
	if jane.Rank != faculty.RankProfessor || !jane.IsCCCMember || !jane.IsActive {
		t.Errorf("created member = %+v", jane)
	}

	// with updateExisting, rows overwrite; blank CSV fields keep stored values
	stats, err = svc.ImportRoster(ctx, strings.NewReader(csv), true)
	if err != nil {
		t.Fatalf("ImportRoster() failed: %v", err)
	}
	if stats.Updated != 2 {
		t.Errorf("stats = %+v, want 2 updated", stats)
	}
	rick, _ := svc.GetByEmail(ctx, "rroe@test.edu")
	if rick.Rank != faculty.RankAssociate {
		t.Errorf("rank = %q, want associate", rick.Rank)
	}
	if rick.Division != "Cardiac" {
		t.Errorf("division = %q, blank CSV field must keep the stored value", rick.Division)
	}
	if rick.IsCCCMember {
		t.Error("blank ccc_member must keep the stored value")
	}
}

func TestImportRoster_RejectsMalformedFile(t *testing.T) {
	svc := newService()
	_, err := svc.ImportRoster(context.Background(), strings.NewReader("email\njdoe@test.edu\n"), false)
	if err == nil {
		t.Fatal("ImportRoster() must reject a file without required columns")
	}
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("err = %T, want *core.ValidationError", err)
	}
}
