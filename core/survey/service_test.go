package survey_test

import (
	"context"
	"io"
	"log"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/activity"
	"github.com/nickmarkin/AAA-Summarizer/core/department"
	"github.com/nickmarkin/AAA-Summarizer/core/survey"
	emailsvc "github.com/nickmarkin/AAA-Summarizer/services/email"
	logsvc "github.com/nickmarkin/AAA-Summarizer/services/logger"
	inmemdb "github.com/nickmarkin/AAA-Summarizer/storage/database/inmem"
)

// rosterStub satisfies survey.Roster with a fixed active-faculty set.
type rosterStub map[string]string

func (r rosterStub) ActiveEmailSet(ctx context.Context) (map[string]string, error) {
	return r, nil
}

type testEnv struct {
	svc  *survey.Service
	dept *department.Service
	reg  *activity.Registry
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	ctx := context.Background()

	db := inmemdb.NewDB()
	repo := inmemdb.NewSurveyRepository(db)
	reg := activity.NewRegistry(inmemdb.NewActivityTypeRepository(db))
	for _, nat := range activity.DefaultSchedule() {
		if _, err := reg.Create(ctx, nat); err != nil {
			t.Fatalf("seeding %s failed: %v", nat.Key, err)
		}
	}

	validate, _ := core.NewValidator()
	conf := &core.Config{
		AppName:          "AAA Summarizer",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "AAA Summarizer", Address: "noreply@test.edu"},
	}
	roster := rosterStub{
		"jdoe@test.edu": "Doe, Jane",
		"rroe@test.edu": "Roe, Rick",
	}
	deptSvc := department.NewService(inmemdb.NewDepartmentRepository(db), validate)
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))

	svc := survey.NewService(
		conf, nil, repo, reg, roster, deptSvc,
		emailsvc.NewConsoleServiceMock(conf), logger, validate,
	)
	return testEnv{svc: svc, dept: deptSvc, reg: reg}
}

func TestImportConfirm(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// a manual entry recorded before the import must survive it
	if _, err := env.svc.AddManualEntry(ctx, "jdoe@test.edu", "24-25", survey.NewManualEntry{
		Category: "citizenship", Subsection: "committees", Type: "minor",
	}); err != nil {
		t.Fatalf("AddManualEntry() failed: %v", err)
	}

	csv := strings.Join([]string{
		"email,quarter,complete,citizenship__committees__trig,citizenship__committees__1__type",
		"jdoe@test.edu,Q1,2,1,unmc",
		"stranger@test.edu,Q1,2,1,unmc",
	}, "\n")

	parsed, err := env.svc.ParseImport(ctx, strings.NewReader(csv), "24-25")
	if err != nil {
		t.Fatalf("ParseImport() failed: %v", err)
	}
	imp, err := env.svc.ImportConfirm(ctx, parsed, "24-25", "redcap_q1.csv", "admin")
	if err != nil {
		t.Fatalf("ImportConfirm() failed: %v", err)
	}

	if imp.FacultyCount != 1 {
		t.Errorf("FacultyCount = %d, want 1", imp.FacultyCount)
	}
	if len(imp.UnmatchedEmails) != 1 || imp.UnmatchedEmails[0] != "stranger@test.edu" {
		t.Errorf("UnmatchedEmails = %v, want the off-roster address kept", imp.UnmatchedEmails)
	}
	if imp.Filename != "redcap_q1.csv" || imp.ImportedBy != "admin" {
		t.Errorf("audit row = %+v", imp)
	}

	rec, err := env.svc.GetRecord(ctx, "jdoe@test.edu", "24-25")
	if err != nil {
		t.Fatalf("GetRecord() failed: %v", err)
	}
	if rec.Points["citizenship"] != 1000 || rec.SurveyTotal != 1000 {
		t.Errorf("points = %v total = %d, want citizenship 1000", rec.Points, rec.SurveyTotal)
	}
	if len(rec.Imported["citizenship"]["committees"].Entries) != 1 {
		t.Error("imported tree not replaced")
	}
	if len(rec.Manual["citizenship"]["committees"].Entries) != 1 {
		t.Error("manual entries must survive imports")
	}
	if len(rec.Quarters) != 1 || rec.Quarters[0] != survey.QuarterQ1 {
		t.Errorf("Quarters = %v, want [Q1]", rec.Quarters)
	}

	// the departmental record is created alongside
	if _, err := env.dept.Get(ctx, "jdoe@test.edu", "24-25"); err != nil {
		t.Errorf("departmental record missing after import: %v", err)
	}

	imports, err := env.svc.QueryImports(ctx, "24-25")
	if err != nil {
		t.Fatalf("QueryImports() failed: %v", err)
	}
	if len(imports) != 1 {
		t.Errorf("imports = %d, want 1", len(imports))
	}
}

func TestManualEntryLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	entry, err := env.svc.AddManualEntry(ctx, "JDOE@test.edu", "24-25", survey.NewManualEntry{
		Category: "citizenship", Subsection: "committees", Type: "minor",
		Fields: map[string]string{"name": "IRB"},
	})
	if err != nil {
		t.Fatalf("AddManualEntry() failed: %v", err)
	}
	if entry.ID == "" || entry.Source != survey.SourceManual {
		t.Errorf("entry = %+v, want generated ID with manual source", entry)
	}

	merged, err := env.svc.MergedView(ctx, "jdoe@test.edu", "24-25", "")
	if err != nil {
		t.Fatalf("MergedView() failed: %v", err)
	}
	got := merged["citizenship"]["committees"].Entries
	if len(got) != 1 || got[0].Source != survey.SourceManual || got[0].ManualIndex != 0 {
		t.Errorf("merged entries = %+v", got)
	}

	if _, err := env.svc.UpdateManualEntry(ctx, "jdoe@test.edu", "24-25", entry.ID, survey.NewManualEntry{
		Category: "citizenship", Subsection: "committees", Type: "unmc",
	}); err != nil {
		t.Fatalf("UpdateManualEntry() failed: %v", err)
	}
	rec, _ := env.svc.GetRecord(ctx, "jdoe@test.edu", "24-25")
	if got := rec.Manual["citizenship"]["committees"].Entries[0].Type; got != "unmc" {
		t.Errorf("type after update = %q, want unmc", got)
	}

	if err := env.svc.DeleteManualEntry(ctx, "jdoe@test.edu", "24-25", entry.ID); err != nil {
		t.Fatalf("DeleteManualEntry() failed: %v", err)
	}
	if err := env.svc.DeleteManualEntry(ctx, "jdoe@test.edu", "24-25", entry.ID); !errors.Is(err, survey.ErrEntryNotFound) {
		t.Errorf("second delete err = %v, want ErrEntryNotFound", err)
	}

	// unknown subsection is rejected up front
	if _, err := env.svc.AddManualEntry(ctx, "jdoe@test.edu", "24-25", survey.NewManualEntry{
		Category: "citizenship", Subsection: "bake_sales", Type: "minor",
	}); err == nil {
		t.Error("AddManualEntry() must reject unknown subsections")
	}
}

func newOpenCampaign(t *testing.T, env testEnv, quarter string) survey.Campaign {
	t.Helper()
	now := time.Now().UTC()
	cmp, err := env.svc.CreateCampaign(context.Background(), survey.NewCampaign{
		YearCode: "24-25",
		Quarter:  quarter,
		Name:     quarter + " Survey",
		OpensAt:  now.Add(-time.Hour),
		ClosesAt: now.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateCampaign() failed: %v", err)
	}
	return cmp
}

func TestCreateCampaign_DuplicateQuarter(t *testing.T) {
	env := newTestEnv(t)
	newOpenCampaign(t, env, survey.QuarterQ1)

	now := time.Now().UTC()
	_, err := env.svc.CreateCampaign(context.Background(), survey.NewCampaign{
		YearCode: "24-25",
		Quarter:  survey.QuarterQ1,
		Name:     "Duplicate",
		OpensAt:  now,
		ClosesAt: now.Add(time.Hour),
	})
	if err == nil {
		t.Fatal("CreateCampaign() must reject a second campaign for the same quarter")
	}
	if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
		t.Errorf("err = %T, want *core.ValidationError", errors.Cause(err))
	}
}

func TestSurveyFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	cmp := newOpenCampaign(t, env, survey.QuarterQ1)

	sent, err := env.svc.SendInvitations(ctx, cmp.ID)
	if err != nil {
		t.Fatalf("SendInvitations() failed: %v", err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want one invitation per active faculty", sent)
	}
	// resending creates nothing new
	if sent, _ = env.svc.SendInvitations(ctx, cmp.ID); sent != 0 {
		t.Errorf("resend sent = %d, want 0", sent)
	}

	invs, err := env.svc.CampaignInvitations(ctx, cmp.ID)
	if err != nil {
		t.Fatalf("CampaignInvitations() failed: %v", err)
	}
	var jane survey.Invitation
	for _, inv := range invs {
		if inv.FacultyEmail == "jdoe@test.edu" {
			jane = inv
		}
	}
	if jane.Token == "" || jane.Status != survey.InvitationPending {
		t.Fatalf("invitation = %+v, want pending with token", jane)
	}

	// first access flips the invitation to in_progress
	_, inv, res, err := env.svc.AccessByToken(ctx, jane.Token)
	if err != nil {
		t.Fatalf("AccessByToken() failed: %v", err)
	}
	if inv.Status != survey.InvitationInProgress || inv.FirstAccessedAt.IsZero() {
		t.Errorf("invitation after access = %+v", inv)
	}
	if res.ID == "" {
		t.Fatal("draft response not created on first access")
	}

	res, err = env.svc.SaveCategory(ctx, jane.Token, "citizenship", survey.CategoryData{
		"committees": {Trigger: "yes", Entries: []survey.Entry{{Type: "unmc"}}},
	}, true)
	if err != nil {
		t.Fatalf("SaveCategory() failed: %v", err)
	}
	if res.Points["citizenship"] != 1000 || !res.Complete["citizenship"] {
		t.Errorf("response = points %v complete %v", res.Points, res.Complete)
	}
	if res.Data["citizenship"]["committees"].Entries[0].ID == "" {
		t.Error("saved entries must get stable IDs")
	}

	if _, err := env.svc.SaveCategory(ctx, jane.Token, "bake_sales", nil, false); err == nil {
		t.Error("SaveCategory() must reject unknown categories")
	}

	res, err = env.svc.SubmitResponse(ctx, jane.Token)
	if err != nil {
		t.Fatalf("SubmitResponse() failed: %v", err)
	}
	if res.TotalPoints() != 1000 {
		t.Errorf("TotalPoints() = %d, want 1000", res.TotalPoints())
	}

	// submission folds into the faculty year record
	rec, err := env.svc.GetRecord(ctx, "jdoe@test.edu", "24-25")
	if err != nil {
		t.Fatalf("GetRecord() failed: %v", err)
	}
	if rec.Points["citizenship"] != 1000 || rec.SurveyTotal != 1000 {
		t.Errorf("record points = %v total = %d", rec.Points, rec.SurveyTotal)
	}
	if len(rec.Imported["citizenship"]["committees"].Entries) != 1 {
		t.Error("submitted entries missing from the record's imported tree")
	}

	if _, err := env.svc.SubmitResponse(ctx, jane.Token); !errors.Is(err, survey.ErrAlreadySubmitted) {
		t.Errorf("second submit err = %v, want ErrAlreadySubmitted", err)
	}
	if _, err := env.svc.SaveCategory(ctx, jane.Token, "citizenship", nil, false); !errors.Is(err, survey.ErrAlreadySubmitted) {
		t.Errorf("save after submit err = %v, want ErrAlreadySubmitted", err)
	}

	// a reminder run skips whoever already submitted
	reminded, err := env.svc.SendReminders(ctx, cmp.ID)
	if err != nil {
		t.Fatalf("SendReminders() failed: %v", err)
	}
	if reminded != 1 {
		t.Errorf("reminded = %d, want 1", reminded)
	}

	// unlock reopens the survey for edits
	inv, err = env.svc.UnlockInvitation(ctx, jane.ID)
	if err != nil {
		t.Fatalf("UnlockInvitation() failed: %v", err)
	}
	if inv.Status != survey.InvitationInProgress || !inv.SubmittedAt.IsZero() {
		t.Errorf("invitation after unlock = %+v", inv)
	}
	if _, err := env.svc.UnlockInvitation(ctx, jane.ID); !errors.Is(err, survey.ErrNotSubmitted) {
		t.Errorf("second unlock err = %v, want ErrNotSubmitted", err)
	}

	if _, err := env.svc.SubmitResponse(ctx, jane.Token); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	rec, _ = env.svc.GetRecord(ctx, "jdoe@test.edu", "24-25")
	if rec.SurveyTotal != 1000 {
		t.Errorf("total after resubmit = %d, want 1000 (not doubled)", rec.SurveyTotal)
	}
}

func TestSaveCategory_ClosedCampaign(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	now := time.Now().UTC()
	cmp, err := env.svc.CreateCampaign(ctx, survey.NewCampaign{
		YearCode: "24-25",
		Quarter:  survey.QuarterQ1,
		Name:     "Closed",
		OpensAt:  now.Add(-48 * time.Hour),
		ClosesAt: now.Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateCampaign() failed: %v", err)
	}
	if _, err := env.svc.SendInvitations(ctx, cmp.ID); err != nil {
		t.Fatalf("SendInvitations() failed: %v", err)
	}
	invs, _ := env.svc.CampaignInvitations(ctx, cmp.ID)

	_, err = env.svc.SaveCategory(ctx, invs[0].Token, "citizenship", survey.CategoryData{
		"committees": {Trigger: "yes", Entries: []survey.Entry{{Type: "unmc"}}},
	}, false)
	if !errors.Is(err, survey.ErrCampaignClosed) {
		t.Errorf("save on closed campaign err = %v, want ErrCampaignClosed", err)
	}
	if _, err := env.svc.SubmitResponse(ctx, invs[0].Token); !errors.Is(err, survey.ErrCampaignClosed) {
		t.Errorf("submit on closed campaign err = %v, want ErrCampaignClosed", err)
	}
}

func TestDraftResponse_CarriesPriorQuarters(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	q1 := newOpenCampaign(t, env, survey.QuarterQ1)
	if _, err := env.svc.SendInvitations(ctx, q1.ID); err != nil {
		t.Fatalf("SendInvitations() failed: %v", err)
	}
	invs, _ := env.svc.CampaignInvitations(ctx, q1.ID)
	var token string
	for _, inv := range invs {
		if inv.FacultyEmail == "jdoe@test.edu" {
			token = inv.Token
		}
	}

	// committees is a report-once subsection; submit it in Q1
	if _, err := env.svc.SaveCategory(ctx, token, "citizenship", survey.CategoryData{
		"committees": {Trigger: "yes", Entries: []survey.Entry{{Type: "unmc"}}},
	}, true); err != nil {
		t.Fatalf("SaveCategory() failed: %v", err)
	}
	if _, err := env.svc.SubmitResponse(ctx, token); err != nil {
		t.Fatalf("SubmitResponse() failed: %v", err)
	}

	q2 := newOpenCampaign(t, env, survey.QuarterQ2)
	if _, err := env.svc.SendInvitations(ctx, q2.ID); err != nil {
		t.Fatalf("SendInvitations() failed: %v", err)
	}
	invs, _ = env.svc.CampaignInvitations(ctx, q2.ID)
	for _, inv := range invs {
		if inv.FacultyEmail == "jdoe@test.edu" {
			token = inv.Token
		}
	}

	_, _, res, err := env.svc.AccessByToken(ctx, token)
	if err != nil {
		t.Fatalf("AccessByToken() failed: %v", err)
	}
	carried := res.Data["citizenship"]["committees"].Entries
	if len(carried) != 1 {
		t.Fatalf("carried entries = %d, want 1", len(carried))
	}
	if carried[0].Source != survey.SourceCarried || carried[0].CarriedFrom != survey.QuarterQ1 {
		t.Errorf("carried entry = %+v, want tagged carried_forward from Q1", carried[0])
	}

	// submitting Q2 without touching the carried copy must not double-count Q1
	if _, err := env.svc.SubmitResponse(ctx, token); err != nil {
		t.Fatalf("SubmitResponse() failed: %v", err)
	}
	rec, _ := env.svc.GetRecord(ctx, "jdoe@test.edu", "24-25")
	if rec.SurveyTotal != 1000 {
		t.Errorf("year total = %d, want 1000 (carried copies score nothing)", rec.SurveyTotal)
	}
}

// failingMailer satisfies core.EmailService with a broken synchronous path.
type failingMailer struct{}

func (failingMailer) SendMessages(messages ...*core.EmailMessage) {}

func (failingMailer) SendMessage(msg *core.EmailMessage) error {
	return errors.New("smtp connection refused")
}

func TestSendInvitations_LogsFailedSends(t *testing.T) {
	ctx := context.Background()

	db := inmemdb.NewDB()
	repo := inmemdb.NewSurveyRepository(db)
	reg := activity.NewRegistry(inmemdb.NewActivityTypeRepository(db))
	validate, _ := core.NewValidator()
	conf := &core.Config{
		AppName:         "AAA Summarizer",
		FrontendBaseURL: "http://localhost:3000",
	}
	deptSvc := department.NewService(inmemdb.NewDepartmentRepository(db), validate)
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	svc := survey.NewService(
		conf, nil, repo, reg, rosterStub{"jdoe@test.edu": "Doe, Jane"}, deptSvc,
		failingMailer{}, logger, validate,
	)

	now := time.Now().UTC()
	cmp, err := svc.CreateCampaign(ctx, survey.NewCampaign{
		YearCode: "24-25",
		Quarter:  survey.QuarterQ1,
		Name:     "Q1 Survey",
		OpensAt:  now.Add(-time.Hour),
		ClosesAt: now.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateCampaign() failed: %v", err)
	}

	sent, err := svc.SendInvitations(ctx, cmp.ID)
	if err != nil {
		t.Fatalf("SendInvitations() failed: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0 when delivery fails", sent)
	}

	logs := repo.EmailLogs()
	if len(logs) != 1 {
		t.Fatalf("email logs = %d, want the failed attempt recorded", len(logs))
	}
	lg := logs[0]
	if lg.Status != survey.EmailFailed {
		t.Errorf("log status = %q, want %q", lg.Status, survey.EmailFailed)
	}
	if lg.ErrorMessage != "smtp connection refused" {
		t.Errorf("log error = %q, want the delivery error kept", lg.ErrorMessage)
	}
	if lg.Recipient != "jdoe@test.edu" || lg.EmailType != survey.EmailInvitation {
		t.Errorf("log = %+v", lg)
	}

	// the invitation row stays, with no send timestamp
	invs, err := svc.CampaignInvitations(ctx, cmp.ID)
	if err != nil {
		t.Fatalf("CampaignInvitations() failed: %v", err)
	}
	if len(invs) != 1 || !invs[0].EmailSentAt.IsZero() {
		t.Errorf("invitations = %+v, want one with EmailSentAt unset", invs)
	}
}
