package survey

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/activity"
)

var (
	// errors
	ErrRecordNotFound     = errors.New("survey record not found")
	ErrImportNotFound     = errors.New("import not found")
	ErrCampaignNotFound   = errors.New("campaign not found")
	ErrCampaignExists     = errors.New("a campaign for this year and quarter already exists")
	ErrCampaignClosed     = errors.New("campaign is not open for submissions")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrResponseNotFound   = errors.New("response not found")
	ErrAlreadySubmitted   = errors.New("survey has already been submitted")
	ErrNotSubmitted       = errors.New("survey has not been submitted")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrConfigNotFound     = errors.New("survey config not found")
)

type (
	Repository interface {
		// records
		GetRecord(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) (Record, error)
		QueryRecordsByYear(ctx context.Context, yearCode string, exec ...core.DBExecutor) ([]Record, error)
		CreateRecord(ctx context.Context, rec Record, exec ...core.DBExecutor) (Record, error)
		UpdateRecord(ctx context.Context, rec Record, exec ...core.DBExecutor) (Record, error)

		// imports
		CreateImport(ctx context.Context, imp Import, exec ...core.DBExecutor) (Import, error)
		QueryImports(ctx context.Context, yearCode string, exec ...core.DBExecutor) ([]Import, error)

		// campaigns
		CreateCampaign(ctx context.Context, cmp Campaign, exec ...core.DBExecutor) (Campaign, error)
		GetCampaignByID(ctx context.Context, id string, exec ...core.DBExecutor) (Campaign, error)
		GetCampaignByYearQuarter(ctx context.Context, yearCode, quarter string, exec ...core.DBExecutor) (Campaign, error)
		QueryCampaigns(ctx context.Context, yearCode string, exec ...core.DBExecutor) ([]Campaign, error)
		UpdateCampaign(ctx context.Context, cmp Campaign, exec ...core.DBExecutor) (Campaign, error)

		// invitations
		CreateInvitation(ctx context.Context, inv Invitation, exec ...core.DBExecutor) (Invitation, error)
		GetInvitationByID(ctx context.Context, id string, exec ...core.DBExecutor) (Invitation, error)
		GetInvitationByToken(ctx context.Context, token string, exec ...core.DBExecutor) (Invitation, error)
		GetInvitation(ctx context.Context, campaignID, email string, exec ...core.DBExecutor) (Invitation, error)
		QueryInvitationsByCampaign(ctx context.Context, campaignID string, exec ...core.DBExecutor) ([]Invitation, error)
		UpdateInvitation(ctx context.Context, inv Invitation, exec ...core.DBExecutor) (Invitation, error)

		// responses
		GetResponseByInvitation(ctx context.Context, invitationID string, exec ...core.DBExecutor) (Response, error)
		CreateResponse(ctx context.Context, res Response, exec ...core.DBExecutor) (Response, error)
		UpdateResponse(ctx context.Context, res Response, exec ...core.DBExecutor) (Response, error)
		QuerySubmittedResponses(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) ([]QuarterSubmission, error)
		QuerySubmittedResponsePoints(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) ([]map[string]int, error)

		// audit
		CreateResponseHistory(ctx context.Context, hist ResponseHistory, exec ...core.DBExecutor) error
		CreateEmailLog(ctx context.Context, log EmailLog, exec ...core.DBExecutor) error

		// per-year config override
		GetConfigOverride(ctx context.Context, yearCode string, exec ...core.DBExecutor) (*Config, error)
	}

	// TypeSource provides the current activity type schedule. Satisfied by
	// *activity.Registry.
	TypeSource interface {
		AllActive(ctx context.Context) ([]activity.ActivityType, error)
	}

	// Roster resolves active faculty for invitation fan-out and import
	// matching: lowercased email -> "Last, First".
	Roster interface {
		ActiveEmailSet(ctx context.Context) (map[string]string, error)
	}

	// DeptEnsurer guarantees a departmental record exists alongside the survey
	// record for each (faculty, year).
	DeptEnsurer interface {
		EnsureRecord(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) error
	}

	Service struct {
		conf     *core.Config
		db       core.DB
		repo     Repository
		types    TypeSource
		roster   Roster
		dept     DeptEnsurer
		mailSvc  core.EmailService
		logger   core.Logger
		validate *validator.Validate
	}
)

func NewService(
	conf *core.Config,
	db core.DB,
	repo Repository,
	types TypeSource,
	roster Roster,
	dept DeptEnsurer,
	mailSvc core.EmailService,
	logger core.Logger,
	validate *validator.Validate,
) *Service {
	return &Service{
		conf:     conf,
		db:       db,
		repo:     repo,
		types:    types,
		roster:   roster,
		dept:     dept,
		mailSvc:  mailSvc,
		logger:   logger,
		validate: validate,
	}
}

// begin starts a transaction, or hands out a no-op one when the service runs
// on in-memory repositories (tests).
func (svc *Service) begin(ctx context.Context) (core.DBTransactor, error) {
	if svc.db == nil {
		return core.NoopTx{}, nil
	}
	return svc.db.BeginTx(ctx, nil)
}

// ConfigForYear returns the year's survey structure, preferring a stored
// override over the stock config.
func (svc *Service) ConfigForYear(ctx context.Context, yearCode string) (*Config, error) {
	cfg, err := svc.repo.GetConfigOverride(ctx, yearCode)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func (svc *Service) aggregator(ctx context.Context, yearCode string) (*Config, *Aggregator, error) {
	cfg, err := svc.ConfigForYear(ctx, yearCode)
	if err != nil {
		return nil, nil, err
	}
	types, err := svc.types.AllActive(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cfg, NewAggregator(cfg, types), nil
}

// GetOrCreateRecord returns the (faculty, year) record, creating an empty one
// on first touch.
func (svc *Service) GetOrCreateRecord(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) (Record, error) {
	email = core.CleanString(email, true /* lower */)
	rec, err := svc.repo.GetRecord(ctx, email, yearCode, exec...)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return Record{}, err
	}
	now := time.Now().UTC()
	rec = Record{
		ID:           uuid.New().String(),
		FacultyEmail: email,
		YearCode:     yearCode,
		Imported:     make(Tree),
		Manual:       make(Tree),
		Points:       make(map[string]int),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateRecord(ctx, rec, exec...)
}

// GetRecord returns the stored record without creating one.
func (svc *Service) GetRecord(ctx context.Context, email, yearCode string) (Record, error) {
	return svc.repo.GetRecord(ctx, core.CleanString(email, true /* lower */), yearCode)
}

func (svc *Service) QueryRecordsByYear(ctx context.Context, yearCode string) ([]Record, error) {
	return svc.repo.QueryRecordsByYear(ctx, yearCode)
}

func (svc *Service) QueryImports(ctx context.Context, yearCode string) ([]Import, error) {
	return svc.repo.QueryImports(ctx, yearCode)
}

// MergedView assembles the display tree for one faculty year: imported plus
// manual entries, then carry-forward injection from prior quarter submissions.
// Entries tagged carried_forward are display copies; their points already live
// in the stored totals of their source quarter.
func (svc *Service) MergedView(ctx context.Context, email, yearCode, currentQuarter string) (Tree, error) {
	email = core.CleanString(email, true /* lower */)
	rec, err := svc.repo.GetRecord(ctx, email, yearCode)
	if err != nil {
		return nil, err
	}
	cfg, err := svc.ConfigForYear(ctx, yearCode)
	if err != nil {
		return nil, err
	}
	merged := Merge(rec.Imported, rec.Manual, svc.logger)
	if currentQuarter == "" {
		return merged, nil
	}
	prior, err := svc.repo.QuerySubmittedResponses(ctx, email, yearCode)
	if err != nil {
		return nil, err
	}
	return CarryForward(merged, cfg, currentQuarter, prior), nil
}

// ParseImport parses a survey CSV against the year's config and current point
// schedule, without writing anything. The result can be previewed and then
// handed to ImportConfirm.
func (svc *Service) ParseImport(ctx context.Context, r io.Reader, yearCode string) (*ParsedImport, error) {
	cfg, agg, err := svc.aggregator(ctx, yearCode)
	if err != nil {
		return nil, err
	}
	return ParseCSV(r, cfg, agg)
}

// ImportConfirm applies a parsed survey CSV atomically: for every matched
// faculty the whole imported tree and stored totals are replaced; manual
// entries are never touched. Emails absent from the active roster are recorded
// on the import audit row, never silently dropped. The transaction commits all
// records or none.
func (svc *Service) ImportConfirm(ctx context.Context, parsed *ParsedImport, yearCode, filename, importedBy string) (Import, error) {
	roster, err := svc.roster.ActiveEmailSet(ctx)
	if err != nil {
		return Import{}, err
	}

	tx, err := svc.begin(ctx)
	if err != nil {
		return Import{}, errors.Wrap(err, "beginning import transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	imp := Import{
		ID:         uuid.New().String(),
		YearCode:   yearCode,
		Filename:   filename,
		ImportedAt: now,
		ImportedBy: importedBy,
	}

	for email, fac := range parsed.Faculty {
		if _, ok := roster[email]; !ok {
			imp.UnmatchedEmails = append(imp.UnmatchedEmails, email)
			continue
		}

		rec, err := svc.GetOrCreateRecord(ctx, email, yearCode, tx)
		if err != nil {
			return Import{}, err
		}
		rec.ImportID = imp.ID
		rec.Imported = fac.Activities
		rec.Quarters = fac.Quarters
		rec.HasIncomplete = fac.HasIncomplete
		rec.Points = fac.Totals
		rec.SurveyTotal = fac.Total
		rec.UpdatedAt = now
		if _, err := svc.repo.UpdateRecord(ctx, rec, tx); err != nil {
			return Import{}, err
		}
		if err := svc.dept.EnsureRecord(ctx, email, yearCode, tx); err != nil {
			return Import{}, err
		}

		imp.FacultyCount++
		imp.ActivityCount += fac.ActivityCount
	}

	imp, err = svc.repo.CreateImport(ctx, imp, tx)
	if err != nil {
		return Import{}, err
	}
	if err := tx.Commit(); err != nil {
		return Import{}, errors.Wrap(err, "committing import")
	}

	svc.logger.Info(fmt.Sprintf(
		"survey import %s: %d faculty, %d activities, %d unmatched",
		imp.ID, imp.FacultyCount, imp.ActivityCount, len(imp.UnmatchedEmails),
	))
	return imp, nil
}

// --- manual entries ---

// AddManualEntry appends an entry to the faculty member's manual tree with a
// generated stable ID. Manual entries survive every import.
func (svc *Service) AddManualEntry(ctx context.Context, email, yearCode string, ne NewManualEntry) (Entry, error) {
	cfg, err := svc.ConfigForYear(ctx, yearCode)
	if err != nil {
		return Entry{}, err
	}
	if err := ne.Validate(svc.validate, cfg); err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:           uuid.New().String(),
		Type:         ne.Type,
		Count:        ne.Count,
		ImpactFactor: ne.ImpactFactor,
		DOI:          ne.DOI,
		Source:       SourceManual,
		Fields:       ne.Fields,
	}

	rec, err := svc.GetOrCreateRecord(ctx, email, yearCode)
	if err != nil {
		return Entry{}, err
	}
	if rec.Manual == nil {
		rec.Manual = make(Tree)
	}
	if rec.Manual[ne.Category] == nil {
		rec.Manual[ne.Category] = make(CategoryData)
	}
	data := rec.Manual[ne.Category][ne.Subsection]
	data.Trigger = "yes"
	data.Entries = append(data.Entries, entry)
	rec.Manual[ne.Category][ne.Subsection] = data
	rec.UpdatedAt = time.Now().UTC()

	if _, err := svc.repo.UpdateRecord(ctx, rec); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// UpdateManualEntry replaces the fields of the manual entry with the given ID.
func (svc *Service) UpdateManualEntry(ctx context.Context, email, yearCode, entryID string, ne NewManualEntry) (Entry, error) {
	cfg, err := svc.ConfigForYear(ctx, yearCode)
	if err != nil {
		return Entry{}, err
	}
	if err := ne.Validate(svc.validate, cfg); err != nil {
		return Entry{}, err
	}

	rec, err := svc.GetRecord(ctx, email, yearCode)
	if err != nil {
		return Entry{}, err
	}

	var updated Entry
	found := false
	for cat, subs := range rec.Manual {
		for sub, data := range subs {
			for i, e := range data.Entries {
				if e.ID != entryID {
					continue
				}
				e.Type = ne.Type
				e.Count = ne.Count
				e.ImpactFactor = ne.ImpactFactor
				e.DOI = ne.DOI
				e.Fields = ne.Fields
				data.Entries[i] = e
				rec.Manual[cat][sub] = data
				updated, found = e, true
			}
		}
	}
	if !found {
		return Entry{}, ErrEntryNotFound
	}

	rec.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateRecord(ctx, rec); err != nil {
		return Entry{}, err
	}
	return updated, nil
}

// DeleteManualEntry removes the manual entry with the given ID.
func (svc *Service) DeleteManualEntry(ctx context.Context, email, yearCode, entryID string) error {
	rec, err := svc.GetRecord(ctx, email, yearCode)
	if err != nil {
		return err
	}

	found := false
	for cat, subs := range rec.Manual {
		for sub, data := range subs {
			kept := data.Entries[:0]
			for _, e := range data.Entries {
				if e.ID == entryID {
					found = true
					continue
				}
				kept = append(kept, e)
			}
			data.Entries = kept
			if len(kept) == 0 {
				delete(rec.Manual[cat], sub)
			} else {
				rec.Manual[cat][sub] = data
			}
		}
	}
	if !found {
		return ErrEntryNotFound
	}

	rec.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateRecord(ctx, rec)
	return err
}

// --- campaigns ---

func (svc *Service) CreateCampaign(ctx context.Context, nc NewCampaign) (Campaign, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Campaign{}, err
	}
	if _, err := svc.repo.GetCampaignByYearQuarter(ctx, nc.YearCode, nc.Quarter); err == nil {
		return Campaign{}, core.NewValidationError(ErrCampaignExists,
			core.FieldError{Field: "quarter", Error: ErrCampaignExists.Error()})
	} else if !errors.Is(err, ErrCampaignNotFound) {
		return Campaign{}, err
	}

	now := time.Now().UTC()
	cmp := Campaign{
		ID:               uuid.New().String(),
		YearCode:         nc.YearCode,
		Quarter:          nc.Quarter,
		Name:             nc.Name,
		OpensAt:          nc.OpensAt,
		ClosesAt:         nc.ClosesAt,
		IsActive:         true,
		EmailFromName:    nc.EmailFromName,
		EmailFromAddress: nc.EmailFromAddress,
		EmailSubject:     nc.EmailSubject,
		EmailBody:        nc.EmailBody,
		ReminderSubject:  nc.ReminderSubject,
		ReminderBody:     nc.ReminderBody,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateCampaign(ctx, cmp)
}

func (svc *Service) GetCampaign(ctx context.Context, id string) (Campaign, error) {
	return svc.repo.GetCampaignByID(ctx, id)
}

func (svc *Service) QueryCampaigns(ctx context.Context, yearCode string) ([]Campaign, error) {
	return svc.repo.QueryCampaigns(ctx, yearCode)
}

func (svc *Service) CampaignInvitations(ctx context.Context, campaignID string) ([]Invitation, error) {
	return svc.repo.QueryInvitationsByCampaign(ctx, campaignID)
}

// SendInvitations creates an invitation for every active roster member who
// does not have one yet and emails them their personal survey link. Each email
// attempt is logged; one failure never aborts the rest.
func (svc *Service) SendInvitations(ctx context.Context, campaignID string) (int, error) {
	cmp, err := svc.repo.GetCampaignByID(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	roster, err := svc.roster.ActiveEmailSet(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	now := time.Now().UTC()
	for email, name := range roster {
		if _, err := svc.repo.GetInvitation(ctx, cmp.ID, email); err == nil {
			continue
		} else if !errors.Is(err, ErrInvitationNotFound) {
			return sent, err
		}

		inv := Invitation{
			ID:           uuid.New().String(),
			CampaignID:   cmp.ID,
			FacultyEmail: email,
			Token:        GenerateToken(),
			Status:       InvitationPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		inv, err := svc.repo.CreateInvitation(ctx, inv)
		if err != nil {
			return sent, err
		}
		if err := svc.sendCampaignEmail(ctx, cmp, inv, name, EmailInvitation); err != nil {
			svc.logger.Warn(fmt.Sprintf("invitation email to %s failed: %v", email, err))
			continue
		}
		inv.EmailSentAt = now
		if _, err := svc.repo.UpdateInvitation(ctx, inv); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// SendReminders emails every invitee who has not submitted yet.
func (svc *Service) SendReminders(ctx context.Context, campaignID string) (int, error) {
	cmp, err := svc.repo.GetCampaignByID(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	roster, err := svc.roster.ActiveEmailSet(ctx)
	if err != nil {
		return 0, err
	}
	invs, err := svc.repo.QueryInvitationsByCampaign(ctx, cmp.ID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, inv := range invs {
		if inv.Status == InvitationSubmitted {
			continue
		}
		name := roster[inv.FacultyEmail]
		if err := svc.sendCampaignEmail(ctx, cmp, inv, name, EmailReminder); err != nil {
			svc.logger.Warn(fmt.Sprintf("reminder email to %s failed: %v", inv.FacultyEmail, err))
			continue
		}
		sent++
	}
	return sent, nil
}

func (svc *Service) sendCampaignEmail(ctx context.Context, cmp Campaign, inv Invitation, displayName, emailType string) error {
	subject, body := cmp.EmailSubject, cmp.EmailBody
	if emailType == EmailReminder {
		subject, body = cmp.ReminderSubject, cmp.ReminderBody
	}
	if subject == "" {
		subject = fmt.Sprintf("%s Faculty Activity Survey", cmp.Name)
	}
	if body == "" {
		body = "Hello {first_name},\n\nPlease complete your faculty activity survey: {survey_link}\n\nDue by {deadline}."
	}

	first, last := splitDisplayName(displayName)
	body = core.ExpandPlaceholders(body, map[string]string{
		"first_name":  first,
		"last_name":   last,
		"survey_link": fmt.Sprintf("%s/survey/%s", svc.conf.FrontendBaseURL, inv.Token),
		"deadline":    cmp.ClosesAt.Format("January 2, 2006"),
		"status":      inv.Status,
	})

	msg := &core.EmailMessage{
		To:          []mail.Address{{Name: displayName, Address: inv.FacultyEmail}},
		Subject:     subject,
		TextContent: body,
	}
	sendErr := svc.mailSvc.SendMessage(msg)

	entry := EmailLog{
		ID:           uuid.New().String(),
		InvitationID: inv.ID,
		EmailType:    emailType,
		Recipient:    inv.FacultyEmail,
		Subject:      subject,
		Status:       EmailSent,
		SentAt:       time.Now().UTC(),
	}
	if sendErr != nil {
		entry.Status = EmailFailed
		entry.ErrorMessage = sendErr.Error()
	}
	if err := svc.repo.CreateEmailLog(ctx, entry); err != nil {
		return err
	}
	return sendErr
}

// splitDisplayName splits "Last, First" into its halves; a plain name comes
// back as the first name.
func splitDisplayName(name string) (first, last string) {
	for i := 0; i < len(name); i++ {
		if name[i] == ',' {
			return core.CleanString(name[i+1:]), core.CleanString(name[:i])
		}
	}
	return name, ""
}

// --- token access and submission ---

// AccessByToken resolves an invitation token, marks first access, and returns
// the campaign, invitation and draft response (created on first access with
// carry-forward entries pre-filled).
func (svc *Service) AccessByToken(ctx context.Context, token string) (Campaign, Invitation, Response, error) {
	inv, err := svc.repo.GetInvitationByToken(ctx, token)
	if err != nil {
		return Campaign{}, Invitation{}, Response{}, err
	}
	cmp, err := svc.repo.GetCampaignByID(ctx, inv.CampaignID)
	if err != nil {
		return Campaign{}, Invitation{}, Response{}, err
	}

	now := time.Now().UTC()
	if inv.FirstAccessedAt.IsZero() {
		inv.FirstAccessedAt = now
		if inv.Status == InvitationPending {
			inv.Status = InvitationInProgress
		}
		inv.UpdatedAt = now
		if inv, err = svc.repo.UpdateInvitation(ctx, inv); err != nil {
			return Campaign{}, Invitation{}, Response{}, err
		}
	}

	res, err := svc.repo.GetResponseByInvitation(ctx, inv.ID)
	if errors.Is(err, ErrResponseNotFound) {
		res, err = svc.newDraftResponse(ctx, cmp, inv, now)
	}
	if err != nil {
		return Campaign{}, Invitation{}, Response{}, err
	}
	return cmp, inv, res, nil
}

func (svc *Service) newDraftResponse(ctx context.Context, cmp Campaign, inv Invitation, now time.Time) (Response, error) {
	cfg, err := svc.ConfigForYear(ctx, cmp.YearCode)
	if err != nil {
		return Response{}, err
	}
	prior, err := svc.repo.QuerySubmittedResponses(ctx, inv.FacultyEmail, cmp.YearCode)
	if err != nil {
		return Response{}, err
	}
	res := Response{
		ID:           uuid.New().String(),
		InvitationID: inv.ID,
		Data:         CarryForward(make(Tree), cfg, cmp.Quarter, prior),
		Complete:     make(map[string]bool),
		Points:       make(map[string]int),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err = svc.repo.CreateResponse(ctx, res)
	if err != nil {
		return Response{}, err
	}
	err = svc.repo.CreateResponseHistory(ctx, ResponseHistory{
		ID:         uuid.New().String(),
		ResponseID: res.ID,
		Action:     HistoryCreate,
		Data:       res.Data.Clone(),
		Points:     map[string]int{},
		CreatedAt:  now,
	})
	return res, err
}

// SaveCategory stores one category's draft data and recomputes its points.
// Carried-forward display copies in the payload are stripped before saving:
// they are read-only here and their points belong to their source quarter.
func (svc *Service) SaveCategory(ctx context.Context, token, categoryKey string, data CategoryData, complete bool) (Response, error) {
	cmp, inv, res, err := svc.AccessByToken(ctx, token)
	if err != nil {
		return Response{}, err
	}
	if inv.Status == InvitationSubmitted {
		return Response{}, ErrAlreadySubmitted
	}
	if !cmp.IsOpen(time.Now().UTC()) {
		return Response{}, ErrCampaignClosed
	}

	cfg, agg, err := svc.aggregator(ctx, cmp.YearCode)
	if err != nil {
		return Response{}, err
	}
	if _, ok := cfg.Category(categoryKey); !ok {
		return Response{}, core.NewValidationError(nil,
			core.FieldError{Field: "category", Error: "unknown category"})
	}

	stripped := make(CategoryData, len(data))
	for sub, subData := range data {
		kept := make([]Entry, 0, len(subData.Entries))
		for _, e := range subData.Entries {
			if e.CarriedFrom != "" {
				continue
			}
			if e.ID == "" {
				e.ID = uuid.New().String()
			}
			kept = append(kept, e)
		}
		stripped[sub] = Subsection{Trigger: subData.Trigger, Entries: kept}
	}

	if res.Data == nil {
		res.Data = make(Tree)
	}
	res.Data[categoryKey] = stripped
	res.Complete[categoryKey] = complete
	res.Points[categoryKey] = agg.CategoryPoints(categoryKey, stripped)
	res.UpdatedAt = time.Now().UTC()

	res, err = svc.repo.UpdateResponse(ctx, res)
	if err != nil {
		return Response{}, err
	}
	err = svc.repo.CreateResponseHistory(ctx, ResponseHistory{
		ID:         uuid.New().String(),
		ResponseID: res.ID,
		Action:     HistoryUpdate,
		Category:   categoryKey,
		Data:       res.Data.Clone(),
		Points:     res.Points,
		CreatedAt:  res.UpdatedAt,
	})
	return res, err
}

// SubmitResponse finalizes the survey: recomputes all category points, folds
// the response into the faculty record's imported tree and stored totals,
// marks the invitation submitted and emails a confirmation. Atomic.
func (svc *Service) SubmitResponse(ctx context.Context, token string) (Response, error) {
	cmp, inv, res, err := svc.AccessByToken(ctx, token)
	if err != nil {
		return Response{}, err
	}
	if inv.Status == InvitationSubmitted {
		return Response{}, ErrAlreadySubmitted
	}
	now := time.Now().UTC()
	if !cmp.IsOpen(now) {
		return Response{}, ErrCampaignClosed
	}

	cfg, agg, err := svc.aggregator(ctx, cmp.YearCode)
	if err != nil {
		return Response{}, err
	}
	for _, catKey := range cfg.Order {
		res.Points[catKey] = agg.CategoryPoints(catKey, res.Data[catKey])
	}
	res.UpdatedAt = now

	tx, err := svc.begin(ctx)
	if err != nil {
		return Response{}, errors.Wrap(err, "beginning submit transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if res, err = svc.repo.UpdateResponse(ctx, res, tx); err != nil {
		return Response{}, err
	}

	inv.Status = InvitationSubmitted
	inv.SubmittedAt = now
	inv.UpdatedAt = now
	if inv, err = svc.repo.UpdateInvitation(ctx, inv, tx); err != nil {
		return Response{}, err
	}

	if err = svc.foldIntoRecord(ctx, cmp, inv, res, cfg, tx); err != nil {
		return Response{}, err
	}

	err = svc.repo.CreateResponseHistory(ctx, ResponseHistory{
		ID:         uuid.New().String(),
		ResponseID: res.ID,
		Action:     HistorySubmit,
		Data:       res.Data.Clone(),
		Points:     res.Points,
		CreatedAt:  now,
	}, tx)
	if err != nil {
		return Response{}, err
	}
	if err := tx.Commit(); err != nil {
		return Response{}, errors.Wrap(err, "committing submission")
	}

	svc.sendConfirmation(ctx, cmp, inv, res)
	return res, nil
}

// foldIntoRecord replaces the quarter's contribution in the faculty record:
// the response tree becomes part of the imported side (manual entries
// untouched) and the year's totals are recomputed as the sum of all submitted
// quarters' stored points.
func (svc *Service) foldIntoRecord(ctx context.Context, cmp Campaign, inv Invitation, res Response, cfg *Config, tx core.DBTransactor) error {
	rec, err := svc.GetOrCreateRecord(ctx, inv.FacultyEmail, cmp.YearCode, tx)
	if err != nil {
		return err
	}
	if rec.Imported == nil {
		rec.Imported = make(Tree)
	}
	mergeQuarterIntoUnion(rec.Imported, QuarterSubmission{Quarter: cmp.Quarter, Data: stripCarried(res.Data)}, cfg)
	if !containsString(rec.Quarters, cmp.Quarter) {
		rec.Quarters = append(rec.Quarters, cmp.Quarter)
	}

	// recompute year totals from stored per-quarter points, this quarter included
	totals, err := svc.yearTotals(ctx, inv.FacultyEmail, cmp.YearCode, tx)
	if err != nil {
		return err
	}
	rec.Points = totals
	rec.SurveyTotal = 0
	for _, pts := range totals {
		rec.SurveyTotal += pts
	}
	rec.UpdatedAt = time.Now().UTC()

	if err := svc.dept.EnsureRecord(ctx, inv.FacultyEmail, cmp.YearCode, tx); err != nil {
		return err
	}
	_, err = svc.repo.UpdateRecord(ctx, rec, tx)
	return err
}

// stripCarried drops carry-forward display copies from a tree; they belong to
// their source quarter's stored data.
func stripCarried(tree Tree) Tree {
	out := make(Tree, len(tree))
	for cat, subs := range tree {
		for sub, data := range subs {
			kept := make([]Entry, 0, len(data.Entries))
			for _, e := range data.Entries {
				if e.CarriedFrom == "" {
					kept = append(kept, e)
				}
			}
			if len(kept) == 0 && data.Trigger == "" {
				continue
			}
			if out[cat] == nil {
				out[cat] = make(CategoryData)
			}
			out[cat][sub] = Subsection{Trigger: data.Trigger, Entries: kept}
		}
	}
	return out
}

// yearTotals sums the stored per-category points of every submitted response
// in the year. Stored at submission time, never re-derived from entries, so
// later point-schedule edits leave past quarters unchanged.
func (svc *Service) yearTotals(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) (map[string]int, error) {
	points, err := svc.repo.QuerySubmittedResponsePoints(ctx, email, yearCode, exec...)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int)
	for _, byCat := range points {
		for cat, pts := range byCat {
			totals[cat] += pts
		}
	}
	return totals, nil
}

func (svc *Service) sendConfirmation(ctx context.Context, cmp Campaign, inv Invitation, res Response) {
	subject := fmt.Sprintf("%s survey received", cmp.Name)
	body := fmt.Sprintf(
		"Your faculty activity survey for %s %s has been received.\nTotal points this quarter: %d.",
		cmp.YearCode, cmp.Quarter, res.TotalPoints(),
	)
	sendErr := svc.mailSvc.SendMessage(&core.EmailMessage{
		To:          []mail.Address{{Address: inv.FacultyEmail}},
		Subject:     subject,
		TextContent: body,
	})

	entry := EmailLog{
		ID:           uuid.New().String(),
		InvitationID: inv.ID,
		EmailType:    EmailConfirmation,
		Recipient:    inv.FacultyEmail,
		Subject:      subject,
		Status:       EmailSent,
		SentAt:       time.Now().UTC(),
	}
	if sendErr != nil {
		svc.logger.Warn(fmt.Sprintf("confirmation email to %s failed: %v", inv.FacultyEmail, sendErr))
		entry.Status = EmailFailed
		entry.ErrorMessage = sendErr.Error()
	}
	if err := svc.repo.CreateEmailLog(ctx, entry); err != nil {
		svc.logger.Warn(fmt.Sprintf("logging confirmation email for %s failed: %v", inv.FacultyEmail, err))
	}
}

// UnlockInvitation reopens a submitted survey for edits. The faculty record
// keeps the submitted data until resubmission replaces it.
func (svc *Service) UnlockInvitation(ctx context.Context, invitationID string) (Invitation, error) {
	inv, err := svc.repo.GetInvitationByID(ctx, invitationID)
	if err != nil {
		return Invitation{}, err
	}
	if inv.Status != InvitationSubmitted {
		return Invitation{}, ErrNotSubmitted
	}

	inv.Status = InvitationInProgress
	inv.SubmittedAt = time.Time{}
	inv.UpdatedAt = time.Now().UTC()
	if inv, err = svc.repo.UpdateInvitation(ctx, inv); err != nil {
		return Invitation{}, err
	}

	res, err := svc.repo.GetResponseByInvitation(ctx, inv.ID)
	if err != nil {
		return Invitation{}, err
	}
	err = svc.repo.CreateResponseHistory(ctx, ResponseHistory{
		ID:         uuid.New().String(),
		ResponseID: res.ID,
		Action:     HistoryUnlock,
		Data:       res.Data.Clone(),
		Points:     res.Points,
		CreatedAt:  inv.UpdatedAt,
	})
	return inv, err
}
