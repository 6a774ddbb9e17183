package inmemdb

import (
	"context"
	"sort"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/survey"
)

type surveyRepository struct {
	db *DB
}

var _ survey.Repository = (*surveyRepository)(nil)

func NewSurveyRepository(db *DB) *surveyRepository {
	return &surveyRepository{db: db}
}

func copyRecord(rec survey.Record) survey.Record {
	rec.Imported = rec.Imported.Clone()
	rec.Manual = rec.Manual.Clone()
	points := make(map[string]int, len(rec.Points))
	for k, v := range rec.Points {
		points[k] = v
	}
	rec.Points = points
	rec.Quarters = append([]string(nil), rec.Quarters...)
	return rec
}

func copyResponse(res survey.Response) survey.Response {
	res.Data = res.Data.Clone()
	complete := make(map[string]bool, len(res.Complete))
	for k, v := range res.Complete {
		complete[k] = v
	}
	res.Complete = complete
	points := make(map[string]int, len(res.Points))
	for k, v := range res.Points {
		points[k] = v
	}
	res.Points = points
	return res
}

// --- records ---

func (repo *surveyRepository) GetRecord(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) (survey.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.records[yearKey(email, yearCode)]; ok {
		return copyRecord(*rec), nil
	}
	return survey.Record{}, survey.ErrRecordNotFound
}

func (repo *surveyRepository) QueryRecordsByYear(ctx context.Context, yearCode string, exec ...core.DBExecutor) ([]survey.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var records []survey.Record
	for _, rec := range repo.db.records {
		if rec.YearCode == yearCode {
			records = append(records, copyRecord(*rec))
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].FacultyEmail < records[j].FacultyEmail })
	return records, nil
}

func (repo *surveyRepository) CreateRecord(ctx context.Context, rec survey.Record, exec ...core.DBExecutor) (survey.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored := copyRecord(rec)
	repo.db.records[yearKey(rec.FacultyEmail, rec.YearCode)] = &stored
	return rec, nil
}

func (repo *surveyRepository) UpdateRecord(ctx context.Context, rec survey.Record, exec ...core.DBExecutor) (survey.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := yearKey(rec.FacultyEmail, rec.YearCode)
	if _, ok := repo.db.records[key]; !ok {
		return survey.Record{}, survey.ErrRecordNotFound
	}
	stored := copyRecord(rec)
	repo.db.records[key] = &stored
	return rec, nil
}

// --- imports ---

func (repo *surveyRepository) CreateImport(ctx context.Context, imp survey.Import, exec ...core.DBExecutor) (survey.Import, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.imports[imp.ID] = &imp
	return imp, nil
}

func (repo *surveyRepository) QueryImports(ctx context.Context, yearCode string, exec ...core.DBExecutor) ([]survey.Import, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var imports []survey.Import
	for _, imp := range repo.db.imports {
		if imp.YearCode == yearCode {
			imports = append(imports, *imp)
		}
	}
	sort.Slice(imports, func(i, j int) bool { return imports[i].ImportedAt.After(imports[j].ImportedAt) })
	return imports, nil
}

// --- campaigns ---

func (repo *surveyRepository) CreateCampaign(ctx context.Context, cmp survey.Campaign, exec ...core.DBExecutor) (survey.Campaign, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.campaigns[cmp.ID] = &cmp
	return cmp, nil
}

func (repo *surveyRepository) GetCampaignByID(ctx context.Context, id string, exec ...core.DBExecutor) (survey.Campaign, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cmp, ok := repo.db.campaigns[id]; ok {
		return *cmp, nil
	}
	return survey.Campaign{}, survey.ErrCampaignNotFound
}

func (repo *surveyRepository) GetCampaignByYearQuarter(ctx context.Context, yearCode, quarter string, exec ...core.DBExecutor) (survey.Campaign, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, cmp := range repo.db.campaigns {
		if cmp.YearCode == yearCode && cmp.Quarter == quarter {
			return *cmp, nil
		}
	}
	return survey.Campaign{}, survey.ErrCampaignNotFound
}

func (repo *surveyRepository) QueryCampaigns(ctx context.Context, yearCode string, exec ...core.DBExecutor) ([]survey.Campaign, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var campaigns []survey.Campaign
	for _, cmp := range repo.db.campaigns {
		if cmp.YearCode == yearCode {
			campaigns = append(campaigns, *cmp)
		}
	}
	sort.Slice(campaigns, func(i, j int) bool { return campaigns[i].OpensAt.Before(campaigns[j].OpensAt) })
	return campaigns, nil
}

func (repo *surveyRepository) UpdateCampaign(ctx context.Context, cmp survey.Campaign, exec ...core.DBExecutor) (survey.Campaign, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.campaigns[cmp.ID]; !ok {
		return survey.Campaign{}, survey.ErrCampaignNotFound
	}
	repo.db.campaigns[cmp.ID] = &cmp
	return cmp, nil
}

// --- invitations ---

func (repo *surveyRepository) CreateInvitation(ctx context.Context, inv survey.Invitation, exec ...core.DBExecutor) (survey.Invitation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.invitations[inv.ID] = &inv
	return inv, nil
}

func (repo *surveyRepository) GetInvitationByID(ctx context.Context, id string, exec ...core.DBExecutor) (survey.Invitation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if inv, ok := repo.db.invitations[id]; ok {
		return *inv, nil
	}
	return survey.Invitation{}, survey.ErrInvitationNotFound
}

func (repo *surveyRepository) GetInvitationByToken(ctx context.Context, token string, exec ...core.DBExecutor) (survey.Invitation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, inv := range repo.db.invitations {
		if inv.Token == token {
			return *inv, nil
		}
	}
	return survey.Invitation{}, survey.ErrInvitationNotFound
}

func (repo *surveyRepository) GetInvitation(ctx context.Context, campaignID, email string, exec ...core.DBExecutor) (survey.Invitation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, inv := range repo.db.invitations {
		if inv.CampaignID == campaignID && inv.FacultyEmail == email {
			return *inv, nil
		}
	}
	return survey.Invitation{}, survey.ErrInvitationNotFound
}

func (repo *surveyRepository) QueryInvitationsByCampaign(ctx context.Context, campaignID string, exec ...core.DBExecutor) ([]survey.Invitation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var invs []survey.Invitation
	for _, inv := range repo.db.invitations {
		if inv.CampaignID == campaignID {
			invs = append(invs, *inv)
		}
	}
	sort.Slice(invs, func(i, j int) bool { return invs[i].FacultyEmail < invs[j].FacultyEmail })
	return invs, nil
}

func (repo *surveyRepository) UpdateInvitation(ctx context.Context, inv survey.Invitation, exec ...core.DBExecutor) (survey.Invitation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.invitations[inv.ID]; !ok {
		return survey.Invitation{}, survey.ErrInvitationNotFound
	}
	repo.db.invitations[inv.ID] = &inv
	return inv, nil
}

// --- responses ---

func (repo *surveyRepository) GetResponseByInvitation(ctx context.Context, invitationID string, exec ...core.DBExecutor) (survey.Response, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if res, ok := repo.db.responses[invitationID]; ok {
		return copyResponse(*res), nil
	}
	return survey.Response{}, survey.ErrResponseNotFound
}

func (repo *surveyRepository) CreateResponse(ctx context.Context, res survey.Response, exec ...core.DBExecutor) (survey.Response, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored := copyResponse(res)
	repo.db.responses[res.InvitationID] = &stored
	return res, nil
}

func (repo *surveyRepository) UpdateResponse(ctx context.Context, res survey.Response, exec ...core.DBExecutor) (survey.Response, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.responses[res.InvitationID]; !ok {
		return survey.Response{}, survey.ErrResponseNotFound
	}
	stored := copyResponse(res)
	repo.db.responses[res.InvitationID] = &stored
	return res, nil
}

type submittedResponse struct {
	quarter string
	res     *survey.Response
	opensAt int64
}

// submittedForYear resolves every submitted response for one faculty year,
// with its campaign quarter. Caller holds the read lock.
func (repo *surveyRepository) submittedForYear(email, yearCode string) []submittedResponse {
	var out []submittedResponse
	for _, inv := range repo.db.invitations {
		if inv.FacultyEmail != email || inv.Status != survey.InvitationSubmitted {
			continue
		}
		cmp, ok := repo.db.campaigns[inv.CampaignID]
		if !ok || cmp.YearCode != yearCode {
			continue
		}
		res, ok := repo.db.responses[inv.ID]
		if !ok {
			continue
		}
		out = append(out, submittedResponse{cmp.Quarter, res, cmp.OpensAt.UnixNano()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].opensAt < out[j].opensAt })
	return out
}

func (repo *surveyRepository) QuerySubmittedResponses(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) ([]survey.QuarterSubmission, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var subs []survey.QuarterSubmission
	for _, s := range repo.submittedForYear(email, yearCode) {
		subs = append(subs, survey.QuarterSubmission{Quarter: s.quarter, Data: s.res.Data.Clone()})
	}
	return subs, nil
}

func (repo *surveyRepository) QuerySubmittedResponsePoints(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) ([]map[string]int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var all []map[string]int
	for _, s := range repo.submittedForYear(email, yearCode) {
		points := make(map[string]int, len(s.res.Points))
		for k, v := range s.res.Points {
			points[k] = v
		}
		all = append(all, points)
	}
	return all, nil
}

// --- audit ---

func (repo *surveyRepository) CreateResponseHistory(ctx context.Context, hist survey.ResponseHistory, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.history = append(repo.db.history, hist)
	return nil
}

func (repo *surveyRepository) CreateEmailLog(ctx context.Context, log survey.EmailLog, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.emailLogs = append(repo.db.emailLogs, log)
	return nil
}

// --- per-year config override ---

func (repo *surveyRepository) GetConfigOverride(ctx context.Context, yearCode string, exec ...core.DBExecutor) (*survey.Config, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cfg, ok := repo.db.configsByYear[yearCode]; ok {
		return cfg, nil
	}
	return nil, survey.ErrConfigNotFound
}

// SetConfigOverride installs a per-year survey structure; test helper.
func (repo *surveyRepository) SetConfigOverride(yearCode string, cfg *survey.Config) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.configsByYear[yearCode] = cfg
}

// EmailLogs returns a snapshot of the email audit trail; test helper.
func (repo *surveyRepository) EmailLogs() []survey.EmailLog {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	return append([]survey.EmailLog(nil), repo.db.emailLogs...)
}
