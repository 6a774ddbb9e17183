package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/survey"
)

type surveyRepository struct {
	exec core.DBExecutor
}

var _ survey.Repository = (*surveyRepository)(nil) // interface compliance check

func NewSurveyRepository(exec core.DBExecutor) *surveyRepository {
	return &surveyRepository{exec: exec}
}

// --- records ---

const recordColumns = `id, faculty_email, year_code, import_id, quarters, has_incomplete,
	imported, manual, points, survey_total, created_at, updated_at`

func scanRecord(scanner interface{ Scan(...interface{}) error }) (survey.Record, error) {
	var (
		rec              survey.Record
		importID         null.String
		quarters         pq.StringArray
		imported, manual []byte
		points           []byte
	)
	err := scanner.Scan(
		&rec.ID, &rec.FacultyEmail, &rec.YearCode, &importID, &quarters, &rec.HasIncomplete,
		&imported, &manual, &points, &rec.SurveyTotal, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return survey.Record{}, survey.ErrRecordNotFound
	}
	if err != nil {
		return survey.Record{}, errors.Wrap(err, "scanning survey record")
	}
	rec.ImportID = importID.String
	rec.Quarters = quarters
	rec.Imported = make(survey.Tree)
	rec.Manual = make(survey.Tree)
	rec.Points = make(map[string]int)
	if err := unjsonb(imported, &rec.Imported); err != nil {
		return survey.Record{}, err
	}
	if err := unjsonb(manual, &rec.Manual); err != nil {
		return survey.Record{}, err
	}
	if err := unjsonb(points, &rec.Points); err != nil {
		return survey.Record{}, err
	}
	return rec, nil
}

func (repo surveyRepository) GetRecord(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) (survey.Record, error) {
	row := getExec(repo.exec, exec).QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM survey_record WHERE faculty_email = $1 AND year_code = $2`,
		email, yearCode,
	)
	return scanRecord(row)
}

func (repo surveyRepository) QueryRecordsByYear(ctx context.Context, yearCode string, exec ...core.DBExecutor) ([]survey.Record, error) {
	rows, err := getExec(repo.exec, exec).QueryContext(ctx,
		`SELECT `+recordColumns+` FROM survey_record WHERE year_code = $1 ORDER BY faculty_email`,
		yearCode,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying survey records")
	}
	defer func() { _ = rows.Close() }()

	var records []survey.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, errors.Wrap(rows.Err(), "iterating survey records")
}

func (repo surveyRepository) recordArgs(rec survey.Record) ([]interface{}, error) {
	imported, err := jsonb(rec.Imported)
	if err != nil {
		return nil, err
	}
	manual, err := jsonb(rec.Manual)
	if err != nil {
		return nil, err
	}
	points, err := jsonb(rec.Points)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		rec.ID, rec.FacultyEmail, rec.YearCode,
		null.NewString(rec.ImportID, rec.ImportID != ""), pq.StringArray(rec.Quarters), rec.HasIncomplete,
		imported, manual, points, rec.SurveyTotal, rec.CreatedAt, rec.UpdatedAt,
	}, nil
}

func (repo surveyRepository) CreateRecord(ctx context.Context, rec survey.Record, exec ...core.DBExecutor) (survey.Record, error) {
	args, err := repo.recordArgs(rec)
	if err != nil {
		return survey.Record{}, err
	}
	_, err = getExec(repo.exec, exec).ExecContext(ctx, `
		INSERT INTO survey_record (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		args...,
	)
	if err != nil {
		return survey.Record{}, errors.Wrap(err, "inserting survey record")
	}
	return rec, nil
}

func (repo surveyRepository) UpdateRecord(ctx context.Context, rec survey.Record, exec ...core.DBExecutor) (survey.Record, error) {
	args, err := repo.recordArgs(rec)
	if err != nil {
		return survey.Record{}, err
	}
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `
		UPDATE survey_record
		SET import_id = $4, quarters = $5, has_incomplete = $6,
		    imported = $7, manual = $8, points = $9, survey_total = $10, updated_at = $12
		WHERE id = $1`,
		args...,
	)
	if err != nil {
		return survey.Record{}, errors.Wrap(err, "updating survey record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return survey.Record{}, survey.ErrRecordNotFound
	}
	return rec, nil
}

// --- imports ---

func (repo surveyRepository) CreateImport(ctx context.Context, imp survey.Import, exec ...core.DBExecutor) (survey.Import, error) {
	_, err := getExec(repo.exec, exec).ExecContext(ctx, `
		INSERT INTO survey_import (id, year_code, filename, faculty_count, activity_count, unmatched_emails, imported_at, imported_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		imp.ID, imp.YearCode, imp.Filename, imp.FacultyCount, imp.ActivityCount,
		pq.StringArray(imp.UnmatchedEmails), imp.ImportedAt, imp.ImportedBy,
	)
	if err != nil {
		return survey.Import{}, errors.Wrap(err, "inserting import")
	}
	return imp, nil
}

func (repo surveyRepository) QueryImports(ctx context.Context, yearCode string, exec ...core.DBExecutor) ([]survey.Import, error) {
	rows, err := getExec(repo.exec, exec).QueryContext(ctx, `
		SELECT id, year_code, filename, faculty_count, activity_count, unmatched_emails, imported_at, imported_by
		FROM survey_import WHERE year_code = $1 ORDER BY imported_at DESC`,
		yearCode,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying imports")
	}
	defer func() { _ = rows.Close() }()

	var imports []survey.Import
	for rows.Next() {
		var imp survey.Import
		var unmatched pq.StringArray
		if err := rows.Scan(
			&imp.ID, &imp.YearCode, &imp.Filename, &imp.FacultyCount, &imp.ActivityCount,
			&unmatched, &imp.ImportedAt, &imp.ImportedBy,
		); err != nil {
			return nil, errors.Wrap(err, "scanning import")
		}
		imp.UnmatchedEmails = unmatched
		imports = append(imports, imp)
	}
	return imports, errors.Wrap(rows.Err(), "iterating imports")
}

// --- campaigns ---

const campaignColumns = `id, year_code, quarter, name, opens_at, closes_at, is_active,
	email_from_name, email_from_address, email_subject, email_body, reminder_subject, reminder_body,
	created_at, updated_at`

func scanCampaign(scanner interface{ Scan(...interface{}) error }) (survey.Campaign, error) {
	var cmp survey.Campaign
	err := scanner.Scan(
		&cmp.ID, &cmp.YearCode, &cmp.Quarter, &cmp.Name, &cmp.OpensAt, &cmp.ClosesAt, &cmp.IsActive,
		&cmp.EmailFromName, &cmp.EmailFromAddress, &cmp.EmailSubject, &cmp.EmailBody,
		&cmp.ReminderSubject, &cmp.ReminderBody, &cmp.CreatedAt, &cmp.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return survey.Campaign{}, survey.ErrCampaignNotFound
	}
	if err != nil {
		return survey.Campaign{}, errors.Wrap(err, "scanning campaign")
	}
	return cmp, nil
}

func (repo surveyRepository) CreateCampaign(ctx context.Context, cmp survey.Campaign, exec ...core.DBExecutor) (survey.Campaign, error) {
	_, err := getExec(repo.exec, exec).ExecContext(ctx, `
		INSERT INTO survey_campaign (`+campaignColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		cmp.ID, cmp.YearCode, cmp.Quarter, cmp.Name, cmp.OpensAt, cmp.ClosesAt, cmp.IsActive,
		cmp.EmailFromName, cmp.EmailFromAddress, cmp.EmailSubject, cmp.EmailBody,
		cmp.ReminderSubject, cmp.ReminderBody, cmp.CreatedAt, cmp.UpdatedAt,
	)
	if err != nil {
		return survey.Campaign{}, errors.Wrap(err, "inserting campaign")
	}
	return cmp, nil
}

func (repo surveyRepository) GetCampaignByID(ctx context.Context, id string, exec ...core.DBExecutor) (survey.Campaign, error) {
	row := getExec(repo.exec, exec).
		QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM survey_campaign WHERE id = $1`, id)
	return scanCampaign(row)
}

func (repo surveyRepository) GetCampaignByYearQuarter(ctx context.Context, yearCode, quarter string, exec ...core.DBExecutor) (survey.Campaign, error) {
	row := getExec(repo.exec, exec).QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM survey_campaign WHERE year_code = $1 AND quarter = $2`,
		yearCode, quarter,
	)
	return scanCampaign(row)
}

func (repo surveyRepository) QueryCampaigns(ctx context.Context, yearCode string, exec ...core.DBExecutor) ([]survey.Campaign, error) {
	rows, err := getExec(repo.exec, exec).QueryContext(ctx,
		`SELECT `+campaignColumns+` FROM survey_campaign WHERE year_code = $1 ORDER BY opens_at`,
		yearCode,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying campaigns")
	}
	defer func() { _ = rows.Close() }()

	var campaigns []survey.Campaign
	for rows.Next() {
		cmp, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, cmp)
	}
	return campaigns, errors.Wrap(rows.Err(), "iterating campaigns")
}

func (repo surveyRepository) UpdateCampaign(ctx context.Context, cmp survey.Campaign, exec ...core.DBExecutor) (survey.Campaign, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `
		UPDATE survey_campaign
		SET name = $2, opens_at = $3, closes_at = $4, is_active = $5,
		    email_from_name = $6, email_from_address = $7, email_subject = $8, email_body = $9,
		    reminder_subject = $10, reminder_body = $11, updated_at = $12
		WHERE id = $1`,
		cmp.ID, cmp.Name, cmp.OpensAt, cmp.ClosesAt, cmp.IsActive,
		cmp.EmailFromName, cmp.EmailFromAddress, cmp.EmailSubject, cmp.EmailBody,
		cmp.ReminderSubject, cmp.ReminderBody, cmp.UpdatedAt,
	)
	if err != nil {
		return survey.Campaign{}, errors.Wrap(err, "updating campaign")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return survey.Campaign{}, survey.ErrCampaignNotFound
	}
	return cmp, nil
}

// --- invitations ---

const invitationColumns = `id, campaign_id, faculty_email, token, status,
	email_sent_at, first_accessed_at, submitted_at, created_at, updated_at`

func scanInvitation(scanner interface{ Scan(...interface{}) error }) (survey.Invitation, error) {
	var inv survey.Invitation
	var sentAt, accessedAt, submittedAt null.Time
	err := scanner.Scan(
		&inv.ID, &inv.CampaignID, &inv.FacultyEmail, &inv.Token, &inv.Status,
		&sentAt, &accessedAt, &submittedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return survey.Invitation{}, survey.ErrInvitationNotFound
	}
	if err != nil {
		return survey.Invitation{}, errors.Wrap(err, "scanning invitation")
	}
	inv.EmailSentAt = sentAt.Time
	inv.FirstAccessedAt = accessedAt.Time
	inv.SubmittedAt = submittedAt.Time
	return inv, nil
}

func (repo surveyRepository) CreateInvitation(ctx context.Context, inv survey.Invitation, exec ...core.DBExecutor) (survey.Invitation, error) {
	_, err := getExec(repo.exec, exec).ExecContext(ctx, `
		INSERT INTO survey_invitation (`+invitationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		inv.ID, inv.CampaignID, inv.FacultyEmail, inv.Token, inv.Status,
		null.NewTime(inv.EmailSentAt, !inv.EmailSentAt.IsZero()),
		null.NewTime(inv.FirstAccessedAt, !inv.FirstAccessedAt.IsZero()),
		null.NewTime(inv.SubmittedAt, !inv.SubmittedAt.IsZero()),
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return survey.Invitation{}, errors.Wrap(err, "inserting invitation")
	}
	return inv, nil
}

func (repo surveyRepository) GetInvitationByID(ctx context.Context, id string, exec ...core.DBExecutor) (survey.Invitation, error) {
	row := getExec(repo.exec, exec).
		QueryRowContext(ctx, `SELECT `+invitationColumns+` FROM survey_invitation WHERE id = $1`, id)
	return scanInvitation(row)
}

func (repo surveyRepository) GetInvitationByToken(ctx context.Context, token string, exec ...core.DBExecutor) (survey.Invitation, error) {
	row := getExec(repo.exec, exec).
		QueryRowContext(ctx, `SELECT `+invitationColumns+` FROM survey_invitation WHERE token = $1`, token)
	return scanInvitation(row)
}

func (repo surveyRepository) GetInvitation(ctx context.Context, campaignID, email string, exec ...core.DBExecutor) (survey.Invitation, error) {
	row := getExec(repo.exec, exec).QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM survey_invitation WHERE campaign_id = $1 AND faculty_email = $2`,
		campaignID, email,
	)
	return scanInvitation(row)
}

func (repo surveyRepository) QueryInvitationsByCampaign(ctx context.Context, campaignID string, exec ...core.DBExecutor) ([]survey.Invitation, error) {
	rows, err := getExec(repo.exec, exec).QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM survey_invitation WHERE campaign_id = $1 ORDER BY faculty_email`,
		campaignID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying invitations")
	}
	defer func() { _ = rows.Close() }()

	var invs []survey.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, errors.Wrap(rows.Err(), "iterating invitations")
}

func (repo surveyRepository) UpdateInvitation(ctx context.Context, inv survey.Invitation, exec ...core.DBExecutor) (survey.Invitation, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `
		UPDATE survey_invitation
		SET status = $2, email_sent_at = $3, first_accessed_at = $4, submitted_at = $5, updated_at = $6
		WHERE id = $1`,
		inv.ID, inv.Status,
		null.NewTime(inv.EmailSentAt, !inv.EmailSentAt.IsZero()),
		null.NewTime(inv.FirstAccessedAt, !inv.FirstAccessedAt.IsZero()),
		null.NewTime(inv.SubmittedAt, !inv.SubmittedAt.IsZero()),
		inv.UpdatedAt,
	)
	if err != nil {
		return survey.Invitation{}, errors.Wrap(err, "updating invitation")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return survey.Invitation{}, survey.ErrInvitationNotFound
	}
	return inv, nil
}

// --- responses ---

const responseColumns = `id, invitation_id, data, complete, points, created_at, updated_at`

func scanResponse(scanner interface{ Scan(...interface{}) error }) (survey.Response, error) {
	var res survey.Response
	var data, complete, points []byte
	err := scanner.Scan(&res.ID, &res.InvitationID, &data, &complete, &points, &res.CreatedAt, &res.UpdatedAt)
	if err == sql.ErrNoRows {
		return survey.Response{}, survey.ErrResponseNotFound
	}
	if err != nil {
		return survey.Response{}, errors.Wrap(err, "scanning response")
	}
	res.Data = make(survey.Tree)
	res.Complete = make(map[string]bool)
	res.Points = make(map[string]int)
	if err := unjsonb(data, &res.Data); err != nil {
		return survey.Response{}, err
	}
	if err := unjsonb(complete, &res.Complete); err != nil {
		return survey.Response{}, err
	}
	if err := unjsonb(points, &res.Points); err != nil {
		return survey.Response{}, err
	}
	return res, nil
}

func (repo surveyRepository) GetResponseByInvitation(ctx context.Context, invitationID string, exec ...core.DBExecutor) (survey.Response, error) {
	row := getExec(repo.exec, exec).
		QueryRowContext(ctx, `SELECT `+responseColumns+` FROM survey_response WHERE invitation_id = $1`, invitationID)
	return scanResponse(row)
}

func (repo surveyRepository) responseArgs(res survey.Response) ([]interface{}, error) {
	data, err := jsonb(res.Data)
	if err != nil {
		return nil, err
	}
	complete, err := jsonb(res.Complete)
	if err != nil {
		return nil, err
	}
	points, err := jsonb(res.Points)
	if err != nil {
		return nil, err
	}
	return []interface{}{res.ID, res.InvitationID, data, complete, points, res.CreatedAt, res.UpdatedAt}, nil
}

func (repo surveyRepository) CreateResponse(ctx context.Context, res survey.Response, exec ...core.DBExecutor) (survey.Response, error) {
	args, err := repo.responseArgs(res)
	if err != nil {
		return survey.Response{}, err
	}
	_, err = getExec(repo.exec, exec).ExecContext(ctx, `
		INSERT INTO survey_response (`+responseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		args...,
	)
	if err != nil {
		return survey.Response{}, errors.Wrap(err, "inserting response")
	}
	return res, nil
}

func (repo surveyRepository) UpdateResponse(ctx context.Context, res survey.Response, exec ...core.DBExecutor) (survey.Response, error) {
	args, err := repo.responseArgs(res)
	if err != nil {
		return survey.Response{}, err
	}
	result, err := getExec(repo.exec, exec).ExecContext(ctx, `
		UPDATE survey_response
		SET data = $3, complete = $4, points = $5, updated_at = $7
		WHERE id = $1`,
		args...,
	)
	if err != nil {
		return survey.Response{}, errors.Wrap(err, "updating response")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return survey.Response{}, survey.ErrResponseNotFound
	}
	return res, nil
}

const submittedResponsesQuery = `
	SELECT c.quarter, r.data, r.points
	FROM survey_response r
	JOIN survey_invitation i ON i.id = r.invitation_id
	JOIN survey_campaign c ON c.id = i.campaign_id
	WHERE i.faculty_email = $1 AND c.year_code = $2 AND i.status = 'submitted'
	ORDER BY c.opens_at`

func (repo surveyRepository) QuerySubmittedResponses(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) ([]survey.QuarterSubmission, error) {
	rows, err := getExec(repo.exec, exec).QueryContext(ctx, submittedResponsesQuery, email, yearCode)
	if err != nil {
		return nil, errors.Wrap(err, "querying submitted responses")
	}
	defer func() { _ = rows.Close() }()

	var subs []survey.QuarterSubmission
	for rows.Next() {
		var qs survey.QuarterSubmission
		var data, points []byte
		if err := rows.Scan(&qs.Quarter, &data, &points); err != nil {
			return nil, errors.Wrap(err, "scanning submitted response")
		}
		qs.Data = make(survey.Tree)
		if err := unjsonb(data, &qs.Data); err != nil {
			return nil, err
		}
		subs = append(subs, qs)
	}
	return subs, errors.Wrap(rows.Err(), "iterating submitted responses")
}

func (repo surveyRepository) QuerySubmittedResponsePoints(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) ([]map[string]int, error) {
	rows, err := getExec(repo.exec, exec).QueryContext(ctx, submittedResponsesQuery, email, yearCode)
	if err != nil {
		return nil, errors.Wrap(err, "querying submitted response points")
	}
	defer func() { _ = rows.Close() }()

	var all []map[string]int
	for rows.Next() {
		var quarter string
		var data, points []byte
		if err := rows.Scan(&quarter, &data, &points); err != nil {
			return nil, errors.Wrap(err, "scanning submitted response points")
		}
		byCat := make(map[string]int)
		if err := unjsonb(points, &byCat); err != nil {
			return nil, err
		}
		all = append(all, byCat)
	}
	return all, errors.Wrap(rows.Err(), "iterating submitted response points")
}

// --- audit ---

func (repo surveyRepository) CreateResponseHistory(ctx context.Context, hist survey.ResponseHistory, exec ...core.DBExecutor) error {
	data, err := jsonb(hist.Data)
	if err != nil {
		return err
	}
	points, err := jsonb(hist.Points)
	if err != nil {
		return err
	}
	_, err = getExec(repo.exec, exec).ExecContext(ctx, `
		INSERT INTO survey_response_history (id, response_id, action, category, data_snapshot, points_snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		hist.ID, hist.ResponseID, hist.Action, hist.Category, data, points, hist.CreatedAt,
	)
	return errors.Wrap(err, "inserting response history")
}

func (repo surveyRepository) CreateEmailLog(ctx context.Context, log survey.EmailLog, exec ...core.DBExecutor) error {
	_, err := getExec(repo.exec, exec).ExecContext(ctx, `
		INSERT INTO survey_email_log (id, invitation_id, email_type, recipient, subject, status, error_message, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		log.ID, log.InvitationID, log.EmailType, log.Recipient, log.Subject, log.Status, log.ErrorMessage, log.SentAt,
	)
	return errors.Wrap(err, "inserting email log")
}

// --- per-year config override ---

func (repo surveyRepository) GetConfigOverride(ctx context.Context, yearCode string, exec ...core.DBExecutor) (*survey.Config, error) {
	var buf []byte
	err := getExec(repo.exec, exec).
		QueryRowContext(ctx, `SELECT config FROM survey_config WHERE year_code = $1`, yearCode).
		Scan(&buf)
	if err == sql.ErrNoRows {
		return nil, survey.ErrConfigNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "getting survey config")
	}
	cfg := new(survey.Config)
	if err := unjsonb(buf, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
