package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/review"
)

type reviewRepository struct {
	exec core.DBExecutor
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(exec core.DBExecutor) *reviewRepository {
	return &reviewRepository{exec: exec}
}

const entryReviewColumns = `id, faculty_email, year_code, entry_id, status, note, reviewed_by, created_at, updated_at`

func scanEntryReview(scanner interface{ Scan(...interface{}) error }) (review.EntryReview, error) {
	var er review.EntryReview
	err := scanner.Scan(
		&er.ID, &er.FacultyEmail, &er.YearCode, &er.EntryID, &er.Status,
		&er.Note, &er.ReviewedBy, &er.CreatedAt, &er.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return review.EntryReview{}, review.ErrNotFound
	}
	if err != nil {
		return review.EntryReview{}, errors.Wrap(err, "scanning entry review")
	}
	return er, nil
}

func (repo reviewRepository) GetEntryReview(ctx context.Context, email, yearCode, entryID string, exec ...core.DBExecutor) (review.EntryReview, error) {
	row := getExec(repo.exec, exec).QueryRowContext(ctx,
		`SELECT `+entryReviewColumns+` FROM entry_review WHERE faculty_email = $1 AND year_code = $2 AND entry_id = $3`,
		email, yearCode, entryID,
	)
	return scanEntryReview(row)
}

func (repo reviewRepository) QueryEntryReviews(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) ([]review.EntryReview, error) {
	rows, err := getExec(repo.exec, exec).QueryContext(ctx,
		`SELECT `+entryReviewColumns+` FROM entry_review WHERE faculty_email = $1 AND year_code = $2 ORDER BY created_at`,
		email, yearCode,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying entry reviews")
	}
	defer func() { _ = rows.Close() }()

	var reviews []review.EntryReview
	for rows.Next() {
		er, err := scanEntryReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, er)
	}
	return reviews, errors.Wrap(rows.Err(), "iterating entry reviews")
}

func (repo reviewRepository) CreateEntryReview(ctx context.Context, er review.EntryReview, exec ...core.DBExecutor) (review.EntryReview, error) {
	_, err := getExec(repo.exec, exec).ExecContext(ctx, `
		INSERT INTO entry_review (`+entryReviewColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		er.ID, er.FacultyEmail, er.YearCode, er.EntryID, er.Status,
		er.Note, er.ReviewedBy, er.CreatedAt, er.UpdatedAt,
	)
	if err != nil {
		return review.EntryReview{}, errors.Wrap(err, "inserting entry review")
	}
	return er, nil
}

func (repo reviewRepository) UpdateEntryReview(ctx context.Context, er review.EntryReview, exec ...core.DBExecutor) (review.EntryReview, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `
		UPDATE entry_review
		SET status = $2, note = $3, reviewed_by = $4, updated_at = $5
		WHERE id = $1`,
		er.ID, er.Status, er.Note, er.ReviewedBy, er.UpdatedAt,
	)
	if err != nil {
		return review.EntryReview{}, errors.Wrap(err, "updating entry review")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return review.EntryReview{}, review.ErrNotFound
	}
	return er, nil
}

const annualReviewColumns = `id, faculty_email, year_code, status, verified_by, verified_at, created_at, updated_at`

func scanAnnualReview(scanner interface{ Scan(...interface{}) error }) (review.FacultyAnnualReview, error) {
	var ar review.FacultyAnnualReview
	var verifiedAt null.Time
	err := scanner.Scan(
		&ar.ID, &ar.FacultyEmail, &ar.YearCode, &ar.Status,
		&ar.VerifiedBy, &verifiedAt, &ar.CreatedAt, &ar.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return review.FacultyAnnualReview{}, review.ErrNotFound
	}
	if err != nil {
		return review.FacultyAnnualReview{}, errors.Wrap(err, "scanning annual review")
	}
	ar.VerifiedAt = verifiedAt.Time
	return ar, nil
}

func (repo reviewRepository) GetAnnualReview(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) (review.FacultyAnnualReview, error) {
	row := getExec(repo.exec, exec).QueryRowContext(ctx,
		`SELECT `+annualReviewColumns+` FROM faculty_annual_review WHERE faculty_email = $1 AND year_code = $2`,
		email, yearCode,
	)
	return scanAnnualReview(row)
}

func (repo reviewRepository) CreateAnnualReview(ctx context.Context, ar review.FacultyAnnualReview, exec ...core.DBExecutor) (review.FacultyAnnualReview, error) {
	_, err := getExec(repo.exec, exec).ExecContext(ctx, `
		INSERT INTO faculty_annual_review (`+annualReviewColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ar.ID, ar.FacultyEmail, ar.YearCode, ar.Status,
		ar.VerifiedBy, null.NewTime(ar.VerifiedAt, !ar.VerifiedAt.IsZero()), ar.CreatedAt, ar.UpdatedAt,
	)
	if err != nil {
		return review.FacultyAnnualReview{}, errors.Wrap(err, "inserting annual review")
	}
	return ar, nil
}

func (repo reviewRepository) UpdateAnnualReview(ctx context.Context, ar review.FacultyAnnualReview, exec ...core.DBExecutor) (review.FacultyAnnualReview, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `
		UPDATE faculty_annual_review
		SET status = $2, verified_by = $3, verified_at = $4, updated_at = $5
		WHERE id = $1`,
		ar.ID, ar.Status, ar.VerifiedBy, null.NewTime(ar.VerifiedAt, !ar.VerifiedAt.IsZero()), ar.UpdatedAt,
	)
	if err != nil {
		return review.FacultyAnnualReview{}, errors.Wrap(err, "updating annual review")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return review.FacultyAnnualReview{}, review.ErrNotFound
	}
	return ar, nil
}
