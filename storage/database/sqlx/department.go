package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/department"
)

type departmentRepository struct {
	exec core.DBExecutor
}

var _ department.Repository = (*departmentRepository)(nil) // interface compliance check

func NewDepartmentRepository(exec core.DBExecutor) *departmentRepository {
	return &departmentRepository{exec: exec}
}

const departmentColumns = `id, faculty_email, year_code, new_innovations, mytip_winner, mytip_count,
	teaching_top_25, teaching_65_25, teacher_of_year, honorable_mention, created_at, updated_at`

func scanDepartmentRecord(scanner interface{ Scan(...interface{}) error }) (department.Record, error) {
	var rec department.Record
	err := scanner.Scan(
		&rec.ID, &rec.FacultyEmail, &rec.YearCode, &rec.NewInnovations, &rec.MyTIPWinner, &rec.MyTIPCount,
		&rec.TeachingTop25, &rec.Teaching6525, &rec.TeacherOfYear, &rec.HonorableMention,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return department.Record{}, department.ErrNotFound
	}
	if err != nil {
		return department.Record{}, errors.Wrap(err, "scanning departmental record")
	}
	return rec, nil
}

func (repo departmentRepository) GetRecord(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) (department.Record, error) {
	row := getExec(repo.exec, exec).QueryRowContext(ctx,
		`SELECT `+departmentColumns+` FROM departmental_record WHERE faculty_email = $1 AND year_code = $2`,
		email, yearCode,
	)
	return scanDepartmentRecord(row)
}

func (repo departmentRepository) QueryRecordsByYear(ctx context.Context, yearCode string, exec ...core.DBExecutor) ([]department.Record, error) {
	rows, err := getExec(repo.exec, exec).QueryContext(ctx,
		`SELECT `+departmentColumns+` FROM departmental_record WHERE year_code = $1 ORDER BY faculty_email`,
		yearCode,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying departmental records")
	}
	defer func() { _ = rows.Close() }()

	var records []department.Record
	for rows.Next() {
		rec, err := scanDepartmentRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, errors.Wrap(rows.Err(), "iterating departmental records")
}

func (repo departmentRepository) CreateRecord(ctx context.Context, rec department.Record, exec ...core.DBExecutor) (department.Record, error) {
	_, err := getExec(repo.exec, exec).ExecContext(ctx, `
		INSERT INTO departmental_record (`+departmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.FacultyEmail, rec.YearCode, rec.NewInnovations, rec.MyTIPWinner, rec.MyTIPCount,
		rec.TeachingTop25, rec.Teaching6525, rec.TeacherOfYear, rec.HonorableMention,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return department.Record{}, errors.Wrap(err, "inserting departmental record")
	}
	return rec, nil
}

func (repo departmentRepository) UpdateRecord(ctx context.Context, rec department.Record, exec ...core.DBExecutor) (department.Record, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `
		UPDATE departmental_record
		SET new_innovations = $2, mytip_winner = $3, mytip_count = $4,
		    teaching_top_25 = $5, teaching_65_25 = $6, teacher_of_year = $7,
		    honorable_mention = $8, updated_at = $9
		WHERE id = $1`,
		rec.ID, rec.NewInnovations, rec.MyTIPWinner, rec.MyTIPCount,
		rec.TeachingTop25, rec.Teaching6525, rec.TeacherOfYear,
		rec.HonorableMention, rec.UpdatedAt,
	)
	if err != nil {
		return department.Record{}, errors.Wrap(err, "updating departmental record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return department.Record{}, department.ErrNotFound
	}
	return rec, nil
}
