package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/faculty"
)

type facultyRepository struct {
	exec core.DBExecutor
}

var _ faculty.Repository = (*facultyRepository)(nil) // interface compliance check

func NewFacultyRepository(exec core.DBExecutor) *facultyRepository {
	return &facultyRepository{exec: exec}
}

const facultyColumns = `email, first_name, last_name, rank, contract_type, division, is_active, is_ccc_member, created_at, updated_at`

func scanFacultyMember(scanner interface{ Scan(...interface{}) error }) (faculty.FacultyMember, error) {
	var fm faculty.FacultyMember
	err := scanner.Scan(
		&fm.Email, &fm.FirstName, &fm.LastName, &fm.Rank, &fm.ContractType,
		&fm.Division, &fm.IsActive, &fm.IsCCCMember, &fm.CreatedAt, &fm.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return faculty.FacultyMember{}, faculty.ErrNotFound
	}
	if err != nil {
		return faculty.FacultyMember{}, errors.Wrap(err, "scanning faculty member")
	}
	return fm, nil
}

func (repo facultyRepository) CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error {
	var exists bool
	err := getExec(repo.exec, exec).
		QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM faculty_member WHERE email = $1)`, email).
		Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return faculty.ErrEmailTaken
	}
	return nil
}

func (repo facultyRepository) CreateFacultyMember(ctx context.Context, fm faculty.FacultyMember, exec ...core.DBExecutor) (faculty.FacultyMember, error) {
	_, err := getExec(repo.exec, exec).ExecContext(ctx, `
		INSERT INTO faculty_member (`+facultyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		fm.Email, fm.FirstName, fm.LastName, fm.Rank, fm.ContractType,
		fm.Division, fm.IsActive, fm.IsCCCMember, fm.CreatedAt, fm.UpdatedAt,
	)
	if err != nil {
		return faculty.FacultyMember{}, errors.Wrap(err, "inserting faculty member")
	}
	return fm, nil
}

func (repo facultyRepository) GetFacultyMemberByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (faculty.FacultyMember, error) {
	row := getExec(repo.exec, exec).
		QueryRowContext(ctx, `SELECT `+facultyColumns+` FROM faculty_member WHERE email = $1`, email)
	return scanFacultyMember(row)
}

func (repo facultyRepository) QueryFacultyMembers(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]faculty.FacultyMember, error) {
	query := `SELECT ` + facultyColumns + ` FROM faculty_member`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY last_name, first_name`

	rows, err := getExec(repo.exec, exec).QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "querying faculty members")
	}
	defer func() { _ = rows.Close() }()

	var members []faculty.FacultyMember
	for rows.Next() {
		fm, err := scanFacultyMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, fm)
	}
	return members, errors.Wrap(rows.Err(), "iterating faculty members")
}

func (repo facultyRepository) UpdateFacultyMember(ctx context.Context, fm faculty.FacultyMember, exec ...core.DBExecutor) (faculty.FacultyMember, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `
		UPDATE faculty_member
		SET first_name = $2, last_name = $3, rank = $4, contract_type = $5,
		    division = $6, is_active = $7, is_ccc_member = $8, updated_at = $9
		WHERE email = $1`,
		fm.Email, fm.FirstName, fm.LastName, fm.Rank, fm.ContractType,
		fm.Division, fm.IsActive, fm.IsCCCMember, fm.UpdatedAt,
	)
	if err != nil {
		return faculty.FacultyMember{}, errors.Wrap(err, "updating faculty member")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return faculty.FacultyMember{}, faculty.ErrNotFound
	}
	return fm, nil
}
