package inmemdb

import (
	"context"
	"sort"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/faculty"
)

type facultyRepository struct {
	db *DB
}

var _ faculty.Repository = (*facultyRepository)(nil)

func NewFacultyRepository(db *DB) *facultyRepository {
	return &facultyRepository{db: db}
}

func (repo *facultyRepository) CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if _, ok := repo.db.facultyByMail[email]; ok {
		return faculty.ErrEmailTaken
	}
	return nil
}

func (repo *facultyRepository) CreateFacultyMember(ctx context.Context, fm faculty.FacultyMember, exec ...core.DBExecutor) (faculty.FacultyMember, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.facultyByMail[fm.Email]; ok {
		return faculty.FacultyMember{}, faculty.ErrEmailTaken
	}
	repo.db.facultyByMail[fm.Email] = &fm
	return fm, nil
}

func (repo *facultyRepository) GetFacultyMemberByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (faculty.FacultyMember, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if fm, ok := repo.db.facultyByMail[email]; ok {
		return *fm, nil
	}
	return faculty.FacultyMember{}, faculty.ErrNotFound
}

func (repo *facultyRepository) QueryFacultyMembers(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]faculty.FacultyMember, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	members := make([]faculty.FacultyMember, 0, len(repo.db.facultyByMail))
	for _, fm := range repo.db.facultyByMail {
		if activeOnly && !fm.IsActive {
			continue
		}
		members = append(members, *fm)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].LastName != members[j].LastName {
			return members[i].LastName < members[j].LastName
		}
		return members[i].FirstName < members[j].FirstName
	})
	return members, nil
}

func (repo *facultyRepository) UpdateFacultyMember(ctx context.Context, fm faculty.FacultyMember, exec ...core.DBExecutor) (faculty.FacultyMember, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.facultyByMail[fm.Email]; !ok {
		return faculty.FacultyMember{}, faculty.ErrNotFound
	}
	repo.db.facultyByMail[fm.Email] = &fm
	return fm, nil
}
