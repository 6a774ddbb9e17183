package inmemdb

import (
	"context"
	"sort"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/department"
)

type departmentRepository struct {
	db *DB
}

var _ department.Repository = (*departmentRepository)(nil)

func NewDepartmentRepository(db *DB) *departmentRepository {
	return &departmentRepository{db: db}
}

func (repo *departmentRepository) GetRecord(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) (department.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.deptRecords[yearKey(email, yearCode)]; ok {
		return *rec, nil
	}
	return department.Record{}, department.ErrNotFound
}

func (repo *departmentRepository) QueryRecordsByYear(ctx context.Context, yearCode string, exec ...core.DBExecutor) ([]department.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var records []department.Record
	for _, rec := range repo.db.deptRecords {
		if rec.YearCode == yearCode {
			records = append(records, *rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].FacultyEmail < records[j].FacultyEmail })
	return records, nil
}

func (repo *departmentRepository) CreateRecord(ctx context.Context, rec department.Record, exec ...core.DBExecutor) (department.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.deptRecords[yearKey(rec.FacultyEmail, rec.YearCode)] = &rec
	return rec, nil
}

func (repo *departmentRepository) UpdateRecord(ctx context.Context, rec department.Record, exec ...core.DBExecutor) (department.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := yearKey(rec.FacultyEmail, rec.YearCode)
	if _, ok := repo.db.deptRecords[key]; !ok {
		return department.Record{}, department.ErrNotFound
	}
	repo.db.deptRecords[key] = &rec
	return rec, nil
}
