package inmemdb

import (
	"context"
	"sort"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/activity"
)

type activityTypeRepository struct {
	db *DB
}

var _ activity.Repository = (*activityTypeRepository)(nil)

func NewActivityTypeRepository(db *DB) *activityTypeRepository {
	return &activityTypeRepository{db: db}
}

func (repo *activityTypeRepository) CheckActivityKeyUniqueness(ctx context.Context, key string, exec ...core.DBExecutor) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if _, ok := repo.db.activityTypes[key]; ok {
		return activity.ErrDuplicateKey
	}
	return nil
}

func (repo *activityTypeRepository) CreateActivityType(ctx context.Context, at activity.ActivityType, exec ...core.DBExecutor) (activity.ActivityType, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.activityTypes[at.Key]; ok {
		return activity.ActivityType{}, activity.ErrDuplicateKey
	}
	repo.db.activityTypes[at.Key] = &at
	return at, nil
}

func (repo *activityTypeRepository) GetActivityTypeByKey(ctx context.Context, key string, exec ...core.DBExecutor) (activity.ActivityType, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if at, ok := repo.db.activityTypes[key]; ok {
		return *at, nil
	}
	return activity.ActivityType{}, activity.ErrNotFound
}

func (repo *activityTypeRepository) QueryActivityTypes(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]activity.ActivityType, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	types := make([]activity.ActivityType, 0, len(repo.db.activityTypes))
	for _, at := range repo.db.activityTypes {
		if activeOnly && !at.IsActive {
			continue
		}
		types = append(types, *at)
	}
	sort.Slice(types, func(i, j int) bool {
		if types[i].Category != types[j].Category {
			return types[i].Category < types[j].Category
		}
		return types[i].Key < types[j].Key
	})
	return types, nil
}

func (repo *activityTypeRepository) UpdateActivityType(ctx context.Context, at activity.ActivityType, exec ...core.DBExecutor) (activity.ActivityType, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.activityTypes[at.Key]; !ok {
		return activity.ActivityType{}, activity.ErrNotFound
	}
	repo.db.activityTypes[at.Key] = &at
	return at, nil
}
