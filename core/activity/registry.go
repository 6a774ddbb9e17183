package activity

import (
	"context"
	"errors"
	"time"

	"github.com/nickmarkin/AAA-Summarizer/core"
)

var (
	// errors
	ErrNotFound     = errors.New("activity type not found")
	ErrDuplicateKey = errors.New("an activity type with this key already exists")
)

type (
	Repository interface {
		CheckActivityKeyUniqueness(ctx context.Context, key string, exec ...core.DBExecutor) error
		CreateActivityType(ctx context.Context, at ActivityType, exec ...core.DBExecutor) (ActivityType, error)
		GetActivityTypeByKey(ctx context.Context, key string, exec ...core.DBExecutor) (ActivityType, error)
		QueryActivityTypes(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]ActivityType, error)
		UpdateActivityType(ctx context.Context, at ActivityType, exec ...core.DBExecutor) (ActivityType, error)
	}

	// Registry is the single source of truth for point values. It is a pure
	// read path for the point calculator; mutations are administrative.
	Registry struct {
		repo Repository
	}
)

func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo}
}

func (reg *Registry) checkKeyUniqueness(key string) error {
	if err := reg.repo.CheckActivityKeyUniqueness(context.Background(), key); err != nil {
		if err == ErrDuplicateKey {
			return core.NewValidationError(err, core.FieldError{Field: "key", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (reg *Registry) Create(ctx context.Context, nat NewActivityType) (ActivityType, error) {
	now := time.Now().UTC()
	at := ActivityType{
		Key:        nat.Key,
		Name:       nat.Name,
		Category:   nat.Category,
		Goal:       nat.Goal,
		Modifier:   Modifier(nat.Modifier),
		BasePoints: nat.BasePoints,
		MaxCount:   nat.MaxCount,
		MaxPoints:  nat.MaxPoints,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return reg.repo.CreateActivityType(ctx, at)
}

// Lookup returns the type registered under key. Callers on the scoring path
// must treat ErrNotFound as "unknown, assume zero points": historical imports
// may reference retired or never-registered keys.
func (reg *Registry) Lookup(ctx context.Context, key string) (ActivityType, error) {
	return reg.repo.GetActivityTypeByKey(ctx, key)
}

func (reg *Registry) AllActive(ctx context.Context) ([]ActivityType, error) {
	return reg.repo.QueryActivityTypes(ctx, true)
}

func (reg *Registry) All(ctx context.Context) ([]ActivityType, error) {
	return reg.repo.QueryActivityTypes(ctx, false)
}

func (reg *Registry) Update(ctx context.Context, key string, uat UpdateActivityType) (ActivityType, error) {
	at, err := reg.repo.GetActivityTypeByKey(ctx, key)
	if err != nil {
		return ActivityType{}, err
	}
	if uat.Name != "" {
		at.Name = uat.Name
	}
	if uat.BasePoints != nil {
		at.BasePoints = *uat.BasePoints
	}
	if uat.MaxCount != nil {
		at.MaxCount = *uat.MaxCount
	}
	if uat.MaxPoints != nil {
		at.MaxPoints = *uat.MaxPoints
	}
	if uat.IsActive != nil {
		at.IsActive = *uat.IsActive
	}
	at.UpdatedAt = time.Now().UTC()
	return reg.repo.UpdateActivityType(ctx, at)
}

// Deactivate retires a type without deleting it; historical entries keep
// referencing the key.
func (reg *Registry) Deactivate(ctx context.Context, key string) (ActivityType, error) {
	inactive := false
	return reg.Update(ctx, key, UpdateActivityType{IsActive: &inactive})
}

// PointValues returns the current schedule as {key: base points}, for survey
// config assembly. Fetched per call, never cached process-wide.
func (reg *Registry) PointValues(ctx context.Context) (map[string]int, error) {
	types, err := reg.repo.QueryActivityTypes(ctx, true)
	if err != nil {
		return nil, err
	}
	values := make(map[string]int, len(types))
	for _, at := range types {
		values[at.Key] = at.BasePoints
	}
	return values, nil
}
