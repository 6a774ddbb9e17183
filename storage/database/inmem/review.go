package inmemdb

import (
	"context"
	"sort"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/review"
)

type reviewRepository struct {
	db *DB
}

var _ review.Repository = (*reviewRepository)(nil)

func NewReviewRepository(db *DB) *reviewRepository {
	return &reviewRepository{db: db}
}

func entryReviewKey(email, yearCode, entryID string) string {
	return email + "|" + yearCode + "|" + entryID
}

func (repo *reviewRepository) GetEntryReview(ctx context.Context, email, yearCode, entryID string, exec ...core.DBExecutor) (review.EntryReview, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if er, ok := repo.db.entryReviews[entryReviewKey(email, yearCode, entryID)]; ok {
		return *er, nil
	}
	return review.EntryReview{}, review.ErrNotFound
}

func (repo *reviewRepository) QueryEntryReviews(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) ([]review.EntryReview, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var reviews []review.EntryReview
	for _, er := range repo.db.entryReviews {
		if er.FacultyEmail == email && er.YearCode == yearCode {
			reviews = append(reviews, *er)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CreatedAt.Before(reviews[j].CreatedAt) })
	return reviews, nil
}

func (repo *reviewRepository) CreateEntryReview(ctx context.Context, er review.EntryReview, exec ...core.DBExecutor) (review.EntryReview, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.entryReviews[entryReviewKey(er.FacultyEmail, er.YearCode, er.EntryID)] = &er
	return er, nil
}

func (repo *reviewRepository) UpdateEntryReview(ctx context.Context, er review.EntryReview, exec ...core.DBExecutor) (review.EntryReview, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := entryReviewKey(er.FacultyEmail, er.YearCode, er.EntryID)
	if _, ok := repo.db.entryReviews[key]; !ok {
		return review.EntryReview{}, review.ErrNotFound
	}
	repo.db.entryReviews[key] = &er
	return er, nil
}

func (repo *reviewRepository) GetAnnualReview(ctx context.Context, email, yearCode string, exec ...core.DBExecutor) (review.FacultyAnnualReview, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ar, ok := repo.db.annualReviews[yearKey(email, yearCode)]; ok {
		return *ar, nil
	}
	return review.FacultyAnnualReview{}, review.ErrNotFound
}

func (repo *reviewRepository) CreateAnnualReview(ctx context.Context, ar review.FacultyAnnualReview, exec ...core.DBExecutor) (review.FacultyAnnualReview, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.annualReviews[yearKey(ar.FacultyEmail, ar.YearCode)] = &ar
	return ar, nil
}

func (repo *reviewRepository) UpdateAnnualReview(ctx context.Context, ar review.FacultyAnnualReview, exec ...core.DBExecutor) (review.FacultyAnnualReview, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := yearKey(ar.FacultyEmail, ar.YearCode)
	if _, ok := repo.db.annualReviews[key]; !ok {
		return review.FacultyAnnualReview{}, review.ErrNotFound
	}
	repo.db.annualReviews[key] = &ar
	return ar, nil
}
