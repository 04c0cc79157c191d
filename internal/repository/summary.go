package repository

import (
	"context"

	"gorm.io/gorm"

	"locallibrary/internal/model"
)

// Summary is the front-page snapshot of the catalog.
type Summary struct {
	Books              int64
	Instances          int64
	InstancesAvailable int64
	Authors            int64
	Genres             int64
}

type SummaryRepository interface {
	Counts(ctx context.Context) (Summary, error)
}

type GormSummaryRepository struct {
	db *gorm.DB
}

func NewGormSummaryRepository(db *gorm.DB) *GormSummaryRepository {
	return &GormSummaryRepository{db: db}
}

func (r *GormSummaryRepository) Counts(ctx context.Context) (Summary, error) {
	var s Summary
	db := r.db.WithContext(ctx)

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&s.Books, db.Model(&model.Book{})},
		{&s.Instances, db.Model(&model.BookInstance{})},
		{&s.InstancesAvailable, db.Model(&model.BookInstance{}).Where("status = ?", model.StatusAvailable)},
		{&s.Authors, db.Model(&model.Author{})},
		{&s.Genres, db.Model(&model.Genre{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return Summary{}, err
		}
	}
	return s, nil
}
