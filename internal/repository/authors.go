package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"locallibrary/internal/model"
)

type AuthorListResult struct {
	Authors  []model.Author
	PageInfo PageInfo
}

type AuthorRepository interface {
	Create(ctx context.Context, author *model.Author) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Author, error)
	List(ctx context.Context, page Page) (AuthorListResult, error)
	Update(ctx context.Context, author *model.Author) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountInstances(ctx context.Context, authorID uuid.UUID) (int64, error)
}

type GormAuthorRepository struct {
	db *gorm.DB
}

func NewGormAuthorRepository(db *gorm.DB) *GormAuthorRepository {
	return &GormAuthorRepository{db: db}
}

func (r *GormAuthorRepository) Create(ctx context.Context, author *model.Author) error {
	return r.db.WithContext(ctx).Create(author).Error
}

func (r *GormAuthorRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	var author model.Author
	if err := r.db.WithContext(ctx).
		Preload("Books").
		First(&author, "id = ?", id).Error; err != nil {

		return nil, err
	}
	return &author, nil
}

func (r *GormAuthorRepository) List(ctx context.Context, page Page) (AuthorListResult, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Author{}).Count(&total).Error; err != nil {
		return AuthorListResult{}, err
	}

	offset, info := paginate(total, page)

	var authors []model.Author
	if err := r.db.WithContext(ctx).
		Order("last_name, first_name").
		Limit(info.PageSize).
		Offset(offset).
		Find(&authors).Error; err != nil {

		return AuthorListResult{}, err
	}
	return AuthorListResult{Authors: authors, PageInfo: info}, nil
}

func (r *GormAuthorRepository) Update(ctx context.Context, author *model.Author) error {
	return r.db.WithContext(ctx).
		Model(&model.Author{}).
		Where("id = ?", author.ID).
		Updates(map[string]any{
			"first_name":    author.FirstName,
			"last_name":     author.LastName,
			"date_of_birth": author.DateOfBirth,
			"date_of_death": author.DateOfDeath,
		}).Error
}

func (r *GormAuthorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Author{}, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return ErrReferentialConflict
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountInstances counts lendable copies across every book by the author.
func (r *GormAuthorRepository) CountInstances(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.BookInstance{}).
		Joins("JOIN books ON books.id = book_instances.book_id").
		Where("books.author_id = ?", authorID).
		Count(&count).Error
	return count, err
}
