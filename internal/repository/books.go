package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"locallibrary/internal/model"
)

type BookListParams struct {
	Page Page
	// Query is a free-text filter over title, summary and author names.
	Query string
}

type BookListResult struct {
	Books    []model.Book
	PageInfo PageInfo
}

type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	List(ctx context.Context, params BookListParams) (BookListResult, error)
	Update(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormBookRepository struct {
	db *gorm.DB
}

func NewGormBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

func (r *GormBookRepository) Create(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *GormBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	var book model.Book
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Language").
		Preload("Genres").
		First(&book, "id = ?", id).Error; err != nil {

		return nil, err
	}
	return &book, nil
}

func (r *GormBookRepository) List(ctx context.Context, params BookListParams) (BookListResult, error) {
	base := r.db.WithContext(ctx).Model(&model.Book{})
	if params.Query != "" {
		needle := "%" + params.Query + "%"
		base = base.
			Joins("JOIN authors ON authors.id = books.author_id").
			Where(
				"LOWER(books.title) LIKE LOWER(?) OR LOWER(books.summary) LIKE LOWER(?) OR LOWER(authors.first_name) LIKE LOWER(?) OR LOWER(authors.last_name) LIKE LOWER(?)",
				needle, needle, needle, needle,
			)
	}

	// Session makes the query reusable for both the count and the fetch.
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return BookListResult{}, err
	}

	offset, info := paginate(total, params.Page)

	var books []model.Book
	if err := base.
		Preload("Author").
		Preload("Language").
		Preload("Genres").
		Order("books.title").
		Limit(info.PageSize).
		Offset(offset).
		Find(&books).Error; err != nil {

		return BookListResult{}, err
	}
	return BookListResult{Books: books, PageInfo: info}, nil
}

// Update persists the book's scalar fields and replaces its genre set with
// whatever Genres currently holds.
func (r *GormBookRepository) Update(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Book{}).
			Where("id = ?", book.ID).
			Updates(map[string]any{
				"title":       book.Title,
				"author_id":   book.AuthorID,
				"summary":     book.Summary,
				"isbn":        book.ISBN,
				"language_id": book.LanguageID,
				"cover_url":   book.CoverURL,
			}).Error
		if err != nil {
			return err
		}
		return tx.Model(book).Association("Genres").Replace(book.Genres)
	})
}

func (r *GormBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Selecting Genres drops the book_genres join rows with the book;
	// copies still on the shelf block the delete instead.
	result := r.db.WithContext(ctx).
		Select("Genres").
		Delete(&model.Book{ID: id})
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
