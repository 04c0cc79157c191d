package handler

import (
	"github.com/google/uuid"

	"locallibrary/internal/repository"
)

type CreateBookRequest struct {
	Title      string      `json:"title" binding:"required,min=1"`
	AuthorID   uuid.UUID   `json:"author_id" binding:"required"`
	Summary    string      `json:"summary" binding:"omitempty,max=2000"`
	ISBN       string      `json:"isbn" binding:"required,min=10,max=17"`
	LanguageID uuid.UUID   `json:"language_id" binding:"required"`
	GenreIDs   []uuid.UUID `json:"genre_ids"`
	CoverURL   string      `json:"cover_url" binding:"omitempty,url"`
}

type UpdateBookRequest struct {
	Title      *string      `json:"title" binding:"omitempty,min=1"`
	AuthorID   *uuid.UUID   `json:"author_id"`
	Summary    *string      `json:"summary" binding:"omitempty,max=2000"`
	ISBN       *string      `json:"isbn" binding:"omitempty,min=10,max=17"`
	LanguageID *uuid.UUID   `json:"language_id"`
	GenreIDs   *[]uuid.UUID `json:"genre_ids"`
	CoverURL   *string      `json:"cover_url" binding:"omitempty,url"`
}

type Book struct {
	ID       uuid.UUID     `json:"id"`
	Title    string        `json:"title"`
	Author   AuthorSummary `json:"author"`
	Summary  string        `json:"summary"`
	ISBN     string        `json:"isbn"`
	Language string        `json:"language"`
	Genre    []string      `json:"genre"`
	CoverURL string        `json:"cover_url,omitempty"`
}

type BookSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type BookResponse struct {
	Data Book `json:"data"`
}

type BookListResponse struct {
	Data       []Book              `json:"data"`
	Pagination repository.PageInfo `json:"pagination"`
}
