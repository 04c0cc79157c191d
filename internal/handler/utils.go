package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"locallibrary/internal/model"
	"locallibrary/internal/repository"
	"locallibrary/internal/validation"
)

// nowFunc lets handlers take a clock so date-window tests are deterministic.
type nowFunc func() time.Time

// Fixed page sizes per view. Book and author listings are deliberately
// short; loan and availability listings page by ten.
const (
	catalogPageSize = 2
	loanPageSize    = 10
)

// parsePage reads the "page" query parameter with forgiving semantics: a
// missing or non-numeric value falls back to page 1. Out-of-range values
// are clamped later, against the row count.
func parsePage(c *gin.Context, size int) repository.Page {
	number := 1
	if s := c.Query("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			number = v
		}
	}
	return repository.Page{Number: number, Size: size}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, validation.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeFieldError(c *gin.Context, status int, code, field, message string) {
	c.AbortWithStatusJSON(status, validation.ErrorResponse{
		Code:    code,
		Message: message,
		Errors: []validation.FieldError{
			{Field: field, Rule: code, Message: message},
		},
	})
}

func datePtr(t *time.Time) *model.Date {
	if t == nil || t.IsZero() {
		return nil
	}
	return &model.Date{Time: *t}
}

func toAuthorData(a model.Author) Author {
	return Author{
		ID:          a.ID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		DateOfBirth: datePtr(a.DateOfBirth),
		DateOfDeath: datePtr(a.DateOfDeath),
	}
}

func toAuthorResponse(a model.Author) AuthorResponse {
	return AuthorResponse{Data: toAuthorData(a)}
}

// toBookData expands references the way API consumers expect: the language
// as its name and genres as a list of names, not ids.
func toBookData(b model.Book) Book {
	genres := make([]string, 0, len(b.Genres))
	for _, g := range b.Genres {
		genres = append(genres, g.Name)
	}

	return Book{
		ID:    b.ID,
		Title: b.Title,
		Author: AuthorSummary{
			ID:   b.Author.ID,
			Name: b.Author.FullName(),
		},
		Summary:  b.Summary,
		ISBN:     b.ISBN,
		Language: b.Language.Name,
		Genre:    genres,
		CoverURL: b.CoverURL,
	}
}

func toBookResponse(b model.Book) BookResponse {
	return BookResponse{Data: toBookData(b)}
}

// toInstanceData expands the copy's references: book as its title, borrower
// as a username or null, status as its label.
func toInstanceData(i model.BookInstance) Instance {
	var borrower *string
	if i.Borrower != nil {
		u := i.Borrower.Username
		borrower = &u
	}

	return Instance{
		ID:       i.ID,
		Book:     i.Book.Title,
		BookID:   i.BookID,
		Imprint:  i.Imprint,
		DueBack:  datePtr(i.DueBack),
		Borrower: borrower,
		Status:   i.Status.Label(),
	}
}

func toInstanceResponse(i model.BookInstance) InstanceResponse {
	return InstanceResponse{Data: toInstanceData(i)}
}

func toInstanceList(result repository.InstanceListResult) InstanceListResponse {
	items := make([]Instance, 0, len(result.Instances))
	for _, i := range result.Instances {
		items = append(items, toInstanceData(i))
	}
	return InstanceListResponse{Data: items, Pagination: result.PageInfo}
}
