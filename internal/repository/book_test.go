package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"locallibrary/internal/model"
	"locallibrary/internal/testutil"
)

func seedLanguage(t *testing.T, db *gorm.DB, name string) model.Language {
	t.Helper()
	lang := model.Language{Name: name}
	require.NoError(t, db.Create(&lang).Error)
	return lang
}

func seedGenre(t *testing.T, db *gorm.DB, name string) model.Genre {
	t.Helper()
	genre := model.Genre{Name: name}
	require.NoError(t, db.Create(&genre).Error)
	return genre
}

func seedAuthor(t *testing.T, db *gorm.DB, first, last string) model.Author {
	t.Helper()
	author := model.Author{FirstName: first, LastName: last}
	require.NoError(t, db.Create(&author).Error)
	return author
}

func seedBook(t *testing.T, db *gorm.DB, title string, author model.Author, lang model.Language, genres ...model.Genre) model.Book {
	t.Helper()
	book := model.Book{
		Title:      title,
		AuthorID:   author.ID,
		LanguageID: lang.ID,
		Summary:    "summary of " + title,
		ISBN:       "978-0000000000",
		Genres:     genres,
	}
	require.NoError(t, db.Create(&book).Error)
	return book
}

func TestBookRepository_CreateAndFind(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormBookRepository(db)
	ctx := context.Background()

	author := seedAuthor(t, db, "Jane", "Doe")
	lang := seedLanguage(t, db, "English")
	fiction := seedGenre(t, db, "Fiction")
	drama := seedGenre(t, db, "Drama")

	book := model.Book{
		Title:      "A Quiet Shelf",
		AuthorID:   author.ID,
		LanguageID: lang.ID,
		Summary:    "about shelves",
		ISBN:       "978-1111111111",
		Genres:     []model.Genre{fiction, drama},
	}
	require.NoError(t, repo.Create(ctx, &book))

	got, err := repo.FindByID(ctx, book.ID)
	require.NoError(t, err)

	assert.Equal(t, "A Quiet Shelf", got.Title)
	assert.Equal(t, "Jane", got.Author.FirstName)
	assert.Equal(t, "English", got.Language.Name)
	names := []string{}
	for _, g := range got.Genres {
		names = append(names, g.Name)
	}
	assert.ElementsMatch(t, []string{"Fiction", "Drama"}, names)
}

func TestBookRepository_ListSearchesTitleSummaryAndAuthor(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormBookRepository(db)
	ctx := context.Background()

	lang := seedLanguage(t, db, "English")
	tolkien := seedAuthor(t, db, "John", "Tolkien")
	austen := seedAuthor(t, db, "Jane", "Austen")
	seedBook(t, db, "The Hobbit", tolkien, lang)
	seedBook(t, db, "Emma", austen, lang)

	page := Page{Number: 1, Size: 10}

	byTitle, err := repo.List(ctx, BookListParams{Page: page, Query: "hobbit"})
	require.NoError(t, err)
	require.Len(t, byTitle.Books, 1)
	assert.Equal(t, "The Hobbit", byTitle.Books[0].Title)

	byAuthor, err := repo.List(ctx, BookListParams{Page: page, Query: "austen"})
	require.NoError(t, err)
	require.Len(t, byAuthor.Books, 1)
	assert.Equal(t, "Emma", byAuthor.Books[0].Title)

	bySummary, err := repo.List(ctx, BookListParams{Page: page, Query: "summary of emma"})
	require.NoError(t, err)
	require.Len(t, bySummary.Books, 1)

	none, err := repo.List(ctx, BookListParams{Page: page, Query: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, none.Books)
}

func TestBookRepository_ListPaginationClamps(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormBookRepository(db)
	ctx := context.Background()

	lang := seedLanguage(t, db, "English")
	author := seedAuthor(t, db, "Jane", "Doe")
	for _, title := range []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"} {
		seedBook(t, db, title, author, lang)
	}

	// Past the end clamps to the last page.
	result, err := repo.List(ctx, BookListParams{Page: Page{Number: 99, Size: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, result.PageInfo.Page)
	assert.Equal(t, 3, result.PageInfo.TotalPages)
	assert.Equal(t, int64(5), result.PageInfo.Total)
	assert.Len(t, result.Books, 1)

	// Below 1 clamps to the first page.
	result, err = repo.List(ctx, BookListParams{Page: Page{Number: 0, Size: 2}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.PageInfo.Page)
	assert.Len(t, result.Books, 2)
}

func TestBookRepository_UpdateReplacesGenres(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormBookRepository(db)
	ctx := context.Background()

	lang := seedLanguage(t, db, "English")
	author := seedAuthor(t, db, "Jane", "Doe")
	fiction := seedGenre(t, db, "Fiction")
	poetry := seedGenre(t, db, "Poetry")
	book := seedBook(t, db, "Verses", author, lang, fiction)

	book.Title = "Collected Verses"
	book.Genres = []model.Genre{poetry}
	require.NoError(t, repo.Update(ctx, &book))

	got, err := repo.FindByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Collected Verses", got.Title)
	require.Len(t, got.Genres, 1)
	assert.Equal(t, "Poetry", got.Genres[0].Name)
}

func TestBookRepository_DeleteBlockedByInstances(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormBookRepository(db)
	ctx := context.Background()

	lang := seedLanguage(t, db, "English")
	author := seedAuthor(t, db, "Jane", "Doe")
	book := seedBook(t, db, "Tied Down", author, lang)

	inst := model.BookInstance{BookID: book.ID, Imprint: "First edition"}
	require.NoError(t, db.Create(&inst).Error)

	err := repo.Delete(ctx, book.ID)
	assert.ErrorIs(t, err, ErrReferentialConflict)

	// Removing the copy unblocks the delete.
	require.NoError(t, db.Delete(&inst).Error)
	require.NoError(t, repo.Delete(ctx, book.ID))

	_, err = repo.FindByID(ctx, book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBookRepository_DeleteMissing(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormBookRepository(db)

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

