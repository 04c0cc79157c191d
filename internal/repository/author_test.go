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

func TestAuthorRepository_ListOrderedByName(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormAuthorRepository(db)
	ctx := context.Background()

	seedAuthor(t, db, "John", "Tolkien")
	seedAuthor(t, db, "Jane", "Austen")
	seedAuthor(t, db, "Charles", "Dickens")

	result, err := repo.List(ctx, Page{Number: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, result.Authors, 3)
	assert.Equal(t, "Austen", result.Authors[0].LastName)
	assert.Equal(t, "Dickens", result.Authors[1].LastName)
	assert.Equal(t, "Tolkien", result.Authors[2].LastName)
}

func TestAuthorRepository_DeleteBlockedByBooks(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormAuthorRepository(db)
	ctx := context.Background()

	lang := seedLanguage(t, db, "English")
	author := seedAuthor(t, db, "Jane", "Doe")
	book := seedBook(t, db, "Still Here", author, lang)

	assert.ErrorIs(t, repo.Delete(ctx, author.ID), ErrReferentialConflict)

	require.NoError(t, db.Delete(&book).Error)
	require.NoError(t, repo.Delete(ctx, author.ID))

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), gorm.ErrRecordNotFound)
}

func TestAuthorRepository_CountInstances(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormAuthorRepository(db)
	ctx := context.Background()

	lang := seedLanguage(t, db, "English")
	doe := seedAuthor(t, db, "Jane", "Doe")
	roe := seedAuthor(t, db, "Richard", "Roe")
	first := seedBook(t, db, "First", doe, lang)
	second := seedBook(t, db, "Second", doe, lang)
	other := seedBook(t, db, "Other", roe, lang)

	seedInstance(t, db, first, model.StatusAvailable)
	seedInstance(t, db, first, model.StatusMaintenance)
	seedInstance(t, db, second, model.StatusReserved)
	seedInstance(t, db, other, model.StatusAvailable)

	n, err := repo.CountInstances(ctx, doe.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.CountInstances(ctx, roe.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAuthorRepository_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormAuthorRepository(db)
	ctx := context.Background()

	author := seedAuthor(t, db, "Jane", "Doe")

	birth := date(1950, 1, 1)
	author.DateOfBirth = &birth
	require.NoError(t, repo.Update(ctx, &author))

	got, err := repo.FindByID(ctx, author.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DateOfBirth)
	assert.Equal(t, birth, got.DateOfBirth.UTC())

	// Clearing a date persists as NULL.
	author.DateOfBirth = nil
	require.NoError(t, repo.Update(ctx, &author))

	got, err = repo.FindByID(ctx, author.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DateOfBirth)
}
