package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"locallibrary/internal/model"
	"locallibrary/internal/repository"
	"locallibrary/internal/validation"
)

type BookHandler struct {
	repo repository.BookRepository
	db   *gorm.DB
}

func NewBookHandler(repo repository.BookRepository, db *gorm.DB) *BookHandler {
	return &BookHandler{repo: repo, db: db}
}

// resolveGenres loads the referenced Genre rows so associations are written
// against existing taxonomy entries only.
func (h *BookHandler) resolveGenres(c *gin.Context, ids []uuid.UUID) ([]model.Genre, bool) {
	if len(ids) == 0 {
		return nil, true
	}

	var genres []model.Genre
	if err := h.db.WithContext(c.Request.Context()).
		Find(&genres, "id IN ?", ids).Error; err != nil {

		writeError(c, http.StatusInternalServerError,
			"GENRE_FETCH_FAILED",
			"failed to resolve genres",
		)
		return nil, false
	}
	if len(genres) != len(ids) {
		writeError(c, http.StatusBadRequest,
			"GENRE_NOT_FOUND",
			"one or more genres do not exist",
		)
		return nil, false
	}
	return genres, true
}

// ListBooks godoc
// @Summary      List books
// @Description  Page over titles; q filters by title, summary or author name
// @Tags         books
// @Produce      json
// @Param        page  query     int     false  "Page number"  default(1)
// @Param        q     query     string  false  "Free-text filter"
// @Success      200   {object}  BookListResponse
// @Failure      500   {object}  validation.ErrorResponse
// @Router       /books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	params := repository.BookListParams{
		Page:  parsePage(c, catalogPageSize),
		Query: c.Query("q"),
	}

	result, err := h.repo.List(c.Request.Context(), params)
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"BOOK_LIST_FAILED",
			"failed to fetch books",
		)
		return
	}

	data := make([]Book, 0, len(result.Books))
	for _, b := range result.Books {
		data = append(data, toBookData(b))
	}
	c.JSON(http.StatusOK, BookListResponse{Data: data, Pagination: result.PageInfo})
}

// GetBookByID godoc
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Param        id   path      string  true  "Book ID (UUID)"
// @Success      200  {object}  BookResponse
// @Failure      400  {object}  validation.ErrorResponse
// @Failure      404  {object}  validation.ErrorResponse
// @Router       /books/{id} [get]
func (h *BookHandler) GetBookByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest,
			"INVALID_BOOK_ID",
			"invalid book id",
		)
		return
	}

	book, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound,
				"BOOK_NOT_FOUND",
				"book not found",
			)
			return
		}
		writeError(c, http.StatusInternalServerError,
			"BOOK_FETCH_FAILED",
			"failed to fetch book",
		)
		return
	}

	c.JSON(http.StatusOK, toBookResponse(*book))
}

// CreateBook godoc
// @Summary      Create a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateBookRequest  true  "Book to create"
// @Success      201      {object}  BookResponse
// @Failure      400      {object}  validation.ErrorResponse
// @Router       /books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	genres, ok := h.resolveGenres(c, req.GenreIDs)
	if !ok {
		return
	}

	book := model.Book{
		Title:      req.Title,
		AuthorID:   req.AuthorID,
		Summary:    req.Summary,
		ISBN:       req.ISBN,
		LanguageID: req.LanguageID,
		Genres:     genres,
		CoverURL:   req.CoverURL,
	}

	ctx := c.Request.Context()

	if err := h.repo.Create(ctx, &book); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			writeError(c, http.StatusBadRequest,
				"REFERENCE_NOT_FOUND",
				"author or language does not exist",
			)
			return
		}
		writeError(c, http.StatusInternalServerError,
			"BOOK_CREATE_FAILED",
			"failed to create book",
		)
		return
	}

	created, err := h.repo.FindByID(ctx, book.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"BOOK_FETCH_FAILED",
			"failed to fetch created book",
		)
		return
	}

	c.JSON(http.StatusCreated, toBookResponse(*created))
}

// UpdateBook godoc
// @Summary      Update a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Book ID (UUID)"
// @Param        payload  body      UpdateBookRequest  true  "Fields to update"
// @Success      200      {object}  BookResponse
// @Failure      400      {object}  validation.ErrorResponse
// @Failure      404      {object}  validation.ErrorResponse
// @Router       /books/{id} [patch]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest,
			"INVALID_BOOK_ID",
			"invalid book id",
		)
		return
	}

	ctx := c.Request.Context()

	book, err := h.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound,
				"BOOK_NOT_FOUND",
				"book not found",
			)
			return
		}
		writeError(c, http.StatusInternalServerError,
			"BOOK_FETCH_FAILED",
			"failed to fetch book",
		)
		return
	}

	var req UpdateBookRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.AuthorID != nil {
		book.AuthorID = *req.AuthorID
	}
	if req.Summary != nil {
		book.Summary = *req.Summary
	}
	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.LanguageID != nil {
		book.LanguageID = *req.LanguageID
	}
	if req.CoverURL != nil {
		book.CoverURL = *req.CoverURL
	}
	if req.GenreIDs != nil {
		genres, ok := h.resolveGenres(c, *req.GenreIDs)
		if !ok {
			return
		}
		book.Genres = genres
	}

	if err := h.repo.Update(ctx, book); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			writeError(c, http.StatusBadRequest,
				"REFERENCE_NOT_FOUND",
				"author or language does not exist",
			)
			return
		}
		writeError(c, http.StatusInternalServerError,
			"BOOK_UPDATE_FAILED",
			"failed to update book",
		)
		return
	}

	updated, err := h.repo.FindByID(ctx, book.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"BOOK_FETCH_FAILED",
			"failed to fetch updated book",
		)
		return
	}

	c.JSON(http.StatusOK, toBookResponse(*updated))
}

// DeleteBook godoc
// @Summary      Delete a book
// @Description  Blocked with a recoverable conflict while copies exist
// @Tags         books
// @Produce      json
// @Param        id   path  string  true  "Book ID (UUID)"
// @Success      204  "No Content"
// @Failure      404  {object}  validation.ErrorResponse
// @Failure      409  {object}  validation.ErrorResponse
// @Router       /books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest,
			"INVALID_BOOK_ID",
			"invalid book id",
		)
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			writeError(c, http.StatusNotFound,
				"BOOK_NOT_FOUND",
				"book not found",
			)
		case errors.Is(err, repository.ErrReferentialConflict):
			writeError(c, http.StatusConflict,
				"REFERENTIAL_CONFLICT",
				"book still has copies; remove them first",
			)
		default:
			writeError(c, http.StatusInternalServerError,
				"BOOK_DELETE_FAILED",
				"failed to delete book",
			)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
