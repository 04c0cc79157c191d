package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"locallibrary/internal/lending"
	"locallibrary/internal/model"
	"locallibrary/internal/repository"
	"locallibrary/internal/validation"
)

type AuthorHandler struct {
	repo repository.AuthorRepository
}

func NewAuthorHandler(repo repository.AuthorRepository) *AuthorHandler {
	return &AuthorHandler{repo: repo}
}

// ListAuthors godoc
// @Summary      List authors
// @Description  Page over authors ordered by name
// @Tags         authors
// @Produce      json
// @Param        page  query     int  false  "Page number"  default(1)
// @Success      200   {object}  AuthorListResponse
// @Failure      500   {object}  validation.ErrorResponse
// @Router       /authors [get]
func (h *AuthorHandler) ListAuthors(c *gin.Context) {
	result, err := h.repo.List(c.Request.Context(), parsePage(c, catalogPageSize))
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"AUTHOR_LIST_FAILED",
			"failed to list authors",
		)
		return
	}

	data := make([]Author, 0, len(result.Authors))
	for _, a := range result.Authors {
		data = append(data, toAuthorData(a))
	}
	c.JSON(http.StatusOK, AuthorListResponse{Data: data, Pagination: result.PageInfo})
}

// GetAuthorByID godoc
// @Summary      Get an author
// @Description  Author detail with their books and total copy count
// @Tags         authors
// @Produce      json
// @Param        id   path      string  true  "Author ID (UUID)"
// @Success      200  {object}  AuthorDetailResponse
// @Failure      400  {object}  validation.ErrorResponse
// @Failure      404  {object}  validation.ErrorResponse
// @Router       /authors/{id} [get]
func (h *AuthorHandler) GetAuthorByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest,
			"INVALID_AUTHOR_ID",
			"invalid author id",
		)
		return
	}

	ctx := c.Request.Context()

	author, err := h.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound,
				"AUTHOR_NOT_FOUND",
				"author not found",
			)
			return
		}
		writeError(c, http.StatusInternalServerError,
			"AUTHOR_FETCH_FAILED",
			"failed to fetch author",
		)
		return
	}

	instances, err := h.repo.CountInstances(ctx, id)
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"AUTHOR_FETCH_FAILED",
			"failed to count author copies",
		)
		return
	}

	detail := AuthorDetail{
		Author:        toAuthorData(*author),
		Books:         make([]BookSummary, 0, len(author.Books)),
		InstanceCount: instances,
	}
	for _, b := range author.Books {
		detail.Books = append(detail.Books, BookSummary{ID: b.ID, Title: b.Title})
	}

	c.JSON(http.StatusOK, AuthorDetailResponse{Data: detail})
}

// CreateAuthor godoc
// @Summary      Create an author
// @Tags         authors
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateAuthorRequest  true  "Author to create"
// @Success      201      {object}  AuthorResponse
// @Failure      400      {object}  validation.ErrorResponse
// @Router       /authors [post]
func (h *AuthorHandler) CreateAuthor(c *gin.Context) {
	var req CreateAuthorRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	author := model.Author{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: timePtr(req.DateOfBirth),
		DateOfDeath: timePtr(req.DateOfDeath),
	}

	if err := lending.CheckLifespan(author.DateOfBirth, author.DateOfDeath); err != nil {
		writeFieldError(c, http.StatusBadRequest,
			"INVALID_DEATH_DATE",
			"date_of_death",
			"date of death is earlier than date of birth",
		)
		return
	}

	if err := h.repo.Create(c.Request.Context(), &author); err != nil {
		writeError(c, http.StatusInternalServerError,
			"AUTHOR_CREATE_FAILED",
			"failed to create author",
		)
		return
	}

	c.JSON(http.StatusCreated, toAuthorResponse(author))
}

// UpdateAuthor godoc
// @Summary      Update an author
// @Description  Partially update an author; the lifespan rule is re-checked
// @Tags         authors
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Author ID (UUID)"
// @Param        payload  body      UpdateAuthorRequest  true  "Fields to update"
// @Success      200      {object}  AuthorResponse
// @Failure      400      {object}  validation.ErrorResponse
// @Failure      404      {object}  validation.ErrorResponse
// @Router       /authors/{id} [patch]
func (h *AuthorHandler) UpdateAuthor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest,
			"INVALID_AUTHOR_ID",
			"invalid author id",
		)
		return
	}

	ctx := c.Request.Context()

	author, err := h.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound,
				"AUTHOR_NOT_FOUND",
				"author not found",
			)
			return
		}
		writeError(c, http.StatusInternalServerError,
			"AUTHOR_FETCH_FAILED",
			"failed to fetch author",
		)
		return
	}

	var req UpdateAuthorRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	if req.FirstName != nil {
		author.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		author.LastName = *req.LastName
	}
	if req.DateOfBirth != nil {
		author.DateOfBirth = timePtr(req.DateOfBirth)
	}
	if req.DateOfDeath != nil {
		author.DateOfDeath = timePtr(req.DateOfDeath)
	}

	if err := lending.CheckLifespan(author.DateOfBirth, author.DateOfDeath); err != nil {
		writeFieldError(c, http.StatusBadRequest,
			"INVALID_DEATH_DATE",
			"date_of_death",
			"date of death is earlier than date of birth",
		)
		return
	}

	if err := h.repo.Update(ctx, author); err != nil {
		writeError(c, http.StatusInternalServerError,
			"AUTHOR_UPDATE_FAILED",
			"failed to update author",
		)
		return
	}

	c.JSON(http.StatusOK, toAuthorResponse(*author))
}

// DeleteAuthor godoc
// @Summary      Delete an author
// @Description  Blocked with a recoverable conflict while books reference the author
// @Tags         authors
// @Produce      json
// @Param        id   path  string  true  "Author ID (UUID)"
// @Success      204  "No Content"
// @Failure      404  {object}  validation.ErrorResponse
// @Failure      409  {object}  validation.ErrorResponse
// @Router       /authors/{id} [delete]
func (h *AuthorHandler) DeleteAuthor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest,
			"INVALID_AUTHOR_ID",
			"invalid author id",
		)
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			writeError(c, http.StatusNotFound,
				"AUTHOR_NOT_FOUND",
				"author not found",
			)
		case errors.Is(err, repository.ErrReferentialConflict):
			writeError(c, http.StatusConflict,
				"REFERENTIAL_CONFLICT",
				"author still has books; remove them first",
			)
		default:
			writeError(c, http.StatusInternalServerError,
				"AUTHOR_DELETE_FAILED",
				"failed to delete author",
			)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func timePtr(d *model.Date) *time.Time {
	if d == nil || d.Time.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
