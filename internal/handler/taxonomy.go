package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"locallibrary/internal/model"
	"locallibrary/internal/validation"
)

// TaxonomyHandler manages genres and languages. These are flat name tables,
// so it talks to gorm directly rather than through a repository.
type TaxonomyHandler struct {
	db *gorm.DB
}

func NewTaxonomyHandler(db *gorm.DB) *TaxonomyHandler {
	return &TaxonomyHandler{db: db}
}

type CreateNameRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

type NameResponse struct {
	Data struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

// CreateGenre godoc
// @Summary      Create a genre
// @Tags         taxonomy
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateNameRequest  true  "Genre to create"
// @Success      201      {object}  NameResponse
// @Failure      409      {object}  validation.ErrorResponse
// @Router       /genres [post]
func (h *TaxonomyHandler) CreateGenre(c *gin.Context) {
	var req CreateNameRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	genre := model.Genre{Name: req.Name}
	if err := h.db.WithContext(c.Request.Context()).Create(&genre).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeError(c, http.StatusConflict,
				"GENRE_EXISTS",
				"a genre with this name already exists",
			)
			return
		}
		writeError(c, http.StatusInternalServerError,
			"GENRE_CREATE_FAILED",
			"failed to create genre",
		)
		return
	}

	var resp NameResponse
	resp.Data.ID = genre.ID.String()
	resp.Data.Name = genre.Name
	c.JSON(http.StatusCreated, resp)
}

// CreateLanguage godoc
// @Summary      Create a language
// @Tags         taxonomy
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateNameRequest  true  "Language to create"
// @Success      201      {object}  NameResponse
// @Failure      409      {object}  validation.ErrorResponse
// @Router       /languages [post]
func (h *TaxonomyHandler) CreateLanguage(c *gin.Context) {
	var req CreateNameRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	lang := model.Language{Name: req.Name}
	if err := h.db.WithContext(c.Request.Context()).Create(&lang).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeError(c, http.StatusConflict,
				"LANGUAGE_EXISTS",
				"a language with this name already exists",
			)
			return
		}
		writeError(c, http.StatusInternalServerError,
			"LANGUAGE_CREATE_FAILED",
			"failed to create language",
		)
		return
	}

	var resp NameResponse
	resp.Data.ID = lang.ID.String()
	resp.Data.Name = lang.Name
	c.JSON(http.StatusCreated, resp)
}

type NameListResponse struct {
	Data []NameData `json:"data"`
}

type NameData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListGenres godoc
// @Summary      List genres
// @Tags         taxonomy
// @Produce      json
// @Success      200  {object}  NameListResponse
// @Router       /genres [get]
func (h *TaxonomyHandler) ListGenres(c *gin.Context) {
	var genres []model.Genre
	if err := h.db.WithContext(c.Request.Context()).Order("name").Find(&genres).Error; err != nil {
		writeError(c, http.StatusInternalServerError,
			"GENRE_LIST_FAILED",
			"failed to list genres",
		)
		return
	}

	resp := NameListResponse{Data: make([]NameData, 0, len(genres))}
	for _, g := range genres {
		resp.Data = append(resp.Data, NameData{ID: g.ID.String(), Name: g.Name})
	}
	c.JSON(http.StatusOK, resp)
}

// GetGenreByID godoc
// @Summary      Get a genre
// @Tags         taxonomy
// @Produce      json
// @Param        id   path      string  true  "Genre ID (UUID)"
// @Success      200  {object}  NameResponse
// @Failure      404  {object}  validation.ErrorResponse
// @Router       /genres/{id} [get]
func (h *TaxonomyHandler) GetGenreByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_GENRE_ID", "invalid genre id")
		return
	}

	var genre model.Genre
	if err := h.db.WithContext(c.Request.Context()).First(&genre, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound, "GENRE_NOT_FOUND", "genre not found")
			return
		}
		writeError(c, http.StatusInternalServerError, "GENRE_FETCH_FAILED", "failed to fetch genre")
		return
	}

	var resp NameResponse
	resp.Data.ID = genre.ID.String()
	resp.Data.Name = genre.Name
	c.JSON(http.StatusOK, resp)
}

// UpdateGenre godoc
// @Summary      Rename a genre
// @Tags         taxonomy
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Genre ID (UUID)"
// @Param        payload  body      CreateNameRequest  true  "New name"
// @Success      200      {object}  NameResponse
// @Failure      409      {object}  validation.ErrorResponse
// @Router       /genres/{id} [patch]
func (h *TaxonomyHandler) UpdateGenre(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_GENRE_ID", "invalid genre id")
		return
	}

	var req CreateNameRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	var genre model.Genre
	if err := h.db.WithContext(ctx).First(&genre, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound, "GENRE_NOT_FOUND", "genre not found")
			return
		}
		writeError(c, http.StatusInternalServerError, "GENRE_FETCH_FAILED", "failed to fetch genre")
		return
	}

	genre.Name = req.Name
	if err := h.db.WithContext(ctx).Save(&genre).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeError(c, http.StatusConflict,
				"GENRE_EXISTS",
				"a genre with this name already exists",
			)
			return
		}
		writeError(c, http.StatusInternalServerError, "GENRE_UPDATE_FAILED", "failed to update genre")
		return
	}

	var resp NameResponse
	resp.Data.ID = genre.ID.String()
	resp.Data.Name = genre.Name
	c.JSON(http.StatusOK, resp)
}

// DeleteGenre godoc
// @Summary      Delete a genre
// @Description  Blocked while books carry the genre
// @Tags         taxonomy
// @Produce      json
// @Param        id   path  string  true  "Genre ID (UUID)"
// @Success      204  "No Content"
// @Failure      409  {object}  validation.ErrorResponse
// @Router       /genres/{id} [delete]
func (h *TaxonomyHandler) DeleteGenre(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_GENRE_ID", "invalid genre id")
		return
	}

	result := h.db.WithContext(c.Request.Context()).Delete(&model.Genre{}, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			writeError(c, http.StatusConflict,
				"REFERENTIAL_CONFLICT",
				"genre is still attached to books",
			)
			return
		}
		writeError(c, http.StatusInternalServerError, "GENRE_DELETE_FAILED", "failed to delete genre")
		return
	}
	if result.RowsAffected == 0 {
		writeError(c, http.StatusNotFound, "GENRE_NOT_FOUND", "genre not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListLanguages godoc
// @Summary      List languages
// @Tags         taxonomy
// @Produce      json
// @Success      200  {object}  NameListResponse
// @Router       /languages [get]
func (h *TaxonomyHandler) ListLanguages(c *gin.Context) {
	var langs []model.Language
	if err := h.db.WithContext(c.Request.Context()).Order("name").Find(&langs).Error; err != nil {
		writeError(c, http.StatusInternalServerError,
			"LANGUAGE_LIST_FAILED",
			"failed to list languages",
		)
		return
	}

	resp := NameListResponse{Data: make([]NameData, 0, len(langs))}
	for _, l := range langs {
		resp.Data = append(resp.Data, NameData{ID: l.ID.String(), Name: l.Name})
	}
	c.JSON(http.StatusOK, resp)
}

// GetLanguageByID godoc
// @Summary      Get a language
// @Tags         taxonomy
// @Produce      json
// @Param        id   path      string  true  "Language ID (UUID)"
// @Success      200  {object}  NameResponse
// @Failure      404  {object}  validation.ErrorResponse
// @Router       /languages/{id} [get]
func (h *TaxonomyHandler) GetLanguageByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_LANGUAGE_ID", "invalid language id")
		return
	}

	var lang model.Language
	if err := h.db.WithContext(c.Request.Context()).First(&lang, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound, "LANGUAGE_NOT_FOUND", "language not found")
			return
		}
		writeError(c, http.StatusInternalServerError, "LANGUAGE_FETCH_FAILED", "failed to fetch language")
		return
	}

	var resp NameResponse
	resp.Data.ID = lang.ID.String()
	resp.Data.Name = lang.Name
	c.JSON(http.StatusOK, resp)
}

// UpdateLanguage godoc
// @Summary      Rename a language
// @Tags         taxonomy
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Language ID (UUID)"
// @Param        payload  body      CreateNameRequest  true  "New name"
// @Success      200      {object}  NameResponse
// @Failure      409      {object}  validation.ErrorResponse
// @Router       /languages/{id} [patch]
func (h *TaxonomyHandler) UpdateLanguage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_LANGUAGE_ID", "invalid language id")
		return
	}

	var req CreateNameRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	var lang model.Language
	if err := h.db.WithContext(ctx).First(&lang, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound, "LANGUAGE_NOT_FOUND", "language not found")
			return
		}
		writeError(c, http.StatusInternalServerError, "LANGUAGE_FETCH_FAILED", "failed to fetch language")
		return
	}

	lang.Name = req.Name
	if err := h.db.WithContext(ctx).Save(&lang).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeError(c, http.StatusConflict,
				"LANGUAGE_EXISTS",
				"a language with this name already exists",
			)
			return
		}
		writeError(c, http.StatusInternalServerError, "LANGUAGE_UPDATE_FAILED", "failed to update language")
		return
	}

	var resp NameResponse
	resp.Data.ID = lang.ID.String()
	resp.Data.Name = lang.Name
	c.JSON(http.StatusOK, resp)
}

// DeleteLanguage godoc
// @Summary      Delete a language
// @Description  Blocked while books reference the language
// @Tags         taxonomy
// @Produce      json
// @Param        id   path  string  true  "Language ID (UUID)"
// @Success      204  "No Content"
// @Failure      409  {object}  validation.ErrorResponse
// @Router       /languages/{id} [delete]
func (h *TaxonomyHandler) DeleteLanguage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_LANGUAGE_ID", "invalid language id")
		return
	}

	result := h.db.WithContext(c.Request.Context()).Delete(&model.Language{}, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			writeError(c, http.StatusConflict,
				"REFERENTIAL_CONFLICT",
				"language is still referenced by books",
			)
			return
		}
		writeError(c, http.StatusInternalServerError, "LANGUAGE_DELETE_FAILED", "failed to delete language")
		return
	}
	if result.RowsAffected == 0 {
		writeError(c, http.StatusNotFound, "LANGUAGE_NOT_FOUND", "language not found")
		return
	}

	c.Status(http.StatusNoContent)
}
