package handler

import (
	"github.com/google/uuid"

	"locallibrary/internal/model"
	"locallibrary/internal/repository"
)

type CreateAuthorRequest struct {
	FirstName   string      `json:"first_name" binding:"required,min=1,max=100"`
	LastName    string      `json:"last_name" binding:"required,min=1,max=100"`
	DateOfBirth *model.Date `json:"date_of_birth" swaggertype:"string" example:"1950-01-01"`
	DateOfDeath *model.Date `json:"date_of_death" swaggertype:"string" example:"2020-06-15"`
}

type UpdateAuthorRequest struct {
	FirstName   *string     `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName    *string     `json:"last_name" binding:"omitempty,min=1,max=100"`
	DateOfBirth *model.Date `json:"date_of_birth" swaggertype:"string" example:"1950-01-01"`
	DateOfDeath *model.Date `json:"date_of_death" swaggertype:"string" example:"2020-06-15"`
}

type Author struct {
	ID          uuid.UUID   `json:"id"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	DateOfBirth *model.Date `json:"date_of_birth" swaggertype:"string" example:"1950-01-01"`
	DateOfDeath *model.Date `json:"date_of_death" swaggertype:"string" example:"2020-06-15"`
}

type AuthorSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type AuthorResponse struct {
	Data Author `json:"data"`
}

type AuthorDetail struct {
	Author
	Books         []BookSummary `json:"books"`
	InstanceCount int64         `json:"instance_count"`
}

type AuthorDetailResponse struct {
	Data AuthorDetail `json:"data"`
}

type AuthorListResponse struct {
	Data       []Author            `json:"data"`
	Pagination repository.PageInfo `json:"pagination"`
}
