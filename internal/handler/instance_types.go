package handler

import (
	"github.com/google/uuid"

	"locallibrary/internal/model"
	"locallibrary/internal/repository"
)

type CreateInstanceRequest struct {
	BookID  uuid.UUID `json:"book_id" binding:"required"`
	Imprint string    `json:"imprint" binding:"required,min=1"`
	// Status is optional and defaults to maintenance, matching a copy
	// that has just arrived and is not yet shelved.
	Status string `json:"status" binding:"omitempty"`
}

// StaffUpdateInstanceRequest is the staff-side edit of a copy's loan state.
type StaffUpdateInstanceRequest struct {
	Imprint    *string     `json:"imprint" binding:"omitempty,min=1"`
	DueBack    *model.Date `json:"due_back" swaggertype:"string" example:"2026-03-31"`
	BorrowerID *uuid.UUID  `json:"borrower_id"`
	Status     *string     `json:"status"`
}

type RenewRequest struct {
	DueBack model.Date `json:"due_back" binding:"required" swaggertype:"string" example:"2026-03-31"`
}

type Instance struct {
	ID       uuid.UUID   `json:"id"`
	Book     string      `json:"book"`
	BookID   uuid.UUID   `json:"book_id"`
	Imprint  string      `json:"imprint"`
	DueBack  *model.Date `json:"due_back" swaggertype:"string" example:"2026-03-31"`
	Borrower *string     `json:"borrower"`
	Status   string      `json:"status"`
}

type InstanceResponse struct {
	Data Instance `json:"data"`
}

type InstanceListResponse struct {
	Data       []Instance          `json:"data"`
	Pagination repository.PageInfo `json:"pagination"`
}

// RenewProposal is what a GET on the renew endpoint returns: the copy and a
// prefilled due date three weeks out.
type RenewProposal struct {
	Instance        Instance   `json:"instance"`
	ProposedDueBack model.Date `json:"proposed_due_back"`
}

type RenewProposalResponse struct {
	Data RenewProposal `json:"data"`
}

// AvailabilityResponse is the availability listing: a page over everything
// not on loan, with the three status groups split out for display.
type AvailabilityResponse struct {
	Data struct {
		Available   []Instance `json:"available"`
		Reserved    []Instance `json:"reserved"`
		Maintenance []Instance `json:"maintenance"`
	} `json:"data"`
	Pagination repository.PageInfo `json:"pagination"`
}
