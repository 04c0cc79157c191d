package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"locallibrary/internal/lending"
	"locallibrary/internal/model"
	"locallibrary/internal/repository"
	"locallibrary/internal/validation"
)

type InstanceHandler struct {
	repo repository.InstanceRepository
	now  nowFunc
}

func NewInstanceHandler(repo repository.InstanceRepository, now nowFunc) *InstanceHandler {
	return &InstanceHandler{repo: repo, now: now}
}

func (h *InstanceHandler) load(c *gin.Context) (*model.BookInstance, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest,
			"INVALID_INSTANCE_ID",
			"invalid book instance id",
		)
		return nil, false
	}

	inst, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound,
				"INSTANCE_NOT_FOUND",
				"book instance not found",
			)
			return nil, false
		}
		writeError(c, http.StatusInternalServerError,
			"INSTANCE_FETCH_FAILED",
			"failed to fetch book instance",
		)
		return nil, false
	}
	return inst, true
}

// GetInstanceByID godoc
// @Summary      Get a book copy
// @Tags         instances
// @Produce      json
// @Param        id   path      string  true  "Instance ID (UUID)"
// @Success      200  {object}  InstanceResponse
// @Failure      404  {object}  validation.ErrorResponse
// @Router       /bookinstances/{id} [get]
func (h *InstanceHandler) GetInstanceByID(c *gin.Context) {
	inst, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toInstanceResponse(*inst))
}

// ListInstances godoc
// @Summary      List book copies
// @Tags         instances
// @Produce      json
// @Param        page  query     int  false  "Page number"
// @Success      200   {object}  InstanceListResponse
// @Router       /bookinstances [get]
func (h *InstanceHandler) ListInstances(c *gin.Context) {
	result, err := h.repo.List(c.Request.Context(), parsePage(c, loanPageSize))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "INTERNAL", "could not list book copies")
		return
	}
	c.JSON(http.StatusOK, toInstanceList(result))
}

// CreateInstance godoc
// @Summary      Add a copy to the catalog
// @Description  New copies default to maintenance until staff shelve them
// @Tags         instances
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateInstanceRequest  true  "Copy to create"
// @Success      201      {object}  InstanceResponse
// @Failure      400      {object}  validation.ErrorResponse
// @Router       /bookinstances [post]
func (h *InstanceHandler) CreateInstance(c *gin.Context) {
	var req CreateInstanceRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	status := model.StatusMaintenance
	if req.Status != "" {
		parsed, err := model.ParseStatus(req.Status)
		if err != nil {
			writeFieldError(c, http.StatusBadRequest,
				"INVALID_STATUS", "status", "unknown status",
			)
			return
		}
		status = parsed
	}
	if status == model.StatusOnLoan {
		// A copy cannot enter the catalog already on loan; loans go
		// through checkout.
		writeFieldError(c, http.StatusBadRequest,
			"INVALID_STATUS", "status", "new copies cannot start on loan",
		)
		return
	}

	inst := model.BookInstance{
		BookID:  req.BookID,
		Imprint: req.Imprint,
		Status:  status,
	}

	ctx := c.Request.Context()

	if err := h.repo.Create(ctx, &inst); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			writeError(c, http.StatusBadRequest,
				"BOOK_NOT_FOUND",
				"book does not exist",
			)
			return
		}
		writeError(c, http.StatusInternalServerError,
			"INSTANCE_CREATE_FAILED",
			"failed to create book instance",
		)
		return
	}

	created, err := h.repo.FindByID(ctx, inst.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"INSTANCE_FETCH_FAILED",
			"failed to fetch created instance",
		)
		return
	}

	c.JSON(http.StatusCreated, toInstanceResponse(*created))
}

// SelfCheckout claims an available copy for the calling user. Whatever
// borrower or status the client put in the body is ignored: the loan always
// goes to the session's user with the default loan period.
//
// SelfCheckout godoc
// @Summary      Borrow an available copy
// @Tags         instances
// @Produce      json
// @Param        id   path      string  true  "Instance ID (UUID)"
// @Success      200  {object}  InstanceResponse
// @Failure      404  {object}  validation.ErrorResponse
// @Failure      409  {object}  validation.ErrorResponse
// @Router       /bookinstances/{id}/checkout [post]
func (h *InstanceHandler) SelfCheckout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest,
			"INVALID_INSTANCE_ID",
			"invalid book instance id",
		)
		return
	}

	actor := currentUser(c)
	due := lending.ProposedDueDate(h.now())

	inst, err := h.repo.Checkout(c.Request.Context(), id, actor.ID, due)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			writeError(c, http.StatusNotFound,
				"INSTANCE_NOT_FOUND",
				"book instance not found",
			)
		case errors.Is(err, lending.ErrNotAvailable):
			writeError(c, http.StatusConflict,
				"NOT_AVAILABLE",
				"copy is not available for checkout",
			)
		default:
			writeError(c, http.StatusInternalServerError,
				"CHECKOUT_FAILED",
				"failed to check out copy",
			)
		}
		return
	}

	c.JSON(http.StatusOK, toInstanceResponse(*inst))
}

// ReturnInstance godoc
// @Summary      Return a loaned copy
// @Tags         instances
// @Produce      json
// @Param        id   path      string  true  "Instance ID (UUID)"
// @Success      200  {object}  InstanceResponse
// @Failure      409  {object}  validation.ErrorResponse
// @Router       /bookinstances/{id}/return [post]
func (h *InstanceHandler) ReturnInstance(c *gin.Context) {
	inst, ok := h.load(c)
	if !ok {
		return
	}

	if err := lending.Return(inst); err != nil {
		writeError(c, http.StatusConflict,
			"NOT_ON_LOAN",
			"copy is not on loan",
		)
		return
	}

	if err := h.repo.Update(c.Request.Context(), inst); err != nil {
		writeError(c, http.StatusInternalServerError,
			"INSTANCE_UPDATE_FAILED",
			"failed to update book instance",
		)
		return
	}

	c.JSON(http.StatusOK, toInstanceResponse(*inst))
}

// WithdrawInstance godoc
// @Summary      Pull a copy from circulation
// @Tags         instances
// @Produce      json
// @Param        id   path      string  true  "Instance ID (UUID)"
// @Success      200  {object}  InstanceResponse
// @Router       /bookinstances/{id}/withdraw [post]
func (h *InstanceHandler) WithdrawInstance(c *gin.Context) {
	inst, ok := h.load(c)
	if !ok {
		return
	}

	lending.Withdraw(inst)

	if err := h.repo.Update(c.Request.Context(), inst); err != nil {
		writeError(c, http.StatusInternalServerError,
			"INSTANCE_UPDATE_FAILED",
			"failed to update book instance",
		)
		return
	}

	c.JSON(http.StatusOK, toInstanceResponse(*inst))
}

// StaffUpdateInstance is the librarian edit of a copy: imprint, due date,
// borrower and status in one request. Whatever the edit, the loan
// invariants hold afterwards: on-loan copies have a borrower, everything
// else has neither borrower nor due date.
//
// StaffUpdateInstance godoc
// @Summary      Staff edit of a copy
// @Tags         instances
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Instance ID (UUID)"
// @Param        payload  body      StaffUpdateInstanceRequest  true  "Fields to update"
// @Success      200      {object}  InstanceResponse
// @Failure      400      {object}  validation.ErrorResponse
// @Failure      404      {object}  validation.ErrorResponse
// @Router       /bookinstances/{id}/staff [patch]
func (h *InstanceHandler) StaffUpdateInstance(c *gin.Context) {
	inst, ok := h.load(c)
	if !ok {
		return
	}

	var req StaffUpdateInstanceRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	if req.Imprint != nil {
		inst.Imprint = *req.Imprint
	}
	if req.Status != nil {
		status, err := model.ParseStatus(*req.Status)
		if err != nil {
			writeFieldError(c, http.StatusBadRequest,
				"INVALID_STATUS", "status", "unknown status",
			)
			return
		}
		inst.Status = status
	}
	if req.BorrowerID != nil {
		inst.BorrowerID = req.BorrowerID
	}
	if req.DueBack != nil {
		due := timePtr(req.DueBack)
		if due != nil {
			if err := lending.CheckDueBack(h.now(), *due); err != nil {
				writeFieldError(c, http.StatusBadRequest,
					"INVALID_DATE_RANGE", "due_back",
					"due date more than 4 weeks ahead",
				)
				return
			}
		}
		inst.DueBack = due
	}

	if inst.Status == model.StatusOnLoan {
		if inst.BorrowerID == nil {
			writeFieldError(c, http.StatusBadRequest,
				"BORROWER_REQUIRED", "borrower_id",
				"a copy on loan must have a borrower",
			)
			return
		}
	} else {
		// Only loans carry loan state.
		inst.BorrowerID = nil
		inst.DueBack = nil
	}

	if err := h.repo.Update(c.Request.Context(), inst); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			writeError(c, http.StatusBadRequest,
				"BORROWER_NOT_FOUND",
				"borrower does not exist",
			)
			return
		}
		writeError(c, http.StatusInternalServerError,
			"INSTANCE_UPDATE_FAILED",
			"failed to update book instance",
		)
		return
	}

	updated, err := h.repo.FindByID(c.Request.Context(), inst.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"INSTANCE_FETCH_FAILED",
			"failed to fetch updated instance",
		)
		return
	}

	c.JSON(http.StatusOK, toInstanceResponse(*updated))
}

// DeleteInstance godoc
// @Summary      Delete a copy
// @Tags         instances
// @Produce      json
// @Param        id   path  string  true  "Instance ID (UUID)"
// @Success      204  "No Content"
// @Failure      404  {object}  validation.ErrorResponse
// @Router       /bookinstances/{id} [delete]
func (h *InstanceHandler) DeleteInstance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest,
			"INVALID_INSTANCE_ID",
			"invalid book instance id",
		)
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, http.StatusNotFound,
				"INSTANCE_NOT_FOUND",
				"book instance not found",
			)
			return
		}
		writeError(c, http.StatusInternalServerError,
			"INSTANCE_DELETE_FAILED",
			"failed to delete book instance",
		)
		return
	}

	c.Status(http.StatusNoContent)
}

// ProposeRenewal godoc
// @Summary      Present a renewal
// @Description  Returns the copy plus a prefilled due date three weeks out
// @Tags         loans
// @Produce      json
// @Param        id   path      string  true  "Instance ID (UUID)"
// @Success      200  {object}  RenewProposalResponse
// @Failure      404  {object}  validation.ErrorResponse
// @Router       /bookinstances/{id}/renew [get]
func (h *InstanceHandler) ProposeRenewal(c *gin.Context) {
	inst, ok := h.load(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, RenewProposalResponse{Data: RenewProposal{
		Instance:        toInstanceData(*inst),
		ProposedDueBack: model.Date{Time: lending.ProposedDueDate(h.now())},
	}})
}

// RenewInstance godoc
// @Summary      Renew a loan
// @Description  Overwrites due_back within the four-week window; status never changes
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        id       path      string        true  "Instance ID (UUID)"
// @Param        payload  body      RenewRequest  true  "New due date"
// @Success      200      {object}  InstanceResponse
// @Failure      400      {object}  validation.ErrorResponse
// @Failure      409      {object}  validation.ErrorResponse
// @Router       /bookinstances/{id}/renew [post]
func (h *InstanceHandler) RenewInstance(c *gin.Context) {
	inst, ok := h.load(c)
	if !ok {
		return
	}

	var req RenewRequest
	if !validation.BindAndValidateJSON(c, &req) {
		return
	}

	if err := lending.Renew(inst, h.now(), req.DueBack.Time); err != nil {
		switch {
		case errors.Is(err, lending.ErrRenewalInPast):
			writeFieldError(c, http.StatusBadRequest,
				"INVALID_RENEWAL_DATE", "due_back",
				"invalid date - renewal in past",
			)
		case errors.Is(err, lending.ErrRenewalTooFar):
			writeFieldError(c, http.StatusBadRequest,
				"INVALID_DATE_RANGE", "due_back",
				"invalid date - renewal more than 4 weeks ahead",
			)
		case errors.Is(err, lending.ErrNotOnLoan):
			writeError(c, http.StatusConflict,
				"NOT_ON_LOAN",
				"only copies on loan can be renewed",
			)
		default:
			writeError(c, http.StatusInternalServerError,
				"RENEW_FAILED",
				"failed to renew loan",
			)
		}
		return
	}

	if err := h.repo.Update(c.Request.Context(), inst); err != nil {
		writeError(c, http.StatusInternalServerError,
			"INSTANCE_UPDATE_FAILED",
			"failed to update book instance",
		)
		return
	}

	c.JSON(http.StatusOK, toInstanceResponse(*inst))
}
