package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"

	"locallibrary/internal/model"
	"locallibrary/internal/repository"
)

// CatalogHandler serves the read-side views: the front-page summary, the
// availability listing and the two loan listings.
type CatalogHandler struct {
	summary   repository.SummaryRepository
	instances repository.InstanceRepository
	session   *scs.SessionManager
}

func NewCatalogHandler(
	summary repository.SummaryRepository,
	instances repository.InstanceRepository,
	session *scs.SessionManager,
) *CatalogHandler {
	return &CatalogHandler{summary: summary, instances: instances, session: session}
}

type SummaryResponse struct {
	Data struct {
		Books              int64 `json:"num_books"`
		Instances          int64 `json:"num_instances"`
		InstancesAvailable int64 `json:"num_instances_available"`
		Authors            int64 `json:"num_authors"`
		Genres             int64 `json:"num_genres"`
		Visits             int   `json:"num_visits"`
	} `json:"data"`
}

// Summary godoc
// @Summary      Catalog front page
// @Description  Object counts plus this session's running visit count
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  SummaryResponse
// @Failure      500  {object}  validation.ErrorResponse
// @Router       /catalog [get]
func (h *CatalogHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()

	counts, err := h.summary.Counts(ctx)
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"SUMMARY_FAILED",
			"failed to compute catalog summary",
		)
		return
	}

	// Per-session visit counter; starts at zero on first visit.
	visits := h.session.GetInt(ctx, "num_visits")
	h.session.Put(ctx, "num_visits", visits+1)

	var resp SummaryResponse
	resp.Data.Books = counts.Books
	resp.Data.Instances = counts.Instances
	resp.Data.InstancesAvailable = counts.InstancesAvailable
	resp.Data.Authors = counts.Authors
	resp.Data.Genres = counts.Genres
	resp.Data.Visits = visits

	c.JSON(http.StatusOK, resp)
}

// Availability godoc
// @Summary      Copies not on loan
// @Description  Union of available, reserved and maintenance copies, grouped by status
// @Tags         catalog
// @Produce      json
// @Param        page  query     int  false  "Page number"  default(1)
// @Success      200   {object}  AvailabilityResponse
// @Failure      500   {object}  validation.ErrorResponse
// @Router       /availablebooks [get]
func (h *CatalogHandler) Availability(c *gin.Context) {
	result, err := h.instances.ListByStatuses(c.Request.Context(),
		[]model.Status{model.StatusAvailable, model.StatusReserved, model.StatusMaintenance},
		parsePage(c, loanPageSize))
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"AVAILABILITY_FAILED",
			"failed to list available copies",
		)
		return
	}

	var resp AvailabilityResponse
	resp.Pagination = result.PageInfo
	resp.Data.Available = []Instance{}
	resp.Data.Reserved = []Instance{}
	resp.Data.Maintenance = []Instance{}
	for _, inst := range result.Instances {
		item := toInstanceData(inst)
		switch inst.Status {
		case model.StatusAvailable:
			resp.Data.Available = append(resp.Data.Available, item)
		case model.StatusReserved:
			resp.Data.Reserved = append(resp.Data.Reserved, item)
		case model.StatusMaintenance:
			resp.Data.Maintenance = append(resp.Data.Maintenance, item)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// MyLoans godoc
// @Summary      The caller's open loans
// @Description  Soonest due first
// @Tags         loans
// @Produce      json
// @Param        page  query     int  false  "Page number"  default(1)
// @Success      200   {object}  InstanceListResponse
// @Failure      401   {object}  validation.ErrorResponse
// @Router       /mybooks [get]
func (h *CatalogHandler) MyLoans(c *gin.Context) {
	actor := currentUser(c)

	result, err := h.instances.ListLoansByBorrower(c.Request.Context(),
		actor.ID, parsePage(c, loanPageSize))
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"LOAN_LIST_FAILED",
			"failed to list loans",
		)
		return
	}

	c.JSON(http.StatusOK, toInstanceList(result))
}

// AllLoans godoc
// @Summary      Every open loan
// @Description  Librarian view, soonest due first
// @Tags         loans
// @Produce      json
// @Param        page  query     int  false  "Page number"  default(1)
// @Success      200   {object}  InstanceListResponse
// @Failure      403   {object}  validation.ErrorResponse
// @Router       /borrowed [get]
func (h *CatalogHandler) AllLoans(c *gin.Context) {
	result, err := h.instances.ListLoans(c.Request.Context(), parsePage(c, loanPageSize))
	if err != nil {
		writeError(c, http.StatusInternalServerError,
			"LOAN_LIST_FAILED",
			"failed to list loans",
		)
		return
	}

	c.JSON(http.StatusOK, toInstanceList(result))
}
