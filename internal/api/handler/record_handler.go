package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/formatrack/training-system/internal/api/metrics"
	"github.com/formatrack/training-system/internal/core/domain"
	"github.com/formatrack/training-system/internal/core/ports"
)

// RecordHandler handles HTTP requests for record listing, mutation, and
// export.
type RecordHandler struct {
	records  ports.RecordService
	exporter ports.ExportRenderer
}

func NewRecordHandler(records ports.RecordService, exporter ports.ExportRenderer) *RecordHandler {
	return &RecordHandler{records: records, exporter: exporter}
}

type recordRequest struct {
	Specialty      string  `json:"specialty"`
	Group          string  `json:"group"`
	FullName       string  `json:"full_name"`
	NationalID     string  `json:"national_id"`
	TrainingDate   string  `json:"training_date"`
	HoursCount     float64 `json:"hours_count"`
	Commune        string  `json:"commune"`
	Institution    string  `json:"institution"`
	SupervisorName string  `json:"supervisor_name"`
	SupervisorID   string  `json:"supervisor_id"`
}

type listRecordsResponse struct {
	Items   []ports.RecordView `json:"items"`
	Total   int                `json:"total"`
	Page    int                `json:"page,omitempty"`
	PerPage int                `json:"per_page,omitempty"`
}

// List returns the requester's visible, filtered record set.
//
// @Summary      List records
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        specialty        query  string  false  "Filter by specialty"
// @Param        group            query  string  false  "Filter by group"
// @Param        full_name        query  string  false  "Filter by full name"
// @Param        national_id      query  string  false  "Filter by national id"
// @Param        commune          query  string  false  "Filter by commune"
// @Param        institution      query  string  false  "Filter by institution"
// @Param        supervisor_name  query  string  false  "Filter by supervisor"
// @Param        date_from        query  string  false  "Inclusive lower bound (2006-01-02)"
// @Param        date_to          query  string  false  "Inclusive upper bound (2006-01-02)"
// @Param        page             query  int     false  "1-based page index"
// @Param        per_page         query  int     false  "Page size"
// @Success      200  {object}  listRecordsResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/records [get]
func (h *RecordHandler) List(c echo.Context) error {
	input, err := h.listInput(c)
	if err != nil {
		return err
	}

	result, err := h.records.List(c.Request().Context(), *input)
	if err != nil {
		return err
	}

	items := result.Items
	if items == nil {
		items = []ports.RecordView{}
	}
	return c.JSON(http.StatusOK, listRecordsResponse{
		Items:   items,
		Total:   result.Total,
		Page:    result.Page,
		PerPage: result.PerPage,
	})
}

// Create appends a new record owned by the acting admin.
//
// @Summary      Create a record
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      recordRequest  true  "Record fields"
// @Success      201   {object}  domain.Record
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/records [post]
func (h *RecordHandler) Create(c echo.Context) error {
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	email, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	record, err := h.records.Create(c.Request().Context(), toRecordInput(&req), email)
	if err != nil {
		metrics.RecordMutationsTotal.WithLabelValues("create", mutationOutcome(err)).Inc()
		return err
	}

	metrics.RecordMutationsTotal.WithLabelValues("create", "success").Inc()
	return c.JSON(http.StatusCreated, record)
}

// Update rewrites the whole record identified by the path id.
//
// @Summary      Update a record
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Record handle"
// @Param        body  body      recordRequest  true  "Record fields (full replace)"
// @Success      200   {object}  domain.Record
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/records/{id} [put]
func (h *RecordHandler) Update(c echo.Context) error {
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	email, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	record, err := h.records.Update(c.Request().Context(), c.Param("id"), toRecordInput(&req), email)
	if err != nil {
		metrics.RecordMutationsTotal.WithLabelValues("update", mutationOutcome(err)).Inc()
		return err
	}

	metrics.RecordMutationsTotal.WithLabelValues("update", "success").Inc()
	return c.JSON(http.StatusOK, record)
}

// Delete removes the record identified by the path id.
//
// @Summary      Delete a record
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Record handle"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/records/{id} [delete]
func (h *RecordHandler) Delete(c echo.Context) error {
	email, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.records.Delete(c.Request().Context(), c.Param("id"), email); err != nil {
		metrics.RecordMutationsTotal.WithLabelValues("delete", mutationOutcome(err)).Inc()
		return err
	}

	metrics.RecordMutationsTotal.WithLabelValues("delete", "success").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Export streams the visible, filtered record set as a downloadable
// artifact. Visibility rules are the same as List.
//
// @Summary      Export records
// @Tags         records
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  map[string]string
// @Router       /v1/records/export [get]
func (h *RecordHandler) Export(c echo.Context) error {
	input, err := h.listInput(c)
	if err != nil {
		return err
	}
	// the artifact always covers the full filtered set
	input.Page, input.PerPage = 0, 0

	result, err := h.records.List(c.Request().Context(), *input)
	if err != nil {
		return err
	}

	filename, content, err := h.exporter.Render(c.Request().Context(), result.Items)
	if err != nil {
		return err
	}

	metrics.RecordExportsTotal.Inc()
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "text/csv", content)
}

// listInput binds the identity claims and query parameters into a list
// request.
func (h *RecordHandler) listInput(c echo.Context) (*ports.ListRecordsInput, error) {
	email, role, err := ctxIdentity(c)
	if err != nil {
		return nil, err
	}

	input := ports.ListRecordsInput{
		RequesterEmail: email,
		RequesterRole:  role,
		Specialty:      c.QueryParam("specialty"),
		Group:          c.QueryParam("group"),
		FullName:       c.QueryParam("full_name"),
		NationalID:     c.QueryParam("national_id"),
		Commune:        c.QueryParam("commune"),
		Institution:    c.QueryParam("institution"),
		SupervisorName: c.QueryParam("supervisor_name"),
	}

	if input.DateFrom, err = queryDate(c, "date_from"); err != nil {
		return nil, err
	}
	if input.DateTo, err = queryDate(c, "date_to"); err != nil {
		return nil, err
	}

	if page := c.QueryParam("page"); page != "" {
		if input.Page, err = strconv.Atoi(page); err != nil || input.Page < 1 {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "page must be a positive integer")
		}
	}
	if perPage := c.QueryParam("per_page"); perPage != "" {
		if input.PerPage, err = strconv.Atoi(perPage); err != nil || input.PerPage < 1 {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "per_page must be a positive integer")
		}
	}

	return &input, nil
}

func queryDate(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(domain.TrainingDateLayout, raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, name+" must be a date in 2006-01-02 form")
	}
	return d, nil
}

func toRecordInput(req *recordRequest) ports.RecordInput {
	return ports.RecordInput{
		Specialty:      req.Specialty,
		Group:          req.Group,
		FullName:       req.FullName,
		NationalID:     req.NationalID,
		TrainingDate:   req.TrainingDate,
		HoursCount:     req.HoursCount,
		Commune:        req.Commune,
		Institution:    req.Institution,
		SupervisorName: req.SupervisorName,
		SupervisorID:   req.SupervisorID,
	}
}

// mutationOutcome maps a mutation error to its metric label.
func mutationOutcome(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return "validation_error"
	case errors.Is(err, domain.ErrDuplicateNationalID):
		return "conflict"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrRecordNotFound):
		return "not_found"
	default:
		return "error"
	}
}
