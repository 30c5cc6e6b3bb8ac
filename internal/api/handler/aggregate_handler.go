package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/formatrack/training-system/internal/core/ports"
)

// AggregateHandler serves the cached derived reads: the dropdown option
// index and the summary statistics.
type AggregateHandler struct {
	aggregates ports.AggregateService
}

func NewAggregateHandler(aggregates ports.AggregateService) *AggregateHandler {
	return &AggregateHandler{aggregates: aggregates}
}

// Options returns the cascading dropdown index.
//
// @Summary      Dropdown option index
// @Tags         aggregates
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.OptionIndex
// @Router       /v1/options [get]
func (h *AggregateHandler) Options(c echo.Context) error {
	blob, err := h.aggregates.GetOptions(c.Request().Context())
	if err != nil {
		return err
	}
	// the cached blob is served as-is
	return c.JSONBlob(http.StatusOK, blob)
}

// Summary returns the shared statistics bundle.
//
// @Summary      Summary statistics
// @Tags         aggregates
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.SummaryStats
// @Router       /v1/stats [get]
func (h *AggregateHandler) Summary(c echo.Context) error {
	stats, err := h.aggregates.GetSummary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
