package applications

import (
	"encoding/json"
	"net/http"
	"strconv"

	"internhub/internal/contextutils"
	"internhub/internal/models"
	"internhub/internal/response"
	"internhub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Controller handles the application ledger routes
type Controller struct {
	services *services.Collection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewController creates a new applications controller
func NewController(services *services.Collection, logger *zap.Logger, builder *response.Builder) *Controller {
	return &Controller{
		services: services,
		logger:   logger,
		builder:  builder,
	}
}

// Apply submits the caller student's application to one opportunity
func (c *Controller) Apply(w http.ResponseWriter, r *http.Request) {
	opportunityID, err := parseID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	var req services.ApplyRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	app, err := c.services.Application.Apply(
		r.Context(), contextutils.GetPrincipalID(r.Context()), opportunityID, &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, app)
}

// Mine lists the caller student's applications
func (c *Controller) Mine(w http.ResponseWriter, r *http.Request) {
	page, err := c.services.Application.GetMine(
		r.Context(), contextutils.GetPrincipalID(r.Context()), parsePagination(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	response.WritePaginated(c.builder, w, r, page)
}

// Get returns one application for its student or owning organization
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	app, err := c.services.Application.Get(
		r.Context(), id,
		contextutils.GetPrincipalID(r.Context()),
		contextutils.GetRole(r.Context()),
	)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, app)
}

// ForOpportunity lists the applications received on one of the caller's
// listings.
func (c *Controller) ForOpportunity(w http.ResponseWriter, r *http.Request) {
	opportunityID, err := parseID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	page, err := c.services.Application.GetForOpportunity(
		r.Context(), opportunityID, contextutils.GetPrincipalID(r.Context()), parsePagination(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	response.WritePaginated(c.builder, w, r, page)
}

// UpdateStatus applies the caller organization's review decision
func (c *Controller) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	var req services.UpdateApplicationStatusRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	app, err := c.services.Application.UpdateStatus(
		r.Context(), id, contextutils.GetPrincipalID(r.Context()), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, app)
}

// ===============================
// HELPERS
// ===============================

func parseID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, services.NewValidationError("invalid id", err)
	}
	return id, nil
}

func parsePagination(r *http.Request) models.PaginationParams {
	params := models.PaginationParams{
		Limit: 20,
		Sort:  r.URL.Query().Get("sort"),
		Order: r.URL.Query().Get("order"),
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			params.Limit = limit
		}
	}
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 1 {
			params.Offset = (page - 1) * params.Limit
		}
	}

	return params
}

func decode(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return services.NewValidationError("invalid request body", err)
	}
	return nil
}
