package opportunities

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

// Controller handles the public catalog and the owner-facing listing routes
type Controller struct {
	services *services.Collection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewController creates a new opportunities controller
func NewController(services *services.Collection, logger *zap.Logger, builder *response.Builder) *Controller {
	return &Controller{
		services: services,
		logger:   logger,
		builder:  builder,
	}
}

// Search handles the public filtered catalog listing
func (c *Controller) Search(w http.ResponseWriter, r *http.Request) {
	filter := models.OpportunityFilter{
		Search:          r.URL.Query().Get("search"),
		Location:        r.URL.Query().Get("location"),
		Industry:        r.URL.Query().Get("industry"),
		Category:        r.URL.Query().Get("category"),
		Type:            r.URL.Query().Get("type"),
		ExperienceLevel: r.URL.Query().Get("experience_level"),
		ActiveOnly:      true,
	}

	// A signed-in organization also sees its own deactivated listings
	if contextutils.GetRole(r.Context()) == models.RoleOrganization {
		filter.IncludeOwnedBy = contextutils.GetPrincipalID(r.Context())
	}

	if minStr := r.URL.Query().Get("salary_min"); minStr != "" {
		if min, err := strconv.ParseFloat(minStr, 64); err == nil {
			filter.SalaryMin = &min
		}
	}
	if maxStr := r.URL.Query().Get("salary_max"); maxStr != "" {
		if max, err := strconv.ParseFloat(maxStr, 64); err == nil {
			filter.SalaryMax = &max
		}
	}

	page, err := c.services.Opportunity.Search(r.Context(), filter, parsePagination(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	response.WritePaginated(c.builder, w, r, page)
}

// Get returns one listing and counts the view. A malformed id reads the
// same as an id that matches nothing.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewNotFoundError("opportunity not found"))
		return
	}

	opp, err := c.services.Opportunity.Get(r.Context(), id)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, opp)
}

// Featured returns the current featured listings
func (c *Controller) Featured(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	featured, err := c.services.Opportunity.GetFeatured(r.Context(), limit)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, featured)
}

// Stats returns public catalog aggregates
func (c *Controller) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.services.Opportunity.Stats(r.Context())
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, stats)
}

// Create handles listing creation by an organization
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateOpportunityRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	opp, err := c.services.Opportunity.Create(r.Context(), contextutils.GetPrincipalID(r.Context()), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, opp)
}

// Update rewrites one of the caller's own listings
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	var req services.UpdateOpportunityRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	opp, err := c.services.Opportunity.Update(r.Context(), id, contextutils.GetPrincipalID(r.Context()), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, opp)
}

// Delete removes one of the caller's own listings
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	if err := c.services.Opportunity.Delete(r.Context(), id, contextutils.GetPrincipalID(r.Context())); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteNoContent(w, r)
}

// Mine lists the caller organization's own listings, active or not
func (c *Controller) Mine(w http.ResponseWriter, r *http.Request) {
	page, err := c.services.Opportunity.GetByOrganization(
		r.Context(), contextutils.GetPrincipalID(r.Context()), parsePagination(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	response.WritePaginated(c.builder, w, r, page)
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

	// Page numbering starts at 1; offset wins when both are supplied
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 1 {
			params.Offset = (page - 1) * params.Limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			params.Offset = offset
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
