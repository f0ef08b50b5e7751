package reviews

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

// Controller handles placement review routes
type Controller struct {
	services *services.Collection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewController creates a new reviews controller
func NewController(services *services.Collection, logger *zap.Logger, builder *response.Builder) *Controller {
	return &Controller{
		services: services,
		logger:   logger,
		builder:  builder,
	}
}

// Create records the caller student's review of an opportunity
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateReviewRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	review, err := c.services.Review.Create(r.Context(), contextutils.GetPrincipalID(r.Context()), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, review)
}

// Get returns one review
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	review, err := c.services.Review.Get(r.Context(), id)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, review)
}

// List returns reviews filtered by organization, opportunity or rating
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	var filter models.ReviewFilter
	if orgStr := r.URL.Query().Get("organization_id"); orgStr != "" {
		if orgID, err := strconv.ParseInt(orgStr, 10, 64); err == nil {
			filter.OrganizationID = &orgID
		}
	}
	if oppStr := r.URL.Query().Get("opportunity_id"); oppStr != "" {
		if oppID, err := strconv.ParseInt(oppStr, 10, 64); err == nil {
			filter.OpportunityID = &oppID
		}
	}
	if ratingStr := r.URL.Query().Get("min_rating"); ratingStr != "" {
		if rating, err := strconv.Atoi(ratingStr); err == nil {
			filter.MinRating = &rating
		}
	}

	page, err := c.services.Review.List(r.Context(), filter, parsePagination(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	response.WritePaginated(c.builder, w, r, page)
}

// Update rewrites the caller's own review
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	var req services.UpdateReviewRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	review, err := c.services.Review.Update(r.Context(), id, contextutils.GetPrincipalID(r.Context()), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, review)
}

// Delete removes the caller's own review
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	if err := c.services.Review.Delete(r.Context(), id, contextutils.GetPrincipalID(r.Context())); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteNoContent(w, r)
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
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
