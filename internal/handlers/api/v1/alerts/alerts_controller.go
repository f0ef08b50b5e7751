package alerts

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

// Controller handles saved-search email alert routes
type Controller struct {
	services *services.Collection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewController creates a new alerts controller
func NewController(services *services.Collection, logger *zap.Logger, builder *response.Builder) *Controller {
	return &Controller{
		services: services,
		logger:   logger,
		builder:  builder,
	}
}

// Create subscribes the caller student to a saved search
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateEmailAlertRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	alert, err := c.services.Alert.Create(r.Context(), contextutils.GetPrincipalID(r.Context()), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, alert)
}

// Get returns one of the caller's alerts
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	alert, err := c.services.Alert.Get(r.Context(), id, contextutils.GetPrincipalID(r.Context()))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, alert)
}

// List returns the caller's alerts
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	page, err := c.services.Alert.List(r.Context(), contextutils.GetPrincipalID(r.Context()), parsePagination(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	response.WritePaginated(c.builder, w, r, page)
}

// Update rewrites one of the caller's alerts
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	var req services.UpdateEmailAlertRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	alert, err := c.services.Alert.Update(r.Context(), id, contextutils.GetPrincipalID(r.Context()), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, alert)
}

// Delete unsubscribes one of the caller's alerts
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	if err := c.services.Alert.Delete(r.Context(), id, contextutils.GetPrincipalID(r.Context())); err != nil {
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
	params := models.PaginationParams{Limit: 20}
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
