package auth

import (
	"encoding/json"
	"net/http"

	"internhub/internal/contextutils"
	"internhub/internal/models"
	"internhub/internal/response"
	"internhub/internal/services"

	"go.uber.org/zap"
)

// Controller handles account registration, login and profile routes
type Controller struct {
	services *services.Collection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewController creates a new auth controller
func NewController(services *services.Collection, logger *zap.Logger, builder *response.Builder) *Controller {
	return &Controller{
		services: services,
		logger:   logger,
		builder:  builder,
	}
}

// Register handles student signup
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterStudentRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	resp, err := c.services.Auth.RegisterStudent(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, resp)
}

// RegisterOrganization handles organization signup
func (c *Controller) RegisterOrganization(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterOrganizationRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	resp, err := c.services.Auth.RegisterOrganization(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, resp)
}

// Login handles authentication for both principal kinds
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	resp, err := c.services.Auth.Login(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, resp)
}

// Me returns the authenticated principal's own profile
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	principalID := contextutils.GetPrincipalID(r.Context())

	var (
		profile interface{}
		err     error
	)
	switch contextutils.GetRole(r.Context()) {
	case models.RoleStudent:
		profile, err = c.services.Auth.GetStudent(r.Context(), principalID)
	case models.RoleOrganization:
		profile, err = c.services.Auth.GetOrganization(r.Context(), principalID)
	default:
		err = services.NewUnauthorizedError("unknown principal")
	}
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, profile)
}

// UpdateProfile rewrites the caller's own profile
func (c *Controller) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principalID := contextutils.GetPrincipalID(r.Context())

	switch contextutils.GetRole(r.Context()) {
	case models.RoleStudent:
		var req services.UpdateStudentProfileRequest
		if err := decode(r, &req); err != nil {
			c.builder.WriteError(w, r, err)
			return
		}
		student, err := c.services.Auth.UpdateStudentProfile(r.Context(), principalID, &req)
		if err != nil {
			c.builder.WriteError(w, r, err)
			return
		}
		c.builder.WriteSuccess(w, r, student)
	case models.RoleOrganization:
		var req services.UpdateOrganizationProfileRequest
		if err := decode(r, &req); err != nil {
			c.builder.WriteError(w, r, err)
			return
		}
		org, err := c.services.Auth.UpdateOrganizationProfile(r.Context(), principalID, &req)
		if err != nil {
			c.builder.WriteError(w, r, err)
			return
		}
		c.builder.WriteSuccess(w, r, org)
	default:
		c.builder.WriteError(w, r, services.NewUnauthorizedError("unknown principal"))
	}
}

// ChangePassword rotates the caller's password
func (c *Controller) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req services.ChangePasswordRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	err := c.services.Auth.ChangePassword(
		r.Context(),
		contextutils.GetPrincipalID(r.Context()),
		contextutils.GetRole(r.Context()),
		&req,
	)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteNoContent(w, r)
}

// decode parses a JSON body, rejecting unknown fields
func decode(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return services.NewValidationError("invalid request body", err)
	}
	return nil
}
