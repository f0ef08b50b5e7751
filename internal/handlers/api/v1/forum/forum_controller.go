package forum

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

// Controller handles community forum routes
type Controller struct {
	services *services.Collection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewController creates a new forum controller
func NewController(services *services.Collection, logger *zap.Logger, builder *response.Builder) *Controller {
	return &Controller{
		services: services,
		logger:   logger,
		builder:  builder,
	}
}

// CreatePost opens a new discussion thread
func (c *Controller) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req services.CreateForumPostRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	post, err := c.services.Forum.CreatePost(
		r.Context(),
		contextutils.GetPrincipalID(r.Context()),
		contextutils.GetRole(r.Context()),
		&req,
	)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, post)
}

// GetPost returns one thread with its replies
func (c *Controller) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	post, err := c.services.Forum.GetPost(r.Context(), id)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, post)
}

// ListPosts returns threads filtered by search text and category
func (c *Controller) ListPosts(w http.ResponseWriter, r *http.Request) {
	filter := models.ForumFilter{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	}

	page, err := c.services.Forum.ListPosts(r.Context(), filter, parsePagination(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	response.WritePaginated(c.builder, w, r, page)
}

// UpdatePost rewrites one of the caller's own threads
func (c *Controller) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	var req services.UpdateForumPostRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	post, err := c.services.Forum.UpdatePost(r.Context(), id, contextutils.GetPrincipalID(r.Context()), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, post)
}

// DeletePost removes one of the caller's own threads
func (c *Controller) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	if err := c.services.Forum.DeletePost(r.Context(), id, contextutils.GetPrincipalID(r.Context())); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteNoContent(w, r)
}

// LikePost bumps a thread's like counter
func (c *Controller) LikePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	if err := c.services.Forum.LikePost(r.Context(), id); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteNoContent(w, r)
}

// Reply attaches a reply to an existing thread
func (c *Controller) Reply(w http.ResponseWriter, r *http.Request) {
	postID, err := parseID(r)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	var req services.CreateForumReplyRequest
	if err := decode(r, &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	reply, err := c.services.Forum.Reply(
		r.Context(), postID,
		contextutils.GetPrincipalID(r.Context()),
		contextutils.GetRole(r.Context()),
		&req,
	)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, reply)
}

// DeleteReply removes one of the caller's own replies
func (c *Controller) DeleteReply(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "replyID"), 10, 64)
	if err != nil || id <= 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid id", err))
		return
	}

	if err := c.services.Forum.DeleteReply(r.Context(), id, contextutils.GetPrincipalID(r.Context())); err != nil {
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
