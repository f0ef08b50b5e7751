package services

import (
	"context"
	"errors"

	"internhub/internal/models"
	"internhub/internal/repositories"

	"go.uber.org/zap"
)

// ResourceService manages career resource articles
type ResourceService interface {
	Create(ctx context.Context, authorID int64, req *CreateResourceRequest) (*models.Resource, error)
	Get(ctx context.Context, id int64) (*models.Resource, error)
	List(ctx context.Context, filter models.ResourceFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Resource], error)
	Update(ctx context.Context, id, authorID int64, req *UpdateResourceRequest) (*models.Resource, error)
	Delete(ctx context.Context, id, authorID int64) error
}

type resourceService struct {
	resources repositories.ResourceRepository
	logger    *zap.Logger
}

// NewResourceService creates a new ResourceService
func NewResourceService(resources repositories.ResourceRepository, logger *zap.Logger) ResourceService {
	return &resourceService{resources: resources, logger: logger}
}

func (s *resourceService) Create(ctx context.Context, authorID int64, req *CreateResourceRequest) (*models.Resource, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid resource", fields)
	}

	resource := &models.Resource{
		AuthorID: authorID,
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     models.NormalizeList(req.Tags...),
	}

	if err := s.resources.Create(ctx, resource); err != nil {
		s.logger.Error("Failed to create resource", zap.Error(err))
		return nil, NewInternalError("failed to create resource")
	}
	return s.resources.GetByID(ctx, resource.ID)
}

// Get returns one article and bumps its view counter
func (s *resourceService) Get(ctx context.Context, id int64) (*models.Resource, error) {
	resource, err := s.resources.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("resource not found")
		}
		s.logger.Error("Failed to get resource", zap.Int64("resource_id", id), zap.Error(err))
		return nil, NewInternalError("failed to load resource")
	}

	if err := s.resources.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("Failed to increment resource views", zap.Int64("resource_id", id), zap.Error(err))
	} else {
		resource.ViewsCount++
	}
	return resource, nil
}

func (s *resourceService) List(ctx context.Context, filter models.ResourceFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Resource], error) {
	result, err := s.resources.List(ctx, filter, params)
	if err != nil {
		s.logger.Error("Failed to list resources", zap.Error(err))
		return nil, NewInternalError("failed to load resources")
	}
	return result, nil
}

func (s *resourceService) Update(ctx context.Context, id, authorID int64, req *UpdateResourceRequest) (*models.Resource, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid resource", fields)
	}

	resource := &models.Resource{
		ID:       id,
		AuthorID: authorID,
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     models.NormalizeList(req.Tags...),
	}

	if err := s.resources.Update(ctx, resource); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("resource not found")
		}
		s.logger.Error("Failed to update resource", zap.Int64("resource_id", id), zap.Error(err))
		return nil, NewInternalError("failed to update resource")
	}
	return s.resources.GetByID(ctx, id)
}

func (s *resourceService) Delete(ctx context.Context, id, authorID int64) error {
	if err := s.resources.Delete(ctx, id, authorID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewNotFoundError("resource not found")
		}
		s.logger.Error("Failed to delete resource", zap.Int64("resource_id", id), zap.Error(err))
		return NewInternalError("failed to delete resource")
	}
	return nil
}
