package services

import (
	"context"
	"errors"
	"time"

	"internhub/internal/cache"
	"internhub/internal/models"
	"internhub/internal/repositories"

	"go.uber.org/zap"
)

const (
	featuredCacheKey = "opportunities:featured"
	statsCacheKey    = "opportunities:stats"
	catalogCacheTTL  = 5 * time.Minute
)

// OpportunityService manages the listing catalog
type OpportunityService interface {
	Create(ctx context.Context, organizationID int64, req *CreateOpportunityRequest) (*models.Opportunity, error)
	Get(ctx context.Context, id int64) (*models.Opportunity, error)
	Update(ctx context.Context, id, organizationID int64, req *UpdateOpportunityRequest) (*models.Opportunity, error)
	Delete(ctx context.Context, id, organizationID int64) error
	Search(ctx context.Context, filter models.OpportunityFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Opportunity], error)
	GetFeatured(ctx context.Context, limit int) ([]*models.Opportunity, error)
	GetByOrganization(ctx context.Context, organizationID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Opportunity], error)
	Stats(ctx context.Context) (*models.CatalogStats, error)
}

type opportunityService struct {
	opportunities repositories.OpportunityRepository
	cache         cache.Cache
	logger        *zap.Logger
}

// NewOpportunityService creates a new OpportunityService
func NewOpportunityService(
	opportunities repositories.OpportunityRepository,
	c cache.Cache,
	logger *zap.Logger,
) OpportunityService {
	return &opportunityService{
		opportunities: opportunities,
		cache:         c,
		logger:        logger,
	}
}

func (s *opportunityService) Create(ctx context.Context, organizationID int64, req *CreateOpportunityRequest) (*models.Opportunity, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid opportunity", fields)
	}

	opp := s.fromRequest(req)
	opp.OrganizationID = organizationID

	if err := s.opportunities.Create(ctx, opp); err != nil {
		s.logger.Error("Failed to create opportunity",
			zap.Int64("organization_id", organizationID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to create opportunity")
	}

	s.invalidateCatalogCache(ctx)

	// Reload for the joined owner projection
	return s.Get(ctx, opp.ID)
}

// Get returns one opportunity and bumps its view counter. The counter
// write is atomic in the store; a failed bump does not fail the read.
func (s *opportunityService) Get(ctx context.Context, id int64) (*models.Opportunity, error) {
	opp, err := s.opportunities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("opportunity not found")
		}
		s.logger.Error("Failed to get opportunity", zap.Int64("opportunity_id", id), zap.Error(err))
		return nil, NewInternalError("failed to load opportunity")
	}

	if err := s.opportunities.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("Failed to increment views", zap.Int64("opportunity_id", id), zap.Error(err))
	} else {
		opp.ViewsCount++
	}

	return opp, nil
}

// Update applies a partial edit: only the fields present in the payload
// change, and the list-shaped fields are re-normalized on the way in.
func (s *opportunityService) Update(ctx context.Context, id, organizationID int64, req *UpdateOpportunityRequest) (*models.Opportunity, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid opportunity", fields)
	}

	opp, err := s.opportunities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("opportunity not found")
		}
		s.logger.Error("Failed to load opportunity for update", zap.Int64("opportunity_id", id), zap.Error(err))
		return nil, NewInternalError("failed to update opportunity")
	}

	applyListingUpdate(opp, req)
	// Ownership rides the update's WHERE clause; a non-owner matches zero
	// rows and reads as missing.
	opp.OrganizationID = organizationID

	if err := s.opportunities.Update(ctx, opp); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("opportunity not found")
		}
		s.logger.Error("Failed to update opportunity", zap.Int64("opportunity_id", id), zap.Error(err))
		return nil, NewInternalError("failed to update opportunity")
	}

	s.invalidateCatalogCache(ctx)
	return s.opportunities.GetByID(ctx, id)
}

func (s *opportunityService) Delete(ctx context.Context, id, organizationID int64) error {
	if err := s.opportunities.Delete(ctx, id, organizationID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewNotFoundError("opportunity not found")
		}
		s.logger.Error("Failed to delete opportunity", zap.Int64("opportunity_id", id), zap.Error(err))
		return NewInternalError("failed to delete opportunity")
	}

	s.invalidateCatalogCache(ctx)
	return nil
}

// Search never errors on zero matches; an empty page is a success
func (s *opportunityService) Search(ctx context.Context, filter models.OpportunityFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Opportunity], error) {
	result, err := s.opportunities.Search(ctx, filter, params)
	if err != nil {
		s.logger.Error("Failed to search opportunities", zap.Error(err))
		return nil, NewInternalError("failed to search opportunities")
	}
	return result, nil
}

func (s *opportunityService) GetFeatured(ctx context.Context, limit int) ([]*models.Opportunity, error) {
	var cached []*models.Opportunity
	if s.cache.Get(ctx, featuredCacheKey, &cached) {
		return cached, nil
	}

	featured, err := s.opportunities.GetFeatured(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to get featured opportunities", zap.Error(err))
		return nil, NewInternalError("failed to load featured opportunities")
	}

	if err := s.cache.Set(ctx, featuredCacheKey, featured, catalogCacheTTL); err != nil {
		s.logger.Warn("Failed to cache featured opportunities", zap.Error(err))
	}
	return featured, nil
}

func (s *opportunityService) GetByOrganization(ctx context.Context, organizationID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Opportunity], error) {
	result, err := s.opportunities.GetByOrganization(ctx, organizationID, params)
	if err != nil {
		s.logger.Error("Failed to list organization opportunities",
			zap.Int64("organization_id", organizationID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to load opportunities")
	}
	return result, nil
}

func (s *opportunityService) Stats(ctx context.Context) (*models.CatalogStats, error) {
	var cached models.CatalogStats
	if s.cache.Get(ctx, statsCacheKey, &cached) {
		return &cached, nil
	}

	stats, err := s.opportunities.Stats(ctx)
	if err != nil {
		s.logger.Error("Failed to aggregate catalog stats", zap.Error(err))
		return nil, NewInternalError("failed to load statistics")
	}

	if err := s.cache.Set(ctx, statsCacheKey, stats, catalogCacheTTL); err != nil {
		s.logger.Warn("Failed to cache catalog stats", zap.Error(err))
	}
	return stats, nil
}

// fromRequest maps a create payload onto a model, normalizing the flexible
// list fields and applying defaults.
func (s *opportunityService) fromRequest(req *CreateOpportunityRequest) *models.Opportunity {
	opp := &models.Opportunity{
		Title:            req.Title,
		Description:      req.Description,
		Requirements:     models.NormalizeList(req.Requirements...),
		Responsibilities: models.NormalizeList(req.Responsibilities...),
		Skills:           models.NormalizeList(req.Skills...),

		Location:            req.Location,
		Type:                req.Type,
		Duration:            req.Duration,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		ApplicationDeadline: req.ApplicationDeadline,

		SalaryAmount:   req.SalaryAmount,
		SalaryCurrency: req.SalaryCurrency,
		SalaryPeriod:   req.SalaryPeriod,

		Benefits:        models.NormalizeList(req.Benefits...),
		Category:        req.Category,
		Industry:        req.Industry,
		ExperienceLevel: req.ExperienceLevel,

		MaxApplications: models.DefaultMaxApplications,
		IsActive:        true,
		Tags:            models.NormalizeList(req.Tags...),
	}

	if req.MaxApplications != nil {
		opp.MaxApplications = *req.MaxApplications
	}
	if req.IsActive != nil {
		opp.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		opp.IsFeatured = *req.IsFeatured
	}
	return opp
}

// applyListingUpdate copies the fields present in a partial edit onto the
// loaded listing, re-normalizing any list fields supplied.
func applyListingUpdate(opp *models.Opportunity, req *UpdateOpportunityRequest) {
	if req.Title != nil {
		opp.Title = *req.Title
	}
	if req.Description != nil {
		opp.Description = *req.Description
	}
	if req.Requirements != nil {
		opp.Requirements = models.NormalizeList(*req.Requirements...)
	}
	if req.Responsibilities != nil {
		opp.Responsibilities = models.NormalizeList(*req.Responsibilities...)
	}
	if req.Skills != nil {
		opp.Skills = models.NormalizeList(*req.Skills...)
	}
	if req.Location != nil {
		opp.Location = *req.Location
	}
	if req.Type != nil {
		opp.Type = *req.Type
	}
	if req.Duration != nil {
		opp.Duration = *req.Duration
	}
	if req.StartDate != nil {
		opp.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		opp.EndDate = *req.EndDate
	}
	if req.ApplicationDeadline != nil {
		opp.ApplicationDeadline = *req.ApplicationDeadline
	}
	if req.SalaryAmount != nil {
		opp.SalaryAmount = req.SalaryAmount
	}
	if req.SalaryCurrency != nil {
		opp.SalaryCurrency = req.SalaryCurrency
	}
	if req.SalaryPeriod != nil {
		opp.SalaryPeriod = req.SalaryPeriod
	}
	if req.Benefits != nil {
		opp.Benefits = models.NormalizeList(*req.Benefits...)
	}
	if req.Category != nil {
		opp.Category = *req.Category
	}
	if req.Industry != nil {
		opp.Industry = *req.Industry
	}
	if req.ExperienceLevel != nil {
		opp.ExperienceLevel = *req.ExperienceLevel
	}
	if req.MaxApplications != nil {
		opp.MaxApplications = *req.MaxApplications
	}
	if req.IsActive != nil {
		opp.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		opp.IsFeatured = *req.IsFeatured
	}
	if req.Tags != nil {
		opp.Tags = models.NormalizeList(*req.Tags...)
	}
}

func (s *opportunityService) invalidateCatalogCache(ctx context.Context) {
	for _, key := range []string{featuredCacheKey, statsCacheKey} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to invalidate cache", zap.String("key", key), zap.Error(err))
		}
	}
}
