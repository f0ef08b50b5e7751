package services

import (
	"context"
	"errors"

	"internhub/internal/models"
	"internhub/internal/repositories"

	"go.uber.org/zap"
)

// ReviewService manages placement reviews
type ReviewService interface {
	Create(ctx context.Context, studentID int64, req *CreateReviewRequest) (*models.Review, error)
	Get(ctx context.Context, id int64) (*models.Review, error)
	List(ctx context.Context, filter models.ReviewFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Review], error)
	Update(ctx context.Context, id, studentID int64, req *UpdateReviewRequest) (*models.Review, error)
	Delete(ctx context.Context, id, studentID int64) error
}

type reviewService struct {
	reviews       repositories.ReviewRepository
	opportunities repositories.OpportunityRepository
	logger        *zap.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	reviews repositories.ReviewRepository,
	opportunities repositories.OpportunityRepository,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		reviews:       reviews,
		opportunities: opportunities,
		logger:        logger,
	}
}

// Create records one review per student per opportunity
func (s *reviewService) Create(ctx context.Context, studentID int64, req *CreateReviewRequest) (*models.Review, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid review", fields)
	}

	opp, err := s.opportunities.GetByID(ctx, req.OpportunityID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("opportunity not found")
		}
		s.logger.Error("Failed to load opportunity for review", zap.Error(err))
		return nil, NewInternalError("failed to create review")
	}

	review := &models.Review{
		OrganizationID: opp.OrganizationID,
		OpportunityID:  req.OpportunityID,
		StudentID:      studentID,
		Rating:         req.Rating,
		Title:          req.Title,
		Body:           req.Body,
		Pros:           models.NormalizeList(req.Pros...),
		Cons:           models.NormalizeList(req.Cons...),
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("you have already reviewed this opportunity", "ALREADY_REVIEWED")
		}
		s.logger.Error("Failed to create review", zap.Error(err))
		return nil, NewInternalError("failed to create review")
	}

	return s.Get(ctx, review.ID)
}

func (s *reviewService) Get(ctx context.Context, id int64) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("review not found")
		}
		s.logger.Error("Failed to get review", zap.Int64("review_id", id), zap.Error(err))
		return nil, NewInternalError("failed to load review")
	}
	return review, nil
}

func (s *reviewService) List(ctx context.Context, filter models.ReviewFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Review], error) {
	result, err := s.reviews.List(ctx, filter, params)
	if err != nil {
		s.logger.Error("Failed to list reviews", zap.Error(err))
		return nil, NewInternalError("failed to load reviews")
	}
	return result, nil
}

func (s *reviewService) Update(ctx context.Context, id, studentID int64, req *UpdateReviewRequest) (*models.Review, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid review", fields)
	}

	review := &models.Review{
		ID:        id,
		StudentID: studentID,
		Rating:    req.Rating,
		Title:     req.Title,
		Body:      req.Body,
		Pros:      models.NormalizeList(req.Pros...),
		Cons:      models.NormalizeList(req.Cons...),
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("review not found")
		}
		s.logger.Error("Failed to update review", zap.Int64("review_id", id), zap.Error(err))
		return nil, NewInternalError("failed to update review")
	}

	return s.Get(ctx, id)
}

func (s *reviewService) Delete(ctx context.Context, id, studentID int64) error {
	if err := s.reviews.Delete(ctx, id, studentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewNotFoundError("review not found")
		}
		s.logger.Error("Failed to delete review", zap.Int64("review_id", id), zap.Error(err))
		return NewInternalError("failed to delete review")
	}
	return nil
}
