package services

import (
	"context"
	"errors"

	"internhub/internal/models"
	"internhub/internal/repositories"

	"go.uber.org/zap"
)

// AlertService manages saved-search email subscriptions
type AlertService interface {
	Create(ctx context.Context, studentID int64, req *CreateEmailAlertRequest) (*models.EmailAlert, error)
	Get(ctx context.Context, id, studentID int64) (*models.EmailAlert, error)
	List(ctx context.Context, studentID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.EmailAlert], error)
	Update(ctx context.Context, id, studentID int64, req *UpdateEmailAlertRequest) (*models.EmailAlert, error)
	Delete(ctx context.Context, id, studentID int64) error
}

type alertService struct {
	alerts repositories.EmailAlertRepository
	logger *zap.Logger
}

// NewAlertService creates a new AlertService
func NewAlertService(alerts repositories.EmailAlertRepository, logger *zap.Logger) AlertService {
	return &alertService{alerts: alerts, logger: logger}
}

func (s *alertService) Create(ctx context.Context, studentID int64, req *CreateEmailAlertRequest) (*models.EmailAlert, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid alert", fields)
	}

	alert := &models.EmailAlert{
		StudentID: studentID,
		Keywords:  models.NormalizeList(req.Keywords...),
		Category:  req.Category,
		Location:  req.Location,
		Type:      req.Type,
		Frequency: req.Frequency,
		IsActive:  true,
	}
	if req.IsActive != nil {
		alert.IsActive = *req.IsActive
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		s.logger.Error("Failed to create email alert", zap.Error(err))
		return nil, NewInternalError("failed to create alert")
	}
	return alert, nil
}

// Get returns one alert, visible only to its owner
func (s *alertService) Get(ctx context.Context, id, studentID int64) (*models.EmailAlert, error) {
	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("alert not found")
		}
		s.logger.Error("Failed to get email alert", zap.Int64("alert_id", id), zap.Error(err))
		return nil, NewInternalError("failed to load alert")
	}
	if alert.StudentID != studentID {
		return nil, NewNotFoundError("alert not found")
	}
	return alert, nil
}

func (s *alertService) List(ctx context.Context, studentID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.EmailAlert], error) {
	result, err := s.alerts.ListByStudent(ctx, studentID, params)
	if err != nil {
		s.logger.Error("Failed to list email alerts", zap.Int64("student_id", studentID), zap.Error(err))
		return nil, NewInternalError("failed to load alerts")
	}
	return result, nil
}

func (s *alertService) Update(ctx context.Context, id, studentID int64, req *UpdateEmailAlertRequest) (*models.EmailAlert, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid alert", fields)
	}

	alert := &models.EmailAlert{
		ID:        id,
		StudentID: studentID,
		Keywords:  models.NormalizeList(req.Keywords...),
		Category:  req.Category,
		Location:  req.Location,
		Type:      req.Type,
		Frequency: req.Frequency,
		IsActive:  true,
	}
	if req.IsActive != nil {
		alert.IsActive = *req.IsActive
	}

	if err := s.alerts.Update(ctx, alert); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("alert not found")
		}
		s.logger.Error("Failed to update email alert", zap.Int64("alert_id", id), zap.Error(err))
		return nil, NewInternalError("failed to update alert")
	}
	return alert, nil
}

func (s *alertService) Delete(ctx context.Context, id, studentID int64) error {
	if err := s.alerts.Delete(ctx, id, studentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewNotFoundError("alert not found")
		}
		s.logger.Error("Failed to delete email alert", zap.Int64("alert_id", id), zap.Error(err))
		return NewInternalError("failed to delete alert")
	}
	return nil
}
