package services

import (
	"context"
	"errors"
	"time"

	"internhub/internal/models"
	"internhub/internal/repositories"

	"go.uber.org/zap"
)

// ApplicationService manages the application ledger
type ApplicationService interface {
	Apply(ctx context.Context, studentID, opportunityID int64, req *ApplyRequest) (*models.Application, error)
	Get(ctx context.Context, id int64, principalID int64, role string) (*models.Application, error)
	GetMine(ctx context.Context, studentID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error)
	GetForOpportunity(ctx context.Context, opportunityID, organizationID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error)
	UpdateStatus(ctx context.Context, applicationID, organizationID int64, req *UpdateApplicationStatusRequest) (*models.Application, error)
}

type applicationService struct {
	applications  repositories.ApplicationRepository
	opportunities repositories.OpportunityRepository
	students      repositories.StudentRepository
	organizations repositories.OrganizationRepository
	notifier      Notifier
	logger        *zap.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	applications repositories.ApplicationRepository,
	opportunities repositories.OpportunityRepository,
	students repositories.StudentRepository,
	organizations repositories.OrganizationRepository,
	notifier Notifier,
	logger *zap.Logger,
) ApplicationService {
	return &applicationService{
		applications:  applications,
		opportunities: opportunities,
		students:      students,
		organizations: organizations,
		notifier:      notifier,
		logger:        logger,
	}
}

// Apply submits a student's application. Preconditions are checked in
// order, each with its own failure: the opportunity exists and is active,
// the deadline has not passed, the student hasn't already applied, capacity
// remains, and the student has a resume on file. The capacity check here is
// advisory; the store re-checks it atomically, so concurrent applies near
// the cap cannot overshoot it.
func (s *applicationService) Apply(ctx context.Context, studentID, opportunityID int64, req *ApplyRequest) (*models.Application, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid application", fields)
	}

	opp, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("opportunity not found")
		}
		s.logger.Error("Failed to load opportunity for apply", zap.Error(err))
		return nil, NewInternalError("failed to submit application")
	}
	if !opp.IsActive {
		return nil, NewNotFoundError("opportunity not found")
	}

	if time.Now().After(opp.ApplicationDeadline) {
		return nil, NewConflictError("the application deadline has passed", "DEADLINE_PASSED")
	}

	applied, err := s.applications.HasApplied(ctx, opportunityID, studentID)
	if err != nil {
		s.logger.Error("Failed to check prior application", zap.Error(err))
		return nil, NewInternalError("failed to submit application")
	}
	if applied {
		return nil, NewConflictError("you have already applied to this opportunity", "ALREADY_APPLIED")
	}

	if opp.CurrentApplications >= opp.MaxApplications {
		return nil, NewConflictError("this opportunity is no longer accepting applications", "CAPACITY_REACHED")
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("student not found")
		}
		s.logger.Error("Failed to load student for apply", zap.Error(err))
		return nil, NewInternalError("failed to submit application")
	}
	if student.ResumeURL == nil || *student.ResumeURL == "" {
		return nil, NewConflictError("upload a resume before applying", "RESUME_REQUIRED")
	}

	// The title is snapshotted onto the record so it outlives the listing
	app := &models.Application{
		OpportunityID:    opportunityID,
		StudentID:        studentID,
		OrganizationID:   opp.OrganizationID,
		OpportunityTitle: opp.Title,
		CoverLetter:      req.CoverLetter,
		ResumeURL:        *student.ResumeURL,
	}

	if err := s.applications.CreateWithCapacity(ctx, app); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCapacityReached):
			return nil, NewConflictError("this opportunity is no longer accepting applications", "CAPACITY_REACHED")
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, NewConflictError("you have already applied to this opportunity", "ALREADY_APPLIED")
		default:
			s.logger.Error("Failed to create application", zap.Error(err))
			return nil, NewInternalError("failed to submit application")
		}
	}

	app.StudentName = student.FirstName + " " + student.LastName
	app.StudentEmail = student.Email
	if opp.Organization != nil {
		app.OrganizationName = opp.Organization.Name
	}

	if org, err := s.organizations.GetByID(ctx, opp.OrganizationID); err == nil {
		s.notifier.ApplicationReceived(app, opp, org.Email)
	} else {
		s.logger.Warn("Skipping application notification, owner lookup failed",
			zap.Int64("organization_id", opp.OrganizationID),
			zap.Error(err),
		)
	}

	return app, nil
}

// Get returns one application, visible only to its student or the owning
// organization. Any other authenticated principal is refused.
func (s *applicationService) Get(ctx context.Context, id int64, principalID int64, role string) (*models.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("application not found")
		}
		s.logger.Error("Failed to get application", zap.Int64("application_id", id), zap.Error(err))
		return nil, NewInternalError("failed to load application")
	}

	switch role {
	case models.RoleStudent:
		if app.StudentID != principalID {
			return nil, NewForbiddenError("access denied")
		}
	case models.RoleOrganization:
		if app.OrganizationID != principalID {
			return nil, NewForbiddenError("access denied")
		}
	default:
		return nil, NewForbiddenError("access denied")
	}

	return app, nil
}

func (s *applicationService) GetMine(ctx context.Context, studentID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	result, err := s.applications.GetByStudent(ctx, studentID, params)
	if err != nil {
		s.logger.Error("Failed to list student applications",
			zap.Int64("student_id", studentID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to load applications")
	}
	return result, nil
}

// GetForOpportunity lists the applications for one of the caller's own
// listings. Ownership is checked against the opportunity first.
func (s *applicationService) GetForOpportunity(ctx context.Context, opportunityID, organizationID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	opp, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("opportunity not found")
		}
		s.logger.Error("Failed to load opportunity", zap.Error(err))
		return nil, NewInternalError("failed to load applications")
	}
	if opp.OrganizationID != organizationID {
		return nil, NewNotFoundError("opportunity not found")
	}

	result, err := s.applications.GetByOpportunity(ctx, opportunityID, params)
	if err != nil {
		s.logger.Error("Failed to list opportunity applications",
			zap.Int64("opportunity_id", opportunityID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to load applications")
	}
	return result, nil
}

// UpdateStatus applies a review decision and notifies the student. Any
// status-to-status transition is allowed.
func (s *applicationService) UpdateStatus(ctx context.Context, applicationID, organizationID int64, req *UpdateApplicationStatusRequest) (*models.Application, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid status update", fields)
	}

	app, err := s.applications.UpdateStatus(ctx, &repositories.ApplicationStatusUpdate{
		ApplicationID:      applicationID,
		OrganizationID:     organizationID,
		Status:             req.Status,
		Notes:              req.Notes,
		Feedback:           req.Feedback,
		InterviewScheduled: req.InterviewScheduled,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("application not found")
		}
		s.logger.Error("Failed to update application status",
			zap.Int64("application_id", applicationID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to update application")
	}

	s.notifier.ApplicationStatusChanged(app)
	return app, nil
}
