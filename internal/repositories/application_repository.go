package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"internhub/internal/database"
	"internhub/internal/models"

	"go.uber.org/zap"
)

// The opportunity title is read from the row's own snapshot, not a join, so
// ledger reads keep working after the listing itself is deleted.
const applicationColumns = `
	a.id, a.opportunity_id, a.student_id, a.organization_id, a.opportunity_title,
	a.cover_letter, a.resume_url, a.status, a.notes, a.feedback,
	a.interview_scheduled, a.applied_at, a.reviewed_at, a.updated_at`

var applicationSortColumns = map[string]string{
	"applied_at": "a.applied_at",
	"updated_at": "a.updated_at",
	"status":     "a.status",
}

type applicationRepository struct {
	*BaseRepository
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *database.Manager, logger *zap.Logger) ApplicationRepository {
	return &applicationRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// CreateWithCapacity records an application and claims one slot of the
// opportunity's capacity in a single transaction. The counter update is
// conditional: zero rows matched means the cap was already reached, so two
// students racing for the last slot cannot both get in. The unique index on
// (opportunity_id, student_id) backstops duplicate submissions.
func (r *applicationRepository) CreateWithCapacity(ctx context.Context, app *models.Application) error {
	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE opportunities
			SET current_applications = current_applications + 1
			WHERE id = $1
			  AND is_active = true
			  AND current_applications < max_applications`,
			app.OpportunityID)
		if err != nil {
			return fmt.Errorf("failed to claim application slot: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			return ErrCapacityReached
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO applications (
				opportunity_id, student_id, organization_id, opportunity_title,
				cover_letter, resume_url, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, applied_at, updated_at`,
			app.OpportunityID, app.StudentID, app.OrganizationID, app.OpportunityTitle,
			app.CoverLetter, app.ResumeURL, models.StatusPending,
		).Scan(&app.ID, &app.AppliedAt, &app.UpdatedAt)
		if err != nil {
			if r.IsUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to create application: %w", err)
		}

		app.Status = models.StatusPending
		return nil
	})
	if err != nil {
		return err
	}

	r.GetLogger().Info("Application created",
		zap.Int64("application_id", app.ID),
		zap.Int64("opportunity_id", app.OpportunityID),
		zap.Int64("student_id", app.StudentID),
	)
	return nil
}

// GetByID retrieves an application with its display fields
func (r *applicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	query := `
		SELECT ` + applicationColumns + `,
			g.name, g.logo_url, s.first_name || ' ' || s.last_name, s.email
		FROM applications a
		INNER JOIN organizations g ON a.organization_id = g.id
		INNER JOIN students s ON a.student_id = s.id
		WHERE a.id = $1`

	app, err := r.scanApplication(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// GetByStudent returns a student's own applications, newest first by default
func (r *applicationRepository) GetByStudent(ctx context.Context, studentID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	r.ClampPagination(&params)

	baseQuery := `
		FROM applications a
		INNER JOIN organizations g ON a.organization_id = g.id
		INNER JOIN students s ON a.student_id = s.id
		WHERE a.student_id = $1`

	total, err := r.GetTotalCount(ctx, "SELECT COUNT(*)"+baseQuery, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	query := "SELECT " + applicationColumns + `,
			g.name, g.logo_url, s.first_name || ' ' || s.last_name, s.email` + baseQuery +
		r.OrderClause(params.Sort, params.Order, "a.applied_at", applicationSortColumns) +
		" LIMIT $2 OFFSET $3"

	rows, err := r.QueryContext(ctx, query, studentID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get applications by student: %w", err)
	}
	defer rows.Close()

	applications, err := r.scanApplicationRows(rows)
	if err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.Application]{
		Data:       applications,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

// GetByOpportunity returns the applications received for a single listing
func (r *applicationRepository) GetByOpportunity(ctx context.Context, opportunityID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	r.ClampPagination(&params)

	baseQuery := `
		FROM applications a
		INNER JOIN organizations g ON a.organization_id = g.id
		INNER JOIN students s ON a.student_id = s.id
		WHERE a.opportunity_id = $1`

	total, err := r.GetTotalCount(ctx, "SELECT COUNT(*)"+baseQuery, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	query := "SELECT " + applicationColumns + `,
			g.name, g.logo_url, s.first_name || ' ' || s.last_name, s.email` + baseQuery +
		r.OrderClause(params.Sort, params.Order, "a.applied_at", applicationSortColumns) +
		" LIMIT $2 OFFSET $3"

	rows, err := r.QueryContext(ctx, query, opportunityID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get applications by opportunity: %w", err)
	}
	defer rows.Close()

	applications, err := r.scanApplicationRows(rows)
	if err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.Application]{
		Data:       applications,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

// HasApplied reports whether the student already applied to the opportunity
func (r *applicationRepository) HasApplied(ctx context.Context, opportunityID, studentID int64) (bool, error) {
	var exists bool
	err := r.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE opportunity_id = $1 AND student_id = $2)`,
		opportunityID, studentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check application existence: %w", err)
	}
	return exists, nil
}

// UpdateStatus applies an organization's review decision. The update is
// scoped to the owning organization; a non-owner sees ErrNotFound. Any
// decision other than pending refreshes reviewed_at.
func (r *applicationRepository) UpdateStatus(ctx context.Context, upd *ApplicationStatusUpdate) (*models.Application, error) {
	query := `
		UPDATE applications SET
			status = $3,
			notes = COALESCE($4, notes),
			feedback = COALESCE($5, feedback),
			interview_scheduled = COALESCE($6, interview_scheduled),
			reviewed_at = CASE WHEN $3 <> 'pending'
				THEN CURRENT_TIMESTAMP ELSE reviewed_at END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND organization_id = $2
		RETURNING id`

	var id int64
	err := r.QueryRowContext(ctx, query,
		upd.ApplicationID, upd.OrganizationID, upd.Status,
		upd.Notes, upd.Feedback, upd.InterviewScheduled,
	).Scan(&id)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	r.GetLogger().Info("Application status updated",
		zap.Int64("application_id", upd.ApplicationID),
		zap.String("status", upd.Status),
	)

	return r.GetByID(ctx, id)
}

func (r *applicationRepository) scanApplication(row rowScanner) (*models.Application, error) {
	var app models.Application
	err := row.Scan(
		&app.ID, &app.OpportunityID, &app.StudentID, &app.OrganizationID,
		&app.OpportunityTitle, &app.CoverLetter, &app.ResumeURL, &app.Status,
		&app.Notes, &app.Feedback, &app.InterviewScheduled,
		&app.AppliedAt, &app.ReviewedAt, &app.UpdatedAt,
		&app.OrganizationName, &app.OrganizationLogo,
		&app.StudentName, &app.StudentEmail,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) scanApplicationRows(rows *sql.Rows) ([]*models.Application, error) {
	applications := []*models.Application{}
	for rows.Next() {
		app, err := r.scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		applications = append(applications, app)
	}
	return applications, rows.Err()
}
