package repositories

import (
	"context"
	"fmt"

	"internhub/internal/database"
	"internhub/internal/models"

	"go.uber.org/zap"
)

const alertColumns = `
	id, student_id, keywords, category, location, type,
	frequency, is_active, created_at, updated_at`

type alertRepository struct {
	*BaseRepository
}

// NewEmailAlertRepository creates a new EmailAlertRepository
func NewEmailAlertRepository(db *database.Manager, logger *zap.Logger) EmailAlertRepository {
	return &alertRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

func (r *alertRepository) Create(ctx context.Context, alert *models.EmailAlert) error {
	query := `
		INSERT INTO email_alerts (student_id, keywords, category, location, type, frequency, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		alert.StudentID, alert.Keywords, alert.Category, alert.Location,
		alert.Type, alert.Frequency, alert.IsActive,
	).Scan(&alert.ID, &alert.CreatedAt, &alert.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create email alert: %w", err)
	}

	r.GetLogger().Info("Email alert created",
		zap.Int64("alert_id", alert.ID),
		zap.Int64("student_id", alert.StudentID),
	)
	return nil
}

func (r *alertRepository) GetByID(ctx context.Context, id int64) (*models.EmailAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM email_alerts WHERE id = $1`

	alert, err := r.scanAlert(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get email alert: %w", err)
	}
	return alert, nil
}

func (r *alertRepository) ListByStudent(ctx context.Context, studentID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.EmailAlert], error) {
	r.ClampPagination(&params)

	total, err := r.GetTotalCount(ctx,
		`SELECT COUNT(*) FROM email_alerts WHERE student_id = $1`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count email alerts: %w", err)
	}

	query := `SELECT ` + alertColumns + `
		FROM email_alerts
		WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.QueryContext(ctx, query, studentID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list email alerts: %w", err)
	}
	defer rows.Close()

	alerts := []*models.EmailAlert{}
	for rows.Next() {
		alert, err := r.scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.EmailAlert]{
		Data:       alerts,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

// Update rewrites the alert's criteria, scoped to its owner
func (r *alertRepository) Update(ctx context.Context, alert *models.EmailAlert) error {
	query := `
		UPDATE email_alerts SET
			keywords = $3, category = $4, location = $5, type = $6,
			frequency = $7, is_active = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND student_id = $2
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		alert.ID, alert.StudentID,
		alert.Keywords, alert.Category, alert.Location, alert.Type,
		alert.Frequency, alert.IsActive,
	).Scan(&alert.UpdatedAt)

	if err != nil {
		if r.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update email alert: %w", err)
	}
	return nil
}

func (r *alertRepository) Delete(ctx context.Context, id, studentID int64) error {
	result, err := r.ExecContext(ctx,
		`DELETE FROM email_alerts WHERE id = $1 AND student_id = $2`, id, studentID)
	if err != nil {
		return fmt.Errorf("failed to delete email alert: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *alertRepository) scanAlert(row rowScanner) (*models.EmailAlert, error) {
	var alert models.EmailAlert
	err := row.Scan(
		&alert.ID, &alert.StudentID, &alert.Keywords, &alert.Category,
		&alert.Location, &alert.Type, &alert.Frequency, &alert.IsActive,
		&alert.CreatedAt, &alert.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &alert, nil
}
