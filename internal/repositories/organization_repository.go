package repositories

import (
	"context"
	"fmt"

	"internhub/internal/database"
	"internhub/internal/models"

	"go.uber.org/zap"
)

const organizationColumns = `
	id, email, password_hash, name, description, website, logo_url,
	industry, location, size, culture, social_links,
	is_active, created_at, updated_at`

type organizationRepository struct {
	*BaseRepository
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *database.Manager, logger *zap.Logger) OrganizationRepository {
	return &organizationRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts a new organization account. ErrDuplicate on a taken email.
func (r *organizationRepository) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (
			email, password_hash, name, description, website, logo_url,
			industry, location, size, culture, social_links
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, is_active, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		org.Email, org.PasswordHash, org.Name, org.Description, org.Website, org.LogoURL,
		org.Industry, org.Location, org.Size, org.Culture, org.SocialLinks,
	).Scan(&org.ID, &org.IsActive, &org.CreatedAt, &org.UpdatedAt)

	if err != nil {
		if r.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}

	r.GetLogger().Info("Organization created",
		zap.Int64("organization_id", org.ID),
		zap.String("email", org.Email),
	)
	return nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`
	return r.get(ctx, query, id)
}

func (r *organizationRepository) GetByEmail(ctx context.Context, email string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE email = $1`
	return r.get(ctx, query, email)
}

func (r *organizationRepository) get(ctx context.Context, query string, arg interface{}) (*models.Organization, error) {
	var o models.Organization
	err := r.QueryRowContext(ctx, query, arg).Scan(
		&o.ID, &o.Email, &o.PasswordHash, &o.Name, &o.Description, &o.Website, &o.LogoURL,
		&o.Industry, &o.Location, &o.Size, &o.Culture, &o.SocialLinks,
		&o.IsActive, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &o, nil
}

func (r *organizationRepository) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations SET
			name = $2, description = $3, website = $4, logo_url = $5,
			industry = $6, location = $7, size = $8, culture = $9,
			social_links = $10, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		org.ID, org.Name, org.Description, org.Website, org.LogoURL,
		org.Industry, org.Location, org.Size, org.Culture, org.SocialLinks,
	).Scan(&org.UpdatedAt)

	if err != nil {
		if r.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return nil
}

func (r *organizationRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.ExecContext(ctx,
		`UPDATE organizations SET password_hash = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
