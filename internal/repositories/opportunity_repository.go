package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"internhub/internal/database"
	"internhub/internal/models"

	"go.uber.org/zap"
)

// opportunityColumns is the projection shared by every catalog query,
// joined with the owning organization's public subset.
const opportunityColumns = `
	o.id, o.organization_id, o.title, o.description, o.requirements, o.responsibilities,
	o.skills, o.location, o.type, o.duration, o.start_date, o.end_date,
	o.application_deadline, o.salary_amount, o.salary_currency, o.salary_period,
	o.benefits, o.category, o.industry, o.experience_level,
	o.max_applications, o.current_applications, o.is_active, o.is_featured,
	o.views_count, o.tags, o.created_at, o.updated_at,
	g.id, g.name, g.logo_url, g.industry, g.location`

// opportunitySortColumns maps public sort keys to column expressions
var opportunitySortColumns = map[string]string{
	"created_at":           "o.created_at",
	"application_deadline": "o.application_deadline",
	"salary_amount":        "o.salary_amount",
	"views_count":          "o.views_count",
}

type opportunityRepository struct {
	*BaseRepository
}

// NewOpportunityRepository creates a new OpportunityRepository
func NewOpportunityRepository(db *database.Manager, logger *zap.Logger) OpportunityRepository {
	return &opportunityRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create inserts a new opportunity
func (r *opportunityRepository) Create(ctx context.Context, opp *models.Opportunity) error {
	query := `
		INSERT INTO opportunities (
			organization_id, title, description, requirements, responsibilities, skills,
			location, type, duration, start_date, end_date, application_deadline,
			salary_amount, salary_currency, salary_period, benefits,
			category, industry, experience_level, max_applications, is_active, is_featured, tags
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING id, current_applications, views_count, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		opp.OrganizationID, opp.Title, opp.Description, opp.Requirements, opp.Responsibilities, opp.Skills,
		opp.Location, opp.Type, opp.Duration, opp.StartDate, opp.EndDate, opp.ApplicationDeadline,
		opp.SalaryAmount, opp.SalaryCurrency, opp.SalaryPeriod, opp.Benefits,
		opp.Category, opp.Industry, opp.ExperienceLevel, opp.MaxApplications, opp.IsActive, opp.IsFeatured, opp.Tags,
	).Scan(&opp.ID, &opp.CurrentApplications, &opp.ViewsCount, &opp.CreatedAt, &opp.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create opportunity: %w", err)
	}

	r.GetLogger().Info("Opportunity created",
		zap.Int64("opportunity_id", opp.ID),
		zap.Int64("organization_id", opp.OrganizationID),
		zap.String("title", opp.Title),
	)
	return nil
}

// GetByID retrieves an opportunity with the owner's public profile
func (r *opportunityRepository) GetByID(ctx context.Context, id int64) (*models.Opportunity, error) {
	query := `
		SELECT ` + opportunityColumns + `
		FROM opportunities o
		INNER JOIN organizations g ON o.organization_id = g.id
		WHERE o.id = $1`

	opp, err := r.scanOpportunity(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	return opp, nil
}

// IncrementViews bumps the view counter in a single atomic update
func (r *opportunityRepository) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.ExecContext(ctx,
		`UPDATE opportunities SET views_count = views_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// Update rewrites an opportunity's mutable fields. Ownership and existence
// are checked together; a non-owner gets the same ErrNotFound as a missing
// id.
func (r *opportunityRepository) Update(ctx context.Context, opp *models.Opportunity) error {
	query := `
		UPDATE opportunities SET
			title = $3, description = $4, requirements = $5, responsibilities = $6,
			skills = $7, location = $8, type = $9, duration = $10,
			start_date = $11, end_date = $12, application_deadline = $13,
			salary_amount = $14, salary_currency = $15, salary_period = $16,
			benefits = $17, category = $18, industry = $19, experience_level = $20,
			max_applications = $21, is_active = $22, is_featured = $23, tags = $24,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND organization_id = $2
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		opp.ID, opp.OrganizationID,
		opp.Title, opp.Description, opp.Requirements, opp.Responsibilities,
		opp.Skills, opp.Location, opp.Type, opp.Duration,
		opp.StartDate, opp.EndDate, opp.ApplicationDeadline,
		opp.SalaryAmount, opp.SalaryCurrency, opp.SalaryPeriod,
		opp.Benefits, opp.Category, opp.Industry, opp.ExperienceLevel,
		opp.MaxApplications, opp.IsActive, opp.IsFeatured, opp.Tags,
	).Scan(&opp.UpdatedAt)

	if err != nil {
		if r.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update opportunity: %w", err)
	}
	return nil
}

// Delete removes an opportunity along with its applications (cascade)
func (r *opportunityRepository) Delete(ctx context.Context, id, organizationID int64) error {
	result, err := r.ExecContext(ctx,
		`DELETE FROM opportunities WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	r.GetLogger().Info("Opportunity deleted",
		zap.Int64("opportunity_id", id),
		zap.Int64("organization_id", organizationID),
	)
	return nil
}

// ===============================
// SEARCH AND LISTING
// ===============================

// Search runs the filtered, paginated catalog query
func (r *opportunityRepository) Search(ctx context.Context, filter models.OpportunityFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Opportunity], error) {
	r.ClampPagination(&params)

	where, args := r.buildSearchWhere(filter)

	baseQuery := `
		FROM opportunities o
		INNER JOIN organizations g ON o.organization_id = g.id` + where

	countQuery := "SELECT COUNT(*)" + baseQuery
	total, err := r.GetTotalCount(ctx, countQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count opportunities: %w", err)
	}

	query := "SELECT " + opportunityColumns + baseQuery
	if filter.Search != "" {
		// Relevance ranking for text queries, newest first as tiebreaker
		query += fmt.Sprintf(
			" ORDER BY ts_rank(o.search_vector, plainto_tsquery('english', $%d)) DESC, o.created_at DESC",
			len(args)+1)
		args = append(args, filter.Search)
	} else {
		query += r.OrderClause(params.Sort, params.Order, "o.created_at", opportunitySortColumns)
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search opportunities: %w", err)
	}
	defer rows.Close()

	opportunities, err := r.scanOpportunityRows(rows)
	if err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.Opportunity]{
		Data:       opportunities,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

func (r *opportunityRepository) buildSearchWhere(filter models.OpportunityFilter) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ActiveOnly {
		if filter.IncludeOwnedBy > 0 {
			// An organization browsing the catalog also sees its own
			// deactivated listings.
			clauses = append(clauses, fmt.Sprintf(
				"(o.is_active = true OR o.organization_id = %s)", arg(filter.IncludeOwnedBy)))
		} else {
			clauses = append(clauses, "o.is_active = true")
		}
	}
	if filter.Search != "" {
		clauses = append(clauses, fmt.Sprintf(
			"o.search_vector @@ plainto_tsquery('english', %s)", arg(filter.Search)))
	}
	if filter.Location != "" {
		clauses = append(clauses, fmt.Sprintf("o.location ILIKE %s", arg("%"+filter.Location+"%")))
	}
	if filter.Industry != "" {
		clauses = append(clauses, fmt.Sprintf("o.industry ILIKE %s", arg("%"+filter.Industry+"%")))
	}
	if filter.Category != "" {
		clauses = append(clauses, fmt.Sprintf("o.category ILIKE %s", arg("%"+filter.Category+"%")))
	}
	if filter.Type != "" {
		clauses = append(clauses, fmt.Sprintf("o.type = %s", arg(filter.Type)))
	}
	if filter.ExperienceLevel != "" {
		clauses = append(clauses, fmt.Sprintf("o.experience_level = %s", arg(filter.ExperienceLevel)))
	}
	// Salary bounds only constrain listings that declare an amount
	if filter.SalaryMin != nil {
		clauses = append(clauses, fmt.Sprintf("o.salary_amount >= %s", arg(*filter.SalaryMin)))
	}
	if filter.SalaryMax != nil {
		clauses = append(clauses, fmt.Sprintf("o.salary_amount <= %s", arg(*filter.SalaryMax)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// GetFeatured returns active featured listings, newest first
func (r *opportunityRepository) GetFeatured(ctx context.Context, limit int) ([]*models.Opportunity, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	query := `
		SELECT ` + opportunityColumns + `
		FROM opportunities o
		INNER JOIN organizations g ON o.organization_id = g.id
		WHERE o.is_active = true AND o.is_featured = true
		ORDER BY o.created_at DESC
		LIMIT $1`

	rows, err := r.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get featured opportunities: %w", err)
	}
	defer rows.Close()

	return r.scanOpportunityRows(rows)
}

// GetByOrganization returns all of one organization's listings, including
// inactive ones.
func (r *opportunityRepository) GetByOrganization(ctx context.Context, organizationID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Opportunity], error) {
	r.ClampPagination(&params)

	baseQuery := `
		FROM opportunities o
		INNER JOIN organizations g ON o.organization_id = g.id
		WHERE o.organization_id = $1`

	total, err := r.GetTotalCount(ctx, "SELECT COUNT(*)"+baseQuery, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to count opportunities: %w", err)
	}

	query := "SELECT " + opportunityColumns + baseQuery +
		r.OrderClause(params.Sort, params.Order, "o.created_at", opportunitySortColumns) +
		" LIMIT $2 OFFSET $3"

	rows, err := r.QueryContext(ctx, query, organizationID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get opportunities by organization: %w", err)
	}
	defer rows.Close()

	opportunities, err := r.scanOpportunityRows(rows)
	if err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.Opportunity]{
		Data:       opportunities,
		Pagination: r.BuildPaginationMeta(params, total),
		Filters:    map[string]any{"organization_id": organizationID},
	}, nil
}

// ===============================
// STATISTICS
// ===============================

// Stats aggregates public catalog counts. Industry and location groups are
// capped to the top 10 by count.
func (r *opportunityRepository) Stats(ctx context.Context) (*models.CatalogStats, error) {
	stats := &models.CatalogStats{}

	err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM opportunities WHERE is_active = true`).Scan(&stats.TotalActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count active opportunities: %w", err)
	}

	err = r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications`).Scan(&stats.TotalApplications)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	stats.ByType, err = r.groupedCounts(ctx,
		`SELECT type, COUNT(*) FROM opportunities WHERE is_active = true
		 GROUP BY type ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}

	stats.TopIndustries, err = r.groupedCounts(ctx,
		`SELECT industry, COUNT(*) FROM opportunities WHERE is_active = true
		 GROUP BY industry ORDER BY COUNT(*) DESC LIMIT 10`)
	if err != nil {
		return nil, err
	}

	stats.TopLocations, err = r.groupedCounts(ctx,
		`SELECT location, COUNT(*) FROM opportunities WHERE is_active = true
		 GROUP BY location ORDER BY COUNT(*) DESC LIMIT 10`)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *opportunityRepository) groupedCounts(ctx context.Context, query string) ([]models.StatBucket, error) {
	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}
	defer rows.Close()

	buckets := []models.StatBucket{}
	for rows.Next() {
		var b models.StatBucket
		if err := rows.Scan(&b.Key, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan stat bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// ===============================
// SCANNING
// ===============================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *opportunityRepository) scanOpportunity(row rowScanner) (*models.Opportunity, error) {
	var opp models.Opportunity
	var org models.OrganizationPublic

	err := row.Scan(
		&opp.ID, &opp.OrganizationID, &opp.Title, &opp.Description, &opp.Requirements, &opp.Responsibilities,
		&opp.Skills, &opp.Location, &opp.Type, &opp.Duration, &opp.StartDate, &opp.EndDate,
		&opp.ApplicationDeadline, &opp.SalaryAmount, &opp.SalaryCurrency, &opp.SalaryPeriod,
		&opp.Benefits, &opp.Category, &opp.Industry, &opp.ExperienceLevel,
		&opp.MaxApplications, &opp.CurrentApplications, &opp.IsActive, &opp.IsFeatured,
		&opp.ViewsCount, &opp.Tags, &opp.CreatedAt, &opp.UpdatedAt,
		&org.ID, &org.Name, &org.LogoURL, &org.Industry, &org.Location,
	)
	if err != nil {
		return nil, err
	}

	opp.Organization = &org
	return &opp, nil
}

func (r *opportunityRepository) scanOpportunityRows(rows *sql.Rows) ([]*models.Opportunity, error) {
	opportunities := []*models.Opportunity{}
	for rows.Next() {
		opp, err := r.scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}
		opportunities = append(opportunities, opp)
	}
	return opportunities, rows.Err()
}
