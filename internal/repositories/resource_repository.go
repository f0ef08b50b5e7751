package repositories

import (
	"context"
	"fmt"
	"strings"

	"internhub/internal/database"
	"internhub/internal/models"

	"go.uber.org/zap"
)

const resourceColumns = `
	r.id, r.author_id, r.title, r.content, r.category, r.tags,
	r.views_count, r.created_at, r.updated_at, g.name`

var resourceSortColumns = map[string]string{
	"created_at":  "r.created_at",
	"views_count": "r.views_count",
}

type resourceRepository struct {
	*BaseRepository
}

// NewResourceRepository creates a new ResourceRepository
func NewResourceRepository(db *database.Manager, logger *zap.Logger) ResourceRepository {
	return &resourceRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts a resource article authored by an organization
func (r *resourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	query := `
		INSERT INTO resources (author_id, title, content, category, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, views_count, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		resource.AuthorID, resource.Title, resource.Content, resource.Category, resource.Tags,
	).Scan(&resource.ID, &resource.ViewsCount, &resource.CreatedAt, &resource.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	r.GetLogger().Info("Resource created",
		zap.Int64("resource_id", resource.ID),
		zap.Int64("author_id", resource.AuthorID),
	)
	return nil
}

func (r *resourceRepository) GetByID(ctx context.Context, id int64) (*models.Resource, error) {
	query := `
		SELECT ` + resourceColumns + `
		FROM resources r
		INNER JOIN organizations g ON r.author_id = g.id
		WHERE r.id = $1`

	resource, err := r.scanResource(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return resource, nil
}

func (r *resourceRepository) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.ExecContext(ctx,
		`UPDATE resources SET views_count = views_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment resource views: %w", err)
	}
	return nil
}

func (r *resourceRepository) List(ctx context.Context, filter models.ResourceFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Resource], error) {
	r.ClampPagination(&params)

	clauses := []string{}
	args := []interface{}{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(r.title ILIKE $%d OR r.content ILIKE $%d)", len(args), len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, fmt.Sprintf("r.category = $%d", len(args)))
	}

	baseQuery := `
		FROM resources r
		INNER JOIN organizations g ON r.author_id = g.id`
	if len(clauses) > 0 {
		baseQuery += " WHERE " + strings.Join(clauses, " AND ")
	}

	total, err := r.GetTotalCount(ctx, "SELECT COUNT(*)"+baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count resources: %w", err)
	}

	query := "SELECT " + resourceColumns + baseQuery +
		r.OrderClause(params.Sort, params.Order, "r.created_at", resourceSortColumns) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	resources := []*models.Resource{}
	for rows.Next() {
		resource, err := r.scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.Resource]{
		Data:       resources,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

func (r *resourceRepository) Update(ctx context.Context, resource *models.Resource) error {
	query := `
		UPDATE resources SET
			title = $3, content = $4, category = $5, tags = $6,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND author_id = $2
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		resource.ID, resource.AuthorID,
		resource.Title, resource.Content, resource.Category, resource.Tags,
	).Scan(&resource.UpdatedAt)

	if err != nil {
		if r.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update resource: %w", err)
	}
	return nil
}

func (r *resourceRepository) Delete(ctx context.Context, id, authorID int64) error {
	result, err := r.ExecContext(ctx,
		`DELETE FROM resources WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *resourceRepository) scanResource(row rowScanner) (*models.Resource, error) {
	var resource models.Resource
	err := row.Scan(
		&resource.ID, &resource.AuthorID, &resource.Title, &resource.Content,
		&resource.Category, &resource.Tags, &resource.ViewsCount,
		&resource.CreatedAt, &resource.UpdatedAt, &resource.AuthorName,
	)
	if err != nil {
		return nil, err
	}
	return &resource, nil
}
