package repositories

import (
	"context"
	"fmt"
	"strings"

	"internhub/internal/database"
	"internhub/internal/models"

	"go.uber.org/zap"
)

const reviewColumns = `
	r.id, r.organization_id, r.opportunity_id, r.student_id,
	r.rating, r.title, r.body, r.pros, r.cons, r.created_at, r.updated_at,
	s.first_name || ' ' || s.last_name, g.name`

var reviewSortColumns = map[string]string{
	"created_at": "r.created_at",
	"rating":     "r.rating",
}

type reviewRepository struct {
	*BaseRepository
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db *database.Manager, logger *zap.Logger) ReviewRepository {
	return &reviewRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts a review. One review per student per opportunity;
// ErrDuplicate on a repeat.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (organization_id, opportunity_id, student_id, rating, title, body, pros, cons)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		review.OrganizationID, review.OpportunityID, review.StudentID,
		review.Rating, review.Title, review.Body, review.Pros, review.Cons,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)

	if err != nil {
		if r.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	r.GetLogger().Info("Review created",
		zap.Int64("review_id", review.ID),
		zap.Int64("opportunity_id", review.OpportunityID),
		zap.Int("rating", review.Rating),
	)
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews r
		INNER JOIN students s ON r.student_id = s.id
		INNER JOIN organizations g ON r.organization_id = g.id
		WHERE r.id = $1`

	review, err := r.scanReview(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

func (r *reviewRepository) List(ctx context.Context, filter models.ReviewFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Review], error) {
	r.ClampPagination(&params)

	clauses := []string{}
	args := []interface{}{}
	if filter.OrganizationID != nil {
		args = append(args, *filter.OrganizationID)
		clauses = append(clauses, fmt.Sprintf("r.organization_id = $%d", len(args)))
	}
	if filter.OpportunityID != nil {
		args = append(args, *filter.OpportunityID)
		clauses = append(clauses, fmt.Sprintf("r.opportunity_id = $%d", len(args)))
	}
	if filter.MinRating != nil {
		args = append(args, *filter.MinRating)
		clauses = append(clauses, fmt.Sprintf("r.rating >= $%d", len(args)))
	}

	baseQuery := `
		FROM reviews r
		INNER JOIN students s ON r.student_id = s.id
		INNER JOIN organizations g ON r.organization_id = g.id`
	if len(clauses) > 0 {
		baseQuery += " WHERE " + strings.Join(clauses, " AND ")
	}

	total, err := r.GetTotalCount(ctx, "SELECT COUNT(*)"+baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	query := "SELECT " + reviewColumns + baseQuery +
		r.OrderClause(params.Sort, params.Order, "r.created_at", reviewSortColumns) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*models.Review{}
	for rows.Next() {
		review, err := r.scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.Review]{
		Data:       reviews,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

// Update rewrites a review's content, scoped to its author
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	query := `
		UPDATE reviews SET
			rating = $3, title = $4, body = $5, pros = $6, cons = $7,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND student_id = $2
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		review.ID, review.StudentID,
		review.Rating, review.Title, review.Body, review.Pros, review.Cons,
	).Scan(&review.UpdatedAt)

	if err != nil {
		if r.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id, studentID int64) error {
	result, err := r.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = $1 AND student_id = $2`, id, studentID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *reviewRepository) scanReview(row rowScanner) (*models.Review, error) {
	var review models.Review
	err := row.Scan(
		&review.ID, &review.OrganizationID, &review.OpportunityID, &review.StudentID,
		&review.Rating, &review.Title, &review.Body, &review.Pros, &review.Cons,
		&review.CreatedAt, &review.UpdatedAt,
		&review.StudentName, &review.OrganizationName,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}
