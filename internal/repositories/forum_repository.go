package repositories

import (
	"context"
	"fmt"
	"strings"

	"internhub/internal/database"
	"internhub/internal/models"

	"go.uber.org/zap"
)

// authorNameExpr resolves the display name of a post author from either
// principal table, depending on the stored role.
const authorNameExpr = `
	CASE WHEN %[1]s.author_role = 'student'
		THEN (SELECT s.first_name || ' ' || s.last_name FROM students s WHERE s.id = %[1]s.author_id)
		ELSE (SELECT g.name FROM organizations g WHERE g.id = %[1]s.author_id)
	END`

var forumSortColumns = map[string]string{
	"created_at":  "p.created_at",
	"likes_count": "p.likes_count",
}

type forumRepository struct {
	*BaseRepository
}

// NewForumRepository creates a new ForumRepository
func NewForumRepository(db *database.Manager, logger *zap.Logger) ForumRepository {
	return &forumRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// POSTS
// ===============================

func (r *forumRepository) CreatePost(ctx context.Context, post *models.ForumPost) error {
	query := `
		INSERT INTO forum_posts (author_id, author_role, title, body, category, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, likes_count, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		post.AuthorID, post.AuthorRole, post.Title, post.Body, post.Category, post.Tags,
	).Scan(&post.ID, &post.LikesCount, &post.CreatedAt, &post.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create forum post: %w", err)
	}

	r.GetLogger().Info("Forum post created",
		zap.Int64("post_id", post.ID),
		zap.Int64("author_id", post.AuthorID),
		zap.String("author_role", post.AuthorRole),
	)
	return nil
}

// GetPostByID returns a post with its replies loaded
func (r *forumRepository) GetPostByID(ctx context.Context, id int64) (*models.ForumPost, error) {
	query := fmt.Sprintf(`
		SELECT p.id, p.author_id, p.author_role, p.title, p.body, p.category, p.tags,
			p.likes_count, p.created_at, p.updated_at, `+authorNameExpr+`,
			(SELECT COUNT(*) FROM forum_replies fr WHERE fr.post_id = p.id)
		FROM forum_posts p
		WHERE p.id = $1`, "p")

	post, err := r.scanPost(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get forum post: %w", err)
	}

	post.Replies, err = r.GetReplies(ctx, id)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *forumRepository) ListPosts(ctx context.Context, filter models.ForumFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.ForumPost], error) {
	r.ClampPagination(&params)

	clauses := []string{}
	args := []interface{}{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(p.title ILIKE $%d OR p.body ILIKE $%d)", len(args), len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, fmt.Sprintf("p.category = $%d", len(args)))
	}

	baseQuery := " FROM forum_posts p"
	if len(clauses) > 0 {
		baseQuery += " WHERE " + strings.Join(clauses, " AND ")
	}

	total, err := r.GetTotalCount(ctx, "SELECT COUNT(*)"+baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count forum posts: %w", err)
	}

	query := fmt.Sprintf(`SELECT p.id, p.author_id, p.author_role, p.title, p.body, p.category, p.tags,
			p.likes_count, p.created_at, p.updated_at, `+authorNameExpr+`,
			(SELECT COUNT(*) FROM forum_replies fr WHERE fr.post_id = p.id)`, "p") +
		baseQuery +
		r.OrderClause(params.Sort, params.Order, "p.created_at", forumSortColumns) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list forum posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.ForumPost{}
	for rows.Next() {
		post, err := r.scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan forum post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.ForumPost]{
		Data:       posts,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

func (r *forumRepository) UpdatePost(ctx context.Context, post *models.ForumPost) error {
	query := `
		UPDATE forum_posts SET
			title = $3, body = $4, category = $5, tags = $6,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND author_id = $2
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		post.ID, post.AuthorID, post.Title, post.Body, post.Category, post.Tags,
	).Scan(&post.UpdatedAt)

	if err != nil {
		if r.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update forum post: %w", err)
	}
	return nil
}

func (r *forumRepository) DeletePost(ctx context.Context, id, authorID int64) error {
	result, err := r.ExecContext(ctx,
		`DELETE FROM forum_posts WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete forum post: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *forumRepository) LikePost(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx,
		`UPDATE forum_posts SET likes_count = likes_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to like forum post: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ===============================
// REPLIES
// ===============================

func (r *forumRepository) CreateReply(ctx context.Context, reply *models.ForumReply) error {
	query := `
		INSERT INTO forum_replies (post_id, author_id, author_role, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, likes_count, created_at`

	err := r.QueryRowContext(
		ctx, query,
		reply.PostID, reply.AuthorID, reply.AuthorRole, reply.Body,
	).Scan(&reply.ID, &reply.LikesCount, &reply.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create forum reply: %w", err)
	}
	return nil
}

func (r *forumRepository) GetReplies(ctx context.Context, postID int64) ([]*models.ForumReply, error) {
	query := fmt.Sprintf(`
		SELECT fr.id, fr.post_id, fr.author_id, fr.author_role, fr.body,
			fr.likes_count, fr.created_at, `+authorNameExpr+`
		FROM forum_replies fr
		WHERE fr.post_id = $1
		ORDER BY fr.created_at ASC`, "fr")

	rows, err := r.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get forum replies: %w", err)
	}
	defer rows.Close()

	replies := []*models.ForumReply{}
	for rows.Next() {
		var reply models.ForumReply
		err := rows.Scan(
			&reply.ID, &reply.PostID, &reply.AuthorID, &reply.AuthorRole,
			&reply.Body, &reply.LikesCount, &reply.CreatedAt, &reply.AuthorName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan forum reply: %w", err)
		}
		replies = append(replies, &reply)
	}
	return replies, rows.Err()
}

func (r *forumRepository) DeleteReply(ctx context.Context, id, authorID int64) error {
	result, err := r.ExecContext(ctx,
		`DELETE FROM forum_replies WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete forum reply: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *forumRepository) scanPost(row rowScanner) (*models.ForumPost, error) {
	var post models.ForumPost
	err := row.Scan(
		&post.ID, &post.AuthorID, &post.AuthorRole, &post.Title, &post.Body,
		&post.Category, &post.Tags, &post.LikesCount,
		&post.CreatedAt, &post.UpdatedAt, &post.AuthorName, &post.ReplyCount,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
