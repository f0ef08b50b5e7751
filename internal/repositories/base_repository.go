package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"internhub/internal/database"
	"internhub/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Sentinel errors surfaced by repositories; services translate them into
// the API error taxonomy.
var (
	// ErrNotFound covers both a missing row and an ownership mismatch.
	// The two are indistinguishable so a caller cannot learn whether a
	// record they do not own exists.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a uniqueness constraint violation
	ErrDuplicate = errors.New("record already exists")

	// ErrCapacityReached indicates a conditional counter update matched no rows
	ErrCapacityReached = errors.New("capacity reached")
)

// BaseRepository provides common database operations shared by all
// entity repositories.
type BaseRepository struct {
	db     *database.Manager
	logger *zap.Logger
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *database.Manager, logger *zap.Logger) *BaseRepository {
	return &BaseRepository{
		db:     db,
		logger: logger,
	}
}

// ===============================
// CORE DATABASE OPERATIONS
// ===============================

// ExecContext executes a statement through the managed pool
func (r *BaseRepository) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return r.db.ExecContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows
func (r *BaseRepository) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return r.db.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns a single row
func (r *BaseRepository) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return r.db.QueryRowContext(ctx, query, args...)
}

// WithTransaction executes fn within a database transaction
func (r *BaseRepository) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error("Failed to rollback transaction",
				zap.Error(rbErr),
				zap.NamedError("cause", err),
			)
		}
		return err
	}

	return tx.Commit()
}

// ===============================
// PAGINATION HELPERS
// ===============================

// OrderClause builds a safe ORDER BY fragment from a whitelist of sort
// keys mapped to column expressions. Unknown keys fall back to the first
// entry of fallback.
func (r *BaseRepository) OrderClause(sort, order, fallback string, allowed map[string]string) string {
	column, ok := allowed[sort]
	if !ok {
		column = fallback
	}
	direction := "DESC"
	if order == "asc" {
		direction = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", column, direction)
}

// ClampPagination normalizes limit and offset to sane bounds
func (r *BaseRepository) ClampPagination(params *models.PaginationParams) {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
}

// GetTotalCount executes a count query
func (r *BaseRepository) GetTotalCount(ctx context.Context, countQuery string, args ...interface{}) (int64, error) {
	var total int64
	err := r.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	return total, err
}

// BuildPaginationMeta creates pagination metadata. An empty result set
// yields zero pages, not an error.
func (r *BaseRepository) BuildPaginationMeta(params models.PaginationParams, total int64) models.PaginationMeta {
	currentPage := (params.Offset / params.Limit) + 1
	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))

	return models.PaginationMeta{
		CurrentPage:  currentPage,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: params.Limit,
		HasNext:      currentPage < totalPages,
		HasPrev:      currentPage > 1,
	}
}

// ===============================
// ERROR HELPERS
// ===============================

// IsNotFound checks if err is a "no rows" error
func (r *BaseRepository) IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsUniqueViolation checks for a Postgres unique constraint violation
func (r *BaseRepository) IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// GetLogger returns the logger instance
func (r *BaseRepository) GetLogger() *zap.Logger {
	return r.logger
}
