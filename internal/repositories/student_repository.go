package repositories

import (
	"context"
	"fmt"

	"internhub/internal/database"
	"internhub/internal/models"

	"go.uber.org/zap"
)

const studentColumns = `
	id, email, password_hash, first_name, last_name,
	university, major, graduation_year, bio, skills, education, experience,
	resume_url, is_active, created_at, updated_at`

type studentRepository struct {
	*BaseRepository
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *database.Manager, logger *zap.Logger) StudentRepository {
	return &studentRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts a new student account. ErrDuplicate on a taken email.
func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (
			email, password_hash, first_name, last_name,
			university, major, graduation_year, bio, skills, education, experience, resume_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, is_active, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		student.Email, student.PasswordHash, student.FirstName, student.LastName,
		student.University, student.Major, student.GraduationYear, student.Bio,
		student.Skills, student.Education, student.Experience, student.ResumeURL,
	).Scan(&student.ID, &student.IsActive, &student.CreatedAt, &student.UpdatedAt)

	if err != nil {
		if r.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	r.GetLogger().Info("Student created",
		zap.Int64("student_id", student.ID),
		zap.String("email", student.Email),
	)
	return nil
}

func (r *studentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	return r.get(ctx, query, id)
}

func (r *studentRepository) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE email = $1`
	return r.get(ctx, query, email)
}

func (r *studentRepository) get(ctx context.Context, query string, arg interface{}) (*models.Student, error) {
	var s models.Student
	err := r.QueryRowContext(ctx, query, arg).Scan(
		&s.ID, &s.Email, &s.PasswordHash, &s.FirstName, &s.LastName,
		&s.University, &s.Major, &s.GraduationYear, &s.Bio, &s.Skills, &s.Education, &s.Experience,
		&s.ResumeURL, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &s, nil
}

// Update rewrites a student's profile fields. Email and password are
// managed separately.
func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	query := `
		UPDATE students SET
			first_name = $2, last_name = $3, university = $4, major = $5,
			graduation_year = $6, bio = $7, skills = $8, education = $9,
			experience = $10, resume_url = $11, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		student.ID, student.FirstName, student.LastName, student.University, student.Major,
		student.GraduationYear, student.Bio, student.Skills, student.Education,
		student.Experience, student.ResumeURL,
	).Scan(&student.UpdatedAt)

	if err != nil {
		if r.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update student: %w", err)
	}
	return nil
}

func (r *studentRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.ExecContext(ctx,
		`UPDATE students SET password_hash = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
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
