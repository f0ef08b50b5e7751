package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"internhub/internal/config"
	"internhub/internal/models"
	"internhub/internal/repositories"
	"internhub/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService manages principal accounts and issues bearer tokens
type AuthService interface {
	RegisterStudent(ctx context.Context, req *RegisterStudentRequest) (*AuthResponse, error)
	RegisterOrganization(ctx context.Context, req *RegisterOrganizationRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	VerifyToken(tokenString string) (*TokenClaims, error)

	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	GetOrganization(ctx context.Context, id int64) (*models.Organization, error)
	UpdateStudentProfile(ctx context.Context, studentID int64, req *UpdateStudentProfileRequest) (*models.Student, error)
	UpdateOrganizationProfile(ctx context.Context, orgID int64, req *UpdateOrganizationProfileRequest) (*models.Organization, error)
	ChangePassword(ctx context.Context, principalID int64, role string, req *ChangePasswordRequest) error
}

// TokenClaims is the verified content of a bearer token
type TokenClaims struct {
	PrincipalID int64
	Role        string
	ExpiresAt   time.Time
}

type authService struct {
	students      repositories.StudentRepository
	organizations repositories.OrganizationRepository
	cfg           config.AuthConfig
	logger        *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	students repositories.StudentRepository,
	organizations repositories.OrganizationRepository,
	cfg config.AuthConfig,
	logger *zap.Logger,
) AuthService {
	return &authService{
		students:      students,
		organizations: organizations,
		cfg:           cfg,
		logger:        logger,
	}
}

// ===============================
// REGISTRATION AND LOGIN
// ===============================

func (s *authService) RegisterStudent(ctx context.Context, req *RegisterStudentRequest) (*AuthResponse, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid registration", fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BCryptCost)
	if err != nil {
		return nil, NewInternalError("failed to process password")
	}

	student := &models.Student{
		Email:          req.Email,
		PasswordHash:   string(hash),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		University:     req.University,
		Major:          req.Major,
		GraduationYear: req.GraduationYear,
		Skills:         models.StringArray{},
		Education:      models.ProfileEntries{},
		Experience:     models.ProfileEntries{},
	}

	if err := s.students.Create(ctx, student); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("an account with this email already exists", "EMAIL_TAKEN")
		}
		s.logger.Error("Failed to register student", zap.Error(err))
		return nil, NewInternalError("failed to create account")
	}

	return s.issueToken(models.RoleStudent, student.ID, student)
}

func (s *authService) RegisterOrganization(ctx context.Context, req *RegisterOrganizationRequest) (*AuthResponse, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid registration", fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BCryptCost)
	if err != nil {
		return nil, NewInternalError("failed to process password")
	}

	org := &models.Organization{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Website:      req.Website,
		Industry:     req.Industry,
		Location:     req.Location,
		SocialLinks:  models.SocialLinks{},
	}

	if err := s.organizations.Create(ctx, org); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("an account with this email already exists", "EMAIL_TAKEN")
		}
		s.logger.Error("Failed to register organization", zap.Error(err))
		return nil, NewInternalError("failed to create account")
	}

	return s.issueToken(models.RoleOrganization, org.ID, org)
}

// Login authenticates against the table selected by the role discriminator.
// Wrong email and wrong password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid credentials payload", fields)
	}

	var (
		id        int64
		hash      string
		principal interface{}
	)

	switch req.Role {
	case models.RoleStudent:
		student, err := s.students.GetByEmail(ctx, req.Email)
		if err != nil {
			return nil, s.loginFailure(err)
		}
		id, hash, principal = student.ID, student.PasswordHash, student
	case models.RoleOrganization:
		org, err := s.organizations.GetByEmail(ctx, req.Email)
		if err != nil {
			return nil, s.loginFailure(err)
		}
		id, hash, principal = org.ID, org.PasswordHash, org
	default:
		return nil, NewValidationError("unknown role", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, NewUnauthorizedError("invalid email or password")
	}

	return s.issueToken(req.Role, id, principal)
}

func (s *authService) loginFailure(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return NewUnauthorizedError("invalid email or password")
	}
	s.logger.Error("Login lookup failed", zap.Error(err))
	return NewInternalError("failed to authenticate")
}

func (s *authService) issueToken(role string, id int64, principal interface{}) (*AuthResponse, error) {
	expiresAt := time.Now().Add(s.cfg.JWTExpiry)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", id),
		"role": role,
		"exp":  expiresAt.Unix(),
		"iat":  time.Now().Unix(),
	})

	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		return nil, NewInternalError("failed to issue token")
	}

	return &AuthResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		Role:      role,
		Principal: principal,
	}, nil
}

// VerifyToken parses and validates a bearer token
func (s *authService) VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, NewUnauthorizedError("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, NewUnauthorizedError("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, NewUnauthorizedError("invalid token subject")
	}
	var id int64
	if _, err := fmt.Sscanf(sub, "%d", &id); err != nil || id <= 0 {
		return nil, NewUnauthorizedError("invalid token subject")
	}

	role, _ := claims["role"].(string)
	if role != models.RoleStudent && role != models.RoleOrganization {
		return nil, NewUnauthorizedError("invalid token role")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, NewUnauthorizedError("invalid token expiry")
	}

	return &TokenClaims{PrincipalID: id, Role: role, ExpiresAt: exp.Time}, nil
}

// ===============================
// PROFILES
// ===============================

func (s *authService) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("student not found")
		}
		s.logger.Error("Failed to get student", zap.Int64("student_id", id), zap.Error(err))
		return nil, NewInternalError("failed to load profile")
	}
	return student, nil
}

func (s *authService) GetOrganization(ctx context.Context, id int64) (*models.Organization, error) {
	org, err := s.organizations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("organization not found")
		}
		s.logger.Error("Failed to get organization", zap.Int64("organization_id", id), zap.Error(err))
		return nil, NewInternalError("failed to load profile")
	}
	return org, nil
}

func (s *authService) UpdateStudentProfile(ctx context.Context, studentID int64, req *UpdateStudentProfileRequest) (*models.Student, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid profile", fields)
	}

	student, err := s.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.University = req.University
	student.Major = req.Major
	student.GraduationYear = req.GraduationYear
	student.Bio = req.Bio
	student.Skills = models.NormalizeList(req.Skills...)
	student.ResumeURL = req.ResumeURL

	if err := s.students.Update(ctx, student); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("student not found")
		}
		s.logger.Error("Failed to update student", zap.Int64("student_id", studentID), zap.Error(err))
		return nil, NewInternalError("failed to update profile")
	}
	return student, nil
}

func (s *authService) UpdateOrganizationProfile(ctx context.Context, orgID int64, req *UpdateOrganizationProfileRequest) (*models.Organization, error) {
	if fields := fieldErrors(req); fields != nil {
		return nil, NewDetailedValidationError("invalid profile", fields)
	}

	org, err := s.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	org.Name = req.Name
	org.Description = req.Description
	org.Website = req.Website
	org.LogoURL = req.LogoURL
	org.Industry = req.Industry
	org.Location = req.Location
	org.Size = req.Size
	org.Culture = req.Culture
	if req.SocialLinks != nil {
		org.SocialLinks = *req.SocialLinks
	}

	if err := s.organizations.Update(ctx, org); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("organization not found")
		}
		s.logger.Error("Failed to update organization", zap.Int64("organization_id", orgID), zap.Error(err))
		return nil, NewInternalError("failed to update profile")
	}
	return org, nil
}

func (s *authService) ChangePassword(ctx context.Context, principalID int64, role string, req *ChangePasswordRequest) error {
	if fields := fieldErrors(req); fields != nil {
		return NewDetailedValidationError("invalid password change", fields)
	}

	var currentHash string
	switch role {
	case models.RoleStudent:
		student, err := s.GetStudent(ctx, principalID)
		if err != nil {
			return err
		}
		currentHash = student.PasswordHash
	case models.RoleOrganization:
		org, err := s.GetOrganization(ctx, principalID)
		if err != nil {
			return err
		}
		currentHash = org.PasswordHash
	default:
		return NewValidationError("unknown role", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(req.CurrentPassword)); err != nil {
		return NewUnauthorizedError("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BCryptCost)
	if err != nil {
		return NewInternalError("failed to process password")
	}

	if role == models.RoleStudent {
		err = s.students.UpdatePassword(ctx, principalID, string(hash))
	} else {
		err = s.organizations.UpdatePassword(ctx, principalID, string(hash))
	}
	if err != nil {
		s.logger.Error("Failed to change password",
			zap.Int64("principal_id", principalID),
			zap.String("role", role),
			zap.Error(err),
		)
		return NewInternalError("failed to change password")
	}

	s.logger.Info("Password changed",
		zap.Int64("principal_id", principalID),
		zap.String("role", role),
	)
	return nil
}

// fieldErrors adapts validator output to the service error taxonomy
func fieldErrors(req interface{}) []FieldError {
	violations := validation.Violations(req)
	if len(violations) == 0 {
		return nil
	}
	fields := make([]FieldError, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, FieldError{
			Field:   v.Field,
			Message: v.Message,
			Code:    v.Tag,
		})
	}
	return fields
}
