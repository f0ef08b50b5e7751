package services

import (
	"time"

	"internhub/internal/models"
)

// ===============================
// AUTH REQUESTS
// ===============================

// RegisterStudentRequest carries a student signup
type RegisterStudentRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`

	University     *string `json:"university,omitempty" validate:"omitempty,max=255"`
	Major          *string `json:"major,omitempty" validate:"omitempty,max=255"`
	GraduationYear *int    `json:"graduation_year,omitempty" validate:"omitempty,min=1990,max=2100"`
}

// RegisterOrganizationRequest carries an organization signup
type RegisterOrganizationRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Name     string  `json:"name" validate:"required,max=255"`
	Website  *string `json:"website,omitempty" validate:"omitempty,url"`
	Industry *string `json:"industry,omitempty" validate:"omitempty,max=100"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=255"`
}

// LoginRequest authenticates either principal kind; Role selects the table
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=student organization"`
}

// ChangePasswordRequest rotates the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// AuthResponse is returned from register and login
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Role      string      `json:"role"`
	Principal interface{} `json:"principal"`
}

// UpdateStudentProfileRequest carries a student profile edit. List fields
// accept either a JSON array or a single comma-separated string.
type UpdateStudentProfileRequest struct {
	FirstName      string             `json:"first_name" validate:"required,max=100"`
	LastName       string             `json:"last_name" validate:"required,max=100"`
	University     *string            `json:"university,omitempty" validate:"omitempty,max=255"`
	Major          *string            `json:"major,omitempty" validate:"omitempty,max=255"`
	GraduationYear *int               `json:"graduation_year,omitempty" validate:"omitempty,min=1990,max=2100"`
	Bio            *string            `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Skills         models.StringArray `json:"skills,omitempty"`
	ResumeURL      *string            `json:"resume_url,omitempty" validate:"omitempty,url"`
}

// UpdateOrganizationProfileRequest carries an organization profile edit
type UpdateOrganizationProfileRequest struct {
	Name        string              `json:"name" validate:"required,max=255"`
	Description *string             `json:"description,omitempty" validate:"omitempty,max=5000"`
	Website     *string             `json:"website,omitempty" validate:"omitempty,url"`
	LogoURL     *string             `json:"logo_url,omitempty" validate:"omitempty,url"`
	Industry    *string             `json:"industry,omitempty" validate:"omitempty,max=100"`
	Location    *string             `json:"location,omitempty" validate:"omitempty,max=255"`
	Size        *string             `json:"size,omitempty" validate:"omitempty,max=50"`
	Culture     *string             `json:"culture,omitempty" validate:"omitempty,max=5000"`
	SocialLinks *models.SocialLinks `json:"social_links,omitempty"`
}

// ===============================
// CATALOG REQUESTS
// ===============================

// CreateOpportunityRequest carries a new listing. The list-shaped fields
// (requirements, responsibilities, skills, benefits, tags) accept either a
// JSON array or one comma-separated string.
type CreateOpportunityRequest struct {
	Title            string             `json:"title" validate:"required,min=5,max=255"`
	Description      string             `json:"description" validate:"required,min=20"`
	Requirements     models.StringArray `json:"requirements,omitempty"`
	Responsibilities models.StringArray `json:"responsibilities,omitempty"`
	Skills           models.StringArray `json:"skills,omitempty"`

	Location            string    `json:"location" validate:"required,max=255"`
	Type                string    `json:"type" validate:"required,oneof=full-time part-time remote hybrid"`
	Duration            string    `json:"duration" validate:"required,max=100"`
	StartDate           time.Time `json:"start_date" validate:"required"`
	EndDate             time.Time `json:"end_date" validate:"required"`
	ApplicationDeadline time.Time `json:"application_deadline" validate:"required"`

	SalaryAmount   *float64 `json:"salary_amount,omitempty" validate:"omitempty,gt=0"`
	SalaryCurrency *string  `json:"salary_currency,omitempty" validate:"omitempty,len=3"`
	SalaryPeriod   *string  `json:"salary_period,omitempty" validate:"omitempty,oneof=hourly monthly stipend"`

	Benefits        models.StringArray `json:"benefits,omitempty"`
	Category        string             `json:"category" validate:"required,max=100"`
	Industry        string             `json:"industry" validate:"required,max=100"`
	ExperienceLevel string             `json:"experience_level" validate:"required,oneof=entry-level intermediate advanced"`

	MaxApplications *int               `json:"max_applications,omitempty" validate:"omitempty,min=1"`
	IsActive        *bool              `json:"is_active,omitempty"`
	IsFeatured      *bool              `json:"is_featured,omitempty"`
	Tags            models.StringArray `json:"tags,omitempty"`
}

// UpdateOpportunityRequest carries a partial listing edit. Only the fields
// present in the payload are applied; the list-shaped fields accept the same
// array-or-string forms as creation.
type UpdateOpportunityRequest struct {
	Title            *string             `json:"title,omitempty" validate:"omitempty,min=5,max=255"`
	Description      *string             `json:"description,omitempty" validate:"omitempty,min=20"`
	Requirements     *models.StringArray `json:"requirements,omitempty"`
	Responsibilities *models.StringArray `json:"responsibilities,omitempty"`
	Skills           *models.StringArray `json:"skills,omitempty"`

	Location            *string    `json:"location,omitempty" validate:"omitempty,max=255"`
	Type                *string    `json:"type,omitempty" validate:"omitempty,oneof=full-time part-time remote hybrid"`
	Duration            *string    `json:"duration,omitempty" validate:"omitempty,max=100"`
	StartDate           *time.Time `json:"start_date,omitempty"`
	EndDate             *time.Time `json:"end_date,omitempty"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`

	SalaryAmount   *float64 `json:"salary_amount,omitempty" validate:"omitempty,gt=0"`
	SalaryCurrency *string  `json:"salary_currency,omitempty" validate:"omitempty,len=3"`
	SalaryPeriod   *string  `json:"salary_period,omitempty" validate:"omitempty,oneof=hourly monthly stipend"`

	Benefits        *models.StringArray `json:"benefits,omitempty"`
	Category        *string             `json:"category,omitempty" validate:"omitempty,max=100"`
	Industry        *string             `json:"industry,omitempty" validate:"omitempty,max=100"`
	ExperienceLevel *string             `json:"experience_level,omitempty" validate:"omitempty,oneof=entry-level intermediate advanced"`

	MaxApplications *int                `json:"max_applications,omitempty" validate:"omitempty,min=1"`
	IsActive        *bool               `json:"is_active,omitempty"`
	IsFeatured      *bool               `json:"is_featured,omitempty"`
	Tags            *models.StringArray `json:"tags,omitempty"`
}

// ===============================
// APPLICATION REQUESTS
// ===============================

// ApplyRequest carries a student's application to one opportunity
type ApplyRequest struct {
	CoverLetter string `json:"cover_letter" validate:"required,min=20,max=5000"`
}

// UpdateApplicationStatusRequest carries an organization's review decision
type UpdateApplicationStatusRequest struct {
	Status             string     `json:"status" validate:"required,oneof=pending reviewed shortlisted interviewed accepted rejected"`
	Notes              *string    `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Feedback           *string    `json:"feedback,omitempty" validate:"omitempty,max=5000"`
	InterviewScheduled *time.Time `json:"interview_scheduled,omitempty"`
}

// ===============================
// ANCILLARY REQUESTS
// ===============================

// CreateReviewRequest carries a student's review of a completed placement
type CreateReviewRequest struct {
	OpportunityID int64              `json:"opportunity_id" validate:"required"`
	Rating        int                `json:"rating" validate:"required,min=1,max=5"`
	Title         string             `json:"title" validate:"required,max=255"`
	Body          string             `json:"body" validate:"required,min=10"`
	Pros          models.StringArray `json:"pros,omitempty"`
	Cons          models.StringArray `json:"cons,omitempty"`
}

// UpdateReviewRequest rewrites a review's content
type UpdateReviewRequest struct {
	Rating int                `json:"rating" validate:"required,min=1,max=5"`
	Title  string             `json:"title" validate:"required,max=255"`
	Body   string             `json:"body" validate:"required,min=10"`
	Pros   models.StringArray `json:"pros,omitempty"`
	Cons   models.StringArray `json:"cons,omitempty"`
}

// CreateResourceRequest carries a new resource article
type CreateResourceRequest struct {
	Title    string             `json:"title" validate:"required,max=255"`
	Content  string             `json:"content" validate:"required,min=20"`
	Category string             `json:"category" validate:"required,max=100"`
	Tags     models.StringArray `json:"tags,omitempty"`
}

// UpdateResourceRequest mirrors CreateResourceRequest
type UpdateResourceRequest = CreateResourceRequest

// CreateForumPostRequest carries a new discussion thread
type CreateForumPostRequest struct {
	Title    string             `json:"title" validate:"required,max=255"`
	Body     string             `json:"body" validate:"required,min=10"`
	Category string             `json:"category" validate:"required,max=100"`
	Tags     models.StringArray `json:"tags,omitempty"`
}

// UpdateForumPostRequest mirrors CreateForumPostRequest
type UpdateForumPostRequest = CreateForumPostRequest

// CreateForumReplyRequest carries a reply to an existing thread
type CreateForumReplyRequest struct {
	Body string `json:"body" validate:"required,min=2,max=10000"`
}

// CreateEmailAlertRequest carries a saved-search subscription
type CreateEmailAlertRequest struct {
	Keywords  models.StringArray `json:"keywords,omitempty"`
	Category  *string            `json:"category,omitempty" validate:"omitempty,max=100"`
	Location  *string            `json:"location,omitempty" validate:"omitempty,max=255"`
	Type      *string            `json:"type,omitempty" validate:"omitempty,oneof=full-time part-time remote hybrid"`
	Frequency string             `json:"frequency" validate:"required,oneof=daily weekly"`
	IsActive  *bool              `json:"is_active,omitempty"`
}

// UpdateEmailAlertRequest mirrors CreateEmailAlertRequest
type UpdateEmailAlertRequest = CreateEmailAlertRequest
