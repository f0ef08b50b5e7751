package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// ===============================
// PRINCIPALS
// ===============================

// Principal roles. Students and organizations are separate account kinds,
// disambiguated at login time by a caller-supplied role.
const (
	RoleStudent      = "student"
	RoleOrganization = "organization"
)

// Student represents a student account
type Student struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	PasswordHash string `json:"-" db:"password_hash"`
	FirstName    string `json:"first_name" db:"first_name" validate:"required,max=100"`
	LastName     string `json:"last_name" db:"last_name" validate:"required,max=100"`

	// Profile
	University     *string     `json:"university,omitempty" db:"university"`
	Major          *string     `json:"major,omitempty" db:"major"`
	GraduationYear *int        `json:"graduation_year,omitempty" db:"graduation_year"`
	Bio            *string     `json:"bio,omitempty" db:"bio"`
	Skills         StringArray `json:"skills" db:"skills"`
	Education      ProfileEntries `json:"education" db:"education"`
	Experience     ProfileEntries `json:"experience" db:"experience"`
	ResumeURL      *string     `json:"resume_url,omitempty" db:"resume_url"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the student's display name
func (s *Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Organization represents a hiring organization account
type Organization struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Name         string `json:"name" db:"name" validate:"required,max=255"`

	// Profile
	Description *string     `json:"description,omitempty" db:"description"`
	Website     *string     `json:"website,omitempty" db:"website"`
	LogoURL     *string     `json:"logo_url,omitempty" db:"logo_url"`
	Industry    *string     `json:"industry,omitempty" db:"industry"`
	Location    *string     `json:"location,omitempty" db:"location"`
	Size        *string     `json:"size,omitempty" db:"size"`
	Culture     *string     `json:"culture,omitempty" db:"culture"`
	SocialLinks SocialLinks `json:"social_links" db:"social_links"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OrganizationPublic is the subset of organization fields projected into
// public listing responses.
type OrganizationPublic struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	LogoURL  *string `json:"logo_url,omitempty"`
	Industry *string `json:"industry,omitempty"`
	Location *string `json:"location,omitempty"`
}

// ProfileEntry is a single education or experience record on a student profile
type ProfileEntry struct {
	Title       string  `json:"title"`
	Institution string  `json:"institution,omitempty"`
	From        string  `json:"from,omitempty"`
	To          string  `json:"to,omitempty"`
	Description *string `json:"description,omitempty"`
}

// SocialLinks holds an organization's social media handles
type SocialLinks struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
}

// ===============================
// OPPORTUNITIES
// ===============================

// Opportunity types
const (
	TypeFullTime = "full-time"
	TypePartTime = "part-time"
	TypeRemote   = "remote"
	TypeHybrid   = "hybrid"
)

// Experience levels
const (
	LevelEntry        = "entry-level"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// DefaultMaxApplications is the application cap assigned when none is given
const DefaultMaxApplications = 100

// Opportunity represents an internship listing owned by an organization
type Opportunity struct {
	// Core fields
	ID               int64       `json:"id" db:"id"`
	OrganizationID   int64       `json:"organization_id" db:"organization_id" validate:"required"`
	Title            string      `json:"title" db:"title" validate:"required,min=5,max=255"`
	Description      string      `json:"description" db:"description" validate:"required,min=20"`
	Requirements     StringArray `json:"requirements" db:"requirements"`
	Responsibilities StringArray `json:"responsibilities" db:"responsibilities"`
	Skills           StringArray `json:"skills" db:"skills"`

	// Placement details
	Location            string    `json:"location" db:"location" validate:"required,max=255"`
	Type                string    `json:"type" db:"type" validate:"oneof=full-time part-time remote hybrid"`
	Duration            string    `json:"duration" db:"duration" validate:"required,max=100"`
	StartDate           time.Time `json:"start_date" db:"start_date"`
	EndDate             time.Time `json:"end_date" db:"end_date"`
	ApplicationDeadline time.Time `json:"application_deadline" db:"application_deadline"`

	// Compensation (optional)
	SalaryAmount   *float64 `json:"salary_amount,omitempty" db:"salary_amount"`
	SalaryCurrency *string  `json:"salary_currency,omitempty" db:"salary_currency"`
	SalaryPeriod   *string  `json:"salary_period,omitempty" db:"salary_period" validate:"omitempty,oneof=hourly monthly stipend"`

	Benefits        StringArray `json:"benefits" db:"benefits"`
	Category        string      `json:"category" db:"category" validate:"required,max=100"`
	Industry        string      `json:"industry" db:"industry" validate:"required,max=100"`
	ExperienceLevel string      `json:"experience_level" db:"experience_level" validate:"oneof=entry-level intermediate advanced"`

	// Capacity and tracking
	MaxApplications     int  `json:"max_applications" db:"max_applications"`
	CurrentApplications int  `json:"current_applications" db:"current_applications"`
	IsActive            bool `json:"is_active" db:"is_active"`
	IsFeatured          bool `json:"is_featured" db:"is_featured"`
	ViewsCount          int  `json:"views_count" db:"views_count"`

	Tags StringArray `json:"tags" db:"tags"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Organization information (joined)
	Organization *OrganizationPublic `json:"organization,omitempty" db:"-"`
}

// ===============================
// APPLICATIONS
// ===============================

// Application statuses
const (
	StatusPending     = "pending"
	StatusReviewed    = "reviewed"
	StatusShortlisted = "shortlisted"
	StatusInterviewed = "interviewed"
	StatusAccepted    = "accepted"
	StatusRejected    = "rejected"
)

// ValidApplicationStatus reports whether s is one of the enumerated statuses
func ValidApplicationStatus(s string) bool {
	switch s {
	case StatusPending, StatusReviewed, StatusShortlisted, StatusInterviewed, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Application represents a student's submission against an opportunity.
// The opportunity title is snapshotted at submission time, so the record
// stays readable after the listing itself is deleted.
type Application struct {
	ID             int64 `json:"id" db:"id"`
	OpportunityID  int64 `json:"opportunity_id" db:"opportunity_id" validate:"required"`
	StudentID      int64 `json:"student_id" db:"student_id" validate:"required"`
	OrganizationID int64 `json:"organization_id" db:"organization_id"`

	OpportunityTitle string `json:"opportunity_title" db:"opportunity_title"`
	CoverLetter      string `json:"cover_letter" db:"cover_letter" validate:"required,min=20,max=5000"`
	ResumeURL        string `json:"resume_url" db:"resume_url"`

	Status             string     `json:"status" db:"status" validate:"oneof=pending reviewed shortlisted interviewed accepted rejected"`
	Notes              *string    `json:"notes,omitempty" db:"notes"`
	Feedback           *string    `json:"feedback,omitempty" db:"feedback"`
	InterviewScheduled *time.Time `json:"interview_scheduled,omitempty" db:"interview_scheduled"`

	AppliedAt  time.Time  `json:"applied_at" db:"applied_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`

	// Related information (joined)
	OrganizationName string  `json:"organization_name,omitempty" db:"organization_name"`
	OrganizationLogo *string `json:"organization_logo,omitempty" db:"organization_logo"`
	StudentName      string  `json:"student_name,omitempty" db:"student_name"`
	StudentEmail     string  `json:"student_email,omitempty" db:"student_email"`
}

// ===============================
// ANCILLARY CONTENT
// ===============================

// Review is a student's review of an organization, keyed to the opportunity
// they applied through. One review per (opportunity, student).
type Review struct {
	ID             int64       `json:"id" db:"id"`
	OrganizationID int64       `json:"organization_id" db:"organization_id" validate:"required"`
	OpportunityID  int64       `json:"opportunity_id" db:"opportunity_id" validate:"required"`
	StudentID      int64       `json:"student_id" db:"student_id"`
	Rating         int         `json:"rating" db:"rating" validate:"required,min=1,max=5"`
	Title          string      `json:"title" db:"title" validate:"required,max=255"`
	Body           string      `json:"body" db:"body" validate:"required"`
	Pros           StringArray `json:"pros" db:"pros"`
	Cons           StringArray `json:"cons" db:"cons"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`

	StudentName      string `json:"student_name,omitempty" db:"student_name"`
	OrganizationName string `json:"organization_name,omitempty" db:"organization_name"`
}

// Resource is an article published for students
type Resource struct {
	ID         int64       `json:"id" db:"id"`
	AuthorID   int64       `json:"author_id" db:"author_id"`
	Title      string      `json:"title" db:"title" validate:"required,max=255"`
	Content    string      `json:"content" db:"content" validate:"required"`
	Category   string      `json:"category" db:"category" validate:"required,max=100"`
	Tags       StringArray `json:"tags" db:"tags"`
	ViewsCount int         `json:"views_count" db:"views_count"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`

	AuthorName string `json:"author_name,omitempty" db:"author_name"`
}

// ForumPost is a community discussion thread
type ForumPost struct {
	ID         int64       `json:"id" db:"id"`
	AuthorID   int64       `json:"author_id" db:"author_id"`
	AuthorRole string      `json:"author_role" db:"author_role"`
	Title      string      `json:"title" db:"title" validate:"required,max=255"`
	Body       string      `json:"body" db:"body" validate:"required"`
	Category   string      `json:"category" db:"category" validate:"required,max=100"`
	Tags       StringArray `json:"tags" db:"tags"`
	LikesCount int         `json:"likes_count" db:"likes_count"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`

	AuthorName string        `json:"author_name,omitempty" db:"author_name"`
	Replies    []*ForumReply `json:"replies,omitempty" db:"-"`
	ReplyCount int           `json:"reply_count" db:"reply_count"`
}

// ForumReply is a reply embedded under a forum post
type ForumReply struct {
	ID         int64     `json:"id" db:"id"`
	PostID     int64     `json:"post_id" db:"post_id"`
	AuthorID   int64     `json:"author_id" db:"author_id"`
	AuthorRole string    `json:"author_role" db:"author_role"`
	Body       string    `json:"body" db:"body" validate:"required"`
	LikesCount int       `json:"likes_count" db:"likes_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	AuthorName string `json:"author_name,omitempty" db:"author_name"`
}

// EmailAlert is a student's saved search subscription
type EmailAlert struct {
	ID        int64       `json:"id" db:"id"`
	StudentID int64       `json:"student_id" db:"student_id"`
	Keywords  StringArray `json:"keywords" db:"keywords"`
	Category  *string     `json:"category,omitempty" db:"category"`
	Location  *string     `json:"location,omitempty" db:"location"`
	Type      *string     `json:"type,omitempty" db:"type" validate:"omitempty,oneof=full-time part-time remote hybrid"`
	Frequency string      `json:"frequency" db:"frequency" validate:"oneof=daily weekly"`
	IsActive  bool        `json:"is_active" db:"is_active"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// ===============================
// PAGINATION
// ===============================

// PaginationParams holds normalized paging and ordering inputs
type PaginationParams struct {
	Limit  int    `json:"limit" validate:"min=1,max=100"`
	Offset int    `json:"offset" validate:"min=0"`
	Sort   string `json:"sort,omitempty"`
	Order  string `json:"order,omitempty" validate:"omitempty,oneof=asc desc"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
	Filters    map[string]any `json:"filters,omitempty"`
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
	HasNext      bool  `json:"has_next"`
	HasPrev      bool  `json:"has_prev"`
}

// ===============================
// CUSTOM TYPES
// ===============================

// StringArray handles PostgreSQL text[] columns. Encoding and decoding
// delegate to pq, which quotes and escapes element text correctly.
type StringArray []string

// Scan implements sql.Scanner
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	var arr pq.StringArray
	if err := arr.Scan(value); err != nil {
		return err
	}
	*s = StringArray(arr)
	return nil
}

// Value implements driver.Valuer
func (s StringArray) Value() (driver.Value, error) {
	// A nil slice would encode as SQL NULL; the columns are NOT NULL.
	if s == nil {
		s = StringArray{}
	}
	return pq.StringArray(s).Value()
}

// UnmarshalJSON accepts either a JSON array of strings or a single
// comma-delimited string, normalizing both into a clean list.
func (s *StringArray) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = NormalizeList(list...)
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("expected string or array of strings")
	}
	*s = NormalizeList(single)
	return nil
}

// NormalizeList splits comma-delimited entries, trims whitespace and drops
// empties. Applying it to already-normalized input is a no-op.
func NormalizeList(inputs ...string) StringArray {
	out := StringArray{}
	for _, input := range inputs {
		for _, part := range strings.Split(input, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

// ProfileEntries handles JSONB-backed education/experience lists
type ProfileEntries []ProfileEntry

// Scan implements sql.Scanner
func (p *ProfileEntries) Scan(value interface{}) error {
	if value == nil {
		*p = ProfileEntries{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("cannot scan %T into ProfileEntries", value)
	}
}

// Value implements driver.Valuer
func (p ProfileEntries) Value() (driver.Value, error) {
	if p == nil {
		p = ProfileEntries{}
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner
func (l *SocialLinks) Scan(value interface{}) error {
	if value == nil {
		*l = SocialLinks{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into SocialLinks", value)
	}
}

// Value implements driver.Valuer
func (l SocialLinks) Value() (driver.Value, error) {
	return json.Marshal(l)
}
