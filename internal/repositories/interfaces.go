package repositories

import (
	"context"
	"time"

	"internhub/internal/models"
)

// StudentRepository persists student accounts
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// OrganizationRepository persists organization accounts
type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id int64) (*models.Organization, error)
	GetByEmail(ctx context.Context, email string) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// OpportunityRepository persists the listing catalog
type OpportunityRepository interface {
	Create(ctx context.Context, opp *models.Opportunity) error
	GetByID(ctx context.Context, id int64) (*models.Opportunity, error)
	IncrementViews(ctx context.Context, id int64) error
	Update(ctx context.Context, opp *models.Opportunity) error
	Delete(ctx context.Context, id, organizationID int64) error
	Search(ctx context.Context, filter models.OpportunityFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Opportunity], error)
	GetFeatured(ctx context.Context, limit int) ([]*models.Opportunity, error)
	GetByOrganization(ctx context.Context, organizationID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Opportunity], error)
	Stats(ctx context.Context) (*models.CatalogStats, error)
}

// ApplicationRepository persists the application ledger
type ApplicationRepository interface {
	// CreateWithCapacity inserts the application and increments the
	// opportunity's application counter in one transaction. The increment
	// is conditional on remaining capacity; ErrCapacityReached is returned
	// when the cap is already met, ErrDuplicate on a repeat application.
	CreateWithCapacity(ctx context.Context, app *models.Application) error

	GetByID(ctx context.Context, id int64) (*models.Application, error)
	GetByStudent(ctx context.Context, studentID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error)
	GetByOpportunity(ctx context.Context, opportunityID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error)
	HasApplied(ctx context.Context, opportunityID, studentID int64) (bool, error)
	UpdateStatus(ctx context.Context, upd *ApplicationStatusUpdate) (*models.Application, error)
}

// ApplicationStatusUpdate carries an owning organization's status change
type ApplicationStatusUpdate struct {
	ApplicationID      int64
	OrganizationID     int64
	Status             string
	Notes              *string
	Feedback           *string
	InterviewScheduled *time.Time
}

// ReviewRepository persists organization reviews
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	List(ctx context.Context, filter models.ReviewFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Review], error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id, studentID int64) error
}

// ResourceRepository persists resource articles
type ResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	GetByID(ctx context.Context, id int64) (*models.Resource, error)
	IncrementViews(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.ResourceFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Resource], error)
	Update(ctx context.Context, resource *models.Resource) error
	Delete(ctx context.Context, id, authorID int64) error
}

// ForumRepository persists forum posts and replies
type ForumRepository interface {
	CreatePost(ctx context.Context, post *models.ForumPost) error
	GetPostByID(ctx context.Context, id int64) (*models.ForumPost, error)
	ListPosts(ctx context.Context, filter models.ForumFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.ForumPost], error)
	UpdatePost(ctx context.Context, post *models.ForumPost) error
	DeletePost(ctx context.Context, id, authorID int64) error
	LikePost(ctx context.Context, id int64) error
	CreateReply(ctx context.Context, reply *models.ForumReply) error
	GetReplies(ctx context.Context, postID int64) ([]*models.ForumReply, error)
	DeleteReply(ctx context.Context, id, authorID int64) error
}

// EmailAlertRepository persists saved-search subscriptions
type EmailAlertRepository interface {
	Create(ctx context.Context, alert *models.EmailAlert) error
	GetByID(ctx context.Context, id int64) (*models.EmailAlert, error)
	ListByStudent(ctx context.Context, studentID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.EmailAlert], error)
	Update(ctx context.Context, alert *models.EmailAlert) error
	Delete(ctx context.Context, id, studentID int64) error
}

// Collection bundles every repository for dependency injection
type Collection struct {
	Student      StudentRepository
	Organization OrganizationRepository
	Opportunity  OpportunityRepository
	Application  ApplicationRepository
	Review       ReviewRepository
	Resource     ResourceRepository
	Forum        ForumRepository
	EmailAlert   EmailAlertRepository
}
