package repositories

import (
	"internhub/internal/database"

	"go.uber.org/zap"
)

// NewCollection wires every repository against the shared database manager
func NewCollection(db *database.Manager, logger *zap.Logger) *Collection {
	return &Collection{
		Student:      NewStudentRepository(db, logger),
		Organization: NewOrganizationRepository(db, logger),
		Opportunity:  NewOpportunityRepository(db, logger),
		Application:  NewApplicationRepository(db, logger),
		Review:       NewReviewRepository(db, logger),
		Resource:     NewResourceRepository(db, logger),
		Forum:        NewForumRepository(db, logger),
		EmailAlert:   NewEmailAlertRepository(db, logger),
	}
}
