package services

import (
	"internhub/internal/cache"
	"internhub/internal/config"
	"internhub/internal/push"
	"internhub/internal/repositories"

	"go.uber.org/zap"
)

// Collection bundles every service for dependency injection
type Collection struct {
	Auth        AuthService
	Opportunity OpportunityService
	Application ApplicationService
	Review      ReviewService
	Resource    ResourceService
	Forum       ForumService
	Alert       AlertService
	Notifier    Notifier
}

// NewCollection wires the service layer. The mailer degrades to a no-op
// when no SMTP relay is configured.
func NewCollection(
	repos *repositories.Collection,
	c cache.Cache,
	hub *push.Hub,
	cfg *config.Config,
	logger *zap.Logger,
) *Collection {
	var mailer Mailer
	if cfg.SMTP.Enabled {
		mailer = NewSMTPMailer(cfg.SMTP, logger)
	} else {
		mailer = NewNoopMailer(logger)
	}

	notifier := NewNotifier(mailer, hub, logger)

	return &Collection{
		Auth:        NewAuthService(repos.Student, repos.Organization, cfg.Auth, logger),
		Opportunity: NewOpportunityService(repos.Opportunity, c, logger),
		Application: NewApplicationService(repos.Application, repos.Opportunity, repos.Student, repos.Organization, notifier, logger),
		Review:      NewReviewService(repos.Review, repos.Opportunity, logger),
		Resource:    NewResourceService(repos.Resource, logger),
		Forum:       NewForumService(repos.Forum, logger),
		Alert:       NewAlertService(repos.EmailAlert, logger),
		Notifier:    notifier,
	}
}
