package services

import (
	"context"
	"fmt"
	"time"

	"internhub/internal/models"
	"internhub/internal/push"

	"go.uber.org/zap"
)

// Notifier announces ledger events to the affected parties. Every method
// returns immediately; delivery happens in the background and failures are
// logged, never propagated. Callers must not depend on delivery.
type Notifier interface {
	// ApplicationReceived tells the owning organization a new application
	// arrived.
	ApplicationReceived(app *models.Application, opp *models.Opportunity, orgEmail string)

	// ApplicationStatusChanged tells the student their application moved
	// to a new status.
	ApplicationStatusChanged(app *models.Application)
}

type notifier struct {
	mailer Mailer
	hub    *push.Hub
	logger *zap.Logger
}

// NewNotifier creates a Notifier dispatching over email and websocket push
func NewNotifier(mailer Mailer, hub *push.Hub, logger *zap.Logger) Notifier {
	return &notifier{mailer: mailer, hub: hub, logger: logger}
}

func (n *notifier) ApplicationReceived(app *models.Application, opp *models.Opportunity, orgEmail string) {
	go n.dispatch("application_received", func(ctx context.Context) {
		subject := fmt.Sprintf("New application for %s", opp.Title)
		body := fmt.Sprintf(
			"<p>%s has applied to <strong>%s</strong>.</p><p>Log in to review the application.</p>",
			app.StudentName, opp.Title)

		if err := n.mailer.Send(ctx, orgEmail, subject, body); err != nil {
			n.logger.Warn("Application-received email failed",
				zap.Int64("application_id", app.ID),
				zap.Error(err),
			)
		}

		n.hub.Publish(models.RoleOrganization, app.OrganizationID, push.Event{
			Kind: "application_received",
			Payload: map[string]interface{}{
				"application_id": app.ID,
				"opportunity_id": app.OpportunityID,
				"student_name":   app.StudentName,
			},
		})
	})
}

func (n *notifier) ApplicationStatusChanged(app *models.Application) {
	go n.dispatch("application_status_changed", func(ctx context.Context) {
		subject := fmt.Sprintf("Your application to %s was updated", app.OpportunityTitle)
		body := fmt.Sprintf(
			"<p>Your application for <strong>%s</strong> at %s is now <strong>%s</strong>.</p>",
			app.OpportunityTitle, app.OrganizationName, app.Status)

		if err := n.mailer.Send(ctx, app.StudentEmail, subject, body); err != nil {
			n.logger.Warn("Status-change email failed",
				zap.Int64("application_id", app.ID),
				zap.Error(err),
			)
		}

		n.hub.Publish(models.RoleStudent, app.StudentID, push.Event{
			Kind: "application_status_changed",
			Payload: map[string]interface{}{
				"application_id": app.ID,
				"opportunity_id": app.OpportunityID,
				"status":         app.Status,
			},
		})
	})
}

// dispatch runs one background delivery with its own deadline, detached
// from the originating request, and guards it against panics
func (n *notifier) dispatch(kind string, fn func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Notification dispatch panicked",
				zap.String("kind", kind),
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	fn(ctx)
}
