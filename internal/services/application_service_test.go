package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"internhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCoverLetter = "I am very excited to apply for this internship position."

type applicationHarness struct {
	store    *fakeStore
	service  ApplicationService
	notifier *fakeNotifier

	student     *models.Student
	org         *models.Organization
	opportunity *models.Opportunity
}

func newApplicationHarness(t *testing.T) *applicationHarness {
	t.Helper()

	store := newFakeStore()
	notifier := &fakeNotifier{}

	resume := "https://example.com/resume.pdf"
	student := store.addStudent(&models.Student{
		Email:     "ada@students.example.com",
		FirstName: "Ada",
		LastName:  "Wanjiru",
		ResumeURL: &resume,
	})
	org := store.addOrganization(&models.Organization{
		Email: "talent@acme.example.com",
		Name:  "Acme Labs",
	})
	opp := store.addOpportunity(&models.Opportunity{
		OrganizationID:      org.ID,
		Title:               "Backend Engineering Intern",
		IsActive:            true,
		MaxApplications:     10,
		ApplicationDeadline: time.Now().Add(14 * 24 * time.Hour),
	})

	service := NewApplicationService(
		&fakeApplicationRepo{store: store},
		&fakeOpportunityRepo{store: store},
		&fakeStudentRepo{store: store},
		&fakeOrganizationRepo{store: store},
		notifier,
		zap.NewNop(),
	)

	return &applicationHarness{
		store:       store,
		service:     service,
		notifier:    notifier,
		student:     student,
		org:         org,
		opportunity: opp,
	}
}

func (h *applicationHarness) addStudentWithResume(t *testing.T, email string) *models.Student {
	t.Helper()
	resume := "https://example.com/" + email + ".pdf"
	return h.store.addStudent(&models.Student{
		Email:     email,
		FirstName: "Test",
		LastName:  "Student",
		ResumeURL: &resume,
	})
}

func TestApplicationService_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("successful application", func(t *testing.T) {
		h := newApplicationHarness(t)

		app, err := h.service.Apply(ctx, h.student.ID, h.opportunity.ID, &ApplyRequest{CoverLetter: testCoverLetter})
		require.NoError(t, err)

		assert.Equal(t, models.StatusPending, app.Status)
		assert.Equal(t, h.opportunity.ID, app.OpportunityID)
		assert.Equal(t, h.org.ID, app.OrganizationID)
		assert.Equal(t, "Backend Engineering Intern", app.OpportunityTitle)
		assert.Equal(t, "Ada Wanjiru", app.StudentName)
		assert.Equal(t, *h.student.ResumeURL, app.ResumeURL)

		stored, err := h.service.GetMine(ctx, h.student.ID, models.PaginationParams{Limit: 10})
		require.NoError(t, err)
		require.Len(t, stored.Data, 1)

		assert.Equal(t, 1, h.notifier.receivedCount())

		opp, err := h.store.opportunityByID(h.opportunity.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, opp.CurrentApplications)
	})

	t.Run("short cover letter fails validation", func(t *testing.T) {
		h := newApplicationHarness(t)

		_, err := h.service.Apply(ctx, h.student.ID, h.opportunity.ID, &ApplyRequest{CoverLetter: "too short"})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("unknown opportunity", func(t *testing.T) {
		h := newApplicationHarness(t)

		_, err := h.service.Apply(ctx, h.student.ID, 9999, &ApplyRequest{CoverLetter: testCoverLetter})
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("inactive opportunity reads as missing", func(t *testing.T) {
		h := newApplicationHarness(t)
		h.store.setOpportunityActive(h.opportunity.ID, false)

		_, err := h.service.Apply(ctx, h.student.ID, h.opportunity.ID, &ApplyRequest{CoverLetter: testCoverLetter})
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("passed deadline", func(t *testing.T) {
		h := newApplicationHarness(t)
		h.store.setOpportunityDeadline(h.opportunity.ID, time.Now().Add(-time.Hour))

		_, err := h.service.Apply(ctx, h.student.ID, h.opportunity.ID, &ApplyRequest{CoverLetter: testCoverLetter})
		require.Error(t, err)
		assert.True(t, IsConflictError(err))
		assert.Equal(t, "DEADLINE_PASSED", GetServiceError(err).Code)
	})

	t.Run("repeat application", func(t *testing.T) {
		h := newApplicationHarness(t)

		_, err := h.service.Apply(ctx, h.student.ID, h.opportunity.ID, &ApplyRequest{CoverLetter: testCoverLetter})
		require.NoError(t, err)

		_, err = h.service.Apply(ctx, h.student.ID, h.opportunity.ID, &ApplyRequest{CoverLetter: testCoverLetter})
		require.Error(t, err)
		assert.True(t, IsConflictError(err))
		assert.Equal(t, "ALREADY_APPLIED", GetServiceError(err).Code)
	})

	t.Run("capacity reached", func(t *testing.T) {
		h := newApplicationHarness(t)
		h.store.setOpportunityCapacity(h.opportunity.ID, 1)

		first := h.addStudentWithResume(t, "first@students.example.com")
		_, err := h.service.Apply(ctx, first.ID, h.opportunity.ID, &ApplyRequest{CoverLetter: testCoverLetter})
		require.NoError(t, err)

		_, err = h.service.Apply(ctx, h.student.ID, h.opportunity.ID, &ApplyRequest{CoverLetter: testCoverLetter})
		require.Error(t, err)
		assert.True(t, IsConflictError(err))
		assert.Equal(t, "CAPACITY_REACHED", GetServiceError(err).Code)
	})

	t.Run("missing resume", func(t *testing.T) {
		h := newApplicationHarness(t)
		bare := h.store.addStudent(&models.Student{
			Email:     "noresume@students.example.com",
			FirstName: "No",
			LastName:  "Resume",
		})

		_, err := h.service.Apply(ctx, bare.ID, h.opportunity.ID, &ApplyRequest{CoverLetter: testCoverLetter})
		require.Error(t, err)
		assert.True(t, IsConflictError(err))
		assert.Equal(t, "RESUME_REQUIRED", GetServiceError(err).Code)
	})
}

// Concurrent applies against a nearly full opportunity must never push the
// counter past the cap; exactly the remaining slots succeed.
func TestApplicationService_Apply_ConcurrentCap(t *testing.T) {
	ctx := context.Background()
	h := newApplicationHarness(t)

	const capacity = 3
	const contenders = 20
	h.store.setOpportunityCapacity(h.opportunity.ID, capacity)

	students := make([]*models.Student, contenders)
	for i := range students {
		students[i] = h.addStudentWithResume(t, fmt.Sprintf("racer%d@students.example.com", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i, student := range students {
		wg.Add(1)
		go func(i int, studentID int64) {
			defer wg.Done()
			_, errs[i] = h.service.Apply(ctx, studentID, h.opportunity.ID, &ApplyRequest{CoverLetter: testCoverLetter})
		}(i, student.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, IsConflictError(err))
		assert.Equal(t, "CAPACITY_REACHED", GetServiceError(err).Code)
	}
	assert.Equal(t, capacity, succeeded)

	opp, err := h.store.opportunityByID(h.opportunity.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, opp.CurrentApplications)
}

func TestApplicationService_Get(t *testing.T) {
	ctx := context.Background()
	h := newApplicationHarness(t)

	created, err := h.service.Apply(ctx, h.student.ID, h.opportunity.ID, &ApplyRequest{CoverLetter: testCoverLetter})
	require.NoError(t, err)

	t.Run("owning student", func(t *testing.T) {
		app, err := h.service.Get(ctx, created.ID, h.student.ID, models.RoleStudent)
		require.NoError(t, err)
		assert.Equal(t, created.ID, app.ID)
	})

	t.Run("owning organization", func(t *testing.T) {
		app, err := h.service.Get(ctx, created.ID, h.org.ID, models.RoleOrganization)
		require.NoError(t, err)
		assert.Equal(t, created.ID, app.ID)
	})

	t.Run("another student is refused", func(t *testing.T) {
		other := h.addStudentWithResume(t, "other@students.example.com")
		_, err := h.service.Get(ctx, created.ID, other.ID, models.RoleStudent)
		assert.True(t, IsForbiddenError(err))
	})

	t.Run("another organization is refused", func(t *testing.T) {
		other := h.store.addOrganization(&models.Organization{
			Email: "talent@other.example.com",
			Name:  "Other Corp",
		})
		_, err := h.service.Get(ctx, created.ID, other.ID, models.RoleOrganization)
		assert.True(t, IsForbiddenError(err))
	})

	t.Run("unknown role is refused", func(t *testing.T) {
		_, err := h.service.Get(ctx, created.ID, h.student.ID, "admin")
		assert.True(t, IsForbiddenError(err))
	})
}

func TestApplicationService_GetForOpportunity(t *testing.T) {
	ctx := context.Background()
	h := newApplicationHarness(t)

	_, err := h.service.Apply(ctx, h.student.ID, h.opportunity.ID, &ApplyRequest{CoverLetter: testCoverLetter})
	require.NoError(t, err)

	t.Run("owner lists applications", func(t *testing.T) {
		page, err := h.service.GetForOpportunity(ctx, h.opportunity.ID, h.org.ID, models.PaginationParams{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, page.Data, 1)
	})

	t.Run("non-owner sees not found", func(t *testing.T) {
		other := h.store.addOrganization(&models.Organization{
			Email: "talent@rival.example.com",
			Name:  "Rival Inc",
		})
		_, err := h.service.GetForOpportunity(ctx, h.opportunity.ID, other.ID, models.PaginationParams{Limit: 10})
		assert.True(t, IsNotFoundError(err))
	})
}

func TestApplicationService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	h := newApplicationHarness(t)

	created, err := h.service.Apply(ctx, h.student.ID, h.opportunity.ID, &ApplyRequest{CoverLetter: testCoverLetter})
	require.NoError(t, err)

	t.Run("owner moves the application forward", func(t *testing.T) {
		feedback := "Strong portfolio, moving to interview."
		app, err := h.service.UpdateStatus(ctx, created.ID, h.org.ID, &UpdateApplicationStatusRequest{
			Status:   models.StatusShortlisted,
			Feedback: &feedback,
		})
		require.NoError(t, err)

		assert.Equal(t, models.StatusShortlisted, app.Status)
		require.NotNil(t, app.Feedback)
		assert.Equal(t, feedback, *app.Feedback)
		assert.NotNil(t, app.ReviewedAt)
		assert.Equal(t, 1, h.notifier.statusChangedCount())
	})

	t.Run("invalid status fails validation", func(t *testing.T) {
		_, err := h.service.UpdateStatus(ctx, created.ID, h.org.ID, &UpdateApplicationStatusRequest{
			Status: "approved",
		})
		assert.True(t, IsValidationError(err))
	})

	t.Run("non-owner sees not found", func(t *testing.T) {
		other := h.store.addOrganization(&models.Organization{
			Email: "talent@imposter.example.com",
			Name:  "Imposter LLC",
		})
		_, err := h.service.UpdateStatus(ctx, created.ID, other.ID, &UpdateApplicationStatusRequest{
			Status: models.StatusRejected,
		})
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("every decision refreshes reviewed_at", func(t *testing.T) {
		first, err := h.service.UpdateStatus(ctx, created.ID, h.org.ID, &UpdateApplicationStatusRequest{
			Status: models.StatusInterviewed,
		})
		require.NoError(t, err)
		require.NotNil(t, first.ReviewedAt)

		time.Sleep(10 * time.Millisecond)

		second, err := h.service.UpdateStatus(ctx, created.ID, h.org.ID, &UpdateApplicationStatusRequest{
			Status: models.StatusAccepted,
		})
		require.NoError(t, err)
		require.NotNil(t, second.ReviewedAt)
		assert.True(t, second.ReviewedAt.After(*first.ReviewedAt))
	})
}

// Applications are a historical ledger: deleting the listing leaves them in
// place with their snapshotted display fields.
func TestApplicationService_SurvivesOpportunityDeletion(t *testing.T) {
	ctx := context.Background()
	h := newApplicationHarness(t)

	created, err := h.service.Apply(ctx, h.student.ID, h.opportunity.ID, &ApplyRequest{CoverLetter: testCoverLetter})
	require.NoError(t, err)

	oppRepo := &fakeOpportunityRepo{store: h.store}
	require.NoError(t, oppRepo.Delete(ctx, h.opportunity.ID, h.org.ID))

	page, err := h.service.GetMine(ctx, h.student.ID, models.PaginationParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Backend Engineering Intern", page.Data[0].OpportunityTitle)

	app, err := h.service.Get(ctx, created.ID, h.student.ID, models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineering Intern", app.OpportunityTitle)
}
