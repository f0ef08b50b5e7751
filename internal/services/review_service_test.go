package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"internhub/internal/models"
	"internhub/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[int64]*models.Review
	nextID  int64
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[int64]*models.Review)}
}

func (f *fakeReviewRepo) Create(_ context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reviews {
		if existing.OpportunityID == review.OpportunityID && existing.StudentID == review.StudentID {
			return repositories.ErrDuplicate
		}
	}
	f.nextID++
	review.ID = f.nextID
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	cp := *review
	f.reviews[review.ID] = &cp
	return nil
}

func (f *fakeReviewRepo) GetByID(_ context.Context, id int64) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	review, ok := f.reviews[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *review
	return &cp, nil
}

func (f *fakeReviewRepo) List(_ context.Context, filter models.ReviewFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Review], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := []*models.Review{}
	for _, review := range f.reviews {
		if filter.OrganizationID != nil && review.OrganizationID != *filter.OrganizationID {
			continue
		}
		if filter.MinRating != nil && review.Rating < *filter.MinRating {
			continue
		}
		cp := *review
		matched = append(matched, &cp)
	}
	return paginate(matched, params), nil
}

func (f *fakeReviewRepo) Update(_ context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.reviews[review.ID]
	if !ok || existing.StudentID != review.StudentID {
		return repositories.ErrNotFound
	}
	existing.Rating = review.Rating
	existing.Title = review.Title
	existing.Body = review.Body
	existing.Pros = review.Pros
	existing.Cons = review.Cons
	existing.UpdatedAt = time.Now()
	return nil
}

func (f *fakeReviewRepo) Delete(_ context.Context, id, studentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.reviews[id]
	if !ok || existing.StudentID != studentID {
		return repositories.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

func newReviewHarness(t *testing.T) (*fakeStore, ReviewService, *models.Opportunity) {
	t.Helper()

	store := newFakeStore()
	org := store.addOrganization(&models.Organization{
		Email: "talent@acme.example.com",
		Name:  "Acme Labs",
	})
	opp := store.addOpportunity(&models.Opportunity{
		OrganizationID:  org.ID,
		Title:           "Backend Engineering Intern",
		IsActive:        true,
		MaxApplications: 10,
	})

	service := NewReviewService(newFakeReviewRepo(), &fakeOpportunityRepo{store: store}, zap.NewNop())
	return store, service, opp
}

func reviewRequest(opportunityID int64) *CreateReviewRequest {
	return &CreateReviewRequest{
		OpportunityID: opportunityID,
		Rating:        4,
		Title:         "Great mentorship",
		Body:          "Supportive team and real responsibilities from day one.",
		Pros:          models.StringArray{"mentorship, real work"},
	}
}

func TestReviewService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves the organization from the opportunity", func(t *testing.T) {
		_, service, opp := newReviewHarness(t)

		review, err := service.Create(ctx, 42, reviewRequest(opp.ID))
		require.NoError(t, err)
		assert.Equal(t, opp.OrganizationID, review.OrganizationID)
		assert.Equal(t, models.StringArray{"mentorship", "real work"}, review.Pros)
	})

	t.Run("one review per student per opportunity", func(t *testing.T) {
		_, service, opp := newReviewHarness(t)

		_, err := service.Create(ctx, 42, reviewRequest(opp.ID))
		require.NoError(t, err)

		_, err = service.Create(ctx, 42, reviewRequest(opp.ID))
		require.Error(t, err)
		assert.True(t, IsConflictError(err))
		assert.Equal(t, "ALREADY_REVIEWED", GetServiceError(err).Code)
	})

	t.Run("unknown opportunity", func(t *testing.T) {
		_, service, _ := newReviewHarness(t)

		_, err := service.Create(ctx, 42, reviewRequest(9999))
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("rating bounds", func(t *testing.T) {
		_, service, opp := newReviewHarness(t)

		req := reviewRequest(opp.ID)
		req.Rating = 6
		_, err := service.Create(ctx, 42, req)
		assert.True(t, IsValidationError(err))
	})
}

func TestReviewService_OwnershipScoping(t *testing.T) {
	ctx := context.Background()
	_, service, opp := newReviewHarness(t)

	created, err := service.Create(ctx, 42, reviewRequest(opp.ID))
	require.NoError(t, err)

	upd := &UpdateReviewRequest{Rating: 2, Title: "Revised", Body: "On reflection, mixed experience."}

	t.Run("another student cannot update", func(t *testing.T) {
		_, err := service.Update(ctx, created.ID, 77, upd)
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("another student cannot delete", func(t *testing.T) {
		err := service.Delete(ctx, created.ID, 77)
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("author updates and deletes", func(t *testing.T) {
		updated, err := service.Update(ctx, created.ID, 42, upd)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Rating)

		require.NoError(t, service.Delete(ctx, created.ID, 42))
		_, err = service.Get(ctx, created.ID)
		assert.True(t, IsNotFoundError(err))
	})
}
