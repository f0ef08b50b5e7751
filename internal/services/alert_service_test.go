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

type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts map[int64]*models.EmailAlert
	nextID int64
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: make(map[int64]*models.EmailAlert)}
}

func (f *fakeAlertRepo) Create(_ context.Context, alert *models.EmailAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	alert.ID = f.nextID
	alert.CreatedAt = time.Now()
	alert.UpdatedAt = alert.CreatedAt
	cp := *alert
	f.alerts[alert.ID] = &cp
	return nil
}

func (f *fakeAlertRepo) GetByID(_ context.Context, id int64) (*models.EmailAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	alert, ok := f.alerts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *alert
	return &cp, nil
}

func (f *fakeAlertRepo) ListByStudent(_ context.Context, studentID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.EmailAlert], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []*models.EmailAlert{}
	for _, alert := range f.alerts {
		if alert.StudentID == studentID {
			cp := *alert
			matched = append(matched, &cp)
		}
	}
	return paginate(matched, params), nil
}

func (f *fakeAlertRepo) Update(_ context.Context, alert *models.EmailAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.alerts[alert.ID]
	if !ok || existing.StudentID != alert.StudentID {
		return repositories.ErrNotFound
	}
	alert.CreatedAt = existing.CreatedAt
	alert.UpdatedAt = time.Now()
	cp := *alert
	f.alerts[alert.ID] = &cp
	return nil
}

func (f *fakeAlertRepo) Delete(_ context.Context, id, studentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.alerts[id]
	if !ok || existing.StudentID != studentID {
		return repositories.ErrNotFound
	}
	delete(f.alerts, id)
	return nil
}

func alertRequest() *CreateEmailAlertRequest {
	return &CreateEmailAlertRequest{
		Keywords:  models.StringArray{"backend, golang"},
		Frequency: "weekly",
	}
}

func TestAlertService_Create(t *testing.T) {
	ctx := context.Background()
	service := NewAlertService(newFakeAlertRepo(), zap.NewNop())

	t.Run("normalizes keywords and defaults to active", func(t *testing.T) {
		alert, err := service.Create(ctx, 42, alertRequest())
		require.NoError(t, err)
		assert.Equal(t, models.StringArray{"backend", "golang"}, alert.Keywords)
		assert.True(t, alert.IsActive)
		assert.Equal(t, int64(42), alert.StudentID)
	})

	t.Run("rejects an unknown frequency", func(t *testing.T) {
		req := alertRequest()
		req.Frequency = "hourly"
		_, err := service.Create(ctx, 42, req)
		assert.True(t, IsValidationError(err))
	})
}

func TestAlertService_OwnershipScoping(t *testing.T) {
	ctx := context.Background()
	service := NewAlertService(newFakeAlertRepo(), zap.NewNop())

	created, err := service.Create(ctx, 42, alertRequest())
	require.NoError(t, err)

	t.Run("owner reads the alert", func(t *testing.T) {
		alert, err := service.Get(ctx, created.ID, 42)
		require.NoError(t, err)
		assert.Equal(t, created.ID, alert.ID)
	})

	t.Run("another student sees not found", func(t *testing.T) {
		_, err := service.Get(ctx, created.ID, 77)
		assert.True(t, IsNotFoundError(err))

		_, err = service.Update(ctx, created.ID, 77, alertRequest())
		assert.True(t, IsNotFoundError(err))

		err = service.Delete(ctx, created.ID, 77)
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("owner pauses the alert", func(t *testing.T) {
		req := alertRequest()
		paused := false
		req.IsActive = &paused

		alert, err := service.Update(ctx, created.ID, 42, req)
		require.NoError(t, err)
		assert.False(t, alert.IsActive)
	})
}
