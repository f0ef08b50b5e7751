package applications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"internhub/internal/contextutils"
	"internhub/internal/models"
	"internhub/internal/response"
	"internhub/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeApplicationService replays scripted outcomes for each operation
type fakeApplicationService struct {
	applyErr        error
	lastStudentID   int64
	lastOppID       int64
	lastMineStudent int64
}

func (f *fakeApplicationService) Apply(_ context.Context, studentID, opportunityID int64, req *services.ApplyRequest) (*models.Application, error) {
	f.lastStudentID = studentID
	f.lastOppID = opportunityID
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	return &models.Application{
		ID:            100,
		OpportunityID: opportunityID,
		StudentID:     studentID,
		CoverLetter:   req.CoverLetter,
		Status:        models.StatusPending,
	}, nil
}

func (f *fakeApplicationService) Get(_ context.Context, id, principalID int64, role string) (*models.Application, error) {
	return nil, services.NewNotFoundError("application not found")
}

func (f *fakeApplicationService) GetMine(_ context.Context, studentID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	f.lastMineStudent = studentID
	return &models.PaginatedResponse[*models.Application]{Data: []*models.Application{}}, nil
}

func (f *fakeApplicationService) GetForOpportunity(_ context.Context, opportunityID, organizationID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	return &models.PaginatedResponse[*models.Application]{Data: []*models.Application{}}, nil
}

func (f *fakeApplicationService) UpdateStatus(_ context.Context, applicationID, organizationID int64, req *services.UpdateApplicationStatusRequest) (*models.Application, error) {
	return &models.Application{ID: applicationID, Status: req.Status}, nil
}

func newTestRouter(fake *fakeApplicationService, principalID int64, role string) *chi.Mux {
	builder := response.NewBuilder(&response.Config{APIVersion: "v1"}, zap.NewNop())
	controller := NewController(&services.Collection{Application: fake}, zap.NewNop(), builder)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(contextutils.WithPrincipal(r.Context(), principalID, role)))
		})
	})
	// my-applications registers before /{id}/apply, mirroring the live route order
	router.Get("/opportunities/my-applications", controller.Mine)
	router.Post("/opportunities/{id}/apply", controller.Apply)
	router.Put("/applications/{id}/status", controller.UpdateStatus)
	return router
}

const applyBody = `{"cover_letter":"I am very excited to apply for this internship position."}`

func TestController_Apply(t *testing.T) {
	t.Run("successful submission", func(t *testing.T) {
		fake := &fakeApplicationService{}
		router := newTestRouter(fake, 42, models.RoleStudent)

		req := httptest.NewRequest(http.MethodPost, "/opportunities/7/apply", strings.NewReader(applyBody))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, int64(42), fake.lastStudentID)
		assert.Equal(t, int64(7), fake.lastOppID)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		data, ok := body["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "pending", data["status"])
	})

	t.Run("domain conflicts come back as coded 400s", func(t *testing.T) {
		for _, code := range []string{"ALREADY_APPLIED", "CAPACITY_REACHED", "DEADLINE_PASSED", "RESUME_REQUIRED"} {
			fake := &fakeApplicationService{applyErr: services.NewConflictError("refused", code)}
			router := newTestRouter(fake, 42, models.RoleStudent)

			req := httptest.NewRequest(http.MethodPost, "/opportunities/7/apply", strings.NewReader(applyBody))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code, code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			errObj, ok := body["error"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, "CONFLICT", errObj["type"])
			assert.Equal(t, code, errObj["code"])
		}
	})

	t.Run("unknown body fields are rejected", func(t *testing.T) {
		fake := &fakeApplicationService{}
		router := newTestRouter(fake, 42, models.RoleStudent)

		req := httptest.NewRequest(http.MethodPost, "/opportunities/7/apply",
			strings.NewReader(`{"cover_letter":"A perfectly valid cover letter text.","surprise":true}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestController_Mine(t *testing.T) {
	fake := &fakeApplicationService{}
	router := newTestRouter(fake, 42, models.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/opportunities/my-applications", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(42), fake.lastMineStudent)
}

func TestController_UpdateStatus(t *testing.T) {
	fake := &fakeApplicationService{}
	router := newTestRouter(fake, 9, models.RoleOrganization)

	req := httptest.NewRequest(http.MethodPut, "/applications/100/status",
		strings.NewReader(`{"status":"shortlisted"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "shortlisted", data["status"])
}
