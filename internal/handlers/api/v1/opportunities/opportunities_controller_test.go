package opportunities

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

// fakeOpportunityService serves canned catalog responses
type fakeOpportunityService struct {
	opportunities map[int64]*models.Opportunity
	lastFilter    models.OpportunityFilter
	lastParams    models.PaginationParams
}

func (f *fakeOpportunityService) Create(_ context.Context, organizationID int64, _ *services.CreateOpportunityRequest) (*models.Opportunity, error) {
	return &models.Opportunity{ID: 1, OrganizationID: organizationID}, nil
}

func (f *fakeOpportunityService) Get(_ context.Context, id int64) (*models.Opportunity, error) {
	opp, ok := f.opportunities[id]
	if !ok {
		return nil, services.NewNotFoundError("opportunity not found")
	}
	return opp, nil
}

func (f *fakeOpportunityService) Update(_ context.Context, id, organizationID int64, _ *services.UpdateOpportunityRequest) (*models.Opportunity, error) {
	return nil, services.NewNotFoundError("opportunity not found")
}

func (f *fakeOpportunityService) Delete(_ context.Context, id, organizationID int64) error {
	return services.NewNotFoundError("opportunity not found")
}

func (f *fakeOpportunityService) Search(_ context.Context, filter models.OpportunityFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Opportunity], error) {
	f.lastFilter = filter
	f.lastParams = params
	return &models.PaginatedResponse[*models.Opportunity]{
		Data:       []*models.Opportunity{},
		Pagination: models.PaginationMeta{CurrentPage: 1, ItemsPerPage: params.Limit},
	}, nil
}

func (f *fakeOpportunityService) GetFeatured(_ context.Context, limit int) ([]*models.Opportunity, error) {
	return []*models.Opportunity{}, nil
}

func (f *fakeOpportunityService) GetByOrganization(_ context.Context, organizationID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Opportunity], error) {
	return &models.PaginatedResponse[*models.Opportunity]{Data: []*models.Opportunity{}}, nil
}

func (f *fakeOpportunityService) Stats(_ context.Context) (*models.CatalogStats, error) {
	return &models.CatalogStats{TotalActive: 3}, nil
}

func newTestController(fake *fakeOpportunityService) (*Controller, *chi.Mux) {
	builder := response.NewBuilder(&response.Config{APIVersion: "v1"}, zap.NewNop())
	controller := NewController(&services.Collection{Opportunity: fake}, zap.NewNop(), builder)

	router := chi.NewRouter()
	router.Get("/opportunities", controller.Search)
	router.Get("/opportunities/stats", controller.Stats)
	router.Get("/opportunities/{id}", controller.Get)
	return controller, router
}

func TestController_Search(t *testing.T) {
	t.Run("no matches is an empty success", func(t *testing.T) {
		fake := &fakeOpportunityService{}
		_, router := newTestController(fake)

		req := httptest.NewRequest(http.MethodGet, "/opportunities?search=nothing+matches", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
		assert.NotContains(t, body, "error")

		data, ok := body["data"].([]interface{})
		require.True(t, ok)
		assert.Empty(t, data)

		meta, ok := body["meta"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, meta, "pagination")
	})

	t.Run("query parameters map onto the filter", func(t *testing.T) {
		fake := &fakeOpportunityService{}
		_, router := newTestController(fake)

		req := httptest.NewRequest(http.MethodGet,
			"/opportunities?search=backend&type=remote&salary_min=500&page=3&limit=10", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "backend", fake.lastFilter.Search)
		assert.Equal(t, "remote", fake.lastFilter.Type)
		assert.True(t, fake.lastFilter.ActiveOnly)
		require.NotNil(t, fake.lastFilter.SalaryMin)
		assert.Equal(t, 500.0, *fake.lastFilter.SalaryMin)
		assert.Equal(t, 10, fake.lastParams.Limit)
		assert.Equal(t, 20, fake.lastParams.Offset)
	})

	t.Run("anonymous callers get no ownership extension", func(t *testing.T) {
		fake := &fakeOpportunityService{}
		_, router := newTestController(fake)

		req := httptest.NewRequest(http.MethodGet, "/opportunities", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, fake.lastFilter.ActiveOnly)
		assert.Zero(t, fake.lastFilter.IncludeOwnedBy)
	})

	t.Run("a signed-in organization sees its own inactive listings", func(t *testing.T) {
		fake := &fakeOpportunityService{}
		_, router := newTestController(fake)

		req := httptest.NewRequest(http.MethodGet, "/opportunities", nil)
		req = req.WithContext(contextutils.WithPrincipal(req.Context(), 9, models.RoleOrganization))
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, fake.lastFilter.ActiveOnly)
		assert.Equal(t, int64(9), fake.lastFilter.IncludeOwnedBy)
	})

	t.Run("a signed-in student gets no ownership extension", func(t *testing.T) {
		fake := &fakeOpportunityService{}
		_, router := newTestController(fake)

		req := httptest.NewRequest(http.MethodGet, "/opportunities", nil)
		req = req.WithContext(contextutils.WithPrincipal(req.Context(), 4, models.RoleStudent))
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Zero(t, fake.lastFilter.IncludeOwnedBy)
	})
}

func TestController_Get(t *testing.T) {
	fake := &fakeOpportunityService{
		opportunities: map[int64]*models.Opportunity{
			7: {ID: 7, Title: "Backend Engineering Intern"},
		},
	}
	_, router := newTestController(fake)

	t.Run("existing listing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/opportunities/7", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		data, ok := body["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Backend Engineering Intern", data["title"])
	})

	t.Run("unknown listing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/opportunities/999", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		errObj, ok := body["error"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", errObj["type"])
	})

	t.Run("malformed id reads as missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/opportunities/abc", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		errObj, ok := body["error"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", errObj["type"])
	})
}

func TestController_Stats(t *testing.T) {
	fake := &fakeOpportunityService{}
	_, router := newTestController(fake)

	req := httptest.NewRequest(http.MethodGet, "/opportunities/stats", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), data["total_active"])
}
