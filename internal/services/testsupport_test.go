package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"internhub/internal/models"
	"internhub/internal/repositories"
)

// fakeStore is an in-memory stand-in for the database, shared by the fake
// repositories so cross-table operations stay consistent under one lock.
type fakeStore struct {
	mu            sync.Mutex
	students      map[int64]*models.Student
	organizations map[int64]*models.Organization
	opportunities map[int64]*models.Opportunity
	applications  map[int64]*models.Application
	nextID        int64

	featuredLoads int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		students:      make(map[int64]*models.Student),
		organizations: make(map[int64]*models.Organization),
		opportunities: make(map[int64]*models.Opportunity),
		applications:  make(map[int64]*models.Application),
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) addStudent(student *models.Student) *models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	student.ID = s.id()
	student.IsActive = true
	s.students[student.ID] = student
	return student
}

func (s *fakeStore) addOrganization(org *models.Organization) *models.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	org.ID = s.id()
	org.IsActive = true
	s.organizations[org.ID] = org
	return org
}

func (s *fakeStore) addOpportunity(opp *models.Opportunity) *models.Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()
	opp.ID = s.id()
	s.opportunities[opp.ID] = opp
	return opp
}

func (s *fakeStore) opportunityByID(id int64) (*models.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opp, ok := s.opportunities[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *opp
	return &cp, nil
}

func (s *fakeStore) setOpportunityActive(id int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opportunities[id].IsActive = active
}

func (s *fakeStore) setOpportunityDeadline(id int64, deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opportunities[id].ApplicationDeadline = deadline
}

func (s *fakeStore) setOpportunityCapacity(id int64, maxApplications int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opportunities[id].MaxApplications = maxApplications
}

// ===============================
// STUDENT REPOSITORY
// ===============================

type fakeStudentRepo struct{ store *fakeStore }

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, existing := range f.store.students {
		if existing.Email == student.Email {
			return repositories.ErrDuplicate
		}
	}
	student.ID = f.store.id()
	student.IsActive = true
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	f.store.students[student.ID] = student
	return nil
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id int64) (*models.Student, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	student, ok := f.store.students[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *student
	return &cp, nil
}

func (f *fakeStudentRepo) GetByEmail(_ context.Context, email string) (*models.Student, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, student := range f.store.students {
		if student.Email == email {
			cp := *student
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeStudentRepo) Update(_ context.Context, student *models.Student) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, ok := f.store.students[student.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *student
	f.store.students[student.ID] = &cp
	return nil
}

func (f *fakeStudentRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	student, ok := f.store.students[id]
	if !ok {
		return repositories.ErrNotFound
	}
	student.PasswordHash = passwordHash
	return nil
}

// ===============================
// ORGANIZATION REPOSITORY
// ===============================

type fakeOrganizationRepo struct{ store *fakeStore }

func (f *fakeOrganizationRepo) Create(_ context.Context, org *models.Organization) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, existing := range f.store.organizations {
		if existing.Email == org.Email {
			return repositories.ErrDuplicate
		}
	}
	org.ID = f.store.id()
	org.IsActive = true
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt
	f.store.organizations[org.ID] = org
	return nil
}

func (f *fakeOrganizationRepo) GetByID(_ context.Context, id int64) (*models.Organization, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	org, ok := f.store.organizations[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *org
	return &cp, nil
}

func (f *fakeOrganizationRepo) GetByEmail(_ context.Context, email string) (*models.Organization, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, org := range f.store.organizations {
		if org.Email == email {
			cp := *org
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeOrganizationRepo) Update(_ context.Context, org *models.Organization) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, ok := f.store.organizations[org.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *org
	f.store.organizations[org.ID] = &cp
	return nil
}

func (f *fakeOrganizationRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	org, ok := f.store.organizations[id]
	if !ok {
		return repositories.ErrNotFound
	}
	org.PasswordHash = passwordHash
	return nil
}

// ===============================
// OPPORTUNITY REPOSITORY
// ===============================

type fakeOpportunityRepo struct{ store *fakeStore }

func (f *fakeOpportunityRepo) Create(_ context.Context, opp *models.Opportunity) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	opp.ID = f.store.id()
	opp.CreatedAt = time.Now()
	opp.UpdatedAt = opp.CreatedAt
	cp := *opp
	f.store.opportunities[opp.ID] = &cp
	return nil
}

func (f *fakeOpportunityRepo) GetByID(_ context.Context, id int64) (*models.Opportunity, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	opp, ok := f.store.opportunities[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *opp
	if org, ok := f.store.organizations[opp.OrganizationID]; ok {
		cp.Organization = &models.OrganizationPublic{ID: org.ID, Name: org.Name}
	}
	return &cp, nil
}

func (f *fakeOpportunityRepo) IncrementViews(_ context.Context, id int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	opp, ok := f.store.opportunities[id]
	if !ok {
		return repositories.ErrNotFound
	}
	opp.ViewsCount++
	return nil
}

func (f *fakeOpportunityRepo) Update(_ context.Context, opp *models.Opportunity) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	existing, ok := f.store.opportunities[opp.ID]
	if !ok || existing.OrganizationID != opp.OrganizationID {
		return repositories.ErrNotFound
	}
	opp.CurrentApplications = existing.CurrentApplications
	opp.ViewsCount = existing.ViewsCount
	opp.CreatedAt = existing.CreatedAt
	opp.UpdatedAt = time.Now()
	cp := *opp
	f.store.opportunities[opp.ID] = &cp
	return nil
}

func (f *fakeOpportunityRepo) Delete(_ context.Context, id, organizationID int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	existing, ok := f.store.opportunities[id]
	if !ok || existing.OrganizationID != organizationID {
		return repositories.ErrNotFound
	}
	// Applications outlive the listing; only the listing row goes.
	delete(f.store.opportunities, id)
	return nil
}

func (f *fakeOpportunityRepo) Search(_ context.Context, filter models.OpportunityFilter, params models.PaginationParams) (*models.PaginatedResponse[*models.Opportunity], error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	matched := []*models.Opportunity{}
	for _, opp := range f.store.opportunities {
		if filter.ActiveOnly && !opp.IsActive && opp.OrganizationID != filter.IncludeOwnedBy {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(opp.Title), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Type != "" && opp.Type != filter.Type {
			continue
		}
		cp := *opp
		matched = append(matched, &cp)
	}
	return paginate(matched, params), nil
}

func (f *fakeOpportunityRepo) GetFeatured(_ context.Context, limit int) ([]*models.Opportunity, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.featuredLoads++

	featured := []*models.Opportunity{}
	for _, opp := range f.store.opportunities {
		if opp.IsFeatured && opp.IsActive && len(featured) < limit {
			cp := *opp
			featured = append(featured, &cp)
		}
	}
	return featured, nil
}

func (f *fakeOpportunityRepo) GetByOrganization(_ context.Context, organizationID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Opportunity], error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	matched := []*models.Opportunity{}
	for _, opp := range f.store.opportunities {
		if opp.OrganizationID == organizationID {
			cp := *opp
			matched = append(matched, &cp)
		}
	}
	return paginate(matched, params), nil
}

func (f *fakeOpportunityRepo) Stats(_ context.Context) (*models.CatalogStats, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	stats := &models.CatalogStats{}
	for _, opp := range f.store.opportunities {
		if opp.IsActive {
			stats.TotalActive++
		}
	}
	stats.TotalApplications = int64(len(f.store.applications))
	return stats, nil
}

// ===============================
// APPLICATION REPOSITORY
// ===============================

type fakeApplicationRepo struct{ store *fakeStore }

// CreateWithCapacity mirrors the store's transactional guarantee: the
// capacity check, counter bump and insert happen under one lock.
func (f *fakeApplicationRepo) CreateWithCapacity(_ context.Context, app *models.Application) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	opp, ok := f.store.opportunities[app.OpportunityID]
	if !ok || !opp.IsActive || opp.CurrentApplications >= opp.MaxApplications {
		return repositories.ErrCapacityReached
	}
	for _, existing := range f.store.applications {
		if existing.OpportunityID == app.OpportunityID && existing.StudentID == app.StudentID {
			return repositories.ErrDuplicate
		}
	}

	opp.CurrentApplications++
	app.ID = f.store.id()
	app.Status = models.StatusPending
	app.AppliedAt = time.Now()
	app.UpdatedAt = app.AppliedAt
	cp := *app
	f.store.applications[app.ID] = &cp
	return nil
}

func (f *fakeApplicationRepo) GetByID(_ context.Context, id int64) (*models.Application, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	app, ok := f.store.applications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (f *fakeApplicationRepo) GetByStudent(_ context.Context, studentID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	matched := []*models.Application{}
	for _, app := range f.store.applications {
		if app.StudentID == studentID {
			cp := *app
			matched = append(matched, &cp)
		}
	}
	return paginate(matched, params), nil
}

func (f *fakeApplicationRepo) GetByOpportunity(_ context.Context, opportunityID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Application], error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	matched := []*models.Application{}
	for _, app := range f.store.applications {
		if app.OpportunityID == opportunityID {
			cp := *app
			matched = append(matched, &cp)
		}
	}
	return paginate(matched, params), nil
}

func (f *fakeApplicationRepo) HasApplied(_ context.Context, opportunityID, studentID int64) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, app := range f.store.applications {
		if app.OpportunityID == opportunityID && app.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplicationRepo) UpdateStatus(_ context.Context, upd *repositories.ApplicationStatusUpdate) (*models.Application, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	app, ok := f.store.applications[upd.ApplicationID]
	if !ok || app.OrganizationID != upd.OrganizationID {
		return nil, repositories.ErrNotFound
	}

	app.Status = upd.Status
	if upd.Notes != nil {
		app.Notes = upd.Notes
	}
	if upd.Feedback != nil {
		app.Feedback = upd.Feedback
	}
	if upd.InterviewScheduled != nil {
		app.InterviewScheduled = upd.InterviewScheduled
	}
	if upd.Status != models.StatusPending {
		now := time.Now()
		app.ReviewedAt = &now
	}
	app.UpdatedAt = time.Now()
	cp := *app
	return &cp, nil
}

// ===============================
// CACHE AND NOTIFIER
// ===============================

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) Close() error { return nil }

type fakeNotifier struct {
	mu            sync.Mutex
	received      []*models.Application
	statusChanged []*models.Application
}

func (n *fakeNotifier) ApplicationReceived(app *models.Application, _ *models.Opportunity, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.received = append(n.received, app)
}

func (n *fakeNotifier) ApplicationStatusChanged(app *models.Application) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusChanged = append(n.statusChanged, app)
}

func (n *fakeNotifier) receivedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.received)
}

func (n *fakeNotifier) statusChangedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.statusChanged)
}

func paginate[T any](items []T, params models.PaginationParams) *models.PaginatedResponse[T] {
	total := len(items)
	start := params.Offset
	if start > total {
		start = total
	}
	end := start + params.Limit
	if params.Limit <= 0 || end > total {
		end = total
	}

	limit := params.Limit
	if limit <= 0 {
		limit = total
	}
	return &models.PaginatedResponse[T]{
		Data: items[start:end],
		Pagination: models.PaginationMeta{
			CurrentPage:  params.Offset/max(limit, 1) + 1,
			TotalItems:   int64(total),
			ItemsPerPage: limit,
		},
	}
}
