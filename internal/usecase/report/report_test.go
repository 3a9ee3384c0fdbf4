package report_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/repository"
	"github.com/ignatzorin/sanmateo-reports/internal/domain/valueobject"
	"github.com/ignatzorin/sanmateo-reports/internal/pkg/apperror"
	"github.com/ignatzorin/sanmateo-reports/internal/usecase/report"
)

type mockReportRepository struct {
	reports  map[string]*entity.Report
	failWith error
}

func newMockReportRepository() *mockReportRepository {
	return &mockReportRepository{reports: make(map[string]*entity.Report)}
}

func (m *mockReportRepository) Create(ctx context.Context, r *entity.Report) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.reports[r.ID]; ok {
		return apperror.ErrDuplicateReportID
	}
	m.reports[r.ID] = r.Clone()
	return nil
}

func (m *mockReportRepository) FindByID(ctx context.Context, id string) (*entity.Report, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if r, ok := m.reports[id]; ok {
		return r.Clone(), nil
	}
	return nil, apperror.ErrReportNotFound
}

func (m *mockReportRepository) FindByIdempotencyKey(ctx context.Context, key string) (*entity.Report, error) {
	for _, r := range m.reports {
		if r.IdempotencyKey == key {
			return r.Clone(), nil
		}
	}
	return nil, apperror.ErrReportNotFound
}

func (m *mockReportRepository) List(ctx context.Context, filter repository.ReportFilter) ([]*entity.Report, int, error) {
	var result []*entity.Report
	for _, r := range m.reports {
		result = append(result, r.Clone())
	}
	return result, len(result), nil
}

func (m *mockReportRepository) Update(ctx context.Context, r *entity.Report) error {
	m.reports[r.ID] = r.Clone()
	return nil
}

func (m *mockReportRepository) Stats(ctx context.Context) (*entity.Stats, error) {
	stats := &entity.Stats{ByCategory: map[valueobject.Category]int{}, ByBarangay: map[string]int{}}
	for _, r := range m.reports {
		stats.Total++
		if r.Status.IsPending() {
			stats.Pending++
		}
		stats.ByCategory[r.Category]++
		stats.ByBarangay[r.Barangay]++
	}
	return stats, nil
}

type sequenceIDs struct {
	ids []string
	i   int
}

func (s *sequenceIDs) Generate() (string, error) {
	id := s.ids[s.i%len(s.ids)]
	s.i++
	return id, nil
}

type recordingCache struct {
	mu          sync.Mutex
	values      map[string]interface{}
	invalidated []string
	computed    int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{values: map[string]interface{}{}}
}

func (c *recordingCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.values[key]; ok {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		return nil, err
	}
	c.computed++
	c.values[key] = v
	return v, nil
}

func (c *recordingCache) InvalidateByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, prefix)
	c.values = map[string]interface{}{}
}

type recordingNotifier struct {
	updated []*entity.Report
}

func (n *recordingNotifier) NotifyReportUpdated(r *entity.Report) {
	n.updated = append(n.updated, r)
}

func completeDraft() entity.Draft {
	return entity.Draft{
		Category:    valueobject.CategoryStreetlights,
		Description: "Streetlight not working for over a week",
		Barangay:    "Malanday",
		Coordinates: &valueobject.Coordinates{Latitude: 14.7012, Longitude: 121.1189},
		Reporter:    entity.Reporter{Name: "Maria S.", Phone: "09171234567"},
	}
}

func TestCreateReport_Execute(t *testing.T) {
	repo := newMockReportRepository()
	cache := newRecordingCache()
	uc := report.NewCreateReportUseCase(repo, &sequenceIDs{ids: []string{"SM-M60GHM9S-AB12"}}, cache)

	r, err := uc.Execute(context.Background(), report.CreateReportInput{Draft: completeDraft(), IdempotencyKey: "key-1"})
	require.NoError(t, err)
	assert.Equal(t, "SM-M60GHM9S-AB12", r.ID)
	assert.Equal(t, valueobject.ReportStatusSubmitted, r.Status)
	assert.Equal(t, "Electrical Division", r.Department)
	assert.Contains(t, repo.reports, r.ID)
	assert.Equal(t, []string{report.DashboardCachePrefix}, cache.invalidated)
}

func TestCreateReport_IdempotentRetry(t *testing.T) {
	repo := newMockReportRepository()
	uc := report.NewCreateReportUseCase(repo, &sequenceIDs{ids: []string{"SM-A-0001", "SM-B-0002"}}, nil)

	first, err := uc.Submit(context.Background(), completeDraft(), "same-key")
	require.NoError(t, err)
	second, err := uc.Submit(context.Background(), completeDraft(), "same-key")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, repo.reports, 1)
}

func TestCreateReport_DuplicateGeneratedID(t *testing.T) {
	repo := newMockReportRepository()
	uc := report.NewCreateReportUseCase(repo, &sequenceIDs{ids: []string{"SM-SAME-0001"}}, nil)

	_, err := uc.Submit(context.Background(), completeDraft(), "k1")
	require.NoError(t, err)
	_, err = uc.Submit(context.Background(), completeDraft(), "k2")
	assert.ErrorIs(t, err, apperror.ErrDuplicateReportID)
}

func TestCreateReport_IncompleteDraft(t *testing.T) {
	uc := report.NewCreateReportUseCase(newMockReportRepository(), &sequenceIDs{ids: []string{"SM-A-0001"}}, nil)
	d := completeDraft()
	d.Coordinates = nil

	_, err := uc.Submit(context.Background(), d, "")
	assert.True(t, apperror.IsValidation(err))
}

func seededRepo(t *testing.T) *mockReportRepository {
	t.Helper()
	repo := newMockReportRepository()
	t1 := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	r, err := entity.NewReport("SM-2K4X-AB12", completeDraft(), "", t1)
	require.NoError(t, err)
	require.NoError(t, r.AppendUpdate(entity.TimelineEntry{Date: t1.Add(time.Hour), Status: valueobject.ReportStatusReviewed}))
	repo.reports[r.ID] = r
	return repo
}

func TestLookupReport_CaseInsensitive(t *testing.T) {
	uc := report.NewLookupReportUseCase(seededRepo(t))

	lower, err := uc.Execute(context.Background(), "sm-2k4x-ab12")
	require.NoError(t, err)
	upper, err := uc.Execute(context.Background(), "SM-2K4X-AB12")
	require.NoError(t, err)

	require.True(t, lower.Found)
	require.True(t, upper.Found)
	assert.Equal(t, upper.Report.Report, lower.Report.Report)
}

func TestLookupReport_NotFoundIsNotAnError(t *testing.T) {
	uc := report.NewLookupReportUseCase(seededRepo(t))

	res, err := uc.Execute(context.Background(), "SM-0000-0000")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.Report)

	res, err = uc.Execute(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestLookupReport_TimelineNewestFirst(t *testing.T) {
	uc := report.NewLookupReportUseCase(seededRepo(t))

	res, err := uc.Execute(context.Background(), "SM-2K4X-AB12")
	require.NoError(t, err)
	require.Len(t, res.Report.Timeline, 2)
	assert.Equal(t, valueobject.ReportStatusReviewed, res.Report.Timeline[0].Status)
	assert.Equal(t, valueobject.ReportStatusSubmitted, res.Report.Report.Timeline[0].Status)
}

func TestLookupReport_RepositoryFailure(t *testing.T) {
	repo := newMockReportRepository()
	repo.failWith = apperror.Wrap(errors.New("connection reset"), apperror.ErrCodeDatabaseError, "db down")
	uc := report.NewLookupReportUseCase(repo)

	_, err := uc.Execute(context.Background(), "SM-2K4X-AB12")
	assert.Error(t, err)
}

func TestUpdateStatus_AppendsAndNotifies(t *testing.T) {
	repo := seededRepo(t)
	notifier := &recordingNotifier{}
	cache := newRecordingCache()
	uc := report.NewUpdateStatusUseCase(repo, notifier, cache)
	team := "Electrical Team B"

	r, err := uc.Execute(context.Background(), report.UpdateStatusInput{
		ReportID:   "sm-2k4x-ab12",
		Status:     "assigned",
		AssignedTo: &team,
		Priority:   "high",
	})
	require.NoError(t, err)
	assert.Equal(t, valueobject.ReportStatusAssigned, r.Status)
	assert.Equal(t, valueobject.PriorityHigh, r.Priority)
	require.NotNil(t, r.AssignedTo)
	assert.Equal(t, team, *r.AssignedTo)
	assert.True(t, r.Consistent())
	assert.Equal(t, "Report assigned to a response team.", r.Timeline[len(r.Timeline)-1].Message)

	stored := repo.reports["SM-2K4X-AB12"]
	assert.Len(t, stored.Timeline, 3)
	require.Len(t, notifier.updated, 1)
	assert.Equal(t, []string{report.DashboardCachePrefix}, cache.invalidated)
}

func TestUpdateStatus_RejectsInvalidTransition(t *testing.T) {
	repo := seededRepo(t)
	notifier := &recordingNotifier{}
	uc := report.NewUpdateStatusUseCase(repo, notifier, nil)

	_, err := uc.Execute(context.Background(), report.UpdateStatusInput{ReportID: "SM-2K4X-AB12", Status: "resolved"})
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	assert.Equal(t, valueobject.ReportStatusReviewed, repo.reports["SM-2K4X-AB12"].Status)
	assert.Empty(t, notifier.updated)

	_, err = uc.Execute(context.Background(), report.UpdateStatusInput{ReportID: "SM-2K4X-AB12", Status: "pending"})
	assert.True(t, apperror.IsValidation(err))
}

func TestListReports_ValidatesFilter(t *testing.T) {
	uc := report.NewListReportsUseCase(seededRepo(t))

	out, err := uc.Execute(context.Background(), report.ListReportsInput{Status: "pending", Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 100, out.Limit)

	_, err = uc.Execute(context.Background(), report.ListReportsInput{Status: "archived"})
	assert.True(t, apperror.IsValidation(err))

	_, err = uc.Execute(context.Background(), report.ListReportsInput{Category: "potholes"})
	assert.True(t, apperror.IsValidation(err))
}

func TestDashboard_AggregatesAndCaches(t *testing.T) {
	repo := seededRepo(t)
	d := completeDraft()
	d.Category = valueobject.CategoryRoads
	d.Barangay = "Guinayang"
	for _, id := range []string{"SM-R-0001", "SM-R-0002", "SM-R-0003"} {
		r, err := entity.NewReport(id, d, "", time.Now())
		require.NoError(t, err)
		repo.reports[id] = r
	}

	cache := newRecordingCache()
	uc := report.NewDashboardUseCase(repo, cache, time.Minute)

	dash, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, dash.Total)
	assert.Equal(t, 4, dash.PendingReview)
	require.Len(t, dash.Categories, 2)
	assert.Equal(t, valueobject.CategoryRoads, dash.Categories[0].Category)
	assert.Equal(t, 75, dash.Categories[0].Percentage)
	assert.Equal(t, 25, dash.Categories[1].Percentage)
	assert.Equal(t, "Guinayang", dash.TopBarangays[0].Name)

	_, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.computed)
}
