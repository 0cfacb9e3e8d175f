package app

import (
	"context"
	"errors"
	"testing"

	"safetyhub/domain/analytics"
	"safetyhub/domain/table"
	"safetyhub/internal"
	"safetyhub/internal/safety"
	"safetyhub/internal/testkit"
	"safetyhub/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAnalyticsCache struct {
	mock.Mock
}

func (m *MockAnalyticsCache) Load(ctx context.Context) (*analytics.Report, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*analytics.Report)
	return report, args.Error(1)
}

func (m *MockAnalyticsCache) Store(ctx context.Context, report *analytics.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func newTestService(store ports.DocumentStore, cache ports.AnalyticsCache) *AnalyticsService {
	engine := safety.NewEngine().WithLogger(internal.NewLogger(internal.LogLevelError))
	s := NewAnalyticsService(store, cache, engine)
	s.logger = internal.NewLogger(internal.LogLevelError)
	return s
}

func TestRunFetchesEveryCollection(t *testing.T) {
	data := testkit.NewSafetyDataGenerator(testkit.DefaultSafetyConfig()).Generate()

	store := new(testkit.MockDocumentStore)
	store.On("Stream", mock.Anything, analytics.Incidents).Return(data[analytics.Incidents], nil)
	store.On("Stream", mock.Anything, analytics.Inspections).Return(data[analytics.Inspections], nil)
	store.On("Stream", mock.Anything, analytics.Trainings).Return(nil, errors.New("timeout"))
	store.On("Stream", mock.Anything, mock.Anything).Return(table.New(), nil)

	cache := new(MockAnalyticsCache)
	cache.On("Store", mock.Anything, mock.AnythingOfType("*analytics.Report")).Return(nil)

	report, err := newTestService(store, cache).Run(context.Background())
	require.NoError(t, err)

	store.AssertNumberOfCalls(t, "Stream", len(analytics.AllCollections()))
	cache.AssertExpectations(t)

	assert.Equal(t, analytics.CoreCollections(), report.CoreCollectionsAnalyzed)
	assert.Equal(t, analytics.ExtendedCollections(), report.ExtendedCollectionsAnalyzed)
	require.NotNil(t, report.PredictiveForecasting)
	require.NotNil(t, report.PredictiveForecasting.RiskFactors.IncidentCount)
	assert.Equal(t, data[analytics.Incidents].NumRows(), *report.PredictiveForecasting.RiskFactors.IncidentCount)
	assert.Nil(t, report.PredictiveForecasting.RiskFactors.TrainingCount, "failed fetch is analyzed as empty")
	require.NotNil(t, report.ComplianceScorecard)
	assert.Equal(t, 40, *report.ComplianceScorecard.TotalInspections)
}

func TestRunReturnsReportWhenCacheWriteFails(t *testing.T) {
	store := testkit.NewMemoryStore()
	cache := new(MockAnalyticsCache)
	cache.On("Store", mock.Anything, mock.Anything).Return(errors.New("read-only filesystem"))

	report, err := newTestService(store, cache).Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
}

func TestDashboardUsesCache(t *testing.T) {
	cached := &analytics.Report{RunID: "cached"}
	store := new(testkit.MockDocumentStore)
	cache := new(MockAnalyticsCache)
	cache.On("Load", mock.Anything).Return(cached, nil)

	report, err := newTestService(store, cache).Dashboard(context.Background())
	require.NoError(t, err)
	assert.Same(t, cached, report)
	store.AssertNotCalled(t, "Stream", mock.Anything, mock.Anything)
}

func TestDashboardRunsOnCacheMiss(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewMemoryStore()
	for name, tbl := range testkit.NewSafetyDataGenerator(testkit.DefaultSafetyConfig()).Generate() {
		_, err := store.BulkUpsert(ctx, name, tbl)
		require.NoError(t, err)
	}
	cache := new(MockAnalyticsCache)
	cache.On("Load", mock.Anything).Return(nil, ports.ErrCacheMiss)
	cache.On("Store", mock.Anything, mock.Anything).Return(nil)

	report, err := newTestService(store, cache).Dashboard(ctx)
	require.NoError(t, err)
	cache.AssertExpectations(t)
	require.NotNil(t, report.RootCauseAnalysis)
	assert.NotEmpty(t, report.RootCauseAnalysis.LocationsWithNearMissesAndIncidents)
}

func TestDashboardPropagatesCacheErrors(t *testing.T) {
	cache := new(MockAnalyticsCache)
	cache.On("Load", mock.Anything).Return(nil, errors.New("permission denied"))

	_, err := newTestService(testkit.NewMemoryStore(), cache).Dashboard(context.Background())
	assert.Error(t, err)
}

func TestLoadDatasetHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestService(testkit.NewMemoryStore(), nil).LoadDataset(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
