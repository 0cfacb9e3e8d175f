package testkit

import (
	"context"
	"testing"

	"safetyhub/domain/analytics"
	"safetyhub/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafetyDataGenerator_Deterministic(t *testing.T) {
	config := DefaultSafetyConfig()
	a := NewSafetyDataGenerator(config).Generate()
	b := NewSafetyDataGenerator(config).Generate()

	for _, name := range []string{analytics.Incidents, analytics.Inspections, analytics.Trainings, analytics.NearMissReports} {
		require.Contains(t, a, name)
		assert.Equal(t, a[name].Records(), b[name].Records(), name)
	}
	assert.Equal(t, 40, a[analytics.Inspections].NumRows())
	assert.Equal(t, table.StorageNumeric, a[analytics.Incidents].Kind("cost"))
	assert.GreaterOrEqual(t, a[analytics.Incidents].NumRows(), 12*6)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	data := NewSafetyDataGenerator(DefaultSafetyConfig()).Generate()

	n, err := s.BulkUpsert(ctx, analytics.Inspections, data[analytics.Inspections])
	require.NoError(t, err)
	assert.Equal(t, 40, n)
	_, err = s.BulkUpsert(ctx, analytics.Inspections, data[analytics.Inspections])
	require.NoError(t, err)

	got, err := s.Stream(ctx, analytics.Inspections)
	require.NoError(t, err)
	assert.Equal(t, 40, got.NumRows())
	assert.Equal(t, "record_0", got.At(0, got.NumCols()-1).AsString())

	_, err = s.Add(ctx, analytics.Inspections, data[analytics.Inspections])
	require.NoError(t, err)
	got, err = s.Stream(ctx, analytics.Inspections)
	require.NoError(t, err)
	assert.Equal(t, 80, got.NumRows())

	names, err := s.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{analytics.Inspections}, names)

	n, err = s.Clear(ctx, analytics.Inspections)
	require.NoError(t, err)
	assert.Equal(t, 80, n)
	got, err = s.Stream(ctx, "missing")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}
