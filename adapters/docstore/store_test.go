package docstore

import (
	"context"
	"errors"
	"testing"

	"safetyhub/domain/core"
	"safetyhub/domain/table"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func records(t *testing.T, n int) *table.Table {
	t.Helper()
	rows := make([][]interface{}, n)
	for i := range rows {
		rows[i] = []interface{}{float64(i), "site-" + string(rune('A'+i))}
	}
	tbl, err := table.FromRows([]string{"count", "site"}, rows)
	require.NoError(t, err)
	return tbl
}

func TestBulkUpsertAndStream(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	n, err := s.BulkUpsert(ctx, "Incidents", records(t, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := s.Stream(ctx, "Incidents")
	require.NoError(t, err)
	assert.Equal(t, []string{"count", "site", "id"}, got.ColumnNames())
	ids, _ := got.Column("id")
	assert.Equal(t, "record_0", ids[0].AsString())
	assert.Equal(t, "record_2", ids[2].AsString())
	assert.Equal(t, table.StorageNumeric, got.Kind("count"))

	n, err = s.BulkUpsert(ctx, "Incidents", records(t, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	got, err = s.Stream(ctx, "Incidents")
	require.NoError(t, err)
	assert.Equal(t, 3, got.NumRows(), "same ids are replaced, not duplicated")
}

func TestAddAppendsWithGeneratedIDs(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	_, err := s.BulkUpsert(ctx, "Trainings", records(t, 2))
	require.NoError(t, err)
	n, err := s.Add(ctx, "Trainings", records(t, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Stream(ctx, "Trainings")
	require.NoError(t, err)
	require.Equal(t, 4, got.NumRows())
	ids, _ := got.Column("id")
	assert.Equal(t, "record_1", ids[1].AsString())
	_, err = uuid.Parse(ids[3].AsString())
	assert.NoError(t, err)
}

func TestStreamReplacesStoredIDField(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	tbl, err := table.FromRows([]string{"id", "v"}, [][]interface{}{{"sheet-id", 1.0}})
	require.NoError(t, err)
	_, err = s.BulkUpsert(ctx, "X", tbl)
	require.NoError(t, err)

	got, err := s.Stream(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "v"}, got.ColumnNames())
	assert.Equal(t, "record_0", got.At(0, 0).AsString())
}

func TestClearAndCollections(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	_, err := s.BulkUpsert(ctx, "Inspections", records(t, 4))
	require.NoError(t, err)
	_, err = s.BulkUpsert(ctx, "Audit Results", records(t, 1))
	require.NoError(t, err)

	names, err := s.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Audit Results", "Inspections"}, names)

	n, err := s.Clear(ctx, "Inspections")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	got, err := s.Stream(ctx, "Inspections")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	names, err = s.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Audit Results"}, names)
}

func TestWriteReportsCommittedBatches(t *testing.T) {
	s := openMemory(t)
	s.batchSize = 2
	ctx := context.Background()

	_, err := s.DB().ExecContext(ctx, `
		CREATE TRIGGER reject_record_3 BEFORE INSERT ON documents
		WHEN NEW.id = 'record_3'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	n, err := s.BulkUpsert(ctx, "Incidents", records(t, 5))
	require.Error(t, err)
	assert.Equal(t, 2, n)

	var partial *PartialWriteError
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, 2, partial.Committed)
	assert.True(t, core.IsExternalServiceError(err))

	got, err := s.Stream(ctx, "Incidents")
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumRows(), "the failed batch is rolled back")
}

func TestWriteEmptyTable(t *testing.T) {
	s := openMemory(t)
	n, err := s.Add(context.Background(), "Empty", table.New())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "")
	assert.True(t, core.IsConfigurationError(err))
}
