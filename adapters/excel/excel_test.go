package excel

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"safetyhub/domain/analytics"
	"safetyhub/domain/core"
	"safetyhub/domain/table"
	"safetyhub/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCollectionFor(t *testing.T) {
	m := DefaultMapping()
	tests := []struct {
		sheet string
		want  string
	}{
		{"Incidents", analytics.Incidents},
		{"incident log", analytics.Incidents},
		{"TRAINING & COMPETENCY REGISTER", analytics.Trainings},
		{"Audit Results", analytics.Inspections},
		{"Incident Logs", analytics.Incidents},
		{"TRAININGS Q1", analytics.Trainings},
		{"NEAR MISS LOG", analytics.NearMissReports},
		{"Equipment Checks 2024", analytics.EquipmentLogs},
		{"Q3 Budget (draft)", "Q3_Budget__draft"},
		{"***", "unnamed_sheet"},
	}
	for _, tt := range tests {
		t.Run(tt.sheet, func(t *testing.T) {
			assert.Equal(t, tt.want, m.CollectionFor(tt.sheet))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 100, similarity("INCIDENTS", "INCIDENTS"))
	assert.Equal(t, 96, similarity("INCIDENT LOGS", "INCIDENT LOG"))
	assert.Less(t, similarity("BUDGET", "INCIDENTS"), DefaultFuzzyThreshold)
}

func TestSanitizeColumnName(t *testing.T) {
	assert.Equal(t, "Incident_Date", SanitizeColumnName("Incident Date"))
	assert.Equal(t, "_2023_total", SanitizeColumnName("2023 total"))
	assert.Equal(t, "cost", SanitizeColumnName("  (cost)"))
	assert.Equal(t, "unnamed_column", SanitizeColumnName("%%"))
}

func TestLoadMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
core:
  - collection: Incidents
    patterns: ["Events"]
fuzzy_threshold: 95
`), 0644))

	m, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, analytics.Incidents, m.CollectionFor("events"))
	assert.Equal(t, 95, m.FuzzyThreshold)
	assert.Len(t, m.Extended, len(DefaultMapping().Extended))
	assert.Equal(t, "Trainings", m.CollectionFor("Trainings"), "sanitized name once trainings synonyms are replaced")

	require.NoError(t, os.WriteFile(path, []byte("fuzzy_threshold: 101\n"), 0644))
	_, err = LoadMapping(path)
	assert.True(t, core.IsConfigurationError(err))

	require.NoError(t, os.WriteFile(path, []byte("core: [unclosed\n"), 0644))
	_, err = LoadMapping(path)
	assert.True(t, core.IsFormatError(err))

	_, err = LoadMapping(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, core.IsConfigurationError(err))
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Incident Log"))
	for i, row := range [][]interface{}{
		{"ID", "Incident Date", "Location", "Severity", "Cost", "Reported", "Location"},
		{1, "2024-01-05", "Plant A", "High", 1200, true, "North"},
		{2, "2024-02-11", "Plant B", "", 300.5, false, "South"},
		{},
	} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Incident Log", cell, &row))
	}

	_, err := f.NewSheet("NEAR MISS LOG")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("NEAR MISS LOG", "A1", &[]interface{}{"Location", "", "Notes"}))
	require.NoError(t, f.SetSheetRow("NEAR MISS LOG", "A2", &[]interface{}{"Plant A", 3, "slip"}))

	path := filepath.Join(t.TempDir(), "safety.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadSheetsExcel(t *testing.T) {
	r, err := NewDataReader(writeWorkbook(t))
	require.NoError(t, err)
	sheets, err := r.ReadSheets()
	require.NoError(t, err)
	require.Len(t, sheets, 2)

	incidents := sheets[0]
	assert.Equal(t, "Incident Log", incidents.Name)
	assert.Equal(t, []string{"Incident_Date", "Location", "Severity", "Cost", "Reported", "Location_2"}, incidents.Table.ColumnNames())
	assert.Equal(t, 2, incidents.Table.NumRows(), "blank rows are skipped")
	assert.Equal(t, table.StorageNumeric, incidents.Table.Kind("Cost"))
	assert.Equal(t, table.StorageBoolean, incidents.Table.Kind("Reported"))
	assert.Equal(t, 300.5, incidents.Table.At(1, 3).AsFloat64())
	assert.True(t, incidents.Table.At(1, 2).IsMissing())
	assert.Equal(t, "2024-01-05", incidents.Table.At(0, 0).AsString())

	nearMiss := sheets[1]
	assert.Equal(t, []string{"Location", "Unnamed__1", "Notes"}, nearMiss.Table.ColumnNames())
	assert.Equal(t, 3.0, nearMiss.Table.At(0, 1).AsFloat64())
}

func TestReadSheetsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trainings.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,Employee,Hours,Completion Status\n7,Ana,4,Completed\n8,Ben,,In Progress\n"), 0644))

	r, err := NewDataReader(path)
	require.NoError(t, err)
	sheets, err := r.ReadSheets()
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "trainings", sheets[0].Name)
	assert.Equal(t, []string{"Employee", "Hours", "Completion_Status"}, sheets[0].Table.ColumnNames())
	assert.True(t, sheets[0].Table.At(1, 1).IsMissing())
}

func TestNewDataReaderRejectsUnknownFormats(t *testing.T) {
	_, err := NewDataReader("legacy.xls")
	assert.True(t, core.IsConfigurationError(err))
}

func TestIngestFile(t *testing.T) {
	ctx := context.Background()
	store := new(testkit.MockDocumentStore)
	store.On("Clear", ctx, analytics.Incidents).Return(4, nil)
	store.On("Add", ctx, analytics.Incidents, mock.MatchedBy(func(tbl *table.Table) bool {
		return tbl.NumRows() == 2 && !tbl.HasColumn("ID")
	})).Return(2, nil)
	store.On("Clear", ctx, analytics.NearMissReports).Return(0, nil)
	store.On("Add", ctx, analytics.NearMissReports, mock.Anything).Return(0, errors.New("disk full"))

	listing := filepath.Join(t.TempDir(), DefaultCollectionsFile)
	path := writeWorkbook(t)
	result, err := NewIngester(store, nil, listing).IngestFile(ctx, path)
	require.NoError(t, err)
	store.AssertExpectations(t)

	assert.Equal(t, "safety.xlsx", result.File)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, core.NewFileChecksum(content).String(), result.Checksum)
	require.Len(t, result.Sheets, 2)
	assert.Equal(t, 2, result.Sheets[0].Records)
	assert.Empty(t, result.Sheets[0].Error)
	assert.Equal(t, analytics.NearMissReports, result.Sheets[1].Collection)
	assert.Contains(t, result.Sheets[1].Error, "disk full")
	assert.Equal(t, []string{analytics.Incidents, analytics.NearMissReports}, result.Collections)

	data, err := os.ReadFile(listing)
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal(data, &names))
	assert.Equal(t, []string{"Incident Log", "NEAR MISS LOG"}, names)
}

func TestIngestFileAppendsSheetsSharingACollection(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewMemoryStore()
	_, err := store.Add(ctx, analytics.Incidents, table.FromRecords([]map[string]interface{}{{"stale": true}}))
	require.NoError(t, err)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Incidents"))
	require.NoError(t, f.SetSheetRow("Incidents", "A1", &[]interface{}{"Location"}))
	require.NoError(t, f.SetSheetRow("Incidents", "A2", &[]interface{}{"Plant A"}))
	_, err = f.NewSheet("Incident Log")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Incident Log", "A1", &[]interface{}{"Location"}))
	require.NoError(t, f.SetSheetRow("Incident Log", "A2", &[]interface{}{"Plant B"}))
	path := filepath.Join(t.TempDir(), "two.xlsx")
	require.NoError(t, f.SaveAs(path))
	f.Close()

	_, err = NewIngester(store, nil, "").IngestFile(ctx, path)
	require.NoError(t, err)

	got, err := store.Stream(ctx, analytics.Incidents)
	require.NoError(t, err)
	require.Equal(t, 2, got.NumRows())
	assert.False(t, got.HasColumn("stale"))
}
