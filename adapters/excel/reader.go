package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"safetyhub/domain/core"
	"safetyhub/domain/table"
	"safetyhub/internal"

	"github.com/xuri/excelize/v2"
)

var logger = internal.DefaultLogger.With("excel")

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader for .xlsx, .xlsm and .csv files.
func NewDataReader(filePath string) (*DataReader, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".xlsx", ".xlsm":
		return &DataReader{filePath: filePath, fileType: "xlsx"}, nil
	case ".csv":
		return &DataReader{filePath: filePath, fileType: "csv"}, nil
	default:
		return nil, core.NewConfigurationError("file", fmt.Sprintf("unsupported file format %q (want .xlsx, .xlsm or .csv)", ext))
	}
}

// ReadSheets reads every sheet in workbook order. A CSV file is a single
// sheet named after the file.
func (r *DataReader) ReadSheets() ([]Sheet, error) {
	logger.Info("Reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); err != nil {
		return nil, core.NewDataError("read", "open", err)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	default:
		return r.readExcelData()
	}
}

func (r *DataReader) readExcelData() ([]Sheet, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, core.NewDataError("read", "open", err)
	}
	defer f.Close()
	logger.Debug("Workbook opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, core.NewDataError("read", "sheet "+name, err)
		}
		t, err := processRows(rows)
		if err != nil {
			return nil, core.NewDataError("read", "sheet "+name, err)
		}
		logger.Debug("Sheet %q read (%d columns, %d rows)", name, t.NumCols(), t.NumRows())
		sheets = append(sheets, Sheet{Name: name, Table: t})
	}
	return sheets, nil
}

func (r *DataReader) readCSVData() ([]Sheet, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, core.NewDataError("read", "open", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, core.NewDataError("read", "csv", err)
	}
	t, err := processRows(rows)
	if err != nil {
		return nil, core.NewDataError("read", "csv", err)
	}
	name := strings.TrimSuffix(filepath.Base(r.filePath), filepath.Ext(r.filePath))
	return []Sheet{{Name: name, Table: t}}, nil
}

// processRows turns a header row plus data rows into a table. Id columns are
// dropped and the remaining headers sanitized.
func processRows(rows [][]string) (*table.Table, error) {
	if len(rows) == 0 {
		return table.New(), nil
	}

	var keep []int
	var headers []string
	seen := make(map[string]int)
	for j, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", j)
		}
		if strings.EqualFold(h, "id") {
			continue
		}
		name := SanitizeColumnName(h)
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			seen[name] = 1
		}
		keep = append(keep, j)
		headers = append(headers, name)
	}

	data := make([][]interface{}, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		record := make([]interface{}, len(keep))
		for k, j := range keep {
			if j < len(row) {
				record[k] = parseCell(row[j])
			}
		}
		data = append(data, record)
	}
	return table.FromRows(headers, data)
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseCell types spreadsheet text: numbers, TRUE/FALSE, empty as missing,
// anything else as a string.
func parseCell(s string) interface{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToUpper(s) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	return s
}
