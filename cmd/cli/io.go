package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"safetyhub/adapters/excel"
	"safetyhub/domain/table"
	"safetyhub/internal"
)

// readTable loads records from a JSON array, a CSV file or one sheet of a
// workbook. An empty sheet name selects the first sheet.
func readTable(path, sheet string) (*table.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		t := table.New()
		if err := json.Unmarshal(data, t); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return t, nil
	}

	reader, err := excel.NewDataReader(path)
	if err != nil {
		return nil, err
	}
	sheets, err := reader.ReadSheets()
	if err != nil {
		return nil, err
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", path)
	}
	if sheet == "" {
		return sheets[0].Table, nil
	}
	for _, s := range sheets {
		if s.Name == sheet {
			return s.Table, nil
		}
	}
	return nil, fmt.Errorf("sheet %q not found in %s", sheet, path)
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if path != "" {
		return internal.WriteFileAtomic(path, append(data, '\n'))
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
