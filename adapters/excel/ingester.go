package excel

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"safetyhub/domain/core"
	"safetyhub/internal"
	"safetyhub/ports"
)

// DefaultCollectionsFile lists the sheet names of the last import.
const DefaultCollectionsFile = "collections.json"

// Ingester imports spreadsheet sheets into a document store, one collection per sheet.
type Ingester struct {
	store           ports.DocumentStore
	mapping         *Mapping
	collectionsFile string
	logger          *internal.Logger
}

var _ ports.Ingester = (*Ingester)(nil)

// NewIngester creates an ingester. A nil mapping uses DefaultMapping and an
// empty collectionsFile skips writing the sheet list.
func NewIngester(store ports.DocumentStore, mapping *Mapping, collectionsFile string) *Ingester {
	if mapping == nil {
		mapping = DefaultMapping()
	}
	return &Ingester{
		store:           store,
		mapping:         mapping,
		collectionsFile: collectionsFile,
		logger:          internal.DefaultLogger.With("ingest"),
	}
}

// IngestFile reads every sheet of path and replaces the mapped collection with
// its records. Sheets mapping to the same collection are appended after the
// first clears it. A failing sheet is recorded in the result and does not stop
// the remaining sheets.
func (i *Ingester) IngestFile(ctx context.Context, path string) (*ports.IngestResult, error) {
	reader, err := NewDataReader(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewDataError("ingest", "open", err)
	}
	sheets, err := reader.ReadSheets()
	if err != nil {
		return nil, err
	}

	result := &ports.IngestResult{
		File:     filepath.Base(path),
		Checksum: core.NewFileChecksum(content).String(),
	}
	names := make([]string, 0, len(sheets))
	seen := make(map[string]bool)
	for _, sheet := range sheets {
		names = append(names, sheet.Name)
		collection := i.mapping.CollectionFor(sheet.Name)
		entry := ports.SheetIngestion{Sheet: sheet.Name, Collection: collection}

		if !seen[collection] {
			if _, err := i.store.Clear(ctx, collection); err != nil {
				i.logger.Error("Failed to clear %s for sheet %q: %v", collection, sheet.Name, err)
				entry.Error = err.Error()
				result.Sheets = append(result.Sheets, entry)
				continue
			}
			seen[collection] = true
			result.Collections = append(result.Collections, collection)
		}
		n, err := i.store.Add(ctx, collection, sheet.Table)
		entry.Records = n
		if err != nil {
			i.logger.Error("Failed to import sheet %q into %s: %v", sheet.Name, collection, err)
			entry.Error = err.Error()
		} else {
			i.logger.Info("Imported sheet %q into %s (%d records)", sheet.Name, collection, n)
		}
		result.Sheets = append(result.Sheets, entry)
	}

	if i.collectionsFile != "" {
		data, err := json.MarshalIndent(names, "", "  ")
		if err != nil {
			return result, core.NewFormatError(i.collectionsFile, err)
		}
		if err := internal.WriteFileAtomic(i.collectionsFile, data); err != nil {
			return result, core.NewExternalServiceError("collections file", err)
		}
	}
	return result, nil
}
