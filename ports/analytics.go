package ports

import (
	"context"
	"errors"

	"safetyhub/domain/analytics"
)

// ErrCacheMiss is returned by AnalyticsCache.Load when nothing is cached.
var ErrCacheMiss = errors.New("analytics cache miss")

// AnalyticsCache keeps the latest analytics report.
type AnalyticsCache interface {
	Load(ctx context.Context) (*analytics.Report, error)
	Store(ctx context.Context, report *analytics.Report) error
}

// ReportRenderer renders an analytics report as a document.
type ReportRenderer interface {
	Markdown(report *analytics.Report) []byte
	HTML(report *analytics.Report) []byte
}

// IngestResult summarizes one spreadsheet import.
type IngestResult struct {
	File        string           `json:"file"`
	Checksum    string           `json:"checksum"`
	Sheets      []SheetIngestion `json:"sheets"`
	Collections []string         `json:"collections"`
}

// SheetIngestion records where one sheet was written.
type SheetIngestion struct {
	Sheet      string `json:"sheet"`
	Collection string `json:"collection"`
	Records    int    `json:"records"`
	Error      string `json:"error,omitempty"`
}

// Ingester imports a spreadsheet file into the document store.
type Ingester interface {
	IngestFile(ctx context.Context, path string) (*IngestResult, error)
}
