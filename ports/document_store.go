package ports

import (
	"context"

	"safetyhub/domain/table"
)

// DocumentStore persists records grouped into named collections.
type DocumentStore interface {
	// BulkUpsert writes records with positional ids record_0, record_1, ...
	// replacing any documents with the same ids. It returns the number committed.
	BulkUpsert(ctx context.Context, collection string, records *table.Table) (int, error)
	// Add appends records under fresh ids after the collection's existing documents.
	Add(ctx context.Context, collection string, records *table.Table) (int, error)
	// Stream reads a collection in write order. Each record carries its
	// document id in an "id" column. An unknown collection is an empty table.
	Stream(ctx context.Context, collection string) (*table.Table, error)
	// Clear deletes every document in a collection and returns how many were removed.
	Clear(ctx context.Context, collection string) (int, error)
	// Collections lists the names of non-empty collections.
	Collections(ctx context.Context) ([]string, error)
}
