// Package docstore implements ports.DocumentStore over a SQL documents table,
// using PostgreSQL (lib/pq) in production and SQLite (modernc.org/sqlite) for
// local runs and tests.
package docstore

import (
	"context"
	"fmt"
	"time"

	"safetyhub/domain/core"
	"safetyhub/domain/table"
	"safetyhub/internal"
	"safetyhub/internal/migration"
	"safetyhub/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// BatchSize is the number of records written per transaction.
const BatchSize = 500

const serviceName = "document store"

const upsertDocument = `
	INSERT INTO documents (collection, id, position, body, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (collection, id) DO UPDATE SET
		position = excluded.position,
		body = excluded.body,
		updated_at = excluded.updated_at`

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// PartialWriteError reports a write that failed after some batches committed.
type PartialWriteError struct {
	Collection string
	Committed  int
	Err        error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("write to %q stopped after %d committed records: %v", e.Collection, e.Committed, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// Store is a SQL-backed document store.
type Store struct {
	db        *sqlx.DB
	logger    *internal.Logger
	batchSize int
}

var _ ports.DocumentStore = (*Store)(nil)

// Open connects to the database, applies migrations and returns a store.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, core.NewConfigurationError("store_driver", fmt.Sprintf("unsupported driver %q", driver))
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, core.NewExternalServiceError(serviceName, err)
	}
	if driver == DriverSQLite {
		// One connection keeps ":memory:" databases shared and serializes writers.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 10000"); err != nil {
			db.Close()
			return nil, core.NewExternalServiceError(serviceName, err)
		}
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, core.NewExternalServiceError(serviceName, err)
	}
	return New(db), nil
}

// New wraps an already migrated database handle.
func New(db *sqlx.DB) *Store {
	return &Store{
		db:        db,
		logger:    internal.DefaultLogger.With("docstore"),
		batchSize: BatchSize,
	}
}

// DB exposes the underlying handle.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// BulkUpsert writes records under ids record_<i>.
func (s *Store) BulkUpsert(ctx context.Context, collection string, records *table.Table) (int, error) {
	return s.write(ctx, collection, records, 0, func(i int) core.DocumentID {
		return core.SequentialDocumentID(i)
	})
}

// Add appends records under generated ids.
func (s *Store) Add(ctx context.Context, collection string, records *table.Table) (int, error) {
	var next int64
	err := s.db.GetContext(ctx, &next, s.db.Rebind(
		`SELECT COALESCE(MAX(position) + 1, 0) FROM documents WHERE collection = ?`), collection)
	if err != nil {
		return 0, core.NewExternalServiceError(serviceName, err)
	}
	return s.write(ctx, collection, records, next, func(int) core.DocumentID {
		return core.NewDocumentID()
	})
}

func (s *Store) write(ctx context.Context, collection string, records *table.Table, base int64, idFor func(int) core.DocumentID) (int, error) {
	if records.IsEmpty() {
		return 0, nil
	}
	query := s.db.Rebind(upsertDocument)
	n := records.NumRows()
	committed := 0
	for start := 0; start < n; start += s.batchSize {
		end := min(start+s.batchSize, n)
		if err := s.writeBatch(ctx, query, collection, records, start, end, base, idFor); err != nil {
			s.logger.Error("Write to %s failed after %d records: %v", collection, committed, err)
			return committed, &PartialWriteError{
				Collection: collection,
				Committed:  committed,
				Err:        core.NewExternalServiceError(serviceName, err),
			}
		}
		committed = end
		s.logger.Debug("Committed %d/%d records to %s", committed, n, collection)
	}
	s.logger.Info("Wrote %d records to %s", committed, collection)
	return committed, nil
}

func (s *Store) writeBatch(ctx context.Context, query, collection string, records *table.Table, start, end int, base int64, idFor func(int) core.DocumentID) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := start; i < end; i++ {
		body, err := records.EncodeRecord(i)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, query, collection, idFor(i).String(), base+int64(i), string(body), now); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return tx.Commit()
}

type documentRow struct {
	ID   string `db:"id"`
	Body string `db:"body"`
}

// Stream reads a collection in position order, tagging each record with its id.
func (s *Store) Stream(ctx context.Context, collection string) (*table.Table, error) {
	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(
		`SELECT id, body FROM documents WHERE collection = ? ORDER BY position, id`), collection)
	if err != nil {
		return nil, core.NewExternalServiceError(serviceName, err)
	}
	defer rows.Close()

	b := table.NewBuilder()
	for rows.Next() {
		var doc documentRow
		if err := rows.StructScan(&doc); err != nil {
			return nil, core.NewExternalServiceError(serviceName, err)
		}
		keys, values, err := table.DecodeRecord([]byte(doc.Body))
		if err != nil {
			return nil, core.NewFormatError(fmt.Sprintf("document %s/%s", collection, doc.ID), err)
		}
		keys, values = withID(keys, values, doc.ID)
		b.Add(keys, values)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewExternalServiceError(serviceName, err)
	}
	return b.Table(), nil
}

// withID sets the "id" field to the document id, appending it when absent.
func withID(keys []string, values []table.Value, id string) ([]string, []table.Value) {
	for i, k := range keys {
		if k == "id" {
			values[i] = table.NewStringValue(id)
			return keys, values
		}
	}
	return append(keys, "id"), append(values, table.NewStringValue(id))
}

// Clear deletes every document in collection.
func (s *Store) Clear(ctx context.Context, collection string) (int, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM documents WHERE collection = ?`), collection)
	if err != nil {
		return 0, core.NewExternalServiceError(serviceName, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, core.NewExternalServiceError(serviceName, err)
	}
	s.logger.Info("Cleared %d documents from %s", n, collection)
	return int(n), nil
}

// Collections lists collection names in alphabetical order.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, `SELECT DISTINCT collection FROM documents ORDER BY collection`); err != nil {
		return nil, core.NewExternalServiceError(serviceName, err)
	}
	return names, nil
}
