// Package testkit provides document store fakes and synthetic safety data for tests.
package testkit

import (
	"context"
	"sort"
	"sync"

	"safetyhub/domain/core"
	"safetyhub/domain/table"
	"safetyhub/ports"

	"github.com/stretchr/testify/mock"
)

// MockDocumentStore is a testify mock of ports.DocumentStore.
type MockDocumentStore struct {
	mock.Mock
}

var _ ports.DocumentStore = (*MockDocumentStore)(nil)

func (m *MockDocumentStore) BulkUpsert(ctx context.Context, collection string, records *table.Table) (int, error) {
	args := m.Called(ctx, collection, records)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentStore) Add(ctx context.Context, collection string, records *table.Table) (int, error) {
	args := m.Called(ctx, collection, records)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentStore) Stream(ctx context.Context, collection string) (*table.Table, error) {
	args := m.Called(ctx, collection)
	t, _ := args.Get(0).(*table.Table)
	return t, args.Error(1)
}

func (m *MockDocumentStore) Clear(ctx context.Context, collection string) (int, error) {
	args := m.Called(ctx, collection)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentStore) Collections(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

type memoryDocument struct {
	id   string
	body []byte
}

// MemoryStore is an in-process ports.DocumentStore.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]memoryDocument
}

var _ ports.DocumentStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]memoryDocument)}
}

func (s *MemoryStore) BulkUpsert(_ context.Context, collection string, records *table.Table) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collections[collection]
	for i := 0; i < records.NumRows(); i++ {
		body, err := records.EncodeRecord(i)
		if err != nil {
			return i, core.NewDataError("bulk upsert", collection, err)
		}
		id := core.SequentialDocumentID(i).String()
		replaced := false
		for k := range docs {
			if docs[k].id == id {
				docs[k].body = body
				replaced = true
				break
			}
		}
		if !replaced {
			docs = append(docs, memoryDocument{id: id, body: body})
		}
	}
	s.collections[collection] = docs
	return records.NumRows(), nil
}

func (s *MemoryStore) Add(_ context.Context, collection string, records *table.Table) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < records.NumRows(); i++ {
		body, err := records.EncodeRecord(i)
		if err != nil {
			return i, core.NewDataError("add", collection, err)
		}
		s.collections[collection] = append(s.collections[collection], memoryDocument{
			id:   core.NewDocumentID().String(),
			body: body,
		})
	}
	return records.NumRows(), nil
}

func (s *MemoryStore) Stream(_ context.Context, collection string) (*table.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := table.NewBuilder()
	for _, doc := range s.collections[collection] {
		keys, values, err := table.DecodeRecord(doc.body)
		if err != nil {
			return nil, core.NewFormatError(collection+"/"+doc.id, err)
		}
		tagged := false
		for i, k := range keys {
			if k == "id" {
				values[i] = table.NewStringValue(doc.id)
				tagged = true
			}
		}
		if !tagged {
			keys = append(keys, "id")
			values = append(values, table.NewStringValue(doc.id))
		}
		b.Add(keys, values)
	}
	return b.Table(), nil
}

func (s *MemoryStore) Clear(_ context.Context, collection string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.collections[collection])
	delete(s.collections, collection)
	return n, nil
}

func (s *MemoryStore) Collections(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for name, docs := range s.collections {
		if len(docs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
