package docstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps every collection in process memory. It backs unit tests
// and the development fallback when postgres is unreachable. Construct one
// per test case; there is no shared global instance.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Document)}
}

func (s *MemoryStore) FindOne(_ context.Context, collection string, filter Filter) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.collections[collection] {
		if matchDocument(doc, filter) {
			return cloneDocument(doc), nil
		}
	}
	return nil, ErrNoDocument
}

func (s *MemoryStore) FindMany(_ context.Context, collection string, filter Filter, opts *FindOptions) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for _, doc := range s.collections[collection] {
		if filter == nil || matchDocument(doc, filter) {
			out = append(out, cloneDocument(doc))
		}
	}
	if opts != nil && opts.SortField != "" {
		sortDocuments(out, opts.SortField, opts.SortDesc)
	}
	return out, nil
}

func (s *MemoryStore) InsertOne(_ context.Context, collection string, doc Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(collection, doc), nil
}

// InsertUnique holds the write lock across the existence check and the
// insert, so concurrent callers cannot both pass the check.
func (s *MemoryStore) InsertUnique(_ context.Context, collection string, doc Document, field string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.collections[collection] {
		if equalValues(existing[field], doc[field]) {
			return "", ErrConflict
		}
	}
	return s.insertLocked(collection, doc), nil
}

func (s *MemoryStore) insertLocked(collection string, doc Document) string {
	stored := cloneDocument(doc)
	id, ok := stored[IDField].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		stored[IDField] = id
	}
	s.collections[collection] = append(s.collections[collection], stored)
	return id
}

func (s *MemoryStore) UpdateOne(_ context.Context, collection string, filter Filter, set Document) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.collections[collection] {
		if matchDocument(doc, filter) {
			for k, v := range set {
				doc[k] = v
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (s *MemoryStore) DeleteOne(_ context.Context, collection string, filter Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	for i, doc := range docs {
		if matchDocument(doc, filter) {
			s.collections[collection] = append(docs[:i], docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *MemoryStore) Aggregate(_ context.Context, collection string, agg Aggregation) ([]GroupResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return runAggregation(s.collections[collection], agg), nil
}
