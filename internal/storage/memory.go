package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is the in-process fallback backend: a mutex-guarded map of
// collections. It is also the test double of choice for the ledger.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]json.RawMessage)}
}

func (s *MemoryStore) ListAll(_ context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col := s.collections[collection]
	docs := make([]Document, 0, len(col))
	for id, data := range col {
		docs = append(docs, Document{ID: id, Data: data})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (s *MemoryStore) GetOne(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: data}, nil
}

func (s *MemoryStore) Upsert(_ context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(collection, id, data)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

// RunBatch applies all operations under one lock. The batch is staged
// first so that a failing operation leaves the store untouched.
func (s *MemoryStore) RunBatch(_ context.Context, ops []BatchOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	type staged struct {
		collection, id string
		data           json.RawMessage
	}
	writes := make([]staged, 0, len(ops))
	// Batches may touch the same document more than once (e.g. two
	// increments of the same product); later ops must see earlier staged
	// values, not the committed ones.
	pending := make(map[string]json.RawMessage)
	key := func(collection, id string) string { return collection + "/" + id }

	current := func(collection, id string) (json.RawMessage, bool) {
		if data, ok := pending[key(collection, id)]; ok {
			return data, true
		}
		data, ok := s.collections[collection][id]
		return data, ok
	}

	for _, op := range ops {
		var data json.RawMessage
		switch op.Kind {
		case OpSet:
			var err error
			data, err = json.Marshal(op.Doc)
			if err != nil {
				return fmt.Errorf("marshal %s/%s: %w", op.Collection, op.ID, err)
			}

		case OpUpdate:
			existing, ok := current(op.Collection, op.ID)
			if !ok {
				return fmt.Errorf("update %s/%s: %w", op.Collection, op.ID, ErrNotFound)
			}
			var doc map[string]any
			if err := json.Unmarshal(existing, &doc); err != nil {
				return fmt.Errorf("decode %s/%s: %w", op.Collection, op.ID, err)
			}
			for k, v := range op.Fields {
				doc[k] = v
			}
			var err error
			data, err = json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshal %s/%s: %w", op.Collection, op.ID, err)
			}

		case OpIncrement:
			doc := map[string]any{}
			if existing, ok := current(op.Collection, op.ID); ok {
				if err := json.Unmarshal(existing, &doc); err != nil {
					return fmt.Errorf("decode %s/%s: %w", op.Collection, op.ID, err)
				}
			}
			base := 0.0
			if v, ok := doc[op.Field]; ok {
				f, ok := v.(float64)
				if !ok {
					return fmt.Errorf("increment %s/%s: field %q is not numeric", op.Collection, op.ID, op.Field)
				}
				base = f
			}
			doc[op.Field] = base + float64(op.Delta)
			var err error
			data, err = json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshal %s/%s: %w", op.Collection, op.ID, err)
			}

		default:
			return fmt.Errorf("unknown batch op kind %d", op.Kind)
		}

		pending[key(op.Collection, op.ID)] = data
		writes = append(writes, staged{op.Collection, op.ID, data})
	}

	for _, w := range writes {
		s.putLocked(w.collection, w.id, w.data)
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) putLocked(collection, id string, data json.RawMessage) {
	col, ok := s.collections[collection]
	if !ok {
		col = make(map[string]json.RawMessage)
		s.collections[collection] = col
	}
	col[id] = data
}
