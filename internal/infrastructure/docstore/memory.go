package docstore

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process driver used by tests and local development.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// NewMemory creates an empty in-memory driver.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string][]byte)}
}

func (m *Memory) FindOne(ctx context.Context, collection string, filter Filter) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := keyedID(filter); ok {
		doc, exists := m.collections[collection][id]
		if !exists || !matches(doc, bodyFilter(filter)) {
			return nil, ErrNoDocument
		}
		return clone(doc), nil
	}
	for _, id := range m.sortedIDs(collection) {
		doc := m.collections[collection][id]
		if matches(doc, filter) {
			return clone(doc), nil
		}
	}
	return nil, ErrNoDocument
}

func (m *Memory) Find(ctx context.Context, collection string, filter Filter) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var docs [][]byte
	for _, id := range m.sortedIDs(collection) {
		doc := m.collections[collection][id]
		if matches(doc, filter) {
			docs = append(docs, clone(doc))
		}
	}
	return docs, nil
}

func (m *Memory) Insert(ctx context.Context, collection, id string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.collections[collection]
	if !ok {
		bucket = make(map[string][]byte)
		m.collections[collection] = bucket
	}
	if _, exists := bucket[id]; exists {
		return ErrDuplicate
	}
	bucket[id] = clone(doc)
	return nil
}

func (m *Memory) Replace(ctx context.Context, collection string, filter Filter, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := keyedID(filter); ok {
		existing, exists := m.collections[collection][id]
		if !exists || !matches(existing, bodyFilter(filter)) {
			return ErrNoDocument
		}
		m.collections[collection][id] = clone(doc)
		return nil
	}
	for _, id := range m.sortedIDs(collection) {
		existing := m.collections[collection][id]
		if matches(existing, filter) {
			m.collections[collection][id] = clone(doc)
			return nil
		}
	}
	return ErrNoDocument
}

func (m *Memory) Delete(ctx context.Context, collection string, filter Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := keyedID(filter); ok {
		existing, exists := m.collections[collection][id]
		if !exists || !matches(existing, bodyFilter(filter)) {
			return ErrNoDocument
		}
		delete(m.collections[collection], id)
		return nil
	}
	deleted := false
	for _, id := range m.sortedIDs(collection) {
		if matches(m.collections[collection][id], filter) {
			delete(m.collections[collection], id)
			deleted = true
		}
	}
	if !deleted {
		return ErrNoDocument
	}
	return nil
}

// sortedIDs keeps scan order deterministic. Callers must hold the lock.
func (m *Memory) sortedIDs(collection string) []string {
	bucket := m.collections[collection]
	ids := make([]string, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func clone(doc []byte) []byte {
	return append([]byte(nil), doc...)
}
