package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store. Documents are kept as JSON so reads and
// writes go through the same encoding as the Postgres backend.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string][]byte)}
}

type jsonDocument struct {
	id  string
	raw []byte
}

// NewJSONDocument wraps a JSON encoded record. Backends that store JSON
// return these from Get and Query.
func NewJSONDocument(id string, raw []byte) Document {
	return jsonDocument{id: id, raw: raw}
}

func (d jsonDocument) ID() string { return d.id }

func (d jsonDocument) DataTo(dst any) error {
	return json.Unmarshal(d.raw, dst)
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return NewJSONDocument(id, raw), nil
}

func (m *Memory) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	want := make(map[string]any, len(filters))
	for _, f := range filters {
		v, err := normalize(f.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode filter %q: %w", f.Field, err)
		}
		want[f.Field] = v
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []Document
	for id, raw := range m.collections[collection] {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode document %s/%s: %w", collection, id, err)
		}
		if matches(fields, want) {
			docs = append(docs, NewJSONDocument(id, raw))
		}
	}
	return docs, nil
}

func (m *Memory) Set(ctx context.Context, collection, id string, fields any, merge bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !merge {
		raw, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}
		m.put(collection, id, raw)
		return nil
	}

	patch, ok := fields.(map[string]any)
	if !ok {
		return fmt.Errorf("merge set on %s/%s requires a map, got %T", collection, id, fields)
	}
	return m.merge(collection, id, patch)
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[collection][id]; !ok {
		return ErrDocumentNotFound
	}
	return m.merge(collection, id, fields)
}

func (m *Memory) UpdateWhere(ctx context.Context, collection, id string, check func(Document) error, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.collections[collection][id]
	if !ok {
		return ErrDocumentNotFound
	}
	if err := check(NewJSONDocument(id, raw)); err != nil {
		return err
	}
	return m.merge(collection, id, fields)
}

func (m *Memory) Add(ctx context.Context, collection string, fields any) (string, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, raw)
	return id, nil
}

// merge must be called with m.mu held.
func (m *Memory) merge(collection, id string, patch map[string]any) error {
	current := map[string]any{}
	if raw, ok := m.collections[collection][id]; ok {
		if err := json.Unmarshal(raw, &current); err != nil {
			return fmt.Errorf("failed to decode document %s/%s: %w", collection, id, err)
		}
	}
	for k, v := range patch {
		current[k] = v
	}
	raw, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	m.put(collection, id, raw)
	return nil
}

func (m *Memory) put(collection, id string, raw []byte) {
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string][]byte)
	}
	m.collections[collection][id] = raw
}

// normalize converts v to the shape it takes after a JSON round trip so it
// can be compared with decoded documents.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matches(fields, want map[string]any) bool {
	for k, v := range want {
		got, ok := fields[k]
		if !ok || !reflect.DeepEqual(got, v) {
			return false
		}
	}
	return true
}
