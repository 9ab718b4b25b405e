package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store over Go maps guarded by a
// sync.RWMutex, for tests that exercise persistence semantics without a
// live Mongo instance.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

// Collection returns the named in-memory collection, creating it on first
// use.
func (s *MemoryStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{docs: make([]map[string]interface{}, 0)}
		s.collections[name] = c
	}
	return c
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

type memoryCollection struct {
	mu      sync.RWMutex
	docs    []map[string]interface{}
	indexes []IndexSpec
}

func (c *memoryCollection) FindOne(ctx context.Context, filter map[string]interface{}) (map[string]interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, doc := range c.docs {
		if matches(doc, filter) {
			return cloneDoc(doc), nil
		}
	}
	return nil, ErrNotFound
}

func (c *memoryCollection) Find(ctx context.Context, filter map[string]interface{}, sortField string, descending bool, limit int) ([]map[string]interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []map[string]interface{}
	for _, doc := range c.docs {
		if matches(doc, filter) {
			out = append(out, cloneDoc(doc))
		}
	}

	if sortField != "" {
		sort.SliceStable(out, func(i, j int) bool {
			less := lessValue(out[i][sortField], out[j][sortField])
			if descending {
				return !less
			}
			return less
		})
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, cloneDoc(doc))
	return nil
}

func (c *memoryCollection) UpdateOne(ctx context.Context, filter map[string]interface{}, update Update) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		if matches(doc, filter) {
			c.docs[i] = applyUpdate(doc, update)
			return nil
		}
	}

	if !update.Upsert {
		return ErrNotFound
	}

	doc := map[string]interface{}{}
	for k, v := range filter {
		doc[k] = v
	}
	c.docs = append(c.docs, applyUpdate(doc, update))
	return nil
}

func (c *memoryCollection) BulkWrite(ctx context.Context, ops []BulkOp) error {
	for _, op := range ops {
		if err := c.UpdateOne(ctx, op.Filter, op.Update); err != nil {
			return err
		}
	}
	return nil
}

func (c *memoryCollection) CountDocuments(ctx context.Context, filter map[string]interface{}) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int64
	for _, doc := range c.docs {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

func (c *memoryCollection) CreateIndex(ctx context.Context, spec IndexSpec) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexes = append(c.indexes, spec)
	return nil
}

func matches(doc, filter map[string]interface{}) bool {
	for k, v := range filter {
		if doc[k] != v {
			return false
		}
	}
	return true
}

func applyUpdate(doc map[string]interface{}, update Update) map[string]interface{} {
	out := cloneDoc(doc)
	for k, v := range update.Set {
		out[k] = v
	}
	for k, v := range update.Push {
		existing, _ := out[k].([]interface{})
		out[k] = append(existing, v)
	}
	for _, field := range update.Unset {
		delete(out, field)
	}
	return out
}

func cloneDoc(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func lessValue(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	as, _ := a.(string)
	bs, _ := b.(string)
	return as < bs
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
