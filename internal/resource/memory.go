package resource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-memory Store used by unit tests. It mirrors the Mongo
// store's semantics, including atomic increments under the store's lock.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[primitive.ObjectID]bson.M
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[primitive.ObjectID]bson.M)}
}

func (s *MemoryStore) List(ctx context.Context, q Query) ([]bson.M, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []bson.M{}
	for _, d := range s.docs {
		if matches(d, q) {
			matched = append(matched, copyDoc(d))
		}
	}
	if q.SortField != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			return less(matched[j][q.SortField], matched[i][q.SortField]) // newest first
		})
	}
	total := int64(len(matched))
	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * q.Limit
		if start > total {
			start = total
		}
		end := start + q.Limit
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (s *MemoryStore) Get(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDoc(d), nil
}

func (s *MemoryStore) Insert(ctx context.Context, doc bson.M) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := primitive.NewObjectID()
	d := copyDoc(doc)
	d["_id"] = id
	s.docs[id] = d
	return id, nil
}

func (s *MemoryStore) Merge(ctx context.Context, id primitive.ObjectID, fields bson.M) (bson.M, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range fields {
		d[k] = v
	}
	return copyDoc(d), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) Increment(ctx context.Context, id primitive.ObjectID, field string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return 0, ErrNotFound
	}
	next := toInt64(d[field]) + delta
	d[field] = next
	return next, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, filter bson.M, fields bson.M) (bson.M, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.docs {
		if equalsAll(d, filter) {
			for k, v := range fields {
				d[k] = v
			}
			return copyDoc(d), nil
		}
	}
	id := primitive.NewObjectID()
	d := bson.M{"_id": id}
	for k, v := range filter {
		d[k] = v
	}
	for k, v := range fields {
		d[k] = v
	}
	s.docs[id] = d
	return copyDoc(d), nil
}

func matches(d bson.M, q Query) bool {
	if !equalsAll(d, bson.M(q.Equals)) {
		return false
	}
	if len(q.Tags) > 0 && q.TagField != "" {
		if !tagsIntersect(d[q.TagField], q.Tags) {
			return false
		}
	}
	if q.Keyword != "" && len(q.KeywordFields) > 0 {
		kw := strings.ToLower(q.Keyword)
		hit := false
		for _, f := range q.KeywordFields {
			if s, ok := d[f].(string); ok && strings.Contains(strings.ToLower(s), kw) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func equalsAll(d bson.M, filter bson.M) bool {
	for k, want := range filter {
		if fmt.Sprint(d[k]) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func tagsIntersect(v interface{}, want []string) bool {
	var have []string
	switch t := v.(type) {
	case []string:
		have = t
	case []interface{}:
		for _, e := range t {
			if s, ok := e.(string); ok {
				have = append(have, s)
			}
		}
	case bson.A:
		for _, e := range t {
			if s, ok := e.(string); ok {
				have = append(have, s)
			}
		}
	}
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

// less orders sort-field values; creation fields are timestamps but string
// dates tolerated for robustness.
func less(a, b interface{}) bool {
	at, aok := asTime(a)
	bt, bok := asTime(b)
	if aok && bok {
		return at.Before(bt)
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func copyDoc(d bson.M) bson.M {
	out := make(bson.M, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
