package resource

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMemoryStore_InsertGetDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Insert(ctx, bson.M{"title": "hello", "createdAt": time.Now()})
	require.NoError(t, err)
	require.False(t, id.IsZero())

	doc, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "hello", doc["title"])
	require.Equal(t, id, doc["_id"])

	require.NoError(t, s.Delete(ctx, id))
	require.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
	_, err = s.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_MergeKeepsUntouchedFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Insert(ctx, bson.M{"bio": "designer", "coverImage": "a.png"})
	require.NoError(t, err)

	updated, err := s.Merge(ctx, id, bson.M{"bio": "senior designer"})
	require.NoError(t, err)
	require.Equal(t, "senior designer", updated["bio"])
	require.Equal(t, "a.png", updated["coverImage"])
}

func TestMemoryStore_ListPagination(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 12; i++ {
		_, err := s.Insert(ctx, bson.M{
			"title":     fmt.Sprintf("post %02d", i),
			"createdAt": base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	docs, total, err := s.List(ctx, Query{SortField: "createdAt", Page: 2, Limit: 5})
	require.NoError(t, err)
	require.Equal(t, int64(12), total)
	require.Len(t, docs, 5)
	// newest-first: page 2 starts at the 6th newest record
	require.Equal(t, "post 06", docs[0]["title"])

	docs, total, err = s.List(ctx, Query{SortField: "createdAt", Page: 3, Limit: 5})
	require.NoError(t, err)
	require.Equal(t, int64(12), total)
	require.Len(t, docs, 2)
}

func TestMemoryStore_ListKeywordAndTags(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Insert(ctx, bson.M{"title": "Health Insurance Myths", "details": "debunked", "tags": []string{"health", "tips"}})
	require.NoError(t, err)
	_, err = s.Insert(ctx, bson.M{"title": "Vehicle cover", "details": "roads and healthcare", "tags": []string{"vehicle"}})
	require.NoError(t, err)

	// case-insensitive substring over either field
	docs, _, err := s.List(ctx, Query{Keyword: "HEALTH", KeywordFields: []string{"title", "details"}})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	docs, _, err = s.List(ctx, Query{Tags: []string{"tips", "nope"}, TagField: "tags"})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	docs, _, err = s.List(ctx, Query{Keyword: "zzz", KeywordFields: []string{"title", "details"}})
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestMemoryStore_IncrementConcurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Insert(ctx, bson.M{"title": "popular", "views": int64(0)})
	require.NoError(t, err)

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := s.Increment(ctx, id, "views", 1); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	doc, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(n), toInt64(doc["views"]))
}

func TestMemoryStore_Upsert(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.Upsert(ctx, bson.M{"uid": "u1"}, bson.M{"email": "a@b.c", "name": "A"})
	require.NoError(t, err)

	second, err := s.Upsert(ctx, bson.M{"uid": "u1"}, bson.M{"email": "a@b.c", "name": "A2"})
	require.NoError(t, err)
	require.Equal(t, first["_id"], second["_id"])
	require.Equal(t, "A2", second["name"])

	docs, total, err := s.List(ctx, Query{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, docs, 1)
}
