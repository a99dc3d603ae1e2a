// Package resource implements the uniform collection access layer shared by
// every resource type: a schemaless document store contract plus a generic
// HTTP handler parameterized per resource.
package resource

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = errors.New("not found")

// Query describes an optional filter for List. Zero values mean "no filter":
// an empty Keyword or Tags applies no text/tag condition, Limit <= 0 disables
// pagination. Results are sorted newest-first by SortField when set.
type Query struct {
	Keyword       string
	KeywordFields []string
	Tags          []string
	TagField      string
	Equals        map[string]interface{}
	SortField     string
	Page          int64
	Limit         int64
}

// Store is the persistence contract every resource handler depends on.
// Records are schemaless documents keyed by a generated ObjectID.
type Store interface {
	// List returns matching documents and the total match count (pre-pagination).
	List(ctx context.Context, q Query) ([]bson.M, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (bson.M, error)
	Insert(ctx context.Context, doc bson.M) (primitive.ObjectID, error)
	// Merge applies $set semantics: only the given fields change. It returns
	// the post-update document or ErrNotFound.
	Merge(ctx context.Context, id primitive.ObjectID, fields bson.M) (bson.M, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// Increment atomically adds delta to a numeric field and returns the new
	// value. The read-modify-write happens at the storage layer, never in
	// handler code.
	Increment(ctx context.Context, id primitive.ObjectID, field string, delta int64) (int64, error)
	// Upsert merges fields into the first document matching filter, inserting
	// when nothing matches, and returns the resulting document.
	Upsert(ctx context.Context, filter bson.M, fields bson.M) (bson.M, error)
}
