package resource

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on top of a MongoDB collection.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

func (s *MongoStore) List(ctx context.Context, q Query) ([]bson.M, int64, error) {
	filter := bson.M{}
	for k, v := range q.Equals {
		filter[k] = v
	}
	if len(q.Tags) > 0 && q.TagField != "" {
		filter[q.TagField] = bson.M{"$in": q.Tags}
	}
	if q.Keyword != "" && len(q.KeywordFields) > 0 {
		ors := make([]bson.M, 0, len(q.KeywordFields))
		pattern := regexp.QuoteMeta(q.Keyword)
		for _, f := range q.KeywordFields {
			ors = append(ors, bson.M{f: primitive.Regex{Pattern: pattern, Options: "i"}})
		}
		filter["$or"] = ors
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find()
	if q.SortField != "" {
		findOpts.SetSort(bson.D{{Key: q.SortField, Value: -1}})
	}
	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		findOpts.SetSkip((page - 1) * q.Limit)
		findOpts.SetLimit(q.Limit)
	}

	cur, err := s.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	docs := []bson.M{}
	for cur.Next(ctx) {
		var d bson.M
		if err := cur.Decode(&d); err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (s *MongoStore) Get(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	var d bson.M
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *MongoStore) Insert(ctx context.Context, doc bson.M) (primitive.ObjectID, error) {
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

func (s *MongoStore) Merge(ctx context.Context, id primitive.ObjectID, fields bson.M) (bson.M, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated bson.M
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *MongoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Increment(ctx context.Context, id primitive.ObjectID, field string, delta int64) (int64, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated bson.M
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{field: delta}}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return toInt64(updated[field]), nil
}

func (s *MongoStore) Upsert(ctx context.Context, filter bson.M, fields bson.M) (bson.M, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated bson.M
	err := s.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": fields}, opts).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// toInt64 normalizes the numeric types the driver may decode a counter into.
func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int32:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	}
	return 0
}
