// internal/app/store/gateway/mongogw/mongogw.go

// Package mongogw implements the storage gateway on MongoDB. Each
// collection-group name maps to one Mongo collection; nested documents carry
// a parent_path discriminator, which is what makes a collection-group scan a
// single indexed query. Document ids are the path leaf, stored as _id.
package mongogw

import (
	"context"
	"fmt"
	"time"

	"github.com/abhyas01/Qaptain-sub001/internal/app/store/gateway"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Bookkeeping fields. _id is the full document path (globally unique, so
// one collection can hold the same leaf id under many parents); docIDField
// is the leaf, parentField the owning document path.
const (
	docIDField  = "doc_id"
	parentField = "parent_path"
)

// Store is the Mongo-backed gateway.
type Store struct {
	db  *mongo.Database
	log *zap.Logger
}

var _ gateway.Gateway = (*Store)(nil)

// New wraps a connected database.
func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{db: db, log: logger}
}

func (s *Store) Get(ctx context.Context, path string) (gateway.Doc, error) {
	dp, err := gateway.ParseDocPath(path)
	if err != nil {
		return gateway.Doc{}, err
	}
	var raw bson.M
	err = s.db.Collection(dp.Collection).
		FindOne(ctx, bson.M{"_id": path}).
		Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return gateway.Doc{}, gateway.ErrNotFound
	}
	if err != nil {
		return gateway.Doc{}, fmt.Errorf("mongogw: get %s: %w", path, err)
	}
	return toDoc(path, dp.ID, raw), nil
}

func (s *Store) Query(ctx context.Context, collectionPath, field string, value any, opts gateway.Options) ([]gateway.Doc, error) {
	cp, err := gateway.ParseCollPath(collectionPath)
	if err != nil {
		return nil, err
	}
	filter := bson.M{parentField: cp.Parent}
	if field != "" {
		filter[field] = value
	}
	return s.find(ctx, cp.Collection, filter, opts)
}

func (s *Store) QueryGroup(ctx context.Context, group string, filters []gateway.Filter, opts gateway.Options) ([]gateway.Doc, error) {
	filter := bson.M{}
	for _, f := range filters {
		filter[f.Field] = f.Value
	}
	return s.find(ctx, group, filter, opts)
}

func (s *Store) Create(ctx context.Context, collectionPath string, data map[string]any) (string, error) {
	cp, err := gateway.ParseCollPath(collectionPath)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	doc := s.materialize(data)
	doc["_id"] = collectionPath + "/" + id
	doc[docIDField] = id
	doc[parentField] = cp.Parent
	if _, err := s.db.Collection(cp.Collection).InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return "", gateway.ErrDuplicate
		}
		return "", fmt.Errorf("mongogw: create in %s: %w", collectionPath, err)
	}
	return id, nil
}

func (s *Store) Put(ctx context.Context, path string, data map[string]any) error {
	dp, err := gateway.ParseDocPath(path)
	if err != nil {
		return err
	}
	doc := s.materialize(data)
	doc["_id"] = path
	doc[docIDField] = dp.ID
	doc[parentField] = dp.Parent
	if _, err := s.db.Collection(dp.Collection).InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			s.log.Debug("put rejected by unique key", zap.String("path", path))
			return gateway.ErrDuplicate
		}
		return fmt.Errorf("mongogw: put %s: %w", path, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	dp, err := gateway.ParseDocPath(path)
	if err != nil {
		return err
	}
	res, err := s.db.Collection(dp.Collection).UpdateOne(ctx,
		bson.M{"_id": path},
		bson.M{"$set": s.materialize(fields)})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return gateway.ErrDuplicate
		}
		return fmt.Errorf("mongogw: update %s: %w", path, err)
	}
	if res.MatchedCount == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

func (s *Store) find(ctx context.Context, collection string, filter bson.M, opts gateway.Options) ([]gateway.Doc, error) {
	sortField := "_id"
	if opts.OrderBy != "" {
		sortField = opts.OrderBy
	}
	dir := 1
	if opts.Descending {
		dir = -1
	}

	if opts.StartAfter != nil {
		if w := keysetWindow(sortField, opts); w != nil {
			filter = bson.M{"$and": bson.A{filter, w}}
		}
	}

	findOpts := options.Find()
	if opts.OrderBy != "" {
		findOpts.SetSort(bson.D{{Key: sortField, Value: dir}, {Key: "_id", Value: dir}})
	} else {
		findOpts.SetSort(bson.D{{Key: "_id", Value: dir}})
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := s.db.Collection(collection).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("mongogw: query %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var docs []gateway.Doc
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("mongogw: decode %s row: %w", collection, err)
		}
		path, _ := raw["_id"].(string)
		id, _ := raw[docIDField].(string)
		docs = append(docs, toDoc(path, id, raw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongogw: iterate %s: %w", collection, err)
	}
	return docs, nil
}

// keysetWindow builds the start-after condition from the raw handle's sort
// value and id, same tuple shape the sort uses.
func keysetWindow(sortField string, opts gateway.Options) bson.M {
	after := opts.StartAfter
	op := "$gt"
	if opts.Descending {
		op = "$lt"
	}
	if sortField == "_id" {
		return bson.M{"_id": bson.M{op: after.Path}}
	}
	v, ok := after.Data[sortField]
	if !ok {
		return bson.M{"_id": bson.M{op: after.Path}}
	}
	return bson.M{"$or": bson.A{
		bson.M{sortField: bson.M{op: v}},
		bson.M{sortField: v, "_id": bson.M{op: after.Path}},
	}}
}

func (s *Store) materialize(data map[string]any) bson.M {
	out := bson.M{}
	now := time.Now().UTC()
	for k, v := range data {
		if gateway.IsServerTimestamp(v) {
			out[k] = now
			continue
		}
		out[k] = v
	}
	return out
}

func toDoc(path, id string, raw bson.M) gateway.Doc {
	data := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "_id" || k == docIDField || k == parentField {
			continue
		}
		data[k] = normalizeValue(v)
	}
	return gateway.Doc{Path: path, ID: id, Data: data}
}

// normalizeValue maps BSON driver types back to plain Go values so both
// gateway implementations hand callers the same shapes.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}
