// internal/app/store/docstore/mongodoc/mongodoc.go

// Package mongodoc implements docstore on MongoDB.
//
// Documents get ObjectID ids. Records migrated from other stores may carry
// string ids; lookups by id match either form.
package mongodoc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store is a docstore.Store over one Mongo database.
type Store struct {
	db *mongo.Database
}

// New wraps db. The caller owns the client unless Close is called.
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Database exposes the underlying database.
func (s *Store) Database() *mongo.Database { return s.db }

func (s *Store) Collection(name string) docstore.Collection {
	return &Collection{c: s.db.Collection(name)}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// Collection is a docstore.Collection over one Mongo collection.
type Collection struct {
	c *mongo.Collection
}

func (c *Collection) Get(ctx context.Context, id string) (docstore.Snapshot, error) {
	raw, err := c.c.FindOne(ctx, idFilter(id)).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, docstore.ErrNotFound
		}
		return nil, err
	}
	return newSnapshot(raw), nil
}

// Insert stores body under a fresh ObjectID. ServerTime fields are set by
// $currentDate so the timestamp comes from the server clock.
func (c *Collection) Insert(ctx context.Context, body docstore.Doc) (string, error) {
	oid := primitive.NewObjectID()
	set, now := splitUpdate(body, true)

	if len(now) == 0 {
		doc := bson.M{"_id": oid}
		for k, v := range body {
			doc[k] = v
		}
		if _, err := c.c.InsertOne(ctx, doc); err != nil {
			return "", mapWriteErr(err)
		}
		return oid.Hex(), nil
	}

	update := bson.M{"$currentDate": now}
	if len(set) > 0 {
		update["$set"] = set
	}
	_, err := c.c.UpdateOne(ctx, bson.M{"_id": oid}, update, options.Update().SetUpsert(true))
	if err != nil {
		return "", mapWriteErr(err)
	}
	return oid.Hex(), nil
}

// Merge applies patch with $set on dotted paths, so nested documents are
// merged rather than replaced.
func (c *Collection) Merge(ctx context.Context, id string, patch docstore.Doc) error {
	set, now := splitUpdate(patch, false)
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(now) > 0 {
		update["$currentDate"] = now
	}
	if len(update) == 0 {
		n, err := c.c.CountDocuments(ctx, idFilter(id), options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if n == 0 {
			return docstore.ErrNotFound
		}
		return nil
	}

	res, err := c.c.UpdateOne(ctx, idFilter(id), update)
	if err != nil {
		return mapWriteErr(err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (c *Collection) Delete(ctx context.Context, id string) error {
	_, err := c.c.DeleteOne(ctx, idFilter(id))
	return err
}

func (c *Collection) Find(ctx context.Context, q docstore.Query) ([]docstore.Snapshot, error) {
	orderField := q.OrderBy
	if orderField == "" {
		orderField = "_id"
	}
	dir := 1
	if q.Descending {
		dir = -1
	}

	filter := bson.M{}
	for _, cond := range q.Where {
		addCond(filter, cond.Field, opName(cond.Op), cond.Value)
	}
	if q.StartAfter != nil {
		after := q.StartAfter
		if orderField == "_id" {
			if s, ok := after.(string); ok {
				after = idValue(s)
			}
		}
		op := "$gt"
		if q.Descending {
			op = "$lt"
		}
		addCond(filter, orderField, op, after)
	}

	opts := options.Find().SetSort(bson.D{{Key: orderField, Value: dir}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if q.Index != "" {
		opts.SetHint(q.Index)
	}

	cur, err := c.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapReadErr(err)
	}
	defer cur.Close(ctx)

	var out []docstore.Snapshot
	for cur.Next(ctx) {
		raw := make(bson.Raw, len(cur.Current))
		copy(raw, cur.Current)
		out = append(out, newSnapshot(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, mapReadErr(err)
	}
	return out, nil
}

type snapshot struct {
	id  string
	raw bson.Raw
}

func newSnapshot(raw bson.Raw) *snapshot {
	return &snapshot{id: rawID(raw), raw: raw}
}

func (s *snapshot) ID() string         { return s.id }
func (s *snapshot) Decode(v any) error { return bson.Unmarshal(s.raw, v) }

func rawID(raw bson.Raw) string {
	v, err := raw.LookupErr("_id")
	if err != nil {
		return ""
	}
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	return v.String()
}

// idValue converts a hex id to an ObjectID; anything else stays a string.
func idValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}

func opName(op docstore.Op) string {
	switch op {
	case docstore.Gte:
		return "$gte"
	case docstore.Lt:
		return "$lt"
	default:
		return "$eq"
	}
}

// addCond ANDs {field: {op: v}} into filter, combining operators on the
// same field.
func addCond(filter bson.M, field, op string, v any) {
	if m, ok := filter[field].(bson.M); ok {
		m[op] = v
		return
	}
	filter[field] = bson.M{op: v}
}

// splitUpdate flattens a document into dotted $set paths and pulls
// ServerTime placeholders out into a $currentDate spec. Empty nested
// documents are written only when keepEmpty is set; in a merge they change
// nothing.
func splitUpdate(d docstore.Doc, keepEmpty bool) (set bson.M, now bson.M) {
	set, now = bson.M{}, bson.M{}
	flatten("", d, keepEmpty, set, now)
	return set, now
}

func flatten(prefix string, d map[string]any, keepEmpty bool, set, now bson.M) {
	for k, v := range d {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch t := v.(type) {
		case map[string]any:
			if len(t) == 0 {
				if keepEmpty {
					set[path] = bson.M{}
				}
				continue
			}
			flatten(path, t, keepEmpty, set, now)
		default:
			if docstore.IsServerTime(v) {
				now[path] = true
				continue
			}
			set[path] = v
		}
	}
}

func mapWriteErr(err error) error {
	if wafflemongo.IsDup(err) {
		return fmt.Errorf("%w: %v", docstore.ErrDuplicate, err)
	}
	return err
}

func mapReadErr(err error) error {
	if isIndexMissing(err) {
		return fmt.Errorf("%w: %v", docstore.ErrIndexMissing, err)
	}
	return err
}

// isIndexMissing recognizes the planner's refusal of an unknown hint.
func isIndexMissing(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		if se.HasErrorCode(291) || se.HasErrorMessage("hint provided does not correspond to an existing index") {
			return true
		}
	}
	return strings.Contains(err.Error(), "hint provided does not correspond to an existing index")
}
