// internal/app/store/docstore/mongodoc/indexes.go
package mongodoc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureIndexes reconciles the declared indexes against what the collection
already has, keyed by key pattern:
  - same keys, same uniqueness, same name  -> reuse
  - same keys, same uniqueness, other name -> drop and recreate under our name
  - same keys, different uniqueness        -> drop and recreate
  - no index on those keys                 -> create

Search tiers hint indexes by name, so name alignment matters here.
*/
func (c *Collection) EnsureIndexes(ctx context.Context, specs []docstore.IndexSpec) error {
	var errs []string

	for _, spec := range specs {
		start := time.Now()
		model := indexModel(spec)
		sig := keySig(model.Keys.(bson.D))

		zap.L().Info("ensuring index",
			zap.String("collection", c.c.Name()),
			zap.String("name", spec.Name),
			zap.String("keys", sig),
			zap.Bool("unique", spec.Unique))

		existing, err := c.listIndexes(ctx)
		if err != nil {
			zap.L().Warn("list indexes failed",
				zap.String("collection", c.c.Name()),
				zap.Error(err))
		}

		ex, found := existing[sig]
		switch {
		case found && ex.unique() == spec.Unique && (spec.Name == "" || ex.Name == spec.Name):
			zap.L().Info("reusing existing index",
				zap.String("collection", c.c.Name()),
				zap.String("name", ex.Name),
				zap.String("took", time.Since(start).String()))
			continue

		case found:
			zap.L().Info("replacing index",
				zap.String("collection", c.c.Name()),
				zap.String("from", ex.Name),
				zap.String("to", spec.Name),
				zap.Bool("unique", spec.Unique))
			if _, err := c.c.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", c.c.Name(), spec.Name, err))
				continue
			}
		}

		if _, err := c.c.Indexes().CreateOne(ctx, model); err != nil {
			zap.L().Warn("index ensure failed",
				zap.String("collection", c.c.Name()),
				zap.String("name", spec.Name),
				zap.String("keys", sig),
				zap.Error(err))
			if spec.Unique && isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", c.c.Name(), spec.Name, spec.Field))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", c.c.Name(), spec.Name, err))
			}
			continue
		}

		zap.L().Info("index ensured",
			zap.String("collection", c.c.Name()),
			zap.String("name", spec.Name),
			zap.String("keys", sig),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func (e existingIndex) unique() bool { return e.Unique != nil && *e.Unique }

// listIndexes returns the collection's indexes keyed by key signature.
func (c *Collection) listIndexes(ctx context.Context) (map[string]existingIndex, error) {
	out := map[string]existingIndex{}
	cur, err := c.c.Indexes().List(ctx)
	if err != nil {
		return out, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", c.c.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

func indexModel(spec docstore.IndexSpec) mongo.IndexModel {
	opts := options.Index()
	if spec.Name != "" {
		opts.SetName(spec.Name)
	}
	if spec.Unique {
		opts.SetUnique(true)
	}
	return mongo.IndexModel{
		Keys:    bson.D{{Key: spec.Field, Value: 1}},
		Options: opts,
	}
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}
