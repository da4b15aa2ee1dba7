// internal/app/system/validators/validators.go

// Package validators attaches MongoDB JSON-Schema validators to the
// collections the service writes. SQLite has no equivalent; there the
// repositories are the only gate.
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/influencerhub/internal/app/store/audit"
	influencerstore "github.com/dalemusser/influencerhub/internal/app/store/influencers"
	operatorstore "github.com/dalemusser/influencerhub/internal/app/store/operators"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	for _, coll := range Collections() {
		if _, err := ensureCollection(ctx, db, coll.Name, logger); err != nil {
			problems = append(problems, coll.Name+": "+err.Error())
			continue
		}
		if err := setValidator(ctx, db, coll.Name, coll.Schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll.Name))
				continue
			}
			problems = append(problems, coll.Name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Collection pairs a collection with its validator.
type Collection struct {
	Name   string
	Schema bson.M
}

// Collections lists every validated collection.
func Collections() []Collection {
	return []Collection{
		{Name: influencerstore.Collection, Schema: influencersSchema()},
		{Name: operatorstore.Collection, Schema: operatorsSchema()},
		{Name: audit.Collection, Schema: auditEventsSchema()},
	}
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

// setValidator uses validationLevel moderate: records that already violate
// the schema (legacy imports) stay writable as long as the write does not
// introduce a new violation.
func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

// influencersSchema only types the fields. Legacy records may lack any of
// them, so nothing is required.
func influencersSchema() bson.M {
	str := bson.M{"bsonType": "string"}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"properties": bson.M{
				models.FieldEmail:       str,
				models.FieldName:        str,
				models.FieldEmailLower:  str,
				models.FieldNameLower:   str,
				models.FieldSearchName:  str,
				models.FieldHandleLower: str,
				models.FieldKeywords:    bson.M{"bsonType": "array", "items": str},
				models.FieldHandles:     bson.M{"bsonType": "object"},
				"facturaSimple":         bson.M{"bsonType": bson.A{"bool", "string"}},
				models.FieldCreatedAt:   bson.M{"bsonType": "date"},
				models.FieldUpdatedAt:   bson.M{"bsonType": "date"},
			},
		},
	}
}

func operatorsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "password_hash", "status"},
			"properties": bson.M{
				"email":         nonBlank,
				"password_hash": nonBlank,
				"name":          bson.M{"bsonType": "string"},
				"status":        bson.M{"enum": bson.A{models.OperatorActive, models.OperatorDisabled}},
				"last_login_at": bson.M{"bsonType": "date"},
				"created_at":    bson.M{"bsonType": "date"},
				"updated_at":    bson.M{"bsonType": "date"},
			},
		},
	}
}

func auditEventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"timestamp", "category", "event_type", "success"},
			"properties": bson.M{
				"timestamp":  bson.M{"bsonType": "date"},
				"category":   bson.M{"enum": bson.A{audit.CategoryAuth, audit.CategoryRoster}},
				"event_type": nonBlank,
				"success":    bson.M{"bsonType": "bool"},
				"details":    bson.M{"bsonType": "object"},
			},
		},
	}
}
