// internal/app/store/docstore/docstore.go

// Package docstore is the document-store collaborator the stores are written
// against: flat collections of schemaless documents, addressable by id and
// queryable by equality and ordered range scans on a single field.
//
// Two backends implement it: mongodoc (MongoDB) and sqlitedoc (SQLite with
// JSON bodies). Both decode snapshots through bson struct tags, so one model
// type serves either backend.
package docstore

//go:generate mockgen -source=docstore.go -destination=mocks/mocks.go -package=mocks Store,Collection,Snapshot

import (
	"context"
	"errors"

	textfold "github.com/dalemusser/waffle/pantry/text"
)

// Doc is a document body keyed by stored field name. Nested documents are
// map[string]any as well.
type Doc = map[string]any

var (
	// ErrNotFound is returned by Get and Merge when no document has the id.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrIndexMissing is returned by Find when Query.Index names an index
	// the backend does not have.
	ErrIndexMissing = errors.New("docstore: backing index missing")

	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("docstore: duplicate key")
)

// HighSentinel sorts after every valid code point, astral plane included.
// A prefix scan for p is the half-open range [p, p+HighSentinel).
const HighSentinel = textfold.High

// ServerTime is a placeholder value. A backend replaces every field holding
// it with its own clock at write time.
var ServerTime any = serverTime{}

type serverTime struct{}

// IsServerTime reports whether v is the ServerTime placeholder.
func IsServerTime(v any) bool {
	_, ok := v.(serverTime)
	return ok
}

// Store opens collections on one database.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Collection is a single flat collection of documents.
type Collection interface {
	// Get returns ErrNotFound when no document has id.
	Get(ctx context.Context, id string) (Snapshot, error)
	// Insert writes body as a new document and returns the generated id.
	Insert(ctx context.Context, body Doc) (string, error)
	// Merge applies patch to an existing document. Nested maps are merged
	// key by key; keys not in patch are left untouched.
	Merge(ctx context.Context, id string, patch Doc) error
	// Delete removes the document. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, q Query) ([]Snapshot, error)
	EnsureIndexes(ctx context.Context, specs []IndexSpec) error
}

// Snapshot is one document read from a collection.
type Snapshot interface {
	ID() string
	// Decode unmarshals the body into v using bson struct tags.
	Decode(v any) error
}

// IndexSpec declares a single-field ascending index.
type IndexSpec struct {
	Name   string
	Field  string
	Unique bool
}
