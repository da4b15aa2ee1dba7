// Package testutil provides stores, contexts and fixtures for package tests.
package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	"github.com/dalemusser/influencerhub/internal/app/store/docstore/mongodoc"
	"github.com/dalemusser/influencerhub/internal/app/store/docstore/sqlitedoc"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoURIEnv names the variable that enables tests against a real MongoDB.
const MongoURIEnv = "INFLUENCERHUB_TEST_MONGO_URI"

// TestContext returns a context with a timeout suitable for store tests.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// SetupTestStore returns a fresh in-memory SQLite store, closed when the
// test ends.
func SetupTestStore(t *testing.T) docstore.Store {
	t.Helper()
	s, err := sqlitedoc.Open(sqlitedoc.Memory)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

// SetupMongoStore returns a store on a throwaway database, dropped when the
// test ends. The test is skipped unless MongoURIEnv is set.
func SetupMongoStore(t *testing.T) docstore.Store {
	t.Helper()
	uri := os.Getenv(MongoURIEnv)
	if uri == "" {
		t.Skipf("%s not set; skipping MongoDB test", MongoURIEnv)
	}

	ctx, cancel := TestContext()
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	name := "influencerhub_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	db := client.Database(name)

	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return mongodoc.New(db)
}
