// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	// Store is the document store every repository runs on.
	Store docstore.Store
	// Backend is "mongo" or "sqlite", as reported by /health.
	Backend string
	// MongoClient is set for the mongo backend only.
	MongoClient *mongo.Client
}
