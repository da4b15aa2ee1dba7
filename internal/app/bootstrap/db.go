// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/influencerhub/internal/app/store/docstore/mongodoc"
	"github.com/dalemusser/influencerhub/internal/app/store/docstore/sqlitedoc"
	"github.com/dalemusser/influencerhub/internal/app/system/indexes"
	"github.com/dalemusser/influencerhub/internal/app/system/timeouts"
	"github.com/dalemusser/influencerhub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB opens the configured document store and verifies it answers.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	return OpenStore(ctx, appCfg, logger)
}

// OpenStore opens the document store named by appCfg.StoreBackend. The
// command-line tool shares it with the service.
func OpenStore(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	switch appCfg.StoreBackend {
	case BackendMongo:
		opts := options.Client().ApplyURI(appCfg.MongoURI).SetAppName("influencerhub")
		if appCfg.MongoMaxPoolSize > 0 {
			opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
		}
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
		}
		store := mongodoc.New(client.Database(appCfg.MongoDatabase))
		if err := ping(ctx, store.Ping); err != nil {
			_ = client.Disconnect(context.Background())
			return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
		}
		logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
		return DBDeps{Store: store, Backend: BackendMongo, MongoClient: client}, nil

	case BackendSQLite:
		store, err := sqlitedoc.Open(appCfg.SQLitePath)
		if err != nil {
			return DBDeps{}, err
		}
		if err := ping(ctx, store.Ping); err != nil {
			_ = store.Close(context.Background())
			return DBDeps{}, fmt.Errorf("ping sqlite: %w", err)
		}
		logger.Info("opened SQLite store", zap.String("path", appCfg.SQLitePath))
		return DBDeps{Store: store, Backend: BackendSQLite}, nil
	}
	return DBDeps{}, fmt.Errorf("unknown store backend %q", appCfg.StoreBackend)
}

func ping(ctx context.Context, f func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	return f(ctx)
}

// EnsureSchema attaches collection validators (Mongo only) and creates
// every declared index. Search tiers skip a tier whose index is missing, so
// an index failure here is fatal rather than silently degrading search.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if ms, ok := deps.Store.(*mongodoc.Store); ok {
		if err := validators.EnsureAll(ctx, ms.Database(), logger); err != nil {
			logger.Error("ensure validators failed", zap.Error(err))
			return fmt.Errorf("ensure validators: %w", err)
		}
	}
	if err := indexes.EnsureAll(ctx, deps.Store); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info("indexes ensured", zap.Int("collections", len(indexes.All())))
	return nil
}
