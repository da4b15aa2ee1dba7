// Command influencerctl runs maintenance tasks against the roster store:
//
//	influencerctl import -file roster.yaml
//	influencerctl backfill -batch 500
//	influencerctl add-operator -email ops@example.com -name "Ops"
//
// Store flags (-backend, -mongo-uri, -mongo-db, -sqlite) default to the
// INFLUENCERHUB_* variables the service reads.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalemusser/influencerhub/internal/app/bootstrap"
	"github.com/dalemusser/influencerhub/internal/app/system/indexes"
	"go.uber.org/zap"
)

var errUsage = errors.New("usage: influencerctl <import|backfill|add-operator> [flags]")

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], logger); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, errUsage)
			os.Exit(2)
		}
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, logger *zap.Logger) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "import":
		return runImport(ctx, args[1:], logger)
	case "backfill":
		return runBackfill(ctx, args[1:], logger)
	case "add-operator":
		return runAddOperator(ctx, args[1:], logger)
	}
	return errUsage
}

// storeFlags registers the store selection flags on fs.
func storeFlags(fs *flag.FlagSet) *bootstrap.AppConfig {
	cfg := &bootstrap.AppConfig{}
	fs.StringVar(&cfg.StoreBackend, "backend", envOr("STORE_BACKEND", bootstrap.BackendMongo), "document store: mongo or sqlite")
	fs.StringVar(&cfg.MongoURI, "mongo-uri", envOr("MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	fs.StringVar(&cfg.MongoDatabase, "mongo-db", envOr("MONGO_DATABASE", "influencer_hub"), "MongoDB database name")
	fs.StringVar(&cfg.SQLitePath, "sqlite", envOr("SQLITE_PATH", "influencerhub.db"), "SQLite database file")
	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(bootstrap.EnvPrefix + "_" + key); v != "" {
		return v
	}
	return def
}

// openStore connects and ensures indexes, as the service does on startup.
func openStore(ctx context.Context, cfg bootstrap.AppConfig, logger *zap.Logger) (bootstrap.DBDeps, error) {
	deps, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return bootstrap.DBDeps{}, err
	}
	if err := indexes.EnsureAll(ctx, deps.Store); err != nil {
		_ = deps.Store.Close(context.Background())
		return bootstrap.DBDeps{}, fmt.Errorf("ensure indexes: %w", err)
	}
	return deps, nil
}
