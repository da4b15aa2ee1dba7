package main

import (
	"context"
	"flag"
	"time"

	influencerstore "github.com/dalemusser/influencerhub/internal/app/store/influencers"
	"go.uber.org/zap"
)

func runBackfill(ctx context.Context, args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("backfill", flag.ContinueOnError)
	cfg := storeFlags(fs)
	batch := fs.Int("batch", 200, "records read per batch")
	concurrency := fs.Int("concurrency", 4, "concurrent writes per batch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, err := openStore(ctx, *cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Store.Close(context.Background()) }()

	store := influencerstore.New(deps.Store,
		influencerstore.WithLogger(logger),
		influencerstore.WithBackfillConcurrency(*concurrency))

	start := time.Now()
	res, err := store.Backfill(ctx, *batch)
	logger.Info("backfill finished",
		zap.Int("scanned", res.Scanned),
		zap.Int("updated", res.Updated),
		zap.Duration("took", time.Since(start)))
	return err
}
