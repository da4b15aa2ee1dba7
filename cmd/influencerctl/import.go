package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	influencerstore "github.com/dalemusser/influencerhub/internal/app/store/influencers"
	"github.com/dalemusser/influencerhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/dalemusser/influencerhub/internal/domain/opt"
	"github.com/dalemusser/waffle/pantry/validate"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

func runImport(ctx context.Context, args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	cfg := storeFlags(fs)
	file := fs.String("file", "", "YAML file holding a list of records")
	concurrency := fs.Int("concurrency", 4, "records created at once")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("import: -file is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := parseRoster(f)
	if err != nil {
		return err
	}

	deps, err := openStore(ctx, *cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Store.Close(context.Background()) }()

	res, err := importRoster(ctx, influencerstore.New(deps.Store, influencerstore.WithLogger(logger)), records, *concurrency, logger)
	logger.Info("import finished",
		zap.String("file", *file),
		zap.Int("records", len(records)),
		zap.Int64("created", res.Created))
	return err
}

// parseRoster decodes a YAML list of records and rejects entries without a
// valid email before anything is written.
func parseRoster(r io.Reader) ([]models.InfluencerInput, error) {
	var records []models.InfluencerInput
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	var bad []string
	for i, in := range records {
		email := strings.TrimSpace(in.Email.Or(""))
		if !validate.SimpleEmailValid(email) {
			bad = append(bad, fmt.Sprintf("record %d: invalid email %q", i+1, email))
			continue
		}
		in.Email = opt.Some(email)
		records[i] = htmlsanitize.CleanInput(in)
	}
	if len(bad) > 0 {
		return nil, fmt.Errorf("parse roster: %s", strings.Join(bad, "; "))
	}
	return records, nil
}

type importResult struct {
	Created int64
}

// creator is the part of the roster store import needs.
type creator interface {
	Create(ctx context.Context, in models.InfluencerInput) (string, error)
}

// importRoster creates records with at most concurrency writes in flight.
// The first failure cancels the rest.
func importRoster(ctx context.Context, store creator, records []models.InfluencerInput, concurrency int, logger *zap.Logger) (importResult, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	var created atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, in := range records {
		g.Go(func() error {
			id, err := store.Create(gctx, in)
			if err != nil {
				return fmt.Errorf("record %d (%s): %w", i+1, in.Email.Or(""), err)
			}
			created.Add(1)
			logger.Debug("record imported", zap.String("id", id))
			return nil
		})
	}
	err := g.Wait()
	return importResult{Created: created.Load()}, err
}
