// internal/app/system/workers/backfill.go
package workers

import (
	"context"
	"sync"
	"time"

	influencerstore "github.com/dalemusser/influencerhub/internal/app/store/influencers"
	"github.com/dalemusser/influencerhub/internal/app/system/auditlog"
	"github.com/dalemusser/influencerhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Backfiller is the part of the roster store the worker drives.
type Backfiller interface {
	Backfill(ctx context.Context, batch int) (influencerstore.BackfillResult, error)
}

// Backfill is a background worker that periodically rewrites stale derived
// fields, so records imported or edited outside the service become
// searchable.
type Backfill struct {
	store    Backfiller
	audit    *auditlog.Logger
	log      *zap.Logger
	interval time.Duration
	batch    int
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewBackfill creates a backfill worker that runs every interval in batches
// of batch records. audit may be nil.
func NewBackfill(store Backfiller, audit *auditlog.Logger, logger *zap.Logger, interval time.Duration, batch int) *Backfill {
	return &Backfill{
		store:    store,
		audit:    audit,
		log:      logger,
		interval: interval,
		batch:    batch,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one pass immediately, then every interval.
func (w *Backfill) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("backfill worker started",
		zap.Duration("interval", w.interval),
		zap.Int("batch", w.batch))
}

// Stop signals the worker to stop and waits for the current pass to finish.
func (w *Backfill) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("backfill worker stopped")
}

func (w *Backfill) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.pass()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.pass()
		}
	}
}

func (w *Backfill) pass() {
	ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Backfill(), w.log, "backfill pass")
	defer cancel()

	// Stop cancels an in-flight pass.
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	res, err := w.store.Backfill(ctx, w.batch)
	if err != nil {
		w.log.Error("backfill pass failed", zap.Error(err))
	}
	if err != nil || res.Updated > 0 {
		w.audit.BackfillRun(ctx, nil, "", res.Scanned, res.Updated, err)
	}
}
