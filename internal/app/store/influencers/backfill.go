// internal/app/store/influencers/backfill.go
package influencerstore

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BackfillResult counts the work of one Backfill pass.
type BackfillResult struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
}

// Backfill walks the collection in id order, batch records at a time, and
// rewrites derived fields that are missing or stale. Records written before
// normalization existed become reachable by the stronger search tiers, and a
// mixed-case email is rewritten to its canonical lowercase form so the
// listing order holds. updatedAt is left alone.
func (s *Store) Backfill(ctx context.Context, batch int) (BackfillResult, error) {
	start := time.Now()
	ctx, done := s.observe(ctx, "backfill")
	if batch <= 0 {
		batch = s.pageSize
	}

	var (
		res     BackfillResult
		updated atomic.Int64
		after   any
	)
	finish := func(err error) (BackfillResult, error) {
		res.Updated = int(updated.Load())
		s.metrics.ObserveBackfill(res.Updated, start, err)
		done(err)
		return res, err
	}

	for {
		snaps, err := s.c.Find(ctx, docstore.Query{StartAfter: after, Limit: batch})
		if err != nil {
			return finish(fmt.Errorf("backfill scan: %w", err))
		}
		res.Scanned += len(snaps)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.backfillConc)
		for _, snap := range snaps {
			r, err := decode(snap)
			if err != nil {
				s.log.Warn("backfill: skipping undecodable record",
					zap.String("id", snap.ID()), zap.Error(err))
				continue
			}
			patch := s.staleDerived(r)
			if len(patch) == 0 {
				continue
			}
			id := r.ID
			g.Go(func() error {
				if err := s.c.Merge(gctx, id, patch); err != nil {
					return fmt.Errorf("backfill %s: %w", id, err)
				}
				updated.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return finish(err)
		}

		if len(snaps) < batch {
			break
		}
		after = snaps[len(snaps)-1].ID()
	}

	s.log.Info("backfill complete",
		zap.Int("scanned", res.Scanned),
		zap.Int64("updated", updated.Load()),
		zap.Duration("took", time.Since(start)))
	return finish(nil)
}

// staleDerived returns the derived fields of r that differ from what the
// Normalizer computes from r's stored sources, plus email when it is not
// canonical.
func (s *Store) staleDerived(r models.Influencer) map[string]any {
	want := s.norm.DeriveFields(models.DerivationSource(r)).Doc()
	have := map[string]any{
		models.FieldEmailLower:  r.EmailLower,
		models.FieldNameLower:   r.NameLower,
		models.FieldSearchName:  r.SearchName,
		models.FieldKeywords:    r.Keywords,
		models.FieldHandleLower: r.HandleLower,
	}

	patch := map[string]any{}
	if c := canonicalEmail(r.Email); c != r.Email {
		patch[models.FieldEmail] = c
	}
	for k, v := range want {
		if k == models.FieldKeywords {
			hk, _ := have[k].([]string)
			wk, _ := v.([]string)
			if len(hk) == 0 && len(wk) == 0 {
				continue
			}
			if reflect.DeepEqual(hk, wk) {
				continue
			}
		} else if have[k] == v {
			continue
		}
		patch[k] = v
	}
	return patch
}
