// internal/app/store/influencers/search.go
package influencerstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	"github.com/dalemusser/influencerhub/internal/app/system/metrics"
	"github.com/dalemusser/influencerhub/internal/app/system/normalize"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Match is how a tier compares its field with the term.
type Match int

const (
	MatchEqual Match = iota
	MatchPrefix
)

// Tier is one search strategy: a field, a match kind, the index that backs
// it and how the raw term is canonicalized for that field.
type Tier struct {
	Name  string
	Field string
	Match Match
	Index string
	Term  func(string) string
}

// Index names referenced by the tiers. indexes.EnsureAll creates them.
const (
	IndexSearchName  = "idx_influencers_search_name"
	IndexNameLower   = "idx_influencers_name_lower"
	IndexHandleLower = "idx_influencers_handle_lower"
	IndexName        = "idx_influencers_name"
	IndexEmailLower  = "idx_influencers_email_lower"
	IndexEmail       = "idx_influencers_email"
)

func lowerTrim(s string) string { return normalize.Lower(strings.TrimSpace(s)) }

// NameTiers run from the strongest match to the legacy fallback for records
// written before derived fields existed.
var NameTiers = []Tier{
	{Name: "search_name_exact", Field: models.FieldSearchName, Match: MatchEqual, Index: IndexSearchName, Term: normalize.SearchName},
	{Name: "name_lower_prefix", Field: models.FieldNameLower, Match: MatchPrefix, Index: IndexNameLower, Term: lowerTrim},
	{Name: "handle_prefix", Field: models.FieldHandleLower, Match: MatchPrefix, Index: IndexHandleLower, Term: normalize.Handle},
	{Name: "legacy_name_prefix", Field: models.FieldName, Match: MatchPrefix, Index: IndexName, Term: normalize.LegacyCapitalize},
}

// EmailTiers search the canonical email, then the raw field.
var EmailTiers = []Tier{
	{Name: "email_lower_exact", Field: models.FieldEmailLower, Match: MatchEqual, Index: IndexEmailLower, Term: normalize.Email},
	{Name: "email_lower_prefix", Field: models.FieldEmailLower, Match: MatchPrefix, Index: IndexEmailLower, Term: normalize.Email},
	{Name: "legacy_email_prefix", Field: models.FieldEmail, Match: MatchPrefix, Index: IndexEmail, Term: normalize.Email},
}

// Mode selects the tier list SearchSmart runs.
type Mode string

const (
	ModeName  Mode = "name"
	ModeEmail Mode = "email"
)

// ParseMode maps a request value to a Mode; anything unrecognized is name.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeEmail)) {
		return ModeEmail
	}
	return ModeName
}

func (s *Store) SearchByName(ctx context.Context, term string, limit int) ([]models.Influencer, error) {
	return s.search(ctx, string(ModeName), NameTiers, term, limit)
}

func (s *Store) SearchByEmail(ctx context.Context, term string, limit int) ([]models.Influencer, error) {
	return s.search(ctx, string(ModeEmail), EmailTiers, term, limit)
}

// SearchSmart dispatches on mode.
func (s *Store) SearchSmart(ctx context.Context, term string, mode Mode, limit int) ([]models.Influencer, error) {
	if mode == ModeEmail {
		return s.SearchByEmail(ctx, term, limit)
	}
	return s.SearchByName(ctx, term, limit)
}

func (s *Store) search(ctx context.Context, kind string, tiers []Tier, term string, limit int) ([]models.Influencer, error) {
	ctx, done := s.observe(ctx, "search_"+kind)
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("search.limit", limit))

	out, err := s.RunTiers(ctx, kind, tiers, term, limit)
	done(err)
	return out, err
}

// RunTiers executes tiers in order, accumulating results deduplicated by id
// until limit is reached. A tier whose backing index is missing counts as
// empty; any other store failure ends the search. A blank term matches
// nothing.
func (s *Store) RunTiers(ctx context.Context, kind string, tiers []Tier, term string, limit int) ([]models.Influencer, error) {
	if limit <= 0 {
		limit = s.searchLimit
	}
	out := []models.Influencer{}
	if strings.TrimSpace(term) == "" {
		return out, nil
	}
	seen := make(map[string]struct{})

	for _, t := range tiers {
		if len(out) >= limit {
			break
		}
		value := t.Term(term)
		if value == "" {
			continue
		}

		q := docstore.Query{OrderBy: t.Field, Limit: limit, Index: t.Index}
		if t.Match == MatchPrefix {
			q.Where = docstore.Prefix(t.Field, value)
		} else {
			q.Where = docstore.Equal(t.Field, value)
		}

		snaps, err := s.c.Find(ctx, q)
		if errors.Is(err, docstore.ErrIndexMissing) {
			s.log.Warn("search tier skipped: backing index missing",
				zap.String("search", kind),
				zap.String("tier", t.Name),
				zap.String("index", t.Index),
				zap.Error(err))
			s.metrics.ObserveTier(kind, t.Name, metrics.TierIndexMissing)
			continue
		}
		if err != nil {
			s.metrics.ObserveTier(kind, t.Name, metrics.TierError)
			return nil, fmt.Errorf("search %s tier %s: %w", kind, t.Name, err)
		}

		outcome := metrics.TierEmpty
		if len(snaps) > 0 {
			outcome = metrics.TierHit
		}
		s.metrics.ObserveTier(kind, t.Name, outcome)

		for _, snap := range snaps {
			if _, dup := seen[snap.ID()]; dup {
				continue
			}
			r, err := decode(snap)
			if err != nil {
				return nil, err
			}
			seen[snap.ID()] = struct{}{}
			out = append(out, r)
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
