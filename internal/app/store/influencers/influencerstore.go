// internal/app/store/influencers/influencerstore.go

// Package influencerstore is the roster repository: paginated listing,
// tolerant search and CRUD over the influencers collection. Every write goes
// through the Normalizer so derived lookup fields never drift from their
// sources.
package influencerstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	"github.com/dalemusser/influencerhub/internal/app/system/metrics"
	"github.com/dalemusser/influencerhub/internal/app/system/normalize"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/dalemusser/influencerhub/internal/domain/opt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Collection is the name of the roster collection.
const Collection = "influencers"

// Defaults used when a caller passes a non-positive size.
const (
	DefaultPageSize    = 50
	DefaultSearchLimit = 200
)

// ErrNotFound is returned by Update when no record has the id.
var ErrNotFound = errors.New("influencer not found")

type Store struct {
	c            docstore.Collection
	norm         normalize.Normalizer
	log          *zap.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	pageSize     int
	searchLimit  int
	backfillConc int
}

// Option configures a Store.
type Option func(*Store)

func WithNormalizer(n normalize.Normalizer) Option { return func(s *Store) { s.norm = n } }
func WithLogger(l *zap.Logger) Option             { return func(s *Store) { s.log = l } }
func WithMetrics(m *metrics.Metrics) Option       { return func(s *Store) { s.metrics = m } }
func WithTracer(t trace.Tracer) Option            { return func(s *Store) { s.tracer = t } }

// WithPageSize sets the page size ListPage uses for a non-positive request.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithSearchLimit sets the limit searches use for a non-positive request.
func WithSearchLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.searchLimit = n
		}
	}
}

// WithBackfillConcurrency bounds the concurrent writes of one backfill batch.
func WithBackfillConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.backfillConc = n
		}
	}
}

func New(db docstore.Store, opts ...Option) *Store {
	s := &Store{
		c:            db.Collection(Collection),
		log:          zap.NewNop(),
		pageSize:     DefaultPageSize,
		searchLimit:  DefaultSearchLimit,
		backfillConc: 4,
	}
	for _, o := range opts {
		o(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("influencerhub/influencers")
	}
	return s
}

// Page is one slice of the roster in canonical email order.
type Page struct {
	Items []models.Influencer `json:"items"`
	// NextCursor is the email of the last item, or absent for an empty page.
	NextCursor opt.Value[string] `json:"nextCursor"`
	IsLast     bool              `json:"isLast"`
}

// ListPage returns up to pageSize records ordered by email, strictly after
// the cursor email when one is given. Records with no email field are not
// listed; an empty-string email is listed first.
func (s *Store) ListPage(ctx context.Context, pageSize int, after opt.Value[string]) (Page, error) {
	ctx, done := s.observe(ctx, "list_page")
	if pageSize <= 0 {
		pageSize = s.pageSize
	}

	q := docstore.Query{
		Where:   []docstore.Cond{{Field: models.FieldEmail, Op: docstore.Gte, Value: ""}},
		OrderBy: models.FieldEmail,
		Limit:   pageSize,
	}
	if cur, ok := after.Get(); ok {
		q.StartAfter = cur
	}
	snaps, err := s.c.Find(ctx, q)
	if err != nil {
		err = fmt.Errorf("list influencers: %w", err)
		done(err)
		return Page{}, err
	}
	items, err := decodeAll(snaps)
	if err != nil {
		done(err)
		return Page{}, err
	}

	page := Page{Items: items, IsLast: len(items) < pageSize}
	if len(items) > 0 {
		page.NextCursor = opt.Some(items[len(items)-1].Email)
	}
	done(nil)
	return page, nil
}

// GetByID returns the record and true, or false when no record has the id.
func (s *Store) GetByID(ctx context.Context, id string) (models.Influencer, bool, error) {
	ctx, done := s.observe(ctx, "get")
	snap, err := s.c.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		done(nil)
		return models.Influencer{}, false, nil
	}
	if err != nil {
		err = fmt.Errorf("get influencer %s: %w", id, err)
		done(err)
		return models.Influencer{}, false, err
	}
	r, err := decode(snap)
	done(err)
	if err != nil {
		return models.Influencer{}, false, err
	}
	return r, true, nil
}

// Create stores a new record and returns its id. Any client id or
// timestamps in the input are ignored.
func (s *Store) Create(ctx context.Context, in models.InfluencerInput) (string, error) {
	ctx, done := s.observe(ctx, "create")

	in.ID = opt.None[string]()
	doc := in.Doc()
	for k, v := range s.norm.DeriveFields(in).Doc() {
		doc[k] = v
	}
	email := canonicalEmail(in.Email.Or(""))
	doc[models.FieldEmail] = email
	doc[models.FieldEmailLower] = email
	doc[models.FieldCreatedAt] = docstore.ServerTime
	doc[models.FieldUpdatedAt] = docstore.ServerTime

	id, err := s.c.Insert(ctx, normalize.SanitizeDoc(doc))
	if err != nil {
		err = fmt.Errorf("create influencer: %w", err)
		done(err)
		return "", err
	}
	done(nil)
	return id, nil
}

// Update merges the present fields of patch into the record. Derived fields
// are recomputed only from fields in the patch; updatedAt is always
// refreshed. Returns ErrNotFound when no record has the id.
func (s *Store) Update(ctx context.Context, id string, patch models.InfluencerInput) error {
	ctx, done := s.observe(ctx, "update")

	patch.ID = opt.None[string]()
	doc := patch.Doc()
	for k, v := range s.norm.DeriveFields(patch).Doc() {
		doc[k] = v
	}
	if email, ok := patch.Email.Get(); ok {
		email = canonicalEmail(email)
		doc[models.FieldEmail] = email
		doc[models.FieldEmailLower] = email
	}
	doc[models.FieldUpdatedAt] = docstore.ServerTime

	err := s.c.Merge(ctx, id, normalize.SanitizeDoc(doc))
	if errors.Is(err, docstore.ErrNotFound) {
		done(nil)
		return ErrNotFound
	}
	if err != nil {
		err = fmt.Errorf("update influencer %s: %w", id, err)
	}
	done(err)
	return err
}

// Remove deletes the record. Removing a missing id is not an error.
func (s *Store) Remove(ctx context.Context, id string) error {
	ctx, done := s.observe(ctx, "remove")
	err := s.c.Delete(ctx, id)
	if err != nil {
		err = fmt.Errorf("remove influencer %s: %w", id, err)
	}
	done(err)
	return err
}

// canonicalEmail is the stored form of email, the key ListPage orders by.
func canonicalEmail(email string) string { return strings.ToLower(email) }

// observe opens a span and starts the latency timer for op; the returned
// func closes both.
func (s *Store) observe(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "influencers."+op,
		trace.WithAttributes(attribute.String("db.collection", Collection)))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.ObserveStoreOp(op, start, err)
	}
}

func decode(snap docstore.Snapshot) (models.Influencer, error) {
	var r models.Influencer
	if err := snap.Decode(&r); err != nil {
		return models.Influencer{}, fmt.Errorf("decode influencer %s: %w", snap.ID(), err)
	}
	r.ID = snap.ID()
	return r, nil
}

func decodeAll(snaps []docstore.Snapshot) ([]models.Influencer, error) {
	out := make([]models.Influencer, 0, len(snaps))
	for _, snap := range snaps {
		r, err := decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
