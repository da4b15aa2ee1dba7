package testutil

import (
	"context"
	"testing"

	influencerstore "github.com/dalemusser/influencerhub/internal/app/store/influencers"
	operatorstore "github.com/dalemusser/influencerhub/internal/app/store/operators"
	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	"github.com/dalemusser/influencerhub/internal/app/system/indexes"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/dalemusser/influencerhub/internal/domain/opt"
)

// DefaultPassword is the password CreateOperator gives fixture operators.
const DefaultPassword = "correcthorse9"

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db docstore.Store
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for db and ensures its indexes,
// so searches behave as they do in production.
func NewFixtures(t *testing.T, db docstore.Store) *Fixtures {
	t.Helper()
	ctx, cancel := TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying store for direct access in tests.
func (f *Fixtures) DB() docstore.Store {
	return f.db
}

// CreateOperator creates an active operator with DefaultPassword.
func (f *Fixtures) CreateOperator(ctx context.Context, email, name string) models.Operator {
	f.t.Helper()
	op, err := operatorstore.New(f.db).Create(ctx, email, name, DefaultPassword)
	if err != nil {
		f.t.Fatalf("create operator %s: %v", email, err)
	}
	return op
}

// CreateInfluencer creates a roster record with the given email and name
// and returns its id.
func (f *Fixtures) CreateInfluencer(ctx context.Context, email, name string) string {
	f.t.Helper()
	id, err := influencerstore.New(f.db).Create(ctx, models.InfluencerInput{
		Email: opt.Some(email),
		Name:  opt.Some(name),
	})
	if err != nil {
		f.t.Fatalf("create influencer %s: %v", email, err)
	}
	return id
}

// InsertLegacy writes body directly, bypassing normalization, the way
// records written before derived fields existed look.
func (f *Fixtures) InsertLegacy(ctx context.Context, body docstore.Doc) string {
	f.t.Helper()
	id, err := f.db.Collection(influencerstore.Collection).Insert(ctx, body)
	if err != nil {
		f.t.Fatalf("insert legacy record: %v", err)
	}
	return id
}
