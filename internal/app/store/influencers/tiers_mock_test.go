package influencerstore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	"github.com/dalemusser/influencerhub/internal/app/store/docstore/mocks"
	influencerstore "github.com/dalemusser/influencerhub/internal/app/store/influencers"
	"github.com/dalemusser/influencerhub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newMockStore(t *testing.T) (*influencerstore.Store, *mocks.MockCollection, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	db := mocks.NewMockStore(ctrl)
	coll := mocks.NewMockCollection(ctrl)
	db.EXPECT().Collection(influencerstore.Collection).Return(coll)
	return influencerstore.New(db), coll, ctrl
}

func snap(ctrl *gomock.Controller, id, email string) docstore.Snapshot {
	s := mocks.NewMockSnapshot(ctrl)
	s.EXPECT().ID().Return(id).AnyTimes()
	s.EXPECT().Decode(gomock.Any()).DoAndReturn(func(v any) error {
		v.(*models.Influencer).Email = email
		return nil
	}).AnyTimes()
	return s
}

// byIndex matches a Query hinting the given index.
type byIndex string

func (b byIndex) Matches(x any) bool {
	q, ok := x.(docstore.Query)
	return ok && q.Index == string(b)
}
func (b byIndex) String() string { return "query on index " + string(b) }

func TestRunTiers_IndexMissingFallsThrough(t *testing.T) {
	s, coll, ctrl := newMockStore(t)
	ctx := context.Background()

	missing := fmt.Errorf("%w: no such index", docstore.ErrIndexMissing)
	gomock.InOrder(
		coll.EXPECT().Find(gomock.Any(), byIndex(influencerstore.IndexSearchName)).Return(nil, missing),
		coll.EXPECT().Find(gomock.Any(), byIndex(influencerstore.IndexNameLower)).Return(nil, missing),
		coll.EXPECT().Find(gomock.Any(), byIndex(influencerstore.IndexHandleLower)).Return(nil, nil),
		coll.EXPECT().Find(gomock.Any(), byIndex(influencerstore.IndexName)).
			Return([]docstore.Snapshot{snap(ctrl, "1", "ana@x.com")}, nil),
	)

	got, err := s.SearchByName(ctx, "ana", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "ana@x.com", got[0].Email)
}

func TestRunTiers_StoreFailureIsReturned(t *testing.T) {
	s, coll, _ := newMockStore(t)
	ctx := context.Background()

	boom := errors.New("connection reset")
	coll.EXPECT().Find(gomock.Any(), byIndex(influencerstore.IndexSearchName)).Return(nil, boom)

	got, err := s.SearchByName(ctx, "ana", 5)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, boom)
}

func TestRunTiers_StopsOnceLimitReached(t *testing.T) {
	s, coll, ctrl := newMockStore(t)
	ctx := context.Background()

	coll.EXPECT().Find(gomock.Any(), byIndex(influencerstore.IndexSearchName)).
		DoAndReturn(func(_ context.Context, q docstore.Query) ([]docstore.Snapshot, error) {
			assert.Equal(t, 2, q.Limit)
			assert.Equal(t, docstore.Equal(models.FieldSearchName, "ana"), q.Where)
			return []docstore.Snapshot{snap(ctrl, "1", "a@x.com"), snap(ctrl, "2", "b@x.com")}, nil
		})
	// No further tiers are expected: gomock fails the test on any other Find.

	got, err := s.SearchByName(ctx, "Ana", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRunTiers_DedupesAcrossTiers(t *testing.T) {
	s, coll, ctrl := newMockStore(t)
	ctx := context.Background()

	gomock.InOrder(
		coll.EXPECT().Find(gomock.Any(), byIndex(influencerstore.IndexEmailLower)).
			Return([]docstore.Snapshot{snap(ctrl, "1", "a@x.com")}, nil),
		coll.EXPECT().Find(gomock.Any(), byIndex(influencerstore.IndexEmailLower)).
			DoAndReturn(func(_ context.Context, q docstore.Query) ([]docstore.Snapshot, error) {
				assert.Equal(t, docstore.Prefix(models.FieldEmailLower, "a@x.com"), q.Where)
				return []docstore.Snapshot{snap(ctrl, "1", "a@x.com"), snap(ctrl, "2", "a@x.com.mx")}, nil
			}),
		coll.EXPECT().Find(gomock.Any(), byIndex(influencerstore.IndexEmail)).
			Return([]docstore.Snapshot{snap(ctrl, "2", "a@x.com.mx"), snap(ctrl, "3", "a@x.community")}, nil),
	)

	got, err := s.SearchByEmail(ctx, " A@X.com ", 10)
	require.NoError(t, err)
	ids := []string{}
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestRunTiers_DefaultLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := mocks.NewMockStore(ctrl)
	coll := mocks.NewMockCollection(ctrl)
	db.EXPECT().Collection(influencerstore.Collection).Return(coll)
	s := influencerstore.New(db, influencerstore.WithSearchLimit(7))

	coll.EXPECT().Find(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q docstore.Query) ([]docstore.Snapshot, error) {
			assert.Equal(t, 7, q.Limit)
			return nil, nil
		}).Times(len(influencerstore.EmailTiers))

	_, err := s.SearchByEmail(context.Background(), "x", 0)
	require.NoError(t, err)
}

func TestRunTiers_BlankTermSkipsStore(t *testing.T) {
	s, _, _ := newMockStore(t)
	// No Find expectations: a call would fail the test.
	got, err := s.SearchByName(context.Background(), "  \t ", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}
