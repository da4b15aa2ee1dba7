// Package docstoretest holds the behavior every docstore backend must share.
// Backend test packages call Run with a constructor for a fresh, empty store.
package docstoretest

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name      string     `bson:"name"`
	Email     string     `bson:"email,omitempty"`
	N         int        `bson:"n"`
	Tags      []string   `bson:"tags,omitempty"`
	Nested    nested     `bson:"nested"`
	CreatedAt *time.Time `bson:"createdAt,omitempty"`
	UpdatedAt *time.Time `bson:"updatedAt,omitempty"`
}

type nested struct {
	A string `bson:"a,omitempty"`
	B string `bson:"b,omitempty"`
}

// Run exercises a backend. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Run("InsertGet", func(t *testing.T) { testInsertGet(t, newStore(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("MergeNested", func(t *testing.T) { testMergeNested(t, newStore(t)) })
	t.Run("MergeMissing", func(t *testing.T) { testMergeMissing(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("FindEqualAndPrefix", func(t *testing.T) { testFindEqualAndPrefix(t, newStore(t)) })
	t.Run("FindOrderStartAfterLimit", func(t *testing.T) { testFindOrder(t, newStore(t)) })
	t.Run("FindRangeSkipsMissingField", func(t *testing.T) { testFindRangeSkipsMissingField(t, newStore(t)) })
	t.Run("FindByIDDescending", func(t *testing.T) { testFindByIDDescending(t, newStore(t)) })
	t.Run("IndexMissing", func(t *testing.T) { testIndexMissing(t, newStore(t)) })
	t.Run("UniqueIndex", func(t *testing.T) { testUniqueIndex(t, newStore(t)) })
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

func testInsertGet(t *testing.T, s docstore.Store) {
	c := s.Collection("things")
	before := time.Now().Add(-time.Minute)

	id, err := c.Insert(ctx(t), docstore.Doc{
		"name":      "alpha",
		"n":         3,
		"tags":      []string{"x", "y"},
		"nested":    map[string]any{"a": "1"},
		"createdAt": docstore.ServerTime,
		"updatedAt": docstore.ServerTime,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	snap, err := c.Get(ctx(t), id)
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID())

	var got item
	require.NoError(t, snap.Decode(&got))
	assert.Equal(t, "alpha", got.Name)
	assert.Equal(t, 3, got.N)
	assert.Equal(t, []string{"x", "y"}, got.Tags)
	assert.Equal(t, "1", got.Nested.A)
	require.NotNil(t, got.CreatedAt)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.CreatedAt.After(before), "createdAt should be stamped by the store")
}

func testGetMissing(t *testing.T, s docstore.Store) {
	c := s.Collection("things")
	_, err := c.Insert(ctx(t), docstore.Doc{"name": "present"})
	require.NoError(t, err)

	_, err = c.Get(ctx(t), "000000000000000000000000")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	_, err = c.Get(ctx(t), "no-such-id")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func testMergeNested(t *testing.T, s docstore.Store) {
	c := s.Collection("things")
	id, err := c.Insert(ctx(t), docstore.Doc{
		"name":   "alpha",
		"n":      1,
		"nested": map[string]any{"a": "1", "b": "2"},
	})
	require.NoError(t, err)

	err = c.Merge(ctx(t), id, docstore.Doc{
		"n":         2,
		"nested":    map[string]any{"b": "changed"},
		"updatedAt": docstore.ServerTime,
	})
	require.NoError(t, err)

	snap, err := c.Get(ctx(t), id)
	require.NoError(t, err)
	var got item
	require.NoError(t, snap.Decode(&got))
	assert.Equal(t, "alpha", got.Name, "untouched key must survive a merge")
	assert.Equal(t, 2, got.N)
	assert.Equal(t, "1", got.Nested.A, "sibling nested key must survive a merge")
	assert.Equal(t, "changed", got.Nested.B)
	assert.NotNil(t, got.UpdatedAt)
	assert.Nil(t, got.CreatedAt)
}

func testMergeMissing(t *testing.T, s docstore.Store) {
	c := s.Collection("things")
	_, err := c.Insert(ctx(t), docstore.Doc{"name": "present"})
	require.NoError(t, err)

	err = c.Merge(ctx(t), "000000000000000000000000", docstore.Doc{"name": "x"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func testDelete(t *testing.T, s docstore.Store) {
	c := s.Collection("things")
	id, err := c.Insert(ctx(t), docstore.Doc{"name": "doomed"})
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx(t), id))
	_, err = c.Get(ctx(t), id)
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	assert.NoError(t, c.Delete(ctx(t), id), "deleting a missing id is not an error")
}

func insertNames(t *testing.T, c docstore.Collection, names ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(names))
	for _, n := range names {
		id, err := c.Insert(ctx(t), docstore.Doc{"name": n, "email": n + "@x.com"})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func names(t *testing.T, snaps []docstore.Snapshot) []string {
	t.Helper()
	out := make([]string, 0, len(snaps))
	for _, s := range snaps {
		var it item
		require.NoError(t, s.Decode(&it))
		out = append(out, it.Name)
	}
	return out
}

func testFindEqualAndPrefix(t *testing.T, s docstore.Store) {
	c := s.Collection("things")
	insertNames(t, c, "ana", "anabel", "andres", "bob", "an", "ana\U0001F600")

	got, err := c.Find(ctx(t), docstore.Query{Where: docstore.Equal("name", "ana"), OrderBy: "name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ana"}, names(t, got))

	got, err = c.Find(ctx(t), docstore.Query{Where: docstore.Prefix("name", "ana"), OrderBy: "name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "anabel", "ana\U0001F600"}, names(t, got),
		"a prefix followed by an astral rune is still inside the range")

	got, err = c.Find(ctx(t), docstore.Query{Where: docstore.Prefix("name", "zz"), OrderBy: "name"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testFindOrder(t *testing.T, s docstore.Store) {
	c := s.Collection("things")
	insertNames(t, c, "d", "b", "e", "a", "c")

	got, err := c.Find(ctx(t), docstore.Query{OrderBy: "email", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names(t, got))

	got, err = c.Find(ctx(t), docstore.Query{OrderBy: "email", StartAfter: "b@x.com", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, names(t, got))

	got, err = c.Find(ctx(t), docstore.Query{OrderBy: "email", StartAfter: "d@x.com", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, names(t, got))

	got, err = c.Find(ctx(t), docstore.Query{OrderBy: "email", Descending: true, StartAfter: "c@x.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names(t, got))
}

func testFindRangeSkipsMissingField(t *testing.T, s docstore.Store) {
	c := s.Collection("things")
	for _, n := range []string{"legacy1", "legacy2"} {
		_, err := c.Insert(ctx(t), docstore.Doc{"name": n})
		require.NoError(t, err)
	}
	_, err := c.Insert(ctx(t), docstore.Doc{"name": "blank", "email": ""})
	require.NoError(t, err)
	insertNames(t, c, "b", "a")

	where := []docstore.Cond{{Field: "email", Op: docstore.Gte, Value: ""}}
	got, err := c.Find(ctx(t), docstore.Query{Where: where, OrderBy: "email"})
	require.NoError(t, err)
	assert.Equal(t, []string{"blank", "a", "b"}, names(t, got))

	got, err = c.Find(ctx(t), docstore.Query{Where: where, OrderBy: "email", StartAfter: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names(t, got))
}

func testFindByIDDescending(t *testing.T, s docstore.Store) {
	c := s.Collection("things")
	ids := insertNames(t, c, "first", "second", "third")

	got, err := c.Find(ctx(t), docstore.Query{Descending: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second"}, names(t, got))
	assert.Equal(t, ids[2], got[0].ID())

	got, err = c.Find(ctx(t), docstore.Query{StartAfter: ids[0]})
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "third"}, names(t, got))
}

func testIndexMissing(t *testing.T, s docstore.Store) {
	c := s.Collection("things")
	require.NoError(t, c.EnsureIndexes(ctx(t), []docstore.IndexSpec{
		{Name: "idx_things_name", Field: "name"},
	}))
	insertNames(t, c, "ana")

	got, err := c.Find(ctx(t), docstore.Query{
		Where: docstore.Equal("name", "ana"), OrderBy: "name", Index: "idx_things_name",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ana"}, names(t, got))

	_, err = c.Find(ctx(t), docstore.Query{
		Where: docstore.Equal("name", "ana"), OrderBy: "name", Index: "idx_things_nope",
	})
	assert.ErrorIs(t, err, docstore.ErrIndexMissing)
}

func testUniqueIndex(t *testing.T, s docstore.Store) {
	c := s.Collection("things")
	specs := []docstore.IndexSpec{{Name: "uniq_things_email", Field: "email", Unique: true}}
	require.NoError(t, c.EnsureIndexes(ctx(t), specs))
	require.NoError(t, c.EnsureIndexes(ctx(t), specs), "ensuring twice is a no-op")

	_, err := c.Insert(ctx(t), docstore.Doc{"email": "a@x.com"})
	require.NoError(t, err)
	_, err = c.Insert(ctx(t), docstore.Doc{"email": "a@x.com"})
	assert.ErrorIs(t, err, docstore.ErrDuplicate)
}
