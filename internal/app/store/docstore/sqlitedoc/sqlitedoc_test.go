package sqlitedoc_test

import (
	"context"
	"testing"

	"github.com/dalemusser/influencerhub/internal/app/store/docstore"
	"github.com/dalemusser/influencerhub/internal/app/store/docstore/docstoretest"
	"github.com/dalemusser/influencerhub/internal/app/store/docstore/sqlitedoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) docstore.Store {
	t.Helper()
	s, err := sqlitedoc.Open(sqlitedoc.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestContract(t *testing.T) {
	docstoretest.Run(t, newStore)
}

func TestRejectsUnsafeNames(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Collection(`things"; DROP TABLE x; --`).Insert(ctx, docstore.Doc{"a": 1})
	assert.Error(t, err)

	_, err = s.Collection("things").Find(ctx, docstore.Query{OrderBy: "name') OR 1=1 --"})
	assert.Error(t, err)

	_, err = s.Collection("things").Find(ctx, docstore.Query{Index: "bad name"})
	assert.Error(t, err)
}

func TestMergeIntoDocumentReadBack(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	c := s.Collection("things")

	id, err := c.Insert(ctx, docstore.Doc{"outer": map[string]any{"inner": map[string]any{"x": "1", "y": "2"}}})
	require.NoError(t, err)

	// Two merges in a row: the second reads a body the first wrote.
	require.NoError(t, c.Merge(ctx, id, docstore.Doc{"outer": map[string]any{"inner": map[string]any{"y": "3"}}}))
	require.NoError(t, c.Merge(ctx, id, docstore.Doc{"outer": map[string]any{"z": "4"}}))

	snap, err := c.Get(ctx, id)
	require.NoError(t, err)
	var got struct {
		Outer struct {
			Inner struct {
				X string `bson:"x"`
				Y string `bson:"y"`
			} `bson:"inner"`
			Z string `bson:"z"`
		} `bson:"outer"`
	}
	require.NoError(t, snap.Decode(&got))
	assert.Equal(t, "1", got.Outer.Inner.X)
	assert.Equal(t, "3", got.Outer.Inner.Y)
	assert.Equal(t, "4", got.Outer.Z)
}
