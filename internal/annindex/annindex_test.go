package annindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentcore/ramengine/internal/model"
)

func TestIndex_UpsertQueryDelete(t *testing.T) {
	idx := New()
	enabled, _ := idx.Status()
	require.True(t, enabled, "expected a freshly constructed index to be enabled")

	ctx := context.Background()
	global := model.ScopeGlobal
	require.NoError(t, idx.Upsert(ctx, "a", model.Vector{1, 0, 0}, model.ScopeGlobal, model.KindNote))
	require.NoError(t, idx.Upsert(ctx, "b", model.Vector{0, 1, 0}, model.ScopeGlobal, model.KindNote))

	neighbors, err := idx.Query(ctx, model.Vector{1, 0, 0}, 2, &global)
	require.NoError(t, err)
	require.NotEmpty(t, neighbors)
	require.Equal(t, "a", neighbors[0].ID, "expected nearest neighbor \"a\" first")

	require.NoError(t, idx.Delete(ctx, "a"))
	neighbors, err = idx.Query(ctx, model.Vector{1, 0, 0}, 2, &global)
	require.NoError(t, err)
	for _, n := range neighbors {
		require.NotEqual(t, "a", n.ID, "expected \"a\" to be gone after delete")
	}
}

func TestIndex_UpsertReplacesById(t *testing.T) {
	idx := New()
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, "a", model.Vector{1, 0, 0}, model.ScopeGlobal, model.KindNote))
	require.NoError(t, idx.Upsert(ctx, "a", model.Vector{0, 0, 1}, model.ScopeGlobal, model.KindNote), "re-upsert same id")

	global := model.ScopeGlobal
	neighbors, err := idx.Query(ctx, model.Vector{0, 0, 1}, 1, &global)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	require.Equal(t, "a", neighbors[0].ID)
	require.LessOrEqual(t, neighbors[0].Distance, 0.01, "expected replaced vector to be the nearest match")
}

func TestIndex_DisabledIsNoOp(t *testing.T) {
	idx := NewDisabled("test disabled")
	enabled, msg := idx.Status()
	require.False(t, enabled)
	require.Equal(t, "test disabled", msg)

	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, "a", model.Vector{1, 0, 0}, model.ScopeGlobal, model.KindNote), "expected no-op success on disabled index")

	neighbors, err := idx.Query(ctx, model.Vector{1, 0, 0}, 5, nil)
	require.NoError(t, err)
	require.Nil(t, neighbors)
}

func TestIndex_QueryEmptyCollection(t *testing.T) {
	idx := New()
	neighbors, err := idx.Query(context.Background(), model.Vector{1, 0, 0}, 5, nil)
	require.NoError(t, err)
	require.Nil(t, neighbors)
}
