package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/graphscope/pkg/graph"
)

func payload(ids ...string) *graph.Payload {
	p := &graph.Payload{Edges: []graph.PayloadEdge{}}
	for _, id := range ids {
		p.Nodes = append(p.Nodes, graph.PayloadNode{ID: id, Label: graph.NodeTeam, Name: id})
	}
	return p
}

func TestArchive_SaveLoad(t *testing.T) {
	a := NewArchive(NewLocalStore(t.TempDir()), 0)
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, 1, payload("a")))
	require.NoError(t, a.Save(ctx, 2, payload("a", "b")))

	p, err := a.Load(ctx, 1)
	require.NoError(t, err)
	require.Len(t, p.Nodes, 1)
	assert.Equal(t, "a", p.Nodes[0].ID)

	revs, err := a.Revisions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, revs)

	_, err = a.Load(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchive_Prune(t *testing.T) {
	a := NewArchive(NewLocalStore(t.TempDir()), 2)
	ctx := context.Background()

	for rev := int64(1); rev <= 12; rev++ {
		require.NoError(t, a.Save(ctx, rev, payload("n")))
	}
	revs, err := a.Revisions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, revs, "numeric, not lexical, order")
}

func TestArchive_Empty(t *testing.T) {
	a := NewArchive(NewLocalStore(t.TempDir()), 3)
	revs, err := a.Revisions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, revs)
}
