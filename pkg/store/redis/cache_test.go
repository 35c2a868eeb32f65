package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/graphscope/pkg/graph"
	"github.com/rmax-ai/graphscope/pkg/store"
)

// fakeStore counts calls so tests can tell hits from misses. afterLoad, when
// set, runs once after a load has read its payload.
type fakeStore struct {
	mu        sync.Mutex
	payload   *graph.Payload
	rev       int64
	loads     int
	err       error
	afterLoad func()
}

func (f *fakeStore) LoadPayload(context.Context) (*graph.Payload, error) {
	f.mu.Lock()
	f.loads++
	p, err := f.payload, f.err
	hook := f.afterLoad
	f.afterLoad = nil
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, store.ErrNotFound
	}
	if hook != nil {
		hook()
	}
	return p, nil
}

func (f *fakeStore) ReplacePayload(_ context.Context, p *graph.Payload) (store.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payload = p
	f.rev++
	return store.Info{Revision: f.rev, Nodes: len(p.Nodes), Edges: len(p.Edges)}, nil
}

func (f *fakeStore) Info(context.Context) (store.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return store.Info{Revision: f.rev}, nil
}

func (f *fakeStore) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func payload(names ...string) *graph.Payload {
	p := &graph.Payload{}
	for _, n := range names {
		p.Nodes = append(p.Nodes, graph.PayloadNode{ID: n, Label: graph.NodeMember, Name: n})
	}
	return p
}

func setup(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *fakeStore, *Cache) {
	t.Helper()
	return setupWith(t, miniredis.RunT(t), ttl)
}

func setupWith(t *testing.T, mr *miniredis.Miniredis, ttl time.Duration) (*miniredis.Miniredis, *fakeStore, *Cache) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	backing := &fakeStore{payload: payload("ada", "bob"), rev: 7}
	return mr, backing, NewCache(client, backing, ttl, nil)
}

func TestCache_ReadThrough(t *testing.T) {
	mr, backing, c := setup(t, time.Minute)
	ctx := context.Background()

	p, err := c.LoadPayload(ctx)
	require.NoError(t, err)
	assert.Len(t, p.Nodes, 2)
	assert.Equal(t, 1, backing.loadCount())
	assert.True(t, mr.Exists(Key(7)))

	p, err = c.LoadPayload(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", p.Nodes[1].Name)
	assert.Equal(t, 1, backing.loadCount(), "second read is a cache hit")
}

func TestCache_TTLExpiry(t *testing.T) {
	mr, backing, c := setup(t, 30*time.Second)
	ctx := context.Background()

	_, err := c.LoadPayload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mr.TTL(Key(7)))

	mr.FastForward(31 * time.Second)
	_, err = c.LoadPayload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backing.loadCount())
}

func TestCache_ReplaceInvalidates(t *testing.T) {
	mr, backing, c := setup(t, 0)
	ctx := context.Background()

	_, err := c.LoadPayload(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(Key(7)))

	info, err := c.ReplacePayload(ctx, payload("cy"))
	require.NoError(t, err)
	assert.Equal(t, 1, info.Nodes)
	assert.Equal(t, int64(8), info.Revision)
	assert.False(t, mr.Exists(Key(7)))

	p, err := c.LoadPayload(ctx)
	require.NoError(t, err)
	require.Len(t, p.Nodes, 1)
	assert.Equal(t, "cy", p.Nodes[0].ID)
	assert.Equal(t, 2, backing.loadCount())
	assert.True(t, mr.Exists(Key(8)))
}

func TestCache_ReplaceDuringFillIsNotCached(t *testing.T) {
	mr, backing, c := setup(t, 0)
	ctx := context.Background()

	// A writer commits while the first reader is still loading revision 7.
	backing.afterLoad = func() {
		_, err := c.ReplacePayload(ctx, payload("cy"))
		require.NoError(t, err)
	}
	p, err := c.LoadPayload(ctx)
	require.NoError(t, err)
	assert.Len(t, p.Nodes, 2, "the reader still gets what it read")
	assert.False(t, mr.Exists(Key(7)), "the replaced revision is not cached")
	assert.False(t, mr.Exists(Key(8)))

	p, err = c.LoadPayload(ctx)
	require.NoError(t, err)
	require.Len(t, p.Nodes, 1)
	assert.Equal(t, "cy", p.Nodes[0].ID)
	assert.True(t, mr.Exists(Key(8)))

	p, err = c.LoadPayload(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cy", p.Nodes[0].ID)
	assert.Equal(t, 2, backing.loadCount(), "third read is a hit on the new revision")
}

func TestCache_InvalidateDropsAllRevisions(t *testing.T) {
	mr, _, c := setup(t, 0)
	require.NoError(t, mr.Set(Key(3), "{}"))
	require.NoError(t, mr.Set(Key(4), "{}"))
	require.NoError(t, mr.Set("unrelated", "x"))

	require.NoError(t, c.Invalidate(context.Background()))
	assert.False(t, mr.Exists(Key(3)))
	assert.False(t, mr.Exists(Key(4)))
	assert.True(t, mr.Exists("unrelated"))
}

func TestCache_CorruptEntryFallsBack(t *testing.T) {
	mr, backing, c := setup(t, 0)
	require.NoError(t, mr.Set(Key(7), "{garbage"))

	p, err := c.LoadPayload(context.Background())
	require.NoError(t, err)
	assert.Len(t, p.Nodes, 2)
	assert.Equal(t, 1, backing.loadCount())

	v, err := mr.Get(Key(7))
	require.NoError(t, err)
	assert.Contains(t, v, `"ada"`, "entry is rewritten from the store")
}

func TestCache_RedisDownFallsBack(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	_, backing, c := setupWith(t, mr, 0)
	mr.Close()

	p, err := c.LoadPayload(context.Background())
	require.NoError(t, err)
	assert.Len(t, p.Nodes, 2)
	assert.Equal(t, 1, backing.loadCount())
	assert.Error(t, c.Ping(context.Background()))
}

func TestCache_MissingDatasetNotCached(t *testing.T) {
	mr, backing, c := setup(t, 0)
	backing.payload = nil

	_, err := c.LoadPayload(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.False(t, mr.Exists(Key(7)))

	backing.err = errors.New("disk on fire")
	_, err = c.LoadPayload(context.Background())
	assert.EqualError(t, err, "disk on fire")
}

func TestCache_InfoPassesThrough(t *testing.T) {
	_, _, c := setup(t, 0)
	info, err := c.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.Revision)
}
