package viewer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/graphscope/pkg/render"
)

func TestLoop_StartStopIdempotent(t *testing.T) {
	l := NewLoop(newSession(), 200, nil)
	assert.False(t, l.Running())

	require.True(t, l.Start(context.Background()))
	assert.False(t, l.Start(context.Background()), "second start is refused")
	assert.True(t, l.Running())

	l.Stop()
	assert.False(t, l.Running())
	l.Stop()

	require.True(t, l.Start(context.Background()), "a stopped loop can be restarted")
	l.Stop()
}

func TestLoop_TicksAndFrames(t *testing.T) {
	var frames atomic.Int64
	s := newSession()
	l := NewLoop(s, 500, func(f render.Frame) {
		if len(f.Nodes) > 0 {
			frames.Add(1)
		}
	})
	require.True(t, l.Start(context.Background()))
	defer l.Stop()

	require.NoError(t, l.Do(context.Background(), func(s *Session) { s.Load(company()) }))
	assert.Eventually(t, func() bool { return frames.Load() >= 5 }, 2*time.Second, 5*time.Millisecond)

	var alpha float64
	require.NoError(t, l.Do(context.Background(), func(s *Session) { alpha = s.Alpha() }))
	assert.Less(t, alpha, 1.0, "the simulation advanced")
}

func TestLoop_NoFramesAfterStop(t *testing.T) {
	var frames atomic.Int64
	l := NewLoop(newSession(), 500, func(render.Frame) { frames.Add(1) })
	require.True(t, l.Start(context.Background()))
	assert.Eventually(t, func() bool { return frames.Load() > 0 }, 2*time.Second, 5*time.Millisecond)

	l.Stop()
	after := frames.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, frames.Load())
}

func TestLoop_PostWhenStopped(t *testing.T) {
	l := NewLoop(newSession(), 60, nil)
	assert.False(t, l.Post(func(*Session) {}))
	assert.ErrorIs(t, l.Do(context.Background(), func(*Session) {}), ErrLoopStopped)
}

func TestLoop_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLoop(newSession(), 60, nil)
	require.True(t, l.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool {
		return l.Do(context.Background(), func(*Session) {}) != nil
	}, time.Second, 5*time.Millisecond)
	l.Stop()
}

func TestLoop_EventsRunInOrder(t *testing.T) {
	l := NewLoop(newSession(), 60, nil)
	require.True(t, l.Start(context.Background()))
	defer l.Stop()

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		require.True(t, l.Post(func(*Session) { got = append(got, i) }))
	}
	require.NoError(t, l.Do(context.Background(), func(*Session) {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}
