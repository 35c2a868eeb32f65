package viewer

import (
	"context"
	"sync"
	"time"

	"github.com/rmax-ai/graphscope/pkg/render"
)

const eventBuffer = 64

// Loop drives a Session from one goroutine: posted events and frame ticks
// are executed in order and never concurrently. Only the loop goroutine may
// touch the session while the loop runs.
type Loop struct {
	session  *Session
	interval time.Duration
	onFrame  func(render.Frame)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	events chan func(*Session)
}

// NewLoop creates a stopped loop ticking at fps frames per second. onFrame
// may be nil; it runs on the loop goroutine after every tick.
func NewLoop(s *Session, fps int, onFrame func(render.Frame)) *Loop {
	if fps <= 0 {
		fps = 60
	}
	return &Loop{
		session:  s,
		interval: time.Second / time.Duration(fps),
		onFrame:  onFrame,
	}
}

// Start launches the loop. It returns false if the loop is already running.
func (l *Loop) Start(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done != nil {
		return false
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	l.events = make(chan func(*Session), eventBuffer)
	go l.run(ctx, l.done, l.events)
	return true
}

// Stop halts the loop and waits for its goroutine to exit. Stopping a
// stopped loop is a no-op. Events still queued are discarded.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done, l.events = nil, nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop goroutine is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done != nil
}

// Post queues fn to run on the loop goroutine. It returns false when the
// loop is not running or stops before accepting fn.
func (l *Loop) Post(fn func(*Session)) bool {
	l.mu.Lock()
	done, events := l.done, l.events
	l.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case events <- fn:
		return true
	case <-done:
		return false
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func(*Session)) error {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()

	finished := make(chan struct{})
	if done == nil || !l.Post(func(s *Session) {
		defer close(finished)
		fn(s)
	}) {
		return ErrLoopStopped
	}
	select {
	case <-finished:
		return nil
	case <-done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) run(ctx context.Context, done chan struct{}, events chan func(*Session)) {
	defer close(done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-events:
			fn(l.session)
		case <-ticker.C:
			l.session.Step()
			if l.onFrame != nil {
				l.onFrame(l.session.Frame())
			}
		}
	}
}
