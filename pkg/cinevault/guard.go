package cinevault

import (
	"context"
	"sync"
	"sync/atomic"
)

// callGuard serializes mutating entry points and detects reentrancy. Calls
// from independent contexts queue on the mutex, so operations on shared state
// are totally ordered. A nested call carrying a context already inside a
// guarded section fails immediately with ErrReentrantCall instead of
// deadlocking: external collaborators (registry bridge, event sinks) receive
// the guarded context, so any callback into the service through it is caught.
type callGuard struct {
	mu sync.Mutex
}

type guardKey struct{}

// enter acquires the guard. The returned context must be passed to any
// downstream call made while the guard is held; the returned release func
// must run on every exit path.
func (g *callGuard) enter(ctx context.Context) (context.Context, func(), error) {
	if ctx.Value(guardKey{}) != nil {
		return nil, nil, ErrReentrantCall
	}
	g.mu.Lock()
	return context.WithValue(ctx, guardKey{}, struct{}{}), g.mu.Unlock, nil
}

// pauseSwitch is the shared boolean gate blocking every mutating entry point
// while engaged.
type pauseSwitch struct {
	engaged atomic.Bool
}

func (p *pauseSwitch) pause()         { p.engaged.Store(true) }
func (p *pauseSwitch) unpause()       { p.engaged.Store(false) }
func (p *pauseSwitch) isPaused() bool { return p.engaged.Load() }
