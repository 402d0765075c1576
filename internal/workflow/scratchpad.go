package workflow

import (
	"context"
	"sync"
)

// Scratchpad is the engine's own per-execution key/value store,
// distinct from the caller-supplied State: it is created fresh at the
// start of every Execute call and discarded at the end, for node
// functions that need execution-scoped bookkeeping without polluting
// the state object the caller inspects afterward.
type Scratchpad struct {
	mu   sync.Mutex
	data map[string]any
}

func newScratchpad() *Scratchpad {
	return &Scratchpad{data: make(map[string]any)}
}

// Set writes value under key.
func (sp *Scratchpad) Set(key string, value any) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.data[key] = value
}

// Get returns key's value and whether it is set.
func (sp *Scratchpad) Get(key string) (any, bool) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	v, ok := sp.data[key]
	return v, ok
}

type scratchpadKey struct{}

func withScratchpad(ctx context.Context, sp *Scratchpad) context.Context {
	return context.WithValue(ctx, scratchpadKey{}, sp)
}

// ScratchpadFromContext returns the Scratchpad Execute created for the
// current run. It returns an empty, detached Scratchpad if called
// outside of Execute.
func ScratchpadFromContext(ctx context.Context) *Scratchpad {
	sp, ok := ctx.Value(scratchpadKey{}).(*Scratchpad)
	if !ok {
		return newScratchpad()
	}
	return sp
}
