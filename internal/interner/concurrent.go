package interner

// concurrent.go layers a singleflight-deduped convenience over Interner for
// bulk loaders that shard a source document across goroutines and race to
// intern the same not-yet-seen string before the engine's single-writer
// add_triple contract kicks in. It does not make Interner itself safe for
// unsynchronised concurrent writers: every mint still runs through one
// goroutine at a time, serialised per distinct text by the singleflight
// group, with a mutex protecting the shared table.

import (
    "sync"

    "golang.org/x/sync/singleflight"
)

// ConcurrentInterner wraps an Interner so that concurrent callers interning
// the same text converge on a single mint and a single Id, mirroring the
// teacher's GetOrLoad thundering-herd protection in loader.go.
type ConcurrentInterner struct {
    mu    sync.Mutex
    in    *Interner
    group singleflight.Group
}

// NewConcurrent wraps in for concurrent use during a sharded load phase.
func NewConcurrent(in *Interner) *ConcurrentInterner {
    return &ConcurrentInterner{in: in}
}

// Intern dedupes concurrent first-sight interns of the same text; callers
// interning already-known text pay only the singleflight key computation and
// a short critical section.
func (c *ConcurrentInterner) Intern(text []byte) (uint32, error) {
    key := string(text)
    v, err, _ := c.group.Do(key, func() (any, error) {
        c.mu.Lock()
        defer c.mu.Unlock()
        return c.in.Intern(text)
    })
    if err != nil {
        return 0, err
    }
    return v.(uint32), nil
}

// Resolve is a thread-safe passthrough to the wrapped Interner; it takes the
// same mutex as Intern, so it is safe to call concurrently with Intern.
func (c *ConcurrentInterner) Resolve(id uint32) (string, error) {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.in.Resolve(id)
}
