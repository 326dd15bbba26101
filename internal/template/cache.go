package template

import (
    "sync"

    "golang.org/x/sync/singleflight"
)

// Cache wraps Compile with a singleflight.Group keyed by the raw template
// source, so a process serving many renders of the same few named
// templates compiles each exactly once even under concurrent first-use —
// the template-engine analogue of the teacher's GetOrLoad.
type Cache struct {
    maxVariableBytes int

    mu   sync.RWMutex
    byID map[string]*CompiledTemplate

    g singleflight.Group
}

// NewCache constructs a template cache. maxVariableBytes is passed through
// to Compile for every template this cache compiles.
func NewCache(maxVariableBytes int) *Cache {
    return &Cache{
        maxVariableBytes: maxVariableBytes,
        byID:             make(map[string]*CompiledTemplate),
    }
}

// GetOrCompile returns the cached CompiledTemplate for src, compiling it
// exactly once across all concurrent first-use callers.
func (c *Cache) GetOrCompile(src string) (*CompiledTemplate, error) {
    c.mu.RLock()
    if ct, ok := c.byID[src]; ok {
        c.mu.RUnlock()
        return ct, nil
    }
    c.mu.RUnlock()

    v, err, _ := c.g.Do(src, func() (any, error) {
        c.mu.RLock()
        cached, ok := c.byID[src]
        c.mu.RUnlock()
        if ok {
            return cached, nil
        }
        ct, err := Compile(src, c.maxVariableBytes)
        if err != nil {
            return nil, err
        }
        c.mu.Lock()
        c.byID[src] = ct
        c.mu.Unlock()
        return ct, nil
    })
    if err != nil {
        return nil, err
    }
    return v.(*CompiledTemplate), nil
}

// Len returns the number of distinct templates compiled so far.
func (c *Cache) Len() int {
    c.mu.RLock()
    defer c.mu.RUnlock()
    return len(c.byID)
}
