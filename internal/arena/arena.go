// Package arena provides a scoped, aligned, bump allocator for hot-path
// structures owned by the engine. It hides low-level region management
// behind a tiny, stable surface:
//   • New()      – construct an arena with a first region.
//   • Allocate() – bump-allocate raw bytes, growing to a new region when the
//                  current one cannot satisfy the request.
//   • Reset()    – invalidate every previously returned pointer and reclaim
//                  all regions as one empty region.
//   • Drop()     – release every region; the arena is unusable after.
//
// Concurrency
// -----------
// Arena is *not* thread-safe; each goroutine that allocates needs its own, or
// must serialise access externally (the engine facade does this with its
// single-writer load-phase contract).
//
// ⚠️  DISCLAIMER  ----------------------------------------------
// Arena-allocated data does not outlive its arena: nothing returned by
// Allocate/AllocBytes/AllocString may be retained past Reset or Drop on the
// Arena that produced it.
// ---------------------------------------------------------------
package arena

import "github.com/chatman-io/s7tengine/internal/unsafehelpers"

const (
    // defaultAlign is the alignment applied to every allocation unless the
    // caller asks for cache-line alignment.
    defaultAlign uintptr = 8
    // cacheLineAlign is used for structures explicitly marked cache-line
    // sensitive (e.g. BitSet word blocks, SHACL violation counters).
    cacheLineAlign uintptr = 64

    // minRegionBytes is the smallest region size the arena will create; every
    // region size is a power of two, per the arena's growth rule.
    minRegionBytes = 4096
)

// region is one power-of-two-sized backing allocation. Regions are never
// relocated: once created, the slice's backing array stays put for the
// lifetime of the Arena, so pointers handed out from it remain valid until
// Reset or Drop runs.
type region struct {
    id   uint32
    buf  []byte
    used int
}

func newRegion(id uint32, size int) *region {
    return &region{id: id, buf: make([]byte, size)}
}

func (r *region) remaining() int { return len(r.buf) - r.used }

// Arena is a bump allocator over a growth-only ring of regions. A single
// allocation that exceeds the active region's remaining capacity grows the
// arena to a fresh region and continues; earlier regions, and every pointer
// already handed out from them, remain valid because regions are never
// relocated or freed individually — only Reset/Drop release them, together.
//
// This replaces the teacher's TTL-bounded generation ring: the engine's
// indexes are append-mostly and never capacity-evicted mid-load, so there is
// no rotation policy to port, only the ring-of-backing-allocators shape.
type Arena struct {
    regions []*region
    active  int // index into regions of the region currently being filled
    nextID  uint32
    total   int64 // bytes requested across the arena's lifetime, for telemetry

    // onGrow, when non-nil, is invoked with the new region's id and size
    // every time grow appends a region. Left nil by default so a caller
    // that never sets it pays nothing; the engine facade wires this to its
    // injected logger so region growth is an observable lifecycle event.
    onGrow func(regionID uint32, size int)
}

// New constructs an arena with one region sized to at least capacityHint
// bytes (rounded up to the next power-of-two multiple of minRegionBytes).
func New(capacityHint int) *Arena {
    size := minRegionBytes
    for size < capacityHint {
        size *= 2
    }
    a := &Arena{}
    a.regions = append(a.regions, newRegion(a.nextID, size))
    a.nextID++
    return a
}

// Allocate reserves size zeroed bytes aligned to 8 (or 64 when cacheLine is
// true) and returns a slice viewing that memory. The arena fails a request
// only by growing — it never returns nil for a positive size.
func (a *Arena) Allocate(size int, cacheLine bool) []byte {
    if size <= 0 {
        return nil
    }
    align := defaultAlign
    if cacheLine {
        align = cacheLineAlign
    }

    r := a.regions[a.active]
    aligned := alignOffset(r.used, align)
    need := aligned - r.used + size

    if need > r.remaining() {
        a.grow(size + int(align))
        r = a.regions[a.active]
        aligned = alignOffset(r.used, align)
    }

    start := aligned
    end := start + size
    out := r.buf[start:end:end]
    r.used = end
    a.total += int64(size)
    return out
}

// AllocBytes copies buf into the arena and returns the arena-owned copy.
func (a *Arena) AllocBytes(buf []byte) []byte {
    dst := a.Allocate(len(buf), false)
    copy(dst, buf)
    return dst
}

// AllocString copies s into the arena and returns a zero-copy string view of
// the arena-owned bytes. The returned string is valid until Reset/Drop.
func (a *Arena) AllocString(s string) string {
    dst := a.AllocBytes(unsafehelpers.StringToBytes(s))
    return unsafehelpers.BytesToString(dst)
}

// grow appends a new region at least large enough to satisfy atLeast bytes.
// Earlier regions are left untouched: every pointer handed out before grow
// remains valid because regions are never relocated or freed individually.
func (a *Arena) grow(atLeast int) {
    size := minRegionBytes
    for size < atLeast {
        size *= 2
    }
    id := a.nextID
    a.regions = append(a.regions, newRegion(id, size))
    a.nextID++
    a.active = len(a.regions) - 1
    if a.onGrow != nil {
        a.onGrow(id, size)
    }
}

// SetGrowthHook installs fn to be called every time the arena appends a new
// region. Passing nil disables the hook. Not safe to call concurrently with
// Allocate.
func (a *Arena) SetGrowthHook(fn func(regionID uint32, size int)) {
    a.onGrow = fn
}

// Reset invalidates every previously returned pointer and collapses the
// arena back to a single empty region sized to the sum of all regions it had
// grown to (rounded up to a power of two), so a caller that reuses the arena
// across many load-then-reset passes does not pay for repeated region growth.
func (a *Arena) Reset() {
    total := 0
    for _, r := range a.regions {
        total += len(r.buf)
    }
    size := minRegionBytes
    for size < total {
        size *= 2
    }
    a.regions = []*region{newRegion(a.nextID, size)}
    a.nextID++
    a.active = 0
    a.total = 0
}

// Drop releases every region. The Arena must not be used after Drop except
// through a fresh call to New.
func (a *Arena) Drop() {
    a.regions = nil
    a.active = 0
}

// BytesAllocated returns the cumulative number of bytes requested through
// Allocate/AllocBytes/AllocString since the last Reset, for telemetry.
func (a *Arena) BytesAllocated() int64 { return a.total }

// RegionCount reports how many backing regions currently exist; used by
// telemetry to mirror the teacher's arena_bytes gauge at a coarser grain.
func (a *Arena) RegionCount() int { return len(a.regions) }

func alignOffset(off int, align uintptr) int {
    return int(unsafehelpers.AlignUp(uintptr(off), align))
}
