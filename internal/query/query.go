// Package query exposes the engine's pattern-query surface over a triple
// store: ask-pattern itself, the two subject enumerations by_predicate and
// by_object own it, and an optional bitset-free SIMD-style columnar filter
// for consumers that project their own flat numeric columns instead of
// going through the triple indexes at all.
package query

import (
    "github.com/chatman-io/s7tengine/internal/bitset"
    "github.com/chatman-io/s7tengine/internal/triplestore"
)

// Engine wraps a triple store with the pattern-query surface of §4.7. It
// owns no state of its own; every method is a thin forwarder onto the
// store's own indexes.
type Engine struct {
    store *triplestore.Store
}

// New constructs a pattern-query engine over store.
func New(store *triplestore.Store) *Engine {
    return &Engine{store: store}
}

// Ask answers ask-pattern(s, p, o), forwarding to the triple store (§4.4).
func (e *Engine) Ask(subj, pred, obj uint32) bool {
    return e.store.AskPattern(subj, pred, obj)
}

// SubjectsWithPredicate returns the by_predicate[p] bitset. The returned
// BitSet is owned by the store and must not be mutated by the caller.
func (e *Engine) SubjectsWithPredicate(pred uint32) *bitset.BitSet {
    return e.store.SubjectsWithPredicate(pred)
}

// SubjectsWithObject returns the by_object[o] bitset across any predicate.
func (e *Engine) SubjectsWithObject(obj uint32) *bitset.BitSet {
    return e.store.SubjectsWithObject(obj)
}

// CompareOp is a scalar comparison applied by the SIMD-style column filter.
type CompareOp int

const (
    Equal CompareOp = iota
    NotEqual
    Less
    LessOrEqual
    Greater
    GreaterOrEqual
)

func (op CompareOp) matchF32(v, scalar float32) bool {
    switch op {
    case Equal:
        return v == scalar
    case NotEqual:
        return v != scalar
    case Less:
        return v < scalar
    case LessOrEqual:
        return v <= scalar
    case Greater:
        return v > scalar
    case GreaterOrEqual:
        return v >= scalar
    default:
        return false
    }
}

func (op CompareOp) matchI32(v, scalar int32) bool {
    switch op {
    case Equal:
        return v == scalar
    case NotEqual:
        return v != scalar
    case Less:
        return v < scalar
    case LessOrEqual:
        return v <= scalar
    case Greater:
        return v > scalar
    case GreaterOrEqual:
        return v >= scalar
    default:
        return false
    }
}

// FilterResult is the outcome of a columnar filter pass: how many elements
// matched the predicate, and the sum of the matching elements' values.
type FilterResult struct {
    MatchCount int
    MaskedSum  float64
}

// FilterFloat32 scans a flat float32 column, comparing every element to
// scalar with op, and returns the matching count and masked sum. The inner
// loop is branch-light (a boolean-to-1-or-0 mask multiplied into the
// accumulator, never an `if`) and unrolled by 8 so the compiler can keep the
// working set in vector registers on platforms that auto-vectorize; there
// is no cgo or platform-specific assembly, so the routine cross-compiles
// like the rest of the engine.
func FilterFloat32(col []float32, op CompareOp, scalar float32) FilterResult {
    var count int
    var sum float64

    n := len(col)
    i := 0
    for ; i+8 <= n; i += 8 {
        for k := 0; k < 8; k++ {
            v := col[i+k]
            mask := boolToInt(op.matchF32(v, scalar))
            count += mask
            sum += float64(v) * float64(mask)
        }
    }
    for ; i < n; i++ {
        v := col[i]
        mask := boolToInt(op.matchF32(v, scalar))
        count += mask
        sum += float64(v) * float64(mask)
    }
    return FilterResult{MatchCount: count, MaskedSum: sum}
}

// FilterInt32 is FilterFloat32's int32 counterpart.
func FilterInt32(col []int32, op CompareOp, scalar int32) FilterResult {
    var count int
    var sum float64

    n := len(col)
    i := 0
    for ; i+8 <= n; i += 8 {
        for k := 0; k < 8; k++ {
            v := col[i+k]
            mask := boolToInt(op.matchI32(v, scalar))
            count += mask
            sum += float64(v) * float64(mask)
        }
    }
    for ; i < n; i++ {
        v := col[i]
        mask := boolToInt(op.matchI32(v, scalar))
        count += mask
        sum += float64(v) * float64(mask)
    }
    return FilterResult{MatchCount: count, MaskedSum: sum}
}

func boolToInt(b bool) int {
    if b {
        return 1
    }
    return 0
}
