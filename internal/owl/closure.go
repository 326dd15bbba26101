// Package owl implements the engine's limited OWL-style class reasoning:
// a square subclass bit matrix with Floyd-Warshall transitive closure, plus
// a handful of property-characteristic flag bitsets consulted without
// inference. Closure runs once after load and is not subject to the 7-tick
// budget; is_subclass and the characteristic-flag queries are single bit
// tests and are.
package owl

import (
    "errors"
    "fmt"

    "github.com/chatman-io/s7tengine/internal/bitset"
)

// ErrInvalidID is returned by DeclareSubclass when either Id is the null
// sentinel.
var ErrInvalidID = errors.New("owl: invalid id")

// PropertyFlag names one of the characteristic bitsets tracked alongside
// the subclass matrix.
type PropertyFlag int

const (
    Transitive PropertyFlag = iota
    Symmetric
    Functional
    InverseFunctional
    numFlags
)

// Closure owns the subclass matrix and the property-characteristic flags.
// It grows lazily as classes/properties with larger Ids are declared.
type Closure struct {
    subclass []*bitset.BitSet // subclass[c1] has bit c2 set iff c1 <= c2
    flags    [numFlags]*bitset.BitSet
    declared map[uint32]struct{} // classes that appeared in a subclass edge
}

// New constructs an empty closure.
func New() *Closure {
    c := &Closure{declared: make(map[uint32]struct{})}
    for i := range c.flags {
        c.flags[i] = bitset.New(0)
    }
    return c
}

func (c *Closure) ensureRow(id uint32) {
    for uint32(len(c.subclass)) <= id {
        c.subclass = append(c.subclass, bitset.New(int(id)+1))
    }
}

// DeclareSubclass records that child is an (immediate) subclass of parent.
// Both Ids are marked as "declared" for invariant 6 (every class ever named
// in a subclass edge gets a reflexive row after closure).
func (c *Closure) DeclareSubclass(child, parent uint32) error {
    if child == 0 || parent == 0 {
        return fmt.Errorf("%w: (%d,%d)", ErrInvalidID, child, parent)
    }
    c.ensureRow(child)
    c.ensureRow(parent)
    c.subclass[child].Set(int(parent))
    c.declared[child] = struct{}{}
    c.declared[parent] = struct{}{}
    return nil
}

// DeclareFlag marks property p as having characteristic f.
func (c *Closure) DeclareFlag(p uint32, f PropertyFlag) {
    if int(f) >= len(c.flags) {
        return
    }
    c.flags[f].Set(int(p))
}

// HasFlag reports whether property p was declared with characteristic f; a
// single bit test, consulted without any inference.
func (c *Closure) HasFlag(p uint32, f PropertyFlag) bool {
    if int(f) >= len(c.flags) {
        return false
    }
    return c.flags[f].Test(int(p))
}

// MaterializeClosure computes the transitive, reflexive completion of the
// subclass relation with Floyd-Warshall over the bit matrix: for every
// intermediate class b, every row a with subclass[a][b] set absorbs all of
// row b's bits. Runs once at load time; cubic in the number of classes, not
// subject to the 7-tick budget.
func (c *Closure) MaterializeClosure() {
    n := len(c.subclass)
    for b := 0; b < n; b++ {
        rowB := c.subclass[b]
        for a := 0; a < n; a++ {
            if a != b && c.subclass[a].Test(b) {
                orInto(c.subclass[a], rowB)
            }
        }
    }
    for id := range c.declared {
        c.ensureRow(id)
        c.subclass[id].Set(int(id)) // reflexive: a is always a subclass of itself
    }
}

// IsSubclass reports subclass[a][class]; a single bit test.
func (c *Closure) IsSubclass(a, class uint32) bool {
    if int(a) >= len(c.subclass) {
        return false
    }
    return c.subclass[a].Test(int(class))
}

// ClassCount returns the number of distinct classes that have appeared in
// at least one declared subclass edge, for telemetry.
func (c *Closure) ClassCount() int {
    return len(c.declared)
}

// orInto ORs src's set bits into dst in place. bitset.BitSet exposes no
// native Or operation since nothing else in the engine needs one; this is
// the only caller, so a ForEach-driven Set loop keeps BitSet's surface
// minimal rather than growing it for a single once-at-load consumer.
func orInto(dst, src *bitset.BitSet) {
    src.ForEach(func(i int) { dst.Set(i) })
}
