// Package triplestore owns the triple multiset and its two hot-path
// indexes: per-predicate subject bitsets (by_predicate) and per-object
// subject bitsets (by_object). ask_pattern answers every wildcard
// combination from those two indexes alone — it never walks a triple list.
//
// A small datalayer supplement (§3 "Object-value record") additionally
// tracks, outside the two bitset indexes, the exact object set per (s, p)
// pair and an optional datatype tag per object. Neither is consulted by
// ask_pattern; both exist only to answer SHACL's exact min/max-count and
// datatype constraints, which cannot be derived from presence bits alone.
package triplestore

import (
    "errors"
    "fmt"

    "github.com/chatman-io/s7tengine/internal/bitset"
)

// ErrInvalidID is returned when add_triple is called with a zero Id in any
// position.
var ErrInvalidID = errors.New("triplestore: invalid id")

// Store is the triple store described in §4.4.
type Store struct {
    byPredicate map[uint32]*bitset.BitSet
    byObject    map[uint32]*bitset.BitSet

    // spo is the exact-object supplement: spo[s][p] lists every distinct o
    // ever added for that (s, p) pair, in insertion order.
    spo map[uint32]map[uint32][]uint32

    // objectDatatype tags an object Id with a datatype Id, when the loader
    // declared one via SetDatatype. Absent entries mean "no datatype tag".
    objectDatatype map[uint32]uint32

    // seen deduplicates (s,p,o) triples so the counter reflects the
    // cardinality of the indexed set, not the number of add_triple calls.
    seen map[[3]uint32]struct{}

    tripleCount int
    maxIDSeen   uint32
}

// New constructs an empty triple store.
func New() *Store {
    return &Store{
        byPredicate:    make(map[uint32]*bitset.BitSet),
        byObject:       make(map[uint32]*bitset.BitSet),
        spo:            make(map[uint32]map[uint32][]uint32),
        objectDatatype: make(map[uint32]uint32),
        seen:           make(map[[3]uint32]struct{}),
    }
}

// AddTriple indexes (s, p, o). It is idempotent at the index level: adding
// the same triple twice is a no-op beyond the first call and does not
// increment the triple counter a second time.
func (s *Store) AddTriple(subj, pred, obj uint32) error {
    if subj == 0 || pred == 0 || obj == 0 {
        return fmt.Errorf("%w: (%d,%d,%d)", ErrInvalidID, subj, pred, obj)
    }

    key := [3]uint32{subj, pred, obj}
    if _, dup := s.seen[key]; dup {
        return nil
    }
    s.seen[key] = struct{}{}

    if bs, ok := s.byPredicate[pred]; ok {
        bs.Set(int(subj))
    } else {
        bs := bitset.New(int(subj) + 1)
        bs.Set(int(subj))
        s.byPredicate[pred] = bs
    }

    if bs, ok := s.byObject[obj]; ok {
        bs.Set(int(subj))
    } else {
        bs := bitset.New(int(subj) + 1)
        bs.Set(int(subj))
        s.byObject[obj] = bs
    }

    byPred, ok := s.spo[subj]
    if !ok {
        byPred = make(map[uint32][]uint32)
        s.spo[subj] = byPred
    }
    byPred[pred] = append(byPred[pred], obj)

    s.tripleCount++
    for _, id := range key {
        if id > s.maxIDSeen {
            s.maxIDSeen = id
        }
    }
    return nil
}

// SetDatatype tags object Id obj with datatype Id dt, for SHACL's datatype
// constraint (§4.6). It may be called for any interned Id, independent of
// whether that Id has ever appeared as an object in a triple.
func (s *Store) SetDatatype(obj, dt uint32) {
    s.objectDatatype[obj] = dt
}

// Datatype returns the datatype Id tagged for obj, or 0 if none was set.
func (s *Store) Datatype(obj uint32) uint32 {
    return s.objectDatatype[obj]
}

// AskPattern answers ask-pattern(s, p, o) where any position may be the
// wildcard 0, following §4.4. Every case is expressible from the two
// indexes alone; this method never walks the triple list.
func (s *Store) AskPattern(subj, pred, obj uint32) bool {
    hasSubj, hasPred, hasObj := subj != 0, pred != 0, obj != 0

    switch {
    case hasSubj && hasPred && hasObj: // (s, p, o) fully bound
        bp, ok := s.byPredicate[pred]
        if !ok {
            return false
        }
        bo, ok := s.byObject[obj]
        if !ok {
            return false
        }
        return bp.Test(int(subj)) && bo.Test(int(subj))

    case !hasSubj && hasPred && !hasObj: // (_, p, _)
        bp, ok := s.byPredicate[pred]
        return ok && bp.Popcount() > 0

    case hasSubj && hasPred && !hasObj: // (s, p, _)
        bp, ok := s.byPredicate[pred]
        return ok && bp.Test(int(subj))

    case !hasSubj && hasPred && hasObj: // (_, p, o)
        bp, ok := s.byPredicate[pred]
        if !ok {
            return false
        }
        bo, ok := s.byObject[obj]
        if !ok {
            return false
        }
        return bp.And(bo).Popcount() > 0

    case hasSubj && !hasPred && hasObj: // (s, _, o)
        bo, ok := s.byObject[obj]
        if !ok || !bo.Test(int(subj)) {
            return false
        }
        for _, bp := range s.byPredicate {
            if bp.Test(int(subj)) {
                return true
            }
        }
        return false

    case hasSubj && !hasPred && !hasObj: // (s, _, _)
        for _, bp := range s.byPredicate {
            if bp.Test(int(subj)) {
                return true
            }
        }
        return false

    case !hasSubj && !hasPred && hasObj: // (_, _, o)
        bo, ok := s.byObject[obj]
        return ok && bo.Popcount() > 0

    default: // (_, _, _)
        return s.tripleCount > 0
    }
}

// SubjectsWithPredicate returns the by_predicate bitset for p (§4.7's first
// enumeration). The returned BitSet is owned by the store and must not be
// mutated by the caller.
func (s *Store) SubjectsWithPredicate(pred uint32) *bitset.BitSet {
    if bs, ok := s.byPredicate[pred]; ok {
        return bs
    }
    return bitset.New(0)
}

// SubjectsWithObject returns the by_object bitset for o (§4.7's second
// enumeration).
func (s *Store) SubjectsWithObject(obj uint32) *bitset.BitSet {
    if bs, ok := s.byObject[obj]; ok {
        return bs
    }
    return bitset.New(0)
}

// ObjectsOf returns the exact, ordered set of objects ever added for
// (subj, pred), used by SHACL's min_count/max_count beyond the k==1 fast
// path. Returns nil if no such triple was ever added.
func (s *Store) ObjectsOf(subj, pred uint32) []uint32 {
    byPred, ok := s.spo[subj]
    if !ok {
        return nil
    }
    return byPred[pred]
}

// TripleCount returns the cardinality of the indexed (deduplicated) triple
// set.
func (s *Store) TripleCount() int { return s.tripleCount }

// MaxIDSeen returns the largest Id that has appeared in any added triple,
// used by the engine's snapshot dump to bound its walk over Ids.
func (s *Store) MaxIDSeen() uint32 { return s.maxIDSeen }
