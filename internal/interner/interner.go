// Package interner maps UTF-8 byte strings to dense 32-bit identifiers and
// back. Interning the same text twice always returns the same Id; the Id
// space is contiguous starting at 1 (0 is the reserved null/sentinel Id
// shared by every other engine component).
//
// The interner is single-writer during an engine's load phase and read-only
// after materialize_closure freezes the schema; concurrent readers are safe
// once writes have stopped (see ConcurrentInterner for the concurrent-load
// convenience built on top).
package interner

import (
    "errors"
    "fmt"

    "github.com/chatman-io/s7tengine/internal/arena"
    "github.com/chatman-io/s7tengine/internal/unsafehelpers"
)

// ErrInvalidArgument is returned when intern is called with empty or
// oversized input.
var ErrInvalidArgument = errors.New("interner: invalid argument")

// ErrUnknownID is returned when resolve is called with an Id that was never
// minted (including the reserved 0 sentinel).
var ErrUnknownID = errors.New("interner: unknown id")

// MaxTextBytes bounds a single interned string; the spec requires "bounded
// length" inputs so a single pathological string cannot blow the arena.
const MaxTextBytes = 1 << 16

const loadFactorNumerator, loadFactorDenominator = 3, 4 // grow at 75% full

type slot struct {
    hash uint64
    id   uint32 // 0 means empty
}

// Interner is the forward/reverse string<->Id table described in §4.2.
// Forward lookups use open addressing (linear probing) over FNV-1a hashes;
// the reverse vector is a plain slice indexed by Id-1.
type Interner struct {
    ar      *arena.Arena
    table   []slot
    mask    uint64 // len(table)-1, table length is always a power of two
    count   int
    reverse []string // reverse[i] holds the text for Id i+1
}

// New constructs an interner sized for roughly maxEntities distinct strings.
func New(maxEntities int) *Interner {
    cap := 16
    for cap < maxEntities*2 {
        cap *= 2
    }
    return &Interner{
        ar:      arena.New(maxEntities * 32),
        table:   make([]slot, cap),
        mask:    uint64(cap - 1),
        reverse: make([]string, 0, maxEntities),
    }
}

// fnv1a64 hashes b with FNV-1a using the fixed 64-bit offset basis/prime, per
// §4.2's "fixed seed" requirement so interning is deterministic across runs.
func fnv1a64(b []byte) uint64 {
    const offset64 = 14695981039346656037
    const prime64 = 1099511628211
    h := uint64(offset64)
    for _, c := range b {
        h ^= uint64(c)
        h *= prime64
    }
    return h
}

// Intern returns the dense Id for text, minting a new one on first sight.
// The same text always yields the same Id; resolving that Id yields back a
// byte-identical copy of text (owned by the interner's arena).
func (in *Interner) Intern(text []byte) (uint32, error) {
    if len(text) == 0 || len(text) > MaxTextBytes {
        return 0, fmt.Errorf("%w: length %d", ErrInvalidArgument, len(text))
    }

    h := fnv1a64(text)
    if id, ok := in.find(h, text); ok {
        return id, nil
    }

    if in.count+1 > (len(in.table)*loadFactorNumerator)/loadFactorDenominator {
        in.grow()
    }

    owned := in.ar.AllocBytes(text)
    id := uint32(len(in.reverse) + 1)
    in.reverse = append(in.reverse, unsafehelpers.BytesToString(owned))
    in.insert(h, id)
    in.count++
    return id, nil
}

// InternString is a convenience wrapper for callers holding a string rather
// than a []byte; it performs a single zero-copy reinterpretation.
func (in *Interner) InternString(text string) (uint32, error) {
    return in.Intern(unsafehelpers.StringToBytes(text))
}

// Resolve returns the text that was interned for id.
func (in *Interner) Resolve(id uint32) (string, error) {
    if id == 0 || int(id) > len(in.reverse) {
        return "", fmt.Errorf("%w: %d", ErrUnknownID, id)
    }
    return in.reverse[id-1], nil
}

// Len returns the number of distinct strings interned so far; the live Id
// set is exactly {1..Len()}.
func (in *Interner) Len() int { return len(in.reverse) }

// Arena exposes the interner's backing arena so callers can observe its
// lifecycle (e.g. install a growth hook for logging) without the interner
// itself taking a logging dependency.
func (in *Interner) Arena() *arena.Arena { return in.ar }

func (in *Interner) find(h uint64, text []byte) (uint32, bool) {
    idx := h & in.mask
    for {
        s := in.table[idx]
        if s.id == 0 {
            return 0, false
        }
        if s.hash == h {
            existing, _ := in.Resolve(s.id)
            if existing == unsafehelpers.BytesToString(text) {
                return s.id, true
            }
        }
        idx = (idx + 1) & in.mask
    }
}

func (in *Interner) insert(h uint64, id uint32) {
    idx := h & in.mask
    for in.table[idx].id != 0 {
        idx = (idx + 1) & in.mask
    }
    in.table[idx] = slot{hash: h, id: id}
}

func (in *Interner) grow() {
    newTable := make([]slot, len(in.table)*2)
    newMask := uint64(len(newTable) - 1)
    for _, s := range in.table {
        if s.id == 0 {
            continue
        }
        idx := s.hash & newMask
        for newTable[idx].id != 0 {
            idx = (idx + 1) & newMask
        }
        newTable[idx] = s
    }
    in.table = newTable
    in.mask = newMask
}
