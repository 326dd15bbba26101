package engine

// snapshot.go implements Engine.Dump/Engine.Restore: the Go-level
// realization of the language-agnostic dump/restore pair, serializing the
// interner table, triple list, and reachable subclass pairs as
// length-prefixed binary into whatever SnapshotStore the caller configured
// via WithSnapshotStore. Shapes registered with DeclareShape are not
// included; a restored Engine has none.

import (
    "context"
    "encoding/binary"
    "fmt"

    "go.uber.org/zap"
)

// Dump serializes the engine's current state and writes it to the
// configured SnapshotStore under the caller-supplied generation number,
// overwriting any blob already stored there.
func (e *Engine) Dump(ctx context.Context, generation uint64) error {
    if e.cfg.snapshotStore == nil {
        return fmt.Errorf("%w: no snapshot store configured", ErrInvalidArgument)
    }
    blob := e.encodeSnapshot()
    if err := e.cfg.snapshotStore.Put(ctx, generation, blob); err != nil {
        return fmt.Errorf("engine: dump: %w", err)
    }
    e.logger.Info("snapshot dumped", zap.Uint64("generation", generation), zap.Int("blob_bytes", len(blob)))
    return nil
}

// Restore reads generation from the configured SnapshotStore into a fresh
// Engine built with the given options, re-running MaterializeClosure
// automatically before returning.
func Restore(ctx context.Context, generation uint64, maxEntities int, opts ...Option) (*Engine, error) {
    e, err := New(maxEntities, opts...)
    if err != nil {
        return nil, err
    }
    if e.cfg.snapshotStore == nil {
        return nil, fmt.Errorf("%w: no snapshot store configured", ErrInvalidArgument)
    }
    blob, err := e.cfg.snapshotStore.Get(ctx, generation)
    if err != nil {
        return nil, fmt.Errorf("engine: restore: %w", err)
    }
    if err := e.decodeSnapshot(blob); err != nil {
        return nil, fmt.Errorf("engine: restore: %w", err)
    }
    e.classes.MaterializeClosure()
    e.logger.Info("snapshot restored", zap.Uint64("generation", generation), zap.Int("blob_bytes", len(blob)))
    return e, nil
}

func putUvarint(buf []byte, v uint64) []byte {
    var tmp [binary.MaxVarintLen64]byte
    n := binary.PutUvarint(tmp[:], v)
    return append(buf, tmp[:n]...)
}

func putBytes(buf []byte, b []byte) []byte {
    buf = putUvarint(buf, uint64(len(b)))
    return append(buf, b...)
}

// encodeSnapshot walks the engine's components in a fixed order and emits
// a length-prefixed binary blob; the format is not required to be
// bit-exact across engine versions.
func (e *Engine) encodeSnapshot() []byte {
    var buf []byte

    // Interner table: count, then (id, text) pairs in id order.
    buf = putUvarint(buf, uint64(e.interner.Len()))
    for id := uint32(1); int(id) <= e.interner.Len(); id++ {
        s, err := e.interner.Resolve(id)
        if err != nil {
            continue
        }
        buf = putUvarint(buf, uint64(id))
        buf = putBytes(buf, []byte(s))
    }

    // Triple list.
    triples := e.collectTriples()
    buf = putUvarint(buf, uint64(len(triples)))
    for _, t := range triples {
        buf = putUvarint(buf, uint64(t[0]))
        buf = putUvarint(buf, uint64(t[1]))
        buf = putUvarint(buf, uint64(t[2]))
    }

    // Class closure: every currently reachable non-reflexive subclass pair
    // (see collectSubclassEdges); Restore re-declares them and re-runs
    // MaterializeClosure rather than persisting the matrix itself.
    edges := e.collectSubclassEdges()
    buf = putUvarint(buf, uint64(len(edges)))
    for _, ed := range edges {
        buf = putUvarint(buf, uint64(ed[0]))
        buf = putUvarint(buf, uint64(ed[1]))
    }

    return buf
}

func (e *Engine) decodeSnapshot(blob []byte) error {
    r := &byteReader{buf: blob}

    internCount, err := r.uvarint()
    if err != nil {
        return err
    }
    for i := uint64(0); i < internCount; i++ {
        if _, err := r.uvarint(); err != nil { // stored id, unused: re-intern assigns sequentially
            return err
        }
        text, err := r.bytes()
        if err != nil {
            return err
        }
        if _, err := e.interner.InternString(string(text)); err != nil {
            return err
        }
    }

    tripleCount, err := r.uvarint()
    if err != nil {
        return err
    }
    for i := uint64(0); i < tripleCount; i++ {
        s, err := r.uvarint()
        if err != nil {
            return err
        }
        p, err := r.uvarint()
        if err != nil {
            return err
        }
        o, err := r.uvarint()
        if err != nil {
            return err
        }
        if err := e.store.AddTriple(uint32(s), uint32(p), uint32(o)); err != nil {
            return err
        }
    }

    edgeCount, err := r.uvarint()
    if err != nil {
        return err
    }
    for i := uint64(0); i < edgeCount; i++ {
        child, err := r.uvarint()
        if err != nil {
            return err
        }
        parent, err := r.uvarint()
        if err != nil {
            return err
        }
        if err := e.classes.DeclareSubclass(uint32(child), uint32(parent)); err != nil {
            return err
        }
    }
    return nil
}

// collectTriples walks every (subject, predicate) Id pair up to MaxIDSeen
// and reconstructs the exact triple list via the triple store's spo
// supplement.
func (e *Engine) collectTriples() [][3]uint32 {
    var out [][3]uint32
    seen := map[[3]uint32]struct{}{}
    maxID := e.store.MaxIDSeen()
    for s := uint32(1); s <= maxID; s++ {
        for p := uint32(1); p <= maxID; p++ {
            for _, o := range e.store.ObjectsOf(s, p) {
                key := [3]uint32{s, p, o}
                if _, dup := seen[key]; dup {
                    continue
                }
                seen[key] = struct{}{}
                out = append(out, key)
            }
        }
    }
    return out
}

// collectSubclassEdges re-derives every currently-reachable subclass pair
// by checking is_subclass against every candidate id pair up to the
// highest id the store has seen or the interner has minted, whichever is
// larger, so classes that never occur in a triple are kept. This persists
// the closure's current
// reachability, not only the originally-declared edges; re-declaring those
// pairs and re-running MaterializeClosure on Restore is idempotent, since
// closure over an already-closed relation yields the same relation. The
// O(n^2) walk is acceptable at dump time, which is not on the 7-tick hot
// path.
func (e *Engine) collectSubclassEdges() [][2]uint32 {
    var out [][2]uint32
    maxID := e.store.MaxIDSeen()
    if n := uint32(e.interner.Len()); n > maxID {
        maxID = n
    }
    for child := uint32(1); child <= maxID; child++ {
        for parent := uint32(1); parent <= maxID; parent++ {
            if child == parent {
                continue
            }
            if e.classes.IsSubclass(child, parent) {
                out = append(out, [2]uint32{child, parent})
            }
        }
    }
    return out
}

type byteReader struct {
    buf []byte
    off int
}

func (r *byteReader) uvarint() (uint64, error) {
    v, n := binary.Uvarint(r.buf[r.off:])
    if n <= 0 {
        return 0, fmt.Errorf("engine: snapshot: corrupt varint at offset %d", r.off)
    }
    r.off += n
    return v, nil
}

func (r *byteReader) bytes() ([]byte, error) {
    n, err := r.uvarint()
    if err != nil {
        return nil, err
    }
    if r.off+int(n) > len(r.buf) {
        return nil, fmt.Errorf("engine: snapshot: truncated blob at offset %d", r.off)
    }
    b := r.buf[r.off : r.off+int(n)]
    r.off += int(n)
    return b, nil
}
