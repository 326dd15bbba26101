// Package snapshot implements the SnapshotStore abstraction used by
// Engine.Dump/Restore: a generation-keyed byte-blob store, with an
// in-memory implementation for tests and a BadgerDB-backed implementation
// for the same embedded on-disk persistence role Badger plays in the
// teacher's disk_eject example.
package snapshot

import (
    "context"
    "errors"
    "fmt"
    "sync"

    badger "github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a requested generation was never written.
var ErrNotFound = errors.New("snapshot: generation not found")

// Store persists and retrieves opaque, length-prefixed binary snapshot
// blobs keyed by a monotonically increasing generation number.
type Store interface {
    // Put writes blob under generation, overwriting any prior value.
    Put(ctx context.Context, generation uint64, blob []byte) error
    // Get returns the blob stored for generation, or ErrNotFound.
    Get(ctx context.Context, generation uint64) ([]byte, error)
}

// MemorySnapshotStore is a mutex-guarded in-memory Store, suitable for
// tests and short-lived processes.
type MemorySnapshotStore struct {
    mu   sync.Mutex
    blob map[uint64][]byte
}

// NewMemorySnapshotStore constructs an empty in-memory store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
    return &MemorySnapshotStore{blob: make(map[uint64][]byte)}
}

// Put implements Store.
func (s *MemorySnapshotStore) Put(_ context.Context, generation uint64, blob []byte) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    cp := make([]byte, len(blob))
    copy(cp, blob)
    s.blob[generation] = cp
    return nil
}

// Get implements Store.
func (s *MemorySnapshotStore) Get(_ context.Context, generation uint64) ([]byte, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.blob[generation]
    if !ok {
        return nil, fmt.Errorf("%w: generation %d", ErrNotFound, generation)
    }
    return b, nil
}

// BadgerSnapshotStore persists snapshot blobs in an embedded BadgerDB,
// one key per generation, the same embedded-KV role Badger plays as the
// teacher's L2 store.
type BadgerSnapshotStore struct {
    db *badger.DB
}

// NewBadgerSnapshotStore wraps an already-open Badger handle.
func NewBadgerSnapshotStore(db *badger.DB) *BadgerSnapshotStore {
    return &BadgerSnapshotStore{db: db}
}

func badgerKey(generation uint64) []byte {
    return []byte(fmt.Sprintf("engine-snapshot/%020d", generation))
}

// Put implements Store.
func (s *BadgerSnapshotStore) Put(_ context.Context, generation uint64, blob []byte) error {
    return s.db.Update(func(txn *badger.Txn) error {
        return txn.Set(badgerKey(generation), blob)
    })
}

// Get implements Store.
func (s *BadgerSnapshotStore) Get(_ context.Context, generation uint64) ([]byte, error) {
    var out []byte
    err := s.db.View(func(txn *badger.Txn) error {
        item, err := txn.Get(badgerKey(generation))
        if err != nil {
            if errors.Is(err, badger.ErrKeyNotFound) {
                return fmt.Errorf("%w: generation %d", ErrNotFound, generation)
            }
            return err
        }
        return item.Value(func(v []byte) error {
            out = append([]byte(nil), v...)
            return nil
        })
    })
    if err != nil {
        return nil, err
    }
    return out, nil
}
