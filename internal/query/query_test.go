package query

import (
    "testing"

    "github.com/chatman-io/s7tengine/internal/triplestore"
)

func TestAskAndEnumerations(t *testing.T) {
    store := triplestore.New()
    const alice, knows, bob = 1, 2, 3
    if err := store.AddTriple(alice, knows, bob); err != nil {
        t.Fatalf("add_triple: %v", err)
    }

    e := New(store)
    if !e.Ask(alice, knows, bob) {
        t.Fatalf("expected ask(alice, knows, bob) to hold")
    }
    if !e.SubjectsWithPredicate(knows).Test(alice) {
        t.Fatalf("expected alice in subjects_with_predicate(knows)")
    }
    if !e.SubjectsWithObject(bob).Test(alice) {
        t.Fatalf("expected alice in subjects_with_object(bob)")
    }
}

func TestFilterFloat32(t *testing.T) {
    col := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
    res := FilterFloat32(col, GreaterOrEqual, 5)
    if res.MatchCount != 6 {
        t.Fatalf("expected 6 matches (5..10), got %d", res.MatchCount)
    }
    if res.MaskedSum != 45 {
        t.Fatalf("expected masked sum 45, got %v", res.MaskedSum)
    }
}

func TestFilterFloat32NonMultipleOfEight(t *testing.T) {
    col := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}
    res := FilterFloat32(col, Equal, 9)
    if res.MatchCount != 1 || res.MaskedSum != 9 {
        t.Fatalf("unexpected result: %+v", res)
    }
}

func TestFilterInt32(t *testing.T) {
    col := []int32{-2, -1, 0, 1, 2, 3, 4, 5}
    res := FilterInt32(col, Less, 0)
    if res.MatchCount != 2 {
        t.Fatalf("expected 2 matches (-2, -1), got %d", res.MatchCount)
    }
    if res.MaskedSum != -3 {
        t.Fatalf("expected masked sum -3, got %v", res.MaskedSum)
    }
}

func TestFilterEmptyColumn(t *testing.T) {
    res := FilterFloat32(nil, Equal, 0)
    if res.MatchCount != 0 || res.MaskedSum != 0 {
        t.Fatalf("expected zero result on empty column, got %+v", res)
    }
}
