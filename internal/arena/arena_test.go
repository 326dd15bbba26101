package arena

import (
    "bytes"
    "testing"
)

func TestAllocateAlignment(t *testing.T) {
    a := New(64)
    b1 := a.Allocate(3, false)
    b2 := a.Allocate(5, false)
    if len(b1) != 3 || len(b2) != 5 {
        t.Fatalf("unexpected lengths: %d %d", len(b1), len(b2))
    }
    // b2 must start at an 8-byte aligned offset relative to the region.
    r := a.regions[a.active]
    off := r.used - len(b2)
    if off%8 != 0 {
        t.Fatalf("allocation not 8-byte aligned: offset=%d", off)
    }
}

func TestAllocateGrowsAcrossRegions(t *testing.T) {
    a := New(minRegionBytes)
    first := a.Allocate(minRegionBytes-8, false)
    if len(a.regions) != 1 {
        t.Fatalf("expected single region before overflow, got %d", len(a.regions))
    }
    second := a.Allocate(64, false)
    if len(a.regions) != 2 {
        t.Fatalf("expected growth to a second region, got %d", len(a.regions))
    }
    // Earlier allocation must remain valid and untouched after growth.
    for _, b := range first {
        if b != 0 {
            t.Fatalf("first allocation corrupted after growth")
        }
    }
    if len(second) != 64 {
        t.Fatalf("second allocation has wrong length: %d", len(second))
    }
}

func TestAllocBytesAndString(t *testing.T) {
    a := New(64)
    dst := a.AllocBytes([]byte("hello"))
    if !bytes.Equal(dst, []byte("hello")) {
        t.Fatalf("AllocBytes mismatch: %q", dst)
    }
    s := a.AllocString("world")
    if s != "world" {
        t.Fatalf("AllocString mismatch: %q", s)
    }
}

func TestResetInvalidatesUsage(t *testing.T) {
    a := New(64)
    a.Allocate(32, false)
    if a.BytesAllocated() == 0 {
        t.Fatalf("expected non-zero bytes allocated before reset")
    }
    a.Reset()
    if a.BytesAllocated() != 0 {
        t.Fatalf("expected zero bytes allocated after reset, got %d", a.BytesAllocated())
    }
    if len(a.regions) != 1 {
        t.Fatalf("expected reset to collapse to a single region, got %d", len(a.regions))
    }
}

func TestGrowthHookFiresOnEachNewRegion(t *testing.T) {
    a := New(minRegionBytes)
    var calls []uint32
    a.SetGrowthHook(func(regionID uint32, size int) {
        calls = append(calls, regionID)
        if size <= 0 {
            t.Fatalf("expected positive region size, got %d", size)
        }
    })
    a.Allocate(minRegionBytes-8, false)
    if len(calls) != 0 {
        t.Fatalf("hook should not fire before the first growth, got %v", calls)
    }
    a.Allocate(64, false)
    if len(calls) != 1 || calls[0] != 1 {
        t.Fatalf("expected one call with region id 1, got %v", calls)
    }
    a.SetGrowthHook(nil)
    a.Allocate(minRegionBytes, false)
    if len(calls) != 1 {
        t.Fatalf("expected hook to stay silent once cleared, got %v", calls)
    }
}

func TestDropReleasesRegions(t *testing.T) {
    a := New(64)
    a.Allocate(16, false)
    a.Drop()
    if a.regions != nil {
        t.Fatalf("expected regions to be released after drop")
    }
}
