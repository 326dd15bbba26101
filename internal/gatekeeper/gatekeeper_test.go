package gatekeeper

import "testing"

func TestRunPassesForFastStableOperation(t *testing.T) {
    report := Run(Config{SampleSize: 10000, ChatmanConstant: 7}, func() float64 {
        return 2 // a stable 2-cycle operation
    })
    if report.Mean != 2 {
        t.Fatalf("expected mean 2, got %v", report.Mean)
    }
    if report.StdDev != 0 {
        t.Fatalf("expected stddev 0 for a constant sample, got %v", report.StdDev)
    }
    if report.P95 > 7 {
        t.Fatalf("expected p95 <= 7, got %v", report.P95)
    }
    if !report.Verdict() {
        t.Fatalf("expected a fast stable operation to pass every CTQ, got %+v", report.CTQs)
    }
}

func TestRunFailsP95ForSlowOperation(t *testing.T) {
    report := Run(Config{SampleSize: 1000, ChatmanConstant: 7}, func() float64 {
        return 50 // far beyond the Chatman constant
    })
    if report.Verdict() {
        t.Fatalf("expected a slow operation to fail at least one CTQ")
    }
    found := false
    for _, c := range report.CTQs {
        if c.Name == "p95_le_chatman" {
            found = true
            if c.Pass {
                t.Fatalf("expected p95_le_chatman to fail for a 50-cycle operation")
            }
        }
    }
    if !found {
        t.Fatalf("expected a p95_le_chatman CTQ to be present")
    }
}

func TestRunRespectsConfiguredSampleSize(t *testing.T) {
    calls := 0
    report := Run(Config{SampleSize: 500}, func() float64 {
        calls++
        return 1
    })
    if calls != 500 {
        t.Fatalf("expected 500 samples taken, got %d", calls)
    }
    if report.SamplesTaken != 500 {
        t.Fatalf("expected SamplesTaken == 500, got %d", report.SamplesTaken)
    }
}

func TestHistogramP95MatchesKnownDistribution(t *testing.T) {
    h := newHistogram(100)
    for i := 0; i < 95; i++ {
        h.add(1)
    }
    for i := 0; i < 5; i++ {
        h.add(99)
    }
    if p95 := h.p95(); p95 < 1 {
        t.Fatalf("expected p95 to land at or beyond the bulk of the mass, got %v", p95)
    }
}
