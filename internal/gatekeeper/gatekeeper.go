// Package gatekeeper implements the engine's statistical process control
// pass: it samples a representative operation, builds a 256-bucket cycle
// histogram, and reports mean/std/p95, sigma-level, Cpk, DPM, throughput,
// and pass/fail against the engine's critical-to-quality thresholds.
package gatekeeper

import (
    "math"
    "time"
)

// DefaultSampleSize is the number of samples a Run collects absent an
// override, matching the "fixed-size samples (default one million)"
// default.
const DefaultSampleSize = 1_000_000

// DefaultChatmanConstant is the upper specification limit used for
// sigma-level and Cpk when no override is supplied.
const DefaultChatmanConstant = 7.0

const histogramBuckets = 256

// Config controls one Gatekeeper run.
type Config struct {
    SampleSize      int
    ChatmanConstant float64
    Timeout         time.Duration
}

// withDefaults fills zero-valued fields with their spec defaults.
func (c Config) withDefaults() Config {
    if c.SampleSize <= 0 {
        c.SampleSize = DefaultSampleSize
    }
    if c.ChatmanConstant <= 0 {
        c.ChatmanConstant = DefaultChatmanConstant
    }
    return c
}

// CTQResult is the pass/fail outcome of one critical-to-quality check.
type CTQResult struct {
    Name  string
    Value float64
    Pass  bool
}

// Report is the full outcome of a Gatekeeper run.
type Report struct {
    SamplesTaken   int
    TimedOut       bool
    Mean           float64
    StdDev         float64
    P95            float64
    SigmaLevel     float64
    Cpk            float64
    DPM            float64
    ThroughputMOPS float64
    CTQs           []CTQResult
}

// Verdict reports whether every CTQ passed.
func (r Report) Verdict() bool {
    for _, c := range r.CTQs {
        if !c.Pass {
            return false
        }
    }
    return true
}

// histogram buckets cycle counts into 256 fixed-width buckets spanning
// [0, maxCycle]; p95 is read off the bucket whose cumulative count first
// reaches 95% of the samples, matching the "256-bucket histogram" spec.
type histogram struct {
    counts   [histogramBuckets]int
    maxCycle float64
    total    int
}

func newHistogram(maxCycle float64) *histogram {
    if maxCycle <= 0 {
        maxCycle = 1
    }
    return &histogram{maxCycle: maxCycle}
}

func (h *histogram) add(cycles float64) {
    idx := int(cycles / h.maxCycle * float64(histogramBuckets))
    if idx >= histogramBuckets {
        idx = histogramBuckets - 1
    }
    if idx < 0 {
        idx = 0
    }
    h.counts[idx]++
    h.total++
}

func (h *histogram) p95() float64 {
    if h.total == 0 {
        return 0
    }
    target := int(math.Ceil(0.95 * float64(h.total)))
    cum := 0
    for i, c := range h.counts {
        cum += c
        if cum >= target {
            bucketWidth := h.maxCycle / float64(histogramBuckets)
            return float64(i+1) * bucketWidth
        }
    }
    return h.maxCycle
}

// Run samples sampleFn cfg.SampleSize times (fewer if timeout elapses
// first), checking the wall-clock deadline every 1024 samples so a runaway
// operation cannot hang a CI run indefinitely, and returns the full
// statistical report.
func Run(cfg Config, sampleFn func() float64) Report {
    cfg = cfg.withDefaults()

    samples := make([]float64, 0, cfg.SampleSize)
    var deadline time.Time
    if cfg.Timeout > 0 {
        deadline = time.Now().Add(cfg.Timeout)
    }

    timedOut := false
    for i := 0; i < cfg.SampleSize; i++ {
        samples = append(samples, sampleFn())
        if i%1024 == 1023 && !deadline.IsZero() && time.Now().After(deadline) {
            timedOut = true
            break
        }
    }

    mean, stddev := meanStdDev(samples)
    maxCycle := 0.0
    for _, s := range samples {
        if s > maxCycle {
            maxCycle = s
        }
    }
    h := newHistogram(maxCycle)
    for _, s := range samples {
        h.add(s)
    }
    p95 := h.p95()

    sigmaLevel := 0.0
    if stddev > 0 {
        sigmaLevel = (cfg.ChatmanConstant - mean) / stddev
    } else if mean < cfg.ChatmanConstant {
        sigmaLevel = math.Inf(1)
    } else if mean > cfg.ChatmanConstant {
        sigmaLevel = math.Inf(-1)
    }
    cpk := sigmaLevel / 3

    dpm := 0.5 * math.Erfc(sigmaLevel/math.Sqrt2) * 1e6

    elapsedSeconds := throughputDenominator(samples)
    throughputMOPS := 0.0
    if elapsedSeconds > 0 {
        throughputMOPS = float64(len(samples)) / elapsedSeconds / 1e6
    }

    report := Report{
        SamplesTaken:   len(samples),
        TimedOut:       timedOut,
        Mean:           mean,
        StdDev:         stddev,
        P95:            p95,
        SigmaLevel:     sigmaLevel,
        Cpk:            cpk,
        DPM:            dpm,
        ThroughputMOPS: throughputMOPS,
    }
    report.CTQs = []CTQResult{
        {Name: "p95_le_chatman", Value: p95, Pass: p95 <= cfg.ChatmanConstant},
        {Name: "throughput_ge_10mops", Value: throughputMOPS, Pass: throughputMOPS >= 10},
        {Name: "sigma_level_ge_4", Value: sigmaLevel, Pass: sigmaLevel >= 4},
    }
    return report
}

// throughputDenominator reconstructs the aggregate measured time (in
// seconds) backing the throughput figure from the per-sample cycle
// readings, treating one cycle as one nanosecond (telemetry's portable
// cycle unit).
func throughputDenominator(samples []float64) float64 {
    var totalCycles float64
    for _, s := range samples {
        totalCycles += s
    }
    const nanosPerCycle = 1.0
    return totalCycles * nanosPerCycle / 1e9
}

func meanStdDev(samples []float64) (mean, stddev float64) {
    if len(samples) == 0 {
        return 0, 0
    }
    sum := 0.0
    for _, s := range samples {
        sum += s
    }
    mean = sum / float64(len(samples))

    variance := 0.0
    for _, s := range samples {
        d := s - mean
        variance += d * d
    }
    variance /= float64(len(samples))
    stddev = math.Sqrt(variance)
    return mean, stddev
}
