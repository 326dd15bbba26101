package gatekeeper

import "github.com/prometheus/client_golang/prometheus"

// Metrics publishes a Gatekeeper Report to a Prometheus registry so CI
// dashboards can graph contract drift over time, the same way the teacher
// graphs cache hit rate. Call Publish after every Run; the collectors are
// registered once, by NewMetrics.
type Metrics struct {
    reg *prometheus.Registry

    p95       prometheus.Gauge
    sigma     prometheus.Gauge
    mops      prometheus.Gauge
    ctqPassed *prometheus.GaugeVec
}

// NewMetrics registers the Gatekeeper gauge family against reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
    m := &Metrics{
        reg: reg,
        p95: prometheus.NewGauge(prometheus.GaugeOpts{
            Namespace: "engine",
            Subsystem: "gatekeeper",
            Name:      "p95_cycles",
            Help:      "95th percentile cycle latency of the last Gatekeeper run.",
        }),
        sigma: prometheus.NewGauge(prometheus.GaugeOpts{
            Namespace: "engine",
            Subsystem: "gatekeeper",
            Name:      "sigma_level",
            Help:      "Sigma-level of the last Gatekeeper run.",
        }),
        mops: prometheus.NewGauge(prometheus.GaugeOpts{
            Namespace: "engine",
            Subsystem: "gatekeeper",
            Name:      "throughput_mops",
            Help:      "Measured throughput in millions of operations per second.",
        }),
        ctqPassed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
            Namespace: "engine",
            Subsystem: "gatekeeper",
            Name:      "ctq_pass",
            Help:      "1 if the named CTQ passed on the last run, 0 otherwise.",
        }, []string{"ctq"}),
    }
    reg.MustRegister(m.p95, m.sigma, m.mops, m.ctqPassed)
    return m
}

// Publish records report's figures onto the registered gauges.
func (m *Metrics) Publish(report Report) {
    m.p95.Set(report.P95)
    m.sigma.Set(report.SigmaLevel)
    m.mops.Set(report.ThroughputMOPS)
    for _, c := range report.CTQs {
        v := 0.0
        if c.Pass {
            v = 1.0
        }
        m.ctqPassed.WithLabelValues(c.Name).Set(v)
    }
}
