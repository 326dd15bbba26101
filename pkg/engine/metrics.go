package engine

import (
    "github.com/prometheus/client_golang/prometheus"

    "github.com/chatman-io/s7tengine/internal/gatekeeper"
)

// metricsSink abstracts Prometheus away from Engine so the hot path never
// pays for metric updates when no registry was supplied, mirroring the
// teacher's noop/prom metricsSink split. Besides the Gatekeeper's own
// process-control report, it tracks the engine-level cardinalities and call
// counters a dashboard needs to see the substrate actually being exercised:
// triple-store size, closure size, and SHACL/template call volume.
type metricsSink interface {
    publishGatekeeperReport(gatekeeper.Report)
    observeTripleCount(count int)
    observeClosureClassCount(count int)
    observeValidateNode()
    observeTemplateRender()
}

type noopMetrics struct{}

func (noopMetrics) publishGatekeeperReport(gatekeeper.Report) {}
func (noopMetrics) observeTripleCount(int)                    {}
func (noopMetrics) observeClosureClassCount(int)               {}
func (noopMetrics) observeValidateNode()                       {}
func (noopMetrics) observeTemplateRender()                     {}

type promMetrics struct {
    gk *gatekeeper.Metrics

    tripleCount         prometheus.Gauge
    closureClassCount   prometheus.Gauge
    validateNodeTotal   prometheus.Counter
    templateRenderTotal prometheus.Counter
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
    m := &promMetrics{
        gk: gatekeeper.NewMetrics(reg),
        tripleCount: prometheus.NewGauge(prometheus.GaugeOpts{
            Namespace: "engine",
            Subsystem: "triplestore",
            Name:      "cardinality",
            Help:      "Current number of indexed (subject, predicate, object) triples.",
        }),
        closureClassCount: prometheus.NewGauge(prometheus.GaugeOpts{
            Namespace: "engine",
            Subsystem: "closure",
            Name:      "class_count",
            Help:      "Number of distinct classes in the most recently materialized subclass closure.",
        }),
        validateNodeTotal: prometheus.NewCounter(prometheus.CounterOpts{
            Namespace: "engine",
            Subsystem: "shacl",
            Name:      "validate_node_total",
            Help:      "Total number of ShaclValidateNode calls.",
        }),
        templateRenderTotal: prometheus.NewCounter(prometheus.CounterOpts{
            Namespace: "engine",
            Subsystem: "template",
            Name:      "render_total",
            Help:      "Total number of TemplateRender calls.",
        }),
    }
    reg.MustRegister(m.tripleCount, m.closureClassCount, m.validateNodeTotal, m.templateRenderTotal)
    return m
}

func (m *promMetrics) publishGatekeeperReport(r gatekeeper.Report) {
    m.gk.Publish(r)
}

func (m *promMetrics) observeTripleCount(count int) {
    m.tripleCount.Set(float64(count))
}

func (m *promMetrics) observeClosureClassCount(count int) {
    m.closureClassCount.Set(float64(count))
}

func (m *promMetrics) observeValidateNode() {
    m.validateNodeTotal.Inc()
}

func (m *promMetrics) observeTemplateRender() {
    m.templateRenderTotal.Inc()
}

func newMetricsSink(reg *prometheus.Registry) metricsSink {
    if reg == nil {
        return noopMetrics{}
    }
    return newPromMetrics(reg)
}
