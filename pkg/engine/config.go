package engine

// config.go defines the engine's internal configuration object and the set
// of functional options New accepts. All fields are given sensible
// defaults in defaultConfig(); users influence behavior only via Option,
// the same forward-compatible shape the teacher's cache config used.

import (
    "fmt"

    "github.com/prometheus/client_golang/prometheus"
    "go.uber.org/zap"

    "github.com/chatman-io/s7tengine/internal/snapshot"
)

// Option configures an Engine at construction time.
type Option func(*config)

type config struct {
    maxEntities int

    maxVariableBytes int
    maxVariableCount int
    chatmanConstant  float64

    registry       *prometheus.Registry
    logger         *zap.Logger
    snapshotStore  snapshot.Store
    rdfTypePred    uint32
}

func defaultConfig(maxEntities int) *config {
    return &config{
        maxEntities:      maxEntities,
        maxVariableBytes: 256,
        maxVariableCount: 64,
        chatmanConstant:  7,
        logger:           zap.NewNop(),
        rdfTypePred:      1,
    }
}

// WithMetrics enables Prometheus metrics collection for this engine
// instance. Passing nil disables metrics (the default).
func WithMetrics(reg *prometheus.Registry) Option {
    return func(c *config) { c.registry = reg }
}

// WithLogger plugs an external zap.Logger. The engine never logs on its
// 7-tick hot path; only load-time and slow events are emitted.
func WithLogger(l *zap.Logger) Option {
    return func(c *config) {
        if l != nil {
            c.logger = l
        }
    }
}

// WithSnapshotStore attaches a SnapshotStore for Dump/Restore. Absent this
// option, Dump/Restore return ErrInvalidArgument.
func WithSnapshotStore(store snapshot.Store) Option {
    return func(c *config) { c.snapshotStore = store }
}

// WithMaxVariableBytes bounds how many bytes a single template variable
// slot may contribute to a compiled template's MaxOutputLength.
func WithMaxVariableBytes(n int) Option {
    return func(c *config) {
        if n > 0 {
            c.maxVariableBytes = n
        }
    }
}

// WithMaxVariableCount bounds how many distinct variable names a single
// template render context may hold; TemplateSetVar returns
// ErrVariableLimit beyond this bound (default 64).
func WithMaxVariableCount(n int) Option {
    return func(c *config) {
        if n > 0 {
            c.maxVariableCount = n
        }
    }
}

// WithChatmanConstant overrides the Gatekeeper's upper specification limit
// (default 7).
func WithChatmanConstant(v float64) Option {
    return func(c *config) {
        if v > 0 {
            c.chatmanConstant = v
        }
    }
}

// WithRDFTypePredicate sets the predicate Id SHACL treats as rdf:type when
// deriving a node's declared types (default 1).
func WithRDFTypePredicate(p uint32) Option {
    return func(c *config) {
        if p != 0 {
            c.rdfTypePred = p
        }
    }
}

func applyOptions(cfg *config, opts []Option) error {
    for _, opt := range opts {
        opt(cfg)
    }
    if cfg.maxEntities <= 0 {
        return errInvalidMaxEntities
    }
    return nil
}

var errInvalidMaxEntities = fmt.Errorf("%w: max_entities must be > 0", ErrInvalidArgument)
