// Package engine is the facade over every core component: it owns one
// Arena, Interner, Store, Closure, and Evaluator, and exposes the
// language-agnostic operation set of the external-interfaces table as a
// single Go API. Construction follows the teacher's functional-options
// pattern; every returned error wraps one of this package's closed
// sentinels, except the snapshot-store and decoding failures of Dump and
// Restore (see errors.go).
package engine

import (
    "fmt"

    "go.uber.org/zap"

    "github.com/chatman-io/s7tengine/internal/arena"
    "github.com/chatman-io/s7tengine/internal/gatekeeper"
    "github.com/chatman-io/s7tengine/internal/interner"
    "github.com/chatman-io/s7tengine/internal/owl"
    "github.com/chatman-io/s7tengine/internal/query"
    "github.com/chatman-io/s7tengine/internal/shacl"
    "github.com/chatman-io/s7tengine/internal/template"
    "github.com/chatman-io/s7tengine/internal/triplestore"
)

// Engine bundles the semantic substrate's components behind one handle.
type Engine struct {
    cfg *config

    ar        *arena.Arena
    interner  *interner.Interner
    store     *triplestore.Store
    classes   *owl.Closure
    shacl     *shacl.Evaluator
    query     *query.Engine
    templates *template.Cache

    logger  *zap.Logger
    metrics metricsSink
}

// New constructs an Engine sized for up to maxEntities interned Ids.
func New(maxEntities int, opts ...Option) (*Engine, error) {
    cfg := defaultConfig(maxEntities)
    if err := applyOptions(cfg, opts); err != nil {
        return nil, err
    }

    ar := arena.New(maxEntities * 32)
    ar.SetGrowthHook(func(regionID uint32, size int) {
        cfg.logger.Info("arena grew", zap.Uint32("region_id", regionID), zap.Int("size_bytes", size))
    })
    in := interner.New(maxEntities)
    in.Arena().SetGrowthHook(func(regionID uint32, size int) {
        cfg.logger.Info("arena grew", zap.Uint32("region_id", regionID), zap.Int("size_bytes", size))
    })
    store := triplestore.New()
    classes := owl.New()

    e := &Engine{
        cfg:       cfg,
        ar:        ar,
        interner:  in,
        store:     store,
        classes:   classes,
        shacl:     shacl.New(store, classes, cfg.rdfTypePred),
        query:     query.New(store),
        templates: template.NewCache(cfg.maxVariableBytes),
        logger:    cfg.logger,
        metrics:   newMetricsSink(cfg.registry),
    }
    e.logger.Info("engine created",
        zap.Int("max_entities", maxEntities),
        zap.Int("max_variable_bytes", cfg.maxVariableBytes),
        zap.Float64("chatman_constant", cfg.chatmanConstant),
    )
    return e, nil
}

// Destroy releases every arena region backing this engine's interned
// strings. The Engine must not be used afterward.
func (e *Engine) Destroy() {
    e.interner.Arena().Drop()
    e.ar.Drop()
}

// Intern interns text, returning its dense Id.
func (e *Engine) Intern(text []byte) (uint32, error) {
    id, err := e.interner.Intern(text)
    if err != nil {
        return 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
    }
    return id, nil
}

// Resolve returns the text interned under id.
func (e *Engine) Resolve(id uint32) (string, error) {
    s, err := e.interner.Resolve(id)
    if err != nil {
        return "", fmt.Errorf("%w: %v", ErrUnknownID, err)
    }
    return s, nil
}

// InternedCount returns the number of distinct strings interned so far.
func (e *Engine) InternedCount() int {
    return e.interner.Len()
}

// TripleCount returns the cardinality of the indexed triple set.
func (e *Engine) TripleCount() int {
    return e.store.TripleCount()
}

// MaxIDSeen returns the largest Id that has appeared in any added triple.
func (e *Engine) MaxIDSeen() uint32 {
    return e.store.MaxIDSeen()
}

// AddTriple indexes (subj, pred, obj).
func (e *Engine) AddTriple(subj, pred, obj uint32) error {
    if err := e.store.AddTriple(subj, pred, obj); err != nil {
        return fmt.Errorf("%w: %v", ErrInvalidID, err)
    }
    e.metrics.observeTripleCount(e.store.TripleCount())
    return nil
}

// AskPattern answers ask-pattern(subj, pred, obj), any position may be 0.
func (e *Engine) AskPattern(subj, pred, obj uint32) bool {
    return e.query.Ask(subj, pred, obj)
}

// Query exposes the pattern-query engine's enumerations and SIMD-style
// columnar filter directly, for callers that need more than AskPattern.
func (e *Engine) Query() *query.Engine {
    return e.query
}

// DeclareSubclass records that child is an (immediate) subclass of parent.
func (e *Engine) DeclareSubclass(child, parent uint32) error {
    if err := e.classes.DeclareSubclass(child, parent); err != nil {
        return fmt.Errorf("%w: %v", ErrInvalidID, err)
    }
    return nil
}

// MaterializeClosure computes the transitive, reflexive subclass closure.
func (e *Engine) MaterializeClosure() {
    e.classes.MaterializeClosure()
    classCount := e.classes.ClassCount()
    e.logger.Info("closure materialized", zap.Int("class_count", classCount))
    e.metrics.observeClosureClassCount(classCount)
}

// IsSubclass reports whether a is a (transitive) subclass of class.
func (e *Engine) IsSubclass(a, class uint32) bool {
    return e.classes.IsSubclass(a, class)
}

// DeclareShape registers a SHACL shape for later ValidateNode/ValidateAsk
// calls.
func (e *Engine) DeclareShape(s *shacl.Shape) {
    e.shacl.DeclareShape(s)
}

// ShaclValidateNode evaluates shapeID against nodeID, returning the full
// aggregated violation record.
func (e *Engine) ShaclValidateNode(shapeID, nodeID uint32) (shacl.Result, error) {
    res, err := e.shacl.ValidateNode(shapeID, nodeID)
    if err != nil {
        return shacl.Result{}, fmt.Errorf("%w: %v", ErrUnknownShape, err)
    }
    e.metrics.observeValidateNode()
    return res, nil
}

// TemplateCompile compiles src, caching the result by source text.
func (e *Engine) TemplateCompile(src string) (*template.CompiledTemplate, error) {
    ct, err := e.templates.GetOrCompile(src)
    if err != nil {
        return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
    }
    return ct, nil
}

// NewTemplateContext constructs an empty render context sized for at least
// capacityHint variable bindings.
func (e *Engine) NewTemplateContext(capacityHint int) *template.VarContext {
    return template.NewVarContext(capacityHint)
}

// TemplateSetVar binds name to value in ctx, refusing to grow past the
// configured maximum distinct variable count.
func (e *Engine) TemplateSetVar(ctx *template.VarContext, name string, value []byte) error {
    if ctx.Count() >= e.cfg.maxVariableCount {
        if _, known := ctx.Lookup(name); !known {
            return fmt.Errorf("%w: max %d variables per context", ErrVariableLimit, e.cfg.maxVariableCount)
        }
    }
    ctx.Set(name, value)
    return nil
}

// TemplateRender renders compiled against ctx into out, returning the
// number of bytes written.
func (e *Engine) TemplateRender(compiled *template.CompiledTemplate, ctx *template.VarContext, out []byte) (int, error) {
    n, err := template.Render(compiled, ctx, out)
    if err != nil {
        return 0, fmt.Errorf("%w: %v", ErrBufferTooSmall, err)
    }
    e.metrics.observeTemplateRender()
    return n, nil
}

// GatekeeperRun runs the statistical process control pass over sampleFn
// and publishes the report to Prometheus if metrics were configured.
func (e *Engine) GatekeeperRun(cfg gatekeeper.Config, sampleFn func() float64) gatekeeper.Report {
    if cfg.ChatmanConstant <= 0 {
        cfg.ChatmanConstant = e.cfg.chatmanConstant
    }
    report := gatekeeper.Run(cfg, sampleFn)
    e.metrics.publishGatekeeperReport(report)
    e.logger.Info("gatekeeper verdict",
        zap.Bool("pass", report.Verdict()),
        zap.Float64("p95_cycles", report.P95),
        zap.Float64("sigma_level", report.SigmaLevel),
        zap.Float64("throughput_mops", report.ThroughputMOPS),
        zap.Int("samples_taken", report.SamplesTaken),
        zap.Bool("timed_out", report.TimedOut),
    )
    return report
}

