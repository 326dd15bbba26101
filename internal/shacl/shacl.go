// Package shacl implements the engine's SHACL-like node-shape evaluator:
// applicability via is_subclass, then min/max-cardinality, class-membership,
// and datatype checks per declared property constraint, reported as an
// aggregated violation record rather than raised as an error. Evaluation is
// always side-effect-free; it never mutates the triple store or closure it
// reads from.
package shacl

import (
    "errors"
    "fmt"

    "github.com/chatman-io/s7tengine/internal/owl"
    "github.com/chatman-io/s7tengine/internal/triplestore"
)

// ErrUnknownShape is returned when a shape Id was never declared.
var ErrUnknownShape = errors.New("shacl: unknown shape")

// PropertyConstraint is one declared property constraint of a shape; zero
// values for MinCount/MaxCount/Datatype/Class mean "not constrained".
type PropertyConstraint struct {
    Predicate uint32
    MinCount  int // 0 means unconstrained
    MaxCount  int // 0 means unconstrained
    Datatype  uint32
    Class     uint32
}

// Shape is a SHACL node shape: a target class plus an ordered list of
// property constraints.
type Shape struct {
    ID          uint32
    TargetClass uint32
    Properties  []PropertyConstraint
}

// Result aggregates the violations found for one node against one shape.
type Result struct {
    Applies          bool
    MinCountFailures int
    MaxCountFailures int
    ClassFailures    int
    DatatypeFailures int
}

// Conforms reports whether the node satisfied every constraint. A shape
// that does not apply (node has no applicable type) trivially conforms.
func (r Result) Conforms() bool {
    return r.MinCountFailures == 0 && r.MaxCountFailures == 0 &&
        r.ClassFailures == 0 && r.DatatypeFailures == 0
}

// Violations returns the total violation count across all constraint kinds.
func (r Result) Violations() int {
    return r.MinCountFailures + r.MaxCountFailures + r.ClassFailures + r.DatatypeFailures
}

// Evaluator evaluates shapes against a triple store and class closure. The
// rdfType predicate Id is the (interned) identifier the loader used for
// rdf:type triples; type_of(n) is derived from (n, rdfType, ?).
type Evaluator struct {
    store   *triplestore.Store
    classes *owl.Closure
    rdfType uint32
    shapes  map[uint32]*Shape
}

// New constructs an Evaluator. rdfType is the predicate Id used to derive a
// node's type from (n, rdfType, ?) triples.
func New(store *triplestore.Store, classes *owl.Closure, rdfType uint32) *Evaluator {
    return &Evaluator{
        store:   store,
        classes: classes,
        rdfType: rdfType,
        shapes:  make(map[uint32]*Shape),
    }
}

// DeclareShape registers a shape for later validation calls.
func (e *Evaluator) DeclareShape(s *Shape) {
    e.shapes[s.ID] = s
}

// typesOf returns every type Id n was declared to have via rdfType triples.
func (e *Evaluator) typesOf(n uint32) []uint32 {
    return e.store.ObjectsOf(n, e.rdfType)
}

// applicable reports whether node n has some declared type that is a
// subclass of (or equal to) class c.
func (e *Evaluator) applicable(n, class uint32) bool {
    for _, t := range e.typesOf(n) {
        if t == class || e.classes.IsSubclass(t, class) {
            return true
        }
    }
    return false
}

// ValidateNode evaluates shape shapeID against node nodeID (§4.6). It never
// short-circuits: every property constraint is checked and the full
// violation tally is returned.
func (e *Evaluator) ValidateNode(shapeID, nodeID uint32) (Result, error) {
    shape, ok := e.shapes[shapeID]
    if !ok {
        return Result{}, fmt.Errorf("%w: %d", ErrUnknownShape, shapeID)
    }

    if !e.applicable(nodeID, shape.TargetClass) {
        return Result{Applies: false}, nil
    }

    res := Result{Applies: true}
    for _, pc := range shape.Properties {
        e.checkProperty(nodeID, pc, &res)
    }
    return res, nil
}

// ValidateAsk is the exists-a-violation mode: it returns as soon as any
// constraint fails, for callers that only need a boolean.
func (e *Evaluator) ValidateAsk(shapeID, nodeID uint32) (bool, error) {
    shape, ok := e.shapes[shapeID]
    if !ok {
        return false, fmt.Errorf("%w: %d", ErrUnknownShape, shapeID)
    }
    if !e.applicable(nodeID, shape.TargetClass) {
        return false, nil
    }
    for _, pc := range shape.Properties {
        var res Result
        e.checkProperty(nodeID, pc, &res)
        if res.Violations() > 0 {
            return true, nil
        }
    }
    return false, nil
}

// ValidateAll runs shapeID against every node that currently has an
// applicable declared type, returning one Result per such node. This is a
// repeated call to ValidateNode's core primitive, not a new hot-path
// primitive: it exists for batch tooling (CLI, demos), not the 7-tick core.
func (e *Evaluator) ValidateAll(shapeID uint32) (map[uint32]Result, error) {
    shape, ok := e.shapes[shapeID]
    if !ok {
        return nil, fmt.Errorf("%w: %d", ErrUnknownShape, shapeID)
    }

    out := make(map[uint32]Result)
    e.store.SubjectsWithPredicate(e.rdfType).ForEach(func(s int) {
        node := uint32(s)
        if !e.applicable(node, shape.TargetClass) {
            return
        }
        res := Result{Applies: true}
        for _, pc := range shape.Properties {
            e.checkProperty(node, pc, &res)
        }
        out[node] = res
    })
    return out, nil
}

func (e *Evaluator) checkProperty(node uint32, pc PropertyConstraint, res *Result) {
    if pc.MinCount > 0 {
        if !e.satisfiesMinCount(node, pc.Predicate, pc.MinCount) {
            res.MinCountFailures++
        }
    }
    if pc.MaxCount > 0 {
        if !e.satisfiesMaxCount(node, pc.Predicate, pc.MaxCount) {
            res.MaxCountFailures++
        }
    }
    if pc.Class != 0 {
        for _, o := range e.store.ObjectsOf(node, pc.Predicate) {
            if !e.applicable(o, pc.Class) {
                res.ClassFailures++
            }
        }
    }
    if pc.Datatype != 0 {
        for _, o := range e.store.ObjectsOf(node, pc.Predicate) {
            if e.store.Datatype(o) != pc.Datatype {
                res.DatatypeFailures++
            }
        }
    }
}

// satisfiesMinCount implements the k==1 fast path (a single bit test via
// AskPattern) and falls back to an exact count for k>1.
func (e *Evaluator) satisfiesMinCount(node, pred uint32, k int) bool {
    if k == 1 {
        return e.store.AskPattern(node, pred, 0)
    }
    return len(e.store.ObjectsOf(node, pred)) >= k
}

// satisfiesMaxCount mirrors satisfiesMinCount for the upper bound.
func (e *Evaluator) satisfiesMaxCount(node, pred uint32, k int) bool {
    if k == 1 {
        // at most one object: AskPattern only tells us "at least one"; the
        // exact count is needed even in the k==1 case to detect *more* than
        // one, so this path always counts.
        return len(e.store.ObjectsOf(node, pred)) <= 1
    }
    return len(e.store.ObjectsOf(node, pred)) <= k
}
