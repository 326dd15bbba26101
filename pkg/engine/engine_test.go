package engine

import (
    "context"
    "errors"
    "testing"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/testutil"

    "github.com/chatman-io/s7tengine/internal/gatekeeper"
    "github.com/chatman-io/s7tengine/internal/shacl"
    "github.com/chatman-io/s7tengine/internal/snapshot"
)

func TestInternResolveRoundTrip(t *testing.T) {
    e, err := New(16)
    if err != nil {
        t.Fatalf("new: %v", err)
    }
    id, err := e.Intern([]byte("ex:Alice"))
    if err != nil {
        t.Fatalf("intern: %v", err)
    }
    s, err := e.Resolve(id)
    if err != nil {
        t.Fatalf("resolve: %v", err)
    }
    if s != "ex:Alice" {
        t.Fatalf("resolve = %q, want ex:Alice", s)
    }
    if _, err := e.Resolve(id + 100); !errors.Is(err, ErrUnknownID) {
        t.Fatalf("expected ErrUnknownID, got %v", err)
    }
}

func TestAddTripleAndAskPattern(t *testing.T) {
    e, err := New(16)
    if err != nil {
        t.Fatalf("new: %v", err)
    }
    alice, _ := e.Intern([]byte("ex:Alice"))
    knows, _ := e.Intern([]byte("ex:knows"))
    bob, _ := e.Intern([]byte("ex:Bob"))

    if err := e.AddTriple(alice, knows, bob); err != nil {
        t.Fatalf("add_triple: %v", err)
    }
    if !e.AskPattern(alice, knows, bob) {
        t.Fatalf("expected ask_pattern to hold")
    }
    if err := e.AddTriple(0, knows, bob); !errors.Is(err, ErrInvalidID) {
        t.Fatalf("expected ErrInvalidID, got %v", err)
    }
}

func TestSubclassAndShacl(t *testing.T) {
    e, err := New(16, WithRDFTypePredicate(1))
    if err != nil {
        t.Fatalf("new: %v", err)
    }
    rdfType := uint32(1)
    person, _ := e.Intern([]byte("ex:Person"))
    employee, _ := e.Intern([]byte("ex:Employee"))
    name, _ := e.Intern([]byte("ex:name"))
    alice, _ := e.Intern([]byte("ex:Alice"))
    aliceName, _ := e.Intern([]byte("\"Alice\""))

    if err := e.DeclareSubclass(employee, person); err != nil {
        t.Fatalf("declare_subclass: %v", err)
    }
    e.MaterializeClosure()
    if !e.IsSubclass(employee, person) {
        t.Fatalf("expected employee to be a subclass of person")
    }

    if err := e.AddTriple(alice, rdfType, employee); err != nil {
        t.Fatalf("add_triple: %v", err)
    }
    if err := e.AddTriple(alice, name, aliceName); err != nil {
        t.Fatalf("add_triple: %v", err)
    }

    const shapeID = 100
    e.DeclareShape(&shacl.Shape{
        ID:          shapeID,
        TargetClass: person,
        Properties:  []shacl.PropertyConstraint{{Predicate: name, MinCount: 1}},
    })

    res, err := e.ShaclValidateNode(shapeID, alice)
    if err != nil {
        t.Fatalf("shacl_validate_node: %v", err)
    }
    if !res.Applies || res.Violations() != 0 {
        t.Fatalf("expected alice to conform via inherited Person type, got %+v", res)
    }
}

func TestTemplateCompileAndRender(t *testing.T) {
    e, err := New(16, WithMaxVariableCount(1))
    if err != nil {
        t.Fatalf("new: %v", err)
    }
    ct, err := e.TemplateCompile("Hello, {{name}}!")
    if err != nil {
        t.Fatalf("template_compile: %v", err)
    }
    ctx := e.NewTemplateContext(1)
    if err := e.TemplateSetVar(ctx, "name", []byte("World")); err != nil {
        t.Fatalf("template_set_var: %v", err)
    }
    if err := e.TemplateSetVar(ctx, "other", []byte("x")); !errors.Is(err, ErrVariableLimit) {
        t.Fatalf("expected ErrVariableLimit, got %v", err)
    }

    out := make([]byte, ct.MaxOutputLength)
    n, err := e.TemplateRender(ct, ctx, out)
    if err != nil {
        t.Fatalf("template_render: %v", err)
    }
    if got := string(out[:n]); got != "Hello, World!" {
        t.Fatalf("render = %q", got)
    }
}

func TestGatekeeperRun(t *testing.T) {
    e, err := New(16)
    if err != nil {
        t.Fatalf("new: %v", err)
    }
    report := e.GatekeeperRun(gatekeeper.Config{SampleSize: 100}, func() float64 { return 2 })
    if report.SamplesTaken != 100 {
        t.Fatalf("expected 100 samples taken, got %d", report.SamplesTaken)
    }
}

func TestMetricsObserveCoreOperations(t *testing.T) {
    reg := prometheus.NewRegistry()
    e, err := New(16, WithMetrics(reg))
    if err != nil {
        t.Fatalf("new: %v", err)
    }

    alice, _ := e.Intern([]byte("ex:Alice"))
    knows, _ := e.Intern([]byte("ex:knows"))
    bob, _ := e.Intern([]byte("ex:Bob"))
    if err := e.AddTriple(alice, knows, bob); err != nil {
        t.Fatalf("add_triple: %v", err)
    }
    if got := testutil.ToFloat64(e.metrics.(*promMetrics).tripleCount); got != 1 {
        t.Fatalf("expected triple cardinality gauge = 1, got %v", got)
    }

    if err := e.DeclareSubclass(2, 3); err != nil {
        t.Fatalf("declare_subclass: %v", err)
    }
    e.MaterializeClosure()
    if got := testutil.ToFloat64(e.metrics.(*promMetrics).closureClassCount); got != 2 {
        t.Fatalf("expected closure class-count gauge = 2, got %v", got)
    }

    e.DeclareShape(&shacl.Shape{ID: 1, TargetClass: 999})
    if _, err := e.ShaclValidateNode(1, alice); err != nil {
        t.Fatalf("shacl_validate_node: %v", err)
    }
    if got := testutil.ToFloat64(e.metrics.(*promMetrics).validateNodeTotal); got != 1 {
        t.Fatalf("expected validate_node counter = 1, got %v", got)
    }

    ct, err := e.TemplateCompile("hi {{name}}")
    if err != nil {
        t.Fatalf("template_compile: %v", err)
    }
    ctx := e.NewTemplateContext(1)
    _ = e.TemplateSetVar(ctx, "name", []byte("World"))
    out := make([]byte, ct.MaxOutputLength)
    if _, err := e.TemplateRender(ct, ctx, out); err != nil {
        t.Fatalf("template_render: %v", err)
    }
    if got := testutil.ToFloat64(e.metrics.(*promMetrics).templateRenderTotal); got != 1 {
        t.Fatalf("expected template_render counter = 1, got %v", got)
    }
}

func TestDumpRestoreRoundTrip(t *testing.T) {
    store := snapshot.NewMemorySnapshotStore()
    e, err := New(16, WithSnapshotStore(store))
    if err != nil {
        t.Fatalf("new: %v", err)
    }

    alice, _ := e.Intern([]byte("ex:Alice"))
    knows, _ := e.Intern([]byte("ex:knows"))
    bob, _ := e.Intern([]byte("ex:Bob"))
    if err := e.AddTriple(alice, knows, bob); err != nil {
        t.Fatalf("add_triple: %v", err)
    }

    ctx := context.Background()
    if err := e.Dump(ctx, 1); err != nil {
        t.Fatalf("dump: %v", err)
    }

    restored, err := Restore(ctx, 1, 16, WithSnapshotStore(store))
    if err != nil {
        t.Fatalf("restore: %v", err)
    }
    if !restored.AskPattern(alice, knows, bob) {
        t.Fatalf("expected restored engine to have the original triple")
    }
    s, err := restored.Resolve(alice)
    if err != nil || s != "ex:Alice" {
        t.Fatalf("resolve(alice) = %q, %v", s, err)
    }
}
