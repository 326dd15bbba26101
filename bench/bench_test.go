// Package bench provides reproducible micro-benchmarks for the engine.
// Run via:  go test ./bench -bench=. -benchmem -cpu 1,4,16
//
// We measure the four hot-path operations the gatekeeper contract cares
// about:
//  1. AskPattern    — triple store pattern lookup
//  2. IsSubclass    — OWL closure bit test
//  3. ValidateNode  — SHACL evaluation of a simple shape
//  4. TemplateRender — compiled template render into a pre-sized buffer
//
// Results are printed in ns/op + alloc/op so CI can diff via benchstat.
package bench

import (
    "math/rand"
    "runtime"
    "testing"

    "github.com/chatman-io/s7tengine/internal/owl"
    "github.com/chatman-io/s7tengine/internal/shacl"
    "github.com/chatman-io/s7tengine/internal/template"
    "github.com/chatman-io/s7tengine/internal/triplestore"
)

const (
    entities = 1 << 16
    rdfType  = 1
)

func newPopulatedStore() *triplestore.Store {
    s := triplestore.New()
    for i := uint32(1); i <= entities; i++ {
        _ = s.AddTriple(i, 2, (i%997)+1)
    }
    return s
}

func BenchmarkAskPattern(b *testing.B) {
    s := newPopulatedStore()
    b.ReportAllocs()
    b.ResetTimer()
    for i := 0; i < b.N; i++ {
        subj := uint32(i%entities) + 1
        s.AskPattern(subj, 2, 0)
    }
}

func newPopulatedClosure() *owl.Closure {
    c := owl.New()
    const depth = 32
    for i := uint32(1); i < depth; i++ {
        _ = c.DeclareSubclass(i+1, i)
    }
    c.MaterializeClosure()
    return c
}

func BenchmarkIsSubclass(b *testing.B) {
    c := newPopulatedClosure()
    b.ReportAllocs()
    b.ResetTimer()
    for i := 0; i < b.N; i++ {
        c.IsSubclass(32, 1)
    }
}

func newShaclFixture() (*shacl.Evaluator, uint32, uint32) {
    store := triplestore.New()
    classes := owl.New()
    const person, nameProp, node = 100, 101, 200
    _ = classes.DeclareSubclass(person, person)
    classes.MaterializeClosure()
    _ = store.AddTriple(node, rdfType, person)
    _ = store.AddTriple(node, nameProp, 999)

    e := shacl.New(store, classes, rdfType)
    const shapeID = 1
    e.DeclareShape(&shacl.Shape{
        ID:          shapeID,
        TargetClass: person,
        Properties:  []shacl.PropertyConstraint{{Predicate: nameProp, MinCount: 1}},
    })
    return e, shapeID, node
}

func BenchmarkValidateNode(b *testing.B) {
    e, shapeID, node := newShaclFixture()
    b.ReportAllocs()
    b.ResetTimer()
    for i := 0; i < b.N; i++ {
        _, _ = e.ValidateNode(shapeID, node)
    }
}

func BenchmarkTemplateRender(b *testing.B) {
    ct, err := template.Compile("Hello, {{name}}! You have {{count}} messages.", 64)
    if err != nil {
        b.Fatalf("compile: %v", err)
    }
    ctx := template.NewVarContext(2)
    ctx.Set("name", []byte("Alice"))
    ctx.Set("count", []byte("3"))
    out := make([]byte, ct.MaxOutputLength)

    b.ReportAllocs()
    b.ResetTimer()
    for i := 0; i < b.N; i++ {
        _, _ = template.Render(ct, ctx, out)
    }
}

func init() {
    rand.Seed(42)
    runtime.GOMAXPROCS(runtime.NumCPU())
}
