// dataset_gen.go is a tiny helper utility to generate deterministic triple
// datasets for standalone benchmarking of the engine outside `go test`. It
// emits newline-separated "subject predicate object" Id triples, drawing
// subject Ids from a configurable distribution so benchmarks can exercise
// both uniform and hot-key (zipf) access patterns.
//
// Usage:
//
//	go run ./tools/dataset_gen -n 1000000 -dist=zipf -seed=42 -out triples.txt
//
// Flags:
//
//	-n        number of triples to generate (default 1e6)
//	-dist     subject distribution: "uniform" or "zipf" (default uniform)
//	-zipfs    Zipf s parameter (>1) (default 1.2)
//	-zipfv    Zipf v parameter (>=1) (default 1.0)
//	-subjects number of distinct subject Ids in the pool (default 100000)
//	-predicates number of distinct predicate Ids in the pool (default 16)
//	-objects  number of distinct object Ids in the pool (default 100000)
//	-seed     RNG seed (default current time)
//	-out      output file (default stdout)
package main

import (
    "bufio"
    "flag"
    "fmt"
    "math/rand"
    "os"
    "time"
)

func main() {
    var (
        n           = flag.Int("n", 1_000_000, "number of triples to generate")
        dist        = flag.String("dist", "uniform", "subject distribution: uniform or zipf")
        zipfS       = flag.Float64("zipfs", 1.2, "zipf s parameter (>1)")
        zipfV       = flag.Float64("zipfv", 1.0, "zipf v parameter (>=1)")
        subjects    = flag.Uint64("subjects", 100_000, "number of distinct subject ids")
        predicates  = flag.Uint64("predicates", 16, "number of distinct predicate ids")
        objects     = flag.Uint64("objects", 100_000, "number of distinct object ids")
        seedVal     = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
        outPath     = flag.String("out", "", "output file (default stdout)")
    )
    flag.Parse()

    rnd := rand.New(rand.NewSource(*seedVal))

    var subjectGen func() uint64
    switch *dist {
    case "uniform":
        subjectGen = func() uint64 { return 1 + rnd.Uint64()%*subjects }
    case "zipf":
        if *zipfS <= 1.0 || *zipfV < 1 {
            fmt.Fprintln(os.Stderr, "zipfs must be >1 and zipfv >=1")
            os.Exit(1)
        }
        z := rand.NewZipf(rnd, *zipfS, *zipfV, *subjects-1)
        subjectGen = func() uint64 { return 1 + z.Uint64() }
    default:
        fmt.Fprintln(os.Stderr, "unknown dist:", *dist)
        os.Exit(1)
    }

    var out *os.File
    var err error
    if *outPath == "" {
        out = os.Stdout
    } else {
        out, err = os.Create(*outPath)
        if err != nil {
            fmt.Fprintln(os.Stderr, "cannot create file:", err)
            os.Exit(1)
        }
        defer out.Close()
    }

    w := bufio.NewWriterSize(out, 1<<20)
    defer w.Flush()

    for i := 0; i < *n; i++ {
        s := subjectGen()
        p := 1 + rnd.Uint64()%*predicates
        o := 1 + rnd.Uint64()%*objects
        fmt.Fprintf(w, "%d %d %d\n", s, p, o)
    }
}
