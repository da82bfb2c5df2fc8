package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/nplang/corec/internal/astjson"
	"github.com/nplang/corec/internal/symbol"
)

// Unit names one compilation unit: a JSON-encoded AST program read from
// Filename.
type Unit struct {
	Filename string
}

// CompileAll compiles every unit concurrently, each through its own Pipeline,
// symbol.Table and diag.Sink — no mutable state is shared across files, so
// running them concurrently is equivalent to invoking the single-file path
// once per file, just without repeated process startup. Concurrency is
// bounded to GOMAXPROCS via golang.org/x/sync/errgroup.SetLimit, the pattern
// the golang-tools pack uses throughout to cap goroutine fan-out over
// independent units of work.
//
// CompileAll never returns an error for a failing compilation — a fatal
// diagnostic in one file's Result is a normal outcome, not a pipeline bug.
// The returned error is non-nil only if a file could not even be read or
// decoded, or if ctx is canceled.
//
// trace, if non-nil, is attached to every per-file Pipeline's Trace hook
// (the corec CLI's --trace-db wiring); it must be safe for concurrent use
// since every file's pipeline calls it from its own goroutine.
func CompileAll(ctx context.Context, units []Unit, trace func(Stage, *Result)) ([]*Result, error) {
	results := make([]*Result, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			content, err := os.ReadFile(u.Filename)
			if err != nil {
				return fmt.Errorf("pipeline: reading %s: %w", u.Filename, err)
			}

			syms := symbol.NewTable()
			root, err := astjson.NewDecoder(syms).DecodeExpr(content)
			if err != nil {
				return fmt.Errorf("pipeline: decoding %s: %w", u.Filename, err)
			}

			p := New()
			p.Trace = trace
			results[i] = p.Compile(syms, u.Filename, string(content), root)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
