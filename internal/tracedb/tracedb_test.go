package tracedb_test

import (
	"path/filepath"
	"testing"

	"github.com/nplang/corec/internal/ast"
	"github.com/nplang/corec/internal/pipeline"
	"github.com/nplang/corec/internal/symbol"
	"github.com/nplang/corec/internal/tracedb"
)

func TestRun_RecordsStageEventsForEachPipelineStage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.sqlite")
	db, err := tracedb.Open(path)
	if err != nil {
		t.Fatalf("opening trace db: %v", err)
	}
	defer db.Close()

	run, err := db.NewRun()
	if err != nil {
		t.Fatalf("starting run: %v", err)
	}

	p := pipeline.New()
	p.Trace = run.TraceHook()

	syms := symbol.NewTable()
	res := p.Compile(syms, "fixture.json", "", &ast.IntegerLiteral{Value: 7})
	if res.Failed() {
		t.Fatalf("expected compilation to succeed: %s", res.Diags.Format(false))
	}

	events, err := db.EventsForRun(run.ID())
	if err != nil {
		t.Fatalf("querying events: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 stage events (bind, check, escape, ir), got %d: %+v", len(events), events)
	}
	if events[len(events)-1].Stage != string(pipeline.StageIR) {
		t.Fatalf("expected the last recorded stage to be ir, got %s", events[len(events)-1].Stage)
	}
	for _, e := range events {
		if e.Failed {
			t.Fatalf("did not expect any failed stage event, got %+v", e)
		}
	}
}

func TestOpen_CreatesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.sqlite")
	db1, err := tracedb.Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	db1.Close()

	db2, err := tracedb.Open(path)
	if err != nil {
		t.Fatalf("second open on existing file: %v", err)
	}
	defer db2.Close()
}
