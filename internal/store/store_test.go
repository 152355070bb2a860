package store

import (
	"path/filepath"
	"testing"

	"github.com/cppsem/cppsem/internal/symbols"
	"github.com/cppsem/cppsem/internal/token"
	"github.com/cppsem/cppsem/internal/types"
	"github.com/cppsem/cppsem/internal/xref"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func buildFixtureTree(t *testing.T) (*symbols.SymbolTable, *symbols.Symbol, *symbols.Symbol) {
	t.Helper()
	tbl := symbols.NewSymbolTable()
	u := types.NewUniverse()

	cls := tbl.NewSymbol(tbl.Root, "Widget", symbols.Class)
	tbl.AddChild(tbl.Root, cls)
	cls.Type = u.Decl(cls)

	field := tbl.NewSymbol(cls, "count", symbols.Variable)
	tbl.AddChild(cls, field)
	field.Type = u.Primitive(types.SignedInt, 32)

	symbols.MintIDs(tbl.Root)
	return tbl, cls, field
}

func TestSaveAndLoadSnapshotRoundTripsSymbols(t *testing.T) {
	s := openTestStore(t)
	tbl, cls, field := buildFixtureTree(t)
	rec := xref.NewRecorder()

	if err := SaveSnapshot(s, "v1", tbl.Root, rec); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	rows, err := s.LoadSymbols("v1")
	if err != nil {
		t.Fatalf("LoadSymbols: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 symbols (Widget, Widget::count), got %d: %v", len(rows), rows)
	}
	byName := map[string]SymbolRow{}
	for _, r := range rows {
		byName[r.QualifiedName] = r
	}
	widget, ok := byName["Widget"]
	if !ok || widget.UID != cls.UID() || widget.Kind != "class" {
		t.Fatalf("expected Widget row with matching uid/kind, got %+v", widget)
	}
	count, ok := byName["Widget::count"]
	if !ok || count.ParentUID != cls.UID() || count.UID != field.UID() {
		t.Fatalf("expected Widget::count row parented under Widget's uid, got %+v", count)
	}
}

func TestSaveAndLoadSnapshotRoundTripsXrefs(t *testing.T) {
	s := openTestStore(t)
	tbl, cls, _ := buildFixtureTree(t)
	rec := xref.NewRecorder()

	span := token.Span{Origin: token.Origin{File: "widget.cpp", Line: 10}, Offset: 4, Count: 1}
	rec.Resolved(span, cls)

	if err := SaveSnapshot(s, "v1", tbl.Root, rec); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	xrefs, err := s.LoadXrefs("v1")
	if err != nil {
		t.Fatalf("LoadXrefs: %v", err)
	}
	if len(xrefs) != 1 {
		t.Fatalf("expected 1 xref row, got %d", len(xrefs))
	}
	got := xrefs[0]
	if got.Kind != "resolved" || got.File != "widget.cpp" || got.Line != 10 || got.SymbolUID != cls.UID() {
		t.Fatalf("got %+v, want resolved at widget.cpp:10 -> Widget's uid", got)
	}
}

func TestSaveSnapshotReplacesPriorLabel(t *testing.T) {
	s := openTestStore(t)
	tbl, _, _ := buildFixtureTree(t)
	rec := xref.NewRecorder()

	if err := SaveSnapshot(s, "v1", tbl.Root, rec); err != nil {
		t.Fatalf("first SaveSnapshot: %v", err)
	}

	tbl2 := symbols.NewSymbolTable()
	extra := tbl2.NewSymbol(tbl2.Root, "Other", symbols.Class)
	tbl2.AddChild(tbl2.Root, extra)
	symbols.MintIDs(tbl2.Root)

	if err := SaveSnapshot(s, "v1", tbl2.Root, rec); err != nil {
		t.Fatalf("second SaveSnapshot: %v", err)
	}

	rows, err := s.LoadSymbols("v1")
	if err != nil {
		t.Fatalf("LoadSymbols: %v", err)
	}
	if len(rows) != 1 || rows[0].QualifiedName != "Other" {
		t.Fatalf("re-saving the same label should replace, not accumulate: got %v", rows)
	}
}

func TestDiffSymbolsFindsMissingChangedAndUnexpected(t *testing.T) {
	want := []SymbolRow{
		{QualifiedName: "Widget", Kind: "class"},
		{QualifiedName: "Widget::count", Kind: "variable", TypeString: "int"},
		{QualifiedName: "Widget::Gone", Kind: "variable"},
	}
	got := []SymbolRow{
		{QualifiedName: "Widget", Kind: "class"},
		{QualifiedName: "Widget::count", Kind: "variable", TypeString: "bool"},
		{QualifiedName: "Widget::New", Kind: "variable"},
	}
	diffs := DiffSymbols(want, got)
	wantDiffs := map[string]bool{
		"missing: Widget::Gone":                                            true,
		"changed: Widget::count (kind variable->variable, type int->bool)": true,
		"unexpected: Widget::New":                                          true,
	}
	if len(diffs) != len(wantDiffs) {
		t.Fatalf("got %v, want %v", diffs, wantDiffs)
	}
	for _, d := range diffs {
		if !wantDiffs[d] {
			t.Fatalf("unexpected diff entry %q", d)
		}
	}
}

func TestDiffSymbolsEmptyWhenIdentical(t *testing.T) {
	rows := []SymbolRow{{QualifiedName: "Widget", Kind: "class", TypeString: "Widget"}}
	if diffs := DiffSymbols(rows, rows); len(diffs) != 0 {
		t.Fatalf("expected no diffs for identical snapshots, got %v", diffs)
	}
}
