package xref

import (
	"testing"

	"github.com/cppsem/cppsem/internal/symbols"
	"github.com/cppsem/cppsem/internal/token"
)

func TestRecordIdempotent(t *testing.T) {
	r := NewRecorder()
	tbl := symbols.NewSymbolTable()
	sym := tbl.NewSymbol(tbl.Root, "f", symbols.FunctionSymbol)

	span := token.Span{Origin: token.Origin{File: "a.cpp", Line: 1}, Offset: 0, Count: 1}
	r.Resolved(span, sym)
	r.Resolved(span, sym) // duplicate insert

	got := r.SymbolsAt(Resolved, span)
	if len(got) != 1 {
		t.Fatalf("expected 1 symbol after duplicate record, got %d", len(got))
	}
	spans := r.SpansOf(Resolved, sym)
	if len(spans) != 1 {
		t.Fatalf("expected 1 span in the inverse index, got %d", len(spans))
	}
}

func TestOverloadedResolutionSubsetOfResolved(t *testing.T) {
	r := NewRecorder()
	tbl := symbols.NewSymbolTable()
	a := tbl.NewSymbol(tbl.Root, "f", symbols.FunctionSymbol)
	b := tbl.NewSymbol(tbl.Root, "f", symbols.FunctionSymbol)

	span := token.Span{Origin: token.Origin{File: "a.cpp", Line: 1}, Offset: 0, Count: 1}
	r.Resolved(span, a, b)
	r.OverloadedResolution(span, a)

	resolved := r.SymbolsAt(Resolved, span)
	overloaded := r.SymbolsAt(OverloadedResolution, span)
	if len(resolved) != 2 || len(overloaded) != 1 || overloaded[0] != a {
		t.Fatalf("unexpected recorder state: resolved=%v overloaded=%v", resolved, overloaded)
	}
}

func TestAllSpansSortedDeterministically(t *testing.T) {
	r := NewRecorder()
	tbl := symbols.NewSymbolTable()
	sym := tbl.NewSymbol(tbl.Root, "x", symbols.Variable)

	s2 := token.Span{Origin: token.Origin{File: "a.cpp", Line: 2}, Offset: 5, Count: 1}
	s1 := token.Span{Origin: token.Origin{File: "a.cpp", Line: 1}, Offset: 0, Count: 1}
	r.Resolved(s2, sym)
	r.Resolved(s1, sym)

	all := r.AllSpans(Resolved)
	if len(all) != 2 || all[0] != s1 || all[1] != s2 {
		t.Fatalf("expected spans sorted by line, got %v", all)
	}
}
