package symbols

import (
	"testing"

	"github.com/cppsem/cppsem/internal/ast"
)

func TestAddChildAndTryChildren(t *testing.T) {
	tbl := NewSymbolTable()
	ns := tbl.NewSymbol(tbl.Root, "N", Namespace)
	tbl.AddChild(tbl.Root, ns)

	f1 := tbl.NewSymbol(ns, "f", FunctionSymbol)
	f2 := tbl.NewSymbol(ns, "f", FunctionSymbol)
	tbl.AddChild(ns, f1)
	tbl.AddChild(ns, f2)

	got := TryChildren(ns, "f")
	if len(got) != 2 {
		t.Fatalf("expected 2 overloads named f, got %d", len(got))
	}
	if got[0] != f1 || got[1] != f2 {
		t.Errorf("overload order not preserved")
	}
	if len(TryChildren(ns, "missing")) != 0 {
		t.Errorf("expected no children for an absent name")
	}
}

func TestQualifiedName(t *testing.T) {
	tbl := NewSymbolTable()
	ns := tbl.NewSymbol(tbl.Root, "N", Namespace)
	tbl.AddChild(tbl.Root, ns)
	cls := tbl.NewSymbol(ns, "C", Class)
	tbl.AddChild(ns, cls)
	if got := cls.QualifiedName(); got != "N::C" {
		t.Errorf("QualifiedName() = %q, want N::C", got)
	}
}

func TestAnyForwardDecl(t *testing.T) {
	tbl := NewSymbolTable()
	cls := tbl.NewSymbol(tbl.Root, "C", Class)
	cls.Forwards = append(cls.Forwards, &ast.ForwardDeclaration{Kind: ast.KindClass})

	fwd, ok := AnyForwardDecl[*ast.ForwardDeclaration](cls)
	if !ok || fwd == nil {
		t.Fatalf("expected a *ast.ForwardDeclaration forward decl")
	}
	if _, ok := AnyForwardDecl[*ast.FunctionDeclaration](cls); ok {
		t.Errorf("did not expect a *ast.FunctionDeclaration forward decl")
	}
}

func TestMintIDsStableAndIdempotent(t *testing.T) {
	tbl := NewSymbolTable()
	a := tbl.NewSymbol(tbl.Root, "A", Class)
	tbl.AddChild(tbl.Root, a)

	MintIDs(tbl.Root)
	if a.UID() == "" {
		t.Fatalf("expected a minted UID")
	}
	first := a.UID()

	b := tbl.NewSymbol(tbl.Root, "B", Class)
	tbl.AddChild(tbl.Root, b)
	MintIDs(tbl.Root)

	if a.UID() != first {
		t.Errorf("re-running MintIDs changed an existing symbol's UID")
	}
	if b.UID() == "" {
		t.Errorf("expected the newly added symbol to get a UID")
	}
	if a.UID() == b.UID() {
		t.Errorf("two distinct symbols got the same UID")
	}
}

func TestEvaluationCacheCycleDetection(t *testing.T) {
	tbl := NewSymbolTable()
	s := tbl.NewSymbol(tbl.Root, "S", Class)

	_, done, cycling := s.BeginEvaluation(nil, "")
	if done || cycling {
		t.Fatalf("first BeginEvaluation should proceed fresh")
	}

	// Re-entrant evaluation of the same key before FinishEvaluation.
	_, done2, cycling2 := s.BeginEvaluation(nil, "")
	if done2 || !cycling2 {
		t.Errorf("re-entrant BeginEvaluation should report cycling")
	}

	s.FinishEvaluation(nil, "", nil, nil)
	result, done3, cycling3 := s.BeginEvaluation(nil, "")
	if !done3 || cycling3 {
		t.Errorf("after FinishEvaluation, BeginEvaluation should report done")
	}
	if result != nil {
		t.Errorf("expected nil cached result, got %v", result)
	}
}
