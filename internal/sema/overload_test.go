package sema

import (
	"testing"

	"github.com/cppsem/cppsem/internal/ast"
	"github.com/cppsem/cppsem/internal/session"
	"github.com/cppsem/cppsem/internal/symbols"
	"github.com/cppsem/cppsem/internal/types"
)

func TestStandardConversionExactMatch(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	i := u.Primitive(types.SignedInt, 32)
	if r := StandardConversion(u, i, types.PRValue, i); r != RankExact {
		t.Fatalf("identical types should rank Exact, got %v", r)
	}
}

func TestStandardConversionIntegralPromotion(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	c := u.Primitive(types.SignedChar, 8)
	i := u.Primitive(types.SignedInt, 32)
	if r := StandardConversion(u, c, types.PRValue, i); r != RankPromotion {
		t.Fatalf("char -> int should be a promotion, got %v", r)
	}
}

func TestStandardConversionNarrowingIsConversionNotPromotion(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	d := u.Primitive(types.Float, 64)
	i := u.Primitive(types.SignedInt, 32)
	if r := StandardConversion(u, d, types.PRValue, i); r != RankConversion {
		t.Fatalf("double -> int should be RankConversion, got %v", r)
	}
}

func TestStandardConversionRvalueToNonConstRefFails(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	i := u.Primitive(types.SignedInt, 32)
	ref := u.LRef(i)
	if r := StandardConversion(u, i, types.PRValue, ref); r != RankNoMatch {
		t.Fatalf("binding a prvalue to a non-const lvalue-ref should fail, got %v", r)
	}
}

func TestStandardConversionRvalueToConstRefSucceeds(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	i := u.Primitive(types.SignedInt, 32)
	constRef := u.LRef(u.CV(i, types.Const))
	if r := StandardConversion(u, i, types.PRValue, constRef); r == RankNoMatch {
		t.Fatalf("binding a prvalue to a const lvalue-ref should succeed, got %v", r)
	}
}

func TestStandardConversionArrayDecaysToPointer(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	i := u.Primitive(types.SignedInt, 32)
	arr := u.Array(i, 3)
	ptr := u.Ptr(i)
	if r := StandardConversion(u, arr, types.LValue, ptr); r != RankExact {
		t.Fatalf("array-to-pointer decay to the matching pointer type should be Exact, got %v", r)
	}
}

func TestStandardConversionNullptrToPointer(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	ptr := u.Ptr(u.Primitive(types.SignedInt, 32))
	if r := StandardConversion(u, u.Nullptr(), types.PRValue, ptr); r != RankConversion {
		t.Fatalf("nullptr -> T* should be RankConversion, got %v", r)
	}
}

func TestStandardConversionDerivedToBasePointer(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	base := sess.Table.NewSymbol(sess.Table.Root, "Base", symbols.Class)
	sess.Table.AddChild(sess.Table.Root, base)
	derived := sess.Table.NewSymbol(sess.Table.Root, "Derived", symbols.Class)
	sess.Table.AddChild(sess.Table.Root, derived)
	derived.Bases = append(derived.Bases, base)

	fromPtr := u.Ptr(u.Decl(derived))
	toPtr := u.Ptr(u.Decl(base))
	if r := StandardConversion(u, fromPtr, types.PRValue, toPtr); r != RankConversion {
		t.Fatalf("Derived* -> Base* should be RankConversion, got %v", r)
	}
}

func TestStandardConversionUnrelatedTypesNoMatch(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	a := sess.Table.NewSymbol(sess.Table.Root, "A", symbols.Class)
	sess.Table.AddChild(sess.Table.Root, a)
	b := sess.Table.NewSymbol(sess.Table.Root, "B", symbols.Class)
	sess.Table.AddChild(sess.Table.Root, b)
	if r := StandardConversion(u, u.Decl(a), types.PRValue, u.Decl(b)); r != RankNoMatch {
		t.Fatalf("unrelated class types should be RankNoMatch, got %v", r)
	}
}

func TestResolveOverloadBestUniqueWins(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	pa := session.NewParsingArguments(sess)

	exact := sess.Table.NewSymbol(sess.Table.Root, "f", symbols.FunctionSymbol)
	exact.Type = u.Function(u.Void(), []types.Type{u.Primitive(types.SignedInt, 32)}, types.FunctionFlags{})
	conv := sess.Table.NewSymbol(sess.Table.Root, "f", symbols.FunctionSymbol)
	conv.Type = u.Function(u.Void(), []types.Type{u.Primitive(types.Float, 64)}, types.FunctionFlags{})

	winner, err := ResolveOverload(pa, []*symbols.Symbol{exact, conv}, []types.Type{u.Primitive(types.SignedInt, 32)}, []types.ValueCategory{types.PRValue})
	if err != nil || winner != exact {
		t.Fatalf("expected the exact-match candidate to win, got %v err %v", winner, err)
	}
}

func TestResolveOverloadAmbiguousWhenNeitherDominates(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	pa := session.NewParsingArguments(sess)

	base := sess.Table.NewSymbol(sess.Table.Root, "Base", symbols.Class)
	sess.Table.AddChild(sess.Table.Root, base)

	f1 := sess.Table.NewSymbol(sess.Table.Root, "f", symbols.FunctionSymbol)
	f1.Type = u.Function(u.Void(), []types.Type{u.Primitive(types.SignedInt, 32), u.Primitive(types.Float, 64)}, types.FunctionFlags{})
	f2 := sess.Table.NewSymbol(sess.Table.Root, "f", symbols.FunctionSymbol)
	f2.Type = u.Function(u.Void(), []types.Type{u.Primitive(types.Float, 64), u.Primitive(types.SignedInt, 32)}, types.FunctionFlags{})

	argTypes := []types.Type{u.Primitive(types.SignedChar, 8), u.Primitive(types.SignedChar, 8)}
	argCats := []types.ValueCategory{types.PRValue, types.PRValue}
	_, err := ResolveOverload(pa, []*symbols.Symbol{f1, f2}, argTypes, argCats)
	if err == nil {
		t.Fatalf("expected ambiguous overload resolution error")
	}
}

func TestResolveOverloadNoViableCandidate(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	pa := session.NewParsingArguments(sess)

	base := sess.Table.NewSymbol(sess.Table.Root, "Base", symbols.Class)
	sess.Table.AddChild(sess.Table.Root, base)
	other := sess.Table.NewSymbol(sess.Table.Root, "Other", symbols.Class)
	sess.Table.AddChild(sess.Table.Root, other)

	f := sess.Table.NewSymbol(sess.Table.Root, "f", symbols.FunctionSymbol)
	f.Type = u.Function(u.Void(), []types.Type{u.Decl(base)}, types.FunctionFlags{})

	_, err := ResolveOverload(pa, []*symbols.Symbol{f}, []types.Type{u.Decl(other)}, []types.ValueCategory{types.PRValue})
	if err == nil {
		t.Fatalf("expected no-viable-overload error")
	}
}

func TestResolveOverloadRejectsWrongArity(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	pa := session.NewParsingArguments(sess)

	f := sess.Table.NewSymbol(sess.Table.Root, "f", symbols.FunctionSymbol)
	f.Type = u.Function(u.Void(), []types.Type{u.Primitive(types.SignedInt, 32)}, types.FunctionFlags{})

	_, err := ResolveOverload(pa, []*symbols.Symbol{f}, nil, nil)
	if err == nil {
		t.Fatalf("expected wrong-arity call to have no viable candidate")
	}
}

func TestDeduceCallCandidatesPassesThroughNonTemplateCandidate(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	pa := session.NewParsingArguments(sess)

	f := sess.Table.NewSymbol(sess.Table.Root, "f", symbols.FunctionSymbol)
	f.Type = u.Function(u.Void(), []types.Type{u.Primitive(types.SignedInt, 32)}, types.FunctionFlags{})

	got, err := DeduceCallCandidates(pa, f, []types.Type{u.Primitive(types.SignedInt, 32)})
	if err != nil || len(got) != 1 || got[0] != f {
		t.Fatalf("expected a non-template candidate to pass through unchanged, got %v err %v", got, err)
	}
}

func TestResolveOverloadDeducesFunctionTemplateCandidate(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	pa := session.NewParsingArguments(sess)

	decl := &ast.FunctionDeclaration{
		NameTok:    nameTok("identity"),
		ReturnType: &ast.IdType{Name: plainName("T")},
		Templates:  []*ast.TemplateParamDecl{{NameTok: nameTok("T"), IsType: true}},
		Params:     []*ast.ParamDeclaration{{NameTok: nameTok("x"), TypeExpr: &ast.IdType{Name: plainName("T")}}},
	}
	if err := DriveDeclaration(pa, decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	candidate := symbols.TryChildren(sess.Table.Root, "identity")[0]

	argTypes := []types.Type{u.Primitive(types.SignedInt, 32)}
	argCats := []types.ValueCategory{types.PRValue}
	winner, err := ResolveOverload(pa, []*symbols.Symbol{candidate}, argTypes, argCats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ft, ok := mustEntity(winner.Type).(*types.FunctionType)
	if !ok {
		t.Fatalf("expected the deduced instance's type to be a concrete *types.FunctionType, got %T", winner.Type)
	}
	if ft.Ret != u.Primitive(types.SignedInt, 32) || ft.Params[0] != u.Primitive(types.SignedInt, 32) {
		t.Fatalf("expected T deduced to int throughout, got ret %s params %v", ft.Ret, ft.Params)
	}
}

func TestResolveSurrogateCallThroughFunctorOperator(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	pa := session.NewParsingArguments(sess)

	functorCls := sess.Table.NewSymbol(sess.Table.Root, "Adder", symbols.Class)
	sess.Table.AddChild(sess.Table.Root, functorCls)
	callOp := sess.Table.NewSymbol(functorCls, "operator()", symbols.FunctionSymbol)
	sess.Table.AddChild(functorCls, callOp)
	callOp.Type = u.Function(u.Primitive(types.SignedInt, 32), []types.Type{u.Primitive(types.SignedInt, 32)}, types.FunctionFlags{})

	callee := []ExprResult{{Type: u.Decl(functorCls), Category: types.LValue}}
	got, err := ResolveSurrogateCall(pa, callee, []types.Type{u.Primitive(types.SignedInt, 32)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Type != u.Primitive(types.SignedInt, 32) {
		t.Fatalf("got %v, want int (the operator()'s return type)", got)
	}
}

func TestResolveSurrogateCallThroughFunctionPointer(t *testing.T) {
	sess := newTestSession()
	u := sess.Universe
	pa := session.NewParsingArguments(sess)

	fnType := u.Function(u.Primitive(types.Bool, 8), []types.Type{u.Primitive(types.SignedInt, 32)}, types.FunctionFlags{})
	callee := []ExprResult{{Type: u.Ptr(fnType), Category: types.PRValue}}
	got, err := ResolveSurrogateCall(pa, callee, []types.Type{u.Primitive(types.SignedInt, 32)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Type != u.Primitive(types.Bool, 8) {
		t.Fatalf("got %v, want bool", got)
	}
}
