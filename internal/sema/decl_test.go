package sema

import (
	"testing"

	"github.com/cppsem/cppsem/internal/ast"
	"github.com/cppsem/cppsem/internal/session"
	"github.com/cppsem/cppsem/internal/symbols"
	"github.com/cppsem/cppsem/internal/types"
)

func TestDriveNamespaceCreatesThenReopens(t *testing.T) {
	sess := newTestSession()
	pa := session.NewParsingArguments(sess)

	first := &ast.NamespaceDeclaration{NameTok: nameTok("app")}
	if err := DriveDeclaration(pa, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created := symbols.TryChildren(sess.Table.Root, "app")
	if len(created) != 1 {
		t.Fatalf("expected exactly one 'app' namespace symbol, got %d", len(created))
	}

	second := &ast.NamespaceDeclaration{NameTok: nameTok("app")}
	if err := DriveDeclaration(pa, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reopened := symbols.TryChildren(sess.Table.Root, "app")
	if len(reopened) != 1 {
		t.Fatalf("reopening the same namespace should not create a second symbol, got %d", len(reopened))
	}
	if reopened[0] != created[0] {
		t.Fatalf("reopening should reuse the same namespace symbol")
	}
	if reopened[0].ImplDecl != second {
		t.Fatalf("reopening should update ImplDecl to the latest declaration")
	}
}

func TestDriveForwardRecordsForwardDeclAndIsFoundByClass(t *testing.T) {
	sess := newTestSession()
	pa := session.NewParsingArguments(sess)

	fwd := &ast.ForwardDeclaration{NameTok: nameTok("Widget"), Kind: ast.KindStruct}
	if err := DriveDeclaration(pa, fwd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	syms := symbols.TryChildren(sess.Table.Root, "Widget")
	if len(syms) != 1 || syms[0].Kind != symbols.Struct {
		t.Fatalf("expected one Struct symbol named Widget, got %v", syms)
	}
	if len(syms[0].Forwards) != 1 || syms[0].Forwards[0] != fwd {
		t.Fatalf("expected the forward declaration recorded on the symbol")
	}

	cls := &ast.ClassDeclaration{NameTok: nameTok("Widget"), Kind: ast.KindStruct}
	if err := DriveDeclaration(pa, cls); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := symbols.TryChildren(sess.Table.Root, "Widget")
	if len(after) != 1 {
		t.Fatalf("defining a forward-declared class should reuse its symbol, got %d symbols", len(after))
	}
	if after[0] != syms[0] {
		t.Fatalf("the class definition should attach to the same symbol the forward declaration created")
	}
}

func TestDriveClassResolvesBasesAndGeneratesImplicitSpecialMembers(t *testing.T) {
	sess := newTestSession()
	pa := session.NewParsingArguments(sess)

	baseDecl := &ast.ClassDeclaration{NameTok: nameTok("Base"), Kind: ast.KindClass}
	if err := DriveDeclaration(pa, baseDecl); err != nil {
		t.Fatalf("unexpected error driving Base: %v", err)
	}
	baseSym := symbols.TryChildren(sess.Table.Root, "Base")[0]

	derivedDecl := &ast.ClassDeclaration{
		NameTok: nameTok("Derived"),
		Kind:    ast.KindClass,
		Bases:   []ast.BaseSpecifier{{Name: plainName("Base")}},
	}
	if err := DriveDeclaration(pa, derivedDecl); err != nil {
		t.Fatalf("unexpected error driving Derived: %v", err)
	}
	derivedSym := symbols.TryChildren(sess.Table.Root, "Derived")[0]

	if len(derivedSym.Bases) != 1 || derivedSym.Bases[0] != baseSym {
		t.Fatalf("expected Derived.Bases == [Base], got %v", derivedSym.Bases)
	}

	if ctors := symbols.TryChildren(derivedSym, "Derived"); len(ctors) != 3 {
		t.Fatalf("expected 3 implicit constructors (default, copy, move), got %d", len(ctors))
	}
	if assigns := symbols.TryChildren(derivedSym, "operator="); len(assigns) != 2 {
		t.Fatalf("expected 2 implicit assignment operators (copy, move), got %d", len(assigns))
	}
	if dtors := symbols.TryChildren(derivedSym, "~Derived"); len(dtors) != 1 {
		t.Fatalf("expected 1 implicit destructor, got %d", len(dtors))
	}
}

func TestDriveClassSkipsImplicitMembersForTemplate(t *testing.T) {
	sess := newTestSession()
	pa := session.NewParsingArguments(sess)

	decl := &ast.ClassDeclaration{
		NameTok:   nameTok("Box"),
		Kind:      ast.KindClass,
		Templates: []*ast.TemplateParamDecl{{NameTok: nameTok("T"), IsType: true}},
	}
	if err := DriveDeclaration(pa, decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym := symbols.TryChildren(sess.Table.Root, "Box")[0]
	if ctors := symbols.TryChildren(sym, "Box"); len(ctors) != 0 {
		t.Fatalf("a class template should not get implicit special members, got %d ctors", len(ctors))
	}
	tparams := symbols.TryChildren(sym, "T")
	if len(tparams) != 1 || tparams[0].Kind != symbols.GenericTypeArgument {
		t.Fatalf("expected T declared as a GenericTypeArgument, got %v", tparams)
	}
}

func TestDriveClassDoesNotOverrideUserDeclaredSpecialMembers(t *testing.T) {
	sess := newTestSession()
	pa := session.NewParsingArguments(sess)

	decl := &ast.ClassDeclaration{
		NameTok: nameTok("Widget"),
		Kind:    ast.KindClass,
		Members: []ast.Declaration{
			&ast.FunctionDeclaration{NameTok: nameTok("Widget"), ReturnType: &ast.AutoType{}},
		},
	}
	if err := DriveDeclaration(pa, decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym := symbols.TryChildren(sess.Table.Root, "Widget")[0]
	ctors := symbols.TryChildren(sym, "Widget")
	if len(ctors) != 1 {
		t.Fatalf("a user-declared constructor should suppress the 3 implicit ones, got %d ctors", len(ctors))
	}
	if dtors := symbols.TryChildren(sym, "~Widget"); len(dtors) != 1 {
		t.Fatalf("expected the implicit destructor still generated, got %d", len(dtors))
	}
}

func TestDriveVariableEvaluatesTypeAndChecksRedeclaration(t *testing.T) {
	sess := newTestSession()
	pa := session.NewParsingArguments(sess)
	u := sess.Universe

	decl := &ast.VariableDeclaration{NameTok: nameTok("count"), TypeExpr: &ast.IdType{Name: plainName("int")}}
	intSym := sess.Table.NewSymbol(sess.Table.Root, "int", symbols.Class)
	sess.Table.AddChild(sess.Table.Root, intSym)

	if err := DriveDeclaration(pa, decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym := symbols.TryChildren(sess.Table.Root, "count")[0]
	if sym.Type != u.Decl(intSym) {
		t.Fatalf("expected count's type evaluated to Decl(int), got %s", sym.Type)
	}

	redecl := &ast.VariableDeclaration{NameTok: nameTok("count"), TypeExpr: &ast.IdType{Name: plainName("int")}}
	if err := DriveDeclaration(pa, redecl); err != nil {
		t.Fatalf("a compatible redeclaration should succeed: %v", err)
	}

	boolSym := sess.Table.NewSymbol(sess.Table.Root, "bool", symbols.Class)
	sess.Table.AddChild(sess.Table.Root, boolSym)
	conflicting := &ast.VariableDeclaration{NameTok: nameTok("count"), TypeExpr: &ast.IdType{Name: plainName("bool")}}
	if err := DriveDeclaration(pa, conflicting); err == nil {
		t.Fatalf("expected a redeclaration-incompatible-type error")
	}
}

func TestDriveFunctionBuildsFunctionTypeFromParams(t *testing.T) {
	sess := newTestSession()
	pa := session.NewParsingArguments(sess)
	u := sess.Universe

	intSym := sess.Table.NewSymbol(sess.Table.Root, "int", symbols.Class)
	sess.Table.AddChild(sess.Table.Root, intSym)
	boolSym := sess.Table.NewSymbol(sess.Table.Root, "bool", symbols.Class)
	sess.Table.AddChild(sess.Table.Root, boolSym)

	decl := &ast.FunctionDeclaration{
		NameTok:    nameTok("isPositive"),
		ReturnType: &ast.IdType{Name: plainName("bool")},
		Params:     []*ast.ParamDeclaration{{NameTok: nameTok("x"), TypeExpr: &ast.IdType{Name: plainName("int")}}},
	}
	if err := DriveDeclaration(pa, decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym := symbols.TryChildren(sess.Table.Root, "isPositive")[0]
	want := u.Function(u.Decl(boolSym), []types.Type{u.Decl(intSym)}, types.FunctionFlags{})
	if sym.Type != want {
		t.Fatalf("got %s, want %s", sym.Type, want)
	}
	params := symbols.TryChildren(sym, "x")
	if len(params) != 1 || params[0].Type != u.Decl(intSym) {
		t.Fatalf("expected parameter x declared with type int, got %v", params)
	}
}

func TestDriveFunctionDeducesAutoReturnFromBody(t *testing.T) {
	sess := newTestSession()
	pa := session.NewParsingArguments(sess)
	u := sess.Universe

	decl := &ast.FunctionDeclaration{
		NameTok:    nameTok("make"),
		ReturnType: &ast.AutoType{},
		Body: &ast.CompoundStatement{Body: []ast.Statement{
			&ast.ReturnStatement{Value: intLit("5")},
		}},
	}
	if err := DriveDeclaration(pa, decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym := symbols.TryChildren(sess.Table.Root, "make")[0]
	ft, ok := sym.Type.(*types.FunctionType)
	if !ok {
		t.Fatalf("expected a *types.FunctionType, got %T", sym.Type)
	}
	if ft.Ret != u.Primitive(types.SignedInt, 32) {
		t.Fatalf("expected auto return deduced to int, got %s", ft.Ret)
	}
}

func TestDriveFunctionAutoReturnWithNoReturnStatementYieldsAny(t *testing.T) {
	sess := newTestSession()
	pa := session.NewParsingArguments(sess)
	u := sess.Universe

	decl := &ast.FunctionDeclaration{
		NameTok:    nameTok("noop"),
		ReturnType: &ast.AutoType{},
		Body:       &ast.CompoundStatement{},
	}
	if err := DriveDeclaration(pa, decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym := symbols.TryChildren(sess.Table.Root, "noop")[0]
	ft, ok := sym.Type.(*types.FunctionType)
	if !ok || ft.Ret != u.Any() {
		t.Fatalf("expected auto-with-no-return to fall back to Any, got %v", sym.Type)
	}
}

func TestDriveFunctionTemplateWrapsAsGenericFunction(t *testing.T) {
	sess := newTestSession()
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
	sym := symbols.TryChildren(sess.Table.Root, "identity")[0]
	if _, ok := sym.Type.(*types.GenericFunctionType); !ok {
		t.Fatalf("expected a template function's type to be wrapped as *types.GenericFunctionType, got %T", sym.Type)
	}
}

func TestDriveEnumUnscopedItemsAreSiblingsOfEnum(t *testing.T) {
	sess := newTestSession()
	pa := session.NewParsingArguments(sess)
	u := sess.Universe

	decl := &ast.EnumDeclaration{
		NameTok: nameTok("Color"),
		Scoped:  false,
		Items: []*ast.EnumItemDecl{
			{NameTok: nameTok("Red")},
			{NameTok: nameTok("Green")},
		},
	}
	if err := DriveDeclaration(pa, decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	enumSym := symbols.TryChildren(sess.Table.Root, "Color")[0]
	if enumSym.UnderlyingType != u.Primitive(types.SignedInt, 32) {
		t.Fatalf("expected a default underlying type of int, got %s", enumSym.UnderlyingType)
	}
	red := symbols.TryChildren(sess.Table.Root, "Red")
	if len(red) != 1 || red[0].Type != enumSym.Type {
		t.Fatalf("unscoped enum items should be siblings of the enum, typed as the enum itself")
	}
}

func TestDriveEnumScopedItemsAreNestedUnderEnum(t *testing.T) {
	sess := newTestSession()
	pa := session.NewParsingArguments(sess)

	decl := &ast.EnumDeclaration{
		NameTok: nameTok("Color"),
		Scoped:  true,
		Items:   []*ast.EnumItemDecl{{NameTok: nameTok("Red")}},
	}
	if err := DriveDeclaration(pa, decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if top := symbols.TryChildren(sess.Table.Root, "Red"); len(top) != 0 {
		t.Fatalf("a scoped enum's items should not leak into the enclosing scope, got %v", top)
	}
	enumSym := symbols.TryChildren(sess.Table.Root, "Color")[0]
	if nested := symbols.TryChildren(enumSym, "Red"); len(nested) != 1 {
		t.Fatalf("expected Color::Red nested under the enum symbol, got %v", nested)
	}
}

func TestDriveTypeAliasSetsUnderlyingAndType(t *testing.T) {
	sess := newTestSession()
	pa := session.NewParsingArguments(sess)
	u := sess.Universe

	intSym := sess.Table.NewSymbol(sess.Table.Root, "int", symbols.Class)
	sess.Table.AddChild(sess.Table.Root, intSym)

	decl := &ast.TypeAliasDeclaration{NameTok: nameTok("MyInt"), Aliased: &ast.IdType{Name: plainName("int")}}
	if err := DriveDeclaration(pa, decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym := symbols.TryChildren(sess.Table.Root, "MyInt")[0]
	if sym.Type != u.Decl(intSym) || sym.UnderlyingType != u.Decl(intSym) {
		t.Fatalf("expected MyInt's Type and UnderlyingType both set to Decl(int)")
	}
}

func TestDriveUsingNamespaceRecordsOnScope(t *testing.T) {
	sess := newTestSession()
	pa := session.NewParsingArguments(sess)

	ns := sess.Table.NewSymbol(sess.Table.Root, "std", symbols.Namespace)
	sess.Table.AddChild(sess.Table.Root, ns)

	decl := &ast.UsingNamespaceDeclaration{Namespace: plainName("std")}
	if err := DriveDeclaration(pa, decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, u := range sess.Table.Root.UsingNamespaces {
		if u == ns {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected std recorded in the global scope's UsingNamespaces")
	}
}

func TestDriveUsingDeclAliasesIntoCurrentScope(t *testing.T) {
	sess := newTestSession()
	pa := session.NewParsingArguments(sess)

	ns := sess.Table.NewSymbol(sess.Table.Root, "std", symbols.Namespace)
	sess.Table.AddChild(sess.Table.Root, ns)
	vec := sess.Table.NewSymbol(ns, "vector", symbols.Class)
	sess.Table.AddChild(ns, vec)

	decl := &ast.UsingDeclaration{
		NameTok: nameTok("vector"),
		Target:  &ast.NameSyntax{Qualifiers: []ast.QualifierSegment{{Name: nameTok("std")}}, Name: nameTok("vector")},
	}
	if err := DriveDeclaration(pa, decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	aliased := symbols.TryChildren(sess.Table.Root, "vector")
	if len(aliased) != 1 || aliased[0] != vec {
		t.Fatalf("expected std::vector aliased into the global scope as 'vector', got %v", aliased)
	}
}
