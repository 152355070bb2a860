// Declaration Driver (C8, spec.md §4.8). Grounded on the teacher's
// internal/analyzer/declarations.go / declarations_functions.go /
// declarations_instances.go top-level declaration walk, generalized from
// funxy's single-pass module analyzer (one kind of binding: a function or
// a value) to C++'s eager-type/lazy-body split across namespaces, classes,
// enums, aliases, and function overload sets.
package sema

import (
	"github.com/cppsem/cppsem/internal/ast"
	"github.com/cppsem/cppsem/internal/diag"
	"github.com/cppsem/cppsem/internal/session"
	"github.com/cppsem/cppsem/internal/symbols"
	"github.com/cppsem/cppsem/internal/types"
)

// DriveProgram walks every top-level declaration of one translation unit
// at the session's global scope.
func DriveProgram(pa session.ParsingArguments, prog *ast.Program) error {
	return DriveDeclarations(pa, prog.Decls)
}

// DriveDeclarations walks decls in order under pa's current scope.
func DriveDeclarations(pa session.ParsingArguments, decls []ast.Declaration) error {
	for _, d := range decls {
		if err := DriveDeclaration(pa, d); err != nil && !diag.IsBenign(err) {
			return err
		}
	}
	return nil
}

// DriveDeclaration creates/attaches the symbol for one declaration,
// evaluates its declared type eagerly, and recurses into nested scopes
// (spec.md §4.8).
func DriveDeclaration(pa session.ParsingArguments, decl ast.Declaration) error {
	switch d := decl.(type) {
	case *ast.NamespaceDeclaration:
		return driveNamespace(pa, d)
	case *ast.ClassDeclaration:
		return driveClass(pa, d)
	case *ast.ForwardDeclaration:
		return driveForward(pa, d)
	case *ast.FunctionDeclaration:
		return driveFunction(pa, d)
	case *ast.VariableDeclaration:
		return driveVariable(pa, d)
	case *ast.EnumDeclaration:
		return driveEnum(pa, d)
	case *ast.TypeAliasDeclaration:
		return driveTypeAlias(pa, d)
	case *ast.UsingNamespaceDeclaration:
		return driveUsingNamespace(pa, d)
	case *ast.UsingDeclaration:
		return driveUsingDecl(pa, d)
	default:
		return diag.NewUnexpectedSymbolCategory("ast.Declaration", "a known declaration-node variant")
	}
}

func driveNamespace(pa session.ParsingArguments, d *ast.NamespaceDeclaration) error {
	name := ""
	if d.NameTok != nil {
		name = d.NameTok.Text()
	}
	var sym *symbols.Symbol
	if name != "" {
		if existing := symbols.TryChildren(pa.Scope, name); len(existing) > 0 && existing[0].Kind == symbols.Namespace {
			sym = existing[0]
		}
	}
	if sym == nil {
		sym = pa.Session.Table.NewSymbol(pa.Scope, name, symbols.Namespace)
		pa.Session.Table.AddChild(pa.Scope, sym)
	}
	sym.ImplDecl = d
	return DriveDeclarations(pa.WithScope(sym), d.Members)
}

func driveForward(pa session.ParsingArguments, d *ast.ForwardDeclaration) error {
	name := d.NameTok.Text()
	kind := classKindToSymbolKind(d.Kind)
	if d.IsEnum {
		kind = symbols.Enum
	}
	sym := findOrCreateTypeSymbol(pa, name, kind)
	sym.Forwards = append(sym.Forwards, d)
	return nil
}

func classKindToSymbolKind(k ast.ClassKind) symbols.SymbolKind {
	switch k {
	case ast.KindStruct:
		return symbols.Struct
	case ast.KindUnion:
		return symbols.Union
	default:
		return symbols.Class
	}
}

// findOrCreateTypeSymbol returns the existing same-named, same-kind type
// symbol under pa.Scope (reopening/defining a previously forward-declared
// type), or creates a fresh one.
func findOrCreateTypeSymbol(pa session.ParsingArguments, name string, kind symbols.SymbolKind) *symbols.Symbol {
	for _, existing := range symbols.TryChildren(pa.Scope, name) {
		if existing.Kind == kind {
			return existing
		}
	}
	sym := pa.Session.Table.NewSymbol(pa.Scope, name, kind)
	pa.Session.Table.AddChild(pa.Scope, sym)
	return sym
}

func driveClass(pa session.ParsingArguments, d *ast.ClassDeclaration) error {
	u := pa.Session.Universe
	name := d.NameTok.Text()
	kind := classKindToSymbolKind(d.Kind)
	sym := findOrCreateTypeSymbol(pa, name, kind)
	sym.ImplDecl = d
	sym.Type = u.Decl(sym)

	classScope := pa.WithScope(sym)

	var templateParams []*symbols.Symbol
	for i, tp := range d.Templates {
		templateParams = append(templateParams, declareTemplateParam(pa, sym, i, tp))
	}

	for _, b := range d.Bases {
		baseSym, err := resolveNameSyntax(classScope, b.Name)
		if err != nil {
			return err
		}
		if baseSym != nil {
			sym.Bases = append(sym.Bases, baseSym)
		}
	}

	if err := DriveDeclarations(classScope, d.Members); err != nil {
		return err
	}

	if len(templateParams) == 0 {
		generateImplicitSpecialMembers(classScope, sym)
	}
	return nil
}

// declareTemplateParam creates the GenericTypeArgument/GenericValueArgument
// symbol for one template parameter, bound as child #i of owner, with a
// placeholder GenericArg type so references to the parameter inside the
// template body resolve structurally (spec.md §4.7/§4.4).
func declareTemplateParam(pa session.ParsingArguments, owner *symbols.Symbol, index int, tp *ast.TemplateParamDecl) *symbols.Symbol {
	u := pa.Session.Universe
	kind := symbols.GenericTypeArgument
	if !tp.IsType {
		kind = symbols.GenericValueArgument
	}
	name := ""
	if tp.NameTok != nil {
		name = tp.NameTok.Text()
	}
	sym := pa.Session.Table.NewSymbol(owner, name, kind)
	pa.Session.Table.AddChild(owner, sym)
	sym.Type = u.GenericArg(owner, index, sym)
	return sym
}

func driveVariable(pa session.ParsingArguments, d *ast.VariableDeclaration) error {
	name := d.NameTok.Text()
	t, err := EvalType(pa, d.TypeExpr)
	if err != nil {
		return err
	}
	sym := findOrCreateValueSymbol(pa, name, symbols.Variable)
	if err := checkRedeclaration(sym, t); err != nil {
		return err
	}
	sym.Type = t
	sym.ImplDecl = d
	if d.Init != nil {
		if _, err := EvalExpr(pa, d.Init); err != nil && !diag.IsBenign(err) {
			return err
		}
	}
	return nil
}

func findOrCreateValueSymbol(pa session.ParsingArguments, name string, kind symbols.SymbolKind) *symbols.Symbol {
	for _, existing := range symbols.TryChildren(pa.Scope, name) {
		if existing.Kind == kind {
			return existing
		}
	}
	sym := pa.Session.Table.NewSymbol(pa.Scope, name, kind)
	pa.Session.Table.AddChild(pa.Scope, sym)
	return sym
}

// checkRedeclaration implements spec.md §4.8's "evaluate the declared
// type eagerly so redeclaration compatibility can be checked": a symbol
// that already has an evaluated type must match exactly on redeclaration.
func checkRedeclaration(sym *symbols.Symbol, t types.Type) error {
	if sym.Type == nil || types.IsUnknown(sym.Type) {
		return nil
	}
	if sym.Type != t {
		return diag.NewTypeCheckerFailure("redeclaration of " + sym.Name + " with incompatible type")
	}
	return nil
}

func driveFunction(pa session.ParsingArguments, d *ast.FunctionDeclaration) error {
	u := pa.Session.Universe
	name := d.NameTok.Text()

	sym := pa.Session.Table.NewSymbol(pa.Scope, name, symbols.FunctionSymbol)
	pa.Session.Table.AddChild(pa.Scope, sym)
	sym.ImplDecl = d

	funcScope := pa.WithScope(sym).WithFuncBody(sym)
	var templateParams []*symbols.Symbol
	for i, tp := range d.Templates {
		templateParams = append(templateParams, declareTemplateParam(pa, sym, i, tp))
	}

	retExpr := d.ReturnType
	var autoReturn bool
	if _, ok := retExpr.(*ast.AutoType); ok || retExpr == nil {
		autoReturn = true
	}

	paramTypes := make([]types.Type, 0, len(d.Params))
	for _, p := range d.Params {
		pt, err := EvalType(funcScope, p.TypeExpr)
		if err != nil {
			return err
		}
		paramTypes = append(paramTypes, pt)
		if p.NameTok != nil {
			pname := p.NameTok.Text()
			if pname != "" {
				ps := pa.Session.Table.NewSymbol(sym, pname, symbols.Variable)
				pa.Session.Table.AddChild(sym, ps)
				ps.Type = pt
			}
		}
	}

	flags := types.FunctionFlags{Variadic: d.Variadic, CallConv: d.CallConv}
	if d.IsConst {
		flags.CV |= types.Const
	}
	if d.RefQualKind == 1 {
		flags.Ref = types.LValueRef
	} else if d.RefQualKind == 2 {
		flags.Ref = types.RValueRef
	}

	if autoReturn {
		if d.Body != nil {
			if t, ok := deduceReturnType(funcScope, d.Body); ok {
				sym.Type = u.Function(t, paramTypes, flags)
			} else {
				sym.Type = u.Function(u.Any(), paramTypes, flags)
			}
		} else {
			sym.Type = u.Function(u.Any(), paramTypes, flags)
		}
	} else {
		retT, err := EvalType(funcScope, retExpr)
		if err != nil {
			return err
		}
		sym.Type = u.Function(retT, paramTypes, flags)
	}

	if len(templateParams) > 0 {
		free := make([]types.SymbolRef, 0, len(templateParams))
		for _, p := range templateParams {
			free = append(free, p)
		}
		if ft, ok := sym.Type.(*types.FunctionType); ok {
			sym.Type = u.GenericFunction(ft.Ret, ft.Params, free)
		}
	}

	// function bodies are deferred: d.Body stays reachable via sym.ImplDecl
	// for any later consumer that needs inside-function references; it is
	// not walked here.
	return nil
}

// deduceReturnType walks a function body's return statements to deduce an
// `auto` return type from the first one that settles it: a return with no
// value gives void, and a return whose value evaluates to a non-empty
// result gives that result's type; a return whose value yields nothing is
// passed over (spec.md §4.8/§5: this is the one place diag.RaiseFinishEvaluatingReturnType
// is used — a benign early exit once the first return is found, since a
// later mismatched return is a separate diagnostic this walk does not
// need to produce).
func deduceReturnType(pa session.ParsingArguments, body *ast.CompoundStatement) (types.Type, bool) {
	var found types.Type
	finished := diag.Recover(func() {
		var walk func(s ast.Statement)
		walk = func(s ast.Statement) {
			switch st := s.(type) {
			case *ast.ReturnStatement:
				if st.Value == nil {
					found = pa.Session.Universe.Void()
					diag.RaiseFinishEvaluatingReturnType()
				}
				res, err := EvalExpr(pa, st.Value)
				if err == nil && len(res) > 0 {
					found = res[0].Type
					diag.RaiseFinishEvaluatingReturnType()
				}
			case *ast.CompoundStatement:
				for _, inner := range st.Body {
					walk(inner)
				}
			case *ast.IfStatement:
				walk(st.Then)
				if st.Else != nil {
					walk(st.Else)
				}
			case *ast.WhileStatement:
				walk(st.Body)
			case *ast.ForStatement:
				walk(st.Body)
			}
		}
		for _, s := range body.Body {
			walk(s)
		}
	})
	if !finished || found == nil {
		return nil, false
	}
	return found, true
}

func driveEnum(pa session.ParsingArguments, d *ast.EnumDeclaration) error {
	u := pa.Session.Universe
	name := ""
	if d.NameTok != nil {
		name = d.NameTok.Text()
	}
	sym := findOrCreateTypeSymbol(pa, name, symbols.Enum)
	sym.ImplDecl = d
	sym.Type = u.Decl(sym)

	underlying := u.Primitive(types.SignedInt, 32)
	if d.Underlying != nil {
		t, err := EvalType(pa, d.Underlying)
		if err != nil {
			return err
		}
		underlying = t
	}
	sym.UnderlyingType = underlying

	itemScope := pa
	if d.Scoped {
		itemScope = pa.WithScope(sym)
	}
	for _, item := range d.Items {
		iname := item.NameTok.Text()
		isym := pa.Session.Table.NewSymbol(itemScope.Scope, iname, symbols.EnumItem)
		pa.Session.Table.AddChild(itemScope.Scope, isym)
		isym.Type = sym.Type
		isym.ImplDecl = item
		if item.Value != nil {
			if _, err := EvalExpr(itemScope, item.Value); err != nil && !diag.IsBenign(err) {
				return err
			}
		}
	}
	return nil
}

func driveTypeAlias(pa session.ParsingArguments, d *ast.TypeAliasDeclaration) error {
	name := d.NameTok.Text()
	t, err := EvalType(pa, d.Aliased)
	if err != nil {
		return err
	}
	sym := findOrCreateValueSymbol(pa, name, symbols.TypeAlias)
	sym.UnderlyingType = t
	sym.Type = t
	sym.ImplDecl = d
	return nil
}

func driveUsingNamespace(pa session.ParsingArguments, d *ast.UsingNamespaceDeclaration) error {
	sym, err := resolveNameSyntax(pa, d.Namespace)
	if err != nil {
		return err
	}
	if sym != nil {
		pa.Scope.UsingNamespaces = append(pa.Scope.UsingNamespaces, sym)
	}
	return nil
}

func driveUsingDecl(pa session.ParsingArguments, d *ast.UsingDeclaration) error {
	target, err := resolveNameSyntax(pa, d.Target)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	name := d.NameTok.Text()
	pa.Scope.Children[name] = append(pa.Scope.Children[name], target)
	return nil
}

// generateImplicitSpecialMembers implements spec.md §4.8: default/copy/move
// constructors, copy/move assignment, and the destructor are synthesized
// when the class declares none of the corresponding kind itself. No base-
// or member-constructibility predicate is checked: whether a member is
// generated depends only on the class's own declarations.
func generateImplicitSpecialMembers(pa session.ParsingArguments, classSym *symbols.Symbol) {
	u := pa.Session.Universe
	hasUserCtor := false
	hasUserDtor := false
	hasUserCopyAssign := false
	for _, s := range symbols.TryChildren(classSym, classSym.Name) {
		if s.Kind == symbols.FunctionSymbol {
			hasUserCtor = true
		}
	}
	for _, s := range symbols.TryChildren(classSym, "~"+classSym.Name) {
		if s.Kind == symbols.FunctionSymbol {
			hasUserDtor = true
		}
	}
	for _, s := range symbols.TryChildren(classSym, "operator=") {
		if s.Kind == symbols.FunctionSymbol {
			hasUserCopyAssign = true
		}
	}

	classRef := u.CV(u.Decl(classSym), types.Const)
	classType := u.Decl(classSym)

	if !hasUserCtor {
		addImplicitMember(pa, classSym, classSym.Name, u.Function(u.Void(), nil, types.FunctionFlags{}))
		addImplicitMember(pa, classSym, classSym.Name, u.Function(u.Void(), []types.Type{u.LRef(classRef)}, types.FunctionFlags{}))
		addImplicitMember(pa, classSym, classSym.Name, u.Function(u.Void(), []types.Type{u.RRef(classType)}, types.FunctionFlags{}))
	}
	if !hasUserCopyAssign {
		selfRef := u.LRef(classType)
		addImplicitMember(pa, classSym, "operator=", u.Function(selfRef, []types.Type{u.LRef(classRef)}, types.FunctionFlags{}))
		addImplicitMember(pa, classSym, "operator=", u.Function(selfRef, []types.Type{u.RRef(classType)}, types.FunctionFlags{}))
	}
	if !hasUserDtor {
		addImplicitMember(pa, classSym, "~"+classSym.Name, u.Function(u.Void(), nil, types.FunctionFlags{}))
	}
}

func addImplicitMember(pa session.ParsingArguments, classSym *symbols.Symbol, name string, fnType types.Type) {
	sym := pa.Session.Table.NewSymbol(classSym, name, symbols.FunctionSymbol)
	sym.Type = fnType
	pa.Session.Table.AddChild(classSym, sym)
}
