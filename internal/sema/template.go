// Template Engine (C7, spec.md §4.7). Grounded directly on the teacher's
// internal/typesystem/unify.go (Unify/Bind/OccursCheck, generalized into
// InferTemplateArgument/SetInferredResult/the nested-pack rejection) and
// internal/analyzer/inference_solver.go's SolveConstraints/matchType,
// generalized into MBC's backtracking search over candidate base types —
// funxy's Hindley-Milner unifier and C++ template argument deduction are
// the same algorithm family, so this file tracks unify.go almost
// function-for-function.
package sema

import (
	"github.com/cppsem/cppsem/internal/ast"
	"github.com/cppsem/cppsem/internal/diag"
	"github.com/cppsem/cppsem/internal/session"
	"github.com/cppsem/cppsem/internal/symbols"
	"github.com/cppsem/cppsem/internal/types"
)

// FreeSet is the caller-supplied set of template-parameter symbols a
// deduction is solving for (spec.md §4.7).
type FreeSet map[*symbols.Symbol]bool

// NewFreeSet builds a FreeSet from a template's parameter symbols.
func NewFreeSet(syms ...*symbols.Symbol) FreeSet {
	fs := make(FreeSet, len(syms))
	for _, s := range syms {
		fs[s] = true
	}
	return fs
}

// CollectFreeTypes walks the syntactic pattern type and records which
// free symbols it actually mentions (spec.md §4.7 "Free-type collection").
// inPack marks that an enclosing pattern node is already a variadic
// expansion; encountering another variadic template-argument while
// inPack is set is a nested pack, which spec.md §4.7 rejects outright.
func CollectFreeTypes(pa session.ParsingArguments, pattern ast.Type, free FreeSet, inPack bool) (FreeSet, error) {
	used := FreeSet{}
	var walk func(t ast.Type, inPack bool) error
	walk = func(t ast.Type, inPack bool) error {
		switch v := t.(type) {
		case nil:
			return nil
		case *ast.IdType:
			sym, err := resolveNameSyntax(pa, v.Name)
			if err == nil && sym != nil && free[sym] {
				used[sym] = true
			}
			for _, a := range v.Name.Args {
				if a.IsVariadic && inPack {
					return diag.NewTypeCheckerFailure("nested variadic pack")
				}
				if a.Type != nil {
					if err := walk(a.Type, inPack || a.IsVariadic); err != nil {
						return err
					}
				}
			}
			return nil
		case *ast.ChildType:
			return walk(v.Qualifier, inPack)
		case *ast.CVType:
			return walk(v.Inner, inPack)
		case *ast.PtrType:
			return walk(v.Inner, inPack)
		case *ast.RefType:
			return walk(v.Inner, inPack)
		case *ast.ArrayType:
			return walk(v.Inner, inPack)
		case *ast.FunctionType:
			if err := walk(v.Ret, inPack); err != nil {
				return err
			}
			for _, p := range v.Params {
				if err := walk(p, inPack); err != nil {
					return err
				}
			}
			return nil
		case *ast.MemberPtrType:
			return walk(v.Inner, inPack)
		case *ast.DecltypeType:
			// decltype is opaque to free-type collection: its operand is an
			// expression, not a descendable type pattern.
			return nil
		default:
			return nil
		}
	}
	if err := walk(pattern, inPack); err != nil {
		return nil, err
	}
	return used, nil
}

// SetInferredResult merges a new assignment for pattern symbol sym into
// ctx (spec.md §4.7): unbound accepts it; bound to Any is replaced by a
// concrete actual; bound to a concrete type keeps it when the new value is
// Any; two distinct concrete types is a TypeCheckerFailure (value-argument
// patterns, per spec.md, always require exact equality — they're never
// Any, so this falls out of the same rule).
func SetInferredResult(ctx *session.ArgContext, sym *symbols.Symbol, actual types.Type, applyTo *symbols.Symbol) (*session.ArgContext, error) {
	existing, bound := ctx.Lookup(sym.Name)
	if !bound {
		return ctx.Child(map[string]types.Type{sym.Name: actual}, applyTo, ctx.ID()), nil
	}
	if isAnyType(existing) {
		return ctx.Child(map[string]types.Type{sym.Name: actual}, applyTo, ctx.ID()), nil
	}
	if isAnyType(actual) {
		return ctx, nil
	}
	if existing != actual {
		return nil, diag.NewTypeCheckerFailure("conflicting deduction for " + sym.Name)
	}
	return ctx, nil
}

func isAnyType(t types.Type) bool { return types.IsUnknown(t) }

// InferTemplateArgument inductively matches a syntactic pattern against an
// actual canonical type (spec.md §4.7), threading bindings through ctx.
func InferTemplateArgument(pa session.ParsingArguments, pattern ast.Type, actual types.Type, free FreeSet, ctx *session.ArgContext) (*session.ArgContext, error) {
	switch v := pattern.(type) {
	case nil:
		return ctx, nil

	case *ast.IdType:
		sym, err := resolveNameSyntax(pa, v.Name)
		if err != nil {
			return nil, err
		}
		if sym == nil {
			return ctx, nil
		}
		if free[sym] && !v.Name.IsTemplateID() {
			return SetInferredResult(ctx, sym, actual, ctx.ApplySymbol())
		}
		if !v.Name.IsTemplateID() {
			return ctx, nil // a concrete (non-free) name matches structurally elsewhere
		}
		return inferGenericInstance(pa, sym, v.Name.Args, actual, free, ctx)

	case *ast.ChildType:
		// a dependent qualifier carries no deducible information of its own
		// (spec.md §4.4's ChildType handling is opaque until instantiation).
		return ctx, nil

	case *ast.CVType:
		entity, _, _ := types.EntityOf(actual)
		return InferTemplateArgument(pa, v.Inner, entity, free, ctx)

	case *ast.PtrType:
		p, ok := actual.(*types.PtrType)
		if !ok {
			return nil, diag.NewTypeCheckerFailure("pointer pattern against non-pointer actual")
		}
		return InferTemplateArgument(pa, v.Inner, p.Elem, free, ctx)

	case *ast.RefType:
		r, ok := actual.(*types.RefType)
		if !ok {
			return InferTemplateArgument(pa, v.Inner, actual, free, ctx)
		}
		return InferTemplateArgument(pa, v.Inner, r.Elem, free, ctx)

	case *ast.ArrayType:
		a, ok := actual.(*types.ArrayType)
		if !ok {
			return nil, diag.NewTypeCheckerFailure("array pattern against non-array actual")
		}
		return InferTemplateArgument(pa, v.Inner, a.Elem, free, ctx)

	case *ast.FunctionType:
		f, ok := actual.(*types.FunctionType)
		if !ok {
			return nil, diag.NewTypeCheckerFailure("function pattern against non-function actual")
		}
		next, err := InferTemplateArgument(pa, v.Ret, f.Ret, free, ctx)
		if err != nil {
			return nil, err
		}
		n := len(v.Params)
		if len(f.Params) < n {
			return nil, diag.NewTypeCheckerFailure("function pattern arity mismatch")
		}
		for i := 0; i < n; i++ {
			if v.Variadic && i == n-1 {
				items := make([]types.InitItem, 0, len(f.Params)-i)
				for _, rest := range f.Params[i:] {
					items = append(items, types.InitItem{Type: rest, Category: types.PRValue})
				}
				next, err = bindPackPattern(pa, v.Params[i], pa.Session.Universe.Init(items), free, next)
				if err != nil {
					return nil, err
				}
				continue
			}
			next, err = InferTemplateArgument(pa, v.Params[i], f.Params[i], free, next)
			if err != nil {
				return nil, err
			}
		}
		return next, nil

	case *ast.MemberPtrType:
		m, ok := actual.(*types.MemberType)
		if !ok {
			return nil, diag.NewTypeCheckerFailure("member pointer pattern against non-member actual")
		}
		return InferTemplateArgument(pa, v.Inner, m.Elem, free, ctx)

	case *ast.DecltypeType:
		return ctx, nil

	default:
		return ctx, nil
	}
}

// inferGenericInstance matches a template-id pattern `Name<Args...>`
// against a DeclInstantType actual, pairing template arguments positionally
// and expanding a trailing variadic argument into an Init aggregation
// (spec.md §4.7 "Generic instance").
func inferGenericInstance(pa session.ParsingArguments, headSym *symbols.Symbol, targs []ast.TemplateArg, actual types.Type, free FreeSet, ctx *session.ArgContext) (*session.ArgContext, error) {
	di, ok := actual.(*types.DeclInstantType)
	if !ok {
		return nil, diag.NewTypeCheckerFailure("template-id pattern against non-instantiated actual")
	}
	n := len(targs)
	next := ctx
	var err error
	for i := 0; i < n; i++ {
		arg := targs[i]
		if arg.IsVariadic && i == n-1 {
			items := make([]types.InitItem, 0, len(di.Args)-i)
			for _, rest := range di.Args[i:] {
				items = append(items, types.InitItem{Type: rest, Category: types.PRValue})
			}
			if arg.Type != nil {
				next, err = bindPackPattern(pa, arg.Type, pa.Session.Universe.Init(items), free, next)
				if err != nil {
					return nil, err
				}
			}
			continue
		}
		if i >= len(di.Args) {
			return nil, diag.NewTypeCheckerFailure("template-id arity mismatch")
		}
		if arg.Type != nil {
			next, err = InferTemplateArgument(pa, arg.Type, di.Args[i], free, next)
			if err != nil {
				return nil, err
			}
		}
	}
	return next, nil
}

// bindPackPattern implements spec.md §4.7 "Variadic expansion": for every
// free pattern symbol mentioned inside elemPattern, bind it to an n-element
// Init aggregating that symbol's per-element inference. An empty actual
// Init binds every free pattern mentioned in elemPattern to an empty Init.
func bindPackPattern(pa session.ParsingArguments, elemPattern ast.Type, actualInit types.Type, free FreeSet, ctx *session.ArgContext) (*session.ArgContext, error) {
	init, ok := actualInit.(*types.InitType)
	if !ok {
		return nil, diag.NewTypeCheckerFailure("variadic pattern against non-aggregated actual")
	}
	mentioned, err := CollectFreeTypes(pa, elemPattern, free, true)
	if err != nil {
		return nil, err
	}
	perElem := make(map[*symbols.Symbol][]types.InitItem, len(mentioned))
	for sym := range mentioned {
		perElem[sym] = nil
	}
	for _, item := range init.Items {
		elemCtx := ctx
		elemCtx, err = InferTemplateArgument(pa, elemPattern, item.Type, free, elemCtx)
		if err != nil {
			return nil, err
		}
		for sym := range mentioned {
			if bound, ok := elemCtx.Lookup(sym.Name); ok {
				perElem[sym] = append(perElem[sym], types.InitItem{Type: bound, Category: item.Category})
			}
		}
	}
	next := ctx
	for sym, items := range perElem {
		next, err = SetInferredResult(next, sym, pa.Session.Universe.Init(items), next.ApplySymbol())
		if err != nil {
			return nil, err
		}
	}
	return next, nil
}

// allBasesBFS enumerates classSym's transitive base symbols in breadth-
// first order, for MBC's candidate enumeration.
func allBasesBFS(classSym *symbols.Symbol) []*symbols.Symbol {
	var out []*symbols.Symbol
	visited := map[*symbols.Symbol]bool{classSym: true}
	frontier := append([]*symbols.Symbol(nil), classSym.Bases...)
	for len(frontier) > 0 {
		var next []*symbols.Symbol
		for _, b := range frontier {
			if visited[b] {
				continue
			}
			visited[b] = true
			out = append(out, b)
			next = append(next, b.Bases...)
		}
		frontier = next
	}
	return out
}

// DeduceWithBacktracking implements spec.md §4.7 "Base-class matching
// (MBC)": when a direct match fails and the actual is a class type, retry
// deduction against each base class (as an alternative actual), collecting
// every context that succeeds — the only place the engine backtracks.
// When the direct match succeeds, it is the sole candidate (MBC never
// widens a match that already worked).
func DeduceWithBacktracking(pa session.ParsingArguments, pattern ast.Type, actual types.Type, free FreeSet) ([]*session.ArgContext, error) {
	if ctx, err := InferTemplateArgument(pa, pattern, actual, free, pa.ArgCtx); err == nil {
		return []*session.ArgContext{ctx}, nil
	} else if !diag.IsBenign(err) {
		return nil, err
	}

	classSym, ok := classSymbolOf(actual)
	if !ok {
		return nil, diag.NewTypeCheckerFailure("no deduction for this actual type")
	}
	var results []*session.ArgContext
	for _, base := range allBasesBFS(classSym) {
		baseType := pa.Session.Universe.Decl(base)
		if ctx, err := InferTemplateArgument(pa, pattern, baseType, free, pa.ArgCtx); err == nil {
			results = append(results, ctx)
		} else if !diag.IsBenign(err) {
			return nil, err
		}
	}
	if len(results) == 0 {
		return nil, diag.NewTypeCheckerFailure("no base class matches template pattern")
	}
	return results, nil
}

// Complete reports whether every symbol in free has a binding in ctx
// (spec.md §4.7 "Incomplete inference": under-constrained deductions are
// silently discarded, not reported as errors).
func Complete(free FreeSet, ctx *session.ArgContext) bool {
	for sym := range free {
		if _, ok := ctx.Lookup(sym.Name); !ok {
			return false
		}
	}
	return true
}

// PartialApply pre-seeds ctx with explicitArgs bound to templateParams in
// order (spec.md §4.7 "Partial application") and returns the still-free
// remainder.
func PartialApply(base *session.ArgContext, applyTo *symbols.Symbol, templateParams []*symbols.Symbol, explicitArgs []types.Type) (*session.ArgContext, FreeSet) {
	bindings := make(map[string]types.Type, len(explicitArgs))
	remaining := FreeSet{}
	for i, p := range templateParams {
		if i < len(explicitArgs) {
			bindings[p.Name] = explicitArgs[i]
		} else {
			remaining[p] = true
		}
	}
	return base.Child(bindings, applyTo, base.ID()), remaining
}

// Substitute rewrites t by replacing every bound GenericArgType leaf with
// ctx's binding for its owning symbol, rebuilding each wrapper node through
// the Universe so the result stays interned (spec.md §4.7's final
// instantiation step). Grounded on the teacher's internal/typesystem's
// ReplaceTCon, which does the same recursive leaf-substitution over its own
// type-node set; this is that rewrite generalized to the C++ type universe's
// wider node vocabulary. Unbound leaves, and types carrying no generic
// argument at all, pass through unchanged.
func Substitute(u *types.Universe, t types.Type, ctx *session.ArgContext) types.Type {
	if ctx == nil || t == nil {
		return t
	}
	switch v := t.(type) {
	case *types.GenericArgType:
		sym, ok := v.Arg.(*symbols.Symbol)
		if !ok {
			return t
		}
		if bound, ok := ctx.Lookup(sym.Name); ok {
			return bound
		}
		return t
	case *types.RefType:
		elem := Substitute(u, v.Elem, ctx)
		if v.Kind == types.RValueRef {
			return u.RRef(elem)
		}
		return u.LRef(elem)
	case *types.PtrType:
		return u.Ptr(Substitute(u, v.Elem, ctx))
	case *types.ArrayType:
		return u.Array(Substitute(u, v.Elem, ctx), v.Rank)
	case *types.CVType:
		return u.CV(Substitute(u, v.Elem, ctx), v.Flags)
	case *types.MemberType:
		return u.Member(v.Owner, Substitute(u, v.Elem, ctx))
	case *types.FunctionType:
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = Substitute(u, p, ctx)
		}
		return u.Function(Substitute(u, v.Ret, ctx), params, v.Flags)
	case *types.GenericFunctionType:
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = Substitute(u, p, ctx)
		}
		return u.GenericFunction(Substitute(u, v.Ret, ctx), params, v.Free)
	case *types.DeclInstantType:
		args := make([]types.Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = Substitute(u, a, ctx)
		}
		return u.DeclInstant(v.Symbol, Substitute(u, v.ParentDecl, ctx), ctx, args)
	case *types.InitType:
		items := make([]types.InitItem, len(v.Items))
		for i, it := range v.Items {
			items[i] = types.InitItem{Type: Substitute(u, it.Type, ctx), Category: it.Category}
		}
		return u.Init(items)
	default:
		return t
	}
}

// InstantiateFunctionResult builds the result type of a function-template
// deduction (spec.md §4.7 final step) by substituting ctx's bindings
// through gft's already-canonical Ret/Params — not by re-evaluating the
// declaration's ast.Type syntax, since an auto-return template's syntactic
// return type is just `auto` and carries none of the GenericArgType
// placeholders the Declaration Driver (C8) embedded in gft.Ret when it
// first deduced the function's return type. Yields a concrete Function
// type when every free parameter got a binding, or a GenericFunction
// carrying the still-free symbols when the free set is non-empty after
// argument deduction (partial application).
func InstantiateFunctionResult(pa session.ParsingArguments, gft *types.GenericFunctionType, free FreeSet, ctx *session.ArgContext) types.Type {
	u := pa.Session.Universe
	retT := Substitute(u, gft.Ret, ctx)
	paramTs := make([]types.Type, len(gft.Params))
	for i, p := range gft.Params {
		paramTs[i] = Substitute(u, p, ctx)
	}
	if Complete(free, ctx) {
		return u.Function(retT, paramTs, types.FunctionFlags{})
	}
	stillFree := make([]types.SymbolRef, 0, len(free))
	for sym := range free {
		if _, ok := ctx.Lookup(sym.Name); !ok {
			stillFree = append(stillFree, sym)
		}
	}
	return u.GenericFunction(retT, paramTs, stillFree)
}

// functionTemplateParams returns sym's template-parameter symbols in
// declaration order, derived from its ImplDecl's template-parameter list —
// deduction and partial application both need a stable positional order to
// pair explicit/deduced arguments against (spec.md §4.7).
func functionTemplateParams(sym *symbols.Symbol) []*symbols.Symbol {
	fd, ok := sym.ImplDecl.(*ast.FunctionDeclaration)
	if !ok {
		return nil
	}
	out := make([]*symbols.Symbol, 0, len(fd.Templates))
	for _, tp := range fd.Templates {
		if tp.NameTok == nil {
			continue
		}
		for _, child := range symbols.TryChildren(sym, tp.NameTok.Text()) {
			if child.Kind == symbols.GenericTypeArgument || child.Kind == symbols.GenericValueArgument {
				out = append(out, child)
				break
			}
		}
	}
	return out
}
