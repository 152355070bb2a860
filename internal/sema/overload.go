// Overload Resolver (C6, spec.md §4.6). Grounded on the teacher's
// internal/typesystem/unify.go ranking of candidate substitutions,
// generalized from unification scoring to the standard conversion
// sequence ranks a C++ overload resolution needs.
package sema

import (
	"github.com/cppsem/cppsem/internal/ast"
	"github.com/cppsem/cppsem/internal/diag"
	"github.com/cppsem/cppsem/internal/session"
	"github.com/cppsem/cppsem/internal/symbols"
	"github.com/cppsem/cppsem/internal/types"
)

// ConversionRank orders how well an argument matches a parameter, best
// (lowest) first (spec.md §4.6).
type ConversionRank int

const (
	RankExact ConversionRank = iota
	RankPromotion
	RankConversion
	RankEllipsis
	RankNoMatch
)

// StandardConversion ranks the implicit conversion from an argument of
// type/category (from, cat) to parameter type to (spec.md §4.6's built-in
// lattice). It does not consider user-defined conversions — those are out
// of scope per spec.md §1 Non-goals beyond what overload resolution's
// built-in lattice requires.
func StandardConversion(u *types.Universe, from types.Type, cat types.ValueCategory, to types.Type) ConversionRank {
	if from == to {
		return RankExact
	}
	fEntity, fcv, _ := types.EntityOf(from)
	tEntity, tcv, tref := types.EntityOf(to)

	if tref == types.LValueRef && cat != types.LValue && tcv&types.Const == 0 {
		return RankNoMatch
	}
	if tref != types.NoRef && fEntity == tEntity && (fcv&^tcv) == 0 {
		return RankExact
	}

	if decayed, ok := types.DecayArray(u, fEntity); ok {
		fEntity = decayed
	}

	if fEntity == tEntity {
		if fcv&^tcv != 0 {
			return RankNoMatch // would discard a qualifier
		}
		return RankExact
	}

	fp, fIsPrim := fEntity.(*types.PrimitiveType)
	tp, tIsPrim := tEntity.(*types.PrimitiveType)
	if fIsPrim && tIsPrim {
		if fp.Kind == tp.Kind && fp.Width == tp.Width {
			return RankExact
		}
		if isIntegralPromotion(fp, tp) {
			return RankPromotion
		}
		return RankConversion
	}

	if fEntity == u.Nullptr() {
		if _, ok2 := tEntity.(*types.PtrType); ok2 {
			return RankConversion
		}
	}

	if fptr, ok := fEntity.(*types.PtrType); ok {
		if tptr, ok2 := tEntity.(*types.PtrType); ok2 {
			fpe, fpcv, _ := types.EntityOf(fptr.Elem)
			tpe, tpcv, _ := types.EntityOf(tptr.Elem)
			if fpe == tpe && tpcv&types.Const != 0 && (fpcv&^tpcv) == 0 {
				return RankConversion
			}
			// derived-to-base pointer conversion: unwrap to the pointee's
			// class symbol, since fEntity/tEntity here are the PtrType nodes
			// themselves, not their pointees.
			if fd, ok3 := classSymbolOf(fpe); ok3 {
				if td, ok4 := classSymbolOf(tpe); ok4 && isBaseOf(td, fd) {
					return RankConversion
				}
			}
		}
	}

	// derived-to-base reference/by-value conversion: reached when from/to
	// are themselves class entities (EntityOf already unwraps a reference
	// down to its referent).
	if fd, ok := classSymbolOf(fEntity); ok {
		if td, ok2 := classSymbolOf(tEntity); ok2 && isBaseOf(td, fd) {
			return RankConversion
		}
	}

	return RankNoMatch
}

func isIntegralPromotion(from, to *types.PrimitiveType) bool {
	if from.Kind == types.Bool || from.Kind == types.SignedChar || from.Kind == types.UnsignedChar {
		return to.Kind == types.SignedInt && to.Width >= 32
	}
	return (to.Kind == types.SignedInt || to.Kind == types.UnsignedInt) && to.Width > from.Width
}

func classSymbolOf(t types.Type) (*symbols.Symbol, bool) {
	switch d := t.(type) {
	case *types.DeclType:
		s, ok := d.Symbol.(*symbols.Symbol)
		return s, ok
	case *types.DeclInstantType:
		s, ok := d.Symbol.(*symbols.Symbol)
		return s, ok
	default:
		return nil, false
	}
}

func isBaseOf(base, derived *symbols.Symbol) bool {
	visited := map[*symbols.Symbol]bool{}
	var walk func(s *symbols.Symbol) bool
	walk = func(s *symbols.Symbol) bool {
		if visited[s] {
			return false
		}
		visited[s] = true
		for _, b := range s.Bases {
			if b == base || walk(b) {
				return true
			}
		}
		return false
	}
	return walk(derived)
}

// DeduceCallCandidates implements spec.md §4.6 step 1: if candidate names a
// function template, invoke C7 to deduce its template arguments from
// argTypes and return its deduced function instances (synthetic symbols
// sharing candidate's identity but carrying the instantiated Function
// type); an ordinary non-template candidate passes through unchanged. Per
// spec.md §4.7, only fully-deduced (non-partial) instances participate in
// overload resolution — one that leaves a free parameter is a dead branch,
// not a candidate.
func DeduceCallCandidates(pa session.ParsingArguments, candidate *symbols.Symbol, argTypes []types.Type) ([]*symbols.Symbol, error) {
	gft, ok := mustEntity(candidate.Type).(*types.GenericFunctionType)
	if !ok {
		return []*symbols.Symbol{candidate}, nil
	}
	fd, ok := candidate.ImplDecl.(*ast.FunctionDeclaration)
	if !ok {
		return nil, nil
	}
	free := NewFreeSet(functionTemplateParams(candidate)...)
	u := pa.Session.Universe
	// deduction must resolve pattern names (the bare "T" in a parameter
	// type) against candidate's own declaration scope, where its template
	// parameters live as child symbols — not the call site's scope, which
	// never sees them.
	declPA := pa.WithScope(candidate).WithFuncBody(candidate)

	ctxs := []*session.ArgContext{pa.ArgCtx}
	n := len(fd.Params)
	for i := 0; i < n && i < len(argTypes); i++ {
		if fd.Variadic && i == n-1 {
			// the trailing parameter is a pack expansion (spec.md §4.7
			// "Variadic expansion"): bind every remaining argument at once,
			// the same way InferTemplateArgument's own *ast.FunctionType case
			// handles a variadic tail.
			items := make([]types.InitItem, 0, len(argTypes)-i)
			for _, at := range argTypes[i:] {
				items = append(items, types.InitItem{Type: at, Category: types.PRValue})
			}
			actual := u.Init(items)
			var next []*session.ArgContext
			for _, ctx := range ctxs {
				bound, err := bindPackPattern(declPA.WithArgContext(ctx), fd.Params[i].TypeExpr, actual, free, ctx)
				if err != nil {
					if diag.IsBenign(err) {
						continue
					}
					return nil, err
				}
				next = append(next, bound)
			}
			ctxs = next
			break
		}
		var next []*session.ArgContext
		for _, ctx := range ctxs {
			results, err := DeduceWithBacktracking(declPA.WithArgContext(ctx), fd.Params[i].TypeExpr, argTypes[i], free)
			if err != nil {
				if diag.IsBenign(err) {
					continue
				}
				return nil, err
			}
			next = append(next, results...)
		}
		ctxs = next
		if len(ctxs) == 0 {
			return nil, nil
		}
	}

	var out []*symbols.Symbol
	for _, ctx := range ctxs {
		if !Complete(free, ctx) {
			continue
		}
		inst := symbols.InstantiationOf(candidate)
		inst.Type = InstantiateFunctionResult(pa.WithArgContext(ctx), gft, free, ctx)
		out = append(out, inst)
	}
	return out, nil
}

// candidateRanks returns the per-argument conversion ranks for calling
// candidate with argTypes/argCats, or (nil, false) if not viable (wrong
// arity for a non-variadic function, or any argument has RankNoMatch).
func candidateRanks(pa session.ParsingArguments, candidate *symbols.Symbol, argTypes []types.Type, argCats []types.ValueCategory) ([]ConversionRank, bool) {
	u := pa.Session.Universe
	ft, ok := mustEntity(candidate.Type).(*types.FunctionType)
	if !ok {
		return nil, false
	}
	if len(argTypes) > len(ft.Params) && !ft.Flags.Variadic {
		return nil, false
	}
	if len(argTypes) < len(ft.Params) {
		return nil, false
	}
	ranks := make([]ConversionRank, 0, len(argTypes))
	for i, at := range argTypes {
		if i >= len(ft.Params) {
			ranks = append(ranks, RankEllipsis)
			continue
		}
		r := StandardConversion(u, at, argCats[i], ft.Params[i])
		if r == RankNoMatch {
			return nil, false
		}
		ranks = append(ranks, r)
	}
	return ranks, true
}

// better reports whether ranks a is at least as good as b in every
// argument position and strictly better in at least one (spec.md §4.6's
// "best viable candidate" rule).
func better(a, b []ConversionRank) bool {
	strictlyBetter := false
	for i := range a {
		if a[i] > b[i] {
			return false
		}
		if a[i] < b[i] {
			strictlyBetter = true
		}
	}
	return strictlyBetter
}

// ResolveOverload picks the best-unique viable candidate (spec.md §4.6):
// every candidate is ranked per-argument; a candidate is viable if no
// argument position is RankNoMatch; the winner must be at least as good as
// every other viable candidate in every position and strictly better in
// at least one, or resolution is ambiguous.
func ResolveOverload(pa session.ParsingArguments, candidates []*symbols.Symbol, argTypes []types.Type, argCats []types.ValueCategory) (*symbols.Symbol, error) {
	type viable struct {
		sym   *symbols.Symbol
		ranks []ConversionRank
	}
	var pool []viable
	for _, c := range candidates {
		instances, err := DeduceCallCandidates(pa, c, argTypes)
		if err != nil {
			return nil, err
		}
		for _, inst := range instances {
			if ranks, ok := candidateRanks(pa, inst, argTypes, argCats); ok {
				pool = append(pool, viable{inst, ranks})
			}
		}
	}
	if len(pool) == 0 {
		return nil, diag.NewIllegalExpression("no viable overload")
	}
	if len(pool) == 1 {
		return pool[0].sym, nil
	}
	best := pool[0]
	for _, v := range pool[1:] {
		if better(v.ranks, best.ranks) {
			best = v
		}
	}
	// re-verify best against every other pool member: a single forward scan
	// can let a later best wrongly clear an earlier candidate that was
	// merely incomparable with it, not worse.
	for _, v := range pool {
		if v.sym == best.sym {
			continue
		}
		if !better(best.ranks, v.ranks) {
			return nil, diag.NewIllegalExpression("ambiguous overload resolution")
		}
	}
	return best.sym, nil
}

// ResolveSurrogateCall implements spec.md §4.6's surrogate-call handling:
// calling a value of function-pointer type directly, or calling a class
// object through its operator() overload set.
func ResolveSurrogateCall(pa session.ParsingArguments, callee []ExprResult, argTypes []types.Type) ([]ExprResult, error) {
	u := pa.Session.Universe
	for _, c := range callee {
		entity, _, _ := types.EntityOf(c.Type)
		if ptr, ok := entity.(*types.PtrType); ok {
			if ft, ok2 := ptr.Elem.(*types.FunctionType); ok2 {
				return []ExprResult{{Type: ft.Ret, Category: types.PRValue}}, nil
			}
		}
		if ft, ok := entity.(*types.FunctionType); ok {
			return []ExprResult{{Type: ft.Ret, Category: types.PRValue}}, nil
		}
		if classSym, ok := classSymbolOf(entity); ok {
			cands := lookupInScopeAndBases(classSym, "operator()", map[*symbols.Symbol]bool{})
			if len(cands) == 0 {
				continue
			}
			cats := make([]types.ValueCategory, len(argTypes))
			for i := range cats {
				cats[i] = types.PRValue
			}
			winner, err := ResolveOverload(pa, cands, argTypes, cats)
			if err != nil {
				return nil, err
			}
			if ft, ok2 := mustEntity(winner.Type).(*types.FunctionType); ok2 {
				return []ExprResult{{Type: ft.Ret, Category: types.PRValue}}, nil
			}
		}
	}
	return []ExprResult{{Type: u.Any(), Category: types.PRValue}}, nil
}
