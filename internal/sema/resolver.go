// Package sema implements the mutually recursive core of spec.md §4:
// Name Resolver (C3), Type Evaluator (C4), Expression Evaluator (C5),
// Overload Resolver (C6), Template Engine (C7), and Declaration Driver
// (C8) — one Go package rather than six, because every one of these
// algorithms calls into several of the others on the same call stack
// (name lookup feeds type evaluation, type evaluation feeds template
// deduction, template deduction feeds overload resolution, overload
// resolution feeds expression evaluation, which calls back into name
// lookup for operator candidates). Splitting them into separate packages
// would force either an import cycle or an interface layer purely to
// satisfy Go's acyclic import graph, with no benefit to a reader — the
// same call-graph shape the standard library's own type checker
// (cmd/compile/internal/types2, go/types) uses for the analogous Go
// front end. Each concern still gets its own file, named after the
// component it implements.
//
// Grounded throughout on the teacher's internal/symbols (resolution),
// internal/typesystem (unification/kind-checking), and internal/analyzer
// (declaration walking, call-site inference) packages — see DESIGN.md for
// the per-file grounding ledger.
package sema

import (
	"github.com/cppsem/cppsem/internal/diag"
	"github.com/cppsem/cppsem/internal/session"
	"github.com/cppsem/cppsem/internal/symbols"
	"github.com/cppsem/cppsem/internal/types"
)

// AccessibleInScope implements spec.md §4.3's first search policy: from
// pa.Scope, walk outward through enclosing scopes and, inside classes,
// through base classes. Returns every matching symbol found at the
// nearest frontier that answers the name (ordinary C++ lookup stops at
// the first scope with any match, even if that match is later found
// ambiguous or inaccessible — accessibility/ambiguity is the caller's
// concern, not this function's).
func AccessibleInScope(pa session.ParsingArguments, name string) []*symbols.Symbol {
	for scope := pa.Scope; scope != nil; scope = scope.Parent {
		if found := lookupInScopeAndBases(scope, name, map[*symbols.Symbol]bool{}); len(found) > 0 {
			return found
		}
	}
	return nil
}

func lookupInScopeAndBases(scope *symbols.Symbol, name string, visited map[*symbols.Symbol]bool) []*symbols.Symbol {
	if visited[scope] {
		return nil
	}
	visited[scope] = true

	if direct := symbols.TryChildren(scope, name); len(direct) > 0 {
		return direct
	}
	if !scope.Kind.IsClassLike() {
		return nil
	}
	// BFS through base classes (spec.md §4.3: "Inheritance walking uses
	// breadth-first traversal ... with a visited set to avoid diamond
	// re-entry; it stops at the first frontier that answers the name.")
	frontier := append([]*symbols.Symbol(nil), scope.Bases...)
	for len(frontier) > 0 {
		var next []*symbols.Symbol
		for _, base := range frontier {
			if visited[base] {
				continue
			}
			visited[base] = true
			if direct := symbols.TryChildren(base, name); len(direct) > 0 {
				return direct
			}
			next = append(next, base.Bases...)
		}
		frontier = next
	}
	return nil
}

// ChildSymbolFromOutside implements spec.md §4.3's second search policy:
// only the immediate scope's children, following using-directives
// transparently.
func ChildSymbolFromOutside(scope *symbols.Symbol, name string) []*symbols.Symbol {
	return childFromOutside(scope, name, map[*symbols.Symbol]bool{})
}

func childFromOutside(scope *symbols.Symbol, name string, visited map[*symbols.Symbol]bool) []*symbols.Symbol {
	if visited[scope] {
		return nil
	}
	visited[scope] = true

	if direct := symbols.TryChildren(scope, name); len(direct) > 0 {
		return direct
	}
	for _, ns := range scope.UsingNamespaces {
		if found := childFromOutside(ns, name, visited); len(found) > 0 {
			return found
		}
	}
	return nil
}

// Phase distinguishes the two lookup moments of two-phase name lookup
// inside a template (spec.md §4.3): a non-dependent lookup performed
// eagerly at parse/declaration time, and a dependent lookup deferred
// until instantiation.
type Phase int

const (
	NonDependent Phase = iota
	Dependent
)

// isDependentName reports whether name resolves, in pa's current argument
// context, to something that depends on an as-yet-unbound template
// parameter — spec.md's trigger for deferring lookup to instantiation
// time. A name is dependent if it is itself a free template parameter in
// scope with no current binding.
func isDependentName(pa session.ParsingArguments, name string) bool {
	_, bound := pa.ArgCtx.Lookup(name)
	return !bound && hasGenericParam(pa.Scope, name)
}

func hasGenericParam(scope *symbols.Symbol, name string) bool {
	for s := scope; s != nil; s = s.Parent {
		for _, sym := range symbols.TryChildren(s, name) {
			if sym.Kind == symbols.GenericTypeArgument || sym.Kind == symbols.GenericValueArgument {
				return true
			}
		}
	}
	return false
}

// TwoPhaseLookup performs AccessibleInScope lookup, but when phase is
// NonDependent it refuses to resolve a name that is dependent on an
// unbound template parameter (spec.md §4.3) — the caller is expected to
// retry with Dependent (and a populated pa.ArgCtx) once the enclosing
// template is being instantiated.
func TwoPhaseLookup(pa session.ParsingArguments, name string, phase Phase) ([]*symbols.Symbol, error) {
	if phase == NonDependent && isDependentName(pa, name) {
		return nil, nil
	}
	found := AccessibleInScope(pa, name)
	if found == nil {
		return nil, diag.NewIllegalExpression("name not found: " + name)
	}
	return found, nil
}

// AssociatedScopes collects the namespaces/classes associated with an
// argument type for ADL (spec.md §4.3): each type's enclosing namespace,
// each class's bases and enclosing namespaces.
func AssociatedScopes(t types.Type) []*symbols.Symbol {
	entity, _, _ := types.EntityOf(t)
	var scopes []*symbols.Symbol
	visit := func(sym *symbols.Symbol) {
		for s := sym.Parent; s != nil; s = s.Parent {
			if s.Kind == symbols.Namespace || s.Kind == symbols.Root {
				scopes = append(scopes, s)
				break
			}
		}
	}
	var walkClass func(sym *symbols.Symbol, visited map[*symbols.Symbol]bool)
	walkClass = func(sym *symbols.Symbol, visited map[*symbols.Symbol]bool) {
		if visited[sym] {
			return
		}
		visited[sym] = true
		scopes = append(scopes, sym)
		visit(sym)
		for _, b := range sym.Bases {
			walkClass(b, visited)
		}
	}
	switch v := entity.(type) {
	case *types.DeclType:
		if sym, ok := v.Symbol.(*symbols.Symbol); ok {
			if sym.Kind.IsClassLike() {
				walkClass(sym, map[*symbols.Symbol]bool{})
			} else {
				visit(sym)
			}
		}
	case *types.DeclInstantType:
		if sym, ok := v.Symbol.(*symbols.Symbol); ok {
			walkClass(sym, map[*symbols.Symbol]bool{})
		}
		for _, a := range v.Args {
			scopes = append(scopes, AssociatedScopes(a)...)
		}
	case *types.PtrType:
		scopes = append(scopes, AssociatedScopes(v.Elem)...)
	case *types.ArrayType:
		scopes = append(scopes, AssociatedScopes(v.Elem)...)
	}
	return scopes
}

// ADL implements spec.md §4.3's argument-dependent lookup: given the
// argument types of a call (or operator application), collect associated
// namespaces/classes and union same-named-function candidates found
// there with unqualifiedHit, unless suppressed. Per spec.md invariant 6
// (§8): ADL only adds candidates when unqualifiedHit is empty or made up
// entirely of functions; a hit that includes any non-function is returned
// unchanged. suppressed is the caller's signal for an explicit `::`, which
// this function honors by also returning unqualifiedHit unchanged.
func ADL(name string, argTypes []types.Type, unqualifiedHit []*symbols.Symbol, suppressed bool) []*symbols.Symbol {
	if suppressed {
		return unqualifiedHit
	}
	if len(unqualifiedHit) > 0 {
		allFunctions := true
		for _, s := range unqualifiedHit {
			if s.Kind != symbols.FunctionSymbol {
				allFunctions = false
				break
			}
		}
		if !allFunctions {
			return unqualifiedHit
		}
	}

	result := append([]*symbols.Symbol(nil), unqualifiedHit...)
	seen := map[*symbols.Symbol]bool{}
	for _, s := range result {
		seen[s] = true
	}
	visitedScopes := map[*symbols.Symbol]bool{}
	for _, argT := range argTypes {
		for _, scope := range AssociatedScopes(argT) {
			if visitedScopes[scope] {
				continue
			}
			visitedScopes[scope] = true
			for _, cand := range symbols.TryChildren(scope, name) {
				if cand.Kind == symbols.FunctionSymbol && !seen[cand] {
					seen[cand] = true
					result = append(result, cand)
				}
			}
		}
	}
	return result
}
