// Package symbols implements the Symbol Table (C2, spec.md §4.2):
// hierarchical scopes, per-symbol declaration lists, child-name indices,
// and unique-id minting. Grounded on the teacher's internal/symbols
// package (symbol_table_core.go, symbol_table_resolution.go), generalized
// from funxy's flat (ScopeType, Symbol) pair — funxy has only four scope
// kinds and no nested named scopes — into a genuine parent-pointer tree of
// symbols, since spec.md requires namespaces, classes and function bodies
// to nest arbitrarily and for base classes to be walkable.
package symbols

import (
	"github.com/cppsem/cppsem/internal/ast"
	"github.com/cppsem/cppsem/internal/types"
)

// SymbolKind enumerates the symbol categories of spec.md §3.
type SymbolKind int

const (
	Root SymbolKind = iota
	Namespace
	Class
	Struct
	Union
	Enum
	EnumItem
	TypeAlias
	ValueAlias
	Variable
	FunctionSymbol
	GenericTypeArgument
	GenericValueArgument
)

func (k SymbolKind) String() string {
	switch k {
	case Root:
		return "root"
	case Namespace:
		return "namespace"
	case Class:
		return "class"
	case Struct:
		return "struct"
	case Union:
		return "union"
	case Enum:
		return "enum"
	case EnumItem:
		return "enum-item"
	case TypeAlias:
		return "type-alias"
	case ValueAlias:
		return "value-alias"
	case Variable:
		return "variable"
	case FunctionSymbol:
		return "function"
	case GenericTypeArgument:
		return "generic-type-argument"
	case GenericValueArgument:
		return "generic-value-argument"
	default:
		return "?kind"
	}
}

// IsClassLike reports whether a symbol of this kind can own a class
// member cache and be walked as a base class.
func (k SymbolKind) IsClassLike() bool {
	return k == Class || k == Struct || k == Union
}

// Symbol is a named entity in the symbol tree (spec.md §3). Identity is
// nominal: two distinct symbols with the same name in the same scope are
// still distinct (e.g. an overload set, or a shadowing redeclaration that
// the driver decided was incompatible).
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Parent *Symbol

	Children map[string][]*Symbol // ordered: preserves overload-set order

	Type           types.Type      // evaluated type, once C4/C8 has run
	UnderlyingType types.Type      // for TypeAlias: the aliased type

	ImplDecl ast.Declaration   // the defining declaration, if any
	Forwards []ast.Declaration // forward declarations seen before the definition

	// UsingNamespaces lists namespaces brought in by a `using namespace N;`
	// directive seen in this scope: ChildSymbolFromOutside (C3) follows
	// these transparently (spec.md §4.3).
	UsingNamespaces []*Symbol
	// Bases are the direct base-class symbols named in this class's
	// base-clause, in declaration order, resolved by C3/C8 before the
	// class member cache is built.
	Bases []*Symbol

	classCache    *ClassMemberCache
	cacheBuilding bool
	evalCache     map[evalKey]*evalEntry

	internKey string
	uid       string // minted post-population by MintIDs; empty until then
}

// InternKey implements types.SymbolRef: a stable key assigned once at
// creation, used only to intern types.Decl/DeclInstant/GenericArg nodes
// that reference this symbol.
func (s *Symbol) InternKey() string { return s.internKey }

// DisplayName implements types.SymbolRef: the symbol's qualified name.
func (s *Symbol) DisplayName() string { return s.QualifiedName() }

// QualifiedName joins the symbol's ancestor chain with "::", the way a
// diagnostic or cross-reference consumer would display it. The root
// symbol contributes nothing.
func (s *Symbol) QualifiedName() string {
	if s == nil {
		return ""
	}
	if s.Parent == nil || s.Parent.Kind == Root {
		return s.Name
	}
	parent := s.Parent.QualifiedName()
	if parent == "" {
		return s.Name
	}
	return parent + "::" + s.Name
}

// UID returns the symbol's minted stable external id, or "" if MintIDs
// has not yet run for this session (spec.md §4.2).
func (s *Symbol) UID() string { return s.uid }

// InstantiationOf builds a synthetic symbol for one deduced instantiation of
// a function template: same name/kind/parent/declaration as base, but not
// itself a child of base's scope (there can be many instantiations, one per
// call site's deduced arguments). It carries base's InternKey and UID
// forward, since a deduced instantiation is a view onto base's identity, not
// a new declaration — any xref recorded against it stays resolvable once
// MintIDs has already run over the tree base lives in.
func InstantiationOf(base *Symbol) *Symbol {
	return &Symbol{
		Name:      base.Name,
		Kind:      base.Kind,
		Parent:    base.Parent,
		ImplDecl:  base.ImplDecl,
		internKey: base.internKey,
		uid:       base.uid,
	}
}

// AnyForwardDecl returns the first forward declaration of concrete type T
// recorded on the symbol, the Go-generics rendering of spec.md §4.2's
// `any_forward_decl<Kind>()`.
func AnyForwardDecl[T ast.Declaration](s *Symbol) (T, bool) {
	var zero T
	for _, d := range s.Forwards {
		if t, ok := d.(T); ok {
			return t, true
		}
	}
	return zero, false
}

type evalKey struct {
	parentDecl string // canonical string form of the parent-decl-type, or ""
	argCtxID   string // argument-context identity, or ""
}

type evalState int

const (
	evalNotStarted evalState = iota
	evalInProgress
	evalDone
)

type evalEntry struct {
	state  evalState
	result []types.Type // a function symbol may evaluate to an overload list
	err    error
}

func keyString(parentDecl types.Type, argCtxID string) evalKey {
	k := evalKey{argCtxID: argCtxID}
	if parentDecl != nil {
		k.parentDecl = parentDecl.String()
	}
	return k
}
