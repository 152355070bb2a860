// Package types implements the Type Universe (spec.md §3, §4.1): an
// immutable, hash-consed set of type nodes where structural equality is
// pointer equality. Grounded on the teacher's internal/typesystem.Type
// interface (github.com/funvibe/funxy/internal/typesystem/types.go), whose
// single responsibility — "a Type knows how to print itself and be
// substituted" — is generalized here from a Hindley–Milner type universe
// (type variables + type application) to a canonical, CV/ref-disciplined
// C++ type universe (primitives, references, pointers, arrays, function
// types, nominal/instantiated declarations, template placeholders).
//
// A *Universe owns every node; all construction goes through it so
// canonicalization and interning happen in one place (spec.md §3
// invariants: CV never nests, references never nest, arrays of arrays
// decay by rank).
package types

import "strconv"

// Type is the sealed interface implemented by every type-universe node.
// The unexported method keeps the variant set closed to this package, the
// way spec.md §3 intends ("a type is an immutable node of one of the
// following variants").
type Type interface {
	String() string
	typeNode()
}

// SymbolRef is the minimal view the type universe needs of a symbols.Symbol
// to avoid an import cycle between internal/types and internal/symbols
// (symbols.Symbol holds a types.Type; types.Decl holds a SymbolRef).
// internal/symbols.Symbol implements this.
type SymbolRef interface {
	// InternKey is a stable, unique string assigned once at symbol
	// creation time, used only as an interning key — never shown to users.
	InternKey() string
	// DisplayName is the symbol's qualified name, used for String().
	DisplayName() string
}

// PrimKind enumerates the primitive entity kinds of spec.md §3.
type PrimKind int

const (
	Void PrimKind = iota
	Bool
	SignedInt
	UnsignedInt
	SignedChar
	UnsignedChar
	UnsignedWideChar
	Float
)

func (k PrimKind) String() string {
	switch k {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case SignedInt:
		return "signed-int"
	case UnsignedInt:
		return "unsigned-int"
	case SignedChar:
		return "signed-char"
	case UnsignedChar:
		return "unsigned-char"
	case UnsignedWideChar:
		return "unsigned-wide-char"
	case Float:
		return "float"
	default:
		return "?primkind"
	}
}

// CVFlag is a bitmask of const/volatile qualification.
type CVFlag uint8

const (
	CVNone     CVFlag = 0
	Const      CVFlag = 1 << 0
	Volatile   CVFlag = 1 << 1
	CVAllFlags        = Const | Volatile
)

func (f CVFlag) String() string {
	s := ""
	if f&Const != 0 {
		s += "const "
	}
	if f&Volatile != 0 {
		s += "volatile "
	}
	return s
}

// RefKind distinguishes no-reference / lvalue-reference / rvalue-reference.
type RefKind uint8

const (
	NoRef RefKind = iota
	LValueRef
	RValueRef
)

func (r RefKind) String() string {
	switch r {
	case LValueRef:
		return "&"
	case RValueRef:
		return "&&"
	default:
		return ""
	}
}

// ValueCategory tags an expression result (spec.md §4.5): LValue, XValue,
// or PRValue. Lives here, not in expreval, because Init items (a node of
// this universe) carry one per element.
type ValueCategory uint8

const (
	PRValue ValueCategory = iota
	LValue
	XValue
)

func (c ValueCategory) String() string {
	switch c {
	case LValue:
		return "lvalue"
	case XValue:
		return "xvalue"
	default:
		return "prvalue"
	}
}

// --- concrete node variants ---

type PrimitiveType struct {
	Kind  PrimKind
	Width int
}

func (t *PrimitiveType) typeNode() {}
func (t *PrimitiveType) String() string {
	return t.Kind.String() + "(" + strconv.Itoa(t.Width) + ")"
}

type RefType struct {
	Kind RefKind
	Elem Type
}

func (t *RefType) typeNode() {}
func (t *RefType) String() string {
	return t.Elem.String() + t.Kind.String()
}

type PtrType struct{ Elem Type }

func (t *PtrType) typeNode()     {}
func (t *PtrType) String() string { return t.Elem.String() + "*" }

type ArrayType struct {
	Elem Type
	Rank int // number of collapsed array dimensions ([n][m]... folded additively)
}

func (t *ArrayType) typeNode() {}
func (t *ArrayType) String() string {
	return t.Elem.String() + "[" + strconv.Itoa(t.Rank) + "]"
}

type CVType struct {
	Elem  Type
	Flags CVFlag
}

func (t *CVType) typeNode() {}
func (t *CVType) String() string {
	return t.Flags.String() + t.Elem.String()
}

// MemberType is a pointer-to-member-of-owner element type.
type MemberType struct {
	Owner SymbolRef
	Elem  Type
}

func (t *MemberType) typeNode() {}
func (t *MemberType) String() string {
	return t.Elem.String() + " " + t.Owner.DisplayName() + "::*"
}

// FunctionFlags carries calling convention, variadic ellipsis, and the
// cv/ref-qualifiers attached to the function itself (member function
// qualifiers, e.g. `void f() const &`).
type FunctionFlags struct {
	CallConv string
	Variadic bool
	CV       CVFlag
	Ref      RefKind
}

type FunctionType struct {
	Ret    Type
	Params []Type
	Flags  FunctionFlags
}

func (t *FunctionType) typeNode() {}
func (t *FunctionType) String() string {
	s := t.Ret.String() + "("
	for i, p := range t.Params {
		if i > 0 {
			s += ","
		}
		s += p.String()
	}
	if t.Flags.Variadic {
		s += ",..."
	}
	s += ")" + t.Flags.CV.String() + t.Flags.Ref.String()
	return s
}

// DeclType is a nominal type naming a class/struct/union/enum symbol.
type DeclType struct{ Symbol SymbolRef }

func (t *DeclType) typeNode()     {}
func (t *DeclType) String() string { return t.Symbol.DisplayName() }

// DeclInstantType is a specific instantiation of a template symbol.
// Identity is (Symbol, ParentDecl, Args) in order — not a set.
type DeclInstantType struct {
	Symbol     SymbolRef
	ParentDecl Type // enclosing instantiated class, or nil
	ArgContext interface{}
	Args       []Type
}

func (t *DeclInstantType) typeNode() {}
func (t *DeclInstantType) String() string {
	s := t.Symbol.DisplayName() + "<"
	for i, a := range t.Args {
		if i > 0 {
			s += ","
		}
		s += a.String()
	}
	s += ">"
	if t.ParentDecl != nil {
		return t.ParentDecl.String() + "::" + s
	}
	return s
}

// GenericArgType is a template-parameter placeholder bound to an owning
// template symbol at a given argument index.
type GenericArgType struct {
	Owner SymbolRef
	Index int
	Arg   SymbolRef
}

func (t *GenericArgType) typeNode() {}
func (t *GenericArgType) String() string {
	return t.Owner.DisplayName() + "#" + strconv.Itoa(t.Index) + ":" + t.Arg.DisplayName()
}

// GenericFunctionType is an uninstantiated (or partially-instantiated)
// template function type. Free names the template parameter symbols that
// still await deduction (spec.md §4.7 "Partial application").
type GenericFunctionType struct {
	Ret    Type
	Params []Type
	Free   []SymbolRef
}

func (t *GenericFunctionType) typeNode() {}
func (t *GenericFunctionType) String() string {
	s := "template<"
	for i, f := range t.Free {
		if i > 0 {
			s += ","
		}
		s += f.DisplayName()
	}
	s += ">" + t.Ret.String() + "("
	for i, p := range t.Params {
		if i > 0 {
			s += ","
		}
		s += p.String()
	}
	s += ")"
	return s
}

// InitItem is one element of a brace-initializer bundle.
type InitItem struct {
	Type     Type
	Category ValueCategory
}

// InitType bundles the element types/categories of a brace initializer.
type InitType struct{ Items []InitItem }

func (t *InitType) typeNode() {}
func (t *InitType) String() string {
	s := "{"
	for i, it := range t.Items {
		if i > 0 {
			s += ","
		}
		s += it.Type.String()
	}
	return s + "}"
}

// ValueArgType represents a non-type ("value") template argument bound
// into a DeclInstantType's Args list, e.g. the `5` in `array<int,5>`.
// Constant folding beyond what overload resolution requires is out of
// scope (spec.md §1 Non-goals), so a value argument's identity is its
// canonicalized source text rather than a fully evaluated constant —
// sufficient for the structural-equality/interning purposes a Type node
// needs, per spec.md §3 invariant (a).
type ValueArgType struct{ Repr string }

func (t *ValueArgType) typeNode()     {}
func (t *ValueArgType) String() string { return t.Repr }

// singleton markers
type zeroType struct{}
type nullptrType struct{}
type anyType struct{}
type intPtrType struct{}

func (zeroType) typeNode()        {}
func (zeroType) String() string   { return "zero" }
func (nullptrType) typeNode()     {}
func (nullptrType) String() string { return "nullptr_t" }
func (anyType) typeNode()         {}
func (anyType) String() string    { return "<any>" }
func (intPtrType) typeNode()      {}
func (intPtrType) String() string { return "ptrdiff_t" }
