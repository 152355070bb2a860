package ast

import "github.com/cppsem/cppsem/internal/token"

// IdType names a (possibly qualified, possibly template) type by id-expr;
// resolved by C3 then lifted to Decl/DeclInstant by C4 (spec.md §4.4).
type IdType struct {
	Spn  token.Span
	Name *NameSyntax
}

func (t *IdType) astNode()         {}
func (t *IdType) typeNode()        {}
func (t *IdType) Span() token.Span { return t.Spn }

// ChildType is `Qualifier::Name`, e.g. `typename A<X>::B` — spec.md §4.4:
// resolve the qualifier first, then perform child lookup.
type ChildType struct {
	Spn       token.Span
	Qualifier Type
	Name      *CppName
	Args      []TemplateArg // non-nil iff this child itself names a template-id
}

func (t *ChildType) astNode()         {}
func (t *ChildType) typeNode()        {}
func (t *ChildType) Span() token.Span { return t.Spn }

// CVType is a syntactic const/volatile qualification.
type CVType struct {
	Spn      token.Span
	Inner    Type
	Const    bool
	Volatile bool
}

func (t *CVType) astNode()         {}
func (t *CVType) typeNode()        {}
func (t *CVType) Span() token.Span { return t.Spn }

// PtrType is a syntactic pointer declarator (`T*`).
type PtrType struct {
	Spn   token.Span
	Inner Type
}

func (t *PtrType) astNode()         {}
func (t *PtrType) typeNode()        {}
func (t *PtrType) Span() token.Span { return t.Spn }

// RefType is a syntactic reference declarator (`T&` / `T&&`).
type RefType struct {
	Spn   token.Span
	Inner Type
	Rval  bool
}

func (t *RefType) astNode()         {}
func (t *RefType) typeNode()        {}
func (t *RefType) Span() token.Span { return t.Spn }

// ArrayType is a syntactic array declarator (`T[N]`). Size is nil for an
// incomplete array (`T[]`), otherwise the bound expression.
type ArrayType struct {
	Spn   token.Span
	Inner Type
	Size  Expression
}

func (t *ArrayType) astNode()         {}
func (t *ArrayType) typeNode()        {}
func (t *ArrayType) Span() token.Span { return t.Spn }

// FunctionType is a syntactic function-type declarator, e.g. used for
// function pointers and trailing-return-type syntax.
type FunctionType struct {
	Spn      token.Span
	Ret      Type
	Params   []Type
	Variadic bool
	Const    bool
	RvalQual bool
	LvalQual bool
	CallConv string
}

func (t *FunctionType) astNode()         {}
func (t *FunctionType) typeNode()        {}
func (t *FunctionType) Span() token.Span { return t.Spn }

// MemberPtrType is a syntactic pointer-to-member declarator (`T Owner::*`).
type MemberPtrType struct {
	Spn   token.Span
	Owner *NameSyntax
	Inner Type
}

func (t *MemberPtrType) astNode()         {}
func (t *MemberPtrType) typeNode()        {}
func (t *MemberPtrType) Span() token.Span { return t.Spn }

// DecltypeType is `decltype(expr)`; C4 evaluates Expr's type and
// preserves its value category as an outer ref (spec.md §4.4).
type DecltypeType struct {
	Spn  token.Span
	Expr Expression
}

func (t *DecltypeType) astNode()         {}
func (t *DecltypeType) typeNode()        {}
func (t *DecltypeType) Span() token.Span { return t.Spn }

// AutoType is a placeholder type (`auto`) deduced from an initializer or
// a function's return statements.
type AutoType struct {
	Spn token.Span
}

func (t *AutoType) astNode()         {}
func (t *AutoType) typeNode()        {}
func (t *AutoType) Span() token.Span { return t.Spn }
