package ast

import "github.com/cppsem/cppsem/internal/token"

// ClassKind distinguishes class/struct/union (they differ only in default
// access and, for unions, active-member rules — spec.md §3).
type ClassKind int

const (
	KindClass ClassKind = iota
	KindStruct
	KindUnion
)

// TemplateParamDecl is one parameter of a template parameter list: a type
// parameter (`typename T`), a non-type ("value") parameter (`int N`), or
// a template-template parameter. IsVariadic marks a pack (`typename... Ts`).
type TemplateParamDecl struct {
	Spn        token.Span
	NameTok    *CppName
	IsType     bool // true: type parameter; false: value parameter
	ValueType  Type // for value parameters: the parameter's type syntax
	Default    Type
	DefaultVal Expression
	IsVariadic bool
}

func (p *TemplateParamDecl) astNode()         {}
func (p *TemplateParamDecl) Span() token.Span { return p.Spn }

// ForwardDeclaration declares a class/struct/union/enum without defining
// it (`class Foo;`).
type ForwardDeclaration struct {
	Spn       token.Span
	NameTok   *CppName
	Kind      ClassKind
	IsEnum    bool
	Templates []*TemplateParamDecl
}

func (d *ForwardDeclaration) astNode()          {}
func (d *ForwardDeclaration) declarationNode()  {}
func (d *ForwardDeclaration) Span() token.Span  { return d.Spn }
func (d *ForwardDeclaration) Name() *CppName    { return d.NameTok }

// VariableDeclaration declares a (possibly static/extern) data member or
// free variable, with an optional initializer.
type VariableDeclaration struct {
	Spn      token.Span
	NameTok  *CppName
	TypeExpr Type
	Init     Expression
	IsStatic bool
	IsExtern bool
}

func (d *VariableDeclaration) astNode()         {}
func (d *VariableDeclaration) declarationNode() {}
func (d *VariableDeclaration) Span() token.Span { return d.Spn }
func (d *VariableDeclaration) Name() *CppName   { return d.NameTok }

// ParamDeclaration is one function parameter.
type ParamDeclaration struct {
	Spn      token.Span
	NameTok  *CppName // may be nil (unnamed parameter)
	TypeExpr Type
	Default  Expression
}

func (p *ParamDeclaration) astNode()         {}
func (p *ParamDeclaration) Span() token.Span { return p.Spn }

// FunctionDeclaration declares (and, if Body is set, defines) a function
// or member function. The body is held as an unforced syntax subtree —
// the Declaration Driver (C8) defers walking it until a consumer needs
// inside-function references (spec.md §4.8).
type FunctionDeclaration struct {
	Spn         token.Span
	NameTok     *CppName
	Params      []*ParamDeclaration
	ReturnType  Type // nil when deduced (`auto`) until evaluated
	Variadic    bool
	IsStatic    bool
	IsVirtual   bool
	IsConst     bool // const member function
	RefQualKind int  // 0 = none, 1 = &, 2 = &&
	Templates   []*TemplateParamDecl
	Body        *CompoundStatement // nil for a declaration-only prototype
	CallConv    string
}

func (d *FunctionDeclaration) astNode()         {}
func (d *FunctionDeclaration) declarationNode() {}
func (d *FunctionDeclaration) Span() token.Span { return d.Spn }
func (d *FunctionDeclaration) Name() *CppName   { return d.NameTok }
func (d *FunctionDeclaration) IsTemplate() bool { return len(d.Templates) > 0 }

// EnumItemDecl declares one enumerator.
type EnumItemDecl struct {
	Spn     token.Span
	NameTok *CppName
	Value   Expression // nil when implicit (previous + 1)
}

func (d *EnumItemDecl) astNode()         {}
func (d *EnumItemDecl) declarationNode() {}
func (d *EnumItemDecl) Span() token.Span { return d.Spn }
func (d *EnumItemDecl) Name() *CppName   { return d.NameTok }

// EnumDeclaration declares an enum or enum class.
type EnumDeclaration struct {
	Spn       token.Span
	NameTok   *CppName
	Scoped    bool // `enum class`/`enum struct`
	Underlying Type
	Items     []*EnumItemDecl
}

func (d *EnumDeclaration) astNode()         {}
func (d *EnumDeclaration) declarationNode() {}
func (d *EnumDeclaration) Span() token.Span { return d.Spn }
func (d *EnumDeclaration) Name() *CppName   { return d.NameTok }

// ClassDeclaration declares (defines) a class/struct/union, optionally a
// class template.
type ClassDeclaration struct {
	Spn       token.Span
	NameTok   *CppName
	Kind      ClassKind
	Bases     []BaseSpecifier
	Members   []Declaration
	Templates []*TemplateParamDecl
}

func (d *ClassDeclaration) astNode()         {}
func (d *ClassDeclaration) declarationNode() {}
func (d *ClassDeclaration) Span() token.Span { return d.Spn }
func (d *ClassDeclaration) Name() *CppName   { return d.NameTok }
func (d *ClassDeclaration) IsTemplate() bool { return len(d.Templates) > 0 }

// TypeAliasDeclaration declares `using Name = Type;` or `typedef Type Name;`.
type TypeAliasDeclaration struct {
	Spn     token.Span
	NameTok *CppName
	Aliased Type
}

func (d *TypeAliasDeclaration) astNode()         {}
func (d *TypeAliasDeclaration) declarationNode() {}
func (d *TypeAliasDeclaration) Span() token.Span { return d.Spn }
func (d *TypeAliasDeclaration) Name() *CppName   { return d.NameTok }

// UsingNamespaceDeclaration is a `using namespace N;` directive: it makes
// N's members visible via ChildSymbolFromOutside lookup transparently
// (spec.md §4.3), without introducing a name of its own.
type UsingNamespaceDeclaration struct {
	Spn       token.Span
	Namespace *NameSyntax
}

func (d *UsingNamespaceDeclaration) astNode()         {}
func (d *UsingNamespaceDeclaration) declarationNode() {}
func (d *UsingNamespaceDeclaration) Span() token.Span { return d.Spn }
func (d *UsingNamespaceDeclaration) Name() *CppName   { return nil }

// UsingDeclaration is a `using Base::member;`-style using-declaration: it
// introduces Target's name into the current scope.
type UsingDeclaration struct {
	Spn     token.Span
	NameTok *CppName
	Target  *NameSyntax
}

func (d *UsingDeclaration) astNode()         {}
func (d *UsingDeclaration) declarationNode() {}
func (d *UsingDeclaration) Span() token.Span { return d.Spn }
func (d *UsingDeclaration) Name() *CppName   { return d.NameTok }

// NamespaceDeclaration declares (or reopens) a namespace.
type NamespaceDeclaration struct {
	Spn     token.Span
	NameTok *CppName // nil for an anonymous namespace
	Members []Declaration
}

func (d *NamespaceDeclaration) astNode()         {}
func (d *NamespaceDeclaration) declarationNode() {}
func (d *NamespaceDeclaration) Span() token.Span { return d.Spn }
func (d *NamespaceDeclaration) Name() *CppName   { return d.NameTok }
