// Package ast defines the declaration/type/expression/statement syntax
// tree that the (out-of-scope) parser hands to this core. Grounded on the
// teacher's internal/ast package (github.com/funvibe/funxy/internal/ast),
// generalized from funxy's dynamically-typed scripting-language grammar to
// a C++ translation unit, and from the teacher's visitor-dispatch pattern
// (every node implements Accept(Visitor)) to tagged interface variants
// with type switches, per spec.md §9's explicit design note ("tagged
// variants with exhaustive pattern matching replace visitor classes").
package ast

import "github.com/cppsem/cppsem/internal/token"

// Node is the base interface every syntax tree node implements. Sealed to
// this package via the unexported astNode marker, the same way the
// teacher seals its Node variants with unexported *Node() methods.
type Node interface {
	Span() token.Span
	astNode()
}

// Declaration is a top-level or member declaration. Every declaration
// carries a CppName (spec.md §6) and, once the Declaration Driver (C8)
// has run, a back-pointer to the symbol it declares.
type Declaration interface {
	Node
	Name() *CppName
	declarationNode()
}

// Type is a syntactic type constructor, evaluated to a canonical
// types.Type by the Type Evaluator (C4).
type Type interface {
	Node
	typeNode()
}

// Expression is a syntactic expression, evaluated to an expression-type
// set by the Expression Evaluator (C5).
type Expression interface {
	Node
	expressionNode()
}

// Statement is a syntactic statement.
type Statement interface {
	Node
	statementNode()
}

// Program is the root node of one translation unit.
type Program struct {
	Spn   token.Span
	File  string
	Decls []Declaration
}

func (p *Program) astNode()         {}
func (p *Program) Span() token.Span { return p.Spn }

// CppName is a declaration's or id-expression's name syntax: a type tag
// (plain identifier, destructor, operator, conversion-function, ...) plus
// up to 4 source tokens, per spec.md §6 ("Each carries a CppName (type
// tag, token count, up to 4 source tokens)").
type CppName struct {
	Tag    NameTag
	Tokens []token.Token // 1..4 tokens, e.g. ["operator","+"] or ["~","Foo"]
}

// NameTag classifies what shape of name this is.
type NameTag int

const (
	NamePlain NameTag = iota
	NameDestructor
	NameOperator
	NameConversion
	NameConstructor
)

// Text renders the name's token sequence, e.g. "operator+" or "~Foo".
func (n *CppName) Text() string {
	s := ""
	for _, t := range n.Tokens {
		s += t.Lexeme
	}
	return s
}

// NameSyntax is a possibly-qualified id-expression or type name:
// `::std::vector<int>::iterator`. Global marks a leading `::`.
// Qualifiers are the scope-qualifying segments before the final name
// (each may itself carry template arguments, e.g. `vector<int>::`).
type NameSyntax struct {
	Spn        token.Span
	Global     bool
	Qualifiers []QualifierSegment
	Name       *CppName
	Args       []TemplateArg // non-nil (possibly empty) iff this is a template-id
}

func (n *NameSyntax) astNode()         {}
func (n *NameSyntax) Span() token.Span { return n.Spn }

// IsTemplateID reports whether this name syntax was written with explicit
// template arguments (`f<int>`), which suppresses DeclInstant lifting
// ambiguity the way spec.md §6's `ExpectTemplate` preset controls.
func (n *NameSyntax) IsTemplateID() bool { return n.Args != nil }

// QualifierSegment is one `Name<Args>::` component of a qualified name.
type QualifierSegment struct {
	Name *CppName
	Args []TemplateArg // nil if this segment has no template arguments
}

// TemplateArg is one argument of a template-id: either a type or an
// expression (value argument), with an isVariadic flag per spec.md §6.
type TemplateArg struct {
	Type       Type
	Expr       Expression
	IsVariadic bool
}

// BaseSpecifier is one entry in a class's base-clause.
type BaseSpecifier struct {
	Spn     token.Span
	Name    *NameSyntax
	Virtual bool
	Access  AccessSpecifier
}

// AccessSpecifier is the public/protected/private access of a base class
// or member.
type AccessSpecifier int

const (
	Public AccessSpecifier = iota
	Protected
	Private
)
