package ast

import "github.com/cppsem/cppsem/internal/token"

// ExprStatement is an expression used as a statement (`e;`).
type ExprStatement struct {
	Spn  token.Span
	Expr Expression
}

func (s *ExprStatement) astNode()         {}
func (s *ExprStatement) statementNode()   {}
func (s *ExprStatement) Span() token.Span { return s.Spn }

// DeclStatement is a local declaration used as a statement.
type DeclStatement struct {
	Spn  token.Span
	Decl Declaration
}

func (s *DeclStatement) astNode()         {}
func (s *DeclStatement) statementNode()   {}
func (s *DeclStatement) Span() token.Span { return s.Spn }

// ReturnStatement is `return e;` or a valueless `return;`.
type ReturnStatement struct {
	Spn   token.Span
	Value Expression
}

func (s *ReturnStatement) astNode()         {}
func (s *ReturnStatement) statementNode()   {}
func (s *ReturnStatement) Span() token.Span { return s.Spn }

// CompoundStatement is a `{ ... }` block. A function's Body is a
// *CompoundStatement kept unparsed/unwalked until the Declaration Driver
// forces it (spec.md §4.8 "delayed function bodies").
type CompoundStatement struct {
	Spn  token.Span
	Body []Statement
}

func (s *CompoundStatement) astNode()         {}
func (s *CompoundStatement) statementNode()   {}
func (s *CompoundStatement) Span() token.Span { return s.Spn }

// IfStatement is `if (cond) then else orelse`.
type IfStatement struct {
	Spn    token.Span
	Cond   Expression
	Then   Statement
	Else   Statement
}

func (s *IfStatement) astNode()         {}
func (s *IfStatement) statementNode()   {}
func (s *IfStatement) Span() token.Span { return s.Spn }

// WhileStatement is `while (cond) body`.
type WhileStatement struct {
	Spn  token.Span
	Cond Expression
	Body Statement
}

func (s *WhileStatement) astNode()         {}
func (s *WhileStatement) statementNode()   {}
func (s *WhileStatement) Span() token.Span { return s.Spn }

// ForStatement is a C-style `for (init; cond; step) body`.
type ForStatement struct {
	Spn  token.Span
	Init Statement
	Cond Expression
	Step Expression
	Body Statement
}

func (s *ForStatement) astNode()         {}
func (s *ForStatement) statementNode()   {}
func (s *ForStatement) Span() token.Span { return s.Spn }
