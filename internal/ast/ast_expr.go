package ast

import "github.com/cppsem/cppsem/internal/token"

// LiteralKind classifies a literal expression (spec.md §4.5 Literal).
type LiteralKind int

const (
	IntLit LiteralKind = iota
	FloatLit
	StringLit
	CharLit
	BoolLit
	NullptrLit
)

// LiteralExpr is a literal token with its raw lexeme and suffix, left for
// the Expression Evaluator to classify (spec.md §4.5's suffix rules).
type LiteralExpr struct {
	Spn    token.Span
	Kind   LiteralKind
	Raw    string // lexeme, including any suffix (e.g. "123ull", "3.0f")
	Prefix string // string/char literal prefix (L, u, U, u8) or ""
	Bool   bool   // valid when Kind == BoolLit
}

func (e *LiteralExpr) astNode()         {}
func (e *LiteralExpr) expressionNode()  {}
func (e *LiteralExpr) Span() token.Span { return e.Spn }

// ThisExpr is the `this` expression.
type ThisExpr struct{ Spn token.Span }

func (e *ThisExpr) astNode()         {}
func (e *ThisExpr) expressionNode()  {}
func (e *ThisExpr) Span() token.Span { return e.Spn }

// ParenExpr is a parenthesized expression; it preserves value category
// except an LValue lifts to an LRef (spec.md §4.5).
type ParenExpr struct {
	Spn   token.Span
	Inner Expression
}

func (e *ParenExpr) astNode()         {}
func (e *ParenExpr) expressionNode()  {}
func (e *ParenExpr) Span() token.Span { return e.Spn }

// CastStyle distinguishes the C++ cast forms.
type CastStyle int

const (
	CStyleCast CastStyle = iota
	StaticCast
	ReinterpretCast
	ConstCast
	DynamicCast
	FunctionalCast
)

// CastExpr is `(T)e`, `static_cast<T>(e)`, `T(e)`, etc.
type CastExpr struct {
	Spn     token.Span
	Style   CastStyle
	Target  Type
	Operand Expression
}

func (e *CastExpr) astNode()         {}
func (e *CastExpr) expressionNode()  {}
func (e *CastExpr) Span() token.Span { return e.Spn }

// TypeidExpr is `typeid(e)` or `typeid(T)`.
type TypeidExpr struct {
	Spn     token.Span
	Operand Expression
	OfType  Type // set instead of Operand for typeid(T)
}

func (e *TypeidExpr) astNode()         {}
func (e *TypeidExpr) expressionNode()  {}
func (e *TypeidExpr) Span() token.Span { return e.Spn }

// IndexExpr is `a[i]`.
type IndexExpr struct {
	Spn   token.Span
	Base  Expression
	Index Expression
}

func (e *IndexExpr) astNode()         {}
func (e *IndexExpr) expressionNode()  {}
func (e *IndexExpr) Span() token.Span { return e.Spn }

// UnaryExpr is a prefix or postfix unary operator application
// (spec.md §4.5.2: postfix ++/-- on a user type takes an extra int
// argument to disambiguate from prefix — Postfix records that).
type UnaryExpr struct {
	Spn     token.Span
	Op      string
	Operand Expression
	Postfix bool
}

func (e *UnaryExpr) astNode()         {}
func (e *UnaryExpr) expressionNode()  {}
func (e *UnaryExpr) Span() token.Span { return e.Spn }

// BinaryExpr is a binary operator application, including assignment.
type BinaryExpr struct {
	Spn token.Span
	Op  string
	LHS Expression
	RHS Expression
}

func (e *BinaryExpr) astNode()         {}
func (e *BinaryExpr) expressionNode()  {}
func (e *BinaryExpr) Span() token.Span { return e.Spn }

// ConditionalExpr is `c ? a : b` (spec.md §4.5.3).
type ConditionalExpr struct {
	Spn  token.Span
	Cond Expression
	Then Expression
	Else Expression
}

func (e *ConditionalExpr) astNode()         {}
func (e *ConditionalExpr) expressionNode()  {}
func (e *ConditionalExpr) Span() token.Span { return e.Spn }

// MemberAccessExpr is `a.b` or `a->b` (spec.md §4.5.1).
type MemberAccessExpr struct {
	Spn   token.Span
	Base  Expression
	Name  *CppName
	Arrow bool
	Args  []TemplateArg // non-nil iff `a.b<T>` explicit template-id member
}

func (e *MemberAccessExpr) astNode()         {}
func (e *MemberAccessExpr) expressionNode()  {}
func (e *MemberAccessExpr) Span() token.Span { return e.Spn }

// CallExpr is a function-call expression `callee(args...)`.
type CallExpr struct {
	Spn    token.Span
	Callee Expression
	Args   []Expression
}

func (e *CallExpr) astNode()         {}
func (e *CallExpr) expressionNode()  {}
func (e *CallExpr) Span() token.Span { return e.Spn }

// ThrowExpr is `throw e;` (spec.md §4.5: evaluated for side effects,
// yields void) or a bare re-throw `throw;` (Operand == nil).
type ThrowExpr struct {
	Spn     token.Span
	Operand Expression
}

func (e *ThrowExpr) astNode()         {}
func (e *ThrowExpr) expressionNode()  {}
func (e *ThrowExpr) Span() token.Span { return e.Spn }

// IdExpr is an id-expression referencing a (possibly qualified, possibly
// template) name.
type IdExpr struct {
	Spn  token.Span
	Name *NameSyntax
}

func (e *IdExpr) astNode()         {}
func (e *IdExpr) expressionNode()  {}
func (e *IdExpr) Span() token.Span { return e.Spn }

// InitListExpr is a brace-init-list literal `{a, b, c}`, evaluated to an
// Init-bundle type (spec.md §3).
type InitListExpr struct {
	Spn   token.Span
	Items []Expression
}

func (e *InitListExpr) astNode()         {}
func (e *InitListExpr) expressionNode()  {}
func (e *InitListExpr) Span() token.Span { return e.Spn }
