// Type Evaluator (C4, spec.md §4.4). Grounded on the teacher's
// internal/typesystem/kind_checker.go and replace.go: a big type-switch
// dispatch function threading accumulator state through recursive calls,
// generalized from HM kind-checking to the full syntactic-type →
// canonical-type mapping.
package sema

import (
	"strconv"
	"strings"

	"github.com/cppsem/cppsem/internal/ast"
	"github.com/cppsem/cppsem/internal/diag"
	"github.com/cppsem/cppsem/internal/session"
	"github.com/cppsem/cppsem/internal/symbols"
	"github.com/cppsem/cppsem/internal/types"
)

// EvalType maps a syntactic type node to its canonical types.Type
// (spec.md §4.4).
func EvalType(pa session.ParsingArguments, t ast.Type) (types.Type, error) {
	u := pa.Session.Universe
	switch v := t.(type) {
	case nil:
		return u.Any(), nil

	case *ast.IdType:
		return evalIDType(pa, v.Name)

	case *ast.ChildType:
		return evalChildType(pa, v)

	case *ast.CVType:
		inner, err := EvalType(pa, v.Inner)
		if err != nil {
			return nil, err
		}
		if types.IsUnknown(inner) {
			return inner, nil
		}
		var flags types.CVFlag
		if v.Const {
			flags |= types.Const
		}
		if v.Volatile {
			flags |= types.Volatile
		}
		return u.CV(inner, flags), nil

	case *ast.PtrType:
		inner, err := EvalType(pa, v.Inner)
		if err != nil {
			return nil, err
		}
		return u.Ptr(inner), nil

	case *ast.RefType:
		inner, err := EvalType(pa, v.Inner)
		if err != nil {
			return nil, err
		}
		if types.IsUnknown(inner) {
			return inner, nil
		}
		if types.IsVoid(inner) {
			return nil, diag.NewTypeCheckerFailure("reference to void")
		}
		if v.Rval {
			return u.RRef(inner), nil
		}
		return u.LRef(inner), nil

	case *ast.ArrayType:
		inner, err := EvalType(pa, v.Inner)
		if err != nil {
			return nil, err
		}
		if types.IsUnknown(inner) {
			return inner, nil
		}
		n, ok := constantArraySize(v.Size)
		if !ok && v.Size != nil {
			// a dependent/unparsable bound: the array type as a whole is
			// not yet expressible (spec.md §4.4 failure modes).
			return u.Any(), nil
		}
		if n < 1 {
			n = 1
		}
		return u.Array(inner, n), nil

	case *ast.FunctionType:
		return evalFunctionType(pa, v)

	case *ast.MemberPtrType:
		return evalMemberPtrType(pa, v)

	case *ast.DecltypeType:
		return evalDecltype(pa, v)

	case *ast.AutoType:
		return u.Any(), nil

	default:
		return nil, diag.NewUnexpectedSymbolCategory("ast.Type", "a known type-node variant")
	}
}

func constantArraySize(e ast.Expression) (int, bool) {
	lit, ok := e.(*ast.LiteralExpr)
	if !ok || lit.Kind != ast.IntLit {
		return 0, false
	}
	raw := strings.TrimRight(lit.Raw, "uUlL")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// evalIDType resolves name via C3 and yields Decl(sym) or
// DeclInstant(sym, ...) depending on whether the name syntax carries
// template arguments (spec.md §4.4).
func evalIDType(pa session.ParsingArguments, name *ast.NameSyntax) (types.Type, error) {
	u := pa.Session.Universe
	sym, err := resolveNameSyntax(pa, name)
	if err != nil {
		return nil, err
	}
	if sym == nil {
		return u.Any(), nil
	}

	// A reference to a template parameter symbol yields the placeholder
	// type the Declaration Driver bound to it at creation time.
	if sym.Kind == symbols.GenericTypeArgument || sym.Kind == symbols.GenericValueArgument {
		if sym.Type != nil {
			return sym.Type, nil
		}
		return u.Any(), nil
	}

	if sym.Kind == symbols.TypeAlias {
		if sym.UnderlyingType != nil {
			return sym.UnderlyingType, nil
		}
		return sym.Type, nil
	}

	if !name.IsTemplateID() {
		return u.Decl(sym), nil
	}
	if pa.Config.ExpectTemplate {
		// keep the template-id's head generic rather than lifting to an
		// instantiation (spec.md §6 ExpectTemplate preset).
		return u.Decl(sym), nil
	}
	args, err := evalTemplateArgs(pa, name.Args)
	if err != nil {
		return nil, err
	}
	return u.DeclInstant(sym, nil, pa.ArgCtx, args), nil
}

func evalTemplateArgs(pa session.ParsingArguments, targs []ast.TemplateArg) ([]types.Type, error) {
	u := pa.Session.Universe
	out := make([]types.Type, 0, len(targs))
	for _, a := range targs {
		if a.Type != nil {
			t, err := EvalType(pa, a.Type)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
			continue
		}
		if a.Expr != nil {
			out = append(out, u.ValueArg(exprRepr(a.Expr)))
			continue
		}
		out = append(out, u.Any())
	}
	return out, nil
}

// exprRepr renders a value template argument's source form for
// ValueArgType identity (spec.md §1 Non-goals: no constant folding beyond
// what overload resolution requires).
func exprRepr(e ast.Expression) string {
	if lit, ok := e.(*ast.LiteralExpr); ok {
		return lit.Raw
	}
	if id, ok := e.(*ast.IdExpr); ok && id.Name != nil && id.Name.Name != nil {
		return id.Name.Name.Text()
	}
	return "<expr>"
}

// evalChildType evaluates `Qualifier::Name`, e.g. `typename A<X>::B`:
// resolve A<X> first, then perform child lookup; an unresolved/dependent
// qualifier produces Any rather than an error (spec.md §4.4).
func evalChildType(pa session.ParsingArguments, v *ast.ChildType) (types.Type, error) {
	u := pa.Session.Universe
	qual, err := EvalType(pa, v.Qualifier)
	if err != nil {
		return nil, err
	}
	if types.IsUnknown(qual) {
		return u.Any(), nil
	}
	entity, _, _ := types.EntityOf(qual)
	var declSym *symbols.Symbol
	switch d := entity.(type) {
	case *types.DeclType:
		declSym, _ = d.Symbol.(*symbols.Symbol)
	case *types.DeclInstantType:
		declSym, _ = d.Symbol.(*symbols.Symbol)
	default:
		return u.Any(), nil
	}
	if declSym == nil {
		return u.Any(), nil
	}
	children := symbols.TryChildren(declSym, v.Name.Text())
	if len(children) == 0 {
		return u.Any(), nil
	}
	sym := children[0]
	if v.Args == nil {
		return u.Decl(sym), nil
	}
	args, err := evalTemplateArgs(pa, v.Args)
	if err != nil {
		return nil, err
	}
	return u.DeclInstant(sym, qual, pa.ArgCtx, args), nil
}

func evalFunctionType(pa session.ParsingArguments, v *ast.FunctionType) (types.Type, error) {
	u := pa.Session.Universe
	ret, err := EvalType(pa, v.Ret)
	if err != nil {
		return nil, err
	}
	params := make([]types.Type, 0, len(v.Params))
	for _, p := range v.Params {
		pt, err := EvalType(pa, p)
		if err != nil {
			return nil, err
		}
		params = append(params, pt)
	}
	flags := types.FunctionFlags{
		CallConv: v.CallConv,
		Variadic: v.Variadic,
	}
	if flags.CallConv == "" {
		flags.CallConv = pa.Config.CC
	}
	if v.Const {
		flags.CV |= types.Const
	}
	if v.RvalQual {
		flags.Ref = types.RValueRef
	} else if v.LvalQual {
		flags.Ref = types.LValueRef
	}
	return u.Function(ret, params, flags), nil
}

func evalMemberPtrType(pa session.ParsingArguments, v *ast.MemberPtrType) (types.Type, error) {
	u := pa.Session.Universe
	inner, err := EvalType(pa, v.Inner)
	if err != nil {
		return nil, err
	}
	ownerSym, err := resolveNameSyntax(pa, v.Owner)
	if err != nil {
		return nil, err
	}
	if ownerSym == nil {
		return u.Any(), nil
	}
	return u.Member(ownerSym, inner), nil
}

// evalDecltype evaluates decltype(expr): the expression must yield a
// single unambiguous candidate, whose value category becomes an outer
// ref on its (ref-stripped) type (spec.md §4.4).
func evalDecltype(pa session.ParsingArguments, v *ast.DecltypeType) (types.Type, error) {
	u := pa.Session.Universe
	set, err := EvalExpr(pa, v.Expr)
	if err != nil {
		return nil, err
	}
	if len(set) != 1 {
		return nil, diag.NewTypeCheckerFailure("decltype operand must be unambiguous")
	}
	entity, cv, _ := types.EntityOf(set[0].Type)
	base := u.CV(entity, cv)
	switch set[0].Category {
	case types.LValue:
		return u.LRef(base), nil
	case types.XValue:
		return u.RRef(base), nil
	default:
		return base, nil
	}
}

// resolveNameSyntax resolves a (possibly qualified, possibly template)
// name syntax to a single symbol via C3, walking qualifier segments with
// ChildSymbolFromOutside and the final segment with AccessibleInScope
// (unqualified) or ChildSymbolFromOutside (qualified).
func resolveNameSyntax(pa session.ParsingArguments, name *ast.NameSyntax) (*symbols.Symbol, error) {
	if name == nil {
		return nil, nil
	}
	scope := pa.Scope
	if name.Global {
		scope = pa.Session.Table.Root
	}
	for _, q := range name.Qualifiers {
		cands := ChildSymbolFromOutside(scope, q.Name.Text())
		if len(cands) == 0 {
			return nil, diag.NewIllegalExpression("qualifier not found: " + q.Name.Text())
		}
		scope = cands[0]
	}

	finalName := name.Name.Text()
	var cands []*symbols.Symbol
	if name.Global || len(name.Qualifiers) > 0 {
		cands = ChildSymbolFromOutside(scope, finalName)
	} else {
		cands = AccessibleInScope(pa.WithScope(scope), finalName)
	}
	if len(cands) == 0 {
		return nil, nil
	}
	if pa.Session.Recorder != nil {
		pa.Session.Recorder.Resolved(name.Spn, cands...)
	}
	return cands[0], nil
}
