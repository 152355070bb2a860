// Package diag defines the typed failure kinds of spec.md §7. Each kind is
// a small struct implementing error, grounded on the teacher's
// internal/typesystem/error.go SymbolNotFoundError pattern: one struct per
// failure kind, a NewXxx constructor, a value-receiver Error() string.
//
// Propagation policy (spec.md §7): TypeCheckerFailure unwinds the current
// template candidate; IllegalExpression unwinds the current expression and
// yields an empty result. FinishEvaluatingReturnType is the one kind given
// a narrow panic/recover boundary (see Recover below), because it must
// cross many frames that have no error return to thread through; every
// other kind, UnexpectedSymbolCategory included, is a plain returned error.
package diag

import "fmt"

// IllegalExpression — expression form is wrong in context; the caller
// should treat the expression's type set as empty and continue.
type IllegalExpression struct {
	Reason string
}

func (e *IllegalExpression) Error() string { return "illegal expression: " + e.Reason }

func NewIllegalExpression(reason string) *IllegalExpression {
	return &IllegalExpression{Reason: reason}
}

// TypeCheckerFailure — an unrecoverable inconsistency within the candidate
// currently being evaluated (mismatched deduction, invalid this-adjust,
// nested variadic pack). The overload resolver and template engine catch
// this and drop the offending candidate; it is not reported further.
type TypeCheckerFailure struct {
	Reason string
}

func (e *TypeCheckerFailure) Error() string { return "type checker failure: " + e.Reason }

func NewTypeCheckerFailure(reason string) *TypeCheckerFailure {
	return &TypeCheckerFailure{Reason: reason}
}

// UnexpectedSymbolCategory — internal invariant violation: a symbol was
// used in a role it does not support. This is a programming bug, not a
// user diagnostic; it terminates analysis.
type UnexpectedSymbolCategory struct {
	Symbol string
	Wanted string
}

func (e *UnexpectedSymbolCategory) Error() string {
	return fmt.Sprintf("unexpected symbol category: %s is not a %s", e.Symbol, e.Wanted)
}

func NewUnexpectedSymbolCategory(symbol, wanted string) *UnexpectedSymbolCategory {
	return &UnexpectedSymbolCategory{Symbol: symbol, Wanted: wanted}
}

// NotConvertable — the built-in primitive conversion lattice has no
// conversion from one type to another.
type NotConvertable struct {
	From, To string
}

func (e *NotConvertable) Error() string {
	return fmt.Sprintf("no conversion from %s to %s", e.From, e.To)
}

func NewNotConvertable(from, to string) *NotConvertable {
	return &NotConvertable{From: from, To: to}
}

// finishEvaluatingReturnType is the benign early-exit signal used only
// while the declaration driver is evaluating a function's deduced return
// type (spec.md §5). It is raised and caught with Recover/Raise below; it
// never reaches a caller as an ordinary error value.
type finishEvaluatingReturnType struct{}

func (finishEvaluatingReturnType) Error() string { return "finish-evaluating-return-type" }

// RaiseFinishEvaluatingReturnType panics with the distinguished sentinel.
// Call this only from within a function whose caller wraps the relevant
// region with Recover.
func RaiseFinishEvaluatingReturnType() {
	panic(finishEvaluatingReturnType{})
}

// Recover runs fn, catching a FinishEvaluatingReturnType panic raised
// anywhere within it. It does not catch other panics — those are
// programming bugs and must propagate to the session boundary.
func Recover(fn func()) (finished bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(finishEvaluatingReturnType); ok {
				finished = true
				return
			}
			panic(r)
		}
	}()
	fn()
	return false
}

// IsBenign reports whether err is one of the two kinds that unwind a
// single candidate/expression rather than the whole analysis.
func IsBenign(err error) bool {
	switch err.(type) {
	case *IllegalExpression, *TypeCheckerFailure:
		return true
	default:
		return false
	}
}
