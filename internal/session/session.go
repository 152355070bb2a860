package session

import (
	"github.com/cppsem/cppsem/internal/symbols"
	"github.com/cppsem/cppsem/internal/types"
	"github.com/cppsem/cppsem/internal/xref"
)

// Session is the single mutable-global bundle of spec.md §9: the Type
// Universe and the root symbol (plus the cross-reference recorder, which
// is session-scoped the same way). One Session backs one analysis run;
// nothing in the core reaches for a package-level global instead.
type Session struct {
	Universe *types.Universe
	Table    *symbols.SymbolTable
	Recorder *xref.Recorder
	Config   Config
}

// NewSession creates a fresh, empty session.
func NewSession(cfg Config) *Session {
	return &Session{
		Universe: types.NewUniverse(),
		Table:    symbols.NewSymbolTable(),
		Recorder: xref.NewRecorder(),
		Config:   cfg,
	}
}

// ArgContext is the Template Argument Context of spec.md §3: a layered
// map `pattern-type → assigned-type`, with a parent link and an optional
// symbol-to-apply. Contexts chain up to parse-time enclosing templates;
// lookup walks the chain. Immutable once built — a derived context is a
// new node with a parent pointer, never a mutation (spec.md §9:
// "immutable contexts under reference counting; a derived context carries
// its own map plus a parent handle").
type ArgContext struct {
	parent   *ArgContext
	bindings map[string]types.Type
	applyTo  *symbols.Symbol
	id       string
}

// NewArgContext creates a root (parentless) argument context.
func NewArgContext() *ArgContext { return nil }

// Child derives a new context layer from c (which may be nil) binding the
// given pattern keys, optionally tagged with the template symbol it
// applies to.
func (c *ArgContext) Child(bindings map[string]types.Type, applyTo *symbols.Symbol, id string) *ArgContext {
	cp := make(map[string]types.Type, len(bindings))
	for k, v := range bindings {
		cp[k] = v
	}
	return &ArgContext{parent: c, bindings: cp, applyTo: applyTo, id: id}
}

// Lookup walks the chain from c outward looking for pattern.
func (c *ArgContext) Lookup(pattern string) (types.Type, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if t, ok := ctx.bindings[pattern]; ok {
			return t, true
		}
	}
	return nil, false
}

// ApplySymbol returns the template symbol this context layer was derived
// for, or nil for a layer with no symbol attached (e.g. a plain
// substitution map used mid-deduction).
func (c *ArgContext) ApplySymbol() *symbols.Symbol {
	if c == nil {
		return nil
	}
	return c.applyTo
}

// ID returns the id string this context was built with, for
// evaluation-cache keys (spec.md §5: cache population is keyed by
// "(symbol, parent-decl-type, argument-context identity)"). Child stores
// the id it is given unchanged and does not make it unique: a context
// built with its parent's ID() shares that id, and a nil context's id is
// "". The id is never recomputed from the bindings.
func (c *ArgContext) ID() string {
	if c == nil {
		return ""
	}
	return c.id
}

// ParsingArguments is the per-evaluation-path context of spec.md §5: a
// value threaded through every C3–C8 call, passed by value with
// shared-by-reference subfields, never mutated in place — functions that
// change context return a modified copy (the With* methods below).
type ParsingArguments struct {
	Session  *Session
	Scope    *symbols.Symbol // current lookup scope
	FuncBody *symbols.Symbol // enclosing function symbol, or nil
	ArgCtx   *ArgContext     // current template argument context, or nil
	Config   Config          // may override Session.Config per evaluation path
}

// NewParsingArguments starts a fresh evaluation path at the session's
// global scope.
func NewParsingArguments(sess *Session) ParsingArguments {
	return ParsingArguments{
		Session: sess,
		Scope:   sess.Table.Root,
		Config:  sess.Config,
	}
}

// WithScope returns a copy of pa with Scope replaced.
func (pa ParsingArguments) WithScope(scope *symbols.Symbol) ParsingArguments {
	pa.Scope = scope
	return pa
}

// WithFuncBody returns a copy of pa with FuncBody replaced.
func (pa ParsingArguments) WithFuncBody(fn *symbols.Symbol) ParsingArguments {
	pa.FuncBody = fn
	return pa
}

// WithArgContext returns a copy of pa with ArgCtx replaced.
func (pa ParsingArguments) WithArgContext(ctx *ArgContext) ParsingArguments {
	pa.ArgCtx = ctx
	return pa
}

// WithExpectTemplate returns a copy of pa whose Config has ExpectTemplate
// set, suppressing DeclInstant lifting for the evaluation it guards
// (spec.md §6).
func (pa ParsingArguments) WithExpectTemplate(v bool) ParsingArguments {
	pa.Config = pa.Config.WithExpectTemplate(v)
	return pa
}
