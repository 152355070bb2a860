// Package xref implements the Cross-Reference Recorder (C9, spec.md §4.9):
// for each named token, the set of symbols that define/resolve/mis-resolve
// it, plus the reverse index. New relative to the teacher — funxy's LSP
// mode (cmd/lsp/handler_definition.go) resolves a symbol at a position
// on demand by re-walking the AST, rather than recording a queryable
// index as evaluation proceeds. Grounded on that handler's shape (a
// position maps to a defining symbol) generalized into a persistent,
// idempotent three-map recorder that C5/C4 call into as they evaluate,
// so an external consumer (IDE navigation, doc renderer) can query it
// without re-running analysis.
package xref

import (
	"sort"

	"github.com/cppsem/cppsem/internal/symbols"
	"github.com/cppsem/cppsem/internal/token"
)

// Kind distinguishes the three moments the evaluator calls into the
// recorder (spec.md §4.9).
type Kind int

const (
	// Resolved: an identifier resolved to one or more symbols in the
	// normal sense.
	Resolved Kind = iota
	// OverloadedResolution: overload resolution picked a subset (always a
	// subset of a prior Resolved call on the same token).
	OverloadedResolution
	// NeedValueButType: the expression position required a value but a
	// type name was found (recoverable diagnostic).
	NeedValueButType
)

func (k Kind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case OverloadedResolution:
		return "overloaded-resolution"
	case NeedValueButType:
		return "need-value-but-type"
	default:
		return "?kind"
	}
}

// Recorder is the session-scoped cross-reference index. Not safe for
// concurrent use — the core is single-threaded (spec.md §5).
type Recorder struct {
	bySpan    [3]map[token.Span]*entry
	bySymbol  [3]map[*symbols.Symbol][]token.Span
}

type entry struct {
	symbols []*symbols.Symbol
	seen    map[*symbols.Symbol]bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	r := &Recorder{}
	for i := range r.bySpan {
		r.bySpan[i] = map[token.Span]*entry{}
		r.bySymbol[i] = map[*symbols.Symbol][]token.Span{}
	}
	return r
}

// Record adds syms to the (kind, span) entry. Recording the same
// (span, symbol) pair twice is a no-op (spec.md §8 invariant 11:
// idempotence), and insertion order for new symbols is preserved.
func (r *Recorder) Record(kind Kind, span token.Span, syms ...*symbols.Symbol) {
	e, ok := r.bySpan[kind][span]
	if !ok {
		e = &entry{seen: map[*symbols.Symbol]bool{}}
		r.bySpan[kind][span] = e
	}
	for _, s := range syms {
		if s == nil || e.seen[s] {
			continue
		}
		e.seen[s] = true
		e.symbols = append(e.symbols, s)
		r.bySymbol[kind][s] = append(r.bySymbol[kind][s], span)
	}
}

// Resolved is a convenience wrapper for Record(Resolved, ...).
func (r *Recorder) Resolved(span token.Span, syms ...*symbols.Symbol) {
	r.Record(Resolved, span, syms...)
}

// OverloadedResolution is a convenience wrapper for
// Record(OverloadedResolution, ...); spec.md §4.9 requires the recorded
// subset to already appear in a prior Resolved call on the same span —
// callers are responsible for that ordering, this type does not enforce it.
func (r *Recorder) OverloadedResolution(span token.Span, syms ...*symbols.Symbol) {
	r.Record(OverloadedResolution, span, syms...)
}

// NeedValueButType is a convenience wrapper for Record(NeedValueButType, ...).
func (r *Recorder) NeedValueButType(span token.Span, syms ...*symbols.Symbol) {
	r.Record(NeedValueButType, span, syms...)
}

// SymbolsAt returns the symbols recorded for span under kind, in
// insertion order, or nil if none were recorded.
func (r *Recorder) SymbolsAt(kind Kind, span token.Span) []*symbols.Symbol {
	e, ok := r.bySpan[kind][span]
	if !ok {
		return nil
	}
	return e.symbols
}

// SpansOf returns every span recorded against sym under kind, in
// insertion order.
func (r *Recorder) SpansOf(kind Kind, sym *symbols.Symbol) []token.Span {
	return r.bySymbol[kind][sym]
}

// AllSpans returns every span with at least one recorded symbol under
// kind, sorted for deterministic iteration (by origin file, then line,
// then offset).
func (r *Recorder) AllSpans(kind Kind) []token.Span {
	spans := make([]token.Span, 0, len(r.bySpan[kind]))
	for s := range r.bySpan[kind] {
		spans = append(spans, s)
	}
	sort.Slice(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.Origin.File != b.Origin.File {
			return a.Origin.File < b.Origin.File
		}
		if a.Origin.Line != b.Origin.Line {
			return a.Origin.Line < b.Origin.Line
		}
		return a.Offset < b.Offset
	})
	return spans
}
