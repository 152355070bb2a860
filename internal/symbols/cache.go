package symbols

import "github.com/cppsem/cppsem/internal/types"

// ClassMemberCache holds the lazily-computed, class-specific derived data
// named in spec.md §3: the base-class type list and the `this` type.
// Building it requires resolving base-class names, which is C3's job —
// this package only stores the result and arbitrates who builds it.
type ClassMemberCache struct {
	Bases   []types.Type // direct base class types, in declaration order
	ThisPtr types.Type   // the `this` pointer type for member functions
}

// ClassMemberCache returns the symbol's cached base/this-type data,
// building it via build on first use. build is expected to itself call
// back into the resolver to walk the class's AST base-clause; if build is
// already running for this symbol (a base-walk re-entered it, e.g. via a
// malformed self-inheriting class), ok is false and the caller should
// treat the cache as empty rather than recurse forever.
func (s *Symbol) ClassMemberCache(build func() *ClassMemberCache) (*ClassMemberCache, bool) {
	if s.classCache != nil {
		return s.classCache, true
	}
	if s.cacheBuilding {
		return nil, false
	}
	s.cacheBuilding = true
	defer func() { s.cacheBuilding = false }()
	s.classCache = build()
	return s.classCache, true
}

// ErrCycle is the error for an evaluation cycle: the same (symbol,
// parent-decl, arg-context) key entered again while it is still being
// evaluated further up the call stack. Nothing in this package returns
// it; BeginEvaluation reports re-entry through its cycling result.
var ErrCycle = &cycleError{}

type cycleError struct{}

func (*cycleError) Error() string { return "evaluation cycle detected" }

// BeginEvaluation records that (parentDecl, argCtxID) evaluation of s has
// started. It returns (cached, true, false) if a completed result already
// exists and (nil, false, true) if that evaluation is already in progress
// (re-entry); otherwise it marks the key in progress and returns
// (nil, false, false), and the caller calls FinishEvaluation when done.
func (s *Symbol) BeginEvaluation(parentDecl types.Type, argCtxID string) (result []types.Type, done bool, cycling bool) {
	if s.evalCache == nil {
		s.evalCache = map[evalKey]*evalEntry{}
	}
	key := keyString(parentDecl, argCtxID)
	entry, ok := s.evalCache[key]
	if !ok {
		s.evalCache[key] = &evalEntry{state: evalInProgress}
		return nil, false, false
	}
	switch entry.state {
	case evalInProgress:
		return nil, false, true
	case evalDone:
		return entry.result, true, false
	default:
		entry.state = evalInProgress
		return nil, false, false
	}
}

// FinishEvaluation stores the completed result for (parentDecl, argCtxID).
func (s *Symbol) FinishEvaluation(parentDecl types.Type, argCtxID string, result []types.Type, err error) {
	key := keyString(parentDecl, argCtxID)
	s.evalCache[key] = &evalEntry{state: evalDone, result: result, err: err}
}
