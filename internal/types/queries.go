package types

// EntityOf decomposes t into its (entity, cv, ref) triple (spec.md §3(c),
// invariant 4 in §8: entity_of(cv(ref(T,r),c)) == (entity_of(T).0, c, r)).
// Because CV construction always lifts through a reference (see
// Universe.CV), the canonical shape is always Ref(CV(entity)) or
// CV(entity) or bare entity — never CV(Ref(...)).
func EntityOf(t Type) (entity Type, cv CVFlag, ref RefKind) {
	ref = NoRef
	cv = CVNone
	inner := t
	if rt, ok := t.(*RefType); ok {
		ref = rt.Kind
		inner = rt.Elem
	}
	if cvt, ok := inner.(*CVType); ok {
		cv = cvt.Flags
		entity = cvt.Elem
		return
	}
	entity = inner
	return
}

// ElementOf returns the pointee/array-element/referent/member-element type
// for Ptr/Array/LRef/RRef/Member nodes, and false for anything else.
func ElementOf(t Type) (Type, bool) {
	switch v := t.(type) {
	case *PtrType:
		return v.Elem, true
	case *ArrayType:
		return v.Elem, true
	case *RefType:
		return v.Elem, true
	case *MemberType:
		return v.Elem, true
	default:
		return nil, false
	}
}

// ParamCount returns the parameter count of a Function/GenericFunction
// type, or -1 if t is not callable shape.
func ParamCount(t Type) int {
	switch v := t.(type) {
	case *FunctionType:
		return len(v.Params)
	case *GenericFunctionType:
		return len(v.Params)
	default:
		return -1
	}
}

// Param returns the i'th parameter type, or nil, false if out of range or
// t is not a function-shaped type.
func Param(t Type, i int) (Type, bool) {
	var params []Type
	switch v := t.(type) {
	case *FunctionType:
		params = v.Params
	case *GenericFunctionType:
		params = v.Params
	default:
		return nil, false
	}
	if i < 0 || i >= len(params) {
		return nil, false
	}
	return params[i], true
}

// IsUnknown reports whether t is the distinguished Any ("unknown") type.
func IsUnknown(t Type) bool {
	_, ok := t.(anyType)
	return ok
}

// IsVoid reports whether t is the primitive void entity (ignoring cv).
func IsVoid(t Type) bool {
	entity, _, _ := EntityOf(t)
	p, ok := entity.(*PrimitiveType)
	return ok && p.Kind == Void
}

// StripRank decomposes an array type into (element, rank); for a
// non-array type it returns (t, 0).
func StripRank(t Type) (Type, int) {
	if at, ok := t.(*ArrayType); ok {
		return at.Elem, at.Rank
	}
	return t, 0
}

// DecayArray implements array-to-pointer decay used by the built-in
// conversion lattice (spec.md §4.6 StandardConversion) and by function
// parameter adjustment: an N-rank array of T decays to a pointer to an
// (N-1)-rank array of T (or to T* when N==1).
func DecayArray(u *Universe, t Type) (Type, bool) {
	at, ok := t.(*ArrayType)
	if !ok {
		return nil, false
	}
	if at.Rank <= 1 {
		return u.Ptr(at.Elem), true
	}
	return u.Ptr(u.Array(at.Elem, at.Rank-1)), true
}
