package types

import (
	"sort"
	"strconv"
	"strings"
)

// Universe owns every type node created during one analysis session
// (spec.md §5: "the Type Universe is the only mutable global; it is
// owned by a single analysis session"). It is not safe for concurrent
// use — the core is single-threaded (spec.md §5).
type Universe struct {
	table map[string]Type

	zero    Type
	nullptr Type
	any     Type
	intptr  Type
	void    Type
}

// NewUniverse creates an empty, session-scoped type universe.
func NewUniverse() *Universe {
	u := &Universe{table: make(map[string]Type, 256)}
	u.zero = u.intern("@zero", func() Type { return zeroType{} })
	u.nullptr = u.intern("@nullptr", func() Type { return nullptrType{} })
	u.any = u.intern("@any", func() Type { return anyType{} })
	u.intptr = u.intern("@intptr", func() Type { return intPtrType{} })
	u.void = u.Primitive(Void, 0)
	return u
}

func (u *Universe) intern(key string, build func() Type) Type {
	if existing, ok := u.table[key]; ok {
		return existing
	}
	t := build()
	u.table[key] = t
	return t
}

// Primitive interns a primitive type of the given kind and width.
func (u *Universe) Primitive(kind PrimKind, width int) Type {
	key := "prim:" + kind.String() + ":" + strconv.Itoa(width)
	return u.intern(key, func() Type { return &PrimitiveType{Kind: kind, Width: width} })
}

func (u *Universe) Void() Type    { return u.void }
func (u *Universe) Zero() Type    { return u.zero }
func (u *Universe) Nullptr() Type { return u.nullptr }
func (u *Universe) Any() Type     { return u.any }
func (u *Universe) IntPtr() Type  { return u.intptr }

// LRef constructs an lvalue reference, applying reference-collapsing
// (spec.md §4.4: lref wins over rref) and the invariant that Ref never
// applies to Ref (spec.md §3(b)).
func (u *Universe) LRef(t Type) Type { return u.ref(LValueRef, t) }

// RRef constructs an rvalue reference, same collapsing rules.
func (u *Universe) RRef(t Type) Type { return u.ref(RValueRef, t) }

func (u *Universe) ref(kind RefKind, t Type) Type {
	if rt, ok := t.(*RefType); ok {
		// reference collapsing: lvalue-ref wins unless both are rvalue-refs
		if rt.Kind == LValueRef || kind == LValueRef {
			kind = LValueRef
		} else {
			kind = RValueRef
		}
		t = rt.Elem
	}
	key := "ref:" + kind.String() + ":" + t.String()
	return u.intern(key, func() Type { return &RefType{Kind: kind, Elem: t} })
}

// Ptr constructs a pointer type.
func (u *Universe) Ptr(t Type) Type {
	key := "ptr:" + t.String()
	return u.intern(key, func() Type { return &PtrType{Elem: t} })
}

// Array constructs an array of n elements of t. A nested array collapses
// into a single node with an accumulated rank (spec.md §3(b):
// array(array(T,m),1) == array(T,m+1)), matching C's row-major decay.
func (u *Universe) Array(t Type, n int) Type {
	if n < 1 {
		n = 1
	}
	if at, ok := t.(*ArrayType); ok {
		t = at.Elem
		n += at.Rank
	}
	key := "arr:" + strconv.Itoa(n) + ":" + t.String()
	return u.intern(key, func() Type { return &ArrayType{Elem: t, Rank: n} })
}

// CV applies const/volatile qualification, merging into the nearest CV
// node and lifting through a reference onto its referent (spec.md §3(b),
// §4.4: "const/volatile merge into the nearest CV node... a reference
// collapses" — a reference itself is never cv-qualified in C++, only the
// referent is, so cv(ref(T,r),c) canonicalizes to ref(cv(T,c),r)).
func (u *Universe) CV(t Type, flags CVFlag) Type {
	if flags == CVNone {
		return t
	}
	switch v := t.(type) {
	case *RefType:
		return u.ref(v.Kind, u.CV(v.Elem, flags))
	case *CVType:
		return u.cvRaw(v.Elem, v.Flags|flags)
	default:
		return u.cvRaw(t, flags)
	}
}

func (u *Universe) cvRaw(t Type, flags CVFlag) Type {
	if flags == CVNone {
		return t
	}
	key := "cv:" + strconv.Itoa(int(flags)) + ":" + t.String()
	return u.intern(key, func() Type { return &CVType{Elem: t, Flags: flags} })
}

// Member constructs a pointer-to-member-of-owner element type
// (spec.md §6 `memberOf` option lifts a type through this constructor).
func (u *Universe) Member(owner SymbolRef, t Type) Type {
	key := "member:" + owner.InternKey() + ":" + t.String()
	return u.intern(key, func() Type { return &MemberType{Owner: owner, Elem: t} })
}

// Function constructs a function type.
func (u *Universe) Function(ret Type, params []Type, flags FunctionFlags) Type {
	key := functionKey("fn", ret, params, flags)
	ps := append([]Type(nil), params...)
	return u.intern(key, func() Type { return &FunctionType{Ret: ret, Params: ps, Flags: flags} })
}

func functionKey(tag string, ret Type, params []Type, flags FunctionFlags) string {
	var b strings.Builder
	b.WriteString(tag)
	b.WriteByte(':')
	b.WriteString(ret.String())
	for _, p := range params {
		b.WriteByte(',')
		b.WriteString(p.String())
	}
	if flags.Variadic {
		b.WriteString(",...")
	}
	b.WriteByte(':')
	b.WriteString(flags.CallConv)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(int(flags.CV)))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(int(flags.Ref)))
	return b.String()
}

// GenericFunction constructs an uninstantiated (or partially-instantiated,
// if free is non-empty) template function type.
func (u *Universe) GenericFunction(ret Type, params []Type, free []SymbolRef) Type {
	sorted := append([]SymbolRef(nil), free...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].InternKey() < sorted[j].InternKey() })
	var b strings.Builder
	b.WriteString("genfn:")
	b.WriteString(ret.String())
	for _, p := range params {
		b.WriteByte(',')
		b.WriteString(p.String())
	}
	b.WriteByte(':')
	for _, f := range sorted {
		b.WriteByte(',')
		b.WriteString(f.InternKey())
	}
	ps := append([]Type(nil), params...)
	fs := append([]SymbolRef(nil), free...)
	return u.intern(b.String(), func() Type { return &GenericFunctionType{Ret: ret, Params: ps, Free: fs} })
}

// Decl constructs a nominal type for a class/struct/union/enum symbol.
func (u *Universe) Decl(sym SymbolRef) Type {
	key := "decl:" + sym.InternKey()
	return u.intern(key, func() Type { return &DeclType{Symbol: sym} })
}

// DeclInstant constructs a specific instantiation of a template symbol;
// identity is (symbol, ordered args, parent) per spec.md §3.
func (u *Universe) DeclInstant(sym SymbolRef, parent Type, argCtx interface{}, args []Type) Type {
	var b strings.Builder
	b.WriteString("instant:")
	b.WriteString(sym.InternKey())
	b.WriteByte(':')
	if parent != nil {
		b.WriteString(parent.String())
	}
	for _, a := range args {
		b.WriteByte(',')
		b.WriteString(a.String())
	}
	as := append([]Type(nil), args...)
	return u.intern(b.String(), func() Type {
		return &DeclInstantType{Symbol: sym, ParentDecl: parent, ArgContext: argCtx, Args: as}
	})
}

// GenericArg constructs a template-parameter placeholder bound to owner at
// the given argument index.
func (u *Universe) GenericArg(owner SymbolRef, index int, argSym SymbolRef) Type {
	key := "garg:" + owner.InternKey() + ":" + strconv.Itoa(index) + ":" + argSym.InternKey()
	return u.intern(key, func() Type { return &GenericArgType{Owner: owner, Index: index, Arg: argSym} })
}

// ValueArg interns a non-type template argument by its canonicalized
// source text (see ValueArgType).
func (u *Universe) ValueArg(repr string) Type {
	key := "valarg:" + repr
	return u.intern(key, func() Type { return &ValueArgType{Repr: repr} })
}

// Init constructs a brace-initializer bundle.
func (u *Universe) Init(items []InitItem) Type {
	var b strings.Builder
	b.WriteString("init:")
	for _, it := range items {
		b.WriteByte(',')
		b.WriteString(it.Type.String())
		b.WriteByte('#')
		b.WriteString(strconv.Itoa(int(it.Category)))
	}
	cp := append([]InitItem(nil), items...)
	return u.intern(b.String(), func() Type { return &InitType{Items: cp} })
}
