// Package cvalue implements CValue, the closed sum of inhabitants of a
// CType, plus RawValue, its unboxed mirror used for efficient interop with
// module bodies that want native Go values instead of the boxed
// representation.
package cvalue

import (
	"fmt"

	"github.com/constellation-engine/constellation/internal/ctype"
)

// CValue is a typed value. Each variant carries its CType witness so that
// Type() is O(1) — no need to walk the value to recover its shape.
type CValue struct {
	kind  ctype.Kind
	typ   ctype.CType
	i     int64
	f     float64
	s     string
	b     bool
	list  []CValue
	some  *CValue
	prod  map[string]CValue
	union *CValue
	tag   string
}

// Int, Float, String, Boolean construct scalar CValues.
func Int(v int64) CValue     { return CValue{kind: ctype.KInt, typ: ctype.Int(), i: v} }
func Float(v float64) CValue { return CValue{kind: ctype.KFloat, typ: ctype.Float(), f: v} }
func String(v string) CValue { return CValue{kind: ctype.KString, typ: ctype.String(), s: v} }
func Boolean(v bool) CValue  { return CValue{kind: ctype.KBoolean, typ: ctype.Boolean(), b: v} }

// List constructs a CList value. Every item must already have type elemType;
// callers (the converters, module bodies) are responsible for the invariant
// in §3 — List does not re-validate it to stay allocation-free on the hot
// path.
func List(elemType ctype.CType, items []CValue) CValue {
	cp := make([]CValue, len(items))
	copy(cp, items)
	return CValue{kind: ctype.KList, typ: ctype.List(elemType), list: cp}
}

// Some constructs a CSome(value, innerType).
func Some(inner ctype.CType, value CValue) CValue {
	v := value
	return CValue{kind: ctype.KOptional, typ: ctype.Optional(inner), some: &v}
}

// None constructs a CNone(innerType).
func None(inner ctype.CType) CValue {
	return CValue{kind: ctype.KOptional, typ: ctype.Optional(inner)}
}

// Product constructs a CProduct value against the given structure.
func Product(structure ctype.CType, fields map[string]CValue) CValue {
	cp := make(map[string]CValue, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return CValue{kind: ctype.KProduct, typ: structure, prod: cp}
}

// UnionValue constructs a CUnion value tagged with the given variant.
func UnionValue(structure ctype.CType, tag string, value CValue) CValue {
	v := value
	return CValue{kind: ctype.KUnion, typ: structure, union: &v, tag: tag}
}

// Type returns the value's CType witness.
func (v CValue) Type() ctype.CType { return v.typ }

// Kind returns the variant tag.
func (v CValue) Kind() ctype.Kind { return v.kind }

// AsInt, AsFloat, AsString, AsBool extract the scalar payload. Callers must
// check Kind() first; these panic on mismatch exactly like a failed
// exhaustive match would.
func (v CValue) AsInt() int64     { v.mustKind(ctype.KInt); return v.i }
func (v CValue) AsFloat() float64 { v.mustKind(ctype.KFloat); return v.f }
func (v CValue) AsString() string { v.mustKind(ctype.KString); return v.s }
func (v CValue) AsBool() bool     { v.mustKind(ctype.KBoolean); return v.b }

// Items returns a CList's elements.
func (v CValue) Items() []CValue {
	v.mustKind(ctype.KList)
	out := make([]CValue, len(v.list))
	copy(out, v.list)
	return out
}

// IsSome reports whether a COptional value is CSome (as opposed to CNone).
func (v CValue) IsSome() bool {
	v.mustKind(ctype.KOptional)
	return v.some != nil
}

// SomeValue returns the wrapped value of a CSome. Panics if the value is
// CNone.
func (v CValue) SomeValue() CValue {
	v.mustKind(ctype.KOptional)
	if v.some == nil {
		panic("cvalue: SomeValue called on CNone")
	}
	return *v.some
}

// Fields returns a CProduct's field values.
func (v CValue) Fields() map[string]CValue {
	v.mustKind(ctype.KProduct)
	out := make(map[string]CValue, len(v.prod))
	for k, val := range v.prod {
		out[k] = val
	}
	return out
}

// Field looks up a single CProduct field value.
func (v CValue) Field(name string) (CValue, bool) {
	v.mustKind(ctype.KProduct)
	val, ok := v.prod[name]
	return val, ok
}

// Tag returns a CUnion's selected variant tag.
func (v CValue) Tag() string {
	v.mustKind(ctype.KUnion)
	return v.tag
}

// UnionInner returns a CUnion's wrapped value.
func (v CValue) UnionInner() CValue {
	v.mustKind(ctype.KUnion)
	if v.union == nil {
		panic("cvalue: UnionInner called on empty union value")
	}
	return *v.union
}

func (v CValue) mustKind(k ctype.Kind) {
	if v.kind != k {
		panic(fmt.Sprintf("cvalue: expected kind %s, got %s", k, v.kind))
	}
}

// Equal reports structural value equality, including type witnesses.
func Equal(a, b CValue) bool {
	if !ctype.Equal(a.typ, b.typ) || a.kind != b.kind {
		return false
	}
	switch a.kind {
	case ctype.KInt:
		return a.i == b.i
	case ctype.KFloat:
		return a.f == b.f
	case ctype.KString:
		return a.s == b.s
	case ctype.KBoolean:
		return a.b == b.b
	case ctype.KList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case ctype.KOptional:
		if (a.some == nil) != (b.some == nil) {
			return false
		}
		if a.some == nil {
			return true
		}
		return Equal(*a.some, *b.some)
	case ctype.KProduct:
		if len(a.prod) != len(b.prod) {
			return false
		}
		for k, v := range a.prod {
			ov, ok := b.prod[k]
			if !ok || !Equal(v, ov) {
				return false
			}
		}
		return true
	case ctype.KUnion:
		if a.tag != b.tag {
			return false
		}
		if (a.union == nil) != (b.union == nil) {
			return false
		}
		if a.union == nil {
			return true
		}
		return Equal(*a.union, *b.union)
	default:
		return false
	}
}
