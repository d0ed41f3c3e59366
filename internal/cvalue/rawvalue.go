package cvalue

import (
	"fmt"

	"github.com/constellation-engine/constellation/internal/ctype"
)

// RawKind tags a RawValue's shape. RawValue erases COptional/CList typing
// (an RIntList doesn't remember "list of what CType", and an RSome/RNone
// don't carry the inner CType) — callers that need the original CType back
// must keep it alongside the RawValue, per §3.
type RawKind int

const (
	RInt RawKind = iota
	RFloat
	RString
	RBool
	RIntList
	RFloatList
	RStringList
	RBoolList
	RList
	RSome
	RNone
	RProduct
	RUnion
)

// RawValue is the unboxed mirror of CValue used for efficient interop.
type RawValue struct {
	Kind     RawKind
	Int      int64
	Float    float64
	Str      string
	Bool     bool
	IntList  []int64
	FloatL   []float64
	StrList  []string
	BoolList []bool
	List     []RawValue
	Some     *RawValue
	Product  map[string]RawValue
	Tag      string
	Union    *RawValue
}

// ToRaw projects a CValue to its unboxed RawValue mirror. Lists of a uniform
// scalar element type are projected to the matching typed slice kind
// (RIntList, RFloatList, ...); heterogeneous or nested lists use the generic
// RList.
func ToRaw(v CValue) RawValue {
	switch v.Kind() {
	case ctype.KInt:
		return RawValue{Kind: RInt, Int: v.AsInt()}
	case ctype.KFloat:
		return RawValue{Kind: RFloat, Float: v.AsFloat()}
	case ctype.KString:
		return RawValue{Kind: RString, Str: v.AsString()}
	case ctype.KBoolean:
		return RawValue{Kind: RBool, Bool: v.AsBool()}
	case ctype.KList:
		return toRawList(v)
	case ctype.KOptional:
		if !v.IsSome() {
			return RawValue{Kind: RNone}
		}
		inner := ToRaw(v.SomeValue())
		return RawValue{Kind: RSome, Some: &inner}
	case ctype.KProduct:
		fields := v.Fields()
		out := make(map[string]RawValue, len(fields))
		for k, fv := range fields {
			out[k] = ToRaw(fv)
		}
		return RawValue{Kind: RProduct, Product: out}
	case ctype.KUnion:
		inner := ToRaw(v.UnionInner())
		return RawValue{Kind: RUnion, Tag: v.Tag(), Union: &inner}
	default:
		panic(fmt.Sprintf("cvalue: unhandled kind %s in ToRaw", v.Kind()))
	}
}

func toRawList(v CValue) RawValue {
	items := v.Items()
	elemType := v.Type().Elem()

	switch elemType.Kind() {
	case ctype.KInt:
		out := make([]int64, len(items))
		for i, it := range items {
			out[i] = it.AsInt()
		}
		return RawValue{Kind: RIntList, IntList: out}
	case ctype.KFloat:
		out := make([]float64, len(items))
		for i, it := range items {
			out[i] = it.AsFloat()
		}
		return RawValue{Kind: RFloatList, FloatL: out}
	case ctype.KString:
		out := make([]string, len(items))
		for i, it := range items {
			out[i] = it.AsString()
		}
		return RawValue{Kind: RStringList, StrList: out}
	case ctype.KBoolean:
		out := make([]bool, len(items))
		for i, it := range items {
			out[i] = it.AsBool()
		}
		return RawValue{Kind: RBoolList, BoolList: out}
	default:
		out := make([]RawValue, len(items))
		for i, it := range items {
			out[i] = ToRaw(it)
		}
		return RawValue{Kind: RList, List: out}
	}
}

// FromRaw reconstructs a CValue from a RawValue given the CType it must
// conform to (required since RawValue erases optional/list element typing).
func FromRaw(raw RawValue, typ ctype.CType) CValue {
	switch typ.Kind() {
	case ctype.KInt:
		return Int(raw.Int)
	case ctype.KFloat:
		return Float(raw.Float)
	case ctype.KString:
		return String(raw.Str)
	case ctype.KBoolean:
		return Boolean(raw.Bool)
	case ctype.KList:
		return fromRawList(raw, typ)
	case ctype.KOptional:
		if raw.Kind == RNone || raw.Some == nil {
			return None(typ.Inner())
		}
		return Some(typ.Inner(), FromRaw(*raw.Some, typ.Inner()))
	case ctype.KProduct:
		fields := make(map[string]CValue, len(raw.Product))
		for name, fieldType := range typ.Fields() {
			if rv, ok := raw.Product[name]; ok {
				fields[name] = FromRaw(rv, fieldType)
			}
		}
		return Product(typ, fields)
	case ctype.KUnion:
		variantType, ok := typ.VariantType(raw.Tag)
		if !ok || raw.Union == nil {
			panic(fmt.Sprintf("cvalue: unknown union tag %q in FromRaw", raw.Tag))
		}
		return UnionValue(typ, raw.Tag, FromRaw(*raw.Union, variantType))
	default:
		panic(fmt.Sprintf("cvalue: unhandled CType kind %s in FromRaw", typ.Kind()))
	}
}

func fromRawList(raw RawValue, typ ctype.CType) CValue {
	elemType := typ.Elem()
	switch raw.Kind {
	case RIntList:
		items := make([]CValue, len(raw.IntList))
		for i, v := range raw.IntList {
			items[i] = Int(v)
		}
		return List(elemType, items)
	case RFloatList:
		items := make([]CValue, len(raw.FloatL))
		for i, v := range raw.FloatL {
			items[i] = Float(v)
		}
		return List(elemType, items)
	case RStringList:
		items := make([]CValue, len(raw.StrList))
		for i, v := range raw.StrList {
			items[i] = String(v)
		}
		return List(elemType, items)
	case RBoolList:
		items := make([]CValue, len(raw.BoolList))
		for i, v := range raw.BoolList {
			items[i] = Boolean(v)
		}
		return List(elemType, items)
	default:
		items := make([]CValue, len(raw.List))
		for i, rv := range raw.List {
			items[i] = FromRaw(rv, elemType)
		}
		return List(elemType, items)
	}
}
