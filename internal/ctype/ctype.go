// Package ctype implements the CType closed sum: the algebraic type system
// values in the engine are checked against. Two CTypes are equal iff they
// are structurally equal; field order in products and unions is immaterial.
package ctype

import "sort"

// Kind tags the variant of a CType the way Module.Status and PipelineStatus
// are tagged elsewhere in the engine: an explicit, exhaustively-matched enum
// rather than relying on dynamic type assertions alone.
type Kind int

const (
	KInt Kind = iota
	KFloat
	KString
	KBoolean
	KList
	KOptional
	KProduct
	KUnion
)

func (k Kind) String() string {
	switch k {
	case KInt:
		return "CInt"
	case KFloat:
		return "CFloat"
	case KString:
		return "CString"
	case KBoolean:
		return "CBoolean"
	case KList:
		return "CList"
	case KOptional:
		return "COptional"
	case KProduct:
		return "CProduct"
	case KUnion:
		return "CUnion"
	default:
		return "Unknown"
	}
}

// CType is the closed sum itself. Only the constructors in this file should
// build values of this struct; callers match on Kind.
type CType struct {
	kind     Kind
	elem     *CType            // CList
	inner    *CType            // COptional
	fields   map[string]CType  // CProduct
	variants map[string]CType  // CUnion
}

// Int, Float, String, and Boolean are the scalar constructors.
func Int() CType     { return CType{kind: KInt} }
func Float() CType   { return CType{kind: KFloat} }
func String() CType  { return CType{kind: KString} }
func Boolean() CType { return CType{kind: KBoolean} }

// List constructs a CList(elem).
func List(elem CType) CType {
	e := elem
	return CType{kind: KList, elem: &e}
}

// Optional constructs a COptional(inner).
func Optional(inner CType) CType {
	i := inner
	return CType{kind: KOptional, inner: &i}
}

// Product constructs a CProduct(fields). The supplied map is copied.
func Product(fields map[string]CType) CType {
	copied := make(map[string]CType, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return CType{kind: KProduct, fields: copied}
}

// Union constructs a CUnion(variants). The supplied map is copied.
func Union(variants map[string]CType) CType {
	copied := make(map[string]CType, len(variants))
	for k, v := range variants {
		copied[k] = v
	}
	return CType{kind: KUnion, variants: copied}
}

// Kind returns the variant tag.
func (t CType) Kind() Kind { return t.kind }

// Elem returns the element type of a CList. Panics on any other kind.
func (t CType) Elem() CType {
	if t.kind != KList || t.elem == nil {
		panic("ctype: Elem called on non-list CType")
	}
	return *t.elem
}

// Inner returns the inner type of a COptional. Panics on any other kind.
func (t CType) Inner() CType {
	if t.kind != KOptional || t.inner == nil {
		panic("ctype: Inner called on non-optional CType")
	}
	return *t.inner
}

// Fields returns a defensive copy of a CProduct's field map. Panics on any
// other kind.
func (t CType) Fields() map[string]CType {
	if t.kind != KProduct {
		panic("ctype: Fields called on non-product CType")
	}
	return cloneTypeMap(t.fields)
}

// Variants returns a defensive copy of a CUnion's variant map. Panics on any
// other kind.
func (t CType) Variants() map[string]CType {
	if t.kind != KUnion {
		panic("ctype: Variants called on non-union CType")
	}
	return cloneTypeMap(t.variants)
}

// FieldType looks up a single CProduct field type.
func (t CType) FieldType(name string) (CType, bool) {
	if t.kind != KProduct {
		return CType{}, false
	}
	ft, ok := t.fields[name]
	return ft, ok
}

// VariantType looks up a single CUnion variant type.
func (t CType) VariantType(tag string) (CType, bool) {
	if t.kind != KUnion {
		return CType{}, false
	}
	vt, ok := t.variants[tag]
	return vt, ok
}

func cloneTypeMap(m map[string]CType) map[string]CType {
	out := make(map[string]CType, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Equal reports structural equality: field order in CProduct/CUnion is
// immaterial, only the name→type mapping matters.
func Equal(a, b CType) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KInt, KFloat, KString, KBoolean:
		return true
	case KList:
		return Equal(*a.elem, *b.elem)
	case KOptional:
		return Equal(*a.inner, *b.inner)
	case KProduct:
		return equalTypeMaps(a.fields, b.fields)
	case KUnion:
		return equalTypeMaps(a.variants, b.variants)
	default:
		return false
	}
}

func equalTypeMaps(a, b map[string]CType) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		other, ok := b[k]
		if !ok || !Equal(v, other) {
			return false
		}
	}
	return true
}

// SortedFieldNames returns a CProduct's field names in alphabetical order,
// used by the structural hasher and the streaming converter's "Missing
// required fields" diagnostics.
func (t CType) SortedFieldNames() []string {
	names := make([]string, 0, len(t.fields))
	for name := range t.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedVariantTags returns a CUnion's variant tags in alphabetical order.
func (t CType) SortedVariantTags() []string {
	tags := make([]string, 0, len(t.variants))
	for tag := range t.variants {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// String renders a CType for diagnostics, e.g. "CList(CInt)" or
// "CProduct{age: CInt, name: CString}".
func (t CType) String() string {
	switch t.kind {
	case KInt, KFloat, KString, KBoolean:
		return t.kind.String()
	case KList:
		return "CList(" + t.elem.String() + ")"
	case KOptional:
		return "COptional(" + t.inner.String() + ")"
	case KProduct:
		return "CProduct" + fieldsString(t.fields, t.SortedFieldNames())
	case KUnion:
		return "CUnion" + fieldsString(t.variants, t.SortedVariantTags())
	default:
		return "Unknown"
	}
}

func fieldsString(m map[string]CType, names []string) string {
	out := "{"
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += name + ": " + m[name].String()
	}
	return out + "}"
}
