// Package hashing computes a deterministic, insertion-order-insensitive
// content hash of a DagSpec, used to deduplicate pipeline images in the
// store (component F) and to recognize when two DagSpecs describe the same
// execution graph.
package hashing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/constellation-engine/constellation/internal/ctype"
	"github.com/constellation-engine/constellation/internal/dagspec"
)

// ComputeStructuralHash returns a deterministic hex digest of spec's
// structure: its modules (by id, with sorted ports), its data nodes (by id,
// with type and sorted bindings), and its edges (sorted lexicographically).
// Two DagSpecs that differ only in map iteration order, or in the order
// their edges/ports were declared, hash identically.
func ComputeStructuralHash(spec dagspec.DagSpec) string {
	var b strings.Builder

	b.WriteString("modules:\n")
	for _, id := range dagspec.SortedModuleIDs(spec) {
		writeModule(&b, id, spec.Modules[id])
	}

	b.WriteString("data:\n")
	for _, id := range dagspec.SortedDataIDs(spec) {
		writeData(&b, id, spec.Data[id])
	}

	b.WriteString("inEdges:\n")
	for _, e := range sortedEdges(spec.InEdges) {
		fmt.Fprintf(&b, "%s->%s\n", e.From, e.To)
	}

	b.WriteString("outEdges:\n")
	for _, e := range sortedEdges(spec.OutEdges) {
		fmt.Fprintf(&b, "%s->%s\n", e.From, e.To)
	}

	b.WriteString("outputs:\n")
	outputs := append([]string(nil), spec.DeclaredOutputs...)
	sort.Strings(outputs)
	for _, name := range outputs {
		fmt.Fprintf(&b, "%s=%s\n", name, spec.OutputBindings[name])
	}

	sum := xxhash.Sum64String(b.String())
	return fmt.Sprintf("%016x", sum)
}

func writeModule(b *strings.Builder, id string, m dagspec.ModuleNodeSpec) {
	fmt.Fprintf(b, "module %s name=%s v%d.%d\n", id, m.Metadata.Name, m.Metadata.Major, m.Metadata.Minor)
	writePortSet(b, "consumes", m.Consumes)
	writePortSet(b, "produces", m.Produces)
}

func writePortSet(b *strings.Builder, label string, ports map[string]ctype.CType) {
	names := make([]string, 0, len(ports))
	for name := range ports {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(b, "  %s %s: %s\n", label, name, typeTag(ports[name]))
	}
}

func writeData(b *strings.Builder, id string, d dagspec.DataNodeSpec) {
	fmt.Fprintf(b, "data %s name=%s type=%s\n", id, d.Name, typeTag(d.Type))
	owners := make([]string, 0, len(d.Bindings))
	for owner := range d.Bindings {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	for _, owner := range owners {
		fmt.Fprintf(b, "  binding %s->%s\n", owner, d.Bindings[owner])
	}
}

// typeTag renders a CType as a canonical string for hashing, independent of
// CType.String()'s diagnostic formatting so the hash stays stable even if
// diagnostic rendering changes later.
func typeTag(t ctype.CType) string {
	switch t.Kind() {
	case ctype.KInt, ctype.KFloat, ctype.KString, ctype.KBoolean:
		return t.Kind().String()
	case ctype.KList:
		return "CList<" + typeTag(t.Elem()) + ">"
	case ctype.KOptional:
		return "COptional<" + typeTag(t.Inner()) + ">"
	case ctype.KProduct:
		var parts []string
		for _, name := range t.SortedFieldNames() {
			ft, _ := t.FieldType(name)
			parts = append(parts, name+":"+typeTag(ft))
		}
		return "CProduct<" + strings.Join(parts, ",") + ">"
	case ctype.KUnion:
		var parts []string
		for _, tag := range t.SortedVariantTags() {
			vt, _ := t.VariantType(tag)
			parts = append(parts, tag+":"+typeTag(vt))
		}
		return "CUnion<" + strings.Join(parts, ",") + ">"
	default:
		return "Unknown"
	}
}

func sortedEdges(edges []dagspec.Edge) []dagspec.Edge {
	out := append([]dagspec.Edge(nil), edges...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
