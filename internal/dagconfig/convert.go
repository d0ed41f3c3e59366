package dagconfig

import (
	"github.com/constellation-engine/constellation/internal/ctype"
	"github.com/constellation-engine/constellation/internal/dagspec"
)

// ToDagSpec converts a validated Document into a dagspec.DagSpec, resolving
// every type expression into a ctype.CType.
func ToDagSpec(doc Document) (dagspec.DagSpec, error) {
	modules := make(map[string]dagspec.ModuleNodeSpec, len(doc.Modules))
	for id, m := range doc.Modules {
		consumes, err := parseTypeMap(m.Consumes)
		if err != nil {
			return dagspec.DagSpec{}, err
		}
		produces, err := parseTypeMap(m.Produces)
		if err != nil {
			return dagspec.DagSpec{}, err
		}
		modules[id] = dagspec.ModuleNodeSpec{
			Metadata: toMetadata(m.Metadata),
			Consumes: consumes,
			Produces: produces,
		}
	}

	data := make(map[string]dagspec.DataNodeSpec, len(doc.Data))
	for id, d := range doc.Data {
		typ, err := ParseType(d.Type)
		if err != nil {
			return dagspec.DagSpec{}, err
		}
		data[id] = dagspec.DataNodeSpec{
			Name:     d.Name,
			Type:     typ,
			Bindings: cloneBindings(d.Bindings),
		}
	}

	return dagspec.DagSpec{
		Metadata:        toMetadata(doc.Metadata),
		Modules:         modules,
		Data:            data,
		InEdges:         toEdges(doc.InEdges),
		OutEdges:        toEdges(doc.OutEdges),
		DeclaredOutputs: append([]string(nil), doc.DeclaredOutputs...),
		OutputBindings:  cloneBindings(doc.OutputBindings),
	}, nil
}

func parseTypeMap(m map[string]string) (map[string]ctype.CType, error) {
	out := make(map[string]ctype.CType, len(m))
	for port, expr := range m {
		t, err := ParseType(expr)
		if err != nil {
			return nil, err
		}
		out[port] = t
	}
	return out, nil
}

func toMetadata(m MetadataDoc) dagspec.Metadata {
	return dagspec.Metadata{
		Name:        m.Name,
		Description: m.Description,
		Tags:        append([]string(nil), m.Tags...),
		Major:       m.Major,
		Minor:       m.Minor,
	}
}

func toEdges(es []EdgeDoc) []dagspec.Edge {
	out := make([]dagspec.Edge, len(es))
	for i, e := range es {
		out[i] = dagspec.Edge{From: e.From, To: e.To}
	}
	return out
}

func cloneBindings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
