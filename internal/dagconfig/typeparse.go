package dagconfig

import (
	"fmt"
	"strings"

	"github.com/constellation-engine/constellation/internal/ctype"
)

// ParseType parses a type expression into a ctype.CType. Grammar:
//
//	scalar    := "int" | "float" | "string" | "boolean"
//	list      := "list<" type ">"
//	optional  := "optional<" type ">"
//	product   := "product<" [field ("," field)*] ">"
//	union     := "union<" [variant ("," variant)*] ">"
//	field     := name ":" type
//	variant   := tag ":" type
func ParseType(expr string) (ctype.CType, error) {
	s := strings.TrimSpace(expr)

	switch s {
	case "int":
		return ctype.Int(), nil
	case "float":
		return ctype.Float(), nil
	case "string":
		return ctype.String(), nil
	case "boolean":
		return ctype.Boolean(), nil
	}

	if inner, ok := unwrap(s, "list<", ">"); ok {
		elem, err := ParseType(inner)
		if err != nil {
			return ctype.CType{}, err
		}
		return ctype.List(elem), nil
	}

	if inner, ok := unwrap(s, "optional<", ">"); ok {
		elem, err := ParseType(inner)
		if err != nil {
			return ctype.CType{}, err
		}
		return ctype.Optional(elem), nil
	}

	if inner, ok := unwrap(s, "product<", ">"); ok {
		fields, err := parseNamedTypes(inner)
		if err != nil {
			return ctype.CType{}, err
		}
		return ctype.Product(fields), nil
	}

	if inner, ok := unwrap(s, "union<", ">"); ok {
		variants, err := parseNamedTypes(inner)
		if err != nil {
			return ctype.CType{}, err
		}
		return ctype.Union(variants), nil
	}

	return ctype.CType{}, fmt.Errorf("dagconfig: unrecognized type expression %q", expr)
}

func unwrap(s, prefix, suffix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) {
		return "", false
	}
	return s[len(prefix) : len(s)-len(suffix)], true
}

// parseNamedTypes splits a comma-separated "name:type" list, respecting
// nested angle brackets so a field's own list/product/union type isn't
// split on its internal commas.
func parseNamedTypes(s string) (map[string]ctype.CType, error) {
	out := make(map[string]ctype.CType)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}

	for _, part := range splitTopLevel(s) {
		idx := strings.Index(part, ":")
		if idx < 0 {
			return nil, fmt.Errorf("dagconfig: malformed field expression %q", part)
		}
		name := strings.TrimSpace(part[:idx])
		typ, err := ParseType(part[idx+1:])
		if err != nil {
			return nil, err
		}
		out[name] = typ
	}
	return out, nil
}

func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
