// Package dagconfig loads a DagSpec from a YAML document: a human-authored
// mirror of dagspec.DagSpec where CTypes are written as type expressions
// ("list<int>", "optional<string>", "product<name:string,age:int>") rather
// than constructed in Go. Grounded on the teacher's internal/config package
// (yaml.v3-tagged DTOs, a validator/v10 singleton, ParseConfig/ValidateConfig).
package dagconfig

// Document is the YAML-facing mirror of a dagspec.DagSpec.
type Document struct {
	Metadata        MetadataDoc          `yaml:"metadata" validate:"required"`
	Modules         map[string]ModuleDoc `yaml:"modules" validate:"required,min=1,dive"`
	Data            map[string]DataDoc   `yaml:"data" validate:"required,dive"`
	InEdges         []EdgeDoc            `yaml:"inEdges,omitempty" validate:"omitempty,dive"`
	OutEdges        []EdgeDoc            `yaml:"outEdges,omitempty" validate:"omitempty,dive"`
	DeclaredOutputs []string             `yaml:"declaredOutputs,omitempty"`
	OutputBindings  map[string]string    `yaml:"outputBindings,omitempty"`
}

// MetadataDoc mirrors dagspec.Metadata.
type MetadataDoc struct {
	Name        string   `yaml:"name" validate:"required"`
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Major       int      `yaml:"major,omitempty"`
	Minor       int      `yaml:"minor,omitempty"`
}

// ModuleDoc mirrors dagspec.ModuleNodeSpec. Consumes/Produces map port name
// to a type expression, validated by the registered "ctype" rule.
type ModuleDoc struct {
	Metadata MetadataDoc       `yaml:"metadata" validate:"required"`
	Consumes map[string]string `yaml:"consumes,omitempty" validate:"omitempty,dive,ctype"`
	Produces map[string]string `yaml:"produces,omitempty" validate:"omitempty,dive,ctype"`
}

// DataDoc mirrors dagspec.DataNodeSpec.
type DataDoc struct {
	Name     string            `yaml:"name" validate:"required"`
	Type     string            `yaml:"type" validate:"required,ctype"`
	Bindings map[string]string `yaml:"bindings,omitempty"`
}

// EdgeDoc mirrors dagspec.Edge.
type EdgeDoc struct {
	From string `yaml:"from" validate:"required"`
	To   string `yaml:"to" validate:"required"`
}
