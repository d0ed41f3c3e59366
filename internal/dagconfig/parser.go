package dagconfig

import (
	"gopkg.in/yaml.v3"

	cerrors "github.com/constellation-engine/constellation/pkg/errors"
)

// ParseDocument unmarshals and validates a YAML-encoded Document.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, cerrors.NewConfigurationError("dagconfig: " + err.Error())
	}
	if err := ValidateDocument(&doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}
