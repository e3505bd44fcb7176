package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML schema file from the given path.
func LoadFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Schema.
func Parse(data []byte) (Schema, error) {
	var s Schema

	err := yaml.Unmarshal(data, &s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}

	applyDefaults(s)

	return s, nil
}

// applyDefaults fills in values that may be omitted from schema files.
func applyDefaults(s Schema) {
	for name, e := range s {
		if e.Relationship == nil {
			e.Relationship = &RelationshipConfig{}
		}

		if e.Relationship.Type == "" {
			e.Relationship.Type = name
		}
	}
}

// Marshal serializes a Schema to YAML.
func Marshal(s Schema) ([]byte, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, name := range s.Names() {
		err := appendPair(node, name, s[name])
		if err != nil {
			return nil, err
		}
	}

	return yaml.Marshal(node)
}

// WriteFile writes a Schema to the given path.
func WriteFile(s Schema, path string) error {
	data, err := Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schema file %s: %w", path, err)
	}

	return nil
}
