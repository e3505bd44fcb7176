package schema

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const relationshipConfigKey = "relationshipConfig"

// fieldYAML is the on-disk shape of a single field descriptor.
type fieldYAML struct {
	DataType           DataType            `yaml:"dataType"`
	VocabularyEndpoint string              `yaml:"vocabularyEndpoint,omitempty"`
	Endpoint           string              `yaml:"endpoint,omitempty"`
	AllowedValues      []EnumValue         `yaml:"allowedValues,omitempty"`
	RelationshipConfig *RelationshipConfig `yaml:"relationshipConfig,omitempty"`
	Attributes         yaml.Node           `yaml:"attributes,omitempty"`
}

// --- Schema ---

// UnmarshalYAML decodes entities in file order.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping of entities, got %v", node.Line, node.Kind)
	}

	out := Schema{}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value

		entity := &Entity{Name: name}

		err := entity.UnmarshalYAML(node.Content[i+1])
		if err != nil {
			return fmt.Errorf("entity %q: %w", name, err)
		}

		out[name] = entity
	}

	*s = out

	return nil
}

// --- Entity ---

// UnmarshalYAML decodes an entity: a relationshipConfig key next to the
// top-level field descriptors.
func (e *Entity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping, got %v", node.Line, node.Kind)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]

		if key == relationshipConfigKey {
			var rc RelationshipConfig

			err := value.Decode(&rc)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}

			e.Relationship = &rc

			continue
		}

		f, err := decodeField(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}

		e.Set(key, f)
	}

	return nil
}

// MarshalYAML writes the entity back in the same flat shape.
func (e Entity) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	if e.Relationship != nil {
		err := appendPair(node, relationshipConfigKey, e.Relationship)
		if err != nil {
			return nil, err
		}
	}

	for _, k := range e.Keys() {
		err := appendPair(node, k, encodeField(e.Attributes[k]))
		if err != nil {
			return nil, err
		}
	}

	return node, nil
}

// --- Field ---

func decodeField(node *yaml.Node) (Field, error) {
	// shorthand: "name: string"
	if node.Kind == yaml.ScalarNode {
		dt, err := ParseDataType(node.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}

		if dt.IsObject() {
			return nil, fmt.Errorf("line %d: %s needs attributes", node.Line, node.Value)
		}

		return leafOf(dt, fieldYAML{DataType: dt}), nil
	}

	var fy fieldYAML

	err := node.Decode(&fy)
	if err != nil {
		return nil, err
	}

	if fy.DataType == 0 {
		return nil, fmt.Errorf("line %d: missing dataType", node.Line)
	}

	if !fy.DataType.IsObject() {
		if !fy.Attributes.IsZero() {
			return nil, fmt.Errorf("line %d: %w", node.Line, ErrLeafAttributes)
		}

		return leafOf(fy.DataType, fy), nil
	}

	obj := &Object{
		Array:        fy.DataType == TypeObjectArray,
		Relationship: fy.RelationshipConfig,
	}

	attrs := &fy.Attributes
	if attrs.IsZero() || attrs.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: %s needs an attributes mapping", node.Line, fy.DataType.WireName())
	}

	for i := 0; i+1 < len(attrs.Content); i += 2 {
		key := attrs.Content[i].Value

		child, err := decodeField(attrs.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}

		obj.Set(key, child)
	}

	return obj, nil
}

// ErrLeafAttributes is returned when a non-object field declares attributes.
var ErrLeafAttributes = errors.New("only object fields may declare attributes")

func leafOf(dt DataType, fy fieldYAML) Field {
	switch dt {
	case TypeVocabulary:
		return &Vocabulary{Endpoint: fy.VocabularyEndpoint}
	case TypeManagedAttributes:
		return &ManagedAttributes{Endpoint: fy.Endpoint}
	case TypeEnum:
		return &Enum{AllowedValues: fy.AllowedValues}
	default:
		return &Primitive{Type: dt}
	}
}

// fieldOut is the marshal-side mirror of fieldYAML.
type fieldOut struct {
	DataType           DataType            `yaml:"dataType"`
	VocabularyEndpoint string              `yaml:"vocabularyEndpoint,omitempty"`
	Endpoint           string              `yaml:"endpoint,omitempty"`
	AllowedValues      []EnumValue         `yaml:"allowedValues,omitempty"`
	RelationshipConfig *RelationshipConfig `yaml:"relationshipConfig,omitempty"`
	Attributes         *yaml.Node          `yaml:"attributes,omitempty"`
}

func encodeField(f Field) fieldOut {
	out := fieldOut{DataType: f.DataType()}

	switch v := f.(type) {
	case *Vocabulary:
		out.VocabularyEndpoint = v.Endpoint
	case *ManagedAttributes:
		out.Endpoint = v.Endpoint
	case *Enum:
		out.AllowedValues = v.AllowedValues
	case *Object:
		out.RelationshipConfig = v.Relationship
		out.Attributes = &yaml.Node{Kind: yaml.MappingNode}

		for _, k := range v.Keys() {
			// encoding a plain struct cannot fail
			_ = appendPair(out.Attributes, k, encodeField(v.Attributes[k]))
		}
	case *Primitive:
	}

	return out
}

func appendPair(node *yaml.Node, key string, value any) error {
	var vn yaml.Node

	err := vn.Encode(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&vn,
	)

	return nil
}
