package schema

import (
	"maps"
	"slices"
)

// Field is a node of the schema tree. The concrete type is one of
// *Primitive, *Vocabulary, *ManagedAttributes, *Enum or *Object.
type Field interface {
	// DataType returns the declared type of the node.
	DataType() DataType

	isField()
}

// Primitive is a scalar or scalar-array leaf.
type Primitive struct {
	Type DataType
}

// Vocabulary is a leaf whose values come from a controlled vocabulary.
type Vocabulary struct {
	Endpoint string
}

// ManagedAttributes is a key/value map leaf.
type ManagedAttributes struct {
	Endpoint string
}

// EnumValue is one allowed value of an Enum field.
type EnumValue struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Enum is a leaf restricted to a fixed list of values.
type Enum struct {
	AllowedValues []EnumValue
}

// Object is a nested object or, when Array is set, an array of objects.
type Object struct {
	Array        bool
	Attributes   map[string]Field
	Relationship *RelationshipConfig

	// order keeps the declaration order of Attributes when parsed from YAML.
	order []string
}

func (*Primitive) isField()         {}
func (*Vocabulary) isField()        {}
func (*ManagedAttributes) isField() {}
func (*Enum) isField()              {}
func (*Object) isField()            {}

// DataType implements Field.
func (p *Primitive) DataType() DataType { return p.Type }

// DataType implements Field.
func (*Vocabulary) DataType() DataType { return TypeVocabulary }

// DataType implements Field.
func (*ManagedAttributes) DataType() DataType { return TypeManagedAttributes }

// DataType implements Field.
func (*Enum) DataType() DataType { return TypeEnum }

// DataType implements Field.
func (o *Object) DataType() DataType {
	if o.Array {
		return TypeObjectArray
	}

	return TypeObject
}

// Keys returns attribute names in declaration order, or sorted when the
// object was built in code.
func (o *Object) Keys() []string {
	if len(o.order) == len(o.Attributes) {
		return slices.Clone(o.order)
	}

	return slices.Sorted(maps.Keys(o.Attributes))
}

// Set adds or replaces an attribute, keeping declaration order.
func (o *Object) Set(name string, f Field) {
	if o.Attributes == nil {
		o.Attributes = map[string]Field{}
	}

	if _, exists := o.Attributes[name]; !exists && len(o.order) == len(o.Attributes) {
		o.order = append(o.order, name)
	}

	o.Attributes[name] = f
}

// SimpleAttributes returns the names of attributes that are not objects,
// in Keys order.
func (o *Object) SimpleAttributes() []string {
	var out []string

	for _, k := range o.Keys() {
		if !o.Attributes[k].DataType().IsObject() {
			out = append(out, k)
		}
	}

	return out
}

// String is a convenience constructor for a STRING leaf.
func String() *Primitive { return &Primitive{Type: TypeString} }

// Of is a convenience constructor for any primitive leaf.
func Of(dt DataType) *Primitive { return &Primitive{Type: dt} }

// Entity is the root of one importable resource type.
type Entity struct {
	Name string
	Object
}

// Schema maps entity names (e.g. "material-sample") to their definitions.
type Schema map[string]*Entity

// Entity returns the named entity or false.
func (s Schema) Entity(name string) (*Entity, bool) {
	e, ok := s[name]
	return e, ok
}

// Names returns the entity names in sorted order.
func (s Schema) Names() []string {
	return slices.Sorted(maps.Keys(s))
}
