package schema

import (
	"fmt"
	"slices"
)

//go:generate go tool stringer -type=DataType -trimprefix=Type -output=datatype_string.go

// DataType is the declared type of a field descriptor.
type DataType int

const (
	_ DataType = iota // zero value is invalid

	TypeString
	TypeNumber
	TypeBoolean
	TypeDate
	TypeStringArray
	TypeNumberArray
	TypeBooleanArray
	TypeManagedAttributes
	TypeVocabulary
	TypeObject
	TypeObjectArray
	TypeEnum
	TypeStringCoordinate
)

var dataTypeWireNames = map[DataType]string{
	TypeString:            "string",
	TypeNumber:            "number",
	TypeBoolean:           "boolean",
	TypeDate:              "date",
	TypeStringArray:       "string[]",
	TypeNumberArray:       "number[]",
	TypeBooleanArray:      "boolean[]",
	TypeManagedAttributes: "managedAttributes",
	TypeVocabulary:        "vocabulary",
	TypeObject:            "object",
	TypeObjectArray:       "object[]",
	TypeEnum:              "enum",
	TypeStringCoordinate:  "stringCoordinate",
}

// ParseDataType resolves a wire name such as "number[]" to its DataType.
func ParseDataType(s string) (DataType, error) {
	for dt, name := range dataTypeWireNames {
		if name == s {
			return dt, nil
		}
	}

	return 0, fmt.Errorf("unknown data type %q", s)
}

// WireName returns the name used in schema files and diagnostics.
func (dt DataType) WireName() string {
	if name, ok := dataTypeWireNames[dt]; ok {
		return name
	}

	return dt.String()
}

// IsObject reports whether the type carries nested attributes.
func (dt DataType) IsObject() bool {
	return dt == TypeObject || dt == TypeObjectArray
}

// IsArray reports whether values of this type are lists.
func (dt DataType) IsArray() bool {
	return slices.Contains([]DataType{TypeStringArray, TypeNumberArray, TypeBooleanArray, TypeObjectArray}, dt)
}

// MarshalText implements encoding.TextMarshaler.
func (dt DataType) MarshalText() ([]byte, error) {
	name, ok := dataTypeWireNames[dt]
	if !ok {
		return nil, fmt.Errorf("invalid data type %d", int(dt))
	}

	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (dt *DataType) UnmarshalText(text []byte) error {
	parsed, err := ParseDataType(string(text))
	if err != nil {
		return err
	}

	*dt = parsed

	return nil
}
