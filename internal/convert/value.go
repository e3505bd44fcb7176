package convert

import (
	"fmt"
	"strconv"
	"strings"

	"workbook-loader/internal/schema"
)

// Enum returns the value of the allowed entry whose value or label equals raw.
func Enum(raw string, allowed []schema.EnumValue) (string, bool) {
	for _, ev := range allowed {
		if ev.Value == raw || ev.Label == raw {
			return ev.Value, true
		}
	}

	return "", false
}

// Value converts raw for the given field descriptor. Blank input and object
// descriptors are absent. A managed attribute value that is already a map is
// passed through.
func Value(f schema.Field, raw any) (any, bool) {
	if m, ok := raw.(map[string]any); ok {
		if _, managed := f.(*schema.ManagedAttributes); managed {
			return m, len(m) > 0
		}

		return nil, false
	}

	s := Text(raw)
	if strings.TrimSpace(s) == "" {
		return nil, false
	}

	switch v := f.(type) {
	case *schema.Primitive:
		return primitive(v.Type, s)
	case *schema.Vocabulary:
		return Vocabulary(s)
	case *schema.ManagedAttributes:
		m := Map(s)
		return m, len(m) > 0
	case *schema.Enum:
		return Enum(strings.TrimSpace(s), v.AllowedValues)
	case *schema.Object:
		return nil, false
	default:
		return nil, false
	}
}

func primitive(dt schema.DataType, s string) (any, bool) {
	switch dt {
	case schema.TypeString:
		return String(s)
	case schema.TypeNumber:
		return Number(s)
	case schema.TypeBoolean:
		return Boolean(s), true
	case schema.TypeDate:
		return Date(s)
	case schema.TypeStringArray:
		return StringArray(s), true
	case schema.TypeNumberArray:
		return NumberArray(s), true
	case schema.TypeBooleanArray:
		return BooleanArray(s), true
	case schema.TypeStringCoordinate:
		return StringCoordinate(s)
	default:
		return nil, false
	}
}

// Text renders a raw cell value as the string a user would have typed.
func Text(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return FormatNumber(v)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
