package columnmap

import (
	"fmt"
	"maps"
	"slices"

	"workbook-loader/internal/api"
	"workbook-loader/internal/convert"
	"workbook-loader/internal/diagnostic"
	"workbook-loader/internal/schema"
	"workbook-loader/internal/workbook"
)

// Diagnostic codes.
const (
	CodeDuplicateMapping        = "duplicate_field_mapping"
	CodeManagedAttributeMissing = "managed_attribute_not_selected"
	CodeColumnNotMapped         = "column_not_mapped"
	CodeUnknownField            = "unknown_field"
	CodeInvalidDataFormat       = "invalid_data_format"
	CodeUnknownManagedAttribute = "unknown_managed_attribute"
	CodeInvalidManagedType      = "invalid_managed_attribute_type"
)

// Lookups holds backend lists used to check cell values. Both maps are keyed
// by field path; a field without an entry is not checked.
type Lookups struct {
	Vocabulary        map[string][]string
	ManagedAttributes map[string][]api.ManagedAttribute
}

// ValidateFieldMaps checks a positional field mapping.
func ValidateFieldMaps(fieldMaps []workbook.FieldMap, flat *schema.Flat) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	seen := map[string]string{}

	for _, fm := range fieldMaps {
		loc := diagnostic.Location{Column: fm.ColumnHeader, FieldPath: fm.TargetField}

		if fm.Skipped {
			continue
		}

		if fm.TargetField == "" {
			res.AddError(CodeColumnNotMapped,
				fmt.Sprintf("column %q is neither mapped nor skipped", fm.ColumnHeader), loc)

			continue
		}

		target := fm.TargetField
		if fm.TargetKey != nil {
			target += "." + fm.TargetKey.Key
		}

		if other, dup := seen[target]; dup {
			res.AddError(CodeDuplicateMapping,
				fmt.Sprintf("columns %q and %q both map to %s", other, fm.ColumnHeader, target), loc)
		} else {
			seen[target] = fm.ColumnHeader
		}

		if flat.DataType(fm.TargetField) == schema.TypeManagedAttributes && fm.TargetKey == nil {
			res.AddError(CodeManagedAttributeMissing,
				fmt.Sprintf("column %q maps to %s without selecting a managed attribute", fm.ColumnHeader, fm.TargetField), loc)
		}
	}

	return res
}

// ValidateData checks every cell of rows produced by DataFromWorkbook with
// row numbers. Reported sheet and row numbers are one based.
func ValidateData(sheet int, rows []map[string]any, flat *schema.Flat, lookups Lookups) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	for _, row := range rows {
		rowNumber, _ := row[workbook.RowNumberKey].(int)

		for _, field := range sortedKeys(row) {
			if field == workbook.RowNumberKey {
				continue
			}

			value := row[field]
			if isBlank(value) {
				continue
			}

			loc := diagnostic.Location{Sheet: sheet + 1, Row: rowNumber + 1, Column: field}

			path, ok := flat.PathOfField(field)
			if !ok {
				res.AddError(CodeUnknownField, fmt.Sprintf("%s is not a field of %s", field, flat.Entity), loc)
				continue
			}

			loc.FieldPath = path

			validateCell(res, loc, flat.DataType(path), value, lookups)
		}
	}

	return res
}

func validateCell(
	res *diagnostic.Diagnostics,
	loc diagnostic.Location,
	dt schema.DataType,
	value any,
	lookups Lookups,
) {
	text, isText := value.(string)

	invalid := func() {
		loc.ExpectedType = dt.WireName()
		res.AddError(CodeInvalidDataFormat,
			fmt.Sprintf("value %q is not a valid %s", convert.Text(value), dt.WireName()), loc)
	}

	switch dt {
	case schema.TypeBoolean:
		if !isText || !convert.IsBoolean(text) {
			invalid()
		}
	case schema.TypeNumber:
		if !isText || !convert.IsNumber(text) {
			invalid()
		}
	case schema.TypeNumberArray:
		if !isText || !convert.IsNumberArray(text) {
			invalid()
		}
	case schema.TypeBooleanArray:
		if !isText || !convert.IsBooleanArray(text) {
			invalid()
		}
	case schema.TypeVocabulary:
		elements, known := lookups.Vocabulary[loc.FieldPath]
		if !known {
			return
		}

		upper, _ := convert.Vocabulary(text)
		if !slices.Contains(elements, text) && !slices.Contains(elements, upper) {
			invalid()
		}
	case schema.TypeManagedAttributes:
		attrs, ok := value.(map[string]any)
		if !ok {
			if !isText || !convert.IsMap(text) {
				invalid()
				return
			}

			attrs = convert.Map(text)
		}

		known, checked := lookups.ManagedAttributes[loc.FieldPath]
		if !checked {
			return
		}

		validateManagedAttributes(res, loc, attrs, known)
	}
}

func validateManagedAttributes(
	res *diagnostic.Diagnostics,
	loc diagnostic.Location,
	attrs map[string]any,
	known []api.ManagedAttribute,
) {
	for _, key := range sortedKeys(attrs) {
		i := slices.IndexFunc(known, func(ma api.ManagedAttribute) bool { return ma.Key == key })
		if i < 0 {
			res.AddError(CodeUnknownManagedAttribute, fmt.Sprintf("unknown managed attribute %q", key), loc)
			continue
		}

		if known[i].VocabularyElementType != workbook.ElementBool {
			continue
		}

		if isBooleanValue(attrs[key]) {
			continue
		}

		l := loc
		l.ExpectedType = workbook.ElementBool
		res.AddError(CodeInvalidManagedType,
			fmt.Sprintf("managed attribute %q expects %s, got %q", key, workbook.ElementBool, convert.Text(attrs[key])), l)
	}
}

func isBooleanValue(v any) bool {
	switch x := v.(type) {
	case bool:
		return true
	case string:
		return convert.IsBoolean(x)
	default:
		return false
	}
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case map[string]any:
		return len(x) == 0
	default:
		return false
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
