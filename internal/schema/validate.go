package schema

import (
	"fmt"
	"slices"

	"workbook-loader/internal/diagnostic"
)

// Validate checks every entity for relationship settings that cannot work at
// runtime. It never stops at the first problem.
func Validate(s Schema) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if len(s) == 0 {
		res.AddError("schema_is_empty", "schema declares no entities", diagnostic.Location{})
		return res
	}

	for _, name := range s.Names() {
		res.Merge(ValidateEntity(s[name]))
	}

	return res
}

// ValidateEntity checks a single entity.
func ValidateEntity(e *Entity) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	if e.Relationship == nil || e.Relationship.Type == "" {
		res.AddError("root_type_missing",
			fmt.Sprintf("entity %q has no relationshipConfig.type", e.Name),
			diagnostic.Location{FieldPath: e.Name})
	}

	if len(e.Attributes) == 0 {
		res.AddWarning("entity_has_no_fields",
			fmt.Sprintf("entity %q declares no fields", e.Name),
			diagnostic.Location{FieldPath: e.Name})
	}

	validateObject(res, "", &e.Object)

	return res
}

func validateObject(res *diagnostic.Diagnostics, prefix string, o *Object) {
	for _, k := range o.Keys() {
		path := join(prefix, k)

		switch f := o.Attributes[k].(type) {
		case *Object:
			validateRelationship(res, path, f)
			validateObject(res, path, f)
		case *Enum:
			if len(f.AllowedValues) == 0 {
				res.AddError("enum_without_values",
					fmt.Sprintf("enum %q declares no allowedValues", path),
					diagnostic.Location{FieldPath: path})
			}
		}
	}
}

func validateRelationship(res *diagnostic.Diagnostics, path string, o *Object) {
	rc := o.Relationship
	if rc == nil {
		return
	}

	loc := diagnostic.Location{FieldPath: path}

	if rc.Type == "" {
		res.AddError("relationship_type_missing",
			fmt.Sprintf("relationship %q has no type", path), loc)
	}

	if rc.LinkOrCreateSetting == SettingNone {
		res.AddWarning("relationship_setting_missing",
			fmt.Sprintf("relationship %q has no linkOrCreateSetting and is never resolved", path), loc)
	}

	simple := o.SimpleAttributes()

	if rc.LinkOrCreateSetting.Links() && len(simple) == 0 {
		res.AddError("no_natural_key",
			fmt.Sprintf("relationship %q links by natural key but has no simple attributes", path), loc)
	}

	for _, q := range rc.QueryFields {
		if !slices.Contains(simple, q) {
			res.AddError("invalid_query_field",
				fmt.Sprintf("queryField %q of %q is not a simple attribute", q, path), loc)
		}
	}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}

	return prefix + "." + name
}
