// Package builder turns field-keyed workbook rows into draft resources.
//
// Each row becomes one resource.Draft shaped like the entity schema: dotted
// field paths become nested objects, object arrays get a single element and
// relationship nodes carry their relationship config as a marker for the
// linker.
package builder

import (
	"strings"

	"workbook-loader/internal/convert"
	"workbook-loader/internal/resource"
	"workbook-loader/internal/schema"
)

const (
	scientificNameDetailsPath = "organism.determination.scientificNameDetails"
	scientificNameSourceKey   = "scientificNameSource"
	scientificNameCustom      = "CUSTOM"
	isPrimaryKey              = "isPrimary"
)

var primaryCoordinateFields = []string{"dwcDecimalLatitude", "dwcDecimalLongitude"}

// Builder converts rows of one entity.
type Builder struct {
	flat *schema.Flat
}

// New returns a Builder for a flattened entity.
func New(flat *schema.Flat) *Builder {
	return &Builder{flat: flat}
}

// Build converts every row. Row keys are field names or dotted field paths;
// keys that resolve to no field are ignored.
func (b *Builder) Build(rows []map[string]any, group string) []resource.Draft {
	out := make([]resource.Draft, 0, len(rows))

	for _, row := range rows {
		out = append(out, b.Row(row, group))
	}

	return out
}

// Row converts one row.
func (b *Builder) Row(row map[string]any, group string) resource.Draft {
	root := b.flat.Root
	if root == nil {
		root = &schema.RelationshipConfig{}
	}

	d := resource.Draft{
		"type":                    root.Type,
		resource.RelationshipsKey: resource.Relationships{},
		resource.MarkerKey:        root.Clone(),
	}

	if root.HasGroup {
		d["group"] = group
	}

	for _, key := range resource.Keys(row) {
		path, ok := b.flat.PathOfField(key)
		if !ok {
			continue
		}

		b.assign(d, path, row[key])
	}

	return d
}

// assign walks path from the root, creating intermediate nodes, and stores
// the converted value at the leaf.
func (b *Builder) assign(d resource.Draft, path string, raw any) {
	field, ok := b.flat.Field(path)
	if !ok || field.DataType().IsObject() {
		return
	}

	segments := strings.Split(path, ".")
	parent := map[string]any(d)

	for i := range segments[:len(segments)-1] {
		parent = b.child(parent, strings.Join(segments[:i+1], "."), segments[i])
	}

	value, present := convert.Value(field, raw)
	if !present {
		return
	}

	parent[segments[len(segments)-1]] = value

	for _, name := range primaryCoordinateFields {
		if strings.Contains(path, name) {
			parent[isPrimaryKey] = true
		}
	}

	if path == scientificNameDetailsPath {
		parent[scientificNameSourceKey] = scientificNameCustom
	}
}

// child returns the node for an intermediate path, creating it when missing.
// An object array node is a one-element array and element 0 is reused.
func (b *Builder) child(parent map[string]any, path, name string) map[string]any {
	isArray := b.flat.DataType(path) == schema.TypeObjectArray

	if isArray {
		if arr, ok := resource.AsArray(parent[name]); ok && len(arr) > 0 {
			if obj, ok := resource.AsObject(arr[0]); ok {
				return obj
			}
		}
	} else if obj, ok := resource.AsObject(parent[name]); ok {
		return obj
	}

	node := map[string]any{}
	if rc := b.flat.Relationship(path); rc != nil {
		node[resource.MarkerKey] = rc.Clone()
	}

	if isArray {
		parent[name] = []any{node}
	} else {
		parent[name] = node
	}

	return node
}
