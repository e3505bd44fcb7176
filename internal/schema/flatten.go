package schema

import (
	"maps"
	"slices"
	"strings"

	"workbook-loader/internal/common"
)

// Flat is an entity flattened to dotted paths. It holds every leaf and every
// intermediate object node, plus the root relationship config.
type Flat struct {
	Entity string
	Root   *RelationshipConfig

	fields map[string]Field
	// order is the depth-first declaration order of paths.
	order []string
}

// Flatten walks the entity tree. Relationship targets are descriptors, not
// references, so the walk always terminates.
func Flatten(e *Entity) *Flat {
	f := &Flat{
		Entity: e.Name,
		Root:   e.Relationship.Clone(),
		fields: map[string]Field{},
	}

	f.walk("", &e.Object)

	return f
}

func (f *Flat) walk(prefix string, o *Object) {
	for _, k := range o.Keys() {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}

		child := o.Attributes[k]
		f.fields[path] = child
		f.order = append(f.order, path)

		if obj, ok := child.(*Object); ok {
			f.walk(path, obj)
		}
	}
}

// Field returns the descriptor at path.
func (f *Flat) Field(path string) (Field, bool) {
	field, ok := f.fields[path]
	return field, ok
}

// Has reports whether path is known.
func (f *Flat) Has(path string) bool {
	_, ok := f.fields[path]
	return ok
}

// DataType returns the declared type at path, or zero when unknown.
func (f *Flat) DataType(path string) DataType {
	if field, ok := f.fields[path]; ok {
		return field.DataType()
	}

	return 0
}

// Relationship returns the relationship config of the object at path.
// The empty path names the root.
func (f *Flat) Relationship(path string) *RelationshipConfig {
	if path == "" {
		return f.Root
	}

	if obj, ok := f.fields[path].(*Object); ok {
		return obj.Relationship
	}

	return nil
}

// PathOfField resolves a bare workbook field name to its full path: the first
// path, in declaration order, that is the name itself or ends with "."+name.
// Dotted names are returned as they are.
func (f *Flat) PathOfField(name string) (string, bool) {
	if strings.Contains(name, ".") {
		return name, f.Has(name)
	}

	for _, p := range f.order {
		if p == name || strings.HasSuffix(p, "."+name) {
			return p, true
		}
	}

	return "", false
}

// IsLinkableRelationshipField reports whether the parent of path is a
// relationship node that looks up existing records.
func (f *Flat) IsLinkableRelationshipField(path string) bool {
	parent, ok := common.ParentPath(path)
	if !ok {
		return false
	}

	rc := f.Relationship(parent)

	return rc != nil && rc.LinkOrCreateSetting.Links()
}

// Paths returns every known path in sorted order.
func (f *Flat) Paths() []string {
	return slices.Sorted(maps.Keys(f.fields))
}

// DeclaredPaths returns every known path in declaration order.
func (f *Flat) DeclaredPaths() []string {
	return slices.Clone(f.order)
}

// ParentPath returns the path without its last segment, "" for top-level paths.
func (f *Flat) ParentPath(path string) string {
	parent, _ := common.ParentPath(path)
	return parent
}

// Len returns the number of paths.
func (f *Flat) Len() int {
	return len(f.fields)
}
