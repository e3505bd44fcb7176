// Package resource models the draft JSON:API resources built from workbook rows.
//
// A Draft is a plain nested map. Nested objects are map[string]any and object
// arrays are []any, exactly as encoding/json produces them, so a draft
// survives a round trip through the session store unchanged.
package resource

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"workbook-loader/internal/common"
	"workbook-loader/internal/schema"
)

const (
	// MarkerKey holds the *schema.RelationshipConfig of a relationship node
	// until the linker resolves it.
	MarkerKey = "relationshipConfig"
	// RelationshipsKey holds the resolved Relationships of a node.
	RelationshipsKey = "relationships"
)

// Ref identifies a backend record.
type Ref struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// IsZero reports whether the ref points nowhere.
func (r Ref) IsZero() bool {
	return r.ID == "" && r.Type == ""
}

// Relationship is a resolved link. Data is a Ref or a []Ref.
type Relationship struct {
	Data any `json:"data"`
}

// Refs returns Data as a slice.
func (r Relationship) Refs() []Ref {
	switch v := r.Data.(type) {
	case Ref:
		return []Ref{v}
	case []Ref:
		return v
	default:
		return nil
	}
}

// Relationships maps an attribute name to its resolved link.
type Relationships map[string]Relationship

// Draft is a resource under construction.
type Draft map[string]any

// Type returns the JSON:API type, if stamped.
func (d Draft) Type() string {
	s, _ := d["type"].(string)
	return s
}

// ID returns the backend id, if any.
func (d Draft) ID() string {
	s, _ := d["id"].(string)
	return s
}

// Ref returns the id and type of the draft.
func (d Draft) Ref() Ref {
	return Ref{ID: d.ID(), Type: d.Type()}
}

// Marker returns the relationship config attached to the draft.
func (d Draft) Marker() (*schema.RelationshipConfig, bool) {
	return Marker(d)
}

// Relationships returns the draft's relationships, creating them if missing.
func (d Draft) Relationships() Relationships {
	return EnsureRelationships(d)
}

// Keys returns attribute names in sorted order.
func (d Draft) Keys() []string {
	return Keys(d)
}

// Clone returns a deep copy.
func (d Draft) Clone() Draft {
	return Draft(cloneMap(d))
}

// UnmarshalJSON decodes a draft and restores typed markers and relationships.
func (d *Draft) UnmarshalJSON(data []byte) error {
	var raw map[string]any

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	if err := revive(raw); err != nil {
		return err
	}

	*d = raw

	return nil
}

// revive walks decoded JSON, turning marker and relationships maps back into
// their typed form.
func revive(obj map[string]any) error {
	for k, v := range obj {
		switch {
		case k == MarkerKey:
			if _, ok := v.(map[string]any); !ok {
				continue
			}

			var rc schema.RelationshipConfig
			if err := remarshal(v, &rc); err != nil {
				return err
			}

			obj[k] = &rc
		case k == RelationshipsKey:
			rels, ok := v.(map[string]any)
			if !ok {
				continue
			}

			typed, err := reviveRelationships(rels)
			if err != nil {
				return err
			}

			obj[k] = typed
		default:
			if err := reviveValue(v); err != nil {
				return err
			}
		}
	}

	return nil
}

func reviveValue(v any) error {
	switch t := v.(type) {
	case map[string]any:
		return revive(t)
	case []any:
		for _, item := range t {
			if err := reviveValue(item); err != nil {
				return err
			}
		}
	}

	return nil
}

func reviveRelationships(raw map[string]any) (Relationships, error) {
	out := Relationships{}

	for k, v := range raw {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}

		switch data := entry["data"].(type) {
		case []any:
			var refs []Ref
			if err := remarshal(data, &refs); err != nil {
				return nil, err
			}

			out[k] = Relationship{Data: refs}
		case map[string]any:
			var ref Ref
			if err := remarshal(data, &ref); err != nil {
				return nil, err
			}

			out[k] = Relationship{Data: ref}
		}
	}

	return out, nil
}

func remarshal(in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, out)
}

// Marker returns the relationship config attached to an object node.
func Marker(v any) (*schema.RelationshipConfig, bool) {
	obj, ok := AsObject(v)
	if !ok {
		return nil, false
	}

	rc, ok := obj[MarkerKey].(*schema.RelationshipConfig)

	return rc, ok && rc != nil
}

// HasMarker reports whether v is an object node carrying a marker.
func HasMarker(v any) bool {
	_, ok := Marker(v)
	return ok
}

// EnsureRelationships returns obj's relationships, creating them if missing.
func EnsureRelationships(obj map[string]any) Relationships {
	if rels, ok := obj[RelationshipsKey].(Relationships); ok {
		return rels
	}

	rels := Relationships{}
	obj[RelationshipsKey] = rels

	return rels
}

// AsObject returns v as a map when it is an object node.
func AsObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case Draft:
		return t, t != nil
	case map[string]any:
		return t, t != nil
	default:
		return nil, false
	}
}

// IsObject reports whether v is an object node.
func IsObject(v any) bool {
	_, ok := AsObject(v)
	return ok
}

// AsArray returns v as a slice when it is an array of any kind produced by
// the builder or by JSON decoding.
func AsArray(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []map[string]any:
		return toAny(t), true
	case []Draft:
		return toAny(t), true
	case []string:
		return toAny(t), true
	case []float64:
		return toAny(t), true
	case []bool:
		return toAny(t), true
	default:
		return nil, false
	}
}

func toAny[S ~[]E, E any](s S) []any {
	return common.Map(s, func(e E) any { return e })
}

// Keys returns the keys of obj in sorted order.
func Keys(obj map[string]any) []string {
	return slices.Sorted(maps.Keys(obj))
}

// IsEmptyValue reports whether v carries no data: nil, blank text, an array
// of empty values, or an object whose keys other than the marker are empty.
func IsEmptyValue(v any) bool {
	if v == nil {
		return true
	}

	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}

	if arr, ok := AsArray(v); ok {
		return !slices.ContainsFunc(arr, func(item any) bool { return !IsEmptyValue(item) })
	}

	if obj, ok := AsObject(v); ok {
		for k, item := range obj {
			if k != MarkerKey && !IsEmptyValue(item) {
				return false
			}
		}

		return true
	}

	switch t := v.(type) {
	case Relationships:
		return len(t) == 0
	case *schema.RelationshipConfig:
		return t == nil
	}

	return false
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Draft:
		return Draft(cloneMap(t))
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}

		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i := range t {
			out[i] = cloneMap(t[i])
		}

		return out
	case []string:
		return slices.Clone(t)
	case []float64:
		return slices.Clone(t)
	case []bool:
		return slices.Clone(t)
	case *schema.RelationshipConfig:
		return t.Clone()
	case Relationships:
		out := make(Relationships, len(t))
		for k, r := range t {
			if refs, ok := r.Data.([]Ref); ok {
				r.Data = slices.Clone(refs)
			}

			out[k] = r
		}

		return out
	default:
		return v
	}
}
