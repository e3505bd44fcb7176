package columnmap

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"workbook-loader/internal/common"
	"workbook-loader/internal/convert"
	"workbook-loader/internal/resource"
	"workbook-loader/internal/workbook"
)

// MapRelationshipThreshold is the unique value count from which a column is
// no longer offered for relationship mapping.
const MapRelationshipThreshold = 10

// Refs is a value mapping target: one record, or a list of records for array
// relationships. It encodes as a single {id,type} object or as an array.
type Refs struct {
	refs  []resource.Ref
	array bool
}

// One returns Refs holding a single record.
func One(ref resource.Ref) Refs {
	return Refs{refs: []resource.Ref{ref}}
}

// Many returns Refs holding a list of records.
func Many(refs ...resource.Ref) Refs {
	return Refs{refs: slices.Clone(refs), array: true}
}

// IsArray reports whether the mapping is a list.
func (r Refs) IsArray() bool { return r.array }

// IsZero reports whether the mapping holds nothing.
func (r Refs) IsZero() bool { return len(r.refs) == 0 }

// List returns the records.
func (r Refs) List() []resource.Ref { return r.refs }

// Data returns the value for a resource.Relationship: a Ref or a []Ref.
func (r Refs) Data() any {
	if r.array {
		return slices.Clone(r.refs)
	}

	if len(r.refs) == 0 {
		return nil
	}

	return r.refs[0]
}

// MarshalJSON implements json.Marshaler.
func (r Refs) MarshalJSON() ([]byte, error) {
	if r.array {
		if r.refs == nil {
			return []byte("[]"), nil
		}

		return json.Marshal(r.refs)
	}

	if len(r.refs) == 0 {
		return []byte("null"), nil
	}

	return json.Marshal(r.refs[0])
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Refs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*r = Refs{}
		return nil
	case len(data) > 0 && data[0] == '[':
		var refs []resource.Ref
		if err := json.Unmarshal(data, &refs); err != nil {
			return err
		}

		*r = Refs{refs: refs, array: true}

		return nil
	default:
		var ref resource.Ref
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}

		*r = One(ref)

		return nil
	}
}

// Entry is the mapping of one spreadsheet column.
type Entry struct {
	FieldPath          string `json:"fieldPath,omitempty"`
	OriginalColumnName string `json:"originalColumnName,omitempty"`
	ShowOnUI           bool   `json:"showOnUI"`
	MapRelationship    bool   `json:"mapRelationship"`
	NumOfUniqueValues  int    `json:"numOfUniqueValues"`
	// ValueMapping links a cell value, normalised by ValueKey, to records.
	ValueMapping map[string]Refs `json:"valueMapping"`
	// MultipleValueMappings holds values that matched several records.
	MultipleValueMappings map[string][]resource.Ref `json:"multipleValueMappings,omitempty"`
	// TargetKey is set for managed attribute columns.
	TargetKey *workbook.TargetKey `json:"targetKey,omitempty"`
}

// Lookup returns the value mapping for a cell value.
func (e *Entry) Lookup(value string) (Refs, bool) {
	if e == nil {
		return Refs{}, false
	}

	r, ok := e.ValueMapping[ValueKey(value)]

	return r, ok && !r.IsZero()
}

// ColumnMap is keyed by column header.
type ColumnMap map[string]*Entry

// ValueKey normalises a cell value for use as a ValueMapping key.
func ValueKey(v string) string {
	return workbook.ColumnKey(strings.TrimSpace(v))
}

// Columns returns the column headers in sorted order.
func (cm ColumnMap) Columns() []string {
	return slices.Sorted(maps.Keys(cm))
}

// ByFieldPath returns the entry mapped to path. When several columns map to
// the same path the first column in sorted order wins.
func (cm ColumnMap) ByFieldPath(path string) (*Entry, bool) {
	for _, col := range cm.Columns() {
		if e := cm[col]; e != nil && e.FieldPath == path {
			return e, true
		}
	}

	return nil, false
}

// Search returns the value mappings of the columns that map directly below
// fieldPath, keyed by their field path. It returns nil when there are none.
func (cm ColumnMap) Search(fieldPath string) map[string]map[string]Refs {
	var out map[string]map[string]Refs

	for _, col := range cm.Columns() {
		e := cm[col]
		if e == nil {
			continue
		}

		parent, ok := common.ParentPath(e.FieldPath)
		if !ok || parent != fieldPath {
			continue
		}

		if out == nil {
			out = map[string]map[string]Refs{}
		}

		if _, seen := out[e.FieldPath]; !seen {
			out[e.FieldPath] = e.ValueMapping
		}
	}

	return out
}

// AddNewValue records a freshly created record so later rows with the same
// values link to it instead of creating it again. node is the attribute map
// the record was created from.
func (cm ColumnMap) AddNewValue(fieldPath string, node map[string]any, ref resource.Ref) {
	for _, key := range resource.Keys(node) {
		e, ok := cm.ByFieldPath(fieldPath + "." + key)
		if !ok || e.NumOfUniqueValues >= MapRelationshipThreshold {
			continue
		}

		value, ok := scalarText(node[key])
		if !ok {
			continue
		}

		if e.ValueMapping == nil {
			e.ValueMapping = map[string]Refs{}
		}

		e.ValueMapping[ValueKey(value)] = One(ref)
	}
}

// scalarText renders a truthy scalar attribute value.
func scalarText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, strings.TrimSpace(x) != ""
	case bool:
		return "true", x
	case float64:
		return convert.FormatNumber(x), x != 0
	case int:
		return convert.FormatNumber(float64(x)), x != 0
	default:
		return "", false
	}
}
