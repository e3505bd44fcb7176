package columnmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbook-loader/internal/api"
	"workbook-loader/internal/resource"
	"workbook-loader/internal/schema"
	"workbook-loader/internal/schema/schematest"
	"workbook-loader/internal/workbook"
)

func TestRefs_JSON(t *testing.T) {
	one := One(resource.Ref{ID: "1", Type: "collection"})
	many := Many(resource.Ref{ID: "1", Type: "project"}, resource.Ref{ID: "2", Type: "project"})

	b, err := json.Marshal(map[string]Refs{"a": one, "b": many})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"a": {"id": "1", "type": "collection"},
		"b": [{"id": "1", "type": "project"}, {"id": "2", "type": "project"}]
	}`, string(b))

	var back map[string]Refs
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, one, back["a"])
	assert.Equal(t, many, back["b"])

	assert.Equal(t, resource.Ref{ID: "1", Type: "collection"}, one.Data())
	assert.Equal(t, many.List(), many.Data())
	assert.True(t, many.IsArray())
	assert.Nil(t, Refs{}.Data())
}

func TestValueKey(t *testing.T) {
	assert.Equal(t, "v1_2", ValueKey(" v1.2 "))
	assert.Equal(t, "plain", ValueKey("plain"))
}

func mockColumnMap() ColumnMap {
	return ColumnMap{
		"Object Name": {
			FieldPath:         "objectField.name",
			NumOfUniqueValues: 2,
			ValueMapping: map[string]Refs{
				"apple": One(resource.Ref{ID: "id-apple", Type: "object-field"}),
			},
		},
		"Object Age": {
			FieldPath:         "objectField.age",
			NumOfUniqueValues: 12,
			ValueMapping:      map[string]Refs{},
		},
		"City": {
			FieldPath:    "objectField.address.city",
			ValueMapping: map[string]Refs{},
		},
		"String": {
			FieldPath:    "stringField",
			ValueMapping: map[string]Refs{},
		},
	}
}

func TestColumnMap_Search(t *testing.T) {
	cm := mockColumnMap()

	got := cm.Search("objectField")
	assert.Equal(t, map[string]map[string]Refs{
		"objectField.name": {"apple": One(resource.Ref{ID: "id-apple", Type: "object-field"})},
		"objectField.age":  {},
	}, got)

	assert.Len(t, cm.Search("objectField.address"), 1)
	assert.Nil(t, cm.Search("objectArrayField"))
}

func TestColumnMap_ByFieldPath(t *testing.T) {
	cm := mockColumnMap()

	e, ok := cm.ByFieldPath("objectField.address.city")
	require.True(t, ok)
	assert.Same(t, cm["City"], e)

	_, ok = cm.ByFieldPath("nope")
	assert.False(t, ok)
}

func TestColumnMap_AddNewValue(t *testing.T) {
	cm := mockColumnMap()
	ref := resource.Ref{ID: "new", Type: "object-field"}

	cm.AddNewValue("objectField", map[string]any{
		"name":             " pear.v2 ",
		"age":              float64(3),
		"address":          map[string]any{"city": "Ottawa"},
		resource.MarkerKey: &schema.RelationshipConfig{},
	}, ref)

	name, _ := cm.ByFieldPath("objectField.name")
	assert.Equal(t, One(ref), name.ValueMapping["pear_v2"])
	assert.Contains(t, name.ValueMapping, "apple")

	// too many unique values
	age, _ := cm.ByFieldPath("objectField.age")
	assert.Empty(t, age.ValueMapping)

	// nested objects are not scalar
	city, _ := cm.ByFieldPath("objectField.address.city")
	assert.Empty(t, city.ValueMapping)

	refs, ok := name.Lookup("pear.v2")
	require.True(t, ok)
	assert.Equal(t, ref, refs.Data())
}

func TestBuild(t *testing.T) {
	flat := schematest.MockFlat(t)
	options := FieldOptions(flat)

	columns := []workbook.Column{
		{Header: "stringField"},
		{Header: "objectField.name"},
		{Header: "Legacy Barcode"},
		{Header: "Colour"},
		{Header: ""},
	}

	unique := workbook.UniqueValues{
		"stringField":      {"a": 1},
		"objectField_name": {"apple": 2, "pear": 1},
	}

	managed := []api.ManagedAttribute{{ID: "ma-1", Type: "managed-attribute", Key: "legacy_barcode", Name: "Legacy Barcode", VocabularyElementType: "STRING"}}

	cm, err := Build(columns, options, flat, unique, schema.MaterialSample, WithManagedAttributes(managed))
	require.NoError(t, err)
	require.Len(t, cm, 4)

	assert.Equal(t, &Entry{
		FieldPath:         "stringField",
		ShowOnUI:          true,
		NumOfUniqueValues: 1,
		ValueMapping:      map[string]Refs{},
	}, cm["stringField"])

	obj := cm["objectField.name"]
	assert.Equal(t, "objectField.name", obj.FieldPath)
	assert.Equal(t, 2, obj.NumOfUniqueValues)
	assert.True(t, obj.MapRelationship)

	ma := cm["Legacy Barcode"]
	assert.Equal(t, "managedAttributes", ma.FieldPath)
	assert.Equal(t, &workbook.TargetKey{Key: "legacy_barcode", VocabularyElementType: "STRING"}, ma.TargetKey)

	assert.Empty(t, cm["Colour"].FieldPath)

	fms := cm.FieldMaps(columns, false)
	assert.Equal(t, []workbook.FieldMap{
		{ColumnHeader: "stringField", TargetField: "stringField"},
		{ColumnHeader: "objectField.name", TargetField: "objectField.name"},
		{ColumnHeader: "Legacy Barcode", TargetField: "managedAttributes", TargetKey: ma.TargetKey},
		{ColumnHeader: "Colour"},
		{ColumnHeader: "", Skipped: true},
	}, fms)

	assert.True(t, cm.FieldMaps(columns, true)[3].Skipped)

	_, err = Build(columns, options, flat, unique, "nope")
	require.ErrorIs(t, err, ErrUnknownEntityType)
}

func TestBuild_ManyUniqueValues(t *testing.T) {
	flat := schematest.MockFlat(t)

	values := map[string]int{}
	for _, v := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		values[v] = 1
	}

	cm, err := Build(
		[]workbook.Column{{Header: "objectField.name"}},
		FieldOptions(flat), flat,
		workbook.UniqueValues{"objectField_name": values},
		schema.MaterialSample,
	)
	require.NoError(t, err)
	assert.False(t, cm["objectField.name"].MapRelationship)
}

func TestColumnMap_JSON(t *testing.T) {
	cm := mockColumnMap()

	b, err := json.Marshal(cm)
	require.NoError(t, err)

	var back ColumnMap
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, cm, back)
}
