package schema

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	yaml := `
sample:
  relationshipConfig:
    type: material-sample
    hasGroup: true
    baseApiPath: /collection-api
  name: string
  count: { dataType: number }
  kind:
    dataType: vocabulary
    vocabularyEndpoint: /collection-api/vocabulary/kind
  sex:
    dataType: enum
    allowedValues:
      - { value: MALE, label: Male }
      - { value: FEMALE, label: Female }
  collection:
    dataType: object
    relationshipConfig:
      type: collection
      hasGroup: true
      linkOrCreateSetting: link_or_create
      baseApiPath: /collection-api
      queryFields: [name]
    attributes:
      name: string
      code: string
  people:
    dataType: object[]
    attributes:
      displayName: string
`

	s, err := Parse([]byte(yaml))
	require.NoError(t, err)

	e, ok := s.Entity("sample")
	require.True(t, ok)

	assert.Equal(t, "sample", e.Name)
	require.NotNil(t, e.Relationship)
	assert.Equal(t, "material-sample", e.Relationship.Type)
	assert.True(t, e.Relationship.HasGroup)
	assert.Equal(t, SettingNone, e.Relationship.LinkOrCreateSetting)

	assert.Equal(t, []string{"name", "count", "kind", "sex", "collection", "people"}, e.Keys())

	assert.Equal(t, &Primitive{Type: TypeString}, e.Attributes["name"])
	assert.Equal(t, &Primitive{Type: TypeNumber}, e.Attributes["count"])
	assert.Equal(t, &Vocabulary{Endpoint: "/collection-api/vocabulary/kind"}, e.Attributes["kind"])

	sex, ok := e.Attributes["sex"].(*Enum)
	require.True(t, ok)
	assert.Equal(t, []EnumValue{{Value: "MALE", Label: "Male"}, {Value: "FEMALE", Label: "Female"}}, sex.AllowedValues)

	coll, ok := e.Attributes["collection"].(*Object)
	require.True(t, ok)
	assert.False(t, coll.Array)
	assert.Equal(t, TypeObject, coll.DataType())
	assert.Equal(t, LinkOrCreate, coll.Relationship.LinkOrCreateSetting)
	assert.Equal(t, []string{"name"}, coll.Relationship.QueryFields)
	assert.Equal(t, "/collection-api/collection", coll.Relationship.ResourcePath())
	assert.Equal(t, []string{"name", "code"}, coll.Keys())

	people, ok := e.Attributes["people"].(*Object)
	require.True(t, ok)
	assert.True(t, people.Array)
	assert.Nil(t, people.Relationship)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown data type",
			yaml:    "e:\n  a: text\n",
			wantErr: `unknown data type "text"`,
		},
		{
			name:    "missing data type",
			yaml:    "e:\n  a: { vocabularyEndpoint: x }\n",
			wantErr: "missing dataType",
		},
		{
			name:    "leaf with attributes",
			yaml:    "e:\n  a:\n    dataType: string\n    attributes:\n      b: string\n",
			wantErr: ErrLeafAttributes.Error(),
		},
		{
			name:    "object without attributes",
			yaml:    "e:\n  a: { dataType: object }\n",
			wantErr: "needs an attributes mapping",
		},
		{
			name:    "object shorthand",
			yaml:    "e:\n  a: object[]\n",
			wantErr: "needs attributes",
		},
		{
			name:    "unknown setting",
			yaml:    "e:\n  a:\n    dataType: object\n    relationshipConfig: { type: x, linkOrCreateSetting: MAYBE }\n    attributes: { b: string }\n",
			wantErr: `unknown link or create setting "MAYBE"`,
		},
		{
			name:    "not a mapping",
			yaml:    "- a\n- b\n",
			wantErr: "expected mapping of entities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_DefaultsRootType(t *testing.T) {
	s, err := Parse([]byte("organism:\n  sex: string\n"))
	require.NoError(t, err)

	assert.Equal(t, "organism", s["organism"].Relationship.Type)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	src, err := Default()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, WriteFile(src, path))

	got, err := LoadFile(path)
	require.NoError(t, err)

	for _, name := range src.Names() {
		assert.Equal(t, Flatten(src[name]).Paths(), Flatten(got[name]).Paths(), name)
		assert.Equal(t, src[name].Keys(), got[name].Keys(), name)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read schema file")
}

func TestDefault(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{MaterialSample, Metadata}, s.Names())
	assert.True(t, Validate(s).IsValid(), "%v", Validate(s).Errors)

	flat := Flatten(s[MaterialSample])
	assert.Equal(t, TypeDate, flat.DataType("preparationDate"))
	assert.Equal(t, TypeString, flat.DataType("collectingEvent.collectors.displayName"))
	assert.Equal(t, LinkOrError, flat.Relationship("parentMaterialSample").LinkOrCreateSetting)
	assert.Equal(t, "agent-api/person", flat.Relationship("preparedBy").ResourcePath())
	assert.Equal(t, "/collection-api/material-sample", flat.Relationship("").ResourcePath())

	meta := Flatten(s[Metadata])
	assert.Equal(t, TypeEnum, meta.DataType("dcType"))
	assert.Equal(t, "/objectstore-api", meta.Root.BaseAPIPath)
}
