// Package schematest provides a small entity definition shared by tests of
// the packages that consume schemas.
package schematest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"workbook-loader/internal/schema"
)

// MockEntityName is the entity declared by MockYAML.
const MockEntityName = "mockEntity"

// MockYAML exercises every data type plus nested, linked and created objects.
const MockYAML = `
mockEntity:
  relationshipConfig:
    type: mock-entity
    hasGroup: true
    baseApiPath: fake-api
  stringField: string
  numberField: number
  booleanField: boolean
  stringArrayField: string[]
  numberArrayField: number[]
  mapField: managedAttributes
  vocabularyField:
    dataType: vocabulary
    vocabularyEndpoint: vocabulary endpoint
  objectField:
    dataType: object
    relationshipConfig:
      linkOrCreateSetting: LINK_OR_CREATE
      type: object-field
      baseApiPath: fake-api
      queryFields: [name]
      hasGroup: true
    attributes:
      name: string
      age: number
      address:
        dataType: object
        relationshipConfig:
          linkOrCreateSetting: CREATE
          type: address
          baseApiPath: fake-api
          hasGroup: true
        attributes:
          addressLine1: string
          city: string
          province: string
          postalCode: string
      contact:
        dataType: object
        attributes:
          name: string
          telephone: string
          email: string
  objectArrayField:
    dataType: object[]
    relationshipConfig:
      linkOrCreateSetting: LINK_OR_CREATE
      type: object-array
      baseApiPath: fake-api
      queryFields: [name]
      hasGroup: true
    attributes:
      name: string
      age: number
      collector:
        dataType: object
        attributes:
          name: string
          age: number
`

// Mock parses MockYAML and returns its only entity.
func Mock(t testing.TB) *schema.Entity {
	t.Helper()

	s, err := schema.Parse([]byte(MockYAML))
	require.NoError(t, err)

	e, ok := s.Entity(MockEntityName)
	require.True(t, ok)

	return e
}

// MockFlat returns the flattened mock entity.
func MockFlat(t testing.TB) *schema.Flat {
	t.Helper()

	return schema.Flatten(Mock(t))
}
