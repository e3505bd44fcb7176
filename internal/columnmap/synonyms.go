package columnmap

import (
	"errors"
	"fmt"

	"workbook-loader/internal/schema"
)

// ErrUnknownEntityType is returned for entity types without a synonym table.
var ErrUnknownEntityType = errors.New("unknown entity type")

// Keys are lower-cased headers or header prefixes ending in '.'.
var synonymsByType = map[string]map[string]string{
	schema.MaterialSample: {
		"parent.":                  "parentMaterialSample.",
		"parent id":                "parentMaterialSample.materialSampleName",
		"parent":                   "parentMaterialSample.materialSampleName",
		"parent material sample":   "parentMaterialSample.materialSampleName",
		"preparationmethod":        "preparationMethod.name",
		"preparation method":       "preparationMethod.name",
		"identifier":               "materialSampleName",
		"type":                     "materialSampleType",
		"collection":               "collection.name",
		"collections":              "collection.name",
		"storage unit":             "storageUnitUsage.storageUnit.name",
		"storage":                  "storageUnitUsage.storageUnit.name",
		"storageunit":              "storageUnitUsage.storageUnit.name",
		"project":                  "projects.name",
		"projects":                 "projects.name",
		"preparation type":         "preparationType.name",
		"preparationtype":          "preparationType.name",
		"prepared by":              "preparedBy.displayName",
		"preparedby":               "preparedBy.displayName",
		"preparationprotocol":      "preparationProtocol.name",
		"preparation protocol":     "preparationProtocol.name",
		"assemblage":               "assemblages.name",
		"assemblages":              "assemblages.name",
		"collectors":               "collectingEvent.collectors.displayName",
		"collector":                "collectingEvent.collectors.displayName",
		"attachment":               "attachment.name",
		"attachments":              "attachment.name",
		"hostorganism":             "hostOrganism.name",
		"host organism":            "hostOrganism.name",
		"hostremarks":              "hostOrganism.remarks",
		"host remarks":             "hostOrganism.remarks",
		"collector's number":       "collectingEvent.dwcRecordNumber",
		"collector number":         "collectingEvent.dwcRecordNumber",
		"well column":              "storageUnitUsage.wellColumn",
		"well row":                 "storageUnitUsage.wellRow",
		"decimal latitude":         "collectingEvent.geoReferenceAssertions.dwcDecimalLatitude",
		"decimal longitude":        "collectingEvent.geoReferenceAssertions.dwcDecimalLongitude",
		"latitude":                 "collectingEvent.geoReferenceAssertions.dwcDecimalLatitude",
		"longitude":                "collectingEvent.geoReferenceAssertions.dwcDecimalLongitude",
		"collecting event remarks": "collectingEvent.remarks",
	},
	schema.Metadata: {
		"file name":                     "fileName",
		"original filename":             "originalFilename",
		"original file name":            "originalFilename",
		"date original version created": "",
		"caption":                       "acCaption",
		"stored object type":            "dcType",
		"object type":                   "dcType",
		"type":                          "dcType",
		"subtype":                       "acSubtype",
		"object subtype":                "acSubtype",
		"digitalized by":                "dcCreator.displayName",
	},
}

// Synonyms returns the synonym table of an entity type.
func Synonyms(entityType string) (map[string]string, error) {
	m, ok := synonymsByType[entityType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntityType, entityType)
	}

	return m, nil
}

func lookup(synonyms map[string]string, key string) string {
	if v, ok := synonyms[key]; ok {
		return v
	}

	return key
}
