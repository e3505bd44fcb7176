package linker

import (
	"errors"
	"slices"

	"workbook-loader/internal/resource"
	"workbook-loader/internal/schema"
)

// ErrStorageUnitRequired is returned when a storage unit usage has no
// resolved storage unit.
var ErrStorageUnitRequired = errors.New("storage unit is required for a storage unit usage")

// Hook runs on a relationship node after its children are linked and before
// it is created. parentType is the type of the node holding attribute.
type Hook func(parentType, attribute string, node map[string]any) error

// StorageUnitUsage requires the storage unit usage of a material sample to
// point at a storage unit and supplies its usage type.
func StorageUnitUsage(parentType, attribute string, node map[string]any) error {
	if parentType != schema.MaterialSample || attribute != "storageUnitUsage" {
		return nil
	}

	rels, _ := node[resource.RelationshipsKey].(resource.Relationships)

	hasUnit := slices.ContainsFunc(rels["storageUnit"].Refs(), func(r resource.Ref) bool {
		return r.ID != ""
	})
	if !hasUnit {
		return ErrStorageUnitRequired
	}

	node["usageType"] = schema.MaterialSample

	return nil
}
