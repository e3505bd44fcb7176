// Package schema describes the attributes of importable entities and how
// relationship-valued attributes are resolved against the backend.
//
// A schema file is YAML keyed by entity name. Each entity carries a root
// relationshipConfig and a tree of field descriptors:
//
//	material-sample:
//	  relationshipConfig:
//	    type: material-sample
//	    hasGroup: true
//	    baseApiPath: /collection-api
//	  materialSampleName: { dataType: string }
//	  collection:
//	    dataType: object
//	    relationshipConfig:
//	      type: collection
//	      hasGroup: true
//	      linkOrCreateSetting: LINK_OR_CREATE
//	      baseApiPath: /collection-api
//	    attributes:
//	      name: { dataType: string }
//
// # Field descriptors
//
// Field is a closed sum type. Leaf variants (Primitive, Vocabulary,
// ManagedAttributes, Enum) never carry children; only Object does, either as
// a single nested object or as an object array.
//
// # Flattening
//
// Flatten turns an Entity into a Flat lookup keyed by dotted path, e.g.
// "collectingEvent.collectors.displayName". Intermediate object paths are
// included, so callers can ask for the relationship settings of
// "collectingEvent.collectors" as well as the data type of its leaves.
package schema
