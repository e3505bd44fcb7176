package handler

import (
	"context"
	"fmt"
	"strings"

	"workbook-loader/internal/columnmap"
	"workbook-loader/internal/common"
	"workbook-loader/internal/resource"
	"workbook-loader/internal/schema"
)

const (
	nameKey        = "materialSampleName"
	parentKey      = "parentMaterialSample"
	parentNamePath = parentKey + "." + nameKey
)

// MaterialSample resolves same-name parents and, when appending, same-name
// existing samples before linking.
type MaterialSample struct{}

// ProcessResource implements Handler.
func (MaterialSample) ProcessResource(ctx context.Context, sc *SaveContext) (Result, error) {
	sc.Resource[SourceSetKey] = sc.SourceSet

	if sc.Selection == nil {
		sc.Selection = &Selection{}
	}

	if pause := checkParent(sc); pause {
		return Result{ShouldPause: true}, nil
	}

	if sc.AppendData {
		pause, err := appendExisting(ctx, sc)
		if err != nil {
			return Result{}, err
		}

		if pause {
			return Result{ShouldPause: true}, nil
		}
	}

	return Result{}, linkAll(ctx, sc)
}

// checkParent applies a user-selected parent, or records the candidates when
// the parent name matched several samples.
func checkParent(sc *SaveContext) bool {
	parent, ok := resource.AsObject(sc.Resource[parentKey])
	if !ok {
		return false
	}

	name, _ := parent[nameKey].(string)
	if strings.TrimSpace(name) == "" {
		return false
	}

	entry, ok := sc.ColumnMap.ByFieldPath(parentNamePath)
	if !ok {
		return false
	}

	if sc.Selection.Parent != nil {
		if entry.ValueMapping == nil {
			entry.ValueMapping = map[string]columnmap.Refs{}
		}

		entry.ValueMapping[columnmap.ValueKey(name)] = columnmap.One(sc.Selection.Parent.Ref())
		sc.Selection.Parent = nil
		sc.Selection.ParentCandidates = nil

		return false
	}

	refs := entry.MultipleValueMappings[name]
	if !common.IsMultiple(refs) {
		return false
	}

	candidates := make([]resource.Draft, 0, len(refs))
	for _, ref := range refs {
		candidates = append(candidates, resource.Draft{"id": ref.ID, "type": ref.Type, nameKey: name})
	}

	sc.Selection.ParentCandidates = candidates

	return true
}

// appendExisting turns the resource into an update of the existing sample
// with the same name. It reports whether the user has to choose first.
func appendExisting(ctx context.Context, sc *SaveContext) (bool, error) {
	existing := sc.Selection.Existing

	if existing != nil {
		sc.Selection.Existing = nil
		sc.Selection.ExistingCandidates = nil
	} else {
		name, _ := sc.Resource[nameKey].(string)
		if strings.TrimSpace(name) == "" {
			return false, nil
		}

		path := strings.TrimSuffix(sc.APIBaseURL, "/") + "/" + schema.MaterialSample

		found, err := sc.Backend.Get(ctx, path, map[string]string{nameKey: name})
		if err != nil {
			return false, fmt.Errorf("failed to look up %s %q: %w", schema.MaterialSample, name, err)
		}

		switch {
		case common.IsEmpty(found):
			return false, nil
		case common.IsSingle(found):
			existing = found[0]
		default:
			sc.Selection.ExistingCandidates = found
			return true, nil
		}
	}

	sc.Resource["id"] = existing.ID()
	sc.Selection.Updated++

	appendArrays(sc.Resource, existing)

	return false, nil
}

// appendArrays puts existing array values after the new ones, for plain
// array attributes and for array relationships.
func appendArrays(res, existing resource.Draft) {
	for _, key := range res.Keys() {
		if key == resource.RelationshipsKey {
			continue
		}

		added, ok := resource.AsArray(res[key])
		if !ok {
			continue
		}

		if prior, ok := resource.AsArray(existing[key]); ok {
			res[key] = append(added, prior...)
		}
	}

	rels, ok := res[resource.RelationshipsKey].(resource.Relationships)
	if !ok {
		return
	}

	for key, rel := range rels {
		added, ok := rel.Data.([]resource.Ref)
		if !ok {
			continue
		}

		prior := existingRefs(existing, key)
		if len(prior) == 0 {
			continue
		}

		rels[key] = resource.Relationship{Data: append(added, prior...)}
	}
}

// existingRefs reads the refs of key from an existing record's attribute or
// from its relationships.
func existingRefs(existing resource.Draft, key string) []resource.Ref {
	if arr, ok := resource.AsArray(existing[key]); ok {
		var refs []resource.Ref

		for _, item := range arr {
			obj, ok := resource.AsObject(item)
			if !ok {
				continue
			}

			ref := resource.Draft(obj).Ref()
			if !ref.IsZero() {
				refs = append(refs, ref)
			}
		}

		return refs
	}

	if rels, ok := existing[resource.RelationshipsKey].(resource.Relationships); ok {
		return rels[key].Refs()
	}

	return nil
}
