package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"workbook-loader/internal/resource"
)

type resourceObject struct {
	ID            string                     `json:"id,omitempty"`
	Type          string                     `json:"type"`
	Attributes    map[string]any             `json:"attributes,omitempty"`
	Relationships map[string]relationshipDoc `json:"relationships,omitempty"`
}

type relationshipDoc struct {
	Data json.RawMessage `json:"data"`
}

type errorObject struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type document struct {
	Data   json.RawMessage `json:"data"`
	Errors []errorObject   `json:"errors"`
}

type operation struct {
	Op    string         `json:"op"`
	Path  string         `json:"path"`
	Value resourceObject `json:"value"`
}

type operationResult struct {
	Data   *resourceObject `json:"data"`
	Status int             `json:"status"`
	Errors []errorObject   `json:"errors"`
}

// decodeData reads a single resource or a collection.
func decodeData(raw json.RawMessage) ([]resource.Draft, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var objs []resourceObject

	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &objs); err != nil {
			return nil, fmt.Errorf("failed to decode resource collection: %w", err)
		}
	} else {
		var obj resourceObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("failed to decode resource: %w", err)
		}

		objs = []resourceObject{obj}
	}

	out := make([]resource.Draft, 0, len(objs))

	for _, obj := range objs {
		d, err := obj.draft()
		if err != nil {
			return nil, err
		}

		out = append(out, d)
	}

	return out, nil
}

func (o resourceObject) draft() (resource.Draft, error) {
	d := resource.Draft{}

	for k, v := range o.Attributes {
		d[k] = v
	}

	d["id"] = o.ID
	d["type"] = o.Type

	if len(o.Relationships) == 0 {
		return d, nil
	}

	rels := resource.Relationships{}

	for name, rel := range o.Relationships {
		data, ok, err := decodeLinkage(rel.Data)
		if err != nil {
			return nil, fmt.Errorf("relationship %q: %w", name, err)
		}

		if ok {
			rels[name] = resource.Relationship{Data: data}
		}
	}

	d[resource.RelationshipsKey] = rels

	return d, nil
}

func decodeLinkage(raw json.RawMessage) (any, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false, nil
	}

	if raw[0] == '[' {
		var refs []resource.Ref
		if err := json.Unmarshal(raw, &refs); err != nil {
			return nil, false, err
		}

		return refs, true, nil
	}

	var ref resource.Ref
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, false, err
	}

	return ref, true, nil
}

// encodeResource splits a draft into a JSON:API resource object.
func encodeResource(d resource.Draft, typ string) (resourceObject, error) {
	obj := resourceObject{ID: d.ID(), Type: typ, Attributes: map[string]any{}}
	if obj.Type == "" {
		obj.Type = d.Type()
	}

	for _, k := range d.Keys() {
		switch k {
		case "id", "type", resource.MarkerKey:
		case resource.RelationshipsKey:
			rels, ok := d[k].(resource.Relationships)
			if !ok {
				continue
			}

			obj.Relationships = map[string]relationshipDoc{}

			for name, rel := range rels {
				data, err := json.Marshal(rel.Data)
				if err != nil {
					return resourceObject{}, fmt.Errorf("relationship %q: %w", name, err)
				}

				obj.Relationships[name] = relationshipDoc{Data: data}
			}
		default:
			obj.Attributes[k] = d[k]
		}
	}

	return obj, nil
}

func details(errs []errorObject) []string {
	out := make([]string, 0, len(errs))

	for _, e := range errs {
		switch {
		case e.Detail != "":
			out = append(out, e.Detail)
		case e.Title != "":
			out = append(out, e.Title)
		}
	}

	return out
}
