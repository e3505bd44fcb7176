// Package pipeline chains the workbook stages used by every CLI command:
// clean the sheet, map its columns, validate, and build draft resources.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"workbook-loader/internal/api"
	"workbook-loader/internal/builder"
	"workbook-loader/internal/columnmap"
	"workbook-loader/internal/diagnostic"
	"workbook-loader/internal/resource"
	"workbook-loader/internal/schema"
	"workbook-loader/internal/workbook"
)

// ErrInvalid is returned by Convert when validation reported errors.
var ErrInvalid = errors.New("workbook has validation errors")

// Catalog serves the backend lists a workbook is checked against.
// *api.Client implements it.
type Catalog interface {
	Vocabulary(ctx context.Context, endpoint string) ([]string, error)
	ManagedAttributes(ctx context.Context, endpoint string) ([]api.ManagedAttribute, error)
}

// Options selects what Map works on.
type Options struct {
	Sheet int
	// Entity is the entity type; empty means detect it from the headers.
	Entity       string
	Group        string
	Schema       schema.Schema
	SkipUnmapped bool
	// Catalog is optional. Without it vocabulary and managed attribute
	// values are not checked.
	Catalog Catalog
}

// Result carries the output of each stage.
type Result struct {
	Workbook  workbook.Workbook
	Sheet     int
	Entity    string
	Flat      *schema.Flat
	Columns   []workbook.Column
	Intact    bool
	Options   columnmap.Options
	ColumnMap columnmap.ColumnMap
	FieldMaps []workbook.FieldMap
	Lookups   columnmap.Lookups

	Rows        []map[string]any
	Drafts      []resource.Draft
	Diagnostics *diagnostic.Diagnostics
}

// Map cleans the sheet and builds its column map.
func Map(ctx context.Context, wb workbook.Workbook, opts Options) (*Result, error) {
	wb = workbook.RemoveEmptyColumns(workbook.TrimSpace(wb))

	if _, err := wb.Sheet(opts.Sheet); err != nil {
		return nil, err
	}

	entityType := opts.Entity
	if entityType == "" {
		entityType = workbook.DetectEntityType(wb, opts.Sheet)
	}

	s := opts.Schema
	if s == nil {
		var err error
		if s, err = schema.Default(); err != nil {
			return nil, err
		}
	}

	entity, ok := s.Entity(entityType)
	if !ok {
		return nil, fmt.Errorf("unknown entity type %q", entityType)
	}

	r := &Result{
		Workbook:    wb,
		Sheet:       opts.Sheet,
		Entity:      entityType,
		Flat:        schema.Flatten(entity),
		Columns:     workbook.ColumnHeaders(wb, opts.Sheet),
		Diagnostics: &diagnostic.Diagnostics{},
	}
	r.Intact = workbook.ValidateTemplateIntegrity(r.Columns)
	r.Options = columnmap.FieldOptions(r.Flat)

	lookups, err := loadLookups(ctx, r.Flat, opts.Catalog)
	if err != nil {
		return nil, err
	}

	r.Lookups = lookups

	var managed []api.ManagedAttribute
	for _, path := range slices.Sorted(maps.Keys(lookups.ManagedAttributes)) {
		managed = append(managed, lookups.ManagedAttributes[path]...)
	}

	unique := workbook.CountUniqueValues(wb)[opts.Sheet]

	r.ColumnMap, err = columnmap.Build(r.Columns, r.Options, r.Flat, unique, entityType,
		columnmap.WithManagedAttributes(managed))
	if err != nil {
		return nil, fmt.Errorf("failed to map columns: %w", err)
	}

	r.FieldMaps = r.ColumnMap.FieldMaps(r.Columns, opts.SkipUnmapped)

	return r, nil
}

// Convert validates the mapped sheet and builds one draft per row. Drafts
// are only built when validation found no errors.
func (r *Result) Convert(group string) error {
	r.Diagnostics.Merge(columnmap.ValidateFieldMaps(r.FieldMaps, r.Flat))

	rows, err := workbook.DataFromWorkbook(r.Workbook, r.Sheet, r.FieldMaps, true)
	if err != nil {
		return err
	}

	r.Rows = rows
	r.Diagnostics.Merge(columnmap.ValidateData(r.Sheet, rows, r.Flat, r.Lookups))

	if r.Diagnostics.HasErrors() {
		return fmt.Errorf("%w: %w", ErrInvalid, r.Diagnostics.Err())
	}

	r.Drafts = builder.New(r.Flat).Build(rows, group)

	return nil
}

// Run is Map followed by Convert.
func Run(ctx context.Context, wb workbook.Workbook, opts Options) (*Result, error) {
	r, err := Map(ctx, wb, opts)
	if err != nil {
		return nil, err
	}

	return r, r.Convert(opts.Group)
}

// Target returns the type and API base path drafts are saved under.
func (r *Result) Target() (string, string) {
	if r.Flat.Root == nil {
		return r.Entity, ""
	}

	return r.Flat.Root.Type, r.Flat.Root.BaseAPIPath
}

func loadLookups(ctx context.Context, flat *schema.Flat, catalog Catalog) (columnmap.Lookups, error) {
	lookups := columnmap.Lookups{
		Vocabulary:        map[string][]string{},
		ManagedAttributes: map[string][]api.ManagedAttribute{},
	}

	if catalog == nil {
		return lookups, nil
	}

	vocab := map[string][]string{}
	managed := map[string][]api.ManagedAttribute{}

	for _, path := range flat.DeclaredPaths() {
		field, _ := flat.Field(path)

		switch f := field.(type) {
		case *schema.Vocabulary:
			if f.Endpoint == "" {
				continue
			}

			values, ok := vocab[f.Endpoint]
			if !ok {
				var err error
				if values, err = catalog.Vocabulary(ctx, f.Endpoint); err != nil {
					return lookups, fmt.Errorf("failed to load vocabulary for %s: %w", path, err)
				}

				vocab[f.Endpoint] = values
			}

			lookups.Vocabulary[path] = values
		case *schema.ManagedAttributes:
			if f.Endpoint == "" {
				continue
			}

			attrs, ok := managed[f.Endpoint]
			if !ok {
				var err error
				if attrs, err = catalog.ManagedAttributes(ctx, f.Endpoint); err != nil {
					return lookups, fmt.Errorf("failed to load managed attributes for %s: %w", path, err)
				}

				managed[f.Endpoint] = attrs
			}

			lookups.ManagedAttributes[path] = attrs
		}
	}

	return lookups, nil
}
