package columnmap

import (
	"strings"

	"workbook-loader/internal/api"
	"workbook-loader/internal/schema"
	"workbook-loader/internal/workbook"
)

const (
	managedAttributesPath = "managedAttributes"
	parentSamplePrefix    = "parentMaterialSample."
)

// BuildOption configures Build.
type BuildOption func(*builder)

type builder struct {
	managed []api.ManagedAttribute
}

// WithManagedAttributes lets columns named after a managed attribute map to
// the entity's managed attributes field.
func WithManagedAttributes(attrs []api.ManagedAttribute) BuildOption {
	return func(b *builder) {
		b.managed = attrs
	}
}

// Build creates one entry per column.
func Build(
	columns []workbook.Column,
	options Options,
	flat *schema.Flat,
	unique workbook.UniqueValues,
	entityType string,
	opts ...BuildOption,
) (ColumnMap, error) {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}

	synonyms, err := Synonyms(entityType)
	if err != nil {
		return nil, err
	}

	plain := options.Flatten()
	cm := ColumnMap{}

	for _, col := range columns {
		if col.Header == "" && col.Original == "" {
			continue
		}

		fieldPath, _ := matchOption(normalizeColumn(col, synonyms), plain, synonyms)

		e := &Entry{
			FieldPath:          fieldPath,
			OriginalColumnName: col.Original,
			ShowOnUI:           true,
			NumOfUniqueValues:  unique.Count(col.Name()),
			ValueMapping:       map[string]Refs{},
		}

		ma, isManaged := b.managedAttribute(col.Header)

		switch {
		case isManaged && (fieldPath == "" || fieldPath == managedAttributesPath):
			e.FieldPath = managedAttributesPath
			e.TargetKey = &workbook.TargetKey{Key: ma.Key, VocabularyElementType: ma.VocabularyElementType}
		case strings.HasPrefix(fieldPath, parentSamplePrefix):
			e.ShowOnUI = false
			e.MapRelationship = true
		case fieldPath != "":
			e.MapRelationship = flat.IsLinkableRelationshipField(fieldPath) &&
				e.NumOfUniqueValues < MapRelationshipThreshold
		}

		cm[col.Header] = e
	}

	return cm, nil
}

func (b *builder) managedAttribute(header string) (api.ManagedAttribute, bool) {
	h := strings.ToLower(strings.TrimSpace(header))

	for _, ma := range b.managed {
		if strings.ToLower(strings.TrimSpace(ma.Name)) == h || strings.ToLower(ma.Key) == h {
			return ma, true
		}
	}

	return api.ManagedAttribute{}, false
}

// FieldMaps lays the column map out positionally for DataFromWorkbook.
// Columns without a field path are skipped when skipUnmapped is set and left
// unmapped otherwise, which ValidateFieldMaps reports.
func (cm ColumnMap) FieldMaps(columns []workbook.Column, skipUnmapped bool) []workbook.FieldMap {
	out := make([]workbook.FieldMap, len(columns))

	for i, col := range columns {
		fm := workbook.FieldMap{ColumnHeader: col.Header}

		e := cm[col.Header]

		switch {
		case e != nil && e.FieldPath != "":
			fm.TargetField = e.FieldPath
			fm.TargetKey = e.TargetKey
		case col.Header == "" || skipUnmapped:
			fm.Skipped = true
		}

		out[i] = fm
	}

	return out
}
